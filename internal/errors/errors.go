// Package errors provides error handling utilities.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Type identifies the category of error
type Type string

const (
	// TypeDuplicateLabel indicates an insert or rename onto a label that is taken
	TypeDuplicateLabel Type = "DUPLICATE_LABEL"

	// TypeUnknownLabel indicates an operation on a label that does not exist
	TypeUnknownLabel Type = "UNKNOWN_LABEL"

	// TypeCyclicGraph indicates evaluation was attempted on a cyclic graph
	TypeCyclicGraph Type = "CYCLIC_GRAPH"

	// TypeNotFound indicates a stored record does not exist
	TypeNotFound Type = "NOT_FOUND"

	// TypeInput indicates an input validation error
	TypeInput Type = "INPUT_ERROR"

	// TypeParsing indicates a definition file could not be parsed
	TypeParsing Type = "PARSING_ERROR"

	// TypeConfig indicates a configuration error
	TypeConfig Type = "CONFIG_ERROR"

	// TypeInternal indicates an internal error
	TypeInternal Type = "INTERNAL_ERROR"
)

// Error represents a domain error with context
type Error struct {
	Type    Type                   `json:"type"`
	Message string                 `json:"message"`
	Cause   error                  `json:"-"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error of the same type.
// This lets errors.Is match against the exported sentinels.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Type == e.Type
}

// WithContext adds context to the error
func (e *Error) WithContext(key string, value interface{}) *Error {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// Sentinels for use with errors.Is
var (
	ErrDuplicateLabel = &Error{Type: TypeDuplicateLabel}
	ErrUnknownLabel   = &Error{Type: TypeUnknownLabel}
	ErrCyclicGraph    = &Error{Type: TypeCyclicGraph}
)

// New creates a new error
func New(errType Type, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
	}
}

// Newf creates a new formatted error
func Newf(errType Type, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an error with context
func Wrap(errType Type, message string, cause error) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Cause:   cause,
	}
}

// IsType checks if an error, or any error it wraps, is of a specific type
func IsType(err error, t Type) bool {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Type == t
	}
	return false
}

// TypeOf returns the type of the first *Error in err's chain.
// Errors that are not domain errors report TypeInternal.
func TypeOf(err error) Type {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Type
	}
	return TypeInternal
}

// DuplicateLabel creates a duplicate label error
func DuplicateLabel(label string) *Error {
	return Newf(TypeDuplicateLabel, "label already exists: %q", label).
		WithContext("label", label)
}

// UnknownLabel creates an unknown label error
func UnknownLabel(label string) *Error {
	return Newf(TypeUnknownLabel, "label not found: %q", label).
		WithContext("label", label)
}

// CyclicGraph creates a cyclic graph error. path is the closed cycle,
// first and last element equal.
func CyclicGraph(path []string) *Error {
	msg := "graph contains a cycle"
	if len(path) > 0 {
		msg += ": " + strings.Join(path, " -> ")
	}
	return New(TypeCyclicGraph, msg).WithContext("cycle", path)
}

// CyclePath returns the cycle path carried by a cyclic graph error, or nil.
func CyclePath(err error) []string {
	var e *Error
	if !stderrors.As(err, &e) || e.Type != TypeCyclicGraph {
		return nil
	}
	path, _ := e.Context["cycle"].([]string)
	return path
}

// NotFound creates a not found error for a stored record
func NotFound(kind, id string) *Error {
	return Newf(TypeNotFound, "%s not found: %s", kind, id).
		WithContext("id", id)
}

// Input creates an input error
func Input(message string) *Error {
	return New(TypeInput, message)
}

// Inputf creates a formatted input error
func Inputf(format string, args ...interface{}) *Error {
	return Newf(TypeInput, format, args...)
}

// Parsing creates a parsing error
func Parsing(message string, cause error) *Error {
	return Wrap(TypeParsing, message, cause)
}

// Config creates a configuration error
func Config(message string) *Error {
	return New(TypeConfig, message)
}

// Internal creates an internal error
func Internal(message string, cause error) *Error {
	return Wrap(TypeInternal, message, cause)
}
