// Package output provides output formatting interfaces.
// This package produces human and machine-readable reports of an evaluated
// production graph.
package output

import (
	"io"
	"sort"
	"sync"

	"factory-graph/internal/errors"
)

// Format represents output format type
type Format string

const (
	// FormatCLI is a human-readable CLI table
	FormatCLI Format = "cli"

	// FormatJSON is machine-readable JSON
	FormatJSON Format = "json"

	// FormatMarkdown is a markdown report
	FormatMarkdown Format = "markdown"
)

// Formatter produces output in a specific format
type Formatter interface {
	// Format returns the format type
	Format() Format

	// Render produces output for the given report
	Render(w io.Writer, report *Report) error
}

// FormatterRegistry manages formatter registration
type FormatterRegistry interface {
	// Register adds a formatter to the registry
	Register(formatter Formatter) error

	// GetFormatter returns a formatter for a format type
	GetFormatter(format Format) (Formatter, bool)

	// GetAll returns all registered formatters
	GetAll() []Formatter
}

type registry struct {
	mu         sync.RWMutex
	formatters map[Format]Formatter
}

// NewRegistry creates an empty formatter registry
func NewRegistry() FormatterRegistry {
	return &registry{formatters: make(map[Format]Formatter)}
}

func (r *registry) Register(formatter Formatter) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.formatters[formatter.Format()]; exists {
		return errors.Newf(errors.TypeInternal, "formatter already registered: %s", formatter.Format())
	}
	r.formatters[formatter.Format()] = formatter
	return nil
}

func (r *registry) GetFormatter(format Format) (Formatter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.formatters[format]
	return f, ok
}

func (r *registry) GetAll() []Formatter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := make([]Formatter, 0, len(r.formatters))
	for _, f := range r.formatters {
		all = append(all, f)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Format() < all[j].Format() })
	return all
}

// DefaultRegistry returns a registry holding every built-in formatter
func DefaultRegistry(opts Options) FormatterRegistry {
	r := NewRegistry()
	_ = r.Register(NewCLIFormatter(opts))
	_ = r.Register(NewJSONFormatter())
	_ = r.Register(NewMarkdownFormatter(opts))
	return r
}

// Get returns the built-in formatter for a format name
func Get(format string, opts Options) (Formatter, error) {
	f, ok := DefaultRegistry(opts).GetFormatter(Format(format))
	if !ok {
		return nil, errors.Newf(errors.TypeInput, "unknown output format: %s", format)
	}
	return f, nil
}

// Options controls how formatters present values
type Options struct {
	// ShowInputs lists each item's inputs
	ShowInputs bool

	// Precision is the number of decimal places for money values
	Precision int32

	// NoColor disables ANSI colors in CLI output
	NoColor bool
}
