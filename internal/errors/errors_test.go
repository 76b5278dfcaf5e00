package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"factory-graph/internal/errors"
)

func TestCyclicGraph(t *testing.T) {
	err := errors.CyclicGraph([]string{"A", "B", "A"})

	assert.Equal(t, "[CYCLIC_GRAPH] graph contains a cycle: A -> B -> A", err.Error())
	assert.Equal(t, []string{"A", "B", "A"}, errors.CyclePath(err))

	wrapped := fmt.Errorf("solve: %w", err)
	assert.True(t, stderrors.Is(wrapped, errors.ErrCyclicGraph))
	assert.False(t, stderrors.Is(wrapped, errors.ErrUnknownLabel))
	assert.True(t, errors.IsType(wrapped, errors.TypeCyclicGraph))
	assert.Equal(t, []string{"A", "B", "A"}, errors.CyclePath(wrapped))
}

func TestCyclePath_OtherErrors(t *testing.T) {
	assert.Nil(t, errors.CyclePath(errors.UnknownLabel("Iron")))
	assert.Nil(t, errors.CyclePath(stderrors.New("plain")))
	assert.Nil(t, errors.CyclePath(nil))
}

func TestWrap(t *testing.T) {
	cause := stderrors.New("disk full")
	err := errors.Wrap(errors.TypeInternal, "write failed", cause)

	assert.Equal(t, "[INTERNAL_ERROR] write failed: disk full", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.False(t, errors.IsType(cause, errors.TypeInternal))
}

func TestLabelErrors(t *testing.T) {
	dup := errors.DuplicateLabel("Iron")
	assert.ErrorIs(t, dup, errors.ErrDuplicateLabel)
	assert.Equal(t, "Iron", dup.Context["label"])

	unknown := errors.UnknownLabel("Gold")
	assert.ErrorIs(t, unknown, errors.ErrUnknownLabel)
}

func TestTypeOf(t *testing.T) {
	assert.Equal(t, errors.TypeUnknownLabel, errors.TypeOf(fmt.Errorf("load: %w", errors.UnknownLabel("Gold"))))
	assert.Equal(t, errors.TypeInternal, errors.TypeOf(stderrors.New("plain")))
}
