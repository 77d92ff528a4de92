package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTideError_Error(t *testing.T) {
	err := NewCompileError("main file has a syntax error", nil)

	assert.Contains(t, err.Error(), "[COMPILE_FAILED]")
	assert.Contains(t, err.Error(), "main file has a syntax error")
}

func TestTideError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := NewIOError("cannot write export", cause)

	assert.Equal(t, cause, errors.Unwrap(err))
	assert.ErrorContains(t, err, "disk full")
}

func TestTideError_Is(t *testing.T) {
	a := NewNotFoundError("no such entry")
	b := NewNotFoundError("different message, same class")

	assert.ErrorIs(t, a, b)
	assert.NotErrorIs(t, a, NewRenderError("boom", nil))
}

func TestTideError_WithContext(t *testing.T) {
	err := NewNotFoundError("no such entry").WithContext("id", "/main.typ")

	assert.Equal(t, "/main.typ", err.Context["id"])
}

func TestIsNotFound(t *testing.T) {
	wrapped := fmt.Errorf("compiling: %w", NewNotFoundError("no such entry"))

	assert.True(t, IsNotFound(wrapped))
	assert.False(t, IsNotFound(fmt.Errorf("plain error")))

	// NotFound buried under a compile error is still detected.
	nested := NewCompileError("compilation failed", NewNotFoundError("no main"))
	assert.True(t, IsNotFound(nested))
}

func TestIsRecoverable(t *testing.T) {
	assert.True(t, IsRecoverable(NewRenderError("page 3", nil)))
	assert.True(t, IsRecoverable(fmt.Errorf("unknown")))
	assert.False(t, IsRecoverable(NewInternalError("contract violation", nil)))
}

func TestDiagnosticCollector(t *testing.T) {
	dc := NewDiagnosticCollector()

	assert.Empty(t, dc.All())
	assert.False(t, dc.HasWarnings())

	dc.Add(SeverityWarning, "unused import")
	dc.Add(SeverityError, "unknown variable")

	all := dc.All()
	assert.Len(t, all, 2)
	assert.Equal(t, "unused import", all[0].Message)
	assert.True(t, dc.HasWarnings())

	// Mutating the returned slice must not affect the collector.
	all[0].Message = "changed"
	assert.Equal(t, "unused import", dc.All()[0].Message)

	dc.Clear()
	assert.Empty(t, dc.All())
}

func TestSeverity_String(t *testing.T) {
	assert.Equal(t, "warning", SeverityWarning.String())
	assert.Equal(t, "error", SeverityError.String())
	assert.Equal(t, "unknown", Severity(99).String())
}
