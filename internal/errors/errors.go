// Package errors provides the structured error taxonomy for the Tide core.
//
// Every user-facing failure in the core maps to one of a small set of
// error types (not found, compile, render, io, font load, config,
// internal). Failures degrade to dismissible notifications; nothing in
// this package is allowed to terminate the process.
package errors

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

// ErrorType categorizes an error for display and handling policy.
type ErrorType string

const (
	ErrorTypeNotFound ErrorType = "not_found"
	ErrorTypeCompile  ErrorType = "compile"
	ErrorTypeRender   ErrorType = "render"
	ErrorTypeIO       ErrorType = "io"
	ErrorTypeFontLoad ErrorType = "font_load"
	ErrorTypeConfig   ErrorType = "config"
	ErrorTypeInternal ErrorType = "internal"
)

// TideError is a structured error with category, code, and context.
type TideError struct {
	Type        ErrorType
	Code        string
	Message     string
	Cause       error
	Context     map[string]interface{}
	Recoverable bool
}

// Error implements the error interface.
func (e *TideError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}

	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")

	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *TideError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison by type and code.
func (e *TideError) Is(target error) bool {
	var t *TideError
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithContext adds context information to the error.
func (e *TideError) WithContext(key string, value interface{}) *TideError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value

	return e
}

// NewNotFoundError creates an error for a missing project entry.
// The failing identifier should be attached via WithContext("id", ...).
func NewNotFoundError(message string) *TideError {
	return &TideError{
		Type:        ErrorTypeNotFound,
		Code:        "ENTRY_NOT_FOUND",
		Message:     message,
		Recoverable: true,
	}
}

// NewCompileError creates an error for unrecoverable compiler diagnostics.
func NewCompileError(message string, cause error) *TideError {
	return &TideError{
		Type:        ErrorTypeCompile,
		Code:        "COMPILE_FAILED",
		Message:     message,
		Cause:       cause,
		Recoverable: true,
	}
}

// NewRenderError creates an error for a failed page rasterization.
func NewRenderError(message string, cause error) *TideError {
	return &TideError{
		Type:        ErrorTypeRender,
		Code:        "RENDER_FAILED",
		Message:     message,
		Cause:       cause,
		Recoverable: true,
	}
}

// NewIOError creates an error for a disk read/write failure.
func NewIOError(message string, cause error) *TideError {
	return &TideError{
		Type:        ErrorTypeIO,
		Code:        "IO_FAILED",
		Message:     message,
		Cause:       cause,
		Recoverable: true,
	}
}

// NewFontLoadError creates an error for a single font file that failed
// to parse. Always recoverable: catalog construction proceeds without it.
func NewFontLoadError(message string, cause error) *TideError {
	return &TideError{
		Type:        ErrorTypeFontLoad,
		Code:        "FONT_LOAD_FAILED",
		Message:     message,
		Cause:       cause,
		Recoverable: true,
	}
}

// NewConfigError creates an error for invalid configuration.
func NewConfigError(message string, cause error) *TideError {
	return &TideError{
		Type:        ErrorTypeConfig,
		Code:        "CONFIG_INVALID",
		Message:     message,
		Cause:       cause,
		Recoverable: true,
	}
}

// NewInternalError creates an error for a caller contract violation.
func NewInternalError(message string, cause error) *TideError {
	return &TideError{
		Type:        ErrorTypeInternal,
		Code:        "INTERNAL",
		Message:     message,
		Cause:       cause,
		Recoverable: false,
	}
}

// IsNotFound reports whether err is (or wraps, at any depth) a
// not-found error.
func IsNotFound(err error) bool {
	for err != nil {
		if t, ok := err.(*TideError); ok && t.Type == ErrorTypeNotFound {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}

// IsRecoverable reports whether err allows the session to continue.
// Unknown error values are treated as recoverable: partial failure is
// always preferred over total failure.
func IsRecoverable(err error) bool {
	var t *TideError
	if errors.As(err, &t) {
		return t.Recoverable
	}

	return true
}

// Severity classifies a diagnostic reported by the compiler.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

// String returns the string representation of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// Diagnostic is a single compiler message. Warnings never block a
// successful compile; they are surfaced on a debug surface instead.
type Diagnostic struct {
	Severity  Severity
	Message   string
	Timestamp time.Time
}

// DiagnosticCollector accumulates non-fatal diagnostics across compile
// passes. Safe for concurrent use.
type DiagnosticCollector struct {
	diagnostics []Diagnostic
	mutex       sync.RWMutex
}

// NewDiagnosticCollector creates an empty diagnostic collector.
func NewDiagnosticCollector() *DiagnosticCollector {
	return &DiagnosticCollector{
		diagnostics: make([]Diagnostic, 0),
	}
}

// Add records a diagnostic with the current timestamp.
func (dc *DiagnosticCollector) Add(severity Severity, message string) {
	dc.mutex.Lock()
	defer dc.mutex.Unlock()
	dc.diagnostics = append(dc.diagnostics, Diagnostic{
		Severity:  severity,
		Message:   message,
		Timestamp: time.Now(),
	})
}

// All returns a copy of the collected diagnostics.
func (dc *DiagnosticCollector) All() []Diagnostic {
	dc.mutex.RLock()
	defer dc.mutex.RUnlock()
	result := make([]Diagnostic, len(dc.diagnostics))
	copy(result, dc.diagnostics)
	return result
}

// HasWarnings reports whether any warning-level diagnostics were collected.
func (dc *DiagnosticCollector) HasWarnings() bool {
	dc.mutex.RLock()
	defer dc.mutex.RUnlock()
	for _, d := range dc.diagnostics {
		if d.Severity == SeverityWarning {
			return true
		}
	}
	return false
}

// Clear discards all collected diagnostics.
func (dc *DiagnosticCollector) Clear() {
	dc.mutex.Lock()
	defer dc.mutex.Unlock()
	dc.diagnostics = dc.diagnostics[:0]
}
