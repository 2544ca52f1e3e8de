// Package errors provides a lightweight structured error type (KixportError)
// for category-based classification of pipeline failures and CLI exit codes.
package errors

import (
	stdErrors "errors"
	"fmt"
)

// ErrorCategory represents the category of a kixport error for classification
type ErrorCategory string

const (
	// User-facing configuration and input errors
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"

	// Board project errors
	CategoryVersion ErrorCategory = "version"

	// External tool errors (kicad-cli, kibom)
	CategoryTool ErrorCategory = "tool"

	// Build and processing errors
	CategoryBuild      ErrorCategory = "build"
	CategoryFileSystem ErrorCategory = "filesystem"

	// Runtime and infrastructure errors
	CategoryRuntime  ErrorCategory = "runtime"
	CategoryInternal ErrorCategory = "internal"
)

// ErrorSeverity indicates how critical an error is
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops execution
	SeverityError   ErrorSeverity = "error"   // Error, but not fatal
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded functionality
	SeverityInfo    ErrorSeverity = "info"    // Informational, no impact
)

// KixportError is a structured error with category, severity and context
type KixportError struct {
	Category ErrorCategory `json:"category"`
	Severity ErrorSeverity `json:"severity"`
	Message  string        `json:"message"`
	Cause    error         `json:"cause,omitempty"`
	Context  ContextFields `json:"context,omitempty"`
}

// ContextFields carries structured context for KixportError
type ContextFields map[string]any

// Error implements the error interface
func (e *KixportError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, e.Message)
}

// Unwrap implements error unwrapping for Go 1.13+ error handling
func (e *KixportError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error
func (e *KixportError) WithContext(key string, value any) *KixportError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// New creates a new KixportError
func New(category ErrorCategory, severity ErrorSeverity, message string) *KixportError {
	return &KixportError{
		Category: category,
		Severity: severity,
		Message:  message,
	}
}

// Wrap creates a new KixportError that wraps an existing error
func Wrap(err error, category ErrorCategory, severity ErrorSeverity, message string) *KixportError {
	return &KixportError{
		Category: category,
		Severity: severity,
		Message:  message,
		Cause:    err,
	}
}

// As returns the outermost KixportError in err's chain.
func As(err error) (*KixportError, bool) {
	var ke *KixportError
	if stdErrors.As(err, &ke) {
		return ke, true
	}
	return nil, false
}

// IsCategory checks if an error (or anything it wraps) belongs to a specific category
func IsCategory(err error, category ErrorCategory) bool {
	if ke, ok := As(err); ok {
		return ke.Category == category
	}
	return false
}

// GetCategory extracts the category from an error, or returns CategoryInternal if not a KixportError
func GetCategory(err error) ErrorCategory {
	if ke, ok := As(err); ok {
		return ke.Category
	}
	return CategoryInternal
}
