// Package errors provides a lightweight structured error type (CIError) for
// category-based classification of build runner failures, and an adapter that
// turns those categories into CLI messages and exit codes.
package errors

import (
	stdErrors "errors"
	"fmt"
)

// ErrorCategory represents the category of a runner error for classification
type ErrorCategory string

const (
	// User-facing configuration and input errors
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"

	// Remote API errors, surfaced after the transport gave up retrying
	CategoryHTTP  ErrorCategory = "http"
	CategoryAPI   ErrorCategory = "api"
	CategoryQuery ErrorCategory = "query"

	// Build lifecycle outcomes
	CategoryBuild   ErrorCategory = "build"
	CategoryTimeout ErrorCategory = "timeout"
	CategoryStatus  ErrorCategory = "status"

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

// Categorized is implemented by every error that knows its own category.
// Transport errors implement it without depending on CIError.
type Categorized interface {
	error
	ErrorCategory() ErrorCategory
}

// CIError is a structured error with category, severity and context
type CIError struct {
	Category ErrorCategory `json:"category"`
	Severity ErrorSeverity `json:"severity"`
	Message  string        `json:"message"`
	Cause    error         `json:"cause,omitempty"`
	Context  ContextFields `json:"context,omitempty"`
}

// ContextFields carries structured context for CIError
type ContextFields map[string]any

// Error implements the error interface
func (e *CIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, e.Message)
}

// Unwrap implements error unwrapping for Go 1.13+ error handling
func (e *CIError) Unwrap() error {
	return e.Cause
}

// ErrorCategory implements Categorized.
func (e *CIError) ErrorCategory() ErrorCategory {
	return e.Category
}

// WithContext adds context information to the error
func (e *CIError) WithContext(key string, value any) *CIError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// New creates a new CIError
func New(category ErrorCategory, severity ErrorSeverity, message string) *CIError {
	return &CIError{
		Category: category,
		Severity: severity,
		Message:  message,
	}
}

// Wrap creates a new CIError that wraps an existing error
func Wrap(err error, category ErrorCategory, severity ErrorSeverity, message string) *CIError {
	return &CIError{
		Category: category,
		Severity: severity,
		Message:  message,
		Cause:    err,
	}
}

// IsCategory checks if an error (or anything it wraps) belongs to a specific category
func IsCategory(err error, category ErrorCategory) bool {
	var c Categorized
	if stdErrors.As(err, &c) {
		return c.ErrorCategory() == category
	}
	return false
}

// GetCategory extracts the category from an error, or returns CategoryInternal if it is not categorized
func GetCategory(err error) ErrorCategory {
	var c Categorized
	if stdErrors.As(err, &c) {
		return c.ErrorCategory()
	}
	return CategoryInternal
}

// AsCIError returns the first CIError in the chain, if any.
func AsCIError(err error) (*CIError, bool) {
	var ce *CIError
	if stdErrors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}
