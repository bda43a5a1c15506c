// Package errors provides a lightweight structured error type (ClassifiedError)
// for category-based classification of build, directive and CLI failures.
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCategory represents the category of a docbib error for classification
type ErrorCategory string

const (
	// User-facing configuration and input errors
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"

	// Bibliography processing errors
	CategoryBibTeX    ErrorCategory = "bibtex"
	CategoryStyle     ErrorCategory = "style"
	CategoryDirective ErrorCategory = "directive"
	CategoryTemplate  ErrorCategory = "template"

	// Build and filesystem errors
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

// ClassifiedError is a structured error with category, severity and context
type ClassifiedError struct {
	Category ErrorCategory `json:"category"`
	Severity ErrorSeverity `json:"severity"`
	Message  string        `json:"message"`
	Cause    error         `json:"cause,omitempty"`
	Context  ContextFields `json:"context,omitempty"`
}

// ContextFields carries structured context for ClassifiedError
type ContextFields map[string]any

// Error implements the error interface
func (e *ClassifiedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, e.Message)
}

// Unwrap implements error unwrapping
func (e *ClassifiedError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error
func (e *ClassifiedError) WithContext(key string, value any) *ClassifiedError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// New creates a new ClassifiedError
func New(category ErrorCategory, severity ErrorSeverity, message string) *ClassifiedError {
	return &ClassifiedError{
		Category: category,
		Severity: severity,
		Message:  message,
	}
}

// Wrap creates a new ClassifiedError that wraps an existing error
func Wrap(err error, category ErrorCategory, severity ErrorSeverity, message string) *ClassifiedError {
	return &ClassifiedError{
		Category: category,
		Severity: severity,
		Message:  message,
		Cause:    err,
	}
}

// As finds the first ClassifiedError in err's chain.
func As(err error) (*ClassifiedError, bool) {
	var ce *ClassifiedError
	if stderrors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// IsCategory checks if an error (or anything it wraps) belongs to a specific category
func IsCategory(err error, category ErrorCategory) bool {
	if ce, ok := As(err); ok {
		return ce.Category == category
	}
	return false
}

// GetCategory extracts the category from an error, or returns CategoryInternal if not classified
func GetCategory(err error) ErrorCategory {
	if ce, ok := As(err); ok {
		return ce.Category
	}
	return CategoryInternal
}

// ValidationError creates a new validation error
func ValidationError(message string) *ClassifiedError {
	return New(CategoryValidation, SeverityWarning, message)
}
