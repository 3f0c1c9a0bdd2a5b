// Package errors provides a lightweight structured error type (TelemetryError)
// for category-based classification of initialization and publish failures.
package errors

import (
	stdErrors "errors"
	"fmt"
)

// ErrorCategory represents the category of a telemetry error for classification
type ErrorCategory string

const (
	// Caller-facing configuration and input errors
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"

	// Broker connection and delivery errors
	CategoryTransport ErrorCategory = "transport"

	// Payload could not be represented in the wire format
	CategorySerialization ErrorCategory = "serialization"

	CategoryInternal ErrorCategory = "internal"
)

// ErrorSeverity indicates how critical an error is
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops execution
	SeverityError   ErrorSeverity = "error"   // Error, but not fatal
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded functionality
)

// TelemetryError is a structured error with category, severity and context
type TelemetryError struct {
	Category ErrorCategory `json:"category"`
	Severity ErrorSeverity `json:"severity"`
	Message  string        `json:"message"`
	Cause    error         `json:"cause,omitempty"`
	Context  ContextFields `json:"context,omitempty"`
}

// ContextFields carries structured context for TelemetryError
type ContextFields map[string]any

// Error implements the error interface
func (e *TelemetryError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, e.Message)
}

// Unwrap implements error unwrapping for Go 1.13+ error handling
func (e *TelemetryError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error
func (e *TelemetryError) WithContext(key string, value any) *TelemetryError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// New creates a new TelemetryError
func New(category ErrorCategory, severity ErrorSeverity, message string) *TelemetryError {
	return &TelemetryError{
		Category: category,
		Severity: severity,
		Message:  message,
	}
}

// Wrap creates a new TelemetryError that wraps an existing error
func Wrap(err error, category ErrorCategory, severity ErrorSeverity, message string) *TelemetryError {
	return &TelemetryError{
		Category: category,
		Severity: severity,
		Message:  message,
		Cause:    err,
	}
}

// As returns the first TelemetryError in err's chain.
func As(err error) (*TelemetryError, bool) {
	var te *TelemetryError
	if stdErrors.As(err, &te) {
		return te, true
	}
	return nil, false
}

// IsCategory checks if an error belongs to a specific category
func IsCategory(err error, category ErrorCategory) bool {
	if te, ok := As(err); ok {
		return te.Category == category
	}
	return false
}

// GetCategory extracts the category from an error, or returns CategoryInternal if not a TelemetryError
func GetCategory(err error) ErrorCategory {
	if te, ok := As(err); ok {
		return te.Category
	}
	return CategoryInternal
}
