// Package errors provides a lightweight structured error type (MeshBuildError)
// for category-based classification, retry semantics, and exit-code mapping in
// the CLI.
package errors

import (
	"fmt"
)

// ErrorCategory represents the category of a meshbuild error for classification
type ErrorCategory string

const (
	// User-facing configuration and input errors
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"
	CategoryTemplate   ErrorCategory = "template"

	// Build and processing errors
	CategoryBuild         ErrorCategory = "build"
	CategorySerialization ErrorCategory = "serialization"
	CategoryFileSystem    ErrorCategory = "filesystem"

	// Remote mesh service integration errors
	CategoryMesh    ErrorCategory = "mesh"
	CategoryNetwork ErrorCategory = "network"

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

// MeshBuildError is a structured error with category, retryability, and context
type MeshBuildError struct {
	Category  ErrorCategory `json:"category"`
	Severity  ErrorSeverity `json:"severity"`
	Message   string        `json:"message"`
	Cause     error         `json:"cause,omitempty"`
	Retryable bool          `json:"retryable"`
	Context   ContextFields `json:"context,omitempty"`
}

// ContextFields carries structured context for MeshBuildError
type ContextFields map[string]any

// Error implements the error interface
func (e *MeshBuildError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, e.Message)
}

// Unwrap implements error unwrapping for Go 1.13+ error handling
func (e *MeshBuildError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error
func (e *MeshBuildError) WithContext(key string, value any) *MeshBuildError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// New creates a new MeshBuildError
func New(category ErrorCategory, severity ErrorSeverity, message string) *MeshBuildError {
	return &MeshBuildError{
		Category:  category,
		Severity:  severity,
		Message:   message,
		Retryable: false,
	}
}

// Wrap creates a new MeshBuildError that wraps an existing error
func Wrap(err error, category ErrorCategory, severity ErrorSeverity, message string) *MeshBuildError {
	return &MeshBuildError{
		Category:  category,
		Severity:  severity,
		Message:   message,
		Cause:     err,
		Retryable: false,
	}
}

// Retryable creates a new retryable MeshBuildError
func Retryable(category ErrorCategory, severity ErrorSeverity, message string) *MeshBuildError {
	return &MeshBuildError{
		Category:  category,
		Severity:  severity,
		Message:   message,
		Retryable: true,
	}
}

// WrapRetryable creates a new retryable MeshBuildError that wraps an existing error
func WrapRetryable(err error, category ErrorCategory, severity ErrorSeverity, message string) *MeshBuildError {
	return &MeshBuildError{
		Category:  category,
		Severity:  severity,
		Message:   message,
		Cause:     err,
		Retryable: true,
	}
}

// IsCategory checks if an error belongs to a specific category
func IsCategory(err error, category ErrorCategory) bool {
	if mbe, ok := err.(*MeshBuildError); ok {
		return mbe.Category == category
	}
	return false
}

// IsRetryable checks if an error is retryable
func IsRetryable(err error) bool {
	if mbe, ok := err.(*MeshBuildError); ok {
		return mbe.Retryable
	}
	return false
}

// GetCategory extracts the category from an error, or returns CategoryInternal if not a MeshBuildError
func GetCategory(err error) ErrorCategory {
	if mbe, ok := err.(*MeshBuildError); ok {
		return mbe.Category
	}
	return CategoryInternal
}
