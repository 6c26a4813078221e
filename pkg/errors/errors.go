package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents different types of errors in the system
type ErrorType string

const (
	// ErrorTypeNotFound indicates a resource was not found
	ErrorTypeNotFound ErrorType = "NOT_FOUND"

	// ErrorTypeValidation indicates a malformed request or a generation
	// output that fails schema validation after normalization and repair
	ErrorTypeValidation ErrorType = "VALIDATION"

	// ErrorTypeInternal indicates an internal server error
	ErrorTypeInternal ErrorType = "INTERNAL"

	// ErrorTypeCriticalSource indicates a mandatory data source failed
	// after its single retry; the generation is aborted
	ErrorTypeCriticalSource ErrorType = "CRITICAL_SOURCE"

	// ErrorTypeSourceDegraded indicates a non-fatal data source failure;
	// the pipeline continues with a placeholder
	ErrorTypeSourceDegraded ErrorType = "SOURCE_DEGRADED"

	// ErrorTypeContentSafety indicates generated or input content was
	// flagged by a safety filter
	ErrorTypeContentSafety ErrorType = "CONTENT_SAFETY"

	// ErrorTypeUnavailable indicates a network or timeout failure from a
	// dependency; retryable by the caller
	ErrorTypeUnavailable ErrorType = "UNAVAILABLE"

	// ErrorTypeInfeasible indicates no schema-valid plan or no
	// budget-feasible combination could be produced
	ErrorTypeInfeasible ErrorType = "INFEASIBLE"
)

// AppError represents an application error
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements the unwrap interface
func (e *AppError) Unwrap() error {
	return e.Err
}

// IsType reports whether err is an AppError of the given type
func IsType(err error, t ErrorType) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Type == t
	}
	return false
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeNotFound,
		Message: message,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeValidation,
		Message: message,
	}
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeInternal,
		Message: message,
		Err:     err,
	}
}

// NewCriticalSourceError creates an error for a mandatory data source
// that failed after its retry
func NewCriticalSourceError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeCriticalSource,
		Message: message,
		Err:     err,
	}
}

// NewSourceDegradedError creates an error for an optional data source
// running on a placeholder
func NewSourceDegradedError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeSourceDegraded,
		Message: message,
		Err:     err,
	}
}

// NewContentSafetyError creates a new content safety error
func NewContentSafetyError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeContentSafety,
		Message: message,
	}
}

// NewUnavailableError creates a new dependency unavailable error
func NewUnavailableError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeUnavailable,
		Message: message,
		Err:     err,
	}
}

// NewInfeasibleError creates a new generation infeasible error
func NewInfeasibleError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeInfeasible,
		Message: message,
	}
}
