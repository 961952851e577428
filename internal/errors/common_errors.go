package errors

import (
	"fmt"
)

// ErrorType classifies pipeline errors for logging and triage.
type ErrorType string

const (
	ErrTypeResolution ErrorType = "RESOLUTION"
	ErrTypeValidation ErrorType = "VALIDATION"
	ErrTypeConfig     ErrorType = "CONFIG"
)

// AppError is the error type the pipeline surfaces for classified
// failures. It wraps the cause so errors.Is and errors.As keep
// working across the chain.
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewAppError creates a classified application error.
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
	}
}

// NewResolutionError marks a failure to map a raw identifier to a
// canonical entity code.
func NewResolutionError(message string, cause error) *AppError {
	return NewAppError(ErrTypeResolution, message, cause)
}

// NewAppValidationError marks a dataset validation failure.
func NewAppValidationError(message string) *AppError {
	return NewAppError(ErrTypeValidation, message, nil)
}

// NewConfigError marks a configuration load or validation failure.
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}
