package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents different types of errors in the system
type ErrorType string

const (
	// ErrorTypeNotFound indicates a resource was not found
	ErrorTypeNotFound ErrorType = "NOT_FOUND"

	// ErrorTypeValidation indicates a validation error
	ErrorTypeValidation ErrorType = "VALIDATION"

	// ErrorTypeUpstreamUnavailable indicates the scheduling API could not be
	// reached: network error, timeout, or non-2xx status
	ErrorTypeUpstreamUnavailable ErrorType = "UPSTREAM_UNAVAILABLE"

	// ErrorTypeMalformedResponse indicates the scheduling API returned a
	// document that could not be decoded
	ErrorTypeMalformedResponse ErrorType = "MALFORMED_RESPONSE"

	// ErrorTypePersistence indicates a store read/write failure
	ErrorTypePersistence ErrorType = "PERSISTENCE"

	// ErrorTypeDispatch indicates a message delivery failure
	ErrorTypeDispatch ErrorType = "DISPATCH"
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
	if errors.As(err, &appErr) {
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

// NewUpstreamUnavailableError creates an upstream unavailability error
func NewUpstreamUnavailableError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeUpstreamUnavailable,
		Message: message,
		Err:     err,
	}
}

// NewMalformedResponseError creates a malformed response error
func NewMalformedResponseError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeMalformedResponse,
		Message: message,
		Err:     err,
	}
}

// NewPersistenceError creates a persistence error
func NewPersistenceError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypePersistence,
		Message: message,
		Err:     err,
	}
}

// NewDispatchError creates a dispatch error
func NewDispatchError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeDispatch,
		Message: message,
		Err:     err,
	}
}
