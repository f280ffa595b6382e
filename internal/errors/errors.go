// Package errors defines tend's structured error type. Codes distinguish
// recoverable failures (skip this candidate or person, keep the batch
// moving) from invalid requests and internal faults.
package errors

import "fmt"

// ErrorCode represents a tend error code.
type ErrorCode string

const (
	ErrInvalidRequest ErrorCode = "INVALID_REQUEST" // 400
	ErrNotFound       ErrorCode = "NOT_FOUND"       // 404
	ErrAlreadyExists  ErrorCode = "ALREADY_EXISTS"  // 409
	ErrStorageFailed  ErrorCode = "STORAGE_FAILED"  // 503, recoverable per entity
	ErrInternal       ErrorCode = "INTERNAL"        // 500
)

// TendError represents a structured error with code, status, and details.
type TendError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *TendError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes a wrapped cause when one was recorded.
func (e *TendError) Unwrap() error {
	if cause, ok := e.Details["cause"].(error); ok {
		return cause
	}
	return nil
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *TendError {
	return &TendError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for a record that cannot be found.
func NewNotFound(kind, key string) *TendError {
	return &TendError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("%s not found: %s", kind, key),
		Details: map[string]any{"kind": kind, "key": key},
	}
}

// NewAlreadyExists creates a 409 error for stable-key collisions.
func NewAlreadyExists(kind, key string) *TendError {
	return &TendError{
		Code:    ErrAlreadyExists,
		Status:  409,
		Message: fmt.Sprintf("%s with key %q already exists", kind, key),
		Details: map[string]any{"kind": kind, "key": key},
	}
}

// NewStorageFailed creates a recoverable per-entity storage error. It keeps
// the stable key and the disposition that was being attempted so the
// operation can be retried later.
func NewStorageFailed(key, disposition string, cause error) *TendError {
	return &TendError{
		Code:    ErrStorageFailed,
		Status:  503,
		Message: fmt.Sprintf("storage failed for %q while attempting %s: %v", key, disposition, cause),
		Details: map[string]any{"key": key, "disposition": disposition, "cause": cause},
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *TendError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &TendError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
		Details: map[string]any{"cause": err},
	}
}

// Is checks if an error is a TendError with the given code.
func Is(err error, code ErrorCode) bool {
	if tErr, ok := err.(*TendError); ok {
		return tErr.Code == code
	}
	return false
}
