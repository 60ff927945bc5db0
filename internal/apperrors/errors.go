// Package apperrors defines the error kinds surfaced by the comment and feed
// operations and how they map to HTTP statuses.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode identifies an error kind.
type ErrorCode string

const (
	ErrValidation    ErrorCode = "VALIDATION"    // 422
	ErrAuthorization ErrorCode = "AUTHORIZATION" // 403
	ErrNotFound      ErrorCode = "NOT_FOUND"     // 404
	ErrDataSource    ErrorCode = "DATA_SOURCE"   // 500
)

// AppError is a structured error with code, status and details.
type AppError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
	cause   error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *AppError) Unwrap() error {
	return e.cause
}

// NewValidation creates a 422 error for a rejected request body.
func NewValidation(msg string, details map[string]any) *AppError {
	return &AppError{
		Code:    ErrValidation,
		Status:  http.StatusUnprocessableEntity,
		Message: msg,
		Details: details,
	}
}

// NewAuthorization creates a 403 error when the acting user may not perform the action.
func NewAuthorization(msg string) *AppError {
	return &AppError{
		Code:    ErrAuthorization,
		Status:  http.StatusForbidden,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for a missing resource.
func NewNotFound(resource string, id uint) *AppError {
	return &AppError{
		Code:    ErrNotFound,
		Status:  http.StatusNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Details: map[string]any{"resource": resource, "id": id},
	}
}

// NewDataSource wraps a storage failure. The cause is kept for logging but
// never rendered to clients.
func NewDataSource(op string, err error) *AppError {
	return &AppError{
		Code:    ErrDataSource,
		Status:  http.StatusInternalServerError,
		Message: fmt.Sprintf("data source failure during %s", op),
		cause:   err,
	}
}

// AsDataSource returns err unchanged when it already is an AppError and wraps
// it with NewDataSource otherwise.
func AsDataSource(op string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return err
	}
	return NewDataSource(op, err)
}

// Is reports whether err is, or wraps, an AppError with the given code.
func Is(err error, code ErrorCode) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}
