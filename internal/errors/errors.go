// Package errors provides the typed error taxonomy shared by the services
// and the HTTP layer, with HTTP status code mapping.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents the category of error for metrics and response formatting.
type ErrorType string

const (
	// TypeValidation indicates missing or malformed request fields (HTTP 400)
	TypeValidation ErrorType = "validation"
	// TypeAuth indicates rejected credentials (HTTP 401)
	TypeAuth ErrorType = "auth"
	// TypeForbidden indicates a policy violation (HTTP 403)
	TypeForbidden ErrorType = "forbidden"
	// TypeNotFound indicates no matching row (HTTP 404)
	TypeNotFound ErrorType = "not_found"
	// TypeConflict indicates a uniqueness violation (HTTP 409)
	TypeConflict ErrorType = "conflict"
	// TypeStorage indicates an underlying data store failure (HTTP 500)
	TypeStorage ErrorType = "storage"
)

// Error represents a structured error with type, client-facing message and cause.
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]any
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// HTTPStatus returns the HTTP status code for this error type.
func (e *Error) HTTPStatus() int {
	switch e.Type {
	case TypeValidation:
		return http.StatusBadRequest
	case TypeAuth:
		return http.StatusUnauthorized
	case TypeForbidden:
		return http.StatusForbidden
	case TypeNotFound:
		return http.StatusNotFound
	case TypeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func newError(t ErrorType, message string, cause error) *Error {
	return &Error{Type: t, Message: message, Cause: cause, Context: make(map[string]any)}
}

func ValidationError(message string) *Error {
	return newError(TypeValidation, message, nil)
}

func AuthError(message string) *Error {
	return newError(TypeAuth, message, nil)
}

func ForbiddenError(message string) *Error {
	return newError(TypeForbidden, message, nil)
}

func NotFoundError(message string) *Error {
	return newError(TypeNotFound, message, nil)
}

func ConflictError(message string) *Error {
	return newError(TypeConflict, message, nil)
}

// StorageError wraps a data store failure. The message is what the client sees.
func StorageError(message string, cause error) *Error {
	return newError(TypeStorage, message, cause)
}

// WithField adds a context field logged alongside the error (chainable).
func (e *Error) WithField(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// ErrorResponse is the JSON body sent to clients.
type ErrorResponse struct {
	Error string `json:"error"`
}

func (e *Error) ToResponse() ErrorResponse {
	return ErrorResponse{Error: e.Message}
}

// AsStructuredError converts any error into a structured Error.
// Errors that are not already typed become storage errors carrying the raw message.
func AsStructuredError(err error) *Error {
	if err == nil {
		return nil
	}

	var structuredErr *Error
	if errors.As(err, &structuredErr) {
		return structuredErr
	}

	return StorageError(err.Error(), err)
}
