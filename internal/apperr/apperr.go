// Package apperr provides the standardized error taxonomy shared by the
// lifecycle and referral engines and mapped to HTTP responses by the server.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Code represents a standardized application error code.
type Code string

const (
	CodeValidation    Code = "VALIDATION_ERROR"
	CodeNotFound      Code = "NOT_FOUND"
	CodeForbidden     Code = "FORBIDDEN"
	CodeInvalidStatus Code = "INVALID_STATUS"
	CodeConflict      Code = "CONFLICT"
	CodeInternal      Code = "INTERNAL_ERROR"
)

// Error is a structured application error carrying a taxonomy code.
// Details is optional free-form context safe to expose to callers.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Validation returns a VALIDATION_ERROR.
func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

// Validationf returns a VALIDATION_ERROR with a formatted message.
func Validationf(format string, args ...any) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

// NotFound returns a NOT_FOUND error for the named entity.
func NotFound(entity string) *Error {
	return &Error{Code: CodeNotFound, Message: entity + " not found"}
}

// Forbidden returns a FORBIDDEN error.
func Forbidden(msg string) *Error {
	return &Error{Code: CodeForbidden, Message: msg}
}

// InvalidStatus returns an INVALID_STATUS error for operations that are not
// valid in the entity's current state.
func InvalidStatus(msg string) *Error {
	return &Error{Code: CodeInvalidStatus, Message: msg}
}

// Conflict returns a CONFLICT error.
func Conflict(msg string) *Error {
	return &Error{Code: CodeConflict, Message: msg}
}

// Internal wraps an unexpected failure as an INTERNAL_ERROR. The cause is
// preserved for logging but never serialized to callers.
func Internal(msg string, cause error) *Error {
	return &Error{Code: CodeInternal, Message: msg, cause: cause}
}

// From extracts the *Error from err, wrapping unknown errors as internal.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal("unexpected error", err)
}

// IsCode reports whether err carries the given taxonomy code.
func IsCode(err error, code Code) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Code == code
}

// HTTPStatus returns the HTTP status code for an error.
func HTTPStatus(err error) int {
	switch From(err).Code {
	case CodeValidation, CodeInvalidStatus:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeForbidden:
		return http.StatusForbidden
	case CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
