// Package apperror carries HTTP-facing failures from handlers to the
// error-shaping middleware.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// FieldError describes one rejected request field.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

type Error struct {
	Status  int
	Code    string
	Message string
	Fields  []FieldError
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return e.Code + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(status int, code, message string) *Error {
	return &Error{Status: status, Code: code, Message: message}
}

func NotFound(code, message string) *Error {
	return New(http.StatusNotFound, code, message)
}

func BadRequest(code, message string) *Error {
	return New(http.StatusBadRequest, code, message)
}

// Invalid is a 400 carrying per-field details.
func Invalid(code, message string, fields []FieldError, err error) *Error {
	return &Error{
		Status:  http.StatusBadRequest,
		Code:    code,
		Message: message,
		Fields:  fields,
		Err:     err,
	}
}

func Internal(code, message string, err error) *Error {
	return &Error{
		Status:  http.StatusInternalServerError,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// From extracts an *Error from err, or wraps unknown errors as a 500.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal("INTERNAL_ERROR", "internal server error", err)
}
