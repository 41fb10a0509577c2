package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorCode classifies an error for callers that need to branch on it
type ErrorCode string

const (
	ErrCodeInvalidInput   ErrorCode = "INVALID_INPUT"
	ErrCodeUnauthorized   ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden      ErrorCode = "FORBIDDEN"
	ErrCodeNotFound       ErrorCode = "NOT_FOUND"
	ErrCodeConflict       ErrorCode = "CONFLICT"
	ErrCodePrecondition   ErrorCode = "PRECONDITION_FAILED"
	ErrCodeSessionExpired ErrorCode = "SESSION_EXPIRED"
	ErrCodeNetwork        ErrorCode = "NETWORK"
	ErrCodeRequestFailed  ErrorCode = "REQUEST_FAILED"
	ErrCodeInternal       ErrorCode = "INTERNAL"
)

// Error is the error type returned by the client and its services
type Error struct {
	Code    ErrorCode
	Message string
	Field   string
	Status  int
	Err     error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// Unwrap returns the wrapped cause, if any
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an error with the given code and message
func New(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying error
func Wrap(err error, code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// InvalidInput reports a rejected field value
func InvalidInput(field, message string) *Error {
	return &Error{Code: ErrCodeInvalidInput, Message: message, Field: field}
}

// SessionExpired is returned once a token refresh has failed
func SessionExpired(cause error) *Error {
	return &Error{
		Code:    ErrCodeSessionExpired,
		Message: "Session expired. Please log in again.",
		Status:  http.StatusUnauthorized,
		Err:     cause,
	}
}

// FromStatus builds an error for a failed backend response. An empty message
// falls back to a status-derived one.
func FromStatus(status int, message string) *Error {
	if message == "" {
		message = fmt.Sprintf("Request failed with status %d", status)
	}

	code := ErrCodeRequestFailed
	switch {
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		code = ErrCodeInvalidInput
	case status == http.StatusUnauthorized:
		code = ErrCodeUnauthorized
	case status == http.StatusForbidden:
		code = ErrCodeForbidden
	case status == http.StatusNotFound:
		code = ErrCodeNotFound
	case status == http.StatusConflict:
		code = ErrCodeConflict
	case status == http.StatusPreconditionFailed:
		code = ErrCodePrecondition
	case status >= 500:
		code = ErrCodeInternal
	}

	return &Error{Code: code, Message: message, Status: status}
}

// CodeOf returns the code of the first *Error in err's chain, or "" if none
func CodeOf(err error) ErrorCode {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code
	}
	return ""
}

// StatusOf returns the HTTP status carried by err, or 0
func StatusOf(err error) int {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Status
	}
	return 0
}

// Is reports whether err carries the given code
func Is(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

// IsSessionExpired reports whether err means the user must log in again
func IsSessionExpired(err error) bool {
	return Is(err, ErrCodeSessionExpired)
}
