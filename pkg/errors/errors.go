// Package errors carries the storefront's typed errors. Every failure that
// reaches a person, whether through the CLI or the dev backend's JSON
// envelope, is an AppError wrapping one of the sentinels below.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound       = errors.New("resource not found")
	ErrAlreadyExists  = errors.New("resource already exists")
	ErrInvalidInput   = errors.New("invalid input")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrInternal       = errors.New("internal error")
	ErrConflict       = errors.New("conflict")
	ErrServiceUnavail = errors.New("service unavailable")
)

// bare describes how an error carrying only a sentinel is presented. An
// empty message means err.Error() is shown as is.
var bare = []struct {
	err     error
	status  int
	code    string
	message string
}{
	{ErrNotFound, http.StatusNotFound, "NOT_FOUND", "resource not found"},
	{ErrAlreadyExists, http.StatusConflict, "ALREADY_EXISTS", "resource already exists"},
	{ErrConflict, http.StatusConflict, "CONFLICT", ""},
	{ErrInvalidInput, http.StatusBadRequest, "INVALID_INPUT", ""},
	{ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required"},
	{ErrForbidden, http.StatusForbidden, "FORBIDDEN", "access denied"},
	{ErrServiceUnavail, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "service unavailable"},
}

// AppError is an error with a stable code, a message fit for display and the
// HTTP status the dev backend answers with.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Code + ": " + e.Message
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
}

func (e *AppError) Unwrap() error { return e.Err }

func newError(status int, code string, sentinel error, message string) *AppError {
	return &AppError{Code: code, Message: message, Status: status, Err: sentinel}
}

// NotFound reports a missing product, order, cart line or account.
func NotFound(resource, id string) *AppError {
	return newError(http.StatusNotFound, "NOT_FOUND", ErrNotFound,
		fmt.Sprintf("%s with id %s not found", resource, id))
}

// AlreadyExists reports a duplicate on a unique field.
func AlreadyExists(resource, field, value string) *AppError {
	return newError(http.StatusConflict, "ALREADY_EXISTS", ErrAlreadyExists,
		fmt.Sprintf("%s with %s %q already exists", resource, field, value))
}

func InvalidInput(message string) *AppError {
	return newError(http.StatusBadRequest, "INVALID_INPUT", ErrInvalidInput, message)
}

func Unauthorized(message string) *AppError {
	return newError(http.StatusUnauthorized, "UNAUTHORIZED", ErrUnauthorized, message)
}

func Forbidden(message string) *AppError {
	return newError(http.StatusForbidden, "FORBIDDEN", ErrForbidden, message)
}

// Conflict is used for stock shortfalls and order state violations.
func Conflict(message string) *AppError {
	return newError(http.StatusConflict, "CONFLICT", ErrConflict, message)
}

func ServiceUnavailable(message string) *AppError {
	return newError(http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", ErrServiceUnavail, message)
}

// Internal hides err behind a generic message; err stays reachable via Unwrap.
func Internal(err error) *AppError {
	return newError(http.StatusInternalServerError, "INTERNAL_ERROR", err, "an internal error occurred")
}

// FromStatus describes a failed response from another service. An empty code
// is derived from status.
func FromStatus(status int, code, message string) *AppError {
	derived := fmt.Sprintf("HTTP_%d", status)
	var sentinel error
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		sentinel, derived = ErrInvalidInput, "INVALID_INPUT"
	case http.StatusUnauthorized:
		sentinel, derived = ErrUnauthorized, "UNAUTHORIZED"
	case http.StatusForbidden:
		sentinel, derived = ErrForbidden, "FORBIDDEN"
	case http.StatusNotFound:
		sentinel, derived = ErrNotFound, "NOT_FOUND"
	case http.StatusConflict:
		sentinel, derived = ErrConflict, "CONFLICT"
	case http.StatusTooManyRequests:
		derived = "RATE_LIMITED"
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		sentinel, derived = ErrServiceUnavail, "SERVICE_UNAVAILABLE"
	default:
		if status >= 500 {
			sentinel, derived = ErrInternal, "UPSTREAM_ERROR"
		}
	}
	if code == "" {
		code = derived
	}
	return newError(status, code, sentinel, message)
}

// IsAuthFailure reports whether err is a 401 or 403 from any layer.
func IsAuthFailure(err error) bool {
	return errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrForbidden)
}

// UserMessage returns the AppError message when err carries one and
// err.Error() otherwise.
func UserMessage(err error) string {
	if appErr, ok := As(err); ok {
		return appErr.Message
	}
	return err.Error()
}

// As returns the first AppError in err's chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	ok := errors.As(err, &appErr)
	return appErr, ok
}

// Normalize returns err as an AppError: the one in its chain, one built from
// a known sentinel, or Internal(err).
func Normalize(err error) *AppError {
	if appErr, ok := As(err); ok {
		return appErr
	}
	for _, b := range bare {
		if errors.Is(err, b.err) {
			msg := b.message
			if msg == "" {
				msg = err.Error()
			}
			return newError(b.status, b.code, err, msg)
		}
	}
	return Internal(err)
}

// HTTPStatus returns the status an error should be answered with.
func HTTPStatus(err error) int {
	return Normalize(err).Status
}
