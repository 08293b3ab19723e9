package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is an application error carrying the HTTP status it should surface as
// and a message that is safe to show to clients.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`

	kind *Error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is one of the kinds e was derived from, so that
// errors.Is(err, ErrNotFound) holds for every not-found error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	for k := e.kind; k != nil; k = k.kind {
		if k == t {
			return true
		}
	}
	return false
}

// New creates a new root Error
func New(code int, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// With derives an error of the same kind with its own message and cause.
func (e *Error) With(message string, err error) *Error {
	return &Error{
		Code:    e.Code,
		Message: message,
		Err:     err,
		kind:    e,
	}
}

// Wrap derives an error of the same kind that keeps the kind's message.
func (e *Error) Wrap(err error) *Error {
	return e.With(e.Message, err)
}

// Common error types
var (
	ErrBadRequest      = New(http.StatusBadRequest, "Bad request", nil)
	ErrUnauthorized    = New(http.StatusUnauthorized, "Unauthorized", nil)
	ErrForbidden       = New(http.StatusForbidden, "Forbidden", nil)
	ErrNotFound        = New(http.StatusNotFound, "Not found", nil)
	ErrConflict        = New(http.StatusConflict, "Conflict", nil)
	ErrTooManyRequests = New(http.StatusTooManyRequests, "Too many requests", nil)
	ErrInternal        = New(http.StatusInternalServerError, "Internal server error", nil)
)

// Business logic error types
var (
	ErrDuplicateItem      = ErrConflict.With("Item already in cart", nil)
	ErrEmptyOrInvalidCart = ErrNotFound.With("Cart is empty or contains unavailable products", nil)
)

// StatusCode returns the HTTP status for err. Anything that is not an *Error
// is a server error.
func StatusCode(err error) int {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return http.StatusInternalServerError
}

// PublicMessage returns the client-facing message for err. Internal details of
// unclassified and 5xx errors are never exposed.
func PublicMessage(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Code < http.StatusInternalServerError {
		return appErr.Message
	}
	return ErrInternal.Message
}
