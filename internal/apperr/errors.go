// Package apperr defines the error kinds surfaced at the HTTP boundary.
package apperr

import (
	"errors"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthorized
	KindNotFound
	KindRateLimited
	KindUpstream
)

// Error carries a client-facing message. Err holds the cause and is only logged.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Status maps the kind to an HTTP status code.
func (e *Error) Status() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func Validation(msg string) error {
	return &Error{Kind: KindValidation, Message: msg}
}

func Unauthorized() error {
	return &Error{Kind: KindUnauthorized, Message: "Unauthorized"}
}

func NotFound(msg string) error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func RateLimited() error {
	return &Error{Kind: KindRateLimited, Message: "Too many requests. Please try again later."}
}

// Upstream wraps a failure of the language model collaborator.
func Upstream(msg string, err error) error {
	return &Error{Kind: KindUpstream, Message: msg, Err: err}
}

func Internal(msg string, err error) error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// KindOf returns the kind of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}
