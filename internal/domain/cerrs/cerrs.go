// internal/domain/cerrs/cerrs.go

// Package cerrs defines the error taxonomy shared by the case-management
// workflows: authorization failures, bad-request/conflict conditions
// detected by pre-checks, and not-found lookups. Repository errors from the
// underlying store are wrapped with module context but deliberately not
// translated into one of these kinds.
package cerrs

import (
	"errors"
	"fmt"
)

// Kind classifies a workflow error for callers that map errors to HTTP
// status codes.
type Kind int

const (
	KindUnknown Kind = iota
	KindUnauthorized
	KindBadRequest
	KindNotFound
)

// Error is a classified workflow error with the originating module name.
type Error struct {
	Module  string
	Message string
	Kind    Kind
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Module, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Module, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Unauthorized builds an authorization error.
func Unauthorized(module, message string) *Error {
	return &Error{Module: module, Message: message, Kind: KindUnauthorized}
}

// BadRequest builds a domain conflict / invalid request error.
func BadRequest(module, message string) *Error {
	return &Error{Module: module, Message: message, Kind: KindBadRequest}
}

// NotFound builds a not-found error.
func NotFound(module, message string) *Error {
	return &Error{Module: module, Message: message, Kind: KindNotFound}
}

// Wrap attaches module context to an unclassified error, typically one
// surfaced by a repository. The wrapped error keeps KindUnknown so callers
// treat it as an internal failure.
func Wrap(module, message string, err error) *Error {
	return &Error{Module: module, Message: message, Err: err}
}

// KindOf returns the Kind of err, or KindUnknown if err is not an *Error.
func KindOf(err error) Kind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindUnknown
}

// IsUnauthorized reports whether err is an authorization error.
func IsUnauthorized(err error) bool { return KindOf(err) == KindUnauthorized }

// IsBadRequest reports whether err is a bad-request/conflict error.
func IsBadRequest(err error) bool { return KindOf(err) == KindBadRequest }

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }
