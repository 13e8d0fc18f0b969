// Package apperr defines the error taxonomy shared by handlers and services.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for HTTP mapping.
type Kind int

const (
	// KindValidation is a missing or malformed required field (400).
	KindValidation Kind = iota + 1
	// KindNotFound is an absent object or recording (404).
	KindNotFound
	// KindConflict is a violation of the active-recording invariant (409).
	KindConflict
	// KindUpstream is an object-store or egress-service failure (500).
	KindUpstream
)

// Error carries a kind, a user-visible message and an optional cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Validation returns a 400-class error.
func Validation(msg string) *Error { return &Error{Kind: KindValidation, Msg: msg} }

// NotFound returns a 404-class error.
func NotFound(msg string) *Error { return &Error{Kind: KindNotFound, Msg: msg} }

// Conflict returns a 409-class error.
func Conflict(msg string) *Error { return &Error{Kind: KindConflict, Msg: msg} }

// Upstream wraps an external failure as a 500-class error. The cause is kept
// for logs; only msg is user-visible.
func Upstream(msg string, err error) *Error { return &Error{Kind: KindUpstream, Msg: msg, Err: err} }

// KindOf returns the kind of err, or KindUpstream for unclassified errors so
// that unexpected failures never leak as anything but a 500.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUpstream
}

// Message returns the user-visible message for err. Unclassified errors get
// the fallback so raw causes are never exposed.
func Message(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Msg
	}
	return fallback
}
