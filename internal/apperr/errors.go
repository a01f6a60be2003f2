// Package apperr defines the error kinds shared by the service layers.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrValidation          = errors.New("validation failed")
	ErrLookup              = errors.New("lookup failed")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("conflict")
	ErrUnsupported         = errors.New("unsupported")
	ErrUpstream            = errors.New("upstream failure")
	ErrComputation         = errors.New("computation failed")
)

// Error carries a message that is safe to show to the caller, a kind that
// errors.Is can match, and an optional underlying cause.
type Error struct {
	kind error
	msg  string
	err  error
}

func (e *Error) Error() string {
	if e.err != nil && e.msg == "" {
		return e.err.Error()
	}
	return e.msg
}

// Is reports whether target is the kind of e.
func (e *Error) Is(target error) bool { return target == e.kind }

func (e *Error) Unwrap() error { return e.err }

// Kind returns the sentinel kind of e.
func (e *Error) Kind() error { return e.kind }

// New returns an Error of the given kind with a formatted message.
func New(kind error, format string, args ...any) error {
	return &Error{kind: kind, msg: fmt.Sprintf(format, args...)}
}

// Wrap returns an Error of the given kind that wraps cause.
func Wrap(kind error, cause error, format string, args ...any) error {
	return &Error{kind: kind, msg: fmt.Sprintf(format, args...), err: cause}
}

// Validation is shorthand for New(ErrValidation, ...).
func Validation(format string, args ...any) error {
	return New(ErrValidation, format, args...)
}

// Lookup is shorthand for New(ErrLookup, ...).
func Lookup(format string, args ...any) error {
	return New(ErrLookup, format, args...)
}

// Message returns the caller-visible message of err when it is an *Error,
// otherwise fallback.
func Message(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) && e.msg != "" {
		return e.msg
	}
	return fallback
}
