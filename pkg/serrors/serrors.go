// Package serrors provides semantic error kinds that survive wrapping, so the
// transport layer can map a failure deep inside a batch to a response without
// knowing where it came from.
package serrors

import (
	"errors"
	"fmt"
)

// Kind is a marker interface implemented by all semantic error kinds created
// with NewKind.
type Kind interface {
	error
	isKind()
}

type kind struct{ s string }

func (k kind) Error() string { return k.s }
func (k kind) isKind()       {}

// NewKind creates a new semantic error kind (a sentinel) with the provided name.
func NewKind(name string) Kind { return kind{s: name} }

var (
	// ErrNotFound indicates the requested artifact does not exist.
	ErrNotFound = NewKind("NOT_FOUND")
	// ErrBadRequest indicates missing or invalid request parameters (no file, no column).
	ErrBadRequest = NewKind("BAD_REQUEST")
	// ErrMalformedSource indicates the uploaded table could not be decoded.
	ErrMalformedSource = NewKind("MALFORMED_SOURCE")
	// ErrPayloadTooLarge indicates the upload exceeded the configured size limit.
	ErrPayloadTooLarge = NewKind("PAYLOAD_TOO_LARGE")
	// ErrInternal indicates an internal server error.
	ErrInternal = NewKind("INTERNAL")
	// ErrTimeout indicates the batch was cancelled or ran out of time.
	ErrTimeout = NewKind("TIMEOUT")
)

// Error is a semantic error carrying a kind, an optional wrapped cause and an
// optional message. errors.Is matches both the kind and anything in the cause
// chain.
//
// Error string formatting:
//   - If both msg and err are set: "<msg>: <err>"
//   - If only msg is set: "<msg>"
//   - If only err is set: "<err>"
//   - If neither set: the kind's Error() string.
type Error struct {
	kind Kind
	err  error
	msg  string
}

// With constructs a semantic error with the given kind and message.
func With(k Kind, msgFmt string, args ...any) *Error {
	return &Error{kind: k, msg: fmt.Sprintf(msgFmt, args...)}
}

// Wrap constructs a semantic error with the given kind wrapping cause err.
func Wrap(k Kind, err error, msgFmt string, args ...any) *Error {
	return &Error{kind: k, err: err, msg: fmt.Sprintf(msgFmt, args...)}
}

// KindOnly creates a semantic error carrying only the kind.
func KindOnly(k Kind) *Error { return &Error{kind: k} }

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e == nil:
		return "<nil>"
	case e.msg != "" && e.err != nil:
		return e.msg + ": " + e.err.Error()
	case e.msg != "":
		return e.msg
	case e.err != nil:
		return e.err.Error()
	case e.kind != nil:
		return e.kind.Error()
	default:
		return "unknown error"
	}
}

// Unwrap returns the wrapped cause.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target matches the kind or the wrapped cause.
func (e *Error) Is(target error) bool {
	if e == nil || target == nil {
		return e == nil && target == nil
	}
	if e.kind != nil && errors.Is(e.kind, target) {
		return true
	}

	return e.err != nil && errors.Is(e.err, target)
}

// As enables errors.As against either the kind or the wrapped cause.
func (e *Error) As(target any) bool {
	if e == nil || target == nil {
		return false
	}
	if e.kind != nil && errors.As(e.kind, target) {
		return true
	}

	return e.err != nil && errors.As(e.err, target)
}

// Kind returns the semantic kind of this error, or nil.
func (e *Error) Kind() Kind { return e.kind }

// Message returns the message attached to this error.
func (e *Error) Message() string { return e.msg }

// Cause returns the wrapped cause (may be nil).
func (e *Error) Cause() error { return e.err }

// KindOf returns the kind of the outermost semantic error in err's chain, or
// nil when err carries no kind.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) && se.kind != nil {
		return se.kind
	}

	var k Kind
	if errors.As(err, &k) {
		return k
	}

	return nil
}

// MessageOf returns the message of the outermost semantic error in err's
// chain, or an empty string.
func MessageOf(err error) string {
	var se *Error
	if errors.As(err, &se) {
		return se.msg
	}

	return ""
}
