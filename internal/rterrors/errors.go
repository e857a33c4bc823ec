// Package rterrors defines the typed error kinds used across ifregtest, so
// the driver can classify a failure (abort the run vs. count it and move on)
// without string-matching error messages.
package rterrors

import "fmt"

// Kind categorizes an error for driver-level handling.
type Kind string

const (
	KindConfig   Kind = "CONFIG"    // missing game file / interpreter / test file
	KindParse    Kind = "PARSE"     // malformed test file, unknown directive, duplicate name, include cycle
	KindLaunch   Kind = "LAUNCH"    // subprocess could not be spawned
	KindTimeout  Kind = "TIMEOUT"   // read deadline exceeded
	KindNotJSON  Kind = "NOT_JSON"  // pre-JSON text captured on the read stream
	KindProtocol Kind = "PROTOCOL"  // semantic violation of the window protocol
	KindCheck    Kind = "CHECK"     // a check evaluated to a failure
)

// Error is the structured error type threaded through channel, display,
// driver and checks. Callers should use errors.As to recover the Kind.
type Error struct {
	Kind    Kind
	Message string
	Lines   []string // captured pre-JSON text, for KindNotJSON
	Cause   error
}

func (e *Error) Error() string {
	if e.Message == "" && e.Cause != nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds a plain *Error of the given kind.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds a *Error of the given kind around a cause.
func Wrap(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if as(err, &e) {
		return e.Kind == kind
	}
	return false
}

// as is a tiny indirection over errors.As kept local to avoid importing
// the stdlib errors package twice in callers that alias it.
func as(err error, target **Error) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			*target = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
