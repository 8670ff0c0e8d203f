// Package apperr defines the error shape surfaced to users: a kind for
// callers that branch on it and a message that is safe to display as is.
package apperr

import "errors"

// Kind classifies a failure.
type Kind int

const (
	// Transport covers everything the backend or network returned that has
	// no more specific kind.
	Transport Kind = iota
	// Validation errors are raised before any network call.
	Validation
	// Credentials errors are rejected sign-ins.
	Credentials
	// Profile errors mean a credential exists without a usable profile row.
	Profile
	// Conflict errors are unique-constraint violations.
	Conflict
	// State errors are operations called in the wrong session state.
	State
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case Credentials:
		return "credentials"
	case Profile:
		return "profile"
	case Conflict:
		return "conflict"
	case State:
		return "state"
	default:
		return "transport"
	}
}

// Error is a failure with a human-readable message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New returns an error of kind k with message msg.
func New(k Kind, msg string) *Error {
	return &Error{Kind: k, Message: msg}
}

// Wrap returns an error of kind k with message msg caused by err.
func Wrap(k Kind, msg string, err error) *Error {
	return &Error{Kind: k, Message: msg, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or Transport.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Transport
}

// Is reports whether err carries an *Error of kind k.
func Is(err error, k Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}

// Message returns the display message for err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
