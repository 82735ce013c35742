// Package fault defines the error taxonomy shared by the policy, store,
// and handler layers.
//
// Every error a handler returns to a caller is classified by a Kind, which
// determines both the HTTP status and the machine-readable "kind" string in
// the response body. Store adapters wrap driver failures as Transient so no
// driver detail ever reaches a caller.
package fault

import (
	"errors"
	"fmt"
)

// Kind classifies an error.
type Kind int

const (
	// Unknown is the zero Kind; errors without a Kind are treated as
	// internal server errors.
	Unknown Kind = iota

	// Validation marks malformed input: bad id format, empty required
	// fields, missing uploads.
	Validation

	// Unauthenticated marks a missing or invalid caller credential.
	Unauthenticated

	// Forbidden marks an authenticated caller without permission.
	Forbidden

	// NotFound marks an absent board, invite, user, or member.
	NotFound

	// Conflict marks an operation that would violate a uniqueness or
	// membership invariant: already a member, already invited.
	Conflict

	// InvalidOperation marks a structurally disallowed operation
	// regardless of permission, such as kicking the owner.
	InvalidOperation

	// Transient marks a store or network failure that is safe to retry.
	Transient
)

// String returns the machine-readable name for a Kind.
func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case Unauthenticated:
		return "unauthenticated"
	case Forbidden:
		return "forbidden"
	case NotFound:
		return "not_found"
	case Conflict:
		return "conflict"
	case InvalidOperation:
		return "invalid_operation"
	case Transient:
		return "transient"
	default:
		return "internal"
	}
}

// Error is a classified error with a caller-safe message.
type Error struct {
	Kind    Kind
	Message string
	Err     error // wrapped cause, never shown to callers
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New returns a classified error with a caller-safe message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf is New with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap classifies an underlying error with a caller-safe message.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the Kind of err, or Unknown if err carries none.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return Unknown
}

// MessageOf returns the caller-safe message of err, or a generic fallback.
func MessageOf(err error) string {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Message
	}
	return "internal error"
}
