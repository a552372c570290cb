// Package apperr models the language-neutral error kinds of spec.md §7.
// Each protocol package owns its own Kind -> (Code, HTTPStatus) table
// (see internal/dispatch) so that the concrete error string AWS clients
// see can diverge per service, the way real AWS does, while the engines
// underneath only ever reason about the shared Kind enum.
package apperr

import (
	"errors"
	"fmt"
)

// Kind is the closed set of error categories an engine can raise.
type Kind string

const (
	NotFound              Kind = "NotFound"
	AlreadyExists          Kind = "AlreadyExists"
	InvalidArgument        Kind = "InvalidArgument"
	UnsupportedOperation   Kind = "UnsupportedOperation"
	Conflict               Kind = "Conflict"
	OverLimit              Kind = "OverLimit"
	ReceiptHandleInvalid   Kind = "ReceiptHandleInvalid"
	MessageNotInflight     Kind = "MessageNotInflight"
	Internal               Kind = "Internal"
)

// Error wraps a Kind with a human-readable message. Engines construct one
// with New/Newf; dispatch layers use errors.As to recover the Kind and
// render it per the service's error table.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// New constructs an *Error with a fixed message.
func New(kind Kind, message string) error {
	return &Error{Kind: kind, Message: message}
}

// Newf constructs an *Error with a formatted message.
func Newf(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// As recovers the Kind of err, defaulting to Internal for any error that
// wasn't constructed by this package (a programmer error we still must
// render as something).
func As(err error) (Kind, string) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind, ae.Message
	}
	return Internal, err.Error()
}
