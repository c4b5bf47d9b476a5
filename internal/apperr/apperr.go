// Package apperr defines the stable error taxonomy shared by the protocol
// clients and the HTTP boundary.
//
// Callers branch on Kind, never on the message text.
package apperr

import (
	"errors"
	"strings"
)

// Kind is a stable category for programmatic error handling.
type Kind string

const (
	KindValidation        Kind = "validation"
	KindConfig            Kind = "config"
	KindCancelled         Kind = "cancelled"
	KindAlreadyAnchored   Kind = "already_anchored"
	KindInsufficientFunds Kind = "insufficient_funds"
	KindTimeout           Kind = "timeout"
	KindLedger            Kind = "ledger"
	KindInternal          Kind = "internal"
)

// Error is the structured error returned by the protocol clients.
//
// Message is safe to show to end users. Details lists individual violated
// constraints for validation errors. Cause keeps the raw library error, which
// is only exposed in development mode.
type Error struct {
	Kind    Kind
	Message string
	Details []string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if len(e.Details) > 0 {
		return e.Message + ": " + strings.Join(e.Details, ", ")
	}
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// New creates an error of the given kind.
func New(kind Kind, msg string) error {
	return &Error{Kind: kind, Message: msg}
}

// Wrap creates an error of the given kind that keeps cause for diagnostics.
func Wrap(kind Kind, msg string, cause error) error {
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

// Validation creates a validation error listing every violated constraint.
func Validation(msg string, details ...string) error {
	return &Error{Kind: KindValidation, Message: msg, Details: details}
}

// As extracts the *Error from err, if any.
func As(err error) (*Error, bool) {
	var e *Error
	if !errors.As(err, &e) {
		return nil, false
	}
	return e, true
}

// IsKind reports whether err is (or wraps) an *Error with the given Kind.
func IsKind(err error, kind Kind) bool {
	e, ok := As(err)
	return ok && e.Kind == kind
}

// KindOf returns the Kind of err, or KindInternal when err carries no category.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return KindInternal
}
