// Package service holds the business rules of the registration backend:
// hotel eligibility, room admission control, booking, payment and the
// supporting enrollment, ticket, hotel and account operations.  Services
// are stateless; every call works on data freshly read through a Store.
package service

import (
	"errors"
	"strings"
)

// Kind classifies a failure so the HTTP layer can map it to a status
// code.  The set is closed; anything that is not a *Error is KindUnknown.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindNotFound
	KindForbidden
	KindPaymentRequired
	KindUnauthorized
	KindInvalidData
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "NotFound"
	case KindForbidden:
		return "Forbidden"
	case KindPaymentRequired:
		return "PaymentRequired"
	case KindUnauthorized:
		return "Unauthorized"
	case KindInvalidData:
		return "InvalidData"
	case KindConflict:
		return "Conflict"
	default:
		return "Unknown"
	}
}

// Error is a classified business failure.  Details carries field-level
// messages for KindInvalidData.
type Error struct {
	Kind    Kind
	Message string
	Details []string
}

func (e *Error) Error() string {
	if len(e.Details) == 0 {
		return e.Message
	}
	return e.Message + ": " + strings.Join(e.Details, "; ")
}

// Is matches any *Error of the same kind, so callers can write
// errors.Is(err, service.ErrNotFound) regardless of the message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Sentinels, one per kind.
var (
	ErrNotFound        = &Error{Kind: KindNotFound, Message: "no result for this search"}
	ErrForbidden       = &Error{Kind: KindForbidden, Message: "forbidden"}
	ErrPaymentRequired = &Error{Kind: KindPaymentRequired, Message: "payment required"}
	ErrUnauthorized    = &Error{Kind: KindUnauthorized, Message: "you must be signed in to continue"}
	ErrInvalidData     = &Error{Kind: KindInvalidData, Message: "invalid data"}
	ErrConflict        = &Error{Kind: KindConflict, Message: "conflict"}
)

// ErrDuplicate is returned by Store implementations when an insert
// violates a unique constraint.
var ErrDuplicate = errors.New("duplicate record")

// KindOf extracts the Kind of err, or KindUnknown when err is not
// classified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func newError(kind Kind, msg string, details ...string) *Error {
	return &Error{Kind: kind, Message: msg, Details: details}
}

func notFound(msg string) error     { return newError(KindNotFound, msg) }
func forbidden(msg string) error    { return newError(KindForbidden, msg) }
func unauthorized(msg string) error { return newError(KindUnauthorized, msg) }
func conflict(msg string) error     { return newError(KindConflict, msg) }

func invalidData(details ...string) error {
	return newError(KindInvalidData, "invalid data", details...)
}
