// Package errs defines the error kinds surfaced by the business layer.
package errs

import (
	"errors"
	"fmt"
)

// The set of error kinds the core can return.
var (
	NotFound            = newKind("NOT_FOUND")
	DuplicateNumber     = newKind("DUPLICATE_NUMBER")
	DuplicatePayment    = newKind("DUPLICATE_PAYMENT")
	CapacityExceeded    = newKind("CAPACITY_EXCEEDED")
	ResourceUnavailable = newKind("RESOURCE_UNAVAILABLE")
	DateRangeConflict   = newKind("DATE_RANGE_CONFLICT")
	AmountMismatch      = newKind("AMOUNT_MISMATCH")
	WrongMethod         = newKind("WRONG_METHOD")
	InvalidTransition   = newKind("INVALID_TRANSITION")
	AlreadyConfirmed    = newKind("ALREADY_CONFIRMED")
	AlreadyPaid         = newKind("ALREADY_PAID")
	NotPaid             = newKind("NOT_PAID")
	HasActiveBookings   = newKind("HAS_ACTIVE_BOOKINGS")
	InvalidArgument     = newKind("INVALID_ARGUMENT")
	Storage             = newKind("STORAGE")
	Internal            = newKind("INTERNAL")
)

// =============================================================================

var kinds = make(map[string]Kind)

// Kind classifies an error so callers can react without string matching.
type Kind struct {
	value string
}

func newKind(kind string) Kind {
	k := Kind{kind}
	kinds[kind] = k
	return k
}

// String returns the name of the kind.
func (k Kind) String() string {
	return k.value
}

// Equal provides support for the go-cmp package and testing.
func (k Kind) Equal(k2 Kind) bool {
	return k.value == k2.value
}

// MarshalText provides support for logging and any marshal needs.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.value), nil
}

// ParseKind parses the string value and returns a kind if one exists.
func ParseKind(value string) (Kind, error) {
	k, exists := kinds[value]
	if !exists {
		return Kind{}, fmt.Errorf("invalid error kind %q", value)
	}

	return k, nil
}

// =============================================================================

// Error carries a kind together with the underlying error.
type Error struct {
	Kind Kind
	Err  error
}

// New constructs an Error of the given kind.
func New(kind Kind, err error) *Error {
	return &Error{
		Kind: kind,
		Err:  err,
	}
}

// Newf constructs an Error of the given kind using a formatted message.
func Newf(kind Kind, format string, v ...any) *Error {
	return &Error{
		Kind: kind,
		Err:  fmt.Errorf(format, v...),
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Err.Error()
}

// Unwrap provides support for errors.Is and errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of the outermost Error in the chain. Errors that
// carry no kind are reported as Internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return Internal
}

// IsKind reports whether the error chain carries the specified kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err).Equal(kind)
}
