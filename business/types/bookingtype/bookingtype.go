// Package bookingtype represents the reservation category. The category is
// chosen by the customer and selects the discount, independent of how many
// days the reservation actually spans.
package bookingtype

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// The set of booking types that can be used.
var (
	Daily   = newType("GIORNALIERA", "Daily", "1.00")
	Weekly  = newType("SETTIMANALE", "Weekly", "0.90")
	Monthly = newType("MENSILE", "Monthly", "0.80")
	Yearly  = newType("ANNUALE", "Yearly", "0.60")
)

// =============================================================================

var types = make(map[string]Type)

// Type represents a reservation category.
type Type struct {
	value       string
	description string
	factor      decimal.Decimal
}

func newType(value string, description string, factor string) Type {
	t := Type{
		value:       value,
		description: description,
		factor:      decimal.RequireFromString(factor),
	}
	types[value] = t
	return t
}

// String returns the name of the type.
func (t Type) String() string {
	return t.value
}

// Description returns the display name of the type.
func (t Type) Description() string {
	return t.description
}

// DiscountFactor returns the factor the price is multiplied by.
func (t Type) DiscountFactor() decimal.Decimal {
	return t.factor
}

// IsZero reports whether the type was never set.
func (t Type) IsZero() bool {
	return t.value == ""
}

// Equal provides support for the go-cmp package and testing.
func (t Type) Equal(t2 Type) bool {
	return t.value == t2.value
}

// MarshalText provides support for logging and any marshal needs.
func (t Type) MarshalText() ([]byte, error) {
	return []byte(t.value), nil
}

// =============================================================================

// Parse parses the string value and returns a type if one exists.
func Parse(value string) (Type, error) {
	t, exists := types[value]
	if !exists {
		return Type{}, fmt.Errorf("invalid booking type %q", value)
	}

	return t, nil
}

// MustParse parses the string value and returns a type if one exists. If
// an error occurs the function panics.
func MustParse(value string) Type {
	t, err := Parse(value)
	if err != nil {
		panic(err)
	}

	return t
}
