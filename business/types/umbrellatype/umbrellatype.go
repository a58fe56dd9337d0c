// Package umbrellatype represents the umbrella category and its price
// multiplier.
package umbrellatype

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// The set of umbrella types that can be used.
var (
	Standard = newType("STANDARD", "Standard", "1.0")
	Premium  = newType("PREMIUM", "Premium", "1.5")
	VIP      = newType("VIP", "VIP", "2.0")
	Family   = newType("FAMILY", "Family", "1.8")
)

// =============================================================================

// Set of known umbrella types.
var types = make(map[string]Type)

// Type represents an umbrella category in the system.
type Type struct {
	value       string
	description string
	multiplier  decimal.Decimal
}

func newType(value string, description string, multiplier string) Type {
	t := Type{
		value:       value,
		description: description,
		multiplier:  decimal.RequireFromString(multiplier),
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

// Multiplier returns the price multiplier applied to the daily base rate.
func (t Type) Multiplier() decimal.Decimal {
	return t.multiplier
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
		return Type{}, fmt.Errorf("invalid umbrella type %q", value)
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
