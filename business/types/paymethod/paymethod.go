// Package paymethod represents how a payment is settled.
package paymethod

import "fmt"

// The set of payment methods that can be used.
var (
	PayPal       = newMethod("PAYPAL", "PayPal", true)
	CreditCard   = newMethod("CREDIT_CARD", "Credit card", true)
	BankTransfer = newMethod("BANK_TRANSFER", "Bank transfer", false)
	Cash         = newMethod("CASH", "Cash", false)
)

var aliases = map[string]Method{
	"CARD": CreditCard,
}

// =============================================================================

var methods = make(map[string]Method)

// Method represents a payment method.
type Method struct {
	value       string
	description string
	online      bool
}

func newMethod(value string, description string, online bool) Method {
	m := Method{value: value, description: description, online: online}
	methods[value] = m
	return m
}

// String returns the name of the method.
func (m Method) String() string {
	return m.value
}

// IsZero reports whether the method was never set.
func (m Method) IsZero() bool {
	return m.value == ""
}

// Description returns the display name of the method.
func (m Method) Description() string {
	return m.description
}

// IsOnline reports whether the method settles through an online gateway.
func (m Method) IsOnline() bool {
	return m.online
}

// Equal provides support for the go-cmp package and testing.
func (m Method) Equal(m2 Method) bool {
	return m.value == m2.value
}

// MarshalText provides support for logging and any marshal needs.
func (m Method) MarshalText() ([]byte, error) {
	return []byte(m.value), nil
}

// =============================================================================

// Parse parses the string value and returns a method if one exists.
func Parse(value string) (Method, error) {
	if m, exists := methods[value]; exists {
		return m, nil
	}

	if m, exists := aliases[value]; exists {
		return m, nil
	}

	return Method{}, fmt.Errorf("invalid payment method %q", value)
}

// MustParse parses the string value and returns a method if one exists. If
// an error occurs the function panics.
func MustParse(value string) Method {
	m, err := Parse(value)
	if err != nil {
		panic(err)
	}

	return m
}
