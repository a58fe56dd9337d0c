// Package plan represents the subscription plan of a tenant.
package plan

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// The set of plans that can be used.
var (
	Free       = newPlan("FREE", 10, "0.00")
	Basic      = newPlan("BASIC", 50, "9.99")
	Pro        = newPlan("PRO", 200, "29.99")
	Enterprise = newPlan("ENTERPRISE", math.MaxInt32, "99.99")
)

// =============================================================================

var plans = make(map[string]Plan)

// Plan represents a subscription plan.
type Plan struct {
	value        string
	maxUmbrellas int
	monthlyPrice decimal.Decimal
}

func newPlan(value string, maxUmbrellas int, monthlyPrice string) Plan {
	p := Plan{
		value:        value,
		maxUmbrellas: maxUmbrellas,
		monthlyPrice: decimal.RequireFromString(monthlyPrice),
	}
	plans[value] = p
	return p
}

// String returns the name of the plan.
func (p Plan) String() string {
	return p.value
}

// MaxUmbrellas returns the number of active umbrellas the plan allows.
func (p Plan) MaxUmbrellas() int {
	return p.maxUmbrellas
}

// IsUnlimited reports whether the plan has no practical umbrella ceiling.
func (p Plan) IsUnlimited() bool {
	return p.maxUmbrellas == math.MaxInt32
}

// MonthlyPrice returns the subscription price per month.
func (p Plan) MonthlyPrice() decimal.Decimal {
	return p.monthlyPrice
}

// Allows reports whether count active umbrellas fit in the plan.
func (p Plan) Allows(count int) bool {
	return count <= p.maxUmbrellas
}

// Equal provides support for the go-cmp package and testing.
func (p Plan) Equal(p2 Plan) bool {
	return p.value == p2.value
}

// MarshalText provides support for logging and any marshal needs.
func (p Plan) MarshalText() ([]byte, error) {
	return []byte(p.value), nil
}

// =============================================================================

// Parse parses the string value and returns a plan if one exists.
func Parse(value string) (Plan, error) {
	p, exists := plans[value]
	if !exists {
		return Plan{}, fmt.Errorf("invalid plan %q", value)
	}

	return p, nil
}

// MustParse parses the string value and returns a plan if one exists. If
// an error occurs the function panics.
func MustParse(value string) Plan {
	p, err := Parse(value)
	if err != nil {
		panic(err)
	}

	return p
}
