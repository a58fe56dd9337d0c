// Package tenantstatus represents the account status of a tenant.
package tenantstatus

import "fmt"

// The set of tenant statuses that can be used.
var (
	Trial     = newStatus("TRIAL", true)
	Active    = newStatus("ACTIVE", true)
	Suspended = newStatus("SUSPENDED", false)
	Expired   = newStatus("EXPIRED", false)
	Cancelled = newStatus("CANCELLED", false)
)

// =============================================================================

var statuses = make(map[string]Status)

// Status represents a tenant account status.
type Status struct {
	value      string
	canOperate bool
}

func newStatus(value string, canOperate bool) Status {
	s := Status{value: value, canOperate: canOperate}
	statuses[value] = s
	return s
}

// String returns the name of the status.
func (s Status) String() string {
	return s.value
}

// CanOperate reports whether a tenant in this status may take bookings.
func (s Status) CanOperate() bool {
	return s.canOperate
}

// Equal provides support for the go-cmp package and testing.
func (s Status) Equal(s2 Status) bool {
	return s.value == s2.value
}

// MarshalText provides support for logging and any marshal needs.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.value), nil
}

// =============================================================================

// Parse parses the string value and returns a status if one exists.
func Parse(value string) (Status, error) {
	s, exists := statuses[value]
	if !exists {
		return Status{}, fmt.Errorf("invalid tenant status %q", value)
	}

	return s, nil
}

// MustParse parses the string value and returns a status if one exists. If
// an error occurs the function panics.
func MustParse(value string) Status {
	s, err := Parse(value)
	if err != nil {
		panic(err)
	}

	return s
}
