// Package status represents the lifecycle status shared by reservations
// and payments.
package status

import "fmt"

// The set of statuses that can be used.
var (
	Pending   = newStatus("PENDING", false)
	Confirmed = newStatus("CONFIRMED", false)
	Paid      = newStatus("PAID", false)
	Completed = newStatus("COMPLETED", true)
	Cancelled = newStatus("CANCELLED", true)
	Refunded  = newStatus("REFUNDED", true)
)

// All lists every status in lifecycle order.
var All = []Status{Pending, Confirmed, Paid, Completed, Cancelled, Refunded}

// Blocking is the set of statuses that hold an umbrella for a date range.
var Blocking = []Status{Pending, Confirmed, Paid, Completed}

// =============================================================================

var statuses = make(map[string]Status)

// Status represents a lifecycle status.
type Status struct {
	value    string
	terminal bool
}

func newStatus(value string, terminal bool) Status {
	s := Status{value: value, terminal: terminal}
	statuses[value] = s
	return s
}

// String returns the name of the status.
func (s Status) String() string {
	return s.value
}

// IsTerminal reports whether no further transition is possible.
func (s Status) IsTerminal() bool {
	return s.terminal
}

// IsReleased reports whether the status frees the umbrella for other
// reservations.
func (s Status) IsReleased() bool {
	return s == Cancelled || s == Refunded
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
		return Status{}, fmt.Errorf("invalid status %q", value)
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

// Strings returns the names of the specified statuses.
func Strings(ss []Status) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = s.value
	}
	return out
}
