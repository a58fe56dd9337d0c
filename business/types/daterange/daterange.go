// Package daterange represents an inclusive range of calendar days.
package daterange

import (
	"errors"
	"fmt"
	"time"
)

// Layout is the format used to parse and print days.
const Layout = "2006-01-02"

// ErrInvalid is returned when the end day falls before the start day.
var ErrInvalid = errors.New("end date must not be before start date")

// Range is an inclusive range of days. Both ends are normalized to midnight
// UTC, so a range ending on day D and one starting on day D share that day.
type Range struct {
	start time.Time
	end   time.Time
}

// New constructs a range from the calendar days of start and end.
func New(start time.Time, end time.Time) (Range, error) {
	s := Day(start)
	e := Day(end)

	if e.Before(s) {
		return Range{}, fmt.Errorf("%s..%s: %w", s.Format(Layout), e.Format(Layout), ErrInvalid)
	}

	return Range{start: s, end: e}, nil
}

// MustNew constructs a range and panics on error. Used by tests.
func MustNew(start time.Time, end time.Time) Range {
	r, err := New(start, end)
	if err != nil {
		panic(err)
	}

	return r
}

// Parse parses two days in the form 2006-01-02.
func Parse(start string, end string) (Range, error) {
	s, err := time.Parse(Layout, start)
	if err != nil {
		return Range{}, fmt.Errorf("parse start: %w", err)
	}

	e, err := time.Parse(Layout, end)
	if err != nil {
		return Range{}, fmt.Errorf("parse end: %w", err)
	}

	return New(s, e)
}

// MustParse parses two days and panics on error. Used by tests.
func MustParse(start string, end string) Range {
	r, err := Parse(start, end)
	if err != nil {
		panic(err)
	}

	return r
}

// Single returns the range covering only the day of t.
func Single(t time.Time) Range {
	d := Day(t)
	return Range{start: d, end: d}
}

// Day truncates t to midnight UTC of its calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Start returns the first day of the range.
func (r Range) Start() time.Time {
	return r.start
}

// End returns the last day of the range.
func (r Range) End() time.Time {
	return r.end
}

// Days returns the number of days in the range, counting both ends.
func (r Range) Days() int {
	return int(r.end.Sub(r.start).Hours()/24) + 1
}

// Overlaps reports whether the two ranges share at least one day.
func (r Range) Overlaps(r2 Range) bool {
	return !r.start.After(r2.end) && !r2.start.After(r.end)
}

// Contains reports whether the day of t falls inside the range.
func (r Range) Contains(t time.Time) bool {
	d := Day(t)
	return !d.Before(r.start) && !d.After(r.end)
}

// IsZero reports whether the range was never set.
func (r Range) IsZero() bool {
	return r.start.IsZero() && r.end.IsZero()
}

// String implements the stringer interface.
func (r Range) String() string {
	return r.start.Format(Layout) + ".." + r.end.Format(Layout)
}
