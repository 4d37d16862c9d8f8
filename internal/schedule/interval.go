// Package schedule implements the weekly schedule engine behind timezone
// conversion of routing packages: flattening day-of-week profiles into a
// linear minute-of-week space, shifting and splitting the resulting
// intervals, regrouping them into day profiles, and validating coverage.
package schedule

import (
	"errors"
	"fmt"

	"github.com/example/callroute-admin/internal/routing"
)

const (
	// MinutesPerDay is the size of the minute-of-day space.
	MinutesPerDay = 24 * 60
	// MinutesPerWeek is the size of the minute-of-week space.
	MinutesPerWeek = 7 * MinutesPerDay
	// DaysPerWeek is the number of day slots in a weekly schedule.
	DaysPerWeek = 7
)

var (
	// ErrInvalidSplit is returned when a split point falls outside the
	// splittable region of an interval.
	ErrInvalidSplit = errors.New("schedule: invalid split point")
	// ErrNotAdjacent is returned when two intervals can not be merged
	// because they neither touch nor overlap.
	ErrNotAdjacent = errors.New("schedule: intervals not adjacent")
	// ErrIntervalInvariant marks malformed interval or profile data produced
	// upstream. It is a data-integrity failure: the current conversion is
	// aborted rather than repaired.
	ErrIntervalInvariant = errors.New("schedule: interval invariant violation")
)

// Interval is a contiguous, inclusive span of minutes carrying the routing
// choices active during it. Minutes are offsets into the minute-of-week
// space, or, after NormalizeToDay, into the minute-of-day space.
//
// StartMinute <= EndMinute holds at all times outside of an in-progress
// merge. Shift may take either bound temporarily out of range; NormalizeToWeek
// and NormalizeToDay bring them back.
type Interval struct {
	StartMinute int
	EndMinute   int
	Choices     []routing.Choice
}

// NewInterval constructs an interval over the given inclusive minute span.
func NewInterval(start, end int, choices []routing.Choice) *Interval {
	return &Interval{StartMinute: start, EndMinute: end, Choices: choices}
}

// Shift moves both bounds by offset minutes. Bounds are not clamped; a
// later normalize pass maps them back into range.
func (iv *Interval) Shift(offset int) {
	iv.StartMinute += offset
	iv.EndMinute += offset
}

// DayBoundary returns the first day-boundary minute strictly greater than
// StartMinute that the interval straddles, i.e. the interval contains both
// the boundary minute and the minute before it. An interval that straddles a
// boundary belongs to two days of week and must be split before profiles are
// assigned.
func (iv *Interval) DayBoundary() (int, bool) {
	boundary := floorDiv(iv.StartMinute, MinutesPerDay)*MinutesPerDay + MinutesPerDay
	if boundary <= iv.EndMinute {
		return boundary, true
	}
	return 0, false
}

// SplitAt truncates the interval to [StartMinute, minute-1] and returns a new
// interval [minute, EndMinute] carrying an independent copy of the routing
// choices. The split point must satisfy StartMinute < minute <= EndMinute;
// the inclusive upper bound allows a shifted end landing exactly on a day
// boundary to be carved into its own single-minute piece.
func (iv *Interval) SplitAt(minute int) (*Interval, error) {
	if minute <= iv.StartMinute || minute > iv.EndMinute {
		return nil, fmt.Errorf("%w: %d outside (%d, %d]", ErrInvalidSplit, minute, iv.StartMinute, iv.EndMinute)
	}

	tail := &Interval{
		StartMinute: minute,
		EndMinute:   iv.EndMinute,
		Choices:     routing.CloneChoices(iv.Choices),
	}
	iv.EndMinute = minute - 1
	return tail, nil
}

// NormalizeToWeek maps both bounds into [0, MinutesPerWeek) using floored
// modulo, so negative minutes wrap to the end of the week.
func (iv *Interval) NormalizeToWeek() {
	iv.StartMinute = floorMod(iv.StartMinute, MinutesPerWeek)
	iv.EndMinute = floorMod(iv.EndMinute, MinutesPerWeek)
}

// NormalizeToDay maps both bounds into [0, MinutesPerDay). Valid only once
// the interval has been assigned to a day profile and no longer carries day
// information in its week-space offset.
func (iv *Interval) NormalizeToDay() {
	iv.StartMinute = floorMod(iv.StartMinute, MinutesPerDay)
	iv.EndMinute = floorMod(iv.EndMinute, MinutesPerDay)
}

// DayIndex derives the 1-based day-of-week index from the week-space start
// minute: 1 = Sunday through 7 = Saturday, 8 = wrapped past the week end.
func (iv *Interval) DayIndex() int {
	return floorDiv(iv.StartMinute+MinutesPerDay, MinutesPerDay)
}

// Merge extends the interval to absorb other, which must start no later than
// one minute past the current end (adjacent or overlapping).
func (iv *Interval) Merge(other *Interval) error {
	if other.StartMinute > iv.EndMinute+1 {
		return fmt.Errorf("%w: [%d,%d] and [%d,%d]", ErrNotAdjacent,
			iv.StartMinute, iv.EndMinute, other.StartMinute, other.EndMinute)
	}
	if other.EndMinute > iv.EndMinute {
		iv.EndMinute = other.EndMinute
	}
	return nil
}

// Equal reports structural equality: same bounds and the same routing
// choices in the same order.
func (iv *Interval) Equal(other *Interval) bool {
	if iv == nil || other == nil {
		return iv == other
	}
	return iv.StartMinute == other.StartMinute &&
		iv.EndMinute == other.EndMinute &&
		routing.ChoicesEqual(iv.Choices, other.Choices)
}

// Clone returns a deep copy of the interval.
func (iv *Interval) Clone() *Interval {
	if iv == nil {
		return nil
	}
	return &Interval{
		StartMinute: iv.StartMinute,
		EndMinute:   iv.EndMinute,
		Choices:     routing.CloneChoices(iv.Choices),
	}
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func floorMod(a, b int) int {
	m := a % b
	if m != 0 && (m < 0) != (b < 0) {
		m += b
	}
	return m
}
