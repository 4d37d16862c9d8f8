package schedule

import (
	"fmt"

	"github.com/example/callroute-admin/internal/routing"
)

// Profile groups the day-space time ranges that share one weekly schedule,
// tagged with the days of week they apply to.
//
// DayMask is the legacy 7-bit encoding carried into the weekly route table:
// day index i (1 = Sunday .. 7 = Saturday, 8 = wrapped Sunday) contributes
// bit value 1 << (8 - i), so Sunday is the highest bit and the wrapped slot
// the lowest.
type Profile struct {
	DayMask    int
	TimeRanges []*Interval
}

// DayMaskValue returns the mask contribution for a 1-based day index.
func DayMaskValue(dayIndex int) (int, error) {
	if dayIndex < 1 || dayIndex > 8 {
		return 0, fmt.Errorf("%w: day index %d outside 1..8", ErrIntervalInvariant, dayIndex)
	}
	return 1 << (8 - dayIndex), nil
}

// Days expands the mask back into canonical Sunday-first day flags. The
// wrapped slot (index 8) folds onto Sunday, where a past-the-week start
// lands once normalized.
func (p *Profile) Days() DayFlags {
	var flags DayFlags
	for index := 1; index <= 8; index++ {
		value := 1 << (8 - index)
		if p.DayMask&value == 0 {
			continue
		}
		day := index - 1
		if index == 8 {
			day = 0
		}
		flags[day] = true
	}
	return flags
}

// AddDay ORs another single-day mask value into the profile.
func (p *Profile) AddDay(maskValue int) {
	p.DayMask |= maskValue
}

// SameRanges reports whether two profiles carry structurally equal time
// range lists: same count, same bounds, same routing choices in order. Two
// such profiles produce the same daily schedule and can be merged.
func (p *Profile) SameRanges(other *Profile) bool {
	if len(p.TimeRanges) != len(other.TimeRanges) {
		return false
	}
	for i := range p.TimeRanges {
		if !p.TimeRanges[i].Equal(other.TimeRanges[i]) {
			return false
		}
	}
	return true
}

// BuildProfiles walks the shifted, boundary-split, week-normalized intervals
// in start order and opens a new single-day profile every time the day index
// changes. Each interval is normalized into day space as it is appended.
func BuildProfiles(sorted []*Interval) ([]*Profile, error) {
	profiles := make([]*Profile, 0, DaysPerWeek)
	var current *Profile
	currentDay := 0

	for _, iv := range sorted {
		day := iv.DayIndex()
		if day != currentDay {
			value, err := DayMaskValue(day)
			if err != nil {
				return nil, err
			}
			current = &Profile{DayMask: value}
			profiles = append(profiles, current)
			currentDay = day
		}

		iv.NormalizeToDay()
		if iv.EndMinute < iv.StartMinute {
			return nil, fmt.Errorf("%w: range [%d,%d] after day normalization",
				ErrIntervalInvariant, iv.StartMinute, iv.EndMinute)
		}
		current.TimeRanges = append(current.TimeRanges, iv)
	}

	return profiles, nil
}

// MergeProfiles coalesces profiles whose time range lists are structurally
// equal by ORing their day bits together. Every input profile must carry
// exactly one day bit; the builder only produces such profiles, and a
// multi-day input here would corrupt the mask.
func MergeProfiles(profiles []*Profile) ([]*Profile, error) {
	merged := make([]*Profile, 0, len(profiles))

	for _, profile := range profiles {
		if profile.DayMask == 0 || profile.DayMask&(profile.DayMask-1) != 0 {
			return nil, fmt.Errorf("%w: profile mask %#x is not a single day",
				ErrIntervalInvariant, profile.DayMask)
		}

		var target *Profile
		for _, candidate := range merged {
			if candidate.SameRanges(profile) {
				target = candidate
				break
			}
		}
		if target == nil {
			merged = append(merged, profile)
			continue
		}
		target.AddDay(profile.DayMask)
	}

	return merged, nil
}

// MergeTimeRanges coalesces consecutive ranges of the profile whenever they
// are exactly adjacent and carry identical routing choices. The ranges are
// expected sorted by start minute. Idempotent: re-running it on its own
// output changes nothing.
func (p *Profile) MergeTimeRanges() {
	if len(p.TimeRanges) < 2 {
		return
	}

	merged := p.TimeRanges[:1]
	for _, next := range p.TimeRanges[1:] {
		last := merged[len(merged)-1]
		if next.StartMinute == last.EndMinute+1 && routing.ChoicesEqual(last.Choices, next.Choices) {
			if err := last.Merge(next); err != nil {
				// Adjacency was just checked.
				panic(err)
			}
			continue
		}
		merged = append(merged, next)
	}
	p.TimeRanges = merged
}
