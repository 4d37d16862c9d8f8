package schedule

import (
	"fmt"
	"sort"
	"time"
)

// OffsetProvider reports a timezone's standard (non-DST) offset from UTC in
// minutes. Routing schedules are civil-time: the daylight-saving adjustment
// is deliberately ignored.
type OffsetProvider interface {
	StandardUTCOffset(name string) (int, error)
}

// SystemOffsets resolves timezone names against the process tzdata via
// time.LoadLocation.
type SystemOffsets struct{}

// StandardUTCOffset returns the standard offset for the named zone. The
// smaller of the mid-January and mid-July offsets is the standard one in
// both hemispheres, since daylight saving only ever adds to it.
func (SystemOffsets) StandardUTCOffset(name string) (int, error) {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return 0, fmt.Errorf("schedule: unknown timezone %q: %w", name, err)
	}

	year := time.Now().Year()
	_, january := time.Date(year, time.January, 15, 12, 0, 0, 0, loc).Zone()
	_, july := time.Date(year, time.July, 15, 12, 0, 0, 0, loc).Zone()

	standard := january
	if july < standard {
		standard = july
	}
	return standard / 60, nil
}

// ConversionOffset computes the shift, in minutes, that moves a schedule
// expressed in sourceTZ into targetTZ. The difference of standard offsets is
// rounded to the nearest half hour; realistic inputs lie within roughly
// [-900, 900] minutes.
func ConversionOffset(provider OffsetProvider, sourceTZ, targetTZ string) (int, error) {
	source, err := provider.StandardUTCOffset(sourceTZ)
	if err != nil {
		return 0, err
	}
	target, err := provider.StandardUTCOffset(targetTZ)
	if err != nil {
		return 0, err
	}
	return roundToHalfHour(target - source), nil
}

func roundToHalfHour(minutes int) int {
	if minutes >= 0 {
		return (minutes + 15) / 30 * 30
	}
	return -((-minutes + 15) / 30 * 30)
}

// ShiftAll applies the conversion offset to every interval, splits any
// interval that straddles a day boundary afterwards, normalizes all pieces
// back into the week, and returns the set sorted by start minute.
//
// Splitting runs as a fixed-point loop over an explicit work list: newly
// created tails are re-examined until no interval straddles a boundary.
// Realistic offsets make at most one split per interval necessary, but the
// loop stays correct for extreme offsets too. The final sort is stable, so
// ties keep their input order; the profile builder's sequential grouping
// relies on that.
func ShiftAll(intervals []*Interval, offsetMinutes int) []*Interval {
	for _, iv := range intervals {
		iv.Shift(offsetMinutes)
	}

	// The work list grows while iterating; appended tails are visited in turn.
	for i := 0; i < len(intervals); i++ {
		for {
			boundary, ok := intervals[i].DayBoundary()
			if !ok {
				break
			}
			tail, err := intervals[i].SplitAt(boundary)
			if err != nil {
				// DayBoundary guarantees a legal split point.
				panic(err)
			}
			intervals = append(intervals, tail)
		}
	}

	for _, iv := range intervals {
		iv.NormalizeToWeek()
	}

	sort.SliceStable(intervals, func(i, j int) bool {
		return intervals[i].StartMinute < intervals[j].StartMinute
	})

	return intervals
}
