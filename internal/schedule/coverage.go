package schedule

import "sort"

// FindingCode classifies a coverage validation finding.
type FindingCode string

const (
	// FindingDayNotSet reports a calendar day no active profile covers.
	FindingDayNotSet FindingCode = "day_not_set"
	// FindingDayDoubleSet reports a calendar day claimed by more than one
	// active profile.
	FindingDayDoubleSet FindingCode = "day_double_set"
	// FindingGap reports the first minute of a contiguous uncovered run
	// within a day.
	FindingGap FindingCode = "gap"
	// FindingOverlap reports the declared start of a segment that intersects
	// minutes already covered by an earlier segment.
	FindingOverlap FindingCode = "overlap"
	// FindingUnderallocated reports routing percentages summing below 100.
	FindingUnderallocated FindingCode = "percent_underallocated"
	// FindingOverallocated reports routing percentages summing above 100.
	FindingOverallocated FindingCode = "percent_overallocated"
)

// Finding is one advisory coverage validation result. Findings are values
// surfaced to the caller for display; validation always enumerates every
// finding and never aborts.
type Finding struct {
	Code FindingCode
	// Day is the calendar day (0 = Sunday .. 6 = Saturday) for day coverage
	// findings.
	Day int
	// Minute is the day minute for gap and overlap findings.
	Minute int
}

// DayAssignment is the per-profile day view the day coverage check consumes.
type DayAssignment struct {
	Days    DayFlags
	Deleted bool
}

// CheckDayCoverage verifies that every calendar day belongs to exactly one
// non-deleted profile: zero owners is a gap in the week, more than one is an
// ambiguity the router cannot resolve.
func CheckDayCoverage(profiles []DayAssignment) []Finding {
	var counts [DaysPerWeek]int
	for _, profile := range profiles {
		if profile.Deleted {
			continue
		}
		for day := 0; day < DaysPerWeek; day++ {
			if profile.Days[day] {
				counts[day]++
			}
		}
	}

	findings := make([]Finding, 0)
	for day := 0; day < DaysPerWeek; day++ {
		switch {
		case counts[day] == 0:
			findings = append(findings, Finding{Code: FindingDayNotSet, Day: day})
		case counts[day] > 1:
			findings = append(findings, Finding{Code: FindingDayDoubleSet, Day: day})
		}
	}
	return findings
}

// CoverageSegment is the minute span the segment coverage check consumes.
type CoverageSegment struct {
	StartMinute int
	EndMinute   int
}

// CheckSegmentCoverage verifies that the segments partition the 1440 minutes
// of a day. Segments are processed in ascending declared-start order; a
// segment touching an already covered minute yields one overlap finding at
// its declared start, and every maximal uncovered run that remains yields
// one gap finding at the run's first minute.
func CheckSegmentCoverage(segments []CoverageSegment) []Finding {
	ordered := make([]CoverageSegment, len(segments))
	copy(ordered, segments)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].StartMinute < ordered[j].StartMinute
	})

	var covered [MinutesPerDay]bool
	findings := make([]Finding, 0)

	for _, segment := range ordered {
		overlapped := false
		for minute := segment.StartMinute; minute <= segment.EndMinute; minute++ {
			if minute < 0 || minute >= MinutesPerDay {
				continue
			}
			if covered[minute] {
				overlapped = true
				continue
			}
			covered[minute] = true
		}
		if overlapped {
			findings = append(findings, Finding{Code: FindingOverlap, Minute: segment.StartMinute})
		}
	}

	inGap := false
	for minute := 0; minute < MinutesPerDay; minute++ {
		if covered[minute] {
			inGap = false
			continue
		}
		if !inGap {
			findings = append(findings, Finding{Code: FindingGap, Minute: minute})
			inGap = true
		}
	}

	return findings
}

// PercentChoice is the percentage view the allocation check consumes.
type PercentChoice struct {
	Percentage int
	Deleted    bool
}

// CheckPercentTotal verifies that the non-deleted routing choices of one
// time range allocate exactly 100 percent of traffic. Returns at most one
// finding.
func CheckPercentTotal(choices []PercentChoice) (Finding, bool) {
	total := 0
	for _, choice := range choices {
		if choice.Deleted {
			continue
		}
		total += choice.Percentage
	}

	switch {
	case total < 100:
		return Finding{Code: FindingUnderallocated}, true
	case total > 100:
		return Finding{Code: FindingOverallocated}, true
	}
	return Finding{}, false
}
