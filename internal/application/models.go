package application

// ConvertedExit is one resolved exit of a converted routing choice, including
// the derived legacy activation metadata.
type ConvertedExit struct {
	Kind         string
	Value        string
	DequeueValue string
	EntityID     string
	TypeCode     string
	TransferCode string
}

// ConvertedChoice is one percentage allocation of a converted time range.
// Error carries the resolution failure message when an exit reference did not
// resolve.
type ConvertedChoice struct {
	Percentage int
	Exits      []ConvertedExit
	Error      string
}

// ConvertedRange is one day-space time range of a converted profile, minutes
// inclusive.
type ConvertedRange struct {
	StartMinute int
	EndMinute   int
	Choices     []ConvertedChoice
}

// ConvertedProfile is one merged day profile produced by a conversion run.
type ConvertedProfile struct {
	DayMask    int
	Days       [7]bool
	TimeRanges []ConvertedRange
}

// ConvertedRoute is one legacy weekly route row produced by a conversion run.
type ConvertedRoute struct {
	DayMask     int
	StartMinute int
	EndMinute   int
	Percentage  int
	Exits       []ConvertedExit
}

// ConversionResult is the outcome of one timezone conversion. Persisted is
// false when unresolved exit references kept the schedule from being written.
type ConversionResult struct {
	PackageID        string
	PreviousTimezone string
	Timezone         string
	OffsetMinutes    int
	Profiles         []ConvertedProfile
	Routes           []ConvertedRoute
	Unresolved       []string
	Persisted        bool
}

// CoverageFinding is one advisory result of a coverage check. Day, Minute,
// ProfileID and SegmentID are populated where the finding kind calls for them.
type CoverageFinding struct {
	Code      string
	Day       int
	Minute    int
	ProfileID string
	SegmentID string
}

// CoverageReport lists every coverage finding for a package's current
// schedule tree. An empty Findings list means the tree routes every minute of
// the week unambiguously at full allocation.
type CoverageReport struct {
	PackageID string
	Findings  []CoverageFinding
}

// Valid reports whether the check produced no findings.
func (r CoverageReport) Valid() bool {
	return len(r.Findings) == 0
}
