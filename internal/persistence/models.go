package persistence

import "time"

// Package is a tenant's routing package: the root of the profile/segment/
// choice tree plus the civil timezone its minutes are expressed in.
type Package struct {
	ID        string
	TenantID  string
	Name      string
	Timezone  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RouteProfile is one day-of-week profile row of a package. Days are stored
// Sunday-first.
type RouteProfile struct {
	ID            string
	PackageID     string
	Position      int
	Days          [7]bool
	ExceptionDate *time.Time
	Deleted       bool
}

// DaySegment is one daily time segment of a profile, minutes inclusive.
type DaySegment struct {
	ID          string
	ProfileID   string
	Position    int
	StartMinute int
	EndMinute   int
}

// RoutingChoice is one percentage allocation of a segment.
type RoutingChoice struct {
	ID         string
	SegmentID  string
	Position   int
	Percentage int
	Deleted    bool
}

// ExitRef is one priority-ordered exit reference of a routing choice.
type ExitRef struct {
	ID           string
	ChoiceID     string
	Position     int
	Kind         string
	Value        string
	DequeueValue string
}

// ChoiceTree is a routing choice with its ordered exit references.
type ChoiceTree struct {
	RoutingChoice
	Exits []ExitRef
}

// SegmentTree is a day segment with its ordered routing choices.
type SegmentTree struct {
	DaySegment
	Choices []ChoiceTree
}

// ProfileTree is a profile with its ordered segments.
type ProfileTree struct {
	RouteProfile
	Segments []SegmentTree
}

// PackageTree is the fully loaded routing package.
type PackageTree struct {
	Package
	Profiles []ProfileTree
}

// WeeklyRoute is one row of the legacy weekly route table produced by a
// conversion: a single routing choice active on the masked days.
type WeeklyRoute struct {
	ID          string
	PackageID   string
	Position    int
	DayMask     int
	StartMinute int
	EndMinute   int
	Percentage  int
	Exits       []RouteExit
}

// RouteExit is one priority-ordered exit of a weekly route row.
type RouteExit struct {
	Position     int
	Kind         string
	Value        string
	DequeueValue string
	EntityID     string
	TypeCode     string
	TransferCode string
}

// Destination is a directory entry a destination exit resolves against.
type Destination struct {
	ID         string
	TenantID   string
	Value      string
	IsQueue    bool
	IsMappable bool
}

// Label is a directory entry a label exit resolves against.
type Label struct {
	ID       string
	TenantID string
	Value    string
}

// Prompt is a directory entry a prompt exit resolves against.
type Prompt struct {
	ID          string
	TenantID    string
	Value       string
	AfterPrompt string
}
