package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/callroute-admin/internal/persistence"
)

var packageCounter uint64

var referenceTime = time.Date(2024, time.January, 2, 15, 4, 5, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// PackageFixture represents a deterministic routing package record.
type PackageFixture struct {
	ID        string
	TenantID  string
	Name      string
	Timezone  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PackageOption configures the generated package fixture.
type PackageOption func(*PackageFixture)

// NewPackageFixture returns a deterministic package fixture with optional overrides.
func NewPackageFixture(opts ...PackageOption) PackageFixture {
	idx := atomic.AddUint64(&packageCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := PackageFixture{
		ID:        fmt.Sprintf("package-%03d", idx),
		TenantID:  "tenant-001",
		Name:      fmt.Sprintf("Package %03d", idx),
		Timezone:  "America/New_York",
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithPackageID overrides the generated package ID.
func WithPackageID(id string) PackageOption {
	return func(f *PackageFixture) {
		f.ID = id
	}
}

// WithPackageTenant overrides the tenant ID.
func WithPackageTenant(tenantID string) PackageOption {
	return func(f *PackageFixture) {
		f.TenantID = tenantID
	}
}

// WithPackageName overrides the package name.
func WithPackageName(name string) PackageOption {
	return func(f *PackageFixture) {
		f.Name = name
	}
}

// WithPackageTimezone overrides the stored timezone.
func WithPackageTimezone(timezone string) PackageOption {
	return func(f *PackageFixture) {
		f.Timezone = timezone
	}
}

// Persistence returns the fixture as a persistence.Package value.
func (f PackageFixture) Persistence() persistence.Package {
	return persistence.Package{
		ID:        f.ID,
		TenantID:  f.TenantID,
		Name:      f.Name,
		Timezone:  f.Timezone,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// Profile builds a profile tree node with Sunday-first day flags.
func Profile(id string, days [7]bool, segments ...persistence.SegmentTree) persistence.ProfileTree {
	tree := persistence.ProfileTree{
		RouteProfile: persistence.RouteProfile{ID: id, Days: days},
	}
	for i := range segments {
		segments[i].ProfileID = id
		segments[i].Position = i + 1
		tree.Segments = append(tree.Segments, segments[i])
	}
	return tree
}

// Segment builds a day segment node, minutes inclusive.
func Segment(id string, start, end int, choices ...persistence.ChoiceTree) persistence.SegmentTree {
	tree := persistence.SegmentTree{
		DaySegment: persistence.DaySegment{ID: id, StartMinute: start, EndMinute: end},
	}
	for i := range choices {
		choices[i].SegmentID = id
		choices[i].Position = i + 1
		tree.Choices = append(tree.Choices, choices[i])
	}
	return tree
}

// Choice builds a routing choice node.
func Choice(id string, percentage int, exits ...persistence.ExitRef) persistence.ChoiceTree {
	tree := persistence.ChoiceTree{
		RoutingChoice: persistence.RoutingChoice{ID: id, Percentage: percentage},
	}
	for i := range exits {
		exits[i].ChoiceID = id
		exits[i].Position = i + 1
		tree.Exits = append(tree.Exits, exits[i])
	}
	return tree
}

// ExitTo builds an exit reference.
func ExitTo(kind, value string) persistence.ExitRef {
	return persistence.ExitRef{Kind: kind, Value: value}
}

// Weekdays returns day flags for Monday through Friday.
func Weekdays() [7]bool {
	return [7]bool{false, true, true, true, true, true, false}
}

// Weekend returns day flags for Saturday and Sunday.
func Weekend() [7]bool {
	return [7]bool{true, false, false, false, false, false, true}
}

// AllWeek returns day flags covering every day.
func AllWeek() [7]bool {
	return [7]bool{true, true, true, true, true, true, true}
}
