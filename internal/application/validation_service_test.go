package application_test

import (
	"context"
	"errors"
	"testing"

	"github.com/example/callroute-admin/internal/application"
	"github.com/example/callroute-admin/internal/testfixtures"
)

func findingCodes(report application.CoverageReport) map[string]int {
	codes := make(map[string]int)
	for _, finding := range report.Findings {
		codes[finding.Code]++
	}
	return codes
}

func TestCheckCoverage_CleanTree(t *testing.T) {
	t.Parallel()

	store := testfixtures.NewPackageStore()
	pkg := testfixtures.NewPackageFixture().Persistence()
	store.Seed(pkg,
		testfixtures.Profile("profile-week", testfixtures.Weekdays(),
			testfixtures.Segment("seg-1", 0, 719,
				testfixtures.Choice("choice-1", 100, testfixtures.ExitTo("prompt", "closed"))),
			testfixtures.Segment("seg-2", 720, 1439,
				testfixtures.Choice("choice-2", 60, testfixtures.ExitTo("destination", "sales")),
				testfixtures.Choice("choice-3", 40, testfixtures.ExitTo("destination", "support"))),
		),
		testfixtures.Profile("profile-weekend", testfixtures.Weekend(),
			testfixtures.Segment("seg-3", 0, 1439,
				testfixtures.Choice("choice-4", 100, testfixtures.ExitTo("prompt", "closed"))),
		),
	)

	service := application.NewValidationService(store, nil)

	report, err := service.CheckCoverage(context.Background(), pkg.TenantID, pkg.ID)
	if err != nil {
		t.Fatalf("CheckCoverage returned error: %v", err)
	}
	if !report.Valid() {
		t.Errorf("expected no findings, got %+v", report.Findings)
	}
}

func TestCheckCoverage_ReportsEveryDefect(t *testing.T) {
	t.Parallel()

	store := testfixtures.NewPackageStore()
	pkg := testfixtures.NewPackageFixture().Persistence()

	// Monday is claimed twice, Saturday not at all. The weekday profile has a
	// midday gap and an overlapping evening segment; one range underallocates
	// and another overallocates.
	weekdays := testfixtures.Profile("profile-week", testfixtures.Weekdays(),
		testfixtures.Segment("seg-1", 0, 539,
			testfixtures.Choice("choice-1", 90, testfixtures.ExitTo("prompt", "closed"))),
		testfixtures.Segment("seg-2", 600, 1439,
			testfixtures.Choice("choice-2", 100, testfixtures.ExitTo("destination", "sales"))),
		testfixtures.Segment("seg-3", 1200, 1439,
			testfixtures.Choice("choice-3", 110, testfixtures.ExitTo("destination", "support"))),
	)
	monday := testfixtures.Profile("profile-monday", [7]bool{false, true, false, false, false, false, false},
		testfixtures.Segment("seg-4", 0, 1439,
			testfixtures.Choice("choice-4", 100, testfixtures.ExitTo("prompt", "closed"))),
	)
	sunday := testfixtures.Profile("profile-sunday", [7]bool{true, false, false, false, false, false, false},
		testfixtures.Segment("seg-5", 0, 1439,
			testfixtures.Choice("choice-5", 100, testfixtures.ExitTo("prompt", "closed"))),
	)
	store.Seed(pkg, weekdays, monday, sunday)

	service := application.NewValidationService(store, nil)

	report, err := service.CheckCoverage(context.Background(), pkg.TenantID, pkg.ID)
	if err != nil {
		t.Fatalf("CheckCoverage returned error: %v", err)
	}
	if report.Valid() {
		t.Fatal("expected findings")
	}

	codes := findingCodes(report)
	want := map[string]int{
		"day_not_set":            1, // Saturday
		"day_double_set":         1, // Monday
		"gap":                    1, // minutes 540..599
		"overlap":                1, // seg-3 start
		"percent_underallocated": 1, // seg-1
		"percent_overallocated":  1, // seg-3
	}
	for code, count := range want {
		if codes[code] != count {
			t.Errorf("finding %q count = %d, want %d (all: %v)", code, codes[code], count, codes)
		}
	}

	for _, finding := range report.Findings {
		switch finding.Code {
		case "day_not_set":
			if finding.Day != 6 {
				t.Errorf("day_not_set day = %d, want 6", finding.Day)
			}
		case "day_double_set":
			if finding.Day != 1 {
				t.Errorf("day_double_set day = %d, want 1", finding.Day)
			}
		case "gap":
			if finding.Minute != 540 || finding.ProfileID != "profile-week" {
				t.Errorf("gap finding = %+v", finding)
			}
		case "overlap":
			if finding.Minute != 1200 || finding.ProfileID != "profile-week" {
				t.Errorf("overlap finding = %+v", finding)
			}
		case "percent_underallocated":
			if finding.SegmentID != "seg-1" {
				t.Errorf("underallocated segment = %q, want seg-1", finding.SegmentID)
			}
		case "percent_overallocated":
			if finding.SegmentID != "seg-3" {
				t.Errorf("overallocated segment = %q, want seg-3", finding.SegmentID)
			}
		}
	}
}

func TestCheckCoverage_IgnoresDeletedAndExceptionProfiles(t *testing.T) {
	t.Parallel()

	store := testfixtures.NewPackageStore()
	pkg := testfixtures.NewPackageFixture().Persistence()

	allWeek := testfixtures.Profile("profile-all", testfixtures.AllWeek(),
		testfixtures.Segment("seg-1", 0, 1439,
			testfixtures.Choice("choice-1", 100, testfixtures.ExitTo("prompt", "closed"))))
	deleted := testfixtures.Profile("profile-deleted", testfixtures.AllWeek(),
		testfixtures.Segment("seg-2", 0, 10,
			testfixtures.Choice("choice-2", 5, testfixtures.ExitTo("prompt", "closed"))))
	deleted.Deleted = true
	holiday := testfixtures.Profile("profile-holiday", [7]bool{},
		testfixtures.Segment("seg-3", 0, 100,
			testfixtures.Choice("choice-3", 5, testfixtures.ExitTo("prompt", "closed"))))
	exceptionDate := testfixtures.ReferenceTime()
	holiday.ExceptionDate = &exceptionDate

	store.Seed(pkg, allWeek, deleted, holiday)

	service := application.NewValidationService(store, nil)

	report, err := service.CheckCoverage(context.Background(), pkg.TenantID, pkg.ID)
	if err != nil {
		t.Fatalf("CheckCoverage returned error: %v", err)
	}
	if !report.Valid() {
		t.Errorf("expected no findings, got %+v", report.Findings)
	}
}

func TestCheckCoverage_UnknownPackage(t *testing.T) {
	t.Parallel()

	service := application.NewValidationService(testfixtures.NewPackageStore(), nil)

	_, err := service.CheckCoverage(context.Background(), "tenant-001", "missing")
	if !errors.Is(err, application.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
