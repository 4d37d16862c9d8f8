package application_test

import (
	"context"
	"errors"
	"testing"

	"github.com/example/callroute-admin/internal/application"
	"github.com/example/callroute-admin/internal/persistence"
	"github.com/example/callroute-admin/internal/routing"
	"github.com/example/callroute-admin/internal/testfixtures"
)

func newResolver(directory persistence.DirectoryRepository) *routing.Resolver {
	lookups := application.NewDirectoryLookups(directory)
	return routing.NewResolver(lookups, lookups, lookups)
}

func seedDirectory(t *testing.T, directory *testfixtures.Directory, tenantID string) {
	t.Helper()
	ctx := context.Background()
	seed := []error{
		directory.CreateDestination(ctx, persistence.Destination{ID: "dest-sales", TenantID: tenantID, Value: "sales"}),
		directory.CreatePrompt(ctx, persistence.Prompt{ID: "prompt-closed", TenantID: tenantID, Value: "closed", AfterPrompt: "stop"}),
	}
	for _, err := range seed {
		if err != nil {
			t.Fatalf("seed directory: %v", err)
		}
	}
}

// businessTree is an all-week schedule: closed overnight, sales 09:00-17:59,
// closed in the evening.
func businessTree() []persistence.ProfileTree {
	return []persistence.ProfileTree{
		testfixtures.Profile("profile-1", testfixtures.AllWeek(),
			testfixtures.Segment("seg-1", 0, 539,
				testfixtures.Choice("choice-1", 100, testfixtures.ExitTo("prompt", "closed"))),
			testfixtures.Segment("seg-2", 540, 1079,
				testfixtures.Choice("choice-2", 100, testfixtures.ExitTo("destination", "sales"))),
			testfixtures.Segment("seg-3", 1080, 1439,
				testfixtures.Choice("choice-3", 100, testfixtures.ExitTo("prompt", "closed"))),
		),
	}
}

func TestConvertTimezone_PersistsConvertedSchedule(t *testing.T) {
	t.Parallel()

	store := testfixtures.NewPackageStore()
	directory := testfixtures.NewDirectory()
	seedDirectory(t, directory, "tenant-001")

	pkg := testfixtures.NewPackageFixture(testfixtures.WithPackageTimezone("America/New_York")).Persistence()
	store.Seed(pkg, businessTree()...)

	ids := testfixtures.NewIDGenerator("conv")
	service := application.NewConversionService(store, newResolver(directory), nil, ids.NextFunc(), nil)

	result, err := service.ConvertTimezone(context.Background(), pkg.TenantID, pkg.ID, "America/Chicago")
	if err != nil {
		t.Fatalf("ConvertTimezone returned error: %v", err)
	}

	if !result.Persisted {
		t.Fatal("expected the converted schedule to be persisted")
	}
	if result.OffsetMinutes != -60 {
		t.Errorf("offset = %d, want -60", result.OffsetMinutes)
	}
	if result.PreviousTimezone != "America/New_York" || result.Timezone != "America/Chicago" {
		t.Errorf("timezones = %q -> %q", result.PreviousTimezone, result.Timezone)
	}

	tree, err := store.GetPackageTree(context.Background(), pkg.TenantID, pkg.ID)
	if err != nil {
		t.Fatalf("GetPackageTree returned error: %v", err)
	}
	if tree.Timezone != "America/Chicago" {
		t.Errorf("stored timezone = %q, want America/Chicago", tree.Timezone)
	}
	if len(tree.Profiles) == 0 {
		t.Fatal("expected persisted profiles")
	}

	// Identical days collapse back into a single profile whose segments still
	// cover the full day after the shift.
	if len(result.Profiles) != 1 {
		t.Fatalf("got %d profiles, want 1", len(result.Profiles))
	}
	covered := 0
	for _, rng := range result.Profiles[0].TimeRanges {
		covered += rng.EndMinute - rng.StartMinute + 1
	}
	if covered != 1440 {
		t.Errorf("covered %d minutes, want 1440", covered)
	}

	routes, err := store.ListWeeklyRoutes(context.Background(), pkg.TenantID, pkg.ID)
	if err != nil {
		t.Fatalf("ListWeeklyRoutes returned error: %v", err)
	}
	if len(routes) == 0 {
		t.Fatal("expected weekly route rows")
	}
	for _, route := range routes {
		if len(route.Exits) != 1 {
			t.Fatalf("route %q has %d exits", route.ID, len(route.Exits))
		}
		exit := route.Exits[0]
		switch exit.Kind {
		case "destination":
			if exit.EntityID != "dest-sales" || exit.TypeCode != "destination" {
				t.Errorf("destination exit = %+v", exit)
			}
		case "prompt":
			if exit.EntityID != "prompt-closed" || exit.TypeCode != "prompt_stop" {
				t.Errorf("prompt exit = %+v", exit)
			}
		default:
			t.Errorf("unexpected exit kind %q", exit.Kind)
		}
	}
}

func TestConvertTimezone_UnresolvedExitsBlockPersistence(t *testing.T) {
	t.Parallel()

	store := testfixtures.NewPackageStore()
	directory := testfixtures.NewDirectory()
	seedDirectory(t, directory, "tenant-001")

	pkg := testfixtures.NewPackageFixture().Persistence()
	tree := businessTree()
	tree[0].Segments[1].Choices[0].Exits[0].Value = "missing"
	store.Seed(pkg, tree...)

	service := application.NewConversionService(store, newResolver(directory), nil, nil, nil)

	result, err := service.ConvertTimezone(context.Background(), pkg.TenantID, pkg.ID, "America/Chicago")

	var vErr *application.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if result.Persisted {
		t.Error("unresolved exits must not be persisted")
	}
	if len(result.Unresolved) == 0 {
		t.Error("expected unresolved exit messages")
	}

	stored, err := store.GetPackageTree(context.Background(), pkg.TenantID, pkg.ID)
	if err != nil {
		t.Fatalf("GetPackageTree returned error: %v", err)
	}
	if stored.Timezone != pkg.Timezone {
		t.Errorf("stored timezone changed to %q", stored.Timezone)
	}
}

func TestConvertTimezone_DirectoryOutageAborts(t *testing.T) {
	t.Parallel()

	store := testfixtures.NewPackageStore()
	directory := testfixtures.NewDirectory()
	directory.Err = errors.New("connection refused")

	pkg := testfixtures.NewPackageFixture().Persistence()
	store.Seed(pkg, businessTree()...)

	service := application.NewConversionService(store, newResolver(directory), nil, nil, nil)

	_, err := service.ConvertTimezone(context.Background(), pkg.TenantID, pkg.ID, "America/Chicago")
	if !errors.Is(err, routing.ErrLookupUnavailable) {
		t.Fatalf("err = %v, want ErrLookupUnavailable", err)
	}
}

func TestConvertTimezone_Validation(t *testing.T) {
	t.Parallel()

	store := testfixtures.NewPackageStore()
	pkg := testfixtures.NewPackageFixture().Persistence()
	store.Seed(pkg)

	service := application.NewConversionService(store, newResolver(testfixtures.NewDirectory()), nil, nil, nil)

	tests := []struct {
		name      string
		tenantID  string
		packageID string
		timezone  string
		wantField string
		wantErr   error
	}{
		{name: "missing timezone", tenantID: pkg.TenantID, packageID: pkg.ID, timezone: " ", wantField: "timezone"},
		{name: "unknown timezone", tenantID: pkg.TenantID, packageID: pkg.ID, timezone: "Mars/Olympus", wantField: "timezone"},
		{name: "unknown package", tenantID: pkg.TenantID, packageID: "nope", timezone: "UTC", wantErr: application.ErrNotFound},
		{name: "wrong tenant", tenantID: "tenant-999", packageID: pkg.ID, timezone: "UTC", wantErr: application.ErrNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := service.ConvertTimezone(context.Background(), tc.tenantID, tc.packageID, tc.timezone)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("err = %v, want %v", err, tc.wantErr)
				}
				return
			}
			var vErr *application.ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("err = %v, want ValidationError", err)
			}
			if _, ok := vErr.FieldErrors[tc.wantField]; !ok {
				t.Errorf("field errors = %v, want %q", vErr.FieldErrors, tc.wantField)
			}
		})
	}
}

func TestConvertTimezone_SkipsDeletedAndExceptionProfiles(t *testing.T) {
	t.Parallel()

	store := testfixtures.NewPackageStore()
	directory := testfixtures.NewDirectory()
	seedDirectory(t, directory, "tenant-001")

	pkg := testfixtures.NewPackageFixture().Persistence()

	active := businessTree()[0]
	deleted := testfixtures.Profile("profile-deleted", testfixtures.Weekdays(),
		testfixtures.Segment("seg-x", 0, 1439,
			testfixtures.Choice("choice-x", 100, testfixtures.ExitTo("destination", "ghost"))))
	deleted.Deleted = true
	exception := testfixtures.Profile("profile-holiday", [7]bool{},
		testfixtures.Segment("seg-y", 0, 1439,
			testfixtures.Choice("choice-y", 100, testfixtures.ExitTo("destination", "ghost"))))
	exceptionDate := testfixtures.ReferenceTime()
	exception.ExceptionDate = &exceptionDate

	store.Seed(pkg, active, deleted, exception)

	service := application.NewConversionService(store, newResolver(directory), nil, nil, nil)

	// The ghost destination only appears in skipped profiles, so conversion
	// must succeed without resolution errors.
	result, err := service.ConvertTimezone(context.Background(), pkg.TenantID, pkg.ID, "UTC")
	if err != nil {
		t.Fatalf("ConvertTimezone returned error: %v", err)
	}
	if !result.Persisted {
		t.Fatal("expected persistence")
	}
	if len(result.Unresolved) != 0 {
		t.Errorf("unresolved = %v, want none", result.Unresolved)
	}
}
