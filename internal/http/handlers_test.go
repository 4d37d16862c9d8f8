package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/example/callroute-admin/internal/application"
	"github.com/example/callroute-admin/internal/persistence"
	"github.com/example/callroute-admin/internal/routing"
	"github.com/example/callroute-admin/internal/testfixtures"
)

type testEnv struct {
	handler http.Handler
	store   *testfixtures.PackageStore
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()

	store := testfixtures.NewPackageStore()
	directory := testfixtures.NewDirectory()
	ctx := context.Background()

	seed := []error{
		directory.CreateDestination(ctx, persistence.Destination{ID: "dest-sales", TenantID: "tenant-001", Value: "sales"}),
		directory.CreatePrompt(ctx, persistence.Prompt{ID: "prompt-closed", TenantID: "tenant-001", Value: "closed", AfterPrompt: "stop"}),
	}
	for _, err := range seed {
		if err != nil {
			t.Fatalf("seed directory: %v", err)
		}
	}

	lookups := application.NewDirectoryLookups(directory)
	resolver := routing.NewResolver(lookups, lookups, lookups)
	ids := testfixtures.NewIDGenerator("id")
	clock := testfixtures.NewClock(testfixtures.ReferenceTime())

	packages := application.NewPackageService(store, nil, ids.NextFunc(), clock.NowFunc(), nil)
	conversions := application.NewConversionService(store, resolver, nil, ids.NextFunc(), nil)
	validations := application.NewValidationService(store, nil)

	handler := NewRouter(RouterConfig{
		Packages:    NewPackageHandler(packages, nil),
		Conversions: NewConversionHandler(conversions, nil),
		Coverage:    NewCoverageHandler(validations, nil),
	})

	return testEnv{handler: handler, store: store}
}

func (e testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("{}")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(target); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
}

func seedConvertiblePackage(e testEnv) persistence.Package {
	pkg := testfixtures.NewPackageFixture(
		testfixtures.WithPackageID("pkg-main"),
		testfixtures.WithPackageTimezone("America/New_York"),
	).Persistence()
	e.store.Seed(pkg,
		testfixtures.Profile("profile-1", testfixtures.AllWeek(),
			testfixtures.Segment("seg-1", 0, 539,
				testfixtures.Choice("choice-1", 100, testfixtures.ExitTo("prompt", "closed"))),
			testfixtures.Segment("seg-2", 540, 1439,
				testfixtures.Choice("choice-2", 100, testfixtures.ExitTo("destination", "sales"))),
		),
	)
	return pkg
}

func TestPackageEndpoints(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	t.Run("create", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/tenants/tenant-001/packages",
			`{"name":"Main Line","timezone":"America/Denver"}`)
		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
		}
		var resp struct {
			Package struct {
				ID       string `json:"id"`
				Timezone string `json:"timezone"`
			} `json:"package"`
		}
		decodeBody(t, rec, &resp)
		if resp.Package.ID == "" || resp.Package.Timezone != "America/Denver" {
			t.Errorf("package = %+v", resp.Package)
		}
	})

	t.Run("create rejects unknown timezone", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/tenants/tenant-001/packages",
			`{"name":"Broken","timezone":"Atlantis/Reef"}`)
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("create rejects malformed body", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/tenants/tenant-001/packages", `{"name":`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d", rec.Code)
		}
	})

	t.Run("get returns the tree", func(t *testing.T) {
		seedConvertiblePackage(env)
		rec := env.do(t, http.MethodGet, "/tenants/tenant-001/packages/pkg-main", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
		}
		var resp struct {
			Profiles []struct {
				ID       string `json:"id"`
				Segments []struct {
					StartMinute int `json:"start_minute"`
				} `json:"segments"`
			} `json:"profiles"`
		}
		decodeBody(t, rec, &resp)
		if len(resp.Profiles) != 1 || len(resp.Profiles[0].Segments) != 2 {
			t.Errorf("profiles = %+v", resp.Profiles)
		}
	})

	t.Run("get unknown package is 404", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/tenants/tenant-001/packages/ghost", "")
		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d", rec.Code)
		}
	})

	t.Run("cross tenant access is 404", func(t *testing.T) {
		seedConvertiblePackage(env)
		rec := env.do(t, http.MethodGet, "/tenants/tenant-999/packages/pkg-main", "")
		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d", rec.Code)
		}
	})
}

func TestConversionEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("converts and persists", func(t *testing.T) {
		env := newTestEnv(t)
		pkg := seedConvertiblePackage(env)

		rec := env.do(t, http.MethodPost,
			"/tenants/tenant-001/packages/pkg-main/timezone-conversions",
			`{"timezone":"America/Chicago"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
		}

		var resp struct {
			Conversion struct {
				Persisted     bool   `json:"persisted"`
				OffsetMinutes int    `json:"offset_minutes"`
				Timezone      string `json:"timezone"`
				Routes        []struct {
					Exits []struct {
						TypeCode string `json:"type_code"`
					} `json:"exits"`
				} `json:"routes"`
			} `json:"conversion"`
		}
		decodeBody(t, rec, &resp)
		if !resp.Conversion.Persisted || resp.Conversion.OffsetMinutes != -60 {
			t.Errorf("conversion = %+v", resp.Conversion)
		}
		if len(resp.Conversion.Routes) == 0 {
			t.Error("expected route rows in response")
		}

		stored, err := env.store.GetPackageTree(context.Background(), pkg.TenantID, pkg.ID)
		if err != nil {
			t.Fatalf("GetPackageTree returned error: %v", err)
		}
		if stored.Timezone != "America/Chicago" {
			t.Errorf("stored timezone = %q", stored.Timezone)
		}
	})

	t.Run("unresolved exits return 422 with preview", func(t *testing.T) {
		env := newTestEnv(t)
		pkg := testfixtures.NewPackageFixture(testfixtures.WithPackageID("pkg-bad")).Persistence()
		env.store.Seed(pkg,
			testfixtures.Profile("profile-1", testfixtures.AllWeek(),
				testfixtures.Segment("seg-1", 0, 1439,
					testfixtures.Choice("choice-1", 100, testfixtures.ExitTo("destination", "ghost")))),
		)

		rec := env.do(t, http.MethodPost,
			"/tenants/tenant-001/packages/pkg-bad/timezone-conversions",
			`{"timezone":"UTC"}`)
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
		}

		var resp struct {
			Message    string `json:"message"`
			Conversion struct {
				Persisted  bool     `json:"persisted"`
				Unresolved []string `json:"unresolved"`
			} `json:"conversion"`
		}
		decodeBody(t, rec, &resp)
		if resp.Conversion.Persisted {
			t.Error("unresolved conversion must not persist")
		}
		if len(resp.Conversion.Unresolved) == 0 {
			t.Error("expected unresolved messages in preview")
		}
	})

	t.Run("unknown package is 404", func(t *testing.T) {
		env := newTestEnv(t)
		rec := env.do(t, http.MethodPost,
			"/tenants/tenant-001/packages/ghost/timezone-conversions",
			`{"timezone":"UTC"}`)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d", rec.Code)
		}
	})
}

func TestCoverageEndpoint(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	pkg := testfixtures.NewPackageFixture(testfixtures.WithPackageID("pkg-gaps")).Persistence()
	env.store.Seed(pkg,
		testfixtures.Profile("profile-1", testfixtures.Weekdays(),
			testfixtures.Segment("seg-1", 0, 539,
				testfixtures.Choice("choice-1", 100, testfixtures.ExitTo("prompt", "closed")))),
	)

	rec := env.do(t, http.MethodGet, "/tenants/tenant-001/packages/pkg-gaps/coverage", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Valid    bool `json:"valid"`
		Findings []struct {
			Code   string `json:"code"`
			Day    int    `json:"day"`
			Minute int    `json:"minute"`
		} `json:"findings"`
	}
	decodeBody(t, rec, &resp)
	if resp.Valid {
		t.Error("expected findings for gappy schedule")
	}

	var sawDayNotSet, sawGap bool
	for _, finding := range resp.Findings {
		switch finding.Code {
		case "day_not_set":
			sawDayNotSet = true
		case "gap":
			if finding.Minute != 540 {
				t.Errorf("gap minute = %d, want 540", finding.Minute)
			}
			sawGap = true
		}
	}
	if !sawDayNotSet || !sawGap {
		t.Errorf("findings = %+v", resp.Findings)
	}
}
