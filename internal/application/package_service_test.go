package application_test

import (
	"context"
	"errors"
	"testing"

	"github.com/example/callroute-admin/internal/application"
	"github.com/example/callroute-admin/internal/testfixtures"
)

func TestCreatePackage(t *testing.T) {
	t.Parallel()

	store := testfixtures.NewPackageStore()
	ids := testfixtures.NewIDGenerator("pkg")
	clock := testfixtures.NewClock(testfixtures.ReferenceTime())

	service := application.NewPackageService(store, nil, ids.NextFunc(), clock.NowFunc(), nil)

	pkg, err := service.CreatePackage(context.Background(), application.CreatePackageInput{
		TenantID: "tenant-001",
		Name:     "  Main Line  ",
		Timezone: "America/Denver",
	})
	if err != nil {
		t.Fatalf("CreatePackage returned error: %v", err)
	}
	if pkg.ID != "pkg-1" {
		t.Errorf("id = %q, want pkg-1", pkg.ID)
	}
	if pkg.Name != "Main Line" {
		t.Errorf("name = %q, want trimmed", pkg.Name)
	}
	if !pkg.CreatedAt.Equal(testfixtures.ReferenceTime()) {
		t.Errorf("created at = %v", pkg.CreatedAt)
	}

	loaded, err := service.GetPackage(context.Background(), "tenant-001", pkg.ID)
	if err != nil {
		t.Fatalf("GetPackage returned error: %v", err)
	}
	if loaded.Timezone != "America/Denver" {
		t.Errorf("timezone = %q", loaded.Timezone)
	}
}

func TestCreatePackage_Validation(t *testing.T) {
	t.Parallel()

	service := application.NewPackageService(testfixtures.NewPackageStore(), nil, nil, nil, nil)

	tests := []struct {
		name      string
		input     application.CreatePackageInput
		wantField string
	}{
		{
			name:      "missing tenant",
			input:     application.CreatePackageInput{Name: "Main", Timezone: "UTC"},
			wantField: "tenant_id",
		},
		{
			name:      "missing name",
			input:     application.CreatePackageInput{TenantID: "tenant-001", Timezone: "UTC"},
			wantField: "name",
		},
		{
			name:      "missing timezone",
			input:     application.CreatePackageInput{TenantID: "tenant-001", Name: "Main"},
			wantField: "timezone",
		},
		{
			name:      "unknown timezone",
			input:     application.CreatePackageInput{TenantID: "tenant-001", Name: "Main", Timezone: "Atlantis/Reef"},
			wantField: "timezone",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := service.CreatePackage(context.Background(), tc.input)
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

func TestCreatePackage_Duplicate(t *testing.T) {
	t.Parallel()

	store := testfixtures.NewPackageStore()
	service := application.NewPackageService(store, nil, func() string { return "fixed-id" }, nil, nil)

	input := application.CreatePackageInput{TenantID: "tenant-001", Name: "Main", Timezone: "UTC"}
	if _, err := service.CreatePackage(context.Background(), input); err != nil {
		t.Fatalf("first create returned error: %v", err)
	}
	if _, err := service.CreatePackage(context.Background(), input); !errors.Is(err, application.ErrAlreadyExists) {
		t.Fatalf("err = %v, want ErrAlreadyExists", err)
	}
}
