package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/callroute-admin/internal/persistence"
	"github.com/example/callroute-admin/internal/schedule"
)

// CreatePackageInput carries the fields needed to register a routing package.
type CreatePackageInput struct {
	TenantID string
	Name     string
	Timezone string
}

// PackageService manages routing package records and read access to their
// schedule trees.
type PackageService struct {
	packages    persistence.PackageRepository
	offsets     schedule.OffsetProvider
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewPackageService wires dependencies for package operations.
func NewPackageService(packages persistence.PackageRepository, offsets schedule.OffsetProvider, idGenerator func() string, now func() time.Time, logger *slog.Logger) *PackageService {
	if offsets == nil {
		offsets = schedule.SystemOffsets{}
	}
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &PackageService{
		packages:    packages,
		offsets:     offsets,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

// CreatePackage validates the input and registers a new routing package with
// an empty schedule tree.
func (s *PackageService) CreatePackage(ctx context.Context, input CreatePackageInput) (persistence.Package, error) {
	if s == nil || s.packages == nil {
		return persistence.Package{}, fmt.Errorf("package service not configured")
	}

	vErr := &ValidationError{}
	if strings.TrimSpace(input.TenantID) == "" {
		vErr.add("tenant_id", "tenant id is required")
	}
	if strings.TrimSpace(input.Name) == "" {
		vErr.add("name", "name is required")
	}
	if strings.TrimSpace(input.Timezone) == "" {
		vErr.add("timezone", "timezone is required")
	} else if _, err := s.offsets.StandardUTCOffset(input.Timezone); err != nil {
		vErr.add("timezone", "unknown timezone")
	}
	if vErr.HasErrors() {
		return persistence.Package{}, vErr
	}

	createdAt := s.now()
	pkg := persistence.Package{
		ID:        s.idGenerator(),
		TenantID:  input.TenantID,
		Name:      strings.TrimSpace(input.Name),
		Timezone:  input.Timezone,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}

	if err := s.packages.CreatePackage(ctx, pkg); err != nil {
		return persistence.Package{}, mapRepoError(err)
	}

	serviceLogger(ctx, s.logger, "package", "create_package",
		"tenant_id", pkg.TenantID, "package_id", pkg.ID).
		InfoContext(ctx, "package created")

	return pkg, nil
}

// GetPackage loads one package header.
func (s *PackageService) GetPackage(ctx context.Context, tenantID, packageID string) (persistence.Package, error) {
	if s == nil || s.packages == nil {
		return persistence.Package{}, fmt.Errorf("package service not configured")
	}
	pkg, err := s.packages.GetPackage(ctx, tenantID, packageID)
	if err != nil {
		return persistence.Package{}, mapRepoError(err)
	}
	return pkg, nil
}

// GetPackageTree loads the package with its full profile tree.
func (s *PackageService) GetPackageTree(ctx context.Context, tenantID, packageID string) (persistence.PackageTree, error) {
	if s == nil || s.packages == nil {
		return persistence.PackageTree{}, fmt.Errorf("package service not configured")
	}
	tree, err := s.packages.GetPackageTree(ctx, tenantID, packageID)
	if err != nil {
		return persistence.PackageTree{}, mapRepoError(err)
	}
	return tree, nil
}

// ListPackages enumerates the tenant's packages.
func (s *PackageService) ListPackages(ctx context.Context, tenantID string) ([]persistence.Package, error) {
	if s == nil || s.packages == nil {
		return nil, fmt.Errorf("package service not configured")
	}
	return s.packages.ListPackages(ctx, tenantID)
}

// ListWeeklyRoutes enumerates the legacy weekly route rows the last
// conversion produced for the package.
func (s *PackageService) ListWeeklyRoutes(ctx context.Context, tenantID, packageID string) ([]persistence.WeeklyRoute, error) {
	if s == nil || s.packages == nil {
		return nil, fmt.Errorf("package service not configured")
	}
	routes, err := s.packages.ListWeeklyRoutes(ctx, tenantID, packageID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return routes, nil
}
