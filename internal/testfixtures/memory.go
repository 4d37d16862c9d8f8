package testfixtures

import (
	"context"
	"sync"

	"github.com/example/callroute-admin/internal/persistence"
)

// PackageStore is an in-memory persistence.PackageRepository for service
// tests. ReplaceErr, when set, is returned by ReplaceSchedule to simulate a
// storage failure.
type PackageStore struct {
	mu       sync.Mutex
	packages map[string]persistence.Package
	trees    map[string][]persistence.ProfileTree
	routes   map[string][]persistence.WeeklyRoute

	ReplaceErr error
}

// NewPackageStore returns an empty store.
func NewPackageStore() *PackageStore {
	return &PackageStore{
		packages: make(map[string]persistence.Package),
		trees:    make(map[string][]persistence.ProfileTree),
		routes:   make(map[string][]persistence.WeeklyRoute),
	}
}

// Seed installs a package with its profile tree, bypassing validation.
func (s *PackageStore) Seed(pkg persistence.Package, profiles ...persistence.ProfileTree) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.packages[pkg.ID] = pkg
	s.trees[pkg.ID] = profiles
}

// CreatePackage implements persistence.PackageRepository.
func (s *PackageStore) CreatePackage(_ context.Context, pkg persistence.Package) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.packages[pkg.ID]; ok {
		return persistence.ErrDuplicate
	}
	s.packages[pkg.ID] = pkg
	return nil
}

// GetPackage implements persistence.PackageRepository.
func (s *PackageStore) GetPackage(_ context.Context, tenantID, id string) (persistence.Package, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pkg, ok := s.packages[id]
	if !ok || pkg.TenantID != tenantID {
		return persistence.Package{}, persistence.ErrNotFound
	}
	return pkg, nil
}

// GetPackageTree implements persistence.PackageRepository.
func (s *PackageStore) GetPackageTree(_ context.Context, tenantID, id string) (persistence.PackageTree, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pkg, ok := s.packages[id]
	if !ok || pkg.TenantID != tenantID {
		return persistence.PackageTree{}, persistence.ErrNotFound
	}
	return persistence.PackageTree{Package: pkg, Profiles: s.trees[id]}, nil
}

// ListPackages implements persistence.PackageRepository.
func (s *PackageStore) ListPackages(_ context.Context, tenantID string) ([]persistence.Package, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []persistence.Package
	for _, pkg := range s.packages {
		if pkg.TenantID == tenantID {
			result = append(result, pkg)
		}
	}
	return result, nil
}

// ReplaceSchedule implements persistence.PackageRepository.
func (s *PackageStore) ReplaceSchedule(_ context.Context, tenantID, packageID string, replacement persistence.ReplacementSchedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ReplaceErr != nil {
		return s.ReplaceErr
	}
	pkg, ok := s.packages[packageID]
	if !ok || pkg.TenantID != tenantID {
		return persistence.ErrNotFound
	}
	pkg.Timezone = replacement.Timezone
	s.packages[packageID] = pkg
	s.trees[packageID] = replacement.Profiles
	s.routes[packageID] = replacement.Routes
	return nil
}

// ListWeeklyRoutes implements persistence.PackageRepository.
func (s *PackageStore) ListWeeklyRoutes(_ context.Context, tenantID, packageID string) ([]persistence.WeeklyRoute, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pkg, ok := s.packages[packageID]
	if !ok || pkg.TenantID != tenantID {
		return nil, persistence.ErrNotFound
	}
	return s.routes[packageID], nil
}

// Directory is an in-memory persistence.DirectoryRepository. Err, when set,
// is returned by every lookup to simulate an outage.
type Directory struct {
	mu           sync.Mutex
	destinations map[string]persistence.Destination
	labels       map[string]persistence.Label
	prompts      map[string]persistence.Prompt

	Err error
}

// NewDirectory returns an empty directory.
func NewDirectory() *Directory {
	return &Directory{
		destinations: make(map[string]persistence.Destination),
		labels:       make(map[string]persistence.Label),
		prompts:      make(map[string]persistence.Prompt),
	}
}

func directoryKey(tenantID, value string) string {
	return tenantID + "/" + value
}

// GetDestination implements persistence.DirectoryRepository.
func (d *Directory) GetDestination(_ context.Context, tenantID, value string) (persistence.Destination, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return persistence.Destination{}, d.Err
	}
	dest, ok := d.destinations[directoryKey(tenantID, value)]
	if !ok {
		return persistence.Destination{}, persistence.ErrNotFound
	}
	return dest, nil
}

// GetLabel implements persistence.DirectoryRepository.
func (d *Directory) GetLabel(_ context.Context, tenantID, value string) (persistence.Label, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return persistence.Label{}, d.Err
	}
	label, ok := d.labels[directoryKey(tenantID, value)]
	if !ok {
		return persistence.Label{}, persistence.ErrNotFound
	}
	return label, nil
}

// GetPrompt implements persistence.DirectoryRepository.
func (d *Directory) GetPrompt(_ context.Context, tenantID, value string) (persistence.Prompt, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return persistence.Prompt{}, d.Err
	}
	prompt, ok := d.prompts[directoryKey(tenantID, value)]
	if !ok {
		return persistence.Prompt{}, persistence.ErrNotFound
	}
	return prompt, nil
}

// CreateDestination implements persistence.DirectoryRepository.
func (d *Directory) CreateDestination(_ context.Context, destination persistence.Destination) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	key := directoryKey(destination.TenantID, destination.Value)
	if _, ok := d.destinations[key]; ok {
		return persistence.ErrDuplicate
	}
	d.destinations[key] = destination
	return nil
}

// CreateLabel implements persistence.DirectoryRepository.
func (d *Directory) CreateLabel(_ context.Context, label persistence.Label) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	key := directoryKey(label.TenantID, label.Value)
	if _, ok := d.labels[key]; ok {
		return persistence.ErrDuplicate
	}
	d.labels[key] = label
	return nil
}

// CreatePrompt implements persistence.DirectoryRepository.
func (d *Directory) CreatePrompt(_ context.Context, prompt persistence.Prompt) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	key := directoryKey(prompt.TenantID, prompt.Value)
	if _, ok := d.prompts[key]; ok {
		return persistence.ErrDuplicate
	}
	d.prompts[key] = prompt
	return nil
}
