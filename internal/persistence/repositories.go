package persistence

import "context"

// PackageRepository stores routing packages and their schedule trees.
type PackageRepository interface {
	CreatePackage(ctx context.Context, pkg Package) error
	GetPackage(ctx context.Context, tenantID, id string) (Package, error)
	GetPackageTree(ctx context.Context, tenantID, id string) (PackageTree, error)
	ListPackages(ctx context.Context, tenantID string) ([]Package, error)
	// ReplaceSchedule atomically rewrites the package's profile/segment/choice
	// tree, its legacy weekly route rows, and its timezone. All-or-nothing: a
	// failure leaves the previous schedule untouched.
	ReplaceSchedule(ctx context.Context, tenantID, packageID string, replacement ReplacementSchedule) error
	ListWeeklyRoutes(ctx context.Context, tenantID, packageID string) ([]WeeklyRoute, error)
}

// ReplacementSchedule is the complete post-conversion state written in one
// transaction.
type ReplacementSchedule struct {
	Timezone string
	Profiles []ProfileTree
	Routes   []WeeklyRoute
}

// DirectoryRepository resolves exit references against the tenant's
// destination, label and prompt directories.
type DirectoryRepository interface {
	GetDestination(ctx context.Context, tenantID, value string) (Destination, error)
	GetLabel(ctx context.Context, tenantID, value string) (Label, error)
	GetPrompt(ctx context.Context, tenantID, value string) (Prompt, error)
	CreateDestination(ctx context.Context, destination Destination) error
	CreateLabel(ctx context.Context, label Label) error
	CreatePrompt(ctx context.Context, prompt Prompt) error
}
