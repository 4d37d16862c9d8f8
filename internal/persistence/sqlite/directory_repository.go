package sqlite

import (
	"context"

	"github.com/example/callroute-admin/internal/persistence"
)

// DirectoryRepository implements persistence.DirectoryRepository on SQLite.
type DirectoryRepository struct {
	db *DB
}

// NewDirectoryRepository creates a repository over the shared connection.
func NewDirectoryRepository(db *DB) *DirectoryRepository {
	return &DirectoryRepository{db: db}
}

// GetDestination loads one destination by tenant-scoped value.
func (r *DirectoryRepository) GetDestination(ctx context.Context, tenantID, value string) (persistence.Destination, error) {
	var dest persistence.Destination
	var isQueue, isMappable int
	err := r.db.sql.QueryRowContext(ctx,
		`SELECT id, tenant_id, value, is_queue, is_mappable
		 FROM destinations WHERE tenant_id = ? AND value = ?`, tenantID, value).
		Scan(&dest.ID, &dest.TenantID, &dest.Value, &isQueue, &isMappable)
	if err != nil {
		return persistence.Destination{}, mapError(err)
	}
	dest.IsQueue = isQueue != 0
	dest.IsMappable = isMappable != 0
	return dest, nil
}

// GetLabel loads one label by tenant-scoped value.
func (r *DirectoryRepository) GetLabel(ctx context.Context, tenantID, value string) (persistence.Label, error) {
	var label persistence.Label
	err := r.db.sql.QueryRowContext(ctx,
		"SELECT id, tenant_id, value FROM labels WHERE tenant_id = ? AND value = ?",
		tenantID, value).
		Scan(&label.ID, &label.TenantID, &label.Value)
	if err != nil {
		return persistence.Label{}, mapError(err)
	}
	return label, nil
}

// GetPrompt loads one prompt by tenant-scoped value.
func (r *DirectoryRepository) GetPrompt(ctx context.Context, tenantID, value string) (persistence.Prompt, error) {
	var prompt persistence.Prompt
	err := r.db.sql.QueryRowContext(ctx,
		`SELECT id, tenant_id, value, after_prompt
		 FROM prompts WHERE tenant_id = ? AND value = ?`, tenantID, value).
		Scan(&prompt.ID, &prompt.TenantID, &prompt.Value, &prompt.AfterPrompt)
	if err != nil {
		return persistence.Prompt{}, mapError(err)
	}
	return prompt, nil
}

// CreateDestination inserts a directory destination.
func (r *DirectoryRepository) CreateDestination(ctx context.Context, destination persistence.Destination) error {
	_, err := r.db.sql.ExecContext(ctx,
		`INSERT INTO destinations (id, tenant_id, value, is_queue, is_mappable)
		 VALUES (?, ?, ?, ?, ?)`,
		destination.ID, destination.TenantID, destination.Value,
		boolToInt(destination.IsQueue), boolToInt(destination.IsMappable))
	return mapError(err)
}

// CreateLabel inserts a directory label.
func (r *DirectoryRepository) CreateLabel(ctx context.Context, label persistence.Label) error {
	_, err := r.db.sql.ExecContext(ctx,
		"INSERT INTO labels (id, tenant_id, value) VALUES (?, ?, ?)",
		label.ID, label.TenantID, label.Value)
	return mapError(err)
}

// CreatePrompt inserts a directory prompt.
func (r *DirectoryRepository) CreatePrompt(ctx context.Context, prompt persistence.Prompt) error {
	_, err := r.db.sql.ExecContext(ctx,
		`INSERT INTO prompts (id, tenant_id, value, after_prompt) VALUES (?, ?, ?, ?)`,
		prompt.ID, prompt.TenantID, prompt.Value, prompt.AfterPrompt)
	return mapError(err)
}
