package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

// migrations are applied in order exactly once each; applied versions are
// tracked in schema_migrations.
var migrations = []string{
	`CREATE TABLE packages (
		id         TEXT PRIMARY KEY,
		tenant_id  TEXT NOT NULL,
		name       TEXT NOT NULL,
		timezone   TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	CREATE INDEX idx_packages_tenant ON packages(tenant_id);

	CREATE TABLE route_profiles (
		id             TEXT PRIMARY KEY,
		package_id     TEXT NOT NULL REFERENCES packages(id) ON DELETE CASCADE,
		position       INTEGER NOT NULL,
		sunday         INTEGER NOT NULL DEFAULT 0,
		monday         INTEGER NOT NULL DEFAULT 0,
		tuesday        INTEGER NOT NULL DEFAULT 0,
		wednesday      INTEGER NOT NULL DEFAULT 0,
		thursday       INTEGER NOT NULL DEFAULT 0,
		friday         INTEGER NOT NULL DEFAULT 0,
		saturday       INTEGER NOT NULL DEFAULT 0,
		exception_date TEXT,
		deleted        INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX idx_route_profiles_package ON route_profiles(package_id);

	CREATE TABLE day_segments (
		id           TEXT PRIMARY KEY,
		profile_id   TEXT NOT NULL REFERENCES route_profiles(id) ON DELETE CASCADE,
		position     INTEGER NOT NULL,
		start_minute INTEGER NOT NULL CHECK (start_minute BETWEEN 0 AND 1438),
		end_minute   INTEGER NOT NULL CHECK (end_minute BETWEEN 1 AND 1439)
	);
	CREATE INDEX idx_day_segments_profile ON day_segments(profile_id);

	CREATE TABLE routing_choices (
		id         TEXT PRIMARY KEY,
		segment_id TEXT NOT NULL REFERENCES day_segments(id) ON DELETE CASCADE,
		position   INTEGER NOT NULL,
		percentage INTEGER NOT NULL CHECK (percentage BETWEEN 0 AND 100),
		deleted    INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX idx_routing_choices_segment ON routing_choices(segment_id);

	CREATE TABLE exit_refs (
		id            TEXT PRIMARY KEY,
		choice_id     TEXT NOT NULL REFERENCES routing_choices(id) ON DELETE CASCADE,
		position      INTEGER NOT NULL,
		kind          TEXT NOT NULL CHECK (kind IN ('destination', 'label', 'prompt')),
		value         TEXT NOT NULL,
		dequeue_value TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX idx_exit_refs_choice ON exit_refs(choice_id);`,

	`CREATE TABLE weekly_routes (
		id           TEXT PRIMARY KEY,
		package_id   TEXT NOT NULL REFERENCES packages(id) ON DELETE CASCADE,
		position     INTEGER NOT NULL,
		day_mask     INTEGER NOT NULL,
		start_minute INTEGER NOT NULL,
		end_minute   INTEGER NOT NULL,
		percentage   INTEGER NOT NULL
	);
	CREATE INDEX idx_weekly_routes_package ON weekly_routes(package_id);

	CREATE TABLE weekly_route_exits (
		route_id      TEXT NOT NULL REFERENCES weekly_routes(id) ON DELETE CASCADE,
		position      INTEGER NOT NULL,
		kind          TEXT NOT NULL,
		value         TEXT NOT NULL,
		dequeue_value TEXT NOT NULL DEFAULT '',
		entity_id     TEXT NOT NULL DEFAULT '',
		type_code     TEXT NOT NULL DEFAULT '',
		transfer_code TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (route_id, position)
	);`,

	`CREATE TABLE destinations (
		id          TEXT PRIMARY KEY,
		tenant_id   TEXT NOT NULL,
		value       TEXT NOT NULL,
		is_queue    INTEGER NOT NULL DEFAULT 0,
		is_mappable INTEGER NOT NULL DEFAULT 0,
		UNIQUE (tenant_id, value)
	);

	CREATE TABLE labels (
		id        TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL,
		value     TEXT NOT NULL,
		UNIQUE (tenant_id, value)
	);

	CREATE TABLE prompts (
		id           TEXT PRIMARY KEY,
		tenant_id    TEXT NOT NULL,
		value        TEXT NOT NULL,
		after_prompt TEXT NOT NULL CHECK (after_prompt IN ('continue', 'stop')),
		UNIQUE (tenant_id, value)
	);`,
}

// Migrate brings the schema up to date. Safe to call on every start.
func (d *DB) Migrate(ctx context.Context) error {
	_, err := d.sql.ExecContext(ctx,
		`CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INTEGER PRIMARY KEY,
			applied_at TEXT NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("sqlite: create schema_migrations: %w", err)
	}

	for version, statements := range migrations {
		applied, err := d.migrationApplied(ctx, version)
		if err != nil {
			return err
		}
		if applied {
			continue
		}

		err = d.WithTransaction(ctx, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, statements); err != nil {
				return fmt.Errorf("sqlite: migration %d: %w", version, err)
			}
			_, err := tx.ExecContext(ctx,
				"INSERT INTO schema_migrations (version, applied_at) VALUES (?, datetime('now'))",
				version)
			if err != nil {
				return fmt.Errorf("sqlite: record migration %d: %w", version, err)
			}
			return nil
		})
		if err != nil {
			return err
		}
	}

	return nil
}

func (d *DB) migrationApplied(ctx context.Context, version int) (bool, error) {
	var count int
	err := d.sql.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM schema_migrations WHERE version = ?", version).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("sqlite: check migration %d: %w", version, err)
	}
	return count > 0, nil
}
