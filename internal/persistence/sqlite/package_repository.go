package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/callroute-admin/internal/persistence"
)

// PackageRepository implements persistence.PackageRepository on SQLite.
type PackageRepository struct {
	db  *DB
	now func() time.Time
}

// NewPackageRepository creates a repository over the shared connection. The
// now function stamps created/updated times; nil defaults to time.Now.
func NewPackageRepository(db *DB, now func() time.Time) *PackageRepository {
	if now == nil {
		now = time.Now
	}
	return &PackageRepository{db: db, now: now}
}

// CreatePackage inserts a new, empty routing package.
func (r *PackageRepository) CreatePackage(ctx context.Context, pkg persistence.Package) error {
	stamp := r.now().UTC().Format(time.RFC3339)
	_, err := r.db.sql.ExecContext(ctx,
		`INSERT INTO packages (id, tenant_id, name, timezone, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		pkg.ID, pkg.TenantID, pkg.Name, pkg.Timezone, stamp, stamp)
	return mapError(err)
}

// GetPackage loads one package header scoped to the tenant.
func (r *PackageRepository) GetPackage(ctx context.Context, tenantID, id string) (persistence.Package, error) {
	row := r.db.sql.QueryRowContext(ctx,
		`SELECT id, tenant_id, name, timezone, created_at, updated_at
		 FROM packages WHERE tenant_id = ? AND id = ?`, tenantID, id)
	return scanPackage(row)
}

// ListPackages enumerates the tenant's packages ordered by name.
func (r *PackageRepository) ListPackages(ctx context.Context, tenantID string) ([]persistence.Package, error) {
	rows, err := r.db.sql.QueryContext(ctx,
		`SELECT id, tenant_id, name, timezone, created_at, updated_at
		 FROM packages WHERE tenant_id = ? ORDER BY name, id`, tenantID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var packages []persistence.Package
	for rows.Next() {
		pkg, err := scanPackage(rows)
		if err != nil {
			return nil, err
		}
		packages = append(packages, pkg)
	}
	return packages, mapError(rows.Err())
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPackage(row rowScanner) (persistence.Package, error) {
	var pkg persistence.Package
	var createdAt, updatedAt string
	err := row.Scan(&pkg.ID, &pkg.TenantID, &pkg.Name, &pkg.Timezone, &createdAt, &updatedAt)
	if err != nil {
		return persistence.Package{}, mapError(err)
	}
	if pkg.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return persistence.Package{}, fmt.Errorf("sqlite: parse created_at: %w", err)
	}
	if pkg.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return persistence.Package{}, fmt.Errorf("sqlite: parse updated_at: %w", err)
	}
	return pkg, nil
}

// GetPackageTree loads the full profile/segment/choice/exit tree of a
// package.
func (r *PackageRepository) GetPackageTree(ctx context.Context, tenantID, id string) (persistence.PackageTree, error) {
	pkg, err := r.GetPackage(ctx, tenantID, id)
	if err != nil {
		return persistence.PackageTree{}, err
	}

	profiles, err := r.loadProfiles(ctx, id)
	if err != nil {
		return persistence.PackageTree{}, err
	}

	return persistence.PackageTree{Package: pkg, Profiles: profiles}, nil
}

func (r *PackageRepository) loadProfiles(ctx context.Context, packageID string) ([]persistence.ProfileTree, error) {
	rows, err := r.db.sql.QueryContext(ctx,
		`SELECT id, package_id, position, sunday, monday, tuesday, wednesday, thursday, friday, saturday,
		        exception_date, deleted
		 FROM route_profiles WHERE package_id = ? ORDER BY position, id`, packageID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var profiles []persistence.ProfileTree
	for rows.Next() {
		var profile persistence.ProfileTree
		var days [7]int
		var exceptionDate sql.NullString
		var deleted int
		err := rows.Scan(&profile.ID, &profile.PackageID, &profile.Position,
			&days[0], &days[1], &days[2], &days[3], &days[4], &days[5], &days[6],
			&exceptionDate, &deleted)
		if err != nil {
			return nil, mapError(err)
		}
		for i, v := range days {
			profile.Days[i] = v != 0
		}
		profile.Deleted = deleted != 0
		if exceptionDate.Valid {
			parsed, err := time.Parse("2006-01-02", exceptionDate.String)
			if err != nil {
				return nil, fmt.Errorf("sqlite: parse exception_date: %w", err)
			}
			profile.ExceptionDate = &parsed
		}
		profiles = append(profiles, profile)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}

	for i := range profiles {
		segments, err := r.loadSegments(ctx, profiles[i].ID)
		if err != nil {
			return nil, err
		}
		profiles[i].Segments = segments
	}
	return profiles, nil
}

func (r *PackageRepository) loadSegments(ctx context.Context, profileID string) ([]persistence.SegmentTree, error) {
	rows, err := r.db.sql.QueryContext(ctx,
		`SELECT id, profile_id, position, start_minute, end_minute
		 FROM day_segments WHERE profile_id = ? ORDER BY position, id`, profileID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var segments []persistence.SegmentTree
	for rows.Next() {
		var segment persistence.SegmentTree
		err := rows.Scan(&segment.ID, &segment.ProfileID, &segment.Position,
			&segment.StartMinute, &segment.EndMinute)
		if err != nil {
			return nil, mapError(err)
		}
		segments = append(segments, segment)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}

	for i := range segments {
		choices, err := r.loadChoices(ctx, segments[i].ID)
		if err != nil {
			return nil, err
		}
		segments[i].Choices = choices
	}
	return segments, nil
}

func (r *PackageRepository) loadChoices(ctx context.Context, segmentID string) ([]persistence.ChoiceTree, error) {
	rows, err := r.db.sql.QueryContext(ctx,
		`SELECT id, segment_id, position, percentage, deleted
		 FROM routing_choices WHERE segment_id = ? ORDER BY position, id`, segmentID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var choices []persistence.ChoiceTree
	for rows.Next() {
		var choice persistence.ChoiceTree
		var deleted int
		err := rows.Scan(&choice.ID, &choice.SegmentID, &choice.Position,
			&choice.Percentage, &deleted)
		if err != nil {
			return nil, mapError(err)
		}
		choice.Deleted = deleted != 0
		choices = append(choices, choice)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}

	for i := range choices {
		exits, err := r.loadExitRefs(ctx, choices[i].ID)
		if err != nil {
			return nil, err
		}
		choices[i].Exits = exits
	}
	return choices, nil
}

func (r *PackageRepository) loadExitRefs(ctx context.Context, choiceID string) ([]persistence.ExitRef, error) {
	rows, err := r.db.sql.QueryContext(ctx,
		`SELECT id, choice_id, position, kind, value, dequeue_value
		 FROM exit_refs WHERE choice_id = ? ORDER BY position, id`, choiceID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var refs []persistence.ExitRef
	for rows.Next() {
		var ref persistence.ExitRef
		err := rows.Scan(&ref.ID, &ref.ChoiceID, &ref.Position, &ref.Kind, &ref.Value, &ref.DequeueValue)
		if err != nil {
			return nil, mapError(err)
		}
		refs = append(refs, ref)
	}
	return refs, mapError(rows.Err())
}

// ReplaceSchedule rewrites the package's entire schedule tree, weekly route
// rows and timezone inside one transaction.
func (r *PackageRepository) ReplaceSchedule(ctx context.Context, tenantID, packageID string, replacement persistence.ReplacementSchedule) error {
	return r.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		var owner string
		err := tx.QueryRowContext(ctx,
			"SELECT tenant_id FROM packages WHERE tenant_id = ? AND id = ?",
			tenantID, packageID).Scan(&owner)
		if err != nil {
			return mapError(err)
		}

		for _, table := range []string{"route_profiles", "weekly_routes"} {
			if _, err := tx.ExecContext(ctx,
				fmt.Sprintf("DELETE FROM %s WHERE package_id = ?", table), packageID); err != nil {
				return mapError(err)
			}
		}

		for _, profile := range replacement.Profiles {
			if err := insertProfileTree(ctx, tx, packageID, profile); err != nil {
				return err
			}
		}
		for _, route := range replacement.Routes {
			if err := insertWeeklyRoute(ctx, tx, packageID, route); err != nil {
				return err
			}
		}

		_, err = tx.ExecContext(ctx,
			"UPDATE packages SET timezone = ?, updated_at = ? WHERE id = ?",
			replacement.Timezone, r.now().UTC().Format(time.RFC3339), packageID)
		return mapError(err)
	})
}

func insertProfileTree(ctx context.Context, tx *sql.Tx, packageID string, profile persistence.ProfileTree) error {
	var exceptionDate any
	if profile.ExceptionDate != nil {
		exceptionDate = profile.ExceptionDate.Format("2006-01-02")
	}
	_, err := tx.ExecContext(ctx,
		`INSERT INTO route_profiles
		 (id, package_id, position, sunday, monday, tuesday, wednesday, thursday, friday, saturday, exception_date, deleted)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		profile.ID, packageID, profile.Position,
		boolToInt(profile.Days[0]), boolToInt(profile.Days[1]), boolToInt(profile.Days[2]),
		boolToInt(profile.Days[3]), boolToInt(profile.Days[4]), boolToInt(profile.Days[5]),
		boolToInt(profile.Days[6]), exceptionDate, boolToInt(profile.Deleted))
	if err != nil {
		return mapError(err)
	}

	for _, segment := range profile.Segments {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO day_segments (id, profile_id, position, start_minute, end_minute)
			 VALUES (?, ?, ?, ?, ?)`,
			segment.ID, profile.ID, segment.Position, segment.StartMinute, segment.EndMinute)
		if err != nil {
			return mapError(err)
		}

		for _, choice := range segment.Choices {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO routing_choices (id, segment_id, position, percentage, deleted)
				 VALUES (?, ?, ?, ?, ?)`,
				choice.ID, segment.ID, choice.Position, choice.Percentage, boolToInt(choice.Deleted))
			if err != nil {
				return mapError(err)
			}

			for _, ref := range choice.Exits {
				_, err := tx.ExecContext(ctx,
					`INSERT INTO exit_refs (id, choice_id, position, kind, value, dequeue_value)
					 VALUES (?, ?, ?, ?, ?, ?)`,
					ref.ID, choice.ID, ref.Position, ref.Kind, ref.Value, ref.DequeueValue)
				if err != nil {
					return mapError(err)
				}
			}
		}
	}
	return nil
}

func insertWeeklyRoute(ctx context.Context, tx *sql.Tx, packageID string, route persistence.WeeklyRoute) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO weekly_routes (id, package_id, position, day_mask, start_minute, end_minute, percentage)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		route.ID, packageID, route.Position, route.DayMask, route.StartMinute, route.EndMinute, route.Percentage)
	if err != nil {
		return mapError(err)
	}

	for _, exit := range route.Exits {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO weekly_route_exits
			 (route_id, position, kind, value, dequeue_value, entity_id, type_code, transfer_code)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			route.ID, exit.Position, exit.Kind, exit.Value, exit.DequeueValue,
			exit.EntityID, exit.TypeCode, exit.TransferCode)
		if err != nil {
			return mapError(err)
		}
	}
	return nil
}

// ListWeeklyRoutes returns the package's legacy route rows in write order.
func (r *PackageRepository) ListWeeklyRoutes(ctx context.Context, tenantID, packageID string) ([]persistence.WeeklyRoute, error) {
	if _, err := r.GetPackage(ctx, tenantID, packageID); err != nil {
		return nil, err
	}

	rows, err := r.db.sql.QueryContext(ctx,
		`SELECT id, package_id, position, day_mask, start_minute, end_minute, percentage
		 FROM weekly_routes WHERE package_id = ? ORDER BY position, id`, packageID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var routes []persistence.WeeklyRoute
	for rows.Next() {
		var route persistence.WeeklyRoute
		err := rows.Scan(&route.ID, &route.PackageID, &route.Position,
			&route.DayMask, &route.StartMinute, &route.EndMinute, &route.Percentage)
		if err != nil {
			return nil, mapError(err)
		}
		routes = append(routes, route)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}

	for i := range routes {
		exits, err := r.loadRouteExits(ctx, routes[i].ID)
		if err != nil {
			return nil, err
		}
		routes[i].Exits = exits
	}
	return routes, nil
}

func (r *PackageRepository) loadRouteExits(ctx context.Context, routeID string) ([]persistence.RouteExit, error) {
	rows, err := r.db.sql.QueryContext(ctx,
		`SELECT position, kind, value, dequeue_value, entity_id, type_code, transfer_code
		 FROM weekly_route_exits WHERE route_id = ? ORDER BY position`, routeID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var exits []persistence.RouteExit
	for rows.Next() {
		var exit persistence.RouteExit
		err := rows.Scan(&exit.Position, &exit.Kind, &exit.Value, &exit.DequeueValue,
			&exit.EntityID, &exit.TypeCode, &exit.TransferCode)
		if err != nil {
			return nil, mapError(err)
		}
		exits = append(exits, exit)
	}
	return exits, mapError(rows.Err())
}
