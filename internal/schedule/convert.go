package schedule

import (
	"context"

	"github.com/example/callroute-admin/internal/routing"
)

// RouteRow is one row of the legacy weekly route table: a single routing
// choice active on the masked days over the given day-space span. Exits keep
// their priority order.
type RouteRow struct {
	DayMask     int
	StartMinute int
	EndMinute   int
	Percentage  int
	Exits       []routing.Exit
}

// Result is the output of one conversion run: the merged day profiles that
// replace the package's schedule tree, and the flat route rows for legacy
// activation. Unresolved lists the exit references that failed to resolve,
// one entry per affected choice.
type Result struct {
	Profiles   []*Profile
	Routes     []RouteRow
	Unresolved []error
}

// Convert runs the full timezone conversion pipeline over a package's
// pre-conversion profile tree: flatten to week space, shift by the offset,
// split at day boundaries, normalize and sort, regroup into day profiles,
// merge identical profiles, and coalesce adjacent equal-routing ranges.
//
// The transformation is total: every minute covered before conversion is
// covered after it, moved by exactly offsetMinutes modulo the week.
// Resolution failures are carried in the result; invariant violations abort
// with ErrIntervalInvariant.
func Convert(ctx context.Context, resolver ExitResolver, cctx ConversionContext, profiles []ProfileInput, offsetMinutes int) (Result, error) {
	intervals, err := Flatten(ctx, resolver, cctx, profiles)
	if err != nil {
		return Result{}, err
	}

	intervals = ShiftAll(intervals, offsetMinutes)

	built, err := BuildProfiles(intervals)
	if err != nil {
		return Result{}, err
	}

	merged, err := MergeProfiles(built)
	if err != nil {
		return Result{}, err
	}
	for _, profile := range merged {
		profile.MergeTimeRanges()
	}

	return Result{
		Profiles:   merged,
		Routes:     BuildRoutes(merged),
		Unresolved: collectUnresolved(merged),
	}, nil
}

// BuildRoutes flattens merged profiles into legacy weekly route rows, one
// row per routing choice per time range.
func BuildRoutes(profiles []*Profile) []RouteRow {
	rows := make([]RouteRow, 0)
	for _, profile := range profiles {
		for _, rng := range profile.TimeRanges {
			for _, choice := range rng.Choices {
				exits := make([]routing.Exit, len(choice.Exits))
				copy(exits, choice.Exits)
				rows = append(rows, RouteRow{
					DayMask:     profile.DayMask,
					StartMinute: rng.StartMinute,
					EndMinute:   rng.EndMinute,
					Percentage:  choice.Percentage,
					Exits:       exits,
				})
			}
		}
	}
	return rows
}

func collectUnresolved(profiles []*Profile) []error {
	var errs []error
	seen := make(map[string]struct{})
	for _, profile := range profiles {
		for _, rng := range profile.TimeRanges {
			for _, choice := range rng.Choices {
				if choice.Err == nil {
					continue
				}
				key := choice.Err.Error()
				if _, ok := seen[key]; ok {
					continue
				}
				seen[key] = struct{}{}
				errs = append(errs, choice.Err)
			}
		}
	}
	return errs
}
