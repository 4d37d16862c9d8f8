package schedule

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/callroute-admin/internal/routing"
)

// ConversionContext identifies the tenant and package a conversion run
// operates on. It is threaded explicitly through the pipeline; the engine
// keeps no ambient tenant state.
type ConversionContext struct {
	TenantID  string
	PackageID string
}

// DayFlags marks which days of the week a profile applies to, in canonical
// order Sunday = index 0 through Saturday = index 6.
type DayFlags [DaysPerWeek]bool

// ChoiceInput is one percentage-weighted routing choice with its raw,
// unresolved exit references in priority order.
type ChoiceInput struct {
	Percentage int
	Exits      []routing.Ref
}

// SegmentInput is one daily time segment of a routing profile. Minutes are
// inclusive offsets into the day: StartMinute in [0,1438], EndMinute in
// [1,1439].
type SegmentInput struct {
	StartMinute int
	EndMinute   int
	Choices     []ChoiceInput
}

// ProfileInput is one pre-conversion routing profile: a set of day flags and
// the ordered segments active on those days.
type ProfileInput struct {
	Days     DayFlags
	Segments []SegmentInput
}

// ExitResolver resolves raw exit references into typed exits. Satisfied by
// *routing.Resolver.
type ExitResolver interface {
	Resolve(ctx context.Context, kind routing.ExitKind, value, dequeueValue, tenantID string) (routing.Exit, error)
}

// Flatten expands the day-keyed profile tree into week-space intervals: one
// interval per (active day, segment) pair, offset by 1440 minutes per day
// index. Each segment's choices are resolved once and deep-copied into every
// day's interval.
//
// An exit reference that does not resolve is carried through as an
// error-flagged choice for downstream validation to report. A lookup
// collaborator failure aborts the flatten, since the result would be
// indistinguishable from genuinely invalid references.
//
// Output order is unspecified; ShiftAll establishes the ordering the profile
// builder depends on.
func Flatten(ctx context.Context, resolver ExitResolver, cctx ConversionContext, profiles []ProfileInput) ([]*Interval, error) {
	intervals := make([]*Interval, 0, len(profiles)*DaysPerWeek)

	for _, profile := range profiles {
		resolved := make([][]routing.Choice, len(profile.Segments))
		for i, segment := range profile.Segments {
			choices, err := resolveChoices(ctx, resolver, cctx, segment.Choices)
			if err != nil {
				return nil, err
			}
			resolved[i] = choices
		}

		for day := 0; day < DaysPerWeek; day++ {
			if !profile.Days[day] {
				continue
			}
			offset := day * MinutesPerDay
			for i, segment := range profile.Segments {
				intervals = append(intervals, &Interval{
					StartMinute: segment.StartMinute + offset,
					EndMinute:   segment.EndMinute + offset,
					Choices:     routing.CloneChoices(resolved[i]),
				})
			}
		}
	}

	return intervals, nil
}

func resolveChoices(ctx context.Context, resolver ExitResolver, cctx ConversionContext, inputs []ChoiceInput) ([]routing.Choice, error) {
	choices := make([]routing.Choice, 0, len(inputs))

	for _, input := range inputs {
		choice := routing.Choice{Percentage: input.Percentage}
		for _, ref := range input.Exits {
			exit, err := resolver.Resolve(ctx, ref.Kind, ref.Value, ref.DequeueValue, cctx.TenantID)
			if err != nil {
				if errors.Is(err, routing.ErrLookupUnavailable) {
					return nil, fmt.Errorf("package %s: %w", cctx.PackageID, err)
				}
				choice.Err = err
				choice.Exits = append(choice.Exits, routing.Exit{
					Kind:         ref.Kind,
					Value:        ref.Value,
					DequeueValue: ref.DequeueValue,
					TenantID:     cctx.TenantID,
				})
				continue
			}
			choice.Exits = append(choice.Exits, exit)
		}
		choices = append(choices, choice)
	}

	return choices, nil
}
