package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/example/callroute-admin/internal/persistence"
	"github.com/example/callroute-admin/internal/routing"
	"github.com/example/callroute-admin/internal/schedule"
)

// ConversionService orchestrates timezone conversions: it loads a package's
// schedule tree, runs the conversion pipeline and atomically persists the
// converted tree together with the regenerated weekly route rows.
type ConversionService struct {
	packages    persistence.PackageRepository
	resolver    schedule.ExitResolver
	offsets     schedule.OffsetProvider
	idGenerator func() string
	logger      *slog.Logger
}

// NewConversionService wires dependencies for conversion operations.
func NewConversionService(packages persistence.PackageRepository, resolver schedule.ExitResolver, offsets schedule.OffsetProvider, idGenerator func() string, logger *slog.Logger) *ConversionService {
	if offsets == nil {
		offsets = schedule.SystemOffsets{}
	}
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	return &ConversionService{
		packages:    packages,
		resolver:    resolver,
		offsets:     offsets,
		idGenerator: idGenerator,
		logger:      defaultLogger(logger),
	}
}

// ConvertTimezone converts the package's schedule from its stored timezone
// into targetTimezone. The converted tree replaces the stored one only when
// every exit reference resolved; otherwise the result is returned alongside a
// validation error and the stored schedule is left untouched.
func (s *ConversionService) ConvertTimezone(ctx context.Context, tenantID, packageID, targetTimezone string) (ConversionResult, error) {
	if s == nil || s.packages == nil {
		return ConversionResult{}, fmt.Errorf("conversion service not configured")
	}

	logger := serviceLogger(ctx, s.logger, "conversion", "convert_timezone",
		"tenant_id", tenantID, "package_id", packageID, "target_timezone", targetTimezone)

	vErr := &ValidationError{}
	if strings.TrimSpace(targetTimezone) == "" {
		vErr.add("timezone", "timezone is required")
		return ConversionResult{}, vErr
	}

	tree, err := s.packages.GetPackageTree(ctx, tenantID, packageID)
	if err != nil {
		return ConversionResult{}, mapRepoError(err)
	}

	offset, err := schedule.ConversionOffset(s.offsets, tree.Timezone, targetTimezone)
	if err != nil {
		vErr.add("timezone", err.Error())
		return ConversionResult{}, vErr
	}

	cctx := schedule.ConversionContext{TenantID: tenantID, PackageID: packageID}
	converted, err := schedule.Convert(ctx, s.resolver, cctx, profileInputs(tree.Profiles), offset)
	if err != nil {
		logger.ErrorContext(ctx, "conversion failed", "error", err, "error_kind", ErrorKind(err))
		return ConversionResult{}, err
	}

	result := buildConversionResult(tree, targetTimezone, offset, converted)

	if len(converted.Unresolved) > 0 {
		logger.WarnContext(ctx, "conversion produced unresolved exits",
			"unresolved", len(converted.Unresolved))
		vErr.add("exits", strings.Join(result.Unresolved, "; "))
		return result, vErr
	}

	replacement := s.buildReplacement(packageID, targetTimezone, converted)
	if err := s.packages.ReplaceSchedule(ctx, tenantID, packageID, replacement); err != nil {
		return ConversionResult{}, mapRepoError(err)
	}
	result.Persisted = true

	logger.InfoContext(ctx, "timezone conversion persisted",
		"offset_minutes", offset,
		"profiles", len(result.Profiles),
		"routes", len(result.Routes))

	return result, nil
}

// profileInputs projects the stored tree into pipeline inputs. Deleted
// profiles and choices are skipped, as are exception-date profiles, which do
// not participate in the weekly schedule.
func profileInputs(profiles []persistence.ProfileTree) []schedule.ProfileInput {
	inputs := make([]schedule.ProfileInput, 0, len(profiles))
	for _, profile := range profiles {
		if profile.Deleted || profile.ExceptionDate != nil {
			continue
		}
		input := schedule.ProfileInput{Days: profile.Days}
		for _, segment := range profile.Segments {
			seg := schedule.SegmentInput{
				StartMinute: segment.StartMinute,
				EndMinute:   segment.EndMinute,
			}
			for _, choice := range segment.Choices {
				if choice.Deleted {
					continue
				}
				in := schedule.ChoiceInput{Percentage: choice.Percentage}
				for _, ref := range choice.Exits {
					in.Exits = append(in.Exits, routing.Ref{
						Kind:         routing.ExitKind(ref.Kind),
						Value:        ref.Value,
						DequeueValue: ref.DequeueValue,
					})
				}
				seg.Choices = append(seg.Choices, in)
			}
			input.Segments = append(input.Segments, seg)
		}
		inputs = append(inputs, input)
	}
	return inputs
}

func buildConversionResult(tree persistence.PackageTree, targetTimezone string, offset int, converted schedule.Result) ConversionResult {
	result := ConversionResult{
		PackageID:        tree.ID,
		PreviousTimezone: tree.Timezone,
		Timezone:         targetTimezone,
		OffsetMinutes:    offset,
	}

	for _, profile := range converted.Profiles {
		out := ConvertedProfile{DayMask: profile.DayMask, Days: profile.Days()}
		for _, rng := range profile.TimeRanges {
			outRange := ConvertedRange{StartMinute: rng.StartMinute, EndMinute: rng.EndMinute}
			for _, choice := range rng.Choices {
				outChoice := ConvertedChoice{Percentage: choice.Percentage}
				if choice.Err != nil {
					outChoice.Error = choice.Err.Error()
				}
				for _, exit := range choice.Exits {
					outChoice.Exits = append(outChoice.Exits, convertedExit(exit))
				}
				outRange.Choices = append(outRange.Choices, outChoice)
			}
			out.TimeRanges = append(out.TimeRanges, outRange)
		}
		result.Profiles = append(result.Profiles, out)
	}

	for _, row := range converted.Routes {
		outRoute := ConvertedRoute{
			DayMask:     row.DayMask,
			StartMinute: row.StartMinute,
			EndMinute:   row.EndMinute,
			Percentage:  row.Percentage,
		}
		for _, exit := range row.Exits {
			outRoute.Exits = append(outRoute.Exits, convertedExit(exit))
		}
		result.Routes = append(result.Routes, outRoute)
	}

	for _, unresolved := range converted.Unresolved {
		result.Unresolved = append(result.Unresolved, unresolved.Error())
	}

	return result
}

func convertedExit(exit routing.Exit) ConvertedExit {
	return ConvertedExit{
		Kind:         string(exit.Kind),
		Value:        exit.Value,
		DequeueValue: exit.DequeueValue,
		EntityID:     exit.EntityID,
		TypeCode:     string(exit.Code),
		TransferCode: exit.TransferLookupCode(),
	}
}

// buildReplacement materializes the converted schedule as fresh persistence
// rows with newly generated identifiers.
func (s *ConversionService) buildReplacement(packageID, timezone string, converted schedule.Result) persistence.ReplacementSchedule {
	replacement := persistence.ReplacementSchedule{Timezone: timezone}

	for i, profile := range converted.Profiles {
		profileRow := persistence.ProfileTree{
			RouteProfile: persistence.RouteProfile{
				ID:        s.idGenerator(),
				PackageID: packageID,
				Position:  i + 1,
				Days:      profile.Days(),
			},
		}
		for j, rng := range profile.TimeRanges {
			segmentRow := persistence.SegmentTree{
				DaySegment: persistence.DaySegment{
					ID:          s.idGenerator(),
					ProfileID:   profileRow.ID,
					Position:    j + 1,
					StartMinute: rng.StartMinute,
					EndMinute:   rng.EndMinute,
				},
			}
			for k, choice := range rng.Choices {
				choiceRow := persistence.ChoiceTree{
					RoutingChoice: persistence.RoutingChoice{
						ID:         s.idGenerator(),
						SegmentID:  segmentRow.ID,
						Position:   k + 1,
						Percentage: choice.Percentage,
					},
				}
				for l, exit := range choice.Exits {
					choiceRow.Exits = append(choiceRow.Exits, persistence.ExitRef{
						ID:           s.idGenerator(),
						ChoiceID:     choiceRow.ID,
						Position:     l + 1,
						Kind:         string(exit.Kind),
						Value:        exit.Value,
						DequeueValue: exit.DequeueValue,
					})
				}
				segmentRow.Choices = append(segmentRow.Choices, choiceRow)
			}
			profileRow.Segments = append(profileRow.Segments, segmentRow)
		}
		replacement.Profiles = append(replacement.Profiles, profileRow)
	}

	for i, row := range converted.Routes {
		routeRow := persistence.WeeklyRoute{
			ID:          s.idGenerator(),
			PackageID:   packageID,
			Position:    i + 1,
			DayMask:     row.DayMask,
			StartMinute: row.StartMinute,
			EndMinute:   row.EndMinute,
			Percentage:  row.Percentage,
		}
		for j, exit := range row.Exits {
			routeRow.Exits = append(routeRow.Exits, persistence.RouteExit{
				Position:     j + 1,
				Kind:         string(exit.Kind),
				Value:        exit.Value,
				DequeueValue: exit.DequeueValue,
				EntityID:     exit.EntityID,
				TypeCode:     string(exit.Code),
				TransferCode: exit.TransferLookupCode(),
			})
		}
		replacement.Routes = append(replacement.Routes, routeRow)
	}

	return replacement
}

func mapRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrDuplicate) {
		return ErrAlreadyExists
	}
	return err
}
