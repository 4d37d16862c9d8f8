package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/example/callroute-admin/internal/persistence"
	"github.com/example/callroute-admin/internal/schedule"
)

// ValidationService runs the coverage checks over a package's stored schedule
// tree. Checks are advisory: every finding is enumerated and reported, none
// aborts the run.
type ValidationService struct {
	packages persistence.PackageRepository
	logger   *slog.Logger
}

// NewValidationService wires dependencies for coverage validation.
func NewValidationService(packages persistence.PackageRepository, logger *slog.Logger) *ValidationService {
	return &ValidationService{
		packages: packages,
		logger:   defaultLogger(logger),
	}
}

// CheckCoverage reports every coverage defect of the package's current tree:
// days owned by zero or multiple profiles, daily minutes left uncovered or
// covered twice within a profile, and time ranges whose routing percentages
// do not sum to 100.
func (s *ValidationService) CheckCoverage(ctx context.Context, tenantID, packageID string) (CoverageReport, error) {
	if s == nil || s.packages == nil {
		return CoverageReport{}, fmt.Errorf("validation service not configured")
	}

	tree, err := s.packages.GetPackageTree(ctx, tenantID, packageID)
	if err != nil {
		return CoverageReport{}, mapRepoError(err)
	}

	report := CoverageReport{PackageID: packageID, Findings: []CoverageFinding{}}

	assignments := make([]schedule.DayAssignment, 0, len(tree.Profiles))
	for _, profile := range tree.Profiles {
		if profile.ExceptionDate != nil {
			continue
		}
		assignments = append(assignments, schedule.DayAssignment{
			Days:    profile.Days,
			Deleted: profile.Deleted,
		})
	}
	for _, finding := range schedule.CheckDayCoverage(assignments) {
		report.Findings = append(report.Findings, CoverageFinding{
			Code: string(finding.Code),
			Day:  finding.Day,
		})
	}

	for _, profile := range tree.Profiles {
		if profile.Deleted || profile.ExceptionDate != nil {
			continue
		}

		segments := make([]schedule.CoverageSegment, 0, len(profile.Segments))
		for _, segment := range profile.Segments {
			segments = append(segments, schedule.CoverageSegment{
				StartMinute: segment.StartMinute,
				EndMinute:   segment.EndMinute,
			})
		}
		for _, finding := range schedule.CheckSegmentCoverage(segments) {
			report.Findings = append(report.Findings, CoverageFinding{
				Code:      string(finding.Code),
				Minute:    finding.Minute,
				ProfileID: profile.ID,
			})
		}

		for _, segment := range profile.Segments {
			choices := make([]schedule.PercentChoice, 0, len(segment.Choices))
			for _, choice := range segment.Choices {
				choices = append(choices, schedule.PercentChoice{
					Percentage: choice.Percentage,
					Deleted:    choice.Deleted,
				})
			}
			if finding, ok := schedule.CheckPercentTotal(choices); ok {
				report.Findings = append(report.Findings, CoverageFinding{
					Code:      string(finding.Code),
					ProfileID: profile.ID,
					SegmentID: segment.ID,
				})
			}
		}
	}

	serviceLogger(ctx, s.logger, "validation", "check_coverage",
		"tenant_id", tenantID, "package_id", packageID).
		InfoContext(ctx, "coverage check completed", "findings", len(report.Findings))

	return report, nil
}
