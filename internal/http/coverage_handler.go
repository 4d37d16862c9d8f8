package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/example/callroute-admin/internal/application"
)

type validationService interface {
	CheckCoverage(ctx context.Context, tenantID, packageID string) (application.CoverageReport, error)
}

// CoverageHandler serves coverage validation requests.
type CoverageHandler struct {
	service   validationService
	responder responder
	logger    *slog.Logger
}

// NewCoverageHandler wires the coverage endpoint.
func NewCoverageHandler(service validationService, logger *slog.Logger) *CoverageHandler {
	base := defaultLogger(logger)
	return &CoverageHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *CoverageHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "CoverageHandler", operation, attrs...)
}

func (h *CoverageHandler) Check(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	tenantID := chi.URLParam(r, "tenantID")
	packageID := chi.URLParam(r, "packageID")
	logger := h.log(r.Context(), "Check", "tenant_id", tenantID, "package_id", packageID)

	report, err := h.service.CheckCoverage(r.Context(), tenantID, packageID)
	if err != nil {
		logger.ErrorContext(r.Context(), "coverage check failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("findings", len(report.Findings)).InfoContext(r.Context(), "coverage checked")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, coverageResponse{
		PackageID: report.PackageID,
		Valid:     report.Valid(),
		Findings:  toFindingDTOs(report.Findings),
	})
}

type coverageResponse struct {
	PackageID string       `json:"package_id"`
	Valid     bool         `json:"valid"`
	Findings  []findingDTO `json:"findings"`
}

type findingDTO struct {
	Code      string `json:"code"`
	Day       int    `json:"day,omitempty"`
	Minute    int    `json:"minute,omitempty"`
	ProfileID string `json:"profile_id,omitempty"`
	SegmentID string `json:"segment_id,omitempty"`
}

func toFindingDTOs(findings []application.CoverageFinding) []findingDTO {
	out := make([]findingDTO, 0, len(findings))
	for _, finding := range findings {
		out = append(out, findingDTO{
			Code:      finding.Code,
			Day:       finding.Day,
			Minute:    finding.Minute,
			ProfileID: finding.ProfileID,
			SegmentID: finding.SegmentID,
		})
	}
	return out
}
