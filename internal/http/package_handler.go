package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/example/callroute-admin/internal/application"
	"github.com/example/callroute-admin/internal/persistence"
)

type packageService interface {
	CreatePackage(ctx context.Context, input application.CreatePackageInput) (persistence.Package, error)
	GetPackageTree(ctx context.Context, tenantID, packageID string) (persistence.PackageTree, error)
	ListPackages(ctx context.Context, tenantID string) ([]persistence.Package, error)
	ListWeeklyRoutes(ctx context.Context, tenantID, packageID string) ([]persistence.WeeklyRoute, error)
}

// PackageHandler serves package registration and read access.
type PackageHandler struct {
	service   packageService
	responder responder
	logger    *slog.Logger
}

// NewPackageHandler wires the package endpoints.
func NewPackageHandler(service packageService, logger *slog.Logger) *PackageHandler {
	base := defaultLogger(logger)
	return &PackageHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *PackageHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "PackageHandler", operation, attrs...)
}

func (h *PackageHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	tenantID := chi.URLParam(r, "tenantID")
	if strings.TrimSpace(tenantID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidTenantID)
		return
	}

	var req createPackageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "tenant_id", tenantID, "error_kind", "bad_request").
			ErrorContext(r.Context(), "failed to decode package request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "tenant_id", tenantID)

	pkg, err := h.service.CreatePackage(r.Context(), application.CreatePackageInput{
		TenantID: tenantID,
		Name:     req.Name,
		Timezone: req.Timezone,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "package creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("package_id", pkg.ID).InfoContext(r.Context(), "package created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, packageResponse{Package: toPackageDTO(pkg)})
}

func (h *PackageHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	tenantID := chi.URLParam(r, "tenantID")
	packageID := chi.URLParam(r, "packageID")
	if strings.TrimSpace(packageID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidPackageID)
		return
	}

	logger := h.log(r.Context(), "Get", "tenant_id", tenantID, "package_id", packageID)

	tree, err := h.service.GetPackageTree(r.Context(), tenantID, packageID)
	if err != nil {
		logger.ErrorContext(r.Context(), "package load failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, packageTreeResponse{
		Package:  toPackageDTO(tree.Package),
		Profiles: toProfileDTOs(tree.Profiles),
	})
}

func (h *PackageHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	tenantID := chi.URLParam(r, "tenantID")
	logger := h.log(r.Context(), "List", "tenant_id", tenantID)

	packages, err := h.service.ListPackages(r.Context(), tenantID)
	if err != nil {
		logger.ErrorContext(r.Context(), "package list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(packages)).InfoContext(r.Context(), "packages listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listPackagesResponse{Packages: toPackageDTOs(packages)})
}

func (h *PackageHandler) Routes(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	tenantID := chi.URLParam(r, "tenantID")
	packageID := chi.URLParam(r, "packageID")
	logger := h.log(r.Context(), "Routes", "tenant_id", tenantID, "package_id", packageID)

	routes, err := h.service.ListWeeklyRoutes(r.Context(), tenantID, packageID)
	if err != nil {
		logger.ErrorContext(r.Context(), "route list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, listRoutesResponse{Routes: toRouteDTOs(routes)})
}

type createPackageRequest struct {
	Name     string `json:"name"`
	Timezone string `json:"timezone"`
}

type packageResponse struct {
	Package packageDTO `json:"package"`
}

type listPackagesResponse struct {
	Packages []packageDTO `json:"packages"`
}

type packageTreeResponse struct {
	Package  packageDTO   `json:"package"`
	Profiles []profileDTO `json:"profiles"`
}

type listRoutesResponse struct {
	Routes []routeDTO `json:"routes"`
}

type packageDTO struct {
	ID        string `json:"id"`
	TenantID  string `json:"tenant_id"`
	Name      string `json:"name"`
	Timezone  string `json:"timezone"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type profileDTO struct {
	ID            string       `json:"id"`
	Days          [7]bool      `json:"days"`
	ExceptionDate *string      `json:"exception_date,omitempty"`
	Deleted       bool         `json:"deleted,omitempty"`
	Segments      []segmentDTO `json:"segments"`
}

type segmentDTO struct {
	ID          string      `json:"id"`
	StartMinute int         `json:"start_minute"`
	EndMinute   int         `json:"end_minute"`
	Choices     []choiceDTO `json:"choices"`
}

type choiceDTO struct {
	ID         string       `json:"id"`
	Percentage int          `json:"percentage"`
	Deleted    bool         `json:"deleted,omitempty"`
	Exits      []exitRefDTO `json:"exits"`
}

type exitRefDTO struct {
	Kind         string `json:"kind"`
	Value        string `json:"value"`
	DequeueValue string `json:"dequeue_value,omitempty"`
}

type routeDTO struct {
	ID          string         `json:"id"`
	DayMask     int            `json:"day_mask"`
	StartMinute int            `json:"start_minute"`
	EndMinute   int            `json:"end_minute"`
	Percentage  int            `json:"percentage"`
	Exits       []routeExitDTO `json:"exits"`
}

type routeExitDTO struct {
	Kind         string `json:"kind"`
	Value        string `json:"value"`
	DequeueValue string `json:"dequeue_value,omitempty"`
	EntityID     string `json:"entity_id"`
	TypeCode     string `json:"type_code"`
	TransferCode string `json:"transfer_code,omitempty"`
}

func toPackageDTO(pkg persistence.Package) packageDTO {
	return packageDTO{
		ID:        pkg.ID,
		TenantID:  pkg.TenantID,
		Name:      pkg.Name,
		Timezone:  pkg.Timezone,
		CreatedAt: pkg.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: pkg.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func toPackageDTOs(packages []persistence.Package) []packageDTO {
	if len(packages) == 0 {
		return nil
	}
	out := make([]packageDTO, 0, len(packages))
	for _, pkg := range packages {
		out = append(out, toPackageDTO(pkg))
	}
	return out
}

func toProfileDTOs(profiles []persistence.ProfileTree) []profileDTO {
	out := make([]profileDTO, 0, len(profiles))
	for _, profile := range profiles {
		dto := profileDTO{
			ID:      profile.ID,
			Days:    profile.Days,
			Deleted: profile.Deleted,
		}
		if profile.ExceptionDate != nil {
			date := profile.ExceptionDate.UTC().Format("2006-01-02")
			dto.ExceptionDate = &date
		}
		for _, segment := range profile.Segments {
			segDTO := segmentDTO{
				ID:          segment.ID,
				StartMinute: segment.StartMinute,
				EndMinute:   segment.EndMinute,
			}
			for _, choice := range segment.Choices {
				choiceOut := choiceDTO{
					ID:         choice.ID,
					Percentage: choice.Percentage,
					Deleted:    choice.Deleted,
				}
				for _, exit := range choice.Exits {
					choiceOut.Exits = append(choiceOut.Exits, exitRefDTO{
						Kind:         exit.Kind,
						Value:        exit.Value,
						DequeueValue: exit.DequeueValue,
					})
				}
				segDTO.Choices = append(segDTO.Choices, choiceOut)
			}
			dto.Segments = append(dto.Segments, segDTO)
		}
		out = append(out, dto)
	}
	return out
}

func toRouteDTOs(routes []persistence.WeeklyRoute) []routeDTO {
	if len(routes) == 0 {
		return nil
	}
	out := make([]routeDTO, 0, len(routes))
	for _, route := range routes {
		dto := routeDTO{
			ID:          route.ID,
			DayMask:     route.DayMask,
			StartMinute: route.StartMinute,
			EndMinute:   route.EndMinute,
			Percentage:  route.Percentage,
		}
		for _, exit := range route.Exits {
			dto.Exits = append(dto.Exits, routeExitDTO{
				Kind:         exit.Kind,
				Value:        exit.Value,
				DequeueValue: exit.DequeueValue,
				EntityID:     exit.EntityID,
				TypeCode:     exit.TypeCode,
				TransferCode: exit.TransferCode,
			})
		}
		out = append(out, dto)
	}
	return out
}
