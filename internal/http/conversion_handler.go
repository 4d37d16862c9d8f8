package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/example/callroute-admin/internal/application"
)

type conversionService interface {
	ConvertTimezone(ctx context.Context, tenantID, packageID, targetTimezone string) (application.ConversionResult, error)
}

// ConversionHandler serves timezone conversion requests.
type ConversionHandler struct {
	service   conversionService
	responder responder
	logger    *slog.Logger
}

// NewConversionHandler wires the conversion endpoint.
func NewConversionHandler(service conversionService, logger *slog.Logger) *ConversionHandler {
	base := defaultLogger(logger)
	return &ConversionHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *ConversionHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "ConversionHandler", operation, attrs...)
}

func (h *ConversionHandler) Convert(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	tenantID := chi.URLParam(r, "tenantID")
	packageID := chi.URLParam(r, "packageID")

	var req conversionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Convert", "tenant_id", tenantID, "package_id", packageID, "error_kind", "bad_request").
			ErrorContext(r.Context(), "failed to decode conversion request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Convert",
		"tenant_id", tenantID, "package_id", packageID, "target_timezone", req.Timezone)

	result, err := h.service.ConvertTimezone(r.Context(), tenantID, packageID, req.Timezone)
	if err != nil {
		var vErr *application.ValidationError
		if errors.As(err, &vErr) && len(result.Unresolved) > 0 {
			// Unresolved exits block persistence but the converted schedule
			// is still returned so callers can see what failed.
			logger.WarnContext(r.Context(), "conversion rejected",
				"unresolved", len(result.Unresolved))
			h.responder.writeJSON(r.Context(), w, http.StatusUnprocessableEntity, conversionResponse{
				Message:    "conversion produced unresolved exit references",
				Errors:     vErr.FieldErrors,
				Conversion: toConversionDTO(result),
			})
			return
		}
		logger.ErrorContext(r.Context(), "conversion failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "conversion completed",
		"offset_minutes", result.OffsetMinutes,
		"profiles", len(result.Profiles),
		"routes", len(result.Routes))
	h.responder.writeJSON(r.Context(), w, http.StatusOK, conversionResponse{Conversion: toConversionDTO(result)})
}

type conversionRequest struct {
	Timezone string `json:"timezone"`
}

type conversionResponse struct {
	Message    string            `json:"message,omitempty"`
	Errors     map[string]string `json:"errors,omitempty"`
	Conversion conversionDTO     `json:"conversion"`
}

type conversionDTO struct {
	PackageID        string                `json:"package_id"`
	PreviousTimezone string                `json:"previous_timezone"`
	Timezone         string                `json:"timezone"`
	OffsetMinutes    int                   `json:"offset_minutes"`
	Persisted        bool                  `json:"persisted"`
	Profiles         []convertedProfileDTO `json:"profiles"`
	Routes           []routeDTO            `json:"routes,omitempty"`
	Unresolved       []string              `json:"unresolved,omitempty"`
}

type convertedProfileDTO struct {
	DayMask    int                 `json:"day_mask"`
	Days       [7]bool             `json:"days"`
	TimeRanges []convertedRangeDTO `json:"time_ranges"`
}

type convertedRangeDTO struct {
	StartMinute int                  `json:"start_minute"`
	EndMinute   int                  `json:"end_minute"`
	Choices     []convertedChoiceDTO `json:"choices"`
}

type convertedChoiceDTO struct {
	Percentage int            `json:"percentage"`
	Exits      []routeExitDTO `json:"exits"`
	Error      string         `json:"error,omitempty"`
}

func toConversionDTO(result application.ConversionResult) conversionDTO {
	dto := conversionDTO{
		PackageID:        result.PackageID,
		PreviousTimezone: result.PreviousTimezone,
		Timezone:         result.Timezone,
		OffsetMinutes:    result.OffsetMinutes,
		Persisted:        result.Persisted,
		Unresolved:       result.Unresolved,
	}

	for _, profile := range result.Profiles {
		profileOut := convertedProfileDTO{DayMask: profile.DayMask, Days: profile.Days}
		for _, rng := range profile.TimeRanges {
			rangeOut := convertedRangeDTO{StartMinute: rng.StartMinute, EndMinute: rng.EndMinute}
			for _, choice := range rng.Choices {
				choiceOut := convertedChoiceDTO{Percentage: choice.Percentage, Error: choice.Error}
				for _, exit := range choice.Exits {
					choiceOut.Exits = append(choiceOut.Exits, toConvertedExitDTO(exit))
				}
				rangeOut.Choices = append(rangeOut.Choices, choiceOut)
			}
			profileOut.TimeRanges = append(profileOut.TimeRanges, rangeOut)
		}
		dto.Profiles = append(dto.Profiles, profileOut)
	}

	for _, route := range result.Routes {
		routeOut := routeDTO{
			DayMask:     route.DayMask,
			StartMinute: route.StartMinute,
			EndMinute:   route.EndMinute,
			Percentage:  route.Percentage,
		}
		for _, exit := range route.Exits {
			routeOut.Exits = append(routeOut.Exits, toConvertedExitDTO(exit))
		}
		dto.Routes = append(dto.Routes, routeOut)
	}

	return dto
}

func toConvertedExitDTO(exit application.ConvertedExit) routeExitDTO {
	return routeExitDTO{
		Kind:         exit.Kind,
		Value:        exit.Value,
		DequeueValue: exit.DequeueValue,
		EntityID:     exit.EntityID,
		TypeCode:     exit.TypeCode,
		TransferCode: exit.TransferCode,
	}
}
