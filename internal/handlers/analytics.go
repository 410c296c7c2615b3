package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/Binayak012/StillGood/internal/middleware"
	"github.com/Binayak012/StillGood/internal/services"
)

type AnalyticsHandler struct {
	analyticsService *services.AnalyticsService
}

func NewAnalyticsHandler(analyticsService *services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

func (handler *AnalyticsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	membership := middleware.GetMembership(r.Context())

	summary, err := handler.analyticsService.Summary(r.Context(), membership.HouseholdID, time.Now())
	if err != nil {
		slog.Error("building analytics summary", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Failed to load analytics")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (handler *AnalyticsHandler) Events(w http.ResponseWriter, r *http.Request) {
	membership := middleware.GetMembership(r.Context())

	rangeName := r.URL.Query().Get("range")
	if rangeName == "" {
		rangeName = "week"
	}
	if rangeName != "week" && rangeName != "month" {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "range must be 'week' or 'month'")
		return
	}

	report, err := handler.analyticsService.Events(r.Context(), membership.HouseholdID, rangeName, time.Now())
	if err != nil {
		slog.Error("building analytics events", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Failed to load analytics")
		return
	}
	writeJSON(w, http.StatusOK, report)
}
