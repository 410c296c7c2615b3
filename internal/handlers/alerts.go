package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/Binayak012/StillGood/internal/middleware"
	"github.com/Binayak012/StillGood/internal/models"
	"github.com/Binayak012/StillGood/internal/repository"
	"github.com/Binayak012/StillGood/internal/services"
	"github.com/go-chi/chi/v5"
)

type AlertHandler struct {
	alertRepo repository.AlertRepository
	sweeper   *services.AlertSweeper
}

func NewAlertHandler(alertRepo repository.AlertRepository, sweeper *services.AlertSweeper) *AlertHandler {
	return &AlertHandler{alertRepo: alertRepo, sweeper: sweeper}
}

func (handler *AlertHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	membership := middleware.GetMembership(r.Context())

	// In-app alerts turned off means the feed is empty, though the alerts
	// themselves still exist for the audit trail.
	if !user.PrefsInApp {
		writeJSON(w, http.StatusOK, map[string]any{"alerts": []models.Alert{}})
		return
	}

	alerts, err := handler.alertRepo.FindForUser(r.Context(), membership.HouseholdID, user.ID)
	if err != nil {
		slog.Error("listing alerts", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Failed to load alerts")
		return
	}
	if alerts == nil {
		alerts = []models.Alert{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"alerts": alerts})
}

func (handler *AlertHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	membership := middleware.GetMembership(r.Context())
	id := chi.URLParam(r, "id")

	alert, err := handler.alertRepo.FindByID(r.Context(), id)
	if err != nil || alert.HouseholdID != membership.HouseholdID || alert.UserID != user.ID {
		writeError(w, http.StatusNotFound, "ALERT_NOT_FOUND", "Alert not found")
		return
	}

	if alert.ReadAt == nil {
		if err := handler.alertRepo.MarkRead(r.Context(), id, time.Now()); err != nil {
			slog.Error("marking alert read", "error", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Failed to mark alert read")
			return
		}
		alert, err = handler.alertRepo.FindByID(r.Context(), id)
		if err != nil {
			slog.Error("reloading alert", "error", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Failed to load alert")
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"alert": alert})
}

// Sweep triggers an on-demand pass over all households.
func (handler *AlertHandler) Sweep(w http.ResponseWriter, r *http.Request) {
	stats, err := handler.sweeper.Run(r.Context(), time.Now())
	if err != nil {
		slog.Error("running on-demand sweep", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Sweep failed")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
