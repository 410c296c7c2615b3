package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/Binayak012/StillGood/internal/middleware"
	"github.com/Binayak012/StillGood/internal/models"
	"github.com/Binayak012/StillGood/internal/services"
	"github.com/go-chi/chi/v5"
)

type ItemHandler struct {
	itemService *services.ItemService
}

func NewItemHandler(itemService *services.ItemService) *ItemHandler {
	return &ItemHandler{itemService: itemService}
}

func (handler *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	membership := middleware.GetMembership(r.Context())

	status := r.URL.Query().Get("status")
	if status == "" {
		status = "active"
	}
	if status != "active" && status != "archived" {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "status must be 'active' or 'archived'")
		return
	}

	items, err := handler.itemService.List(r.Context(), membership.HouseholdID, status == "archived")
	if err != nil {
		slog.Error("listing items", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Failed to load items")
		return
	}
	if items == nil {
		items = []models.Item{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

type createItemRequest struct {
	Name            string     `json:"name"`
	Category        string     `json:"category"`
	Quantity        string     `json:"quantity"`
	DateAdded       *time.Time `json:"dateAdded"`
	Opened          *bool      `json:"opened"`
	CustomFreshDays *int       `json:"customFreshDays"`
}

func validateItemFields(name, category, quantity string, customFreshDays *int) string {
	if len(name) < 1 || len(name) > 120 {
		return "Name must be 1-120 characters"
	}
	if len(category) < 2 || len(category) > 40 {
		return "Category must be 2-40 characters"
	}
	if len(quantity) < 1 || len(quantity) > 60 {
		return "Quantity must be 1-60 characters"
	}
	if customFreshDays != nil && (*customFreshDays < 1 || *customFreshDays > 90) {
		return "customFreshDays must be between 1 and 90"
	}
	return ""
}

func (handler *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	membership := middleware.GetMembership(r.Context())

	var request createItemRequest
	if !decodeJSON(w, r, &request) {
		return
	}
	if message := validateItemFields(request.Name, request.Category, request.Quantity, request.CustomFreshDays); message != "" {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", message)
		return
	}

	item, err := handler.itemService.Create(r.Context(), membership.HouseholdID, user.ID, services.CreateItemInput{
		Name:            request.Name,
		Category:        request.Category,
		Quantity:        request.Quantity,
		DateAdded:       request.DateAdded,
		Opened:          request.Opened,
		CustomFreshDays: request.CustomFreshDays,
	})
	if err != nil {
		slog.Error("creating item", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Failed to create item")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"item": item})
}

// Update reads the body as raw fields so that an explicit JSON null is
// visible: a struct decode would leave pointer fields nil for both a null
// value and an absent key, and null is how clients reset opened to unknown
// or drop a custom freshness override.
func (handler *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	membership := middleware.GetMembership(r.Context())

	var fields map[string]json.RawMessage
	if !decodeJSON(w, r, &fields) {
		return
	}

	var update services.ItemUpdate
	updated := false

	if raw, ok := fields["name"]; ok {
		var value string
		if err := json.Unmarshal(raw, &value); err != nil {
			writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "name must be a string")
			return
		}
		if len(value) < 1 || len(value) > 120 {
			writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Name must be 1-120 characters")
			return
		}
		update.Name = &value
		updated = true
	}
	if raw, ok := fields["category"]; ok {
		var value string
		if err := json.Unmarshal(raw, &value); err != nil {
			writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "category must be a string")
			return
		}
		if len(value) < 2 || len(value) > 40 {
			writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Category must be 2-40 characters")
			return
		}
		update.Category = &value
		updated = true
	}
	if raw, ok := fields["quantity"]; ok {
		var value string
		if err := json.Unmarshal(raw, &value); err != nil {
			writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "quantity must be a string")
			return
		}
		if len(value) < 1 || len(value) > 60 {
			writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Quantity must be 1-60 characters")
			return
		}
		update.Quantity = &value
		updated = true
	}
	if raw, ok := fields["dateAdded"]; ok {
		var value time.Time
		if err := json.Unmarshal(raw, &value); err != nil {
			writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "dateAdded must be an RFC 3339 timestamp")
			return
		}
		update.DateAdded = &value
		updated = true
	}
	if raw, ok := fields["opened"]; ok {
		var value *bool
		if err := json.Unmarshal(raw, &value); err != nil {
			writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "opened must be a boolean or null")
			return
		}
		update.Opened = value
		update.OpenedSet = true
		updated = true
	}
	if raw, ok := fields["customFreshDays"]; ok {
		var value *int
		if err := json.Unmarshal(raw, &value); err != nil {
			writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "customFreshDays must be an integer or null")
			return
		}
		if value != nil && (*value < 1 || *value > 90) {
			writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "customFreshDays must be between 1 and 90")
			return
		}
		update.CustomFreshDays = value
		update.CustomFreshDaysSet = true
		updated = true
	}

	if !updated {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "At least one field must be updated")
		return
	}

	item, err := handler.itemService.Update(r.Context(), membership.HouseholdID, chi.URLParam(r, "id"), update)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "ITEM_NOT_FOUND", "Item not found")
		return
	}
	if err != nil {
		slog.Error("updating item", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Failed to update item")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"item": item})
}

func (handler *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	membership := middleware.GetMembership(r.Context())

	err := handler.itemService.Delete(r.Context(), membership.HouseholdID, chi.URLParam(r, "id"))
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "ITEM_NOT_FOUND", "Item not found")
		return
	}
	if err != nil {
		slog.Error("deleting item", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Failed to delete item")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (handler *ItemHandler) Open(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	membership := middleware.GetMembership(r.Context())

	item, err := handler.itemService.Open(r.Context(), membership.HouseholdID, chi.URLParam(r, "id"), user.ID)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "ITEM_NOT_FOUND", "Item not found")
		return
	}
	if errors.Is(err, services.ErrItemArchived) {
		writeError(w, http.StatusBadRequest, "ITEM_ARCHIVED", "Cannot open an archived item")
		return
	}
	if err != nil {
		slog.Error("opening item", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Failed to open item")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"item": item})
}

func (handler *ItemHandler) Consume(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	membership := middleware.GetMembership(r.Context())

	item, err := handler.itemService.Consume(r.Context(), membership.HouseholdID, chi.URLParam(r, "id"), user.ID)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "ITEM_NOT_FOUND", "Item not found")
		return
	}
	if errors.Is(err, services.ErrItemArchived) {
		writeError(w, http.StatusBadRequest, "ITEM_ARCHIVED", "Item already archived")
		return
	}
	if err != nil {
		slog.Error("consuming item", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Failed to consume item")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"item": item})
}
