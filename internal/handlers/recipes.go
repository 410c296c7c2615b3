package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Binayak012/StillGood/internal/middleware"
	"github.com/Binayak012/StillGood/internal/services"
)

type RecipeHandler struct {
	recipeService *services.RecipeService
}

func NewRecipeHandler(recipeService *services.RecipeService) *RecipeHandler {
	return &RecipeHandler{recipeService: recipeService}
}

func (handler *RecipeHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	membership := middleware.GetMembership(r.Context())

	suggestions, err := handler.recipeService.Suggestions(r.Context(), membership.HouseholdID)
	if err != nil {
		slog.Error("building recipe suggestions", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Failed to load suggestions")
		return
	}
	if suggestions == nil {
		suggestions = []services.RecipeSuggestion{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"suggestions": suggestions})
}
