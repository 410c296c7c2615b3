package services

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/Binayak012/StillGood/internal/models"
	"github.com/Binayak012/StillGood/internal/repository"
)

//go:embed data/recipes.json
var recipesFS embed.FS

const maxSuggestions = 6

type recipeEntry struct {
	Name         string   `json:"name"`
	Ingredients  []string `json:"ingredients"`
	ShortSteps   []string `json:"shortSteps"`
	TimeEstimate string   `json:"timeEstimate"`
}

// RecipeSuggestion is a recipe ranked by how many of its ingredients match
// the household's use-soon items.
type RecipeSuggestion struct {
	Name               string   `json:"name"`
	MatchedIngredients []string `json:"matchedIngredients"`
	ShortSteps         []string `json:"shortSteps"`
	TimeEstimate       string   `json:"timeEstimate"`
}

// RecipeService suggests recipes that use up items close to expiry.
type RecipeService struct {
	itemRepo  repository.ItemRepository
	refresher *FreshnessService
	recipes   []recipeEntry
}

func NewRecipeService(itemRepo repository.ItemRepository, refresher *FreshnessService) (*RecipeService, error) {
	content, err := recipesFS.ReadFile("data/recipes.json")
	if err != nil {
		return nil, fmt.Errorf("reading recipe data: %w", err)
	}

	var recipes []recipeEntry
	if err := json.Unmarshal(content, &recipes); err != nil {
		return nil, fmt.Errorf("parsing recipe data: %w", err)
	}

	return &RecipeService{itemRepo: itemRepo, refresher: refresher, recipes: recipes}, nil
}

var tokenSplit = regexp.MustCompile(`[^a-z0-9]+`)

func tokenizeIngredientCandidates(value string) []string {
	var tokens []string
	for _, token := range tokenSplit.Split(strings.ToLower(value), -1) {
		if len(token) > 1 {
			tokens = append(tokens, token)
		}
	}
	return tokens
}

// Suggestions refreshes the household's active items, collects keywords
// from the use-soon ones and ranks recipes by ingredient overlap.
func (service *RecipeService) Suggestions(ctx context.Context, householdID string) ([]RecipeSuggestion, error) {
	items, err := service.itemRepo.FindActive(ctx, householdID)
	if err != nil {
		return nil, err
	}
	refreshed, err := service.refresher.RefreshAll(ctx, items)
	if err != nil {
		return nil, err
	}

	keywords := make(map[string]bool)
	for _, item := range refreshed {
		if item.Status != models.ItemStatusUseSoon {
			continue
		}
		for _, token := range tokenizeIngredientCandidates(item.Name) {
			keywords[token] = true
		}
		keywords[strings.ToLower(item.Category)] = true
	}

	var suggestions []RecipeSuggestion
	for _, recipe := range service.recipes {
		var matched []string
		for _, ingredient := range recipe.Ingredients {
			if keywords[strings.ToLower(ingredient)] {
				matched = append(matched, ingredient)
			}
		}
		if len(matched) == 0 {
			continue
		}
		suggestions = append(suggestions, RecipeSuggestion{
			Name:               recipe.Name,
			MatchedIngredients: matched,
			ShortSteps:         recipe.ShortSteps,
			TimeEstimate:       recipe.TimeEstimate,
		})
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		return len(suggestions[i].MatchedIngredients) > len(suggestions[j].MatchedIngredients)
	})
	if len(suggestions) > maxSuggestions {
		suggestions = suggestions[:maxSuggestions]
	}
	return suggestions, nil
}
