package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/Binayak012/StillGood/internal/models"
	"github.com/Binayak012/StillGood/internal/repository"
	"github.com/Binayak012/StillGood/internal/services"
	"github.com/Binayak012/StillGood/internal/testutil"
)

func TestRecipeService_SuggestsRecipesForUseSoonItems(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	itemRepo := repository.NewItemRepository(db)
	refresher := services.NewFreshnessService(itemRepo, repository.NewRuleRepository(db))
	service, err := services.NewRecipeService(itemRepo, refresher)
	if err != nil {
		t.Fatalf("creating recipe service: %v", err)
	}
	ctx := context.Background()

	alice := seedUser(t, db, false, true)
	household := seedHousehold(t, db, alice)

	// Dairy added 5 days ago is use-soon (2 days left of the 7-day window).
	now := time.Now().UTC()
	seedItem(t, db, models.Item{
		HouseholdID: household.ID, CreatedByUserID: alice.ID,
		Name: "Milk", Category: "dairy", DateAdded: now.AddDate(0, 0, -5),
	})

	suggestions, err := service.Suggestions(ctx, household.ID)
	if err != nil {
		t.Fatalf("building suggestions: %v", err)
	}
	if len(suggestions) == 0 {
		t.Fatal("expected at least one suggestion for a use-soon dairy item")
	}
	for _, suggestion := range suggestions {
		if len(suggestion.MatchedIngredients) == 0 {
			t.Errorf("suggestion %q has no matched ingredients", suggestion.Name)
		}
	}

	// "Cheese Omelette" lists both milk and dairy, so it must outrank
	// single-match recipes.
	if suggestions[0].Name != "Cheese Omelette" {
		t.Errorf("expected 'Cheese Omelette' first, got %q", suggestions[0].Name)
	}
	if len(suggestions[0].MatchedIngredients) != 2 {
		t.Errorf("expected 2 matched ingredients, got %v", suggestions[0].MatchedIngredients)
	}
}

func TestRecipeService_NoSuggestionsWhenEverythingIsFresh(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	itemRepo := repository.NewItemRepository(db)
	refresher := services.NewFreshnessService(itemRepo, repository.NewRuleRepository(db))
	service, err := services.NewRecipeService(itemRepo, refresher)
	if err != nil {
		t.Fatalf("creating recipe service: %v", err)
	}

	alice := seedUser(t, db, false, true)
	household := seedHousehold(t, db, alice)
	seedItem(t, db, models.Item{
		HouseholdID: household.ID, CreatedByUserID: alice.ID,
		Name: "Milk", Category: "dairy", DateAdded: time.Now().UTC(),
	})

	suggestions, err := service.Suggestions(context.Background(), household.ID)
	if err != nil {
		t.Fatalf("building suggestions: %v", err)
	}
	if len(suggestions) != 0 {
		t.Errorf("expected no suggestions, got %d", len(suggestions))
	}
}
