package services

import (
	"context"
	"fmt"
	"time"

	"github.com/Binayak012/StillGood/internal/freshness"
	"github.com/Binayak012/StillGood/internal/models"
	"github.com/Binayak012/StillGood/internal/repository"
)

// RefreshOptions overrides the defaults Refresh derives from the item
// itself: PreviousExpiresAt defaults to the item's stored expiry, Now to
// the wall clock.
type RefreshOptions struct {
	PreviousExpiresAt *time.Time
	Now               time.Time
}

// FreshnessService recomputes an item's derived fields from its category
// rule and persists them. It is the only writer of those fields.
type FreshnessService struct {
	itemRepo repository.ItemRepository
	ruleRepo repository.RuleRepository
}

func NewFreshnessService(itemRepo repository.ItemRepository, ruleRepo repository.RuleRepository) *FreshnessService {
	return &FreshnessService{itemRepo: itemRepo, ruleRepo: ruleRepo}
}

// Compute looks up the category rule and runs the engine without
// persisting anything. Used when the caller writes the whole item row
// itself (create, update).
func (service *FreshnessService) Compute(ctx context.Context, input freshness.Input) (freshness.Result, error) {
	rule, found, err := service.ruleRepo.Lookup(ctx, input.Category)
	if err != nil {
		return freshness.Result{}, fmt.Errorf("looking up rule: %w", err)
	}
	if found {
		input.Rule = &freshness.Rule{
			UnopenedDays: rule.UnopenedDays,
			OpenedDays:   rule.OpenedDays,
		}
	}
	return freshness.Calculate(input), nil
}

// Refresh recomputes the item's derived fields as of opts.Now (or the
// current time) and writes only those four columns back. Calling it twice
// with the same now yields the same stored state.
func (service *FreshnessService) Refresh(ctx context.Context, item models.Item, opts RefreshOptions) (models.Item, error) {
	previous := item.ExpiresAt
	if opts.PreviousExpiresAt != nil {
		previous = *opts.PreviousExpiresAt
	}

	result, err := service.Compute(ctx, freshness.Input{
		Category:          item.Category,
		DateAdded:         item.DateAdded,
		Opened:            item.Opened,
		OpenedAt:          item.OpenedAt,
		CustomFreshDays:   item.CustomFreshDays,
		PreviousExpiresAt: &previous,
		Now:               opts.Now,
	})
	if err != nil {
		return models.Item{}, err
	}

	if err := service.itemRepo.UpdateDerivedFields(ctx, item.ID, repository.DerivedFields{
		ExpiresAt:     result.ExpiresAt,
		DaysRemaining: result.DaysRemaining,
		Status:        result.Status,
		Confidence:    result.Confidence,
	}); err != nil {
		return models.Item{}, err
	}

	item.ExpiresAt = result.ExpiresAt
	item.DaysRemaining = result.DaysRemaining
	item.Status = result.Status
	item.Confidence = result.Confidence
	return item, nil
}

// RefreshAll refreshes every item in the slice, returning the updated
// records in the same order.
func (service *FreshnessService) RefreshAll(ctx context.Context, items []models.Item) ([]models.Item, error) {
	refreshed := make([]models.Item, 0, len(items))
	for _, item := range items {
		updated, err := service.Refresh(ctx, item, RefreshOptions{})
		if err != nil {
			return nil, fmt.Errorf("refreshing item %s: %w", item.ID, err)
		}
		refreshed = append(refreshed, updated)
	}
	return refreshed, nil
}
