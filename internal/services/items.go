package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/Binayak012/StillGood/internal/freshness"
	"github.com/Binayak012/StillGood/internal/models"
	"github.com/Binayak012/StillGood/internal/repository"
)

var ErrItemArchived = errors.New("item is archived")

// ItemService implements the item lifecycle: every mutation recomputes the
// derived fields through the freshness engine before the row is written.
type ItemService struct {
	itemRepo      repository.ItemRepository
	analyticsRepo repository.AnalyticsRepository
	refresher     *FreshnessService
}

func NewItemService(
	itemRepo repository.ItemRepository,
	analyticsRepo repository.AnalyticsRepository,
	refresher *FreshnessService,
) *ItemService {
	return &ItemService{
		itemRepo:      itemRepo,
		analyticsRepo: analyticsRepo,
		refresher:     refresher,
	}
}

type CreateItemInput struct {
	Name            string
	Category        string
	Quantity        string
	DateAdded       *time.Time
	Opened          *bool
	CustomFreshDays *int
}

// ItemUpdate carries a partial update; nil fields keep the stored value.
// Opened and CustomFreshDays distinguish "absent" from "set to unknown/
// cleared" with the Set flags.
type ItemUpdate struct {
	Name               *string
	Category           *string
	Quantity           *string
	DateAdded          *time.Time
	Opened             *bool
	OpenedSet          bool
	CustomFreshDays    *int
	CustomFreshDaysSet bool
}

// List returns the household's items. Active items are refreshed first so
// the derived fields reflect read time; archived items are returned as
// stored.
func (service *ItemService) List(ctx context.Context, householdID string, archived bool) ([]models.Item, error) {
	if archived {
		return service.itemRepo.FindArchived(ctx, householdID)
	}

	items, err := service.itemRepo.FindActive(ctx, householdID)
	if err != nil {
		return nil, err
	}
	return service.refresher.RefreshAll(ctx, items)
}

func (service *ItemService) Create(ctx context.Context, householdID, userID string, input CreateItemInput) (models.Item, error) {
	now := time.Now()
	dateAdded := now
	if input.DateAdded != nil {
		dateAdded = *input.DateAdded
	}

	// Creation always records a definite state; an omitted flag means the
	// item starts unopened.
	opened := input.Opened != nil && *input.Opened
	var openedAt *time.Time
	if opened {
		openedAt = &now
	}

	result, err := service.refresher.Compute(ctx, freshness.Input{
		Category:        input.Category,
		DateAdded:       dateAdded,
		Opened:          &opened,
		OpenedAt:        openedAt,
		CustomFreshDays: input.CustomFreshDays,
		Now:             now,
	})
	if err != nil {
		return models.Item{}, err
	}

	item, err := service.itemRepo.Create(ctx, models.Item{
		HouseholdID:     householdID,
		CreatedByUserID: userID,
		Name:            input.Name,
		Category:        strings.ToLower(input.Category),
		Quantity:        input.Quantity,
		DateAdded:       dateAdded,
		Opened:          &opened,
		OpenedAt:        openedAt,
		CustomFreshDays: input.CustomFreshDays,
		ExpiresAt:       result.ExpiresAt,
		DaysRemaining:   result.DaysRemaining,
		Status:          result.Status,
		Confidence:      result.Confidence,
	})
	if err != nil {
		return models.Item{}, err
	}

	service.trackEvent(ctx, householdID, item.ID, userID, models.EventItemAdded)
	return item, nil
}

func (service *ItemService) Update(ctx context.Context, householdID, id string, update ItemUpdate) (models.Item, error) {
	existing, err := service.itemRepo.FindByID(ctx, householdID, id)
	if err != nil {
		return models.Item{}, err
	}

	item := existing
	if update.Name != nil {
		item.Name = *update.Name
	}
	if update.Category != nil {
		item.Category = strings.ToLower(*update.Category)
	}
	if update.Quantity != nil {
		item.Quantity = *update.Quantity
	}
	if update.DateAdded != nil {
		item.DateAdded = *update.DateAdded
	}
	if update.CustomFreshDaysSet {
		item.CustomFreshDays = update.CustomFreshDays
	}

	if update.OpenedSet {
		item.Opened = update.Opened
	}
	switch {
	case item.Opened != nil && *item.Opened:
		wasOpened := existing.Opened != nil && *existing.Opened
		if !wasOpened {
			now := time.Now()
			item.OpenedAt = &now
		} else if existing.OpenedAt != nil {
			item.OpenedAt = existing.OpenedAt
		} else {
			now := time.Now()
			item.OpenedAt = &now
		}
	default:
		item.OpenedAt = nil
	}

	result, err := service.refresher.Compute(ctx, freshness.Input{
		Category:          item.Category,
		DateAdded:         item.DateAdded,
		Opened:            item.Opened,
		OpenedAt:          item.OpenedAt,
		CustomFreshDays:   item.CustomFreshDays,
		PreviousExpiresAt: &existing.ExpiresAt,
		Now:               time.Now(),
	})
	if err != nil {
		return models.Item{}, err
	}

	item.ExpiresAt = result.ExpiresAt
	item.DaysRemaining = result.DaysRemaining
	item.Status = result.Status
	item.Confidence = result.Confidence

	if err := service.itemRepo.Update(ctx, item); err != nil {
		return models.Item{}, err
	}
	return item, nil
}

// Open marks the item opened and recomputes freshness clamped against the
// expiry computed before the transition.
func (service *ItemService) Open(ctx context.Context, householdID, id, userID string) (models.Item, error) {
	existing, err := service.itemRepo.FindByID(ctx, householdID, id)
	if err != nil {
		return models.Item{}, err
	}
	if existing.ArchivedAt != nil {
		return models.Item{}, ErrItemArchived
	}

	previousExpiresAt := existing.ExpiresAt

	opened := true
	existing.Opened = &opened
	if existing.OpenedAt == nil {
		now := time.Now()
		existing.OpenedAt = &now
	}
	if err := service.itemRepo.Update(ctx, existing); err != nil {
		return models.Item{}, err
	}

	item, err := service.refresher.Refresh(ctx, existing, RefreshOptions{
		PreviousExpiresAt: &previousExpiresAt,
	})
	if err != nil {
		return models.Item{}, err
	}

	service.trackEvent(ctx, householdID, item.ID, userID, models.EventItemOpened)
	return item, nil
}

// Consume archives the item and records the consumption event.
func (service *ItemService) Consume(ctx context.Context, householdID, id, userID string) (models.Item, error) {
	existing, err := service.itemRepo.FindByID(ctx, householdID, id)
	if err != nil {
		return models.Item{}, err
	}
	if existing.ArchivedAt != nil {
		return models.Item{}, ErrItemArchived
	}

	now := time.Now()
	if err := service.itemRepo.Archive(ctx, existing.ID, now); err != nil {
		return models.Item{}, err
	}
	existing.ArchivedAt = &now
	existing.ConsumedAt = &now

	service.trackEvent(ctx, householdID, existing.ID, userID, models.EventItemConsumed)
	return existing, nil
}

func (service *ItemService) Delete(ctx context.Context, householdID, id string) error {
	existing, err := service.itemRepo.FindByID(ctx, householdID, id)
	if err != nil {
		return err
	}
	return service.itemRepo.Delete(ctx, existing.ID)
}

func (service *ItemService) trackEvent(ctx context.Context, householdID, itemID, userID string, eventType models.AnalyticsEventType) {
	_, err := service.analyticsRepo.Create(ctx, models.AnalyticsEvent{
		HouseholdID: householdID,
		ItemID:      &itemID,
		UserID:      &userID,
		Type:        eventType,
	})
	if err != nil {
		slog.Warn("recording analytics event", "type", eventType, "item", itemID, "error", err)
	}
}
