package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Binayak012/StillGood/internal/models"
	"github.com/Binayak012/StillGood/internal/repository"
)

// SweepStats aggregates one sweep pass. ScannedItems counts every item
// visited, including ones whose refresh failed.
type SweepStats struct {
	ScannedItems  int `json:"scannedItems"`
	AlertsCreated int `json:"alertsCreated"`
}

// AlertSweeper walks every household's active items, re-derives freshness
// and fans out alerts. Per-item failures are logged and skipped so one bad
// record cannot block the rest of the pass.
type AlertSweeper struct {
	householdRepo repository.HouseholdRepository
	itemRepo      repository.ItemRepository
	alertRepo     repository.AlertRepository
	analyticsRepo repository.AnalyticsRepository
	refresher     *FreshnessService
}

func NewAlertSweeper(
	householdRepo repository.HouseholdRepository,
	itemRepo repository.ItemRepository,
	alertRepo repository.AlertRepository,
	analyticsRepo repository.AnalyticsRepository,
	refresher *FreshnessService,
) *AlertSweeper {
	return &AlertSweeper{
		householdRepo: householdRepo,
		itemRepo:      itemRepo,
		alertRepo:     alertRepo,
		analyticsRepo: analyticsRepo,
		refresher:     refresher,
	}
}

func alertMessage(name string, alertType models.AlertType) string {
	if alertType == models.AlertTypeExpired {
		return fmt.Sprintf("%s has expired.", name)
	}
	return fmt.Sprintf("%s should be used soon.", name)
}

// Run executes one sweep over all households as of now.
//
// Dedup is a read-then-conditional-write guard, not a lock: two sweeps
// racing on the same item can both pass the unread check and create
// duplicate alerts. The scheduler prevents that within one process; it is
// an accepted race for concurrent on-demand sweeps.
func (sweeper *AlertSweeper) Run(ctx context.Context, now time.Time) (SweepStats, error) {
	var stats SweepStats

	households, err := sweeper.householdRepo.FindAll(ctx)
	if err != nil {
		return stats, fmt.Errorf("listing households: %w", err)
	}

	for _, household := range households {
		if err := sweeper.sweepHousehold(ctx, household, now, &stats); err != nil {
			slog.Error("sweeping household", "household", household.ID, "error", err)
		}
	}

	return stats, nil
}

func (sweeper *AlertSweeper) sweepHousehold(ctx context.Context, household models.Household, now time.Time, stats *SweepStats) error {
	members, err := sweeper.householdRepo.FindMembers(ctx, household.ID)
	if err != nil {
		return fmt.Errorf("listing members: %w", err)
	}

	items, err := sweeper.itemRepo.FindActive(ctx, household.ID)
	if err != nil {
		return fmt.Errorf("listing active items: %w", err)
	}

	for _, item := range items {
		stats.ScannedItems++
		if err := sweeper.sweepItem(ctx, household, members, item, now, stats); err != nil {
			slog.Error("sweeping item", "item", item.ID, "household", household.ID, "error", err)
		}
	}
	return nil
}

func (sweeper *AlertSweeper) sweepItem(ctx context.Context, household models.Household, members []models.HouseholdMember, item models.Item, now time.Time, stats *SweepStats) error {
	refreshed, err := sweeper.refresher.Refresh(ctx, item, RefreshOptions{Now: now})
	if err != nil {
		return fmt.Errorf("refreshing: %w", err)
	}

	if refreshed.Status == models.ItemStatusFresh {
		return nil
	}

	alertType := models.AlertTypeUseSoon
	if refreshed.Status == models.ItemStatusExpired {
		alertType = models.AlertTypeExpired

		exists, err := sweeper.analyticsRepo.HasExpiredEvent(ctx, household.ID, refreshed.ID)
		if err != nil {
			return fmt.Errorf("checking expired event: %w", err)
		}
		if !exists {
			if _, err := sweeper.analyticsRepo.Create(ctx, models.AnalyticsEvent{
				HouseholdID: household.ID,
				ItemID:      &refreshed.ID,
				Type:        models.EventItemExpired,
			}); err != nil {
				return fmt.Errorf("recording expired event: %w", err)
			}
		}
	}

	for _, member := range members {
		unread, err := sweeper.alertRepo.HasUnread(ctx, member.UserID, refreshed.ID, alertType)
		if err != nil {
			return fmt.Errorf("checking unread alert: %w", err)
		}
		if unread {
			continue
		}

		alert, err := sweeper.alertRepo.Create(ctx, models.Alert{
			HouseholdID: household.ID,
			UserID:      member.UserID,
			ItemID:      refreshed.ID,
			Type:        alertType,
			Message:     alertMessage(refreshed.Name, alertType),
		})
		if err != nil {
			return fmt.Errorf("creating alert: %w", err)
		}
		stats.AlertsCreated++

		if err := sweeper.logNotifications(ctx, alert, member); err != nil {
			return err
		}
	}
	return nil
}

// logNotifications appends one row per channel. A disabled preference
// skips delivery, never alert creation.
func (sweeper *AlertSweeper) logNotifications(ctx context.Context, alert models.Alert, member models.HouseholdMember) error {
	inAppStatus := models.NotificationSkipped
	inAppDetail := "Skipped in-app alert because preference is disabled."
	if member.PrefsInApp {
		inAppStatus = models.NotificationSent
		inAppDetail = "In-app alert created."
	}
	if _, err := sweeper.alertRepo.CreateNotificationLog(ctx, models.NotificationLog{
		UserID:  member.UserID,
		AlertID: alert.ID,
		Channel: models.ChannelInApp,
		Status:  inAppStatus,
		Detail:  inAppDetail,
	}); err != nil {
		return fmt.Errorf("logging in-app notification: %w", err)
	}

	emailStatus := models.NotificationSkipped
	emailDetail := "Skipped email because preference is disabled."
	if member.PrefsEmail {
		emailStatus = models.NotificationSent
		emailDetail = fmt.Sprintf("Simulated email sent for %s alert.", alert.Type)
	}
	if _, err := sweeper.alertRepo.CreateNotificationLog(ctx, models.NotificationLog{
		UserID:  member.UserID,
		AlertID: alert.ID,
		Channel: models.ChannelEmail,
		Status:  emailStatus,
		Detail:  emailDetail,
	}); err != nil {
		return fmt.Errorf("logging email notification: %w", err)
	}
	return nil
}
