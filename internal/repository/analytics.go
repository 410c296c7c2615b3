package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Binayak012/StillGood/internal/models"
	"github.com/google/uuid"
)

type AnalyticsRepository interface {
	Create(ctx context.Context, event models.AnalyticsEvent) (models.AnalyticsEvent, error)
	HasExpiredEvent(ctx context.Context, householdID, itemID string) (bool, error)
	CountSince(ctx context.Context, householdID string, eventType models.AnalyticsEventType, since time.Time) (int, error)
	FindSince(ctx context.Context, householdID string, eventTypes []models.AnalyticsEventType, since time.Time) ([]models.AnalyticsEvent, error)
}

type SQLiteAnalyticsRepository struct {
	database *sql.DB
}

func NewAnalyticsRepository(database *sql.DB) *SQLiteAnalyticsRepository {
	return &SQLiteAnalyticsRepository{database: database}
}

func (repository *SQLiteAnalyticsRepository) Create(ctx context.Context, event models.AnalyticsEvent) (models.AnalyticsEvent, error) {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	_, err := repository.database.ExecContext(ctx,
		`INSERT INTO analytics_events (id, household_id, item_id, user_id, type, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		event.ID, event.HouseholdID, event.ItemID, event.UserID, event.Type, event.CreatedAt,
	)
	if err != nil {
		return models.AnalyticsEvent{}, fmt.Errorf("creating analytics event: %w", err)
	}
	return event, nil
}

func (repository *SQLiteAnalyticsRepository) HasExpiredEvent(ctx context.Context, householdID, itemID string) (bool, error) {
	var count int
	err := repository.database.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM analytics_events WHERE household_id = ? AND item_id = ? AND type = ?",
		householdID, itemID, models.EventItemExpired,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking expired event: %w", err)
	}
	return count > 0, nil
}

func (repository *SQLiteAnalyticsRepository) CountSince(ctx context.Context, householdID string, eventType models.AnalyticsEventType, since time.Time) (int, error) {
	var count int
	err := repository.database.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM analytics_events WHERE household_id = ? AND type = ? AND created_at >= ?",
		householdID, eventType, since,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting analytics events: %w", err)
	}
	return count, nil
}

// FindSince returns events of the given types ordered oldest first, each
// carrying the category of its item when the item still exists.
func (repository *SQLiteAnalyticsRepository) FindSince(ctx context.Context, householdID string, eventTypes []models.AnalyticsEventType, since time.Time) ([]models.AnalyticsEvent, error) {
	if len(eventTypes) == 0 {
		return nil, nil
	}

	placeholders := ""
	args := []any{householdID}
	for i, eventType := range eventTypes {
		if i > 0 {
			placeholders += ","
		}
		placeholders += "?"
		args = append(args, eventType)
	}
	args = append(args, since)

	rows, err := repository.database.QueryContext(ctx,
		`SELECT e.id, e.household_id, e.item_id, e.user_id, e.type, e.created_at,
			COALESCE(i.category, 'other')
		FROM analytics_events e
		LEFT JOIN items i ON i.id = e.item_id
		WHERE e.household_id = ? AND e.type IN (`+placeholders+`) AND e.created_at >= ?
		ORDER BY e.created_at`, args...,
	)
	if err != nil {
		return nil, fmt.Errorf("finding analytics events: %w", err)
	}
	defer rows.Close()

	var events []models.AnalyticsEvent
	for rows.Next() {
		var event models.AnalyticsEvent
		if err := rows.Scan(&event.ID, &event.HouseholdID, &event.ItemID, &event.UserID,
			&event.Type, &event.CreatedAt, &event.ItemCategory); err != nil {
			return nil, fmt.Errorf("scanning analytics event: %w", err)
		}
		events = append(events, event)
	}
	return events, rows.Err()
}
