package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Binayak012/StillGood/internal/models"
	"github.com/google/uuid"
)

type AlertRepository interface {
	FindByID(ctx context.Context, id string) (models.Alert, error)
	FindForUser(ctx context.Context, householdID, userID string) ([]models.Alert, error)
	HasUnread(ctx context.Context, userID, itemID string, alertType models.AlertType) (bool, error)
	Create(ctx context.Context, alert models.Alert) (models.Alert, error)
	MarkRead(ctx context.Context, id string, at time.Time) error
	CreateNotificationLog(ctx context.Context, log models.NotificationLog) (models.NotificationLog, error)
	FindNotificationLogs(ctx context.Context, alertID string) ([]models.NotificationLog, error)
}

type SQLiteAlertRepository struct {
	database *sql.DB
}

func NewAlertRepository(database *sql.DB) *SQLiteAlertRepository {
	return &SQLiteAlertRepository{database: database}
}

func (repository *SQLiteAlertRepository) FindByID(ctx context.Context, id string) (models.Alert, error) {
	var alert models.Alert
	err := repository.database.QueryRowContext(ctx,
		`SELECT id, household_id, user_id, item_id, type, message, read_at, created_at
		FROM alerts WHERE id = ?`, id,
	).Scan(&alert.ID, &alert.HouseholdID, &alert.UserID, &alert.ItemID,
		&alert.Type, &alert.Message, &alert.ReadAt, &alert.CreatedAt)
	if err != nil {
		return models.Alert{}, fmt.Errorf("finding alert by id: %w", err)
	}
	return alert, nil
}

func (repository *SQLiteAlertRepository) FindForUser(ctx context.Context, householdID, userID string) ([]models.Alert, error) {
	rows, err := repository.database.QueryContext(ctx,
		`SELECT a.id, a.household_id, a.user_id, a.item_id, a.type, a.message, a.read_at, a.created_at,
			i.name, i.category, i.status
		FROM alerts a
		JOIN items i ON i.id = a.item_id
		WHERE a.household_id = ? AND a.user_id = ?
		ORDER BY a.created_at DESC`, householdID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("finding alerts for user: %w", err)
	}
	defer rows.Close()

	var alerts []models.Alert
	for rows.Next() {
		var alert models.Alert
		if err := rows.Scan(&alert.ID, &alert.HouseholdID, &alert.UserID, &alert.ItemID,
			&alert.Type, &alert.Message, &alert.ReadAt, &alert.CreatedAt,
			&alert.ItemName, &alert.ItemCategory, &alert.ItemStatus); err != nil {
			return nil, fmt.Errorf("scanning alert: %w", err)
		}
		alerts = append(alerts, alert)
	}
	return alerts, rows.Err()
}

func (repository *SQLiteAlertRepository) HasUnread(ctx context.Context, userID, itemID string, alertType models.AlertType) (bool, error) {
	var count int
	err := repository.database.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM alerts WHERE user_id = ? AND item_id = ? AND type = ? AND read_at IS NULL",
		userID, itemID, alertType,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking unread alerts: %w", err)
	}
	return count > 0, nil
}

func (repository *SQLiteAlertRepository) Create(ctx context.Context, alert models.Alert) (models.Alert, error) {
	if alert.ID == "" {
		alert.ID = uuid.New().String()
	}
	alert.CreatedAt = time.Now()

	_, err := repository.database.ExecContext(ctx,
		`INSERT INTO alerts (id, household_id, user_id, item_id, type, message, read_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		alert.ID, alert.HouseholdID, alert.UserID, alert.ItemID,
		alert.Type, alert.Message, alert.ReadAt, alert.CreatedAt,
	)
	if err != nil {
		return models.Alert{}, fmt.Errorf("creating alert: %w", err)
	}
	return alert, nil
}

// MarkRead sets read_at once; an already-read alert is left as is.
func (repository *SQLiteAlertRepository) MarkRead(ctx context.Context, id string, at time.Time) error {
	_, err := repository.database.ExecContext(ctx,
		"UPDATE alerts SET read_at = ? WHERE id = ? AND read_at IS NULL", at, id,
	)
	if err != nil {
		return fmt.Errorf("marking alert read: %w", err)
	}
	return nil
}

func (repository *SQLiteAlertRepository) CreateNotificationLog(ctx context.Context, log models.NotificationLog) (models.NotificationLog, error) {
	if log.ID == "" {
		log.ID = uuid.New().String()
	}
	log.CreatedAt = time.Now()

	_, err := repository.database.ExecContext(ctx,
		`INSERT INTO notification_logs (id, user_id, alert_id, channel, status, detail, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		log.ID, log.UserID, log.AlertID, log.Channel, log.Status, log.Detail, log.CreatedAt,
	)
	if err != nil {
		return models.NotificationLog{}, fmt.Errorf("creating notification log: %w", err)
	}
	return log, nil
}

func (repository *SQLiteAlertRepository) FindNotificationLogs(ctx context.Context, alertID string) ([]models.NotificationLog, error) {
	rows, err := repository.database.QueryContext(ctx,
		`SELECT id, user_id, alert_id, channel, status, detail, created_at
		FROM notification_logs WHERE alert_id = ? ORDER BY created_at`, alertID,
	)
	if err != nil {
		return nil, fmt.Errorf("finding notification logs: %w", err)
	}
	defer rows.Close()

	var logs []models.NotificationLog
	for rows.Next() {
		var log models.NotificationLog
		if err := rows.Scan(&log.ID, &log.UserID, &log.AlertID, &log.Channel,
			&log.Status, &log.Detail, &log.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning notification log: %w", err)
		}
		logs = append(logs, log)
	}
	return logs, rows.Err()
}
