package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Binayak012/StillGood/internal/models"
	"github.com/google/uuid"
)

// DerivedFields is the engine-owned slice of an item: the only part of the
// record UpdateDerivedFields touches.
type DerivedFields struct {
	ExpiresAt     time.Time
	DaysRemaining int
	Status        models.ItemStatus
	Confidence    float64
}

type ItemRepository interface {
	FindByID(ctx context.Context, householdID, id string) (models.Item, error)
	FindActive(ctx context.Context, householdID string) ([]models.Item, error)
	FindArchived(ctx context.Context, householdID string) ([]models.Item, error)
	Create(ctx context.Context, item models.Item) (models.Item, error)
	Update(ctx context.Context, item models.Item) error
	UpdateDerivedFields(ctx context.Context, id string, fields DerivedFields) error
	Archive(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) error
}

type SQLiteItemRepository struct {
	database *sql.DB
}

func NewItemRepository(database *sql.DB) *SQLiteItemRepository {
	return &SQLiteItemRepository{database: database}
}

const itemColumns = `id, household_id, created_by_user_id, name, category, quantity,
	date_added, opened, opened_at, custom_fresh_days,
	expires_at, days_remaining, status, confidence,
	archived_at, consumed_at, created_at, updated_at`

func scanItem(scanner interface{ Scan(...any) error }) (models.Item, error) {
	var item models.Item
	err := scanner.Scan(
		&item.ID, &item.HouseholdID, &item.CreatedByUserID, &item.Name, &item.Category, &item.Quantity,
		&item.DateAdded, &item.Opened, &item.OpenedAt, &item.CustomFreshDays,
		&item.ExpiresAt, &item.DaysRemaining, &item.Status, &item.Confidence,
		&item.ArchivedAt, &item.ConsumedAt, &item.CreatedAt, &item.UpdatedAt,
	)
	return item, err
}

func (repository *SQLiteItemRepository) FindByID(ctx context.Context, householdID, id string) (models.Item, error) {
	item, err := scanItem(repository.database.QueryRowContext(ctx,
		"SELECT "+itemColumns+" FROM items WHERE id = ? AND household_id = ?", id, householdID))
	if err != nil {
		return models.Item{}, fmt.Errorf("finding item by id: %w", err)
	}
	return item, nil
}

func (repository *SQLiteItemRepository) FindActive(ctx context.Context, householdID string) ([]models.Item, error) {
	return repository.findByArchiveState(ctx, householdID, false)
}

func (repository *SQLiteItemRepository) FindArchived(ctx context.Context, householdID string) ([]models.Item, error) {
	return repository.findByArchiveState(ctx, householdID, true)
}

func (repository *SQLiteItemRepository) findByArchiveState(ctx context.Context, householdID string, archived bool) ([]models.Item, error) {
	condition := "archived_at IS NULL"
	if archived {
		condition = "archived_at IS NOT NULL"
	}

	rows, err := repository.database.QueryContext(ctx,
		"SELECT "+itemColumns+" FROM items WHERE household_id = ? AND "+condition+" ORDER BY created_at DESC",
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("finding items: %w", err)
	}
	defer rows.Close()

	var items []models.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (repository *SQLiteItemRepository) Create(ctx context.Context, item models.Item) (models.Item, error) {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	item.Category = strings.ToLower(item.Category)
	now := time.Now()
	item.CreatedAt = now
	item.UpdatedAt = now

	_, err := repository.database.ExecContext(ctx,
		`INSERT INTO items (id, household_id, created_by_user_id, name, category, quantity,
			date_added, opened, opened_at, custom_fresh_days,
			expires_at, days_remaining, status, confidence,
			archived_at, consumed_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.HouseholdID, item.CreatedByUserID, item.Name, item.Category, item.Quantity,
		item.DateAdded, item.Opened, item.OpenedAt, item.CustomFreshDays,
		item.ExpiresAt, item.DaysRemaining, item.Status, item.Confidence,
		item.ArchivedAt, item.ConsumedAt, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return models.Item{}, fmt.Errorf("creating item: %w", err)
	}
	return item, nil
}

func (repository *SQLiteItemRepository) Update(ctx context.Context, item models.Item) error {
	item.Category = strings.ToLower(item.Category)
	item.UpdatedAt = time.Now()

	_, err := repository.database.ExecContext(ctx,
		`UPDATE items SET name = ?, category = ?, quantity = ?, date_added = ?,
			opened = ?, opened_at = ?, custom_fresh_days = ?,
			expires_at = ?, days_remaining = ?, status = ?, confidence = ?,
			archived_at = ?, consumed_at = ?, updated_at = ?
		WHERE id = ?`,
		item.Name, item.Category, item.Quantity, item.DateAdded,
		item.Opened, item.OpenedAt, item.CustomFreshDays,
		item.ExpiresAt, item.DaysRemaining, item.Status, item.Confidence,
		item.ArchivedAt, item.ConsumedAt, item.UpdatedAt,
		item.ID,
	)
	if err != nil {
		return fmt.Errorf("updating item: %w", err)
	}
	return nil
}

// UpdateDerivedFields writes only the engine-computed columns, leaving the
// user-entered fields untouched.
func (repository *SQLiteItemRepository) UpdateDerivedFields(ctx context.Context, id string, fields DerivedFields) error {
	_, err := repository.database.ExecContext(ctx,
		"UPDATE items SET expires_at = ?, days_remaining = ?, status = ?, confidence = ? WHERE id = ?",
		fields.ExpiresAt, fields.DaysRemaining, fields.Status, fields.Confidence, id,
	)
	if err != nil {
		return fmt.Errorf("updating derived fields: %w", err)
	}
	return nil
}

func (repository *SQLiteItemRepository) Archive(ctx context.Context, id string, at time.Time) error {
	_, err := repository.database.ExecContext(ctx,
		"UPDATE items SET archived_at = ?, consumed_at = ?, updated_at = ? WHERE id = ?",
		at, at, at, id,
	)
	if err != nil {
		return fmt.Errorf("archiving item: %w", err)
	}
	return nil
}

func (repository *SQLiteItemRepository) Delete(ctx context.Context, id string) error {
	_, err := repository.database.ExecContext(ctx, "DELETE FROM items WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	return nil
}
