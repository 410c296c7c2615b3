package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Binayak012/StillGood/internal/models"
	"github.com/google/uuid"
)

type UserUpdate struct {
	Name           *string
	HouseholdName  *string
	ClearHousehold bool
	PrefsEmail     *bool
	PrefsInApp     *bool
}

type UserRepository interface {
	FindByID(ctx context.Context, id string) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	Create(ctx context.Context, user models.User) (models.User, error)
	Update(ctx context.Context, id string, update UserUpdate) (models.User, error)
}

type SQLiteUserRepository struct {
	database *sql.DB
}

func NewUserRepository(database *sql.DB) *SQLiteUserRepository {
	return &SQLiteUserRepository{database: database}
}

const userColumns = "id, email, password_hash, name, household_name, prefs_email, prefs_in_app, created_at, updated_at"

func scanUser(row *sql.Row) (models.User, error) {
	var user models.User
	err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Name,
		&user.HouseholdName, &user.PrefsEmail, &user.PrefsInApp, &user.CreatedAt, &user.UpdatedAt)
	return user, err
}

func (repository *SQLiteUserRepository) FindByID(ctx context.Context, id string) (models.User, error) {
	user, err := scanUser(repository.database.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = ?", id))
	if err != nil {
		return models.User{}, fmt.Errorf("finding user by id: %w", err)
	}
	return user, nil
}

func (repository *SQLiteUserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	user, err := scanUser(repository.database.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email = ?", email))
	if err != nil {
		return models.User{}, fmt.Errorf("finding user by email: %w", err)
	}
	return user, nil
}

func (repository *SQLiteUserRepository) Create(ctx context.Context, user models.User) (models.User, error) {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := repository.database.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, name, household_name, prefs_email, prefs_in_app, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.Email, user.PasswordHash, user.Name, user.HouseholdName,
		user.PrefsEmail, user.PrefsInApp, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		return models.User{}, fmt.Errorf("creating user: %w", err)
	}
	return user, nil
}

func (repository *SQLiteUserRepository) Update(ctx context.Context, id string, update UserUpdate) (models.User, error) {
	existing, err := repository.FindByID(ctx, id)
	if err != nil {
		return models.User{}, err
	}

	if update.Name != nil {
		existing.Name = *update.Name
	}
	if update.ClearHousehold {
		existing.HouseholdName = nil
	} else if update.HouseholdName != nil {
		existing.HouseholdName = update.HouseholdName
	}
	if update.PrefsEmail != nil {
		existing.PrefsEmail = *update.PrefsEmail
	}
	if update.PrefsInApp != nil {
		existing.PrefsInApp = *update.PrefsInApp
	}
	existing.UpdatedAt = time.Now()

	_, err = repository.database.ExecContext(ctx,
		`UPDATE users SET name = ?, household_name = ?, prefs_email = ?, prefs_in_app = ?, updated_at = ?
		WHERE id = ?`,
		existing.Name, existing.HouseholdName, existing.PrefsEmail, existing.PrefsInApp,
		existing.UpdatedAt, id,
	)
	if err != nil {
		return models.User{}, fmt.Errorf("updating user: %w", err)
	}
	return existing, nil
}
