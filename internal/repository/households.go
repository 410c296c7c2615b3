package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Binayak012/StillGood/internal/models"
	"github.com/google/uuid"
)

type HouseholdRepository interface {
	FindByID(ctx context.Context, id string) (models.Household, error)
	FindByInviteCode(ctx context.Context, inviteCode string) (models.Household, error)
	FindAll(ctx context.Context) ([]models.Household, error)
	Create(ctx context.Context, household models.Household) (models.Household, error)
	FindMembership(ctx context.Context, userID string) (models.HouseholdMember, error)
	FindMembers(ctx context.Context, householdID string) ([]models.HouseholdMember, error)
	AddMember(ctx context.Context, member models.HouseholdMember) (models.HouseholdMember, error)
	RemoveMember(ctx context.Context, householdID, userID string) error
}

type SQLiteHouseholdRepository struct {
	database *sql.DB
}

func NewHouseholdRepository(database *sql.DB) *SQLiteHouseholdRepository {
	return &SQLiteHouseholdRepository{database: database}
}

func (repository *SQLiteHouseholdRepository) FindByID(ctx context.Context, id string) (models.Household, error) {
	var household models.Household
	err := repository.database.QueryRowContext(ctx,
		"SELECT id, name, invite_code, created_at FROM households WHERE id = ?", id,
	).Scan(&household.ID, &household.Name, &household.InviteCode, &household.CreatedAt)
	if err != nil {
		return models.Household{}, fmt.Errorf("finding household by id: %w", err)
	}
	return household, nil
}

func (repository *SQLiteHouseholdRepository) FindByInviteCode(ctx context.Context, inviteCode string) (models.Household, error) {
	var household models.Household
	err := repository.database.QueryRowContext(ctx,
		"SELECT id, name, invite_code, created_at FROM households WHERE invite_code = ?", inviteCode,
	).Scan(&household.ID, &household.Name, &household.InviteCode, &household.CreatedAt)
	if err != nil {
		return models.Household{}, fmt.Errorf("finding household by invite code: %w", err)
	}
	return household, nil
}

func (repository *SQLiteHouseholdRepository) FindAll(ctx context.Context) ([]models.Household, error) {
	rows, err := repository.database.QueryContext(ctx,
		"SELECT id, name, invite_code, created_at FROM households ORDER BY created_at",
	)
	if err != nil {
		return nil, fmt.Errorf("finding all households: %w", err)
	}
	defer rows.Close()

	var households []models.Household
	for rows.Next() {
		var household models.Household
		if err := rows.Scan(&household.ID, &household.Name, &household.InviteCode, &household.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning household: %w", err)
		}
		households = append(households, household)
	}
	return households, rows.Err()
}

func (repository *SQLiteHouseholdRepository) Create(ctx context.Context, household models.Household) (models.Household, error) {
	if household.ID == "" {
		household.ID = uuid.New().String()
	}
	household.CreatedAt = time.Now()

	_, err := repository.database.ExecContext(ctx,
		"INSERT INTO households (id, name, invite_code, created_at) VALUES (?, ?, ?, ?)",
		household.ID, household.Name, household.InviteCode, household.CreatedAt,
	)
	if err != nil {
		return models.Household{}, fmt.Errorf("creating household: %w", err)
	}
	return household, nil
}

func (repository *SQLiteHouseholdRepository) FindMembership(ctx context.Context, userID string) (models.HouseholdMember, error) {
	var member models.HouseholdMember
	err := repository.database.QueryRowContext(ctx,
		`SELECT id, household_id, user_id, role, created_at FROM household_members
		WHERE user_id = ? ORDER BY created_at LIMIT 1`, userID,
	).Scan(&member.ID, &member.HouseholdID, &member.UserID, &member.Role, &member.CreatedAt)
	if err != nil {
		return models.HouseholdMember{}, fmt.Errorf("finding membership: %w", err)
	}
	return member, nil
}

func (repository *SQLiteHouseholdRepository) FindMembers(ctx context.Context, householdID string) ([]models.HouseholdMember, error) {
	rows, err := repository.database.QueryContext(ctx,
		`SELECT m.id, m.household_id, m.user_id, m.role, m.created_at,
			u.name, u.email, u.prefs_email, u.prefs_in_app
		FROM household_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.household_id = ?
		ORDER BY m.created_at`, householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("finding household members: %w", err)
	}
	defer rows.Close()

	var members []models.HouseholdMember
	for rows.Next() {
		var member models.HouseholdMember
		if err := rows.Scan(&member.ID, &member.HouseholdID, &member.UserID, &member.Role, &member.CreatedAt,
			&member.UserName, &member.UserEmail, &member.PrefsEmail, &member.PrefsInApp); err != nil {
			return nil, fmt.Errorf("scanning household member: %w", err)
		}
		members = append(members, member)
	}
	return members, rows.Err()
}

func (repository *SQLiteHouseholdRepository) AddMember(ctx context.Context, member models.HouseholdMember) (models.HouseholdMember, error) {
	if member.ID == "" {
		member.ID = uuid.New().String()
	}
	if member.Role == "" {
		member.Role = models.RoleMember
	}
	member.CreatedAt = time.Now()

	_, err := repository.database.ExecContext(ctx,
		"INSERT INTO household_members (id, household_id, user_id, role, created_at) VALUES (?, ?, ?, ?, ?)",
		member.ID, member.HouseholdID, member.UserID, member.Role, member.CreatedAt,
	)
	if err != nil {
		return models.HouseholdMember{}, fmt.Errorf("adding household member: %w", err)
	}
	return member, nil
}

func (repository *SQLiteHouseholdRepository) RemoveMember(ctx context.Context, householdID, userID string) error {
	result, err := repository.database.ExecContext(ctx,
		"DELETE FROM household_members WHERE household_id = ? AND user_id = ?", householdID, userID,
	)
	if err != nil {
		return fmt.Errorf("removing household member: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking removed member: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
