package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/Binayak012/StillGood/internal/models"
)

// RuleRepository serves the per-category freshness reference data. Lookup
// is keyed by lower-cased category; a missing rule is reported through the
// found flag rather than an error, since absence is a valid state.
type RuleRepository interface {
	Lookup(ctx context.Context, category string) (models.FreshnessRule, bool, error)
	FindAll(ctx context.Context) ([]models.FreshnessRule, error)
	Upsert(ctx context.Context, rule models.FreshnessRule) error
}

type SQLiteRuleRepository struct {
	database *sql.DB
}

func NewRuleRepository(database *sql.DB) *SQLiteRuleRepository {
	return &SQLiteRuleRepository{database: database}
}

func (repository *SQLiteRuleRepository) Lookup(ctx context.Context, category string) (models.FreshnessRule, bool, error) {
	var rule models.FreshnessRule
	err := repository.database.QueryRowContext(ctx,
		"SELECT category, unopened_days, opened_days FROM freshness_rules WHERE category = ?",
		strings.ToLower(category),
	).Scan(&rule.Category, &rule.UnopenedDays, &rule.OpenedDays)
	if err == sql.ErrNoRows {
		return models.FreshnessRule{}, false, nil
	}
	if err != nil {
		return models.FreshnessRule{}, false, fmt.Errorf("looking up freshness rule: %w", err)
	}
	return rule, true, nil
}

func (repository *SQLiteRuleRepository) FindAll(ctx context.Context) ([]models.FreshnessRule, error) {
	rows, err := repository.database.QueryContext(ctx,
		"SELECT category, unopened_days, opened_days FROM freshness_rules ORDER BY category",
	)
	if err != nil {
		return nil, fmt.Errorf("finding all freshness rules: %w", err)
	}
	defer rows.Close()

	var rules []models.FreshnessRule
	for rows.Next() {
		var rule models.FreshnessRule
		if err := rows.Scan(&rule.Category, &rule.UnopenedDays, &rule.OpenedDays); err != nil {
			return nil, fmt.Errorf("scanning freshness rule: %w", err)
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

func (repository *SQLiteRuleRepository) Upsert(ctx context.Context, rule models.FreshnessRule) error {
	_, err := repository.database.ExecContext(ctx,
		`INSERT INTO freshness_rules (category, unopened_days, opened_days) VALUES (?, ?, ?)
		ON CONFLICT(category) DO UPDATE SET unopened_days = excluded.unopened_days, opened_days = excluded.opened_days`,
		strings.ToLower(rule.Category), rule.UnopenedDays, rule.OpenedDays,
	)
	if err != nil {
		return fmt.Errorf("upserting freshness rule: %w", err)
	}
	return nil
}
