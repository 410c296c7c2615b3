// Package freshness derives expiry estimates for perishable items from
// per-category day-count rules. Calculate is a pure function: same inputs,
// same outputs, no I/O. All day arithmetic happens on UTC calendar-day
// boundaries so results do not drift with time of day.
package freshness

import (
	"strings"
	"time"

	"github.com/Binayak012/StillGood/internal/models"
)

// DefaultFreshDays applies when no rule exists for an item's category.
const DefaultFreshDays = 4

// Rule is the per-category day-count policy consulted by Calculate.
type Rule struct {
	UnopenedDays int
	OpenedDays   int
}

// Input is everything Calculate needs. Opened is tri-state: nil means the
// opened state is unknown. PreviousExpiresAt, when set, carries the expiry
// computed before an opened transition so it can be clamped against.
type Input struct {
	Category          string
	DateAdded         time.Time
	Opened            *bool
	OpenedAt          *time.Time
	CustomFreshDays   *int
	Rule              *Rule
	PreviousExpiresAt *time.Time
	Now               time.Time
}

// Result holds the four derived fields persisted onto an item.
type Result struct {
	ExpiresAt     time.Time
	DaysRemaining int
	Status        models.ItemStatus
	Confidence    float64
}

// StartOfUTCDay truncates a time to midnight UTC of its calendar day.
func StartOfUTCDay(t time.Time) time.Time {
	year, month, day := t.UTC().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// AddUTCDays adds whole calendar days in UTC.
func AddUTCDays(t time.Time, days int) time.Time {
	return t.UTC().AddDate(0, 0, days)
}

// DayDiffUTC returns the whole-day UTC difference from one time's calendar
// day to another's. Negative when to precedes from.
func DayDiffUTC(from, to time.Time) int {
	return int(StartOfUTCDay(to).Sub(StartOfUTCDay(from)).Hours() / 24)
}

// Calculate derives expiry, days remaining, status and confidence. It is
// total over its input domain: a missing rule falls back to
// DefaultFreshDays and lowers confidence, it never fails.
func Calculate(input Input) Result {
	now := input.Now
	if now.IsZero() {
		now = time.Now()
	}

	opened := input.Opened != nil && *input.Opened

	days := DefaultFreshDays
	switch {
	case input.CustomFreshDays != nil:
		days = *input.CustomFreshDays
	case input.Rule != nil && opened:
		days = input.Rule.OpenedDays
	case input.Rule != nil:
		days = input.Rule.UnopenedDays
	}

	base := input.DateAdded
	if opened && input.OpenedAt != nil {
		base = *input.OpenedAt
	}
	expiresAt := AddUTCDays(StartOfUTCDay(base), days)

	// Opening an item can only shorten its safe window: when a rule drives
	// the computation and a prior expiry is known, keep the earlier date.
	if opened && input.Rule != nil && input.CustomFreshDays == nil && input.PreviousExpiresAt != nil {
		if input.PreviousExpiresAt.Before(expiresAt) {
			expiresAt = *input.PreviousExpiresAt
		}
	}

	daysRemaining := DayDiffUTC(now, expiresAt)

	return Result{
		ExpiresAt:     expiresAt,
		DaysRemaining: daysRemaining,
		Status:        statusFor(daysRemaining),
		Confidence:    confidenceFor(input.Category, input.Rule != nil, input.Opened != nil),
	}
}

func statusFor(daysRemaining int) models.ItemStatus {
	switch {
	case daysRemaining < 0:
		return models.ItemStatusExpired
	case daysRemaining <= 2:
		return models.ItemStatusUseSoon
	default:
		return models.ItemStatusFresh
	}
}

func confidenceFor(category string, hasRule, openedKnown bool) float64 {
	if !hasRule || strings.EqualFold(category, "other") {
		return 0.55
	}
	if openedKnown {
		return 0.9
	}
	return 0.75
}
