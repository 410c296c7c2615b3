package freshness

import (
	"testing"
	"time"

	"github.com/Binayak012/StillGood/internal/models"
	"github.com/google/go-cmp/cmp"
)

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func boolPtr(v bool) *bool { return &v }

func intPtr(v int) *int { return &v }

func timePtr(t time.Time) *time.Time { return &t }

func TestCalculate_UnopenedWithRule(t *testing.T) {
	result := Calculate(Input{
		Category:  "dairy",
		DateAdded: day(2026, time.January, 1),
		Opened:    boolPtr(false),
		Rule:      &Rule{UnopenedDays: 7, OpenedDays: 4},
		Now:       day(2026, time.January, 5),
	})

	expected := Result{
		ExpiresAt:     day(2026, time.January, 8),
		DaysRemaining: 3,
		Status:        models.ItemStatusFresh,
		Confidence:    0.9,
	}
	if diff := cmp.Diff(expected, result); diff != "" {
		t.Errorf("unexpected result (-want +got):\n%s", diff)
	}
}

func TestCalculate_OpenedUsesOpenedAtAndOpenedDays(t *testing.T) {
	result := Calculate(Input{
		Category:  "produce",
		DateAdded: day(2026, time.January, 1),
		Opened:    boolPtr(true),
		OpenedAt:  timePtr(day(2026, time.January, 3)),
		Rule:      &Rule{UnopenedDays: 5, OpenedDays: 3},
		Now:       day(2026, time.January, 5),
	})

	expected := Result{
		ExpiresAt:     day(2026, time.January, 6),
		DaysRemaining: 1,
		Status:        models.ItemStatusUseSoon,
		Confidence:    0.9,
	}
	if diff := cmp.Diff(expected, result); diff != "" {
		t.Errorf("unexpected result (-want +got):\n%s", diff)
	}
}

func TestCalculate_CustomDaysOverrideRule(t *testing.T) {
	result := Calculate(Input{
		Category:        "meat",
		DateAdded:       day(2026, time.January, 1),
		Opened:          boolPtr(false),
		CustomFreshDays: intPtr(10),
		Rule:            &Rule{UnopenedDays: 3, OpenedDays: 2},
		Now:             day(2026, time.January, 5),
	})

	if got := result.ExpiresAt; !got.Equal(day(2026, time.January, 11)) {
		t.Errorf("expected expiry 2026-01-11, got %v", got)
	}
	if result.DaysRemaining != 6 {
		t.Errorf("expected 6 days remaining, got %d", result.DaysRemaining)
	}
	if result.Status != models.ItemStatusFresh {
		t.Errorf("expected FRESH, got %s", result.Status)
	}
}

func TestCalculate_CustomDaysOverrideRegardlessOfOpened(t *testing.T) {
	unopened := Calculate(Input{
		Category:        "meat",
		DateAdded:       day(2026, time.January, 1),
		Opened:          boolPtr(false),
		CustomFreshDays: intPtr(10),
		Rule:            &Rule{UnopenedDays: 3, OpenedDays: 2},
		Now:             day(2026, time.January, 2),
	})
	opened := Calculate(Input{
		Category:        "meat",
		DateAdded:       day(2026, time.January, 1),
		Opened:          boolPtr(true),
		CustomFreshDays: intPtr(10),
		Rule:            &Rule{UnopenedDays: 3, OpenedDays: 2},
		Now:             day(2026, time.January, 2),
	})

	if !unopened.ExpiresAt.Equal(opened.ExpiresAt) {
		t.Errorf("custom days should win in both states: unopened %v, opened %v",
			unopened.ExpiresAt, opened.ExpiresAt)
	}
}

func TestCalculate_ClampKeepsEarlierPreviousExpiry(t *testing.T) {
	// Opened late: the opened-day window alone would land on 2026-01-10,
	// past the previously computed 2026-01-08 deadline.
	result := Calculate(Input{
		Category:          "dairy",
		DateAdded:         day(2026, time.January, 1),
		Opened:            boolPtr(true),
		OpenedAt:          timePtr(day(2026, time.January, 6)),
		Rule:              &Rule{UnopenedDays: 7, OpenedDays: 4},
		PreviousExpiresAt: timePtr(day(2026, time.January, 8)),
		Now:               day(2026, time.January, 6),
	})

	if !result.ExpiresAt.Equal(day(2026, time.January, 8)) {
		t.Errorf("expected expiry clamped to 2026-01-08, got %v", result.ExpiresAt)
	}
	if result.DaysRemaining != 2 {
		t.Errorf("expected 2 days remaining, got %d", result.DaysRemaining)
	}
	if result.Status != models.ItemStatusUseSoon {
		t.Errorf("expected USE_SOON, got %s", result.Status)
	}
}

func TestCalculate_ClampOnlyBindsWhenOpenedCalcWouldExtend(t *testing.T) {
	// Opened early: the opened-day window ends 2026-01-06, already before
	// the previous 2026-01-08 deadline, so the opened calc wins.
	result := Calculate(Input{
		Category:          "dairy",
		DateAdded:         day(2026, time.January, 1),
		Opened:            boolPtr(true),
		OpenedAt:          timePtr(day(2026, time.January, 2)),
		Rule:              &Rule{UnopenedDays: 7, OpenedDays: 4},
		PreviousExpiresAt: timePtr(day(2026, time.January, 8)),
		Now:               day(2026, time.January, 2),
	})

	if !result.ExpiresAt.Equal(day(2026, time.January, 6)) {
		t.Errorf("expected expiry 2026-01-06, got %v", result.ExpiresAt)
	}
}

func TestCalculate_Monotonicity(t *testing.T) {
	added := day(2026, time.January, 1)
	rule := &Rule{UnopenedDays: 7, OpenedDays: 4}

	before := Calculate(Input{
		Category:  "dairy",
		DateAdded: added,
		Opened:    boolPtr(false),
		Rule:      rule,
		Now:       day(2026, time.January, 1),
	})

	for openDay := 1; openDay <= 14; openDay++ {
		after := Calculate(Input{
			Category:          "dairy",
			DateAdded:         added,
			Opened:            boolPtr(true),
			OpenedAt:          timePtr(day(2026, time.January, openDay)),
			Rule:              rule,
			PreviousExpiresAt: timePtr(before.ExpiresAt),
			Now:               day(2026, time.January, openDay),
		})
		if after.ExpiresAt.After(before.ExpiresAt) {
			t.Errorf("opening on day %d extended expiry from %v to %v",
				openDay, before.ExpiresAt, after.ExpiresAt)
		}
	}
}

func TestCalculate_NoRuleFallsBackToFourDays(t *testing.T) {
	result := Calculate(Input{
		Category:  "other",
		DateAdded: day(2026, time.January, 1),
		Now:       day(2026, time.January, 10),
	})

	if !result.ExpiresAt.Equal(day(2026, time.January, 5)) {
		t.Errorf("expected expiry 2026-01-05, got %v", result.ExpiresAt)
	}
	if result.DaysRemaining >= 0 {
		t.Errorf("expected negative days remaining, got %d", result.DaysRemaining)
	}
	if result.Status != models.ItemStatusExpired {
		t.Errorf("expected EXPIRED, got %s", result.Status)
	}
	if result.Confidence != 0.55 {
		t.Errorf("expected confidence 0.55, got %v", result.Confidence)
	}
}

func TestCalculate_Confidence(t *testing.T) {
	rule := &Rule{UnopenedDays: 7, OpenedDays: 4}
	added := day(2026, time.January, 1)
	now := day(2026, time.January, 2)

	tests := []struct {
		name     string
		input    Input
		expected float64
	}{
		{"no rule", Input{Category: "cheese", DateAdded: added, Opened: boolPtr(true), Now: now}, 0.55},
		{"other category with rule", Input{Category: "Other", DateAdded: added, Opened: boolPtr(true), Rule: rule, Now: now}, 0.55},
		{"opened known true", Input{Category: "dairy", DateAdded: added, Opened: boolPtr(true), Rule: rule, Now: now}, 0.9},
		{"opened known false", Input{Category: "dairy", DateAdded: added, Opened: boolPtr(false), Rule: rule, Now: now}, 0.9},
		{"opened unknown", Input{Category: "dairy", DateAdded: added, Rule: rule, Now: now}, 0.75},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := Calculate(test.input).Confidence; got != test.expected {
				t.Errorf("expected confidence %v, got %v", test.expected, got)
			}
		})
	}
}

func TestCalculate_StatusBreakpoints(t *testing.T) {
	added := day(2026, time.January, 1)

	tests := []struct {
		days     int
		now      time.Time
		expected models.ItemStatus
	}{
		{10, day(2026, time.January, 14), models.ItemStatusExpired},
		{10, day(2026, time.January, 12), models.ItemStatusExpired},
		{10, day(2026, time.January, 11), models.ItemStatusUseSoon},
		{10, day(2026, time.January, 9), models.ItemStatusUseSoon},
		{10, day(2026, time.January, 8), models.ItemStatusFresh},
	}

	for _, test := range tests {
		result := Calculate(Input{
			Category:        "meat",
			DateAdded:       added,
			CustomFreshDays: intPtr(test.days),
			Now:             test.now,
		})
		if result.Status != test.expected {
			t.Errorf("now=%v: expected %s, got %s (daysRemaining %d)",
				test.now, test.expected, result.Status, result.DaysRemaining)
		}
	}
}

func TestCalculate_DaysRemainingIgnoresTimeOfDay(t *testing.T) {
	input := Input{
		Category:  "dairy",
		DateAdded: time.Date(2026, time.January, 1, 23, 59, 0, 0, time.UTC),
		Opened:    boolPtr(false),
		Rule:      &Rule{UnopenedDays: 7, OpenedDays: 4},
	}

	morning := input
	morning.Now = time.Date(2026, time.January, 5, 0, 1, 0, 0, time.UTC)
	evening := input
	evening.Now = time.Date(2026, time.January, 5, 23, 58, 0, 0, time.UTC)

	a := Calculate(morning)
	b := Calculate(evening)
	if a.DaysRemaining != b.DaysRemaining {
		t.Errorf("days remaining changed with time of day: %d vs %d", a.DaysRemaining, b.DaysRemaining)
	}
	if a.DaysRemaining != DayDiffUTC(morning.Now, a.ExpiresAt) {
		t.Errorf("days remaining %d does not match day diff %d",
			a.DaysRemaining, DayDiffUTC(morning.Now, a.ExpiresAt))
	}
}

func TestCalculate_Idempotent(t *testing.T) {
	input := Input{
		Category:          "produce",
		DateAdded:         day(2026, time.January, 1),
		Opened:            boolPtr(true),
		OpenedAt:          timePtr(day(2026, time.January, 3)),
		Rule:              &Rule{UnopenedDays: 5, OpenedDays: 3},
		PreviousExpiresAt: timePtr(day(2026, time.January, 6)),
		Now:               day(2026, time.January, 4),
	}

	first := Calculate(input)
	second := Calculate(input)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("repeated calculation diverged (-first +second):\n%s", diff)
	}
}

func TestDayDiffUTC(t *testing.T) {
	tests := []struct {
		from, to time.Time
		expected int
	}{
		{day(2026, time.January, 5), day(2026, time.January, 8), 3},
		{day(2026, time.January, 8), day(2026, time.January, 5), -3},
		{time.Date(2026, time.January, 5, 23, 0, 0, 0, time.UTC), time.Date(2026, time.January, 6, 1, 0, 0, 0, time.UTC), 1},
		{day(2026, time.January, 5), day(2026, time.January, 5), 0},
	}

	for _, test := range tests {
		if got := DayDiffUTC(test.from, test.to); got != test.expected {
			t.Errorf("DayDiffUTC(%v, %v) = %d, expected %d", test.from, test.to, got, test.expected)
		}
	}
}
