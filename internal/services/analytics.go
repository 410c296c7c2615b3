package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/Binayak012/StillGood/internal/freshness"
	"github.com/Binayak012/StillGood/internal/models"
	"github.com/Binayak012/StillGood/internal/repository"
)

// Rough per-item replacement cost used for the savings estimate.
var categoryCost = map[string]float64{
	"dairy":     4.5,
	"produce":   3.2,
	"meat":      7.5,
	"leftovers": 5.0,
	"other":     3.0,
}

type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

type AnalyticsSummary struct {
	ItemsAddedThisWeek    int     `json:"itemsAddedThisWeek"`
	ItemsConsumedThisWeek int     `json:"itemsConsumedThisWeek"`
	ItemsExpiredThisWeek  int     `json:"itemsExpiredThisWeek"`
	EstimatedSavings      float64 `json:"estimatedSavings"`
	ConsumedVsExpired     struct {
		Consumed int `json:"consumed"`
		Expired  int `json:"expired"`
	} `json:"consumedVsExpired"`
	TopCategoriesWasted []CategoryCount `json:"topCategoriesWasted"`
}

type SeriesPoint struct {
	Date     string `json:"date"`
	Consumed int    `json:"consumed"`
	Expired  int    `json:"expired"`
}

type EventsReport struct {
	Range               string          `json:"range"`
	Series              []SeriesPoint   `json:"series"`
	TopCategoriesWasted []CategoryCount `json:"topCategoriesWasted"`
}

type AnalyticsService struct {
	analyticsRepo repository.AnalyticsRepository
}

func NewAnalyticsService(analyticsRepo repository.AnalyticsRepository) *AnalyticsService {
	return &AnalyticsService{analyticsRepo: analyticsRepo}
}

func startDateForRange(rangeName string, now time.Time) time.Time {
	today := freshness.StartOfUTCDay(now)
	if rangeName == "month" {
		return freshness.AddUTCDays(today, -29)
	}
	return freshness.AddUTCDays(today, -6)
}

func categoryValue(category string) float64 {
	if cost, ok := categoryCost[strings.ToLower(category)]; ok {
		return cost
	}
	return categoryCost["other"]
}

func (service *AnalyticsService) Summary(ctx context.Context, householdID string, now time.Time) (AnalyticsSummary, error) {
	since := startDateForRange("week", now)

	var summary AnalyticsSummary
	var err error
	if summary.ItemsAddedThisWeek, err = service.analyticsRepo.CountSince(ctx, householdID, models.EventItemAdded, since); err != nil {
		return AnalyticsSummary{}, fmt.Errorf("counting added items: %w", err)
	}
	if summary.ItemsConsumedThisWeek, err = service.analyticsRepo.CountSince(ctx, householdID, models.EventItemConsumed, since); err != nil {
		return AnalyticsSummary{}, fmt.Errorf("counting consumed items: %w", err)
	}
	if summary.ItemsExpiredThisWeek, err = service.analyticsRepo.CountSince(ctx, householdID, models.EventItemExpired, since); err != nil {
		return AnalyticsSummary{}, fmt.Errorf("counting expired items: %w", err)
	}

	consumedEvents, err := service.analyticsRepo.FindSince(ctx, householdID, []models.AnalyticsEventType{models.EventItemConsumed}, since)
	if err != nil {
		return AnalyticsSummary{}, fmt.Errorf("loading consumed events: %w", err)
	}
	expiredEvents, err := service.analyticsRepo.FindSince(ctx, householdID, []models.AnalyticsEventType{models.EventItemExpired}, since)
	if err != nil {
		return AnalyticsSummary{}, fmt.Errorf("loading expired events: %w", err)
	}

	var consumedValue, expiredValue float64
	for _, event := range consumedEvents {
		consumedValue += categoryValue(event.ItemCategory)
	}
	wasted := make(map[string]int)
	for _, event := range expiredEvents {
		expiredValue += categoryValue(event.ItemCategory)
		wasted[strings.ToLower(event.ItemCategory)]++
	}

	summary.EstimatedSavings = math.Round((consumedValue-expiredValue)*100) / 100
	summary.ConsumedVsExpired.Consumed = summary.ItemsConsumedThisWeek
	summary.ConsumedVsExpired.Expired = summary.ItemsExpiredThisWeek
	summary.TopCategoriesWasted = topCategories(wasted, 5)
	return summary, nil
}

func (service *AnalyticsService) Events(ctx context.Context, householdID, rangeName string, now time.Time) (EventsReport, error) {
	since := startDateForRange(rangeName, now)

	events, err := service.analyticsRepo.FindSince(ctx, householdID,
		[]models.AnalyticsEventType{models.EventItemConsumed, models.EventItemExpired}, since)
	if err != nil {
		return EventsReport{}, fmt.Errorf("loading events: %w", err)
	}

	type dayCounts struct{ consumed, expired int }
	byDay := make(map[string]*dayCounts)
	var dayOrder []string
	wasted := make(map[string]int)

	for _, event := range events {
		key := freshness.StartOfUTCDay(event.CreatedAt).Format("2006-01-02")
		counts, ok := byDay[key]
		if !ok {
			counts = &dayCounts{}
			byDay[key] = counts
			dayOrder = append(dayOrder, key)
		}
		switch event.Type {
		case models.EventItemConsumed:
			counts.consumed++
		case models.EventItemExpired:
			counts.expired++
			wasted[strings.ToLower(event.ItemCategory)]++
		}
	}

	report := EventsReport{Range: rangeName, Series: []SeriesPoint{}}
	for _, key := range dayOrder {
		report.Series = append(report.Series, SeriesPoint{
			Date:     key,
			Consumed: byDay[key].consumed,
			Expired:  byDay[key].expired,
		})
	}
	report.TopCategoriesWasted = topCategories(wasted, 5)
	return report, nil
}

func topCategories(counts map[string]int, limit int) []CategoryCount {
	result := make([]CategoryCount, 0, len(counts))
	for category, count := range counts {
		result = append(result, CategoryCount{Category: category, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Category < result[j].Category
	})
	if len(result) > limit {
		result = result[:limit]
	}
	return result
}
