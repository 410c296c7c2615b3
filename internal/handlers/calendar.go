package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Binayak012/StillGood/internal/repository"
	"github.com/Binayak012/StillGood/internal/services"
	ical "github.com/arran4/golang-ical"
)

// CalendarHandler serves an iCal feed of upcoming expiry dates so
// household calendars can subscribe. The household invite code doubles as
// the feed key since calendar clients cannot present a session cookie.
type CalendarHandler struct {
	householdRepo repository.HouseholdRepository
	itemRepo      repository.ItemRepository
	refresher     *services.FreshnessService
}

func NewCalendarHandler(
	householdRepo repository.HouseholdRepository,
	itemRepo repository.ItemRepository,
	refresher *services.FreshnessService,
) *CalendarHandler {
	return &CalendarHandler{
		householdRepo: householdRepo,
		itemRepo:      itemRepo,
		refresher:     refresher,
	}
}

func (handler *CalendarHandler) Feed(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	household, err := handler.householdRepo.FindByInviteCode(r.Context(), strings.ToUpper(code))
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	items, err := handler.itemRepo.FindActive(r.Context(), household.ID)
	if err != nil {
		slog.Error("loading items for calendar feed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	refreshed, err := handler.refresher.RefreshAll(r.Context(), items)
	if err != nil {
		slog.Error("refreshing items for calendar feed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	calendar := ical.NewCalendar()
	calendar.SetMethod(ical.MethodPublish)
	calendar.SetProductId("-//StillGood//Expiry Feed//EN")
	calendar.SetName(fmt.Sprintf("%s expiry dates", household.Name))

	for _, item := range refreshed {
		event := calendar.AddEvent(fmt.Sprintf("item-%s@stillgood", item.ID))
		event.SetSummary(fmt.Sprintf("%s expires", item.Name))
		event.SetDescription(fmt.Sprintf("%s (%s), quantity %s", item.Name, item.Category, item.Quantity))
		event.SetAllDayStartAt(item.ExpiresAt)
		event.SetAllDayEndAt(item.ExpiresAt.AddDate(0, 0, 1))
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="stillgood.ics"`)
	w.Write([]byte(calendar.Serialize()))
}
