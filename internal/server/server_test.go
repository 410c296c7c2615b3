package server_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Binayak012/StillGood/internal/config"
	"github.com/Binayak012/StillGood/internal/server"
	"github.com/Binayak012/StillGood/internal/testutil"
)

func newTestServer(t *testing.T) (*httptest.Server, *http.Client) {
	t.Helper()

	db := testutil.NewTestDatabase(t)
	srv, err := server.New(db, config.Config{
		SessionSecret: "0123456789abcdef0123456789abcdef",
		ClientOrigin:  "http://localhost:5173",
	})
	if err != nil {
		t.Fatalf("creating server: %v", err)
	}

	testServer := httptest.NewServer(srv.Handler())
	t.Cleanup(testServer.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("creating cookie jar: %v", err)
	}
	return testServer, &http.Client{Jar: jar}
}

func doJSON(t *testing.T, client *http.Client, method, url string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encoding request body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	request, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	request.Header.Set("Content-Type", "application/json")

	response, err := client.Do(request)
	if err != nil {
		t.Fatalf("sending request: %v", err)
	}
	t.Cleanup(func() { response.Body.Close() })

	var decoded map[string]any
	if err := json.NewDecoder(response.Body).Decode(&decoded); err != nil {
		decoded = nil
	}
	return response, decoded
}

func TestServer_FullHouseholdFlow(t *testing.T) {
	testServer, client := newTestServer(t)
	base := testServer.URL

	// Register starts a session.
	response, body := doJSON(t, client, http.MethodPost, base+"/api/auth/register", map[string]any{
		"email":    "alice@example.com",
		"password": "correct horse battery",
		"name":     "Alice",
	})
	if response.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201 registering, got %d: %v", response.StatusCode, body)
	}

	// No household yet: item routes are forbidden.
	response, body = doJSON(t, client, http.MethodGet, base+"/api/items/", nil)
	if response.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 without household, got %d", response.StatusCode)
	}

	response, body = doJSON(t, client, http.MethodPost, base+"/api/households/", map[string]any{
		"name": "Maple Street",
	})
	if response.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201 creating household, got %d: %v", response.StatusCode, body)
	}
	household := body["household"].(map[string]any)
	inviteCode := household["inviteCode"].(string)
	if len(inviteCode) != 6 {
		t.Errorf("expected 6-character invite code, got %q", inviteCode)
	}

	// Item added 5 days ago: dairy is use-soon at read time.
	dateAdded := time.Now().UTC().AddDate(0, 0, -5).Format(time.RFC3339)
	response, body = doJSON(t, client, http.MethodPost, base+"/api/items/", map[string]any{
		"name":      "Milk",
		"category":  "Dairy",
		"quantity":  "1L",
		"dateAdded": dateAdded,
	})
	if response.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201 creating item, got %d: %v", response.StatusCode, body)
	}
	item := body["item"].(map[string]any)
	if item["category"] != "dairy" {
		t.Errorf("expected lower-cased category, got %v", item["category"])
	}
	if item["status"] != "USE_SOON" {
		t.Errorf("expected USE_SOON, got %v", item["status"])
	}
	itemID := item["id"].(string)

	// Opening cannot extend the window: the earlier expiry wins.
	response, body = doJSON(t, client, http.MethodPost, fmt.Sprintf("%s/api/items/%s/open", base, itemID), nil)
	if response.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 opening item, got %d: %v", response.StatusCode, body)
	}
	opened := body["item"].(map[string]any)
	if opened["daysRemaining"].(float64) != 2 {
		t.Errorf("expected 2 days remaining after opening, got %v", opened["daysRemaining"])
	}

	// A sweep turns the use-soon item into an alert.
	response, body = doJSON(t, client, http.MethodPost, base+"/api/alerts/sweep", nil)
	if response.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 sweeping, got %d: %v", response.StatusCode, body)
	}
	if body["alertsCreated"].(float64) != 1 {
		t.Errorf("expected 1 alert created, got %v", body["alertsCreated"])
	}

	response, body = doJSON(t, client, http.MethodGet, base+"/api/alerts/", nil)
	if response.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 listing alerts, got %d", response.StatusCode)
	}
	alerts := body["alerts"].([]any)
	if len(alerts) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(alerts))
	}
	alert := alerts[0].(map[string]any)
	if alert["message"] != "Milk should be used soon." {
		t.Errorf("unexpected alert message: %v", alert["message"])
	}

	response, body = doJSON(t, client, http.MethodPost,
		fmt.Sprintf("%s/api/alerts/%s/read", base, alert["id"]), nil)
	if response.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 marking read, got %d", response.StatusCode)
	}
	if body["alert"].(map[string]any)["readAt"] == nil {
		t.Error("expected readAt to be set")
	}

	// Consume, then check the analytics roll-up sees it.
	response, _ = doJSON(t, client, http.MethodPost, fmt.Sprintf("%s/api/items/%s/consume", base, itemID), nil)
	if response.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 consuming, got %d", response.StatusCode)
	}
	response, body = doJSON(t, client, http.MethodGet, base+"/api/analytics/summary", nil)
	if response.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for summary, got %d", response.StatusCode)
	}
	if body["itemsConsumedThisWeek"].(float64) != 1 {
		t.Errorf("expected 1 consumed this week, got %v", body["itemsConsumedThisWeek"])
	}

	// Logout kills the session.
	response, _ = doJSON(t, client, http.MethodPost, base+"/api/auth/logout", nil)
	if response.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204 logging out, got %d", response.StatusCode)
	}
	response, _ = doJSON(t, client, http.MethodGet, base+"/api/auth/me", nil)
	if response.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 after logout, got %d", response.StatusCode)
	}
}

func TestServer_JoinByInviteCode(t *testing.T) {
	testServer, owner := newTestServer(t)
	base := testServer.URL

	response, body := doJSON(t, owner, http.MethodPost, base+"/api/auth/register", map[string]any{
		"email": "alice@example.com", "password": "correct horse battery", "name": "Alice",
	})
	if response.StatusCode != http.StatusCreated {
		t.Fatalf("registering owner: %d", response.StatusCode)
	}
	response, body = doJSON(t, owner, http.MethodPost, base+"/api/households/", map[string]any{"name": "Maple Street"})
	if response.StatusCode != http.StatusCreated {
		t.Fatalf("creating household: %d", response.StatusCode)
	}
	inviteCode := body["household"].(map[string]any)["inviteCode"].(string)

	jar, _ := cookiejar.New(nil)
	joiner := &http.Client{Jar: jar}
	response, _ = doJSON(t, joiner, http.MethodPost, base+"/api/auth/register", map[string]any{
		"email": "bob@example.com", "password": "correct horse battery", "name": "Bob",
	})
	if response.StatusCode != http.StatusCreated {
		t.Fatalf("registering joiner: %d", response.StatusCode)
	}

	// Invite codes are matched case-insensitively.
	response, body = doJSON(t, joiner, http.MethodPost, base+"/api/households/join", map[string]any{
		"inviteCode": strings.ToLower(inviteCode),
	})
	if response.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201 joining, got %d: %v", response.StatusCode, body)
	}

	response, body = doJSON(t, owner, http.MethodGet, base+"/api/households/me", nil)
	if response.StatusCode != http.StatusOK {
		t.Fatalf("loading household: %d", response.StatusCode)
	}
	members := body["household"].(map[string]any)["members"].([]any)
	if len(members) != 2 {
		t.Errorf("expected 2 members, got %d", len(members))
	}

	// A member cannot remove others, and an unknown code cannot join.
	response, _ = doJSON(t, joiner, http.MethodDelete, base+"/api/households/members/whoever", nil)
	if response.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403 for non-owner removal, got %d", response.StatusCode)
	}
}

func TestServer_CalendarFeed(t *testing.T) {
	testServer, client := newTestServer(t)
	base := testServer.URL

	doJSON(t, client, http.MethodPost, base+"/api/auth/register", map[string]any{
		"email": "alice@example.com", "password": "correct horse battery", "name": "Alice",
	})
	_, body := doJSON(t, client, http.MethodPost, base+"/api/households/", map[string]any{"name": "Maple Street"})
	inviteCode := body["household"].(map[string]any)["inviteCode"].(string)

	doJSON(t, client, http.MethodPost, base+"/api/items/", map[string]any{
		"name": "Milk", "category": "dairy", "quantity": "1L",
	})

	response, err := http.Get(base + "/api/calendar/feed?code=" + inviteCode)
	if err != nil {
		t.Fatalf("fetching feed: %v", err)
	}
	defer response.Body.Close()
	if response.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for feed, got %d", response.StatusCode)
	}
	if contentType := response.Header.Get("Content-Type"); !strings.HasPrefix(contentType, "text/calendar") {
		t.Errorf("expected text/calendar, got %q", contentType)
	}

	buffer := new(bytes.Buffer)
	buffer.ReadFrom(response.Body)
	feed := buffer.String()
	if !strings.Contains(feed, "Milk expires") {
		t.Errorf("expected feed to contain the item event, got:\n%s", feed)
	}

	response, err = http.Get(base + "/api/calendar/feed?code=WRONG1")
	if err != nil {
		t.Fatalf("fetching feed: %v", err)
	}
	response.Body.Close()
	if response.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for bad code, got %d", response.StatusCode)
	}
}

func TestServer_HealthAndAuthGuards(t *testing.T) {
	testServer, client := newTestServer(t)
	base := testServer.URL

	response, err := http.Get(base + "/api/health")
	if err != nil {
		t.Fatalf("fetching health: %v", err)
	}
	response.Body.Close()
	if response.StatusCode != http.StatusOK {
		t.Errorf("expected 200 for health, got %d", response.StatusCode)
	}

	for _, path := range []string{"/api/auth/me", "/api/items/", "/api/alerts/", "/api/integrations/status"} {
		response, _ := doJSON(t, client, http.MethodGet, base+path, nil)
		if response.StatusCode != http.StatusUnauthorized {
			t.Errorf("expected 401 for %s without session, got %d", path, response.StatusCode)
		}
	}
}
