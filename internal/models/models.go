package models

import "time"

type Role string

const (
	RoleOwner  Role = "OWNER"
	RoleMember Role = "MEMBER"
)

type ItemStatus string

const (
	ItemStatusFresh   ItemStatus = "FRESH"
	ItemStatusUseSoon ItemStatus = "USE_SOON"
	ItemStatusExpired ItemStatus = "EXPIRED"
)

type AlertType string

const (
	AlertTypeUseSoon AlertType = "USE_SOON"
	AlertTypeExpired AlertType = "EXPIRED"
)

type NotificationChannel string

const (
	ChannelEmail NotificationChannel = "EMAIL"
	ChannelInApp NotificationChannel = "IN_APP"
)

type NotificationStatus string

const (
	NotificationSent    NotificationStatus = "SENT"
	NotificationSkipped NotificationStatus = "SKIPPED"
)

type AnalyticsEventType string

const (
	EventItemAdded    AnalyticsEventType = "ITEM_ADDED"
	EventItemOpened   AnalyticsEventType = "ITEM_OPENED"
	EventItemConsumed AnalyticsEventType = "ITEM_CONSUMED"
	EventItemExpired  AnalyticsEventType = "ITEM_EXPIRED"
)

type User struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"-"`
	Name          string    `json:"name"`
	HouseholdName *string   `json:"householdName"`
	PrefsEmail    bool      `json:"prefsEmail"`
	PrefsInApp    bool      `json:"prefsInApp"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type Household struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	InviteCode string    `json:"inviteCode"`
	CreatedAt  time.Time `json:"createdAt"`
}

type HouseholdMember struct {
	ID          string    `json:"id"`
	HouseholdID string    `json:"householdId"`
	UserID      string    `json:"userId"`
	Role        Role      `json:"role"`
	CreatedAt   time.Time `json:"createdAt"`

	// Populated on member listings, not stored on the membership row.
	UserName   string `json:"userName,omitempty"`
	UserEmail  string `json:"userEmail,omitempty"`
	PrefsEmail bool   `json:"-"`
	PrefsInApp bool   `json:"-"`
}

// FreshnessRule is per-category reference data; category is stored lower-cased.
type FreshnessRule struct {
	Category     string `json:"category"`
	UnopenedDays int    `json:"unopenedDays"`
	OpenedDays   int    `json:"openedDays"`
}

// Item carries the user-entered fields plus the four derived fields
// (ExpiresAt, DaysRemaining, Status, Confidence) owned by the freshness
// engine. Derived fields are never edited directly; they are recomputed
// from the rest of the record on every write and on every active read.
type Item struct {
	ID              string     `json:"id"`
	HouseholdID     string     `json:"householdId"`
	CreatedByUserID string     `json:"createdByUserId"`
	Name            string     `json:"name"`
	Category        string     `json:"category"`
	Quantity        string     `json:"quantity"`
	DateAdded       time.Time  `json:"dateAdded"`
	Opened          *bool      `json:"opened"`
	OpenedAt        *time.Time `json:"openedAt"`
	CustomFreshDays *int       `json:"customFreshDays"`

	ExpiresAt     time.Time  `json:"expiresAt"`
	DaysRemaining int        `json:"daysRemaining"`
	Status        ItemStatus `json:"status"`
	Confidence    float64    `json:"confidence"`

	ArchivedAt *time.Time `json:"archivedAt"`
	ConsumedAt *time.Time `json:"consumedAt"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

type Alert struct {
	ID          string     `json:"id"`
	HouseholdID string     `json:"householdId"`
	UserID      string     `json:"userId"`
	ItemID      string     `json:"itemId"`
	Type        AlertType  `json:"type"`
	Message     string     `json:"message"`
	ReadAt      *time.Time `json:"readAt"`
	CreatedAt   time.Time  `json:"createdAt"`

	// Populated on alert listings.
	ItemName     string     `json:"itemName,omitempty"`
	ItemCategory string     `json:"itemCategory,omitempty"`
	ItemStatus   ItemStatus `json:"itemStatus,omitempty"`
}

type NotificationLog struct {
	ID        string              `json:"id"`
	UserID    string              `json:"userId"`
	AlertID   string              `json:"alertId"`
	Channel   NotificationChannel `json:"channel"`
	Status    NotificationStatus  `json:"status"`
	Detail    string              `json:"detail"`
	CreatedAt time.Time           `json:"createdAt"`
}

type AnalyticsEvent struct {
	ID          string             `json:"id"`
	HouseholdID string             `json:"householdId"`
	ItemID      *string            `json:"itemId"`
	UserID      *string            `json:"userId"`
	Type        AnalyticsEventType `json:"type"`
	CreatedAt   time.Time          `json:"createdAt"`

	ItemCategory string `json:"-"`
}
