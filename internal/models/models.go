// Package models defines the domain entities for the finance tracker.
package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultCurrency is the currency assigned to new profiles and to
// transactions created without an explicit currency.
const DefaultCurrency = "USD"

// Transaction types.
const (
	TransactionIncome  = "income"
	TransactionExpense = "expense"
)

// Goal categories.
const (
	GoalSavings      = "savings"
	GoalExpenseLimit = "expense-limit"
	GoalIncomeTarget = "income-target"
)

// Goal priorities.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Goal statuses.
const (
	GoalActive    = "active"
	GoalCompleted = "completed"
	GoalPaused    = "paused"
)

// Snapshot operations.
const (
	OpCreate     = "create"
	OpUpdate     = "update"
	OpDelete     = "delete"
	OpBulkUpdate = "bulk_update"
)

// Snapshot entity types.
const (
	EntityTransaction = "transaction"
	EntityGoal        = "goal"
	EntitySettings    = "settings"
	EntityFullBackup  = "full_backup"
)

// Snapshot sync statuses.
const (
	SnapshotSynced  = "synced"
	SnapshotPending = "pending"
)

// DefaultCategories lists the expense/income categories offered by the UI.
// Transaction.Category is free-form at the data layer; this list is only a
// seed for presentation and for budget-goal matching.
var DefaultCategories = []string{
	"Food & Dining",
	"Groceries",
	"Transportation",
	"Housing",
	"Utilities",
	"Health & Wellness",
	"Entertainment",
	"Shopping",
	"Education",
	"Travel",
	"Subscriptions",
	"Employment",
	"Investments",
	"Gifts & Donations",
	"Other",
}

// Transaction represents a single income or expense entry.
type Transaction struct {
	ID            string          `json:"id"`
	UserID        string          `json:"userId"`
	Type          string          `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description"`
	Category      string          `json:"category"`
	Date          time.Time       `json:"date"`
	TimeOfDay     string          `json:"time"`
	PaymentMethod string          `json:"paymentMethod,omitempty"`
	Source        string          `json:"source,omitempty"`
	Merchant      string          `json:"merchant,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	Recurring     bool            `json:"recurring"`
	Currency      string          `json:"currency"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// Goal represents a budget goal: a savings target, an expense limit for a
// category, or an income target.
type Goal struct {
	ID            string          `json:"id"`
	UserID        string          `json:"userId"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	TargetAmount  decimal.Decimal `json:"targetAmount"`
	CurrentAmount decimal.Decimal `json:"currentAmount"`
	Deadline      time.Time       `json:"deadline"`
	Category      string          `json:"category"`
	Priority      string          `json:"priority"`
	Status        string          `json:"status"`
	Currency      string          `json:"currency,omitempty"`
	// TargetCategory links an expense-limit goal to a transaction category.
	// It is a soft reference: resolved by string match, may dangle.
	TargetCategory string    `json:"targetCategory,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// ProfileSettings holds the user profile subgroup.
type ProfileSettings struct {
	Name     string `json:"name"`
	Avatar   string `json:"avatar"`
	Currency string `json:"currency"`
}

// NotificationSettings holds the notification flags subgroup.
type NotificationSettings struct {
	BudgetAlerts      bool `json:"budgetAlerts"`
	GoalReminders     bool `json:"goalReminders"`
	TransactionAlerts bool `json:"transactionAlerts"`
	WeeklyReports     bool `json:"weeklyReports"`
}

// PrivacySettings holds the privacy flags subgroup.
type PrivacySettings struct {
	DataSharing       bool `json:"dataSharing"`
	AnalyticsTracking bool `json:"analyticsTracking"`
	MarketingEmails   bool `json:"marketingEmails"`
}

// AppearanceSettings holds the appearance subgroup.
type AppearanceSettings struct {
	ColorScheme string `json:"colorScheme"`
	FontSize    string `json:"fontSize"`
	Layout      string `json:"layout"`
}

// UserSettings is the per-user settings singleton. Each subgroup is merged
// independently on update; omitting a subgroup leaves it untouched.
type UserSettings struct {
	UserID        string               `json:"userId"`
	Profile       ProfileSettings      `json:"profile"`
	Notifications NotificationSettings `json:"notifications"`
	Privacy       PrivacySettings      `json:"privacy"`
	Appearance    AppearanceSettings   `json:"appearance"`
	UpdatedAt     time.Time            `json:"updatedAt"`
}

// DefaultSettings returns the settings created for a user on first load.
func DefaultSettings(userID string) *UserSettings {
	return &UserSettings{
		UserID: userID,
		Profile: ProfileSettings{
			Currency: DefaultCurrency,
		},
		Notifications: NotificationSettings{
			BudgetAlerts:      true,
			GoalReminders:     true,
			TransactionAlerts: true,
			WeeklyReports:     false,
		},
		Privacy: PrivacySettings{
			DataSharing:       false,
			AnalyticsTracking: true,
			MarketingEmails:   false,
		},
		Appearance: AppearanceSettings{
			ColorScheme: "system",
			FontSize:    "medium",
			Layout:      "comfortable",
		},
	}
}

// DeviceInfo identifies the client that produced a snapshot.
type DeviceInfo struct {
	UserAgent string `json:"userAgent"`
	Platform  string `json:"platform"`
	SessionID string `json:"sessionId"`
}

// SnapshotMetadata carries integrity bookkeeping for a snapshot.
type SnapshotMetadata struct {
	SizeBytes  int    `json:"size"`
	Checksum   string `json:"checksum"`
	SyncStatus string `json:"syncStatus"`
}

// DataSnapshot is one append-only audit record of a mutation. Snapshots are
// never modified after creation.
type DataSnapshot struct {
	ID                string           `json:"id"`
	UserID            string           `json:"userId"`
	Timestamp         time.Time        `json:"timestamp"`
	Version           int64            `json:"version"`
	Operation         string           `json:"operation"`
	EntityType        string           `json:"entityType"`
	EntityID          string           `json:"entityId,omitempty"`
	PreviousData      json.RawMessage  `json:"previousData,omitempty"`
	NewData           json.RawMessage  `json:"newData,omitempty"`
	ChangeDescription string           `json:"changeDescription"`
	Device            DeviceInfo       `json:"deviceInfo"`
	Metadata          SnapshotMetadata `json:"metadata"`
}

// DataRestorePoint is a named full-state backup. Data holds the serialized
// FullState captured at creation time; listing code strips it before
// returning points to callers.
type DataRestorePoint struct {
	ID           string          `json:"id"`
	UserID       string          `json:"userId"`
	Timestamp    time.Time       `json:"timestamp"`
	Description  string          `json:"description"`
	DataSize     int             `json:"dataSize"`
	Version      int64           `json:"version"`
	IsAutoBackup bool            `json:"isAutoBackup"`
	Data         json.RawMessage `json:"data,omitempty"`
}

// FullState bundles everything a backup captures and a restore replaces.
type FullState struct {
	Transactions []Transaction `json:"transactions"`
	Goals        []Goal        `json:"goals"`
	Settings     *UserSettings `json:"settings"`
}
