package export

import (
	"encoding/json"
	"fmt"
	"time"

	"gitlab.com/yelinaung/finance-tracker/internal/models"
)

type privacyReport struct {
	GeneratedAt    time.Time              `json:"generatedAt"`
	DataCategories []dataCategory         `json:"dataCategories"`
	Usage          string                 `json:"usage"`
	Retention      string                 `json:"retention"`
	UserRights     []string               `json:"userRights"`
	Settings       models.PrivacySettings `json:"currentSettings"`
}

type dataCategory struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Count       int    `json:"count"`
}

// PrivacyReport renders a JSON document describing what data is collected,
// how it is used and retained, and the user's rights.
func PrivacyReport(state *models.FullState, now time.Time) ([]byte, error) {
	report := privacyReport{
		GeneratedAt: now,
		DataCategories: []dataCategory{
			{
				Name:        "transactions",
				Description: "Income and expense records you created, including amounts, categories, dates and optional merchant details",
				Count:       len(state.Transactions),
			},
			{
				Name:        "goals",
				Description: "Budget goals with target amounts, deadlines and progress",
				Count:       len(state.Goals),
			},
			{
				Name:        "settings",
				Description: "Profile, notification, privacy and appearance preferences",
				Count:       1,
			},
		},
		Usage:     "Data is used solely to display your finances, compute analytics and keep your audit history. It is never shared with third parties unless data sharing is enabled in your privacy settings.",
		Retention: "Transactions, goals and settings are kept until you delete them. Audit snapshots are pruned after the configured retention window; full backups are retained indefinitely.",
		UserRights: []string{
			"Export all stored data at any time",
			"Delete individual records or entire backups",
			"Disable analytics tracking and data sharing",
			"Restore any previous backup",
		},
	}
	if state.Settings != nil {
		report.Settings = state.Settings.Privacy
	}

	raw, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode privacy report: %w", err)
	}
	return raw, nil
}

// PrivacyReportFilename returns the download name for a privacy report.
func PrivacyReportFilename(now time.Time) string {
	return fmt.Sprintf("privacy_report_%s.json", now.Format("2006-01-02"))
}
