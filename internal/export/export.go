// Package export produces the user-facing data products: JSON exports,
// privacy reports, security logs, CSV files and spending charts.
package export

import (
	"encoding/json"
	"fmt"
	"time"

	"gitlab.com/yelinaung/finance-tracker/internal/models"
)

// dataExport is the user-facing "download my data" document.
type dataExport struct {
	Transactions    []models.Transaction   `json:"transactions"`
	Goals           []models.Goal          `json:"goals"`
	Settings        *models.UserSettings   `json:"settings"`
	PrivacySettings models.PrivacySettings `json:"privacySettings"`
}

// DataExport renders the full state as a pretty-printed JSON document.
func DataExport(state *models.FullState) ([]byte, error) {
	doc := dataExport{
		Transactions: state.Transactions,
		Goals:        state.Goals,
		Settings:     state.Settings,
	}
	if state.Settings != nil {
		doc.PrivacySettings = state.Settings.Privacy
	}

	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode data export: %w", err)
	}
	return raw, nil
}

// DataExportFilename returns the download name for a data export.
func DataExportFilename(now time.Time) string {
	return fmt.Sprintf("my_data_export_%s.json", now.Format("2006-01-02"))
}
