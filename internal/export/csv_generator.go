package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"time"

	"gitlab.com/yelinaung/finance-tracker/internal/models"
)

// TransactionsCSV generates a CSV file from a list of transactions.
func TransactionsCSV(txs []models.Transaction) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	header := []string{"ID", "Date", "Time", "Type", "Amount", "Currency", "Description", "Category", "Merchant", "Payment Method"}
	if err := writer.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	for i := range txs {
		row := []string{
			txs[i].ID,
			txs[i].Date.Format("2006-01-02"),
			txs[i].TimeOfDay,
			txs[i].Type,
			txs[i].Amount.StringFixed(2),
			txs[i].Currency,
			txs[i].Description,
			txs[i].Category,
			txs[i].Merchant,
			txs[i].PaymentMethod,
		}

		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// TransactionsCSVFilename returns the download name for a CSV export.
func TransactionsCSVFilename(now time.Time) string {
	return fmt.Sprintf("transactions_%s.csv", now.Format("2006-01-02"))
}
