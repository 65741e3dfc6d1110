package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"gitlab.com/yelinaung/finance-tracker/internal/models"
)

func TestTransactionsCSV(t *testing.T) {
	t.Parallel()

	txs := []models.Transaction{
		{
			ID:            "tx-1",
			Type:          models.TransactionExpense,
			Amount:        decimal.RequireFromString("12.5"),
			Description:   "coffee, with milk",
			Category:      "Food & Dining",
			Date:          time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC),
			TimeOfDay:     "08:15",
			PaymentMethod: "card",
			Merchant:      "Corner Cafe",
			Currency:      "USD",
		},
		{
			ID:       "tx-2",
			Type:     models.TransactionIncome,
			Amount:   decimal.RequireFromString("3000"),
			Date:     time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
			Currency: "USD",
		},
	}

	raw, err := TransactionsCSV(txs)
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(raw)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	require.Equal(t, []string{
		"ID", "Date", "Time", "Type", "Amount", "Currency",
		"Description", "Category", "Merchant", "Payment Method",
	}, records[0])

	require.Equal(t, "tx-1", records[1][0])
	require.Equal(t, "2026-08-30", records[1][1])
	require.Equal(t, "08:15", records[1][2])
	require.Equal(t, "expense", records[1][3])
	require.Equal(t, "12.50", records[1][4], "amounts render with two fixed decimals")
	require.Equal(t, "coffee, with milk", records[1][6], "embedded commas survive quoting")

	require.Equal(t, "income", records[2][3])
	require.Equal(t, "3000.00", records[2][4])
}

func TestTransactionsCSVEmpty(t *testing.T) {
	t.Parallel()

	raw, err := TransactionsCSV(nil)
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(raw)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1, "an empty export still carries the header")
}

func TestTransactionsCSVFilename(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	require.Equal(t, "transactions_2026-08-31.csv", TransactionsCSVFilename(now))
}
