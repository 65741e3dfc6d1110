package store

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"gitlab.com/yelinaung/finance-tracker/internal/localstore"
	"gitlab.com/yelinaung/finance-tracker/internal/models"
)

func TestAddTransactionDefaults(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	tx := models.Transaction{
		Type:        models.TransactionExpense,
		Amount:      decimal.RequireFromString("12.50"),
		Description: "coffee",
		Category:    "Food & Dining",
	}
	require.NoError(t, s.AddTransaction(ctx, &tx))

	require.True(t, strings.HasPrefix(tx.ID, "local-"), "local path assigns a local id, got %q", tx.ID)
	require.Equal(t, models.DefaultCurrency, tx.Currency, "currency defaults from the profile")
	require.False(t, tx.Date.IsZero(), "date defaults to today")
	require.NotEmpty(t, tx.TimeOfDay, "time of day defaults from the clock")
	require.False(t, tx.CreatedAt.IsZero())

	list := s.Transactions()
	require.Len(t, list, 1)
	require.Equal(t, tx.ID, list[0].ID)
}

func TestAddTransactionUsesProfileCurrency(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	currency := "EUR"
	_, err := s.UpdateSettings(ctx, SettingsPatch{Profile: &ProfilePatch{Currency: &currency}})
	require.NoError(t, err)

	tx := models.Transaction{
		Type:   models.TransactionIncome,
		Amount: decimal.NewFromInt(100),
	}
	require.NoError(t, s.AddTransaction(ctx, &tx))
	require.Equal(t, "EUR", tx.Currency)

	explicit := models.Transaction{
		Type:     models.TransactionIncome,
		Amount:   decimal.NewFromInt(100),
		Currency: "JPY",
	}
	require.NoError(t, s.AddTransaction(ctx, &explicit))
	require.Equal(t, "JPY", explicit.Currency, "explicit currency wins over the profile")
}

func TestAddTransactionPersists(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	added := addExpense(t, s, "42", "Groceries", day(0))

	// A fresh store over the same directory sees the write.
	reopened := New(Session{}, Repos{}, s.local)
	require.NoError(t, reopened.Reload(ctx))
	list := reopened.Transactions()
	require.Len(t, list, 1)
	require.Equal(t, added.ID, list[0].ID)
	require.True(t, decimal.RequireFromString("42").Equal(list[0].Amount))
}

func TestUpdateTransaction(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	rec := &mockRecorder{}
	s.SetRecorder(rec)
	ctx := context.Background()

	tx := addExpense(t, s, "30", "Groceries", day(0))

	amount := decimal.RequireFromString("35.50")
	notes := "price corrected"
	require.NoError(t, s.UpdateTransaction(ctx, tx.ID, TransactionPatch{
		Amount: &amount,
		Notes:  &notes,
	}))

	got := s.Transactions()[0]
	require.True(t, amount.Equal(got.Amount))
	require.Equal(t, "price corrected", got.Notes)
	require.Equal(t, "Groceries", got.Category, "untouched fields survive a partial update")
	require.True(t, got.UpdatedAt.After(got.CreatedAt) || got.UpdatedAt.Equal(got.CreatedAt))

	last := rec.calls[len(rec.calls)-1]
	require.Equal(t, models.OpUpdate, last.operation)
	require.Equal(t, models.EntityTransaction, last.entityType)
	require.Equal(t, tx.ID, last.entityID)
}

func TestUpdateTransactionNotFound(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	err := s.UpdateTransaction(context.Background(), "tx-of-another-user", TransactionPatch{})
	require.Error(t, err)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteTransaction(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	rec := &mockRecorder{}
	s.SetRecorder(rec)
	ctx := context.Background()

	first := addExpense(t, s, "10", "Other", day(0))
	second := addExpense(t, s, "20", "Other", day(0))

	require.NoError(t, s.DeleteTransaction(ctx, first.ID))
	list := s.Transactions()
	require.Len(t, list, 1)
	require.Equal(t, second.ID, list[0].ID)

	last := rec.calls[len(rec.calls)-1]
	require.Equal(t, models.OpDelete, last.operation)
	require.Equal(t, first.ID, last.entityID)
}

func TestDeleteTransactionUnknownIDIsNoOp(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	rec := &mockRecorder{}
	s.SetRecorder(rec)

	addExpense(t, s, "10", "Other", day(0))
	before := len(rec.calls)

	require.NoError(t, s.DeleteTransaction(context.Background(), "not-mine"))
	require.Len(t, s.Transactions(), 1)
	require.Len(t, rec.calls, before, "a no-op delete records nothing")
	require.Empty(t, s.LastError())
}

func TestLocalMutationsPreserveUnloadedPages(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()
	key := localstore.Key(localstore.EntityTransactions, "")

	// Seed more transactions than one page so Reload leaves some unloaded.
	total := DefaultPageSize + 5
	seeded := make([]models.Transaction, 0, total)
	for i := 0; i < total; i++ {
		seeded = append(seeded, models.Transaction{
			ID:       fmt.Sprintf("local-seed-%d", i),
			Type:     models.TransactionExpense,
			Amount:   decimal.NewFromInt(1),
			Category: "Other",
			Date:     day(-i),
			Currency: "USD",
		})
	}
	require.NoError(t, s.local.Put(key, seeded))
	require.NoError(t, s.Reload(ctx))
	require.Len(t, s.Transactions(), DefaultPageSize, "only page 0 is cached")
	require.True(t, s.HasMoreTransactions())

	oldest := seeded[total-1].ID

	t.Run("add keeps rows beyond the loaded pages", func(t *testing.T) {
		tx := models.Transaction{
			Type:     models.TransactionExpense,
			Amount:   decimal.NewFromInt(2),
			Category: "Other",
			Date:     day(0),
		}
		require.NoError(t, s.AddTransaction(ctx, &tx))

		var all []models.Transaction
		_, err := s.local.Get(key, &all)
		require.NoError(t, err)
		require.Len(t, all, total+1, "adding one transaction must not drop unloaded rows")
	})

	t.Run("update reaches an unloaded row", func(t *testing.T) {
		notes := "checked"
		require.NoError(t, s.UpdateTransaction(ctx, oldest, TransactionPatch{Notes: &notes}))

		var all []models.Transaction
		_, err := s.local.Get(key, &all)
		require.NoError(t, err)
		require.Len(t, all, total+1)
		require.Equal(t, "checked", all[indexOfTransaction(all, oldest)].Notes)
	})

	t.Run("delete reaches an unloaded row", func(t *testing.T) {
		require.NoError(t, s.DeleteTransaction(ctx, oldest))

		var all []models.Transaction
		_, err := s.local.Get(key, &all)
		require.NoError(t, err)
		require.Len(t, all, total)
		require.Equal(t, -1, indexOfTransaction(all, oldest))
	})
}

func TestDegradedSessionKeepsUserNamespace(t *testing.T) {
	t.Parallel()

	local, err := localstore.New(t.TempDir())
	require.NoError(t, err)

	// A known user without an authenticated remote session still owns a
	// per-user namespace, never the anonymous one.
	s := New(Session{UserID: "user-7"}, Repos{}, local)
	require.NoError(t, s.Reload(context.Background()))
	addExpense(t, s, "10", "Other", day(0))

	var all []models.Transaction
	found, err := local.Get(localstore.Key(localstore.EntityTransactions, "user-7"), &all)
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, all, 1)

	found, err = local.Get(localstore.Key(localstore.EntityTransactions, ""), &all)
	require.NoError(t, err)
	require.False(t, found, "nothing leaks into the anonymous namespace")
}

func TestLoadTransactionsPagination(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	// Five transactions on five distinct days; ids collected newest first.
	var ids []string
	for i := 0; i < 5; i++ {
		tx := addExpense(t, s, "10", "Other", day(-i))
		ids = append(ids, tx.ID)
	}

	page, err := s.LoadTransactions(ctx, 0, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	require.Equal(t, ids[0], page[0].ID)
	require.Equal(t, ids[1], page[1].ID)
	require.True(t, s.HasMoreTransactions())
	require.Len(t, s.Transactions(), 2)

	page, err = s.LoadTransactions(ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	require.Equal(t, ids[2], page[0].ID)
	require.True(t, s.HasMoreTransactions())
	require.Len(t, s.Transactions(), 4, "later pages append to the cache")

	page, err = s.LoadTransactions(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, page, 1)
	require.Equal(t, ids[4], page[0].ID)
	require.False(t, s.HasMoreTransactions())
	require.Len(t, s.Transactions(), 5)
}

func TestLoadTransactionsPastEnd(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	addExpense(t, s, "10", "Other", day(0))

	page, err := s.LoadTransactions(ctx, 7, 10)
	require.NoError(t, err)
	require.Empty(t, page)
	require.False(t, s.HasMoreTransactions())

	_, err = s.LoadTransactions(ctx, -1, 10)
	require.Error(t, err)
}

func TestTransactionsReturnsCopy(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	addExpense(t, s, "10", "Other", day(0))

	list := s.Transactions()
	list[0].Description = "mutated"
	require.NotEqual(t, "mutated", s.Transactions()[0].Description)
}
