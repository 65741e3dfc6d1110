package store

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gitlab.com/yelinaung/finance-tracker/internal/localstore"
	"gitlab.com/yelinaung/finance-tracker/internal/logger"
	"gitlab.com/yelinaung/finance-tracker/internal/models"
)

// TransactionPatch carries a partial transaction update. Nil fields are
// left unchanged.
type TransactionPatch struct {
	Type          *string
	Amount        *decimal.Decimal
	Description   *string
	Category      *string
	Date          *time.Time
	TimeOfDay     *string
	PaymentMethod *string
	Source        *string
	Merchant      *string
	Notes         *string
	Recurring     *bool
	Currency      *string
}

func (p TransactionPatch) apply(tx *models.Transaction) {
	if p.Type != nil {
		tx.Type = *p.Type
	}
	if p.Amount != nil {
		tx.Amount = *p.Amount
	}
	if p.Description != nil {
		tx.Description = *p.Description
	}
	if p.Category != nil {
		tx.Category = *p.Category
	}
	if p.Date != nil {
		tx.Date = *p.Date
	}
	if p.TimeOfDay != nil {
		tx.TimeOfDay = *p.TimeOfDay
	}
	if p.PaymentMethod != nil {
		tx.PaymentMethod = *p.PaymentMethod
	}
	if p.Source != nil {
		tx.Source = *p.Source
	}
	if p.Merchant != nil {
		tx.Merchant = *p.Merchant
	}
	if p.Notes != nil {
		tx.Notes = *p.Notes
	}
	if p.Recurring != nil {
		tx.Recurring = *p.Recurring
	}
	if p.Currency != nil {
		tx.Currency = *p.Currency
	}
}

// Transactions returns a copy of the in-memory transaction list, newest
// first.
func (s *Store) Transactions() []models.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Transaction, len(s.transactions))
	copy(out, s.transactions)
	return out
}

// HasMoreTransactions reports whether further pages remain after the last
// LoadTransactions call.
func (s *Store) HasMoreTransactions() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hasMore
}

// AddTransaction persists a new transaction and prepends it to the
// in-memory list. Field validation is the caller's concern; the store only
// fills defaults (currency from the profile, date/time from the clock).
func (s *Store) AddTransaction(ctx context.Context, tx *models.Transaction) error {
	tx.UserID = s.session.UserID
	if tx.Currency == "" {
		tx.Currency = s.profileCurrency()
	}
	now := time.Now()
	if tx.Date.IsZero() {
		tx.Date = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	}
	if tx.TimeOfDay == "" {
		tx.TimeOfDay = now.Format("15:04")
	}

	if s.remote() {
		if err := s.repos.Transactions.Create(ctx, tx); err != nil {
			return s.fail(err)
		}
	} else {
		tx.ID = localID()
		tx.CreatedAt = now
		tx.UpdatedAt = now
		all, err := s.localTransactions()
		if err != nil {
			return err
		}
		if err := s.persistLocalTransactions(append([]models.Transaction{*tx}, all...)); err != nil {
			return err
		}
	}

	s.mu.Lock()
	s.transactions = append([]models.Transaction{*tx}, s.transactions...)
	s.totalRemote++
	s.mu.Unlock()
	s.clearErr()

	logger.Log.Debug().
		Str("transaction_id", tx.ID).
		Str("type", tx.Type).
		Str("description", logger.SanitizeDescription(tx.Description)).
		Str("user_hash", logger.HashUserID(s.session.UserID)).
		Msg("Transaction added")

	s.record(ctx, models.OpCreate, models.EntityTransaction, tx.ID, nil, tx,
		fmt.Sprintf("Added %s of %s", tx.Type, tx.Amount.StringFixed(2)))
	return nil
}

// UpdateTransaction merges a partial update into an existing transaction.
// Returns ErrNotFound when the id is not in the session's scope. On the
// local path the id may belong to a page that was never loaded.
func (s *Store) UpdateTransaction(ctx context.Context, id string, patch TransactionPatch) error {
	var previous, updated models.Transaction

	if s.remote() {
		prev, ok := s.cachedTransaction(id)
		if !ok {
			return s.fail(fmt.Errorf("transaction %s: %w", id, ErrNotFound))
		}
		previous = prev
		updated = previous
		patch.apply(&updated)
		updated.UpdatedAt = time.Now()
		if err := s.repos.Transactions.Update(ctx, &updated); err != nil {
			return s.fail(err)
		}
	} else {
		all, err := s.localTransactions()
		if err != nil {
			return err
		}
		idx := indexOfTransaction(all, id)
		if idx < 0 {
			return s.fail(fmt.Errorf("transaction %s: %w", id, ErrNotFound))
		}
		previous = all[idx]
		updated = previous
		patch.apply(&updated)
		updated.UpdatedAt = time.Now()
		all[idx] = updated
		if err := s.persistLocalTransactions(all); err != nil {
			return err
		}
	}

	s.mu.Lock()
	for i := range s.transactions {
		if s.transactions[i].ID == id {
			s.transactions[i] = updated
			break
		}
	}
	s.mu.Unlock()
	s.clearErr()

	s.record(ctx, models.OpUpdate, models.EntityTransaction, id, previous, updated,
		fmt.Sprintf("Updated %s", updated.Type))
	return nil
}

// DeleteTransaction removes a transaction. Deleting an unknown id is a
// no-op.
func (s *Store) DeleteTransaction(ctx context.Context, id string) error {
	var previous models.Transaction

	if s.remote() {
		prev, ok := s.cachedTransaction(id)
		if !ok {
			return nil
		}
		previous = prev
		if err := s.repos.Transactions.Delete(ctx, s.session.UserID, id); err != nil {
			return s.fail(err)
		}
	} else {
		all, err := s.localTransactions()
		if err != nil {
			return err
		}
		idx := indexOfTransaction(all, id)
		if idx < 0 {
			return nil
		}
		previous = all[idx]
		if err := s.persistLocalTransactions(append(all[:idx], all[idx+1:]...)); err != nil {
			return err
		}
	}

	s.mu.Lock()
	for i := range s.transactions {
		if s.transactions[i].ID == id {
			s.transactions = append(s.transactions[:i], s.transactions[i+1:]...)
			break
		}
	}
	if s.totalRemote > 0 {
		s.totalRemote--
	}
	s.mu.Unlock()
	s.clearErr()

	s.record(ctx, models.OpDelete, models.EntityTransaction, id, previous, nil,
		fmt.Sprintf("Deleted %s", previous.Type))
	return nil
}

// LoadTransactions fetches one page ordered newest first. Page 0 replaces
// the in-memory list; subsequent pages append. Returns the page contents.
func (s *Store) LoadTransactions(ctx context.Context, page, pageSize int) ([]models.Transaction, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if page < 0 {
		return nil, s.fail(fmt.Errorf("invalid page %d", page))
	}

	var pageTxs []models.Transaction
	var total int

	if s.remote() {
		var err error
		pageTxs, total, err = s.repos.Transactions.ListPage(ctx, s.session.UserID, page, pageSize)
		if err != nil {
			return nil, s.fail(err)
		}
	} else {
		var all []models.Transaction
		if _, err := s.local.Get(s.localKey(localstore.EntityTransactions), &all); err != nil {
			return nil, s.fail(err)
		}
		sortNewestFirst(all)
		total = len(all)
		start := page * pageSize
		if start > total {
			start = total
		}
		end := start + pageSize
		if end > total {
			end = total
		}
		pageTxs = all[start:end]
	}

	s.mu.Lock()
	if page == 0 {
		s.transactions = append([]models.Transaction(nil), pageTxs...)
	} else {
		s.transactions = append(s.transactions, pageTxs...)
	}
	s.totalRemote = total
	s.loadedPages = page + 1
	s.hasMore = (page+1)*pageSize < total
	s.mu.Unlock()
	s.clearErr()

	return pageTxs, nil
}

// localTransactions reads the full persisted transaction list. The in-memory
// cache holds only the pages loaded so far; local mutations must work on the
// full list or rows beyond those pages would be lost on the next persist.
func (s *Store) localTransactions() ([]models.Transaction, error) {
	var all []models.Transaction
	if _, err := s.local.Get(s.localKey(localstore.EntityTransactions), &all); err != nil {
		return nil, s.fail(err)
	}
	sortNewestFirst(all)
	return all, nil
}

func (s *Store) cachedTransaction(id string) (models.Transaction, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.transactions {
		if s.transactions[i].ID == id {
			return s.transactions[i], true
		}
	}
	return models.Transaction{}, false
}

func indexOfTransaction(txs []models.Transaction, id string) int {
	for i := range txs {
		if txs[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) persistLocalTransactions(txs []models.Transaction) error {
	sortNewestFirst(txs)
	if err := s.local.Put(s.localKey(localstore.EntityTransactions), txs); err != nil {
		return s.fail(err)
	}
	return nil
}

func (s *Store) profileCurrency() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.settings != nil && s.settings.Profile.Currency != "" {
		return s.settings.Profile.Currency
	}
	return models.DefaultCurrency
}
