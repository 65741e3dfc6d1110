package store

import (
	"time"

	"github.com/shopspring/decimal"
	"gitlab.com/yelinaung/finance-tracker/internal/models"
)

// RecentChange kinds.
const (
	ChangeIncome   = "income"
	ChangeExpense  = "expense"
	ChangeNetWorth = "networth"
)

// Change describes the movement of a figure between the trailing 30-day
// window and the 30 days before it.
type Change struct {
	Current  decimal.Decimal
	Previous decimal.Decimal
	Delta    decimal.Decimal
	// Percent is zero when the previous window had no activity.
	Percent decimal.Decimal
}

// TotalIncome sums the amounts of all income transactions in memory.
func (s *Store) TotalIncome() decimal.Decimal {
	return s.sumByType(models.TransactionIncome)
}

// TotalExpenses sums the amounts of all expense transactions in memory.
func (s *Store) TotalExpenses() decimal.Decimal {
	return s.sumByType(models.TransactionExpense)
}

// NetWorth is total income minus total expenses.
func (s *Store) NetWorth() decimal.Decimal {
	return s.TotalIncome().Sub(s.TotalExpenses())
}

func (s *Store) sumByType(txType string) decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := decimal.Zero
	for i := range s.transactions {
		if s.transactions[i].Type == txType {
			total = total.Add(s.transactions[i].Amount)
		}
	}
	return total
}

// CategoryTotals groups expense amounts by category. Income never
// contributes.
func (s *Store) CategoryTotals() map[string]decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()

	totals := make(map[string]decimal.Decimal)
	for i := range s.transactions {
		tx := &s.transactions[i]
		if tx.Type != models.TransactionExpense {
			continue
		}
		totals[tx.Category] = totals[tx.Category].Add(tx.Amount)
	}
	return totals
}

// LargestTransaction returns the maximum amount across all transactions, or
// zero for an empty list.
func (s *Store) LargestTransaction() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()

	largest := decimal.Zero
	for i := range s.transactions {
		if s.transactions[i].Amount.GreaterThan(largest) {
			largest = s.transactions[i].Amount
		}
	}
	return largest
}

// UniqueCategoryCount returns the number of distinct categories in memory.
func (s *Store) UniqueCategoryCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	for i := range s.transactions {
		seen[s.transactions[i].Category] = struct{}{}
	}
	return len(seen)
}

// DailyAverageExpense divides total expenses by the number of distinct
// dates carrying at least one expense. Zero when there are no expenses.
func (s *Store) DailyAverageExpense() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := decimal.Zero
	days := make(map[string]struct{})
	for i := range s.transactions {
		tx := &s.transactions[i]
		if tx.Type != models.TransactionExpense {
			continue
		}
		total = total.Add(tx.Amount)
		days[tx.Date.Format("2006-01-02")] = struct{}{}
	}
	if len(days) == 0 {
		return decimal.Zero
	}
	return total.Div(decimal.NewFromInt(int64(len(days))))
}

// RecentChange compares the trailing 30 days against the preceding
// 30-to-60-day window for the given kind (income, expense or networth).
func (s *Store) RecentChange(kind string) Change {
	now := time.Now()
	windowStart := now.AddDate(0, 0, -30)
	priorStart := now.AddDate(0, 0, -60)

	s.mu.RLock()
	current := decimal.Zero
	previous := decimal.Zero
	for i := range s.transactions {
		tx := &s.transactions[i]

		var signed decimal.Decimal
		switch kind {
		case ChangeIncome:
			if tx.Type != models.TransactionIncome {
				continue
			}
			signed = tx.Amount
		case ChangeExpense:
			if tx.Type != models.TransactionExpense {
				continue
			}
			signed = tx.Amount
		case ChangeNetWorth:
			if tx.Type == models.TransactionIncome {
				signed = tx.Amount
			} else {
				signed = tx.Amount.Neg()
			}
		default:
			continue
		}

		switch {
		case !tx.Date.Before(windowStart):
			current = current.Add(signed)
		case !tx.Date.Before(priorStart):
			previous = previous.Add(signed)
		}
	}
	s.mu.RUnlock()

	delta := current.Sub(previous)
	percent := decimal.Zero
	if !previous.IsZero() {
		percent = delta.Div(previous).Mul(decimal.NewFromInt(100))
	}

	return Change{Current: current, Previous: previous, Delta: delta, Percent: percent}
}

// BudgetProgress reports how much of an expense-limit goal's budget is
// spent, as a fraction of the target. The goal's target category is a soft
// reference resolved by name; a dangling reference yields zero progress.
func (s *Store) BudgetProgress(goal models.Goal) decimal.Decimal {
	if goal.Category != models.GoalExpenseLimit || goal.TargetAmount.IsZero() {
		return decimal.Zero
	}

	totals := s.CategoryTotals()
	categories := make([]string, 0, len(totals))
	for category := range totals {
		categories = append(categories, category)
	}

	target := goal.TargetCategory
	if target == "" {
		target = goal.Title
	}
	matched := MatchCategory(target, categories)
	if matched == "" {
		return decimal.Zero
	}

	return totals[matched].Div(goal.TargetAmount)
}
