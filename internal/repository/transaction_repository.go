package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gitlab.com/yelinaung/finance-tracker/internal/database"
	"gitlab.com/yelinaung/finance-tracker/internal/models"
)

// TransactionRepository handles transaction database operations.
type TransactionRepository struct {
	db database.PGXDB
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(db database.PGXDB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

const transactionColumns = `id, user_id, type, amount, description, category, date, time_of_day,
	payment_method, source, merchant, notes, recurring, currency, created_at, updated_at`

// Create adds a new transaction. The id is generated server-side.
func (r *TransactionRepository) Create(ctx context.Context, tx *models.Transaction) error {
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	err := r.db.QueryRow(ctx, `
		INSERT INTO transactions (id, user_id, type, amount, description, category, date, time_of_day,
			payment_method, source, merchant, notes, recurring, currency)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING created_at, updated_at
	`, tx.ID, tx.UserID, tx.Type, tx.Amount, tx.Description, tx.Category, tx.Date, tx.TimeOfDay,
		tx.PaymentMethod, tx.Source, tx.Merchant, tx.Notes, tx.Recurring, tx.Currency,
	).Scan(&tx.CreatedAt, &tx.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

// GetByID retrieves a transaction scoped to a user.
func (r *TransactionRepository) GetByID(ctx context.Context, userID, id string) (*models.Transaction, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions WHERE user_id = $1 AND id = $2
	`, userID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	defer rows.Close()

	txs, err := scanTransactions(rows)
	if err != nil {
		return nil, err
	}
	if len(txs) == 0 {
		return nil, ErrNotFound
	}
	return &txs[0], nil
}

// ListPage retrieves one page of a user's transactions ordered newest first
// by (date, time of day, creation time), along with the total row count used
// to decide whether more pages remain.
func (r *TransactionRepository) ListPage(
	ctx context.Context,
	userID string,
	page, pageSize int,
) ([]models.Transaction, int, error) {
	if page < 0 || pageSize <= 0 {
		return nil, 0, fmt.Errorf("invalid page %d/size %d", page, pageSize)
	}

	var total int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM transactions WHERE user_id = $1`, userID,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE user_id = $1
		ORDER BY date DESC, time_of_day DESC, created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, pageSize, page*pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	txs, err := scanTransactions(rows)
	if err != nil {
		return nil, 0, err
	}
	return txs, total, nil
}

// ListAll retrieves every transaction for a user, newest first. Used by
// backups and exports.
func (r *TransactionRepository) ListAll(ctx context.Context, userID string) ([]models.Transaction, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE user_id = $1
		ORDER BY date DESC, time_of_day DESC, created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// Update replaces all mutable fields of a transaction. Returns ErrNotFound
// when the id does not exist within the user's scope.
func (r *TransactionRepository) Update(ctx context.Context, tx *models.Transaction) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE transactions SET
			type = $3,
			amount = $4,
			description = $5,
			category = $6,
			date = $7,
			time_of_day = $8,
			payment_method = $9,
			source = $10,
			merchant = $11,
			notes = $12,
			recurring = $13,
			currency = $14,
			updated_at = NOW()
		WHERE user_id = $1 AND id = $2
	`, tx.UserID, tx.ID, tx.Type, tx.Amount, tx.Description, tx.Category, tx.Date, tx.TimeOfDay,
		tx.PaymentMethod, tx.Source, tx.Merchant, tx.Notes, tx.Recurring, tx.Currency)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a transaction. Deleting an id that does not exist in the
// user's scope is a no-op.
func (r *TransactionRepository) Delete(ctx context.Context, userID, id string) error {
	_, err := r.db.Exec(ctx,
		`DELETE FROM transactions WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	return nil
}

// ReplaceAll swaps the full transaction set for a user. Used by restores.
// Runs inside a transaction when the underlying db can begin one, so a failed
// restore never leaves the user with a half-cleared table.
func (r *TransactionRepository) ReplaceAll(ctx context.Context, userID string, txs []models.Transaction) error {
	return inTx(ctx, r.db, func(db database.PGXDB) error {
		if _, err := db.Exec(ctx, `DELETE FROM transactions WHERE user_id = $1`, userID); err != nil {
			return fmt.Errorf("failed to clear transactions: %w", err)
		}
		scoped := TransactionRepository{db: db}
		for i := range txs {
			txs[i].UserID = userID
			if err := scoped.Create(ctx, &txs[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

// scanTransactions is a helper to scan transaction rows.
func scanTransactions(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
},
) ([]models.Transaction, error) {
	var txs []models.Transaction
	for rows.Next() {
		var tx models.Transaction
		if err := rows.Scan(
			&tx.ID, &tx.UserID, &tx.Type, &tx.Amount, &tx.Description, &tx.Category,
			&tx.Date, &tx.TimeOfDay, &tx.PaymentMethod, &tx.Source, &tx.Merchant,
			&tx.Notes, &tx.Recurring, &tx.Currency, &tx.CreatedAt, &tx.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}
	return txs, nil
}
