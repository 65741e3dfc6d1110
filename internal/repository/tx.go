package repository

import (
	"context"
	"fmt"

	"gitlab.com/yelinaung/finance-tracker/internal/database"
)

// inTx runs fn inside a database transaction when db can begin one (a
// pgxpool.Pool can, a pgx.Tx already in flight cannot). Otherwise fn runs
// directly against db.
func inTx(ctx context.Context, db database.PGXDB, fn func(database.PGXDB) error) error {
	beginner, ok := db.(database.TxBeginner)
	if !ok {
		return fn(db)
	}

	tx, err := beginner.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
