package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// WithTxResult executes a function within a database transaction and returns
// its result. If the function returns an error, the transaction is rolled
// back; otherwise it is committed. This is the unit-of-work boundary for every
// ledger mutation.
func WithTxResult[T any](ctx context.Context, db *DB, fn func(tx pgx.Tx) (T, error)) (T, error) {
	var result T

	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return result, fmt.Errorf("begin transaction: %w", err)
	}

	result, err = fn(tx)
	if err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return result, fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		}
		return result, err
	}

	if err := tx.Commit(ctx); err != nil {
		return result, fmt.Errorf("commit transaction: %w", err)
	}

	return result, nil
}
