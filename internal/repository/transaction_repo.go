package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"stakebook/internal/models"
)

const transactionColumns = `id, wallet_id, tx_type, amount, balance_after, currency, reference, description, status, metadata, related_transaction_id, order_id, created_at, updated_at`

// TransactionRepository handles ledger entry data access.
type TransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository creates a new transaction repository.
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

// Insert writes a new ledger entry inside a unit of work. The reference is
// globally unique; a colliding insert fails with ErrDuplicateReference even if
// two writers raced past the existence pre-check.
func (r *TransactionRepository) Insert(ctx context.Context, tx pgx.Tx, t models.Transaction) error {
	metadata, err := encodeMetadata(t.Metadata)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO transactions (id, wallet_id, tx_type, amount, balance_after, currency, reference, description, status, metadata, related_transaction_id, order_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err = tx.Exec(ctx, query,
		t.ID,
		t.WalletID,
		t.Type,
		t.Amount.Amount,
		t.BalanceAfter.Amount,
		t.Amount.Currency,
		t.Reference,
		t.Description,
		t.Status,
		metadata,
		t.RelatedTransactionID,
		t.OrderID,
		t.CreatedAt,
		t.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return fmt.Errorf("%w: %s", models.ErrDuplicateReference, t.Reference)
		}
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// Update persists a status transition inside a unit of work.
func (r *TransactionRepository) Update(ctx context.Context, tx pgx.Tx, t models.Transaction) error {
	metadata, err := encodeMetadata(t.Metadata)
	if err != nil {
		return err
	}

	query := `
		UPDATE transactions
		SET status = $2, metadata = $3, updated_at = $4
		WHERE id = $1`

	tag, err := tx.Exec(ctx, query, t.ID, t.Status, metadata, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", models.ErrTransactionNotFound, t.ID)
	}
	return nil
}

// GetByID retrieves a transaction by ID, or nil if absent.
func (r *TransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`

	t, err := r.scan(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return t, err
}

// GetByIDForUpdate retrieves a transaction inside a unit of work, locking its
// row. Used by reversal, which mutates the original entry's status.
func (r *TransactionRepository) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*models.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1 FOR UPDATE`

	t, err := r.scan(tx.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return t, err
}

// GetByReference retrieves a transaction by its reference, or nil if absent.
func (r *TransactionRepository) GetByReference(ctx context.Context, reference string) (*models.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE reference = $1`

	t, err := r.scan(r.pool.QueryRow(ctx, query, reference))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return t, err
}

// ExistsByReferenceTx reports whether a reference is already taken, reading
// within the unit of work. This is the idempotency pre-check; the unique index
// on reference is the backstop when two writers race past it.
func (r *TransactionRepository) ExistsByReferenceTx(ctx context.Context, tx pgx.Tx, reference string) (bool, error) {
	var exists bool
	err := tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM transactions WHERE reference = $1)`,
		reference,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check reference: %w", err)
	}
	return exists, nil
}

// ListByWallet retrieves a wallet's transactions, newest first, with optional
// type/status/date-range filters.
func (r *TransactionRepository) ListByWallet(ctx context.Context, walletID uuid.UUID, filter models.TransactionFilter) ([]*models.Transaction, error) {
	conditions := []string{"wallet_id = $1"}
	args := []any{walletID}
	argNum := 2

	if filter.Type != nil {
		conditions = append(conditions, fmt.Sprintf("tx_type = $%d", argNum))
		args = append(args, *filter.Type)
		argNum++
	}

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argNum))
		args = append(args, *filter.Status)
		argNum++
	}

	if filter.CreatedAfter != nil {
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", argNum))
		args = append(args, *filter.CreatedAfter)
		argNum++
	}

	if filter.CreatedBefore != nil {
		conditions = append(conditions, fmt.Sprintf("created_at < $%d", argNum))
		args = append(args, *filter.CreatedBefore)
		argNum++
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM transactions
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		transactionColumns,
		strings.Join(conditions, " AND "),
		argNum,
		argNum+1,
	)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var transactions []*models.Transaction
	for rows.Next() {
		t, err := r.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		transactions = append(transactions, t)
	}

	return transactions, rows.Err()
}

// TotalsByWallet aggregates a wallet's ledger activity in one query. The
// credit type list is derived from the transaction type table, and lock or
// unlock entries are excluded from the sums since a hold never moves the
// total balance.
func (r *TransactionRepository) TotalsByWallet(ctx context.Context, walletID uuid.UUID) (*models.TransactionTotals, error) {
	creditTypes := models.CreditTransactionTypes()
	types := make([]string, len(creditTypes))
	for i, t := range creditTypes {
		types[i] = string(t)
	}

	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM(amount) FILTER (WHERE status = 'pending'), 0),
			COALESCE(SUM(amount) FILTER (WHERE status IN ('completed', 'reversed')
				AND tx_type = ANY($2)
				AND COALESCE(metadata->>'operation', '') NOT IN ('lock', 'unlock')), 0),
			COALESCE(SUM(amount) FILTER (WHERE status IN ('completed', 'reversed')
				AND NOT (tx_type = ANY($2))
				AND COALESCE(metadata->>'operation', '') NOT IN ('lock', 'unlock')), 0)
		FROM transactions
		WHERE wallet_id = $1`

	var totals models.TransactionTotals
	var pending, credits, debits decimal.Decimal
	err := r.pool.QueryRow(ctx, query, walletID, types).
		Scan(&totals.Count, &pending, &credits, &debits)
	if err != nil {
		return nil, fmt.Errorf("aggregate transactions: %w", err)
	}

	totals.PendingAmount = pending
	totals.CompletedCredits = credits
	totals.CompletedDebits = debits
	return &totals, nil
}

func encodeMetadata(m map[string]any) ([]byte, error) {
	if len(m) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode metadata: %w", err)
	}
	return raw, nil
}

func (r *TransactionRepository) scan(s scanner) (*models.Transaction, error) {
	var (
		t            models.Transaction
		amount       decimal.Decimal
		balanceAfter decimal.Decimal
		currency     string
		metadata     []byte
	)

	err := s.Scan(
		&t.ID,
		&t.WalletID,
		&t.Type,
		&amount,
		&balanceAfter,
		&currency,
		&t.Reference,
		&t.Description,
		&t.Status,
		&metadata,
		&t.RelatedTransactionID,
		&t.OrderID,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.Amount = models.Money{Amount: amount, Currency: currency}
	t.BalanceAfter = models.Money{Amount: balanceAfter, Currency: currency}

	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &t.Metadata); err != nil {
			return nil, fmt.Errorf("decode metadata: %w", err)
		}
	}

	return &t, nil
}
