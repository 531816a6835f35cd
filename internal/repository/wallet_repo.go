package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"stakebook/internal/models"
)

type scanner interface {
	Scan(dest ...any) error
}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx, so each query can run
// either standalone or inside a unit of work.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const walletColumns = `id, owner_id, wallet_type, balance, locked_balance, currency, is_active, last_transaction_at, created_at, updated_at`

// WalletRepository handles wallet data access.
type WalletRepository struct {
	pool *pgxpool.Pool
}

// NewWalletRepository creates a new wallet repository.
func NewWalletRepository(pool *pgxpool.Pool) *WalletRepository {
	return &WalletRepository{pool: pool}
}

// Create inserts a new wallet. The (owner_id, wallet_type) pair is unique;
// a second wallet for the same pair fails with ErrWalletExists.
func (r *WalletRepository) Create(ctx context.Context, w models.Wallet) (*models.Wallet, error) {
	query := `
		INSERT INTO wallets (id, owner_id, wallet_type, balance, locked_balance, currency, is_active, last_transaction_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + walletColumns

	row := r.pool.QueryRow(ctx, query,
		w.ID,
		w.OwnerID,
		w.WalletType,
		w.Balance.Amount,
		w.LockedBalance.Amount,
		w.Currency,
		w.IsActive,
		w.LastTransactionAt,
		w.CreatedAt,
		w.UpdatedAt,
	)

	created, err := r.scan(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, fmt.Errorf("%w: owner %s type %s", models.ErrWalletExists, w.OwnerID, w.WalletType)
		}
		return nil, fmt.Errorf("create wallet: %w", err)
	}
	return created, nil
}

// GetByID retrieves a wallet by ID, or nil if absent.
func (r *WalletRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Wallet, error) {
	return r.getByID(ctx, r.pool, id, false)
}

// GetByIDForUpdate retrieves a wallet inside a transaction, locking its row
// until the transaction ends. This is the only legal read immediately before
// a mutation.
func (r *WalletRepository) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*models.Wallet, error) {
	return r.getByID(ctx, tx, id, true)
}

func (r *WalletRepository) getByID(ctx context.Context, q querier, id uuid.UUID, forUpdate bool) (*models.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	wallet, err := r.scan(q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return wallet, err
}

// GetByOwnerAndType retrieves a wallet by owner and purpose, or nil if absent.
func (r *WalletRepository) GetByOwnerAndType(ctx context.Context, ownerID uuid.UUID, walletType models.WalletType) (*models.Wallet, error) {
	return r.getByOwnerAndType(ctx, r.pool, ownerID, walletType, false)
}

// GetByOwnerAndTypeForUpdate is the locking variant of GetByOwnerAndType.
func (r *WalletRepository) GetByOwnerAndTypeForUpdate(ctx context.Context, tx pgx.Tx, ownerID uuid.UUID, walletType models.WalletType) (*models.Wallet, error) {
	return r.getByOwnerAndType(ctx, tx, ownerID, walletType, true)
}

func (r *WalletRepository) getByOwnerAndType(ctx context.Context, q querier, ownerID uuid.UUID, walletType models.WalletType, forUpdate bool) (*models.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE owner_id = $1 AND wallet_type = $2`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	wallet, err := r.scan(q.QueryRow(ctx, query, ownerID, walletType))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return wallet, err
}

// ListByOwner retrieves all wallets for an owner.
func (r *WalletRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE owner_id = $1 ORDER BY wallet_type`

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query wallets: %w", err)
	}
	defer rows.Close()

	var wallets []*models.Wallet
	for rows.Next() {
		w, err := r.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan wallet: %w", err)
		}
		wallets = append(wallets, w)
	}

	return wallets, rows.Err()
}

// Save upserts a wallet snapshot inside a unit of work.
func (r *WalletRepository) Save(ctx context.Context, tx pgx.Tx, w models.Wallet) error {
	query := `
		INSERT INTO wallets (id, owner_id, wallet_type, balance, locked_balance, currency, is_active, last_transaction_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			balance = EXCLUDED.balance,
			locked_balance = EXCLUDED.locked_balance,
			is_active = EXCLUDED.is_active,
			last_transaction_at = EXCLUDED.last_transaction_at,
			updated_at = EXCLUDED.updated_at`

	_, err := tx.Exec(ctx, query,
		w.ID,
		w.OwnerID,
		w.WalletType,
		w.Balance.Amount,
		w.LockedBalance.Amount,
		w.Currency,
		w.IsActive,
		w.LastTransactionAt,
		w.CreatedAt,
		w.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save wallet: %w", err)
	}
	return nil
}

func (r *WalletRepository) scan(s scanner) (*models.Wallet, error) {
	var (
		w       models.Wallet
		balance decimal.Decimal
		locked  decimal.Decimal
	)

	err := s.Scan(
		&w.ID,
		&w.OwnerID,
		&w.WalletType,
		&balance,
		&locked,
		&w.Currency,
		&w.IsActive,
		&w.LastTransactionAt,
		&w.CreatedAt,
		&w.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	w.Balance = models.Money{Amount: balance, Currency: w.Currency}
	w.LockedBalance = models.Money{Amount: locked, Currency: w.Currency}

	return &w, nil
}
