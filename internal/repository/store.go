package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"stakebook/internal/cache"
	"stakebook/internal/db"
	"stakebook/internal/ledger"
	"stakebook/internal/models"
)

// Store binds the Postgres repositories and the wallet cache into the ledger's
// unit-of-work contract. Point lookups read through the cache; everything
// inside Atomically goes straight to Postgres, and wallet saves invalidate the
// cache after the unit of work commits.
type Store struct {
	db           *db.DB
	wallets      *WalletRepository
	transactions *TransactionRepository
	cache        *cache.Client
	logger       *zap.Logger
}

var _ ledger.Store = (*Store)(nil)

// NewStore creates a ledger store. The cache may be nil, which disables it.
func NewStore(database *db.DB, cacheClient *cache.Client, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		db:           database,
		wallets:      NewWalletRepository(database.Pool()),
		transactions: NewTransactionRepository(database.Pool()),
		cache:        cacheClient,
		logger:       logger,
	}
}

// CreateWallet inserts a new wallet row.
func (s *Store) CreateWallet(ctx context.Context, w models.Wallet) (*models.Wallet, error) {
	return s.wallets.Create(ctx, w)
}

// Wallet returns a wallet snapshot, preferring the cache.
func (s *Store) Wallet(ctx context.Context, id uuid.UUID) (*models.Wallet, error) {
	if cached, err := s.cache.GetWallet(ctx, id); err != nil {
		s.logger.Warn("wallet cache read failed", zap.Error(err))
	} else if cached != nil {
		return cached, nil
	}

	wallet, err := s.wallets.GetByID(ctx, id)
	if err != nil || wallet == nil {
		return wallet, err
	}

	if err := s.cache.SetWallet(ctx, wallet); err != nil {
		s.logger.Warn("wallet cache write failed", zap.Error(err))
	}
	return wallet, nil
}

// WalletByOwnerAndType returns the owner's wallet for one purpose, preferring
// the cache.
func (s *Store) WalletByOwnerAndType(ctx context.Context, ownerID uuid.UUID, walletType models.WalletType) (*models.Wallet, error) {
	if cached, err := s.cache.GetWalletByOwner(ctx, ownerID, walletType); err != nil {
		s.logger.Warn("wallet cache read failed", zap.Error(err))
	} else if cached != nil {
		return cached, nil
	}

	wallet, err := s.wallets.GetByOwnerAndType(ctx, ownerID, walletType)
	if err != nil || wallet == nil {
		return wallet, err
	}

	if err := s.cache.SetWallet(ctx, wallet); err != nil {
		s.logger.Warn("wallet cache write failed", zap.Error(err))
	}
	return wallet, nil
}

// WalletsByOwner returns all wallets for an owner, uncached.
func (s *Store) WalletsByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.Wallet, error) {
	return s.wallets.ListByOwner(ctx, ownerID)
}

// Transaction returns a transaction by id.
func (s *Store) Transaction(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	return s.transactions.GetByID(ctx, id)
}

// TransactionByReference returns a transaction by its idempotency key.
func (s *Store) TransactionByReference(ctx context.Context, reference string) (*models.Transaction, error) {
	return s.transactions.GetByReference(ctx, reference)
}

// TransactionsByWallet returns a wallet's entries with filters applied.
func (s *Store) TransactionsByWallet(ctx context.Context, walletID uuid.UUID, filter models.TransactionFilter) ([]*models.Transaction, error) {
	return s.transactions.ListByWallet(ctx, walletID, filter)
}

// TransactionTotals aggregates a wallet's ledger activity.
func (s *Store) TransactionTotals(ctx context.Context, walletID uuid.UUID) (*models.TransactionTotals, error) {
	return s.transactions.TotalsByWallet(ctx, walletID)
}

// Atomically runs fn inside one Postgres transaction. Cache invalidation for
// saved wallets happens after a successful commit, so readers can briefly see
// a stale snapshot but never an uncommitted one.
func (s *Store) Atomically(ctx context.Context, fn func(ledger.StoreTx) error) error {
	touched, err := db.WithTxResult(ctx, s.db, func(tx pgx.Tx) ([]models.Wallet, error) {
		stx := &storeTx{store: s, tx: tx}
		if err := fn(stx); err != nil {
			return nil, err
		}
		return stx.savedWallets, nil
	})
	if err != nil {
		return err
	}

	for i := range touched {
		if err := s.cache.InvalidateWallet(ctx, &touched[i]); err != nil {
			s.logger.Warn("wallet cache invalidation failed",
				zap.Stringer("wallet_id", touched[i].ID), zap.Error(err))
		}
	}
	return nil
}

// storeTx exposes the repositories bound to one Postgres transaction. It
// never consults the cache.
type storeTx struct {
	store        *Store
	tx           pgx.Tx
	savedWallets []models.Wallet
}

func (t *storeTx) WalletForUpdate(ctx context.Context, id uuid.UUID) (*models.Wallet, error) {
	return t.store.wallets.GetByIDForUpdate(ctx, t.tx, id)
}

func (t *storeTx) WalletForUpdateByOwner(ctx context.Context, ownerID uuid.UUID, walletType models.WalletType) (*models.Wallet, error) {
	return t.store.wallets.GetByOwnerAndTypeForUpdate(ctx, t.tx, ownerID, walletType)
}

func (t *storeTx) SaveWallet(ctx context.Context, w models.Wallet) error {
	if err := t.store.wallets.Save(ctx, t.tx, w); err != nil {
		return err
	}
	t.savedWallets = append(t.savedWallets, w)
	return nil
}

func (t *storeTx) TransactionForUpdate(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	return t.store.transactions.GetByIDForUpdate(ctx, t.tx, id)
}

func (t *storeTx) InsertTransaction(ctx context.Context, txn models.Transaction) error {
	return t.store.transactions.Insert(ctx, t.tx, txn)
}

func (t *storeTx) UpdateTransaction(ctx context.Context, txn models.Transaction) error {
	return t.store.transactions.Update(ctx, t.tx, txn)
}

func (t *storeTx) ReferenceExists(ctx context.Context, reference string) (bool, error) {
	return t.store.transactions.ExistsByReferenceTx(ctx, t.tx, reference)
}
