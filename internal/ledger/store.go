// Package ledger holds the credit, debit, transfer and reversal operations
// that keep wallets and transactions consistent. Every balance mutation runs
// inside one atomic unit of work, reading the wallet through a locking lookup
// so no two concurrent mutations observe the same pre-mutation balance.
package ledger

import (
	"context"

	"github.com/google/uuid"

	"stakebook/internal/models"
)

// Store is the persistence surface the ledger operations run against.
// Point lookups may be served from a cache; everything inside Atomically
// reads and writes the source of truth directly.
type Store interface {
	// CreateWallet inserts a new wallet; at most one wallet may exist per
	// (owner, type) pair, enforced by the store.
	CreateWallet(ctx context.Context, w models.Wallet) (*models.Wallet, error)

	Wallet(ctx context.Context, id uuid.UUID) (*models.Wallet, error)
	WalletByOwnerAndType(ctx context.Context, ownerID uuid.UUID, walletType models.WalletType) (*models.Wallet, error)
	WalletsByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.Wallet, error)
	Transaction(ctx context.Context, id uuid.UUID) (*models.Transaction, error)
	TransactionByReference(ctx context.Context, reference string) (*models.Transaction, error)
	TransactionsByWallet(ctx context.Context, walletID uuid.UUID, filter models.TransactionFilter) ([]*models.Transaction, error)
	TransactionTotals(ctx context.Context, walletID uuid.UUID) (*models.TransactionTotals, error)

	// Atomically runs fn inside one unit of work. If fn returns an error,
	// every write made through the StoreTx is rolled back.
	Atomically(ctx context.Context, fn func(StoreTx) error) error
}

// StoreTx is the write surface available inside a unit of work. Row locks
// taken by the ForUpdate lookups are held until the unit of work ends.
type StoreTx interface {
	WalletForUpdate(ctx context.Context, id uuid.UUID) (*models.Wallet, error)
	WalletForUpdateByOwner(ctx context.Context, ownerID uuid.UUID, walletType models.WalletType) (*models.Wallet, error)
	SaveWallet(ctx context.Context, w models.Wallet) error

	TransactionForUpdate(ctx context.Context, id uuid.UUID) (*models.Transaction, error)
	InsertTransaction(ctx context.Context, t models.Transaction) error
	UpdateTransaction(ctx context.Context, t models.Transaction) error
	ReferenceExists(ctx context.Context, reference string) (bool, error)
}
