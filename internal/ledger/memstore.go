package ledger

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"stakebook/internal/models"
)

// MemoryStore is an in-process Store for tests and local development. It
// keeps the same concurrency contract as the Postgres store: WalletForUpdate
// takes a per-wallet lock held until the unit of work ends, and writes are
// buffered so a failed unit of work leaves no trace.
type MemoryStore struct {
	mu           sync.Mutex
	wallets      map[uuid.UUID]models.Wallet
	ownerIndex   map[ownerKey]uuid.UUID
	transactions map[uuid.UUID]models.Transaction
	references   map[string]uuid.UUID
	reserved     map[string]struct{}
	rowLocks     map[uuid.UUID]*sync.Mutex
}

type ownerKey struct {
	ownerID    uuid.UUID
	walletType models.WalletType
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		wallets:      make(map[uuid.UUID]models.Wallet),
		ownerIndex:   make(map[ownerKey]uuid.UUID),
		transactions: make(map[uuid.UUID]models.Transaction),
		references:   make(map[string]uuid.UUID),
		reserved:     make(map[string]struct{}),
		rowLocks:     make(map[uuid.UUID]*sync.Mutex),
	}
}

// CreateWallet inserts a wallet, enforcing (owner, type) uniqueness.
func (m *MemoryStore) CreateWallet(_ context.Context, w models.Wallet) (*models.Wallet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := ownerKey{ownerID: w.OwnerID, walletType: w.WalletType}
	if _, ok := m.ownerIndex[key]; ok {
		return nil, fmt.Errorf("%w: owner %s type %s", models.ErrWalletExists, w.OwnerID, w.WalletType)
	}

	m.wallets[w.ID] = w
	m.ownerIndex[key] = w.ID
	m.rowLocks[w.ID] = &sync.Mutex{}

	out := w
	return &out, nil
}

// Wallet returns a committed wallet snapshot, or nil.
func (m *MemoryStore) Wallet(_ context.Context, id uuid.UUID) (*models.Wallet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.wallets[id]
	if !ok {
		return nil, nil
	}
	out := w
	return &out, nil
}

// WalletByOwnerAndType returns the owner's wallet for one purpose, or nil.
func (m *MemoryStore) WalletByOwnerAndType(_ context.Context, ownerID uuid.UUID, walletType models.WalletType) (*models.Wallet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.ownerIndex[ownerKey{ownerID: ownerID, walletType: walletType}]
	if !ok {
		return nil, nil
	}
	w := m.wallets[id]
	return &w, nil
}

// WalletsByOwner returns all committed wallets for an owner.
func (m *MemoryStore) WalletsByOwner(_ context.Context, ownerID uuid.UUID) ([]*models.Wallet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*models.Wallet
	for _, w := range m.wallets {
		if w.OwnerID == ownerID {
			copied := w
			out = append(out, &copied)
		}
	}
	return out, nil
}

// Transaction returns a committed transaction snapshot, or nil.
func (m *MemoryStore) Transaction(_ context.Context, id uuid.UUID) (*models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.transactions[id]
	if !ok {
		return nil, nil
	}
	out := t
	return &out, nil
}

// TransactionByReference returns a committed transaction by reference, or nil.
func (m *MemoryStore) TransactionByReference(_ context.Context, reference string) (*models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.references[reference]
	if !ok {
		return nil, nil
	}
	t := m.transactions[id]
	return &t, nil
}

// TransactionsByWallet returns a wallet's committed transactions, newest
// first, honoring the same filters as the Postgres store.
func (m *MemoryStore) TransactionsByWallet(_ context.Context, walletID uuid.UUID, filter models.TransactionFilter) ([]*models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []models.Transaction
	for _, t := range m.transactions {
		if t.WalletID != walletID {
			continue
		}
		if filter.Type != nil && t.Type != *filter.Type {
			continue
		}
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		if filter.CreatedAfter != nil && t.CreatedAt.Before(*filter.CreatedAfter) {
			continue
		}
		if filter.CreatedBefore != nil && !t.CreatedAt.Before(*filter.CreatedBefore) {
			continue
		}
		matched = append(matched, t)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	if offset >= len(matched) {
		return nil, nil
	}
	if offset+limit > len(matched) {
		limit = len(matched) - offset
	}

	out := make([]*models.Transaction, 0, limit)
	for i := offset; i < offset+limit; i++ {
		copied := matched[i]
		out = append(out, &copied)
	}
	return out, nil
}

// TransactionTotals aggregates a wallet's committed ledger entries.
func (m *MemoryStore) TransactionTotals(_ context.Context, walletID uuid.UUID) (*models.TransactionTotals, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	totals := &models.TransactionTotals{
		PendingAmount:    decimal.Zero,
		CompletedCredits: decimal.Zero,
		CompletedDebits:  decimal.Zero,
	}
	for _, t := range m.transactions {
		if t.WalletID != walletID {
			continue
		}
		totals.Count++
		switch t.Status {
		case models.TransactionStatusPending:
			totals.PendingAmount = totals.PendingAmount.Add(t.Amount.Amount)
		case models.TransactionStatusCompleted, models.TransactionStatusReversed:
			if t.IsHold() {
				break
			}
			if t.Type.IsCredit() {
				totals.CompletedCredits = totals.CompletedCredits.Add(t.Amount.Amount)
			} else {
				totals.CompletedDebits = totals.CompletedDebits.Add(t.Amount.Amount)
			}
		}
	}
	return totals, nil
}

// Atomically runs fn against a buffered unit of work. Writes apply only if fn
// succeeds; wallet row locks taken via WalletForUpdate are released at the
// end either way.
func (m *MemoryStore) Atomically(ctx context.Context, fn func(StoreTx) error) error {
	tx := &memTx{
		store:          m,
		pendingWallets: make(map[uuid.UUID]models.Wallet),
		pendingTxns:    make(map[uuid.UUID]models.Transaction),
		pendingRefs:    make(map[string]uuid.UUID),
	}
	defer tx.releaseLocks()

	if err := fn(tx); err != nil {
		return err
	}

	tx.commit()
	return nil
}

type memTx struct {
	store          *MemoryStore
	held           []uuid.UUID
	pendingWallets map[uuid.UUID]models.Wallet
	pendingTxns    map[uuid.UUID]models.Transaction
	pendingRefs    map[string]uuid.UUID
}

func (tx *memTx) rowLock(id uuid.UUID) *sync.Mutex {
	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()
	return tx.store.rowLocks[id]
}

func (tx *memTx) holds(id uuid.UUID) bool {
	for _, held := range tx.held {
		if held == id {
			return true
		}
	}
	return false
}

// WalletForUpdate blocks until the wallet's row lock is available, then reads
// the committed snapshot. The lock is held until commit or rollback.
func (tx *memTx) WalletForUpdate(_ context.Context, id uuid.UUID) (*models.Wallet, error) {
	if w, ok := tx.pendingWallets[id]; ok {
		out := w
		return &out, nil
	}

	lock := tx.rowLock(id)
	if lock == nil {
		return nil, nil
	}
	if !tx.holds(id) {
		lock.Lock()
		tx.held = append(tx.held, id)
	}

	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()
	w, ok := tx.store.wallets[id]
	if !ok {
		return nil, nil
	}
	out := w
	return &out, nil
}

// WalletForUpdateByOwner resolves an owner's wallet for one purpose, then
// locks it the same way WalletForUpdate does.
func (tx *memTx) WalletForUpdateByOwner(ctx context.Context, ownerID uuid.UUID, walletType models.WalletType) (*models.Wallet, error) {
	tx.store.mu.Lock()
	id, ok := tx.store.ownerIndex[ownerKey{ownerID: ownerID, walletType: walletType}]
	tx.store.mu.Unlock()
	if !ok {
		return nil, nil
	}
	return tx.WalletForUpdate(ctx, id)
}

func (tx *memTx) SaveWallet(_ context.Context, w models.Wallet) error {
	tx.pendingWallets[w.ID] = w
	return nil
}

func (tx *memTx) TransactionForUpdate(_ context.Context, id uuid.UUID) (*models.Transaction, error) {
	if t, ok := tx.pendingTxns[id]; ok {
		out := t
		return &out, nil
	}

	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()
	t, ok := tx.store.transactions[id]
	if !ok {
		return nil, nil
	}
	out := t
	return &out, nil
}

// InsertTransaction buffers an entry after reserving its reference in the
// shared store. Reservation is what makes uniqueness hold across concurrent
// units of work touching different wallets, mirroring the unique index in
// Postgres rather than the snapshot a plain read would see.
func (tx *memTx) InsertTransaction(_ context.Context, t models.Transaction) error {
	if _, ok := tx.pendingRefs[t.Reference]; ok {
		return fmt.Errorf("%w: %s", models.ErrDuplicateReference, t.Reference)
	}

	tx.store.mu.Lock()
	_, committed := tx.store.references[t.Reference]
	_, held := tx.store.reserved[t.Reference]
	if committed || held {
		tx.store.mu.Unlock()
		return fmt.Errorf("%w: %s", models.ErrDuplicateReference, t.Reference)
	}
	tx.store.reserved[t.Reference] = struct{}{}
	tx.store.mu.Unlock()

	tx.pendingTxns[t.ID] = t
	tx.pendingRefs[t.Reference] = t.ID
	return nil
}

func (tx *memTx) UpdateTransaction(_ context.Context, t models.Transaction) error {
	if _, ok := tx.pendingTxns[t.ID]; !ok {
		tx.store.mu.Lock()
		_, committed := tx.store.transactions[t.ID]
		tx.store.mu.Unlock()
		if !committed {
			return fmt.Errorf("%w: %s", models.ErrTransactionNotFound, t.ID)
		}
	}
	tx.pendingTxns[t.ID] = t
	return nil
}

func (tx *memTx) ReferenceExists(_ context.Context, reference string) (bool, error) {
	if _, ok := tx.pendingRefs[reference]; ok {
		return true, nil
	}
	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()
	_, ok := tx.store.references[reference]
	return ok, nil
}

func (tx *memTx) commit() {
	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()

	for id, w := range tx.pendingWallets {
		tx.store.wallets[id] = w
		tx.store.ownerIndex[ownerKey{ownerID: w.OwnerID, walletType: w.WalletType}] = id
		if _, ok := tx.store.rowLocks[id]; !ok {
			tx.store.rowLocks[id] = &sync.Mutex{}
		}
	}
	for id, t := range tx.pendingTxns {
		tx.store.transactions[id] = t
	}
	for ref, id := range tx.pendingRefs {
		tx.store.references[ref] = id
	}
}

func (tx *memTx) releaseLocks() {
	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()
	for ref := range tx.pendingRefs {
		delete(tx.store.reserved, ref)
	}
	for _, id := range tx.held {
		if lock, ok := tx.store.rowLocks[id]; ok {
			lock.Unlock()
		}
	}
	tx.held = nil
}
