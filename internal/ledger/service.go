package ledger

import (
	"bytes"
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"stakebook/internal/models"
)

// Service orchestrates wallet and transaction writes. Each operation is one
// atomic unit of work: the wallet is read through a locking lookup, validated,
// mutated, and persisted together with its ledger entry, or nothing happens.
type Service struct {
	store  Store
	logger *zap.Logger
}

// NewService creates a ledger service.
func NewService(store Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger}
}

// EntryParams describes a single credit or debit request. The wallet is
// addressed by id, or by (owner, type) when WalletID is zero.
type EntryParams struct {
	WalletID             uuid.UUID
	OwnerID              uuid.UUID
	WalletType           models.WalletType
	Amount               models.Money
	Type                 models.TransactionType
	Reference            string
	Description          string
	Metadata             map[string]any
	RelatedTransactionID *uuid.UUID
	OrderID              *uuid.UUID
}

// Result is the outcome of a single-wallet operation.
type Result struct {
	Wallet      *models.Wallet      `json:"wallet"`
	Transaction *models.Transaction `json:"transaction"`
}

// Credit adds funds to a wallet and records the entry.
func (s *Service) Credit(ctx context.Context, params EntryParams) (*Result, error) {
	if !params.Type.IsCredit() {
		return nil, fmt.Errorf("transaction type %s does not credit a wallet", params.Type)
	}
	return s.applyEntry(ctx, params, models.Wallet.Credit)
}

// Debit removes funds from a wallet and records the entry. The amount must
// fit within the available balance.
func (s *Service) Debit(ctx context.Context, params EntryParams) (*Result, error) {
	if params.Type.IsCredit() {
		return nil, fmt.Errorf("transaction type %s does not debit a wallet", params.Type)
	}
	return s.applyEntry(ctx, params, models.Wallet.Debit)
}

func (s *Service) applyEntry(ctx context.Context, params EntryParams, mutate func(models.Wallet, models.Money) (models.Wallet, error)) (*Result, error) {
	if !params.Type.Valid() {
		return nil, fmt.Errorf("invalid transaction type %q", params.Type)
	}
	if params.Reference == "" && params.Type.RequiresReference() {
		return nil, fmt.Errorf("%w: %s", models.ErrReferenceRequired, params.Type)
	}

	var result Result
	err := s.store.Atomically(ctx, func(stx StoreTx) error {
		entry, wallet, err := s.applyEntryTx(ctx, stx, params, mutate)
		if err != nil {
			return err
		}
		result = Result{Wallet: wallet, Transaction: entry}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("ledger entry applied",
		zap.Stringer("wallet_id", result.Wallet.ID),
		zap.String("type", string(params.Type)),
		zap.String("amount", params.Amount.String()),
		zap.String("reference", result.Transaction.Reference),
	)
	return &result, nil
}

// applyEntryTx runs the eight-step entry contract inside an existing unit of
// work, so transfers can apply both legs atomically.
func (s *Service) applyEntryTx(ctx context.Context, stx StoreTx, params EntryParams, mutate func(models.Wallet, models.Money) (models.Wallet, error)) (*models.Transaction, *models.Wallet, error) {
	wallet, err := lockEntryWallet(ctx, stx, params)
	if err != nil {
		return nil, nil, err
	}

	reference := params.Reference
	if reference == "" {
		reference = referenceFor(params.Type)
	}

	exists, err := stx.ReferenceExists(ctx, reference)
	if err != nil {
		return nil, nil, err
	}
	if exists {
		return nil, nil, fmt.Errorf("%w: %s", models.ErrDuplicateReference, reference)
	}

	next, err := mutate(*wallet, params.Amount)
	if err != nil {
		return nil, nil, err
	}

	entry, err := models.NewTransaction(models.NewTransactionParams{
		WalletID:             wallet.ID,
		Type:                 params.Type,
		Amount:               params.Amount,
		BalanceAfter:         next.Balance,
		Reference:            reference,
		Description:          params.Description,
		Metadata:             params.Metadata,
		RelatedTransactionID: params.RelatedTransactionID,
		OrderID:              params.OrderID,
	})
	if err != nil {
		return nil, nil, err
	}

	// Two writes on purpose: a crash mid-flight leaves an inspectable
	// pending record, never a silently lost mutation.
	if err := stx.InsertTransaction(ctx, entry); err != nil {
		return nil, nil, err
	}

	completed, err := entry.Complete()
	if err != nil {
		return nil, nil, err
	}
	if err := stx.UpdateTransaction(ctx, completed); err != nil {
		return nil, nil, err
	}

	if err := stx.SaveWallet(ctx, next); err != nil {
		return nil, nil, err
	}

	return &completed, &next, nil
}

// lockEntryWallet resolves and row-locks the wallet an entry targets, by id
// or by the (owner, type) pair.
func lockEntryWallet(ctx context.Context, stx StoreTx, params EntryParams) (*models.Wallet, error) {
	if params.WalletID != uuid.Nil {
		wallet, err := stx.WalletForUpdate(ctx, params.WalletID)
		if err != nil {
			return nil, err
		}
		if wallet == nil {
			return nil, fmt.Errorf("%w: %s", models.ErrWalletNotFound, params.WalletID)
		}
		return wallet, nil
	}

	wallet, err := stx.WalletForUpdateByOwner(ctx, params.OwnerID, params.WalletType)
	if err != nil {
		return nil, err
	}
	if wallet == nil {
		return nil, fmt.Errorf("%w: owner %s type %s", models.ErrWalletNotFound, params.OwnerID, params.WalletType)
	}
	return wallet, nil
}

// TransferParams describes a two-leg transfer between wallets.
type TransferParams struct {
	FromWalletID uuid.UUID
	ToWalletID   uuid.UUID
	Amount       models.Money
	Reference    string
	Description  string
	Metadata     map[string]any
	OrderID      *uuid.UUID
}

// TransferResult is the outcome of a transfer: both wallets and both legs.
type TransferResult struct {
	FromWallet     *models.Wallet      `json:"from_wallet"`
	ToWallet       *models.Wallet      `json:"to_wallet"`
	OutTransaction *models.Transaction `json:"out_transaction"`
	InTransaction  *models.Transaction `json:"in_transaction"`
}

// Transfer moves funds between two wallets, all-or-nothing. Both legs commit
// in the same unit of work, and wallet locks are taken in id order so two
// opposite transfers over the same pair cannot deadlock.
func (s *Service) Transfer(ctx context.Context, params TransferParams) (*TransferResult, error) {
	if params.FromWalletID == params.ToWalletID {
		return nil, fmt.Errorf("cannot transfer a wallet to itself")
	}

	var result TransferResult
	err := s.store.Atomically(ctx, func(stx StoreTx) error {
		from, to, err := s.lockPair(ctx, stx, params.FromWalletID, params.ToWalletID)
		if err != nil {
			return err
		}

		if !from.WalletType.CanTransferTo(to.WalletType) {
			return &models.TransferNotAllowedError{From: from.WalletType, To: to.WalletType}
		}
		if from.Currency != to.Currency {
			return fmt.Errorf("%w: %s vs %s", models.ErrCurrencyMismatch, from.Currency, to.Currency)
		}

		reference := params.Reference
		if reference == "" {
			reference = referenceFor(models.TransactionTypeTransferOut)
		}
		outRef := reference + "_OUT"
		inRef := reference + "_IN"

		for _, ref := range []string{outRef, inRef} {
			exists, err := stx.ReferenceExists(ctx, ref)
			if err != nil {
				return err
			}
			if exists {
				return fmt.Errorf("%w: %s", models.ErrDuplicateReference, ref)
			}
		}

		nextFrom, err := from.Debit(params.Amount)
		if err != nil {
			return err
		}
		nextTo, err := to.Credit(params.Amount)
		if err != nil {
			return err
		}

		outEntry, err := models.NewTransaction(models.NewTransactionParams{
			WalletID:     from.ID,
			Type:         models.TransactionTypeTransferOut,
			Amount:       params.Amount,
			BalanceAfter: nextFrom.Balance,
			Reference:    outRef,
			Description:  params.Description,
			Metadata:     params.Metadata,
			OrderID:      params.OrderID,
		})
		if err != nil {
			return err
		}

		inEntry, err := models.NewTransaction(models.NewTransactionParams{
			WalletID:             to.ID,
			Type:                 models.TransactionTypeTransferIn,
			Amount:               params.Amount,
			BalanceAfter:         nextTo.Balance,
			Reference:            inRef,
			Description:          params.Description,
			Metadata:             params.Metadata,
			RelatedTransactionID: &outEntry.ID,
			OrderID:              params.OrderID,
		})
		if err != nil {
			return err
		}
		outEntry.RelatedTransactionID = &inEntry.ID

		for _, entry := range []models.Transaction{outEntry, inEntry} {
			if err := stx.InsertTransaction(ctx, entry); err != nil {
				return err
			}
		}

		outDone, err := outEntry.Complete()
		if err != nil {
			return err
		}
		inDone, err := inEntry.Complete()
		if err != nil {
			return err
		}
		for _, entry := range []models.Transaction{outDone, inDone} {
			if err := stx.UpdateTransaction(ctx, entry); err != nil {
				return err
			}
		}

		if err := stx.SaveWallet(ctx, nextFrom); err != nil {
			return err
		}
		if err := stx.SaveWallet(ctx, nextTo); err != nil {
			return err
		}

		result = TransferResult{
			FromWallet:     &nextFrom,
			ToWallet:       &nextTo,
			OutTransaction: &outDone,
			InTransaction:  &inDone,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("transfer completed",
		zap.Stringer("from_wallet", result.FromWallet.ID),
		zap.Stringer("to_wallet", result.ToWallet.ID),
		zap.String("amount", params.Amount.String()),
		zap.String("reference", result.OutTransaction.Reference),
	)
	return &result, nil
}

// lockPair locks two wallet rows in ascending id order, then returns them
// matched back to the caller's from/to order.
func (s *Service) lockPair(ctx context.Context, stx StoreTx, fromID, toID uuid.UUID) (*models.Wallet, *models.Wallet, error) {
	firstID, secondID := fromID, toID
	if bytes.Compare(toID[:], fromID[:]) < 0 {
		firstID, secondID = toID, fromID
	}

	first, err := stx.WalletForUpdate(ctx, firstID)
	if err != nil {
		return nil, nil, err
	}
	if first == nil {
		return nil, nil, fmt.Errorf("%w: %s", models.ErrWalletNotFound, firstID)
	}

	second, err := stx.WalletForUpdate(ctx, secondID)
	if err != nil {
		return nil, nil, err
	}
	if second == nil {
		return nil, nil, fmt.Errorf("%w: %s", models.ErrWalletNotFound, secondID)
	}

	if firstID == fromID {
		return first, second, nil
	}
	return second, first, nil
}

// LockFunds moves part of a wallet's balance into locked bookkeeping, holding
// a stake before settlement. The total balance is unchanged; the hold is
// recorded as an adjustment entry.
func (s *Service) LockFunds(ctx context.Context, walletID uuid.UUID, amount models.Money, reference, description string) (*Result, error) {
	return s.applyHold(ctx, walletID, amount, reference, description, "lock", models.Wallet.Lock)
}

// UnlockFunds releases previously locked funds back to the available balance.
func (s *Service) UnlockFunds(ctx context.Context, walletID uuid.UUID, amount models.Money, reference, description string) (*Result, error) {
	return s.applyHold(ctx, walletID, amount, reference, description, "unlock", models.Wallet.Unlock)
}

func (s *Service) applyHold(ctx context.Context, walletID uuid.UUID, amount models.Money, reference, description, operation string, mutate func(models.Wallet, models.Money) (models.Wallet, error)) (*Result, error) {
	var result Result
	err := s.store.Atomically(ctx, func(stx StoreTx) error {
		wallet, err := stx.WalletForUpdate(ctx, walletID)
		if err != nil {
			return err
		}
		if wallet == nil {
			return fmt.Errorf("%w: %s", models.ErrWalletNotFound, walletID)
		}

		if reference == "" {
			reference = newReference("LCK")
		}
		exists, err := stx.ReferenceExists(ctx, reference)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%w: %s", models.ErrDuplicateReference, reference)
		}

		next, err := mutate(*wallet, amount)
		if err != nil {
			return err
		}

		entry, err := models.NewTransaction(models.NewTransactionParams{
			WalletID:     wallet.ID,
			Type:         models.TransactionTypeAdjustment,
			Amount:       amount,
			BalanceAfter: next.Balance,
			Reference:    reference,
			Description:  description,
			Metadata: map[string]any{
				"operation":      operation,
				"locked_balance": next.LockedBalance.Amount.String(),
			},
		})
		if err != nil {
			return err
		}

		if err := stx.InsertTransaction(ctx, entry); err != nil {
			return err
		}
		completed, err := entry.Complete()
		if err != nil {
			return err
		}
		if err := stx.UpdateTransaction(ctx, completed); err != nil {
			return err
		}
		if err := stx.SaveWallet(ctx, next); err != nil {
			return err
		}

		result = Result{Wallet: &next, Transaction: &completed}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("funds hold updated",
		zap.Stringer("wallet_id", result.Wallet.ID),
		zap.String("operation", operation),
		zap.String("amount", amount.String()),
	)
	return &result, nil
}

// Reverse undoes a completed, reversible transaction: a new inverse-direction
// entry is recorded against the wallet and the original moves to reversed,
// all in one unit of work.
func (s *Service) Reverse(ctx context.Context, transactionID uuid.UUID, reason string) (*Result, error) {
	var result Result
	err := s.store.Atomically(ctx, func(stx StoreTx) error {
		original, err := stx.TransactionForUpdate(ctx, transactionID)
		if err != nil {
			return err
		}
		if original == nil {
			return fmt.Errorf("%w: %s", models.ErrTransactionNotFound, transactionID)
		}
		if !original.IsReversible() {
			return fmt.Errorf("%w: %s is %s %s", models.ErrNotReversible,
				original.ID, original.Status, original.Type)
		}

		wallet, err := stx.WalletForUpdate(ctx, original.WalletID)
		if err != nil {
			return err
		}
		if wallet == nil {
			return fmt.Errorf("%w: %s", models.ErrWalletNotFound, original.WalletID)
		}

		reference := original.Reference + "_REV"
		exists, err := stx.ReferenceExists(ctx, reference)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%w: %s", models.ErrDuplicateReference, reference)
		}

		var next models.Wallet
		if original.Type.IsCredit() {
			next, err = wallet.Debit(original.Amount)
		} else {
			next, err = wallet.Credit(original.Amount)
		}
		if err != nil {
			return err
		}

		reversal, err := models.NewTransaction(models.NewTransactionParams{
			WalletID:     wallet.ID,
			Type:         original.Type.ReverseType(),
			Amount:       original.Amount,
			BalanceAfter: next.Balance,
			Reference:    reference,
			Description:  fmt.Sprintf("reversal of %s", original.Reference),
			Metadata: map[string]any{
				"reversal_reason":         reason,
				"reversed_transaction_id": original.ID.String(),
			},
			RelatedTransactionID: &original.ID,
			OrderID:              original.OrderID,
		})
		if err != nil {
			return err
		}

		if err := stx.InsertTransaction(ctx, reversal); err != nil {
			return err
		}
		completed, err := reversal.Complete()
		if err != nil {
			return err
		}
		if err := stx.UpdateTransaction(ctx, completed); err != nil {
			return err
		}

		reversed, err := original.MarkReversed(reversal.ID)
		if err != nil {
			return err
		}
		if err := stx.UpdateTransaction(ctx, reversed); err != nil {
			return err
		}

		if err := stx.SaveWallet(ctx, next); err != nil {
			return err
		}

		result = Result{Wallet: &next, Transaction: &completed}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("transaction reversed",
		zap.Stringer("original_id", transactionID),
		zap.Stringer("reversal_id", result.Transaction.ID),
	)
	return &result, nil
}

// CreateWallet opens a new zero-balance wallet for an owner and purpose.
// Owners get at most one wallet per purpose.
func (s *Service) CreateWallet(ctx context.Context, params models.NewWalletParams) (*models.Wallet, error) {
	wallet, err := models.NewWallet(params)
	if err != nil {
		return nil, err
	}

	created, err := s.store.CreateWallet(ctx, wallet)
	if err != nil {
		return nil, err
	}

	s.logger.Info("wallet created",
		zap.Stringer("wallet_id", created.ID),
		zap.Stringer("owner_id", created.OwnerID),
		zap.String("type", string(created.WalletType)),
		zap.String("currency", created.Currency),
	)
	return created, nil
}

// GetWallet returns a wallet snapshot.
func (s *Service) GetWallet(ctx context.Context, id uuid.UUID) (*models.Wallet, error) {
	wallet, err := s.store.Wallet(ctx, id)
	if err != nil {
		return nil, err
	}
	if wallet == nil {
		return nil, fmt.Errorf("%w: %s", models.ErrWalletNotFound, id)
	}
	return wallet, nil
}

// GetWalletByOwnerAndType returns the owner's wallet for one purpose.
func (s *Service) GetWalletByOwnerAndType(ctx context.Context, ownerID uuid.UUID, walletType models.WalletType) (*models.Wallet, error) {
	wallet, err := s.store.WalletByOwnerAndType(ctx, ownerID, walletType)
	if err != nil {
		return nil, err
	}
	if wallet == nil {
		return nil, fmt.Errorf("%w: owner %s type %s", models.ErrWalletNotFound, ownerID, walletType)
	}
	return wallet, nil
}

// GetWalletsByOwner returns all wallets for an owner.
func (s *Service) GetWalletsByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.Wallet, error) {
	return s.store.WalletsByOwner(ctx, ownerID)
}

// GetTransaction returns a transaction snapshot.
func (s *Service) GetTransaction(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	t, err := s.store.Transaction(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fmt.Errorf("%w: %s", models.ErrTransactionNotFound, id)
	}
	return t, nil
}

// ListTransactions returns a wallet's ledger entries, filtered and paginated.
func (s *Service) ListTransactions(ctx context.Context, walletID uuid.UUID, filter models.TransactionFilter) ([]*models.Transaction, error) {
	wallet, err := s.store.Wallet(ctx, walletID)
	if err != nil {
		return nil, err
	}
	if wallet == nil {
		return nil, fmt.Errorf("%w: %s", models.ErrWalletNotFound, walletID)
	}
	return s.store.TransactionsByWallet(ctx, walletID, filter)
}

// WalletTotals returns aggregate ledger activity for a wallet.
func (s *Service) WalletTotals(ctx context.Context, walletID uuid.UUID) (*models.TransactionTotals, error) {
	wallet, err := s.store.Wallet(ctx, walletID)
	if err != nil {
		return nil, err
	}
	if wallet == nil {
		return nil, fmt.Errorf("%w: %s", models.ErrWalletNotFound, walletID)
	}
	return s.store.TransactionTotals(ctx, walletID)
}

// GetTransactionByReference returns a transaction by its idempotency key.
func (s *Service) GetTransactionByReference(ctx context.Context, reference string) (*models.Transaction, error) {
	t, err := s.store.TransactionByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fmt.Errorf("%w: reference %s", models.ErrTransactionNotFound, reference)
	}
	return t, nil
}
