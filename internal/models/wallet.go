package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Wallet is one (owner, purpose) balance bucket. Snapshots are immutable:
// every transition returns a new value and re-checks the balance invariants,
// so a reference to an old snapshot stays valid after the store moves on.
type Wallet struct {
	ID                uuid.UUID  `json:"id"`
	OwnerID           uuid.UUID  `json:"owner_id"`
	WalletType        WalletType `json:"wallet_type"`
	Balance           Money      `json:"balance"`
	LockedBalance     Money      `json:"locked_balance"`
	Currency          string     `json:"currency"`
	IsActive          bool       `json:"is_active"`
	LastTransactionAt *time.Time `json:"last_transaction_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// NewWalletParams contains parameters for creating a new wallet.
type NewWalletParams struct {
	OwnerID    uuid.UUID
	WalletType WalletType
	Currency   string
}

// NewWallet creates an active zero-balance wallet for an owner and purpose.
func NewWallet(params NewWalletParams) (Wallet, error) {
	if params.OwnerID == uuid.Nil {
		return Wallet{}, fmt.Errorf("owner id is required")
	}
	if !params.WalletType.Valid() {
		return Wallet{}, fmt.Errorf("invalid wallet type %q", params.WalletType)
	}
	if err := validateCurrency(params.Currency); err != nil {
		return Wallet{}, err
	}

	now := time.Now().UTC()
	return Wallet{
		ID:            uuid.New(),
		OwnerID:       params.OwnerID,
		WalletType:    params.WalletType,
		Balance:       Zero(params.Currency),
		LockedBalance: Zero(params.Currency),
		Currency:      params.Currency,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// AvailableBalance returns the spendable amount (balance - locked).
func (w Wallet) AvailableBalance() Money {
	available, _ := w.Balance.Sub(w.LockedBalance)
	return available
}

// HasSufficientFunds reports whether the available balance covers amount.
func (w Wallet) HasSufficientFunds(amount Money) bool {
	ok, err := w.AvailableBalance().GreaterThanOrEqual(amount)
	return err == nil && ok
}

func (w Wallet) guardMutation(amount Money) error {
	if !w.IsActive {
		return ErrWalletInactive
	}
	if amount.Currency != w.Currency {
		return fmt.Errorf("%w: %s vs %s", ErrCurrencyMismatch, amount.Currency, w.Currency)
	}
	if amount.IsNegative() {
		return fmt.Errorf("%w: %s", ErrInvalidAmount, amount)
	}
	return nil
}

// Credit returns a snapshot with amount added to the balance.
func (w Wallet) Credit(amount Money) (Wallet, error) {
	if err := w.guardMutation(amount); err != nil {
		return Wallet{}, err
	}

	balance, err := w.Balance.Add(amount)
	if err != nil {
		return Wallet{}, err
	}

	next := w
	next.Balance = balance
	next.touch(true)
	return next.checked()
}

// Debit returns a snapshot with amount removed from the balance. The amount
// must fit within the available (unlocked) balance.
func (w Wallet) Debit(amount Money) (Wallet, error) {
	if err := w.guardMutation(amount); err != nil {
		return Wallet{}, err
	}
	if !w.HasSufficientFunds(amount) {
		return Wallet{}, &InsufficientFundsError{Requested: amount, Available: w.AvailableBalance()}
	}

	balance, err := w.Balance.Sub(amount)
	if err != nil {
		return Wallet{}, err
	}

	next := w
	next.Balance = balance
	next.touch(true)
	return next.checked()
}

// Lock moves amount from available into locked bookkeeping. The total balance
// is unchanged.
func (w Wallet) Lock(amount Money) (Wallet, error) {
	if err := w.guardMutation(amount); err != nil {
		return Wallet{}, err
	}
	if !w.HasSufficientFunds(amount) {
		return Wallet{}, &InsufficientFundsError{Requested: amount, Available: w.AvailableBalance()}
	}

	locked, err := w.LockedBalance.Add(amount)
	if err != nil {
		return Wallet{}, err
	}

	next := w
	next.LockedBalance = locked
	next.touch(true)
	return next.checked()
}

// Unlock releases amount from locked back to available.
func (w Wallet) Unlock(amount Money) (Wallet, error) {
	if err := w.guardMutation(amount); err != nil {
		return Wallet{}, err
	}
	if enough, err := w.LockedBalance.GreaterThanOrEqual(amount); err != nil || !enough {
		if err != nil {
			return Wallet{}, err
		}
		return Wallet{}, &InsufficientLockedError{Requested: amount, Locked: w.LockedBalance}
	}

	locked, err := w.LockedBalance.Sub(amount)
	if err != nil {
		return Wallet{}, err
	}

	next := w
	next.LockedBalance = locked
	next.touch(true)
	return next.checked()
}

// Activate returns an active snapshot.
func (w Wallet) Activate() Wallet {
	next := w
	next.IsActive = true
	next.touch(false)
	return next
}

// Deactivate returns an inactive snapshot. Deactivation is the terminal soft
// state; wallets are never hard-deleted.
func (w Wallet) Deactivate() Wallet {
	next := w
	next.IsActive = false
	next.touch(false)
	return next
}

func (w *Wallet) touch(balanceAffecting bool) {
	now := time.Now().UTC()
	w.UpdatedAt = now
	if balanceAffecting {
		w.LastTransactionAt = &now
	}
}

// checked re-validates the invariants after a transition. Violations should be
// unreachable given the guards on each transition.
func (w Wallet) checked() (Wallet, error) {
	if err := w.validate(); err != nil {
		return Wallet{}, err
	}
	return w, nil
}

func (w Wallet) validate() error {
	if w.Balance.Currency != w.Currency || w.LockedBalance.Currency != w.Currency {
		return fmt.Errorf("%w: balance currency drifted from %s", ErrInvariantViolation, w.Currency)
	}
	if w.Balance.IsNegative() {
		return fmt.Errorf("%w: negative balance %s", ErrInvariantViolation, w.Balance)
	}
	if w.LockedBalance.IsNegative() {
		return fmt.Errorf("%w: negative locked balance %s", ErrInvariantViolation, w.LockedBalance)
	}
	if w.AvailableBalance().IsNegative() {
		return fmt.Errorf("%w: locked balance %s exceeds balance %s", ErrInvariantViolation, w.LockedBalance, w.Balance)
	}
	return nil
}
