package models

import (
	"errors"
	"fmt"
)

// Domain failures. These are expected outcomes of valid business rules and are
// returned as typed values so callers can branch on them; anything else coming
// out of the ledger is a system fault.
var (
	ErrWalletNotFound      = errors.New("wallet not found")
	ErrWalletExists        = errors.New("wallet already exists for owner and type")
	ErrWalletInactive      = errors.New("wallet is inactive")
	ErrCurrencyMismatch    = errors.New("currency mismatch")
	ErrInvalidCurrency     = errors.New("invalid currency code")
	ErrDuplicateReference  = errors.New("transaction reference already exists")
	ErrInvalidAmount       = errors.New("amount must not be negative")
	ErrReferenceRequired   = errors.New("transaction type requires an explicit reference")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrNotReversible       = errors.New("transaction is not reversible")
	ErrInvariantViolation  = errors.New("wallet invariant violation")
)

// InsufficientFundsError reports a debit or lock exceeding the available balance.
type InsufficientFundsError struct {
	Requested Money
	Available Money
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: requested %s, available %s", e.Requested, e.Available)
}

// InsufficientLockedError reports an unlock exceeding the locked balance.
type InsufficientLockedError struct {
	Requested Money
	Locked    Money
}

func (e *InsufficientLockedError) Error() string {
	return fmt.Sprintf("insufficient locked funds: requested %s, locked %s", e.Requested, e.Locked)
}

// TransferNotAllowedError reports a wallet-type pair outside the compatibility table.
type TransferNotAllowedError struct {
	From WalletType
	To   WalletType
}

func (e *TransferNotAllowedError) Error() string {
	return fmt.Sprintf("transfer not allowed from %s to %s", e.From, e.To)
}

// TransactionStateError reports an illegal transaction status transition.
type TransactionStateError struct {
	From TransactionStatus
	To   TransactionStatus
}

func (e *TransactionStateError) Error() string {
	return fmt.Sprintf("cannot transition transaction from %s to %s", e.From, e.To)
}

// IsDomainError reports whether err belongs to the ledger's failure taxonomy,
// as opposed to a system fault such as an unavailable store.
func IsDomainError(err error) bool {
	switch {
	case errors.Is(err, ErrWalletNotFound),
		errors.Is(err, ErrWalletExists),
		errors.Is(err, ErrWalletInactive),
		errors.Is(err, ErrCurrencyMismatch),
		errors.Is(err, ErrInvalidCurrency),
		errors.Is(err, ErrDuplicateReference),
		errors.Is(err, ErrInvalidAmount),
		errors.Is(err, ErrReferenceRequired),
		errors.Is(err, ErrTransactionNotFound),
		errors.Is(err, ErrNotReversible),
		errors.Is(err, ErrInvariantViolation):
		return true
	}
	var (
		insufficient *InsufficientFundsError
		locked       *InsufficientLockedError
		notAllowed   *TransferNotAllowedError
		state        *TransactionStateError
	)
	return errors.As(err, &insufficient) ||
		errors.As(err, &locked) ||
		errors.As(err, &notAllowed) ||
		errors.As(err, &state)
}
