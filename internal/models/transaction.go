package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction is one immutable ledger entry recording a balance-affecting
// event against a wallet. The reference is the global idempotency key; the
// store enforces its uniqueness.
type Transaction struct {
	ID                   uuid.UUID         `json:"id"`
	WalletID             uuid.UUID         `json:"wallet_id"`
	Type                 TransactionType   `json:"type"`
	Amount               Money             `json:"amount"`
	BalanceAfter         Money             `json:"balance_after"`
	Reference            string            `json:"reference"`
	Description          string            `json:"description,omitempty"`
	Status               TransactionStatus `json:"status"`
	Metadata             map[string]any    `json:"metadata,omitempty"`
	RelatedTransactionID *uuid.UUID        `json:"related_transaction_id,omitempty"`
	OrderID              *uuid.UUID        `json:"order_id,omitempty"`
	CreatedAt            time.Time         `json:"created_at"`
	UpdatedAt            time.Time         `json:"updated_at"`
}

// NewTransactionParams contains parameters for creating a ledger entry.
type NewTransactionParams struct {
	WalletID             uuid.UUID
	Type                 TransactionType
	Amount               Money
	BalanceAfter         Money
	Reference            string
	Description          string
	Metadata             map[string]any
	RelatedTransactionID *uuid.UUID
	OrderID              *uuid.UUID
}

// NewTransaction creates a pending ledger entry. BalanceAfter must already
// reflect the wallet's post-mutation balance computed by the caller.
func NewTransaction(params NewTransactionParams) (Transaction, error) {
	if params.WalletID == uuid.Nil {
		return Transaction{}, fmt.Errorf("wallet id is required")
	}
	if !params.Type.Valid() {
		return Transaction{}, fmt.Errorf("invalid transaction type %q", params.Type)
	}
	if params.Reference == "" {
		return Transaction{}, fmt.Errorf("reference is required")
	}
	if params.Amount.IsNegative() {
		return Transaction{}, fmt.Errorf("%w: %s", ErrInvalidAmount, params.Amount)
	}
	if params.BalanceAfter.IsNegative() {
		return Transaction{}, fmt.Errorf("balance after must not be negative, got %s", params.BalanceAfter)
	}
	if params.Amount.Currency != params.BalanceAfter.Currency {
		return Transaction{}, fmt.Errorf("%w: amount %s vs balance %s",
			ErrCurrencyMismatch, params.Amount.Currency, params.BalanceAfter.Currency)
	}

	now := time.Now().UTC()
	return Transaction{
		ID:                   uuid.New(),
		WalletID:             params.WalletID,
		Type:                 params.Type,
		Amount:               params.Amount,
		BalanceAfter:         params.BalanceAfter,
		Reference:            params.Reference,
		Description:          params.Description,
		Status:               TransactionStatusPending,
		Metadata:             params.Metadata,
		RelatedTransactionID: params.RelatedTransactionID,
		OrderID:              params.OrderID,
		CreatedAt:            now,
		UpdatedAt:            now,
	}, nil
}

func (t Transaction) transition(next TransactionStatus) (Transaction, error) {
	if !t.Status.CanTransitionTo(next) {
		return Transaction{}, &TransactionStateError{From: t.Status, To: next}
	}
	out := t
	out.Status = next
	out.UpdatedAt = time.Now().UTC()
	return out, nil
}

// Complete marks a pending transaction completed.
func (t Transaction) Complete() (Transaction, error) {
	return t.transition(TransactionStatusCompleted)
}

// Fail marks a pending transaction failed, recording the reason in metadata.
func (t Transaction) Fail(reason string) (Transaction, error) {
	out, err := t.transition(TransactionStatusFailed)
	if err != nil {
		return Transaction{}, err
	}
	out.Metadata = withMetadata(out.Metadata, map[string]any{
		"failure_reason": reason,
		"failed_at":      out.UpdatedAt.Format(time.RFC3339Nano),
	})
	return out, nil
}

// Cancel marks a pending transaction cancelled, recording the reason.
func (t Transaction) Cancel(reason string) (Transaction, error) {
	out, err := t.transition(TransactionStatusCancelled)
	if err != nil {
		return Transaction{}, err
	}
	out.Metadata = withMetadata(out.Metadata, map[string]any{
		"cancellation_reason": reason,
		"cancelled_at":        out.UpdatedAt.Format(time.RFC3339Nano),
	})
	return out, nil
}

// MarkReversed moves a completed transaction to reversed, linking the
// reversal entry that undid it.
func (t Transaction) MarkReversed(reversalID uuid.UUID) (Transaction, error) {
	out, err := t.transition(TransactionStatusReversed)
	if err != nil {
		return Transaction{}, err
	}
	out.Metadata = withMetadata(out.Metadata, map[string]any{
		"reversal_transaction_id": reversalID.String(),
		"reversed_at":             out.UpdatedAt.Format(time.RFC3339Nano),
	})
	return out, nil
}

// IsReversible reports whether this transaction can be reversed right now.
func (t Transaction) IsReversible() bool {
	return t.Status == TransactionStatusCompleted && t.Type.Reversible()
}

// IsHold reports whether this entry records a fund lock or unlock. Holds move
// money between available and locked bookkeeping without changing the total
// balance, so aggregate credit/debit sums exclude them.
func (t Transaction) IsHold() bool {
	op, _ := t.Metadata["operation"].(string)
	return op == "lock" || op == "unlock"
}

// withMetadata merges extra keys into a copy of the metadata map, never
// mutating the original snapshot's map.
func withMetadata(base map[string]any, extra map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

// TransactionFilter contains filter parameters for querying a wallet's
// transactions.
type TransactionFilter struct {
	Type          *TransactionType
	Status        *TransactionStatus
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
	Limit         int
	Offset        int
}

// TransactionTotals aggregates a wallet's ledger activity.
type TransactionTotals struct {
	Count            int64           `json:"count"`
	PendingAmount    decimal.Decimal `json:"pending_amount"`
	CompletedCredits decimal.Decimal `json:"completed_credits"`
	CompletedDebits  decimal.Decimal `json:"completed_debits"`
}
