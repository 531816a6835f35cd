package models

// WalletType represents the purpose of a wallet.
type WalletType string

const (
	WalletTypeMain       WalletType = "main"
	WalletTypeCommission WalletType = "commission"
	WalletTypeBonus      WalletType = "bonus"
	WalletTypePending    WalletType = "pending"
	WalletTypeLocked     WalletType = "locked"
)

// Valid reports whether the wallet type is a known value.
func (t WalletType) Valid() bool {
	switch t {
	case WalletTypeMain, WalletTypeCommission, WalletTypeBonus, WalletTypePending, WalletTypeLocked:
		return true
	default:
		return false
	}
}

// transferTable is the directed compatibility table for transfers.
// PENDING and LOCKED wallets never participate as a source.
var transferTable = map[WalletType][]WalletType{
	WalletTypeMain:       {WalletTypeMain, WalletTypeCommission, WalletTypeBonus},
	WalletTypeCommission: {WalletTypeMain, WalletTypeCommission},
	WalletTypeBonus:      {WalletTypeMain},
}

// CanTransferTo reports whether funds may move from a wallet of this type to
// a wallet of the destination type.
func (t WalletType) CanTransferTo(dest WalletType) bool {
	for _, allowed := range transferTable[t] {
		if allowed == dest {
			return true
		}
	}
	return false
}

// TransactionStatus represents the lifecycle state of a transaction.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
	TransactionStatusCancelled TransactionStatus = "cancelled"
	TransactionStatusReversed  TransactionStatus = "reversed"
)

// IsTerminal returns true if no further transition is possible.
// Completed is not terminal: it still admits reversal.
func (s TransactionStatus) IsTerminal() bool {
	switch s {
	case TransactionStatusFailed, TransactionStatusCancelled, TransactionStatusReversed:
		return true
	default:
		return false
	}
}

// CanTransitionTo reports whether the status machine permits moving to next.
func (s TransactionStatus) CanTransitionTo(next TransactionStatus) bool {
	switch s {
	case TransactionStatusPending:
		return next == TransactionStatusCompleted ||
			next == TransactionStatusFailed ||
			next == TransactionStatusCancelled
	case TransactionStatusCompleted:
		return next == TransactionStatusReversed
	default:
		return false
	}
}

// TransactionDirection is the effect of a transaction on the wallet balance.
type TransactionDirection string

const (
	DirectionCredit TransactionDirection = "credit"
	DirectionDebit  TransactionDirection = "debit"
)

// TransactionCategory groups transaction types for reporting.
type TransactionCategory string

const (
	CategoryGeneral        TransactionCategory = "general"
	CategoryTransfer       TransactionCategory = "transfer"
	CategoryBetting        TransactionCategory = "betting"
	CategoryCommission     TransactionCategory = "commission"
	CategoryBonus          TransactionCategory = "bonus"
	CategoryExternal       TransactionCategory = "external"
	CategoryAdministrative TransactionCategory = "administrative"
)

// TransactionType represents the business meaning of a ledger entry.
type TransactionType string

const (
	TransactionTypeCredit           TransactionType = "CREDIT"
	TransactionTypeDebit            TransactionType = "DEBIT"
	TransactionTypeTransferIn       TransactionType = "TRANSFER_IN"
	TransactionTypeTransferOut      TransactionType = "TRANSFER_OUT"
	TransactionTypeBetPlaced        TransactionType = "BET_PLACED"
	TransactionTypeBetWon           TransactionType = "BET_WON"
	TransactionTypeBetRefund        TransactionType = "BET_REFUND"
	TransactionTypeCommissionEarned TransactionType = "COMMISSION_EARNED"
	TransactionTypeCommissionShared TransactionType = "COMMISSION_SHARED"
	TransactionTypeBonusAdded       TransactionType = "BONUS_ADDED"
	TransactionTypeBonusUsed        TransactionType = "BONUS_USED"
	TransactionTypeDeposit          TransactionType = "DEPOSIT"
	TransactionTypeWithdrawal       TransactionType = "WITHDRAWAL"
	TransactionTypeAdjustment       TransactionType = "ADJUSTMENT"
	TransactionTypeFee              TransactionType = "FEE"
)

// typeInfo is the fixed metadata for a transaction type.
type typeInfo struct {
	direction   TransactionDirection
	category    TransactionCategory
	requiresRef bool
	reversible  bool
	reverseAs   TransactionType
}

// typeTable fixes the metadata per type. Every reversible type reverses to a
// type of the opposite direction, so a reversal entry's nominal direction
// always matches the wallet mutation that undoes the original. Types without
// a natural inverse reverse as the generic CREDIT/DEBIT.
var typeTable = map[TransactionType]typeInfo{
	TransactionTypeCredit:           {DirectionCredit, CategoryGeneral, false, true, TransactionTypeDebit},
	TransactionTypeDebit:            {DirectionDebit, CategoryGeneral, false, true, TransactionTypeCredit},
	TransactionTypeTransferIn:       {DirectionCredit, CategoryTransfer, true, true, TransactionTypeTransferOut},
	TransactionTypeTransferOut:      {DirectionDebit, CategoryTransfer, true, true, TransactionTypeTransferIn},
	TransactionTypeBetPlaced:        {DirectionDebit, CategoryBetting, true, true, TransactionTypeBetRefund},
	TransactionTypeBetWon:           {DirectionCredit, CategoryBetting, true, false, ""},
	TransactionTypeBetRefund:        {DirectionCredit, CategoryBetting, true, false, ""},
	TransactionTypeCommissionEarned: {DirectionCredit, CategoryCommission, false, true, TransactionTypeDebit},
	TransactionTypeCommissionShared: {DirectionDebit, CategoryCommission, false, true, TransactionTypeCredit},
	TransactionTypeBonusAdded:       {DirectionCredit, CategoryBonus, false, true, TransactionTypeDebit},
	TransactionTypeBonusUsed:        {DirectionDebit, CategoryBonus, false, false, ""},
	TransactionTypeDeposit:          {DirectionCredit, CategoryExternal, true, true, TransactionTypeWithdrawal},
	TransactionTypeWithdrawal:       {DirectionDebit, CategoryExternal, true, true, TransactionTypeDeposit},
	TransactionTypeAdjustment:       {DirectionCredit, CategoryAdministrative, false, true, TransactionTypeDebit},
	TransactionTypeFee:              {DirectionDebit, CategoryAdministrative, false, true, TransactionTypeCredit},
}

// Valid reports whether the transaction type is a known value.
func (t TransactionType) Valid() bool {
	_, ok := typeTable[t]
	return ok
}

// Direction returns whether the type credits or debits the wallet.
func (t TransactionType) Direction() TransactionDirection {
	return typeTable[t].direction
}

// IsCredit reports whether the type increases the wallet balance.
func (t TransactionType) IsCredit() bool {
	return typeTable[t].direction == DirectionCredit
}

// Category returns the reporting category for the type.
func (t TransactionType) Category() TransactionCategory {
	return typeTable[t].category
}

// RequiresReference reports whether callers must supply an explicit reference
// for this type instead of relying on a generated one.
func (t TransactionType) RequiresReference() bool {
	return typeTable[t].requiresRef
}

// Reversible reports whether a completed transaction of this type may be
// reversed.
func (t TransactionType) Reversible() bool {
	return typeTable[t].reversible
}

// ReverseType returns the inverse-direction type used for the reversal entry.
func (t TransactionType) ReverseType() TransactionType {
	info := typeTable[t]
	if !info.reversible {
		return ""
	}
	return info.reverseAs
}

// CreditTransactionTypes returns every type that credits a wallet.
func CreditTransactionTypes() []TransactionType {
	out := make([]TransactionType, 0, len(typeTable))
	for t, info := range typeTable {
		if info.direction == DirectionCredit {
			out = append(out, t)
		}
	}
	return out
}
