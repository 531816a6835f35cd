package ledger

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"stakebook/internal/models"
)

// referencePrefixes maps transaction types to short reference prefixes.
var referencePrefixes = map[models.TransactionType]string{
	models.TransactionTypeCredit:           "CRD",
	models.TransactionTypeDebit:            "DBT",
	models.TransactionTypeTransferIn:       "TRF",
	models.TransactionTypeTransferOut:      "TRF",
	models.TransactionTypeBetPlaced:        "BET",
	models.TransactionTypeBetWon:           "BET",
	models.TransactionTypeBetRefund:        "BET",
	models.TransactionTypeCommissionEarned: "COM",
	models.TransactionTypeCommissionShared: "COM",
	models.TransactionTypeBonusAdded:       "BON",
	models.TransactionTypeBonusUsed:        "BON",
	models.TransactionTypeDeposit:          "DEP",
	models.TransactionTypeWithdrawal:       "WDR",
	models.TransactionTypeAdjustment:       "ADJ",
	models.TransactionTypeFee:              "FEE",
}

// newReference composes {prefix}_{unix-nano}_{random-suffix}. Collisions are
// negligible but not impossible; the store's uniqueness constraint is the
// real guarantee.
func newReference(prefix string) string {
	suffix := make([]byte, 4)
	rand.Read(suffix)
	return fmt.Sprintf("%s_%d_%s", prefix, time.Now().UnixNano(), hex.EncodeToString(suffix))
}

func referenceFor(txType models.TransactionType) string {
	prefix, ok := referencePrefixes[txType]
	if !ok {
		prefix = "TXN"
	}
	return newReference(prefix)
}
