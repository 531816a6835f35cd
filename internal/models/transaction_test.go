package models_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stakebook/internal/models"
)

func pendingTransaction(t *testing.T) models.Transaction {
	t.Helper()
	txn, err := models.NewTransaction(models.NewTransactionParams{
		WalletID:     uuid.New(),
		Type:         models.TransactionTypeCredit,
		Amount:       khr(t, "100"),
		BalanceAfter: khr(t, "1100"),
		Reference:    "CRD_test_" + uuid.NewString(),
		Description:  "test credit",
	})
	require.NoError(t, err)
	return txn
}

func TestNewTransaction_Validation(t *testing.T) {
	base := models.NewTransactionParams{
		WalletID:     uuid.New(),
		Type:         models.TransactionTypeCredit,
		Amount:       khr(t, "100"),
		BalanceAfter: khr(t, "1100"),
		Reference:    "ref-1",
	}

	txn, err := models.NewTransaction(base)
	require.NoError(t, err)
	assert.Equal(t, models.TransactionStatusPending, txn.Status)
	assert.NotEqual(t, uuid.Nil, txn.ID)

	missing := base
	missing.Reference = ""
	_, err = models.NewTransaction(missing)
	assert.Error(t, err)

	negative := base
	negative.Amount = khr(t, "-10")
	_, err = models.NewTransaction(negative)
	assert.ErrorIs(t, err, models.ErrInvalidAmount)

	negativeBalance := base
	negativeBalance.BalanceAfter = khr(t, "-1")
	_, err = models.NewTransaction(negativeBalance)
	assert.Error(t, err)

	badType := base
	badType.Type = "PAYOUT"
	_, err = models.NewTransaction(badType)
	assert.Error(t, err)
}

func TestTransaction_Complete(t *testing.T) {
	txn := pendingTransaction(t)

	completed, err := txn.Complete()
	require.NoError(t, err)
	assert.Equal(t, models.TransactionStatusCompleted, completed.Status)

	// Original snapshot is unchanged.
	assert.Equal(t, models.TransactionStatusPending, txn.Status)

	_, err = completed.Complete()
	var state *models.TransactionStateError
	require.ErrorAs(t, err, &state)
	assert.Equal(t, models.TransactionStatusCompleted, state.From)
}

func TestTransaction_FailAndCancelAreDeadEnds(t *testing.T) {
	txn := pendingTransaction(t)

	failed, err := txn.Fail("store unavailable")
	require.NoError(t, err)
	assert.Equal(t, models.TransactionStatusFailed, failed.Status)
	assert.Equal(t, "store unavailable", failed.Metadata["failure_reason"])
	assert.Contains(t, failed.Metadata, "failed_at")

	for _, transition := range []func() (models.Transaction, error){
		failed.Complete,
		func() (models.Transaction, error) { return failed.Fail("again") },
		func() (models.Transaction, error) { return failed.Cancel("again") },
		func() (models.Transaction, error) { return failed.MarkReversed(uuid.New()) },
	} {
		_, err := transition()
		assert.Error(t, err)
	}

	cancelled, err := pendingTransaction(t).Cancel("caller gave up")
	require.NoError(t, err)
	assert.Equal(t, models.TransactionStatusCancelled, cancelled.Status)
	assert.Equal(t, "caller gave up", cancelled.Metadata["cancellation_reason"])
}

func TestTransaction_ReversalBookkeeping(t *testing.T) {
	txn := pendingTransaction(t)

	// Pending entries cannot be reversed.
	_, err := txn.MarkReversed(uuid.New())
	assert.Error(t, err)
	assert.False(t, txn.IsReversible())

	completed, err := txn.Complete()
	require.NoError(t, err)
	assert.True(t, completed.IsReversible())

	reversalID := uuid.New()
	reversed, err := completed.MarkReversed(reversalID)
	require.NoError(t, err)
	assert.Equal(t, models.TransactionStatusReversed, reversed.Status)
	assert.Equal(t, reversalID.String(), reversed.Metadata["reversal_transaction_id"])
	assert.True(t, reversed.Status.IsTerminal())
}

func TestTransaction_MetadataIsCopied(t *testing.T) {
	original := map[string]any{"source": "order"}
	txn, err := models.NewTransaction(models.NewTransactionParams{
		WalletID:     uuid.New(),
		Type:         models.TransactionTypeCredit,
		Amount:       khr(t, "10"),
		BalanceAfter: khr(t, "10"),
		Reference:    "ref-meta",
		Metadata:     original,
	})
	require.NoError(t, err)

	failed, err := txn.Fail("boom")
	require.NoError(t, err)

	assert.Equal(t, "order", failed.Metadata["source"])
	assert.NotContains(t, original, "failure_reason", "caller's map must not be mutated")
	assert.NotContains(t, txn.Metadata, "failure_reason")
}
