package ledger_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"stakebook/internal/ledger"
	"stakebook/internal/models"
)

func newTestService(t *testing.T) (*ledger.Service, *ledger.MemoryStore) {
	t.Helper()
	store := ledger.NewMemoryStore()
	return ledger.NewService(store, zap.NewNop()), store
}

func khr(t *testing.T, amount string) models.Money {
	t.Helper()
	m, err := models.NewMoneyFromString(amount, "KHR")
	require.NoError(t, err)
	return m
}

func seedWallet(t *testing.T, svc *ledger.Service, walletType models.WalletType, balance string) *models.Wallet {
	t.Helper()
	ctx := context.Background()

	wallet, err := svc.CreateWallet(ctx, models.NewWalletParams{
		OwnerID:    uuid.New(),
		WalletType: walletType,
		Currency:   "KHR",
	})
	require.NoError(t, err)

	if balance == "0" {
		return wallet
	}

	result, err := svc.Credit(ctx, ledger.EntryParams{
		WalletID:    wallet.ID,
		Amount:      khr(t, balance),
		Type:        models.TransactionTypeCredit,
		Description: "seed balance",
	})
	require.NoError(t, err)
	return result.Wallet
}

func TestCredit(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	wallet := seedWallet(t, svc, models.WalletTypeMain, "0")

	result, err := svc.Credit(ctx, ledger.EntryParams{
		WalletID:    wallet.ID,
		Amount:      khr(t, "1000"),
		Type:        models.TransactionTypeCredit,
		Description: "deposit seed",
	})
	require.NoError(t, err)

	assert.True(t, result.Wallet.Balance.Equal(khr(t, "1000")))
	assert.Equal(t, models.TransactionStatusCompleted, result.Transaction.Status)
	assert.True(t, result.Transaction.BalanceAfter.Equal(khr(t, "1000")))
	assert.NotEmpty(t, result.Transaction.Reference)

	// Persisted state matches the returned snapshots.
	stored, err := svc.GetWallet(ctx, wallet.ID)
	require.NoError(t, err)
	assert.True(t, stored.Balance.Equal(khr(t, "1000")))

	byRef, err := svc.GetTransactionByReference(ctx, result.Transaction.Reference)
	require.NoError(t, err)
	assert.Equal(t, result.Transaction.ID, byRef.ID)
}

func TestCredit_WalletNotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Credit(context.Background(), ledger.EntryParams{
		WalletID: uuid.New(),
		Amount:   khr(t, "10"),
		Type:     models.TransactionTypeCredit,
	})
	assert.ErrorIs(t, err, models.ErrWalletNotFound)
}

func TestCredit_TypeDirectionEnforced(t *testing.T) {
	svc, _ := newTestService(t)
	wallet := seedWallet(t, svc, models.WalletTypeMain, "100")

	_, err := svc.Credit(context.Background(), ledger.EntryParams{
		WalletID: wallet.ID,
		Amount:   khr(t, "10"),
		Type:     models.TransactionTypeWithdrawal,
	})
	assert.Error(t, err)

	_, err = svc.Debit(context.Background(), ledger.EntryParams{
		WalletID: wallet.ID,
		Amount:   khr(t, "10"),
		Type:     models.TransactionTypeDeposit,
	})
	assert.Error(t, err)
}

func TestDebit_RequiredReference(t *testing.T) {
	svc, _ := newTestService(t)
	wallet := seedWallet(t, svc, models.WalletTypeMain, "100")

	_, err := svc.Debit(context.Background(), ledger.EntryParams{
		WalletID: wallet.ID,
		Amount:   khr(t, "10"),
		Type:     models.TransactionTypeWithdrawal,
	})
	assert.ErrorIs(t, err, models.ErrReferenceRequired)

	result, err := svc.Debit(context.Background(), ledger.EntryParams{
		WalletID:  wallet.ID,
		Amount:    khr(t, "10"),
		Type:      models.TransactionTypeWithdrawal,
		Reference: "WDR_manual_1",
	})
	require.NoError(t, err)
	assert.Equal(t, "WDR_manual_1", result.Transaction.Reference)
}

func TestDebit_InsufficientFunds(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	wallet := seedWallet(t, svc, models.WalletTypeMain, "1000")

	_, err := svc.Debit(ctx, ledger.EntryParams{
		WalletID: wallet.ID,
		Amount:   khr(t, "1500"),
		Type:     models.TransactionTypeDebit,
	})

	var insufficient *models.InsufficientFundsError
	require.ErrorAs(t, err, &insufficient)
	assert.True(t, insufficient.Requested.Equal(khr(t, "1500")))
	assert.True(t, insufficient.Available.Equal(khr(t, "1000")))

	// Wallet unchanged, no entry recorded.
	stored, err := svc.GetWallet(ctx, wallet.ID)
	require.NoError(t, err)
	assert.True(t, stored.Balance.Equal(khr(t, "1000")))

	entries, err := svc.ListTransactions(ctx, wallet.ID, models.TransactionFilter{})
	require.NoError(t, err)
	assert.Len(t, entries, 1, "only the seed credit should exist")
}

func TestIdempotency_DuplicateReferenceRejected(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	wallet := seedWallet(t, svc, models.WalletTypeMain, "1000")

	params := ledger.EntryParams{
		WalletID:  wallet.ID,
		Amount:    khr(t, "100"),
		Type:      models.TransactionTypeDebit,
		Reference: "DBT_retry_001",
	}

	first, err := svc.Debit(ctx, params)
	require.NoError(t, err)
	assert.True(t, first.Wallet.Balance.Equal(khr(t, "900")))

	_, err = svc.Debit(ctx, params)
	assert.ErrorIs(t, err, models.ErrDuplicateReference)

	// Exactly one applied mutation.
	stored, err := svc.GetWallet(ctx, wallet.ID)
	require.NoError(t, err)
	assert.True(t, stored.Balance.Equal(khr(t, "900")))
}

func TestCurrencyGuard_NoMutation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	wallet := seedWallet(t, svc, models.WalletTypeMain, "1000")

	usd, err := models.NewMoneyFromString("10", "USD")
	require.NoError(t, err)

	_, err = svc.Credit(ctx, ledger.EntryParams{
		WalletID: wallet.ID,
		Amount:   usd,
		Type:     models.TransactionTypeCredit,
	})
	assert.ErrorIs(t, err, models.ErrCurrencyMismatch)

	stored, err := svc.GetWallet(ctx, wallet.ID)
	require.NoError(t, err)
	assert.True(t, stored.Balance.Equal(khr(t, "1000")))
}

func TestTransfer(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	from := seedWallet(t, svc, models.WalletTypeMain, "500")
	to := seedWallet(t, svc, models.WalletTypeCommission, "0")

	result, err := svc.Transfer(ctx, ledger.TransferParams{
		FromWalletID: from.ID,
		ToWalletID:   to.ID,
		Amount:       khr(t, "200"),
		Description:  "commission payout",
	})
	require.NoError(t, err)

	assert.True(t, result.FromWallet.Balance.Equal(khr(t, "300")))
	assert.True(t, result.ToWallet.Balance.Equal(khr(t, "200")))

	out, in := result.OutTransaction, result.InTransaction
	assert.Equal(t, models.TransactionTypeTransferOut, out.Type)
	assert.Equal(t, models.TransactionTypeTransferIn, in.Type)
	assert.Equal(t, models.TransactionStatusCompleted, out.Status)
	assert.Equal(t, models.TransactionStatusCompleted, in.Status)

	// Legs cross-link each other.
	require.NotNil(t, out.RelatedTransactionID)
	require.NotNil(t, in.RelatedTransactionID)
	assert.Equal(t, in.ID, *out.RelatedTransactionID)
	assert.Equal(t, out.ID, *in.RelatedTransactionID)

	// Shared reference with per-leg suffixes.
	assert.Equal(t, out.Reference[:len(out.Reference)-4], in.Reference[:len(in.Reference)-3])
	assert.Contains(t, out.Reference, "_OUT")
	assert.Contains(t, in.Reference, "_IN")
}

func TestTransfer_NotAllowedPair(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	from := seedWallet(t, svc, models.WalletTypeBonus, "500")
	to := seedWallet(t, svc, models.WalletTypeCommission, "100")

	_, err := svc.Transfer(ctx, ledger.TransferParams{
		FromWalletID: from.ID,
		ToWalletID:   to.ID,
		Amount:       khr(t, "50"),
	})

	var notAllowed *models.TransferNotAllowedError
	require.ErrorAs(t, err, &notAllowed)
	assert.Equal(t, models.WalletTypeBonus, notAllowed.From)
	assert.Equal(t, models.WalletTypeCommission, notAllowed.To)

	// Neither wallet mutated.
	storedFrom, err := svc.GetWallet(ctx, from.ID)
	require.NoError(t, err)
	assert.True(t, storedFrom.Balance.Equal(khr(t, "500")))

	storedTo, err := svc.GetWallet(ctx, to.ID)
	require.NoError(t, err)
	assert.True(t, storedTo.Balance.Equal(khr(t, "100")))
}

func TestTransfer_Atomicity(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	from := seedWallet(t, svc, models.WalletTypeMain, "100")
	to := seedWallet(t, svc, models.WalletTypeMain, "0")

	_, err := svc.Transfer(ctx, ledger.TransferParams{
		FromWalletID: from.ID,
		ToWalletID:   to.ID,
		Amount:       khr(t, "150"),
	})

	var insufficient *models.InsufficientFundsError
	require.ErrorAs(t, err, &insufficient)

	// No leg was applied: balances intact and no transfer entries exist.
	storedFrom, err := svc.GetWallet(ctx, from.ID)
	require.NoError(t, err)
	assert.True(t, storedFrom.Balance.Equal(khr(t, "100")))

	storedTo, err := svc.GetWallet(ctx, to.ID)
	require.NoError(t, err)
	assert.True(t, storedTo.Balance.IsZero())

	outType := models.TransactionTypeTransferOut
	outEntries, err := svc.ListTransactions(ctx, from.ID, models.TransactionFilter{Type: &outType})
	require.NoError(t, err)
	assert.Empty(t, outEntries)
}

func TestTransfer_SelfAndMissingWallets(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	wallet := seedWallet(t, svc, models.WalletTypeMain, "100")

	_, err := svc.Transfer(ctx, ledger.TransferParams{
		FromWalletID: wallet.ID,
		ToWalletID:   wallet.ID,
		Amount:       khr(t, "10"),
	})
	assert.Error(t, err)

	_, err = svc.Transfer(ctx, ledger.TransferParams{
		FromWalletID: wallet.ID,
		ToWalletID:   uuid.New(),
		Amount:       khr(t, "10"),
	})
	assert.ErrorIs(t, err, models.ErrWalletNotFound)
}

func TestLockUnlockFunds(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	wallet := seedWallet(t, svc, models.WalletTypeMain, "1000")

	locked, err := svc.LockFunds(ctx, wallet.ID, khr(t, "400"), "", "stake hold")
	require.NoError(t, err)
	assert.True(t, locked.Wallet.LockedBalance.Equal(khr(t, "400")))
	assert.True(t, locked.Wallet.Balance.Equal(khr(t, "1000")))
	assert.Equal(t, models.TransactionTypeAdjustment, locked.Transaction.Type)
	assert.Equal(t, "lock", locked.Transaction.Metadata["operation"])

	unlocked, err := svc.UnlockFunds(ctx, wallet.ID, khr(t, "400"), "", "stake released")
	require.NoError(t, err)
	assert.True(t, unlocked.Wallet.LockedBalance.IsZero())
	assert.Equal(t, "unlock", unlocked.Transaction.Metadata["operation"])

	_, err = svc.UnlockFunds(ctx, wallet.ID, khr(t, "1"), "", "")
	var insufficientLocked *models.InsufficientLockedError
	assert.ErrorAs(t, err, &insufficientLocked)
}

func TestReverse(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	wallet := seedWallet(t, svc, models.WalletTypeMain, "0")

	deposit, err := svc.Credit(ctx, ledger.EntryParams{
		WalletID:  wallet.ID,
		Amount:    khr(t, "300"),
		Type:      models.TransactionTypeDeposit,
		Reference: "DEP_gateway_42",
	})
	require.NoError(t, err)

	reversal, err := svc.Reverse(ctx, deposit.Transaction.ID, "chargeback")
	require.NoError(t, err)

	assert.True(t, reversal.Wallet.Balance.IsZero())
	assert.Equal(t, models.TransactionTypeWithdrawal, reversal.Transaction.Type)
	assert.Equal(t, "DEP_gateway_42_REV", reversal.Transaction.Reference)
	require.NotNil(t, reversal.Transaction.RelatedTransactionID)
	assert.Equal(t, deposit.Transaction.ID, *reversal.Transaction.RelatedTransactionID)

	original, err := svc.GetTransaction(ctx, deposit.Transaction.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TransactionStatusReversed, original.Status)

	// A second reversal attempt fails: the original is no longer completed.
	_, err = svc.Reverse(ctx, deposit.Transaction.ID, "again")
	assert.ErrorIs(t, err, models.ErrNotReversible)
}

func TestReverse_TotalsStayConsistent(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	wallet := seedWallet(t, svc, models.WalletTypeCommission, "0")

	earned, err := svc.Credit(ctx, ledger.EntryParams{
		WalletID:  wallet.ID,
		Amount:    khr(t, "100"),
		Type:      models.TransactionTypeCommissionEarned,
		Reference: "COM_round_3",
	})
	require.NoError(t, err)

	reversal, err := svc.Reverse(ctx, earned.Transaction.ID, "misattributed")
	require.NoError(t, err)
	assert.Equal(t, models.DirectionDebit, reversal.Transaction.Type.Direction())
	assert.True(t, reversal.Wallet.Balance.IsZero())

	// Credits minus debits must equal the remaining balance.
	totals, err := svc.WalletTotals(ctx, wallet.ID)
	require.NoError(t, err)
	assert.Equal(t, "100", totals.CompletedCredits.String())
	assert.Equal(t, "100", totals.CompletedDebits.String())
	assert.True(t, totals.CompletedCredits.Sub(totals.CompletedDebits).Equal(reversal.Wallet.Balance.Amount))
}

func TestReverse_NonReversibleType(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	wallet := seedWallet(t, svc, models.WalletTypeMain, "0")

	win, err := svc.Credit(ctx, ledger.EntryParams{
		WalletID:  wallet.ID,
		Amount:    khr(t, "500"),
		Type:      models.TransactionTypeBetWon,
		Reference: "BET_round_7_win",
	})
	require.NoError(t, err)

	_, err = svc.Reverse(ctx, win.Transaction.ID, "oops")
	assert.ErrorIs(t, err, models.ErrNotReversible)
}

func TestWalletTotals(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	wallet := seedWallet(t, svc, models.WalletTypeMain, "1000")

	_, err := svc.Debit(ctx, ledger.EntryParams{
		WalletID: wallet.ID,
		Amount:   khr(t, "250"),
		Type:     models.TransactionTypeDebit,
	})
	require.NoError(t, err)

	totals, err := svc.WalletTotals(ctx, wallet.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), totals.Count)
	assert.Equal(t, "1000", totals.CompletedCredits.String())
	assert.Equal(t, "250", totals.CompletedDebits.String())
	assert.True(t, totals.PendingAmount.IsZero())
}

func TestWalletTotals_HoldsExcluded(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	wallet := seedWallet(t, svc, models.WalletTypeMain, "1000")

	_, err := svc.LockFunds(ctx, wallet.ID, khr(t, "400"), "", "stake hold")
	require.NoError(t, err)
	_, err = svc.UnlockFunds(ctx, wallet.ID, khr(t, "400"), "", "stake released")
	require.NoError(t, err)

	// Holds are counted as entries but never move the total balance, so the
	// credit and debit sums see only the seed credit.
	totals, err := svc.WalletTotals(ctx, wallet.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), totals.Count)
	assert.Equal(t, "1000", totals.CompletedCredits.String())
	assert.True(t, totals.CompletedDebits.IsZero())
}

func TestEntryByOwnerAndType(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	ownerID := uuid.New()

	wallet, err := svc.CreateWallet(ctx, models.NewWalletParams{
		OwnerID:    ownerID,
		WalletType: models.WalletTypeBonus,
		Currency:   "KHR",
	})
	require.NoError(t, err)

	result, err := svc.Credit(ctx, ledger.EntryParams{
		OwnerID:    ownerID,
		WalletType: models.WalletTypeBonus,
		Amount:     khr(t, "250"),
		Type:       models.TransactionTypeBonusAdded,
	})
	require.NoError(t, err)
	assert.Equal(t, wallet.ID, result.Wallet.ID)
	assert.True(t, result.Wallet.Balance.Equal(khr(t, "250")))

	_, err = svc.Debit(ctx, ledger.EntryParams{
		OwnerID:    ownerID,
		WalletType: models.WalletTypeMain,
		Amount:     khr(t, "10"),
		Type:       models.TransactionTypeDebit,
	})
	assert.ErrorIs(t, err, models.ErrWalletNotFound)
}

func TestConcurrentDebits_NoLostUpdates(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	const n = 20
	wallet := seedWallet(t, svc, models.WalletTypeMain, "1000") // n * 50

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Debit(ctx, ledger.EntryParams{
				WalletID:  wallet.ID,
				Amount:    khr(t, "50"),
				Type:      models.TransactionTypeDebit,
				Reference: fmt.Sprintf("DBT_parallel_%d", i),
			})
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		assert.NoError(t, err, "debit %d", i)
	}

	stored, err := svc.GetWallet(ctx, wallet.ID)
	require.NoError(t, err)
	assert.True(t, stored.Balance.IsZero(), "final balance %s", stored.Balance)

	debitType := models.TransactionTypeDebit
	entries, err := svc.ListTransactions(ctx, wallet.ID, models.TransactionFilter{Type: &debitType})
	require.NoError(t, err)
	assert.Len(t, entries, n)
}

func TestConcurrentRetries_ExactlyOneWins(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	wallet := seedWallet(t, svc, models.WalletTypeMain, "1000")

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Debit(ctx, ledger.EntryParams{
				WalletID:  wallet.ID,
				Amount:    khr(t, "100"),
				Type:      models.TransactionTypeDebit,
				Reference: "DBT_same_ref",
			})
		}(i)
	}
	wg.Wait()

	var succeeded, duplicates int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, models.ErrDuplicateReference):
			duplicates++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, attempts-1, duplicates)

	stored, err := svc.GetWallet(ctx, wallet.ID)
	require.NoError(t, err)
	assert.True(t, stored.Balance.Equal(khr(t, "900")))
}

func TestConcurrentSameReference_AcrossWallets(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	a := seedWallet(t, svc, models.WalletTypeMain, "100")
	b := seedWallet(t, svc, models.WalletTypeMain, "100")
	amount := khr(t, "50")

	// Both units of work pass the reference pre-check before either inserts.
	// Each holds only its own wallet's row lock, so the row locks cannot
	// serialize them; reference uniqueness has to hold on its own.
	var checked sync.WaitGroup
	checked.Add(2)

	run := func(walletID uuid.UUID) error {
		return store.Atomically(ctx, func(stx ledger.StoreTx) error {
			wallet, err := stx.WalletForUpdate(ctx, walletID)
			if err != nil {
				return err
			}
			if _, err := stx.ReferenceExists(ctx, "DBT_shared"); err != nil {
				return err
			}
			checked.Done()
			checked.Wait()

			next, err := wallet.Debit(amount)
			if err != nil {
				return err
			}
			entry, err := models.NewTransaction(models.NewTransactionParams{
				WalletID:     wallet.ID,
				Type:         models.TransactionTypeDebit,
				Amount:       amount,
				BalanceAfter: next.Balance,
				Reference:    "DBT_shared",
			})
			if err != nil {
				return err
			}
			if err := stx.InsertTransaction(ctx, entry); err != nil {
				return err
			}
			return stx.SaveWallet(ctx, next)
		})
	}

	errs := make(chan error, 2)
	go func() { errs <- run(a.ID) }()
	go func() { errs <- run(b.ID) }()

	var succeeded, duplicates int
	for i := 0; i < 2; i++ {
		switch err := <-errs; {
		case err == nil:
			succeeded++
		case errors.Is(err, models.ErrDuplicateReference):
			duplicates++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, duplicates)

	// Exactly one entry committed, and only its wallet was debited.
	committed, err := svc.GetTransactionByReference(ctx, "DBT_shared")
	require.NoError(t, err)

	storedA, err := svc.GetWallet(ctx, a.ID)
	require.NoError(t, err)
	storedB, err := svc.GetWallet(ctx, b.ID)
	require.NoError(t, err)
	total := storedA.Balance.Amount.Add(storedB.Balance.Amount)
	assert.Equal(t, "150", total.String())
	assert.True(t, committed.WalletID == a.ID || committed.WalletID == b.ID)
}

func TestConcurrentOpposingTransfers_NoDeadlock(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	a := seedWallet(t, svc, models.WalletTypeMain, "500")
	b := seedWallet(t, svc, models.WalletTypeMain, "500")

	const rounds = 10
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			_, err := svc.Transfer(ctx, ledger.TransferParams{
				FromWalletID: a.ID,
				ToWalletID:   b.ID,
				Amount:       khr(t, "10"),
				Reference:    fmt.Sprintf("TRF_ab_%d", i),
			})
			assert.NoError(t, err)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			_, err := svc.Transfer(ctx, ledger.TransferParams{
				FromWalletID: b.ID,
				ToWalletID:   a.ID,
				Amount:       khr(t, "10"),
				Reference:    fmt.Sprintf("TRF_ba_%d", i),
			})
			assert.NoError(t, err)
		}
	}()
	wg.Wait()

	// Equal flows in both directions: balances end where they started.
	storedA, err := svc.GetWallet(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, storedA.Balance.Equal(khr(t, "500")))

	storedB, err := svc.GetWallet(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, storedB.Balance.Equal(khr(t, "500")))
}
