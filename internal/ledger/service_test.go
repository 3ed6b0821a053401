package ledger

import (
	"errors"
	"sync"
	"testing"

	"finledger/internal/domain"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TestCreateTransactionIncome checks that income adds its amount to the
// wallet balance
func TestCreateTransactionIncome(t *testing.T) {
	svc, db := newTestService(t)
	wallet := seedWallet(t, svc)

	created, newBalance, err := svc.CreateTransaction(wallet.ID, "Salary", decimal.NewFromInt(5000), domain.TypeIncome)
	if err != nil {
		t.Fatalf("CreateTransaction() error = %v, want nil", err)
	}
	if created.ID == 0 {
		t.Error("created transaction has no ID")
	}
	if !newBalance.Equal(decimal.NewFromInt(5000)) {
		t.Errorf("new balance = %s, want 5000", newBalance)
	}
	if got := walletBalance(t, db, wallet.ID); !got.Equal(decimal.NewFromInt(5000)) {
		t.Errorf("persisted balance = %s, want 5000", got)
	}
}

// TestCreateTransactionExpense checks that expense subtracts its amount
func TestCreateTransactionExpense(t *testing.T) {
	svc, db := newTestService(t)
	wallet := seedWallet(t, svc)

	if _, _, err := svc.CreateTransaction(wallet.ID, "Salary", decimal.NewFromInt(5000), domain.TypeIncome); err != nil {
		t.Fatalf("income: %v", err)
	}
	_, newBalance, err := svc.CreateTransaction(wallet.ID, "Groceries", decimal.NewFromInt(150), domain.TypeExpense)
	if err != nil {
		t.Fatalf("CreateTransaction() error = %v, want nil", err)
	}
	if !newBalance.Equal(decimal.NewFromInt(4850)) {
		t.Errorf("new balance = %s, want 4850", newBalance)
	}
	if got := walletBalance(t, db, wallet.ID); !got.Equal(decimal.NewFromInt(4850)) {
		t.Errorf("persisted balance = %s, want 4850", got)
	}
}

// TestDeleteTransactionReverts checks that deleting a transaction undoes
// its signed contribution and removes the row
func TestDeleteTransactionReverts(t *testing.T) {
	svc, db := newTestService(t)
	wallet := seedWallet(t, svc)

	created, _, err := svc.CreateTransaction(wallet.ID, "Salary", decimal.NewFromInt(5000), domain.TypeIncome)
	if err != nil {
		t.Fatalf("income: %v", err)
	}
	if err := svc.DeleteTransaction(created.ID); err != nil {
		t.Fatalf("DeleteTransaction() error = %v, want nil", err)
	}
	if got := walletBalance(t, db, wallet.ID); !got.IsZero() {
		t.Errorf("balance after revert = %s, want 0", got)
	}
	if got := transactionCount(t, db); got != 0 {
		t.Errorf("transaction rows = %d, want 0", got)
	}
	// A second revert must fail before touching the balance
	if err := svc.DeleteTransaction(created.ID); !errors.Is(err, ErrTransactionNotFound) {
		t.Errorf("second DeleteTransaction() error = %v, want ErrTransactionNotFound", err)
	}
	if got := walletBalance(t, db, wallet.ID); !got.IsZero() {
		t.Errorf("balance after failed second revert = %s, want 0", got)
	}
}

// TestRoundTripRestoresBalanceExactly checks create-then-delete on a
// cent-precision amount leaves the balance bit-for-bit where it started
func TestRoundTripRestoresBalanceExactly(t *testing.T) {
	svc, db := newTestService(t)
	wallet := seedWallet(t, svc)

	start := walletBalance(t, db, wallet.ID)
	amount := decimal.New(4999, -2) // 49.99
	created, _, err := svc.CreateTransaction(wallet.ID, "Book", amount, domain.TypeIncome)
	if err != nil {
		t.Fatalf("income: %v", err)
	}
	if err := svc.DeleteTransaction(created.ID); err != nil {
		t.Fatalf("revert: %v", err)
	}
	if got := walletBalance(t, db, wallet.ID); !got.Equal(start) {
		t.Errorf("balance after round trip = %s, want %s", got, start)
	}
}

// TestCreateTransactionRejectsInvalidAmount checks that zero and negative
// amounts are rejected with no mutation
func TestCreateTransactionRejectsInvalidAmount(t *testing.T) {
	svc, db := newTestService(t)
	wallet := seedWallet(t, svc)

	for _, amount := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-5)} {
		if _, _, err := svc.CreateTransaction(wallet.ID, "bad", amount, domain.TypeIncome); !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("CreateTransaction(amount=%s) error = %v, want ErrInvalidAmount", amount, err)
		}
	}
	if got := walletBalance(t, db, wallet.ID); !got.IsZero() {
		t.Errorf("balance = %s, want 0", got)
	}
	if got := transactionCount(t, db); got != 0 {
		t.Errorf("transaction rows = %d, want 0", got)
	}
}

// TestCreateTransactionRejectsUnknownType checks that only income and
// expense are accepted
func TestCreateTransactionRejectsUnknownType(t *testing.T) {
	svc, db := newTestService(t)
	wallet := seedWallet(t, svc)

	if _, _, err := svc.CreateTransaction(wallet.ID, "bad", decimal.NewFromInt(10), "transfer"); !errors.Is(err, ErrInvalidType) {
		t.Errorf("CreateTransaction(type=transfer) error = %v, want ErrInvalidType", err)
	}
	if got := walletBalance(t, db, wallet.ID); !got.IsZero() {
		t.Errorf("balance = %s, want 0", got)
	}
	if got := transactionCount(t, db); got != 0 {
		t.Errorf("transaction rows = %d, want 0", got)
	}
}

// TestCreateTransactionWalletNotFound checks the missing-wallet path
func TestCreateTransactionWalletNotFound(t *testing.T) {
	svc, db := newTestService(t)

	if _, _, err := svc.CreateTransaction(42, "ghost", decimal.NewFromInt(10), domain.TypeIncome); !errors.Is(err, ErrWalletNotFound) {
		t.Errorf("CreateTransaction() error = %v, want ErrWalletNotFound", err)
	}
	if got := transactionCount(t, db); got != 0 {
		t.Errorf("transaction rows = %d, want 0", got)
	}
}

// TestDeleteTransactionMissingWallet checks that a revert whose wallet row
// has vanished fails up front and leaves the transaction row in place
func TestDeleteTransactionMissingWallet(t *testing.T) {
	svc, db := newTestService(t)
	wallet := seedWallet(t, svc)

	created, _, err := svc.CreateTransaction(wallet.ID, "Salary", decimal.NewFromInt(5000), domain.TypeIncome)
	if err != nil {
		t.Fatalf("income: %v", err)
	}
	// Remove the wallet row behind the service's back
	if err := db.Delete(&domain.Wallet{}, wallet.ID).Error; err != nil {
		t.Fatalf("delete wallet row: %v", err)
	}
	if err := svc.DeleteTransaction(created.ID); !errors.Is(err, ErrWalletNotFound) {
		t.Errorf("DeleteTransaction() error = %v, want ErrWalletNotFound", err)
	}
	if got := transactionCount(t, db); got != 1 {
		t.Errorf("transaction rows = %d, want 1 (revert must not delete on failure)", got)
	}
}

// TestCreateTransactionAtomicity forces the balance update to fail and
// checks that the already-inserted transaction row is rolled back with it
func TestCreateTransactionAtomicity(t *testing.T) {
	svc, db := newTestService(t)
	wallet := seedWallet(t, svc)

	forced := errors.New("forced storage failure")
	if err := db.Callback().Update().Before("gorm:update").Register("forced_failure", func(tx *gorm.DB) {
		_ = tx.AddError(forced)
	}); err != nil {
		t.Fatalf("register callback: %v", err)
	}
	_, _, err := svc.CreateTransaction(wallet.ID, "Salary", decimal.NewFromInt(5000), domain.TypeIncome)
	if err == nil {
		t.Fatal("CreateTransaction() error = nil, want forced failure")
	}
	if err := db.Callback().Update().Remove("forced_failure"); err != nil {
		t.Fatalf("remove callback: %v", err)
	}
	// Neither the row nor the balance change may be visible
	if got := transactionCount(t, db); got != 0 {
		t.Errorf("transaction rows = %d, want 0", got)
	}
	if got := walletBalance(t, db, wallet.ID); !got.IsZero() {
		t.Errorf("balance = %s, want 0", got)
	}
}

// TestScenarioLifecycle walks the full apply/revert scenario:
// 0 -> +5000 income -> -150 expense -> revert expense -> revert income -> 0
func TestScenarioLifecycle(t *testing.T) {
	svc, db := newTestService(t)
	wallet := seedWallet(t, svc)

	salary, balance, err := svc.CreateTransaction(wallet.ID, "Salary", decimal.NewFromInt(5000), domain.TypeIncome)
	if err != nil {
		t.Fatalf("salary: %v", err)
	}
	if !balance.Equal(decimal.NewFromInt(5000)) {
		t.Errorf("after salary balance = %s, want 5000", balance)
	}
	groceries, balance, err := svc.CreateTransaction(wallet.ID, "Groceries", decimal.NewFromInt(150), domain.TypeExpense)
	if err != nil {
		t.Fatalf("groceries: %v", err)
	}
	if !balance.Equal(decimal.NewFromInt(4850)) {
		t.Errorf("after groceries balance = %s, want 4850", balance)
	}
	if err := svc.DeleteTransaction(groceries.ID); err != nil {
		t.Fatalf("revert groceries: %v", err)
	}
	if got := walletBalance(t, db, wallet.ID); !got.Equal(decimal.NewFromInt(5000)) {
		t.Errorf("after reverting groceries balance = %s, want 5000", got)
	}
	if err := svc.DeleteTransaction(salary.ID); err != nil {
		t.Fatalf("revert salary: %v", err)
	}
	if got := walletBalance(t, db, wallet.ID); !got.IsZero() {
		t.Errorf("after reverting salary balance = %s, want 0", got)
	}
}

// TestConcurrentCreatesSerialize checks that concurrent creates against
// one wallet never lose an update: the per-wallet lock serializes the
// read-modify-write, so every contribution lands in the final balance
func TestConcurrentCreatesSerialize(t *testing.T) {
	svc, db := newTestService(t)
	wallet := seedWallet(t, svc)

	const workers = 10
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := svc.CreateTransaction(wallet.ID, "Deposit", decimal.NewFromInt(100), domain.TypeIncome)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent CreateTransaction() error = %v", err)
		}
	}
	want := decimal.NewFromInt(100 * workers)
	if got := walletBalance(t, db, wallet.ID); !got.Equal(want) {
		t.Errorf("balance = %s, want %s (lost update)", got, want)
	}
	report, err := svc.Reconcile(wallet.ID)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	if !report.Consistent {
		t.Errorf("reconcile drift = %s, want 0", report.Drift)
	}
}

// TestReconcileDetectsDrift tampers with the balance column directly and
// checks the audit reports the difference
func TestReconcileDetectsDrift(t *testing.T) {
	svc, _ := newTestService(t)
	wallet := seedWallet(t, svc)

	if _, _, err := svc.CreateTransaction(wallet.ID, "Salary", decimal.NewFromInt(5000), domain.TypeIncome); err != nil {
		t.Fatalf("income: %v", err)
	}
	report, err := svc.Reconcile(wallet.ID)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	if !report.Consistent {
		t.Fatalf("fresh wallet inconsistent, drift = %s", report.Drift)
	}
	// Corrupt the cached column behind the service's back
	if err := svc.db.Model(&domain.Wallet{}).Where("id = ?", wallet.ID).
		Update("balance", decimal.NewFromInt(9999)).Error; err != nil {
		t.Fatalf("tamper balance: %v", err)
	}
	report, err = svc.Reconcile(wallet.ID)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	if report.Consistent {
		t.Error("tampered wallet reported consistent")
	}
	if want := decimal.NewFromInt(4999); !report.Drift.Equal(want) {
		t.Errorf("drift = %s, want %s", report.Drift, want)
	}
}

// TestDeleteWalletRestrict checks that a wallet with transactions cannot
// be deleted, and can be once they are reverted
func TestDeleteWalletRestrict(t *testing.T) {
	svc, _ := newTestService(t)
	wallet := seedWallet(t, svc)

	created, _, err := svc.CreateTransaction(wallet.ID, "Salary", decimal.NewFromInt(5000), domain.TypeIncome)
	if err != nil {
		t.Fatalf("income: %v", err)
	}
	if err := svc.DeleteWallet(wallet.ID); !errors.Is(err, ErrWalletNotEmpty) {
		t.Errorf("DeleteWallet() error = %v, want ErrWalletNotEmpty", err)
	}
	if err := svc.DeleteTransaction(created.ID); err != nil {
		t.Fatalf("revert: %v", err)
	}
	if err := svc.DeleteWallet(wallet.ID); err != nil {
		t.Errorf("DeleteWallet() after revert error = %v, want nil", err)
	}
}

// TestDeleteUserRestrict checks that a user with wallets cannot be deleted
func TestDeleteUserRestrict(t *testing.T) {
	svc, _ := newTestService(t)
	wallet := seedWallet(t, svc)

	if err := svc.DeleteUser(wallet.UserID); !errors.Is(err, ErrUserHasWallets) {
		t.Errorf("DeleteUser() error = %v, want ErrUserHasWallets", err)
	}
	if err := svc.DeleteWallet(wallet.ID); err != nil {
		t.Fatalf("delete wallet: %v", err)
	}
	if err := svc.DeleteUser(wallet.UserID); err != nil {
		t.Errorf("DeleteUser() after wallet delete error = %v, want nil", err)
	}
	if err := svc.DeleteUser(wallet.UserID); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("second DeleteUser() error = %v, want ErrUserNotFound", err)
	}
}

// TestCreateWalletStartsAtZero checks the forced zero balance and the
// missing-user path
func TestCreateWalletStartsAtZero(t *testing.T) {
	svc, _ := newTestService(t)
	user, err := svc.CreateUser("Jane Doe", "jane@example.com", "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	wallet, err := svc.CreateWallet(user.ID, "Savings", "")
	if err != nil {
		t.Fatalf("CreateWallet() error = %v, want nil", err)
	}
	if !wallet.Balance.IsZero() {
		t.Errorf("new wallet balance = %s, want 0", wallet.Balance)
	}
	if _, err := svc.CreateWallet(99, "Orphan", ""); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("CreateWallet(missing user) error = %v, want ErrUserNotFound", err)
	}
}
