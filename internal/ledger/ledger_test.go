package ledger

import (
	"path/filepath"
	"testing"

	"finledger/internal/domain"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestService opens a fresh SQLite database in a temp directory and
// returns a ledger service on top of it plus the raw handle for
// assertions. A single connection keeps SQLite happy under the
// concurrency tests.
func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ledger.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&domain.User{}, &domain.Wallet{}, &domain.Transaction{}); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	return NewService(db), db
}

// seedWallet creates a user and one wallet for it
func seedWallet(t *testing.T, svc *Service) *domain.Wallet {
	t.Helper()
	user, err := svc.CreateUser("John Doe", "john@example.com", "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	wallet, err := svc.CreateWallet(user.ID, "Personal", "Personal expenses")
	if err != nil {
		t.Fatalf("create wallet: %v", err)
	}
	return wallet
}

// walletBalance reads the persisted balance column
func walletBalance(t *testing.T, db *gorm.DB, id uint) decimal.Decimal {
	t.Helper()
	var wallet domain.Wallet
	if err := db.First(&wallet, id).Error; err != nil {
		t.Fatalf("load wallet %d: %v", id, err)
	}
	return wallet.Balance
}

// transactionCount counts stored transaction rows
func transactionCount(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var count int64
	if err := db.Model(&domain.Transaction{}).Count(&count).Error; err != nil {
		t.Fatalf("count transactions: %v", err)
	}
	return count
}
