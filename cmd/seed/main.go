package main

import (
	"finledger/internal/config" // Custom import path (Config)
	"finledger/internal/domain" // Importing domain models
	"finledger/internal/ledger" // Ledger service

	"github.com/shopspring/decimal" // Exact decimal arithmetic for money
	"github.com/sirupsen/logrus"    // Logging library
	"golang.org/x/crypto/bcrypt"    // Password hashing
	"gorm.io/driver/mysql"          // MySQL driver for GORM
	"gorm.io/gorm"                  // GORM ORM library
)

// Seeds a small, known data set for manual testing. All transactions go
// through the ledger service, so the wallet balances come out right
// without any manual fixup.
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Connect to the database
	db, err := gorm.Open(mysql.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err)
	}
	svc := ledger.NewService(db) // All mutation goes through the service

	// Create a test user
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		logrus.Fatalf("failed to hash password: %v", err)
	}
	user, err := svc.CreateUser("John Doe", "john@example.com", string(hash))
	if err != nil {
		logrus.Fatalf("failed to create user: %v", err)
	}

	// Create wallets for the user
	personal, err := svc.CreateWallet(user.ID, "Personal", "Personal expenses")
	if err != nil {
		logrus.Fatalf("failed to create wallet: %v", err)
	}
	business, err := svc.CreateWallet(user.ID, "Business", "Business account")
	if err != nil {
		logrus.Fatalf("failed to create wallet: %v", err)
	}

	// Add some transactions
	seedTransactions := []struct {
		wallet      uint
		description string
		amount      int64
		txType      string
	}{
		{personal.ID, "Salary", 5000, domain.TypeIncome},
		{personal.ID, "Groceries", 150, domain.TypeExpense},
		{business.ID, "Client payment", 10000, domain.TypeIncome},
	}
	for _, s := range seedTransactions {
		if _, _, err := svc.CreateTransaction(s.wallet, s.description, decimal.NewFromInt(s.amount), s.txType); err != nil {
			logrus.Fatalf("failed to create transaction %q: %v", s.description, err)
		}
	}

	logrus.WithFields(logrus.Fields{
		"user_id": user.ID, // Seeded user
		"wallets": 2,       // Personal and Business
	}).Info("Seed data created")
}
