package ledger

import (
	"errors" // Sentinel error matching

	"finledger/internal/domain" // Importing domain models

	"github.com/shopspring/decimal" // Exact decimal arithmetic for money
	"gorm.io/gorm"                  // GORM ORM library
)

// Read projections. Pure aggregation over the store; none of these touch
// Wallet.Balance.

// UserView is a user expanded with wallets and the read-time total balance
type UserView struct {
	domain.User                 // Embedded user fields
	TotalBalance decimal.Decimal `json:"total_balance"` // Sum of wallet balances, computed on read
}

// totalBalance sums a user's wallet balances at read time
func totalBalance(wallets []domain.Wallet) decimal.Decimal {
	total := decimal.Zero
	for i := range wallets {
		total = total.Add(wallets[i].Balance)
	}
	return total
}

// ListUsers returns all users with their wallets and total balances
func (s *Service) ListUsers() ([]UserView, error) {
	users := make([]domain.User, 0)
	// Preload the Wallets relation for every user
	if err := s.db.Preload("Wallets").Find(&users).Error; err != nil {
		return nil, err
	}
	views := make([]UserView, len(users))
	// Attach the computed total to each user
	for i, u := range users {
		views[i] = UserView{User: u, TotalBalance: totalBalance(u.Wallets)}
	}
	return views, nil
}

// GetUser returns one user with wallets and total balance
func (s *Service) GetUser(id uint) (*UserView, error) {
	var user domain.User
	if err := s.db.Preload("Wallets").First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &UserView{User: user, TotalBalance: totalBalance(user.Wallets)}, nil
}

// GetUserWallets returns the wallets owned by one user
func (s *Service) GetUserWallets(id uint) ([]domain.Wallet, error) {
	// The user must exist even when it owns no wallets
	if err := s.db.First(&domain.User{}, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	wallets := make([]domain.Wallet, 0)
	if err := s.db.Where("user_id = ?", id).Find(&wallets).Error; err != nil {
		return nil, err
	}
	return wallets, nil
}

// ListWallets returns all wallets with their owning users
func (s *Service) ListWallets() ([]domain.Wallet, error) {
	wallets := make([]domain.Wallet, 0)
	if err := s.db.Preload("User").Find(&wallets).Error; err != nil {
		return nil, err
	}
	return wallets, nil
}

// GetWallet returns one wallet expanded with its transaction list
func (s *Service) GetWallet(id uint) (*domain.Wallet, error) {
	var wallet domain.Wallet
	if err := s.db.Preload("Transactions").First(&wallet, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, err
	}
	return &wallet, nil
}

// GetWalletTransactions returns the transactions of one wallet, newest first
func (s *Service) GetWalletTransactions(id uint) ([]domain.Transaction, error) {
	// The wallet must exist even when it has no transactions
	if err := s.db.First(&domain.Wallet{}, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, err
	}
	transactions := make([]domain.Transaction, 0)
	if err := s.db.Where("wallet_id = ?", id).Order("created_at desc").Find(&transactions).Error; err != nil {
		return nil, err
	}
	return transactions, nil
}

// ListTransactions returns all transactions, each expanded with its wallet
// and the wallet's owning user
func (s *Service) ListTransactions() ([]domain.Transaction, error) {
	transactions := make([]domain.Transaction, 0)
	if err := s.db.Preload("Wallet.User").Order("created_at desc").Find(&transactions).Error; err != nil {
		return nil, err
	}
	return transactions, nil
}

// GetTransaction returns one transaction expanded with wallet and user
func (s *Service) GetTransaction(id uint) (*domain.Transaction, error) {
	var trans domain.Transaction
	if err := s.db.Preload("Wallet.User").First(&trans, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return &trans, nil
}

// FindUserByEmail looks a user up for login
func (s *Service) FindUserByEmail(email string) (*domain.User, error) {
	var user domain.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}
