package ledger

import (
	"errors" // Sentinel error matching
	"sync"   // Per-wallet mutexes
	"time"   // Log timestamps

	"finledger/internal/domain" // Importing domain models

	"github.com/shopspring/decimal" // Exact decimal arithmetic for money
	"github.com/sirupsen/logrus"    // Logging library
	"gorm.io/gorm"                  // GORM ORM library
)

// Service owns every mutation of the ledger. Wallet.Balance is written
// nowhere else; handlers only call the methods below.
type Service struct {
	db      *gorm.DB             // Underlying database handle
	mu      sync.Mutex           // Guards the wallets map
	wallets map[uint]*sync.Mutex // One mutex per wallet ID
}

// NewService creates a ledger service on top of db
func NewService(db *gorm.DB) *Service {
	return &Service{
		db:      db,                         // Database handle
		wallets: make(map[uint]*sync.Mutex), // Lazily populated per-wallet locks
	}
}

// lockWallet serializes balance mutation per wallet. Two concurrent
// creates against the same wallet would otherwise race on the
// read-modify-write of Balance and silently lose one update.
func (s *Service) lockWallet(id uint) func() {
	s.mu.Lock()              // Protect the map itself
	m, ok := s.wallets[id]   // Look up the wallet's mutex
	if !ok {
		m = &sync.Mutex{}    // First use of this wallet
		s.wallets[id] = m    // Remember it
	}
	s.mu.Unlock()            // Release the map before blocking
	m.Lock()                 // Serialize on the wallet
	return m.Unlock          // Caller defers the unlock
}

// CreateTransaction records a new income or expense against a wallet and
// applies its signed amount to the wallet balance. The row insert and the
// balance update commit or roll back together; on any failure neither is
// visible. Returns the created transaction and the wallet's new balance.
func (s *Service) CreateTransaction(walletID uint, description string, amount decimal.Decimal, txType string) (*domain.Transaction, decimal.Decimal, error) {
	// Reject invalid input before touching storage
	if !amount.IsPositive() {
		return nil, decimal.Zero, ErrInvalidAmount
	}
	if !domain.ValidType(txType) {
		return nil, decimal.Zero, ErrInvalidType
	}
	unlock := s.lockWallet(walletID) // Serialize balance mutation on this wallet
	defer unlock()
	var created domain.Transaction // The transaction row being inserted
	var newBalance decimal.Decimal // Balance after the signed contribution
	// Atomic unit: insert + balance update commit together or not at all
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var wallet domain.Wallet
		// Load the target wallet
		if err := tx.First(&wallet, walletID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrWalletNotFound // No such wallet, nothing mutated
			}
			return err // Storage failure, abort the unit
		}
		// Insert the transaction record
		created = domain.Transaction{
			Description: description, // What the money was for
			Amount:      amount,      // Magnitude only
			Type:        txType,      // income or expense
			WalletID:    walletID,    // Owning wallet
		}
		if err := tx.Create(&created).Error; err != nil {
			return err // Return error to rollback
		}
		// Apply the signed contribution: +amount for income, -amount for expense
		newBalance = wallet.Balance.Add(created.SignedAmount())
		if err := tx.Model(&wallet).Update("balance", newBalance).Error; err != nil {
			return err // Return error to rollback
		}
		return nil // Commit transaction
	})
	if err != nil {
		return nil, decimal.Zero, err
	}
	// Log successful apply
	logrus.WithFields(logrus.Fields{
		"wallet_id":      walletID,                        // Target wallet
		"transaction_id": created.ID,                      // New transaction
		"amount":         amount.String(),                 // Magnitude
		"type":           txType,                          // income or expense
		"balance":        newBalance.String(),             // Balance after apply
		"timestamp":      time.Now().Format(time.RFC3339), // Current timestamp
	}).Info("Transaction applied")
	return &created, newBalance, nil
}

// DeleteTransaction reverts a transaction's effect on its wallet balance
// and removes the row, as one atomic unit. The row and its wallet are both
// re-checked inside the unit, so a concurrent delete or a missing wallet
// yields NotFound with zero mutation rather than a half-applied revert.
func (s *Service) DeleteTransaction(id uint) error {
	var probe domain.Transaction
	// Find the owning wallet first so we know which lock to take
	if err := s.db.First(&probe, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTransactionNotFound
		}
		return err
	}
	unlock := s.lockWallet(probe.WalletID) // Serialize balance mutation on this wallet
	defer unlock()
	// Atomic unit: balance revert + row delete commit together or not at all
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var trans domain.Transaction
		// Re-load under the lock; a concurrent delete may have won
		if err := tx.First(&trans, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTransactionNotFound
			}
			return err
		}
		var wallet domain.Wallet
		// The wallet must still exist before any adjustment
		if err := tx.First(&wallet, trans.WalletID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrWalletNotFound
			}
			return err
		}
		// Inverse adjustment: subtract what income added, add back what expense took
		if err := tx.Model(&wallet).Update("balance", wallet.Balance.Sub(trans.SignedAmount())).Error; err != nil {
			return err // Return error to rollback
		}
		// Remove the row last; its absence makes a repeated revert fail before mutating
		if err := tx.Delete(&domain.Transaction{}, id).Error; err != nil {
			return err // Return error to rollback
		}
		return nil // Commit transaction
	})
	if err != nil {
		return err
	}
	// Log successful revert
	logrus.WithFields(logrus.Fields{
		"wallet_id":      probe.WalletID,                  // Affected wallet
		"transaction_id": id,                              // Reverted transaction
		"amount":         probe.Amount.String(),           // Magnitude
		"type":           probe.Type,                      // income or expense
		"timestamp":      time.Now().Format(time.RFC3339), // Current timestamp
	}).Info("Transaction reverted")
	return nil
}

// Reconciliation reports whether a wallet's cached balance matches the sum
// of its transactions' signed amounts
type Reconciliation struct {
	WalletID   uint            `json:"wallet_id"`        // Audited wallet
	Cached     decimal.Decimal `json:"cached_balance"`   // The persisted balance column
	Computed   decimal.Decimal `json:"computed_balance"` // Recomputed from the transaction set
	Drift      decimal.Decimal `json:"drift"`            // Cached minus computed
	Consistent bool            `json:"consistent"`       // True when drift is zero
}

// Reconcile recomputes a wallet's balance from its full transaction set and
// compares it with the cached column. Audit only; it never writes and is
// not on the request hot path.
func (s *Service) Reconcile(walletID uint) (*Reconciliation, error) {
	unlock := s.lockWallet(walletID) // Hold the lock so the snapshot is consistent
	defer unlock()
	var wallet domain.Wallet
	if err := s.db.First(&wallet, walletID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, err
	}
	var transactions []domain.Transaction
	// Fetch the full transaction set for the wallet
	if err := s.db.Where("wallet_id = ?", walletID).Find(&transactions).Error; err != nil {
		return nil, err
	}
	// Sum signed contributions in decimal, not SQL, so the result is exact
	computed := decimal.Zero
	for i := range transactions {
		computed = computed.Add(transactions[i].SignedAmount())
	}
	drift := wallet.Balance.Sub(computed)
	return &Reconciliation{
		WalletID:   walletID,
		Cached:     wallet.Balance,
		Computed:   computed,
		Drift:      drift,
		Consistent: drift.IsZero(),
	}, nil
}

// CreateUser stores a new user with an already-hashed password
func (s *Service) CreateUser(name, email, passwordHash string) (*domain.User, error) {
	user := domain.User{
		Name:     name,         // Display name
		Email:    email,        // Unique email
		Password: passwordHash, // bcrypt hash from the transport layer
	}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, err // Duplicate email surfaces here
	}
	return &user, nil
}

// DeleteUser removes a user. Restrict policy: a user that still owns
// wallets cannot be deleted.
func (s *Service) DeleteUser(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var user domain.User
		if err := tx.First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		var count int64
		// Check for owned wallets inside the same unit as the delete
		if err := tx.Model(&domain.Wallet{}).Where("user_id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrUserHasWallets // Restrict: delete the wallets first
		}
		return tx.Delete(&domain.User{}, id).Error
	})
}

// CreateWallet stores a new wallet for a user. The balance always starts
// at zero regardless of caller input; only transactions move it.
func (s *Service) CreateWallet(userID uint, name, description string) (*domain.Wallet, error) {
	var wallet domain.Wallet
	err := s.db.Transaction(func(tx *gorm.DB) error {
		// The owning user must exist
		if err := tx.First(&domain.User{}, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		wallet = domain.Wallet{
			Name:        name,         // Wallet name
			Description: description,  // Free-form description
			UserID:      userID,       // Owning user
			Balance:     decimal.Zero, // New wallets start with zero balance
		}
		return tx.Create(&wallet).Error
	})
	if err != nil {
		return nil, err
	}
	return &wallet, nil
}

// DeleteWallet removes a wallet. Restrict policy: a wallet that still has
// transactions cannot be deleted, so the audit trail stays intact.
func (s *Service) DeleteWallet(id uint) error {
	unlock := s.lockWallet(id) // No apply/revert may interleave with the delete
	defer unlock()
	return s.db.Transaction(func(tx *gorm.DB) error {
		var wallet domain.Wallet
		if err := tx.First(&wallet, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrWalletNotFound
			}
			return err
		}
		var count int64
		// Check for child transactions inside the same unit as the delete
		if err := tx.Model(&domain.Transaction{}).Where("wallet_id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrWalletNotEmpty // Restrict: revert the transactions first
		}
		return tx.Delete(&domain.Wallet{}, id).Error
	})
}
