package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction types
const (
	TypeIncome  = "income"  // Adds to the wallet balance
	TypeExpense = "expense" // Subtracts from the wallet balance
)

// ValidType reports whether t is one of the two recognized transaction types
func ValidType(t string) bool {
	return t == TypeIncome || t == TypeExpense
}

// Transaction Model
type Transaction struct {
	ID          uint            `gorm:"primaryKey" json:"id"`                      // Primary key
	Description string          `json:"description"`                               // What the money was for
	Amount      decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"amount"` // Magnitude only, always positive
	Type        string          `gorm:"size:16;not null" json:"type"`              // Transaction type: income or expense
	WalletID    uint            `gorm:"index;not null" json:"wallet_id"`           // Foreign key to owning Wallet
	CreatedAt   time.Time       `json:"created_at"`                                // Timestamp of creation
	Wallet      *Wallet         `json:"wallet,omitempty"`                          // Owning wallet, populated on read projections
}

// SignedAmount returns the transaction's contribution to its wallet balance:
// +Amount for income, -Amount for expense
func (t *Transaction) SignedAmount() decimal.Decimal {
	if t.Type == TypeIncome {
		return t.Amount
	}
	return t.Amount.Neg()
}
