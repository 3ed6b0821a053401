package domain

import "github.com/shopspring/decimal"

// Wallet Model
type Wallet struct {
	ID           uint            `gorm:"primaryKey" json:"id"`                       // Primary key
	Name         string          `gorm:"not null" json:"name"`                       // Wallet name
	Description  string          `json:"description"`                                // Free-form description
	UserID       uint            `gorm:"index;not null" json:"user_id"`              // Foreign key to owning User
	Balance      decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"balance"` // Cached running total, written only by the ledger service
	User         *User           `json:"user,omitempty"`                             // Owning user, populated on read projections
	Transactions []Transaction   `json:"transactions,omitempty"`                     // Child transactions, populated on read projections
}
