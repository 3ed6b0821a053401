package domain

// User Model
type User struct {
	ID       uint     `gorm:"primaryKey" json:"id"`         // Primary key
	Name     string   `gorm:"not null" json:"name"`         // Display name
	Email    string   `gorm:"unique;not null" json:"email"` // Unique email address
	Password string   `gorm:"not null" json:"-"`            // Hashed password, never serialized
	Wallets  []Wallet `json:"wallets,omitempty"`            // One-to-many relationship with Wallet
}
