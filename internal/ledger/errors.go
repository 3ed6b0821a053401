package ledger

import "errors"

// Sentinel errors surfaced to the transport layer, which maps them to
// HTTP status codes. Storage failures are returned as-is.
var (
	ErrUserNotFound        = errors.New("user not found")        // Referenced user does not exist
	ErrWalletNotFound      = errors.New("wallet not found")      // Referenced wallet does not exist
	ErrTransactionNotFound = errors.New("transaction not found") // Referenced transaction does not exist
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrInvalidType         = errors.New("type must be income or expense")
	ErrWalletNotEmpty      = errors.New("wallet still has transactions") // Restrict delete policy
	ErrUserHasWallets      = errors.New("user still has wallets")        // Restrict delete policy
)
