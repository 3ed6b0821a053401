package api

import (
	"context"  // Context for Redis operations
	"net/http" // HTTP status codes

	"finledger/internal/ledger" // Ledger service
	"finledger/internal/utils"  // Cache utility functions

	"github.com/gin-gonic/gin"      // Gin web framework
	"github.com/redis/go-redis/v9"  // Redis client
	"github.com/shopspring/decimal" // Exact decimal arithmetic for money
)

// CreateTransactionRequest carries the fields for a new transaction
type CreateTransactionRequest struct {
	Description string          `json:"description"`                                  // What the money was for
	Amount      decimal.Decimal `json:"amount" binding:"required"`                    // Magnitude, must be positive
	Type        string          `json:"type" binding:"required,oneof=income expense"` // income or expense, nothing else
	WalletID    uint            `json:"wallet_id" binding:"required"`                 // Target wallet must be provided
}

// CreateTransactionHandler records a transaction and applies its signed
// amount to the wallet balance in one atomic unit
func CreateTransactionHandler(svc *ledger.Service, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateTransactionRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			respondError(c, http.StatusBadRequest, "Invalid request")
			return
		}
		// Apply through the ledger service; it re-checks amount and type
		created, newBalance, err := svc.CreateTransaction(req.WalletID, req.Description, req.Amount, req.Type)
		if err != nil {
			respondLedgerError(c, err)
			return
		}
		// Expand the created transaction with its wallet for the response
		expanded, err := svc.GetTransaction(created.ID)
		if err != nil {
			respondLedgerError(c, err)
			return
		}
		// The wallet view and its owner's total are now stale
		if rdb != nil && expanded.Wallet != nil {
			_ = utils.DeleteCache(context.Background(), rdb,
				utils.WalletCacheKey(req.WalletID), utils.UserCacheKey(expanded.Wallet.UserID))
		}
		// Return the transaction together with the wallet's new balance
		respondMessage(c, http.StatusCreated, "Transaction created successfully", gin.H{
			"transaction":            expanded,   // Created transaction with wallet
			"updated_wallet_balance": newBalance, // Balance after the signed contribution
		})
	}
}

// ListTransactionsHandler returns all transactions, each with its wallet
// and the wallet's user
func ListTransactionsHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		transactions, err := svc.ListTransactions() // Read projection
		if err != nil {
			respondLedgerError(c, err)
			return
		}
		respondData(c, http.StatusOK, transactions)
	}
}

// GetTransactionHandler returns one transaction with wallet and user
func GetTransactionHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c) // Parse the :id parameter
		if !ok {
			return
		}
		trans, err := svc.GetTransaction(id) // Read projection
		if err != nil {
			respondLedgerError(c, err)
			return
		}
		respondData(c, http.StatusOK, trans)
	}
}

// DeleteTransactionHandler reverts a transaction's effect on its wallet
// balance and removes it, in one atomic unit
func DeleteTransactionHandler(svc *ledger.Service, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c) // Parse the :id parameter
		if !ok {
			return
		}
		// Look the transaction up first so caches can be invalidated after
		trans, err := svc.GetTransaction(id)
		if err != nil {
			respondLedgerError(c, err)
			return
		}
		// Revert through the ledger service
		if err := svc.DeleteTransaction(id); err != nil {
			respondLedgerError(c, err)
			return
		}
		// The wallet view and its owner's total are now stale
		if rdb != nil && trans.Wallet != nil {
			_ = utils.DeleteCache(context.Background(), rdb,
				utils.WalletCacheKey(trans.WalletID), utils.UserCacheKey(trans.Wallet.UserID))
		}
		// Return success response
		respondMessage(c, http.StatusOK, "Transaction deleted successfully and wallet balance updated", nil)
	}
}
