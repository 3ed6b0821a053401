package api

import (
	"context"  // Context for Redis operations
	"net/http" // HTTP status codes

	"finledger/internal/domain" // Importing domain models
	"finledger/internal/ledger" // Ledger service
	"finledger/internal/utils"  // Cache utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
)

// CreateWalletRequest carries the fields for a new wallet. There is no
// balance field: new wallets always start at zero.
type CreateWalletRequest struct {
	Name        string `json:"name" binding:"required"`    // Wallet name must be provided
	Description string `json:"description"`                // Optional description
	UserID      uint   `json:"user_id" binding:"required"` // Owning user must be provided
}

// CreateWalletHandler creates a wallet for a user with zero balance
func CreateWalletHandler(svc *ledger.Service, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateWalletRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			respondError(c, http.StatusBadRequest, "Invalid request")
			return
		}
		// Create the wallet through the ledger service
		wallet, err := svc.CreateWallet(req.UserID, req.Name, req.Description)
		if err != nil {
			respondLedgerError(c, err)
			return
		}
		// Log successful wallet creation
		logrus.WithFields(logrus.Fields{
			"user_id":   req.UserID, // Owning user
			"wallet_id": wallet.ID,  // New wallet ID
		}).Info("Wallet created")
		// The owner's cached view now misses a wallet
		if rdb != nil {
			_ = utils.DeleteCache(context.Background(), rdb, utils.UserCacheKey(req.UserID))
		}
		// Return success response
		respondMessage(c, http.StatusCreated, "Wallet created successfully", wallet)
	}
}

// ListWalletsHandler returns all wallets with their owning users
func ListWalletsHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		wallets, err := svc.ListWallets() // Read projection
		if err != nil {
			respondLedgerError(c, err)
			return
		}
		respondData(c, http.StatusOK, wallets)
	}
}

// GetWalletHandler returns one wallet with its transaction list
func GetWalletHandler(svc *ledger.Service, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c) // Parse the :id parameter
		if !ok {
			return
		}
		ctx := context.Background()          // Context for Redis operations
		cacheKey := utils.WalletCacheKey(id) // Cache key for this wallet view
		// Try the cache first
		if rdb != nil {
			var cached domain.Wallet
			if found, err := utils.GetCache(ctx, rdb, cacheKey, &cached); err == nil && found {
				respondData(c, http.StatusOK, cached) // Return cached view
				return
			}
		}
		wallet, err := svc.GetWallet(id) // Fall through to the store
		if err != nil {
			respondLedgerError(c, err)
			return
		}
		// Cache the view for future requests
		if rdb != nil {
			_ = utils.SetCache(ctx, rdb, cacheKey, wallet, utils.CacheTTL)
		}
		respondData(c, http.StatusOK, wallet)
	}
}

// GetWalletTransactionsHandler returns the transactions of one wallet
func GetWalletTransactionsHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c) // Parse the :id parameter
		if !ok {
			return
		}
		transactions, err := svc.GetWalletTransactions(id) // Read projection
		if err != nil {
			respondLedgerError(c, err)
			return
		}
		respondData(c, http.StatusOK, transactions)
	}
}

// ReconcileWalletHandler audits a wallet's cached balance against the sum
// of its transactions
func ReconcileWalletHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c) // Parse the :id parameter
		if !ok {
			return
		}
		report, err := svc.Reconcile(id) // Recompute and compare
		if err != nil {
			respondLedgerError(c, err)
			return
		}
		// Drift means the invariant was violated somewhere; log it loudly
		if !report.Consistent {
			logrus.WithFields(logrus.Fields{
				"wallet_id": id,                       // Audited wallet
				"cached":    report.Cached.String(),   // Persisted balance
				"computed":  report.Computed.String(), // Recomputed balance
				"drift":     report.Drift.String(),    // Difference
			}).Warn("Wallet balance drift detected")
		}
		respondData(c, http.StatusOK, report)
	}
}

// DeleteWalletHandler deletes a wallet without transactions
func DeleteWalletHandler(svc *ledger.Service, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c) // Parse the :id parameter
		if !ok {
			return
		}
		// Look the wallet up first so the owner's cache can be invalidated
		wallet, err := svc.GetWallet(id)
		if err != nil {
			respondLedgerError(c, err)
			return
		}
		// Delete through the ledger service; restrict policy applies
		if err := svc.DeleteWallet(id); err != nil {
			respondLedgerError(c, err)
			return
		}
		// Log successful deletion
		logrus.WithFields(logrus.Fields{
			"wallet_id": id,            // Deleted wallet
			"user_id":   wallet.UserID, // Former owner
		}).Info("Wallet deleted")
		// Invalidate the wallet view and the owner's user view
		if rdb != nil {
			_ = utils.DeleteCache(context.Background(), rdb,
				utils.WalletCacheKey(id), utils.UserCacheKey(wallet.UserID))
		}
		// Return success response
		respondMessage(c, http.StatusOK, "Wallet deleted successfully", nil)
	}
}
