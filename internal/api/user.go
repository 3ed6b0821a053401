package api

import (
	"context"  // Context for Redis operations
	"net/http" // HTTP status codes
	"strconv"  // Path parameter parsing

	"finledger/internal/ledger" // Ledger service
	"finledger/internal/utils"  // Cache utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"golang.org/x/crypto/bcrypt"   // Password hashing
)

// CreateUserRequest carries the fields for a new user
type CreateUserRequest struct {
	Name     string `json:"name" binding:"required"`           // Display name must be provided
	Email    string `json:"email" binding:"required,email"`    // Valid email must be provided
	Password string `json:"password" binding:"required,min=8"` // Password must be at least 8 characters
}

// idParam parses the :id path parameter
func idParam(c *gin.Context) (uint, bool) {
	v, err := strconv.ParseUint(c.Param("id"), 10, 32) // Parse the id segment
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid id")
		return 0, false
	}
	return uint(v), true
}

// CreateUserHandler registers a new user
func CreateUserHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateUserRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			respondError(c, http.StatusBadRequest, "Invalid request")
			return
		}
		// Hash the password before it reaches storage
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			// If hashing fails, return internal server error
			respondError(c, http.StatusInternalServerError, "Failed to hash password")
			return
		}
		// Create the user through the ledger service
		user, err := svc.CreateUser(req.Name, req.Email, string(hash))
		if err != nil {
			// If creation fails (e.g., duplicate email), return bad request
			respondError(c, http.StatusBadRequest, "Email already exists")
			return
		}
		// Log successful user creation
		logrus.WithFields(logrus.Fields{
			"user_id": user.ID,    // New user ID
			"email":   user.Email, // Registered email
		}).Info("User created")
		// Return success response
		respondMessage(c, http.StatusCreated, "User created successfully", user)
	}
}

// ListUsersHandler returns all users with wallets and total balances
func ListUsersHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := svc.ListUsers() // Read projection
		if err != nil {
			respondLedgerError(c, err)
			return
		}
		respondData(c, http.StatusOK, users)
	}
}

// GetUserHandler returns one user with wallets and total balance
func GetUserHandler(svc *ledger.Service, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c) // Parse the :id parameter
		if !ok {
			return
		}
		ctx := context.Background()        // Context for Redis operations
		cacheKey := utils.UserCacheKey(id) // Cache key for this user view
		// Try the cache first
		if rdb != nil {
			var cached ledger.UserView
			if found, err := utils.GetCache(ctx, rdb, cacheKey, &cached); err == nil && found {
				respondData(c, http.StatusOK, cached) // Return cached view
				return
			}
		}
		user, err := svc.GetUser(id) // Fall through to the store
		if err != nil {
			respondLedgerError(c, err)
			return
		}
		// Cache the view for future requests
		if rdb != nil {
			_ = utils.SetCache(ctx, rdb, cacheKey, user, utils.CacheTTL)
		}
		respondData(c, http.StatusOK, user)
	}
}

// GetUserWalletsHandler returns the wallets owned by one user
func GetUserWalletsHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c) // Parse the :id parameter
		if !ok {
			return
		}
		wallets, err := svc.GetUserWallets(id) // Read projection
		if err != nil {
			respondLedgerError(c, err)
			return
		}
		respondData(c, http.StatusOK, wallets)
	}
}

// DeleteUserHandler deletes a user without wallets
func DeleteUserHandler(svc *ledger.Service, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c) // Parse the :id parameter
		if !ok {
			return
		}
		// Delete through the ledger service; restrict policy applies
		if err := svc.DeleteUser(id); err != nil {
			respondLedgerError(c, err)
			return
		}
		// Log successful deletion
		logrus.WithFields(logrus.Fields{"user_id": id}).Info("User deleted")
		// Invalidate the cached user view
		if rdb != nil {
			_ = utils.DeleteCache(context.Background(), rdb, utils.UserCacheKey(id))
		}
		// Return success response
		respondMessage(c, http.StatusOK, "User deleted successfully", nil)
	}
}
