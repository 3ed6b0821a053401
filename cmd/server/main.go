package main

import (
	"context" // context package is needed for Redis operations
	"log"     // log package is needed for logging

	"finledger/internal/api"        // Custom package for API handlers
	"finledger/internal/config"     // Custom package for configuration
	"finledger/internal/ledger"     // Custom package for the ledger service
	"finledger/internal/middleware" // Custom package for middleware

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
	"gorm.io/driver/mysql"         // MySQL driver for GORM
	"gorm.io/gorm"                 // GORM ORM library
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Connect to the database
	db, err := gorm.Open(mysql.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}

	// Setup Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr, // Redis server address
		Password: cfg.RedisPass, // Redis password
		DB:       cfg.RedisDB,   // Redis database number
	})

	// Test Redis connection
	_, err = redisClient.Ping(context.Background()).Result()
	if err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}

	// The ledger service owns all balance mutation
	svc := ledger.NewService(db)

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup Gin
	r := gin.Default() // Gin router instance

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	// Public routes
	r.POST("/users", api.CreateUserHandler(svc))           // Registration endpoint
	r.POST("/login", api.LoginHandler(svc, cfg.JWTSecret)) // Login endpoint

	// Everything else requires a valid token
	auth := r.Group("/")
	auth.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))

	// User routes
	auth.GET("/users", api.ListUsersHandler(svc))                      // List users endpoint
	auth.GET("/users/:id", api.GetUserHandler(svc, redisClient))       // User detail endpoint
	auth.GET("/users/:id/wallets", api.GetUserWalletsHandler(svc))     // User wallets endpoint
	auth.DELETE("/users/:id", api.DeleteUserHandler(svc, redisClient)) // Delete user endpoint

	// Wallet routes
	auth.POST("/wallets", api.CreateWalletHandler(svc, redisClient))             // Create wallet endpoint
	auth.GET("/wallets", api.ListWalletsHandler(svc))                            // List wallets endpoint
	auth.GET("/wallets/:id", api.GetWalletHandler(svc, redisClient))             // Wallet detail endpoint
	auth.GET("/wallets/:id/transactions", api.GetWalletTransactionsHandler(svc)) // Wallet transactions endpoint
	auth.GET("/wallets/:id/reconcile", api.ReconcileWalletHandler(svc))          // Balance audit endpoint
	auth.DELETE("/wallets/:id", api.DeleteWalletHandler(svc, redisClient))       // Delete wallet endpoint

	// Transaction routes
	auth.POST("/transactions", api.CreateTransactionHandler(svc, redisClient))       // Record transaction endpoint
	auth.GET("/transactions", api.ListTransactionsHandler(svc))                      // List transactions endpoint
	auth.GET("/transactions/:id", api.GetTransactionHandler(svc))                    // Transaction detail endpoint
	auth.DELETE("/transactions/:id", api.DeleteTransactionHandler(svc, redisClient)) // Delete transaction endpoint

	log.Println("Server running on " + cfg.AppPort) // Log server start
	r.Run(":" + cfg.AppPort)                        // Start the server on port cfg.AppPort
}
