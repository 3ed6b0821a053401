package api

import (
	"net/http" // HTTP status codes

	"finledger/internal/ledger" // Ledger service
	"finledger/internal/utils"  // JWT utility functions

	"github.com/gin-gonic/gin"   // Gin web framework
	"golang.org/x/crypto/bcrypt" // Password hashing
)

// LoginRequest carries login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"` // Login email
	Password string `json:"password" binding:"required"`    // Plain-text password to verify
}

// LoginHandler authenticates a user by email and returns a JWT token
func LoginHandler(svc *ledger.Service, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			respondError(c, http.StatusBadRequest, "Invalid request")
			return
		}
		user, err := svc.FindUserByEmail(req.Email) // Look up the user
		if err != nil {
			// Same answer for unknown email and wrong password
			respondError(c, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		// Compare provided password with stored hash
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
			respondError(c, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		// Generate JWT token
		token, err := utils.GenerateJWT(user.ID, user.Email, jwtSecret)
		if err != nil {
			// If token generation fails, return internal server error
			respondError(c, http.StatusInternalServerError, "Failed to generate token")
			return
		}
		// Return the token in the response
		respondData(c, http.StatusOK, gin.H{"token": token})
	}
}
