package api

import (
	"errors"   // Sentinel error matching
	"net/http" // HTTP status codes

	"finledger/internal/ledger" // Ledger service errors

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// Every endpoint answers with the same envelope: {success, message?, data}.

// respondData writes a success envelope carrying data
func respondData(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

// respondMessage writes a success envelope carrying a message and data
func respondMessage(c *gin.Context, status int, message string, data any) {
	if data == nil {
		c.JSON(status, gin.H{"success": true, "message": message})
		return
	}
	c.JSON(status, gin.H{"success": true, "message": message, "data": data})
}

// respondError writes a failure envelope
func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}

// respondLedgerError maps ledger errors to HTTP status codes. Unrecognized
// errors are storage failures: logged and answered with a generic 500.
func respondLedgerError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ledger.ErrUserNotFound),
		errors.Is(err, ledger.ErrWalletNotFound),
		errors.Is(err, ledger.ErrTransactionNotFound):
		respondError(c, http.StatusNotFound, err.Error()) // Referenced entity missing
	case errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, ledger.ErrInvalidType):
		respondError(c, http.StatusBadRequest, err.Error()) // Rejected before any mutation
	case errors.Is(err, ledger.ErrWalletNotEmpty),
		errors.Is(err, ledger.ErrUserHasWallets):
		respondError(c, http.StatusConflict, err.Error()) // Restrict delete policy
	default:
		// Storage failure: the whole atomic unit was rolled back
		logrus.WithFields(logrus.Fields{
			"path":  c.FullPath(),
			"error": err.Error(),
		}).Error("Ledger operation failed")
		respondError(c, http.StatusInternalServerError, "Internal server error")
	}
}
