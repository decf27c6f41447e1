package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"

	apperrors "expensetrack/internal/errors"
)

// ImportKeyHeader carries the shared secret of unattended CSV imports.
const ImportKeyHeader = "X-API-Key"

// ImportKeyMiddleware guards the unattended import endpoint with a shared
// API key. An empty configured key disables the endpoint.
func ImportKeyMiddleware(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey == "" {
			abortWithError(c, apperrors.ErrImportDisabled)
			return
		}
		key := c.GetHeader(ImportKeyHeader)
		if subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) != 1 {
			abortWithError(c, apperrors.ErrInvalidAPIKey)
			return
		}
		c.Next()
	}
}
