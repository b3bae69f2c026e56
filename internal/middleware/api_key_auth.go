package middleware

import (
	"net/http"

	"github.com/dbbank/bank_backend/internal/utils"
	"github.com/gin-gonic/gin"
)

// AdminAPIKeyAuth guards system endpoints (sweep triggers, reference data) with
// an x-api-key header checked against a bcrypt hash from configuration. An
// empty hash disables the endpoints.
func AdminAPIKeyAuth(apiKeyHash string) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := GetLoggerFromCtx(c.Request.Context())

		if apiKeyHash == "" {
			logger.Warn("Admin endpoint called but no admin API key is configured")
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin API is disabled"})
			return
		}

		key := c.GetHeader("x-api-key")
		if key == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "x-api-key header required"})
			return
		}

		if !utils.CheckPasswordHash(key, apiKeyHash) {
			logger.Warn("Invalid admin API key")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid API key"})
			return
		}

		c.Set("authMethod", "api_key")
		c.Next()
	}
}
