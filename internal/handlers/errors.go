package handlers

import (
	"log/slog"
	"net/http"

	"github.com/dbbank/bank_backend/internal/apperrors"
	"github.com/dbbank/bank_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// respondError writes err with the status of its kind. Money failures carry a
// machine readable reason so clients can tell them apart from plain conflicts.
// Internal errors are logged and reported with fallback only.
func respondError(c *gin.Context, logger *slog.Logger, err error, fallback string) {
	kind := apperrors.KindOf(err)
	status := kind.HTTPStatus()

	if status >= http.StatusInternalServerError {
		logger.Error(fallback, slog.String("error", err.Error()))
		c.JSON(status, gin.H{"error": fallback})
		return
	}

	logger.Warn(fallback, slog.String("error", err.Error()), slog.String("kind", kind.String()))
	body := gin.H{"error": apperrors.MessageOf(err)}
	switch kind {
	case apperrors.KindInsufficientBalance, apperrors.KindLimitExceeded, apperrors.KindAccountLocked:
		body["reason"] = kind.String()
	}
	c.JSON(status, body)
}

// currentUser resolves the acting user or aborts with 401.
func currentUser(c *gin.Context, logger *slog.Logger) (int64, bool) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return 0, false
	}
	return userID, true
}
