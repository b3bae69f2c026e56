package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/dbbank/bank_backend/internal/core/domain"
	portssvc "github.com/dbbank/bank_backend/internal/core/ports/services"
	"github.com/dbbank/bank_backend/internal/dto"
	"github.com/dbbank/bank_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// SweepTrigger runs one sweep and one retry pass on demand.
// *scheduler.SweepScheduler implements it.
type SweepTrigger interface {
	RunNow(ctx context.Context, now time.Time, retryCeiling int) (sweep, retry domain.SweepSummary, err error)
}

// adminHandler serves system endpoints guarded by the admin API key.
type adminHandler struct {
	trigger       SweepTrigger
	limitService  portssvc.TransferLimitSvcFacade
	reasonService portssvc.FailureReasonSvcFacade
	abnService    portssvc.AbnormalitySvcFacade
}

func registerAdminRoutes(rg *gin.RouterGroup, trigger SweepTrigger, services *portssvc.ServiceContainer) {
	h := &adminHandler{
		trigger:       trigger,
		limitService:  services.TransferLimit,
		reasonService: services.FailureReason,
		abnService:    services.Abnormality,
	}

	rg.POST("/sweep", h.sweep)

	limits := rg.Group("/transfer-limits")
	{
		limits.POST("", h.createLimit)
		limits.GET("/:accountNumber", h.getActiveLimit)
		limits.GET("/:accountNumber/history", h.listLimitHistory)
	}

	reasons := rg.Group("/failure-reasons")
	{
		reasons.GET("", h.listReasons)
		reasons.GET("/:code", h.getReason)
		reasons.POST("", h.createReason)
	}

	rg.GET("/accounts/:accountNumber/alerts", h.listAlerts)
}

// sweep godoc
// @Summary Trigger a sweep
// @Description Runs the due-schedule sweep and then the retry pass at the given instant
// @Tags admin
// @Accept  json
// @Produce  json
// @Param   sweep body dto.SweepRequest false "Logical instant and retry ceiling"
// @Success 200 {object} dto.SweepResponse
// @Failure 401 {object} map[string]string "Invalid API key"
// @Failure 503 {object} map[string]string "Scheduler unavailable"
// @Security ApiKeyAuth
// @Router /admin/sweep [post]
func (h *adminHandler) sweep(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	if h.trigger == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Scheduler unavailable"})
		return
	}

	var req dto.SweepRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			logger.Warn("Failed to bind JSON for Sweep", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
			return
		}
	}

	now := time.Now()
	if req.Now != nil {
		now = *req.Now
	}
	ceiling := -1
	if req.RetryCeiling != nil {
		ceiling = *req.RetryCeiling
	}

	sweep, retry, err := h.trigger.RunNow(c.Request.Context(), now, ceiling)
	if err != nil {
		respondError(c, logger, err, "Failed to run sweep")
		return
	}
	c.JSON(http.StatusOK, dto.SweepResponse{Now: now, Sweep: sweep, Retry: retry})
}

// createLimit godoc
// @Summary Set a transfer limit
// @Description Creates a new ACTIVE limit for an account and deactivates the previous one
// @Tags admin
// @Accept  json
// @Produce  json
// @Param   limit body dto.CreateTransferLimitRequest true "Limit details"
// @Success 201 {object} domain.TransferLimit
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 404 {object} map[string]string "Account not found"
// @Security ApiKeyAuth
// @Router /admin/transfer-limits [post]
func (h *adminHandler) createLimit(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateTransferLimitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateTransferLimit", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	limit, err := h.limitService.CreateLimit(c.Request.Context(), req)
	if err != nil {
		respondError(c, logger.With(slog.String("account", req.AccountNumber)), err, "Failed to create transfer limit")
		return
	}
	logger.Info("Transfer limit created", slog.Int64("limit_id", limit.LimitID), slog.String("account", limit.AccountNumber))
	c.JSON(http.StatusCreated, limit)
}

// getActiveLimit godoc
// @Summary Get the active transfer limit of an account
// @Tags admin
// @Produce  json
// @Param   accountNumber path string true "Account number"
// @Success 200 {object} domain.TransferLimit
// @Failure 404 {object} map[string]string "No active limit"
// @Security ApiKeyAuth
// @Router /admin/transfer-limits/{accountNumber} [get]
func (h *adminHandler) getActiveLimit(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	limit, err := h.limitService.GetActiveLimit(c.Request.Context(), c.Param("accountNumber"))
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve transfer limit")
		return
	}
	c.JSON(http.StatusOK, limit)
}

// listLimitHistory godoc
// @Summary List every transfer limit of an account
// @Tags admin
// @Produce  json
// @Param   accountNumber path string true "Account number"
// @Success 200 {array} domain.TransferLimit
// @Security ApiKeyAuth
// @Router /admin/transfer-limits/{accountNumber}/history [get]
func (h *adminHandler) listLimitHistory(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	limits, err := h.limitService.ListLimitHistory(c.Request.Context(), c.Param("accountNumber"))
	if err != nil {
		respondError(c, logger, err, "Failed to list transfer limits")
		return
	}
	c.JSON(http.StatusOK, limits)
}

// listReasons godoc
// @Summary List failure reasons
// @Tags admin
// @Produce  json
// @Success 200 {array} domain.TransferFailureReason
// @Security ApiKeyAuth
// @Router /admin/failure-reasons [get]
func (h *adminHandler) listReasons(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	reasons, err := h.reasonService.ListReasons(c.Request.Context())
	if err != nil {
		respondError(c, logger, err, "Failed to list failure reasons")
		return
	}
	c.JSON(http.StatusOK, reasons)
}

// getReason godoc
// @Summary Get a failure reason
// @Tags admin
// @Produce  json
// @Param   code path string true "Reason code"
// @Success 200 {object} domain.TransferFailureReason
// @Failure 404 {object} map[string]string "Unknown code"
// @Security ApiKeyAuth
// @Router /admin/failure-reasons/{code} [get]
func (h *adminHandler) getReason(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	reason, err := h.reasonService.GetReason(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve failure reason")
		return
	}
	c.JSON(http.StatusOK, reason)
}

// createReason godoc
// @Summary Add a failure reason
// @Tags admin
// @Accept  json
// @Produce  json
// @Param   reason body dto.CreateFailureReasonRequest true "Reason"
// @Success 201 {object} domain.TransferFailureReason
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 409 {object} map[string]string "Code already exists"
// @Security ApiKeyAuth
// @Router /admin/failure-reasons [post]
func (h *adminHandler) createReason(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateFailureReasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateFailureReason", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	reason, err := h.reasonService.CreateReason(c.Request.Context(), req)
	if err != nil {
		respondError(c, logger, err, "Failed to create failure reason")
		return
	}
	c.JSON(http.StatusCreated, reason)
}

// listAlerts godoc
// @Summary List abnormality alerts of an account
// @Tags admin
// @Produce  json
// @Param   accountNumber path string true "Account number"
// @Param   limit query int false "Limit number of results" default(20)
// @Param   offset query int false "Offset for pagination" default(0)
// @Success 200 {array} domain.AbnTransfer
// @Security ApiKeyAuth
// @Router /admin/accounts/{accountNumber}/alerts [get]
func (h *adminHandler) listAlerts(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListAbnTransfersParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query params for ListAlerts", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	alerts, err := h.abnService.ListAlerts(c.Request.Context(), c.Param("accountNumber"), params.Limit, params.Offset)
	if err != nil {
		respondError(c, logger, err, "Failed to list alerts")
		return
	}
	if alerts == nil {
		alerts = []domain.AbnTransfer{}
	}
	c.JSON(http.StatusOK, alerts)
}
