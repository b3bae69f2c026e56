package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/dbbank/bank_backend/internal/core/ports/services"
	"github.com/dbbank/bank_backend/internal/dto"
	"github.com/dbbank/bank_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// transferHandler handles HTTP requests that move money.
type transferHandler struct {
	transferService portssvc.TransferSvcFacade
}

func newTransferHandler(ts portssvc.TransferSvcFacade) *transferHandler {
	return &transferHandler{transferService: ts}
}

// registerTransferRoutes registers the money movement routes.
func registerTransferRoutes(rg *gin.RouterGroup, transferService portssvc.TransferSvcFacade) {
	h := newTransferHandler(transferService)

	transfers := rg.Group("/transfers")
	{
		transfers.POST("/deposit", h.deposit)
		transfers.POST("/withdraw", h.withdraw)
		transfers.POST("", h.transfer)
	}
}

// deposit godoc
// @Summary Deposit into an account
// @Description Moves money from the external source into a customer account
// @Tags transfers
// @Accept  json
// @Produce  json
// @Param   deposit body dto.DepositRequest true "Deposit details"
// @Success 201 {object} dto.TransactionResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 423 {object} map[string]string "Account locked"
// @Security BearerAuth
// @Router /transfers/deposit [post]
func (h *transferHandler) deposit(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for Deposit", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := currentUser(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.String("to_account", req.ToAccountNumber))
	tx, err := h.transferService.Deposit(c.Request.Context(), userID, req.ToAccountNumber, req.Amount, req.Memo)
	if err != nil {
		respondError(c, logger, err, "Failed to deposit")
		return
	}

	logger.Info("Deposit completed", slog.Int64("transaction_id", tx.TransactionID))
	c.JSON(http.StatusCreated, dto.ToTransactionResponse(tx))
}

// withdraw godoc
// @Summary Withdraw from an account
// @Description Moves money from an owned account to the external sink
// @Tags transfers
// @Accept  json
// @Produce  json
// @Param   withdraw body dto.WithdrawRequest true "Withdrawal details"
// @Success 201 {object} dto.TransactionResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 403 {object} map[string]string "Account not owned by the caller"
// @Failure 409 {object} map[string]string "Insufficient balance"
// @Security BearerAuth
// @Router /transfers/withdraw [post]
func (h *transferHandler) withdraw(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for Withdraw", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := currentUser(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.String("from_account", req.FromAccountNumber))
	tx, err := h.transferService.Withdraw(c.Request.Context(), userID, req.FromAccountNumber, req.Amount, req.Memo)
	if err != nil {
		respondError(c, logger, err, "Failed to withdraw")
		return
	}

	logger.Info("Withdrawal completed", slog.Int64("transaction_id", tx.TransactionID))
	c.JSON(http.StatusCreated, dto.ToTransactionResponse(tx))
}

// transfer godoc
// @Summary Transfer between accounts
// @Description Moves money from an owned account to another customer account. Blocked
// @Description transfers over the daily limit answer 409 with reason DAILY_LIMIT_EXCEEDED.
// @Tags transfers
// @Accept  json
// @Produce  json
// @Param   transfer body dto.TransferRequest true "Transfer details"
// @Success 201 {object} dto.TransactionResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 403 {object} map[string]string "Account not owned by the caller"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 409 {object} map[string]string "Insufficient balance or daily limit exceeded"
// @Failure 423 {object} map[string]string "Account locked"
// @Security BearerAuth
// @Router /transfers [post]
func (h *transferHandler) transfer(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for Transfer", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := currentUser(c, logger)
	if !ok {
		return
	}

	logger = logger.With(slog.String("from_account", req.FromAccountNumber), slog.String("to_account", req.ToAccountNumber))
	tx, err := h.transferService.Transfer(c.Request.Context(), userID, req.FromAccountNumber, req.ToAccountNumber, req.Amount, req.Memo)
	if err != nil {
		respondError(c, logger, err, "Failed to transfer")
		return
	}

	logger.Info("Transfer completed", slog.Int64("transaction_id", tx.TransactionID))
	c.JSON(http.StatusCreated, dto.ToTransactionResponse(tx))
}
