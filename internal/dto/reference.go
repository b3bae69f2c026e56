package dto

import (
	"github.com/shopspring/decimal"
)

// CreateTransferLimitRequest defines a new limit for an account. It replaces
// the account's current ACTIVE limit.
type CreateTransferLimitRequest struct {
	AccountNumber       string          `json:"accountNumber" binding:"required"`
	DailyLimit          decimal.Decimal `json:"dailyLimit"`
	PerTransactionLimit decimal.Decimal `json:"perTransactionLimit"`
	StartDate           *string         `json:"startDate" binding:"omitempty,datetime=2006-01-02"`
	EndDate             *string         `json:"endDate" binding:"omitempty,datetime=2006-01-02"`
	Note                string          `json:"note" binding:"max=255"`
}

// CreateFailureReasonRequest adds a failure reason code.
type CreateFailureReasonRequest struct {
	Code        string `json:"code" binding:"required,max=50,uppercase"`
	Description string `json:"description" binding:"required,max=255"`
}

// ListAbnTransfersParams defines query parameters for listing alerts.
type ListAbnTransfersParams struct {
	Limit  int `form:"limit,default=20" binding:"min=1,max=100"`
	Offset int `form:"offset,default=0" binding:"min=0"`
}
