package dto

import (
	"time"

	"github.com/dbbank/bank_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// DepositRequest moves money from the external sink into an account.
type DepositRequest struct {
	ToAccountNumber string          `json:"toAccountNumber" binding:"required"`
	Amount          decimal.Decimal `json:"amount"`
	Memo            string          `json:"memo" binding:"max=255"`
}

// WithdrawRequest moves money from an owned account to the external sink.
type WithdrawRequest struct {
	FromAccountNumber string          `json:"fromAccountNumber" binding:"required"`
	Amount            decimal.Decimal `json:"amount"`
	Memo              string          `json:"memo" binding:"max=255"`
}

// TransferRequest moves money between two customer accounts.
type TransferRequest struct {
	FromAccountNumber string          `json:"fromAccountNumber" binding:"required"`
	ToAccountNumber   string          `json:"toAccountNumber" binding:"required,nefield=FromAccountNumber"`
	Amount            decimal.Decimal `json:"amount"`
	Memo              string          `json:"memo" binding:"max=255"`
}

// TransactionResponse defines the data returned for a transaction.
type TransactionResponse struct {
	TransactionID     int64                    `json:"transactionID"`
	FromAccountNumber string                   `json:"fromAccountNumber"`
	ToAccountNumber   string                   `json:"toAccountNumber"`
	Type              domain.TransactionType   `json:"type"`
	Status            domain.TransactionStatus `json:"status"`
	Amount            decimal.Decimal          `json:"amount"`
	Memo              string                   `json:"memo"`
	CreatedAt         time.Time                `json:"createdAt"`
}

// ToTransactionResponse converts a domain.Transaction to its DTO
func ToTransactionResponse(t *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		TransactionID:     t.TransactionID,
		FromAccountNumber: t.FromAccountNumber,
		ToAccountNumber:   t.ToAccountNumber,
		Type:              t.Type,
		Status:            t.Status,
		Amount:            t.Amount,
		Memo:              t.Memo,
		CreatedAt:         t.CreatedAt,
	}
}
