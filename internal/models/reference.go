package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransferLimit is a row of the transfer_limits table.
type TransferLimit struct {
	LimitID             int64           `db:"limit_id"`
	AccountNumber       string          `db:"account_number"`
	DailyLimit          decimal.Decimal `db:"daily_limit"`
	PerTransactionLimit decimal.Decimal `db:"per_transaction_limit"`
	StartDate           time.Time       `db:"start_date"`
	EndDate             *time.Time      `db:"end_date"`
	Status              string          `db:"status"`
	Note                string          `db:"note"`
	AuditFields
}

// AbnTransfer is a row of the abn_transfers table.
type AbnTransfer struct {
	AbnTransferID int64     `db:"abn_transfer_id"`
	TransactionID *int64    `db:"transaction_id"`
	AccountNumber string    `db:"account_number"`
	RuleCode      string    `db:"rule_code"`
	Detail        string    `db:"detail"`
	CreatedAt     time.Time `db:"created_at"`
}

// TransferFailureReason is a row of the transfer_failure_reasons table.
type TransferFailureReason struct {
	Code        string `db:"code"`
	Description string `db:"description"`
}
