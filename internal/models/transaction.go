package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a row of the transactions table.
type Transaction struct {
	TransactionID     int64           `db:"transaction_id"`
	FromAccountNumber string          `db:"from_account_number"`
	ToAccountNumber   string          `db:"to_account_number"`
	Type              string          `db:"transaction_type"`
	Status            string          `db:"status"`
	Amount            decimal.Decimal `db:"amount"`
	Memo              string          `db:"memo"`
	CreatedAt         time.Time       `db:"created_at"`
}

// AuditLog is a row of the audit_logs table.
type AuditLog struct {
	AuditLogID    int64           `db:"audit_log_id"`
	TransactionID int64           `db:"transaction_id"`
	AccountNumber string          `db:"account_number"`
	BeforeBalance decimal.Decimal `db:"before_balance"`
	AfterBalance  decimal.Decimal `db:"after_balance"`
	Action        string          `db:"action"`
	ActorUserID   int64           `db:"actor_user_id"`
	CreatedAt     time.Time       `db:"created_at"`
}
