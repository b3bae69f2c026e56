package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AuditAction names the balance change recorded for one leg of a transaction.
type AuditAction string

const (
	AuditDeposit        AuditAction = "DEPOSIT"
	AuditWithdraw       AuditAction = "WITHDRAW"
	AuditTransferDebit  AuditAction = "TRANSFER_DEBIT"
	AuditTransferCredit AuditAction = "TRANSFER_CREDIT"
)

// AuditLog is a before/after balance record for one affected account.
type AuditLog struct {
	AuditLogID    int64           `json:"auditLogID"`
	TransactionID int64           `json:"transactionID"`
	AccountNumber string          `json:"accountNumber"`
	BeforeBalance decimal.Decimal `json:"beforeBalance"`
	AfterBalance  decimal.Decimal `json:"afterBalance"`
	Action        AuditAction     `json:"action"`
	ActorUserID   int64           `json:"actorUserID"`
	CreatedAt     time.Time       `json:"createdAt"`
}
