package services

import (
	"context"

	"github.com/dbbank/bank_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// TransferSvcFacade moves money between ledger accounts. Every method runs as
// one unit of work: balances, the transaction record and audit rows commit
// together or not at all.
type TransferSvcFacade interface {
	Deposit(ctx context.Context, actorUserID int64, toAccountNumber string, amount decimal.Decimal, memo string) (*domain.Transaction, error)
	Withdraw(ctx context.Context, actorUserID int64, fromAccountNumber string, amount decimal.Decimal, memo string) (*domain.Transaction, error)
	Transfer(ctx context.Context, actorUserID int64, fromAccountNumber, toAccountNumber string, amount decimal.Decimal, memo string) (*domain.Transaction, error)
}

// AbnormalitySvcFacade screens transfers against limit and fraud heuristics.
type AbnormalitySvcFacade interface {
	// PreCheck must be called inside the transfer's unit of work, after the
	// source account is locked. A breach is returned as *domain.DailyLimitBreach.
	PreCheck(ctx context.Context, fromAccountNumber, toAccountNumber string, amount decimal.Decimal) error

	// RecordLimitBreach stores the DAILY_TOTAL_EXCEEDED alert of a blocked
	// transfer. It must be called outside the rolled back unit of work.
	RecordLimitBreach(ctx context.Context, breach *domain.DailyLimitBreach) error

	// PostCheck runs after commit and only appends alerts.
	PostCheck(ctx context.Context, tx domain.Transaction) ([]domain.AbnTransfer, error)

	ListAlerts(ctx context.Context, accountNumber string, limit, offset int) ([]domain.AbnTransfer, error)
}

// AuditLogger is the audit sink invoked once per affected leg.
type AuditLogger interface {
	RecordLog(ctx context.Context, tx domain.Transaction, accountNumber string, before, after decimal.Decimal, action domain.AuditAction, actorUserID int64) error
}
