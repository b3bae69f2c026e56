package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ScheduledTransaction is a row of the scheduled_transactions table.
// RunTime is selected as 'HH24:MI' text.
type ScheduledTransaction struct {
	ScheduleID        int64           `db:"schedule_id"`
	UserID            int64           `db:"user_id"`
	FromAccountNumber string          `db:"from_account_number"`
	ToAccountNumber   string          `db:"to_account_number"`
	Amount            decimal.Decimal `db:"amount"`
	Frequency         string          `db:"frequency"`
	RecurrenceRule    *string         `db:"recurrence_rule"`
	StartDate         time.Time       `db:"start_date"`
	EndDate           *time.Time      `db:"end_date"`
	RunTime           string          `db:"run_time"`
	NextRunAt         *time.Time      `db:"next_run_at"`
	LastRunAt         *time.Time      `db:"last_run_at"`
	Status            string          `db:"status"`
	Memo              string          `db:"memo"`
	AuditFields
}

// ScheduledTransferRun is a row of the scheduled_transfer_runs table.
type ScheduledTransferRun struct {
	RunID             int64      `db:"run_id"`
	ScheduleID        int64      `db:"schedule_id"`
	RunTime           string     `db:"run_time"`
	ExecutedAt        time.Time  `db:"executed_at"`
	Result            string     `db:"result"`
	Message           string     `db:"message"`
	TransactionID     *int64     `db:"transaction_id"`
	FailureReasonCode *string    `db:"failure_reason_code"`
	RetryNo           int        `db:"retry_no"`
	MaxRetries        int        `db:"max_retries"`
	NextRetryAt       *time.Time `db:"next_retry_at"`
}
