package domain

import (
	"time"
)

// RunResult is the outcome of a single execution attempt.
type RunResult string

const (
	RunSuccess           RunResult = "SUCCESS"
	RunInsufficientFunds RunResult = "INSUFFICIENT_FUNDS"
	RunError             RunResult = "ERROR"
	RunSkipped           RunResult = "SKIPPED"
)

// IsValid reports whether r is a known result.
func (r RunResult) IsValid() bool {
	switch r {
	case RunSuccess, RunInsufficientFunds, RunError, RunSkipped:
		return true
	}
	return false
}

// ScheduledTransferRun is one append-only execution attempt of a schedule.
type ScheduledTransferRun struct {
	RunID             int64      `json:"runID"`
	ScheduleID        int64      `json:"scheduleID"`
	RunTime           RunTime    `json:"runTime"`
	ExecutedAt        time.Time  `json:"executedAt"`
	Result            RunResult  `json:"result"`
	Message           string     `json:"message"`
	TransactionID     *int64     `json:"transactionID,omitempty"`
	FailureReasonCode *string    `json:"failureReasonCode,omitempty"`
	RetryNo           int        `json:"retryNo"`
	MaxRetries        int        `json:"maxRetries"`
	NextRetryAt       *time.Time `json:"nextRetryAt,omitempty"`
}

// IsRetryOpen reports whether the run still expects another attempt.
func (r ScheduledTransferRun) IsRetryOpen() bool {
	return r.NextRetryAt != nil
}

// SweepSummary counts what one sweep or retry pass did.
type SweepSummary struct {
	Selected  int `json:"selected"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
}
