package dto

import (
	"time"

	"github.com/dbbank/bank_backend/internal/core/domain"
)

// ListRunsParams defines query parameters for listing the runs of a schedule.
type ListRunsParams struct {
	Result    *domain.RunResult `form:"result" binding:"omitempty,oneof=SUCCESS INSUFFICIENT_FUNDS ERROR SKIPPED"`
	Limit     int               `form:"limit,default=20" binding:"min=1,max=100"`
	NextToken *string           `form:"nextToken"`
}

// RunResponse defines the data returned for a run.
type RunResponse struct {
	RunID             int64            `json:"runID"`
	ScheduleID        int64            `json:"scheduleID"`
	RunTime           string           `json:"runTime"`
	ExecutedAt        time.Time        `json:"executedAt"`
	Result            domain.RunResult `json:"result"`
	Message           string           `json:"message"`
	TransactionID     *int64           `json:"transactionID,omitempty"`
	FailureReasonCode *string          `json:"failureReasonCode,omitempty"`
	RetryNo           int              `json:"retryNo"`
	MaxRetries        int              `json:"maxRetries"`
	NextRetryAt       *time.Time       `json:"nextRetryAt,omitempty"`
}

// ListRunsResponse wraps a page of runs.
type ListRunsResponse struct {
	Runs      []RunResponse `json:"runs"`
	NextToken *string       `json:"nextToken,omitempty"`
}

// SweepRequest lets an operator pin the logical instant of a manual sweep.
type SweepRequest struct {
	Now          *time.Time `json:"now"`
	RetryCeiling *int       `json:"retryCeiling" binding:"omitempty,min=0"`
}

// SweepResponse reports both passes of a manual sweep.
type SweepResponse struct {
	Now   time.Time           `json:"now"`
	Sweep domain.SweepSummary `json:"sweep"`
	Retry domain.SweepSummary `json:"retry"`
}

// ToRunResponse converts a domain run to its DTO
func ToRunResponse(r *domain.ScheduledTransferRun) RunResponse {
	return RunResponse{
		RunID:             r.RunID,
		ScheduleID:        r.ScheduleID,
		RunTime:           r.RunTime.String(),
		ExecutedAt:        r.ExecutedAt,
		Result:            r.Result,
		Message:           r.Message,
		TransactionID:     r.TransactionID,
		FailureReasonCode: r.FailureReasonCode,
		RetryNo:           r.RetryNo,
		MaxRetries:        r.MaxRetries,
		NextRetryAt:       r.NextRetryAt,
	}
}

// ToRunResponses converts runs to DTOs
func ToRunResponses(runs []domain.ScheduledTransferRun) []RunResponse {
	res := make([]RunResponse, len(runs))
	for i := range runs {
		res[i] = ToRunResponse(&runs[i])
	}
	return res
}
