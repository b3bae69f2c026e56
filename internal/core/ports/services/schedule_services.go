package services

import (
	"context"
	"time"

	"github.com/dbbank/bank_backend/internal/core/domain"
	"github.com/dbbank/bank_backend/internal/dto"
)

// ScheduleReaderSvc defines read operations for schedules
type ScheduleReaderSvc interface {
	GetSchedule(ctx context.Context, userID, scheduleID int64) (*domain.ScheduledTransaction, error)
	ListSchedules(ctx context.Context, userID int64, params dto.ListSchedulesParams) ([]domain.ScheduledTransaction, error)
	ListSchedulesByAccount(ctx context.Context, userID int64, accountNumber string) ([]domain.ScheduledTransaction, error)
}

// ScheduleLifecycleSvc defines the state transitions of a schedule
type ScheduleLifecycleSvc interface {
	CreateSchedule(ctx context.Context, userID int64, req dto.CreateScheduleRequest) (*domain.ScheduledTransaction, error)
	UpdateSchedule(ctx context.Context, userID, scheduleID int64, req dto.UpdateScheduleRequest) (*domain.ScheduledTransaction, error)
	PauseSchedule(ctx context.Context, userID, scheduleID int64) (*domain.ScheduledTransaction, error)
	ResumeSchedule(ctx context.Context, userID, scheduleID int64) (*domain.ScheduledTransaction, error)
	CancelSchedule(ctx context.Context, userID, scheduleID int64) (*domain.ScheduledTransaction, error)
	RunNow(ctx context.Context, userID, scheduleID int64) (*domain.ScheduledTransferRun, error)
}

// ScheduleSvcFacade combines all schedule-related service interfaces
type ScheduleSvcFacade interface {
	ScheduleReaderSvc
	ScheduleLifecycleSvc
}

// ScheduleRunnerSvc executes schedules. It is driven by the background
// scheduler and by manual triggers; it takes no caller identity.
type ScheduleRunnerSvc interface {
	RunDueSchedules(ctx context.Context, now time.Time) (domain.SweepSummary, error)
	RetryFailedRuns(ctx context.Context, now time.Time, retryCeiling int) (domain.SweepSummary, error)

	// ExecuteSchedule claims one ACTIVE schedule and runs it at now.
	ExecuteSchedule(ctx context.Context, schedule domain.ScheduledTransaction, now time.Time) (*domain.ScheduledTransferRun, error)
}

// RunLogSvcFacade records and queries run history.
type RunLogSvcFacade interface {
	RecordRun(ctx context.Context, run *domain.ScheduledTransferRun) error
	ListRuns(ctx context.Context, userID, scheduleID int64, params dto.ListRunsParams) (*dto.ListRunsResponse, error)
	ListFailures(ctx context.Context, userID, scheduleID int64) ([]domain.ScheduledTransferRun, error)
}
