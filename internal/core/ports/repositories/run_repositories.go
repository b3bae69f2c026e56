package repositories

import (
	"context"
	"time"

	"github.com/dbbank/bank_backend/internal/core/domain"
)

// RunReader defines read operations for the run log
type RunReader interface {
	// FindRetryTargets returns runs that are the latest run of their schedule,
	// have next_retry_at <= now, ordered by next_retry_at.
	FindRetryTargets(ctx context.Context, now time.Time, limit int) ([]domain.ScheduledTransferRun, error)

	// FindLatestRun returns the most recent run of a schedule.
	FindLatestRun(ctx context.Context, scheduleID int64) (*domain.ScheduledTransferRun, error)

	// ListRunsBySchedule lists runs newest first, optionally filtered by result.
	// A non-nil beforeID returns only runs older than that id.
	ListRunsBySchedule(ctx context.Context, scheduleID int64, result *domain.RunResult, beforeID *int64, limit int) ([]domain.ScheduledTransferRun, error)

	// ListFailedRuns lists runs whose result is not SUCCESS, newest first.
	ListFailedRuns(ctx context.Context, scheduleID int64) ([]domain.ScheduledTransferRun, error)
}

// RunWriter appends run records. Runs are never updated.
type RunWriter interface {
	SaveRun(ctx context.Context, run *domain.ScheduledTransferRun) error
}

type RunRepositoryFacade interface {
	RunReader
	RunWriter
}
