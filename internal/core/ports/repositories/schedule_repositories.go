package repositories

import (
	"context"
	"time"

	"github.com/dbbank/bank_backend/internal/core/domain"
)

// ScheduleReader defines read operations for schedules
type ScheduleReader interface {
	FindScheduleByID(ctx context.Context, scheduleID int64) (*domain.ScheduledTransaction, error)

	// ExistsLiveSchedule reports whether an ACTIVE or RUNNING schedule exists for
	// the pair, ignoring excludeID.
	ExistsLiveSchedule(ctx context.Context, from, to string, excludeID int64) (bool, error)

	// ListSchedulesByUser lists the user's schedules, optionally filtered by status.
	ListSchedulesByUser(ctx context.Context, userID int64, status *domain.ScheduleStatus, limit, offset int) ([]domain.ScheduledTransaction, error)

	ListSchedulesByFromAccount(ctx context.Context, accountNumber string) ([]domain.ScheduledTransaction, error)

	// FindDueSchedules returns up to limit ACTIVE schedules with next_run_at <= now,
	// oldest first, leaving out schedules whose latest run awaits a retry.
	FindDueSchedules(ctx context.Context, now time.Time, limit int) ([]domain.ScheduledTransaction, error)
}

// ScheduleWriter defines write operations for schedules
type ScheduleWriter interface {
	// SaveSchedule inserts the schedule and sets its ScheduleID.
	SaveSchedule(ctx context.Context, schedule *domain.ScheduledTransaction) error

	// UpdateSchedule overwrites the schedule if its stored status still equals
	// expected. A mismatch returns a Conflict error.
	UpdateSchedule(ctx context.Context, schedule domain.ScheduledTransaction, expected domain.ScheduleStatus) error

	// ClaimSchedule moves the schedule from ACTIVE to RUNNING. It returns false
	// when the schedule was not ACTIVE.
	ClaimSchedule(ctx context.Context, scheduleID int64, now time.Time) (bool, error)

	// ReleaseSchedule moves a RUNNING schedule to status with the given run
	// timestamps. It returns false when the schedule is no longer RUNNING.
	ReleaseSchedule(ctx context.Context, scheduleID int64, status domain.ScheduleStatus, lastRunAt, nextRunAt *time.Time, now time.Time) (bool, error)
}

type ScheduleRepositoryFacade interface {
	ScheduleReader
	ScheduleWriter
}
