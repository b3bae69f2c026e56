package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dbbank/bank_backend/internal/apperrors"
	"github.com/dbbank/bank_backend/internal/core/domain"
	portsrepo "github.com/dbbank/bank_backend/internal/core/ports/repositories"
	"github.com/dbbank/bank_backend/internal/models"
	"github.com/dbbank/bank_backend/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxScheduleRepository struct {
	BaseRepository
}

func newPgxScheduleRepository(pool *pgxpool.Pool) portsrepo.ScheduleRepositoryFacade {
	return &PgxScheduleRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.ScheduleRepositoryFacade = (*PgxScheduleRepository)(nil)

const scheduleColumns = `
	s.schedule_id, s.user_id, s.from_account_number, s.to_account_number, s.amount,
	s.frequency, s.recurrence_rule, s.start_date, s.end_date, to_char(s.run_time, 'HH24:MI') AS run_time,
	s.next_run_at, s.last_run_at, s.status, s.memo, s.created_at, s.updated_at`

func nullableRule(rule string) *string {
	if rule == "" {
		return nil
	}
	return &rule
}

func (r *PgxScheduleRepository) collectSchedules(ctx context.Context, query string, args ...any) ([]domain.ScheduledTransaction, error) {
	rows, err := r.q(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, mapPgError("failed to query schedules", err)
	}
	ms, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.ScheduledTransaction])
	if err != nil {
		return nil, mapPgError("failed to scan schedules", err)
	}
	return mapping.ToDomainScheduleSlice(ms)
}

// SaveSchedule inserts the schedule and sets its ScheduleID. The partial
// unique index on live pairs reports a duplicate as KindConflict.
func (r *PgxScheduleRepository) SaveSchedule(ctx context.Context, s *domain.ScheduledTransaction) error {
	query := `
		INSERT INTO scheduled_transactions (
			user_id, from_account_number, to_account_number, amount, frequency, recurrence_rule,
			start_date, end_date, run_time, next_run_at, last_run_at, status, memo, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::time, $10, $11, $12, $13, $14, $15)
		RETURNING schedule_id;
	`
	err := r.q(ctx).QueryRow(ctx, query,
		s.UserID, s.FromAccountNumber, s.ToAccountNumber, s.Amount, string(s.Frequency), nullableRule(s.RecurrenceRule),
		s.StartDate, s.EndDate, s.RunTime.String(), s.NextRunAt, s.LastRunAt, string(s.Status), s.Memo,
		s.CreatedAt, s.UpdatedAt,
	).Scan(&s.ScheduleID)
	if err != nil {
		return mapPgError(fmt.Sprintf("failed to save schedule %s -> %s", s.FromAccountNumber, s.ToAccountNumber), err)
	}
	return nil
}

// UpdateSchedule overwrites the mutable columns if the stored status still equals expected.
func (r *PgxScheduleRepository) UpdateSchedule(ctx context.Context, s domain.ScheduledTransaction, expected domain.ScheduleStatus) error {
	query := `
		UPDATE scheduled_transactions SET
			to_account_number = $2, amount = $3, frequency = $4, recurrence_rule = $5,
			start_date = $6, end_date = $7, run_time = $8::time, next_run_at = $9, last_run_at = $10,
			status = $11, memo = $12, updated_at = $13
		WHERE schedule_id = $1 AND status = $14;
	`
	tag, err := r.q(ctx).Exec(ctx, query,
		s.ScheduleID, s.ToAccountNumber, s.Amount, string(s.Frequency), nullableRule(s.RecurrenceRule),
		s.StartDate, s.EndDate, s.RunTime.String(), s.NextRunAt, s.LastRunAt,
		string(s.Status), s.Memo, s.UpdatedAt, string(expected),
	)
	if err != nil {
		return mapPgError(fmt.Sprintf("failed to update schedule %d", s.ScheduleID), err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewScheduleError(apperrors.KindConflict, fmt.Sprintf("schedule %d changed state concurrently", s.ScheduleID))
	}
	return nil
}

func (r *PgxScheduleRepository) FindScheduleByID(ctx context.Context, scheduleID int64) (*domain.ScheduledTransaction, error) {
	rows, err := r.q(ctx).Query(ctx, `SELECT `+scheduleColumns+` FROM scheduled_transactions s WHERE s.schedule_id = $1`, scheduleID)
	if err != nil {
		return nil, mapPgError("failed to find schedule", err)
	}
	m, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[models.ScheduledTransaction])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewScheduleError(apperrors.KindNotFound, fmt.Sprintf("schedule %d not found", scheduleID))
		}
		return nil, mapPgError("failed to find schedule", err)
	}
	s, err := mapping.ToDomainSchedule(m)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *PgxScheduleRepository) ExistsLiveSchedule(ctx context.Context, from, to string, excludeID int64) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM scheduled_transactions
			WHERE from_account_number = $1 AND to_account_number = $2
			  AND status IN ('ACTIVE', 'RUNNING') AND schedule_id <> $3
		);
	`
	var exists bool
	if err := r.q(ctx).QueryRow(ctx, query, from, to, excludeID).Scan(&exists); err != nil {
		return false, mapPgError("failed to check for live schedules", err)
	}
	return exists, nil
}

func (r *PgxScheduleRepository) ListSchedulesByUser(ctx context.Context, userID int64, status *domain.ScheduleStatus, limit, offset int) ([]domain.ScheduledTransaction, error) {
	var statusArg *string
	if status != nil {
		v := string(*status)
		statusArg = &v
	}
	query := `SELECT ` + scheduleColumns + `
		FROM scheduled_transactions s
		WHERE s.user_id = $1 AND ($2::text IS NULL OR s.status = $2)
		ORDER BY s.schedule_id
		LIMIT $3 OFFSET $4;`
	return r.collectSchedules(ctx, query, userID, statusArg, limit, offset)
}

func (r *PgxScheduleRepository) ListSchedulesByFromAccount(ctx context.Context, accountNumber string) ([]domain.ScheduledTransaction, error) {
	query := `SELECT ` + scheduleColumns + `
		FROM scheduled_transactions s
		WHERE s.from_account_number = $1
		ORDER BY s.schedule_id;`
	return r.collectSchedules(ctx, query, accountNumber)
}

// FindDueSchedules leaves out schedules whose latest run still has a retry pending;
// those belong to the retry pass.
func (r *PgxScheduleRepository) FindDueSchedules(ctx context.Context, now time.Time, limit int) ([]domain.ScheduledTransaction, error) {
	query := `SELECT ` + scheduleColumns + `
		FROM scheduled_transactions s
		WHERE s.status = 'ACTIVE'
		  AND s.next_run_at <= $1
		  AND NOT EXISTS (
			SELECT 1 FROM scheduled_transfer_runs r
			WHERE r.run_id = (SELECT max(run_id) FROM scheduled_transfer_runs WHERE schedule_id = s.schedule_id)
			  AND r.next_retry_at IS NOT NULL
		  )
		ORDER BY s.next_run_at, s.schedule_id
		LIMIT $2;`
	return r.collectSchedules(ctx, query, now, limit)
}

func (r *PgxScheduleRepository) ClaimSchedule(ctx context.Context, scheduleID int64, now time.Time) (bool, error) {
	tag, err := r.q(ctx).Exec(ctx,
		`UPDATE scheduled_transactions SET status = 'RUNNING', updated_at = $2 WHERE schedule_id = $1 AND status = 'ACTIVE'`,
		scheduleID, now)
	if err != nil {
		return false, mapPgError(fmt.Sprintf("failed to claim schedule %d", scheduleID), err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *PgxScheduleRepository) ReleaseSchedule(ctx context.Context, scheduleID int64, status domain.ScheduleStatus, lastRunAt, nextRunAt *time.Time, now time.Time) (bool, error) {
	query := `
		UPDATE scheduled_transactions
		SET status = $2, last_run_at = $3, next_run_at = $4, updated_at = $5
		WHERE schedule_id = $1 AND status = 'RUNNING';
	`
	tag, err := r.q(ctx).Exec(ctx, query, scheduleID, string(status), lastRunAt, nextRunAt, now)
	if err != nil {
		return false, mapPgError(fmt.Sprintf("failed to release schedule %d", scheduleID), err)
	}
	return tag.RowsAffected() == 1, nil
}
