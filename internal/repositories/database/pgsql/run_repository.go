package pgsql

import (
	"context"
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

type PgxRunRepository struct {
	BaseRepository
}

func newPgxRunRepository(pool *pgxpool.Pool) portsrepo.RunRepositoryFacade {
	return &PgxRunRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.RunRepositoryFacade = (*PgxRunRepository)(nil)

const runColumns = `
	r.run_id, r.schedule_id, to_char(r.run_time, 'HH24:MI') AS run_time, r.executed_at, r.result, r.message,
	r.transaction_id, r.failure_reason_code, r.retry_no, r.max_retries, r.next_retry_at`

func (r *PgxRunRepository) collectRuns(ctx context.Context, query string, args ...any) ([]domain.ScheduledTransferRun, error) {
	rows, err := r.q(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, mapPgError("failed to query runs", err)
	}
	ms, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.ScheduledTransferRun])
	if err != nil {
		return nil, mapPgError("failed to scan runs", err)
	}
	return mapping.ToDomainRunSlice(ms)
}

func (r *PgxRunRepository) SaveRun(ctx context.Context, run *domain.ScheduledTransferRun) error {
	query := `
		INSERT INTO scheduled_transfer_runs (
			schedule_id, run_time, executed_at, result, message, transaction_id,
			failure_reason_code, retry_no, max_retries, next_retry_at)
		VALUES ($1, $2::time, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING run_id;
	`
	err := r.q(ctx).QueryRow(ctx, query,
		run.ScheduleID, run.RunTime.String(), run.ExecutedAt, string(run.Result), run.Message, run.TransactionID,
		run.FailureReasonCode, run.RetryNo, run.MaxRetries, run.NextRetryAt,
	).Scan(&run.RunID)
	if err != nil {
		return mapPgError(fmt.Sprintf("failed to save run for schedule %d", run.ScheduleID), err)
	}
	return nil
}

func (r *PgxRunRepository) FindLatestRun(ctx context.Context, scheduleID int64) (*domain.ScheduledTransferRun, error) {
	runs, err := r.collectRuns(ctx,
		`SELECT `+runColumns+` FROM scheduled_transfer_runs r WHERE r.schedule_id = $1 ORDER BY r.run_id DESC LIMIT 1`,
		scheduleID)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, fmt.Errorf("%w: no runs for schedule %d", apperrors.ErrNotFound, scheduleID)
	}
	return &runs[0], nil
}

// FindRetryTargets only considers the latest run of each schedule, so a
// chain closed by a later run is never picked up again.
func (r *PgxRunRepository) FindRetryTargets(ctx context.Context, now time.Time, limit int) ([]domain.ScheduledTransferRun, error) {
	query := `SELECT ` + runColumns + `
		FROM scheduled_transfer_runs r
		WHERE r.next_retry_at IS NOT NULL
		  AND r.next_retry_at <= $1
		  AND r.run_id = (SELECT max(run_id) FROM scheduled_transfer_runs WHERE schedule_id = r.schedule_id)
		ORDER BY r.next_retry_at, r.run_id
		LIMIT $2;`
	return r.collectRuns(ctx, query, now, limit)
}

func (r *PgxRunRepository) ListRunsBySchedule(ctx context.Context, scheduleID int64, result *domain.RunResult, beforeID *int64, limit int) ([]domain.ScheduledTransferRun, error) {
	var resultArg *string
	if result != nil {
		v := string(*result)
		resultArg = &v
	}
	query := `SELECT ` + runColumns + `
		FROM scheduled_transfer_runs r
		WHERE r.schedule_id = $1
		  AND ($2::text IS NULL OR r.result = $2)
		  AND ($3::bigint IS NULL OR r.run_id < $3)
		ORDER BY r.run_id DESC
		LIMIT $4;`
	return r.collectRuns(ctx, query, scheduleID, resultArg, beforeID, limit)
}

func (r *PgxRunRepository) ListFailedRuns(ctx context.Context, scheduleID int64) ([]domain.ScheduledTransferRun, error) {
	query := `SELECT ` + runColumns + `
		FROM scheduled_transfer_runs r
		WHERE r.schedule_id = $1 AND r.result <> 'SUCCESS'
		ORDER BY r.run_id DESC;`
	return r.collectRuns(ctx, query, scheduleID)
}
