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

// --- transfer limits ---

type PgxTransferLimitRepository struct {
	BaseRepository
}

func newPgxTransferLimitRepository(pool *pgxpool.Pool) portsrepo.TransferLimitRepositoryFacade {
	return &PgxTransferLimitRepository{BaseRepository{Pool: pool}}
}

const limitColumns = `limit_id, account_number, daily_limit, per_transaction_limit, start_date, end_date, status, note, created_at, updated_at`

func (r *PgxTransferLimitRepository) SaveTransferLimit(ctx context.Context, l *domain.TransferLimit) error {
	query := `
		INSERT INTO transfer_limits (account_number, daily_limit, per_transaction_limit, start_date, end_date, status, note, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING limit_id;
	`
	err := r.q(ctx).QueryRow(ctx, query,
		l.AccountNumber, l.DailyLimit, l.PerTransactionLimit, l.StartDate, l.EndDate, string(l.Status), l.Note, l.CreatedAt, l.UpdatedAt,
	).Scan(&l.LimitID)
	if err != nil {
		return mapPgError(fmt.Sprintf("failed to save transfer limit for %s", l.AccountNumber), err)
	}
	return nil
}

func (r *PgxTransferLimitRepository) DeactivateTransferLimits(ctx context.Context, accountNumber string, now time.Time) error {
	_, err := r.q(ctx).Exec(ctx,
		`UPDATE transfer_limits SET status = 'INACTIVE', updated_at = $2 WHERE account_number = $1 AND status = 'ACTIVE'`,
		accountNumber, now)
	if err != nil {
		return mapPgError("failed to deactivate transfer limits", err)
	}
	return nil
}

func (r *PgxTransferLimitRepository) FindActiveTransferLimit(ctx context.Context, accountNumber string, now time.Time) (*domain.TransferLimit, error) {
	query := `SELECT ` + limitColumns + `
		FROM transfer_limits
		WHERE account_number = $1 AND status = 'ACTIVE'
		  AND start_date <= $2 AND (end_date IS NULL OR end_date >= $2)
		ORDER BY limit_id DESC
		LIMIT 1;`
	rows, err := r.q(ctx).Query(ctx, query, accountNumber, now)
	if err != nil {
		return nil, mapPgError("failed to find transfer limit", err)
	}
	m, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[models.TransferLimit])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: no active transfer limit for %s", apperrors.ErrNotFound, accountNumber)
		}
		return nil, mapPgError("failed to find transfer limit", err)
	}
	l := mapping.ToDomainTransferLimit(m)
	return &l, nil
}

func (r *PgxTransferLimitRepository) ListTransferLimits(ctx context.Context, accountNumber string) ([]domain.TransferLimit, error) {
	rows, err := r.q(ctx).Query(ctx,
		`SELECT `+limitColumns+` FROM transfer_limits WHERE account_number = $1 ORDER BY limit_id DESC`, accountNumber)
	if err != nil {
		return nil, mapPgError("failed to list transfer limits", err)
	}
	ms, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.TransferLimit])
	if err != nil {
		return nil, mapPgError("failed to scan transfer limits", err)
	}
	out := make([]domain.TransferLimit, 0, len(ms))
	for _, m := range ms {
		out = append(out, mapping.ToDomainTransferLimit(m))
	}
	return out, nil
}

// --- abnormality alerts ---

type PgxAbnTransferRepository struct {
	BaseRepository
}

func newPgxAbnTransferRepository(pool *pgxpool.Pool) portsrepo.AbnTransferRepositoryFacade {
	return &PgxAbnTransferRepository{BaseRepository{Pool: pool}}
}

func (r *PgxAbnTransferRepository) SaveAbnTransfer(ctx context.Context, a *domain.AbnTransfer) error {
	query := `
		INSERT INTO abn_transfers (transaction_id, account_number, rule_code, detail, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING abn_transfer_id;
	`
	err := r.q(ctx).QueryRow(ctx, query, a.TransactionID, a.AccountNumber, string(a.RuleCode), a.Detail, a.CreatedAt).Scan(&a.AbnTransferID)
	if err != nil {
		return mapPgError("failed to save abnormal transfer", err)
	}
	return nil
}

func (r *PgxAbnTransferRepository) ListAbnTransfersByAccount(ctx context.Context, accountNumber string, limit, offset int) ([]domain.AbnTransfer, error) {
	query := `
		SELECT abn_transfer_id, transaction_id, account_number, rule_code, detail, created_at
		FROM abn_transfers
		WHERE account_number = $1
		ORDER BY abn_transfer_id DESC
		LIMIT $2 OFFSET $3;
	`
	rows, err := r.q(ctx).Query(ctx, query, accountNumber, limit, offset)
	if err != nil {
		return nil, mapPgError("failed to list abnormal transfers", err)
	}
	ms, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.AbnTransfer])
	if err != nil {
		return nil, mapPgError("failed to scan abnormal transfers", err)
	}
	out := make([]domain.AbnTransfer, 0, len(ms))
	for _, m := range ms {
		out = append(out, mapping.ToDomainAbnTransfer(m))
	}
	return out, nil
}

// --- failure reasons ---

type PgxFailureReasonRepository struct {
	BaseRepository
}

func newPgxFailureReasonRepository(pool *pgxpool.Pool) portsrepo.FailureReasonRepositoryFacade {
	return &PgxFailureReasonRepository{BaseRepository{Pool: pool}}
}

func (r *PgxFailureReasonRepository) FindFailureReason(ctx context.Context, code string) (*domain.TransferFailureReason, error) {
	rows, err := r.q(ctx).Query(ctx, `SELECT code, description FROM transfer_failure_reasons WHERE code = $1`, code)
	if err != nil {
		return nil, mapPgError("failed to find failure reason", err)
	}
	m, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[models.TransferFailureReason])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: failure reason %s", apperrors.ErrNotFound, code)
		}
		return nil, mapPgError("failed to find failure reason", err)
	}
	d := mapping.ToDomainFailureReason(m)
	return &d, nil
}

func (r *PgxFailureReasonRepository) ListFailureReasons(ctx context.Context) ([]domain.TransferFailureReason, error) {
	rows, err := r.q(ctx).Query(ctx, `SELECT code, description FROM transfer_failure_reasons ORDER BY code`)
	if err != nil {
		return nil, mapPgError("failed to list failure reasons", err)
	}
	ms, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.TransferFailureReason])
	if err != nil {
		return nil, mapPgError("failed to scan failure reasons", err)
	}
	out := make([]domain.TransferFailureReason, 0, len(ms))
	for _, m := range ms {
		out = append(out, mapping.ToDomainFailureReason(m))
	}
	return out, nil
}

func (r *PgxFailureReasonRepository) SaveFailureReason(ctx context.Context, reason domain.TransferFailureReason) error {
	_, err := r.q(ctx).Exec(ctx,
		`INSERT INTO transfer_failure_reasons (code, description) VALUES ($1, $2)`, reason.Code, reason.Description)
	if err != nil {
		return mapPgError(fmt.Sprintf("failed to save failure reason %s", reason.Code), err)
	}
	return nil
}

// --- audit log ---

type PgxAuditLogRepository struct {
	BaseRepository
}

func newPgxAuditLogRepository(pool *pgxpool.Pool) portsrepo.AuditLogRepositoryFacade {
	return &PgxAuditLogRepository{BaseRepository{Pool: pool}}
}

func (r *PgxAuditLogRepository) SaveAuditLog(ctx context.Context, e *domain.AuditLog) error {
	query := `
		INSERT INTO audit_logs (transaction_id, account_number, before_balance, after_balance, action, actor_user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING audit_log_id;
	`
	err := r.q(ctx).QueryRow(ctx, query,
		e.TransactionID, e.AccountNumber, e.BeforeBalance, e.AfterBalance, string(e.Action), e.ActorUserID, e.CreatedAt,
	).Scan(&e.AuditLogID)
	if err != nil {
		return mapPgError("failed to save audit log", err)
	}
	return nil
}

func (r *PgxAuditLogRepository) ListAuditLogsByTransaction(ctx context.Context, transactionID int64) ([]domain.AuditLog, error) {
	query := `
		SELECT audit_log_id, transaction_id, account_number, before_balance, after_balance, action, actor_user_id, created_at
		FROM audit_logs WHERE transaction_id = $1 ORDER BY audit_log_id;
	`
	rows, err := r.q(ctx).Query(ctx, query, transactionID)
	if err != nil {
		return nil, mapPgError("failed to list audit logs", err)
	}
	ms, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.AuditLog])
	if err != nil {
		return nil, mapPgError("failed to scan audit logs", err)
	}
	out := make([]domain.AuditLog, 0, len(ms))
	for _, m := range ms {
		out = append(out, mapping.ToDomainAuditLog(m))
	}
	return out, nil
}

var (
	_ portsrepo.TransferLimitRepositoryFacade = (*PgxTransferLimitRepository)(nil)
	_ portsrepo.AbnTransferRepositoryFacade   = (*PgxAbnTransferRepository)(nil)
	_ portsrepo.FailureReasonRepositoryFacade = (*PgxFailureReasonRepository)(nil)
	_ portsrepo.AuditLogRepositoryFacade      = (*PgxAuditLogRepository)(nil)
)
