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
	"github.com/shopspring/decimal"
)

type PgxTransactionRepository struct {
	BaseRepository
}

func newPgxTransactionRepository(pool *pgxpool.Pool) portsrepo.TransactionRepositoryFacade {
	return &PgxTransactionRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.TransactionRepositoryFacade = (*PgxTransactionRepository)(nil)

// SaveTransaction inserts the record and sets its TransactionID.
func (r *PgxTransactionRepository) SaveTransaction(ctx context.Context, tx *domain.Transaction) error {
	query := `
		INSERT INTO transactions (from_account_number, to_account_number, transaction_type, status, amount, memo, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING transaction_id;
	`
	err := r.q(ctx).QueryRow(ctx, query,
		tx.FromAccountNumber, tx.ToAccountNumber, string(tx.Type), string(tx.Status), tx.Amount, tx.Memo, tx.CreatedAt,
	).Scan(&tx.TransactionID)
	if err != nil {
		return mapPgError("failed to save transaction", err)
	}
	return nil
}

func (r *PgxTransactionRepository) FindTransactionByID(ctx context.Context, transactionID int64) (*domain.Transaction, error) {
	query := `
		SELECT transaction_id, from_account_number, to_account_number, transaction_type, status, amount, memo, created_at
		FROM transactions WHERE transaction_id = $1;
	`
	rows, err := r.q(ctx).Query(ctx, query, transactionID)
	if err != nil {
		return nil, mapPgError("failed to find transaction", err)
	}
	m, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[models.Transaction])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: transaction %d", apperrors.ErrNotFound, transactionID)
		}
		return nil, mapPgError("failed to find transaction", err)
	}
	tx := mapping.ToDomainTransaction(m)
	return &tx, nil
}

func (r *PgxTransactionRepository) SumOutgoingTransfers(ctx context.Context, accountNumber string, since, until time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE from_account_number = $1
		  AND transaction_type = 'TRANSFER'
		  AND created_at BETWEEN $2 AND $3;
	`
	var total decimal.Decimal
	if err := r.q(ctx).QueryRow(ctx, query, accountNumber, since, until).Scan(&total); err != nil {
		return decimal.Zero, mapPgError("failed to sum outgoing transfers", err)
	}
	return total, nil
}

func (r *PgxTransactionRepository) CountSameTransfers(ctx context.Context, from, to string, amount decimal.Decimal, since time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM transactions
		WHERE from_account_number = $1 AND to_account_number = $2 AND amount = $3 AND created_at >= $4;
	`
	var n int
	if err := r.q(ctx).QueryRow(ctx, query, from, to, amount, since).Scan(&n); err != nil {
		return 0, mapPgError("failed to count repeated transfers", err)
	}
	return n, nil
}

func (r *PgxTransactionRepository) CountTransfersBetween(ctx context.Context, from, to string) (int, error) {
	var n int
	err := r.q(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM transactions WHERE from_account_number = $1 AND to_account_number = $2`,
		from, to).Scan(&n)
	if err != nil {
		return 0, mapPgError("failed to count transfers between accounts", err)
	}
	return n, nil
}
