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

type PgxAccountRepository struct {
	BaseRepository
}

// newPgxAccountRepository creates a new repository for account data.
func newPgxAccountRepository(pool *pgxpool.Pool) portsrepo.AccountRepositoryFacade {
	return &PgxAccountRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

const accountColumns = `account_number, user_id, account_type, balance, created_at, updated_at`

// SaveAccount inserts a new account.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	m := mapping.ToModelAccount(account)
	query := `
		INSERT INTO accounts (account_number, user_id, account_type, balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6);
	`
	_, err := r.q(ctx).Exec(ctx, query, m.AccountNumber, m.UserID, m.AccountType, m.Balance, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		return mapPgError(fmt.Sprintf("failed to save account %s", m.AccountNumber), err)
	}
	return nil
}

func (r *PgxAccountRepository) findAccount(ctx context.Context, accountNumber string, forUpdate bool) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_number = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	rows, err := r.q(ctx).Query(ctx, query, accountNumber)
	if err != nil {
		return nil, mapPgError(fmt.Sprintf("failed to find account %s", accountNumber), err)
	}
	m, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[models.Account])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewAccountError(apperrors.KindNotFound, fmt.Sprintf("account %s not found", accountNumber))
		}
		return nil, mapPgError(fmt.Sprintf("failed to find account %s", accountNumber), err)
	}
	acc := mapping.ToDomainAccount(m)
	return &acc, nil
}

// FindAccountByNumber retrieves an account without locking it.
func (r *PgxAccountRepository) FindAccountByNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	return r.findAccount(ctx, accountNumber, false)
}

// FindAccountByNumberForUpdate selects the row FOR UPDATE; a lock wait beyond
// lock_timeout surfaces as KindAccountLocked.
func (r *PgxAccountRepository) FindAccountByNumberForUpdate(ctx context.Context, accountNumber string) (*domain.Account, error) {
	if _, ok := ctx.Value(txCtxKey{}).(pgx.Tx); !ok {
		return nil, apperrors.NewAppError(500, "lock for update outside of a transaction", nil)
	}
	return r.findAccount(ctx, accountNumber, true)
}

func (r *PgxAccountRepository) UpdateAccountBalance(ctx context.Context, accountNumber string, balance decimal.Decimal, now time.Time) error {
	tag, err := r.q(ctx).Exec(ctx,
		`UPDATE accounts SET balance = $2, updated_at = $3 WHERE account_number = $1`,
		accountNumber, balance, now)
	if err != nil {
		return mapPgError(fmt.Sprintf("failed to update balance of %s", accountNumber), err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewAccountError(apperrors.KindNotFound, fmt.Sprintf("account %s not found", accountNumber))
	}
	return nil
}
