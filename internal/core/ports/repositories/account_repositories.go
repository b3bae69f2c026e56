package repositories

import (
	"context"
	"time"

	"github.com/dbbank/bank_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// AccountReader defines read operations for account data
type AccountReader interface {
	// FindAccountByNumber retrieves an account without locking it.
	FindAccountByNumber(ctx context.Context, accountNumber string) (*domain.Account, error)
}

// AccountWriter defines write operations for account data
type AccountWriter interface {
	// SaveAccount persists a new account. Account opening lives outside the
	// engine; this is used for seeding.
	SaveAccount(ctx context.Context, account domain.Account) error
}

// AccountTransactionSupport defines operations that must run inside a unit of work.
type AccountTransactionSupport interface {
	// FindAccountByNumberForUpdate selects the account and holds an exclusive
	// row lock on it until the enclosing unit of work ends.
	FindAccountByNumberForUpdate(ctx context.Context, accountNumber string) (*domain.Account, error)

	// UpdateAccountBalance overwrites the balance of a locked account.
	UpdateAccountBalance(ctx context.Context, accountNumber string, balance decimal.Decimal, now time.Time) error
}

// AccountRepositoryFacade combines all account-related repository interfaces
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
	AccountTransactionSupport
}
