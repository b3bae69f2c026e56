package repositories

import (
	"context"
	"time"

	"github.com/dbbank/bank_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// TransactionReader answers the aggregate questions the abnormality screen asks.
type TransactionReader interface {
	FindTransactionByID(ctx context.Context, transactionID int64) (*domain.Transaction, error)

	// SumOutgoingTransfers sums TRANSFER amounts leaving accountNumber in [since, until].
	SumOutgoingTransfers(ctx context.Context, accountNumber string, since, until time.Time) (decimal.Decimal, error)

	// CountSameTransfers counts transactions with the identical (from, to, amount) created at or after since.
	CountSameTransfers(ctx context.Context, from, to string, amount decimal.Decimal, since time.Time) (int, error)

	// CountTransfersBetween counts all-time transactions from one account to another.
	CountTransfersBetween(ctx context.Context, from, to string) (int, error)
}

// TransactionWriter persists transaction records.
type TransactionWriter interface {
	// SaveTransaction inserts the record and sets its TransactionID.
	SaveTransaction(ctx context.Context, tx *domain.Transaction) error
}

type TransactionRepositoryFacade interface {
	TransactionReader
	TransactionWriter
}
