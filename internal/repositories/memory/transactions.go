package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/dbbank/bank_backend/internal/apperrors"
	"github.com/dbbank/bank_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

func (s *Store) SaveTransaction(ctx context.Context, tx *domain.Transaction) error {
	defer s.lock(ctx)()
	s.data.nextTransactionID++
	tx.TransactionID = s.data.nextTransactionID
	s.data.transactions = append(s.data.transactions, *tx)
	return nil
}

func (s *Store) FindTransactionByID(ctx context.Context, transactionID int64) (*domain.Transaction, error) {
	defer s.lock(ctx)()
	for _, t := range s.data.transactions {
		if t.TransactionID == transactionID {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%w: transaction %d", apperrors.ErrNotFound, transactionID)
}

func (s *Store) SumOutgoingTransfers(ctx context.Context, accountNumber string, since, until time.Time) (decimal.Decimal, error) {
	defer s.lock(ctx)()
	total := decimal.Zero
	for _, t := range s.data.transactions {
		if t.Type != domain.TransactionTransfer || t.FromAccountNumber != accountNumber {
			continue
		}
		if t.CreatedAt.Before(since) || t.CreatedAt.After(until) {
			continue
		}
		total = total.Add(t.Amount)
	}
	return total, nil
}

func (s *Store) CountSameTransfers(ctx context.Context, from, to string, amount decimal.Decimal, since time.Time) (int, error) {
	defer s.lock(ctx)()
	n := 0
	for _, t := range s.data.transactions {
		if t.FromAccountNumber == from && t.ToAccountNumber == to && t.Amount.Equal(amount) && !t.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (s *Store) CountTransfersBetween(ctx context.Context, from, to string) (int, error) {
	defer s.lock(ctx)()
	n := 0
	for _, t := range s.data.transactions {
		if t.FromAccountNumber == from && t.ToAccountNumber == to {
			n++
		}
	}
	return n, nil
}

// Transactions returns a copy of every transaction record.
func (s *Store) Transactions(ctx context.Context) []domain.Transaction {
	defer s.lock(ctx)()
	out := make([]domain.Transaction, len(s.data.transactions))
	copy(out, s.data.transactions)
	return out
}

func (s *Store) SaveAuditLog(ctx context.Context, entry *domain.AuditLog) error {
	defer s.lock(ctx)()
	s.data.nextAuditID++
	entry.AuditLogID = s.data.nextAuditID
	s.data.auditLogs = append(s.data.auditLogs, *entry)
	return nil
}

func (s *Store) ListAuditLogsByTransaction(ctx context.Context, transactionID int64) ([]domain.AuditLog, error) {
	defer s.lock(ctx)()
	var out []domain.AuditLog
	for _, l := range s.data.auditLogs {
		if l.TransactionID == transactionID {
			out = append(out, l)
		}
	}
	return out, nil
}
