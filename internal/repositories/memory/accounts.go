package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/dbbank/bank_backend/internal/apperrors"
	"github.com/dbbank/bank_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

func (s *Store) FindAccountByNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	defer s.lock(ctx)()
	acc, ok := s.data.accounts[accountNumber]
	if !ok {
		return nil, apperrors.NewAccountError(apperrors.KindNotFound, fmt.Sprintf("account %s not found", accountNumber))
	}
	return &acc, nil
}

// FindAccountByNumberForUpdate must be called inside WithinTx; the store mutex
// is the lock.
func (s *Store) FindAccountByNumberForUpdate(ctx context.Context, accountNumber string) (*domain.Account, error) {
	if !s.inTx(ctx) {
		return nil, apperrors.NewAppError(500, "lock for update outside of a unit of work", nil)
	}
	return s.FindAccountByNumber(ctx, accountNumber)
}

func (s *Store) SaveAccount(ctx context.Context, account domain.Account) error {
	defer s.lock(ctx)()
	if _, exists := s.data.accounts[account.AccountNumber]; exists {
		return fmt.Errorf("%w: account %s already exists", apperrors.ErrDuplicate, account.AccountNumber)
	}
	s.data.accounts[account.AccountNumber] = account
	return nil
}

func (s *Store) UpdateAccountBalance(ctx context.Context, accountNumber string, balance decimal.Decimal, now time.Time) error {
	defer s.lock(ctx)()
	acc, ok := s.data.accounts[accountNumber]
	if !ok {
		return apperrors.NewAccountError(apperrors.KindNotFound, fmt.Sprintf("account %s not found", accountNumber))
	}
	acc.Balance = balance
	acc.UpdatedAt = now
	s.data.accounts[accountNumber] = acc
	return nil
}

// Accounts returns a copy of every account, sinks included.
func (s *Store) Accounts(ctx context.Context) []domain.Account {
	defer s.lock(ctx)()
	out := make([]domain.Account, 0, len(s.data.accounts))
	for _, a := range s.data.accounts {
		out = append(out, a)
	}
	return out
}
