package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/dbbank/bank_backend/internal/apperrors"
	"github.com/dbbank/bank_backend/internal/core/domain"
)

func (s *Store) SaveTransferLimit(ctx context.Context, limit *domain.TransferLimit) error {
	defer s.lock(ctx)()
	s.data.nextLimitID++
	limit.LimitID = s.data.nextLimitID
	s.data.limits = append(s.data.limits, *limit)
	return nil
}

func (s *Store) DeactivateTransferLimits(ctx context.Context, accountNumber string, now time.Time) error {
	defer s.lock(ctx)()
	for i, l := range s.data.limits {
		if l.AccountNumber == accountNumber && l.Status == domain.LimitActive {
			l.Status = domain.LimitInactive
			l.UpdatedAt = now
			s.data.limits[i] = l
		}
	}
	return nil
}

func (s *Store) FindActiveTransferLimit(ctx context.Context, accountNumber string, now time.Time) (*domain.TransferLimit, error) {
	defer s.lock(ctx)()
	for i := len(s.data.limits) - 1; i >= 0; i-- {
		l := s.data.limits[i]
		if l.AccountNumber == accountNumber && l.AppliesAt(now) {
			return &l, nil
		}
	}
	return nil, fmt.Errorf("%w: no active transfer limit for %s", apperrors.ErrNotFound, accountNumber)
}

func (s *Store) ListTransferLimits(ctx context.Context, accountNumber string) ([]domain.TransferLimit, error) {
	defer s.lock(ctx)()
	var out []domain.TransferLimit
	for i := len(s.data.limits) - 1; i >= 0; i-- {
		if s.data.limits[i].AccountNumber == accountNumber {
			out = append(out, s.data.limits[i])
		}
	}
	return out, nil
}

func (s *Store) SaveAbnTransfer(ctx context.Context, alert *domain.AbnTransfer) error {
	defer s.lock(ctx)()
	s.data.nextAlertID++
	alert.AbnTransferID = s.data.nextAlertID
	s.data.alerts = append(s.data.alerts, *alert)
	return nil
}

func (s *Store) ListAbnTransfersByAccount(ctx context.Context, accountNumber string, limit, offset int) ([]domain.AbnTransfer, error) {
	defer s.lock(ctx)()
	var out []domain.AbnTransfer
	for i := len(s.data.alerts) - 1; i >= 0; i-- {
		if s.data.alerts[i].AccountNumber == accountNumber {
			out = append(out, s.data.alerts[i])
		}
	}
	return page(out, limit, offset), nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (s *Store) FindFailureReason(ctx context.Context, code string) (*domain.TransferFailureReason, error) {
	defer s.lock(ctx)()
	r, ok := s.data.reasons[code]
	if !ok {
		return nil, fmt.Errorf("%w: failure reason %s", apperrors.ErrNotFound, code)
	}
	return &r, nil
}

func (s *Store) ListFailureReasons(ctx context.Context) ([]domain.TransferFailureReason, error) {
	defer s.lock(ctx)()
	out := make([]domain.TransferFailureReason, 0, len(s.data.reasons))
	for _, code := range sortedKeys(s.data.reasons) {
		out = append(out, s.data.reasons[code])
	}
	return out, nil
}

func (s *Store) SaveFailureReason(ctx context.Context, reason domain.TransferFailureReason) error {
	defer s.lock(ctx)()
	if _, exists := s.data.reasons[reason.Code]; exists {
		return fmt.Errorf("%w: failure reason %s", apperrors.ErrDuplicate, reason.Code)
	}
	s.data.reasons[reason.Code] = reason
	return nil
}
