package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/dbbank/bank_backend/internal/apperrors"
	"github.com/dbbank/bank_backend/internal/core/domain"
	portsrepo "github.com/dbbank/bank_backend/internal/core/ports/repositories"
	portssvc "github.com/dbbank/bank_backend/internal/core/ports/services"
	"github.com/dbbank/bank_backend/internal/dto"
)

type transferLimitService struct {
	BaseService
	txManager   portsrepo.TransactionManager
	limitRepo   portsrepo.TransferLimitRepositoryFacade
	accountRepo portsrepo.AccountReader
}

func NewTransferLimitService(
	txManager portsrepo.TransactionManager,
	limitRepo portsrepo.TransferLimitRepositoryFacade,
	accountRepo portsrepo.AccountReader,
	base BaseService,
) portssvc.TransferLimitSvcFacade {
	return &transferLimitService{BaseService: base, txManager: txManager, limitRepo: limitRepo, accountRepo: accountRepo}
}

var _ portssvc.TransferLimitSvcFacade = (*transferLimitService)(nil)

// CreateLimit replaces the account's ACTIVE limit. The end date is inclusive:
// the limit applies until the end of that calendar day.
func (s *transferLimitService) CreateLimit(ctx context.Context, req dto.CreateTransferLimitRequest) (*domain.TransferLimit, error) {
	if req.DailyLimit.IsNegative() || req.PerTransactionLimit.IsNegative() {
		return nil, apperrors.NewTransferError(apperrors.KindValidation, "limits must not be negative")
	}
	if _, err := s.accountRepo.FindAccountByNumber(ctx, req.AccountNumber); err != nil {
		return nil, err
	}

	now := s.clock()
	start := now
	if req.StartDate != nil {
		t, err := time.ParseInLocation(dto.DateLayout, *req.StartDate, s.location())
		if err != nil {
			return nil, apperrors.Wrap(apperrors.SubsystemTransfer, apperrors.KindValidation, "startDate must be a YYYY-MM-DD date", err)
		}
		start = t
	}
	var end *time.Time
	if req.EndDate != nil {
		t, err := time.ParseInLocation(dto.DateLayout, *req.EndDate, s.location())
		if err != nil {
			return nil, apperrors.Wrap(apperrors.SubsystemTransfer, apperrors.KindValidation, "endDate must be a YYYY-MM-DD date", err)
		}
		t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
		if t.Before(start) {
			return nil, apperrors.NewTransferError(apperrors.KindValidation, "endDate must not be before startDate")
		}
		end = &t
	}

	limit := &domain.TransferLimit{
		AccountNumber:       req.AccountNumber,
		DailyLimit:          req.DailyLimit,
		PerTransactionLimit: req.PerTransactionLimit,
		StartDate:           start,
		EndDate:             end,
		Status:              domain.LimitActive,
		Note:                req.Note,
		AuditFields:         domain.AuditFields{CreatedAt: now, UpdatedAt: now},
	}
	err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.limitRepo.DeactivateTransferLimits(ctx, req.AccountNumber, now); err != nil {
			return err
		}
		return s.limitRepo.SaveTransferLimit(ctx, limit)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to create transfer limit", slog.String("account_number", req.AccountNumber))
		return nil, err
	}
	s.LogInfo(ctx, "Transfer limit created",
		slog.String("account_number", req.AccountNumber),
		slog.Int64("limit_id", limit.LimitID),
		slog.String("daily_limit", limit.DailyLimit.String()))
	return limit, nil
}

func (s *transferLimitService) GetActiveLimit(ctx context.Context, accountNumber string) (*domain.TransferLimit, error) {
	return s.limitRepo.FindActiveTransferLimit(ctx, accountNumber, s.clock())
}

func (s *transferLimitService) ListLimitHistory(ctx context.Context, accountNumber string) ([]domain.TransferLimit, error) {
	if _, err := s.accountRepo.FindAccountByNumber(ctx, accountNumber); err != nil {
		return nil, err
	}
	return s.limitRepo.ListTransferLimits(ctx, accountNumber)
}
