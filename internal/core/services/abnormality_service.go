package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/dbbank/bank_backend/internal/apperrors"
	"github.com/dbbank/bank_backend/internal/core/domain"
	portsrepo "github.com/dbbank/bank_backend/internal/core/ports/repositories"
	portssvc "github.com/dbbank/bank_backend/internal/core/ports/services"
	"github.com/dbbank/bank_backend/internal/utils"
	"github.com/shopspring/decimal"
)

// VelocityRule configures the repeated identical transfer heuristic.
type VelocityRule struct {
	Window    time.Duration
	Threshold int
}

type abnormalityService struct {
	BaseService
	transactionRepo portsrepo.TransactionReader
	limitRepo       portsrepo.TransferLimitRepositoryFacade
	alertRepo       portsrepo.AbnTransferRepositoryFacade
	velocity        VelocityRule
	analytics       *utils.PosthogClientWrapper
}

// NewAbnormalityService creates the abnormality screen. analytics may be nil.
func NewAbnormalityService(
	transactionRepo portsrepo.TransactionReader,
	limitRepo portsrepo.TransferLimitRepositoryFacade,
	alertRepo portsrepo.AbnTransferRepositoryFacade,
	velocity VelocityRule,
	analytics *utils.PosthogClientWrapper,
	base BaseService,
) portssvc.AbnormalitySvcFacade {
	if velocity.Window <= 0 {
		velocity.Window = 10 * time.Minute
	}
	if velocity.Threshold <= 0 {
		velocity.Threshold = 3
	}
	return &abnormalityService{
		BaseService:     base,
		transactionRepo: transactionRepo,
		limitRepo:       limitRepo,
		alertRepo:       alertRepo,
		velocity:        velocity,
		analytics:       analytics,
	}
}

var _ portssvc.AbnormalitySvcFacade = (*abnormalityService)(nil)

// PreCheck compares today's outgoing transfer total plus amount with the
// account's active daily limit. "Today" starts at local midnight.
func (s *abnormalityService) PreCheck(ctx context.Context, fromAccountNumber, toAccountNumber string, amount decimal.Decimal) error {
	now := s.clock()
	limit, err := s.limitRepo.FindActiveTransferLimit(ctx, fromAccountNumber, now)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil
		}
		return err
	}
	if !limit.DailyLimit.IsPositive() {
		return nil
	}

	todayTotal, err := s.transactionRepo.SumOutgoingTransfers(ctx, fromAccountNumber, domain.StartOfDay(now, s.location()), now)
	if err != nil {
		return err
	}
	if todayTotal.Add(amount).GreaterThan(limit.DailyLimit) {
		return &domain.DailyLimitBreach{
			FromAccountNumber: fromAccountNumber,
			ToAccountNumber:   toAccountNumber,
			DailyLimit:        limit.DailyLimit,
			TodayTotal:        todayTotal,
			Amount:            amount,
		}
	}
	return nil
}

func (s *abnormalityService) RecordLimitBreach(ctx context.Context, breach *domain.DailyLimitBreach) error {
	return s.raise(ctx, domain.AbnTransfer{
		AccountNumber: breach.FromAccountNumber,
		RuleCode:      domain.RuleDailyTotalExceeded,
		Detail: fmt.Sprintf("transfer of %s to %s blocked: today's total %s exceeds daily limit %s",
			breach.Amount.String(), breach.ToAccountNumber, breach.TodayTotal.Add(breach.Amount).String(), breach.DailyLimit.String()),
	})
}

// PostCheck evaluates the velocity and new receiver rules against the
// committed transaction. Both counts include tx itself.
func (s *abnormalityService) PostCheck(ctx context.Context, tx domain.Transaction) ([]domain.AbnTransfer, error) {
	var alerts []domain.AbnTransfer
	txID := tx.TransactionID

	since := tx.CreatedAt.Add(-s.velocity.Window)
	repeated, err := s.transactionRepo.CountSameTransfers(ctx, tx.FromAccountNumber, tx.ToAccountNumber, tx.Amount, since)
	if err != nil {
		return nil, err
	}
	if repeated >= s.velocity.Threshold {
		alerts = append(alerts, domain.AbnTransfer{
			TransactionID: &txID,
			AccountNumber: tx.FromAccountNumber,
			RuleCode:      domain.RuleMultiTransferSameAccount,
			Detail: fmt.Sprintf("%d transfers of %s to %s within %s",
				repeated, tx.Amount.String(), tx.ToAccountNumber, s.velocity.Window),
		})
	}

	history, err := s.transactionRepo.CountTransfersBetween(ctx, tx.FromAccountNumber, tx.ToAccountNumber)
	if err != nil {
		return nil, err
	}
	if history == 1 {
		alerts = append(alerts, domain.AbnTransfer{
			TransactionID: &txID,
			AccountNumber: tx.FromAccountNumber,
			RuleCode:      domain.RuleNewReceiver,
			Detail:        fmt.Sprintf("first transfer to %s", tx.ToAccountNumber),
		})
	}

	for i := range alerts {
		if err := s.raise(ctx, alerts[i]); err != nil {
			return alerts[:i], err
		}
	}
	return alerts, nil
}

func (s *abnormalityService) raise(ctx context.Context, alert domain.AbnTransfer) error {
	alert.CreatedAt = s.clock()
	if err := s.alertRepo.SaveAbnTransfer(ctx, &alert); err != nil {
		s.LogError(ctx, err, "Failed to save abnormality alert", slog.String("rule", string(alert.RuleCode)))
		return err
	}
	s.LogWarn(ctx, "Abnormal transfer detected",
		slog.String("rule", string(alert.RuleCode)),
		slog.String("account", alert.AccountNumber),
		slog.String("detail", alert.Detail))

	props := map[string]any{"rule": string(alert.RuleCode), "account": alert.AccountNumber}
	if alert.TransactionID != nil {
		props["transaction_id"] = strconv.FormatInt(*alert.TransactionID, 10)
	}
	s.analytics.Enqueue(alert.AccountNumber, "abnormal_transfer", props)
	return nil
}

func (s *abnormalityService) ListAlerts(ctx context.Context, accountNumber string, limit, offset int) ([]domain.AbnTransfer, error) {
	return s.alertRepo.ListAbnTransfersByAccount(ctx, accountNumber, limit, offset)
}
