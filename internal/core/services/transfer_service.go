package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/dbbank/bank_backend/internal/apperrors"
	"github.com/dbbank/bank_backend/internal/core/domain"
	portsrepo "github.com/dbbank/bank_backend/internal/core/ports/repositories"
	portssvc "github.com/dbbank/bank_backend/internal/core/ports/services"
	"github.com/dbbank/bank_backend/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

// transferService is the transfer executor.
type transferService struct {
	BaseService
	txManager       portsrepo.TransactionManager
	accountRepo     portsrepo.AccountRepositoryFacade
	transactionRepo portsrepo.TransactionWriter
	abnormality     portssvc.AbnormalitySvcFacade
	audit           portssvc.AuditLogger
}

// NewTransferService creates a new transfer executor.
func NewTransferService(
	txManager portsrepo.TransactionManager,
	accountRepo portsrepo.AccountRepositoryFacade,
	transactionRepo portsrepo.TransactionWriter,
	abnormality portssvc.AbnormalitySvcFacade,
	audit portssvc.AuditLogger,
	base BaseService,
) portssvc.TransferSvcFacade {
	return &transferService{
		BaseService:     base,
		txManager:       txManager,
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
		abnormality:     abnormality,
		audit:           audit,
	}
}

var _ portssvc.TransferSvcFacade = (*transferService)(nil)

// movement describes one money movement before it is executed.
type movement struct {
	txType      domain.TransactionType
	actorUserID int64
	from        string
	to          string
	amount      decimal.Decimal
	memo        string
}

func (s *transferService) Deposit(ctx context.Context, actorUserID int64, toAccountNumber string, amount decimal.Decimal, memo string) (*domain.Transaction, error) {
	return s.execute(ctx, movement{
		txType:      domain.TransactionDeposit,
		actorUserID: actorUserID,
		from:        domain.ExternalInAccountNumber,
		to:          toAccountNumber,
		amount:      amount,
		memo:        memo,
	})
}

func (s *transferService) Withdraw(ctx context.Context, actorUserID int64, fromAccountNumber string, amount decimal.Decimal, memo string) (*domain.Transaction, error) {
	return s.execute(ctx, movement{
		txType:      domain.TransactionWithdrawal,
		actorUserID: actorUserID,
		from:        fromAccountNumber,
		to:          domain.ExternalOutAccountNumber,
		amount:      amount,
		memo:        memo,
	})
}

func (s *transferService) Transfer(ctx context.Context, actorUserID int64, fromAccountNumber, toAccountNumber string, amount decimal.Decimal, memo string) (*domain.Transaction, error) {
	return s.execute(ctx, movement{
		txType:      domain.TransactionTransfer,
		actorUserID: actorUserID,
		from:        fromAccountNumber,
		to:          toAccountNumber,
		amount:      amount,
		memo:        memo,
	})
}

func (s *transferService) execute(ctx context.Context, m movement) (*domain.Transaction, error) {
	logger := s.GetLogger(ctx).With(
		slog.String("transaction_type", string(m.txType)),
		slog.String("from_account", m.from),
		slog.String("to_account", m.to),
		slog.String("amount", m.amount.String()),
		slog.Int64("actor_user_id", m.actorUserID),
	)

	if !m.amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if m.from == m.to {
		return nil, ErrSameAccount
	}

	var result domain.Transaction
	err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		accounts, err := s.lockAccounts(ctx, m.from, m.to)
		if err != nil {
			return err
		}
		debit, credit := accounts[m.from], accounts[m.to]
		if err := s.authorize(m, debit, credit); err != nil {
			return err
		}
		if m.txType == domain.TransactionTransfer {
			if err := s.abnormality.PreCheck(ctx, m.from, m.to, m.amount); err != nil {
				return err
			}
		}

		debitLeg, creditLeg, err := accounting.Post(debit, credit, m.amount)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInsufficientBalance, err)
		}

		now := s.clock()
		result = domain.Transaction{
			FromAccountNumber: m.from,
			ToAccountNumber:   m.to,
			Type:              m.txType,
			Status:            domain.TransactionSuccess,
			Amount:            m.amount,
			Memo:              m.memo,
			CreatedAt:         now,
		}
		if err := s.transactionRepo.SaveTransaction(ctx, &result); err != nil {
			return err
		}
		for _, leg := range []accounting.Posting{debitLeg, creditLeg} {
			if err := s.accountRepo.UpdateAccountBalance(ctx, leg.AccountNumber, leg.After, now); err != nil {
				return err
			}
		}
		return s.recordAudit(ctx, m, result, debitLeg, creditLeg)
	})
	if err != nil {
		var breach *domain.DailyLimitBreach
		if errors.As(err, &breach) {
			if recErr := s.abnormality.RecordLimitBreach(ctx, breach); recErr != nil {
				s.LogError(ctx, recErr, "Failed to record daily limit alert", slog.String("account", m.from))
			}
		}
		logger.Info("Money movement rejected",
			slog.String("kind", apperrors.KindOf(err).String()),
			slog.String("error", err.Error()))
		return nil, err
	}

	logger.Info("Money movement committed", slog.Int64("transaction_id", result.TransactionID))

	if m.txType == domain.TransactionTransfer {
		if _, err := s.abnormality.PostCheck(ctx, result); err != nil {
			s.LogError(ctx, err, "Post-transfer abnormality check failed",
				slog.Int64("transaction_id", result.TransactionID))
		}
	}
	return &result, nil
}

// lockAccounts locks both rows in ascending account number order so two
// opposite transfers over the same pair cannot deadlock.
func (s *transferService) lockAccounts(ctx context.Context, numbers ...string) (map[string]domain.Account, error) {
	ordered := append([]string(nil), numbers...)
	sort.Strings(ordered)

	locked := make(map[string]domain.Account, len(ordered))
	for _, number := range ordered {
		acc, err := s.accountRepo.FindAccountByNumberForUpdate(ctx, number)
		if err != nil {
			return nil, err
		}
		locked[number] = *acc
	}
	return locked, nil
}

func (s *transferService) authorize(m movement, debit, credit domain.Account) error {
	switch m.txType {
	case domain.TransactionDeposit:
		if !credit.IsNormal() {
			return ErrNotCustomerAccount
		}
		return nil
	case domain.TransactionWithdrawal:
		if !debit.IsNormal() {
			return ErrNotCustomerAccount
		}
	default:
		if !debit.IsNormal() || !credit.IsNormal() {
			return ErrNotCustomerAccount
		}
	}
	if !debit.IsOwnedBy(m.actorUserID) {
		return ErrAccountNotOwned
	}
	if !debit.CanDebit(m.amount) {
		return ErrInsufficientBalance
	}
	return nil
}

func (s *transferService) recordAudit(ctx context.Context, m movement, tx domain.Transaction, debitLeg, creditLeg accounting.Posting) error {
	type entry struct {
		leg    accounting.Posting
		action domain.AuditAction
	}
	var entries []entry
	switch m.txType {
	case domain.TransactionDeposit:
		entries = []entry{{creditLeg, domain.AuditDeposit}}
	case domain.TransactionWithdrawal:
		entries = []entry{{debitLeg, domain.AuditWithdraw}}
	default:
		entries = []entry{{debitLeg, domain.AuditTransferDebit}, {creditLeg, domain.AuditTransferCredit}}
	}
	for _, e := range entries {
		if err := s.audit.RecordLog(ctx, tx, e.leg.AccountNumber, e.leg.Before, e.leg.After, e.action, m.actorUserID); err != nil {
			return err
		}
	}
	return nil
}
