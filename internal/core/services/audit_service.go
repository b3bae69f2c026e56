package services

import (
	"context"

	"github.com/dbbank/bank_backend/internal/core/domain"
	portsrepo "github.com/dbbank/bank_backend/internal/core/ports/repositories"
	portssvc "github.com/dbbank/bank_backend/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

// auditService writes audit rows through the store, joining the caller's unit of work.
type auditService struct {
	BaseService
	repo portsrepo.AuditLogRepositoryFacade
}

func NewAuditService(repo portsrepo.AuditLogRepositoryFacade, base BaseService) portssvc.AuditLogger {
	return &auditService{BaseService: base, repo: repo}
}

func (s *auditService) RecordLog(ctx context.Context, tx domain.Transaction, accountNumber string, before, after decimal.Decimal, action domain.AuditAction, actorUserID int64) error {
	entry := &domain.AuditLog{
		TransactionID: tx.TransactionID,
		AccountNumber: accountNumber,
		BeforeBalance: before,
		AfterBalance:  after,
		Action:        action,
		ActorUserID:   actorUserID,
		CreatedAt:     s.clock(),
	}
	if err := s.repo.SaveAuditLog(ctx, entry); err != nil {
		s.LogError(ctx, err, "Failed to write audit log")
		return err
	}
	return nil
}
