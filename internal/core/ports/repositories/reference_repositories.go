package repositories

import (
	"context"
	"time"

	"github.com/dbbank/bank_backend/internal/core/domain"
)

// TransferLimitRepositoryFacade persists per-account transfer limits.
type TransferLimitRepositoryFacade interface {
	SaveTransferLimit(ctx context.Context, limit *domain.TransferLimit) error

	// DeactivateTransferLimits marks every ACTIVE limit of the account INACTIVE.
	DeactivateTransferLimits(ctx context.Context, accountNumber string, now time.Time) error

	// FindActiveTransferLimit returns the ACTIVE limit whose window contains now.
	FindActiveTransferLimit(ctx context.Context, accountNumber string, now time.Time) (*domain.TransferLimit, error)

	ListTransferLimits(ctx context.Context, accountNumber string) ([]domain.TransferLimit, error)
}

// AbnTransferRepositoryFacade persists abnormality alerts.
type AbnTransferRepositoryFacade interface {
	SaveAbnTransfer(ctx context.Context, alert *domain.AbnTransfer) error
	ListAbnTransfersByAccount(ctx context.Context, accountNumber string, limit, offset int) ([]domain.AbnTransfer, error)
}

// FailureReasonRepositoryFacade persists the failure reason reference table.
type FailureReasonRepositoryFacade interface {
	FindFailureReason(ctx context.Context, code string) (*domain.TransferFailureReason, error)
	ListFailureReasons(ctx context.Context) ([]domain.TransferFailureReason, error)
	SaveFailureReason(ctx context.Context, reason domain.TransferFailureReason) error
}

// AuditLogRepositoryFacade persists audit log rows.
type AuditLogRepositoryFacade interface {
	SaveAuditLog(ctx context.Context, entry *domain.AuditLog) error
	ListAuditLogsByTransaction(ctx context.Context, transactionID int64) ([]domain.AuditLog, error)
}
