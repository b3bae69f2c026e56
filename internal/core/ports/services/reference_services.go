package services

import (
	"context"

	"github.com/dbbank/bank_backend/internal/core/domain"
	"github.com/dbbank/bank_backend/internal/dto"
)

// TransferLimitSvcFacade manages per-account transfer limits.
type TransferLimitSvcFacade interface {
	CreateLimit(ctx context.Context, req dto.CreateTransferLimitRequest) (*domain.TransferLimit, error)
	GetActiveLimit(ctx context.Context, accountNumber string) (*domain.TransferLimit, error)
	ListLimitHistory(ctx context.Context, accountNumber string) ([]domain.TransferLimit, error)
}

// FailureReasonSvcFacade exposes the failure reason reference table.
type FailureReasonSvcFacade interface {
	GetReason(ctx context.Context, code string) (*domain.TransferFailureReason, error)
	ListReasons(ctx context.Context) ([]domain.TransferFailureReason, error)
	CreateReason(ctx context.Context, req dto.CreateFailureReasonRequest) (*domain.TransferFailureReason, error)
}
