package services

import (
	"context"
	"log/slog"

	"github.com/dbbank/bank_backend/internal/core/domain"
	portsrepo "github.com/dbbank/bank_backend/internal/core/ports/repositories"
	portssvc "github.com/dbbank/bank_backend/internal/core/ports/services"
	"github.com/dbbank/bank_backend/internal/dto"
)

type failureReasonService struct {
	BaseService
	repo portsrepo.FailureReasonRepositoryFacade
}

func NewFailureReasonService(repo portsrepo.FailureReasonRepositoryFacade, base BaseService) portssvc.FailureReasonSvcFacade {
	return &failureReasonService{BaseService: base, repo: repo}
}

var _ portssvc.FailureReasonSvcFacade = (*failureReasonService)(nil)

func (s *failureReasonService) GetReason(ctx context.Context, code string) (*domain.TransferFailureReason, error) {
	return s.repo.FindFailureReason(ctx, code)
}

func (s *failureReasonService) ListReasons(ctx context.Context) ([]domain.TransferFailureReason, error) {
	return s.repo.ListFailureReasons(ctx)
}

func (s *failureReasonService) CreateReason(ctx context.Context, req dto.CreateFailureReasonRequest) (*domain.TransferFailureReason, error) {
	reason := domain.TransferFailureReason{Code: req.Code, Description: req.Description}
	if err := s.repo.SaveFailureReason(ctx, reason); err != nil {
		s.LogError(ctx, err, "Failed to create failure reason", slog.String("code", req.Code))
		return nil, err
	}
	return &reason, nil
}
