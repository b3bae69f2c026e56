package services

import (
	"context"

	"github.com/dbbank/bank_backend/internal/apperrors"
	"github.com/dbbank/bank_backend/internal/core/domain"
	portsrepo "github.com/dbbank/bank_backend/internal/core/ports/repositories"
	portssvc "github.com/dbbank/bank_backend/internal/core/ports/services"
	"github.com/dbbank/bank_backend/internal/dto"
	"github.com/dbbank/bank_backend/internal/utils/pagination"
)

const defaultRunPageSize = 20

type runLogService struct {
	BaseService
	runRepo      portsrepo.RunRepositoryFacade
	scheduleRepo portsrepo.ScheduleReader
}

// NewRunLogService creates the append-only run log.
func NewRunLogService(runRepo portsrepo.RunRepositoryFacade, scheduleRepo portsrepo.ScheduleReader, base BaseService) portssvc.RunLogSvcFacade {
	return &runLogService{BaseService: base, runRepo: runRepo, scheduleRepo: scheduleRepo}
}

var _ portssvc.RunLogSvcFacade = (*runLogService)(nil)

func (s *runLogService) RecordRun(ctx context.Context, run *domain.ScheduledTransferRun) error {
	if !run.Result.IsValid() {
		return apperrors.NewScheduleError(apperrors.KindValidation, "unknown run result "+string(run.Result))
	}
	if err := s.runRepo.SaveRun(ctx, run); err != nil {
		s.LogError(ctx, err, "Failed to append run")
		return err
	}
	return nil
}

func (s *runLogService) ownedSchedule(ctx context.Context, userID, scheduleID int64) error {
	schedule, err := s.scheduleRepo.FindScheduleByID(ctx, scheduleID)
	if err != nil {
		return err
	}
	if !schedule.IsOwnedBy(userID) {
		return ErrScheduleNotOwned
	}
	return nil
}

// ListRuns pages through a schedule's runs newest first. NextToken is the
// keyset cursor of the last run of the previous page.
func (s *runLogService) ListRuns(ctx context.Context, userID, scheduleID int64, params dto.ListRunsParams) (*dto.ListRunsResponse, error) {
	if err := s.ownedSchedule(ctx, userID, scheduleID); err != nil {
		return nil, err
	}

	limit := params.Limit
	if limit <= 0 {
		limit = defaultRunPageSize
	}

	var beforeID *int64
	if params.NextToken != nil && *params.NextToken != "" {
		_, runID, err := pagination.DecodeRunToken(*params.NextToken)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.SubsystemSchedule, apperrors.KindValidation, "invalid nextToken", err)
		}
		beforeID = &runID
	}

	runs, err := s.runRepo.ListRunsBySchedule(ctx, scheduleID, params.Result, beforeID, limit+1)
	if err != nil {
		return nil, err
	}

	resp := &dto.ListRunsResponse{}
	if len(runs) > limit {
		runs = runs[:limit]
		last := runs[len(runs)-1]
		token := pagination.EncodeRunToken(last.ExecutedAt, last.RunID)
		resp.NextToken = &token
	}
	resp.Runs = dto.ToRunResponses(runs)
	return resp, nil
}

func (s *runLogService) ListFailures(ctx context.Context, userID, scheduleID int64) ([]domain.ScheduledTransferRun, error) {
	if err := s.ownedSchedule(ctx, userID, scheduleID); err != nil {
		return nil, err
	}
	return s.runRepo.ListFailedRuns(ctx, scheduleID)
}
