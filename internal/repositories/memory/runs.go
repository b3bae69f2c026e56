package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/dbbank/bank_backend/internal/apperrors"
	"github.com/dbbank/bank_backend/internal/core/domain"
)

func (s *Store) SaveRun(ctx context.Context, run *domain.ScheduledTransferRun) error {
	defer s.lock(ctx)()
	s.data.nextRunID++
	run.RunID = s.data.nextRunID
	s.data.runs = append(s.data.runs, *run)
	return nil
}

// latestRun relies on runs being appended in id order.
func (s *Store) latestRun(scheduleID int64) *domain.ScheduledTransferRun {
	for i := len(s.data.runs) - 1; i >= 0; i-- {
		if s.data.runs[i].ScheduleID == scheduleID {
			r := s.data.runs[i]
			return &r
		}
	}
	return nil
}

func (s *Store) FindLatestRun(ctx context.Context, scheduleID int64) (*domain.ScheduledTransferRun, error) {
	defer s.lock(ctx)()
	r := s.latestRun(scheduleID)
	if r == nil {
		return nil, fmt.Errorf("%w: no runs for schedule %d", apperrors.ErrNotFound, scheduleID)
	}
	return r, nil
}

func (s *Store) FindRetryTargets(ctx context.Context, now time.Time, limit int) ([]domain.ScheduledTransferRun, error) {
	defer s.lock(ctx)()
	seen := make(map[int64]bool)
	var out []domain.ScheduledTransferRun
	for i := len(s.data.runs) - 1; i >= 0; i-- {
		r := s.data.runs[i]
		if seen[r.ScheduleID] {
			continue
		}
		seen[r.ScheduleID] = true
		if r.NextRetryAt != nil && !r.NextRetryAt.After(now) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].NextRetryAt.Before(*out[j].NextRetryAt) })
	return page(out, limit, 0), nil
}

func (s *Store) ListRunsBySchedule(ctx context.Context, scheduleID int64, result *domain.RunResult, beforeID *int64, limit int) ([]domain.ScheduledTransferRun, error) {
	defer s.lock(ctx)()
	var out []domain.ScheduledTransferRun
	for i := len(s.data.runs) - 1; i >= 0; i-- {
		r := s.data.runs[i]
		if r.ScheduleID != scheduleID {
			continue
		}
		if result != nil && r.Result != *result {
			continue
		}
		if beforeID != nil && r.RunID >= *beforeID {
			continue
		}
		out = append(out, r)
	}
	return page(out, limit, 0), nil
}

func (s *Store) ListFailedRuns(ctx context.Context, scheduleID int64) ([]domain.ScheduledTransferRun, error) {
	defer s.lock(ctx)()
	var out []domain.ScheduledTransferRun
	for i := len(s.data.runs) - 1; i >= 0; i-- {
		r := s.data.runs[i]
		if r.ScheduleID == scheduleID && r.Result != domain.RunSuccess {
			out = append(out, r)
		}
	}
	return out, nil
}
