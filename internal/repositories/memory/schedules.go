package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/dbbank/bank_backend/internal/apperrors"
	"github.com/dbbank/bank_backend/internal/core/domain"
)

func isLive(status domain.ScheduleStatus) bool {
	return status == domain.ScheduleActive || status == domain.ScheduleRunning
}

func (s *Store) SaveSchedule(ctx context.Context, schedule *domain.ScheduledTransaction) error {
	defer s.lock(ctx)()
	if isLive(schedule.Status) && s.liveExists(schedule.FromAccountNumber, schedule.ToAccountNumber, 0) {
		return fmt.Errorf("%w: live schedule for %s -> %s", apperrors.ErrDuplicate, schedule.FromAccountNumber, schedule.ToAccountNumber)
	}
	s.data.nextScheduleID++
	schedule.ScheduleID = s.data.nextScheduleID
	s.data.schedules[schedule.ScheduleID] = *schedule
	return nil
}

func (s *Store) UpdateSchedule(ctx context.Context, schedule domain.ScheduledTransaction, expected domain.ScheduleStatus) error {
	defer s.lock(ctx)()
	current, ok := s.data.schedules[schedule.ScheduleID]
	if !ok {
		return apperrors.NewScheduleError(apperrors.KindNotFound, fmt.Sprintf("schedule %d not found", schedule.ScheduleID))
	}
	if current.Status != expected {
		return apperrors.NewScheduleError(apperrors.KindConflict, fmt.Sprintf("schedule %d changed state concurrently", schedule.ScheduleID))
	}
	if isLive(schedule.Status) && !isLive(current.Status) && s.liveExists(schedule.FromAccountNumber, schedule.ToAccountNumber, schedule.ScheduleID) {
		return fmt.Errorf("%w: live schedule for %s -> %s", apperrors.ErrDuplicate, schedule.FromAccountNumber, schedule.ToAccountNumber)
	}
	s.data.schedules[schedule.ScheduleID] = schedule
	return nil
}

func (s *Store) FindScheduleByID(ctx context.Context, scheduleID int64) (*domain.ScheduledTransaction, error) {
	defer s.lock(ctx)()
	sch, ok := s.data.schedules[scheduleID]
	if !ok {
		return nil, apperrors.NewScheduleError(apperrors.KindNotFound, fmt.Sprintf("schedule %d not found", scheduleID))
	}
	return &sch, nil
}

func (s *Store) liveExists(from, to string, excludeID int64) bool {
	for id, sch := range s.data.schedules {
		if id != excludeID && isLive(sch.Status) && sch.FromAccountNumber == from && sch.ToAccountNumber == to {
			return true
		}
	}
	return false
}

func (s *Store) ExistsLiveSchedule(ctx context.Context, from, to string, excludeID int64) (bool, error) {
	defer s.lock(ctx)()
	return s.liveExists(from, to, excludeID), nil
}

func (s *Store) sortedSchedules(keep func(domain.ScheduledTransaction) bool) []domain.ScheduledTransaction {
	var out []domain.ScheduledTransaction
	for _, sch := range s.data.schedules {
		if keep(sch) {
			out = append(out, sch)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduleID < out[j].ScheduleID })
	return out
}

func (s *Store) ListSchedulesByUser(ctx context.Context, userID int64, status *domain.ScheduleStatus, limit, offset int) ([]domain.ScheduledTransaction, error) {
	defer s.lock(ctx)()
	out := s.sortedSchedules(func(sch domain.ScheduledTransaction) bool {
		return sch.UserID == userID && (status == nil || sch.Status == *status)
	})
	return page(out, limit, offset), nil
}

func (s *Store) ListSchedulesByFromAccount(ctx context.Context, accountNumber string) ([]domain.ScheduledTransaction, error) {
	defer s.lock(ctx)()
	return s.sortedSchedules(func(sch domain.ScheduledTransaction) bool {
		return sch.FromAccountNumber == accountNumber
	}), nil
}

func (s *Store) FindDueSchedules(ctx context.Context, now time.Time, limit int) ([]domain.ScheduledTransaction, error) {
	defer s.lock(ctx)()
	due := s.sortedSchedules(func(sch domain.ScheduledTransaction) bool {
		if sch.Status != domain.ScheduleActive || sch.NextRunAt == nil || sch.NextRunAt.After(now) {
			return false
		}
		latest := s.latestRun(sch.ScheduleID)
		return latest == nil || latest.NextRetryAt == nil
	})
	sort.SliceStable(due, func(i, j int) bool { return due[i].NextRunAt.Before(*due[j].NextRunAt) })
	return page(due, limit, 0), nil
}

func (s *Store) ClaimSchedule(ctx context.Context, scheduleID int64, now time.Time) (bool, error) {
	defer s.lock(ctx)()
	sch, ok := s.data.schedules[scheduleID]
	if !ok || sch.Status != domain.ScheduleActive {
		return false, nil
	}
	sch.Status = domain.ScheduleRunning
	sch.UpdatedAt = now
	s.data.schedules[scheduleID] = sch
	return true, nil
}

func (s *Store) ReleaseSchedule(ctx context.Context, scheduleID int64, status domain.ScheduleStatus, lastRunAt, nextRunAt *time.Time, now time.Time) (bool, error) {
	defer s.lock(ctx)()
	sch, ok := s.data.schedules[scheduleID]
	if !ok || sch.Status != domain.ScheduleRunning {
		return false, nil
	}
	sch.Status = status
	sch.LastRunAt = lastRunAt
	sch.NextRunAt = nextRunAt
	sch.UpdatedAt = now
	s.data.schedules[scheduleID] = sch
	return true, nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}
