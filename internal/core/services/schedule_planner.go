package services

import (
	"time"

	"github.com/dbbank/bank_backend/internal/core/domain"
	"github.com/dbbank/bank_backend/internal/utils/recurrence"
)

// maxRollForward bounds how many occurrences the planner skips to catch up
// with now. A daily schedule paused for years stays well inside it.
const maxRollForward = 10000

func isMinutely(s domain.ScheduledTransaction) bool {
	if s.Frequency != domain.FrequencyCustom {
		return false
	}
	rule, err := recurrence.ParseRule(s.RecurrenceRule)
	return err == nil && rule.IsMinutely()
}

// planNextRun returns the next execution instant of s relative to now, or
// false when the schedule has no further occurrence. With afterRun the result
// is strictly after now, otherwise at or after now.
//
// A schedule that never ran starts from its first slot (start date at run
// time, snapped to the rule). Otherwise the anchor is the last run's date at
// the configured run time, so a late sweep does not drift the cadence.
func planNextRun(s domain.ScheduledTransaction, now time.Time, loc *time.Location, afterRun bool) (time.Time, bool) {
	if isMinutely(s) {
		rule, _ := recurrence.ParseRule(s.RecurrenceRule)
		next := rule.Next(now)
		return next, !s.EndsBefore(next)
	}

	due := func(t time.Time) bool {
		if afterRun {
			return t.After(now)
		}
		return !t.Before(now)
	}

	var candidate time.Time
	if s.LastRunAt == nil {
		// a DATE column comes back as UTC midnight; keep its calendar day
		y, m, d := s.StartDate.Date()
		start := time.Date(y, m, d, 0, 0, 0, 0, loc)
		candidate = recurrence.FirstOccurrence(s.Frequency, s.RecurrenceRule, s.RunTime.On(start))
		if s.Frequency == domain.FrequencyOnce {
			if !due(candidate) {
				candidate = now
			}
			if s.EndsBefore(candidate) {
				return time.Time{}, false
			}
			return candidate, true
		}
	} else {
		anchor := s.RunTime.On(s.LastRunAt.In(loc))
		next, ok := recurrence.NextOccurrence(s.Frequency, s.RecurrenceRule, anchor)
		if !ok {
			return time.Time{}, false
		}
		candidate = next
	}

	for i := 0; !due(candidate); i++ {
		if i >= maxRollForward || s.EndsBefore(candidate) {
			return time.Time{}, false
		}
		next, ok := recurrence.NextOccurrence(s.Frequency, s.RecurrenceRule, candidate)
		if !ok {
			return time.Time{}, false
		}
		candidate = next
	}
	if s.EndsBefore(candidate) {
		return time.Time{}, false
	}
	return candidate, true
}

// applyPlan sets next_run_at from planNextRun and moves a schedule without
// further occurrences to COMPLETED.
func applyPlan(s *domain.ScheduledTransaction, next time.Time, ok bool) {
	if !ok {
		s.NextRunAt = nil
		s.Status = domain.ScheduleCompleted
		return
	}
	s.NextRunAt = &next
}
