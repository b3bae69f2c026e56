package recurrence

import (
	"time"

	"github.com/dbbank/bank_backend/internal/core/domain"
)

// NextOccurrence returns the occurrence following ref, or false when the
// schedule has none (ONCE, or an unparsable custom rule).
func NextOccurrence(freq domain.Frequency, rule string, ref time.Time) (time.Time, bool) {
	switch freq {
	case domain.FrequencyOnce:
		return time.Time{}, false
	case domain.FrequencyDaily:
		return ref.AddDate(0, 0, 1), true
	case domain.FrequencyWeekly:
		return ref.AddDate(0, 0, 7), true
	case domain.FrequencyMonthly:
		return AddMonths(ref, 1), true
	case domain.FrequencyCustom:
		r, err := ParseRule(rule)
		if err != nil {
			return time.Time{}, false
		}
		return r.Next(ref), true
	}
	return time.Time{}, false
}

// Next returns the occurrence after ref. An unaligned ref is first snapped to
// the nearest BYDAY/BYMONTHDAY slot without applying INTERVAL.
func (r Rule) Next(ref time.Time) time.Time {
	switch r.Freq {
	case FreqMinutely:
		return ref.Add(time.Duration(r.Interval) * time.Minute)
	case FreqDaily:
		return ref.AddDate(0, 0, r.Interval)
	case FreqWeekly:
		if len(r.ByDay) == 0 || r.hasByDay(ref.Weekday()) {
			return ref.AddDate(0, 0, 7*r.Interval)
		}
		return r.alignByDay(ref)
	case FreqMonthly:
		if r.ByMonthDay == 0 {
			return AddMonths(ref, r.Interval)
		}
		if r.IsAligned(ref) {
			return r.onMonthDay(AddMonths(firstOfMonth(ref), r.Interval))
		}
		return r.alignMonthDay(ref)
	}
	return ref
}

func (r Rule) alignByDay(ref time.Time) time.Time {
	for i := 1; i <= 7; i++ {
		candidate := ref.AddDate(0, 0, i)
		if r.hasByDay(candidate.Weekday()) {
			return candidate
		}
	}
	return ref.AddDate(0, 0, 7)
}

func (r Rule) alignMonthDay(ref time.Time) time.Time {
	if ref.Day() < clampDay(ref.Year(), ref.Month(), r.ByMonthDay) {
		return r.onMonthDay(ref)
	}
	return r.onMonthDay(AddMonths(firstOfMonth(ref), 1))
}

// onMonthDay moves t to BYMONTHDAY of t's month, clamped to its length.
func (r Rule) onMonthDay(t time.Time) time.Time {
	day := clampDay(t.Year(), t.Month(), r.ByMonthDay)
	return time.Date(t.Year(), t.Month(), day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// FirstOccurrence returns the first slot at or after start: start itself when
// aligned, else the alignment step of the rule.
func FirstOccurrence(freq domain.Frequency, rule string, start time.Time) time.Time {
	if freq != domain.FrequencyCustom {
		return start
	}
	r, err := ParseRule(rule)
	if err != nil || r.IsAligned(start) {
		return start
	}
	return r.Next(start)
}

// AddMonths adds n calendar months keeping the time of day. A day past the end
// of the target month clamps to its last day (Jan 31 + 1 month = Feb 28/29).
func AddMonths(t time.Time, n int) time.Time {
	first := time.Date(t.Year(), t.Month()+time.Month(n), 1, 0, 0, 0, 0, t.Location())
	day := clampDay(first.Year(), first.Month(), t.Day())
	return time.Date(first.Year(), first.Month(), day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func firstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func clampDay(year int, month time.Month, day int) int {
	if n := daysIn(year, month); day > n {
		return n
	}
	return day
}
