package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Frequency is the recurrence kind of a schedule.
type Frequency string

const (
	FrequencyOnce    Frequency = "ONCE"
	FrequencyDaily   Frequency = "DAILY"
	FrequencyWeekly  Frequency = "WEEKLY"
	FrequencyMonthly Frequency = "MONTHLY"
	FrequencyCustom  Frequency = "CUSTOM"
)

// IsValid reports whether f is a known frequency.
func (f Frequency) IsValid() bool {
	switch f {
	case FrequencyOnce, FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyCustom:
		return true
	}
	return false
}

// ScheduleStatus is the lifecycle state of a schedule.
type ScheduleStatus string

const (
	ScheduleActive    ScheduleStatus = "ACTIVE"
	ScheduleRunning   ScheduleStatus = "RUNNING"
	SchedulePaused    ScheduleStatus = "PAUSED"
	ScheduleCanceled  ScheduleStatus = "CANCELED"
	ScheduleCompleted ScheduleStatus = "COMPLETED"
	ScheduleFailed    ScheduleStatus = "FAILED"
)

// IsTerminal reports whether no further transition is possible.
func (s ScheduleStatus) IsTerminal() bool {
	return s == ScheduleCanceled || s == ScheduleCompleted || s == ScheduleFailed
}

// RunTime is a wall-clock time of day, serialized as "HH:MM".
type RunTime struct {
	Hour   int
	Minute int
}

// DefaultRunTime is used when a schedule is created without a run time.
var DefaultRunTime = RunTime{Hour: 9, Minute: 30}

// ParseRunTime parses "HH:MM" (24h).
func ParseRunTime(s string) (RunTime, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return RunTime{}, fmt.Errorf("invalid run time %q: expected HH:MM", s)
	}
	return RunTime{Hour: t.Hour(), Minute: t.Minute()}, nil
}

func (r RunTime) String() string {
	return fmt.Sprintf("%02d:%02d", r.Hour, r.Minute)
}

// On returns the instant at this time of day on the calendar date of day.
func (r RunTime) On(day time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, r.Hour, r.Minute, 0, 0, day.Location())
}

func (r RunTime) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *RunTime) UnmarshalText(b []byte) error {
	parsed, err := ParseRunTime(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// ScheduledTransaction is a recurring transfer intent.
type ScheduledTransaction struct {
	ScheduleID        int64           `json:"scheduleID"`
	UserID            int64           `json:"userID"`
	FromAccountNumber string          `json:"fromAccountNumber"`
	ToAccountNumber   string          `json:"toAccountNumber"`
	Amount            decimal.Decimal `json:"amount"`
	Frequency         Frequency       `json:"frequency"`
	RecurrenceRule    string          `json:"recurrenceRule,omitempty"`
	StartDate         time.Time       `json:"startDate"`
	EndDate           *time.Time      `json:"endDate,omitempty"`
	RunTime           RunTime         `json:"runTime"`
	NextRunAt         *time.Time      `json:"nextRunAt,omitempty"`
	LastRunAt         *time.Time      `json:"lastRunAt,omitempty"`
	Status            ScheduleStatus  `json:"status"`
	Memo              string          `json:"memo"`
	AuditFields
}

// IsOwnedBy reports whether userID created the schedule.
func (s ScheduledTransaction) IsOwnedBy(userID int64) bool {
	return s.UserID == userID
}

// EndsBefore reports whether t falls after the last calendar day of the schedule.
func (s ScheduledTransaction) EndsBefore(t time.Time) bool {
	if s.EndDate == nil {
		return false
	}
	y, m, d := s.EndDate.Date()
	endExclusive := time.Date(y, m, d+1, 0, 0, 0, 0, t.Location())
	return !t.Before(endExclusive)
}
