package services

import (
	"testing"
	"time"

	"github.com/dbbank/bank_backend/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanNextRun_StartDateKeepsCalendarDay(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	now := time.Date(2024, 6, 1, 8, 0, 0, 0, ny)
	runTime := domain.RunTime{Hour: 9, Minute: 30}

	tests := []struct {
		name      string
		frequency domain.Frequency
		startDate time.Time
	}{
		// what pgx hands back for a DATE column
		{name: "daily from utc midnight", frequency: domain.FrequencyDaily, startDate: time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)},
		{name: "weekly from utc midnight", frequency: domain.FrequencyWeekly, startDate: time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)},
		{name: "daily from local midnight", frequency: domain.FrequencyDaily, startDate: time.Date(2024, 6, 10, 0, 0, 0, 0, ny)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := domain.ScheduledTransaction{
				Frequency: tt.frequency,
				StartDate: tt.startDate,
				RunTime:   runTime,
				Status:    domain.ScheduleActive,
			}
			next, ok := planNextRun(s, now, ny, false)
			require.True(t, ok)
			assert.True(t, time.Date(2024, 6, 10, 9, 30, 0, 0, ny).Equal(next), "got %s", next)
			assert.Equal(t, 10, next.In(ny).Day())
		})
	}
}

func TestPlanNextRun_AnchorsOnLastRunDay(t *testing.T) {
	lastRun := time.Date(2024, 5, 16, 23, 45, 0, 0, time.UTC)
	s := domain.ScheduledTransaction{
		Frequency: domain.FrequencyDaily,
		StartDate: time.Date(2024, 5, 16, 0, 0, 0, 0, time.UTC),
		RunTime:   domain.RunTime{Hour: 23, Minute: 45},
		LastRunAt: &lastRun,
		Status:    domain.ScheduleActive,
	}

	next, ok := planNextRun(s, time.Date(2024, 5, 17, 0, 5, 0, 0, time.UTC), time.UTC, true)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 5, 17, 23, 45, 0, 0, time.UTC), next)
}
