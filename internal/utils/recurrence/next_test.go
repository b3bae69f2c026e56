package recurrence_test

import (
	"testing"
	"time"

	"github.com/dbbank/bank_backend/internal/core/domain"
	"github.com/dbbank/bank_backend/internal/utils/recurrence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, time.UTC)
}

func TestNextOccurrence(t *testing.T) {
	tests := []struct {
		name   string
		freq   domain.Frequency
		rule   string
		ref    time.Time
		want   time.Time
		wantOK bool
	}{
		{"once has no next", domain.FrequencyOnce, "", at(2024, 3, 1, 9, 30), time.Time{}, false},
		{"daily", domain.FrequencyDaily, "", at(2024, 2, 28, 9, 30), at(2024, 2, 29, 9, 30), true},
		{"weekly", domain.FrequencyWeekly, "", at(2024, 3, 6, 9, 30), at(2024, 3, 13, 9, 30), true},
		{"monthly keeps time of day", domain.FrequencyMonthly, "", at(2024, 3, 15, 18, 5), at(2024, 4, 15, 18, 5), true},
		{"monthly clamps jan 31", domain.FrequencyMonthly, "", at(2023, 1, 31, 9, 30), at(2023, 2, 28, 9, 30), true},
		{"monthly clamps jan 31 leap", domain.FrequencyMonthly, "", at(2024, 1, 31, 9, 30), at(2024, 2, 29, 9, 30), true},
		{"minutely", domain.FrequencyCustom, "FREQ=MINUTELY;INTERVAL=5", at(2024, 3, 1, 9, 58), at(2024, 3, 1, 10, 3), true},
		{"custom daily interval", domain.FrequencyCustom, "FREQ=DAILY;INTERVAL=3", at(2024, 3, 30, 9, 30), at(2024, 4, 2, 9, 30), true},
		{"custom weekly no byday", domain.FrequencyCustom, "FREQ=WEEKLY;INTERVAL=2", at(2024, 3, 6, 9, 30), at(2024, 3, 20, 9, 30), true},
		{"byday aligned advances interval weeks", domain.FrequencyCustom, "FREQ=WEEKLY;INTERVAL=2;BYDAY=MO,WE,FR", at(2024, 3, 6, 9, 30), at(2024, 3, 20, 9, 30), true},
		{"byday unaligned sunday snaps to monday", domain.FrequencyCustom, "FREQ=WEEKLY;INTERVAL=2;BYDAY=MO,WE,FR", at(2024, 3, 10, 9, 30), at(2024, 3, 11, 9, 30), true},
		{"byday unaligned thursday snaps to friday", domain.FrequencyCustom, "FREQ=WEEKLY;BYDAY=MO,FR", at(2024, 3, 7, 9, 30), at(2024, 3, 8, 9, 30), true},
		{"bymonthday 31 clamps in february", domain.FrequencyCustom, "FREQ=MONTHLY;BYMONTHDAY=31", at(2024, 1, 31, 9, 30), at(2024, 2, 29, 9, 30), true},
		{"bymonthday 31 from clamped february", domain.FrequencyCustom, "FREQ=MONTHLY;BYMONTHDAY=31", at(2023, 2, 28, 9, 30), at(2023, 3, 31, 9, 30), true},
		{"bymonthday 31 in april", domain.FrequencyCustom, "FREQ=MONTHLY;BYMONTHDAY=31", at(2024, 3, 31, 9, 30), at(2024, 4, 30, 9, 30), true},
		{"bymonthday align same month", domain.FrequencyCustom, "FREQ=MONTHLY;INTERVAL=3;BYMONTHDAY=20", at(2024, 5, 4, 9, 30), at(2024, 5, 20, 9, 30), true},
		{"bymonthday align next month", domain.FrequencyCustom, "FREQ=MONTHLY;BYMONTHDAY=10", at(2024, 5, 14, 9, 30), at(2024, 6, 10, 9, 30), true},
		{"bymonthday aligned interval", domain.FrequencyCustom, "FREQ=MONTHLY;INTERVAL=2;BYMONTHDAY=10", at(2024, 11, 10, 9, 30), at(2025, 1, 10, 9, 30), true},
		{"custom monthly no bymonthday", domain.FrequencyCustom, "FREQ=MONTHLY;INTERVAL=2", at(2024, 12, 31, 9, 30), at(2025, 2, 28, 9, 30), true},
		{"missing freq", domain.FrequencyCustom, "INTERVAL=2", at(2024, 3, 1, 9, 30), time.Time{}, false},
		{"unknown freq", domain.FrequencyCustom, "FREQ=YEARLY", at(2024, 3, 1, 9, 30), time.Time{}, false},
		{"unknown frequency", domain.Frequency("HOURLY"), "", at(2024, 3, 1, 9, 30), time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := recurrence.NextOccurrence(tt.freq, tt.rule, tt.ref)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestNextOccurrence_Deterministic(t *testing.T) {
	ref := at(2024, 1, 31, 9, 30)
	first, ok := recurrence.NextOccurrence(domain.FrequencyCustom, "FREQ=MONTHLY;BYMONTHDAY=31", ref)
	require.True(t, ok)
	for i := 0; i < 5; i++ {
		again, ok := recurrence.NextOccurrence(domain.FrequencyCustom, "FREQ=MONTHLY;BYMONTHDAY=31", ref)
		require.True(t, ok)
		assert.Equal(t, first, again)
	}
}

func TestFirstOccurrence(t *testing.T) {
	wednesday := at(2024, 3, 6, 9, 30)
	sunday := at(2024, 3, 10, 9, 30)

	assert.Equal(t, wednesday, recurrence.FirstOccurrence(domain.FrequencyCustom, "FREQ=WEEKLY;BYDAY=MO,WE,FR", wednesday))
	assert.Equal(t, at(2024, 3, 11, 9, 30), recurrence.FirstOccurrence(domain.FrequencyCustom, "FREQ=WEEKLY;BYDAY=MO,WE,FR", sunday))
	assert.Equal(t, at(2024, 3, 15, 9, 30), recurrence.FirstOccurrence(domain.FrequencyCustom, "FREQ=MONTHLY;BYMONTHDAY=15", at(2024, 3, 2, 9, 30)))
	assert.Equal(t, sunday, recurrence.FirstOccurrence(domain.FrequencyDaily, "", sunday))
}

func TestParseRule(t *testing.T) {
	r, err := recurrence.ParseRule(" freq=weekly ; interval=2 ; byday=mo,fr,mo ")
	require.NoError(t, err)
	assert.Equal(t, recurrence.FreqWeekly, r.Freq)
	assert.Equal(t, 2, r.Interval)
	assert.Equal(t, []time.Weekday{time.Monday, time.Friday}, r.ByDay)

	r, err = recurrence.ParseRule("FREQ=MINUTELY")
	require.NoError(t, err)
	assert.True(t, r.IsMinutely())
	assert.Equal(t, 1, r.Interval)

	_, err = recurrence.ParseRule("")
	assert.ErrorIs(t, err, recurrence.ErrEmptyRule)
	_, err = recurrence.ParseRule("FREQ=DAILY;INTERVAL=0")
	assert.ErrorIs(t, err, recurrence.ErrInvalidInterval)
	_, err = recurrence.ParseRule("FREQ=WEEKLY;BYDAY=XX")
	assert.ErrorIs(t, err, recurrence.ErrInvalidByDay)
	_, err = recurrence.ParseRule("FREQ=MONTHLY;BYMONTHDAY=32")
	assert.ErrorIs(t, err, recurrence.ErrInvalidMonthDay)
	_, err = recurrence.ParseRule("BYDAY=MO")
	assert.ErrorIs(t, err, recurrence.ErrUnknownFreq)
	_, err = recurrence.ParseRule("FREQ")
	assert.Error(t, err)
}

func TestAddMonths(t *testing.T) {
	assert.Equal(t, at(2024, 4, 30, 8, 0), recurrence.AddMonths(at(2024, 3, 31, 8, 0), 1))
	assert.Equal(t, at(2025, 1, 31, 8, 0), recurrence.AddMonths(at(2024, 12, 31, 8, 0), 1))
	assert.Equal(t, at(2025, 2, 28, 8, 0), recurrence.AddMonths(at(2024, 2, 29, 8, 0), 12))
}
