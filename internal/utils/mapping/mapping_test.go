package mapping_test

import (
	"testing"
	"time"

	"github.com/dbbank/bank_backend/internal/core/domain"
	"github.com/dbbank/bank_backend/internal/models"
	"github.com/dbbank/bank_backend/internal/utils/mapping"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountMapping_SinkHasNoOwner(t *testing.T) {
	sink := domain.Account{AccountNumber: domain.ExternalOutAccountNumber, AccountType: domain.AccountExternalOut}
	m := mapping.ToModelAccount(sink)
	assert.Nil(t, m.UserID)

	owned := mapping.ToDomainAccount(models.Account{AccountNumber: "100-1", UserID: ptr(int64(9)), AccountType: "NORMAL", Balance: decimal.NewFromInt(5)})
	assert.Equal(t, int64(9), owned.UserID)
	assert.True(t, owned.IsNormal())
}

func TestToDomainSchedule(t *testing.T) {
	rule := "FREQ=WEEKLY;BYDAY=MO"
	m := models.ScheduledTransaction{
		ScheduleID:     3,
		Frequency:      "CUSTOM",
		RecurrenceRule: &rule,
		StartDate:      time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
		RunTime:        "18:45",
		Status:         "ACTIVE",
	}

	d, err := mapping.ToDomainSchedule(m)
	require.NoError(t, err)
	assert.Equal(t, rule, d.RecurrenceRule)
	assert.Equal(t, domain.RunTime{Hour: 18, Minute: 45}, d.RunTime)

	m.RunTime = "bogus"
	_, err = mapping.ToDomainSchedule(m)
	assert.Error(t, err)
}

func ptr[T any](v T) *T { return &v }
