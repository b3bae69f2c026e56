package domain_test

import (
	"errors"
	"testing"
	"time"

	"github.com/dbbank/bank_backend/internal/apperrors"
	"github.com/dbbank/bank_backend/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransaction_IsValid(t *testing.T) {
	tests := []struct {
		name string
		tx   domain.Transaction
		want bool
	}{
		{
			name: "valid transfer",
			tx: domain.Transaction{
				FromAccountNumber: "100-1",
				ToAccountNumber:   "100-2",
				Type:              domain.TransactionTransfer,
				Amount:            decimal.NewFromInt(100),
			},
			want: true,
		},
		{
			name: "zero amount",
			tx: domain.Transaction{
				FromAccountNumber: "100-1",
				ToAccountNumber:   "100-2",
				Type:              domain.TransactionTransfer,
				Amount:            decimal.Zero,
			},
			want: false,
		},
		{
			name: "negative amount",
			tx: domain.Transaction{
				FromAccountNumber: domain.ExternalInAccountNumber,
				ToAccountNumber:   "100-2",
				Type:              domain.TransactionDeposit,
				Amount:            decimal.NewFromInt(-5),
			},
			want: false,
		},
		{
			name: "transfer to self",
			tx: domain.Transaction{
				FromAccountNumber: "100-1",
				ToAccountNumber:   "100-1",
				Type:              domain.TransactionTransfer,
				Amount:            decimal.NewFromInt(10),
			},
			want: false,
		},
		{
			name: "missing leg",
			tx: domain.Transaction{
				FromAccountNumber: "100-1",
				Type:              domain.TransactionWithdrawal,
				Amount:            decimal.NewFromInt(10),
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.tx.IsValid())
		})
	}
}

func TestAccount_OwnershipAndFunds(t *testing.T) {
	acc := domain.Account{AccountNumber: "100-1", UserID: 7, AccountType: domain.AccountNormal, Balance: decimal.NewFromInt(1000)}
	sink := domain.Account{AccountNumber: domain.ExternalInAccountNumber, AccountType: domain.AccountExternalIn}

	assert.True(t, acc.IsOwnedBy(7))
	assert.False(t, acc.IsOwnedBy(8))
	assert.False(t, sink.IsOwnedBy(0))
	assert.True(t, acc.CanDebit(decimal.NewFromInt(1000)))
	assert.False(t, acc.CanDebit(decimal.NewFromInt(1500)))
}

func TestRunTime_ParseAndOn(t *testing.T) {
	rt, err := domain.ParseRunTime("07:05")
	require.NoError(t, err)
	assert.Equal(t, "07:05", rt.String())

	day := time.Date(2024, 3, 10, 22, 47, 13, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 3, 10, 7, 5, 0, 0, time.UTC), rt.On(day))

	_, err = domain.ParseRunTime("25:00")
	assert.Error(t, err)
}

func TestScheduledTransaction_EndsBefore(t *testing.T) {
	end := time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC)
	s := domain.ScheduledTransaction{EndDate: &end}

	assert.False(t, s.EndsBefore(time.Date(2024, 5, 31, 23, 59, 0, 0, time.UTC)))
	assert.True(t, s.EndsBefore(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, domain.ScheduledTransaction{}.EndsBefore(time.Now()))
}

func TestTransferLimit_AppliesAt(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	l := domain.TransferLimit{Status: domain.LimitActive, StartDate: start, EndDate: &end}

	assert.True(t, l.AppliesAt(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, l.AppliesAt(time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)))
	assert.False(t, l.AppliesAt(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)))

	l.Status = domain.LimitInactive
	assert.False(t, l.AppliesAt(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)))
}

func TestDailyLimitBreach_MatchesLimitExceeded(t *testing.T) {
	var err error = &domain.DailyLimitBreach{
		FromAccountNumber: "100-1",
		DailyLimit:        decimal.NewFromInt(500),
		TodayTotal:        decimal.NewFromInt(400),
		Amount:            decimal.NewFromInt(200),
	}
	assert.True(t, errors.Is(err, apperrors.ErrLimitExceeded))
	assert.Equal(t, apperrors.KindLimitExceeded, apperrors.KindOf(err))
}
