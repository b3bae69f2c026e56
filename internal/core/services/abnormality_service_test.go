package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/dbbank/bank_backend/internal/apperrors"
	"github.com/dbbank/bank_backend/internal/core/domain"
	"github.com/dbbank/bank_backend/internal/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ruleCodes(alerts []domain.AbnTransfer) []domain.AbnRule {
	codes := make([]domain.AbnRule, len(alerts))
	for i, a := range alerts {
		codes[i] = a.RuleCode
	}
	return codes
}

func TestPostCheck_NewReceiverAndVelocity(t *testing.T) {
	e := newEngine()
	e.seedAccount(t, "A-100", 1, 1000)
	e.seedAccount(t, "B-200", 2, 0)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := e.transfers.Transfer(ctx, 1, "A-100", "B-200", dec(50), "")
		require.NoError(t, err)
		e.clock.Advance(time.Minute)
	}
	alerts, err := e.abnormality.ListAlerts(ctx, "A-100", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, []domain.AbnRule{domain.RuleNewReceiver}, ruleCodes(alerts))

	third, err := e.transfers.Transfer(ctx, 1, "A-100", "B-200", dec(50), "")
	require.NoError(t, err)

	alerts, err = e.abnormality.ListAlerts(ctx, "A-100", 10, 0)
	require.NoError(t, err)
	assert.ElementsMatch(t, []domain.AbnRule{domain.RuleNewReceiver, domain.RuleMultiTransferSameAccount}, ruleCodes(alerts))
	for _, a := range alerts {
		if a.RuleCode == domain.RuleMultiTransferSameAccount {
			require.NotNil(t, a.TransactionID)
			assert.Equal(t, third.TransactionID, *a.TransactionID)
		}
	}

	// same sender and amount in the window, but another receiver
	e.seedAccount(t, "C-300", 3, 0)
	fourth, err := e.transfers.Transfer(ctx, 1, "A-100", "C-300", dec(50), "")
	require.NoError(t, err)

	alerts, err = e.abnormality.ListAlerts(ctx, "A-100", 10, 0)
	require.NoError(t, err)
	assert.ElementsMatch(t, []domain.AbnRule{domain.RuleNewReceiver, domain.RuleMultiTransferSameAccount, domain.RuleNewReceiver}, ruleCodes(alerts))
	var fourthRules []domain.AbnRule
	for _, a := range alerts {
		if a.TransactionID != nil && *a.TransactionID == fourth.TransactionID {
			fourthRules = append(fourthRules, a.RuleCode)
		}
	}
	assert.Equal(t, []domain.AbnRule{domain.RuleNewReceiver}, fourthRules)
}

func TestPostCheck_VelocityWindowExpires(t *testing.T) {
	e := newEngine()
	e.seedAccount(t, "A-100", 1, 1000)
	e.seedAccount(t, "B-200", 2, 0)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := e.transfers.Transfer(ctx, 1, "A-100", "B-200", dec(50), "")
		require.NoError(t, err)
		e.clock.Advance(6 * time.Minute)
	}
	alerts, err := e.abnormality.ListAlerts(ctx, "A-100", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, []domain.AbnRule{domain.RuleNewReceiver}, ruleCodes(alerts))
}

func TestPreCheck_DailyLimitBlocksAndAlerts(t *testing.T) {
	e := newEngine()
	e.seedAccount(t, "A-100", 1, 1000)
	e.seedAccount(t, "B-200", 2, 0)
	ctx := context.Background()

	_, err := e.limits.CreateLimit(ctx, dto.CreateTransferLimitRequest{AccountNumber: "A-100", DailyLimit: dec(500)})
	require.NoError(t, err)

	_, err = e.transfers.Transfer(ctx, 1, "A-100", "B-200", dec(300), "")
	require.NoError(t, err)

	_, err = e.transfers.Transfer(ctx, 1, "A-100", "B-200", dec(300), "")
	require.ErrorIs(t, err, apperrors.ErrLimitExceeded)
	assert.Equal(t, apperrors.KindLimitExceeded, apperrors.KindOf(err))
	assert.True(t, e.balance(t, "A-100").Equal(dec(700)))
	assert.Len(t, e.store.Transactions(ctx), 1)

	alerts, err := e.abnormality.ListAlerts(ctx, "A-100", 10, 0)
	require.NoError(t, err)
	var blocked []domain.AbnTransfer
	for _, a := range alerts {
		if a.RuleCode == domain.RuleDailyTotalExceeded {
			blocked = append(blocked, a)
		}
	}
	require.Len(t, blocked, 1)
	assert.Nil(t, blocked[0].TransactionID)

	// the total resets at local midnight
	e.clock.Set(time.Date(2024, 5, 16, 0, 5, 0, 0, time.UTC))
	_, err = e.transfers.Transfer(ctx, 1, "A-100", "B-200", dec(300), "")
	require.NoError(t, err)
}

func TestPreCheck_DepositIgnoresLimit(t *testing.T) {
	e := newEngine()
	e.seedAccount(t, "A-100", 1, 0)
	ctx := context.Background()

	_, err := e.limits.CreateLimit(ctx, dto.CreateTransferLimitRequest{AccountNumber: "A-100", DailyLimit: dec(10)})
	require.NoError(t, err)
	_, err = e.transfers.Deposit(ctx, 1, "A-100", dec(1000), "")
	require.NoError(t, err)
}

func TestTransferLimit_ReplacesActiveLimit(t *testing.T) {
	e := newEngine()
	e.seedAccount(t, "A-100", 1, 0)
	ctx := context.Background()

	first, err := e.limits.CreateLimit(ctx, dto.CreateTransferLimitRequest{AccountNumber: "A-100", DailyLimit: dec(500)})
	require.NoError(t, err)
	second, err := e.limits.CreateLimit(ctx, dto.CreateTransferLimitRequest{
		AccountNumber: "A-100",
		DailyLimit:    dec(800),
		EndDate:       strPtr("2024-12-31"),
	})
	require.NoError(t, err)

	active, err := e.limits.GetActiveLimit(ctx, "A-100")
	require.NoError(t, err)
	assert.Equal(t, second.LimitID, active.LimitID)

	history, err := e.limits.ListLimitHistory(ctx, "A-100")
	require.NoError(t, err)
	require.Len(t, history, 2)
	for _, l := range history {
		if l.LimitID == first.LimitID {
			assert.Equal(t, domain.LimitInactive, l.Status)
		}
	}

	_, err = e.limits.CreateLimit(ctx, dto.CreateTransferLimitRequest{AccountNumber: "Z-999", DailyLimit: dec(1)})
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))

	_, err = e.limits.CreateLimit(ctx, dto.CreateTransferLimitRequest{
		AccountNumber: "A-100",
		StartDate:     strPtr("2024-06-10"),
		EndDate:       strPtr("2024-06-01"),
	})
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestFailureReasons(t *testing.T) {
	e := newEngine()
	ctx := context.Background()

	reasons, err := e.reasons.ListReasons(ctx)
	require.NoError(t, err)
	assert.Len(t, reasons, 4)

	_, err = e.reasons.CreateReason(ctx, dto.CreateFailureReasonRequest{Code: "ACCOUNT_CLOSED", Description: "Account closed"})
	require.NoError(t, err)
	got, err := e.reasons.GetReason(ctx, "ACCOUNT_CLOSED")
	require.NoError(t, err)
	assert.Equal(t, "Account closed", got.Description)

	_, err = e.reasons.CreateReason(ctx, dto.CreateFailureReasonRequest{Code: "ACCOUNT_CLOSED", Description: "again"})
	assert.ErrorIs(t, err, apperrors.ErrDuplicate)

	_, err = e.reasons.GetReason(ctx, "NOPE")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
