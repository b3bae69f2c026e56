package services_test

import (
	"context"
	"sync"
	"testing"

	"github.com/dbbank/bank_backend/internal/apperrors"
	"github.com/dbbank/bank_backend/internal/core/domain"
	"github.com/dbbank/bank_backend/internal/core/services"
	"github.com/dbbank/bank_backend/internal/utils/accounting"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeposit_CreditsAccountFromExternalIn(t *testing.T) {
	e := newEngine()
	e.seedAccount(t, "A-100", 1, 0)
	ctx := context.Background()

	tx, err := e.transfers.Deposit(ctx, 1, "A-100", dec(1000), "salary")
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionDeposit, tx.Type)
	assert.Equal(t, domain.ExternalInAccountNumber, tx.FromAccountNumber)
	assert.Equal(t, domain.TransactionSuccess, tx.Status)

	assert.True(t, e.balance(t, "A-100").Equal(dec(1000)))
	assert.True(t, e.balance(t, domain.ExternalInAccountNumber).Equal(dec(-1000)))
	assert.True(t, accounting.LedgerTotal(e.store.Accounts(ctx)).IsZero())

	logs, err := e.store.ListAuditLogsByTransaction(ctx, tx.TransactionID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, domain.AuditDeposit, logs[0].Action)
	assert.True(t, logs[0].BeforeBalance.IsZero())
	assert.True(t, logs[0].AfterBalance.Equal(dec(1000)))
}

func TestWithdraw_RequiresOwnership(t *testing.T) {
	e := newEngine()
	e.seedAccount(t, "A-100", 1, 500)
	ctx := context.Background()

	_, err := e.transfers.Withdraw(ctx, 2, "A-100", dec(100), "")
	require.ErrorIs(t, err, services.ErrAccountNotOwned)
	assert.Equal(t, apperrors.KindUnauthorized, apperrors.KindOf(err))

	tx, err := e.transfers.Withdraw(ctx, 1, "A-100", dec(100), "atm")
	require.NoError(t, err)
	assert.Equal(t, domain.ExternalOutAccountNumber, tx.ToAccountNumber)
	assert.True(t, e.balance(t, "A-100").Equal(dec(400)))
	assert.True(t, e.balance(t, domain.ExternalOutAccountNumber).Equal(dec(100)))
}

func TestTransfer_MovesBothLegsAtomically(t *testing.T) {
	e := newEngine()
	e.seedAccount(t, "A-100", 1, 1000)
	e.seedAccount(t, "B-200", 2, 0)
	ctx := context.Background()

	tx, err := e.transfers.Transfer(ctx, 1, "A-100", "B-200", dec(300), "rent")
	require.NoError(t, err)
	assert.True(t, e.balance(t, "A-100").Equal(dec(700)))
	assert.True(t, e.balance(t, "B-200").Equal(dec(300)))
	assert.Equal(t, baseTime, tx.CreatedAt)

	logs, err := e.store.ListAuditLogsByTransaction(ctx, tx.TransactionID)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	actions := []domain.AuditAction{logs[0].Action, logs[1].Action}
	assert.ElementsMatch(t, []domain.AuditAction{domain.AuditTransferDebit, domain.AuditTransferCredit}, actions)
}

func TestTransfer_InsufficientBalanceLeavesNoTrace(t *testing.T) {
	e := newEngine()
	e.seedAccount(t, "A-100", 1, 1000)
	e.seedAccount(t, "B-200", 2, 0)
	ctx := context.Background()

	_, err := e.transfers.Transfer(ctx, 1, "A-100", "B-200", dec(1500), "")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindInsufficientBalance, apperrors.KindOf(err))
	assert.True(t, e.balance(t, "A-100").Equal(dec(1000)))
	assert.True(t, e.balance(t, "B-200").IsZero())
	assert.Empty(t, e.store.Transactions(ctx))
}

func TestTransfer_Validation(t *testing.T) {
	e := newEngine()
	e.seedAccount(t, "A-100", 1, 1000)
	e.seedAccount(t, "B-200", 2, 0)
	ctx := context.Background()

	testCases := []struct {
		name     string
		from, to string
		amount   int64
		wantKind apperrors.Kind
	}{
		{"zero amount", "A-100", "B-200", 0, apperrors.KindValidation},
		{"negative amount", "A-100", "B-200", -5, apperrors.KindValidation},
		{"same account", "A-100", "A-100", 10, apperrors.KindValidation},
		{"unknown source", "Z-999", "B-200", 10, apperrors.KindNotFound},
		{"unknown target", "A-100", "Z-999", 10, apperrors.KindNotFound},
		{"sink as target", "A-100", domain.ExternalOutAccountNumber, 10, apperrors.KindValidation},
		{"foreign source", "B-200", "A-100", 10, apperrors.KindUnauthorized},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.transfers.Transfer(ctx, 1, tc.from, tc.to, dec(tc.amount), "")
			require.Error(t, err)
			assert.Equal(t, tc.wantKind, apperrors.KindOf(err))
		})
	}
	assert.Empty(t, e.store.Transactions(ctx))
}

func TestTransfer_OppositeDirectionsConcurrently(t *testing.T) {
	e := newEngine()
	e.seedAccount(t, "A-100", 1, 1000)
	e.seedAccount(t, "B-200", 2, 1000)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = e.transfers.Transfer(ctx, 1, "A-100", "B-200", dec(10), "")
		}()
		go func() {
			defer wg.Done()
			_, _ = e.transfers.Transfer(ctx, 2, "B-200", "A-100", dec(10), "")
		}()
	}
	wg.Wait()

	total := e.balance(t, "A-100").Add(e.balance(t, "B-200"))
	assert.True(t, total.Equal(dec(2000)))
	assert.Len(t, e.store.Transactions(ctx), 40)
}
