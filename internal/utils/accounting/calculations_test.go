package accounting_test

import (
	"testing"

	"github.com/dbbank/bank_backend/internal/core/domain"
	"github.com/dbbank/bank_backend/internal/utils/accounting"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPost(t *testing.T) {
	a := domain.Account{AccountNumber: "A", AccountType: domain.AccountNormal, Balance: decimal.NewFromInt(1000)}
	b := domain.Account{AccountNumber: "B", AccountType: domain.AccountNormal, Balance: decimal.NewFromInt(50)}
	sink := domain.Account{AccountNumber: domain.ExternalInAccountNumber, AccountType: domain.AccountExternalIn}

	debit, credit, err := accounting.Post(a, b, decimal.NewFromInt(300))
	require.NoError(t, err)
	assert.True(t, debit.After.Equal(decimal.NewFromInt(700)))
	assert.True(t, credit.After.Equal(decimal.NewFromInt(350)))
	assert.True(t, debit.Before.Add(credit.Before).Equal(debit.After.Add(credit.After)))

	_, _, err = accounting.Post(a, b, decimal.NewFromInt(1500))
	assert.Error(t, err)

	_, _, err = accounting.Post(a, b, decimal.Zero)
	assert.Error(t, err)

	_, _, err = accounting.Post(a, a, decimal.NewFromInt(1))
	assert.Error(t, err)

	debit, _, err = accounting.Post(sink, a, decimal.NewFromInt(10))
	require.NoError(t, err)
	assert.True(t, debit.After.Equal(decimal.NewFromInt(-10)))
}

func TestLedgerTotal(t *testing.T) {
	accounts := []domain.Account{
		{Balance: decimal.NewFromInt(10)},
		{Balance: decimal.NewFromInt(-4)},
		{Balance: decimal.RequireFromString("0.50")},
	}
	assert.True(t, accounting.LedgerTotal(accounts).Equal(decimal.RequireFromString("6.5")))
}
