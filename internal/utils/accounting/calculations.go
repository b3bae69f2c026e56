package accounting

import (
	"fmt"

	"github.com/dbbank/bank_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// Posting is the balance change applied to one account by one transaction leg.
type Posting struct {
	AccountNumber string
	Before        decimal.Decimal
	After         decimal.Decimal
}

// Post computes both legs of moving amount from debit to credit. Sink accounts
// may go negative; customer accounts may not.
func Post(debit, credit domain.Account, amount decimal.Decimal) (Posting, Posting, error) {
	if !amount.IsPositive() {
		return Posting{}, Posting{}, fmt.Errorf("amount must be positive, got %s", amount.String())
	}
	if debit.AccountNumber == credit.AccountNumber {
		return Posting{}, Posting{}, fmt.Errorf("debit and credit leg are the same account %s", debit.AccountNumber)
	}
	if debit.IsNormal() && !debit.CanDebit(amount) {
		return Posting{}, Posting{}, fmt.Errorf("account %s balance %s does not cover %s", debit.AccountNumber, debit.Balance.String(), amount.String())
	}

	debitLeg := Posting{AccountNumber: debit.AccountNumber, Before: debit.Balance, After: debit.Balance.Sub(amount)}
	creditLeg := Posting{AccountNumber: credit.AccountNumber, Before: credit.Balance, After: credit.Balance.Add(amount)}
	return debitLeg, creditLeg, nil
}

// LedgerTotal sums the balances of accounts, sinks included. Money movement
// never changes it.
func LedgerTotal(accounts []domain.Account) decimal.Decimal {
	total := decimal.Zero
	for _, a := range accounts {
		total = total.Add(a.Balance)
	}
	return total
}
