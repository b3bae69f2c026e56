package domain

import (
	"github.com/shopspring/decimal"
)

// AccountType distinguishes customer accounts from the virtual counter-leg sinks.
type AccountType string

const (
	AccountNormal      AccountType = "NORMAL"
	AccountExternalIn  AccountType = "EXTERNAL_IN"
	AccountExternalOut AccountType = "EXTERNAL_OUT"
)

// Account numbers of the two singleton sink accounts seeded with the schema.
const (
	ExternalInAccountNumber  = "EXTERNAL-IN"
	ExternalOutAccountNumber = "EXTERNAL-OUT"
)

// Account is a ledger account keyed by its account number.
type Account struct {
	AccountNumber string          `json:"accountNumber"`
	UserID        int64           `json:"userID"` // zero for sink accounts
	AccountType   AccountType     `json:"accountType"`
	Balance       decimal.Decimal `json:"balance"`
	AuditFields
}

// IsNormal reports whether the account belongs to a customer.
func (a Account) IsNormal() bool {
	return a.AccountType == AccountNormal
}

// IsOwnedBy reports whether userID owns the account. Sink accounts have no owner.
func (a Account) IsOwnedBy(userID int64) bool {
	return a.IsNormal() && a.UserID == userID
}

// CanDebit reports whether the balance covers amount.
func (a Account) CanDebit(amount decimal.Decimal) bool {
	return a.Balance.GreaterThanOrEqual(amount)
}
