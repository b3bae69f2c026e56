package models

import (
	"github.com/shopspring/decimal"
)

// Account is a row of the accounts table.
type Account struct {
	AccountNumber string          `db:"account_number"`
	UserID        *int64          `db:"user_id"` // NULL for sink accounts
	AccountType   string          `db:"account_type"`
	Balance       decimal.Decimal `db:"balance"`
	AuditFields
}
