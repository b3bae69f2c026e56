package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the business category of a money movement.
type TransactionType string

const (
	TransactionDeposit    TransactionType = "DEPOSIT"
	TransactionWithdrawal TransactionType = "WITHDRAWAL"
	TransactionTransfer   TransactionType = "TRANSFER"
	TransactionFee        TransactionType = "FEE"
)

// TransactionStatus is the settlement state. Only SUCCESS is produced today;
// PENDING and FAILED are reserved for asynchronous settlement.
type TransactionStatus string

const (
	TransactionPending TransactionStatus = "PENDING"
	TransactionSuccess TransactionStatus = "SUCCESS"
	TransactionFailed  TransactionStatus = "FAILED"
)

// Transaction is an immutable two-legged money movement.
type Transaction struct {
	TransactionID     int64             `json:"transactionID"`
	FromAccountNumber string            `json:"fromAccountNumber"`
	ToAccountNumber   string            `json:"toAccountNumber"`
	Type              TransactionType   `json:"type"`
	Status            TransactionStatus `json:"status"`
	Amount            decimal.Decimal   `json:"amount"`
	Memo              string            `json:"memo"`
	CreatedAt         time.Time         `json:"createdAt"`
}

// IsValid checks the record-level invariants: positive amount, two legs and
// distinct legs for transfers.
func (t Transaction) IsValid() bool {
	if !t.Amount.IsPositive() {
		return false
	}
	if t.FromAccountNumber == "" || t.ToAccountNumber == "" {
		return false
	}
	if t.Type == TransactionTransfer && t.FromAccountNumber == t.ToAccountNumber {
		return false
	}
	return true
}
