package domain

import (
	"fmt"
	"time"

	"github.com/dbbank/bank_backend/internal/apperrors"
	"github.com/shopspring/decimal"
)

// AbnRule is the heuristic that raised an alert.
type AbnRule string

const (
	RuleMultiTransferSameAccount AbnRule = "MULTI_TRANSFER_SAME_ACCOUNT"
	RuleDailyTotalExceeded       AbnRule = "DAILY_TOTAL_EXCEEDED"
	RuleNewReceiver              AbnRule = "NEW_RECEIVER"
)

// AbnTransfer is an append-only abnormality alert.
type AbnTransfer struct {
	AbnTransferID int64     `json:"abnTransferID"`
	TransactionID *int64    `json:"transactionID,omitempty"`
	AccountNumber string    `json:"accountNumber"`
	RuleCode      AbnRule   `json:"ruleCode"`
	Detail        string    `json:"detail"`
	CreatedAt     time.Time `json:"createdAt"`
}

// DailyLimitBreach is returned by the pre-transfer screen when a transfer would
// push the day's outgoing total past the active limit. It matches
// apperrors.ErrLimitExceeded.
type DailyLimitBreach struct {
	FromAccountNumber string
	ToAccountNumber   string
	DailyLimit        decimal.Decimal
	TodayTotal        decimal.Decimal
	Amount            decimal.Decimal
}

func (b *DailyLimitBreach) Error() string {
	return fmt.Sprintf("daily transfer limit %s exceeded for account %s: today %s + %s",
		b.DailyLimit.String(), b.FromAccountNumber, b.TodayTotal.String(), b.Amount.String())
}

func (b *DailyLimitBreach) Is(target error) bool {
	return target == apperrors.ErrLimitExceeded
}
