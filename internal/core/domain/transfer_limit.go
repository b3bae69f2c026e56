package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type LimitStatus string

const (
	LimitActive   LimitStatus = "ACTIVE"
	LimitInactive LimitStatus = "INACTIVE"
)

// TransferLimit is a per-account ceiling on outgoing transfers.
type TransferLimit struct {
	LimitID             int64           `json:"limitID"`
	AccountNumber       string          `json:"accountNumber"`
	DailyLimit          decimal.Decimal `json:"dailyLimit"`
	PerTransactionLimit decimal.Decimal `json:"perTransactionLimit"`
	StartDate           time.Time       `json:"startDate"`
	EndDate             *time.Time      `json:"endDate,omitempty"`
	Status              LimitStatus     `json:"status"`
	Note                string          `json:"note"`
	AuditFields
}

// AppliesAt reports whether the limit is ACTIVE and its validity window contains t.
func (l TransferLimit) AppliesAt(t time.Time) bool {
	if l.Status != LimitActive {
		return false
	}
	if t.Before(l.StartDate) {
		return false
	}
	return l.EndDate == nil || !t.After(*l.EndDate)
}
