package domain

// Failure reason codes seeded with the schema.
const (
	FailureInsufficientFunds  = "INSUFFICIENT_FUNDS"
	FailureAccountLocked      = "ACCOUNT_LOCKED"
	FailureDailyLimitExceeded = "DAILY_LIMIT_EXCEEDED"
	FailureRetryFailed        = "RETRY_FAILED"
)

// TransferFailureReason is an administrator-managed reason code.
type TransferFailureReason struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}
