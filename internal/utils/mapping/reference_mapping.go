package mapping

import (
	"github.com/dbbank/bank_backend/internal/core/domain"
	"github.com/dbbank/bank_backend/internal/models"
)

// ToDomainTransferLimit converts a model TransferLimit to its domain form.
func ToDomainTransferLimit(m models.TransferLimit) domain.TransferLimit {
	return domain.TransferLimit{
		LimitID:             m.LimitID,
		AccountNumber:       m.AccountNumber,
		DailyLimit:          m.DailyLimit,
		PerTransactionLimit: m.PerTransactionLimit,
		StartDate:           m.StartDate,
		EndDate:             m.EndDate,
		Status:              domain.LimitStatus(m.Status),
		Note:                m.Note,
		AuditFields:         ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainAbnTransfer converts a model AbnTransfer to its domain form.
func ToDomainAbnTransfer(m models.AbnTransfer) domain.AbnTransfer {
	return domain.AbnTransfer{
		AbnTransferID: m.AbnTransferID,
		TransactionID: m.TransactionID,
		AccountNumber: m.AccountNumber,
		RuleCode:      domain.AbnRule(m.RuleCode),
		Detail:        m.Detail,
		CreatedAt:     m.CreatedAt,
	}
}

// ToDomainFailureReason converts a model TransferFailureReason to its domain form.
func ToDomainFailureReason(m models.TransferFailureReason) domain.TransferFailureReason {
	return domain.TransferFailureReason{Code: m.Code, Description: m.Description}
}
