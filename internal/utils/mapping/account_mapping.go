package mapping

import (
	"github.com/dbbank/bank_backend/internal/core/domain"
	"github.com/dbbank/bank_backend/internal/models"
)

// ToModelAccount converts a domain Account to a model Account
func ToModelAccount(d domain.Account) models.Account {
	m := models.Account{
		AccountNumber: d.AccountNumber,
		AccountType:   string(d.AccountType),
		Balance:       d.Balance,
		AuditFields:   ToModelAuditFields(d.AuditFields),
	}
	if d.UserID != 0 {
		userID := d.UserID
		m.UserID = &userID
	}
	return m
}

// ToDomainAccount converts a model Account to a domain Account
func ToDomainAccount(m models.Account) domain.Account {
	d := domain.Account{
		AccountNumber: m.AccountNumber,
		AccountType:   domain.AccountType(m.AccountType),
		Balance:       m.Balance,
		AuditFields:   ToDomainAuditFields(m.AuditFields),
	}
	if m.UserID != nil {
		d.UserID = *m.UserID
	}
	return d
}

// ToDomainTransaction converts a model Transaction to a domain Transaction
func ToDomainTransaction(m models.Transaction) domain.Transaction {
	return domain.Transaction{
		TransactionID:     m.TransactionID,
		FromAccountNumber: m.FromAccountNumber,
		ToAccountNumber:   m.ToAccountNumber,
		Type:              domain.TransactionType(m.Type),
		Status:            domain.TransactionStatus(m.Status),
		Amount:            m.Amount,
		Memo:              m.Memo,
		CreatedAt:         m.CreatedAt,
	}
}

// ToDomainAuditLog converts a model AuditLog to a domain AuditLog
func ToDomainAuditLog(m models.AuditLog) domain.AuditLog {
	return domain.AuditLog{
		AuditLogID:    m.AuditLogID,
		TransactionID: m.TransactionID,
		AccountNumber: m.AccountNumber,
		BeforeBalance: m.BeforeBalance,
		AfterBalance:  m.AfterBalance,
		Action:        domain.AuditAction(m.Action),
		ActorUserID:   m.ActorUserID,
		CreatedAt:     m.CreatedAt,
	}
}
