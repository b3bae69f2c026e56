package mapping

import (
	"fmt"

	"github.com/dbbank/bank_backend/internal/core/domain"
	"github.com/dbbank/bank_backend/internal/models"
)

// ToDomainSchedule converts a model ScheduledTransaction to its domain form.
func ToDomainSchedule(m models.ScheduledTransaction) (domain.ScheduledTransaction, error) {
	runTime, err := domain.ParseRunTime(m.RunTime)
	if err != nil {
		return domain.ScheduledTransaction{}, fmt.Errorf("schedule %d: %w", m.ScheduleID, err)
	}
	d := domain.ScheduledTransaction{
		ScheduleID:        m.ScheduleID,
		UserID:            m.UserID,
		FromAccountNumber: m.FromAccountNumber,
		ToAccountNumber:   m.ToAccountNumber,
		Amount:            m.Amount,
		Frequency:         domain.Frequency(m.Frequency),
		StartDate:         m.StartDate,
		EndDate:           m.EndDate,
		RunTime:           runTime,
		NextRunAt:         m.NextRunAt,
		LastRunAt:         m.LastRunAt,
		Status:            domain.ScheduleStatus(m.Status),
		Memo:              m.Memo,
		AuditFields:       ToDomainAuditFields(m.AuditFields),
	}
	if m.RecurrenceRule != nil {
		d.RecurrenceRule = *m.RecurrenceRule
	}
	return d, nil
}

// ToDomainScheduleSlice converts a slice of model schedules.
func ToDomainScheduleSlice(ms []models.ScheduledTransaction) ([]domain.ScheduledTransaction, error) {
	ds := make([]domain.ScheduledTransaction, 0, len(ms))
	for _, m := range ms {
		d, err := ToDomainSchedule(m)
		if err != nil {
			return nil, err
		}
		ds = append(ds, d)
	}
	return ds, nil
}

// ToDomainRun converts a model ScheduledTransferRun to its domain form.
func ToDomainRun(m models.ScheduledTransferRun) (domain.ScheduledTransferRun, error) {
	runTime, err := domain.ParseRunTime(m.RunTime)
	if err != nil {
		return domain.ScheduledTransferRun{}, fmt.Errorf("run %d: %w", m.RunID, err)
	}
	return domain.ScheduledTransferRun{
		RunID:             m.RunID,
		ScheduleID:        m.ScheduleID,
		RunTime:           runTime,
		ExecutedAt:        m.ExecutedAt,
		Result:            domain.RunResult(m.Result),
		Message:           m.Message,
		TransactionID:     m.TransactionID,
		FailureReasonCode: m.FailureReasonCode,
		RetryNo:           m.RetryNo,
		MaxRetries:        m.MaxRetries,
		NextRetryAt:       m.NextRetryAt,
	}, nil
}

// ToDomainRunSlice converts a slice of model runs.
func ToDomainRunSlice(ms []models.ScheduledTransferRun) ([]domain.ScheduledTransferRun, error) {
	ds := make([]domain.ScheduledTransferRun, 0, len(ms))
	for _, m := range ms {
		d, err := ToDomainRun(m)
		if err != nil {
			return nil, err
		}
		ds = append(ds, d)
	}
	return ds, nil
}
