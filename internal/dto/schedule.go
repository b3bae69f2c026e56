package dto

import (
	"time"

	"github.com/dbbank/bank_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// CreateScheduleRequest defines the data needed to create a recurring transfer.
type CreateScheduleRequest struct {
	FromAccountNumber string           `json:"fromAccountNumber" binding:"required"`
	ToAccountNumber   string           `json:"toAccountNumber" binding:"required"`
	Amount            decimal.Decimal  `json:"amount"`
	Frequency         domain.Frequency `json:"frequency" binding:"required,oneof=ONCE DAILY WEEKLY MONTHLY CUSTOM"`
	RecurrenceRule    string           `json:"recurrenceRule" binding:"omitempty,recurrence_rule"`
	StartDate         string           `json:"startDate" binding:"required,datetime=2006-01-02"`
	EndDate           *string          `json:"endDate" binding:"omitempty,datetime=2006-01-02"`
	RunTime           *string          `json:"runTime" binding:"omitempty,datetime=15:04"`
	Memo              string           `json:"memo" binding:"max=255"`
}

// UpdateScheduleRequest defines the fields allowed for updating a schedule.
// Use pointers to distinguish between zero-value updates and fields not provided.
type UpdateScheduleRequest struct {
	Amount         *decimal.Decimal  `json:"amount"`
	Frequency      *domain.Frequency `json:"frequency" binding:"omitempty,oneof=ONCE DAILY WEEKLY MONTHLY CUSTOM"`
	RecurrenceRule *string           `json:"recurrenceRule" binding:"omitempty,recurrence_rule"`
	StartDate      *string           `json:"startDate" binding:"omitempty,datetime=2006-01-02"`
	EndDate        *string           `json:"endDate" binding:"omitempty,datetime=2006-01-02"`
	Memo           *string           `json:"memo" binding:"omitempty,max=255"`
}

// ListSchedulesParams defines query parameters for listing the caller's schedules.
type ListSchedulesParams struct {
	Status *domain.ScheduleStatus `form:"status" binding:"omitempty,oneof=ACTIVE RUNNING PAUSED CANCELED COMPLETED FAILED"`
	Limit  int                    `form:"limit,default=20" binding:"min=1,max=100"`
	Offset int                    `form:"offset,default=0" binding:"min=0"`
}

// ScheduleResponse defines the data returned for a schedule.
type ScheduleResponse struct {
	ScheduleID        int64                 `json:"scheduleID"`
	FromAccountNumber string                `json:"fromAccountNumber"`
	ToAccountNumber   string                `json:"toAccountNumber"`
	Amount            decimal.Decimal       `json:"amount"`
	Frequency         domain.Frequency      `json:"frequency"`
	RecurrenceRule    string                `json:"recurrenceRule,omitempty"`
	StartDate         string                `json:"startDate"`
	EndDate           *string               `json:"endDate,omitempty"`
	RunTime           string                `json:"runTime"`
	NextRunAt         *time.Time            `json:"nextRunAt,omitempty"`
	LastRunAt         *time.Time            `json:"lastRunAt,omitempty"`
	Status            domain.ScheduleStatus `json:"status"`
	Memo              string                `json:"memo"`
	CreatedAt         time.Time             `json:"createdAt"`
	UpdatedAt         time.Time             `json:"updatedAt"`
}

// ListSchedulesResponse wraps the list of schedules.
type ListSchedulesResponse struct {
	Schedules []ScheduleResponse `json:"schedules"`
}

// ToScheduleResponse converts a domain.ScheduledTransaction to its DTO
func ToScheduleResponse(s *domain.ScheduledTransaction) ScheduleResponse {
	resp := ScheduleResponse{
		ScheduleID:        s.ScheduleID,
		FromAccountNumber: s.FromAccountNumber,
		ToAccountNumber:   s.ToAccountNumber,
		Amount:            s.Amount,
		Frequency:         s.Frequency,
		RecurrenceRule:    s.RecurrenceRule,
		StartDate:         s.StartDate.Format(DateLayout),
		RunTime:           s.RunTime.String(),
		NextRunAt:         s.NextRunAt,
		LastRunAt:         s.LastRunAt,
		Status:            s.Status,
		Memo:              s.Memo,
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         s.UpdatedAt,
	}
	if s.EndDate != nil {
		end := s.EndDate.Format(DateLayout)
		resp.EndDate = &end
	}
	return resp
}

// ToListScheduleResponse converts schedules to DTOs
func ToListScheduleResponse(schedules []domain.ScheduledTransaction) ListSchedulesResponse {
	res := make([]ScheduleResponse, len(schedules))
	for i := range schedules {
		res[i] = ToScheduleResponse(&schedules[i])
	}
	return ListSchedulesResponse{Schedules: res}
}
