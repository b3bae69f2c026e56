package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dbbank/bank_backend/internal/apperrors"
	"github.com/dbbank/bank_backend/internal/core/domain"
	portsrepo "github.com/dbbank/bank_backend/internal/core/ports/repositories"
	portssvc "github.com/dbbank/bank_backend/internal/core/ports/services"
	"github.com/dbbank/bank_backend/internal/dto"
	"github.com/dbbank/bank_backend/internal/utils/recurrence"
)

// scheduleService is the schedule lifecycle manager.
type scheduleService struct {
	BaseService
	scheduleRepo   portsrepo.ScheduleRepositoryFacade
	accountRepo    portsrepo.AccountReader
	runner         portssvc.ScheduleRunnerSvc
	defaultRunTime domain.RunTime
}

// ScheduleServiceOption is a functional option for configuring the schedule service
type ScheduleServiceOption func(*scheduleService)

// WithDefaultRunTime sets the run time used when a schedule is created without one.
func WithDefaultRunTime(rt domain.RunTime) ScheduleServiceOption {
	return func(s *scheduleService) {
		s.defaultRunTime = rt
	}
}

// NewScheduleService creates the schedule lifecycle manager. runner executes RunNow requests.
func NewScheduleService(
	scheduleRepo portsrepo.ScheduleRepositoryFacade,
	accountRepo portsrepo.AccountReader,
	runner portssvc.ScheduleRunnerSvc,
	base BaseService,
	options ...ScheduleServiceOption,
) portssvc.ScheduleSvcFacade {
	svc := &scheduleService{
		BaseService:    base,
		scheduleRepo:   scheduleRepo,
		accountRepo:    accountRepo,
		runner:         runner,
		defaultRunTime: domain.DefaultRunTime,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.ScheduleSvcFacade = (*scheduleService)(nil)

func (s *scheduleService) parseDate(field, value string) (time.Time, error) {
	t, err := time.ParseInLocation(dto.DateLayout, value, s.location())
	if err != nil {
		return time.Time{}, apperrors.Wrap(apperrors.SubsystemSchedule, apperrors.KindValidation,
			fmt.Sprintf("%s must be a YYYY-MM-DD date", field), err)
	}
	return t, nil
}

// validateRecurrence checks the frequency and, for CUSTOM, that the rule parses.
func validateRecurrence(freq domain.Frequency, rule string) error {
	if !freq.IsValid() {
		return ErrInvalidFrequency
	}
	if freq != domain.FrequencyCustom {
		return nil
	}
	if _, err := recurrence.ParseRule(rule); err != nil {
		return apperrors.Wrap(apperrors.SubsystemSchedule, apperrors.KindValidation, ErrInvalidRecurrenceRule.Message, err)
	}
	return nil
}

func (s *scheduleService) CreateSchedule(ctx context.Context, userID int64, req dto.CreateScheduleRequest) (*domain.ScheduledTransaction, error) {
	if !req.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if req.FromAccountNumber == req.ToAccountNumber {
		return nil, ErrSameAccount
	}
	if req.StartDate == "" {
		return nil, ErrStartDateRequired
	}
	if err := validateRecurrence(req.Frequency, req.RecurrenceRule); err != nil {
		return nil, err
	}
	start, err := s.parseDate("startDate", req.StartDate)
	if err != nil {
		return nil, err
	}
	var end *time.Time
	if req.EndDate != nil && *req.EndDate != "" {
		parsed, err := s.parseDate("endDate", *req.EndDate)
		if err != nil {
			return nil, err
		}
		if parsed.Before(start) {
			return nil, ErrEndBeforeStart
		}
		end = &parsed
	}
	runTime := s.defaultRunTime
	if req.RunTime != nil && *req.RunTime != "" {
		if runTime, err = domain.ParseRunTime(*req.RunTime); err != nil {
			return nil, apperrors.Wrap(apperrors.SubsystemSchedule, apperrors.KindValidation, "invalid runTime", err)
		}
	}

	from, err := s.accountRepo.FindAccountByNumber(ctx, req.FromAccountNumber)
	if err != nil {
		return nil, err
	}
	if !from.IsOwnedBy(userID) {
		s.LogWarn(ctx, "Schedule creation on a foreign account",
			slog.Int64("user_id", userID), slog.String("from_account", req.FromAccountNumber))
		return nil, ErrAccountNotOwned
	}
	to, err := s.accountRepo.FindAccountByNumber(ctx, req.ToAccountNumber)
	if err != nil {
		return nil, err
	}
	if !to.IsNormal() {
		return nil, ErrNotCustomerAccount
	}

	exists, err := s.scheduleRepo.ExistsLiveSchedule(ctx, req.FromAccountNumber, req.ToAccountNumber, 0)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateActiveSchedule
	}

	now := s.clock()
	schedule := domain.ScheduledTransaction{
		UserID:            userID,
		FromAccountNumber: req.FromAccountNumber,
		ToAccountNumber:   req.ToAccountNumber,
		Amount:            req.Amount,
		Frequency:         req.Frequency,
		StartDate:         start,
		EndDate:           end,
		RunTime:           runTime,
		Status:            domain.ScheduleActive,
		Memo:              req.Memo,
		AuditFields:       domain.AuditFields{CreatedAt: now, UpdatedAt: now},
	}
	if req.Frequency == domain.FrequencyCustom {
		schedule.RecurrenceRule = req.RecurrenceRule
	}
	if isMinutely(schedule) {
		next := now.Add(time.Minute)
		schedule.NextRunAt = &next
	} else {
		next, ok := planNextRun(schedule, now, s.location(), false)
		applyPlan(&schedule, next, ok)
	}

	if err := s.scheduleRepo.SaveSchedule(ctx, &schedule); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, ErrDuplicateActiveSchedule
		}
		s.LogError(ctx, err, "Failed to save schedule", slog.Int64("user_id", userID))
		return nil, err
	}

	s.LogInfo(ctx, "Schedule created",
		slog.Int64("schedule_id", schedule.ScheduleID),
		slog.String("frequency", string(schedule.Frequency)),
		slog.String("status", string(schedule.Status)))
	return &schedule, nil
}

// loadOwned fetches a schedule and verifies userID created it.
func (s *scheduleService) loadOwned(ctx context.Context, userID, scheduleID int64) (*domain.ScheduledTransaction, error) {
	schedule, err := s.scheduleRepo.FindScheduleByID(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	if !schedule.IsOwnedBy(userID) {
		return nil, ErrScheduleNotOwned
	}
	return schedule, nil
}

func (s *scheduleService) GetSchedule(ctx context.Context, userID, scheduleID int64) (*domain.ScheduledTransaction, error) {
	return s.loadOwned(ctx, userID, scheduleID)
}

func (s *scheduleService) ListSchedules(ctx context.Context, userID int64, params dto.ListSchedulesParams) ([]domain.ScheduledTransaction, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	return s.scheduleRepo.ListSchedulesByUser(ctx, userID, params.Status, limit, params.Offset)
}

func (s *scheduleService) ListSchedulesByAccount(ctx context.Context, userID int64, accountNumber string) ([]domain.ScheduledTransaction, error) {
	account, err := s.accountRepo.FindAccountByNumber(ctx, accountNumber)
	if err != nil {
		return nil, err
	}
	if !account.IsOwnedBy(userID) {
		return nil, ErrAccountNotOwned
	}
	return s.scheduleRepo.ListSchedulesByFromAccount(ctx, accountNumber)
}

func (s *scheduleService) UpdateSchedule(ctx context.Context, userID, scheduleID int64, req dto.UpdateScheduleRequest) (*domain.ScheduledTransaction, error) {
	schedule, err := s.loadOwned(ctx, userID, scheduleID)
	if err != nil {
		return nil, err
	}
	if schedule.Status.IsTerminal() {
		return nil, ErrScheduleAlreadyFinished
	}
	expected := schedule.Status

	if req.Amount != nil {
		if !req.Amount.IsPositive() {
			return nil, ErrInvalidAmount
		}
		schedule.Amount = *req.Amount
	}
	if req.Frequency != nil {
		schedule.Frequency = *req.Frequency
	}
	if req.RecurrenceRule != nil {
		schedule.RecurrenceRule = *req.RecurrenceRule
	}
	if schedule.Frequency != domain.FrequencyCustom {
		schedule.RecurrenceRule = ""
	}
	if err := validateRecurrence(schedule.Frequency, schedule.RecurrenceRule); err != nil {
		return nil, err
	}
	if req.StartDate != nil {
		if schedule.StartDate, err = s.parseDate("startDate", *req.StartDate); err != nil {
			return nil, err
		}
	}
	if req.EndDate != nil {
		if *req.EndDate == "" {
			schedule.EndDate = nil
		} else {
			end, err := s.parseDate("endDate", *req.EndDate)
			if err != nil {
				return nil, err
			}
			schedule.EndDate = &end
		}
	}
	if schedule.EndDate != nil && schedule.EndDate.Before(schedule.StartDate) {
		return nil, ErrEndBeforeStart
	}
	if req.Memo != nil {
		schedule.Memo = *req.Memo
	}

	now := s.clock()
	next, ok := planNextRun(*schedule, now, s.location(), false)
	applyPlan(schedule, next, ok)
	schedule.UpdatedAt = now

	if err := s.scheduleRepo.UpdateSchedule(ctx, *schedule, expected); err != nil {
		s.LogError(ctx, err, "Failed to update schedule", slog.Int64("schedule_id", scheduleID))
		return nil, err
	}
	s.LogInfo(ctx, "Schedule updated", slog.Int64("schedule_id", scheduleID), slog.String("status", string(schedule.Status)))
	return schedule, nil
}

func (s *scheduleService) PauseSchedule(ctx context.Context, userID, scheduleID int64) (*domain.ScheduledTransaction, error) {
	schedule, err := s.loadOwned(ctx, userID, scheduleID)
	if err != nil {
		return nil, err
	}
	if schedule.Status != domain.ScheduleActive {
		return nil, ErrInvalidStatusForPause
	}
	schedule.Status = domain.SchedulePaused
	schedule.UpdatedAt = s.clock()
	if err := s.scheduleRepo.UpdateSchedule(ctx, *schedule, domain.ScheduleActive); err != nil {
		return nil, err
	}
	s.LogInfo(ctx, "Schedule paused", slog.Int64("schedule_id", scheduleID))
	return schedule, nil
}

func (s *scheduleService) ResumeSchedule(ctx context.Context, userID, scheduleID int64) (*domain.ScheduledTransaction, error) {
	schedule, err := s.loadOwned(ctx, userID, scheduleID)
	if err != nil {
		return nil, err
	}
	if schedule.Status != domain.SchedulePaused {
		return nil, ErrInvalidStatusForResume
	}
	exists, err := s.scheduleRepo.ExistsLiveSchedule(ctx, schedule.FromAccountNumber, schedule.ToAccountNumber, schedule.ScheduleID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateActiveSchedule
	}

	now := s.clock()
	schedule.Status = domain.ScheduleActive
	next, ok := planNextRun(*schedule, now, s.location(), false)
	applyPlan(schedule, next, ok)
	schedule.UpdatedAt = now

	if err := s.scheduleRepo.UpdateSchedule(ctx, *schedule, domain.SchedulePaused); err != nil {
		return nil, err
	}
	s.LogInfo(ctx, "Schedule resumed", slog.Int64("schedule_id", scheduleID), slog.String("status", string(schedule.Status)))
	return schedule, nil
}

// CancelSchedule is idempotent for an already canceled schedule.
func (s *scheduleService) CancelSchedule(ctx context.Context, userID, scheduleID int64) (*domain.ScheduledTransaction, error) {
	schedule, err := s.loadOwned(ctx, userID, scheduleID)
	if err != nil {
		return nil, err
	}
	if schedule.Status == domain.ScheduleCanceled {
		return schedule, nil
	}
	if schedule.Status.IsTerminal() {
		return nil, ErrScheduleAlreadyFinished
	}
	expected := schedule.Status
	schedule.Status = domain.ScheduleCanceled
	schedule.NextRunAt = nil
	schedule.UpdatedAt = s.clock()
	if err := s.scheduleRepo.UpdateSchedule(ctx, *schedule, expected); err != nil {
		return nil, err
	}
	s.LogInfo(ctx, "Schedule canceled", slog.Int64("schedule_id", scheduleID), slog.String("previous_status", string(expected)))
	return schedule, nil
}

func (s *scheduleService) RunNow(ctx context.Context, userID, scheduleID int64) (*domain.ScheduledTransferRun, error) {
	schedule, err := s.loadOwned(ctx, userID, scheduleID)
	if err != nil {
		return nil, err
	}
	if schedule.Status != domain.ScheduleActive {
		return nil, ErrInvalidStatusForRun
	}
	s.LogInfo(ctx, "Manual schedule run requested", slog.Int64("schedule_id", scheduleID))
	return s.runner.ExecuteSchedule(ctx, *schedule, s.clock())
}
