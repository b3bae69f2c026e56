package services

import "github.com/dbbank/bank_backend/internal/apperrors"

// Transfer errors.
var (
	ErrInvalidAmount       = apperrors.NewTransferError(apperrors.KindValidation, "amount must be positive")
	ErrSameAccount         = apperrors.NewTransferError(apperrors.KindValidation, "from and to account must differ")
	ErrNotCustomerAccount  = apperrors.NewTransferError(apperrors.KindValidation, "account is not a customer account")
	ErrAccountNotOwned     = apperrors.NewAccountError(apperrors.KindUnauthorized, "account is not owned by the acting user")
	ErrInsufficientBalance = apperrors.NewAccountError(apperrors.KindInsufficientBalance, "insufficient balance")
)

// Schedule errors.
var (
	ErrStartDateRequired       = apperrors.NewScheduleError(apperrors.KindValidation, "start date is required")
	ErrEndBeforeStart          = apperrors.NewScheduleError(apperrors.KindValidation, "end date must not be before start date")
	ErrInvalidRecurrenceRule   = apperrors.NewScheduleError(apperrors.KindValidation, "invalid recurrence rule")
	ErrInvalidFrequency        = apperrors.NewScheduleError(apperrors.KindValidation, "invalid frequency")
	ErrScheduleNotOwned        = apperrors.NewScheduleError(apperrors.KindUnauthorized, "schedule is not owned by the acting user")
	ErrDuplicateActiveSchedule = apperrors.NewScheduleError(apperrors.KindConflict, "an active schedule already exists for this account pair")
	ErrScheduleAlreadyFinished = apperrors.NewScheduleError(apperrors.KindConflict, "schedule is already canceled or completed")
	ErrInvalidStatusForPause   = apperrors.NewScheduleError(apperrors.KindConflict, "only an ACTIVE schedule can be paused")
	ErrInvalidStatusForResume  = apperrors.NewScheduleError(apperrors.KindConflict, "only a PAUSED schedule can be resumed")
	ErrInvalidStatusForRun     = apperrors.NewScheduleError(apperrors.KindConflict, "only an ACTIVE schedule can be run")
)
