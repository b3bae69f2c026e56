package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error into one of a closed set of outcomes that callers
// (HTTP handlers, the schedule runner) switch on.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindUnauthorized
	KindConflict
	KindInsufficientBalance
	KindLimitExceeded
	KindAccountLocked
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "VALIDATION"
	case KindNotFound:
		return "NOT_FOUND"
	case KindUnauthorized:
		return "UNAUTHORIZED"
	case KindConflict:
		return "CONFLICT"
	case KindInsufficientBalance:
		return "INSUFFICIENT_BALANCE"
	case KindLimitExceeded:
		return "DAILY_LIMIT_EXCEEDED"
	case KindAccountLocked:
		return "ACCOUNT_LOCKED"
	default:
		return "INTERNAL"
	}
}

// HTTPStatus maps an error kind onto the status code the API reports.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusForbidden
	case KindConflict, KindInsufficientBalance, KindLimitExceeded:
		return http.StatusConflict
	case KindAccountLocked:
		return http.StatusLocked
	default:
		return http.StatusInternalServerError
	}
}

// Subsystem names the part of the engine an error was raised by.
type Subsystem string

const (
	SubsystemAccount  Subsystem = "account"
	SubsystemSchedule Subsystem = "schedule"
	SubsystemTransfer Subsystem = "transfer"
	SubsystemStore    Subsystem = "store"
)

// sentinel is a kind-only error used as an errors.Is target.
type sentinel struct {
	kind Kind
	msg  string
}

func (s *sentinel) Error() string { return s.msg }

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound error = &sentinel{KindNotFound, "resource not found"}

// ErrValidation indicates that input data failed validation checks.
var ErrValidation error = &sentinel{KindValidation, "validation error"}

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate error = &sentinel{KindConflict, "resource already exists"}

// ErrConflict indicates the resource is in a state that does not allow the operation.
var ErrConflict = ErrDuplicate

// ErrForbidden indicates the acting user does not own the resource.
var ErrForbidden error = &sentinel{KindUnauthorized, "forbidden"}

var (
	ErrInsufficientBalance error = &sentinel{KindInsufficientBalance, "insufficient balance"}
	ErrLimitExceeded       error = &sentinel{KindLimitExceeded, "daily transfer limit exceeded"}
	ErrAccountLocked       error = &sentinel{KindAccountLocked, "account is locked by another operation"}
	ErrInternal            error = &sentinel{KindInternal, "internal error"}
)

var sentinels = []*sentinel{
	ErrValidation.(*sentinel),
	ErrNotFound.(*sentinel),
	ErrForbidden.(*sentinel),
	ErrDuplicate.(*sentinel),
	ErrInsufficientBalance.(*sentinel),
	ErrLimitExceeded.(*sentinel),
	ErrAccountLocked.(*sentinel),
	ErrInternal.(*sentinel),
}

// Error is the single structured error type of the engine.
type Error struct {
	Subsystem Subsystem
	Kind      Kind
	Message   string
	Err       error
}

func (e *Error) Error() string {
	prefix := e.Kind.String()
	if e.Subsystem != "" {
		prefix = string(e.Subsystem) + ": " + prefix
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the kind sentinels, so errors.Is(err, ErrNotFound) works for any
// *Error of KindNotFound.
func (e *Error) Is(target error) bool {
	s, ok := target.(*sentinel)
	return ok && s.kind == e.Kind
}

// New creates an error for the given subsystem and kind.
func New(sub Subsystem, kind Kind, msg string) *Error {
	return &Error{Subsystem: sub, Kind: kind, Message: msg}
}

// Wrap creates an error for the given subsystem and kind around a cause.
func Wrap(sub Subsystem, kind Kind, msg string, err error) *Error {
	return &Error{Subsystem: sub, Kind: kind, Message: msg, Err: err}
}

func NewAccountError(kind Kind, msg string) *Error  { return New(SubsystemAccount, kind, msg) }
func NewScheduleError(kind Kind, msg string) *Error { return New(SubsystemSchedule, kind, msg) }
func NewTransferError(kind Kind, msg string) *Error { return New(SubsystemTransfer, kind, msg) }

// NewAppError wraps an infrastructure failure with the HTTP status it should surface as.
func NewAppError(code int, msg string, err error) *Error {
	return Wrap(SubsystemStore, kindForStatus(code), msg, err)
}

func kindForStatus(code int) Kind {
	switch code {
	case http.StatusBadRequest:
		return KindValidation
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusForbidden, http.StatusUnauthorized:
		return KindUnauthorized
	case http.StatusConflict:
		return KindConflict
	case http.StatusLocked:
		return KindAccountLocked
	default:
		return KindInternal
	}
}

// KindOf reports the kind of err. Errors outside the taxonomy are KindInternal.
func KindOf(err error) Kind {
	if err == nil {
		return KindInternal
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.kind
		}
	}
	return KindInternal
}

// MessageOf returns the human readable message carried by err.
func MessageOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}
