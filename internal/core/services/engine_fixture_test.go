package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dbbank/bank_backend/internal/core/domain"
	portssvc "github.com/dbbank/bank_backend/internal/core/ports/services"
	"github.com/dbbank/bank_backend/internal/core/services"
	"github.com/dbbank/bank_backend/internal/repositories/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// Wednesday.
var baseTime = time.Date(2024, 5, 15, 10, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
	return t
}

func (c *fakeClock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}

// engine wires every service over one in-memory store.
type engine struct {
	store       *memory.Store
	clock       *fakeClock
	transfers   portssvc.TransferSvcFacade
	abnormality portssvc.AbnormalitySvcFacade
	schedules   portssvc.ScheduleSvcFacade
	runner      portssvc.ScheduleRunnerSvc
	runLog      portssvc.RunLogSvcFacade
	limits      portssvc.TransferLimitSvcFacade
	reasons     portssvc.FailureReasonSvcFacade
}

func newEngine() *engine {
	store := memory.NewStore()
	clock := &fakeClock{now: baseTime}
	base := services.BaseService{Now: clock.Now, Location: time.UTC}

	audit := services.NewAuditService(store, base)
	abnormality := services.NewAbnormalityService(store, store, store, services.VelocityRule{}, nil, base)
	transfers := services.NewTransferService(store, store, store, abnormality, audit, base)
	runLog := services.NewRunLogService(store, store, base)
	runner := services.NewScheduleRunner(store, store, store, store, transfers, runLog, services.RunnerPolicy{
		BatchSize:  100,
		Workers:    4,
		MaxRetries: 3,
		RetryDelay: 10 * time.Minute,
	}, base)

	return &engine{
		store:       store,
		clock:       clock,
		transfers:   transfers,
		abnormality: abnormality,
		schedules:   services.NewScheduleService(store, store, runner, base),
		runner:      runner,
		runLog:      runLog,
		limits:      services.NewTransferLimitService(store, store, store, base),
		reasons:     services.NewFailureReasonService(store, base),
	}
}

func (e *engine) seedAccount(t *testing.T, number string, owner int64, balance int64) {
	t.Helper()
	require.NoError(t, e.store.SaveAccount(context.Background(), domain.Account{
		AccountNumber: number,
		UserID:        owner,
		AccountType:   domain.AccountNormal,
		Balance:       decimal.NewFromInt(balance),
		AuditFields:   domain.AuditFields{CreatedAt: baseTime, UpdatedAt: baseTime},
	}))
}

func (e *engine) balance(t *testing.T, number string) decimal.Decimal {
	t.Helper()
	acc, err := e.store.FindAccountByNumber(context.Background(), number)
	require.NoError(t, err)
	return acc.Balance
}

func (e *engine) schedule(t *testing.T, id int64) *domain.ScheduledTransaction {
	t.Helper()
	s, err := e.store.FindScheduleByID(context.Background(), id)
	require.NoError(t, err)
	return s
}

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func strPtr(s string) *string { return &s }

func decPtr(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}
