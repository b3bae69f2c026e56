// Package memory provides an in-process implementation of every repository
// port. A unit of work holds the store mutex and restores a snapshot on
// error, so it gives the same atomicity the PostgreSQL store gets from
// transactions. Used by tests and by STORE_DRIVER=memory.
package memory

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/dbbank/bank_backend/internal/core/domain"
	portsrepo "github.com/dbbank/bank_backend/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

type txCtxKey struct{}

type dataset struct {
	accounts     map[string]domain.Account
	transactions []domain.Transaction
	schedules    map[int64]domain.ScheduledTransaction
	runs         []domain.ScheduledTransferRun
	limits       []domain.TransferLimit
	alerts       []domain.AbnTransfer
	reasons      map[string]domain.TransferFailureReason
	auditLogs    []domain.AuditLog

	nextTransactionID int64
	nextScheduleID    int64
	nextRunID         int64
	nextLimitID       int64
	nextAlertID       int64
	nextAuditID       int64
}

func (d *dataset) clone() *dataset {
	c := *d
	c.accounts = maps.Clone(d.accounts)
	c.transactions = slices.Clone(d.transactions)
	c.schedules = maps.Clone(d.schedules)
	c.runs = slices.Clone(d.runs)
	c.limits = slices.Clone(d.limits)
	c.alerts = slices.Clone(d.alerts)
	c.reasons = maps.Clone(d.reasons)
	c.auditLogs = slices.Clone(d.auditLogs)
	return &c
}

// Store is the in-memory repository set.
type Store struct {
	mu   sync.Mutex
	data *dataset
}

// NewStore returns a store seeded like the initial migration: the two sink
// accounts and the four built-in failure reasons.
func NewStore() *Store {
	now := time.Now().UTC()
	s := &Store{data: &dataset{
		accounts:  make(map[string]domain.Account),
		schedules: make(map[int64]domain.ScheduledTransaction),
		reasons:   make(map[string]domain.TransferFailureReason),
	}}
	for _, a := range []domain.Account{
		{AccountNumber: domain.ExternalInAccountNumber, AccountType: domain.AccountExternalIn},
		{AccountNumber: domain.ExternalOutAccountNumber, AccountType: domain.AccountExternalOut},
	} {
		a.Balance = decimal.Zero
		a.CreatedAt, a.UpdatedAt = now, now
		s.data.accounts[a.AccountNumber] = a
	}
	for _, r := range []domain.TransferFailureReason{
		{Code: domain.FailureInsufficientFunds, Description: "Insufficient balance in the source account"},
		{Code: domain.FailureAccountLocked, Description: "Account was locked by a concurrent operation"},
		{Code: domain.FailureDailyLimitExceeded, Description: "Daily transfer limit exceeded"},
		{Code: domain.FailureRetryFailed, Description: "Unclassified failure, will be retried"},
	} {
		s.data.reasons[r.Code] = r
	}
	return s
}

// NewRepositoryProvider wires one store into every repository port.
func NewRepositoryProvider(s *Store) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		TxManager:         s,
		AccountRepo:       s,
		TransactionRepo:   s,
		ScheduleRepo:      s,
		RunRepo:           s,
		TransferLimitRepo: s,
		AbnTransferRepo:   s,
		FailureReasonRepo: s,
		AuditLogRepo:      s,
	}
}

var (
	_ portsrepo.TransactionManager            = (*Store)(nil)
	_ portsrepo.AccountRepositoryFacade       = (*Store)(nil)
	_ portsrepo.TransactionRepositoryFacade   = (*Store)(nil)
	_ portsrepo.ScheduleRepositoryFacade      = (*Store)(nil)
	_ portsrepo.RunRepositoryFacade           = (*Store)(nil)
	_ portsrepo.TransferLimitRepositoryFacade = (*Store)(nil)
	_ portsrepo.AbnTransferRepositoryFacade   = (*Store)(nil)
	_ portsrepo.FailureReasonRepositoryFacade = (*Store)(nil)
	_ portsrepo.AuditLogRepositoryFacade      = (*Store)(nil)
)

func (s *Store) inTx(ctx context.Context) bool {
	return ctx.Value(txCtxKey{}) == s
}

// lock takes the store mutex unless ctx already belongs to a unit of work of
// this store, in which case the mutex is held by the caller.
func (s *Store) lock(ctx context.Context) func() {
	if s.inTx(ctx) {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// WithinTx runs fn as one unit of work.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.inTx(ctx) {
		return fn(ctx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	if err := fn(context.WithValue(ctx, txCtxKey{}, s)); err != nil {
		s.data = snapshot
		return err
	}
	return nil
}
