package pgsql

import (
	"time"

	portsrepo "github.com/dbbank/bank_backend/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositoryProvider wires every PostgreSQL repository onto one pool.
// lockTimeout bounds how long a unit of work waits for a row lock; zero
// leaves the server default.
func NewRepositoryProvider(dbPool *pgxpool.Pool, lockTimeout time.Duration) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		TxManager:         newTxManager(dbPool, lockTimeout),
		AccountRepo:       newPgxAccountRepository(dbPool),
		TransactionRepo:   newPgxTransactionRepository(dbPool),
		ScheduleRepo:      newPgxScheduleRepository(dbPool),
		RunRepo:           newPgxRunRepository(dbPool),
		TransferLimitRepo: newPgxTransferLimitRepository(dbPool),
		AbnTransferRepo:   newPgxAbnTransferRepository(dbPool),
		FailureReasonRepo: newPgxFailureReasonRepository(dbPool),
		AuditLogRepo:      newPgxAuditLogRepository(dbPool),
	}
}
