package services

import (
	portsrepo "github.com/dbbank/bank_backend/internal/core/ports/repositories"
	portssvc "github.com/dbbank/bank_backend/internal/core/ports/services"
	"github.com/dbbank/bank_backend/internal/platform/config"
	"github.com/dbbank/bank_backend/internal/utils"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, analytics *utils.PosthogClientWrapper) *portssvc.ServiceContainer {
	base := BaseService{Location: cfg.Engine.Location}
	container := &portssvc.ServiceContainer{}

	container.Audit = NewAuditService(repos.AuditLogRepo, base)

	container.Abnormality = NewAbnormalityService(
		repos.TransactionRepo,
		repos.TransferLimitRepo,
		repos.AbnTransferRepo,
		VelocityRule{Window: cfg.Engine.VelocityWindow, Threshold: cfg.Engine.VelocityThreshold},
		analytics,
		base,
	)

	container.Transfer = NewTransferService(
		repos.TxManager,
		repos.AccountRepo,
		repos.TransactionRepo,
		container.Abnormality,
		container.Audit,
		base,
	)

	container.RunLog = NewRunLogService(repos.RunRepo, repos.ScheduleRepo, base)

	// The runner is shared by the background scheduler and RunNow.
	container.Runner = NewScheduleRunner(
		repos.TxManager,
		repos.ScheduleRepo,
		repos.RunRepo,
		repos.FailureReasonRepo,
		container.Transfer,
		container.RunLog,
		RunnerPolicy{
			BatchSize:  cfg.Scheduler.BatchSize,
			Workers:    cfg.Scheduler.Workers,
			MaxRetries: cfg.Engine.MaxRetries,
			RetryDelay: cfg.Engine.RetryDelay,
		},
		base,
	)

	container.Schedule = NewScheduleService(
		repos.ScheduleRepo,
		repos.AccountRepo,
		container.Runner,
		base,
		WithDefaultRunTime(cfg.Engine.DefaultRunTime),
	)

	container.TransferLimit = NewTransferLimitService(repos.TxManager, repos.TransferLimitRepo, repos.AccountRepo, base)
	container.FailureReason = NewFailureReasonService(repos.FailureReasonRepo, base)

	return container
}
