package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dbbank/bank_backend/internal/apperrors"
	"github.com/dbbank/bank_backend/internal/core/domain"
	portsrepo "github.com/dbbank/bank_backend/internal/core/ports/repositories"
	portssvc "github.com/dbbank/bank_backend/internal/core/ports/services"
	"golang.org/x/sync/errgroup"
)

const retryMemoPrefix = "[retry] "

// RunnerPolicy configures sweep batches and the retry pipeline.
type RunnerPolicy struct {
	BatchSize  int
	Workers    int
	MaxRetries int
	RetryDelay time.Duration
}

// scheduleRunner executes due schedules and retries failed runs.
type scheduleRunner struct {
	BaseService
	txManager    portsrepo.TransactionManager
	scheduleRepo portsrepo.ScheduleRepositoryFacade
	runRepo      portsrepo.RunReader
	reasonRepo   portsrepo.FailureReasonRepositoryFacade
	transfers    portssvc.TransferSvcFacade
	runLog       portssvc.RunLogSvcFacade
	policy       RunnerPolicy
}

// NewScheduleRunner creates the sweep and retry pipeline.
func NewScheduleRunner(
	txManager portsrepo.TransactionManager,
	scheduleRepo portsrepo.ScheduleRepositoryFacade,
	runRepo portsrepo.RunReader,
	reasonRepo portsrepo.FailureReasonRepositoryFacade,
	transfers portssvc.TransferSvcFacade,
	runLog portssvc.RunLogSvcFacade,
	policy RunnerPolicy,
	base BaseService,
) portssvc.ScheduleRunnerSvc {
	if policy.BatchSize <= 0 {
		policy.BatchSize = 100
	}
	if policy.Workers <= 0 {
		policy.Workers = 1
	}
	if policy.RetryDelay <= 0 {
		policy.RetryDelay = 10 * time.Minute
	}
	return &scheduleRunner{
		BaseService:  base,
		txManager:    txManager,
		scheduleRepo: scheduleRepo,
		runRepo:      runRepo,
		reasonRepo:   reasonRepo,
		transfers:    transfers,
		runLog:       runLog,
		policy:       policy,
	}
}

var _ portssvc.ScheduleRunnerSvc = (*scheduleRunner)(nil)

// ClassifyFailure maps a transfer error onto a failure reason code.
func ClassifyFailure(err error) string {
	switch apperrors.KindOf(err) {
	case apperrors.KindInsufficientBalance:
		return domain.FailureInsufficientFunds
	case apperrors.KindAccountLocked:
		return domain.FailureAccountLocked
	case apperrors.KindLimitExceeded:
		return domain.FailureDailyLimitExceeded
	default:
		return domain.FailureRetryFailed
	}
}

// summaryCounter collects per-schedule outcomes from concurrent workers.
type summaryCounter struct {
	mu      sync.Mutex
	summary domain.SweepSummary
}

func (c *summaryCounter) add(result domain.RunResult, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case errors.Is(err, ErrInvalidStatusForRun):
		c.summary.Skipped++
	case err != nil:
		c.summary.Failed++
	case result == domain.RunSuccess:
		c.summary.Succeeded++
	case result == domain.RunSkipped:
		c.summary.Skipped++
	default:
		c.summary.Failed++
	}
}

func (s *scheduleRunner) RunDueSchedules(ctx context.Context, now time.Time) (domain.SweepSummary, error) {
	due, err := s.scheduleRepo.FindDueSchedules(ctx, now, s.policy.BatchSize)
	if err != nil {
		s.LogError(ctx, err, "Failed to select due schedules")
		return domain.SweepSummary{}, err
	}

	counter := &summaryCounter{summary: domain.SweepSummary{Selected: len(due)}}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.policy.Workers)
	for _, schedule := range due {
		g.Go(func() error {
			run, err := s.ExecuteSchedule(gctx, schedule, now)
			if err != nil && !errors.Is(err, ErrInvalidStatusForRun) {
				s.LogError(gctx, err, "Scheduled run failed", slog.Int64("schedule_id", schedule.ScheduleID))
			}
			counter.add(resultOf(run), err)
			return nil
		})
	}
	_ = g.Wait()

	s.LogInfo(ctx, "Due schedule sweep finished",
		slog.Int("selected", counter.summary.Selected),
		slog.Int("succeeded", counter.summary.Succeeded),
		slog.Int("failed", counter.summary.Failed),
		slog.Int("skipped", counter.summary.Skipped))
	return counter.summary, nil
}

func resultOf(run *domain.ScheduledTransferRun) domain.RunResult {
	if run == nil {
		return ""
	}
	return run.Result
}

// ExecuteSchedule claims the schedule (ACTIVE -> RUNNING) and runs it. Losing
// the claim returns ErrInvalidStatusForRun.
func (s *scheduleRunner) ExecuteSchedule(ctx context.Context, schedule domain.ScheduledTransaction, now time.Time) (*domain.ScheduledTransferRun, error) {
	claimed, err := s.scheduleRepo.ClaimSchedule(ctx, schedule.ScheduleID, now)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, ErrInvalidStatusForRun
	}
	return s.attempt(ctx, schedule, now, now, 0, s.policy.MaxRetries)
}

// attempt runs one transfer for a claimed schedule and records the outcome.
// retryNo is 0 for a regular run; limit is the retry ceiling of the chain.
// chainStart is when the chain's first attempt ran and anchors the next
// regular occurrence.
func (s *scheduleRunner) attempt(ctx context.Context, schedule domain.ScheduledTransaction, now, chainStart time.Time, retryNo, limit int) (*domain.ScheduledTransferRun, error) {
	logger := s.GetLogger(ctx).With(slog.Int64("schedule_id", schedule.ScheduleID), slog.Int("retry_no", retryNo))

	memo := schedule.Memo
	if retryNo > 0 {
		memo = retryMemoPrefix + memo
	}
	tx, txErr := s.transfers.Transfer(ctx, schedule.UserID, schedule.FromAccountNumber, schedule.ToAccountNumber, schedule.Amount, memo)

	run := domain.ScheduledTransferRun{
		ScheduleID: schedule.ScheduleID,
		RunTime:    schedule.RunTime,
		ExecutedAt: now,
		RetryNo:    retryNo,
		MaxRetries: limit,
	}
	lastRunAt := now
	var status domain.ScheduleStatus
	var nextRunAt *time.Time

	if txErr == nil {
		run.Result = domain.RunSuccess
		run.TransactionID = &tx.TransactionID
		run.Message = "transfer completed"
		status, nextRunAt = s.advance(schedule, chainStart, now)
	} else {
		code := ClassifyFailure(txErr)
		run.FailureReasonCode = &code
		run.Message = s.describeFailure(ctx, code, txErr)
		if retryNo >= limit {
			run.Result = domain.RunSkipped
			status, nextRunAt = s.advance(schedule, chainStart, now)
		} else {
			run.Result = domain.RunError
			retryAt := now.Add(s.policy.RetryDelay)
			run.NextRetryAt = &retryAt
			status, nextRunAt = domain.ScheduleActive, &retryAt
		}
	}

	if err := s.finish(ctx, &run, status, &lastRunAt, nextRunAt, now); err != nil {
		// The transfer may already be committed; the schedule stays RUNNING.
		logger.Error("Failed to record run outcome", slog.String("error", err.Error()), slog.String("result", string(run.Result)))
		return nil, err
	}
	logger.Info("Scheduled run recorded",
		slog.Int64("run_id", run.RunID),
		slog.String("result", string(run.Result)),
		slog.String("schedule_status", string(status)))
	return &run, nil
}

// advance moves the schedule to its next regular occurrence after a run at
// now. The cadence counts from chainStart, so a retry that lands past
// midnight does not skip a day.
func (s *scheduleRunner) advance(schedule domain.ScheduledTransaction, chainStart, now time.Time) (domain.ScheduleStatus, *time.Time) {
	schedule.LastRunAt = &chainStart
	next, ok := planNextRun(schedule, now, s.location(), true)
	if !ok {
		return domain.ScheduleCompleted, nil
	}
	return domain.ScheduleActive, &next
}

// finish appends the run and releases the schedule in one unit of work.
func (s *scheduleRunner) finish(ctx context.Context, run *domain.ScheduledTransferRun, status domain.ScheduleStatus, lastRunAt, nextRunAt *time.Time, now time.Time) error {
	return s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.runLog.RecordRun(ctx, run); err != nil {
			return err
		}
		released, err := s.scheduleRepo.ReleaseSchedule(ctx, run.ScheduleID, status, lastRunAt, nextRunAt, now)
		if err != nil {
			return err
		}
		if !released {
			s.LogWarn(ctx, "Schedule left RUNNING state during execution, keeping its current state",
				slog.Int64("schedule_id", run.ScheduleID))
		}
		return nil
	})
}

func (s *scheduleRunner) describeFailure(ctx context.Context, code string, err error) string {
	reason, lookupErr := s.reasonRepo.FindFailureReason(ctx, code)
	if lookupErr != nil {
		s.LogWarn(ctx, "Unknown failure reason code", slog.String("code", code), slog.String("error", lookupErr.Error()))
		return apperrors.MessageOf(err)
	}
	return fmt.Sprintf("%s: %s", reason.Description, apperrors.MessageOf(err))
}

// RetryFailedRuns re-attempts the latest failed run of each schedule whose
// retry time has come. retryCeiling lowers the stored max_retries of a
// chain; a negative value keeps it.
func (s *scheduleRunner) RetryFailedRuns(ctx context.Context, now time.Time, retryCeiling int) (domain.SweepSummary, error) {
	targets, err := s.runRepo.FindRetryTargets(ctx, now, s.policy.BatchSize)
	if err != nil {
		s.LogError(ctx, err, "Failed to select retry targets")
		return domain.SweepSummary{}, err
	}

	counter := &summaryCounter{summary: domain.SweepSummary{Selected: len(targets)}}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.policy.Workers)
	for _, target := range targets {
		g.Go(func() error {
			run, err := s.retry(gctx, target, now, retryCeiling)
			if err != nil && !errors.Is(err, ErrInvalidStatusForRun) {
				s.LogError(gctx, err, "Retry failed", slog.Int64("schedule_id", target.ScheduleID))
			}
			counter.add(resultOf(run), err)
			return nil
		})
	}
	_ = g.Wait()

	s.LogInfo(ctx, "Retry pass finished",
		slog.Int("selected", counter.summary.Selected),
		slog.Int("succeeded", counter.summary.Succeeded),
		slog.Int("failed", counter.summary.Failed),
		slog.Int("skipped", counter.summary.Skipped))
	return counter.summary, nil
}

func (s *scheduleRunner) retry(ctx context.Context, target domain.ScheduledTransferRun, now time.Time, retryCeiling int) (*domain.ScheduledTransferRun, error) {
	limit := target.MaxRetries
	if retryCeiling >= 0 && retryCeiling < limit {
		limit = retryCeiling
	}

	schedule, err := s.scheduleRepo.FindScheduleByID(ctx, target.ScheduleID)
	if err != nil {
		return nil, err
	}
	switch schedule.Status {
	case domain.ScheduleActive:
	case domain.ScheduleRunning:
		// in flight elsewhere; try again next tick
		return nil, ErrInvalidStatusForRun
	default:
		return s.closeChain(ctx, target, now, fmt.Sprintf("retry dropped: schedule is %s", schedule.Status))
	}

	claimed, err := s.scheduleRepo.ClaimSchedule(ctx, schedule.ScheduleID, now)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, ErrInvalidStatusForRun
	}

	chainStart := s.chainStart(ctx, target)
	if target.RetryNo >= limit {
		run := s.skippedRun(target, now, "retry ceiling reached")
		status, next := s.advance(*schedule, chainStart, now)
		lastRunAt := now
		if err := s.finish(ctx, &run, status, &lastRunAt, next, now); err != nil {
			return nil, err
		}
		return &run, nil
	}
	return s.attempt(ctx, *schedule, now, chainStart, target.RetryNo+1, limit)
}

// chainStart returns when the first attempt of target's chain ran. The chain
// is the latest RetryNo+1 runs of the schedule; when they cannot be read the
// target's own execution time stands in.
func (s *scheduleRunner) chainStart(ctx context.Context, target domain.ScheduledTransferRun) time.Time {
	if target.RetryNo == 0 {
		return target.ExecutedAt
	}
	runs, err := s.runRepo.ListRunsBySchedule(ctx, target.ScheduleID, nil, nil, target.RetryNo+1)
	if err != nil {
		s.LogWarn(ctx, "Failed to read retry chain, anchoring on the latest attempt",
			slog.Int64("schedule_id", target.ScheduleID), slog.String("error", err.Error()))
		return target.ExecutedAt
	}
	for _, r := range runs {
		if r.RetryNo == 0 {
			return r.ExecutedAt
		}
	}
	return target.ExecutedAt
}

// closeChain appends a SKIPPED run for a schedule that is no longer ACTIVE,
// leaving the schedule itself untouched.
func (s *scheduleRunner) closeChain(ctx context.Context, target domain.ScheduledTransferRun, now time.Time, msg string) (*domain.ScheduledTransferRun, error) {
	run := s.skippedRun(target, now, msg)
	if err := s.runLog.RecordRun(ctx, &run); err != nil {
		return nil, err
	}
	return &run, nil
}

func (s *scheduleRunner) skippedRun(target domain.ScheduledTransferRun, now time.Time, msg string) domain.ScheduledTransferRun {
	return domain.ScheduledTransferRun{
		ScheduleID:        target.ScheduleID,
		RunTime:           target.RunTime,
		ExecutedAt:        now,
		Result:            domain.RunSkipped,
		Message:           msg,
		FailureReasonCode: target.FailureReasonCode,
		RetryNo:           target.RetryNo,
		MaxRetries:        target.MaxRetries,
	}
}
