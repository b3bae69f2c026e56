// Package scheduler drives the schedule runner on a fixed interval: a primary
// sweep of due schedules at every tick and a retry pass offset from it.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/dbbank/bank_backend/internal/core/domain"
	portssvc "github.com/dbbank/bank_backend/internal/core/ports/services"
	"github.com/google/uuid"
)

// Config controls the tick cadence.
type Config struct {
	SweepInterval time.Duration
	RetryOffset   time.Duration
	// RetryCeiling caps max_retries of every chain; negative keeps the stored value.
	RetryCeiling int
}

// SweepScheduler owns the two background loops.
type SweepScheduler struct {
	runner portssvc.ScheduleRunnerSvc
	cfg    Config
	logger *slog.Logger
	now    func() time.Time

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a stopped scheduler.
func New(runner portssvc.ScheduleRunnerSvc, cfg Config, logger *slog.Logger) *SweepScheduler {
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = time.Minute
	}
	if cfg.RetryOffset < 0 || cfg.RetryOffset >= cfg.SweepInterval {
		cfg.RetryOffset = cfg.SweepInterval / 2
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SweepScheduler{
		runner: runner,
		cfg:    cfg,
		logger: logger.With(slog.String("component", "scheduler")),
		now:    time.Now,
	}
}

// Start launches the sweep and retry loops. Calling Start twice is a no-op.
func (s *SweepScheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(2)
	go s.loop(ctx, 0, s.sweep)
	go s.loop(ctx, s.cfg.RetryOffset, s.retry)

	s.logger.Info("Scheduler started",
		slog.Duration("sweep_interval", s.cfg.SweepInterval),
		slog.Duration("retry_offset", s.cfg.RetryOffset))
}

// Stop cancels both loops and waits for an in-flight tick to finish.
func (s *SweepScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel == nil {
		return
	}
	s.cancel()
	s.wg.Wait()
	s.cancel = nil
	s.logger.Info("Scheduler stopped")
}

func (s *SweepScheduler) loop(ctx context.Context, offset time.Duration, tick func(context.Context, time.Time)) {
	defer s.wg.Done()

	if offset > 0 {
		timer := time.NewTimer(offset)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}

	ticker := time.NewTicker(s.cfg.SweepInterval)
	defer ticker.Stop()
	for {
		tick(ctx, s.now())
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *SweepScheduler) tickLogger(kind string) *slog.Logger {
	return s.logger.With(slog.String("tick_id", uuid.NewString()), slog.String("tick", kind))
}

func (s *SweepScheduler) sweep(ctx context.Context, now time.Time) {
	logger := s.tickLogger("sweep")
	summary, err := s.runner.RunDueSchedules(ctx, now)
	logSummary(logger, summary, err)
}

func (s *SweepScheduler) retry(ctx context.Context, now time.Time) {
	logger := s.tickLogger("retry")
	summary, err := s.runner.RetryFailedRuns(ctx, now, s.cfg.RetryCeiling)
	logSummary(logger, summary, err)
}

func logSummary(logger *slog.Logger, summary domain.SweepSummary, err error) {
	if err != nil {
		logger.Error("Tick failed", slog.String("error", err.Error()))
		return
	}
	if summary.Selected == 0 {
		logger.Debug("Tick found nothing to do")
		return
	}
	logger.Info("Tick finished",
		slog.Int("processed", summary.Selected),
		slog.Int("succeeded", summary.Succeeded),
		slog.Int("failed", summary.Failed),
		slog.Int("skipped", summary.Skipped))
}

// RunNow performs one sweep followed by one retry pass at now, synchronously.
// retryCeiling follows RetryFailedRuns; pass a negative value for none.
func (s *SweepScheduler) RunNow(ctx context.Context, now time.Time, retryCeiling int) (sweep, retry domain.SweepSummary, err error) {
	if sweep, err = s.runner.RunDueSchedules(ctx, now); err != nil {
		return sweep, retry, err
	}
	retry, err = s.runner.RetryFailedRuns(ctx, now, retryCeiling)
	return sweep, retry, err
}
