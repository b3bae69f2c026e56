package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dbbank/bank_backend/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRunner struct {
	mock.Mock
	sweeps  atomic.Int32
	retries atomic.Int32
}

func (m *MockRunner) RunDueSchedules(ctx context.Context, now time.Time) (domain.SweepSummary, error) {
	m.sweeps.Add(1)
	args := m.Called(ctx, now)
	return args.Get(0).(domain.SweepSummary), args.Error(1)
}

func (m *MockRunner) RetryFailedRuns(ctx context.Context, now time.Time, retryCeiling int) (domain.SweepSummary, error) {
	m.retries.Add(1)
	args := m.Called(ctx, now, retryCeiling)
	return args.Get(0).(domain.SweepSummary), args.Error(1)
}

func (m *MockRunner) ExecuteSchedule(ctx context.Context, schedule domain.ScheduledTransaction, now time.Time) (*domain.ScheduledTransferRun, error) {
	args := m.Called(ctx, schedule, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ScheduledTransferRun), args.Error(1)
}

func TestStartStop_RunsBothLoops(t *testing.T) {
	runner := new(MockRunner)
	runner.On("RunDueSchedules", mock.Anything, mock.Anything).Return(domain.SweepSummary{Selected: 1, Succeeded: 1}, nil)
	runner.On("RetryFailedRuns", mock.Anything, mock.Anything, -1).Return(domain.SweepSummary{}, nil)

	s := New(runner, Config{SweepInterval: 20 * time.Millisecond, RetryOffset: 10 * time.Millisecond, RetryCeiling: -1}, nil)
	s.Start(context.Background())
	s.Start(context.Background())

	require.Eventually(t, func() bool {
		return runner.sweeps.Load() >= 2 && runner.retries.Load() >= 2
	}, 2*time.Second, 5*time.Millisecond)

	s.Stop()
	sweeps := runner.sweeps.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, sweeps, runner.sweeps.Load())
	s.Stop()
}

func TestNew_NormalizesOffset(t *testing.T) {
	s := New(new(MockRunner), Config{SweepInterval: time.Minute, RetryOffset: 2 * time.Minute}, nil)
	assert.Equal(t, 30*time.Second, s.cfg.RetryOffset)

	s = New(new(MockRunner), Config{}, nil)
	assert.Equal(t, time.Minute, s.cfg.SweepInterval)
}

func TestRunNow_StopsOnSweepError(t *testing.T) {
	now := time.Date(2024, 5, 16, 9, 30, 0, 0, time.UTC)
	boom := errors.New("db down")

	runner := new(MockRunner)
	runner.On("RunDueSchedules", mock.Anything, now).Return(domain.SweepSummary{}, boom).Once()

	s := New(runner, Config{}, nil)
	_, _, err := s.RunNow(context.Background(), now, -1)
	require.ErrorIs(t, err, boom)
	runner.AssertNotCalled(t, "RetryFailedRuns", mock.Anything, mock.Anything, mock.Anything)

	runner.On("RunDueSchedules", mock.Anything, now).Return(domain.SweepSummary{Selected: 2, Succeeded: 2}, nil).Once()
	runner.On("RetryFailedRuns", mock.Anything, now, 1).Return(domain.SweepSummary{Selected: 1, Skipped: 1}, nil).Once()
	sweep, retry, err := s.RunNow(context.Background(), now, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, sweep.Succeeded)
	assert.Equal(t, 1, retry.Skipped)
	runner.AssertExpectations(t)
}
