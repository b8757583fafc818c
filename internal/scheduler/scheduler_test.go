package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/trend-trader/internal/live"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

// fakeRunner counts cycles and signals each run.
type fakeRunner struct {
	mu    sync.Mutex
	calls int
	ran   chan struct{}
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{ran: make(chan struct{}, 1)}
}

func (f *fakeRunner) RunCycle(ctx context.Context) *live.CycleReport {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	select {
	case f.ran <- struct{}{}:
	default:
	}
	return &live.CycleReport{Started: time.Now(), Actions: map[string]string{}}
}

func (f *fakeRunner) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestScheduleCyclesRejectsInvalidExpression(t *testing.T) {
	s := NewScheduler(newFakeRunner(), testLogger())
	require.Error(t, s.ScheduleCycles("not a cron expression"))
}

func TestStartRequiresScheduledJobs(t *testing.T) {
	s := NewScheduler(newFakeRunner(), testLogger())
	require.Error(t, s.Start())
}

func TestSchedulerLifecycle(t *testing.T) {
	s := NewScheduler(newFakeRunner(), testLogger())

	require.NoError(t, s.ScheduleCycles("@every 1h"))
	assert.False(t, s.IsRunning())
	assert.True(t, s.NextRun().IsZero(), "no next run before start")

	require.NoError(t, s.Start())
	assert.True(t, s.IsRunning())
	assert.True(t, s.NextRun().After(time.Now()))

	assert.Error(t, s.Start(), "double start must be rejected")
	assert.Error(t, s.ScheduleCycles("@every 1h"), "cannot schedule while running")

	require.NoError(t, s.Stop())
	assert.False(t, s.IsRunning())
	assert.NoError(t, s.Stop(), "stopping a stopped scheduler is a no-op")
}

func TestScheduledCycleInvokesRunner(t *testing.T) {
	runner := newFakeRunner()
	s := NewScheduler(runner, testLogger())

	require.NoError(t, s.ScheduleCycles("@every 50ms"))
	require.NoError(t, s.Start())
	defer func() { _ = s.Stop() }()

	select {
	case <-runner.ran:
	case <-time.After(3 * time.Second):
		t.Fatal("scheduled cycle never ran")
	}
	assert.GreaterOrEqual(t, runner.callCount(), 1)
}
