package scheduler_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"report-bot/internal/scheduler"
)

func TestAdd_RejectsBadSpecAndDuplicates(t *testing.T) {
	s := scheduler.New(time.UTC)

	require.NoError(t, s.Add("attendance", "30 8 * * 1-5", func(context.Context) {}))
	assert.Error(t, s.Add("attendance", "0 9 * * *", func(context.Context) {}))
	assert.Error(t, s.Add("report", "not a spec", func(context.Context) {}))
	assert.Error(t, s.RunNow("missing"))
}

func TestRunNow_SkipsWhileStillRunning(t *testing.T) {
	// GIVEN a task that blocks until released
	s := scheduler.New(time.UTC)
	var runs atomic.Int32
	started := make(chan struct{}, 2)
	release := make(chan struct{})
	require.NoError(t, s.Add("attendance", "30 8 * * 1-5", func(ctx context.Context) {
		runs.Add(1)
		started <- struct{}{}
		select {
		case <-release:
		case <-ctx.Done():
		}
	}))

	// WHEN it is triggered twice
	require.NoError(t, s.RunNow("attendance"))
	<-started
	require.NoError(t, s.RunNow("attendance"))
	time.Sleep(50 * time.Millisecond)
	close(release)

	// THEN only one run happened
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
	assert.Equal(t, int32(1), runs.Load())
}

func TestStop_CancelsRunningTask(t *testing.T) {
	s := scheduler.New(time.UTC)
	started := make(chan struct{})
	var cancelled atomic.Bool
	require.NoError(t, s.Add("report", "0 18 * * 1-5", func(ctx context.Context) {
		close(started)
		<-ctx.Done()
		cancelled.Store(true)
	}))
	s.Start()

	require.NoError(t, s.RunNow("report"))
	<-started
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	require.NoError(t, s.Stop(ctx))
	assert.True(t, cancelled.Load())
}

func TestRunNow_AfterStopDoesNotRun(t *testing.T) {
	// GIVEN a stopped scheduler
	s := scheduler.New(time.UTC)
	var runs atomic.Int32
	require.NoError(t, s.Add("attendance", "30 8 * * 1-5", func(context.Context) { runs.Add(1) }))
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))

	// WHEN a manual run is requested
	err := s.RunNow("attendance")

	// THEN it is refused and nothing runs
	assert.Error(t, err)
	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, runs.Load())
}

func TestStop_RacingRunNowIsSafe(t *testing.T) {
	// GIVEN manual runs requested while Stop is waiting
	s := scheduler.New(time.UTC)
	require.NoError(t, s.Add("report", "0 18 * * 1-5", func(ctx context.Context) {
		<-ctx.Done()
	}))
	require.NoError(t, s.RunNow("report"))

	done := make(chan error, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		done <- s.Stop(ctx)
	}()
	for range 20 {
		_ = s.RunNow("report")
	}

	// THEN Stop still returns cleanly
	require.NoError(t, <-done)
}
