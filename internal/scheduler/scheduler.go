// Package scheduler fires the broadcast jobs on weekday cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Task is one run of a job. It must return when ctx is done.
type Task func(ctx context.Context)

type entry struct {
	spec string
	run  cron.Job
}

// Scheduler runs registered tasks on their cron specs. A task whose
// previous run is still going is skipped rather than started twice.
type Scheduler struct {
	cron    *cron.Cron
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	stopped bool // guarded by mu; no wg.Add once set
	entries map[string]entry
}

func New(loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:    cron.New(cron.WithLocation(loc)),
		ctx:     ctx,
		cancel:  cancel,
		entries: make(map[string]entry),
	}
}

// Add registers task under name on a standard five-field cron spec.
func (s *Scheduler) Add(name, spec string, task Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[name]; ok {
		return fmt.Errorf("scheduler: task %q already registered", name)
	}

	// Wrap once so cron-fired and manual runs share the overlap guard.
	job := cron.NewChain(cron.Recover(cronLogger{}), cron.SkipIfStillRunning(cronLogger{})).Then(cron.FuncJob(func() {
		if !s.begin() {
			return
		}
		defer s.wg.Done()
		start := time.Now()
		slog.Info("scheduler: task started", "task", name)
		task(s.ctx)
		slog.Info("scheduler: task finished", "task", name, "duration", time.Since(start))
	}))

	if _, err := s.cron.AddJob(spec, job); err != nil {
		return fmt.Errorf("scheduler: task %q spec %q: %w", name, spec, err)
	}
	s.entries[name] = entry{spec: spec, run: job}
	return nil
}

// begin registers a run with the wait group unless Stop has been called.
func (s *Scheduler) begin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return false
	}
	s.wg.Add(1)
	return true
}

func (s *Scheduler) Start() {
	s.cron.Start()
	slog.Info("scheduler: started", "tasks", len(s.entries))
}

// Stop halts the timers, cancels running tasks and waits for them.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()

	cronDone := s.cron.Stop()
	s.cancel()

	done := make(chan struct{})
	go func() {
		<-cronDone.Done()
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		slog.Info("scheduler: stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunNow starts the named task in the background, outside its schedule.
func (s *Scheduler) RunNow(name string) error {
	s.mu.Lock()
	e, ok := s.entries[name]
	stopped := s.stopped
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("scheduler: unknown task %q", name)
	}
	if stopped {
		return fmt.Errorf("scheduler: stopped, not running %q", name)
	}
	go e.run.Run()
	return nil
}

// cronLogger routes cron's own messages through slog.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...any) {
	slog.Debug("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...any) {
	slog.Error("cron: "+msg, append(keysAndValues, "err", err)...)
}
