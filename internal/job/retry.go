package job

import (
	"context"
	"time"
)

// State is where a bounded retry loop stands.
type State int

const (
	Attempting State = iota
	Succeeded
	Exhausted
)

func (s State) String() string {
	switch s {
	case Attempting:
		return "attempting"
	case Succeeded:
		return "succeeded"
	case Exhausted:
		return "exhausted"
	}
	return "unknown"
}

// Status is a retry loop position: the state and the 1-based attempt that
// produced it.
type Status struct {
	State   State
	Attempt int
}

// Next is the pure transition of the retry loop after an attempt that
// returned err. maxAttempts counts every attempt, the first included.
func Next(s Status, err error, maxAttempts int) Status {
	if s.State != Attempting {
		return s
	}
	if err == nil {
		return Status{State: Succeeded, Attempt: s.Attempt}
	}
	if s.Attempt >= maxAttempts {
		return Status{State: Exhausted, Attempt: s.Attempt}
	}
	return Status{State: Attempting, Attempt: s.Attempt + 1}
}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep is the real SleepFunc.
func Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
