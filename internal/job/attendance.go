// Package job holds the scheduled broadcasts: the morning attendance
// summary, the evening per-group task summaries and the report reminder.
package job

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"report-bot/internal/apperr"
	"report-bot/internal/card"
	"report-bot/internal/model"
	"report-bot/internal/repo"
	"report-bot/internal/roster"
	"report-bot/internal/timewindow"
)

// Sink delivers a card document to a webhook URL.
type Sink interface {
	PostCard(ctx context.Context, url string, doc any) error
}

type AttendanceConfig struct {
	WebhookURL  string
	FormURL     string
	MaxAttempts int
	RetryDelay  time.Duration
	Location    *time.Location
}

// AttendanceJob waits for the whole roster to report, nudging stragglers
// on every failed attempt, then posts the attendance summary.
type AttendanceJob struct {
	members repo.Members
	records repo.Records
	sink    Sink
	cfg     AttendanceConfig
	clock   timewindow.Clock
	sleep   SleepFunc
}

func NewAttendanceJob(members repo.Members, records repo.Records, sink Sink, cfg AttendanceConfig) *AttendanceJob {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &AttendanceJob{
		members: members,
		records: records,
		sink:    sink,
		cfg:     cfg,
		clock:   timewindow.System,
		sleep:   Sleep,
	}
}

// WithClock replaces the wall clock. For tests.
func (j *AttendanceJob) WithClock(c timewindow.Clock) *AttendanceJob {
	j.clock = c
	return j
}

// WithSleep replaces the delay between attempts. For tests.
func (j *AttendanceJob) WithSleep(s SleepFunc) *AttendanceJob {
	j.sleep = s
	return j
}

type Result struct {
	Status Status
	Err    error // last attempt's error; nil on success
}

// Run drives the retry loop to completion. Failures never escape: they end
// up in the result and the log.
func (j *AttendanceJob) Run(ctx context.Context) Result {
	st := Status{State: Attempting, Attempt: 1}
	for {
		err := j.attempt(ctx)
		next := Next(st, err, j.cfg.MaxAttempts)

		switch next.State {
		case Succeeded:
			slog.Info("attendance: summary sent", "attempt", st.Attempt)
			return Result{Status: next}
		case Exhausted:
			slog.Error("attendance: giving up", "attempts", st.Attempt, "err", err)
			return Result{Status: next, Err: err}
		}

		slog.Warn("attendance: attempt failed, retrying", "attempt", st.Attempt, "delay", j.cfg.RetryDelay, "err", err)
		if serr := j.sleep(ctx, j.cfg.RetryDelay); serr != nil {
			slog.Warn("attendance: stopped while waiting", "attempt", st.Attempt, "err", serr)
			return Result{Status: Status{State: Exhausted, Attempt: st.Attempt}, Err: errors.Join(err, serr)}
		}
		st = next
	}
}

func (j *AttendanceJob) attempt(ctx context.Context) error {
	now := j.clock()
	day := timewindow.Today(now, j.cfg.Location).Day()

	active, err := j.members.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("list members: %w", err)
	}
	members := slices.DeleteFunc(active, func(m model.Member) bool { return !m.InRoster() })

	records, err := j.records.ListByDay(ctx, day, model.RecordFilter{Category: model.CategoryAttendance})
	if err != nil {
		return fmt.Errorf("list records: %w", err)
	}

	reported, missing := roster.Partition(members, records)
	if len(missing) > 0 {
		msg := card.AttendanceReminder(ctx, missing, j.cfg.FormURL)
		if err := j.sink.PostCard(ctx, j.cfg.WebhookURL, msg); err != nil {
			slog.Error("attendance: reminder not delivered", "missing", len(missing), "err", err)
		}
		return fmt.Errorf("%w: %d of %d members reported", apperr.ErrReconciliationIncomplete, len(reported), len(members))
	}

	idx := roster.Index(members)
	records = slices.DeleteFunc(records, func(r model.DailyRecord) bool {
		_, ok := idx[r.OwnerID]
		return !ok
	})
	roster.Attach(records, idx)
	sortByProject(records)

	msg := card.Attendance(ctx, now.In(j.cfg.Location), records, len(members))
	if err := j.sink.PostCard(ctx, j.cfg.WebhookURL, msg); err != nil {
		return fmt.Errorf("post summary: %w", err)
	}
	return nil
}

// sortByProject orders records by the owner's project name in Japanese
// collation order. Ties keep their stored order.
func sortByProject(records []model.DailyRecord) {
	c := collate.New(language.Japanese)
	slices.SortStableFunc(records, func(a, b model.DailyRecord) int {
		return c.CompareString(a.OwnerProject(), b.OwnerProject())
	})
}
