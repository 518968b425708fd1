package job

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"report-bot/internal/card"
	"report-bot/internal/model"
	"report-bot/internal/repo"
	"report-bot/internal/roster"
	"report-bot/internal/timewindow"
)

type ReportConfig struct {
	// Manager is mentioned when a group has no member with the manager role.
	Manager  card.Manager
	Location *time.Location
}

// ReportJob posts one task summary per reporter group. Groups are
// independent: one group's failure does not affect the others.
type ReportJob struct {
	members repo.Members
	records repo.Records
	cards   repo.Cards
	sink    Sink
	cfg     ReportConfig
	clock   timewindow.Clock
}

func NewReportJob(members repo.Members, records repo.Records, cards repo.Cards, sink Sink, cfg ReportConfig) *ReportJob {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &ReportJob{members: members, records: records, cards: cards, sink: sink, cfg: cfg, clock: timewindow.System}
}

func (j *ReportJob) WithClock(c timewindow.Clock) *ReportJob {
	j.clock = c
	return j
}

// GroupOutcome is the result of one group's send.
type GroupOutcome struct {
	LeadID string
	Err    error
}

// Run sends every group's card concurrently and returns each outcome in
// group order. Only a failure to load the roster is returned as an error.
func (j *ReportJob) Run(ctx context.Context) ([]GroupOutcome, error) {
	now := j.clock().In(j.cfg.Location)
	day := timewindow.Today(now, j.cfg.Location).Day()

	members, err := j.members.ListActive(ctx)
	if err != nil {
		slog.Error("report: list members failed", "err", err)
		return nil, fmt.Errorf("list members: %w", err)
	}
	idx := roster.Index(members)
	groups := roster.Groups(members)

	outcomes := make([]GroupOutcome, len(groups))
	var g errgroup.Group
	for i, grp := range groups {
		g.Go(func() error {
			err := j.sendGroup(ctx, now, day, grp, idx)
			outcomes[i] = GroupOutcome{LeadID: grp.Lead.ID, Err: err}
			if err != nil {
				slog.Error("report: group not delivered", "group", grp.Lead.ID, "err", err)
			} else {
				slog.Info("report: group delivered", "group", grp.Lead.ID, "members", len(grp.MemberIDs))
			}
			return nil
		})
	}
	_ = g.Wait()
	return outcomes, nil
}

func (j *ReportJob) sendGroup(ctx context.Context, now time.Time, day string, grp roster.Group, idx map[string]model.Member) error {
	records, err := j.records.ListByDay(ctx, day, model.RecordFilter{
		Category: model.CategoryTask,
		OwnerIDs: grp.MemberIDs,
	})
	if err != nil {
		return fmt.Errorf("list records: %w", err)
	}
	roster.Attach(records, idx)

	groupMembers := make([]model.Member, 0, len(grp.MemberIDs))
	for _, id := range grp.MemberIDs {
		groupMembers = append(groupMembers, idx[id])
	}

	blocks, err := card.TaskSummaryBlocks(ctx, now, groupMembers, records, j.cfg.Manager)
	if err != nil {
		return err
	}
	msg := card.TaskSummary(blocks)

	// The audit copy is best-effort.
	if raw, err := msg.JSON(); err != nil {
		slog.Warn("report: render audit copy", "group", grp.Lead.ID, "err", err)
	} else if err := j.cards.Save(ctx, &model.CardMessage{Type: model.CardTypeReport, CardMessage: raw, OwnerID: grp.Lead.ID}); err != nil {
		slog.Warn("report: save audit copy", "group", grp.Lead.ID, "err", err)
	}

	return j.sink.PostCard(ctx, grp.ChannelURL, msg)
}

type ReportReminderConfig struct {
	WebhookURL string
	FormURL    string
}

// ReportReminderJob asks everyone to submit their evening report.
type ReportReminderJob struct {
	sink Sink
	cfg  ReportReminderConfig
}

func NewReportReminderJob(sink Sink, cfg ReportReminderConfig) *ReportReminderJob {
	return &ReportReminderJob{sink: sink, cfg: cfg}
}

func (j *ReportReminderJob) Run(ctx context.Context) error {
	if err := j.sink.PostCard(ctx, j.cfg.WebhookURL, card.ReportReminder(ctx, j.cfg.FormURL)); err != nil {
		slog.Error("report reminder: not delivered", "err", err)
		return err
	}
	slog.Info("report reminder: sent")
	return nil
}
