package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"report-bot/internal/apperr"
	"report-bot/internal/model"
	"report-bot/internal/policy"
	"report-bot/internal/repo"
	"report-bot/internal/roster"
	"report-bot/internal/timewindow"
)

type RecordService struct {
	records repo.Records
	members repo.Members
	rules   policy.Rules
	clock   timewindow.Clock
}

func NewRecordService(records repo.Records, members repo.Members, rules policy.Rules, clock timewindow.Clock) *RecordService {
	if clock == nil {
		clock = timewindow.System
	}
	if rules.Location == nil {
		rules.Location = time.Local
	}
	return &RecordService{records: records, members: members, rules: rules, clock: clock}
}

// Submit stores today's attendance for the submission's owner: it creates
// the pending record or overwrites the existing one, and keeps the
// full-day companion row in step, all in one transaction.
func (s *RecordService) Submit(ctx context.Context, sub policy.Submission) (*model.DailyRecord, error) {
	now := s.clock()
	day := timewindow.Today(now, s.rules.Location).Day()

	next, err := policy.BuildRecord(sub, day, now, s.rules)
	if err != nil {
		return nil, err
	}
	if _, err := s.members.Get(ctx, sub.OwnerID); err != nil {
		if apperr.IsNotFound(err) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: lookup owner: %v", apperr.ErrServer, err)
	}

	var saved *model.DailyRecord
	upsert := func(ctx context.Context, tx repo.RecordTx) error {
		existing, err := tx.FindPending(ctx, sub.OwnerID, day)
		if err != nil {
			return err
		}
		hasCompanion, err := tx.HasCompanion(ctx, sub.OwnerID, day)
		if err != nil {
			return err
		}
		plan := policy.Decide(existing, next.LeavePeriod, hasCompanion)

		rec := *next
		rec.CreatedAt, rec.UpdatedAt = now, now
		switch plan.Primary {
		case policy.PrimaryCreate:
			rec.ID = model.NewID()
			if err := tx.Create(ctx, &rec); err != nil {
				return err
			}
			saved = &rec
		case policy.PrimaryUpdate:
			saved = policy.Overwrite(existing, &rec)
			if err := tx.Update(ctx, saved); err != nil {
				return err
			}
		}

		switch plan.Companion {
		case policy.CompanionCreate:
			c := policy.Companion(saved)
			c.ID = model.NewID()
			c.CreatedAt, c.UpdatedAt = now, now
			return tx.Create(ctx, c)
		case policy.CompanionDelete:
			return tx.DeleteCompanions(ctx, sub.OwnerID, day)
		}
		return nil
	}

	err = s.records.RunInTx(ctx, upsert)
	if errors.Is(err, apperr.ErrConflict) {
		// A concurrent submission created the pending row first; the
		// second pass sees it and updates.
		slog.Info("submit: pending record conflict, retrying", "owner", sub.OwnerID, "day", day)
		err = s.records.RunInTx(ctx, upsert)
	}
	if err != nil {
		slog.Error("submit: transaction failed", "owner", sub.OwnerID, "day", day, "err", err)
		return nil, fmt.Errorf("%w: save record: %v", apperr.ErrServer, err)
	}
	return saved, nil
}

// SubmitTasks stores today's evening report for the owner. A repeated
// submission replaces the earlier task rows; the companion placeholder is
// left to Submit.
func (s *RecordService) SubmitTasks(ctx context.Context, rep policy.TaskReport) ([]model.DailyRecord, error) {
	now := s.clock()
	day := timewindow.Today(now, s.rules.Location).Day()

	rows, err := policy.BuildTasks(rep, day)
	if err != nil {
		return nil, err
	}
	if _, err := s.members.Get(ctx, rep.OwnerID); err != nil {
		if apperr.IsNotFound(err) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: lookup owner: %v", apperr.ErrServer, err)
	}

	err = s.records.RunInTx(ctx, func(ctx context.Context, tx repo.RecordTx) error {
		if err := tx.DeleteTasks(ctx, rep.OwnerID, day); err != nil {
			return err
		}
		for i := range rows {
			rows[i].ID = model.NewID()
			// Listings sort by created_at; spacing the rows keeps their order.
			rows[i].CreatedAt = now.Add(time.Duration(i) * time.Millisecond)
			rows[i].UpdatedAt = now
			if err := tx.Create(ctx, &rows[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		slog.Error("submit tasks: transaction failed", "owner", rep.OwnerID, "day", day, "err", err)
		return nil, fmt.Errorf("%w: save tasks: %v", apperr.ErrServer, err)
	}
	slog.Info("submit tasks: stored", "owner", rep.OwnerID, "day", day, "tasks", len(rows))
	return rows, nil
}

// ListToday returns today's records matching f, with owners attached.
func (s *RecordService) ListToday(ctx context.Context, f model.RecordFilter) ([]model.DailyRecord, error) {
	day := timewindow.Today(s.clock(), s.rules.Location).Day()
	recs, err := s.records.ListByDay(ctx, day, f)
	if err != nil {
		return nil, err
	}
	return s.withOwners(ctx, recs)
}

func (s *RecordService) ListByOwners(ctx context.Context, ownerIDs []string) ([]model.DailyRecord, error) {
	if len(ownerIDs) == 0 {
		return nil, apperr.Invalid("owner_ids", "at least one owner id is required")
	}
	recs, err := s.records.ListByOwners(ctx, ownerIDs)
	if err != nil {
		return nil, err
	}
	return s.withOwners(ctx, recs)
}

// ListOlderThan returns records created before local midnight days ago.
func (s *RecordService) ListOlderThan(ctx context.Context, days int) ([]model.DailyRecord, error) {
	if days < 0 {
		return nil, apperr.Invalid("days", "must not be negative")
	}
	return s.records.ListCreatedBefore(ctx, timewindow.DaysAgo(s.clock(), days, s.rules.Location))
}

func (s *RecordService) withOwners(ctx context.Context, recs []model.DailyRecord) ([]model.DailyRecord, error) {
	all, err := s.members.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	roster.Attach(recs, roster.Index(all))
	return recs, nil
}
