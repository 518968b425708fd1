// Package memory is an in-process store backend for tests and local runs.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"report-bot/internal/apperr"
	"report-bot/internal/model"
	"report-bot/internal/repo"
)

type Store struct {
	mu      sync.RWMutex
	members []model.Member
	records []model.DailyRecord
	cards   []model.CardMessage
	now     func() time.Time
}

func New() *Store {
	return &Store{now: time.Now}
}

// Members returns the member repository view of the store.
func (s *Store) Members() repo.Members { return memberRepo{s} }

func (s *Store) Records() repo.Records { return recordRepo{s} }

func (s *Store) Cards() repo.Cards { return cardRepo{s} }

// --- members ---

type memberRepo struct{ s *Store }

func (r memberRepo) ListActive(_ context.Context) ([]model.Member, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []model.Member
	for _, m := range r.s.members {
		if m.IsActive {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r memberRepo) ListAll(_ context.Context) ([]model.Member, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return slices.Clone(r.s.members), nil
}

func (r memberRepo) Get(_ context.Context, id string) (*model.Member, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	i := r.s.memberIndex(id)
	if i < 0 {
		return nil, fmt.Errorf("member %s: %w", id, apperr.ErrNotFound)
	}
	m := r.s.members[i]
	return &m, nil
}

func (r memberRepo) Save(_ context.Context, m *model.Member) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if m.ID == "" {
		m.ID = model.NewID()
	}
	now := r.s.now()
	i := r.s.memberIndex(m.ID)
	switch {
	case i >= 0:
		m.CreatedAt = r.s.members[i].CreatedAt
	case m.CreatedAt.IsZero():
		m.CreatedAt = now
	}
	m.UpdatedAt = now
	for _, other := range r.s.members {
		if other.Email == m.Email && other.ID != m.ID {
			return fmt.Errorf("email %s already used: %w", m.Email, apperr.ErrConflict)
		}
	}
	if i >= 0 {
		r.s.members[i] = *m
		return nil
	}
	r.s.members = append(r.s.members, *m)
	return nil
}

func (r memberRepo) Deactivate(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i := r.s.memberIndex(id)
	if i < 0 {
		return fmt.Errorf("member %s: %w", id, apperr.ErrNotFound)
	}
	r.s.members[i].IsActive = false
	r.s.members[i].UpdatedAt = r.s.now()
	return nil
}

func (r memberRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i := r.s.memberIndex(id)
	if i < 0 {
		return fmt.Errorf("member %s: %w", id, apperr.ErrNotFound)
	}
	r.s.members = slices.Delete(r.s.members, i, i+1)
	return nil
}

func (s *Store) memberIndex(id string) int {
	return slices.IndexFunc(s.members, func(m model.Member) bool { return m.ID == id })
}

// --- records ---

type recordRepo struct{ s *Store }

// RunInTx holds the write lock for the whole of fn and restores the record
// set if fn fails.
func (r recordRepo) RunInTx(ctx context.Context, fn func(ctx context.Context, tx repo.RecordTx) error) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	snapshot := slices.Clone(r.s.records)
	if err := fn(ctx, txView{r.s}); err != nil {
		r.s.records = snapshot
		return err
	}
	return nil
}

func (r recordRepo) ListByDay(_ context.Context, day string, f model.RecordFilter) ([]model.DailyRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []model.DailyRecord
	for _, rec := range r.s.records {
		if rec.Day != day || !matches(rec, f) {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (r recordRepo) ListByOwners(_ context.Context, ownerIDs []string) ([]model.DailyRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []model.DailyRecord
	for _, rec := range r.s.records {
		if slices.Contains(ownerIDs, rec.OwnerID) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r recordRepo) ListCreatedBefore(_ context.Context, before time.Time) ([]model.DailyRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []model.DailyRecord
	for _, rec := range r.s.records {
		if rec.CreatedAt.Before(before) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func matches(rec model.DailyRecord, f model.RecordFilter) bool {
	if f.Category != "" && rec.Category != f.Category {
		return false
	}
	if f.Status != "" && rec.Status != f.Status {
		return false
	}
	if len(f.OwnerIDs) > 0 && !slices.Contains(f.OwnerIDs, rec.OwnerID) {
		return false
	}
	return true
}

// txView operates on the store while RunInTx holds its lock.
type txView struct{ s *Store }

func (t txView) FindPending(_ context.Context, ownerID, day string) (*model.DailyRecord, error) {
	for _, rec := range t.s.records {
		if isPendingAttendance(rec) && rec.OwnerID == ownerID && rec.Day == day {
			out := rec
			return &out, nil
		}
	}
	return nil, nil
}

func (t txView) Create(_ context.Context, rec *model.DailyRecord) error {
	if isPendingAttendance(*rec) {
		for _, other := range t.s.records {
			if isPendingAttendance(other) && other.OwnerID == rec.OwnerID && other.Day == rec.Day {
				return fmt.Errorf("pending record for %s on %s: %w", rec.OwnerID, rec.Day, apperr.ErrConflict)
			}
		}
	}
	if rec.ID == "" {
		rec.ID = model.NewID()
	}
	now := t.s.now()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = now
	}
	stored := *rec
	stored.Owner = nil
	t.s.records = append(t.s.records, stored)
	return nil
}

func (t txView) Update(_ context.Context, rec *model.DailyRecord) error {
	i := slices.IndexFunc(t.s.records, func(r model.DailyRecord) bool { return r.ID == rec.ID })
	if i < 0 {
		return fmt.Errorf("record %s: %w", rec.ID, apperr.ErrNotFound)
	}
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = t.s.now()
	}
	stored := *rec
	stored.Owner = nil
	t.s.records[i] = stored
	return nil
}

func (t txView) HasCompanion(_ context.Context, ownerID, day string) (bool, error) {
	return slices.ContainsFunc(t.s.records, func(r model.DailyRecord) bool {
		return r.Companion && r.OwnerID == ownerID && r.Day == day
	}), nil
}

func (t txView) DeleteCompanions(_ context.Context, ownerID, day string) error {
	t.s.records = slices.DeleteFunc(t.s.records, func(r model.DailyRecord) bool {
		return r.Companion && r.OwnerID == ownerID && r.Day == day
	})
	return nil
}

func (t txView) DeleteTasks(_ context.Context, ownerID, day string) error {
	t.s.records = slices.DeleteFunc(t.s.records, func(r model.DailyRecord) bool {
		return r.Category == model.CategoryTask && !r.Companion && r.OwnerID == ownerID && r.Day == day
	})
	return nil
}

func isPendingAttendance(r model.DailyRecord) bool {
	return r.Category == model.CategoryAttendance && r.Status == model.RecordStatusPending
}

// --- cards ---

type cardRepo struct{ s *Store }

func (r cardRepo) Save(_ context.Context, c *model.CardMessage) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if c.ID == "" {
		c.ID = model.NewID()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = r.s.now()
	}
	r.s.cards = append(r.s.cards, *c)
	return nil
}

func (r cardRepo) List(_ context.Context, typ model.CardType, ownerID string) ([]model.CardMessage, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []model.CardMessage
	for _, c := range slices.Backward(r.s.cards) {
		if typ != "" && c.Type != typ {
			continue
		}
		if ownerID != "" && c.OwnerID != ownerID {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

// AddRecord inserts rec outside any transaction. Used for seeding task rows.
func (s *Store) AddRecord(ctx context.Context, rec *model.DailyRecord) error {
	return s.Records().RunInTx(ctx, func(ctx context.Context, tx repo.RecordTx) error {
		return tx.Create(ctx, rec)
	})
}
