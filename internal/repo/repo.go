// Package repo declares the persistence contracts shared by every store
// backend (MongoDB, PostgreSQL, in-memory).
package repo

import (
	"context"
	"time"

	"report-bot/internal/model"
)

type Members interface {
	// ListActive returns members with is_active set, ordered by creation.
	ListActive(ctx context.Context) ([]model.Member, error)
	ListAll(ctx context.Context) ([]model.Member, error)
	Get(ctx context.Context, id string) (*model.Member, error)
	// Save inserts or replaces the member by ID.
	Save(ctx context.Context, m *model.Member) error
	Deactivate(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

// RecordTx is the set of record mutations that run inside one transaction.
type RecordTx interface {
	// FindPending returns the owner's pending attendance record for day, or nil.
	FindPending(ctx context.Context, ownerID, day string) (*model.DailyRecord, error)
	Create(ctx context.Context, r *model.DailyRecord) error
	Update(ctx context.Context, r *model.DailyRecord) error
	HasCompanion(ctx context.Context, ownerID, day string) (bool, error)
	DeleteCompanions(ctx context.Context, ownerID, day string) error
	// DeleteTasks removes the owner's submitted task rows for day. Companion
	// placeholders are left alone.
	DeleteTasks(ctx context.Context, ownerID, day string) error
}

type Records interface {
	// RunInTx runs fn atomically. A duplicate pending record surfaces as
	// apperr.ErrConflict.
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx RecordTx) error) error
	ListByDay(ctx context.Context, day string, f model.RecordFilter) ([]model.DailyRecord, error)
	ListByOwners(ctx context.Context, ownerIDs []string) ([]model.DailyRecord, error)
	ListCreatedBefore(ctx context.Context, before time.Time) ([]model.DailyRecord, error)
}

type Cards interface {
	Save(ctx context.Context, c *model.CardMessage) error
	List(ctx context.Context, typ model.CardType, ownerID string) ([]model.CardMessage, error)
}
