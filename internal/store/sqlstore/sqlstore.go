// Package sqlstore is the PostgreSQL store backend, built on gorm.
package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"report-bot/internal/apperr"
	"report-bot/internal/model"
	"report-bot/internal/repo"
)

type DB struct {
	gorm *gorm.DB
}

// Open connects, migrates the schema and creates the pending-record
// uniqueness index.
func Open(ctx context.Context, dsn string) (*DB, error) {
	g, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	g = g.WithContext(ctx)

	if err := g.AutoMigrate(&model.Member{}, &model.DailyRecord{}, &model.CardMessage{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	// gorm tags cannot express a partial index.
	if err := g.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS uniq_pending_attendance
		ON daily_records (owner_id, day)
		WHERE category = 'attendance' AND status = 'pending'`).Error; err != nil {
		return nil, fmt.Errorf("create pending index: %w", err)
	}

	slog.Info("connected to postgres")
	return New(g), nil
}

// New wraps an already configured gorm handle. The handle should have
// TranslateError set so unique violations surface as conflicts.
func New(g *gorm.DB) *DB {
	return &DB{gorm: g}
}

func (d *DB) Ping(ctx context.Context) error {
	sqlDB, err := d.gorm.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (d *DB) Close() error {
	sqlDB, err := d.gorm.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (d *DB) Members() repo.Members { return memberRepo{d.gorm} }

func (d *DB) Records() repo.Records { return recordRepo{d.gorm} }

func (d *DB) Cards() repo.Cards { return cardRepo{d.gorm} }

// isDuplicate reports a unique-constraint violation. It relies on
// TranslateError being enabled on the connection.
func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

func notFound(err error, what, id string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %s: %w", what, id, apperr.ErrNotFound)
	}
	return fmt.Errorf("find %s: %w", what, err)
}

// --- members ---

type memberRepo struct{ db *gorm.DB }

func (r memberRepo) ListActive(ctx context.Context) ([]model.Member, error) {
	var out []model.Member
	if err := r.db.WithContext(ctx).Where("is_active = ?", true).Order("created_at").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list active members: %w", err)
	}
	return out, nil
}

func (r memberRepo) ListAll(ctx context.Context) ([]model.Member, error) {
	var out []model.Member
	if err := r.db.WithContext(ctx).Order("created_at").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	return out, nil
}

func (r memberRepo) Get(ctx context.Context, id string) (*model.Member, error) {
	var m model.Member
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "member", id)
	}
	return &m, nil
}

// Save replaces every column of an existing member except its creation
// time, or inserts it when the id is new.
func (r memberRepo) Save(ctx context.Context, m *model.Member) error {
	if m.ID == "" {
		m.ID = model.NewID()
	}
	now := time.Now()
	m.UpdatedAt = now
	db := r.db.WithContext(ctx)

	res := db.Model(&model.Member{}).Where("id = ?", m.ID).
		Select("*").Omit("id", "created_at").Updates(m)
	switch {
	case res.Error != nil:
		return memberWriteErr(res.Error, m)
	case res.RowsAffected > 0:
		var stored model.Member
		if err := db.Select("created_at").Take(&stored, "id = ?", m.ID).Error; err != nil {
			return fmt.Errorf("reload member: %w", err)
		}
		m.CreatedAt = stored.CreatedAt
		return nil
	}

	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	if err := db.Create(m).Error; err != nil {
		return memberWriteErr(err, m)
	}
	return nil
}

func memberWriteErr(err error, m *model.Member) error {
	if isDuplicate(err) {
		return fmt.Errorf("email %s already used: %w", m.Email, apperr.ErrConflict)
	}
	return fmt.Errorf("save member: %w", err)
}

func (r memberRepo) Deactivate(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Model(&model.Member{}).Where("id = ?", id).
		Updates(map[string]any{"is_active": false, "updated_at": time.Now()})
	if res.Error != nil {
		return fmt.Errorf("deactivate member: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("member %s: %w", id, apperr.ErrNotFound)
	}
	return nil
}

func (r memberRepo) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&model.Member{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("delete member: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("member %s: %w", id, apperr.ErrNotFound)
	}
	return nil
}

// --- records ---

type recordRepo struct{ db *gorm.DB }

func (r recordRepo) RunInTx(ctx context.Context, fn func(ctx context.Context, tx repo.RecordTx) error) error {
	return txErr(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, recordTx{tx})
	}))
}

func txErr(err error) error {
	if isDuplicate(err) {
		return fmt.Errorf("%w: %v", apperr.ErrConflict, err)
	}
	return err
}

func (r recordRepo) ListByDay(ctx context.Context, day string, f model.RecordFilter) ([]model.DailyRecord, error) {
	q := r.db.WithContext(ctx).Where("day = ?", day)
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if len(f.OwnerIDs) > 0 {
		q = q.Where("owner_id IN ?", f.OwnerIDs)
	}
	return list(q)
}

func (r recordRepo) ListByOwners(ctx context.Context, ownerIDs []string) ([]model.DailyRecord, error) {
	return list(r.db.WithContext(ctx).Where("owner_id IN ?", ownerIDs))
}

func (r recordRepo) ListCreatedBefore(ctx context.Context, before time.Time) ([]model.DailyRecord, error) {
	return list(r.db.WithContext(ctx).Where("created_at < ?", before))
}

func list(q *gorm.DB) ([]model.DailyRecord, error) {
	var out []model.DailyRecord
	if err := q.Order("created_at").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	return out, nil
}

type recordTx struct{ tx *gorm.DB }

func (t recordTx) FindPending(ctx context.Context, ownerID, day string) (*model.DailyRecord, error) {
	var rec model.DailyRecord
	err := t.tx.WithContext(ctx).
		Where("owner_id = ? AND day = ? AND category = ? AND status = ?", ownerID, day, model.CategoryAttendance, model.RecordStatusPending).
		Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find pending record: %w", err)
	}
	return &rec, nil
}

func (t recordTx) Create(ctx context.Context, rec *model.DailyRecord) error {
	if rec.ID == "" {
		rec.ID = model.NewID()
	}
	if err := t.tx.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

func (t recordTx) Update(ctx context.Context, rec *model.DailyRecord) error {
	res := t.tx.WithContext(ctx).Model(&model.DailyRecord{}).Where("id = ?", rec.ID).Select("*").Updates(rec)
	if res.Error != nil {
		return fmt.Errorf("update record: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("record %s: %w", rec.ID, apperr.ErrNotFound)
	}
	return nil
}

func (t recordTx) HasCompanion(ctx context.Context, ownerID, day string) (bool, error) {
	var n int64
	if err := t.tx.WithContext(ctx).Model(&model.DailyRecord{}).
		Where("owner_id = ? AND day = ? AND companion = ?", ownerID, day, true).
		Count(&n).Error; err != nil {
		return false, fmt.Errorf("count companions: %w", err)
	}
	return n > 0, nil
}

func (t recordTx) DeleteCompanions(ctx context.Context, ownerID, day string) error {
	if err := t.tx.WithContext(ctx).
		Where("owner_id = ? AND day = ? AND companion = ?", ownerID, day, true).
		Delete(&model.DailyRecord{}).Error; err != nil {
		return fmt.Errorf("delete companions: %w", err)
	}
	return nil
}

func (t recordTx) DeleteTasks(ctx context.Context, ownerID, day string) error {
	if err := t.tx.WithContext(ctx).
		Where("owner_id = ? AND day = ? AND category = ? AND companion = ?", ownerID, day, model.CategoryTask, false).
		Delete(&model.DailyRecord{}).Error; err != nil {
		return fmt.Errorf("delete tasks: %w", err)
	}
	return nil
}

// --- cards ---

type cardRepo struct{ db *gorm.DB }

func (r cardRepo) Save(ctx context.Context, c *model.CardMessage) error {
	if c.ID == "" {
		c.ID = model.NewID()
	}
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		return fmt.Errorf("insert card message: %w", err)
	}
	return nil
}

func (r cardRepo) List(ctx context.Context, typ model.CardType, ownerID string) ([]model.CardMessage, error) {
	q := r.db.WithContext(ctx)
	if typ != "" {
		q = q.Where("type = ?", typ)
	}
	if ownerID != "" {
		q = q.Where("owner_id = ?", ownerID)
	}
	var out []model.CardMessage
	if err := q.Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list card messages: %w", err)
	}
	return out, nil
}
