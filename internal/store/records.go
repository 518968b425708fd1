package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"report-bot/internal/apperr"
	"report-bot/internal/model"
	"report-bot/internal/repo"
)

type RecordStore struct {
	client  *mongo.Client
	records *mongo.Collection
}

func NewRecordStore(ctx context.Context, db *MongoDB) (*RecordStore, error) {
	records := db.Collection("daily_records")

	if _, err := records.Indexes().CreateMany(ctx, recordIndexes()); err != nil {
		return nil, fmt.Errorf("create daily_records indexes: %w", err)
	}

	return &RecordStore{client: db.client, records: records}, nil
}

func recordIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			// At most one pending attendance record per owner per day.
			Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "day", Value: 1}},
			Options: options.Index().
				SetName("uniq_pending_attendance").
				SetUnique(true).
				SetPartialFilterExpression(bson.D{
					{Key: "category", Value: string(model.CategoryAttendance)},
					{Key: "status", Value: string(model.RecordStatusPending)},
				}),
		},
		{Keys: bson.D{{Key: "day", Value: 1}, {Key: "category", Value: 1}}},
		{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "companion", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: 1}}},
	}
}

// RunInTx runs fn inside a session transaction.
func (s *RecordStore) RunInTx(ctx context.Context, fn func(ctx context.Context, tx repo.RecordTx) error) error {
	sess, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(ctx context.Context) (any, error) {
		return nil, fn(ctx, recordTx{records: s.records})
	})
	return conflict(err)
}

func (s *RecordStore) ListByDay(ctx context.Context, day string, f model.RecordFilter) ([]model.DailyRecord, error) {
	filter := bson.M{"day": day}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if len(f.OwnerIDs) > 0 {
		filter["owner_id"] = bson.M{"$in": f.OwnerIDs}
	}
	return s.find(ctx, filter)
}

func (s *RecordStore) ListByOwners(ctx context.Context, ownerIDs []string) ([]model.DailyRecord, error) {
	return s.find(ctx, bson.M{"owner_id": bson.M{"$in": ownerIDs}})
}

func (s *RecordStore) ListCreatedBefore(ctx context.Context, before time.Time) ([]model.DailyRecord, error) {
	return s.find(ctx, bson.M{"created_at": bson.M{"$lt": before}})
}

func (s *RecordStore) find(ctx context.Context, filter bson.M) ([]model.DailyRecord, error) {
	cursor, err := s.records.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find records: %w", err)
	}
	var results []model.DailyRecord
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	return results, nil
}

type recordTx struct {
	records *mongo.Collection
}

func (t recordTx) FindPending(ctx context.Context, ownerID, day string) (*model.DailyRecord, error) {
	var rec model.DailyRecord
	err := t.records.FindOne(ctx, bson.M{
		"owner_id": ownerID,
		"day":      day,
		"category": model.CategoryAttendance,
		"status":   model.RecordStatusPending,
	}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
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
	now := time.Now()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = now
	}
	if _, err := t.records.InsertOne(ctx, rec); err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

func (t recordTx) Update(ctx context.Context, rec *model.DailyRecord) error {
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = time.Now()
	}
	res, err := t.records.ReplaceOne(ctx, bson.M{"_id": rec.ID}, rec)
	if err != nil {
		return fmt.Errorf("replace record: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("record %s: %w", rec.ID, apperr.ErrNotFound)
	}
	return nil
}

func (t recordTx) HasCompanion(ctx context.Context, ownerID, day string) (bool, error) {
	n, err := t.records.CountDocuments(ctx, companionFilter(ownerID, day))
	if err != nil {
		return false, fmt.Errorf("count companions: %w", err)
	}
	return n > 0, nil
}

func (t recordTx) DeleteCompanions(ctx context.Context, ownerID, day string) error {
	if _, err := t.records.DeleteMany(ctx, companionFilter(ownerID, day)); err != nil {
		return fmt.Errorf("delete companions: %w", err)
	}
	return nil
}

func (t recordTx) DeleteTasks(ctx context.Context, ownerID, day string) error {
	if _, err := t.records.DeleteMany(ctx, bson.M{
		"owner_id":  ownerID,
		"day":       day,
		"category":  model.CategoryTask,
		"companion": false,
	}); err != nil {
		return fmt.Errorf("delete tasks: %w", err)
	}
	return nil
}

func companionFilter(ownerID, day string) bson.M {
	return bson.M{"owner_id": ownerID, "day": day, "companion": true}
}
