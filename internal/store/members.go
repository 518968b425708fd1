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
)

type MemberStore struct {
	members *mongo.Collection
}

func NewMemberStore(ctx context.Context, db *MongoDB) (*MemberStore, error) {
	members := db.Collection("members")

	if _, err := members.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "is_active", Value: 1}, {Key: "created_at", Value: 1}}},
		{Keys: bson.D{{Key: "supervisor_id", Value: 1}}},
	}); err != nil {
		return nil, fmt.Errorf("create members indexes: %w", err)
	}

	return &MemberStore{members: members}, nil
}

// ListActive returns active members in creation order.
func (s *MemberStore) ListActive(ctx context.Context) ([]model.Member, error) {
	return s.find(ctx, bson.M{"is_active": true})
}

func (s *MemberStore) ListAll(ctx context.Context) ([]model.Member, error) {
	return s.find(ctx, bson.M{})
}

func (s *MemberStore) find(ctx context.Context, filter bson.M) ([]model.Member, error) {
	cursor, err := s.members.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find members: %w", err)
	}
	var results []model.Member
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("decode members: %w", err)
	}
	return results, nil
}

func (s *MemberStore) Get(ctx context.Context, id string) (*model.Member, error) {
	var m model.Member
	err := s.members.FindOne(ctx, bson.M{"_id": id}).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("member %s: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find member: %w", err)
	}
	return &m, nil
}

// Save upserts the member, assigning an ID when missing. An existing
// member keeps its stored creation time.
func (s *MemberStore) Save(ctx context.Context, m *model.Member) error {
	if m.ID == "" {
		m.ID = model.NewID()
	}
	update, err := memberUpdate(m, time.Now())
	if err != nil {
		return err
	}

	err = s.members.FindOneAndUpdate(ctx, bson.M{"_id": m.ID}, update,
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(m)
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("email %s already used: %w", m.Email, apperr.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("save member: %w", err)
	}
	return nil
}

// memberUpdate sets every field but the id and creation time; created_at
// is only written when the upsert inserts.
func memberUpdate(m *model.Member, now time.Time) (bson.M, error) {
	created := m.CreatedAt
	if created.IsZero() {
		created = now
	}
	m.UpdatedAt = now

	raw, err := bson.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode member: %w", err)
	}
	var set bson.M
	if err := bson.Unmarshal(raw, &set); err != nil {
		return nil, fmt.Errorf("encode member: %w", err)
	}
	delete(set, "_id")
	delete(set, "created_at")

	return bson.M{
		"$set":         set,
		"$setOnInsert": bson.M{"created_at": created},
	}, nil
}

func (s *MemberStore) Deactivate(ctx context.Context, id string) error {
	res, err := s.members.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"is_active": false, "updated_at": time.Now()},
	})
	if err != nil {
		return fmt.Errorf("deactivate member: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("member %s: %w", id, apperr.ErrNotFound)
	}
	return nil
}

func (s *MemberStore) Delete(ctx context.Context, id string) error {
	res, err := s.members.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete member: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("member %s: %w", id, apperr.ErrNotFound)
	}
	return nil
}
