package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"report-bot/internal/model"
)

// CardStore keeps the audit copy of every rendered report card.
type CardStore struct {
	cards *mongo.Collection
}

func NewCardStore(ctx context.Context, db *MongoDB) (*CardStore, error) {
	cards := db.Collection("card_messages")

	if _, err := cards.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "type", Value: 1}}},
	}); err != nil {
		return nil, fmt.Errorf("create card_messages indexes: %w", err)
	}

	return &CardStore{cards: cards}, nil
}

func (s *CardStore) Save(ctx context.Context, c *model.CardMessage) error {
	if c.ID == "" {
		c.ID = model.NewID()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	if _, err := s.cards.InsertOne(ctx, c); err != nil {
		return fmt.Errorf("insert card message: %w", err)
	}
	return nil
}

// List returns cards newest first, optionally filtered by type and owner.
func (s *CardStore) List(ctx context.Context, typ model.CardType, ownerID string) ([]model.CardMessage, error) {
	filter := bson.M{}
	if typ != "" {
		filter["type"] = typ
	}
	if ownerID != "" {
		filter["owner_id"] = ownerID
	}
	cursor, err := s.cards.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("find card messages: %w", err)
	}
	var results []model.CardMessage
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("decode card messages: %w", err)
	}
	return results, nil
}
