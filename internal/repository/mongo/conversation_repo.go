package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ejnero-dev/wall-e-research-sub001/internal/core"
)

type ConversationRepository struct {
	db *mongo.Database
}

func NewConversationRepository(client *mongo.Client) *ConversationRepository {
	return &ConversationRepository{
		db: client.Database(databaseName),
	}
}

func (r *ConversationRepository) GetByBuyer(ctx context.Context, buyerID string) (*core.Conversation, error) {
	var conv core.Conversation
	err := r.db.Collection("conversations").FindOne(ctx, bson.M{"_id": buyerID}).Decode(&conv)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, core.ErrNotFound
		}
		return nil, err
	}
	return &conv, nil
}

func (r *ConversationRepository) Upsert(ctx context.Context, conv core.Conversation) error {
	filter := bson.M{"_id": conv.BuyerID}
	update := bson.M{"$set": bson.M{
		"state":              conv.State,
		"message_count":      conv.MessageCount,
		"fraud_score":        conv.FraudScore,
		"last_activity":      conv.LastActivity,
		"requires_attention": conv.RequiresAttention,
	}}
	opts := options.Update().SetUpsert(true)
	_, err := r.db.Collection("conversations").UpdateOne(ctx, filter, update, opts)
	return err
}

// ListInactiveSince returns non-abandoned conversations whose last activity
// predates the cutoff, for the abandonment sweep.
func (r *ConversationRepository) ListInactiveSince(ctx context.Context, cutoff time.Time) ([]core.Conversation, error) {
	filter := bson.M{
		"last_activity": bson.M{"$lt": cutoff},
		"state":         bson.M{"$ne": core.StateAbandoned},
	}
	cursor, err := r.db.Collection("conversations").Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var convs []core.Conversation
	if err = cursor.All(ctx, &convs); err != nil {
		return nil, err
	}
	return convs, nil
}
