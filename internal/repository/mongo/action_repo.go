package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ejnero-dev/wall-e-research-sub001/internal/core"
)

type ActionRepository struct {
	db *mongo.Database
}

func NewActionRepository(client *mongo.Client) *ActionRepository {
	return &ActionRepository{
		db: client.Database(databaseName),
	}
}

func (r *ActionRepository) Insert(ctx context.Context, action core.PendingAction) error {
	_, err := r.db.Collection("pending_actions").InsertOne(ctx, action)
	return err
}

func (r *ActionRepository) UpdateOutcome(ctx context.Context, id string, outcome core.Outcome) error {
	filter := bson.M{"_id": id}
	update := bson.M{"$set": bson.M{"outcome": outcome}}
	_, err := r.db.Collection("pending_actions").UpdateOne(ctx, filter, update)
	return err
}

func (r *ActionRepository) ListActive(ctx context.Context) ([]core.PendingAction, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.db.Collection("pending_actions").Find(ctx, bson.M{"outcome": core.OutcomePending}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var actions []core.PendingAction
	if err = cursor.All(ctx, &actions); err != nil {
		return nil, err
	}
	return actions, nil
}
