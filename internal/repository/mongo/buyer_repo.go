package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ejnero-dev/wall-e-research-sub001/internal/core"
)

const databaseName = "walle"

type BuyerRepository struct {
	db *mongo.Database
}

func NewBuyerRepository(client *mongo.Client) *BuyerRepository {
	return &BuyerRepository{
		db: client.Database(databaseName),
	}
}

func (r *BuyerRepository) GetByID(ctx context.Context, id string) (*core.BuyerProfile, error) {
	var buyer core.BuyerProfile
	err := r.db.Collection("buyers").FindOne(ctx, bson.M{"_id": id}).Decode(&buyer)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, core.ErrNotFound
		}
		return nil, err
	}
	return &buyer, nil
}

func (r *BuyerRepository) Create(ctx context.Context, buyer core.BuyerProfile) error {
	// Check duplicate
	var existing core.BuyerProfile
	err := r.db.Collection("buyers").FindOne(ctx, bson.M{"_id": buyer.ID}).Decode(&existing)
	if err == nil {
		return errors.New("buyer already registered")
	}

	_, err = r.db.Collection("buyers").InsertOne(ctx, buyer)
	return err
}
