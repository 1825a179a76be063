package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ejnero-dev/wall-e-research-sub001/internal/core"
)

type ProductRepository struct {
	db *mongo.Database
}

func NewProductRepository(client *mongo.Client) *ProductRepository {
	return &ProductRepository{
		db: client.Database(databaseName),
	}
}

func (r *ProductRepository) GetByID(ctx context.Context, id string) (*core.ProductInfo, error) {
	var product core.ProductInfo
	err := r.db.Collection("products").FindOne(ctx, bson.M{"_id": id}).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, core.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

func (r *ProductRepository) Create(ctx context.Context, product core.ProductInfo) error {
	var existing core.ProductInfo
	err := r.db.Collection("products").FindOne(ctx, bson.M{"_id": product.ID}).Decode(&existing)
	if err == nil {
		return errors.New("product already registered")
	}

	_, err = r.db.Collection("products").InsertOne(ctx, product)
	return err
}
