package mongo

import (
	"context"
	"errors"
	"fmt"

	"storefront-backend/internal/model"
	"storefront-backend/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type productRepository struct {
	collection *mongo.Collection
}

func NewProductRepository(db *mongo.Database) repository.ProductRepository {
	return &productRepository{collection: db.Collection(productsCollection)}
}

func (r *productRepository) List(ctx context.Context) ([]model.Product, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 0})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer cursor.Close(ctx)

	products := []model.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	return products, nil
}

func (r *productRepository) GetByID(ctx context.Context, productID interface{}) (model.Product, error) {
	var product model.Product
	opts := options.FindOne().SetProjection(bson.M{"_id": 0})
	err := r.collection.FindOne(ctx, bson.M{"id": productID}, opts).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get product %v: %w", productID, err)
	}
	return product, nil
}

func (r *productRepository) UpdateStock(ctx context.Context, productID int64, stock int) error {
	result, err := r.collection.UpdateOne(ctx, bson.M{"id": productID}, bson.M{"$set": bson.M{"stock": stock}})
	if err != nil {
		return fmt.Errorf("failed to update stock for product %d: %w", productID, err)
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
