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

type cartRepository struct {
	collection *mongo.Collection
}

func NewCartRepository(db *mongo.Database) repository.CartRepository {
	return &cartRepository{collection: db.Collection(cartsCollection)}
}

func (r *cartRepository) GetByUserEmail(ctx context.Context, email string) (*model.Cart, error) {
	var cart model.Cart
	opts := options.FindOne().SetProjection(bson.M{"_id": 0})
	err := r.collection.FindOne(ctx, bson.M{"user_email": email}, opts).Decode(&cart)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get cart for %s: %w", email, err)
	}
	return &cart, nil
}

// Save replaces the whole item list, creating the cart when absent.
func (r *cartRepository) Save(ctx context.Context, email string, items []model.LineItem) error {
	if items == nil {
		items = []model.LineItem{}
	}
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"user_email": email},
		bson.M{"$set": bson.M{"items": items}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to save cart for %s: %w", email, err)
	}
	return nil
}
