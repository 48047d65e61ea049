package mongo

import (
	"context"
	"fmt"

	"storefront-backend/internal/model"
	"storefront-backend/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// adminOrderProjection is the field set the admin order listing exposes.
var adminOrderProjection = bson.M{
	"_id":                   1,
	"user_email":            1,
	"items":                 1,
	"city":                  1,
	"pincode":               1,
	"total_price":           1,
	"status":                1,
	"order_date":            1,
	"cancellationRequested": 1,
}

type orderRepository struct {
	collection *mongo.Collection
}

func NewOrderRepository(db *mongo.Database) repository.OrderRepository {
	return &orderRepository{collection: db.Collection(ordersCollection)}
}

func (r *orderRepository) Create(ctx context.Context, order *model.Order) (string, error) {
	res, err := r.collection.InsertOne(ctx, order)
	if err != nil {
		return "", fmt.Errorf("failed to create order: %w", err)
	}

	objectID, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("failed to convert inserted ID to ObjectID")
	}
	order.ID = objectID
	return objectID.Hex(), nil
}

func (r *orderRepository) ListByUserEmail(ctx context.Context, email string) ([]model.Order, error) {
	return r.find(ctx, bson.M{"user_email": email}, options.Find())
}

func (r *orderRepository) ListAll(ctx context.Context) ([]model.Order, error) {
	return r.find(ctx, bson.M{}, options.Find().SetProjection(adminOrderProjection))
}

func (r *orderRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]model.Order, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer cursor.Close(ctx)

	orders := []model.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("failed to decode orders: %w", err)
	}
	return orders, nil
}

func (r *orderRepository) RequestCancellation(ctx context.Context, orderID string) error {
	return r.setField(ctx, orderID, "cancellationRequested", true)
}

func (r *orderRepository) UpdateStatus(ctx context.Context, orderID, status string) error {
	return r.setField(ctx, orderID, "status", status)
}

func (r *orderRepository) setField(ctx context.Context, orderID, field string, value interface{}) error {
	objID, err := primitive.ObjectIDFromHex(orderID)
	if err != nil {
		return repository.ErrNotFound
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$set": bson.M{field: value}})
	if err != nil {
		return fmt.Errorf("failed to update %s for order %s: %w", field, orderID, err)
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *orderRepository) DeleteByUserEmail(ctx context.Context, email string) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{"user_email": email})
	if err != nil {
		return 0, fmt.Errorf("failed to delete orders for %s: %w", email, err)
	}
	return result.DeletedCount, nil
}
