package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shop-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// InsertOrder persists a new order, filling in id and timestamps.
func (s *Store) InsertOrder(ctx context.Context, order *models.Order) error {
	now := time.Now()
	order.ID = primitive.NewObjectID()
	order.CreatedAt = now
	order.UpdatedAt = now

	if _, err := s.orders.InsertOne(ctx, order); err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}
	return nil
}

// FindOrderByUserAndID retrieves an order only when it is owned by userID.
func (s *Store) FindOrderByUserAndID(ctx context.Context, userID string, id primitive.ObjectID) (*models.Order, error) {
	var order models.Order
	err := s.orders.FindOne(ctx, bson.M{"_id": id, "user_id": userID}).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find order: %w", err)
	}
	return &order, nil
}

// FindOrdersByUser retrieves all orders owned by userID, newest first.
func (s *Store) FindOrdersByUser(ctx context.Context, userID string) ([]models.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := s.orders.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("failed to decode orders: %w", err)
	}
	return orders, nil
}

// CountOrdersByUser counts the orders owned by userID.
func (s *Store) CountOrdersByUser(ctx context.Context, userID string) (int64, error) {
	count, err := s.orders.CountDocuments(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}
	return count, nil
}

// CancelPendingOrder transitions an order from PENDING to CANCELED and
// returns the updated document. The filter matches id, owner and status in
// one query, so a missing order, a foreign order and a non-pending order
// all come back as ErrNotFound.
func (s *Store) CancelPendingOrder(ctx context.Context, userID string, id primitive.ObjectID) (*models.Order, error) {
	filter := bson.M{"_id": id, "user_id": userID, "status": models.OrderStatusPending}
	update := bson.M{"$set": bson.M{
		"status":     models.OrderStatusCanceled,
		"updated_at": time.Now(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var order models.Order
	err := s.orders.FindOneAndUpdate(ctx, filter, update, opts).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to cancel order: %w", err)
	}
	return &order, nil
}

// DeleteOrder removes an order unconditionally.
func (s *Store) DeleteOrder(ctx context.Context, id primitive.ObjectID) error {
	result, err := s.orders.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAllOrders removes every order and returns how many were deleted.
func (s *Store) DeleteAllOrders(ctx context.Context) (int64, error) {
	result, err := s.orders.DeleteMany(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to delete orders: %w", err)
	}
	return result.DeletedCount, nil
}
