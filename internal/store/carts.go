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

// FindCartByUser retrieves the user's cart.
func (s *Store) FindCartByUser(ctx context.Context, userID string) (*models.Cart, error) {
	var cart models.Cart
	err := s.carts.FindOne(ctx, bson.M{"user_id": userID}).Decode(&cart)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find cart: %w", err)
	}
	return &cart, nil
}

// UpsertCart writes the whole cart document for its user, creating it if
// needed. UpdatedAt is refreshed on every write.
func (s *Store) UpsertCart(ctx context.Context, cart *models.Cart) error {
	cart.UpdatedAt = time.Now()

	filter := bson.M{"user_id": cart.UserID}
	update := bson.M{"$set": bson.M{
		"user_id":    cart.UserID,
		"items":      cart.Items,
		"updated_at": cart.UpdatedAt,
	}}
	opts := options.Update().SetUpsert(true)

	if _, err := s.carts.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to upsert cart: %w", err)
	}
	return nil
}

// SetItemQuantity sets the quantity of one cart item in place. Returns
// ErrNotFound when the item is not in the user's cart.
func (s *Store) SetItemQuantity(ctx context.Context, userID string, itemID primitive.ObjectID, quantity int) error {
	filter := bson.M{"user_id": userID, "items._id": itemID}
	update := bson.M{"$set": bson.M{
		"items.$[elem].quantity": quantity,
		"updated_at":             time.Now(),
	}}
	opts := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{bson.M{"elem._id": itemID}},
	})

	result, err := s.carts.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return fmt.Errorf("failed to set item quantity: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// PullItem removes one item from the user's cart. Removing an item that is
// already gone is not an error.
func (s *Store) PullItem(ctx context.Context, userID string, itemID primitive.ObjectID) error {
	filter := bson.M{"user_id": userID}
	update := bson.M{
		"$pull": bson.M{"items": bson.M{"_id": itemID}},
		"$set":  bson.M{"updated_at": time.Now()},
	}

	if _, err := s.carts.UpdateOne(ctx, filter, update); err != nil {
		return fmt.Errorf("failed to remove item: %w", err)
	}
	return nil
}

// ClearCart empties the user's cart, creating an empty one if none exists.
func (s *Store) ClearCart(ctx context.Context, userID string) error {
	filter := bson.M{"user_id": userID}
	update := bson.M{"$set": bson.M{
		"user_id":    userID,
		"items":      []models.CartItem{},
		"updated_at": time.Now(),
	}}
	opts := options.Update().SetUpsert(true)

	if _, err := s.carts.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}
