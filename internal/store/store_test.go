package store

import (
	"context"
	"testing"
	"time"

	"shop-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestDecrementStock(t *testing.T) {
	// This is a placeholder test - requires actual database connection
	// In real scenarios, use testcontainers or mock database

	t.Skip("Integration test - requires database")

	store, err := NewStore("mongodb://localhost:27017", "shop_test")
	require.NoError(t, err)
	defer store.Close(context.Background())

	ctx := context.Background()

	product := &models.Product{
		Name:  "Test Product",
		Price: 1000,
		Stock: 5,
	}
	require.NoError(t, store.InsertProduct(ctx, product))

	matched, err := store.DecrementStock(ctx, product.ID, 3)
	require.NoError(t, err)
	assert.True(t, matched)

	retrieved, err := store.FindProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, retrieved.Stock)

	// Decrementing past the remaining stock must not match
	matched, err = store.DecrementStock(ctx, product.ID, 3)
	require.NoError(t, err)
	assert.False(t, matched)

	retrieved, err = store.FindProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, retrieved.Stock)
}

func TestCancelPendingOrder(t *testing.T) {
	t.Skip("Integration test - requires database")

	store, err := NewStore("mongodb://localhost:27017", "shop_test")
	require.NoError(t, err)
	defer store.Close(context.Background())

	ctx := context.Background()

	order := &models.Order{
		UserID:        "user-123",
		Items:         []models.OrderItem{},
		Total:         1000,
		Status:        models.OrderStatusPending,
		PaymentMethod: models.PaymentMethodPix,
		CreatedAt:     time.Now(),
	}
	require.NoError(t, store.InsertOrder(ctx, order))

	cancelled, err := store.CancelPendingOrder(ctx, order.UserID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCanceled, cancelled.Status)

	// Second cancel finds no pending order
	_, err = store.CancelPendingOrder(ctx, order.UserID, order.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// Different owner finds nothing either
	_, err = store.CancelPendingOrder(ctx, "someone-else", primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrNotFound)
}
