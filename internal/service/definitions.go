package service

import (
	"context"
	"time"

	"shop-service/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProductStore is the product lookup and inventory contract consumed by the
// cart and checkout services.
type ProductStore interface {
	FindProduct(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	// DecrementStock atomically subtracts quantity from the product's stock
	// when at least that much is available, reporting whether it matched.
	DecrementStock(ctx context.Context, id primitive.ObjectID, quantity int) (bool, error)
}

// CartStore is the cart persistence contract.
type CartStore interface {
	FindCartByUser(ctx context.Context, userID string) (*models.Cart, error)
	UpsertCart(ctx context.Context, cart *models.Cart) error
	SetItemQuantity(ctx context.Context, userID string, itemID primitive.ObjectID, quantity int) error
	PullItem(ctx context.Context, userID string, itemID primitive.ObjectID) error
	ClearCart(ctx context.Context, userID string) error
}

// OrderStore is the order persistence contract.
type OrderStore interface {
	InsertOrder(ctx context.Context, order *models.Order) error
	FindOrderByUserAndID(ctx context.Context, userID string, id primitive.ObjectID) (*models.Order, error)
	FindOrdersByUser(ctx context.Context, userID string) ([]models.Order, error)
	CountOrdersByUser(ctx context.Context, userID string) (int64, error)
	CancelPendingOrder(ctx context.Context, userID string, id primitive.ObjectID) (*models.Order, error)
	DeleteOrder(ctx context.Context, id primitive.ObjectID) error
	DeleteAllOrders(ctx context.Context) (int64, error)
}

// CartCache is the read cache in front of the cart store.
type CartCache interface {
	GetCart(ctx context.Context, userID string) (*models.Cart, error)
	SetCart(ctx context.Context, userID string, cart *models.Cart) error
	InvalidateCart(ctx context.Context, userID string) error
}

// OrderEventPublisher publishes order lifecycle events.
type OrderEventPublisher interface {
	PublishOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error
	PublishOrderCancelled(ctx context.Context, event *models.OrderCancelledEvent) error
	PublishOrdersPurged(ctx context.Context, event *models.OrdersPurgedEvent) error
}

// CartLineView is one cart item populated with live product data. Product
// is nil when the referenced product no longer exists; such lines carry a
// zero ItemTotal.
type CartLineView struct {
	ID        primitive.ObjectID `json:"id"`
	Product   *models.Product    `json:"product"`
	Quantity  int                `json:"quantity"`
	ItemTotal int64              `json:"item_total"`
}

// CartView is a user's cart populated for display.
type CartView struct {
	UserID    string         `json:"user_id"`
	Items     []CartLineView `json:"items"`
	Total     int64          `json:"total"`
	UpdatedAt time.Time      `json:"updated_at"`
}
