package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shop-service/internal/models"
	"shop-service/internal/store"
	"shop-service/internal/util"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// OrderService handles order queries and lifecycle transitions.
type OrderService struct {
	orders OrderStore
	events OrderEventPublisher
	logger *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(orders OrderStore, events OrderEventPublisher) *OrderService {
	return &OrderService{
		orders: orders,
		events: events,
		logger: util.GetLogger(),
	}
}

// OrderList is the list response: the user's orders plus their count.
type OrderList struct {
	Total  int64          `json:"total"`
	Orders []models.Order `json:"orders"`
}

// ListOrders returns all orders owned by userID with a count.
func (s *OrderService) ListOrders(ctx context.Context, userID string) (*OrderList, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.ListOrders")
	defer span.End()

	orders, err := s.orders.FindOrdersByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	total, err := s.orders.CountOrdersByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	return &OrderList{Total: total, Orders: orders}, nil
}

// GetOrder returns the order only when it exists and is owned by userID.
// There is no admin bypass on this path; a foreign order reads as missing.
func (s *OrderService) GetOrder(ctx context.Context, userID string, orderID primitive.ObjectID) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.GetOrder")
	defer span.End()

	order, err := s.orders.FindOrderByUserAndID(ctx, userID, orderID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return order, nil
}

// CancelOrder transitions the caller's order from PENDING to CANCELED.
// Non-pending, foreign and missing orders all surface as ErrNotFound.
func (s *OrderService) CancelOrder(ctx context.Context, userID string, orderID primitive.ObjectID) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.CancelOrder")
	defer span.End()

	order, err := s.orders.CancelPendingOrder(ctx, userID, orderID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to cancel order: %w", err)
	}

	util.OrdersCancelledTotal.Inc()
	s.logger.Info("Order cancelled",
		zap.String("order_id", order.ID.Hex()),
		zap.String("user_id", userID))

	event := &models.OrderCancelledEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderCancelled,
			Timestamp: time.Now(),
		},
		OrderID: order.ID.Hex(),
		UserID:  userID,
	}
	if err := s.events.PublishOrderCancelled(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderCancelled event", zap.Error(err))
	}

	return order, nil
}

// DeleteOrder hard-deletes one order regardless of status. Admin only;
// the role check lives in the HTTP layer.
func (s *OrderService) DeleteOrder(ctx context.Context, orderID primitive.ObjectID) error {
	ctx, span := util.StartSpan(ctx, "OrderService.DeleteOrder")
	defer span.End()

	err := s.orders.DeleteOrder(ctx, orderID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}

	s.logger.Info("Order deleted", zap.String("order_id", orderID.Hex()))
	return nil
}

// DeleteAllOrders hard-deletes every order. Admin only.
func (s *OrderService) DeleteAllOrders(ctx context.Context) (int64, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.DeleteAllOrders")
	defer span.End()

	deleted, err := s.orders.DeleteAllOrders(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to delete orders: %w", err)
	}

	s.logger.Warn("All orders deleted", zap.Int64("count", deleted))

	event := &models.OrdersPurgedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrdersPurged,
			Timestamp: time.Now(),
		},
		Deleted: deleted,
	}
	if err := s.events.PublishOrdersPurged(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrdersPurged event", zap.Error(err))
	}

	return deleted, nil
}
