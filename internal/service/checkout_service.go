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
	"go.uber.org/zap"
)

// CheckoutService converts a user's cart into a persisted order, decrementing
// inventory line by line.
type CheckoutService struct {
	products ProductStore
	carts    CartStore
	orders   OrderStore
	cache    CartCache
	events   OrderEventPublisher
	logger   *zap.Logger
}

// NewCheckoutService creates a new checkout service
func NewCheckoutService(
	products ProductStore,
	carts CartStore,
	orders OrderStore,
	cache CartCache,
	events OrderEventPublisher,
) *CheckoutService {
	return &CheckoutService{
		products: products,
		carts:    carts,
		orders:   orders,
		cache:    cache,
		events:   events,
		logger:   util.GetLogger(),
	}
}

// CheckoutRequest carries the caller-supplied order fields.
type CheckoutRequest struct {
	PaymentMethod string         `json:"payment_method" binding:"required"`
	Address       models.Address `json:"address" binding:"required"`
}

// Checkout turns the user's current cart into a PENDING order.
//
// Lines are priced in one pass before any stock is touched, then stock is
// decremented per line in cart order. A failure mid-way (product gone,
// insufficient stock) aborts order creation but does NOT revert decrements
// already applied to earlier lines; that inconsistency window is accepted
// behavior. The cart is cleared only after the order is persisted.
func (s *CheckoutService) Checkout(ctx context.Context, userID string, req *CheckoutRequest) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "CheckoutService.Checkout")
	defer span.End()

	if !models.ValidPaymentMethod(req.PaymentMethod) {
		util.CheckoutsFailedTotal.WithLabelValues("validation").Inc()
		return nil, &ValidationError{Field: "payment_method", Reason: fmt.Sprintf("unknown method %q", req.PaymentMethod)}
	}
	if err := req.Address.Validate(); err != nil {
		util.CheckoutsFailedTotal.WithLabelValues("validation").Inc()
		return nil, &ValidationError{Field: "address", Reason: err.Error()}
	}

	cart, err := s.carts.FindCartByUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		util.CheckoutsFailedTotal.WithLabelValues("empty_cart").Inc()
		return nil, ErrEmptyCart
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if len(cart.Items) == 0 {
		util.CheckoutsFailedTotal.WithLabelValues("empty_cart").Inc()
		return nil, ErrEmptyCart
	}

	// Pricing snapshot: every line is priced from the current product
	// document before any stock mutation.
	items := make([]models.OrderItem, 0, len(cart.Items))
	var total int64
	for _, line := range cart.Items {
		product, err := s.products.FindProduct(ctx, line.ProductID)
		if errors.Is(err, store.ErrNotFound) {
			util.CheckoutsFailedTotal.WithLabelValues("product_not_found").Inc()
			return nil, &ProductNotFoundError{ProductID: line.ProductID.Hex()}
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load product: %w", err)
		}

		item := models.OrderItem{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: product.Price,
			ItemTotal: int64(line.Quantity) * product.Price,
		}
		items = append(items, item)
		total += item.ItemTotal
	}

	// Decrement pass, in cart order. Each line re-fetches its product and
	// applies one conditional decrement; nothing spans lines.
	for _, item := range items {
		if err := s.decrementLine(ctx, item); err != nil {
			return nil, err
		}
	}

	order := &models.Order{
		UserID:        userID,
		Items:         items,
		Total:         total,
		Status:        models.OrderStatusPending,
		PaymentMethod: req.PaymentMethod,
		Address:       req.Address,
	}

	if err := s.orders.InsertOrder(ctx, order); err != nil {
		util.CheckoutsFailedTotal.WithLabelValues("db_error").Inc()
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	// The cart is upserted empty rather than deleted, so a cart that raced
	// away mid-checkout still ends up present and empty.
	if err := s.carts.ClearCart(ctx, userID); err != nil {
		s.logger.Error("Failed to clear cart after checkout",
			zap.String("user_id", userID),
			zap.Error(err))
	}

	if err := s.cache.InvalidateCart(ctx, userID); err != nil {
		s.logger.Warn("Failed to invalidate cart cache", zap.String("user_id", userID), zap.Error(err))
	}

	util.CheckoutsTotal.Inc()
	s.logger.Info("Order created",
		zap.String("order_id", order.ID.Hex()),
		zap.String("user_id", userID),
		zap.Int64("total", order.Total))

	s.publishOrderCreated(ctx, order)

	return order, nil
}

// decrementLine applies one line's stock decrement. The availability check
// against a fresh read produces the numbers surfaced to the caller; the
// conditional write is what actually guards against going negative.
func (s *CheckoutService) decrementLine(ctx context.Context, item models.OrderItem) error {
	start := time.Now()
	defer func() {
		util.StockDecrementLatency.Observe(time.Since(start).Seconds())
	}()

	product, err := s.products.FindProduct(ctx, item.ProductID)
	if errors.Is(err, store.ErrNotFound) {
		util.CheckoutsFailedTotal.WithLabelValues("product_not_found").Inc()
		return &ProductNotFoundError{ProductID: item.ProductID.Hex()}
	}
	if err != nil {
		return fmt.Errorf("failed to load product: %w", err)
	}

	if product.Stock < item.Quantity {
		util.CheckoutsFailedTotal.WithLabelValues("insufficient_stock").Inc()
		return &InsufficientStockError{
			ProductID: product.ID.Hex(),
			Name:      product.Name,
			Available: product.Stock,
			Requested: item.Quantity,
		}
	}

	matched, err := s.products.DecrementStock(ctx, item.ProductID, item.Quantity)
	if err != nil {
		return fmt.Errorf("failed to decrement stock: %w", err)
	}
	if matched {
		return nil
	}

	// Lost the race: stock moved between the read and the conditional
	// write. Re-read so the error carries the fresh availability.
	fresh, err := s.products.FindProduct(ctx, item.ProductID)
	if errors.Is(err, store.ErrNotFound) {
		util.CheckoutsFailedTotal.WithLabelValues("product_not_found").Inc()
		return &ProductNotFoundError{ProductID: item.ProductID.Hex()}
	}
	if err != nil {
		return fmt.Errorf("failed to load product: %w", err)
	}

	util.CheckoutsFailedTotal.WithLabelValues("insufficient_stock").Inc()
	return &InsufficientStockError{
		ProductID: fresh.ID.Hex(),
		Name:      fresh.Name,
		Available: fresh.Stock,
		Requested: item.Quantity,
	}
}

func (s *CheckoutService) publishOrderCreated(ctx context.Context, order *models.Order) {
	items := make([]models.OrderItemData, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, models.OrderItemData{
			ProductID: item.ProductID.Hex(),
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}

	event := &models.OrderCreatedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderCreated,
			Timestamp: time.Now(),
		},
		OrderID:       order.ID.Hex(),
		UserID:        order.UserID,
		Total:         order.Total,
		PaymentMethod: order.PaymentMethod,
		Items:         items,
	}

	if err := s.events.PublishOrderCreated(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderCreated event", zap.Error(err))
	}
}
