package service

import (
	"context"
	"errors"
	"fmt"

	"shop-service/internal/models"
	"shop-service/internal/redisclient"
	"shop-service/internal/store"
	"shop-service/internal/util"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// CartService maintains per-user cart contents with stock-aware admission
// control on add. The stock check at add time is a logical reservation only;
// stock is decremented at checkout.
type CartService struct {
	products ProductStore
	carts    CartStore
	cache    CartCache
	logger   *zap.Logger
	sfg      singleflight.Group
}

// NewCartService creates a new cart service
func NewCartService(products ProductStore, carts CartStore, cache CartCache) *CartService {
	return &CartService{
		products: products,
		carts:    carts,
		cache:    cache,
		logger:   util.GetLogger(),
	}
}

// GetCart returns the user's cart populated with live product data, or an
// empty representation when none exists.
func (s *CartService) GetCart(ctx context.Context, userID string) (*CartView, error) {
	ctx, span := util.StartSpan(ctx, "CartService.GetCart")
	defer span.End()

	cart, err := s.loadCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.populate(ctx, cart)
}

// loadCart reads the cart through the cache, collapsing concurrent misses
// for the same user into one store read.
func (s *CartService) loadCart(ctx context.Context, userID string) (*models.Cart, error) {
	v, err, _ := s.sfg.Do(userID, func() (interface{}, error) {
		cart, err := s.cache.GetCart(ctx, userID)
		if err == nil {
			return cart, nil
		}
		if !errors.Is(err, redisclient.ErrCacheMiss) {
			s.logger.Warn("Cart cache read failed", zap.String("user_id", userID), zap.Error(err))
		}

		cart, err = s.carts.FindCartByUser(ctx, userID)
		if errors.Is(err, store.ErrNotFound) {
			return &models.Cart{UserID: userID, Items: []models.CartItem{}}, nil
		}
		if err != nil {
			return nil, err
		}

		if err := s.cache.SetCart(ctx, userID, cart); err != nil {
			s.logger.Warn("Failed to cache cart", zap.String("user_id", userID), zap.Error(err))
		}
		return cart, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.Cart), nil
}

// AddItem admits productID into the user's cart. Re-adding a product merges
// quantities into the existing line; admission requires the product's stock
// to cover the merged quantity. The cart is unchanged on rejection.
func (s *CartService) AddItem(ctx context.Context, userID string, productID primitive.ObjectID, quantity int) (*CartLineView, error) {
	ctx, span := util.StartSpan(ctx, "CartService.AddItem")
	defer span.End()

	if quantity < 1 {
		return nil, &ValidationError{Field: "quantity", Reason: "must be a positive integer"}
	}

	product, err := s.products.FindProduct(ctx, productID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, &ProductNotFoundError{ProductID: productID.Hex()}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load product: %w", err)
	}

	cart, err := s.carts.FindCartByUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		cart = &models.Cart{UserID: userID, Items: []models.CartItem{}}
	} else if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	existing := 0
	if line := cart.Item(productID); line != nil {
		existing = line.Quantity
	}

	if product.Stock < existing+quantity {
		util.CartAdmissionsRejectedTotal.Inc()
		return nil, &InsufficientStockError{
			ProductID: product.ID.Hex(),
			Name:      product.Name,
			Available: product.Stock,
			Requested: existing + quantity,
		}
	}

	var affected models.CartItem
	if line := cart.Item(productID); line != nil {
		line.Quantity += quantity
		affected = *line
	} else {
		affected = models.CartItem{
			ID:        primitive.NewObjectID(),
			ProductID: productID,
			Quantity:  quantity,
		}
		cart.Items = append(cart.Items, affected)
	}

	if err := s.carts.UpsertCart(ctx, cart); err != nil {
		return nil, fmt.Errorf("failed to save cart: %w", err)
	}
	s.invalidate(ctx, userID)

	util.CartItemsAddedTotal.Inc()
	s.logger.Info("Item added to cart",
		zap.String("user_id", userID),
		zap.String("product_id", productID.Hex()),
		zap.Int("quantity", affected.Quantity))

	return &CartLineView{
		ID:        affected.ID,
		Product:   product,
		Quantity:  affected.Quantity,
		ItemTotal: int64(affected.Quantity) * product.Price,
	}, nil
}

// UpdateItem sets the quantity of an existing cart line directly. There is
// no stock re-validation on this path.
func (s *CartService) UpdateItem(ctx context.Context, userID string, itemID primitive.ObjectID, quantity int) (*CartView, error) {
	ctx, span := util.StartSpan(ctx, "CartService.UpdateItem")
	defer span.End()

	if quantity < 1 {
		return nil, &ValidationError{Field: "quantity", Reason: "must be a positive integer"}
	}

	err := s.carts.SetItemQuantity(ctx, userID, itemID, quantity)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update item: %w", err)
	}
	s.invalidate(ctx, userID)

	return s.freshView(ctx, userID)
}

// RemoveItem deletes one cart line. Removing a line that is already gone
// returns the unchanged cart.
func (s *CartService) RemoveItem(ctx context.Context, userID string, itemID primitive.ObjectID) (*CartView, error) {
	ctx, span := util.StartSpan(ctx, "CartService.RemoveItem")
	defer span.End()

	if err := s.carts.PullItem(ctx, userID, itemID); err != nil {
		return nil, fmt.Errorf("failed to remove item: %w", err)
	}
	s.invalidate(ctx, userID)

	return s.freshView(ctx, userID)
}

// ClearCart empties the user's cart, creating an empty one if none exists.
func (s *CartService) ClearCart(ctx context.Context, userID string) (*CartView, error) {
	ctx, span := util.StartSpan(ctx, "CartService.ClearCart")
	defer span.End()

	if err := s.carts.ClearCart(ctx, userID); err != nil {
		return nil, fmt.Errorf("failed to clear cart: %w", err)
	}
	s.invalidate(ctx, userID)

	return s.freshView(ctx, userID)
}

// freshView reads the cart from the store, bypassing the cache, and
// populates it.
func (s *CartService) freshView(ctx context.Context, userID string) (*CartView, error) {
	cart, err := s.carts.FindCartByUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		cart = &models.Cart{UserID: userID, Items: []models.CartItem{}}
	} else if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	return s.populate(ctx, cart)
}

// populate joins cart lines with live product documents. Lines whose
// product has been deleted are kept with a nil product and zero total,
// matching what the storefront renders for stale carts.
func (s *CartService) populate(ctx context.Context, cart *models.Cart) (*CartView, error) {
	view := &CartView{
		UserID:    cart.UserID,
		Items:     make([]CartLineView, 0, len(cart.Items)),
		UpdatedAt: cart.UpdatedAt,
	}

	for _, line := range cart.Items {
		populated := CartLineView{ID: line.ID, Quantity: line.Quantity}

		product, err := s.products.FindProduct(ctx, line.ProductID)
		if err == nil {
			populated.Product = product
			populated.ItemTotal = int64(line.Quantity) * product.Price
			view.Total += populated.ItemTotal
		} else if !errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("failed to load product: %w", err)
		}

		view.Items = append(view.Items, populated)
	}

	return view, nil
}

func (s *CartService) invalidate(ctx context.Context, userID string) {
	if err := s.cache.InvalidateCart(ctx, userID); err != nil {
		s.logger.Warn("Failed to invalidate cart cache", zap.String("user_id", userID), zap.Error(err))
	}
}
