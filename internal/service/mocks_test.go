package service

import (
	"context"

	"shop-service/internal/models"
	"shop-service/internal/redisclient"
	"shop-service/internal/store"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MockProductStore implements CatalogStore over an in-memory map.
type MockProductStore struct {
	Products   map[primitive.ObjectID]*models.Product
	FindErr    error
	DecErr     error
	DecHook    func()
	Decrements []primitive.ObjectID
}

func NewMockProductStore(products ...*models.Product) *MockProductStore {
	m := &MockProductStore{Products: map[primitive.ObjectID]*models.Product{}}
	for _, p := range products {
		m.Products[p.ID] = p
	}
	return m
}

func (m *MockProductStore) FindProduct(_ context.Context, id primitive.ObjectID) (*models.Product, error) {
	if m.FindErr != nil {
		return nil, m.FindErr
	}
	p, ok := m.Products[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (m *MockProductStore) DecrementStock(_ context.Context, id primitive.ObjectID, quantity int) (bool, error) {
	if m.DecErr != nil {
		return false, m.DecErr
	}
	if m.DecHook != nil {
		m.DecHook()
	}
	p, ok := m.Products[id]
	if !ok || p.Stock < quantity {
		return false, nil
	}
	p.Stock -= quantity
	m.Decrements = append(m.Decrements, id)
	return true, nil
}

func (m *MockProductStore) ListProducts(_ context.Context) ([]models.Product, error) {
	products := []models.Product{}
	for _, p := range m.Products {
		products = append(products, *p)
	}
	return products, nil
}

func (m *MockProductStore) InsertProduct(_ context.Context, product *models.Product) error {
	product.ID = primitive.NewObjectID()
	copied := *product
	m.Products[product.ID] = &copied
	return nil
}

func (m *MockProductStore) UpdateProduct(_ context.Context, id primitive.ObjectID, fields bson.M) (*models.Product, error) {
	p, ok := m.Products[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if name, ok := fields["name"].(string); ok {
		p.Name = name
	}
	if price, ok := fields["price"].(int64); ok {
		p.Price = price
	}
	if stock, ok := fields["stock"].(int); ok {
		p.Stock = stock
	}
	copied := *p
	return &copied, nil
}

func (m *MockProductStore) DeleteProduct(_ context.Context, id primitive.ObjectID) error {
	if _, ok := m.Products[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.Products, id)
	return nil
}

// MockCartStore implements CartStore over an in-memory map keyed by user.
type MockCartStore struct {
	Carts   map[string]*models.Cart
	FindErr error
	SaveErr error
}

func NewMockCartStore(carts ...*models.Cart) *MockCartStore {
	m := &MockCartStore{Carts: map[string]*models.Cart{}}
	for _, c := range carts {
		m.Carts[c.UserID] = c
	}
	return m
}

func (m *MockCartStore) FindCartByUser(_ context.Context, userID string) (*models.Cart, error) {
	if m.FindErr != nil {
		return nil, m.FindErr
	}
	c, ok := m.Carts[userID]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := *c
	copied.Items = append([]models.CartItem{}, c.Items...)
	return &copied, nil
}

func (m *MockCartStore) UpsertCart(_ context.Context, cart *models.Cart) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	copied := *cart
	copied.Items = append([]models.CartItem{}, cart.Items...)
	m.Carts[cart.UserID] = &copied
	return nil
}

func (m *MockCartStore) SetItemQuantity(_ context.Context, userID string, itemID primitive.ObjectID, quantity int) error {
	c, ok := m.Carts[userID]
	if !ok {
		return store.ErrNotFound
	}
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			c.Items[i].Quantity = quantity
			return nil
		}
	}
	return store.ErrNotFound
}

func (m *MockCartStore) PullItem(_ context.Context, userID string, itemID primitive.ObjectID) error {
	c, ok := m.Carts[userID]
	if !ok {
		return nil
	}
	items := c.Items[:0]
	for _, item := range c.Items {
		if item.ID != itemID {
			items = append(items, item)
		}
	}
	c.Items = items
	return nil
}

func (m *MockCartStore) ClearCart(_ context.Context, userID string) error {
	c, ok := m.Carts[userID]
	if !ok {
		m.Carts[userID] = &models.Cart{UserID: userID, Items: []models.CartItem{}}
		return nil
	}
	c.Items = []models.CartItem{}
	return nil
}

// MockOrderStore implements OrderStore over an in-memory slice.
type MockOrderStore struct {
	Orders    []*models.Order
	InsertErr error
}

func (m *MockOrderStore) InsertOrder(_ context.Context, order *models.Order) error {
	if m.InsertErr != nil {
		return m.InsertErr
	}
	order.ID = primitive.NewObjectID()
	m.Orders = append(m.Orders, order)
	return nil
}

func (m *MockOrderStore) FindOrderByUserAndID(_ context.Context, userID string, id primitive.ObjectID) (*models.Order, error) {
	for _, o := range m.Orders {
		if o.ID == id && o.UserID == userID {
			return o, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *MockOrderStore) FindOrdersByUser(_ context.Context, userID string) ([]models.Order, error) {
	orders := []models.Order{}
	for _, o := range m.Orders {
		if o.UserID == userID {
			orders = append(orders, *o)
		}
	}
	return orders, nil
}

func (m *MockOrderStore) CountOrdersByUser(_ context.Context, userID string) (int64, error) {
	var count int64
	for _, o := range m.Orders {
		if o.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (m *MockOrderStore) CancelPendingOrder(_ context.Context, userID string, id primitive.ObjectID) (*models.Order, error) {
	for _, o := range m.Orders {
		if o.ID == id && o.UserID == userID && o.Status == models.OrderStatusPending {
			o.Status = models.OrderStatusCanceled
			return o, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *MockOrderStore) DeleteOrder(_ context.Context, id primitive.ObjectID) error {
	for i, o := range m.Orders {
		if o.ID == id {
			m.Orders = append(m.Orders[:i], m.Orders[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (m *MockOrderStore) DeleteAllOrders(_ context.Context) (int64, error) {
	deleted := int64(len(m.Orders))
	m.Orders = nil
	return deleted, nil
}

// MockCartCache misses by default and records invalidations.
type MockCartCache struct {
	Cached      map[string]*models.Cart
	Invalidated []string
	SetCalls    int
}

func NewMockCartCache() *MockCartCache {
	return &MockCartCache{Cached: map[string]*models.Cart{}}
}

func (m *MockCartCache) GetCart(_ context.Context, userID string) (*models.Cart, error) {
	if c, ok := m.Cached[userID]; ok {
		return c, nil
	}
	return nil, redisclient.ErrCacheMiss
}

func (m *MockCartCache) SetCart(_ context.Context, userID string, cart *models.Cart) error {
	m.SetCalls++
	m.Cached[userID] = cart
	return nil
}

func (m *MockCartCache) InvalidateCart(_ context.Context, userID string) error {
	m.Invalidated = append(m.Invalidated, userID)
	delete(m.Cached, userID)
	return nil
}

// MockEventPublisher records every published event.
type MockEventPublisher struct {
	Created   []*models.OrderCreatedEvent
	Cancelled []*models.OrderCancelledEvent
	Purged    []*models.OrdersPurgedEvent
	Err       error
}

func (m *MockEventPublisher) PublishOrderCreated(_ context.Context, event *models.OrderCreatedEvent) error {
	if m.Err != nil {
		return m.Err
	}
	m.Created = append(m.Created, event)
	return nil
}

func (m *MockEventPublisher) PublishOrderCancelled(_ context.Context, event *models.OrderCancelledEvent) error {
	if m.Err != nil {
		return m.Err
	}
	m.Cancelled = append(m.Cancelled, event)
	return nil
}

func (m *MockEventPublisher) PublishOrdersPurged(_ context.Context, event *models.OrdersPurgedEvent) error {
	if m.Err != nil {
		return m.Err
	}
	m.Purged = append(m.Purged, event)
	return nil
}
