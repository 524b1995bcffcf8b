package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newCartFixture(products *MockProductStore, carts *MockCartStore) (*CartService, *MockCartCache) {
	cache := NewMockCartCache()
	return NewCartService(products, carts, cache), cache
}

func TestGetCart_EmptyRepresentationWhenMissing(t *testing.T) {
	svc, _ := newCartFixture(NewMockProductStore(), NewMockCartStore())

	view, err := svc.GetCart(context.Background(), "user-1")

	require.NoError(t, err)
	assert.Equal(t, "user-1", view.UserID)
	assert.Empty(t, view.Items)
	assert.Zero(t, view.Total)
}

func TestGetCart_PopulatesProductsAndTotals(t *testing.T) {
	product := newProduct("Mouse", 2500, 10)
	products := NewMockProductStore(product)
	carts := NewMockCartStore(cartWith("user-1", line(product.ID, 3)))
	svc, _ := newCartFixture(products, carts)

	view, err := svc.GetCart(context.Background(), "user-1")

	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	require.NotNil(t, view.Items[0].Product)
	assert.Equal(t, "Mouse", view.Items[0].Product.Name)
	assert.Equal(t, int64(7500), view.Items[0].ItemTotal)
	assert.Equal(t, int64(7500), view.Total)
}

func TestGetCart_KeepsLineWhoseProductWasDeleted(t *testing.T) {
	product := newProduct("Mouse", 2500, 10)
	ghost := primitive.NewObjectID()
	products := NewMockProductStore(product)
	carts := NewMockCartStore(cartWith("user-1", line(product.ID, 1), line(ghost, 2)))
	svc, _ := newCartFixture(products, carts)

	view, err := svc.GetCart(context.Background(), "user-1")

	require.NoError(t, err)
	require.Len(t, view.Items, 2)
	assert.Nil(t, view.Items[1].Product)
	assert.Zero(t, view.Items[1].ItemTotal)
	assert.Equal(t, int64(2500), view.Total)
}

func TestGetCart_ServesFromCache(t *testing.T) {
	product := newProduct("Mouse", 2500, 10)
	products := NewMockProductStore(product)
	carts := NewMockCartStore(cartWith("user-1", line(product.ID, 1)))
	svc, cache := newCartFixture(products, carts)

	_, err := svc.GetCart(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, cache.SetCalls)

	// second read hits the cache even after the store goes away
	carts.FindErr = assert.AnError
	view, err := svc.GetCart(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Len(t, view.Items, 1)
}

func TestAddItem_AppendsNewLine(t *testing.T) {
	product := newProduct("Keyboard", 5000, 10)
	products := NewMockProductStore(product)
	carts := NewMockCartStore()
	svc, cache := newCartFixture(products, carts)

	item, err := svc.AddItem(context.Background(), "user-1", product.ID, 2)

	require.NoError(t, err)
	assert.Equal(t, 2, item.Quantity)
	assert.Equal(t, int64(10000), item.ItemTotal)
	require.NotNil(t, item.Product)
	assert.Equal(t, "Keyboard", item.Product.Name)

	require.Len(t, carts.Carts["user-1"].Items, 1)
	assert.Contains(t, cache.Invalidated, "user-1")
}

func TestAddItem_MergesQuantities(t *testing.T) {
	product := newProduct("Keyboard", 5000, 10)
	products := NewMockProductStore(product)
	carts := NewMockCartStore()
	svc, _ := newCartFixture(products, carts)

	_, err := svc.AddItem(context.Background(), "user-1", product.ID, 2)
	require.NoError(t, err)

	item, err := svc.AddItem(context.Background(), "user-1", product.ID, 3)
	require.NoError(t, err)

	assert.Equal(t, 5, item.Quantity)
	require.Len(t, carts.Carts["user-1"].Items, 1)
	assert.Equal(t, 5, carts.Carts["user-1"].Items[0].Quantity)
}

func TestAddItem_RejectsQuantityBeyondStock(t *testing.T) {
	product := newProduct("Keyboard", 5000, 10)
	products := NewMockProductStore(product)
	carts := NewMockCartStore()
	svc, _ := newCartFixture(products, carts)

	_, err := svc.AddItem(context.Background(), "user-1", product.ID, 11)

	var insufficient *InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 10, insufficient.Available)
	assert.Equal(t, 11, insufficient.Requested)
	assert.Empty(t, carts.Carts)
}

func TestAddItem_AdmissionCountsExistingLine(t *testing.T) {
	product := newProduct("Keyboard", 5000, 10)
	products := NewMockProductStore(product)
	carts := NewMockCartStore()
	svc, _ := newCartFixture(products, carts)

	_, err := svc.AddItem(context.Background(), "user-1", product.ID, 7)
	require.NoError(t, err)

	_, err = svc.AddItem(context.Background(), "user-1", product.ID, 4)

	var insufficient *InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 10, insufficient.Available)
	assert.Equal(t, 11, insufficient.Requested)

	// cart unchanged by the rejected add
	assert.Equal(t, 7, carts.Carts["user-1"].Items[0].Quantity)

	// admission does not touch stock
	assert.Equal(t, 10, products.Products[product.ID].Stock)
}

func TestAddItem_UnknownProduct(t *testing.T) {
	svc, _ := newCartFixture(NewMockProductStore(), NewMockCartStore())

	_, err := svc.AddItem(context.Background(), "user-1", primitive.NewObjectID(), 1)

	var notFound *ProductNotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestAddItem_RejectsNonPositiveQuantity(t *testing.T) {
	product := newProduct("Keyboard", 5000, 10)
	svc, _ := newCartFixture(NewMockProductStore(product), NewMockCartStore())

	for _, quantity := range []int{0, -3} {
		_, err := svc.AddItem(context.Background(), "user-1", product.ID, quantity)

		var validation *ValidationError
		require.ErrorAs(t, err, &validation)
		assert.Equal(t, "quantity", validation.Field)
	}
}

func TestUpdateItem_SetsQuantityWithoutStockCheck(t *testing.T) {
	product := newProduct("Keyboard", 5000, 3)
	cartLine := line(product.ID, 1)
	products := NewMockProductStore(product)
	carts := NewMockCartStore(cartWith("user-1", cartLine))
	svc, _ := newCartFixture(products, carts)

	// quantity above stock is accepted on this path
	view, err := svc.UpdateItem(context.Background(), "user-1", cartLine.ID, 50)

	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, 50, view.Items[0].Quantity)
}

func TestUpdateItem_UnknownLine(t *testing.T) {
	product := newProduct("Keyboard", 5000, 3)
	products := NewMockProductStore(product)
	carts := NewMockCartStore(cartWith("user-1", line(product.ID, 1)))
	svc, _ := newCartFixture(products, carts)

	_, err := svc.UpdateItem(context.Background(), "user-1", primitive.NewObjectID(), 2)

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRemoveItem_Idempotent(t *testing.T) {
	product := newProduct("Keyboard", 5000, 3)
	cartLine := line(product.ID, 1)
	products := NewMockProductStore(product)
	carts := NewMockCartStore(cartWith("user-1", cartLine))
	svc, _ := newCartFixture(products, carts)

	view, err := svc.RemoveItem(context.Background(), "user-1", cartLine.ID)
	require.NoError(t, err)
	assert.Empty(t, view.Items)

	// removing the same line again is not an error
	view, err = svc.RemoveItem(context.Background(), "user-1", cartLine.ID)
	require.NoError(t, err)
	assert.Empty(t, view.Items)
}

func TestClearCart_UpsertsWhenMissing(t *testing.T) {
	svc, _ := newCartFixture(NewMockProductStore(), NewMockCartStore())

	view, err := svc.ClearCart(context.Background(), "user-1")

	require.NoError(t, err)
	assert.Empty(t, view.Items)
	assert.Zero(t, view.Total)
}
