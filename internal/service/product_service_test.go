package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func strPtr(s string) *string { return &s }
func int64Ptr(v int64) *int64 { return &v }
func intPtr(v int) *int       { return &v }

func TestCreateProduct_Success(t *testing.T) {
	catalog := NewMockProductStore()
	svc := NewProductService(catalog)

	product, err := svc.CreateProduct(context.Background(), &ProductInput{
		Name:  strPtr("Monitor"),
		Price: int64Ptr(89900),
		Stock: intPtr(15),
	})

	require.NoError(t, err)
	assert.False(t, product.ID.IsZero())
	assert.Equal(t, "Monitor", product.Name)
	assert.Len(t, catalog.Products, 1)
}

func TestCreateProduct_Validation(t *testing.T) {
	cases := []struct {
		name  string
		input *ProductInput
		field string
	}{
		{"missing name", &ProductInput{Price: int64Ptr(100), Stock: intPtr(1)}, "name"},
		{"empty name", &ProductInput{Name: strPtr(""), Price: int64Ptr(100), Stock: intPtr(1)}, "name"},
		{"missing price", &ProductInput{Name: strPtr("Monitor"), Stock: intPtr(1)}, "price"},
		{"negative price", &ProductInput{Name: strPtr("Monitor"), Price: int64Ptr(-1), Stock: intPtr(1)}, "price"},
		{"negative stock", &ProductInput{Name: strPtr("Monitor"), Price: int64Ptr(100), Stock: intPtr(-1)}, "stock"},
	}

	svc := NewProductService(NewMockProductStore())
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateProduct(context.Background(), tc.input)

			var validation *ValidationError
			require.ErrorAs(t, err, &validation)
			assert.Equal(t, tc.field, validation.Field)
		})
	}
}

func TestUpdateProduct_PartialFields(t *testing.T) {
	product := newProduct("Monitor", 89900, 15)
	catalog := NewMockProductStore(product)
	svc := NewProductService(catalog)

	updated, err := svc.UpdateProduct(context.Background(), product.ID, &ProductInput{
		Price: int64Ptr(79900),
	})

	require.NoError(t, err)
	assert.Equal(t, int64(79900), updated.Price)
	// untouched fields keep their values
	assert.Equal(t, "Monitor", updated.Name)
	assert.Equal(t, 15, updated.Stock)
}

func TestUpdateProduct_NoFields(t *testing.T) {
	product := newProduct("Monitor", 89900, 15)
	svc := NewProductService(NewMockProductStore(product))

	_, err := svc.UpdateProduct(context.Background(), product.ID, &ProductInput{})

	var validation *ValidationError
	assert.ErrorAs(t, err, &validation)
}

func TestGetProduct_Unknown(t *testing.T) {
	svc := NewProductService(NewMockProductStore())

	_, err := svc.GetProduct(context.Background(), primitive.NewObjectID())

	var notFound *ProductNotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestDeleteProduct(t *testing.T) {
	product := newProduct("Monitor", 89900, 15)
	catalog := NewMockProductStore(product)
	svc := NewProductService(catalog)

	require.NoError(t, svc.DeleteProduct(context.Background(), product.ID))
	assert.Empty(t, catalog.Products)

	var notFound *ProductNotFoundError
	assert.ErrorAs(t, svc.DeleteProduct(context.Background(), product.ID), &notFound)
}
