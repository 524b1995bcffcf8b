package service

import (
	"context"
	"errors"
	"fmt"

	"shop-service/internal/models"
	"shop-service/internal/store"
	"shop-service/internal/util"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// CatalogStore is the full product CRUD contract, a superset of
// ProductStore used by the admin endpoints.
type CatalogStore interface {
	ProductStore
	ListProducts(ctx context.Context) ([]models.Product, error)
	InsertProduct(ctx context.Context, product *models.Product) error
	UpdateProduct(ctx context.Context, id primitive.ObjectID, fields bson.M) (*models.Product, error)
	DeleteProduct(ctx context.Context, id primitive.ObjectID) error
}

// ProductService handles catalog reads and admin CRUD.
type ProductService struct {
	catalog CatalogStore
	logger  *zap.Logger
}

// NewProductService creates a new product service
func NewProductService(catalog CatalogStore) *ProductService {
	return &ProductService{
		catalog: catalog,
		logger:  util.GetLogger(),
	}
}

// ProductInput carries caller-supplied product fields. Pointer fields
// distinguish absent from zero on update.
type ProductInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	Brand       *string `json:"brand"`
	Image       *string `json:"image"`
	Price       *int64  `json:"price"`
	Stock       *int    `json:"stock"`
}

// ListProducts returns the whole catalog.
func (s *ProductService) ListProducts(ctx context.Context) ([]models.Product, error) {
	return s.catalog.ListProducts(ctx)
}

// GetProduct returns one product by id.
func (s *ProductService) GetProduct(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	product, err := s.catalog.FindProduct(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, &ProductNotFoundError{ProductID: id.Hex()}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return product, nil
}

// CreateProduct validates and persists a new product.
func (s *ProductService) CreateProduct(ctx context.Context, input *ProductInput) (*models.Product, error) {
	if input.Name == nil || *input.Name == "" {
		return nil, &ValidationError{Field: "name", Reason: "is required"}
	}
	if input.Price == nil || *input.Price < 0 {
		return nil, &ValidationError{Field: "price", Reason: "must be a non-negative amount"}
	}
	if input.Stock == nil || *input.Stock < 0 {
		return nil, &ValidationError{Field: "stock", Reason: "must be a non-negative integer"}
	}

	product := &models.Product{
		Name:  *input.Name,
		Price: *input.Price,
		Stock: *input.Stock,
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.Category != nil {
		product.Category = *input.Category
	}
	if input.Brand != nil {
		product.Brand = *input.Brand
	}
	if input.Image != nil {
		product.Image = *input.Image
	}

	if err := s.catalog.InsertProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.logger.Info("Product created",
		zap.String("product_id", product.ID.Hex()),
		zap.String("name", product.Name))
	return product, nil
}

// UpdateProduct applies only the fields present in the input. Unknown
// payload fields are rejected at bind time by the explicit input shape.
func (s *ProductService) UpdateProduct(ctx context.Context, id primitive.ObjectID, input *ProductInput) (*models.Product, error) {
	fields := bson.M{}
	if input.Name != nil {
		if *input.Name == "" {
			return nil, &ValidationError{Field: "name", Reason: "must not be empty"}
		}
		fields["name"] = *input.Name
	}
	if input.Description != nil {
		fields["description"] = *input.Description
	}
	if input.Category != nil {
		fields["category"] = *input.Category
	}
	if input.Brand != nil {
		fields["brand"] = *input.Brand
	}
	if input.Image != nil {
		fields["image"] = *input.Image
	}
	if input.Price != nil {
		if *input.Price < 0 {
			return nil, &ValidationError{Field: "price", Reason: "must be a non-negative amount"}
		}
		fields["price"] = *input.Price
	}
	if input.Stock != nil {
		if *input.Stock < 0 {
			return nil, &ValidationError{Field: "stock", Reason: "must be a non-negative integer"}
		}
		fields["stock"] = *input.Stock
	}
	if len(fields) == 0 {
		return nil, &ValidationError{Field: "body", Reason: "no updatable fields provided"}
	}

	product, err := s.catalog.UpdateProduct(ctx, id, fields)
	if errors.Is(err, store.ErrNotFound) {
		return nil, &ProductNotFoundError{ProductID: id.Hex()}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return product, nil
}

// DeleteProduct removes a product from the catalog.
func (s *ProductService) DeleteProduct(ctx context.Context, id primitive.ObjectID) error {
	err := s.catalog.DeleteProduct(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return &ProductNotFoundError{ProductID: id.Hex()}
	}
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	s.logger.Info("Product deleted", zap.String("product_id", id.Hex()))
	return nil
}
