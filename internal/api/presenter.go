package api

import (
	"errors"
	"net/http"

	"shop-service/internal/models"
	"shop-service/internal/service"
)

// Wire shapes are declared explicitly per response so field order and
// formatting stay stable regardless of how the domain models evolve.

// ErrorResponse is the uniform failure body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse is the uniform bare-acknowledgement body.
type MessageResponse struct {
	Message string `json:"message"`
}

// CheckoutResponse wraps a freshly created order.
type CheckoutResponse struct {
	Message string        `json:"message"`
	Order   *models.Order `json:"order"`
}

// CartItemResponse wraps the single line affected by an add.
type CartItemResponse struct {
	Message string                `json:"message"`
	Item    *service.CartLineView `json:"item"`
}

// CartResponse wraps a full populated cart.
type CartResponse struct {
	Message string            `json:"message,omitempty"`
	Cart    *service.CartView `json:"cart"`
}

// ProductResponse wraps a single product mutation result.
type ProductResponse struct {
	Message string          `json:"message"`
	Product *models.Product `json:"product"`
}

// PurgeResponse reports a bulk delete.
type PurgeResponse struct {
	Message string `json:"message"`
	Deleted int64  `json:"deleted"`
}

// statusFor maps a domain error to its HTTP status. Stock, empty-cart and
// validation failures are client errors; missing products and resources are
// 404 whether absent or merely not owned.
func statusFor(err error) int {
	var (
		notFound     *service.ProductNotFoundError
		insufficient *service.InsufficientStockError
		validation   *service.ValidationError
	)

	switch {
	case errors.Is(err, service.ErrEmptyCart),
		errors.As(err, &insufficient),
		errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound),
		errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
