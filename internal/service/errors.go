package service

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyCart is returned when checkout is attempted with no cart items.
	ErrEmptyCart = errors.New("cart is empty, nothing to checkout")

	// ErrNotFound is returned when an order or cart item does not exist or
	// is not owned by the caller. Ownership failures deliberately look the
	// same as missing resources.
	ErrNotFound = errors.New("resource not found")

	// ErrForbidden is returned when the caller is authenticated but lacks
	// the required role.
	ErrForbidden = errors.New("forbidden")
)

// ProductNotFoundError reports a product id that no longer resolves.
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %s not found", e.ProductID)
}

// InsufficientStockError reports a quantity request exceeding available
// stock. Available and Requested are surfaced verbatim to API consumers.
type InsufficientStockError struct {
	ProductID string
	Name      string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: available %d, requested %d",
		e.Name, e.Available, e.Requested)
}

// ValidationError reports a malformed or missing required field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
