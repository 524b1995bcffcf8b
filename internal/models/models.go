package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product represents a catalog product. Price is stored in cents.
type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Category    string             `bson:"category,omitempty" json:"category,omitempty"`
	Brand       string             `bson:"brand,omitempty" json:"brand,omitempty"`
	Image       string             `bson:"image,omitempty" json:"image,omitempty"`
	Price       int64              `bson:"price" json:"price"`
	Stock       int                `bson:"stock" json:"stock"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}

// CartItem is one product entry in a cart. At most one item per product.
type CartItem struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	ProductID primitive.ObjectID `bson:"product_id" json:"product_id"`
	Quantity  int                `bson:"quantity" json:"quantity"`
}

// Cart holds a user's current items. One cart per user, created lazily,
// cleared (never deleted) by checkout or an explicit clear.
type Cart struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    string             `bson:"user_id" json:"user_id"`
	Items     []CartItem         `bson:"items" json:"items"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

// Item returns the cart item referencing productID, or nil.
func (c *Cart) Item(productID primitive.ObjectID) *CartItem {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return &c.Items[i]
		}
	}
	return nil
}

// OrderItem is an immutable snapshot of a cart item taken at checkout time.
// UnitPrice is the product price at purchase; it is never recomputed.
type OrderItem struct {
	ProductID primitive.ObjectID `bson:"product_id" json:"product_id"`
	Quantity  int                `bson:"quantity" json:"quantity"`
	UnitPrice int64              `bson:"unit_price" json:"unit_price"`
	ItemTotal int64              `bson:"item_total" json:"item_total"`
}

// Address is the delivery address captured on an order. Every field is
// required.
type Address struct {
	Street   string `bson:"street" json:"street"`
	Number   string `bson:"number" json:"number"`
	District string `bson:"district" json:"district"`
	City     string `bson:"city" json:"city"`
	State    string `bson:"state" json:"state"`
	ZipCode  string `bson:"zip_code" json:"zip_code"`
}

// Validate reports the first missing address field.
func (a Address) Validate() error {
	fields := []struct {
		name, value string
	}{
		{"street", a.Street},
		{"number", a.Number},
		{"district", a.District},
		{"city", a.City},
		{"state", a.State},
		{"zip_code", a.ZipCode},
	}
	for _, f := range fields {
		if f.value == "" {
			return fmt.Errorf("address field %q is required", f.name)
		}
	}
	return nil
}

// Order is the persisted result of a checkout. Total equals the sum of the
// item totals at creation time.
type Order struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID        string             `bson:"user_id" json:"user_id"`
	Items         []OrderItem        `bson:"items" json:"items"`
	Total         int64              `bson:"total" json:"total"`
	Status        string             `bson:"status" json:"status"`
	PaymentMethod string             `bson:"payment_method" json:"payment_method"`
	Address       Address            `bson:"address" json:"address"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at" json:"updated_at"`
}

// Order statuses
const (
	OrderStatusPending  = "PENDING"
	OrderStatusPaid     = "PAID"
	OrderStatusShipped  = "SHIPPED"
	OrderStatusCanceled = "CANCELED"
)

// Payment methods
const (
	PaymentMethodCreditCard = "CREDIT_CARD"
	PaymentMethodPix        = "PIX"
	PaymentMethodBankSlip   = "BANK_SLIP"
)

// ValidPaymentMethod reports whether m is one of the accepted payment methods.
func ValidPaymentMethod(m string) bool {
	switch m {
	case PaymentMethodCreditCard, PaymentMethodPix, PaymentMethodBankSlip:
		return true
	}
	return false
}
