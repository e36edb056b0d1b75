package order

import (
	"context"
	"errors"
	"time"

	"LeoStore/internal/pricing"
)

const (
	MethodStandard = "standard"
	MethodExpress  = "express"
)

type Customer struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email,omitempty"`
}

type Address struct {
	Line1   string `json:"line1"`
	Line2   string `json:"line2,omitempty"`
	City    string `json:"city"`
	Pincode string `json:"pincode"`
}

// Order is immutable once created. Items is a value snapshot of the cart at
// checkout time: later catalog price or discount changes never reach an
// existing order. Delivery progress is never stored on the order; it is
// derived from CreatedAt and EtaMs on every read.
type Order struct {
	ID          string         `json:"id"`
	SID         string         `json:"sid"`
	CreatedAt   time.Time      `json:"createdAt"`
	Items       []pricing.Item `json:"items"`
	Subtotal    int64          `json:"subtotal"`
	DeliveryFee int64          `json:"deliveryFee"`
	Total       int64          `json:"total"`
	Customer    Customer       `json:"customer"`
	Address     Address        `json:"address"`
	Method      string         `json:"method"`
	EtaMs       int64          `json:"etaMs"`
}

// ErrEmptyCart rejects checkout on a cart with no lines. The cart is left
// untouched when it is returned.
var ErrEmptyCart = errors.New("cart is empty")

type Store interface {
	Ping(ctx context.Context) error
	Create(ctx context.Context, o Order) error
	Get(ctx context.Context, id string) (Order, bool, error)
	// ListBySession returns the session's orders newest first.
	ListBySession(ctx context.Context, sid string) ([]Order, error)
}
