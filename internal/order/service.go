package order

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"LeoStore/internal/cart"
	"LeoStore/internal/pricing"
)

const (
	freeDeliveryOver = 1500
	feeStandard      = 79
	feeExpress       = 199

	// Demo-scale simulated SLAs. A production deployment would make these
	// configurable per carrier.
	etaStandard = 2 * time.Minute
	etaExpress  = 1 * time.Minute
)

type CheckoutRequest struct {
	Customer Customer `json:"customer"`
	Address  Address  `json:"address"`
	Method   string   `json:"method"`
}

// Service turns a session's cart into an immutable order. Now and NewID are
// injectable so tests can pin the clock and the order ids; both default to
// the real thing.
type Service struct {
	Carts  cart.Store
	Orders Store
	Log    *zap.Logger

	Now   func() time.Time
	NewID func() string
}

func NewService(carts cart.Store, orders Store, log *zap.Logger) *Service {
	return &Service{Carts: carts, Orders: orders, Log: log}
}

// Checkout derives the cart, prices the order and persists it, then clears
// the cart — all under the session's key lock (cart.Store.Checkout), so no
// reader ever sees the order exist while the cart still has lines. A failed
// persist leaves the cart exactly as it was.
func (s *Service) Checkout(ctx context.Context, sid string, req CheckoutRequest) (Order, error) {
	var ord Order

	err := s.Carts.Checkout(ctx, sid, func(details pricing.Details) error {
		if len(details.Items) == 0 {
			return ErrEmptyCart
		}

		fee := deliveryFee(details.Subtotal, req.Method)
		eta := etaStandard
		if req.Method == MethodExpress {
			eta = etaExpress
		}

		ord = Order{
			ID:          s.newID(),
			SID:         sid,
			CreatedAt:   s.now(),
			Items:       details.Items,
			Subtotal:    details.Subtotal,
			DeliveryFee: fee,
			Total:       details.Subtotal + fee,
			Customer:    req.Customer,
			Address:     req.Address,
			Method:      req.Method,
			EtaMs:       eta.Milliseconds(),
		}

		return s.Orders.Create(ctx, ord)
	})
	if err != nil {
		return Order{}, err
	}

	if s.Log != nil {
		s.Log.Info("order created",
			zap.String("order_id", ord.ID),
			zap.Int64("total", ord.Total),
			zap.String("method", ord.Method),
		)
	}
	return ord, nil
}

// deliveryFee: free over the threshold regardless of method, otherwise a
// flat fee by method.
func deliveryFee(subtotal int64, method string) int64 {
	if subtotal > freeDeliveryOver {
		return 0
	}
	if method == MethodExpress {
		return feeExpress
	}
	return feeStandard
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func (s *Service) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	return NewOrderID()
}

// NewOrderID builds a short human-readable id from the tail of a uuid,
// e.g. ORD-9F27C41A.
func NewOrderID() string {
	u := uuid.NewString()
	return "ORD-" + strings.ToUpper(u[len(u)-8:])
}
