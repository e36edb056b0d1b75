package cart

import (
	"context"

	"LeoStore/internal/catalog"
	"LeoStore/internal/pricing"
)

// Store holds one quantity map per session. Every mutating call returns the
// freshly derived details so callers never read stale totals. All operations
// are total: an unknown session is an empty cart, not an error.
type Store interface {
	Ping(ctx context.Context) error
	Get(ctx context.Context, sid string) (pricing.Details, error)
	Add(ctx context.Context, sid, productID string, qty int) (pricing.Details, error)
	Update(ctx context.Context, sid, productID string, qty int) (pricing.Details, error)
	Remove(ctx context.Context, sid, productID string) (pricing.Details, error)
	Clear(ctx context.Context, sid string) (pricing.Details, error)

	// Checkout runs commit with the session's derived details while holding
	// the session key lock, then clears the cart only if commit returned nil.
	// No concurrent mutation can interleave between the derive, the commit
	// and the clear, which is what makes order creation atomic with the
	// cart reset.
	Checkout(ctx context.Context, sid string, commit func(pricing.Details) error) error
}

// derive builds the read model for a quantity map. Products that have left
// the catalog since they were added are skipped rather than failing the
// whole cart.
func derive(ctx context.Context, cat catalog.Store, lines map[string]int) (pricing.Details, error) {
	pl := make([]pricing.Line, 0, len(lines))
	for pid, qty := range lines {
		p, ok, err := cat.Get(ctx, pid)
		if err != nil {
			return pricing.Details{}, err
		}
		if !ok {
			continue
		}
		pl = append(pl, pricing.Line{Product: p, Qty: qty})
	}
	return pricing.Build(pl), nil
}

// nextAddQty clamps an add request the way the storefront always has:
// the increment is at least 1, and so is the resulting quantity.
func nextAddQty(existing, qty int) int {
	if qty < 1 {
		qty = 1
	}
	next := existing + qty
	if next < 1 {
		next = 1
	}
	return next
}
