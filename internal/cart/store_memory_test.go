package cart_test

import (
	"context"
	"errors"
	"testing"

	"LeoStore/internal/cart"
	"LeoStore/internal/catalog"
	"LeoStore/internal/pricing"
	"LeoStore/pkg/kit"
)

type fakeCatalog struct {
	m map[string]catalog.Product
}

func newFakeCatalog(products ...catalog.Product) *fakeCatalog {
	f := &fakeCatalog{m: map[string]catalog.Product{}}
	for _, p := range products {
		f.m[p.ID] = p
	}
	return f
}

func (f *fakeCatalog) Ping(ctx context.Context) error { return nil }

func (f *fakeCatalog) List(ctx context.Context) ([]catalog.Product, error) {
	out := make([]catalog.Product, 0, len(f.m))
	for _, p := range f.m {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeCatalog) Get(ctx context.Context, id string) (catalog.Product, bool, error) {
	p, ok := f.m[id]
	return p, ok, nil
}

func newMemStore(t *testing.T) *cart.MemStore {
	t.Helper()
	cat := newFakeCatalog(
		catalog.Product{ID: "p1", Name: "Hoodie", Price: 1000, Discount: 10},
		catalog.Product{ID: "p2", Name: "Stickers", Price: 199},
	)
	return cart.NewMemStore(cat, kit.NewKeyMutex())
}

func qtyOf(d pricing.Details, productID string) int {
	for _, it := range d.Items {
		if it.ProductID == productID {
			return it.Qty
		}
	}
	return 0
}

func TestGetUnknownSessionIsEmptyCart(t *testing.T) {
	s := newMemStore(t)

	d, err := s.Get(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(d.Items) != 0 || d.Count != 0 || d.Subtotal != 0 {
		t.Fatalf("expected empty details, got %+v", d)
	}
}

func TestAddAccumulates(t *testing.T) {
	s := newMemStore(t)
	ctx := context.Background()

	if _, err := s.Add(ctx, "sid", "p1", 2); err != nil {
		t.Fatalf("add: %v", err)
	}
	d, err := s.Add(ctx, "sid", "p1", 3)
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	if got := qtyOf(d, "p1"); got != 5 {
		t.Fatalf("qty = %d, want 5", got)
	}
	if d.Subtotal != 5*900 {
		t.Fatalf("subtotal = %d, want %d", d.Subtotal, 5*900)
	}
}

func TestAddClampsQty(t *testing.T) {
	s := newMemStore(t)
	ctx := context.Background()

	// A zero or negative request still adds one.
	d, err := s.Add(ctx, "sid", "p1", 0)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if got := qtyOf(d, "p1"); got != 1 {
		t.Fatalf("qty after add(0) = %d, want 1", got)
	}

	d, err = s.Add(ctx, "sid", "p1", -5)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if got := qtyOf(d, "p1"); got != 2 {
		t.Fatalf("qty after add(-5) = %d, want 2", got)
	}
}

func TestAddUnknownProductIsNoOp(t *testing.T) {
	s := newMemStore(t)
	ctx := context.Background()

	if _, err := s.Add(ctx, "sid", "p1", 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	d, err := s.Add(ctx, "sid", "ghost", 3)
	if err != nil {
		t.Fatalf("add unknown: %v", err)
	}

	if len(d.Items) != 1 || qtyOf(d, "p1") != 1 {
		t.Fatalf("cart changed by unknown product add: %+v", d)
	}
}

func TestUpdateReplacesAndZeroCollapses(t *testing.T) {
	s := newMemStore(t)
	ctx := context.Background()

	if _, err := s.Add(ctx, "sid", "p1", 4); err != nil {
		t.Fatalf("add: %v", err)
	}

	d, err := s.Update(ctx, "sid", "p1", 2)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got := qtyOf(d, "p1"); got != 2 {
		t.Fatalf("qty after update(2) = %d, want 2 (replace, not add)", got)
	}

	d, err = s.Update(ctx, "sid", "p1", 0)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(d.Items) != 0 {
		t.Fatalf("update(0) should remove the line, got %+v", d)
	}

	d, err = s.Get(ctx, "sid")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if qtyOf(d, "p1") != 0 {
		t.Fatalf("removed line came back: %+v", d)
	}
}

func TestRemoveIdempotent(t *testing.T) {
	s := newMemStore(t)
	ctx := context.Background()

	if _, err := s.Add(ctx, "sid", "p2", 1); err != nil {
		t.Fatalf("add: %v", err)
	}

	d1, err := s.Remove(ctx, "sid", "p2")
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	d2, err := s.Remove(ctx, "sid", "p2")
	if err != nil {
		t.Fatalf("second remove: %v", err)
	}

	if len(d1.Items) != 0 || len(d2.Items) != 0 {
		t.Fatalf("remove not idempotent: %+v vs %+v", d1, d2)
	}
}

func TestClear(t *testing.T) {
	s := newMemStore(t)
	ctx := context.Background()

	if _, err := s.Add(ctx, "sid", "p1", 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := s.Add(ctx, "sid", "p2", 2); err != nil {
		t.Fatalf("add: %v", err)
	}

	d, err := s.Clear(ctx, "sid")
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if len(d.Items) != 0 || d.Subtotal != 0 {
		t.Fatalf("clear returned non-empty details: %+v", d)
	}
}

func TestCheckoutCommitClearsCart(t *testing.T) {
	s := newMemStore(t)
	ctx := context.Background()

	if _, err := s.Add(ctx, "sid", "p2", 2); err != nil {
		t.Fatalf("add: %v", err)
	}

	var seen pricing.Details
	err := s.Checkout(ctx, "sid", func(d pricing.Details) error {
		seen = d
		return nil
	})
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if qtyOf(seen, "p2") != 2 {
		t.Fatalf("commit saw wrong details: %+v", seen)
	}

	d, err := s.Get(ctx, "sid")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(d.Items) != 0 {
		t.Fatalf("cart not cleared after commit: %+v", d)
	}
}

func TestCheckoutCommitFailureLeavesCart(t *testing.T) {
	s := newMemStore(t)
	ctx := context.Background()

	if _, err := s.Add(ctx, "sid", "p1", 3); err != nil {
		t.Fatalf("add: %v", err)
	}

	boom := errors.New("boom")
	err := s.Checkout(ctx, "sid", func(pricing.Details) error { return boom })
	if !errors.Is(err, boom) {
		t.Fatalf("checkout err = %v, want boom", err)
	}

	d, err := s.Get(ctx, "sid")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if qtyOf(d, "p1") != 3 {
		t.Fatalf("cart mutated by failed commit: %+v", d)
	}
}
