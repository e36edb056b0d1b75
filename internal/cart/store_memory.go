package cart

import (
	"context"
	"sync"

	"LeoStore/internal/catalog"
	"LeoStore/internal/pricing"
	"LeoStore/pkg/kit"
)

// MemStore keeps carts in a process-local map. Mutations on one session are
// serialized through the shared KeyMutex; two concurrent adds can therefore
// never lose an update, and checkout sees a frozen cart.
type MemStore struct {
	catalog catalog.Store
	locks   *kit.KeyMutex

	mu    sync.RWMutex
	carts map[string]map[string]int
}

func NewMemStore(cat catalog.Store, locks *kit.KeyMutex) *MemStore {
	return &MemStore{
		catalog: cat,
		locks:   locks,
		carts:   make(map[string]map[string]int),
	}
}

func (s *MemStore) Ping(ctx context.Context) error { return nil }

// lines returns a copy of the session's quantity map; an unknown session is
// an empty cart.
func (s *MemStore) lines(sid string) map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]int, len(s.carts[sid]))
	for pid, qty := range s.carts[sid] {
		out[pid] = qty
	}
	return out
}

func (s *MemStore) Get(ctx context.Context, sid string) (pricing.Details, error) {
	return derive(ctx, s.catalog, s.lines(sid))
}

func (s *MemStore) Add(ctx context.Context, sid, productID string, qty int) (pricing.Details, error) {
	unlock := s.locks.Lock(sid)
	defer unlock()

	// Unknown product: leave the cart alone and hand back the current
	// details. Deliberate policy, not an error — stale client catalogs
	// degrade gracefully. Pending a product decision on surfacing it.
	if _, ok, err := s.catalog.Get(ctx, productID); err != nil {
		return pricing.Details{}, err
	} else if !ok {
		return derive(ctx, s.catalog, s.lines(sid))
	}

	s.mu.Lock()
	state := s.carts[sid]
	if state == nil {
		state = make(map[string]int)
		s.carts[sid] = state
	}
	state[productID] = nextAddQty(state[productID], qty)
	s.mu.Unlock()

	return derive(ctx, s.catalog, s.lines(sid))
}

func (s *MemStore) Update(ctx context.Context, sid, productID string, qty int) (pricing.Details, error) {
	unlock := s.locks.Lock(sid)
	defer unlock()

	s.mu.Lock()
	if qty <= 0 {
		delete(s.carts[sid], productID)
	} else {
		state := s.carts[sid]
		if state == nil {
			state = make(map[string]int)
			s.carts[sid] = state
		}
		state[productID] = qty
	}
	s.mu.Unlock()

	return derive(ctx, s.catalog, s.lines(sid))
}

func (s *MemStore) Remove(ctx context.Context, sid, productID string) (pricing.Details, error) {
	unlock := s.locks.Lock(sid)
	defer unlock()

	s.mu.Lock()
	delete(s.carts[sid], productID)
	s.mu.Unlock()

	return derive(ctx, s.catalog, s.lines(sid))
}

func (s *MemStore) Clear(ctx context.Context, sid string) (pricing.Details, error) {
	unlock := s.locks.Lock(sid)
	defer unlock()

	s.clear(sid)
	return derive(ctx, s.catalog, nil)
}

func (s *MemStore) clear(sid string) {
	s.mu.Lock()
	delete(s.carts, sid)
	s.mu.Unlock()
}

func (s *MemStore) Checkout(ctx context.Context, sid string, commit func(pricing.Details) error) error {
	unlock := s.locks.Lock(sid)
	defer unlock()

	details, err := derive(ctx, s.catalog, s.lines(sid))
	if err != nil {
		return err
	}
	if err := commit(details); err != nil {
		return err
	}

	s.clear(sid)
	return nil
}
