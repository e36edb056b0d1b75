package catalog

import (
	"context"
	"sort"
	"sync"
)

type MemStore struct {
	mu sync.RWMutex
	m  map[string]Product
}

// NewMemStore seeds the demo catalog used when no database is configured.
func NewMemStore() *MemStore {
	s := &MemStore{m: map[string]Product{}}
	for _, p := range seedProducts {
		s.m[p.ID] = p
	}
	return s
}

var seedProducts = []Product{
	{ID: "p-tshirt", Name: "Leo T-Shirt", Image: "/store/tshirt.png", Price: 899, Discount: 10, Category: "merch"},
	{ID: "p-hoodie", Name: "Leo Hoodie", Image: "/store/hoodie.png", Price: 1499, Discount: 15, Category: "merch"},
	{ID: "p-cap", Name: "Leo Cap", Image: "/store/cap.png", Price: 499, Category: "merch"},
	{ID: "p-stickers", Name: "Sticker Pack", Image: "/store/stickers.png", Price: 199, Category: "stationery"},
	{ID: "p-notebook", Name: "Dotted Notebook", Image: "/store/notebook.png", Price: 299, Discount: 5, Category: "stationery"},
	{ID: "p-penset", Name: "Gel Pen Set", Image: "/store/penset.png", Price: 249, Category: "stationery"},
	{ID: "p-bottle", Name: "Steel Bottle", Image: "/store/bottle.png", Price: 599, Category: "accessories"},
	{ID: "p-backpack", Name: "Laptop Backpack", Image: "/store/backpack.png", Price: 1999, Discount: 20, Category: "accessories"},
}

func (s *MemStore) Ping(ctx context.Context) error { return nil }

func (s *MemStore) List(ctx context.Context) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Product, 0, len(s.m))
	for _, p := range s.m {
		out = append(out, p)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemStore) Get(ctx context.Context, id string) (Product, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.m[id]
	return p, ok, nil
}
