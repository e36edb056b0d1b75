package catalog

import "context"

// Product is a coins-store catalog entry. Price is in whole coins; Discount
// is a percentage in [0, 100]. The catalog is read-only from this service's
// point of view: nothing here ever mutates it.
type Product struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Image    string `json:"image"`
	Price    int64  `json:"price"`
	Discount int    `json:"discount,omitempty"`
	Category string `json:"category,omitempty"`
}

type Store interface {
	Ping(ctx context.Context) error
	List(ctx context.Context) ([]Product, error)
	Get(ctx context.Context, id string) (Product, bool, error)
}
