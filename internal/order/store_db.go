package order

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"LeoStore/internal/pricing"
)

const (
	pingTimeout  = 1 * time.Second
	queryTimeout = 5 * time.Second
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return s.db.PingContext(ctx)
}

func (s *PostgresStore) Create(ctx context.Context, o Order) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (
			id, sid, created_at, subtotal, delivery_fee, total,
			customer_name, customer_phone, customer_email,
			addr_line1, addr_line2, addr_city, addr_pincode,
			method, eta_ms
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`, o.ID, o.SID, o.CreatedAt, o.Subtotal, o.DeliveryFee, o.Total,
		o.Customer.Name, o.Customer.Phone, o.Customer.Email,
		o.Address.Line1, o.Address.Line2, o.Address.City, o.Address.Pincode,
		o.Method, o.EtaMs)
	if err != nil {
		return err
	}

	// Items are the checkout snapshot: the derived name/image/prices go in
	// as values, not as catalog references.
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO order_items (order_id, product_id, name, image, unit_price, qty, line_total)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, it := range o.Items {
		if _, err := stmt.ExecContext(ctx, o.ID, it.ProductID, it.Name, it.Image, it.UnitPrice, it.Qty, it.LineTotal); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *PostgresStore) Get(ctx context.Context, id string) (Order, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	o, err := s.scanOrder(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Order{}, false, nil
	}
	if err != nil {
		return Order{}, false, err
	}

	items, err := s.scanItems(ctx, id)
	if err != nil {
		return Order{}, false, err
	}
	o.Items = items

	return o, true, nil
}

func (s *PostgresStore) ListBySession(ctx context.Context, sid string) ([]Order, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, orderSelect+`
		WHERE sid = $1
		ORDER BY created_at DESC, id DESC
	`, sid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Order, 0, 4)
	for rows.Next() {
		o, err := scanOrderRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		items, err := s.scanItems(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Items = items
	}
	return out, nil
}

const orderSelect = `
	SELECT id, sid, created_at, subtotal, delivery_fee, total,
	       customer_name, customer_phone, customer_email,
	       addr_line1, addr_line2, addr_city, addr_pincode,
	       method, eta_ms
	FROM orders
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrderRow(r rowScanner) (Order, error) {
	var o Order
	err := r.Scan(&o.ID, &o.SID, &o.CreatedAt, &o.Subtotal, &o.DeliveryFee, &o.Total,
		&o.Customer.Name, &o.Customer.Phone, &o.Customer.Email,
		&o.Address.Line1, &o.Address.Line2, &o.Address.City, &o.Address.Pincode,
		&o.Method, &o.EtaMs)
	return o, err
}

func (s *PostgresStore) scanOrder(ctx context.Context, id string) (Order, error) {
	return scanOrderRow(s.db.QueryRowContext(ctx, orderSelect+`WHERE id = $1`, id))
}

func (s *PostgresStore) scanItems(ctx context.Context, orderID string) ([]pricing.Item, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT product_id, name, image, unit_price, qty, line_total
		FROM order_items
		WHERE order_id = $1
		ORDER BY product_id ASC
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]pricing.Item, 0, 8)
	for rows.Next() {
		var it pricing.Item
		if err := rows.Scan(&it.ProductID, &it.Name, &it.Image, &it.UnitPrice, &it.Qty, &it.LineTotal); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
