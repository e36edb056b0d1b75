// Package pricing turns catalog entries and quantities into line items and
// cart totals. Everything here is a pure function over its inputs, safe to
// call concurrently without synchronization.
package pricing

import (
	"sort"

	"LeoStore/internal/catalog"
)

// Item is one displayable cart line with its derived prices.
type Item struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Image     string `json:"image"`
	UnitPrice int64  `json:"unitPrice"`
	Qty       int    `json:"qty"`
	LineTotal int64  `json:"lineTotal"`
}

// Details is the derived read model of a cart. It is recomputed on every
// read and never stored; Total equals Subtotal here (delivery fees are
// applied at checkout, not in the cart).
type Details struct {
	Items    []Item `json:"items"`
	Count    int    `json:"count"`
	Subtotal int64  `json:"subtotal"`
	Total    int64  `json:"total"`
}

// Line pairs a catalog product with a requested quantity.
type Line struct {
	Product catalog.Product
	Qty     int
}

// UnitPrice applies the product discount and rounds half up:
// round(price * (1 - discount/100)) in exact integer math.
func UnitPrice(price int64, discount int) int64 {
	if discount <= 0 {
		return price
	}
	return (price*int64(100-discount) + 50) / 100
}

// Build derives the full read model for a set of lines. Items come out
// sorted by product id so repeated reads of the same cart are stable.
func Build(lines []Line) Details {
	d := Details{Items: make([]Item, 0, len(lines))}

	for _, l := range lines {
		unit := UnitPrice(l.Product.Price, l.Product.Discount)
		line := unit * int64(l.Qty)

		d.Items = append(d.Items, Item{
			ProductID: l.Product.ID,
			Name:      l.Product.Name,
			Image:     l.Product.Image,
			UnitPrice: unit,
			Qty:       l.Qty,
			LineTotal: line,
		})
		d.Count += l.Qty
		d.Subtotal += line
	}

	sort.Slice(d.Items, func(i, j int) bool { return d.Items[i].ProductID < d.Items[j].ProductID })
	d.Total = d.Subtotal
	return d
}
