package app_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"LeoStore/internal/app"
	"LeoStore/internal/cart"
	"LeoStore/internal/catalog"
	"LeoStore/internal/order"
	"LeoStore/pkg/kit"
)

var testTime = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func newStoreTS(t *testing.T) *httptest.Server {
	t.Helper()

	cat := catalog.NewMemStore()
	locks := kit.NewKeyMutex()
	carts := cart.NewMemStore(cat, locks)
	orders := order.NewMemStore()

	svc := order.NewService(carts, orders, zap.NewNop())
	svc.Now = func() time.Time { return testTime }

	h := app.NewHandler(app.Deps{
		Log:      zap.NewNop(),
		Service:  "store",
		Catalog:  cat,
		Carts:    carts,
		Orders:   orders,
		Checkout: svc,
	})

	return httptest.NewServer(h)
}

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar: %v", err)
	}
	return &http.Client{Jar: jar}
}

func doJSON(t *testing.T, c *http.Client, method, url string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		r = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, url, r)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}

	var out map[string]any
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			t.Fatalf("unmarshal %q: %v", raw, err)
		}
	}
	return resp, out
}

func cartOf(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	c, ok := body["cart"].(map[string]any)
	if !ok {
		t.Fatalf("no cart in response: %v", body)
	}
	return c
}

func TestCartOrderFlow(t *testing.T) {
	ts := newStoreTS(t)
	defer ts.Close()
	c := newClient(t)

	// Products are served without a session.
	resp, body := doJSON(t, c, http.MethodGet, ts.URL+"/products", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("products: status %d", resp.StatusCode)
	}
	if _, ok := body["products"].([]any); !ok {
		t.Fatalf("no products array: %v", body)
	}

	// First cart read issues the session cookie and shows an empty cart.
	resp, body = doJSON(t, c, http.MethodGet, ts.URL+"/cart", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get cart: status %d", resp.StatusCode)
	}
	if n := cartOf(t, body)["count"].(float64); n != 0 {
		t.Fatalf("fresh cart count = %v, want 0", n)
	}

	// Add 2 sticker packs (199 each, no discount).
	resp, body = doJSON(t, c, http.MethodPost, ts.URL+"/cart", map[string]any{"productId": "p-stickers", "qty": 2})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("add: status %d", resp.StatusCode)
	}
	cc := cartOf(t, body)
	if cc["count"].(float64) != 2 || cc["subtotal"].(float64) != 398 {
		t.Fatalf("cart after add = %v", cc)
	}

	// Replace the quantity.
	resp, body = doJSON(t, c, http.MethodPatch, ts.URL+"/cart", map[string]any{"productId": "p-stickers", "qty": 3})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("patch: status %d", resp.StatusCode)
	}
	if s := cartOf(t, body)["subtotal"].(float64); s != 597 {
		t.Fatalf("subtotal after patch = %v, want 597", s)
	}

	// Checkout.
	resp, body = doJSON(t, c, http.MethodPost, ts.URL+"/orders", map[string]any{
		"customer": map[string]any{"name": "Asha", "phone": "9999999999"},
		"address":  map[string]any{"line1": "12 MG Road", "city": "Pune", "pincode": "411001"},
		"method":   "standard",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("checkout: status %d body %v", resp.StatusCode, body)
	}
	id, _ := body["id"].(string)
	if !strings.HasPrefix(id, "ORD-") {
		t.Fatalf("order id = %q", id)
	}
	ord := body["order"].(map[string]any)
	if ord["total"].(float64) != 676 || ord["deliveryFee"].(float64) != 79 {
		t.Fatalf("order totals = %v", ord)
	}

	// Cart is empty after a successful checkout.
	_, body = doJSON(t, c, http.MethodGet, ts.URL+"/cart", nil)
	if n := cartOf(t, body)["count"].(float64); n != 0 {
		t.Fatalf("cart count after checkout = %v, want 0", n)
	}

	// The order shows up in the session's list.
	_, body = doJSON(t, c, http.MethodGet, ts.URL+"/orders", nil)
	orders, ok := body["orders"].([]any)
	if !ok || len(orders) != 1 {
		t.Fatalf("orders list = %v", body)
	}

	// Progress read: the clock is pinned to createdAt, so nothing moved.
	resp, body = doJSON(t, c, http.MethodGet, ts.URL+"/orders/"+id, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get order: status %d", resp.StatusCode)
	}
	if body["progress"].(float64) != 0 || body["status"].(string) != "packed" {
		t.Fatalf("progress/status = %v/%v, want 0/packed", body["progress"], body["status"])
	}
	if cps, ok := body["checkpoints"].([]any); !ok || len(cps) != 4 {
		t.Fatalf("checkpoints = %v", body["checkpoints"])
	}
}

func TestValidationErrors(t *testing.T) {
	ts := newStoreTS(t)
	defer ts.Close()
	c := newClient(t)

	// Missing productId.
	resp, _ := doJSON(t, c, http.MethodPost, ts.URL+"/cart", map[string]any{"qty": 1})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("add without productId: status %d", resp.StatusCode)
	}

	// PATCH without qty.
	resp, _ = doJSON(t, c, http.MethodPatch, ts.URL+"/cart", map[string]any{"productId": "p-stickers"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("patch without qty: status %d", resp.StatusCode)
	}

	// Checkout on an empty cart.
	resp, body := doJSON(t, c, http.MethodPost, ts.URL+"/orders", map[string]any{
		"customer": map[string]any{"name": "Asha", "phone": "9999999999"},
		"address":  map[string]any{"line1": "12 MG Road", "city": "Pune", "pincode": "411001"},
		"method":   "standard",
	})
	if resp.StatusCode != http.StatusBadRequest || body["error"] != "cart is empty" {
		t.Fatalf("empty-cart checkout: status %d body %v", resp.StatusCode, body)
	}

	// Bad delivery method.
	doJSON(t, c, http.MethodPost, ts.URL+"/cart", map[string]any{"productId": "p-stickers"})
	resp, body = doJSON(t, c, http.MethodPost, ts.URL+"/orders", map[string]any{
		"customer": map[string]any{"name": "Asha", "phone": "9999999999"},
		"address":  map[string]any{"line1": "12 MG Road", "city": "Pune", "pincode": "411001"},
		"method":   "drone",
	})
	if resp.StatusCode != http.StatusBadRequest || body["error"] != "invalid delivery method" {
		t.Fatalf("bad method: status %d body %v", resp.StatusCode, body)
	}

	// Missing checkout fields.
	resp, _ = doJSON(t, c, http.MethodPost, ts.URL+"/orders", map[string]any{
		"customer": map[string]any{"name": "Asha"},
		"address":  map[string]any{"line1": "12 MG Road"},
		"method":   "standard",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("missing fields: status %d", resp.StatusCode)
	}
}

func TestUnknownOrderIs404(t *testing.T) {
	ts := newStoreTS(t)
	defer ts.Close()
	c := newClient(t)

	resp, _ := doJSON(t, c, http.MethodGet, ts.URL+"/orders/ORD-NOPE0000", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestDeleteCartVariants(t *testing.T) {
	ts := newStoreTS(t)
	defer ts.Close()
	c := newClient(t)

	doJSON(t, c, http.MethodPost, ts.URL+"/cart", map[string]any{"productId": "p-stickers"})
	doJSON(t, c, http.MethodPost, ts.URL+"/cart", map[string]any{"productId": "p-cap"})

	// Body-targeted remove takes one line out.
	_, body := doJSON(t, c, http.MethodDelete, ts.URL+"/cart", map[string]any{"productId": "p-cap"})
	items := cartOf(t, body)["items"].([]any)
	if len(items) != 1 {
		t.Fatalf("items after remove = %v", items)
	}

	// ?clear=true empties the rest.
	_, body = doJSON(t, c, http.MethodDelete, ts.URL+"/cart?clear=true", nil)
	if n := cartOf(t, body)["count"].(float64); n != 0 {
		t.Fatalf("count after clear = %v, want 0", n)
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	ts := newStoreTS(t)
	defer ts.Close()

	c1 := newClient(t)
	c2 := newClient(t)

	doJSON(t, c1, http.MethodPost, ts.URL+"/cart", map[string]any{"productId": "p-stickers", "qty": 2})

	_, body := doJSON(t, c2, http.MethodGet, ts.URL+"/cart", nil)
	if n := cartOf(t, body)["count"].(float64); n != 0 {
		t.Fatalf("second session sees first session's cart: %v", body)
	}
}
