package order

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"LeoStore/internal/session"
	"LeoStore/pkg/kit"
)

type Server struct {
	Service *Service
	Orders  Store
	Log     *zap.Logger
}

const maxCheckoutBody = 1 << 20

func (s *Server) Register(r chi.Router) {
	r.Get("/orders", s.list)
	r.Post("/orders", s.create)
	r.Get("/orders/{id}", s.get)
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	sid, ok := session.FromContext(r.Context())
	if !ok {
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	orders, err := s.Orders.ListBySession(r.Context(), sid)
	if err != nil {
		if s.Log != nil {
			s.Log.Error("list orders failed", zap.Error(err))
		}
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}
	kit.WriteJSON(w, http.StatusOK, map[string]any{"orders": orders})
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	sid, ok := session.FromContext(r.Context())
	if !ok {
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	req, err := decodeCheckoutRequest(w, r)
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", nil)
		return
	}
	if msg := validateCheckout(req); msg != "" {
		kit.WriteError(w, r, http.StatusBadRequest, msg, nil)
		return
	}

	ord, err := s.Service.Checkout(r.Context(), sid, req)
	if err != nil {
		if errors.Is(err, ErrEmptyCart) {
			kit.WriteError(w, r, http.StatusBadRequest, "cart is empty", nil)
			return
		}
		if s.Log != nil {
			s.Log.Error("checkout failed", zap.Error(err))
		}
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	kit.WriteJSON(w, http.StatusCreated, map[string]any{"id": ord.ID, "order": ord})
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	o, found, err := s.Orders.Get(r.Context(), id)
	if err != nil {
		if s.Log != nil {
			s.Log.Error("get order failed", zap.Error(err), zap.String("order_id", id))
		}
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}
	if !found {
		kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"id": id})
		return
	}

	p := DeriveProgress(o, s.Service.now())
	kit.WriteJSON(w, http.StatusOK, map[string]any{
		"order":       o,
		"progress":    p.Progress,
		"status":      p.Status,
		"checkpoints": p.Checkpoints,
	})
}

// validateCheckout enforces the boundary contract; the service itself only
// checks the non-empty-cart invariant.
func validateCheckout(req CheckoutRequest) string {
	if strings.TrimSpace(req.Customer.Name) == "" ||
		strings.TrimSpace(req.Customer.Phone) == "" ||
		strings.TrimSpace(req.Address.Line1) == "" ||
		strings.TrimSpace(req.Address.City) == "" ||
		strings.TrimSpace(req.Address.Pincode) == "" {
		return "missing required checkout fields"
	}
	if req.Method != MethodStandard && req.Method != MethodExpress {
		return "invalid delivery method"
	}
	return ""
}

func decodeCheckoutRequest(w http.ResponseWriter, r *http.Request) (CheckoutRequest, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxCheckoutBody)
	defer func() { _ = r.Body.Close() }()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var req CheckoutRequest
	if err := dec.Decode(&req); err != nil {
		return CheckoutRequest{}, err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return CheckoutRequest{}, errors.New("extra data after json object")
	}

	return req, nil
}
