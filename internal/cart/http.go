package cart

import (
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"LeoStore/internal/pricing"
	"LeoStore/internal/session"
	"LeoStore/pkg/kit"
)

type Server struct {
	Store Store
	Log   *zap.Logger
}

const maxBody = 1 << 20

// qty arrives as a JSON number that may carry a fractional part; it is
// floored before it reaches the store.
type mutateReq struct {
	ProductID string   `json:"productId"`
	Qty       *float64 `json:"qty"`
}

func (s *Server) Register(r chi.Router) {
	r.Get("/cart", s.get)
	r.Post("/cart", s.add)
	r.Patch("/cart", s.update)
	r.Delete("/cart", s.remove)
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	sid, ok := session.FromContext(r.Context())
	if !ok {
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	details, err := s.Store.Get(r.Context(), sid)
	if err != nil {
		s.storeError(w, r, "get cart failed", err)
		return
	}
	s.writeCart(w, details)
}

func (s *Server) add(w http.ResponseWriter, r *http.Request) {
	sid, ok := session.FromContext(r.Context())
	if !ok {
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	req, err := decodeMutateReq(w, r)
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", nil)
		return
	}
	if strings.TrimSpace(req.ProductID) == "" {
		kit.WriteError(w, r, http.StatusBadRequest, "missing productId", nil)
		return
	}

	qty := 1
	if req.Qty != nil {
		qty = int(math.Floor(*req.Qty))
	}

	details, err := s.Store.Add(r.Context(), sid, req.ProductID, qty)
	if err != nil {
		s.storeError(w, r, "add to cart failed", err)
		return
	}
	s.writeCart(w, details)
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	sid, ok := session.FromContext(r.Context())
	if !ok {
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	req, err := decodeMutateReq(w, r)
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", nil)
		return
	}
	if strings.TrimSpace(req.ProductID) == "" || req.Qty == nil {
		kit.WriteError(w, r, http.StatusBadRequest, "missing productId/qty", nil)
		return
	}

	details, err := s.Store.Update(r.Context(), sid, req.ProductID, int(math.Floor(*req.Qty)))
	if err != nil {
		s.storeError(w, r, "update cart failed", err)
		return
	}
	s.writeCart(w, details)
}

func (s *Server) remove(w http.ResponseWriter, r *http.Request) {
	sid, ok := session.FromContext(r.Context())
	if !ok {
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	if r.URL.Query().Get("clear") == "true" {
		details, err := s.Store.Clear(r.Context(), sid)
		if err != nil {
			s.storeError(w, r, "clear cart failed", err)
			return
		}
		s.writeCart(w, details)
		return
	}

	req, err := decodeMutateReq(w, r)
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", nil)
		return
	}
	if strings.TrimSpace(req.ProductID) == "" {
		kit.WriteError(w, r, http.StatusBadRequest, "missing productId", nil)
		return
	}

	details, err := s.Store.Remove(r.Context(), sid, req.ProductID)
	if err != nil {
		s.storeError(w, r, "remove from cart failed", err)
		return
	}
	s.writeCart(w, details)
}

func (s *Server) writeCart(w http.ResponseWriter, details pricing.Details) {
	kit.WriteJSON(w, http.StatusOK, map[string]any{"cart": details})
}

func (s *Server) storeError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	if s.Log != nil {
		s.Log.Error(msg, zap.Error(err))
	}
	kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
}

func decodeMutateReq(w http.ResponseWriter, r *http.Request) (mutateReq, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	defer func() { _ = r.Body.Close() }()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var req mutateReq
	if err := dec.Decode(&req); err != nil {
		return mutateReq{}, err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return mutateReq{}, errors.New("extra data after json object")
	}

	return req, nil
}
