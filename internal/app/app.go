// Package app wires the coins-store components into one HTTP handler.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"LeoStore/internal/cart"
	"LeoStore/internal/catalog"
	"LeoStore/internal/order"
	"LeoStore/internal/session"
	"LeoStore/pkg/kit"
)

type Deps struct {
	Log      *zap.Logger
	Service  string
	Registry *prometheus.Registry

	MetricsEnabled bool
	MetricsToken   string

	Catalog catalog.Store
	Carts   cart.Store
	Orders  order.Store

	// Checkout defaults to a service over Carts/Orders; tests inject one
	// with a pinned clock and id factory.
	Checkout *order.Service
}

func NewHandler(deps Deps) http.Handler {
	if deps.Checkout == nil {
		deps.Checkout = order.NewService(deps.Carts, deps.Orders, deps.Log)
	}

	catalogSrv := &catalog.Server{Store: deps.Catalog, Log: deps.Log}
	cartSrv := &cart.Server{Store: deps.Carts, Log: deps.Log}
	orderSrv := &order.Server{Service: deps.Checkout, Orders: deps.Orders, Log: deps.Log}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(kit.Recoverer)
	r.Use(kit.Logging(deps.Log))

	setupMetrics(r, deps)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", readyz(deps))

	catalogSrv.Register(r)

	r.Group(func(pr chi.Router) {
		pr.Use(session.Middleware)
		cartSrv.Register(pr)
		orderSrv.Register(pr)
	})

	return r
}

func setupMetrics(r *chi.Mux, deps Deps) {
	if deps.Registry == nil {
		return
	}

	metrics := kit.NewMetrics(deps.Registry)
	r.Use(metrics.Middleware(deps.Service, kit.ChiRoutePatternOrPath))

	if !deps.MetricsEnabled {
		return
	}

	r.With(kit.MetricsAuth(deps.MetricsToken)).
		Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
}

func readyz(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 1*time.Second)
		defer cancel()

		for _, ping := range []func(context.Context) error{
			deps.Catalog.Ping,
			deps.Carts.Ping,
			deps.Orders.Ping,
		} {
			if err := ping(ctx); err != nil {
				if deps.Log != nil {
					deps.Log.Warn("readyz failed", zap.Error(err))
				}
				kit.WriteError(w, r, http.StatusServiceUnavailable, "not ready", nil)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	}
}
