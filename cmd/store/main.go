package main

import (
	"database/sql"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"LeoStore/internal/app"
	"LeoStore/internal/cart"
	"LeoStore/internal/catalog"
	"LeoStore/internal/order"
	"LeoStore/pkg/kit"
)

func main() {
	service := "store"
	log := kit.NewLogger(service)
	defer func() { _ = log.Sync() }()

	port := getenv("PORT", "8080")
	dbURL := getenv("DATABASE_URL", "")
	redisAddr := getenv("REDIS_ADDR", "")
	metricsEnabled := getenv("METRICS_ENABLED", "") == "true"
	metricsToken := getenv("METRICS_TOKEN", "")

	var (
		catalogStore catalog.Store
		orderStore   order.Store
	)
	if dbURL != "" {
		db, err := sql.Open("pgx", dbURL)
		if err != nil {
			log.Fatal("open database", zap.Error(err))
		}
		defer func() { _ = db.Close() }()

		catalogStore = catalog.NewPostgresStore(db)
		orderStore = order.NewPostgresStore(db)
		log.Info("using postgres stores")
	} else {
		catalogStore = catalog.NewMemStore()
		orderStore = order.NewMemStore()
	}

	// Cart mutations and checkout serialize per session on one shared lock.
	locks := kit.NewKeyMutex()

	var cartStore cart.Store
	if redisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
		defer func() { _ = rdb.Close() }()

		cartStore = cart.NewRedisStore(catalogStore, locks, rdb)
		log.Info("using redis cart store", zap.String("addr", redisAddr))
	} else {
		cartStore = cart.NewMemStore(catalogStore, locks)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())

	h := app.NewHandler(app.Deps{
		Log:      log,
		Service:  service,
		Registry: registry,

		MetricsEnabled: metricsEnabled,
		MetricsToken:   metricsToken,

		Catalog: catalogStore,
		Carts:   cartStore,
		Orders:  orderStore,
	})

	if err := kit.RunHTTPServer(":"+port, h, log); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
