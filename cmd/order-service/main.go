package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/dmehra2102/Storefront-Order-Service/configs"
	couponpg "github.com/dmehra2102/Storefront-Order-Service/internal/coupon/infrastructure/postgres"
	inventoryapp "github.com/dmehra2102/Storefront-Order-Service/internal/inventory/application"
	inventorypg "github.com/dmehra2102/Storefront-Order-Service/internal/inventory/infrastructure/postgres"
	"github.com/dmehra2102/Storefront-Order-Service/internal/order/application"
	orderhttp "github.com/dmehra2102/Storefront-Order-Service/internal/order/infrastructure/http"
	ordermw "github.com/dmehra2102/Storefront-Order-Service/internal/order/infrastructure/http/middleware"
	orderkafka "github.com/dmehra2102/Storefront-Order-Service/internal/order/infrastructure/kafka"
	orderpg "github.com/dmehra2102/Storefront-Order-Service/internal/order/infrastructure/postgres"
	"github.com/dmehra2102/Storefront-Order-Service/internal/payment/gateway"
	walletapp "github.com/dmehra2102/Storefront-Order-Service/internal/wallet/application"
	walletpg "github.com/dmehra2102/Storefront-Order-Service/internal/wallet/infrastructure/postgres"
	"github.com/dmehra2102/Storefront-Order-Service/pkg/idempotency"
	"github.com/dmehra2102/Storefront-Order-Service/pkg/logging"
	"github.com/dmehra2102/Storefront-Order-Service/pkg/outbox"
	"github.com/dmehra2102/Storefront-Order-Service/pkg/shutdown"
	"github.com/dmehra2102/Storefront-Order-Service/pkg/tracing"
)

func main() {
	cfg, err := configs.Load(env("CONFIG_DIR", "./configs"), env("APP_ENV", "dev"))
	if err != nil {
		logging.New("info").Error("config load failed", "err", err)
		os.Exit(1)
	}
	log := logging.New(cfg.App.LogLevel)

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	tp, err := tracing.Init(ctx, cfg.App.Name, cfg.Tracing.Endpoint, log)
	if err != nil {
		log.Error("otel init failed", "err", err)
		os.Exit(1)
	}
	defer func() { _ = tp.Shutdown(ctx) }()

	// Postgres, with the shopspring decimal codec on every connection.
	poolCfg, err := pgxpool.ParseConfig(cfg.Postgres.URL)
	if err != nil {
		log.Error("pg config failed", "err", err)
		os.Exit(1)
	}
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		log.Error("pg connect failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password})
	idem := idempotency.NewStore(rdb, cfg.Idempotency.TTL)

	// Kafka producer + outbox relay.
	writer := orderkafka.NewWriter(cfg.Kafka.Brokers)
	defer writer.Close()
	store := orderpg.NewOutboxStore(log, pool)
	dispatch := outbox.NewDispatcher(log, writer, cfg.Kafka.OrderEvents)
	relay := outbox.NewRelay(log, store, dispatch, cfg.App.Name+"-relay")

	// Wiring, leaf to root.
	stock := inventoryapp.NewService(log, inventorypg.NewRepository(log, pool))
	ledger := walletapp.NewLedger(log, walletpg.NewRepository(log, pool))
	coupons := couponpg.NewRepository(log, pool)
	gw := gateway.NewClient(log, cfg.Gateway.BaseURL, cfg.Gateway.KeyID, cfg.Gateway.KeySecret)
	users := orderpg.NewUserStore(pool)
	carts := orderpg.NewCartStore(log, pool)
	orders := orderpg.NewRepository(log, pool)

	svc := application.NewService(log, orders, stock, ledger, coupons, gw, users, carts)
	handler := orderhttp.NewHandler(log, svc)

	r := chi.NewRouter()
	r.Use(ordermw.Metrics)
	r.Use(idempotency.Middleware(log, idem))
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Mount("/", handler.Routes())

	srv := &http.Server{
		Addr:         cfg.App.HTTPAddr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	go func() {
		if err := relay.Run(ctx); err != nil {
			log.Error("relay stopped with error", "err", err)
		}
	}()

	go func() {
		log.Info("http listening", "addr", cfg.App.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server error", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = srv.Shutdown(shutdownCtx)
	log.Info("order-service shutdown complete")
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
