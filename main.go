package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ZNilakshi/clothify/handlers"
	"github.com/ZNilakshi/clothify/internal/auth"
	"github.com/ZNilakshi/clothify/internal/cache"
	"github.com/ZNilakshi/clothify/internal/cart"
	"github.com/ZNilakshi/clothify/internal/database"
	"github.com/ZNilakshi/clothify/internal/notify"
	"github.com/ZNilakshi/clothify/internal/orders"
	"github.com/ZNilakshi/clothify/internal/repository"
	"github.com/ZNilakshi/clothify/internal/stores/kafka"
	"github.com/ZNilakshi/clothify/pkg/logkey"
	"github.com/ZNilakshi/clothify/pkg/metrics"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		AddSource: true,
	}))
	slog.SetDefault(logger)

	if err := run(); err != nil {
		slog.Error("startup failed", slog.String(logkey.ERROR, err.Error()))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := database.LoadConfig()
	if err != nil {
		return err
	}

	keys, err := auth.NewKeys(cfg.JWTSecret)
	if err != nil {
		return err
	}

	db, err := database.Open(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		return err
	}

	customers := repository.NewCustomerRepository(db)
	cities := repository.NewCityRepository(db)
	carts := repository.NewCartRepository(db)
	ordersRepo := repository.NewOrderRepository(db)
	inventory := repository.NewInventoryRepository(db)
	reports := repository.NewReportRepository(db)

	products := repository.NewProductRepository(db)
	if cfg.RedisURL != "" {
		rdb, err := cache.ConnectRedis(cfg)
		if err != nil {
			return err
		}
		defer rdb.Close()
		products = cache.NewCachedProductRepository(products, rdb)
		slog.Info("product cache enabled", slog.String("redis", cfg.RedisURL))
	}

	// Without brokers the dispatcher only logs events.
	var publisher notify.Publisher
	if cfg.KafkaBrokers != "" {
		kafkaConf, err := kafka.NewConf(strings.Split(cfg.KafkaBrokers, ","))
		if err != nil {
			return err
		}
		defer kafkaConf.Close()
		publisher = kafkaConf
		slog.Info("kafka publisher enabled", slog.String("brokers", cfg.KafkaBrokers))
	}
	dispatcher := notify.NewDispatcher(publisher)
	defer dispatcher.Close()

	orderService := orders.NewService(customers, cities, products, carts, ordersRepo, dispatcher, cfg.ShippingFee)
	cartService := cart.NewService(products, carts)

	m := metrics.NewServerMetrics("api")
	router := handlers.API("/v1", keys, orderService, cartService, inventory, reports, m)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", slog.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-shutdown:
		slog.Info("shutdown signal received", slog.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			srv.Close()
			return err
		}
	}
	return nil
}
