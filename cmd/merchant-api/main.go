package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fjod/go_cart/merchant-api/internal/catalog"
	"github.com/fjod/go_cart/merchant-api/internal/config"
	"github.com/fjod/go_cart/merchant-api/internal/events"
	merchantgrpc "github.com/fjod/go_cart/merchant-api/internal/grpc"
	h "github.com/fjod/go_cart/merchant-api/internal/http"
	"github.com/fjod/go_cart/merchant-api/internal/logger"
	"github.com/fjod/go_cart/merchant-api/internal/pricing"
	"github.com/fjod/go_cart/merchant-api/internal/repository"
	"github.com/fjod/go_cart/merchant-api/internal/service"
	"github.com/fjod/go_cart/merchant-api/internal/shipping"
	"github.com/fjod/go_cart/merchant-api/internal/telemetry"
	"github.com/redis/go-redis/v9"
)

func main() {
	if err := run(); err != nil {
		slog.Error("merchant api stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.New(os.Stdout, cfg.LogLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	_, shutdownTracing, err := telemetry.Setup(ctx, telemetry.OptionsFrom(cfg, os.Stdout))
	if err != nil {
		return err
	}

	store, err := loadCatalog(cfg.CatalogDir)
	if err != nil {
		return err
	}
	log.Info("catalog loaded", "products", len(store.Products()), "source", catalogSource(cfg.CatalogDir))

	cartRepo, closeCarts, err := newCartRepository(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeCarts()

	// Events: in-memory outbox drained by the poller
	outbox := events.NewOutbox(events.DefaultOutboxCapacity)
	publisher, closePublisher := newPublisher(cfg, log)
	defer closePublisher()
	poller := events.NewOutboxPoller(outbox, publisher, log)
	pollerDone := make(chan struct{})
	go func() {
		defer close(pollerDone)
		poller.Run(ctx)
	}()

	calc := shipping.NewCalculator(store)
	engine := pricing.NewEngine(store, calc, cfg.TaxPercent)
	carts := service.NewCartService(cartRepo, store, cfg.CartTTL, log)
	orderStore := repository.NewMemoryOrderStore()
	inventory := service.NewInventoryService(store)
	orders := service.NewOrderService(service.OrderServiceConfig{
		Carts:             carts,
		Pricing:           engine,
		Shipping:          calc,
		Orders:            orderStore,
		Returns:           orderStore,
		Events:            outbox,
		Logger:            log,
		StrictTransitions: cfg.StrictTransitions,
	})
	mandates := service.NewMandateService(carts, service.AcceptAllVerifier{}, cfg.MerchantContract, outbox, log)

	router, err := h.NewRouter(h.Services{
		Catalog:   store,
		Carts:     carts,
		Mandates:  mandates,
		Pricing:   engine,
		Shipping:  calc,
		Inventory: inventory,
		Orders:    orders,
	}, h.RouterConfig{
		BaseURL:            cfg.BaseURL,
		CORSOrigins:        cfg.CORSOrigins,
		RequestTimeout:     cfg.RequestTimeout,
		MaxRequestBodySize: cfg.MaxRequestBodySize,
		Logger:             log,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 2)
	go func() {
		log.Info("merchant api listening", "port", cfg.HTTPPort, "base_url", cfg.BaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- fmt.Errorf("http server: %w", err)
		}
	}()

	stopGRPC := func() {}
	if cfg.GRPCPort != "0" {
		lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
		if err != nil {
			return fmt.Errorf("failed to listen on grpc port: %w", err)
		}
		grpcServer := merchantgrpc.NewServer(inventory)
		stopGRPC = grpcServer.GracefulStop
		go func() {
			log.Info("inventory grpc listening", "port", cfg.GRPCPort)
			if err := grpcServer.Serve(lis); err != nil {
				serveErr <- fmt.Errorf("grpc server: %w", err)
			}
		}()
	}

	// Wait for interrupt signal
	select {
	case <-ctx.Done():
	case err = <-serveErr:
		log.Error("server failed", "error", err)
	}
	stop()

	log.Info("shutting down merchant api")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
		log.Error("server forced to shutdown", "error", shutdownErr)
	}
	stopGRPC()
	<-pollerDone
	// publish what is left before the publisher closes
	if n := poller.ProcessPending(shutdownCtx); n > 0 {
		log.Info("flushed pending events", "count", n)
	}
	if tracingErr := shutdownTracing(shutdownCtx); tracingErr != nil {
		log.Error("failed to flush traces", "error", tracingErr)
	}

	log.Info("merchant api stopped")
	return err
}

func loadCatalog(dir string) (*catalog.Store, error) {
	if dir == "" {
		return catalog.Default()
	}
	return catalog.Load(os.DirFS(dir))
}

func catalogSource(dir string) string {
	if dir == "" {
		return "embedded"
	}
	return dir
}

func newCartRepository(ctx context.Context, cfg *config.Config, log *slog.Logger) (repository.CartRepository, func(), error) {
	if cfg.CartBackend != config.CartBackendRedis {
		store := repository.NewMemoryCartStore()
		return store, func() { _ = store.Close() }, nil
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		_ = redisClient.Close()
		return nil, nil, fmt.Errorf("redis connection failed: %w", err)
	}
	log.Info("redis ping succeeded", "addr", cfg.RedisAddr)
	return repository.NewRedisCartStore(redisClient), func() { _ = redisClient.Close() }, nil
}

func newPublisher(cfg *config.Config, log *slog.Logger) (events.Publisher, func()) {
	if len(cfg.KafkaBrokers) == 0 {
		log.Info("no kafka brokers configured, events are logged")
		return events.NewLogPublisher(log), func() {}
	}
	publisher := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, log)
	log.Info("publishing events to kafka", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	return publisher, func() {
		if err := publisher.Close(); err != nil {
			log.Error("failed to close kafka writer", "error", err)
		}
	}
}
