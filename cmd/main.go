package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rishabhd491/savor-rbac-regional-platform/internal/api"
	"github.com/rishabhd491/savor-rbac-regional-platform/internal/cache"
	"github.com/rishabhd491/savor-rbac-regional-platform/internal/config"
	"github.com/rishabhd491/savor-rbac-regional-platform/internal/database"
	"github.com/rishabhd491/savor-rbac-regional-platform/internal/logger"
	"github.com/rishabhd491/savor-rbac-regional-platform/internal/messaging"
	"github.com/rishabhd491/savor-rbac-regional-platform/internal/metrics"
	"github.com/rishabhd491/savor-rbac-regional-platform/internal/policy"
	"github.com/rishabhd491/savor-rbac-regional-platform/internal/seed"
	"github.com/rishabhd491/savor-rbac-regional-platform/internal/services/account"
	"github.com/rishabhd491/savor-rbac-regional-platform/internal/services/cart"
	"github.com/rishabhd491/savor-rbac-regional-platform/internal/services/catalog"
	"github.com/rishabhd491/savor-rbac-regional-platform/internal/services/identity"
	"github.com/rishabhd491/savor-rbac-regional-platform/internal/services/notification"
	"github.com/rishabhd491/savor-rbac-regional-platform/internal/services/order"
	"github.com/rishabhd491/savor-rbac-regional-platform/internal/services/paymentmethod"
	"github.com/rishabhd491/savor-rbac-regional-platform/internal/storage/memory"
	"github.com/rishabhd491/savor-rbac-regional-platform/internal/storage/postgres"
)

// recordStore is everything the services need from a storage backend
type recordStore interface {
	account.Store
	catalog.Store
	cart.Store
	order.Store
	paymentmethod.Store
	seed.Store
	api.Pinger
}

func main() {
	var (
		mode       = flag.String("mode", "", "Process mode (api, notification-subscriber, seed, migrate)")
		configPath = flag.String("config", "config.yaml", "Path to the YAML config file")
		port       = flag.Int("port", 0, "HTTP port, overrides server.port")
	)
	flag.Parse()

	if *mode == "" {
		fmt.Fprintf(os.Stderr, "Error: --mode flag is required\n")
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}

	log := logger.NewWithWriter(*mode, os.Stdout, cfg.Log.Level)
	requestID := logger.GenerateRequestID()

	log.Info("service_started", fmt.Sprintf("Starting %s", *mode), requestID, map[string]interface{}{
		"mode":    *mode,
		"storage": cfg.Storage.Driver,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch *mode {
	case "api":
		err = runAPI(ctx, cfg, log)
	case "notification-subscriber":
		err = runNotificationSubscriber(ctx, cfg, log)
	case "seed":
		err = runSeed(ctx, cfg, log)
	case "migrate":
		err = runMigrate(ctx, cfg, log)
	default:
		log.Error("validation_failed", fmt.Sprintf("Unknown mode: %s", *mode), requestID, nil, nil)
		os.Exit(1)
	}

	if err != nil {
		log.Error("service_failed", fmt.Sprintf("%s failed", *mode), requestID, err, nil)
		os.Exit(1)
	}

	log.Info("service_stopped", "Service stopped gracefully", requestID, nil)
}

// openStore returns the configured record store and its release func. The
// in-memory store is seeded since it starts empty.
func openStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (recordStore, func(), error) {
	if cfg.Storage.Driver == config.StorageMemory {
		store := memory.New()
		if err := seed.Run(ctx, store, log); err != nil {
			return nil, nil, fmt.Errorf("failed to seed memory store: %w", err)
		}
		return store, func() {}, nil
	}

	db, err := database.New(ctx, cfg, log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	log.Info("db_connected", "Connected to PostgreSQL database", "startup", nil)
	return postgres.New(db), db.Close, nil
}

// openPublisher connects to RabbitMQ when configured; otherwise events are
// dropped
func openPublisher(ctx context.Context, cfg *config.Config, log *logger.Logger) (order.EventPublisher, func(), error) {
	if !cfg.MessagingEnabled() {
		log.Warn("messaging_disabled", "RabbitMQ host not configured, order events are not published", "startup", nil)
		return messaging.NopPublisher{}, func() {}, nil
	}

	conn, err := messaging.New(ctx, cfg, log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize messaging: %w", err)
	}
	log.Info("rabbitmq_connected", "Connected to RabbitMQ", "startup", nil)

	publisher := messaging.NewPublisher(conn, log)
	return publisher, func() { publisher.Close() }, nil
}

// openCache connects to Redis when configured. A failing cache is logged
// and skipped; the catalog then reads the store directly.
func openCache(ctx context.Context, cfg *config.Config, log *logger.Logger) *cache.RestaurantCache {
	if !cfg.CacheEnabled() {
		return nil
	}

	restaurants, err := cache.NewRestaurantCache(ctx, cfg.Redis)
	if err != nil {
		log.Error("cache_connection_failed", "Restaurant cache disabled", "startup", err, nil)
		return nil
	}
	log.Info("cache_connected", "Connected to Redis", "startup", map[string]interface{}{"addr": cfg.Redis.Addr})
	return restaurants
}

func runAPI(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	requestID := logger.GenerateRequestID()

	store, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	events, closeEvents, err := openPublisher(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeEvents()

	var catalogCache catalog.Cache
	if restaurants := openCache(ctx, cfg, log); restaurants != nil {
		defer restaurants.Close()
		catalogCache = restaurants
	}

	authz := policy.NewAuthorizer(metrics.ObservePolicyDecision)
	handler := api.NewHandler(api.Services{
		Identity:       identity.NewResolver(store, log),
		Accounts:       account.NewService(store, log),
		Catalog:        catalog.NewService(store, catalogCache, log),
		Cart:           cart.NewService(store, authz, log),
		Orders:         order.NewService(store, events, authz, log),
		PaymentMethods: paymentmethod.NewService(store, authz, log),
	}, store, api.Options{
		RequestTimeout: cfg.Server.RequestTimeout,
		RateLimitRPS:   cfg.Server.RateLimitRPS,
		RateLimitBurst: cfg.Server.RateLimitBurst,
	}, log)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           handler.SetupRoutes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("service_started", fmt.Sprintf("API started on port %d", cfg.Server.Port), requestID, map[string]interface{}{
			"port": cfg.Server.Port,
		})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		log.Info("graceful_shutdown", "Received shutdown signal", requestID, nil)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func runNotificationSubscriber(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	if !cfg.MessagingEnabled() {
		return errors.New("notification-subscriber needs rabbitmq.host")
	}

	conn, err := messaging.New(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize messaging: %w", err)
	}

	consumer := messaging.NewConsumer(conn, log, fmt.Sprintf("notification-subscriber-%d", os.Getpid()), cfg.RabbitMQ.Prefetch)
	return notification.NewSubscriber(consumer, log, os.Stdout).Start(ctx)
}

func runSeed(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	store, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	if cfg.Storage.Driver == config.StoragePostgres {
		if err := seed.Run(ctx, store, log); err != nil {
			return err
		}
	}

	if restaurants := openCache(ctx, cfg, log); restaurants != nil {
		defer restaurants.Close()
		if err := restaurants.Invalidate(ctx); err != nil {
			log.Warn("cache_invalidate_failed", "Failed to drop cached restaurant lists", "startup", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
	return nil
}

func runMigrate(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	if cfg.Storage.Driver != config.StoragePostgres {
		return fmt.Errorf("migrate needs storage.driver %s", config.StoragePostgres)
	}

	db, err := database.New(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	applied, err := db.RunMigrations(ctx, cfg.Database.Migrations)
	if err != nil {
		return err
	}
	log.Info("migrations_completed", fmt.Sprintf("Applied %d migrations", applied), "startup", nil)
	return nil
}
