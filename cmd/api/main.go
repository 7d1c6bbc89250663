package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"flora-kart/internal/auth"
	"flora-kart/internal/config"
	"flora-kart/internal/database"
	"flora-kart/internal/events"
	"flora-kart/internal/handler"
	"flora-kart/internal/media"
	"flora-kart/internal/payment"
	"flora-kart/internal/repository"
	"flora-kart/internal/router"
	"flora-kart/internal/service"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting flora-kart API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(cfg.Database.ConnectionString(), logger); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	// Initialize repositories
	userRepo := repository.NewUserRepository(pool, logger)
	categoryRepo := repository.NewCategoryRepository(pool, logger)
	productRepo := repository.NewProductRepository(pool, logger)
	variantRepo := repository.NewVariantRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	dashboardRepo := repository.NewDashboardRepository(pool, logger)

	guard, closeGuard := newCallbackGuard(ctx, cfg.Redis, logger)
	defer closeGuard()

	var publisher events.Publisher
	if cfg.Kafka.Enabled {
		publisher = events.NewKafkaPublisher(cfg.Kafka, logger)
		logger.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("publishing order events to kafka")
	} else {
		publisher = events.NewNoopPublisher()
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close event publisher")
		}
	}()

	gateway := payment.NewGateway(cfg.Payment, logger)
	images := media.NewImageStore(ctx, cfg.S3, cfg.Media, logger)
	tokens := auth.NewTokenMaker(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL)

	// Initialize services
	authService := service.NewAuthService(userRepo, tokens, logger)
	categoryService := service.NewCategoryService(categoryRepo, logger)
	productService := service.NewProductService(productRepo, categoryRepo, variantRepo, images, logger)
	orderService := service.NewOrderService(orderRepo, productRepo, gateway, publisher, logger)
	paymentService := service.NewPaymentService(orderService, guard, cfg.Payment.Key2, logger)
	dashboardService := service.NewDashboardService(dashboardRepo, cfg.Dashboard.Location(), logger)

	// Initialize HTTP handlers
	handlers := router.Handlers{
		Auth:      handler.NewAuthHandler(authService, logger),
		Category:  handler.NewCategoryHandler(categoryService, logger),
		Product:   handler.NewProductHandler(productService, logger),
		Order:     handler.NewOrderHandler(orderService, paymentService, logger),
		Dashboard: handler.NewDashboardHandler(dashboardService, logger),
	}
	if !cfg.S3.Enabled && strings.HasPrefix(cfg.Media.BaseURL, "/") {
		handlers.UploadsPath = cfg.Media.BaseURL
		handlers.Uploads = http.StripPrefix(cfg.Media.BaseURL, http.FileServer(http.Dir(cfg.Media.LocalDir)))
	}

	// Initialize router
	mux := router.New(handlers, tokens, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

// newCallbackGuard connects to Redis when enabled. An unreachable Redis
// degrades to the no-op guard.
func newCallbackGuard(ctx context.Context, cfg config.RedisConfig, logger zerolog.Logger) (payment.CallbackGuard, func()) {
	if !cfg.Enabled {
		logger.Info().Msg("redis disabled, payment callbacks are not deduplicated")
		return payment.NewNoopGuard(), func() {}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn().Err(err).Str("addr", cfg.Addr).Msg("redis unreachable, falling back to no-op callback guard")
		_ = client.Close()
		return payment.NewNoopGuard(), func() {}
	}

	return payment.NewRedisGuard(client), func() {
		if err := client.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close redis client")
		}
	}
}
