package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/auth"
	"storefront/internal/config"
	"storefront/internal/coupon"
	"storefront/internal/database"
	"storefront/internal/delivery"
	"storefront/internal/handler"
	"storefront/internal/lifecycle"
	"storefront/internal/metrics"
	"storefront/internal/middleware"
	"storefront/internal/notification"
	"storefront/internal/payment"
	"storefront/internal/pricing"
	"storefront/internal/promo"
	"storefront/internal/ratelimit"
	"storefront/internal/repository"
	"storefront/internal/risk"
	"storefront/internal/router"
	"storefront/internal/service"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
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
	logger.Info().Msg("starting storefront API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if err := database.EnsureSchema(ctx, pool, logger); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	// Initialize repositories
	productRepo := repository.NewProductRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	couponRepo := repository.NewCouponRepository(pool, logger)
	promoRepo := repository.NewPromoRepository(pool, logger)
	zoneRepo := repository.NewZoneRepository(pool, logger)
	notificationLogs := repository.NewNotificationLogRepository(pool, logger)

	// Pricing
	validator := coupon.NewValidator(couponRepo, time.Now, logger)
	promoEngine := promo.NewEngine(promoRepo, time.Now, logger)
	calculator := delivery.NewCalculator(zoneRepo, logger)
	scorer := risk.NewScorer(risk.Thresholds{
		HighAmount: cfg.Risk.HighAmountThreshold,
		Review:     cfg.Risk.ReviewThreshold,
	})
	pipeline := pricing.NewPipeline(productRepo, validator, promoEngine, calculator, scorer, logger)

	// Notifications
	dispatcher, closePublisher := newDispatcher(cfg, notificationLogs, m, logger)
	dispatcher.Start()
	defer closePublisher()
	defer dispatcher.Stop()

	machine := lifecycle.NewMachine(orderRepo, dispatcher, m, time.Now, logger)

	var gateway payment.Gateway
	if cfg.Paystack.Enabled() {
		gateway = payment.NewClient(payment.Options{
			SecretKey: cfg.Paystack.SecretKey,
			BaseURL:   cfg.Paystack.BaseURL,
			Timeout:   cfg.Paystack.Timeout,
		}, logger)
	} else {
		logger.Warn().Msg("Paystack secret key not set, card checkout disabled")
	}

	adminTokens := auth.NewTokenManager(cfg.Auth.AdminTokenSecret, auth.RoleAdmin, cfg.Auth.AdminTokenTTL)
	userTokens := auth.NewTokenManager(cfg.Auth.UserTokenSecret, auth.RoleCustomer, cfg.Auth.UserTokenTTL)

	proxies, err := middleware.ParseTrustedProxies(cfg.Server.TrustedProxies)
	if err != nil {
		return fmt.Errorf("failed to parse trusted proxies: %w", err)
	}

	limiter, closeLimiter := newLimiter(ctx, cfg, logger)
	defer closeLimiter()

	importer := coupon.NewImporter(coupon.NewConfiguredLoader(ctx, cfg.S3, logger), couponRepo, logger)

	// Initialize services
	productService := service.NewProductService(productRepo, logger)
	checkoutService := service.NewCheckoutService(pipeline, validator, calculator, m, logger)
	orderService := service.NewOrderService(
		orderRepo, couponRepo, pipeline, machine, gateway, dispatcher, m,
		service.OrderSettings{
			StoreName:       cfg.Store.Name,
			BaseURL:         cfg.Store.BaseURL,
			WhatsAppNumber:  cfg.Store.WhatsAppNumber,
			ReferencePrefix: cfg.Store.ReferencePrefix,
			Currency:        cfg.Store.Currency,
			WebhookSecret:   cfg.Paystack.WebhookSecret,
		},
		logger,
	)
	adminService := service.NewAdminService(service.AdminDeps{
		Password:  cfg.Auth.AdminPassword,
		Tokens:    adminTokens,
		Orders:    orderRepo,
		Coupons:   couponRepo,
		Promos:    promoRepo,
		Zones:     zoneRepo,
		Lifecycle: machine,
		Importer:  importer,
		ImportDir: cfg.Coupons.ImportDir,
	}, logger)

	// Initialize router
	mux := router.New(router.Handlers{
		Products: handler.NewProductHandler(productService, logger),
		Checkout: handler.NewCheckoutHandler(checkoutService, logger),
		Orders:   handler.NewOrderHandler(orderService, logger),
		Admin:    handler.NewAdminHandler(adminService, logger),
	}, router.Options{
		AdminTokens:    adminTokens,
		UserTokens:     userTokens,
		Limiter:        limiter,
		Metrics:        m,
		MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		AllowedOrigin:  cfg.Server.AllowedOrigin,
		TrustedProxies: proxies,
	}, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Bool("card_checkout", gateway != nil).
			Bool("shared_rate_limit", cfg.Redis.Addr != "").
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

// newDispatcher wires the notification service to SMTP and Kafka when they are configured.
func newDispatcher(cfg *config.Config, logs notification.LogStore, m *metrics.Metrics, logger zerolog.Logger) (*notification.Dispatcher, func()) {
	var sender notification.EmailSender
	if cfg.SMTP.Enabled() {
		sender = notification.NewSMTPSender(notification.SMTPOptions{
			Address:  cfg.SMTP.Address(),
			Host:     cfg.SMTP.Host,
			User:     cfg.SMTP.User,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		})
	} else {
		logger.Warn().Msg("SMTP not configured, notifications fall back to WhatsApp links")
	}

	var publisher notification.Publisher = notification.NopPublisher{}
	if cfg.Kafka.Enabled {
		publisher = notification.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)
	}

	svc := notification.NewService(notification.Settings{
		StoreName:       cfg.Store.Name,
		BaseURL:         cfg.Store.BaseURL,
		WhatsAppNumber:  cfg.Store.WhatsAppNumber,
		AdminRecipients: cfg.SMTP.AdminRecipients,
	}, sender, logs, publisher, m, logger)

	dispatcher := notification.NewDispatcher(svc, notification.DispatcherOptions{
		Workers:   cfg.Notifications.Workers,
		QueueSize: cfg.Notifications.QueueSize,
		Timeout:   cfg.Notifications.Timeout,
	}, m, logger)

	return dispatcher, func() {
		if err := publisher.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close event publisher")
		}
	}
}

// newLimiter prefers the shared Redis limiter and falls back to process memory.
func newLimiter(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (ratelimit.Limiter, func()) {
	if !cfg.RateLimit.Enabled {
		logger.Info().Msg("rate limiting disabled")
		return nil, func() {}
	}

	policy := ratelimit.Policy{Limit: cfg.RateLimit.Requests, Window: cfg.RateLimit.Window}
	if cfg.Redis.Addr == "" {
		return ratelimit.NewMemoryLimiter(policy, time.Now), func() {}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis unavailable, using in-memory rate limiter")
		_ = client.Close()
		return ratelimit.NewMemoryLimiter(policy, time.Now), func() {}
	}

	logger.Info().Str("addr", cfg.Redis.Addr).Msg("using redis rate limiter")
	return ratelimit.NewRedisLimiter(client, policy, "storefront:ratelimit:"), func() {
		if err := client.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close redis client")
		}
	}
}
