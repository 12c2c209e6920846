package integration

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"storefront/internal/auth"
	"storefront/internal/config"
	"storefront/internal/coupon"
	"storefront/internal/database"
	"storefront/internal/delivery"
	"storefront/internal/handler"
	"storefront/internal/lifecycle"
	"storefront/internal/metrics"
	"storefront/internal/notification"
	"storefront/internal/pricing"
	"storefront/internal/promo"
	"storefront/internal/repository"
	"storefront/internal/risk"
	"storefront/internal/router"
	"storefront/internal/seed"
	"storefront/internal/service"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	adminPassword = "integration-admin"
	userSecret    = "integration-user-secret"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a PostgreSQL test container with the storefront schema applied.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	pool, err := database.NewPoolFromURL(ctx, connStr, config.DatabaseConfig{MaxConnections: 10, MinConnections: 2}, zerolog.Nop())
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	if err := database.EnsureSchema(ctx, pool, zerolog.Nop()); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// SeedStore loads the default zones and catalogue.
func SeedStore(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	logger := zerolog.Nop()
	seeder := seed.New(repository.NewProductRepository(pool, logger), repository.NewZoneRepository(pool, logger), nil, logger)
	_, err := seeder.Run(context.Background(), nil)
	require.NoError(t, err)
}

// CleanupDB removes all rows from the storefront tables.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	tables := []string{
		"notification_logs", "order_timeline_events", "coupon_usages", "order_items",
		"orders", "coupons", "promo_rules", "delivery_zones", "products",
	}
	_, err := pool.Exec(context.Background(), "TRUNCATE "+strings.Join(tables, ", ")+" RESTART IDENTITY CASCADE")
	if err != nil {
		t.Fatalf("failed to clean tables: %v", err)
	}
}

// TestServer is the full HTTP stack over a real database. Card checkout is disabled.
type TestServer struct {
	Handler    http.Handler
	UserTokens *auth.TokenManager
	Coupons    repository.CouponRepository
	ImportDir  string
}

func setupTestServer(t *testing.T, testDB *TestDB) *TestServer {
	t.Helper()

	logger := zerolog.Nop()
	m := metrics.New(prometheus.NewRegistry())

	productRepo := repository.NewProductRepository(testDB.Pool, logger)
	orderRepo := repository.NewOrderRepository(testDB.Pool, logger)
	couponRepo := repository.NewCouponRepository(testDB.Pool, logger)
	promoRepo := repository.NewPromoRepository(testDB.Pool, logger)
	zoneRepo := repository.NewZoneRepository(testDB.Pool, logger)

	importDir := t.TempDir()
	validator := coupon.NewValidator(couponRepo, time.Now, logger)
	calculator := delivery.NewCalculator(zoneRepo, logger)
	pipeline := pricing.NewPipeline(
		productRepo, validator, promo.NewEngine(promoRepo, time.Now, logger), calculator,
		risk.NewScorer(risk.DefaultThresholds()), logger,
	)

	notifications := notification.NewService(notification.Settings{
		StoreName:      "Vicbest Store",
		BaseURL:        "http://localhost:3000",
		WhatsAppNumber: "2348000000000",
	}, nil, repository.NewNotificationLogRepository(testDB.Pool, logger), nil, m, logger)
	dispatcher := notification.NewDispatcher(notifications, notification.DispatcherOptions{Workers: 1, QueueSize: 16}, m, logger)
	dispatcher.Start()
	t.Cleanup(dispatcher.Stop)

	machine := lifecycle.NewMachine(orderRepo, dispatcher, m, time.Now, logger)
	adminTokens := auth.NewTokenManager("integration-admin-secret", auth.RoleAdmin, time.Hour)
	userTokens := auth.NewTokenManager(userSecret, auth.RoleCustomer, time.Hour)

	orderService := service.NewOrderService(
		orderRepo, couponRepo, pipeline, machine, nil, dispatcher, m,
		service.OrderSettings{StoreName: "Vicbest Store", BaseURL: "http://localhost:3000", WhatsAppNumber: "2348000000000"},
		logger,
	)
	adminService := service.NewAdminService(service.AdminDeps{
		Password:  adminPassword,
		Tokens:    adminTokens,
		Orders:    orderRepo,
		Coupons:   couponRepo,
		Promos:    promoRepo,
		Zones:     zoneRepo,
		Lifecycle: machine,
		Importer:  coupon.NewImporter(coupon.NewFileLoader(logger), couponRepo, logger),
		ImportDir: importDir,
	}, logger)

	mux := router.New(router.Handlers{
		Products: handler.NewProductHandler(service.NewProductService(productRepo, logger), logger),
		Checkout: handler.NewCheckoutHandler(service.NewCheckoutService(pipeline, validator, calculator, m, logger), logger),
		Orders:   handler.NewOrderHandler(orderService, logger),
		Admin:    handler.NewAdminHandler(adminService, logger),
	}, router.Options{
		AdminTokens: adminTokens,
		UserTokens:  userTokens,
		Metrics:     m,
	}, logger)

	return &TestServer{Handler: mux, UserTokens: userTokens, Coupons: couponRepo, ImportDir: importDir}
}
