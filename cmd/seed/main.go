package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"storefront/internal/config"
	"storefront/internal/coupon"
	"storefront/internal/database"
	"storefront/internal/repository"
	"storefront/internal/seed"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Tables reported by -check.
var tables = []string{
	"products",
	"delivery_zones",
	"coupons",
	"promo_rules",
	"orders",
	"order_timeline_events",
	"notification_logs",
}

func main() {
	check := flag.Bool("check", false, "report database connectivity and row counts without seeding")
	flag.Parse()

	if err := run(*check); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(check bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := config.NewLogger(cfg.Logger)

	ctx := context.Background()
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if check {
		return report(ctx, pool)
	}

	if err := database.EnsureSchema(ctx, pool, logger); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}

	couponRepo := repository.NewCouponRepository(pool, logger)
	importer := coupon.NewImporter(coupon.NewConfiguredLoader(ctx, cfg.S3, logger), couponRepo, logger)
	seeder := seed.New(
		repository.NewProductRepository(pool, logger),
		repository.NewZoneRepository(pool, logger),
		importer,
		logger,
	)

	summary, err := seeder.Run(ctx, cfg.Coupons.SeedFiles)
	if err != nil {
		return err
	}

	fmt.Printf("Seeded %d products, %d zones and %d coupons\n", summary.Products, summary.Zones, summary.Coupons)
	return nil
}

func report(ctx context.Context, pool *pgxpool.Pool) error {
	var dbName string
	if err := pool.QueryRow(ctx, "SELECT current_database()").Scan(&dbName); err != nil {
		return fmt.Errorf("QueryRow failed: %w", err)
	}
	fmt.Printf("Successfully connected to database: %s\n\n", dbName)

	for _, table := range tables {
		var count int64
		err := pool.QueryRow(ctx, "SELECT count(*) FROM "+pgx.Identifier{table}.Sanitize()).Scan(&count)
		if err != nil {
			fmt.Printf("  - %-22s missing (%v)\n", table, err)
			continue
		}
		fmt.Printf("  - %-22s %d rows\n", table, count)
	}
	return nil
}
