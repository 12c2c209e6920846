// Package seed loads the default catalogue, delivery zones and coupon files.
package seed

import (
	"context"
	"fmt"

	"storefront/internal/model"

	"github.com/rs/zerolog"
)

// ProductStore is the catalogue persistence the seeder writes to.
type ProductStore interface {
	List(ctx context.Context, category string, limit, offset int) ([]model.Product, error)
	Create(ctx context.Context, product *model.Product) error
}

// ZoneStore stores delivery zones.
type ZoneStore interface {
	Upsert(ctx context.Context, zone *model.DeliveryZone) error
}

// CouponImporter bulk loads coupon files.
type CouponImporter interface {
	Import(ctx context.Context, paths []string) (int, error)
}

// Summary counts what a run wrote.
type Summary struct {
	Products int
	Zones    int
	Coupons  int
}

// Seeder writes the default store data.
type Seeder struct {
	products ProductStore
	zones    ZoneStore
	importer CouponImporter
	logger   zerolog.Logger
}

// New creates a seeder. A nil importer skips coupon files.
func New(products ProductStore, zones ZoneStore, importer CouponImporter, logger zerolog.Logger) *Seeder {
	return &Seeder{
		products: products,
		zones:    zones,
		importer: importer,
		logger:   logger.With().Str("component", "seed").Logger(),
	}
}

// Run upserts the default zones, creates the default catalogue when the store has no products
// and imports couponFiles.
func (s *Seeder) Run(ctx context.Context, couponFiles []string) (Summary, error) {
	var summary Summary

	for _, zone := range DefaultZones() {
		if err := s.zones.Upsert(ctx, &zone); err != nil {
			return summary, fmt.Errorf("failed to seed zone %s: %w", zone.Code, err)
		}
		summary.Zones++
	}

	existing, err := s.products.List(ctx, "", 1, 0)
	if err != nil {
		return summary, fmt.Errorf("failed to check catalogue: %w", err)
	}
	if len(existing) > 0 {
		s.logger.Info().Msg("catalogue already populated, skipping products")
	} else {
		products, err := DefaultCatalogue()
		if err != nil {
			return summary, err
		}
		for i := range products {
			if err := s.products.Create(ctx, &products[i]); err != nil {
				return summary, fmt.Errorf("failed to seed product %q: %w", products[i].Name, err)
			}
			summary.Products++
		}
	}

	if s.importer != nil && len(couponFiles) > 0 {
		imported, err := s.importer.Import(ctx, couponFiles)
		if err != nil {
			return summary, fmt.Errorf("failed to import coupons: %w", err)
		}
		summary.Coupons = imported
	}

	s.logger.Info().
		Int("products", summary.Products).
		Int("zones", summary.Zones).
		Int("coupons", summary.Coupons).
		Msg("seed completed")
	return summary, nil
}

// DefaultZones returns the stock delivery zones.
func DefaultZones() []model.DeliveryZone {
	return []model.DeliveryZone{
		{Code: "lagos_mainland", Name: "Lagos Mainland", FlatFee: 3000, IsCovered: true, IsActive: true},
		{Code: "lagos_island", Name: "Lagos Island", FlatFee: 5000, IsCovered: true, IsActive: true},
		{Code: "abuja", Name: "Abuja", FlatFee: 7000, IsCovered: true, IsActive: true},
		{Code: "outside_coverage", Name: "Outside coverage", FlatFee: 0, IsCovered: false, IsActive: true},
	}
}

type productSeed struct {
	name     string
	category string
	price    int64
	stock    int
	desc     string
	metadata map[string]string
}

var catalogue = []productSeed{
	{"Toyota Camry 2018", model.CategoryCar, 14500000, 2, "Foreign used, full option",
		map[string]string{"year": "2018", "mileage": "68000", "fuel": "petrol", "transmission": "automatic", "color": "silver"}},
	{"Honda Accord 2017", model.CategoryCar, 11800000, 1, "Clean title, alloy wheels",
		map[string]string{"year": "2017", "mileage": "82000", "fuel": "petrol", "transmission": "automatic", "color": "black"}},
	{"Lexus RX 350 2016", model.CategoryCar, 21000000, 1, "Panoramic roof, leather interior",
		map[string]string{"year": "2016", "mileage": "91000", "fuel": "petrol", "transmission": "automatic", "color": "white"}},
	{"Long Grain Rice 50kg", model.CategoryGrocery, 78000, 40, "Stone-free parboiled rice",
		map[string]string{"weight": "50kg", "unit": "bag", "origin": "Nigeria"}},
	{"Vegetable Oil 5L", model.CategoryGrocery, 14500, 60, "Cholesterol-free cooking oil",
		map[string]string{"unit": "bottle", "brand": "Kings"}},
	{"Semovita 10kg", model.CategoryGrocery, 12500, 50, "Wheat semolina",
		map[string]string{"weight": "10kg", "unit": "bag", "brand": "Golden Penny"}},
	{"Tomato Paste 70g x 50", model.CategoryGrocery, 11000, 80, "Carton of sachets",
		map[string]string{"unit": "carton", "brand": "Gino"}},
	{"Garri Ijebu 5kg", model.CategoryGrocery, 6500, 100, "Crisp white garri",
		map[string]string{"weight": "5kg", "unit": "bag", "origin": "Ogun"}},
}

// defaultLowStockThreshold matches the product service default.
const defaultLowStockThreshold = 5

// DefaultCatalogue returns the stock cars and groceries.
func DefaultCatalogue() ([]model.Product, error) {
	products := make([]model.Product, 0, len(catalogue))
	for _, p := range catalogue {
		md, err := model.NewMetadata(p.category, p.metadata)
		if err != nil {
			return nil, fmt.Errorf("invalid metadata for %q: %w", p.name, err)
		}
		products = append(products, model.Product{
			Name:              p.name,
			Category:          p.category,
			Price:             p.price,
			Description:       p.desc,
			Metadata:          md,
			InStock:           p.stock > 0,
			StockQuantity:     p.stock,
			LowStockThreshold: defaultLowStockThreshold,
		})
	}
	return products, nil
}
