package service

import (
	"context"
	"fmt"
	"strings"

	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/rs/zerolog"
)

const defaultLowStockThreshold = 5

// productService implements ProductService.
type productService struct {
	productRepo repository.ProductRepository
	logger      zerolog.Logger
}

// NewProductService creates a new product service.
func NewProductService(productRepo repository.ProductRepository, logger zerolog.Logger) ProductService {
	return &productService{
		productRepo: productRepo,
		logger:      logger.With().Str("service", "product").Logger(),
	}
}

// List retrieves products with pagination. An empty category lists everything.
func (s *productService) List(ctx context.Context, category string, limit, offset int) ([]model.Product, error) {
	category = strings.ToLower(strings.TrimSpace(category))
	if category != "" && !model.ValidCategory(category) {
		return nil, model.NewValidationError(fmt.Sprintf("unknown category %q", category))
	}
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	products, err := s.productRepo.List(ctx, category, limit, offset)
	if err != nil {
		s.logger.Error().Err(err).
			Str("category", category).
			Int("limit", limit).
			Int("offset", offset).
			Msg("failed to list products")
		return nil, fmt.Errorf("failed to get products: %w", err)
	}

	s.logger.Debug().
		Int("count", len(products)).
		Str("category", category).
		Msg("retrieved products")

	return products, nil
}

// Create validates and stores a new product.
func (s *productService) Create(ctx context.Context, req *model.ProductRequest) (*model.Product, error) {
	if req == nil {
		return nil, model.NewValidationError("product payload is required")
	}

	name := strings.TrimSpace(req.Name)
	category := strings.ToLower(strings.TrimSpace(req.Category))
	switch {
	case name == "":
		return nil, model.NewValidationError("name is required")
	case !model.ValidCategory(category):
		return nil, model.NewValidationError("category must be car or grocery")
	case req.Price <= 0:
		return nil, model.NewValidationError("price must be a positive whole amount")
	case req.StockQuantity < 0:
		return nil, model.NewValidationError("stockQuantity cannot be negative")
	}

	metadata, err := model.NewMetadata(category, req.Metadata)
	if err != nil {
		return nil, err
	}

	product := &model.Product{
		Name:              name,
		Category:          category,
		Price:             req.Price,
		Description:       strings.TrimSpace(req.Description),
		ImageURL:          strings.TrimSpace(req.ImageURL),
		Metadata:          metadata,
		InStock:           req.InStock && req.StockQuantity > 0,
		StockQuantity:     req.StockQuantity,
		LowStockThreshold: defaultLowStockThreshold,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		s.logger.Error().Err(err).Str("name", name).Msg("failed to create product")
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.logger.Info().
		Int64("product_id", product.ID).
		Str("category", category).
		Msg("product created")

	return product, nil
}
