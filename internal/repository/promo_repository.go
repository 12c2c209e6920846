package repository

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

type promoRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewPromoRepository creates a new PostgreSQL-backed promo rule repository.
func NewPromoRepository(pool *pgxpool.Pool, logger zerolog.Logger) PromoRepository {
	return &promoRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "promo").Logger(),
	}
}

func (r *promoRepository) ListActive(ctx context.Context, now time.Time) ([]model.PromoRule, error) {
	query := `
		SELECT ` + promoColumns + `
		FROM promo_rules
		WHERE is_active
		  AND (starts_at IS NULL OR starts_at <= $1)
		  AND (ends_at IS NULL OR ends_at >= $1)
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.pool.Query(ctx, query, now)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query active promo rules")
		return nil, fmt.Errorf("failed to query active promo rules: %w", err)
	}
	return r.collect(rows)
}

func (r *promoRepository) List(ctx context.Context) ([]model.PromoRule, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+promoColumns+` FROM promo_rules ORDER BY created_at DESC, id DESC`)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to list promo rules")
		return nil, fmt.Errorf("failed to list promo rules: %w", err)
	}
	return r.collect(rows)
}

func (r *promoRepository) collect(rows pgx.Rows) ([]model.PromoRule, error) {
	defer rows.Close()

	rules := []model.PromoRule{}
	for rows.Next() {
		rule, err := scanPromo(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan promo rule row")
			return nil, fmt.Errorf("failed to scan promo rule: %w", err)
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating promo rules: %w", err)
	}
	return rules, nil
}

func (r *promoRepository) Create(ctx context.Context, rule *model.PromoRule) error {
	query := `
		INSERT INTO promo_rules (name, rule_type, category, min_cart_amount, discount_type,
			discount_value, bogo_product_id, bogo_buy_qty, bogo_get_qty, starts_at, ends_at, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		rule.Name, rule.RuleType, rule.Category, rule.MinCartAmount, rule.DiscountType,
		rule.DiscountValue, rule.BogoProductID, rule.BogoBuyQty, rule.BogoGetQty,
		rule.StartsAt, rule.EndsAt, rule.IsActive,
	).Scan(&rule.ID, &rule.CreatedAt, &rule.UpdatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("name", rule.Name).Msg("failed to create promo rule")
		return fmt.Errorf("failed to create promo rule: %w", err)
	}
	return nil
}
