package repository

import (
	"context"
	"fmt"
	"strings"

	"storefront/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

type couponRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCouponRepository creates a new PostgreSQL-backed coupon repository.
func NewCouponRepository(pool *pgxpool.Pool, logger zerolog.Logger) CouponRepository {
	return &couponRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "coupon").Logger(),
	}
}

func (r *couponRepository) GetByCode(ctx context.Context, code string) (*model.Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons WHERE LOWER(code) = LOWER($1)`

	c, err := scanCoupon(r.pool.QueryRow(ctx, query, strings.TrimSpace(code)))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("coupon_code", code).Msg("failed to query coupon")
		return nil, fmt.Errorf("failed to query coupon: %w", err)
	}
	return c, nil
}

func (r *couponRepository) CountUsagesByEmail(ctx context.Context, couponID int64, email string) (int, error) {
	return r.countUsages(ctx, r.pool, couponID, email)
}

// CountUsagesByEmailTx counts within tx. Called after Redeem it sees every usage committed
// by transactions that held the coupon row before this one.
func (r *couponRepository) CountUsagesByEmailTx(ctx context.Context, tx pgx.Tx, couponID int64, email string) (int, error) {
	return r.countUsages(ctx, tx, couponID, email)
}

type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

func (r *couponRepository) countUsages(ctx context.Context, q rowQuerier, couponID int64, email string) (int, error) {
	var count int
	err := q.QueryRow(ctx,
		`SELECT COUNT(*) FROM coupon_usages WHERE coupon_id = $1 AND LOWER(customer_email) = LOWER($2)`,
		couponID, strings.TrimSpace(email),
	).Scan(&count)
	if err != nil {
		r.logger.Error().Err(err).Int64("coupon_id", couponID).Msg("failed to count coupon usages")
		return 0, fmt.Errorf("failed to count coupon usages: %w", err)
	}
	return count, nil
}

// Redeem increments used_count only while the usage limit allows it.
// Concurrent redemptions serialise on the coupon row so the limit can never be exceeded.
func (r *couponRepository) Redeem(ctx context.Context, tx pgx.Tx, couponID int64) (bool, error) {
	query := `
		UPDATE coupons
		SET used_count = used_count + 1, updated_at = NOW()
		WHERE id = $1 AND is_active AND (usage_limit IS NULL OR used_count < usage_limit)
	`

	tag, err := tx.Exec(ctx, query, couponID)
	if err != nil {
		r.logger.Error().Err(err).Int64("coupon_id", couponID).Msg("failed to redeem coupon")
		return false, fmt.Errorf("failed to redeem coupon: %w", err)
	}
	if tag.RowsAffected() == 0 {
		r.logger.Warn().Int64("coupon_id", couponID).Msg("coupon exhausted at redemption")
		return false, nil
	}
	return true, nil
}

func (r *couponRepository) RecordUsage(ctx context.Context, tx pgx.Tx, usage *model.CouponUsage) error {
	query := `
		INSERT INTO coupon_usages (coupon_id, order_id, customer_email)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := tx.QueryRow(ctx, query, usage.CouponID, usage.OrderID, usage.CustomerEmail).
		Scan(&usage.ID, &usage.CreatedAt)
	if err != nil {
		r.logger.Error().Err(err).
			Int64("coupon_id", usage.CouponID).
			Str("order_id", usage.OrderID.String()).
			Msg("failed to record coupon usage")
		return fmt.Errorf("failed to record coupon usage: %w", err)
	}
	return nil
}

// Upsert leaves used_count untouched when a definition is re-imported.
func (r *couponRepository) Upsert(ctx context.Context, c *model.Coupon) error {
	c.Code = strings.ToUpper(strings.TrimSpace(c.Code))

	query := `
		INSERT INTO coupons (code, description, discount_type, discount_value, min_order_amount,
			max_discount_amount, starts_at, ends_at, usage_limit, per_customer_limit, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (LOWER(code)) DO UPDATE SET
			description = EXCLUDED.description,
			discount_type = EXCLUDED.discount_type,
			discount_value = EXCLUDED.discount_value,
			min_order_amount = EXCLUDED.min_order_amount,
			max_discount_amount = EXCLUDED.max_discount_amount,
			starts_at = EXCLUDED.starts_at,
			ends_at = EXCLUDED.ends_at,
			usage_limit = EXCLUDED.usage_limit,
			per_customer_limit = EXCLUDED.per_customer_limit,
			is_active = EXCLUDED.is_active,
			updated_at = NOW()
		RETURNING id, used_count, created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		c.Code, c.Description, c.DiscountType, c.DiscountValue, c.MinOrderAmount,
		c.MaxDiscountAmount, c.StartsAt, c.EndsAt, c.UsageLimit, c.PerCustomerLimit, c.IsActive,
	).Scan(&c.ID, &c.UsedCount, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("coupon_code", c.Code).Msg("failed to upsert coupon")
		return fmt.Errorf("failed to upsert coupon: %w", err)
	}
	return nil
}

func (r *couponRepository) List(ctx context.Context) ([]model.Coupon, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+couponColumns+` FROM coupons ORDER BY created_at DESC, id DESC`)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to list coupons")
		return nil, fmt.Errorf("failed to list coupons: %w", err)
	}
	defer rows.Close()

	coupons := []model.Coupon{}
	for rows.Next() {
		c, err := scanCoupon(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan coupon: %w", err)
		}
		coupons = append(coupons, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating coupons: %w", err)
	}
	return coupons, nil
}
