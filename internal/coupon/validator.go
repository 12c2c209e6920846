package coupon

import (
	"context"
	"fmt"
	"strings"
	"time"

	"storefront/internal/model"

	"github.com/rs/zerolog"
)

// validator implements Validator against the coupon store.
type validator struct {
	store  Store
	now    func() time.Time
	logger zerolog.Logger
}

// NewValidator creates a coupon validator. A nil clock defaults to time.Now.
func NewValidator(store Store, now func() time.Time, logger zerolog.Logger) Validator {
	if now == nil {
		now = time.Now
	}
	return &validator{
		store:  store,
		now:    now,
		logger: logger.With().Str("component", "coupon-validator").Logger(),
	}
}

// Validate checks code against subtotal. Checks run in a fixed order and the first failure wins:
// not found, inactive, not started, expired, usage limit, minimum order, per-customer limit.
func (v *validator) Validate(ctx context.Context, code string, subtotal int64, customerEmail string) (*Result, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return &Result{Valid: true}, nil
	}
	if subtotal < 0 {
		return nil, model.ErrInvalidSubtotal
	}

	c, err := v.store.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to load coupon: %w", err)
	}
	if c == nil {
		v.logger.Debug().Str("coupon_code", code).Msg("coupon not found")
		return nil, model.ErrCouponNotFound.WithDetail(map[string]string{"code": code})
	}

	if rejection := v.checkRules(c, subtotal); rejection != nil {
		v.logger.Debug().Str("coupon_code", c.Code).Str("reason", rejection.Code).Msg("coupon rejected")
		return nil, rejection.WithDetail(*c)
	}

	if c.PerCustomerLimit != nil && strings.TrimSpace(customerEmail) != "" {
		used, err := v.store.CountUsagesByEmail(ctx, c.ID, customerEmail)
		if err != nil {
			return nil, fmt.Errorf("failed to count coupon usages: %w", err)
		}
		if used >= *c.PerCustomerLimit {
			return nil, model.ErrCouponCustomerLimit.WithDetail(*c)
		}
	}

	discount, ok := model.ComputeDiscount(c.DiscountType, c.DiscountValue, subtotal)
	if !ok {
		return nil, model.ErrCouponUnsupported.WithDetail(*c)
	}
	if c.MaxDiscountAmount != nil && discount > *c.MaxDiscountAmount {
		discount = *c.MaxDiscountAmount
	}
	discount = model.ClampDiscount(discount, subtotal)

	return &Result{Valid: true, DiscountAmount: discount, Coupon: c}, nil
}

func (v *validator) checkRules(c *model.Coupon, subtotal int64) *model.DomainError {
	now := v.now()
	switch {
	case !c.IsActive:
		return model.ErrCouponInactive
	case c.StartsAt != nil && now.Before(*c.StartsAt):
		return model.ErrCouponNotStarted
	case c.EndsAt != nil && now.After(*c.EndsAt):
		return model.ErrCouponExpired
	case c.UsageLimit != nil && c.UsedCount >= *c.UsageLimit:
		return model.ErrCouponUsageLimit
	case c.MinOrderAmount != nil && subtotal < *c.MinOrderAmount:
		return model.ErrCouponMinOrder
	}
	return nil
}
