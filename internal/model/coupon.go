package model

import (
	"time"

	"github.com/google/uuid"
)

// DiscountType selects how a discount value is interpreted.
type DiscountType string

const (
	DiscountFixed   DiscountType = "fixed"
	DiscountPercent DiscountType = "percent"
)

// Coupon is a redeemable discount code.
type Coupon struct {
	ID                int64        `json:"id" db:"id"`
	Code              string       `json:"code" db:"code"`
	Description       string       `json:"description" db:"description"`
	DiscountType      DiscountType `json:"discountType" db:"discount_type"`
	DiscountValue     int64        `json:"discountValue" db:"discount_value"`
	MinOrderAmount    *int64       `json:"minOrderAmount,omitempty" db:"min_order_amount"`
	MaxDiscountAmount *int64       `json:"maxDiscountAmount,omitempty" db:"max_discount_amount"`
	StartsAt          *time.Time   `json:"startsAt,omitempty" db:"starts_at"`
	EndsAt            *time.Time   `json:"endsAt,omitempty" db:"ends_at"`
	UsageLimit        *int         `json:"usageLimit,omitempty" db:"usage_limit"`
	PerCustomerLimit  *int         `json:"perCustomerLimit,omitempty" db:"per_customer_limit"`
	UsedCount         int          `json:"usedCount" db:"used_count"`
	IsActive          bool         `json:"isActive" db:"is_active"`
	CreatedAt         time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt         time.Time    `json:"updatedAt" db:"updated_at"`
}

// CouponUsage records one redemption of a coupon by an order.
type CouponUsage struct {
	ID            int64     `json:"id" db:"id"`
	CouponID      int64     `json:"couponId" db:"coupon_id"`
	OrderID       uuid.UUID `json:"orderId" db:"order_id"`
	CustomerEmail string    `json:"customerEmail" db:"customer_email"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
}

// ComputeDiscount applies a fixed or percent discount to base.
// The result is floored for percentages and is not yet capped or clamped.
func ComputeDiscount(discountType DiscountType, value, base int64) (int64, bool) {
	switch discountType {
	case DiscountFixed:
		return value, true
	case DiscountPercent:
		return base * value / 100, true
	default:
		return 0, false
	}
}

// ClampDiscount bounds a discount to [0, limit].
func ClampDiscount(discount, limit int64) int64 {
	if discount < 0 {
		return 0
	}
	if discount > limit {
		if limit < 0 {
			return 0
		}
		return limit
	}
	return discount
}

// ValidateDiscount checks a discount type and value pair.
func ValidateDiscount(discountType DiscountType, value int64) error {
	switch discountType {
	case DiscountFixed:
	case DiscountPercent:
		if value > 100 {
			return NewValidationError("percent discounts cannot exceed 100")
		}
	default:
		return NewValidationError("discountType must be fixed or percent")
	}
	if value <= 0 {
		return NewValidationError("discountValue must be positive")
	}
	return nil
}

// Validate checks a coupon definition before it is stored.
func (c *Coupon) Validate() error {
	if c.Code == "" {
		return NewValidationError("code is required")
	}
	if err := ValidateDiscount(c.DiscountType, c.DiscountValue); err != nil {
		return err
	}
	switch {
	case c.MinOrderAmount != nil && *c.MinOrderAmount < 0:
		return NewValidationError("minOrderAmount cannot be negative")
	case c.MaxDiscountAmount != nil && *c.MaxDiscountAmount < 0:
		return NewValidationError("maxDiscountAmount cannot be negative")
	case c.UsageLimit != nil && *c.UsageLimit < 0:
		return NewValidationError("usageLimit cannot be negative")
	case c.PerCustomerLimit != nil && *c.PerCustomerLimit < 0:
		return NewValidationError("perCustomerLimit cannot be negative")
	case c.StartsAt != nil && c.EndsAt != nil && c.StartsAt.After(*c.EndsAt):
		return NewValidationError("startsAt must not be after endsAt")
	}
	return nil
}

// CouponValidationRequest is the payload for previewing a coupon.
type CouponValidationRequest struct {
	Code          string `json:"code"`
	Subtotal      int64  `json:"subtotal"`
	CustomerEmail string `json:"customerEmail"`
}
