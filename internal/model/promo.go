package model

import "time"

// PromoRuleType selects how a promotional rule is evaluated.
type PromoRuleType string

const (
	PromoDiscount PromoRuleType = "discount"
	PromoBOGO     PromoRuleType = "bogo"
)

// PromoRule is an automatic promotion evaluated against every cart.
type PromoRule struct {
	ID            int64         `json:"id" db:"id"`
	Name          string        `json:"name" db:"name"`
	RuleType      PromoRuleType `json:"ruleType" db:"rule_type"`
	Category      *string       `json:"category,omitempty" db:"category"`
	MinCartAmount int64         `json:"minCartAmount" db:"min_cart_amount"`
	DiscountType  DiscountType  `json:"discountType" db:"discount_type"`
	DiscountValue int64         `json:"discountValue" db:"discount_value"`
	BogoProductID *int64        `json:"bogoProductId,omitempty" db:"bogo_product_id"`
	BogoBuyQty    int           `json:"bogoBuyQty" db:"bogo_buy_qty"`
	BogoGetQty    int           `json:"bogoGetQty" db:"bogo_get_qty"`
	StartsAt      *time.Time    `json:"startsAt,omitempty" db:"starts_at"`
	EndsAt        *time.Time    `json:"endsAt,omitempty" db:"ends_at"`
	IsActive      bool          `json:"isActive" db:"is_active"`
	CreatedAt     time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time     `json:"updatedAt" db:"updated_at"`
}

// ActiveAt reports whether the rule is enabled and now falls inside its window.
func (r *PromoRule) ActiveAt(now time.Time) bool {
	if !r.IsActive {
		return false
	}
	if r.StartsAt != nil && now.Before(*r.StartsAt) {
		return false
	}
	if r.EndsAt != nil && now.After(*r.EndsAt) {
		return false
	}
	return true
}
