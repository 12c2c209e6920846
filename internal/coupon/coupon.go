package coupon

import (
	"context"

	"storefront/internal/model"
)

// Validator checks a coupon code against an order subtotal.
type Validator interface {
	// Validate returns the discount a code grants. A blank code is valid with no discount.
	// Rejections are *model.DomainError values carrying a snapshot of the coupon.
	Validate(ctx context.Context, code string, subtotal int64, customerEmail string) (*Result, error)
}

// Result is the outcome of a successful validation.
type Result struct {
	Valid          bool          `json:"valid"`
	DiscountAmount int64         `json:"discountAmount"`
	Coupon         *model.Coupon `json:"coupon,omitempty"`
}

// Store is the read side of coupon persistence used by the validator.
type Store interface {
	GetByCode(ctx context.Context, code string) (*model.Coupon, error)
	CountUsagesByEmail(ctx context.Context, couponID int64, email string) (int, error)
}

// Sink receives imported coupon definitions.
type Sink interface {
	Upsert(ctx context.Context, coupon *model.Coupon) error
}

// Loader reads a gzipped CSV file of coupon definitions.
type Loader interface {
	Load(ctx context.Context, path string) (*DefinitionSet, error)
}
