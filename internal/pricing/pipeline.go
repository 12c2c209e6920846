// Package pricing turns a cart into a fully priced, risk-scored quote.
//
// The stages run in a fixed order: coupon before promo, both against the raw
// subtotal, and delivery priced on the discounted subtotal. StageOrder names
// that sequence and every Quote records the stages it went through.
package pricing

import (
	"context"
	"fmt"
	"strings"

	"storefront/internal/coupon"
	"storefront/internal/delivery"
	"storefront/internal/model"
	"storefront/internal/promo"
	"storefront/internal/risk"

	"github.com/rs/zerolog"
)

// Stage names one step of the pipeline.
type Stage string

const (
	StageResolveItems       Stage = "resolve_items"
	StageCoupon             Stage = "coupon"
	StagePromo              Stage = "promo"
	StageDiscountedSubtotal Stage = "discounted_subtotal"
	StageDelivery           Stage = "delivery"
	StageGrandTotal         Stage = "grand_total"
	StageRisk               Stage = "risk"
)

// StageOrder is the sequence every quote is priced in.
var StageOrder = []Stage{
	StageResolveItems,
	StageCoupon,
	StagePromo,
	StageDiscountedSubtotal,
	StageDelivery,
	StageGrandTotal,
	StageRisk,
}

// ProductCatalog resolves cart product IDs.
type ProductCatalog interface {
	GetByIDs(ctx context.Context, ids []int64) ([]model.Product, error)
}

// PromoApplier evaluates automatic promotions.
type PromoApplier interface {
	Apply(ctx context.Context, items []model.LineItem, subtotal int64) (*promo.Result, error)
}

// DeliveryQuoter prices delivery to a zone.
type DeliveryQuoter interface {
	Calculate(ctx context.Context, zoneCode string, subtotal int64) (*delivery.Quote, error)
}

// RiskScorer scores a checkout.
type RiskScorer interface {
	Score(in risk.Input) risk.Assessment
}

// Request is a checkout to price.
type Request struct {
	Customer         model.Customer
	Items            []model.CartItem
	DeliveryZoneCode string
	CouponCode       string
	IsGuest          bool
}

// Quote is the priced checkout.
type Quote struct {
	Items               []model.LineItem    `json:"items"`
	SubtotalAmount      int64               `json:"subtotalAmount"`
	DiscountAmount      int64               `json:"discountAmount"`
	PromoDiscountAmount int64               `json:"promoDiscountAmount"`
	DiscountedSubtotal  int64               `json:"discountedSubtotal"`
	DeliveryFee         int64               `json:"deliveryFee"`
	GrandTotal          int64               `json:"grandTotal"`
	Coupon              *model.Coupon       `json:"coupon,omitempty"`
	PromoRuleIDs        []int64             `json:"promoRuleIds"`
	PromoBreakdown      []promo.Applied     `json:"promoBreakdown"`
	Zone                *model.DeliveryZone `json:"deliveryZone"`
	Risk                risk.Assessment     `json:"risk"`
	Stages              []Stage             `json:"stages"`
}

// Pipeline prices checkouts.
type Pipeline struct {
	catalog  ProductCatalog
	coupons  coupon.Validator
	promos   PromoApplier
	delivery DeliveryQuoter
	risk     RiskScorer
	logger   zerolog.Logger
}

// NewPipeline creates a pricing pipeline.
func NewPipeline(
	catalog ProductCatalog,
	coupons coupon.Validator,
	promos PromoApplier,
	deliveryQuoter DeliveryQuoter,
	scorer RiskScorer,
	logger zerolog.Logger,
) *Pipeline {
	return &Pipeline{
		catalog:  catalog,
		coupons:  coupons,
		promos:   promos,
		delivery: deliveryQuoter,
		risk:     scorer,
		logger:   logger.With().Str("component", "pricing").Logger(),
	}
}

type stageFunc func(ctx context.Context, req *Request, q *Quote) error

func (p *Pipeline) stage(s Stage) stageFunc {
	switch s {
	case StageResolveItems:
		return p.resolveItems
	case StageCoupon:
		return p.applyCoupon
	case StagePromo:
		return p.applyPromo
	case StageDiscountedSubtotal:
		return discountedSubtotal
	case StageDelivery:
		return p.priceDelivery
	case StageGrandTotal:
		return grandTotal
	case StageRisk:
		return p.scoreRisk
	}
	return nil
}

// Price runs every stage in StageOrder. The first failing stage aborts the run.
func (p *Pipeline) Price(ctx context.Context, req Request) (*Quote, error) {
	q := &Quote{
		PromoRuleIDs:   []int64{},
		PromoBreakdown: []promo.Applied{},
		Stages:         make([]Stage, 0, len(StageOrder)),
	}

	for _, s := range StageOrder {
		run := p.stage(s)
		if run == nil {
			return nil, fmt.Errorf("pricing stage %q is not implemented", s)
		}
		if err := run(ctx, &req, q); err != nil {
			p.logger.Debug().Err(err).Str("stage", string(s)).Msg("pricing stopped")
			return nil, err
		}
		q.Stages = append(q.Stages, s)
	}

	p.logger.Debug().
		Int64("subtotal", q.SubtotalAmount).
		Int64("discount", q.DiscountAmount).
		Int64("promo_discount", q.PromoDiscountAmount).
		Int64("delivery_fee", q.DeliveryFee).
		Int64("grand_total", q.GrandTotal).
		Msg("checkout priced")

	return q, nil
}

func (p *Pipeline) resolveItems(ctx context.Context, req *Request, q *Quote) error {
	merged := MergeCartItems(req.Items)
	if len(merged) == 0 {
		return model.ErrNoValidItems
	}

	ids := make([]int64, 0, len(merged))
	for _, item := range merged {
		ids = append(ids, item.ProductID)
	}

	products, err := p.catalog.GetByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to load cart products: %w", err)
	}
	byID := make(map[int64]model.Product, len(products))
	for _, product := range products {
		byID[product.ID] = product
	}

	for _, item := range merged {
		product, ok := byID[item.ProductID]
		if !ok || !product.InStock || item.Quantity > product.StockQuantity {
			p.logger.Debug().Int64("product_id", item.ProductID).Int("quantity", item.Quantity).Msg("dropping cart line")
			continue
		}
		line := model.LineItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			Category:    product.Category,
			Quantity:    item.Quantity,
			UnitPrice:   product.Price,
			LineTotal:   product.Price * int64(item.Quantity),
		}
		q.Items = append(q.Items, line)
		q.SubtotalAmount += line.LineTotal
	}

	if len(q.Items) == 0 {
		return model.ErrNoValidItems
	}
	return nil
}

func (p *Pipeline) applyCoupon(ctx context.Context, req *Request, q *Quote) error {
	if strings.TrimSpace(req.CouponCode) == "" {
		return nil
	}
	res, err := p.coupons.Validate(ctx, req.CouponCode, q.SubtotalAmount, req.Customer.Email)
	if err != nil {
		return err
	}
	q.DiscountAmount = res.DiscountAmount
	q.Coupon = res.Coupon
	return nil
}

func (p *Pipeline) applyPromo(ctx context.Context, _ *Request, q *Quote) error {
	res, err := p.promos.Apply(ctx, q.Items, q.SubtotalAmount)
	if err != nil {
		return err
	}
	applied := clipBreakdown(res.Breakdown, q.SubtotalAmount-q.DiscountAmount)
	for _, a := range applied {
		q.PromoDiscountAmount += a.Amount
		q.PromoRuleIDs = append(q.PromoRuleIDs, a.RuleID)
	}
	q.PromoBreakdown = applied
	return nil
}

func discountedSubtotal(_ context.Context, _ *Request, q *Quote) error {
	d := q.SubtotalAmount - q.DiscountAmount - q.PromoDiscountAmount
	if d < 0 {
		d = 0
	}
	q.DiscountedSubtotal = d
	return nil
}

func (p *Pipeline) priceDelivery(ctx context.Context, req *Request, q *Quote) error {
	dq, err := p.delivery.Calculate(ctx, req.DeliveryZoneCode, q.DiscountedSubtotal)
	if err != nil {
		return err
	}
	q.Zone = dq.Zone
	q.DeliveryFee = dq.DeliveryFee
	return nil
}

func grandTotal(_ context.Context, _ *Request, q *Quote) error {
	q.GrandTotal = q.DiscountedSubtotal + q.DeliveryFee
	return nil
}

func (p *Pipeline) scoreRisk(_ context.Context, req *Request, q *Quote) error {
	q.Risk = p.risk.Score(risk.Input{
		Email:   req.Customer.Email,
		Phone:   req.Customer.Phone,
		Amount:  q.GrandTotal,
		IsGuest: req.IsGuest,
	})
	return nil
}

// MergeCartItems sums quantities of repeated products, keeping first-seen order.
// Lines with a non-positive quantity are dropped before merging.
func MergeCartItems(items []model.CartItem) []model.CartItem {
	merged := make([]model.CartItem, 0, len(items))
	index := make(map[int64]int, len(items))
	for _, item := range items {
		if item.Quantity <= 0 {
			continue
		}
		if i, ok := index[item.ProductID]; ok {
			merged[i].Quantity += item.Quantity
			continue
		}
		index[item.ProductID] = len(merged)
		merged = append(merged, item)
	}
	return merged
}

// clipBreakdown caps the cumulative promo contributions at budget so the
// coupon and promo discounts together never exceed the subtotal.
func clipBreakdown(breakdown []promo.Applied, budget int64) []promo.Applied {
	out := make([]promo.Applied, 0, len(breakdown))
	for _, a := range breakdown {
		if budget <= 0 {
			break
		}
		if a.Amount > budget {
			a.Amount = budget
		}
		if a.Amount <= 0 {
			continue
		}
		budget -= a.Amount
		out = append(out, a)
	}
	return out
}
