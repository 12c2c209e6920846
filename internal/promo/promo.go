// Package promo evaluates automatic promotional rules against a priced cart.
package promo

import (
	"context"
	"fmt"
	"sort"
	"time"

	"storefront/internal/model"

	"github.com/rs/zerolog"
)

// Applied is one rule's contribution to the promo discount.
type Applied struct {
	RuleID   int64               `json:"ruleId"`
	Name     string              `json:"name"`
	RuleType model.PromoRuleType `json:"ruleType"`
	Amount   int64               `json:"amount"`
}

// Result is the combined outcome of every applicable rule.
type Result struct {
	PromoDiscount  int64     `json:"promoDiscount"`
	AppliedRuleIDs []int64   `json:"appliedRuleIds"`
	Breakdown      []Applied `json:"breakdown"`
}

// RuleStore lists rules that are enabled at a point in time.
type RuleStore interface {
	ListActive(ctx context.Context, now time.Time) ([]model.PromoRule, error)
}

// Engine loads active rules and evaluates them.
type Engine struct {
	rules  RuleStore
	now    func() time.Time
	logger zerolog.Logger
}

// NewEngine creates a promo engine. A nil clock defaults to time.Now.
func NewEngine(rules RuleStore, now func() time.Time, logger zerolog.Logger) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{
		rules:  rules,
		now:    now,
		logger: logger.With().Str("component", "promo").Logger(),
	}
}

// Apply evaluates the rules active now against items and their raw subtotal.
func (e *Engine) Apply(ctx context.Context, items []model.LineItem, subtotal int64) (*Result, error) {
	now := e.now()
	rules, err := e.rules.ListActive(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("failed to load promo rules: %w", err)
	}

	active := rules[:0:0]
	for _, r := range rules {
		if r.ActiveAt(now) {
			active = append(active, r)
		}
	}
	SortNewestFirst(active)

	result := Evaluate(active, items, subtotal)
	if len(result.AppliedRuleIDs) > 0 {
		e.logger.Debug().
			Int64("promo_discount", result.PromoDiscount).
			Interface("rule_ids", result.AppliedRuleIDs).
			Msg("promo rules applied")
	}
	return result, nil
}

// SortNewestFirst orders rules by creation time descending, breaking ties by higher id.
func SortNewestFirst(rules []model.PromoRule) {
	sort.SliceStable(rules, func(i, j int) bool {
		if !rules[i].CreatedAt.Equal(rules[j].CreatedAt) {
			return rules[i].CreatedAt.After(rules[j].CreatedAt)
		}
		return rules[i].ID > rules[j].ID
	})
}

// Evaluate applies rules in the given order. All rules share one budget equal
// to subtotal, so the cumulative discount never exceeds it. Rules that
// contribute nothing are left out of the result.
func Evaluate(rules []model.PromoRule, items []model.LineItem, subtotal int64) *Result {
	result := &Result{AppliedRuleIDs: []int64{}, Breakdown: []Applied{}}
	if subtotal <= 0 {
		return result
	}

	for _, rule := range rules {
		if !applicable(rule, items, subtotal) {
			continue
		}

		var discount int64
		switch rule.RuleType {
		case model.PromoDiscount:
			d, ok := model.ComputeDiscount(rule.DiscountType, rule.DiscountValue, subtotal)
			if ok {
				discount = d
			}
		case model.PromoBOGO:
			discount = bogoDiscount(rule, items)
		}

		remaining := subtotal - result.PromoDiscount
		discount = model.ClampDiscount(discount, remaining)
		if discount == 0 {
			continue
		}

		result.PromoDiscount += discount
		result.AppliedRuleIDs = append(result.AppliedRuleIDs, rule.ID)
		result.Breakdown = append(result.Breakdown, Applied{
			RuleID:   rule.ID,
			Name:     rule.Name,
			RuleType: rule.RuleType,
			Amount:   discount,
		})
	}

	return result
}

func applicable(rule model.PromoRule, items []model.LineItem, subtotal int64) bool {
	if subtotal < rule.MinCartAmount {
		return false
	}
	if rule.Category == nil || *rule.Category == "" {
		return true
	}
	for _, item := range items {
		if item.Category == *rule.Category {
			return true
		}
	}
	return false
}

// bogoDiscount prices the free units earned on the rule's target product.
func bogoDiscount(rule model.PromoRule, items []model.LineItem) int64 {
	if rule.BogoProductID == nil {
		return 0
	}
	buy := rule.BogoBuyQty
	if buy < 1 {
		buy = 1
	}
	get := rule.BogoGetQty
	if get < 0 {
		get = 0
	}

	for _, item := range items {
		if item.ProductID != *rule.BogoProductID {
			continue
		}
		free := (item.Quantity / buy) * get
		return int64(free) * item.UnitPrice
	}
	return 0
}
