package service

import (
	"context"
	"errors"
	"strings"

	"storefront/internal/coupon"
	"storefront/internal/delivery"
	"storefront/internal/metrics"
	"storefront/internal/model"
	"storefront/internal/pricing"

	"github.com/rs/zerolog"
)

// Pricer prices a checkout.
type Pricer interface {
	Price(ctx context.Context, req pricing.Request) (*pricing.Quote, error)
}

// ZoneQuoter prices delivery and lists the zones offered at checkout.
type ZoneQuoter interface {
	Calculate(ctx context.Context, zoneCode string, subtotal int64) (*delivery.Quote, error)
	ListZones(ctx context.Context) ([]model.DeliveryZone, error)
}

// checkoutService implements CheckoutService.
type checkoutService struct {
	pricer  Pricer
	coupons coupon.Validator
	zones   ZoneQuoter
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// NewCheckoutService creates a new checkout service.
func NewCheckoutService(
	pricer Pricer,
	coupons coupon.Validator,
	zones ZoneQuoter,
	m *metrics.Metrics,
	logger zerolog.Logger,
) CheckoutService {
	return &checkoutService{
		pricer:  pricer,
		coupons: coupons,
		zones:   zones,
		metrics: m,
		logger:  logger.With().Str("service", "checkout").Logger(),
	}
}

// Quote runs the full pricing pipeline for a checkout preview.
func (s *checkoutService) Quote(ctx context.Context, req *model.CheckoutRequest, userID string) (*pricing.Quote, error) {
	if req == nil || len(req.Items) == 0 {
		return nil, model.ErrNoValidItems
	}

	quote, err := s.pricer.Price(ctx, pricingRequest(req, userID))
	if err != nil {
		recordRejection(s.metrics, err)
		return nil, err
	}
	return quote, nil
}

// ValidateCoupon checks a coupon code against a subtotal.
func (s *checkoutService) ValidateCoupon(ctx context.Context, req *model.CouponValidationRequest) (*coupon.Result, error) {
	if req == nil || strings.TrimSpace(req.Code) == "" {
		return nil, model.NewValidationError("code is required")
	}

	result, err := s.coupons.Validate(ctx, req.Code, req.Subtotal, normaliseEmail(req.CustomerEmail))
	if err != nil {
		recordRejection(s.metrics, err)
		return nil, err
	}

	s.logger.Debug().
		Str("coupon_code", req.Code).
		Int64("discount", result.DiscountAmount).
		Msg("coupon validated")

	return result, nil
}

// CalculateDelivery prices delivery to a zone. An uncovered zone returns both the quote and the error.
func (s *checkoutService) CalculateDelivery(ctx context.Context, req *model.DeliveryRequest) (*delivery.Quote, error) {
	if req == nil {
		return nil, model.ErrZoneRequired
	}
	quote, err := s.zones.Calculate(ctx, req.DeliveryZoneCode, req.Subtotal)
	if err != nil {
		recordRejection(s.metrics, err)
	}
	return quote, err
}

// ListZones returns the zones offered at checkout.
func (s *checkoutService) ListZones(ctx context.Context) ([]model.DeliveryZone, error) {
	return s.zones.ListZones(ctx)
}

// pricingRequest converts the client payload into a pipeline request.
func pricingRequest(req *model.CheckoutRequest, userID string) pricing.Request {
	return pricing.Request{
		Customer:         normaliseCustomer(req.Customer),
		Items:            req.Items,
		DeliveryZoneCode: req.DeliveryZoneCode,
		CouponCode:       strings.TrimSpace(req.CouponCode),
		IsGuest:          userID == "",
	}
}

func normaliseCustomer(c model.Customer) model.Customer {
	return model.Customer{
		Name:    strings.TrimSpace(c.Name),
		Email:   normaliseEmail(c.Email),
		Phone:   strings.TrimSpace(c.Phone),
		Address: strings.TrimSpace(c.Address),
		Notes:   strings.TrimSpace(c.Notes),
	}
}

func normaliseEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// recordRejection counts domain errors raised while pricing.
func recordRejection(m *metrics.Metrics, err error) {
	var domainErr *model.DomainError
	if errors.As(err, &domainErr) {
		m.RecordPricingRejection(domainErr.Code)
	}
}
