// Package delivery prices drop-off zones.
package delivery

import (
	"context"
	"fmt"
	"strings"

	"storefront/internal/model"

	"github.com/rs/zerolog"
)

// Quote statuses.
const (
	StatusOK         = "ok"
	StatusNotCovered = "not_covered"
)

// Quote is the delivery price for one zone and subtotal.
type Quote struct {
	Status      string              `json:"status"`
	Zone        *model.DeliveryZone `json:"zone"`
	DeliveryFee int64               `json:"deliveryFee"`
	GrandTotal  int64               `json:"grandTotal"`
}

// ZoneStore is the zone lookup the calculator depends on.
type ZoneStore interface {
	GetByCode(ctx context.Context, code string) (*model.DeliveryZone, error)
	ListActive(ctx context.Context) ([]model.DeliveryZone, error)
}

// Calculator maps a zone code and subtotal to a flat delivery fee.
type Calculator struct {
	zones  ZoneStore
	logger zerolog.Logger
}

// NewCalculator creates a delivery calculator.
func NewCalculator(zones ZoneStore, logger zerolog.Logger) *Calculator {
	return &Calculator{
		zones:  zones,
		logger: logger.With().Str("component", "delivery").Logger(),
	}
}

// NormaliseZoneCode trims and lowercases a zone code.
func NormaliseZoneCode(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}

// Calculate prices delivery for zoneCode.
//
// An uncovered zone is a soft failure: the returned Quote is non-nil with
// Status not_covered, a zero fee and GrandTotal equal to subtotal, and the
// error is model.ErrZoneNotCovered carrying the zone.
func (c *Calculator) Calculate(ctx context.Context, zoneCode string, subtotal int64) (*Quote, error) {
	code := NormaliseZoneCode(zoneCode)
	if code == "" {
		return nil, model.ErrZoneRequired
	}
	if subtotal < 0 {
		return nil, model.ErrInvalidSubtotal
	}

	zone, err := c.zones.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to load delivery zone: %w", err)
	}
	if zone == nil || !zone.IsActive {
		c.logger.Debug().Str("zone", code).Msg("unknown or inactive delivery zone")
		return nil, model.ErrInvalidZone
	}

	if !zone.IsCovered {
		quote := &Quote{Status: StatusNotCovered, Zone: zone, DeliveryFee: 0, GrandTotal: subtotal}
		return quote, model.ErrZoneNotCovered.WithDetail(*zone)
	}

	fee := zone.FlatFee
	if fee < 0 {
		fee = 0
	}
	return &Quote{Status: StatusOK, Zone: zone, DeliveryFee: fee, GrandTotal: subtotal + fee}, nil
}

// ListZones returns the active zones offered at checkout.
func (c *Calculator) ListZones(ctx context.Context) ([]model.DeliveryZone, error) {
	zones, err := c.zones.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list delivery zones: %w", err)
	}
	return zones, nil
}
