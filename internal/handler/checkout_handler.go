package handler

import (
	"errors"
	"net/http"

	"storefront/internal/auth"
	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/rs/zerolog"
)

// CheckoutHandler serves pricing previews that persist nothing.
type CheckoutHandler struct {
	service service.CheckoutService
	logger  zerolog.Logger
}

// NewCheckoutHandler creates a new checkout handler.
func NewCheckoutHandler(service service.CheckoutService, logger zerolog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		service: service,
		logger:  logger.With().Str("handler", "checkout").Logger(),
	}
}

// Quote handles POST /api/checkout/quote requests.
func (h *CheckoutHandler) Quote(w http.ResponseWriter, r *http.Request) {
	var req model.CheckoutRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	fillCustomerEmail(r, &req)

	quote, err := h.service.Quote(r.Context(), &req, auth.UserID(r.Context()))
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeData(w, http.StatusOK, quote)
}

// ValidateCoupon handles POST /api/coupons/validate requests.
func (h *CheckoutHandler) ValidateCoupon(w http.ResponseWriter, r *http.Request) {
	var req model.CouponValidationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	if req.CustomerEmail == "" {
		if claims, ok := auth.ClaimsFromContext(r.Context()); ok {
			req.CustomerEmail = claims.Email
		}
	}

	result, err := h.service.ValidateCoupon(r.Context(), &req)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeData(w, http.StatusOK, result)
}

// ListZones handles GET /api/delivery-zones requests.
func (h *CheckoutHandler) ListZones(w http.ResponseWriter, r *http.Request) {
	zones, err := h.service.ListZones(r.Context())
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	if zones == nil {
		zones = []model.DeliveryZone{}
	}

	writeData(w, http.StatusOK, zones)
}

// CalculateDelivery handles POST /api/delivery/calculate requests.
func (h *CheckoutHandler) CalculateDelivery(w http.ResponseWriter, r *http.Request) {
	var req model.DeliveryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	quote, err := h.service.CalculateDelivery(r.Context(), &req)
	if err != nil {
		// An uncovered zone still yields a quote; it replaces the bare zone as the detail.
		var domainErr *model.DomainError
		if quote != nil && errors.As(err, &domainErr) {
			err = domainErr.WithDetail(quote)
		}
		writeError(w, r, err, h.logger)
		return
	}

	writeData(w, http.StatusOK, quote)
}

// fillCustomerEmail falls back to the signed-in customer's email.
func fillCustomerEmail(r *http.Request, req *model.CheckoutRequest) {
	if req.Customer.Email != "" {
		return
	}
	if claims, ok := auth.ClaimsFromContext(r.Context()); ok {
		req.Customer.Email = claims.Email
	}
}
