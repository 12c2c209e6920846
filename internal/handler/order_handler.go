package handler

import (
	"io"
	"net/http"
	"strings"

	"storefront/internal/auth"
	"storefront/internal/model"
	"storefront/internal/payment"
	"storefront/internal/service"

	"github.com/rs/zerolog"
)

// OrderHandler handles customer order and payment HTTP requests.
type OrderHandler struct {
	service service.OrderService
	logger  zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(service service.OrderService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger.With().Str("handler", "order").Logger(),
	}
}

// CreateWhatsApp handles POST /api/orders/whatsapp requests.
func (h *OrderHandler) CreateWhatsApp(w http.ResponseWriter, r *http.Request) {
	var req model.CheckoutRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	fillCustomerEmail(r, &req)

	checkout, err := h.service.CreateWhatsAppOrder(r.Context(), &req, auth.UserID(r.Context()))
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeData(w, http.StatusCreated, checkout)
}

// InitializeCard handles POST /api/checkout/initialize requests.
func (h *OrderHandler) InitializeCard(w http.ResponseWriter, r *http.Request) {
	var req model.CheckoutRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	fillCustomerEmail(r, &req)

	checkout, err := h.service.InitializeCardCheckout(r.Context(), &req, auth.UserID(r.Context()))
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeData(w, http.StatusCreated, checkout)
}

// VerifyPayment handles GET /api/paystack/verify/{reference} requests.
func (h *OrderHandler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	reference := strings.TrimSpace(r.PathValue("reference"))
	if reference == "" {
		writeError(w, r, model.NewValidationError("reference is required"), h.logger)
		return
	}

	result, err := h.service.VerifyPayment(r.Context(), reference)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeData(w, http.StatusOK, result)
}

// Webhook handles POST /api/paystack/webhook requests. The signature covers the raw body.
func (h *OrderHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, r, model.NewDomainError(model.ErrCodeInvalidJSON, model.KindInput, "invalid request body"), h.logger)
		return
	}

	if err := h.service.HandleWebhook(r.Context(), body, r.Header.Get(payment.SignatureHeader)); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"received": true})
}

// GetByReference handles GET /api/orders/{reference} requests.
func (h *OrderHandler) GetByReference(w http.ResponseWriter, r *http.Request) {
	reference := strings.TrimSpace(r.PathValue("reference"))
	if reference == "" {
		writeError(w, r, model.NewValidationError("reference is required"), h.logger)
		return
	}

	order, err := h.service.GetByReference(r.Context(), reference, auth.UserID(r.Context()))
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeData(w, http.StatusOK, order)
}

// ListMine handles GET /api/orders/me requests.
func (h *OrderHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := pagination(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	orders, err := h.service.ListForUser(r.Context(), auth.UserID(r.Context()), limit, offset)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	if orders == nil {
		orders = []model.OrderDetails{}
	}

	writeData(w, http.StatusOK, orders)
}
