package handler

import (
	"net/http"
	"strings"

	"storefront/internal/auth"
	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/rs/zerolog"
)

// AdminHandler handles back-office HTTP requests.
type AdminHandler struct {
	service service.AdminService
	logger  zerolog.Logger
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(service service.AdminService, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		service: service,
		logger:  logger.With().Str("handler", "admin").Logger(),
	}
}

// actor names the signed-in admin for timeline entries.
func actor(r *http.Request) string {
	if claims, ok := auth.ClaimsFromContext(r.Context()); ok && claims.Subject != "" {
		return claims.Subject
	}
	return service.AdminSubject
}

// Login handles POST /api/admin/login requests.
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.AdminLoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	session, err := h.service.Login(r.Context(), req.Password)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeData(w, http.StatusOK, session)
}

// ListOrders handles GET /api/admin/orders requests.
func (h *AdminHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := pagination(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	query := r.URL.Query()
	h.listOrders(w, r, model.OrderFilter{
		Status:             model.OrderStatus(strings.TrimSpace(query.Get("status"))),
		ManualReviewStatus: strings.TrimSpace(query.Get("review")),
		Limit:              limit,
		Offset:             offset,
	})
}

// ReviewQueue handles GET /api/admin/orders/review requests.
func (h *AdminHandler) ReviewQueue(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := pagination(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	h.listOrders(w, r, model.OrderFilter{
		ManualReviewStatus: model.ReviewQueued,
		Limit:              limit,
		Offset:             offset,
	})
}

func (h *AdminHandler) listOrders(w http.ResponseWriter, r *http.Request, filter model.OrderFilter) {
	orders, err := h.service.ListOrders(r.Context(), filter)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	if orders == nil {
		orders = []model.OrderDetails{}
	}

	writeData(w, http.StatusOK, orders)
}

// UpdateStatus handles PATCH /api/admin/orders/{id}/status requests.
func (h *AdminHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	var req model.StatusUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	order, err := h.service.UpdateStatus(r.Context(), id, req.Status, actor(r))
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeData(w, http.StatusOK, order)
}

// AddNote handles POST /api/admin/orders/{id}/notes requests.
func (h *AdminHandler) AddNote(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	var req model.NoteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	order, err := h.service.AddNote(r.Context(), id, req.Note, actor(r))
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeData(w, http.StatusOK, order)
}

// ResolveReview handles POST /api/admin/orders/{id}/review requests.
func (h *AdminHandler) ResolveReview(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	var req model.ReviewDecisionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	order, err := h.service.ResolveReview(r.Context(), id, req.Decision, actor(r))
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeData(w, http.StatusOK, order)
}

// Timeline handles GET /api/admin/orders/{id}/timeline requests.
func (h *AdminHandler) Timeline(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	events, err := h.service.Timeline(r.Context(), id)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	if events == nil {
		events = []model.TimelineEvent{}
	}

	writeData(w, http.StatusOK, events)
}

// CreateCoupon handles POST /api/admin/coupons requests.
func (h *AdminHandler) CreateCoupon(w http.ResponseWriter, r *http.Request) {
	var c model.Coupon
	if err := decodeJSON(w, r, &c); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	created, err := h.service.CreateCoupon(r.Context(), &c)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeData(w, http.StatusCreated, created)
}

// ListCoupons handles GET /api/admin/coupons requests.
func (h *AdminHandler) ListCoupons(w http.ResponseWriter, r *http.Request) {
	coupons, err := h.service.ListCoupons(r.Context())
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	if coupons == nil {
		coupons = []model.Coupon{}
	}

	writeData(w, http.StatusOK, coupons)
}

// ImportCoupons handles POST /api/admin/coupons/import requests.
func (h *AdminHandler) ImportCoupons(w http.ResponseWriter, r *http.Request) {
	var req model.CouponImportRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	imported, err := h.service.ImportCoupons(r.Context(), req.Paths)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeData(w, http.StatusOK, map[string]int{"imported": imported})
}

// CreatePromo handles POST /api/admin/promos requests.
func (h *AdminHandler) CreatePromo(w http.ResponseWriter, r *http.Request) {
	var rule model.PromoRule
	if err := decodeJSON(w, r, &rule); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	created, err := h.service.CreatePromo(r.Context(), &rule)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeData(w, http.StatusCreated, created)
}

// ListPromos handles GET /api/admin/promos requests.
func (h *AdminHandler) ListPromos(w http.ResponseWriter, r *http.Request) {
	rules, err := h.service.ListPromos(r.Context())
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	if rules == nil {
		rules = []model.PromoRule{}
	}

	writeData(w, http.StatusOK, rules)
}

// UpsertZone handles POST /api/admin/delivery-zones requests.
func (h *AdminHandler) UpsertZone(w http.ResponseWriter, r *http.Request) {
	var zone model.DeliveryZone
	if err := decodeJSON(w, r, &zone); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	stored, err := h.service.UpsertZone(r.Context(), &zone)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeData(w, http.StatusOK, stored)
}
