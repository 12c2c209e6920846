package service

import (
	"context"

	"storefront/internal/coupon"
	"storefront/internal/delivery"
	"storefront/internal/model"
	"storefront/internal/pricing"

	"github.com/google/uuid"
)

// ProductService defines operations for catalogue management.
type ProductService interface {
	// List retrieves products, optionally filtered by category, with pagination.
	List(ctx context.Context, category string, limit, offset int) ([]model.Product, error)

	// Create validates and stores a new product.
	Create(ctx context.Context, req *model.ProductRequest) (*model.Product, error)
}

// CheckoutService prices carts without persisting anything.
type CheckoutService interface {
	// Quote runs the full pricing pipeline for a checkout preview.
	Quote(ctx context.Context, req *model.CheckoutRequest, userID string) (*pricing.Quote, error)

	// ValidateCoupon checks a coupon code against a subtotal.
	ValidateCoupon(ctx context.Context, req *model.CouponValidationRequest) (*coupon.Result, error)

	// CalculateDelivery prices delivery to a zone.
	CalculateDelivery(ctx context.Context, req *model.DeliveryRequest) (*delivery.Quote, error)

	// ListZones returns the zones offered at checkout.
	ListZones(ctx context.Context) ([]model.DeliveryZone, error)
}

// OrderService defines customer-facing order operations.
type OrderService interface {
	// CreateWhatsAppOrder prices and stores an order that is settled over WhatsApp.
	CreateWhatsAppOrder(ctx context.Context, req *model.CheckoutRequest, userID string) (*model.WhatsAppCheckout, error)

	// InitializeCardCheckout prices and stores an order and starts a card payment for it.
	InitializeCardCheckout(ctx context.Context, req *model.CheckoutRequest, userID string) (*model.CardCheckout, error)

	// VerifyPayment asks the gateway about a reference and marks the order paid on success.
	VerifyPayment(ctx context.Context, reference string) (*model.PaymentVerification, error)

	// HandleWebhook authenticates and applies a gateway webhook.
	HandleWebhook(ctx context.Context, body []byte, signature string) error

	// GetByReference retrieves an order for tracking. Orders owned by a user are visible only to that user.
	GetByReference(ctx context.Context, reference, userID string) (*model.OrderDetails, error)

	// ListForUser retrieves the signed-in customer's orders, newest first.
	ListForUser(ctx context.Context, userID string, limit, offset int) ([]model.OrderDetails, error)
}

// AdminService defines back-office operations.
type AdminService interface {
	// Login exchanges the configured admin password for a bearer token.
	Login(ctx context.Context, password string) (*model.Session, error)

	// ListOrders retrieves orders matching the filter with their items.
	ListOrders(ctx context.Context, filter model.OrderFilter) ([]model.OrderDetails, error)

	// UpdateStatus moves an order through its lifecycle.
	UpdateStatus(ctx context.Context, id uuid.UUID, status, actor string) (*model.OrderDetails, error)

	// AddNote appends an internal note to an order.
	AddNote(ctx context.Context, id uuid.UUID, note, actor string) (*model.Order, error)

	// ResolveReview approves or rejects a queued risk review.
	ResolveReview(ctx context.Context, id uuid.UUID, decision, actor string) (*model.Order, error)

	// Timeline lists an order's audit events, newest first.
	Timeline(ctx context.Context, id uuid.UUID) ([]model.TimelineEvent, error)

	// CreateCoupon validates and stores a coupon, replacing any coupon with the same code.
	CreateCoupon(ctx context.Context, c *model.Coupon) (*model.Coupon, error)

	// ListCoupons retrieves every coupon.
	ListCoupons(ctx context.Context) ([]model.Coupon, error)

	// ImportCoupons loads coupon files and upserts every definition.
	ImportCoupons(ctx context.Context, paths []string) (int, error)

	// CreatePromo validates and stores a promotional rule.
	CreatePromo(ctx context.Context, rule *model.PromoRule) (*model.PromoRule, error)

	// ListPromos retrieves every promotional rule.
	ListPromos(ctx context.Context) ([]model.PromoRule, error)

	// UpsertZone validates and stores a delivery zone.
	UpsertZone(ctx context.Context, zone *model.DeliveryZone) (*model.DeliveryZone, error)
}
