package repository

import (
	"context"
	"time"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ProductRepository defines the interface for product data access operations.
type ProductRepository interface {
	// List retrieves products, optionally filtered by category, with pagination support.
	List(ctx context.Context, category string, limit, offset int) ([]model.Product, error)

	// GetByIDs retrieves multiple products by their IDs. Unknown IDs are simply absent.
	GetByIDs(ctx context.Context, ids []int64) ([]model.Product, error)

	// Create inserts a product and fills in its generated ID.
	Create(ctx context.Context, product *model.Product) error
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// CreateOrder inserts a new order within the provided transaction.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateOrderItems inserts multiple order items within the provided transaction.
	CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error

	// AppendTimeline adds one audit event within the provided transaction.
	AppendTimeline(ctx context.Context, tx pgx.Tx, event *model.TimelineEvent) error

	// GetByID retrieves an order by its ID along with its items.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, []model.OrderItem, error)

	// GetByReference retrieves an order by its payment reference along with its items.
	GetByReference(ctx context.Context, reference string) (*model.Order, []model.OrderItem, error)

	// GetForUpdate locks the order row for the rest of the transaction.
	GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, error)

	// GetByReferenceForUpdate locks the order row identified by its payment reference.
	GetByReferenceForUpdate(ctx context.Context, tx pgx.Tx, reference string) (*model.Order, error)

	// UpdateStatus persists the order's status and lifecycle timestamps.
	UpdateStatus(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// UpdateInternalNotes persists the order's internal notes.
	UpdateInternalNotes(ctx context.Context, tx pgx.Tx, id uuid.UUID, notes string, at time.Time) error

	// UpdateReviewStatus persists the manual review decision.
	UpdateReviewStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status string, at time.Time) error

	// SetPaymentAccessCode stores the gateway access code for a card order.
	SetPaymentAccessCode(ctx context.Context, id uuid.UUID, accessCode string) error

	// List retrieves orders matching the filter, newest first.
	List(ctx context.Context, filter model.OrderFilter) ([]model.Order, error)

	// ListItems retrieves the line items of several orders keyed by order ID.
	ListItems(ctx context.Context, orderIDs []uuid.UUID) (map[uuid.UUID][]model.OrderItem, error)

	// ListTimeline retrieves an order's audit events, newest first.
	ListTimeline(ctx context.Context, orderID uuid.UUID) ([]model.TimelineEvent, error)
}

// CouponRepository defines the interface for coupon data access operations.
type CouponRepository interface {
	// GetByCode retrieves a coupon by code, case-insensitively. Returns nil when absent.
	GetByCode(ctx context.Context, code string) (*model.Coupon, error)

	// CountUsagesByEmail counts how often a customer has redeemed a coupon.
	CountUsagesByEmail(ctx context.Context, couponID int64, email string) (int, error)

	// CountUsagesByEmailTx counts a customer's redemptions within the provided transaction.
	CountUsagesByEmailTx(ctx context.Context, tx pgx.Tx, couponID int64, email string) (int, error)

	// Redeem increments used_count only while the usage limit allows it.
	// It returns false when the coupon is exhausted.
	Redeem(ctx context.Context, tx pgx.Tx, couponID int64) (bool, error)

	// RecordUsage appends a coupon usage row within the provided transaction.
	RecordUsage(ctx context.Context, tx pgx.Tx, usage *model.CouponUsage) error

	// Upsert creates a coupon or updates the definition stored under the same code.
	Upsert(ctx context.Context, coupon *model.Coupon) error

	// List retrieves all coupons, newest first.
	List(ctx context.Context) ([]model.Coupon, error)
}

// PromoRepository defines the interface for promotional rule data access operations.
type PromoRepository interface {
	// ListActive retrieves enabled rules whose window contains now,
	// ordered by created_at DESC then id DESC.
	ListActive(ctx context.Context, now time.Time) ([]model.PromoRule, error)

	// Create inserts a rule and fills in its generated ID.
	Create(ctx context.Context, rule *model.PromoRule) error

	// List retrieves all rules, newest first.
	List(ctx context.Context) ([]model.PromoRule, error)
}

// ZoneRepository defines the interface for delivery zone data access operations.
type ZoneRepository interface {
	// GetByCode retrieves a zone by its exact code. Returns nil when absent.
	GetByCode(ctx context.Context, code string) (*model.DeliveryZone, error)

	// ListActive retrieves zones offered at checkout, ordered by name.
	ListActive(ctx context.Context) ([]model.DeliveryZone, error)

	// Upsert creates a zone or updates the one stored under the same code.
	Upsert(ctx context.Context, zone *model.DeliveryZone) error
}

// NotificationLogRepository records notification delivery attempts.
type NotificationLogRepository interface {
	Insert(ctx context.Context, entry *model.NotificationLog) error
}
