package repository

import (
	"errors"

	"storefront/internal/model"

	"github.com/jackc/pgx/v5"
)

// Column lists and row scanners shared by the PostgreSQL repositories.

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

const orderColumns = `
	id, payment_reference, user_id, customer_name, customer_email, customer_phone,
	shipping_address, notes, channel, currency, subtotal_amount, delivery_fee,
	discount_amount, promo_discount_amount, grand_total, status, delivery_zone_code,
	delivery_zone_name, coupon_code, coupon_id, promo_rule_ids, risk_score, risk_level,
	risk_flags, manual_review_status, paystack_access_code, internal_notes, paid_at,
	processing_at, delivered_at, cancelled_at, created_at, updated_at`

func scanOrder(row pgx.Row) (*model.Order, error) {
	var o model.Order
	err := row.Scan(
		&o.ID, &o.Reference, &o.UserID, &o.CustomerName, &o.CustomerEmail, &o.CustomerPhone,
		&o.ShippingAddress, &o.Notes, &o.Channel, &o.Currency, &o.SubtotalAmount, &o.DeliveryFee,
		&o.DiscountAmount, &o.PromoDiscountAmount, &o.GrandTotal, &o.Status, &o.DeliveryZoneCode,
		&o.DeliveryZoneName, &o.CouponCode, &o.CouponID, &o.PromoRuleIDs, &o.RiskScore, &o.RiskLevel,
		&o.RiskFlags, &o.ManualReviewStatus, &o.PaymentAccessCode, &o.InternalNotes, &o.PaidAt,
		&o.ProcessingAt, &o.DeliveredAt, &o.CancelledAt, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

const orderItemColumns = `id, order_id, product_id, product_name, category, quantity, unit_price, line_total`

func scanOrderItem(row pgx.Row) (model.OrderItem, error) {
	var item model.OrderItem
	err := row.Scan(
		&item.ID, &item.OrderID, &item.ProductID, &item.ProductName,
		&item.Category, &item.Quantity, &item.UnitPrice, &item.LineTotal,
	)
	return item, err
}

const productColumns = `
	id, name, category, price, description, image_url, metadata,
	in_stock, stock_quantity, low_stock_threshold, created_at`

func scanProduct(row pgx.Row) (model.Product, error) {
	var p model.Product
	var metadata map[string]string
	err := row.Scan(
		&p.ID, &p.Name, &p.Category, &p.Price, &p.Description, &p.ImageURL, &metadata,
		&p.InStock, &p.StockQuantity, &p.LowStockThreshold, &p.CreatedAt,
	)
	if err != nil {
		return p, err
	}
	p.Metadata = model.Metadata(metadata).Sanitize(p.Category)
	return p, nil
}

const couponColumns = `
	id, code, description, discount_type, discount_value, min_order_amount,
	max_discount_amount, starts_at, ends_at, usage_limit, per_customer_limit,
	used_count, is_active, created_at, updated_at`

func scanCoupon(row pgx.Row) (*model.Coupon, error) {
	var c model.Coupon
	err := row.Scan(
		&c.ID, &c.Code, &c.Description, &c.DiscountType, &c.DiscountValue, &c.MinOrderAmount,
		&c.MaxDiscountAmount, &c.StartsAt, &c.EndsAt, &c.UsageLimit, &c.PerCustomerLimit,
		&c.UsedCount, &c.IsActive, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

const promoColumns = `
	id, name, rule_type, category, min_cart_amount, discount_type, discount_value,
	bogo_product_id, bogo_buy_qty, bogo_get_qty, starts_at, ends_at, is_active,
	created_at, updated_at`

func scanPromo(row pgx.Row) (model.PromoRule, error) {
	var r model.PromoRule
	err := row.Scan(
		&r.ID, &r.Name, &r.RuleType, &r.Category, &r.MinCartAmount, &r.DiscountType, &r.DiscountValue,
		&r.BogoProductID, &r.BogoBuyQty, &r.BogoGetQty, &r.StartsAt, &r.EndsAt, &r.IsActive,
		&r.CreatedAt, &r.UpdatedAt,
	)
	return r, err
}

const zoneColumns = `id, code, name, flat_fee, is_covered, is_active, created_at, updated_at`

func scanZone(row pgx.Row) (*model.DeliveryZone, error) {
	var z model.DeliveryZone
	err := row.Scan(&z.ID, &z.Code, &z.Name, &z.FlatFee, &z.IsCovered, &z.IsActive, &z.CreatedAt, &z.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &z, nil
}
