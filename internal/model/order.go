package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// OrderStatus is a step in the order lifecycle.
type OrderStatus string

const (
	StatusPendingPayment OrderStatus = "pending_payment"
	StatusPaid           OrderStatus = "paid"
	StatusProcessing     OrderStatus = "processing"
	StatusDelivered      OrderStatus = "delivered"
	StatusCancelled      OrderStatus = "cancelled"
)

// OrderStatuses lists every status in lifecycle order.
var OrderStatuses = []OrderStatus{
	StatusPendingPayment,
	StatusPaid,
	StatusProcessing,
	StatusDelivered,
	StatusCancelled,
}

// ParseOrderStatus validates a status string.
func ParseOrderStatus(s string) (OrderStatus, error) {
	status := OrderStatus(strings.TrimSpace(s))
	for _, known := range OrderStatuses {
		if status == known {
			return status, nil
		}
	}
	return "", ErrInvalidStatus
}

// Terminal reports whether no further status changes are allowed.
func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// Label is the customer-facing name of the status.
func (s OrderStatus) Label() string {
	switch s {
	case StatusPendingPayment:
		return "Pending Payment"
	case StatusPaid:
		return "Paid"
	case StatusProcessing:
		return "Processing"
	case StatusDelivered:
		return "Delivered"
	case StatusCancelled:
		return "Cancelled"
	default:
		return string(s)
	}
}

// Channel is how the customer checked out.
type Channel string

const (
	ChannelWhatsApp Channel = "whatsapp"
	ChannelCard     Channel = "card"
)

// Manual review states for the admin risk queue.
const (
	ReviewClear    = "clear"
	ReviewQueued   = "queued"
	ReviewApproved = "approved"
	ReviewRejected = "rejected"
)

// Order represents a priced customer order.
type Order struct {
	ID                  uuid.UUID   `json:"id" db:"id"`
	Reference           string      `json:"reference" db:"payment_reference"`
	UserID              *string     `json:"userId,omitempty" db:"user_id"`
	CustomerName        string      `json:"customerName" db:"customer_name"`
	CustomerEmail       string      `json:"customerEmail" db:"customer_email"`
	CustomerPhone       string      `json:"customerPhone" db:"customer_phone"`
	ShippingAddress     string      `json:"shippingAddress" db:"shipping_address"`
	Notes               string      `json:"notes" db:"notes"`
	Channel             Channel     `json:"channel" db:"channel"`
	Currency            string      `json:"currency" db:"currency"`
	SubtotalAmount      int64       `json:"subtotalAmount" db:"subtotal_amount"`
	DeliveryFee         int64       `json:"deliveryFee" db:"delivery_fee"`
	DiscountAmount      int64       `json:"discountAmount" db:"discount_amount"`
	PromoDiscountAmount int64       `json:"promoDiscountAmount" db:"promo_discount_amount"`
	GrandTotal          int64       `json:"grandTotal" db:"grand_total"`
	Status              OrderStatus `json:"status" db:"status"`
	DeliveryZoneCode    string      `json:"deliveryZoneCode" db:"delivery_zone_code"`
	DeliveryZoneName    string      `json:"deliveryZoneName" db:"delivery_zone_name"`
	CouponCode          *string     `json:"couponCode,omitempty" db:"coupon_code"`
	CouponID            *int64      `json:"couponId,omitempty" db:"coupon_id"`
	PromoRuleIDs        []int64     `json:"promoRuleIds" db:"promo_rule_ids"`
	RiskScore           int         `json:"riskScore" db:"risk_score"`
	RiskLevel           string      `json:"riskLevel" db:"risk_level"`
	RiskFlags           []string    `json:"riskFlags" db:"risk_flags"`
	ManualReviewStatus  string      `json:"manualReviewStatus" db:"manual_review_status"`
	PaymentAccessCode   *string     `json:"-" db:"paystack_access_code"`
	InternalNotes       string      `json:"internalNotes,omitempty" db:"internal_notes"`
	PaidAt              *time.Time  `json:"paidAt,omitempty" db:"paid_at"`
	ProcessingAt        *time.Time  `json:"processingAt,omitempty" db:"processing_at"`
	DeliveredAt         *time.Time  `json:"deliveredAt,omitempty" db:"delivered_at"`
	CancelledAt         *time.Time  `json:"cancelledAt,omitempty" db:"cancelled_at"`
	CreatedAt           time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt           time.Time   `json:"updatedAt" db:"updated_at"`
}

// ExpectedGrandTotal recomputes the total from the stored amount fields.
func (o *Order) ExpectedGrandTotal() int64 {
	total := o.SubtotalAmount + o.DeliveryFee - o.DiscountAmount - o.PromoDiscountAmount
	if total < 0 {
		return 0
	}
	return total
}

// OrderItem represents a line item in an order.
type OrderItem struct {
	ID          uuid.UUID `json:"id" db:"id"`
	OrderID     uuid.UUID `json:"-" db:"order_id"`
	ProductID   int64     `json:"productId" db:"product_id"`
	ProductName string    `json:"productName" db:"product_name"`
	Category    string    `json:"category" db:"category"`
	Quantity    int       `json:"quantity" db:"quantity"`
	UnitPrice   int64     `json:"unitPrice" db:"unit_price"`
	LineTotal   int64     `json:"lineTotal" db:"line_total"`
}

// CartItem is a client-supplied cart line. It is never trusted as-is.
type CartItem struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// LineItem is a cart line re-validated against the current catalogue.
type LineItem struct {
	ProductID   int64  `json:"productId"`
	ProductName string `json:"productName"`
	Category    string `json:"category"`
	Quantity    int    `json:"quantity"`
	UnitPrice   int64  `json:"unitPrice"`
	LineTotal   int64  `json:"lineTotal"`
}

// Customer holds contact details captured at checkout.
type Customer struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Notes   string `json:"notes"`
}

// CheckoutRequest represents the request payload for pricing or placing an order.
type CheckoutRequest struct {
	Customer         Customer   `json:"customer"`
	Items            []CartItem `json:"items"`
	DeliveryZoneCode string     `json:"deliveryZoneCode"`
	CouponCode       string     `json:"couponCode,omitempty"`
}

// OrderDetails is an order together with its line items.
type OrderDetails struct {
	Order
	Items []OrderItem `json:"items"`
}

// OrderFilter narrows admin and customer order listings.
type OrderFilter struct {
	Status             OrderStatus
	ManualReviewStatus string
	UserID             string
	Limit              int
	Offset             int
}

// CardCheckout is returned after a card payment has been initialised.
type CardCheckout struct {
	OrderID          uuid.UUID `json:"orderId"`
	Reference        string    `json:"reference"`
	Amount           int64     `json:"amount"`
	AuthorizationURL string    `json:"authorizationUrl"`
}

// WhatsAppCheckout is returned after a WhatsApp order has been placed.
type WhatsAppCheckout struct {
	OrderDetails
	WhatsAppURL string `json:"whatsappUrl"`
}

// PaymentVerification reports the gateway outcome for a reference.
type PaymentVerification struct {
	Reference string      `json:"reference"`
	Status    string      `json:"status"`
	Order     *Order      `json:"order,omitempty"`
	Updated   bool        `json:"updated"`
	Raw       interface{} `json:"-"`
}
