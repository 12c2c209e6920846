// Package notification delivers order emails, WhatsApp fallbacks and order events.
//
// Delivery is best effort. Callers enqueue through a Dispatcher and never see
// delivery failures; every attempt is written to the notification log instead.
package notification

import (
	"context"
	"time"

	"storefront/internal/model"

	"github.com/google/uuid"
)

// Notification event types.
const (
	EventOrderCreatedCustomer = "order_created_customer"
	EventOrderCreatedAdmin    = "order_created_admin"
	EventOrderStatusChanged   = "order_status_changed"
)

// Delivery channels written to the notification log.
const (
	ChannelEmail        = "email"
	ChannelWhatsAppLink = "whatsapp_link"
	ChannelKafka        = "kafka"
)

// Order event names published to the broker.
const (
	TopicEventCreated       = "order.created"
	TopicEventStatusChanged = "order.status_changed"
)

// Notifier accepts notifications without blocking the caller.
type Notifier interface {
	NotifyNewOrder(order model.Order, items []model.OrderItem)
	NotifyStatusChanged(order model.Order, previous, next model.OrderStatus)
}

// Handler performs the actual deliveries.
type Handler interface {
	OrderCreated(ctx context.Context, order model.Order, items []model.OrderItem)
	StatusChanged(ctx context.Context, order model.Order, previous, next model.OrderStatus)
}

// EmailSender sends a plain-text email.
type EmailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// LogStore persists delivery attempts.
type LogStore interface {
	Insert(ctx context.Context, entry *model.NotificationLog) error
}

// Publisher writes an event to the order event stream.
type Publisher interface {
	PublishEvent(ctx context.Context, key string, event interface{}) error
	Close() error
}

// OrderEvent is the broker payload for order changes.
type OrderEvent struct {
	Type           string    `json:"type"`
	OrderID        uuid.UUID `json:"orderId"`
	Reference      string    `json:"reference"`
	Channel        string    `json:"channel"`
	Status         string    `json:"status"`
	PreviousStatus string    `json:"previousStatus,omitempty"`
	GrandTotal     int64     `json:"grandTotal"`
	Currency       string    `json:"currency"`
	RiskLevel      string    `json:"riskLevel,omitempty"`
	OccurredAt     time.Time `json:"occurredAt"`
}
