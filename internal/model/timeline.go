package model

import (
	"time"

	"github.com/google/uuid"
)

// Timeline event types.
const (
	EventOrderCreated   = "order_created"
	EventStatusChanged  = "status_changed"
	EventInternalNote   = "internal_note"
	EventReviewResolved = "review_resolved"
)

// TimelineEvent is one append-only audit entry for an order.
type TimelineEvent struct {
	ID        int64                  `json:"id" db:"id"`
	OrderID   uuid.UUID              `json:"orderId" db:"order_id"`
	EventType string                 `json:"eventType" db:"event_type"`
	Message   string                 `json:"message" db:"message"`
	Actor     string                 `json:"actor" db:"actor"`
	Payload   map[string]interface{} `json:"payload,omitempty" db:"payload"`
	CreatedAt time.Time              `json:"createdAt" db:"created_at"`
}
