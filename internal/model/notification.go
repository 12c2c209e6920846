package model

import (
	"time"

	"github.com/google/uuid"
)

// Notification delivery outcomes written to the notification log.
const (
	NotificationSent     = "sent"
	NotificationFailed   = "failed"
	NotificationFallback = "fallback"
	NotificationSkipped  = "skipped"
)

// NotificationLog records one delivery attempt.
type NotificationLog struct {
	ID           int64       `json:"id" db:"id"`
	OrderID      *uuid.UUID  `json:"orderId,omitempty" db:"order_id"`
	EventType    string      `json:"eventType" db:"event_type"`
	Channel      string      `json:"channel" db:"channel"`
	Recipient    string      `json:"recipient" db:"recipient"`
	Status       string      `json:"status" db:"status"`
	ErrorMessage string      `json:"errorMessage,omitempty" db:"error_message"`
	Payload      interface{} `json:"payload,omitempty" db:"payload"`
	CreatedAt    time.Time   `json:"createdAt" db:"created_at"`
}
