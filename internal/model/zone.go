package model

import "time"

// DeliveryZone is a drop-off area with a flat delivery fee.
type DeliveryZone struct {
	ID        int64     `json:"id" db:"id"`
	Code      string    `json:"code" db:"code"`
	Name      string    `json:"name" db:"name"`
	FlatFee   int64     `json:"flatFee" db:"flat_fee"`
	IsCovered bool      `json:"isCovered" db:"is_covered"`
	IsActive  bool      `json:"isActive" db:"is_active"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}
