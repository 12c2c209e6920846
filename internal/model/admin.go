package model

import "time"

// AdminLoginRequest is the back-office login payload.
type AdminLoginRequest struct {
	Password string `json:"password"`
}

// Session is a signed bearer token and its expiry.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// StatusUpdateRequest moves an order to another status.
type StatusUpdateRequest struct {
	Status string `json:"status"`
}

// NoteRequest appends an internal note to an order.
type NoteRequest struct {
	Note string `json:"note"`
}

// ReviewDecisionRequest resolves a queued risk review.
type ReviewDecisionRequest struct {
	Decision string `json:"decision"`
}

// CouponImportRequest lists coupon files to import. With S3 configured the base name is read from the bucket first.
type CouponImportRequest struct {
	Paths []string `json:"paths"`
}

// DeliveryRequest prices delivery for a subtotal.
type DeliveryRequest struct {
	DeliveryZoneCode string `json:"deliveryZoneCode"`
	Subtotal         int64  `json:"subtotal"`
}
