package model

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error         string      `json:"error"`
	Message       string      `json:"message"`
	Detail        interface{} `json:"detail,omitempty"`
	CorrelationID string      `json:"correlationId,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON          = "INVALID_JSON"
	ErrCodeMissingField         = "MISSING_FIELD"
	ErrCodeValidation           = "VALIDATION_FAILED"
	ErrCodeNoValidItems         = "NO_VALID_ITEMS"
	ErrCodeZoneRequired         = "DELIVERY_ZONE_REQUIRED"
	ErrCodeInvalidSubtotal      = "INVALID_SUBTOTAL"
	ErrCodeInvalidZone          = "INVALID_DELIVERY_ZONE"
	ErrCodeZoneNotCovered       = "DELIVERY_NOT_COVERED"
	ErrCodeCouponNotFound       = "COUPON_NOT_FOUND"
	ErrCodeCouponInactive       = "COUPON_INACTIVE"
	ErrCodeCouponNotStarted     = "COUPON_NOT_STARTED"
	ErrCodeCouponExpired        = "COUPON_EXPIRED"
	ErrCodeCouponUsageLimit     = "COUPON_USAGE_LIMIT"
	ErrCodeCouponMinOrder       = "COUPON_MIN_ORDER"
	ErrCodeCouponCustomerLimit  = "COUPON_CUSTOMER_LIMIT"
	ErrCodeCouponUnsupported    = "COUPON_UNSUPPORTED_TYPE"
	ErrCodeOrderNotFound        = "ORDER_NOT_FOUND"
	ErrCodeInvalidStatus        = "INVALID_STATUS"
	ErrCodeOrderTerminal        = "ORDER_TERMINAL"
	ErrCodeReviewNotQueued      = "REVIEW_NOT_QUEUED"
	ErrCodePaymentNotConfigured = "PAYMENT_NOT_CONFIGURED"
	ErrCodePaymentInitFailed    = "PAYMENT_INIT_FAILED"
	ErrCodePaymentVerifyFailed  = "PAYMENT_VERIFY_FAILED"
	ErrCodeInvalidSignature     = "INVALID_SIGNATURE"
	ErrCodeInvalidMetadata      = "INVALID_METADATA"
	ErrCodeUnauthorised         = "UNAUTHORIZED"
	ErrCodeForbidden            = "FORBIDDEN"
	ErrCodeRateLimited          = "RATE_LIMITED"
	ErrCodeInternalError        = "INTERNAL_ERROR"
)

// ErrorKind groups domain errors by how the caller should react to them.
type ErrorKind string

const (
	KindInput        ErrorKind = "input"
	KindBusinessRule ErrorKind = "business_rule"
	KindNotFound     ErrorKind = "not_found"
	KindConflict     ErrorKind = "conflict"
	KindUnauthorised ErrorKind = "unauthorized"
	KindForbidden    ErrorKind = "forbidden"
	KindIntegration  ErrorKind = "integration"
)

// Domain errors for business logic
type DomainError struct {
	Code    string
	Kind    ErrorKind
	Message string
	// Detail carries a snapshot (zone, coupon, order) the caller can render.
	Detail interface{}
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is matches domain errors by code so sentinels compare equal to detailed copies.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithDetail returns a copy of the error carrying the given detail.
func (e *DomainError) WithDetail(detail interface{}) *DomainError {
	cp := *e
	cp.Detail = detail
	return &cp
}

// WithMessage returns a copy of the error with a more specific message.
func (e *DomainError) WithMessage(message string) *DomainError {
	cp := *e
	cp.Message = message
	return &cp
}

// NewDomainError creates a new domain error
func NewDomainError(code string, kind ErrorKind, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Kind:    kind,
		Message: message,
	}
}

// NewValidationError creates an input error for a malformed request field.
func NewValidationError(message string) *DomainError {
	return NewDomainError(ErrCodeValidation, KindInput, message)
}

// Common domain errors
var (
	ErrNoValidItems    = NewDomainError(ErrCodeNoValidItems, KindInput, "No valid cart items")
	ErrZoneRequired    = NewDomainError(ErrCodeZoneRequired, KindInput, "Delivery location is required")
	ErrInvalidSubtotal = NewDomainError(ErrCodeInvalidSubtotal, KindInput, "Subtotal must be a non-negative whole amount")
	ErrInvalidZone     = NewDomainError(ErrCodeInvalidZone, KindInput, "Invalid delivery location")
	ErrZoneNotCovered  = NewDomainError(ErrCodeZoneNotCovered, KindBusinessRule, "Delivery is not available for this location")

	ErrCouponNotFound      = NewDomainError(ErrCodeCouponNotFound, KindInput, "Coupon code not found")
	ErrCouponInactive      = NewDomainError(ErrCodeCouponInactive, KindBusinessRule, "Coupon is not active")
	ErrCouponNotStarted    = NewDomainError(ErrCodeCouponNotStarted, KindBusinessRule, "Coupon is not active yet")
	ErrCouponExpired       = NewDomainError(ErrCodeCouponExpired, KindBusinessRule, "Coupon has expired")
	ErrCouponUsageLimit    = NewDomainError(ErrCodeCouponUsageLimit, KindBusinessRule, "Coupon usage limit reached")
	ErrCouponMinOrder      = NewDomainError(ErrCodeCouponMinOrder, KindBusinessRule, "Order subtotal is below the coupon minimum")
	ErrCouponCustomerLimit = NewDomainError(ErrCodeCouponCustomerLimit, KindBusinessRule, "Coupon already used by this customer")
	ErrCouponUnsupported   = NewDomainError(ErrCodeCouponUnsupported, KindBusinessRule, "Coupon discount type is not supported")

	ErrOrderNotFound   = NewDomainError(ErrCodeOrderNotFound, KindNotFound, "Order not found")
	ErrInvalidStatus   = NewDomainError(ErrCodeInvalidStatus, KindInput, "Invalid order status")
	ErrOrderTerminal   = NewDomainError(ErrCodeOrderTerminal, KindConflict, "Order is closed and can no longer change status")
	ErrReviewNotQueued = NewDomainError(ErrCodeReviewNotQueued, KindConflict, "Order is not waiting for manual review")

	ErrPaymentNotConfigured = NewDomainError(ErrCodePaymentNotConfigured, KindIntegration, "Card payments are not configured")
	ErrPaymentInitFailed    = NewDomainError(ErrCodePaymentInitFailed, KindIntegration, "Payment initialisation failed")
	ErrPaymentVerifyFailed  = NewDomainError(ErrCodePaymentVerifyFailed, KindIntegration, "Payment verification failed")
	ErrInvalidSignature     = NewDomainError(ErrCodeInvalidSignature, KindUnauthorised, "Invalid signature")

	ErrInvalidMetadata = NewDomainError(ErrCodeInvalidMetadata, KindInput, "Invalid product metadata")
	ErrUnauthorised    = NewDomainError(ErrCodeUnauthorised, KindUnauthorised, "Unauthorized")
	ErrForbidden       = NewDomainError(ErrCodeForbidden, KindForbidden, "Forbidden")
)
