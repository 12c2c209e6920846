package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront/internal/lifecycle"
	"storefront/internal/metrics"
	"storefront/internal/model"
	"storefront/internal/notification"
	"storefront/internal/payment"
	"storefront/internal/pricing"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// Actors recorded on timeline events raised without an admin.
const (
	ActorCustomer = "customer"
	ActorPaystack = "paystack"
	ActorWebhook  = "paystack-webhook"
)

// PaymentConfirmer moves a paid order out of pending_payment.
type PaymentConfirmer interface {
	MarkPaid(ctx context.Context, reference, actor string) (*model.Order, bool, error)
}

// OrderSettings hold the store details baked into orders and payment links.
type OrderSettings struct {
	StoreName       string
	BaseURL         string
	WhatsAppNumber  string
	ReferencePrefix string
	Currency        string
	WebhookSecret   string
}

// orderService implements OrderService.
type orderService struct {
	orderRepo  repository.OrderRepository
	couponRepo repository.CouponRepository
	pricer     Pricer
	payments   PaymentConfirmer
	gateway    payment.Gateway
	notifier   notification.Notifier
	metrics    *metrics.Metrics
	settings   OrderSettings
	now        func() time.Time
	logger     zerolog.Logger
}

// NewOrderService creates a new order service. A nil gateway disables card checkout.
func NewOrderService(
	orderRepo repository.OrderRepository,
	couponRepo repository.CouponRepository,
	pricer Pricer,
	payments PaymentConfirmer,
	gateway payment.Gateway,
	notifier notification.Notifier,
	m *metrics.Metrics,
	settings OrderSettings,
	logger zerolog.Logger,
) OrderService {
	if settings.ReferencePrefix == "" {
		settings.ReferencePrefix = "VICBEST"
	}
	if settings.Currency == "" {
		settings.Currency = "NGN"
	}
	return &orderService{
		orderRepo:  orderRepo,
		couponRepo: couponRepo,
		pricer:     pricer,
		payments:   payments,
		gateway:    gateway,
		notifier:   notifier,
		metrics:    m,
		settings:   settings,
		now:        time.Now,
		logger:     logger.With().Str("service", "order").Logger(),
	}
}

// CreateWhatsAppOrder prices and stores an order that is settled over WhatsApp.
func (s *orderService) CreateWhatsAppOrder(ctx context.Context, req *model.CheckoutRequest, userID string) (*model.WhatsAppCheckout, error) {
	details, err := s.placeOrder(ctx, req, userID, model.ChannelWhatsApp)
	if err != nil {
		return nil, err
	}

	text := notification.WhatsAppOrderText(s.settings.StoreName, s.settings.BaseURL, details.Order, details.Items)
	return &model.WhatsAppCheckout{
		OrderDetails: *details,
		WhatsAppURL:  notification.WhatsAppURL(s.settings.WhatsAppNumber, text),
	}, nil
}

// InitializeCardCheckout prices and stores a pending order, then starts a card payment for it.
// When the gateway rejects the payment the order stays pending so the customer can retry.
func (s *orderService) InitializeCardCheckout(ctx context.Context, req *model.CheckoutRequest, userID string) (*model.CardCheckout, error) {
	if s.gateway == nil {
		return nil, model.ErrPaymentNotConfigured
	}

	details, err := s.placeOrder(ctx, req, userID, model.ChannelCard)
	if err != nil {
		return nil, err
	}
	order := details.Order

	metadata := map[string]interface{}{
		"orderId":      order.ID.String(),
		"customerName": order.CustomerName,
	}
	if order.UserID != nil {
		metadata["userId"] = *order.UserID
	}

	started, err := s.gateway.Initialize(ctx, payment.InitializeRequest{
		Email:       order.CustomerEmail,
		Amount:      order.GrandTotal,
		Reference:   order.Reference,
		CallbackURL: strings.TrimRight(s.settings.BaseURL, "/") + "/checkout/success?reference=" + order.Reference,
		Metadata:    metadata,
	})
	if err != nil {
		s.logger.Error().Err(err).
			Str("order_id", order.ID.String()).
			Str("reference", order.Reference).
			Msg("failed to initialise card payment")
		return nil, err
	}

	if err := s.orderRepo.SetPaymentAccessCode(ctx, order.ID, started.AccessCode); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to store access code")
		return nil, fmt.Errorf("failed to store payment access code: %w", err)
	}

	return &model.CardCheckout{
		OrderID:          order.ID,
		Reference:        order.Reference,
		Amount:           order.GrandTotal,
		AuthorizationURL: started.AuthorizationURL,
	}, nil
}

// VerifyPayment asks the gateway about a reference and marks the order paid on success.
// A charge below the order total is reported but never confirms the order.
func (s *orderService) VerifyPayment(ctx context.Context, reference string) (*model.PaymentVerification, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, model.NewValidationError("reference is required")
	}
	if s.gateway == nil {
		return nil, model.ErrPaymentNotConfigured
	}

	order, _, err := s.orderRepo.GetByReference(ctx, reference)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}

	v, err := s.gateway.Verify(ctx, reference)
	if err != nil {
		s.logger.Error().Err(err).Str("reference", reference).Msg("failed to verify payment")
		return nil, err
	}

	result := &model.PaymentVerification{
		Reference: reference,
		Status:    v.Status,
		Order:     order,
		Raw:       v.Raw,
	}
	if !v.Successful() {
		return result, nil
	}
	if v.Amount < order.GrandTotal {
		s.logger.Warn().
			Str("reference", reference).
			Int64("charged", v.Amount).
			Int64("grand_total", order.GrandTotal).
			Msg("charged amount below order total")
		result.Status = "amount_mismatch"
		return result, nil
	}

	updated, changed, err := s.payments.MarkPaid(ctx, reference, ActorPaystack)
	if err != nil {
		return nil, err
	}
	result.Order = updated
	result.Updated = changed
	return result, nil
}

// HandleWebhook authenticates and applies a gateway webhook. Unknown events and
// references are acknowledged without changes.
func (s *orderService) HandleWebhook(ctx context.Context, body []byte, signature string) error {
	if s.settings.WebhookSecret == "" {
		return model.ErrPaymentNotConfigured
	}
	if !payment.VerifySignature(s.settings.WebhookSecret, body, signature) {
		s.logger.Warn().Msg("webhook signature mismatch")
		return model.ErrInvalidSignature
	}

	event, err := payment.ParseWebhook(body)
	if err != nil {
		return model.NewValidationError("webhook body is not valid JSON")
	}
	if event.Event != payment.EventChargeSuccess {
		s.logger.Debug().Str("event", event.Event).Msg("webhook event ignored")
		return nil
	}

	_, changed, err := s.payments.MarkPaid(ctx, event.Data.Reference, ActorWebhook)
	if errors.Is(err, model.ErrOrderNotFound) {
		s.logger.Warn().Str("reference", event.Data.Reference).Msg("webhook for unknown reference")
		return nil
	}
	if err != nil {
		return err
	}

	s.logger.Info().
		Str("reference", event.Data.Reference).
		Bool("updated", changed).
		Msg("charge confirmed by webhook")
	return nil
}

// GetByReference retrieves an order for tracking.
func (s *orderService) GetByReference(ctx context.Context, reference, userID string) (*model.OrderDetails, error) {
	order, items, err := s.orderRepo.GetByReference(ctx, strings.TrimSpace(reference))
	if err != nil {
		s.logger.Error().Err(err).Str("reference", reference).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}
	if order.UserID != nil && *order.UserID != userID {
		s.logger.Debug().Str("reference", reference).Msg("order belongs to another user")
		return nil, model.ErrForbidden
	}

	return &model.OrderDetails{Order: *order, Items: items}, nil
}

// ListForUser retrieves the signed-in customer's orders, newest first.
func (s *orderService) ListForUser(ctx context.Context, userID string, limit, offset int) ([]model.OrderDetails, error) {
	if userID == "" {
		return nil, model.ErrUnauthorised
	}
	return listWithItems(ctx, s.orderRepo, model.OrderFilter{UserID: userID, Limit: limit, Offset: offset})
}

// placeOrder prices the checkout and stores the order atomically.
func (s *orderService) placeOrder(ctx context.Context, req *model.CheckoutRequest, userID string, channel model.Channel) (*model.OrderDetails, error) {
	if err := validateCheckout(req, userID); err != nil {
		return nil, err
	}

	quote, err := s.pricer.Price(ctx, pricingRequest(req, userID))
	if err != nil {
		recordRejection(s.metrics, err)
		return nil, err
	}

	order, items := s.buildOrder(quote, req, userID, channel)
	if err := s.persist(ctx, order, items, quote); err != nil {
		recordRejection(s.metrics, err)
		return nil, err
	}

	s.metrics.RecordOrderCreated(string(channel), order.GrandTotal, order.ManualReviewStatus == model.ReviewQueued)
	if order.CouponID != nil {
		s.metrics.RecordCouponRedeemed()
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("reference", order.Reference).
		Str("channel", string(channel)).
		Int64("grand_total", order.GrandTotal).
		Str("risk_level", order.RiskLevel).
		Msg("order created successfully")

	s.notifier.NotifyNewOrder(*order, items)

	return &model.OrderDetails{Order: *order, Items: items}, nil
}

// persist writes the order, its items, the creation event and the coupon redemption in one transaction.
func (s *orderService) persist(ctx context.Context, order *model.Order, items []model.OrderItem, quote *pricing.Quote) (err error) {
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return fmt.Errorf("failed to create order: %w", err)
	}

	// Ensure transaction is rolled back on error
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	if err = s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to create order")
		return fmt.Errorf("failed to create order: %w", err)
	}

	if err = s.orderRepo.CreateOrderItems(ctx, tx, items); err != nil {
		s.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Int("item_count", len(items)).
			Msg("failed to create order items")
		return fmt.Errorf("failed to create order items: %w", err)
	}

	event := &model.TimelineEvent{
		OrderID:   order.ID,
		EventType: model.EventOrderCreated,
		Message:   fmt.Sprintf("Order placed via %s", order.Channel),
		Actor:     ActorCustomer,
		Payload: map[string]interface{}{
			"status":     string(order.Status),
			"grandTotal": order.GrandTotal,
			"riskLevel":  order.RiskLevel,
			"stages":     quote.Stages,
		},
		CreatedAt: order.CreatedAt,
	}
	if err = s.orderRepo.AppendTimeline(ctx, tx, event); err != nil {
		return fmt.Errorf("failed to append timeline: %w", err)
	}

	if quote.Coupon != nil {
		if err = s.redeemCoupon(ctx, tx, order, quote); err != nil {
			return err
		}
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to commit transaction")
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

// redeemCoupon claims one use of the coupon. Exhaustion between pricing and commit aborts the order.
// The per-customer limit is re-checked while the coupon row is locked by Redeem.
func (s *orderService) redeemCoupon(ctx context.Context, tx pgx.Tx, order *model.Order, quote *pricing.Quote) error {
	ok, err := s.couponRepo.Redeem(ctx, tx, quote.Coupon.ID)
	if err != nil {
		return fmt.Errorf("failed to redeem coupon: %w", err)
	}
	if !ok {
		s.logger.Warn().Str("coupon_code", quote.Coupon.Code).Msg("coupon exhausted during checkout")
		return model.ErrCouponUsageLimit.WithDetail(*quote.Coupon)
	}

	if limit := quote.Coupon.PerCustomerLimit; limit != nil && order.CustomerEmail != "" {
		used, err := s.couponRepo.CountUsagesByEmailTx(ctx, tx, quote.Coupon.ID, order.CustomerEmail)
		if err != nil {
			return fmt.Errorf("failed to check coupon usage: %w", err)
		}
		if used >= *limit {
			s.logger.Warn().Str("coupon_code", quote.Coupon.Code).Msg("customer coupon limit reached during checkout")
			return model.ErrCouponCustomerLimit.WithDetail(*quote.Coupon)
		}
	}

	usage := &model.CouponUsage{
		CouponID:      quote.Coupon.ID,
		OrderID:       order.ID,
		CustomerEmail: order.CustomerEmail,
		CreatedAt:     order.CreatedAt,
	}
	if err := s.couponRepo.RecordUsage(ctx, tx, usage); err != nil {
		return fmt.Errorf("failed to record coupon usage: %w", err)
	}
	return nil
}

// buildOrder snapshots the quote into an order and its line items.
func (s *orderService) buildOrder(quote *pricing.Quote, req *model.CheckoutRequest, userID string, channel model.Channel) (*model.Order, []model.OrderItem) {
	now := s.now().UTC()
	customer := normaliseCustomer(req.Customer)

	order := &model.Order{
		ID:                  uuid.New(),
		Reference:           s.newReference(now),
		CustomerName:        customer.Name,
		CustomerEmail:       customer.Email,
		CustomerPhone:       customer.Phone,
		ShippingAddress:     customer.Address,
		Notes:               customer.Notes,
		Channel:             channel,
		Currency:            s.settings.Currency,
		SubtotalAmount:      quote.SubtotalAmount,
		DeliveryFee:         quote.DeliveryFee,
		DiscountAmount:      quote.DiscountAmount,
		PromoDiscountAmount: quote.PromoDiscountAmount,
		GrandTotal:          quote.GrandTotal,
		Status:              lifecycle.InitialStatus(channel),
		PromoRuleIDs:        quote.PromoRuleIDs,
		RiskScore:           quote.Risk.Score,
		RiskLevel:           quote.Risk.Level,
		RiskFlags:           quote.Risk.Flags,
		ManualReviewStatus:  quote.Risk.ManualReviewStatus,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if userID != "" {
		order.UserID = &userID
	}
	if quote.Zone != nil {
		order.DeliveryZoneCode = quote.Zone.Code
		order.DeliveryZoneName = quote.Zone.Name
	}
	if quote.Coupon != nil {
		code, id := quote.Coupon.Code, quote.Coupon.ID
		order.CouponCode = &code
		order.CouponID = &id
	}
	if order.Status == model.StatusProcessing {
		order.ProcessingAt = &now
	}

	items := make([]model.OrderItem, len(quote.Items))
	for i, line := range quote.Items {
		items[i] = model.OrderItem{
			ID:          uuid.New(),
			OrderID:     order.ID,
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			Category:    line.Category,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			LineTotal:   line.LineTotal,
		}
	}
	return order, items
}

// newReference builds PREFIX-<unix ms>-<6 uppercase characters>.
func (s *orderService) newReference(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("%s-%d-%s", s.settings.ReferencePrefix, now.UnixMilli(), suffix)
}

// validateCheckout requires contact details from guests and at least one cart line.
func validateCheckout(req *model.CheckoutRequest, userID string) error {
	if req == nil {
		return model.NewValidationError("checkout payload is required")
	}
	if userID == "" && (strings.TrimSpace(req.Customer.Name) == "" || strings.TrimSpace(req.Customer.Email) == "") {
		return model.NewValidationError("customer name and email are required")
	}
	if strings.TrimSpace(req.Customer.Email) == "" {
		return model.NewValidationError("customer email is required")
	}
	if len(req.Items) == 0 {
		return model.ErrNoValidItems
	}
	return nil
}

// listWithItems loads orders and attaches their line items.
func listWithItems(ctx context.Context, repo repository.OrderRepository, filter model.OrderFilter) ([]model.OrderDetails, error) {
	orders, err := repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	ids := make([]uuid.UUID, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}
	items, err := repo.ListItems(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to list order items: %w", err)
	}

	out := make([]model.OrderDetails, len(orders))
	for i, o := range orders {
		lines := items[o.ID]
		if lines == nil {
			lines = []model.OrderItem{}
		}
		out[i] = model.OrderDetails{Order: o, Items: lines}
	}
	return out, nil
}
