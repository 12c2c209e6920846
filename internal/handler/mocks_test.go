package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront/internal/auth"
	"storefront/internal/coupon"
	"storefront/internal/delivery"
	"storefront/internal/model"
	"storefront/internal/pricing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockProductService is a mock implementation of ProductService.
type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) List(ctx context.Context, category string, limit, offset int) ([]model.Product, error) {
	args := m.Called(ctx, category, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockProductService) Create(ctx context.Context, req *model.ProductRequest) (*model.Product, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

// MockCheckoutService is a mock implementation of CheckoutService.
type MockCheckoutService struct {
	mock.Mock
}

func (m *MockCheckoutService) Quote(ctx context.Context, req *model.CheckoutRequest, userID string) (*pricing.Quote, error) {
	args := m.Called(ctx, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pricing.Quote), args.Error(1)
}

func (m *MockCheckoutService) ValidateCoupon(ctx context.Context, req *model.CouponValidationRequest) (*coupon.Result, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*coupon.Result), args.Error(1)
}

func (m *MockCheckoutService) CalculateDelivery(ctx context.Context, req *model.DeliveryRequest) (*delivery.Quote, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*delivery.Quote), args.Error(1)
}

func (m *MockCheckoutService) ListZones(ctx context.Context) ([]model.DeliveryZone, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.DeliveryZone), args.Error(1)
}

// MockOrderService is a mock implementation of OrderService.
type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) CreateWhatsAppOrder(ctx context.Context, req *model.CheckoutRequest, userID string) (*model.WhatsAppCheckout, error) {
	args := m.Called(ctx, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.WhatsAppCheckout), args.Error(1)
}

func (m *MockOrderService) InitializeCardCheckout(ctx context.Context, req *model.CheckoutRequest, userID string) (*model.CardCheckout, error) {
	args := m.Called(ctx, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CardCheckout), args.Error(1)
}

func (m *MockOrderService) VerifyPayment(ctx context.Context, reference string) (*model.PaymentVerification, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PaymentVerification), args.Error(1)
}

func (m *MockOrderService) HandleWebhook(ctx context.Context, body []byte, signature string) error {
	args := m.Called(ctx, body, signature)
	return args.Error(0)
}

func (m *MockOrderService) GetByReference(ctx context.Context, reference, userID string) (*model.OrderDetails, error) {
	args := m.Called(ctx, reference, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderDetails), args.Error(1)
}

func (m *MockOrderService) ListForUser(ctx context.Context, userID string, limit, offset int) ([]model.OrderDetails, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.OrderDetails), args.Error(1)
}

// MockAdminService is a mock implementation of AdminService.
type MockAdminService struct {
	mock.Mock
}

func (m *MockAdminService) Login(ctx context.Context, password string) (*model.Session, error) {
	args := m.Called(ctx, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Session), args.Error(1)
}

func (m *MockAdminService) ListOrders(ctx context.Context, filter model.OrderFilter) ([]model.OrderDetails, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.OrderDetails), args.Error(1)
}

func (m *MockAdminService) UpdateStatus(ctx context.Context, id uuid.UUID, status, actor string) (*model.OrderDetails, error) {
	args := m.Called(ctx, id, status, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderDetails), args.Error(1)
}

func (m *MockAdminService) AddNote(ctx context.Context, id uuid.UUID, note, actor string) (*model.Order, error) {
	args := m.Called(ctx, id, note, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockAdminService) ResolveReview(ctx context.Context, id uuid.UUID, decision, actor string) (*model.Order, error) {
	args := m.Called(ctx, id, decision, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockAdminService) Timeline(ctx context.Context, id uuid.UUID) ([]model.TimelineEvent, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.TimelineEvent), args.Error(1)
}

func (m *MockAdminService) CreateCoupon(ctx context.Context, c *model.Coupon) (*model.Coupon, error) {
	args := m.Called(ctx, c)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Coupon), args.Error(1)
}

func (m *MockAdminService) ListCoupons(ctx context.Context) ([]model.Coupon, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Coupon), args.Error(1)
}

func (m *MockAdminService) ImportCoupons(ctx context.Context, paths []string) (int, error) {
	args := m.Called(ctx, paths)
	return args.Int(0), args.Error(1)
}

func (m *MockAdminService) CreatePromo(ctx context.Context, rule *model.PromoRule) (*model.PromoRule, error) {
	args := m.Called(ctx, rule)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PromoRule), args.Error(1)
}

func (m *MockAdminService) ListPromos(ctx context.Context) ([]model.PromoRule, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.PromoRule), args.Error(1)
}

func (m *MockAdminService) UpsertZone(ctx context.Context, zone *model.DeliveryZone) (*model.DeliveryZone, error) {
	args := m.Called(ctx, zone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DeliveryZone), args.Error(1)
}

// jsonRequest builds a request with a JSON body.
func jsonRequest(t *testing.T, method, target string, body interface{}) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if s, ok := body.(string); ok {
		buf.WriteString(s)
	} else if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// withClaims attaches bearer claims as the auth middleware would.
func withClaims(req *http.Request, claims *auth.Claims) *http.Request {
	return req.WithContext(auth.WithClaims(req.Context(), claims))
}

func customerClaims(userID, email string) *auth.Claims {
	claims := &auth.Claims{Role: auth.RoleCustomer, Email: email}
	claims.Subject = userID
	return claims
}

// decodeData unwraps the success envelope into dst.
func decodeData(t *testing.T, w *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&envelope))
	require.NoError(t, json.Unmarshal(envelope.Data, dst))
}

func decodeErrorBody(t *testing.T, w *httptest.ResponseRecorder) model.ErrorResponse {
	t.Helper()
	var body model.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body
}
