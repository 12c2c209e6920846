package service

import (
	"context"
	"time"

	"storefront/internal/coupon"
	"storefront/internal/delivery"
	"storefront/internal/model"
	"storefront/internal/payment"
	"storefront/internal/pricing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/mock"
)

// MockOrderRepository is a mock implementation of OrderRepository.
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	// Return a MockTx interface value, not a pointer
	if tx, ok := args.Get(0).(pgx.Tx); ok {
		return tx, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderRepository) CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	args := m.Called(ctx, tx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error {
	args := m.Called(ctx, tx, items)
	return args.Error(0)
}

func (m *MockOrderRepository) AppendTimeline(ctx context.Context, tx pgx.Tx, event *model.TimelineEvent) error {
	args := m.Called(ctx, tx, event)
	return args.Error(0)
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, []model.OrderItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*model.Order), args.Get(1).([]model.OrderItem), args.Error(2)
}

func (m *MockOrderRepository) GetByReference(ctx context.Context, reference string) (*model.Order, []model.OrderItem, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*model.Order), args.Get(1).([]model.OrderItem), args.Error(2)
}

func (m *MockOrderRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderRepository) GetByReferenceForUpdate(ctx context.Context, tx pgx.Tx, reference string) (*model.Order, error) {
	args := m.Called(ctx, tx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	args := m.Called(ctx, tx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) UpdateInternalNotes(ctx context.Context, tx pgx.Tx, id uuid.UUID, notes string, at time.Time) error {
	args := m.Called(ctx, tx, id, notes, at)
	return args.Error(0)
}

func (m *MockOrderRepository) UpdateReviewStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status string, at time.Time) error {
	args := m.Called(ctx, tx, id, status, at)
	return args.Error(0)
}

func (m *MockOrderRepository) SetPaymentAccessCode(ctx context.Context, id uuid.UUID, accessCode string) error {
	args := m.Called(ctx, id, accessCode)
	return args.Error(0)
}

func (m *MockOrderRepository) List(ctx context.Context, filter model.OrderFilter) ([]model.Order, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

func (m *MockOrderRepository) ListItems(ctx context.Context, orderIDs []uuid.UUID) (map[uuid.UUID][]model.OrderItem, error) {
	args := m.Called(ctx, orderIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID][]model.OrderItem), args.Error(1)
}

func (m *MockOrderRepository) ListTimeline(ctx context.Context, orderID uuid.UUID) ([]model.TimelineEvent, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.TimelineEvent), args.Error(1)
}

// MockCouponRepository is a mock implementation of CouponRepository.
type MockCouponRepository struct {
	mock.Mock
}

func (m *MockCouponRepository) GetByCode(ctx context.Context, code string) (*model.Coupon, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Coupon), args.Error(1)
}

func (m *MockCouponRepository) CountUsagesByEmail(ctx context.Context, couponID int64, email string) (int, error) {
	args := m.Called(ctx, couponID, email)
	return args.Int(0), args.Error(1)
}

func (m *MockCouponRepository) CountUsagesByEmailTx(ctx context.Context, tx pgx.Tx, couponID int64, email string) (int, error) {
	args := m.Called(ctx, tx, couponID, email)
	return args.Int(0), args.Error(1)
}

func (m *MockCouponRepository) Redeem(ctx context.Context, tx pgx.Tx, couponID int64) (bool, error) {
	args := m.Called(ctx, tx, couponID)
	return args.Bool(0), args.Error(1)
}

func (m *MockCouponRepository) RecordUsage(ctx context.Context, tx pgx.Tx, usage *model.CouponUsage) error {
	args := m.Called(ctx, tx, usage)
	return args.Error(0)
}

func (m *MockCouponRepository) Upsert(ctx context.Context, c *model.Coupon) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCouponRepository) List(ctx context.Context) ([]model.Coupon, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Coupon), args.Error(1)
}

// MockProductRepository is a mock implementation of ProductRepository.
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) List(ctx context.Context, category string, limit, offset int) ([]model.Product, error) {
	args := m.Called(ctx, category, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockProductRepository) GetByIDs(ctx context.Context, ids []int64) ([]model.Product, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockProductRepository) Create(ctx context.Context, product *model.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

// MockPromoRepository is a mock implementation of PromoRepository.
type MockPromoRepository struct {
	mock.Mock
}

func (m *MockPromoRepository) ListActive(ctx context.Context, now time.Time) ([]model.PromoRule, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.PromoRule), args.Error(1)
}

func (m *MockPromoRepository) Create(ctx context.Context, rule *model.PromoRule) error {
	args := m.Called(ctx, rule)
	return args.Error(0)
}

func (m *MockPromoRepository) List(ctx context.Context) ([]model.PromoRule, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.PromoRule), args.Error(1)
}

// MockZoneRepository is a mock implementation of ZoneRepository.
type MockZoneRepository struct {
	mock.Mock
}

func (m *MockZoneRepository) GetByCode(ctx context.Context, code string) (*model.DeliveryZone, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DeliveryZone), args.Error(1)
}

func (m *MockZoneRepository) ListActive(ctx context.Context) ([]model.DeliveryZone, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.DeliveryZone), args.Error(1)
}

func (m *MockZoneRepository) Upsert(ctx context.Context, zone *model.DeliveryZone) error {
	args := m.Called(ctx, zone)
	return args.Error(0)
}

// MockPricer is a mock implementation of Pricer.
type MockPricer struct {
	mock.Mock
}

func (m *MockPricer) Price(ctx context.Context, req pricing.Request) (*pricing.Quote, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pricing.Quote), args.Error(1)
}

// MockCouponValidator is a mock implementation of coupon.Validator.
type MockCouponValidator struct {
	mock.Mock
}

func (m *MockCouponValidator) Validate(ctx context.Context, code string, subtotal int64, customerEmail string) (*coupon.Result, error) {
	args := m.Called(ctx, code, subtotal, customerEmail)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*coupon.Result), args.Error(1)
}

// MockZoneQuoter is a mock implementation of ZoneQuoter.
type MockZoneQuoter struct {
	mock.Mock
}

func (m *MockZoneQuoter) Calculate(ctx context.Context, zoneCode string, subtotal int64) (*delivery.Quote, error) {
	args := m.Called(ctx, zoneCode, subtotal)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*delivery.Quote), args.Error(1)
}

func (m *MockZoneQuoter) ListZones(ctx context.Context) ([]model.DeliveryZone, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.DeliveryZone), args.Error(1)
}

// MockConfirmer is a mock implementation of PaymentConfirmer.
type MockConfirmer struct {
	mock.Mock
}

func (m *MockConfirmer) MarkPaid(ctx context.Context, reference, actor string) (*model.Order, bool, error) {
	args := m.Called(ctx, reference, actor)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*model.Order), args.Bool(1), args.Error(2)
}

// MockGateway is a mock implementation of payment.Gateway.
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) Initialize(ctx context.Context, req payment.InitializeRequest) (*payment.Initialization, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Initialization), args.Error(1)
}

func (m *MockGateway) Verify(ctx context.Context, reference string) (*payment.Verification, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Verification), args.Error(1)
}

// MockNotifier is a mock implementation of notification.Notifier.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyNewOrder(order model.Order, items []model.OrderItem) {
	m.Called(order, items)
}

func (m *MockNotifier) NotifyStatusChanged(order model.Order, previous, next model.OrderStatus) {
	m.Called(order, previous, next)
}

// MockLifecycle is a mock implementation of OrderLifecycle.
type MockLifecycle struct {
	mock.Mock
}

func (m *MockLifecycle) Transition(ctx context.Context, orderID uuid.UUID, next model.OrderStatus, actor string) (*model.Order, error) {
	args := m.Called(ctx, orderID, next, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockLifecycle) AddNote(ctx context.Context, orderID uuid.UUID, note, actor string) (*model.Order, error) {
	args := m.Called(ctx, orderID, note, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockLifecycle) ResolveReview(ctx context.Context, orderID uuid.UUID, decision, actor string) (*model.Order, error) {
	args := m.Called(ctx, orderID, decision, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockLifecycle) Timeline(ctx context.Context, orderID uuid.UUID) ([]model.TimelineEvent, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.TimelineEvent), args.Error(1)
}

// MockTokenIssuer is a mock implementation of TokenIssuer.
type MockTokenIssuer struct {
	mock.Mock
}

func (m *MockTokenIssuer) Issue(subject, email string) (string, time.Time, error) {
	args := m.Called(subject, email)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

// MockImporter is a mock implementation of CouponImporter.
type MockImporter struct {
	mock.Mock
}

func (m *MockImporter) Import(ctx context.Context, paths []string) (int, error) {
	args := m.Called(ctx, paths)
	return args.Int(0), args.Error(1)
}

// MockTx is a minimal mock implementation of pgx.Tx for testing.
type MockTx struct {
	mock.Mock
	committed  bool
	rolledBack bool
}

func (m *MockTx) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	m.committed = true
	return args.Error(0)
}

func (m *MockTx) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	m.rolledBack = true
	return args.Error(0)
}

// Stub methods to satisfy pgx.Tx interface - these are not used in our tests
func (m *MockTx) Begin(ctx context.Context) (pgx.Tx, error) { return nil, nil }
func (m *MockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (m *MockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (m *MockTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (m *MockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (m *MockTx) Exec(ctx context.Context, sql string, arguments ...any) (commandTag pgconn.CommandTag, err error) {
	return
}
func (m *MockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (m *MockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }
func (m *MockTx) Conn() *pgx.Conn                                               { return nil }
