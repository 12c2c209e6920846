package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"storefront/internal/auth"
	"storefront/internal/coupon"
	"storefront/internal/delivery"
	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// AdminSubject is the token subject issued to the back office.
const AdminSubject = "admin"

// OrderLifecycle is the part of the lifecycle machine the back office drives.
type OrderLifecycle interface {
	Transition(ctx context.Context, orderID uuid.UUID, next model.OrderStatus, actor string) (*model.Order, error)
	AddNote(ctx context.Context, orderID uuid.UUID, note, actor string) (*model.Order, error)
	ResolveReview(ctx context.Context, orderID uuid.UUID, decision, actor string) (*model.Order, error)
	Timeline(ctx context.Context, orderID uuid.UUID) ([]model.TimelineEvent, error)
}

// TokenIssuer signs bearer tokens.
type TokenIssuer interface {
	Issue(subject, email string) (string, time.Time, error)
}

// CouponImporter bulk loads coupon files.
type CouponImporter interface {
	Import(ctx context.Context, paths []string) (int, error)
}

// adminService implements AdminService.
type adminService struct {
	password   string
	tokens     TokenIssuer
	orderRepo  repository.OrderRepository
	couponRepo repository.CouponRepository
	promoRepo  repository.PromoRepository
	zoneRepo   repository.ZoneRepository
	lifecycle  OrderLifecycle
	importer   CouponImporter
	importDir  string
	logger     zerolog.Logger
}

// AdminDeps groups the collaborators of the admin service.
type AdminDeps struct {
	Password  string
	Tokens    TokenIssuer
	Orders    repository.OrderRepository
	Coupons   repository.CouponRepository
	Promos    repository.PromoRepository
	Zones     repository.ZoneRepository
	Lifecycle OrderLifecycle
	Importer  CouponImporter
	// ImportDir is the only directory admin imports may read from.
	ImportDir string
}

// NewAdminService creates a new admin service.
// A nil importer or an empty import directory disables coupon imports.
func NewAdminService(deps AdminDeps, logger zerolog.Logger) AdminService {
	return &adminService{
		password:   deps.Password,
		tokens:     deps.Tokens,
		orderRepo:  deps.Orders,
		couponRepo: deps.Coupons,
		promoRepo:  deps.Promos,
		zoneRepo:   deps.Zones,
		lifecycle:  deps.Lifecycle,
		importer:   deps.Importer,
		importDir:  absDir(deps.ImportDir),
		logger:     logger.With().Str("service", "admin").Logger(),
	}
}

// Login exchanges the configured admin password for a bearer token.
func (s *adminService) Login(ctx context.Context, password string) (*model.Session, error) {
	if !auth.CheckPassword(s.password, password) {
		s.logger.Warn().Msg("admin login rejected")
		return nil, model.ErrUnauthorised.WithMessage("Invalid admin password")
	}

	token, expiresAt, err := s.tokens.Issue(AdminSubject, "")
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to issue admin token")
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.logger.Info().Time("expires_at", expiresAt).Msg("admin signed in")
	return &model.Session{Token: token, ExpiresAt: expiresAt}, nil
}

// ListOrders retrieves orders matching the filter with their items.
func (s *adminService) ListOrders(ctx context.Context, filter model.OrderFilter) ([]model.OrderDetails, error) {
	if filter.Status != "" {
		status, err := model.ParseOrderStatus(string(filter.Status))
		if err != nil {
			return nil, model.ErrInvalidStatus.WithMessage("Invalid status filter")
		}
		filter.Status = status
	}
	switch filter.ManualReviewStatus {
	case "", model.ReviewClear, model.ReviewQueued, model.ReviewApproved, model.ReviewRejected:
	default:
		return nil, model.NewValidationError("Invalid review filter")
	}

	orders, err := listWithItems(ctx, s.orderRepo, filter)
	if err != nil {
		s.logger.Error().Err(err).Str("status", string(filter.Status)).Msg("failed to list orders")
		return nil, err
	}
	return orders, nil
}

// UpdateStatus moves an order through its lifecycle and returns it with its items.
func (s *adminService) UpdateStatus(ctx context.Context, id uuid.UUID, status, actor string) (*model.OrderDetails, error) {
	next, err := model.ParseOrderStatus(status)
	if err != nil {
		return nil, err
	}

	order, err := s.lifecycle.Transition(ctx, id, next, actor)
	if err != nil {
		return nil, err
	}

	_, items, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to load order items")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if items == nil {
		items = []model.OrderItem{}
	}
	return &model.OrderDetails{Order: *order, Items: items}, nil
}

// AddNote appends an internal note to an order.
func (s *adminService) AddNote(ctx context.Context, id uuid.UUID, note, actor string) (*model.Order, error) {
	return s.lifecycle.AddNote(ctx, id, note, actor)
}

// ResolveReview approves or rejects a queued risk review.
func (s *adminService) ResolveReview(ctx context.Context, id uuid.UUID, decision, actor string) (*model.Order, error) {
	return s.lifecycle.ResolveReview(ctx, id, strings.ToLower(strings.TrimSpace(decision)), actor)
}

// Timeline lists an order's audit events, newest first.
func (s *adminService) Timeline(ctx context.Context, id uuid.UUID) ([]model.TimelineEvent, error) {
	return s.lifecycle.Timeline(ctx, id)
}

// CreateCoupon validates and stores a coupon.
func (s *adminService) CreateCoupon(ctx context.Context, c *model.Coupon) (*model.Coupon, error) {
	if c == nil {
		return nil, model.NewValidationError("coupon payload is required")
	}
	c.Code = strings.ToUpper(strings.TrimSpace(c.Code))
	if err := c.Validate(); err != nil {
		return nil, err
	}

	if err := s.couponRepo.Upsert(ctx, c); err != nil {
		s.logger.Error().Err(err).Str("coupon_code", c.Code).Msg("failed to store coupon")
		return nil, fmt.Errorf("failed to store coupon: %w", err)
	}

	s.logger.Info().Str("coupon_code", c.Code).Int64("coupon_id", c.ID).Msg("coupon stored")
	return c, nil
}

// ListCoupons retrieves every coupon.
func (s *adminService) ListCoupons(ctx context.Context) ([]model.Coupon, error) {
	coupons, err := s.couponRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list coupons: %w", err)
	}
	return coupons, nil
}

// ImportCoupons loads coupon files and upserts every definition.
func (s *adminService) ImportCoupons(ctx context.Context, paths []string) (int, error) {
	if s.importer == nil || s.importDir == "" {
		return 0, model.NewValidationError("coupon import is not configured")
	}
	if len(paths) == 0 {
		return 0, model.NewValidationError("paths are required")
	}

	resolved := make([]string, 0, len(paths))
	for _, raw := range paths {
		p, err := confineToDir(s.importDir, raw)
		if err != nil {
			s.logger.Warn().Str("path", raw).Msg("coupon import path rejected")
			return 0, err
		}
		resolved = append(resolved, p)
	}
	return s.importer.Import(ctx, resolved)
}

// confineToDir resolves raw against the working directory and requires
// the result to sit inside dir. dir must be absolute.
func confineToDir(dir, raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", model.NewValidationError("paths cannot be blank")
	}
	target, err := filepath.Abs(raw)
	if err != nil {
		return "", model.NewValidationError(fmt.Sprintf("invalid path %q", raw))
	}
	rel, err := filepath.Rel(dir, target)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", model.NewValidationError(fmt.Sprintf("path %q is outside the coupon import directory", raw))
	}
	return target, nil
}

func absDir(dir string) string {
	if strings.TrimSpace(dir) == "" {
		return ""
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return filepath.Clean(dir)
	}
	return abs
}

// CreatePromo validates and stores a promotional rule.
func (s *adminService) CreatePromo(ctx context.Context, rule *model.PromoRule) (*model.PromoRule, error) {
	if rule == nil {
		return nil, model.NewValidationError("promo payload is required")
	}
	rule.Name = strings.TrimSpace(rule.Name)
	if err := validatePromo(rule); err != nil {
		return nil, err
	}

	if err := s.promoRepo.Create(ctx, rule); err != nil {
		s.logger.Error().Err(err).Str("name", rule.Name).Msg("failed to store promo rule")
		return nil, fmt.Errorf("failed to store promo rule: %w", err)
	}

	s.logger.Info().Int64("rule_id", rule.ID).Str("rule_type", string(rule.RuleType)).Msg("promo rule stored")
	return rule, nil
}

// ListPromos retrieves every promotional rule.
func (s *adminService) ListPromos(ctx context.Context) ([]model.PromoRule, error) {
	rules, err := s.promoRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list promo rules: %w", err)
	}
	return rules, nil
}

// UpsertZone validates and stores a delivery zone.
func (s *adminService) UpsertZone(ctx context.Context, zone *model.DeliveryZone) (*model.DeliveryZone, error) {
	if zone == nil {
		return nil, model.NewValidationError("zone payload is required")
	}
	zone.Code = delivery.NormaliseZoneCode(zone.Code)
	zone.Name = strings.TrimSpace(zone.Name)
	switch {
	case zone.Code == "":
		return nil, model.NewValidationError("code is required")
	case zone.Name == "":
		return nil, model.NewValidationError("name is required")
	case zone.FlatFee < 0:
		return nil, model.NewValidationError("flatFee cannot be negative")
	}

	if err := s.zoneRepo.Upsert(ctx, zone); err != nil {
		s.logger.Error().Err(err).Str("zone", zone.Code).Msg("failed to store zone")
		return nil, fmt.Errorf("failed to store zone: %w", err)
	}
	return zone, nil
}

func validatePromo(rule *model.PromoRule) error {
	if rule.Name == "" {
		return model.NewValidationError("name is required")
	}
	if rule.MinCartAmount < 0 {
		return model.NewValidationError("minCartAmount cannot be negative")
	}
	if rule.Category != nil && !model.ValidCategory(*rule.Category) {
		return model.NewValidationError("category must be car or grocery")
	}

	switch rule.RuleType {
	case model.PromoDiscount:
		return model.ValidateDiscount(rule.DiscountType, rule.DiscountValue)
	case model.PromoBOGO:
		if rule.BogoProductID == nil {
			return model.NewValidationError("bogoProductId is required for bogo rules")
		}
		if rule.BogoBuyQty < 1 || rule.BogoGetQty < 1 {
			return model.NewValidationError("bogoBuyQty and bogoGetQty must be at least 1")
		}
		return nil
	default:
		return model.NewValidationError("ruleType must be discount or bogo")
	}
}

var _ CouponImporter = (*coupon.Importer)(nil)
