package repository

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const defaultListLimit = 50

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

// BeginTx starts a new database transaction.
func (r *orderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// CreateOrder inserts a new order within the provided transaction.
func (r *orderRepository) CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	if order.PromoRuleIDs == nil {
		order.PromoRuleIDs = []int64{}
	}
	if order.RiskFlags == nil {
		order.RiskFlags = []string{}
	}

	query := `INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17,
			$18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29, $30, $31, $32, $33)`

	o := order
	_, err := tx.Exec(ctx, query,
		o.ID, o.Reference, o.UserID, o.CustomerName, o.CustomerEmail, o.CustomerPhone,
		o.ShippingAddress, o.Notes, o.Channel, o.Currency, o.SubtotalAmount, o.DeliveryFee,
		o.DiscountAmount, o.PromoDiscountAmount, o.GrandTotal, o.Status, o.DeliveryZoneCode,
		o.DeliveryZoneName, o.CouponCode, o.CouponID, o.PromoRuleIDs, o.RiskScore, o.RiskLevel,
		o.RiskFlags, o.ManualReviewStatus, o.PaymentAccessCode, o.InternalNotes, o.PaidAt,
		o.ProcessingAt, o.DeliveredAt, o.CancelledAt, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Str("reference", order.Reference).
			Msg("failed to create order")
		return fmt.Errorf("failed to create order: %w", err)
	}

	r.logger.Debug().
		Str("order_id", order.ID.String()).
		Msg("order created successfully")

	return nil
}

// CreateOrderItems inserts multiple order items within the provided transaction.
func (r *orderRepository) CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}

	query := `INSERT INTO order_items (` + orderItemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(query, item.ID, item.OrderID, item.ProductID, item.ProductName,
			item.Category, item.Quantity, item.UnitPrice, item.LineTotal)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(items); i++ {
		_, err := results.Exec()
		if err != nil {
			r.logger.Error().
				Err(err).
				Str("order_id", items[i].OrderID.String()).
				Int64("product_id", items[i].ProductID).
				Msg("failed to create order item")
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}

	r.logger.Debug().
		Int("count", len(items)).
		Msg("order items created successfully")

	return nil
}

// AppendTimeline adds one audit event within the provided transaction.
func (r *orderRepository) AppendTimeline(ctx context.Context, tx pgx.Tx, event *model.TimelineEvent) error {
	if event.Payload == nil {
		event.Payload = map[string]interface{}{}
	}

	query := `
		INSERT INTO order_timeline_events (order_id, event_type, message, actor, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	err := tx.QueryRow(ctx, query,
		event.OrderID, event.EventType, event.Message, event.Actor, event.Payload, event.CreatedAt,
	).Scan(&event.ID)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", event.OrderID.String()).
			Str("event_type", event.EventType).
			Msg("failed to append timeline event")
		return fmt.Errorf("failed to append timeline event: %w", err)
	}
	return nil
}

// GetByID retrieves an order by its ID along with its items.
func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, []model.OrderItem, error) {
	return r.getWithItems(ctx, "id = $1", id, id.String())
}

// GetByReference retrieves an order by its payment reference along with its items.
func (r *orderRepository) GetByReference(ctx context.Context, reference string) (*model.Order, []model.OrderItem, error) {
	return r.getWithItems(ctx, "payment_reference = $1", reference, reference)
}

func (r *orderRepository) getWithItems(ctx context.Context, where string, arg any, label string) (*model.Order, []model.OrderItem, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE ` + where

	order, err := scanOrder(r.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if isNoRows(err) {
			r.logger.Debug().Str("order", label).Msg("order not found")
			return nil, nil, nil
		}
		r.logger.Error().Err(err).Str("order", label).Msg("failed to query order")
		return nil, nil, fmt.Errorf("failed to query order: %w", err)
	}

	items, err := r.ListItems(ctx, []uuid.UUID{order.ID})
	if err != nil {
		return nil, nil, err
	}

	return order, items[order.ID], nil
}

// GetForUpdate locks the order row for the rest of the transaction.
func (r *orderRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, error) {
	return r.lockOrder(ctx, tx, "id = $1", id, id.String())
}

// GetByReferenceForUpdate locks the order row identified by its payment reference.
func (r *orderRepository) GetByReferenceForUpdate(ctx context.Context, tx pgx.Tx, reference string) (*model.Order, error) {
	return r.lockOrder(ctx, tx, "payment_reference = $1", reference, reference)
}

func (r *orderRepository) lockOrder(ctx context.Context, tx pgx.Tx, where string, arg any, label string) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE ` + where + ` FOR UPDATE`

	order, err := scanOrder(tx.QueryRow(ctx, query, arg))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order", label).Msg("failed to lock order")
		return nil, fmt.Errorf("failed to lock order: %w", err)
	}
	return order, nil
}

// UpdateStatus persists the order's status and lifecycle timestamps.
func (r *orderRepository) UpdateStatus(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	query := `
		UPDATE orders
		SET status = $2, paid_at = $3, processing_at = $4, delivered_at = $5,
			cancelled_at = $6, updated_at = $7
		WHERE id = $1
	`

	tag, err := tx.Exec(ctx, query, order.ID, order.Status, order.PaidAt, order.ProcessingAt,
		order.DeliveredAt, order.CancelledAt, order.UpdatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to update order status")
		return fmt.Errorf("failed to update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrOrderNotFound
	}
	return nil
}

// UpdateInternalNotes persists the order's internal notes.
func (r *orderRepository) UpdateInternalNotes(ctx context.Context, tx pgx.Tx, id uuid.UUID, notes string, at time.Time) error {
	tag, err := tx.Exec(ctx, `UPDATE orders SET internal_notes = $2, updated_at = $3 WHERE id = $1`, id, notes, at)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to update internal notes")
		return fmt.Errorf("failed to update internal notes: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrOrderNotFound
	}
	return nil
}

// UpdateReviewStatus persists the manual review decision.
func (r *orderRepository) UpdateReviewStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status string, at time.Time) error {
	tag, err := tx.Exec(ctx, `UPDATE orders SET manual_review_status = $2, updated_at = $3 WHERE id = $1`, id, status, at)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to update review status")
		return fmt.Errorf("failed to update review status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrOrderNotFound
	}
	return nil
}

// SetPaymentAccessCode stores the gateway access code for a card order.
func (r *orderRepository) SetPaymentAccessCode(ctx context.Context, id uuid.UUID, accessCode string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE orders SET paystack_access_code = $2, updated_at = NOW() WHERE id = $1`, id, accessCode)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to store payment access code")
		return fmt.Errorf("failed to store payment access code: %w", err)
	}
	return nil
}

// List retrieves orders matching the filter, newest first.
func (r *orderRepository) List(ctx context.Context, filter model.OrderFilter) ([]model.Order, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE ($1 = '' OR status = $1)
		  AND ($2 = '' OR manual_review_status = $2)
		  AND ($3 = '' OR user_id = $3)
		ORDER BY created_at DESC, id DESC
		LIMIT $4 OFFSET $5
	`

	rows, err := r.pool.Query(ctx, query,
		string(filter.Status), filter.ManualReviewStatus, filter.UserID, limit, filter.Offset)
	if err != nil {
		r.logger.Error().Err(err).Str("status", string(filter.Status)).Msg("failed to list orders")
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := []model.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order row")
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, *o)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order rows")
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	return orders, nil
}

// ListItems retrieves the line items of several orders keyed by order ID.
func (r *orderRepository) ListItems(ctx context.Context, orderIDs []uuid.UUID) (map[uuid.UUID][]model.OrderItem, error) {
	out := make(map[uuid.UUID][]model.OrderItem, len(orderIDs))
	if len(orderIDs) == 0 {
		return out, nil
	}

	query := `
		SELECT ` + orderItemColumns + `
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY product_name, id
	`

	rows, err := r.pool.Query(ctx, query, orderIDs)
	if err != nil {
		r.logger.Error().Err(err).Int("orders", len(orderIDs)).Msg("failed to query order items")
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		item, err := scanOrderItem(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order item row")
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		out[item.OrderID] = append(out[item.OrderID], item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order item rows")
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}

	return out, nil
}

// ListTimeline retrieves an order's audit events, newest first.
func (r *orderRepository) ListTimeline(ctx context.Context, orderID uuid.UUID) ([]model.TimelineEvent, error) {
	query := `
		SELECT id, order_id, event_type, message, actor, payload, created_at
		FROM order_timeline_events
		WHERE order_id = $1
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to query timeline")
		return nil, fmt.Errorf("failed to query timeline: %w", err)
	}
	defer rows.Close()

	events := []model.TimelineEvent{}
	for rows.Next() {
		var e model.TimelineEvent
		if err := rows.Scan(&e.ID, &e.OrderID, &e.EventType, &e.Message, &e.Actor, &e.Payload, &e.CreatedAt); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan timeline row")
			return nil, fmt.Errorf("failed to scan timeline event: %w", err)
		}
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating timeline: %w", err)
	}

	return events, nil
}
