// Package lifecycle moves orders through their statuses and keeps the audit timeline.
package lifecycle

import (
	"context"
	"fmt"
	"strings"
	"time"

	"storefront/internal/metrics"
	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// Store is the order persistence the machine needs.
type Store interface {
	BeginTx(ctx context.Context) (pgx.Tx, error)
	GetForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, error)
	GetByReferenceForUpdate(ctx context.Context, tx pgx.Tx, reference string) (*model.Order, error)
	UpdateStatus(ctx context.Context, tx pgx.Tx, order *model.Order) error
	UpdateInternalNotes(ctx context.Context, tx pgx.Tx, id uuid.UUID, notes string, at time.Time) error
	UpdateReviewStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status string, at time.Time) error
	AppendTimeline(ctx context.Context, tx pgx.Tx, event *model.TimelineEvent) error
	ListTimeline(ctx context.Context, orderID uuid.UUID) ([]model.TimelineEvent, error)
}

// Notifier is told about committed status changes. Implementations must not block.
type Notifier interface {
	NotifyStatusChanged(order model.Order, previous, next model.OrderStatus)
}

// Machine applies status transitions.
type Machine struct {
	store    Store
	notifier Notifier
	metrics  *metrics.Metrics
	now      func() time.Time
	logger   zerolog.Logger
}

// NewMachine creates a lifecycle machine. A nil clock defaults to time.Now.
func NewMachine(store Store, notifier Notifier, m *metrics.Metrics, now func() time.Time, logger zerolog.Logger) *Machine {
	if now == nil {
		now = time.Now
	}
	return &Machine{
		store:    store,
		notifier: notifier,
		metrics:  m,
		now:      now,
		logger:   logger.With().Str("component", "lifecycle").Logger(),
	}
}

// InitialStatus returns the status a new order starts in.
// WhatsApp orders are confirmed out of band and skip payment capture.
func InitialStatus(channel model.Channel) model.OrderStatus {
	if channel == model.ChannelWhatsApp {
		return model.StatusProcessing
	}
	return model.StatusPendingPayment
}

// Apply moves order to next and stamps the matching timestamp.
// It reports false when order is already in next.
func Apply(order *model.Order, next model.OrderStatus, at time.Time) (bool, error) {
	next, err := model.ParseOrderStatus(string(next))
	if err != nil {
		return false, err
	}
	if order.Status == next {
		return false, nil
	}
	if order.Status.Terminal() {
		return false, model.ErrOrderTerminal.WithDetail(map[string]string{
			"reference": order.Reference,
			"status":    string(order.Status),
		})
	}

	switch next {
	case model.StatusPaid:
		if order.PaidAt == nil {
			order.PaidAt = &at
		}
	case model.StatusProcessing:
		order.ProcessingAt = &at
	case model.StatusDelivered:
		order.DeliveredAt = &at
	case model.StatusCancelled:
		order.CancelledAt = &at
	}
	order.Status = next
	order.UpdatedAt = at
	return true, nil
}

// Transition moves the order to next on behalf of actor.
func (m *Machine) Transition(ctx context.Context, orderID uuid.UUID, next model.OrderStatus, actor string) (*model.Order, error) {
	var (
		order    *model.Order
		previous model.OrderStatus
		changed  bool
	)

	err := m.inTx(ctx, func(tx pgx.Tx) error {
		var err error
		order, err = m.store.GetForUpdate(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return model.ErrOrderNotFound
		}

		previous = order.Status
		changed, err = m.changeStatus(ctx, tx, order, next, actor)
		return err
	})
	if err != nil {
		return nil, err
	}

	if changed {
		m.afterTransition(*order, previous)
	}
	return order, nil
}

// MarkPaid confirms payment for the order with reference. Only pending orders
// move to paid; the second return value is false when nothing changed.
func (m *Machine) MarkPaid(ctx context.Context, reference, actor string) (*model.Order, bool, error) {
	var (
		order   *model.Order
		changed bool
	)

	err := m.inTx(ctx, func(tx pgx.Tx) error {
		var err error
		order, err = m.store.GetByReferenceForUpdate(ctx, tx, reference)
		if err != nil {
			return err
		}
		if order == nil {
			return model.ErrOrderNotFound
		}
		if order.Status != model.StatusPendingPayment {
			m.logger.Debug().
				Str("reference", reference).
				Str("status", string(order.Status)).
				Msg("payment confirmation ignored")
			return nil
		}

		changed, err = m.changeStatus(ctx, tx, order, model.StatusPaid, actor)
		return err
	})
	if err != nil {
		return nil, false, err
	}

	if changed {
		m.afterTransition(*order, model.StatusPendingPayment)
	}
	return order, changed, nil
}

func (m *Machine) changeStatus(ctx context.Context, tx pgx.Tx, order *model.Order, next model.OrderStatus, actor string) (bool, error) {
	previous := order.Status
	now := m.now()

	changed, err := Apply(order, next, now)
	if err != nil || !changed {
		return false, err
	}

	if err := m.store.UpdateStatus(ctx, tx, order); err != nil {
		return false, err
	}

	event := &model.TimelineEvent{
		OrderID:   order.ID,
		EventType: model.EventStatusChanged,
		Message:   fmt.Sprintf("Status changed from %s to %s", previous.Label(), next.Label()),
		Actor:     actor,
		Payload: map[string]interface{}{
			"previousStatus": string(previous),
			"nextStatus":     string(next),
		},
		CreatedAt: now,
	}
	if err := m.store.AppendTimeline(ctx, tx, event); err != nil {
		return false, err
	}
	return true, nil
}

func (m *Machine) afterTransition(order model.Order, previous model.OrderStatus) {
	m.metrics.RecordStatusTransition(string(previous), string(order.Status))
	m.logger.Info().
		Str("order_id", order.ID.String()).
		Str("reference", order.Reference).
		Str("from", string(previous)).
		Str("to", string(order.Status)).
		Msg("order status changed")

	if m.notifier != nil {
		m.notifier.NotifyStatusChanged(order, previous, order.Status)
	}
}

// AddNote appends an internal admin note. Notes are allowed on closed orders.
func (m *Machine) AddNote(ctx context.Context, orderID uuid.UUID, note, actor string) (*model.Order, error) {
	note = strings.TrimSpace(note)
	if note == "" {
		return nil, model.NewValidationError("note is required")
	}

	var order *model.Order
	err := m.inTx(ctx, func(tx pgx.Tx) error {
		var err error
		order, err = m.store.GetForUpdate(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return model.ErrOrderNotFound
		}

		now := m.now()
		order.InternalNotes = AppendNote(order.InternalNotes, note, actor, now)
		order.UpdatedAt = now
		if err := m.store.UpdateInternalNotes(ctx, tx, order.ID, order.InternalNotes, now); err != nil {
			return err
		}

		return m.store.AppendTimeline(ctx, tx, &model.TimelineEvent{
			OrderID:   order.ID,
			EventType: model.EventInternalNote,
			Message:   note,
			Actor:     actor,
			CreatedAt: now,
		})
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// AppendNote adds one timestamped line to existing notes.
func AppendNote(existing, note, actor string, at time.Time) string {
	line := fmt.Sprintf("[%s] %s: %s", at.UTC().Format(time.RFC3339), actor, note)
	if strings.TrimSpace(existing) == "" {
		return line
	}
	return existing + "\n" + line
}

// ResolveReview records an admin decision on a queued risk review.
func (m *Machine) ResolveReview(ctx context.Context, orderID uuid.UUID, decision, actor string) (*model.Order, error) {
	decision = strings.ToLower(strings.TrimSpace(decision))
	if decision != model.ReviewApproved && decision != model.ReviewRejected {
		return nil, model.NewValidationError("decision must be approved or rejected")
	}

	var order *model.Order
	err := m.inTx(ctx, func(tx pgx.Tx) error {
		var err error
		order, err = m.store.GetForUpdate(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return model.ErrOrderNotFound
		}
		if order.ManualReviewStatus != model.ReviewQueued {
			return model.ErrReviewNotQueued.WithDetail(map[string]string{
				"reference":          order.Reference,
				"manualReviewStatus": order.ManualReviewStatus,
			})
		}

		now := m.now()
		order.ManualReviewStatus = decision
		order.UpdatedAt = now
		if err := m.store.UpdateReviewStatus(ctx, tx, order.ID, decision, now); err != nil {
			return err
		}

		return m.store.AppendTimeline(ctx, tx, &model.TimelineEvent{
			OrderID:   order.ID,
			EventType: model.EventReviewResolved,
			Message:   fmt.Sprintf("Risk review %s", decision),
			Actor:     actor,
			Payload: map[string]interface{}{
				"decision":  decision,
				"riskLevel": order.RiskLevel,
				"riskScore": order.RiskScore,
			},
			CreatedAt: now,
		})
	})
	if err != nil {
		return nil, err
	}

	m.logger.Info().Str("order_id", orderID.String()).Str("decision", decision).Msg("risk review resolved")
	return order, nil
}

// Timeline lists the order's events, newest first.
func (m *Machine) Timeline(ctx context.Context, orderID uuid.UUID) ([]model.TimelineEvent, error) {
	events, err := m.store.ListTimeline(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list timeline: %w", err)
	}
	return events, nil
}

// inTx runs fn in a transaction, committing when it returns nil.
func (m *Machine) inTx(ctx context.Context, fn func(tx pgx.Tx) error) (err error) {
	tx, err := m.store.BeginTx(ctx)
	if err != nil {
		m.logger.Error().Err(err).Msg("failed to begin transaction")
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				m.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		m.logger.Error().Err(err).Msg("failed to commit transaction")
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
