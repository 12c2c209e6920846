package repository

import (
	"context"
	"fmt"

	"storefront/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

type notificationLogRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewNotificationLogRepository creates a new PostgreSQL-backed notification log.
func NewNotificationLogRepository(pool *pgxpool.Pool, logger zerolog.Logger) NotificationLogRepository {
	return &notificationLogRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "notification_log").Logger(),
	}
}

func (r *notificationLogRepository) Insert(ctx context.Context, entry *model.NotificationLog) error {
	payload := entry.Payload
	if payload == nil {
		payload = map[string]interface{}{}
	}

	query := `
		INSERT INTO notification_logs (order_id, event_type, channel, recipient, status, error_message, payload)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(ctx, query, entry.OrderID, entry.EventType, entry.Channel,
		entry.Recipient, entry.Status, entry.ErrorMessage, payload,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("event_type", entry.EventType).Msg("failed to write notification log")
		return fmt.Errorf("failed to write notification log: %w", err)
	}
	return nil
}
