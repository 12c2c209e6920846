package repository

import (
	"context"
	"fmt"

	"storefront/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

type zoneRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewZoneRepository creates a new PostgreSQL-backed delivery zone repository.
func NewZoneRepository(pool *pgxpool.Pool, logger zerolog.Logger) ZoneRepository {
	return &zoneRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "zone").Logger(),
	}
}

func (r *zoneRepository) GetByCode(ctx context.Context, code string) (*model.DeliveryZone, error) {
	z, err := scanZone(r.pool.QueryRow(ctx, `SELECT `+zoneColumns+` FROM delivery_zones WHERE code = $1`, code))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("zone", code).Msg("failed to query delivery zone")
		return nil, fmt.Errorf("failed to query delivery zone: %w", err)
	}
	return z, nil
}

func (r *zoneRepository) ListActive(ctx context.Context) ([]model.DeliveryZone, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+zoneColumns+` FROM delivery_zones WHERE is_active ORDER BY name`)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to list delivery zones")
		return nil, fmt.Errorf("failed to list delivery zones: %w", err)
	}
	defer rows.Close()

	zones := []model.DeliveryZone{}
	for rows.Next() {
		z, err := scanZone(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan delivery zone: %w", err)
		}
		zones = append(zones, *z)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating delivery zones: %w", err)
	}
	return zones, nil
}

func (r *zoneRepository) Upsert(ctx context.Context, zone *model.DeliveryZone) error {
	query := `
		INSERT INTO delivery_zones (code, name, flat_fee, is_covered, is_active)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (code) DO UPDATE SET
			name = EXCLUDED.name,
			flat_fee = EXCLUDED.flat_fee,
			is_covered = EXCLUDED.is_covered,
			is_active = EXCLUDED.is_active,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query, zone.Code, zone.Name, zone.FlatFee, zone.IsCovered, zone.IsActive).
		Scan(&zone.ID, &zone.CreatedAt, &zone.UpdatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("zone", zone.Code).Msg("failed to upsert delivery zone")
		return fmt.Errorf("failed to upsert delivery zone: %w", err)
	}
	return nil
}
