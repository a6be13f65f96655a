package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/smartcity/parking/internal/domain"
)

// Schema creates the tables the repository reads and writes
const Schema = `
CREATE TABLE IF NOT EXISTS zones (
	id        INTEGER PRIMARY KEY,
	code      TEXT NOT NULL UNIQUE,
	name      TEXT NOT NULL,
	latitude  DOUBLE PRECISION NOT NULL,
	longitude DOUBLE PRECISION NOT NULL,
	capacity  INTEGER NOT NULL CHECK (capacity > 0)
);

CREATE TABLE IF NOT EXISTS prediction_logs (
	id             UUID PRIMARY KEY,
	zone_id        INTEGER NOT NULL,
	zone_code      TEXT NOT NULL,
	target_time    TIMESTAMPTZ NOT NULL,
	occupancy_rate DOUBLE PRECISION NOT NULL,
	confidence     TEXT NOT NULL,
	fallback_ratio DOUBLE PRECISION NOT NULL,
	is_fallback    BOOLEAN NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL
);
`

// PostgresRepository implements domain.DataRepository
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Migrate applies Schema
func (r *PostgresRepository) Migrate(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("postgres: failed to apply schema: %w", err)
	}
	return nil
}

// ListZones retrieves the configured zones ordered by id
func (r *PostgresRepository) ListZones(ctx context.Context) ([]domain.Zone, error) {
	query := `
		SELECT id, code, name, latitude, longitude, capacity
		FROM zones
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query zones: %w", err)
	}
	defer rows.Close()

	var results []domain.Zone
	for rows.Next() {
		var z domain.Zone
		if err := rows.Scan(&z.ID, &z.Code, &z.Name, &z.Latitude, &z.Longitude, &z.Capacity); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan zone row: %w", err)
		}
		results = append(results, z)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: failed to read zones: %w", err)
	}

	return results, nil
}

// Health checks database connectivity
func (r *PostgresRepository) Health(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		return fmt.Errorf("postgres: health check failed: %w", err)
	}
	return nil
}

// SavePredictionLog persists a served prediction to PostgreSQL
func (r *PostgresRepository) SavePredictionLog(ctx context.Context, entry domain.PredictionLog) error {
	query := `
		INSERT INTO prediction_logs (
			id, zone_id, zone_code, target_time, occupancy_rate,
			confidence, fallback_ratio, is_fallback, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.pool.Exec(ctx, query,
		entry.ID, entry.ZoneID, entry.ZoneCode, entry.Target, entry.Rate,
		string(entry.Confidence), entry.FallbackRatio, entry.IsFallback, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: failed to save prediction log: %w", err)
	}

	return nil
}
