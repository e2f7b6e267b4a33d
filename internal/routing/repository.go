package routing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/UtkarshSingh-06/Taxigo/pkg/common"
)

// Repository handles route optimization data access
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new routing repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// SaveOptimization persists an optimization, assigning identity and timestamps.
func (r *Repository) SaveOptimization(ctx context.Context, record *OptimizationRecord) error {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	now := time.Now().UTC()
	record.CreatedAt = now
	record.UpdatedAt = now

	route, err := json.Marshal(record.Route)
	if err != nil {
		return fmt.Errorf("marshal route: %w", err)
	}
	alternatives, err := json.Marshal(record.Alternatives)
	if err != nil {
		return fmt.Errorf("marshal alternatives: %w", err)
	}
	updates, err := json.Marshal(record.RealtimeUpdates)
	if err != nil {
		return fmt.Errorf("marshal realtime updates: %w", err)
	}

	query := `
		INSERT INTO route_optimizations (
			id, trip_id, driver_id,
			origin_lat, origin_lng, origin_address,
			dest_lat, dest_lng, dest_address,
			route, encoded_polyline, distance_km, estimated_minutes,
			traffic_factor, safety_score, optimization_score,
			alternatives, realtime_updates, status, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11,
			$12, $13, $14, $15, $16, $17, $18, $19, $20, $21
		)
	`

	_, err = r.db.Exec(ctx, query,
		record.ID, record.TripID, record.DriverID,
		record.Origin.Lat, record.Origin.Lng, record.Origin.Address,
		record.Destination.Lat, record.Destination.Lng, record.Destination.Address,
		route, record.EncodedPolyline, record.DistanceKm, record.EstimatedTime,
		record.TrafficFactor, record.SafetyScore, record.OptimizationScore,
		alternatives, updates, record.Status, record.CreatedAt, record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert optimization: %w", err)
	}
	return nil
}

// GetOptimization fetches an optimization by ID.
func (r *Repository) GetOptimization(ctx context.Context, id uuid.UUID) (*OptimizationRecord, error) {
	query := `
		SELECT id, trip_id, driver_id,
			   origin_lat, origin_lng, origin_address,
			   dest_lat, dest_lng, dest_address,
			   route, encoded_polyline, distance_km, estimated_minutes,
			   traffic_factor, safety_score, optimization_score,
			   alternatives, realtime_updates, status, created_at, updated_at
		FROM route_optimizations
		WHERE id = $1
	`

	record := &OptimizationRecord{}
	var route, alternatives, updates []byte
	err := r.db.QueryRow(ctx, query, id).Scan(
		&record.ID, &record.TripID, &record.DriverID,
		&record.Origin.Lat, &record.Origin.Lng, &record.Origin.Address,
		&record.Destination.Lat, &record.Destination.Lng, &record.Destination.Address,
		&route, &record.EncodedPolyline, &record.DistanceKm, &record.EstimatedTime,
		&record.TrafficFactor, &record.SafetyScore, &record.OptimizationScore,
		&alternatives, &updates, &record.Status, &record.CreatedAt, &record.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.NewNotFoundError("route optimization not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get optimization: %w", err)
	}

	if err := json.Unmarshal(route, &record.Route); err != nil {
		return nil, fmt.Errorf("unmarshal route: %w", err)
	}
	if len(alternatives) > 0 {
		if err := json.Unmarshal(alternatives, &record.Alternatives); err != nil {
			return nil, fmt.Errorf("unmarshal alternatives: %w", err)
		}
	}
	if len(updates) > 0 {
		if err := json.Unmarshal(updates, &record.RealtimeUpdates); err != nil {
			return nil, fmt.Errorf("unmarshal realtime updates: %w", err)
		}
	}

	return record, nil
}

// AppendRealtimeUpdate appends one update to the optimization's log.
func (r *Repository) AppendRealtimeUpdate(ctx context.Context, id uuid.UUID, update *RealtimeUpdate) error {
	payload, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("marshal update: %w", err)
	}

	query := `
		UPDATE route_optimizations
		SET realtime_updates = realtime_updates || $2::jsonb,
			updated_at = now()
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query, id, payload)
	if err != nil {
		return fmt.Errorf("append realtime update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return common.NewNotFoundError("route optimization not found")
	}
	return nil
}

// UpdateStatus moves the optimization's lifecycle state.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status OptimizationStatus) error {
	query := `
		UPDATE route_optimizations
		SET status = $2, updated_at = now()
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return common.NewNotFoundError("route optimization not found")
	}
	return nil
}
