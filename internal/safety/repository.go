package safety

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository handles safety analytics data access
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new safety repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// SaveAnalytics persists an analysis, assigning identity and timestamp.
func (r *Repository) SaveAnalytics(ctx context.Context, record *AnalyticsRecord) error {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	factors, err := json.Marshal(record.Factors)
	if err != nil {
		return fmt.Errorf("marshal factors: %w", err)
	}
	prediction, err := json.Marshal(record.Prediction)
	if err != nil {
		return fmt.Errorf("marshal prediction: %w", err)
	}

	query := `
		INSERT INTO safety_analytics (
			id, trip_id,
			origin_lat, origin_lng, dest_lat, dest_lng,
			factors, prediction, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err = r.db.Exec(ctx, query,
		record.ID, record.TripID,
		record.Origin.Lat, record.Origin.Lng,
		record.Destination.Lat, record.Destination.Lng,
		factors, prediction, record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert analytics: %w", err)
	}
	return nil
}

// ListAnalytics returns the most recent analyses.
func (r *Repository) ListAnalytics(ctx context.Context, limit int) ([]*AnalyticsRecord, error) {
	query := `
		SELECT id, trip_id,
			   origin_lat, origin_lng, dest_lat, dest_lng,
			   factors, prediction, created_at
		FROM safety_analytics
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list analytics: %w", err)
	}
	defer rows.Close()

	var records []*AnalyticsRecord
	for rows.Next() {
		record := &AnalyticsRecord{}
		var factors, prediction []byte
		err := rows.Scan(
			&record.ID, &record.TripID,
			&record.Origin.Lat, &record.Origin.Lng,
			&record.Destination.Lat, &record.Destination.Lng,
			&factors, &prediction, &record.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan analytics: %w", err)
		}
		if err := json.Unmarshal(factors, &record.Factors); err != nil {
			return nil, fmt.Errorf("unmarshal factors: %w", err)
		}
		if err := json.Unmarshal(prediction, &record.Prediction); err != nil {
			return nil, fmt.Errorf("unmarshal prediction: %w", err)
		}
		records = append(records, record)
	}

	return records, rows.Err()
}
