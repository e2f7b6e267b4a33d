package demand

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository handles demand prediction data access
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new demand repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// SavePrediction persists a prediction, assigning it an ID and timestamp.
func (r *Repository) SavePrediction(ctx context.Context, record *PredictionRecord) error {
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

	query := `
		INSERT INTO demand_predictions (
			id, lat, lng, address, window_start, window_end,
			demand, confidence, factors, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err = r.db.Exec(ctx, query,
		record.ID, record.Location.Lat, record.Location.Lng, record.Location.Address,
		record.WindowStart, record.WindowEnd,
		record.Demand, record.Confidence, factors, record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert prediction: %w", err)
	}
	return nil
}

// ListPredictions returns the most recent predictions.
func (r *Repository) ListPredictions(ctx context.Context, limit int) ([]*PredictionRecord, error) {
	query := `
		SELECT id, lat, lng, address, window_start, window_end,
			   demand, confidence, factors, created_at
		FROM demand_predictions
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list predictions: %w", err)
	}
	defer rows.Close()

	var records []*PredictionRecord
	for rows.Next() {
		record := &PredictionRecord{}
		var factors []byte
		err := rows.Scan(
			&record.ID, &record.Location.Lat, &record.Location.Lng, &record.Location.Address,
			&record.WindowStart, &record.WindowEnd,
			&record.Demand, &record.Confidence, &factors, &record.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan prediction: %w", err)
		}
		if err := json.Unmarshal(factors, &record.Factors); err != nil {
			return nil, fmt.Errorf("unmarshal factors: %w", err)
		}
		records = append(records, record)
	}

	return records, rows.Err()
}

// GetRecentSamples returns past demand observations near a location, for use
// as the historical input of the prediction model. Nearby means within a
// ~0.05 degree box of the requested point.
func (r *Repository) GetRecentSamples(ctx context.Context, lat, lng float64, daysBack int) ([]HistoricalSample, error) {
	query := `
		SELECT demand, created_at
		FROM demand_predictions
		WHERE abs(lat - $1) < 0.05
		  AND abs(lng - $2) < 0.05
		  AND created_at > now() - make_interval(days => $3)
		ORDER BY created_at DESC
		LIMIT 100
	`

	rows, err := r.db.Query(ctx, query, lat, lng, daysBack)
	if err != nil {
		return nil, fmt.Errorf("query samples: %w", err)
	}
	defer rows.Close()

	var samples []HistoricalSample
	for rows.Next() {
		var s HistoricalSample
		if err := rows.Scan(&s.Demand, &s.ObservedAt); err != nil {
			return nil, fmt.Errorf("scan sample: %w", err)
		}
		samples = append(samples, s)
	}

	return samples, rows.Err()
}
