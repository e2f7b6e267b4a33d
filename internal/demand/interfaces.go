package demand

import "context"

// RepositoryInterface defines the interface for demand data access.
// This interface allows for mocking in tests.
type RepositoryInterface interface {
	SavePrediction(ctx context.Context, record *PredictionRecord) error
	ListPredictions(ctx context.Context, limit int) ([]*PredictionRecord, error)
	GetRecentSamples(ctx context.Context, lat, lng float64, daysBack int) ([]HistoricalSample, error)
}

// Ensure Repository implements RepositoryInterface
var _ RepositoryInterface = (*Repository)(nil)
