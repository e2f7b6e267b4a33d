package safety

import "context"

// RepositoryInterface defines the interface for safety analytics data access.
// This interface allows for mocking in tests.
type RepositoryInterface interface {
	SaveAnalytics(ctx context.Context, record *AnalyticsRecord) error
	ListAnalytics(ctx context.Context, limit int) ([]*AnalyticsRecord, error)
}

// Ensure Repository implements RepositoryInterface
var _ RepositoryInterface = (*Repository)(nil)
