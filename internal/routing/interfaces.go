package routing

import (
	"context"

	"github.com/google/uuid"
)

// RepositoryInterface defines the interface for route optimization data
// access. This interface allows for mocking in tests.
type RepositoryInterface interface {
	SaveOptimization(ctx context.Context, record *OptimizationRecord) error
	GetOptimization(ctx context.Context, id uuid.UUID) (*OptimizationRecord, error)
	AppendRealtimeUpdate(ctx context.Context, id uuid.UUID, update *RealtimeUpdate) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status OptimizationStatus) error
}

// Ensure Repository implements RepositoryInterface
var _ RepositoryInterface = (*Repository)(nil)
