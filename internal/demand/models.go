package demand

import (
	"time"

	"github.com/google/uuid"
)

// Coordinate represents a geographic point
type Coordinate struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Address string  `json:"address,omitempty"`
}

// TimeWindow is the interval a prediction covers
type TimeWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// PredictionFactors holds the weighted inputs of the demand model, each in [0,1]
type PredictionFactors struct {
	HistoricalData float64 `json:"historical_data"`
	Weather        float64 `json:"weather"`
	Events         float64 `json:"events"`
	TimeOfDay      float64 `json:"time_of_day"`
	DayOfWeek      float64 `json:"day_of_week"`
}

// Prediction is the result of a demand prediction
type Prediction struct {
	Demand     int               `json:"demand"`     // 0-100
	Confidence float64           `json:"confidence"` // 0-1
	Factors    PredictionFactors `json:"factors"`
}

// HistoricalSample is one prior observation of demand for an area
type HistoricalSample struct {
	Demand     float64   `json:"demand"`
	ObservedAt time.Time `json:"observed_at"`
}

// PredictionRecord is the persisted form of a prediction. Identity and
// timestamps are attached at the storage boundary; the prediction itself
// stays a plain value.
type PredictionRecord struct {
	ID          uuid.UUID         `json:"id"`
	Location    Coordinate        `json:"location"`
	WindowStart time.Time         `json:"window_start"`
	WindowEnd   time.Time         `json:"window_end"`
	Demand      int               `json:"demand"`
	Confidence  float64           `json:"confidence"`
	Factors     PredictionFactors `json:"factors"`
	CreatedAt   time.Time         `json:"created_at"`
}

// AllocationInput pairs a location with its predicted demand
type AllocationInput struct {
	Location Coordinate `json:"location"`
	Demand   int        `json:"demand"`
}

// Allocation assigns drivers to a location
type Allocation struct {
	Location         Coordinate `json:"location"`
	AllocatedDrivers int        `json:"allocated_drivers"`
}

// PredictRequest is the API request for a demand prediction
type PredictRequest struct {
	Location   Coordinate         `json:"location" binding:"required"`
	Window     TimeWindow         `json:"window" binding:"required"`
	Historical []HistoricalSample `json:"historical,omitempty"`
	At         *time.Time         `json:"at,omitempty"` // evaluation time; defaults to now
}

// PredictResponse is the API response for a demand prediction
type PredictResponse struct {
	Prediction         *Prediction `json:"prediction"`
	RecommendedDrivers int         `json:"recommended_drivers"`
}

// AllocateRequest is the API request for driver allocation
type AllocateRequest struct {
	Predictions      []AllocationInput `json:"predictions" binding:"required"`
	AvailableDrivers int               `json:"available_drivers" binding:"required"`
}
