package safety

import (
	"time"

	"github.com/google/uuid"
)

// RecommendationType classifies a safety recommendation
type RecommendationType string

const (
	RecommendationRouteChange    RecommendationType = "route_change"
	RecommendationTimeAdjustment RecommendationType = "time_adjustment"
	RecommendationDriverChange   RecommendationType = "driver_change"
	RecommendationSafetyAlert    RecommendationType = "safety_alert"
)

// Priority ranks a recommendation
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// AlertType classifies a safety alert
type AlertType string

const (
	AlertWeather AlertType = "weather"
	AlertTraffic AlertType = "traffic"
	AlertRoute   AlertType = "route"
	AlertDriver  AlertType = "driver"
)

// Severity ranks an alert
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Coordinate represents a geographic point
type Coordinate struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Address string  `json:"address,omitempty"`
}

// DriverHistory summarizes a driver's record
type DriverHistory struct {
	Accidents  int     `json:"accidents"`
	Violations int     `json:"violations"`
	Rating     float64 `json:"rating"` // 1-5
}

// VehicleCondition summarizes a vehicle's state
type VehicleCondition struct {
	Age         float64 `json:"age"`         // years
	Maintenance float64 `json:"maintenance"` // 0-1, 1 = perfect
}

// RiskFactors holds normalized risk contributions, each in [0,1].
// Driver and vehicle factors are nil when no history was supplied.
type RiskFactors struct {
	Weather          float64  `json:"weather"`
	Traffic          float64  `json:"traffic"`
	TimeOfDay        float64  `json:"time_of_day"`
	RouteComplexity  float64  `json:"route_complexity"`
	DriverHistory    *float64 `json:"driver_history,omitempty"`
	VehicleCondition *float64 `json:"vehicle_condition,omitempty"`
}

// Recommendation is one actionable safety suggestion
type Recommendation struct {
	Type     RecommendationType `json:"type"`
	Priority Priority           `json:"priority"`
	Message  string             `json:"message"`
	Action   string             `json:"action,omitempty"`
}

// Alert is one severity-tagged safety notice
type Alert struct {
	Type     AlertType `json:"type"`
	Severity Severity  `json:"severity"`
	Message  string    `json:"message"`
}

// Prediction is the result of a safety analysis
type Prediction struct {
	SafetyScore         int              `json:"safety_score"`         // 0-100
	AccidentProbability float64          `json:"accident_probability"` // 0-1
	DelayProbability    float64          `json:"delay_probability"`    // 0-1
	RouteSafety         int              `json:"route_safety"`         // 0-100
	Recommendations     []Recommendation `json:"recommendations"`
	Alerts              []Alert          `json:"alerts"`
}

// AnalyticsRecord is the persisted form of a safety analysis
type AnalyticsRecord struct {
	ID          uuid.UUID   `json:"id"`
	TripID      *uuid.UUID  `json:"trip_id,omitempty"`
	Origin      Coordinate  `json:"origin"`
	Destination Coordinate  `json:"destination"`
	Factors     RiskFactors `json:"factors"`
	Prediction  Prediction  `json:"prediction"`
	CreatedAt   time.Time   `json:"created_at"`
}

// AnalyzeRequest is the API request for a safety analysis
type AnalyzeRequest struct {
	Origin        Coordinate        `json:"origin" binding:"required"`
	Destination   Coordinate        `json:"destination" binding:"required"`
	ScheduledTime time.Time         `json:"scheduled_time" binding:"required"`
	DriverHistory *DriverHistory    `json:"driver_history,omitempty"`
	Vehicle       *VehicleCondition `json:"vehicle_condition,omitempty"`
	TripID        *uuid.UUID        `json:"trip_id,omitempty"`
	At            *time.Time        `json:"at,omitempty"` // evaluation time; defaults to now
}

// AnalyzeResponse is the API response for a safety analysis
type AnalyzeResponse struct {
	Factors    *RiskFactors `json:"factors"`
	Prediction *Prediction  `json:"prediction"`
}
