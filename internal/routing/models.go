package routing

import (
	"time"

	"github.com/google/uuid"
)

// OptimizationStatus is the lifecycle state of a stored route optimization
type OptimizationStatus string

const (
	StatusActive    OptimizationStatus = "active"
	StatusCompleted OptimizationStatus = "completed"
	StatusCancelled OptimizationStatus = "cancelled"
)

// Coordinate represents a geographic point
type Coordinate struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Address string  `json:"address,omitempty"`
}

// TrafficData carries externally supplied traffic conditions
type TrafficData struct {
	Factor float64 `json:"factor"` // 0 = free flow, 1 = gridlock
}

// RouteOption is a single computed route
type RouteOption struct {
	Route         []Coordinate `json:"route"`
	DistanceKm    float64      `json:"distance"`       // km, rounded to 2dp
	EstimatedTime float64      `json:"estimated_time"` // minutes
	TrafficFactor float64      `json:"traffic_factor"` // 0-1
	SafetyScore   int          `json:"safety_score"`   // 0-100
}

// RealtimeUpdate is one append-only entry in an optimization's update log
type RealtimeUpdate struct {
	Timestamp        time.Time  `json:"timestamp"`
	Location         Coordinate `json:"location"`
	TrafficCondition string     `json:"traffic_condition"`
	EstimatedDelay   float64    `json:"estimated_delay"` // minutes
}

// OptimizationRecord is the persisted form of a route optimization
type OptimizationRecord struct {
	ID                uuid.UUID          `json:"id"`
	TripID            *uuid.UUID         `json:"trip_id,omitempty"`
	DriverID          *uuid.UUID         `json:"driver_id,omitempty"`
	Origin            Coordinate         `json:"origin"`
	Destination       Coordinate         `json:"destination"`
	Route             []Coordinate       `json:"route"`
	EncodedPolyline   string             `json:"encoded_polyline,omitempty"`
	DistanceKm        float64            `json:"distance"`
	EstimatedTime     float64            `json:"estimated_time"`
	TrafficFactor     float64            `json:"traffic_factor"`
	SafetyScore       int                `json:"safety_score"`
	OptimizationScore int                `json:"optimization_score"`
	Alternatives      []RouteOption      `json:"alternative_routes,omitempty"`
	RealtimeUpdates   []RealtimeUpdate   `json:"realtime_updates"`
	Status            OptimizationStatus `json:"status"`
	CreatedAt         time.Time          `json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`
}

// OptimizeRequest is the API request for a route optimization
type OptimizeRequest struct {
	Origin      Coordinate   `json:"origin" binding:"required"`
	Destination Coordinate   `json:"destination" binding:"required"`
	Waypoints   []Coordinate `json:"waypoints,omitempty"`
	Traffic     *TrafficData `json:"traffic,omitempty"`
	TripID      *uuid.UUID   `json:"trip_id,omitempty"`
	DriverID    *uuid.UUID   `json:"driver_id,omitempty"`
}

// AlternativesRequest is the API request for alternative routes
type AlternativesRequest struct {
	Origin      Coordinate `json:"origin" binding:"required"`
	Destination Coordinate `json:"destination" binding:"required"`
	Count       int        `json:"count,omitempty"`
}

// RealtimeUpdateRequest is the API request appending one realtime update
type RealtimeUpdateRequest struct {
	Location         Coordinate `json:"location" binding:"required"`
	TrafficCondition string     `json:"traffic_condition" binding:"required"`
	EstimatedDelay   float64    `json:"estimated_delay"`
}

// UpdateStatusRequest changes the lifecycle state of an optimization
type UpdateStatusRequest struct {
	Status OptimizationStatus `json:"status" binding:"required"`
}
