package routing

import (
	"context"
	"math"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/UtkarshSingh-06/Taxigo/pkg/common"
	"github.com/UtkarshSingh-06/Taxigo/pkg/eventbus"
	"github.com/UtkarshSingh-06/Taxigo/pkg/geo"
	"github.com/UtkarshSingh-06/Taxigo/pkg/logger"
	"github.com/UtkarshSingh-06/Taxigo/pkg/validation"
)

// DirectionsProvider supplies authoritative routes from an external mapping
// service. When it is unavailable or unconfigured the heuristic optimizer
// below is the fallback.
type DirectionsProvider interface {
	GetRoute(ctx context.Context, origin, destination Coordinate, waypoints []Coordinate) (*RouteOption, error)
}

const (
	baseSpeedKmh         = 40.0
	defaultTrafficFactor = 0.3
	defaultAlternatives  = 3
	waypointJitterDeg    = 0.01 // jitter span; offsets are +/- half of this
)

// Service handles route optimization
type Service struct {
	repo       RepositoryInterface
	directions DirectionsProvider
	bus        eventbus.Publisher

	mu  sync.Mutex
	rng *rand.Rand
}

// NewService creates a new routing service. A nil rng gets a time-seeded
// source; tests inject a fixed seed for reproducible alternatives.
func NewService(repo RepositoryInterface, directions DirectionsProvider, rng *rand.Rand) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{
		repo:       repo,
		directions: directions,
		rng:        rng,
	}
}

// SetEventBus sets the event publisher
func (s *Service) SetEventBus(bus eventbus.Publisher) {
	s.bus = bus
}

// OptimizeRoute computes the primary route through origin, waypoints and
// destination. No path-finding happens here; the returned geometry is the
// input sequence verbatim, with distance, time and safety derived from it.
func OptimizeRoute(origin, destination Coordinate, waypoints []Coordinate, traffic *TrafficData) (*RouteOption, error) {
	points := make([]Coordinate, 0, len(waypoints)+2)
	points = append(points, origin)
	points = append(points, waypoints...)
	points = append(points, destination)

	for _, p := range points {
		if !validation.ValidCoordinate(p.Lat, p.Lng) {
			return nil, common.NewInvalidInputError("coordinate out of range")
		}
	}

	var totalDistance float64
	for i := 1; i < len(points); i++ {
		totalDistance += geo.Haversine(points[i-1].Lat, points[i-1].Lng, points[i].Lat, points[i].Lng)
	}

	trafficFactor := defaultTrafficFactor
	if traffic != nil {
		if traffic.Factor < 0 || traffic.Factor > 1 {
			return nil, common.NewInvalidInputError("traffic factor must be in [0,1]")
		}
		trafficFactor = traffic.Factor
	}

	// Base city speed degraded by traffic
	adjustedSpeed := baseSpeedKmh * (1 - trafficFactor*0.5)
	estimatedTime := totalDistance / adjustedSpeed * 60

	routeComplexity := float64(len(waypoints)) * 0.1
	safetyScore := math.Max(0, 100-routeComplexity*50-trafficFactor*30)

	return &RouteOption{
		Route:         points,
		DistanceKm:    geo.RoundKm(totalDistance),
		EstimatedTime: estimatedTime,
		TrafficFactor: trafficFactor,
		SafetyScore:   int(math.Round(safetyScore)),
	}, nil
}

// GenerateAlternativeRoutes returns count route options: the direct route
// first, then variants that detour through a jittered midpoint. The result
// is sorted by estimated time ascending.
func GenerateAlternativeRoutes(origin, destination Coordinate, count int, rng *rand.Rand) ([]RouteOption, error) {
	if count < 1 {
		return nil, common.NewInvalidInputError("count must be at least 1")
	}

	direct, err := OptimizeRoute(origin, destination, nil, nil)
	if err != nil {
		return nil, err
	}

	routes := []RouteOption{*direct}
	for i := 1; i < count; i++ {
		midLat := (origin.Lat+destination.Lat)/2 + (rng.Float64()-0.5)*waypointJitterDeg
		midLng := (origin.Lng+destination.Lng)/2 + (rng.Float64()-0.5)*waypointJitterDeg

		alt, err := OptimizeRoute(origin, destination, []Coordinate{{Lat: midLat, Lng: midLng}}, nil)
		if err != nil {
			return nil, err
		}
		routes = append(routes, *alt)
	}

	sort.SliceStable(routes, func(i, j int) bool {
		return routes[i].EstimatedTime < routes[j].EstimatedTime
	})

	return routes, nil
}

// OptimizationScore grades a route 0-100, weighting distance 40%, time 40%
// and safety 20%. Distance normalizes against a 100 km ceiling and time
// against 120 minutes.
func OptimizationScore(route *RouteOption) int {
	distanceScore := math.Max(0, 100-route.DistanceKm/100*100)
	timeScore := math.Max(0, 100-route.EstimatedTime/120*100)

	return int(math.Round(distanceScore*0.4 + timeScore*0.4 + float64(route.SafetyScore)*0.2))
}

// ValidateRealtimeUpdate checks the shape of an update before it is appended
// to an optimization's log. Storage of the log belongs to the repository.
func ValidateRealtimeUpdate(update *RealtimeUpdate) error {
	if update.TrafficCondition == "" {
		return common.NewInvalidInputError("traffic condition is required")
	}
	if update.EstimatedDelay < 0 {
		return common.NewInvalidInputError("estimated delay cannot be negative")
	}
	if !validation.ValidCoordinate(update.Location.Lat, update.Location.Lng) {
		return common.NewInvalidInputError("update location out of range")
	}
	return nil
}

// Optimize computes and stores a route optimization. An external directions
// provider takes precedence when configured; the heuristic optimizer covers
// provider outages.
func (s *Service) Optimize(ctx context.Context, req *OptimizeRequest) (*OptimizationRecord, error) {
	primary, err := s.resolveRoute(ctx, req)
	if err != nil {
		return nil, err
	}

	alternatives, err := s.Alternatives(req.Origin, req.Destination, defaultAlternatives)
	if err != nil {
		return nil, err
	}

	record := &OptimizationRecord{
		TripID:            req.TripID,
		DriverID:          req.DriverID,
		Origin:            req.Origin,
		Destination:       req.Destination,
		Route:             primary.Route,
		EncodedPolyline:   encodeRoute(primary.Route),
		DistanceKm:        primary.DistanceKm,
		EstimatedTime:     primary.EstimatedTime,
		TrafficFactor:     primary.TrafficFactor,
		SafetyScore:       primary.SafetyScore,
		OptimizationScore: OptimizationScore(primary),
		Alternatives:      alternatives,
		RealtimeUpdates:   []RealtimeUpdate{},
		Status:            StatusActive,
	}

	if s.repo != nil {
		if err := s.repo.SaveOptimization(ctx, record); err != nil {
			logger.Error("failed to save route optimization", zap.Error(err))
		}
	}

	s.publishOptimized(record)

	return record, nil
}

// Alternatives generates count alternative routes using the service's
// random source.
func (s *Service) Alternatives(origin, destination Coordinate, count int) ([]RouteOption, error) {
	if count == 0 {
		count = defaultAlternatives
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return GenerateAlternativeRoutes(origin, destination, count, s.rng)
}

// AppendRealtimeUpdate validates and appends one update to the optimization's
// log, returning the refreshed record.
func (s *Service) AppendRealtimeUpdate(ctx context.Context, id uuid.UUID, req *RealtimeUpdateRequest) (*OptimizationRecord, error) {
	update := &RealtimeUpdate{
		Timestamp:        time.Now().UTC(),
		Location:         req.Location,
		TrafficCondition: req.TrafficCondition,
		EstimatedDelay:   req.EstimatedDelay,
	}
	if err := ValidateRealtimeUpdate(update); err != nil {
		return nil, err
	}

	if err := s.repo.AppendRealtimeUpdate(ctx, id, update); err != nil {
		return nil, err
	}

	return s.repo.GetOptimization(ctx, id)
}

// GetOptimization fetches a stored optimization by ID.
func (s *Service) GetOptimization(ctx context.Context, id uuid.UUID) (*OptimizationRecord, error) {
	return s.repo.GetOptimization(ctx, id)
}

// UpdateStatus moves an optimization through its lifecycle.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status OptimizationStatus) error {
	switch status {
	case StatusActive, StatusCompleted, StatusCancelled:
	default:
		return common.NewInvalidInputError("unknown status")
	}
	return s.repo.UpdateStatus(ctx, id, status)
}

func (s *Service) resolveRoute(ctx context.Context, req *OptimizeRequest) (*RouteOption, error) {
	if s.directions != nil {
		route, err := s.directions.GetRoute(ctx, req.Origin, req.Destination, req.Waypoints)
		if err == nil {
			return route, nil
		}
		logger.Warn("directions provider failed, using heuristic optimizer", zap.Error(err))
	}
	return OptimizeRoute(req.Origin, req.Destination, req.Waypoints, req.Traffic)
}

func (s *Service) publishOptimized(record *OptimizationRecord) {
	if s.bus == nil {
		return
	}
	payload := map[string]interface{}{
		"origin":             record.Origin,
		"destination":        record.Destination,
		"distance":           record.DistanceKm,
		"estimated_time":     record.EstimatedTime,
		"optimization_score": record.OptimizationScore,
	}
	if err := s.bus.Publish(eventbus.SubjectRouteOptimized, payload); err != nil {
		logger.Warn("failed to publish route.optimized", zap.Error(err))
	}
}

func encodeRoute(route []Coordinate) string {
	path := make([]geo.LatLng, len(route))
	for i, p := range route {
		path[i] = geo.LatLng{Lat: p.Lat, Lng: p.Lng}
	}
	return geo.EncodePolyline(path)
}
