package demand

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/UtkarshSingh-06/Taxigo/pkg/common"
	"github.com/UtkarshSingh-06/Taxigo/pkg/eventbus"
	"github.com/UtkarshSingh-06/Taxigo/pkg/logger"
	redisclient "github.com/UtkarshSingh-06/Taxigo/pkg/redis"
	"github.com/UtkarshSingh-06/Taxigo/pkg/validation"
)

// WeatherSource supplies the weather contribution to demand, in [0,1].
// The default implementation returns a constant; a real weather feed can be
// substituted without touching the scoring logic.
type WeatherSource interface {
	DemandFactor(ctx context.Context, lat, lng float64) (float64, error)
}

// EventSource supplies the special-events contribution to demand, in [0,1].
type EventSource interface {
	EventFactor(ctx context.Context, lat, lng float64, at time.Time) (float64, error)
}

const (
	defaultWeatherFactor = 0.6
	defaultEventsFactor  = 0.5

	cacheTTL = 5 * time.Minute
)

// StaticWeatherSource returns a fixed weather factor.
type StaticWeatherSource struct {
	Factor float64
}

func (s StaticWeatherSource) DemandFactor(ctx context.Context, lat, lng float64) (float64, error) {
	return s.Factor, nil
}

// StaticEventSource returns a fixed events factor.
type StaticEventSource struct {
	Factor float64
}

func (s StaticEventSource) EventFactor(ctx context.Context, lat, lng float64, at time.Time) (float64, error) {
	return s.Factor, nil
}

// Weights holds the factor weights of the prediction model
type Weights struct {
	Historical float64
	Weather    float64
	Events     float64
	TimeOfDay  float64
	DayOfWeek  float64
}

// DefaultWeights returns the production model weights
func DefaultWeights() Weights {
	return Weights{
		Historical: 0.3,
		Weather:    0.1,
		Events:     0.1,
		TimeOfDay:  0.3,
		DayOfWeek:  0.2,
	}
}

// Service handles demand prediction and driver allocation
type Service struct {
	repo    RepositoryInterface
	weather WeatherSource
	events  EventSource
	redis   redisclient.ClientInterface
	bus     eventbus.Publisher
	weights Weights
}

// NewService creates a new demand service. Weather and event sources fall
// back to constant defaults when nil.
func NewService(repo RepositoryInterface, weather WeatherSource, events EventSource) *Service {
	if weather == nil {
		weather = StaticWeatherSource{Factor: defaultWeatherFactor}
	}
	if events == nil {
		events = StaticEventSource{Factor: defaultEventsFactor}
	}
	return &Service{
		repo:    repo,
		weather: weather,
		events:  events,
		weights: DefaultWeights(),
	}
}

// SetRedis sets the Redis client for prediction caching
func (s *Service) SetRedis(redis redisclient.ClientInterface) {
	s.redis = redis
}

// SetEventBus sets the event publisher
func (s *Service) SetEventBus(bus eventbus.Publisher) {
	s.bus = bus
}

// Predict computes a demand prediction for a location and time window. It is
// a pure function of its inputs: the evaluation time is explicit and the
// weather/events contributions are passed in, never read from ambient state.
func Predict(location Coordinate, window TimeWindow, historical []HistoricalSample, weatherFactor, eventsFactor float64, at time.Time) (*Prediction, error) {
	if !validation.ValidCoordinate(location.Lat, location.Lng) {
		return nil, common.NewInvalidInputError("location out of range")
	}
	if !validation.ValidTimeWindow(window.Start, window.End) {
		return nil, common.NewInvalidInputError("time window end precedes start")
	}

	factors := PredictionFactors{
		HistoricalData: historicalFactor(historical),
		Weather:        weatherFactor,
		Events:         eventsFactor,
		TimeOfDay:      timeOfDayFactor(at.Hour()),
		DayOfWeek:      dayOfWeekFactor(at.Weekday()),
	}

	w := DefaultWeights()
	weighted := factors.HistoricalData*w.Historical +
		factors.Weather*w.Weather +
		factors.Events*w.Events +
		factors.TimeOfDay*w.TimeOfDay +
		factors.DayOfWeek*w.DayOfWeek

	return &Prediction{
		Demand:     int(math.Round(weighted * 100)),
		Confidence: confidence(len(historical)),
		Factors:    factors,
	}, nil
}

// timeOfDayFactor scores the hour of day: rush hours carry the most demand.
func timeOfDayFactor(hour int) float64 {
	switch {
	case (hour >= 7 && hour <= 9) || (hour >= 17 && hour <= 19):
		return 0.9 // rush hours
	case hour >= 10 && hour <= 16:
		return 0.6 // daytime
	case hour >= 20 && hour <= 23:
		return 0.7 // evening
	default:
		return 0.4 // night, early morning
	}
}

// dayOfWeekFactor scores the weekday: weekends and Fridays run hotter.
func dayOfWeekFactor(day time.Weekday) float64 {
	switch day {
	case time.Saturday, time.Sunday:
		return 0.9
	case time.Friday:
		return 0.8
	default:
		return 0.6
	}
}

func historicalFactor(samples []HistoricalSample) float64 {
	if len(samples) == 0 {
		return 0.5
	}
	var sum float64
	for _, s := range samples {
		sum += s.Demand
	}
	return math.Min(sum/float64(len(samples))/100, 1)
}

func confidence(sampleCount int) float64 {
	switch {
	case sampleCount > 10:
		return 0.9
	case sampleCount > 5:
		return 0.7
	default:
		return 0.5
	}
}

// RecommendedDrivers estimates how many drivers a demand level needs: a base
// allocation of one driver per ten demand units plus a 20% peak buffer,
// never below one. The area argument is kept for API compatibility with the
// original capacity model, which assumed a 10 km2 coverage zone per fleet.
func RecommendedDrivers(demand int, areaKm2 float64) int {
	base := int(math.Ceil(float64(demand) * 0.1))
	buffer := int(math.Ceil(float64(base) * 0.2))
	if base+buffer < 1 {
		return 1
	}
	return base + buffer
}

// AllocateDrivers proportionally distributes the available driver pool across
// predictions by demand share. Each location gets at least one driver, so the
// allocated total can drift from the pool; callers that need conservation
// must reconcile downstream.
func AllocateDrivers(predictions []AllocationInput, availableDrivers int) ([]Allocation, error) {
	if len(predictions) == 0 {
		return nil, common.NewInvalidInputError("no predictions to allocate")
	}
	if availableDrivers <= 0 {
		return nil, common.NewInvalidInputError("available drivers must be positive")
	}

	totalDemand := 0
	for _, p := range predictions {
		totalDemand += p.Demand
	}
	if totalDemand <= 0 {
		return nil, common.NewInvalidInputError("total demand must be positive")
	}

	allocations := make([]Allocation, len(predictions))
	for i, p := range predictions {
		ratio := float64(p.Demand) / float64(totalDemand)
		allocated := int(math.Round(float64(availableDrivers) * ratio))
		if allocated < 1 {
			allocated = 1
		}
		allocations[i] = Allocation{
			Location:         p.Location,
			AllocatedDrivers: allocated,
		}
	}

	return allocations, nil
}

// GeneratePrediction runs a prediction for the request, consulting the cache,
// persisting the result, and publishing a demand.predicted event.
func (s *Service) GeneratePrediction(ctx context.Context, req *PredictRequest) (*PredictResponse, error) {
	at := time.Now()
	if req.At != nil {
		at = *req.At
	}

	if cached := s.cachedPrediction(ctx, req.Location, at); cached != nil {
		return cached, nil
	}

	historical := req.Historical
	if len(historical) == 0 && s.repo != nil {
		samples, err := s.repo.GetRecentSamples(ctx, req.Location.Lat, req.Location.Lng, 30)
		if err != nil {
			logger.Warn("failed to load historical samples", zap.Error(err))
		} else {
			historical = samples
		}
	}

	weatherFactor, err := s.weather.DemandFactor(ctx, req.Location.Lat, req.Location.Lng)
	if err != nil {
		logger.Warn("weather source unavailable, using default", zap.Error(err))
		weatherFactor = defaultWeatherFactor
	}

	eventsFactor, err := s.events.EventFactor(ctx, req.Location.Lat, req.Location.Lng, at)
	if err != nil {
		logger.Warn("event source unavailable, using default", zap.Error(err))
		eventsFactor = defaultEventsFactor
	}

	prediction, err := Predict(req.Location, req.Window, historical, weatherFactor, eventsFactor, at)
	if err != nil {
		return nil, err
	}

	resp := &PredictResponse{
		Prediction:         prediction,
		RecommendedDrivers: RecommendedDrivers(prediction.Demand, 10),
	}

	if s.repo != nil {
		record := &PredictionRecord{
			Location:    req.Location,
			WindowStart: req.Window.Start,
			WindowEnd:   req.Window.End,
			Demand:      prediction.Demand,
			Confidence:  prediction.Confidence,
			Factors:     prediction.Factors,
		}
		if err := s.repo.SavePrediction(ctx, record); err != nil {
			logger.Error("failed to save prediction", zap.Error(err))
		}
	}

	s.cachePrediction(ctx, req.Location, at, resp)
	s.publishPredicted(req.Location, prediction)

	return resp, nil
}

// OptimizeAllocation distributes the driver pool over the supplied predictions.
func (s *Service) OptimizeAllocation(ctx context.Context, req *AllocateRequest) ([]Allocation, error) {
	return AllocateDrivers(req.Predictions, req.AvailableDrivers)
}

// ListPredictions returns recent stored predictions.
func (s *Service) ListPredictions(ctx context.Context, limit int) ([]*PredictionRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.repo.ListPredictions(ctx, limit)
}

func (s *Service) cacheKey(loc Coordinate, at time.Time) string {
	// Cell-round the coordinates so nearby requests within the same hour share
	// a cache entry.
	return fmt.Sprintf("demand:%.3f:%.3f:%s", loc.Lat, loc.Lng, at.Format("2006010215"))
}

func (s *Service) cachedPrediction(ctx context.Context, loc Coordinate, at time.Time) *PredictResponse {
	if s.redis == nil {
		return nil
	}
	raw, err := s.redis.GetString(ctx, s.cacheKey(loc, at))
	if err != nil {
		return nil
	}
	var resp PredictResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil
	}
	return &resp
}

func (s *Service) cachePrediction(ctx context.Context, loc Coordinate, at time.Time, resp *PredictResponse) {
	if s.redis == nil {
		return
	}
	data, err := json.Marshal(resp)
	if err != nil {
		return
	}
	if err := s.redis.SetWithExpiration(ctx, s.cacheKey(loc, at), string(data), cacheTTL); err != nil {
		logger.Warn("failed to cache prediction", zap.Error(err))
	}
}

func (s *Service) publishPredicted(loc Coordinate, prediction *Prediction) {
	if s.bus == nil {
		return
	}
	payload := map[string]interface{}{
		"location":   loc,
		"demand":     prediction.Demand,
		"confidence": prediction.Confidence,
	}
	if err := s.bus.Publish(eventbus.SubjectDemandPredicted, payload); err != nil {
		logger.Warn("failed to publish demand.predicted", zap.Error(err))
	}
}
