package safety

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/UtkarshSingh-06/Taxigo/pkg/common"
	"github.com/UtkarshSingh-06/Taxigo/pkg/eventbus"
	"github.com/UtkarshSingh-06/Taxigo/pkg/logger"
	"github.com/UtkarshSingh-06/Taxigo/pkg/validation"
)

// WeatherSource supplies the weather risk contribution, in [0,1]. The default
// implementation returns a constant; a live feed can replace it without
// touching the scoring logic.
type WeatherSource interface {
	RiskFactor(ctx context.Context, lat, lng float64) (float64, error)
}

const defaultWeatherRisk = 0.3

// StaticWeatherSource returns a fixed weather risk factor.
type StaticWeatherSource struct {
	Factor float64
}

func (s StaticWeatherSource) RiskFactor(ctx context.Context, lat, lng float64) (float64, error) {
	return s.Factor, nil
}

// Service handles safety risk analysis
type Service struct {
	repo    RepositoryInterface
	weather WeatherSource
	bus     eventbus.Publisher
}

// NewService creates a new safety service. A nil weather source falls back
// to the constant default.
func NewService(repo RepositoryInterface, weather WeatherSource) *Service {
	if weather == nil {
		weather = StaticWeatherSource{Factor: defaultWeatherRisk}
	}
	return &Service{
		repo:    repo,
		weather: weather,
	}
}

// SetEventBus sets the event publisher
func (s *Service) SetEventBus(bus eventbus.Publisher) {
	s.bus = bus
}

// AnalyzeRiskFactors derives normalized risk factors from trip context. The
// weather contribution is passed in rather than read from ambient state.
func AnalyzeRiskFactors(origin, destination Coordinate, scheduled time.Time, driver *DriverHistory, vehicle *VehicleCondition, weatherFactor float64) (*RiskFactors, error) {
	if !validation.ValidCoordinate(origin.Lat, origin.Lng) ||
		!validation.ValidCoordinate(destination.Lat, destination.Lng) {
		return nil, common.NewInvalidInputError("coordinate out of range")
	}

	hour := scheduled.Hour()

	trafficFactor := 0.3
	if (hour >= 7 && hour <= 9) || (hour >= 17 && hour <= 19) {
		trafficFactor = 0.8 // rush hour
	}

	timeOfDayFactor := 0.2
	switch {
	case hour >= 22 || hour <= 5:
		timeOfDayFactor = 0.8 // night
	case hour >= 6 && hour <= 8:
		timeOfDayFactor = 0.6 // early morning
	}

	// Straight-line degree distance as a crude complexity proxy; real road
	// geometry belongs to the mapping provider.
	degreeDistance := math.Sqrt(
		math.Pow(destination.Lat-origin.Lat, 2) + math.Pow(destination.Lng-origin.Lng, 2))
	routeComplexity := math.Min(1, degreeDistance*10)

	factors := &RiskFactors{
		Weather:         weatherFactor,
		Traffic:         trafficFactor,
		TimeOfDay:       timeOfDayFactor,
		RouteComplexity: routeComplexity,
	}

	if driver != nil {
		accidentFactor := math.Min(1, float64(driver.Accidents)/5)
		violationFactor := math.Min(1, float64(driver.Violations)/10)
		ratingFactor := (5 - driver.Rating) / 5
		f := accidentFactor*0.5 + violationFactor*0.3 + ratingFactor*0.2
		factors.DriverHistory = &f
	}

	if vehicle != nil {
		ageFactor := math.Min(1, vehicle.Age/15)
		maintenanceFactor := 1 - vehicle.Maintenance
		f := ageFactor*0.6 + maintenanceFactor*0.4
		factors.VehicleCondition = &f
	}

	return factors, nil
}

// PredictSafety combines risk factors into a safety score, probabilities,
// recommendations and alerts. The evaluation time is explicit so the night
// checks stay reproducible. Rule evaluation is cumulative and runs in a
// fixed order.
func PredictSafety(factors *RiskFactors, at time.Time) *Prediction {
	hour := at.Hour()
	isNight := hour >= 22 || hour <= 5

	score := 100.0
	score -= factors.Weather * 20
	score -= factors.Traffic * 15

	if isNight {
		score -= factors.TimeOfDay * 25
	} else {
		score -= factors.TimeOfDay * 10
	}

	score -= factors.RouteComplexity * 15

	if factors.DriverHistory != nil {
		score -= *factors.DriverHistory * 20
	}
	if factors.VehicleCondition != nil {
		score -= *factors.VehicleCondition * 15
	}

	score = math.Max(0, math.Min(100, score))

	accidentProbability := (100 - score) / 100
	delayProbability := math.Min(1, factors.Traffic*0.6+factors.Weather*0.4)
	routeSafety := math.Max(0, 100-factors.RouteComplexity*30-factors.Traffic*20)

	recommendations := []Recommendation{}
	alerts := []Alert{}

	if factors.Weather > 0.7 {
		recommendations = append(recommendations, Recommendation{
			Type:     RecommendationRouteChange,
			Priority: PriorityHigh,
			Message:  "Severe weather conditions detected. Consider delaying trip or taking safer route.",
			Action:   "delay_trip",
		})
		alerts = append(alerts, Alert{
			Type:     AlertWeather,
			Severity: SeverityCritical,
			Message:  "Severe weather warning",
		})
	} else if factors.Weather > 0.4 {
		recommendations = append(recommendations, Recommendation{
			Type:     RecommendationRouteChange,
			Priority: PriorityMedium,
			Message:  "Moderate weather conditions. Drive carefully.",
		})
		alerts = append(alerts, Alert{
			Type:     AlertWeather,
			Severity: SeverityWarning,
			Message:  "Weather advisory",
		})
	}

	if factors.Traffic > 0.8 {
		recommendations = append(recommendations, Recommendation{
			Type:     RecommendationRouteChange,
			Priority: PriorityHigh,
			Message:  "Heavy traffic detected. Alternative route recommended.",
			Action:   "change_route",
		})
		alerts = append(alerts, Alert{
			Type:     AlertTraffic,
			Severity: SeverityWarning,
			Message:  "Heavy traffic ahead",
		})
	}

	if isNight {
		recommendations = append(recommendations, Recommendation{
			Type:     RecommendationSafetyAlert,
			Priority: PriorityMedium,
			Message:  "Night driving detected. Extra caution recommended.",
		})
	}

	if factors.DriverHistory != nil && *factors.DriverHistory > 0.5 {
		recommendations = append(recommendations, Recommendation{
			Type:     RecommendationDriverChange,
			Priority: PriorityHigh,
			Message:  "Driver history indicates higher risk. Consider alternative driver.",
			Action:   "change_driver",
		})
		alerts = append(alerts, Alert{
			Type:     AlertDriver,
			Severity: SeverityWarning,
			Message:  "Driver risk assessment",
		})
	}

	if factors.RouteComplexity > 0.7 {
		recommendations = append(recommendations, Recommendation{
			Type:     RecommendationRouteChange,
			Priority: PriorityMedium,
			Message:  "Complex route detected. Simpler alternative available.",
			Action:   "change_route",
		})
	}

	if score < 50 {
		alerts = append(alerts, Alert{
			Type:     AlertRoute,
			Severity: SeverityCritical,
			Message:  "Low safety score. Trip not recommended.",
		})
	}

	return &Prediction{
		SafetyScore:         int(math.Round(score)),
		AccidentProbability: math.Round(accidentProbability*100) / 100,
		DelayProbability:    math.Round(delayProbability*100) / 100,
		RouteSafety:         int(math.Round(routeSafety)),
		Recommendations:     recommendations,
		Alerts:              alerts,
	}
}

// Analyze runs the full risk analysis for a trip: factor derivation, safety
// prediction, persistence, and alerting.
func (s *Service) Analyze(ctx context.Context, req *AnalyzeRequest) (*AnalyzeResponse, error) {
	at := time.Now()
	if req.At != nil {
		at = *req.At
	}

	weatherFactor, err := s.weather.RiskFactor(ctx, req.Origin.Lat, req.Origin.Lng)
	if err != nil {
		logger.Warn("weather source unavailable, using default", zap.Error(err))
		weatherFactor = defaultWeatherRisk
	}

	factors, err := AnalyzeRiskFactors(req.Origin, req.Destination, req.ScheduledTime, req.DriverHistory, req.Vehicle, weatherFactor)
	if err != nil {
		return nil, err
	}

	prediction := PredictSafety(factors, at)

	if s.repo != nil {
		record := &AnalyticsRecord{
			TripID:      req.TripID,
			Origin:      req.Origin,
			Destination: req.Destination,
			Factors:     *factors,
			Prediction:  *prediction,
		}
		if err := s.repo.SaveAnalytics(ctx, record); err != nil {
			logger.Error("failed to save safety analytics", zap.Error(err))
		}
	}

	s.publishCriticalAlerts(req, prediction)

	return &AnalyzeResponse{
		Factors:    factors,
		Prediction: prediction,
	}, nil
}

// ListAnalytics returns recent stored analyses.
func (s *Service) ListAnalytics(ctx context.Context, limit int) ([]*AnalyticsRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.repo.ListAnalytics(ctx, limit)
}

func (s *Service) publishCriticalAlerts(req *AnalyzeRequest, prediction *Prediction) {
	if s.bus == nil {
		return
	}
	for _, alert := range prediction.Alerts {
		if alert.Severity != SeverityCritical {
			continue
		}
		payload := map[string]interface{}{
			"trip_id":      req.TripID,
			"alert":        alert,
			"safety_score": prediction.SafetyScore,
		}
		if err := s.bus.Publish(eventbus.SubjectSafetyAlert, payload); err != nil {
			logger.Warn("failed to publish safety.alert", zap.Error(err))
		}
	}
}
