package safety

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockRepository is a mock implementation of RepositoryInterface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) SaveAnalytics(ctx context.Context, record *AnalyticsRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockRepository) ListAnalytics(ctx context.Context, limit int) ([]*AnalyticsRecord, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*AnalyticsRecord), args.Error(1)
}

var (
	cityOrigin      = Coordinate{Lat: 28.6315, Lng: 77.2167}
	cityDestination = Coordinate{Lat: 28.5708, Lng: 77.3261}
)

func TestAnalyzeRiskFactorsTraffic(t *testing.T) {
	tests := []struct {
		name     string
		hour     int
		expected float64
	}{
		{"morning rush", 8, 0.8},
		{"evening rush", 18, 0.8},
		{"midday", 13, 0.3},
		{"midnight", 0, 0.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scheduled := time.Date(2026, 9, 2, tt.hour, 0, 0, 0, time.UTC)
			factors, err := AnalyzeRiskFactors(cityOrigin, cityDestination, scheduled, nil, nil, 0.3)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, factors.Traffic)
		})
	}
}

func TestAnalyzeRiskFactorsTimeOfDay(t *testing.T) {
	tests := []struct {
		name     string
		hour     int
		expected float64
	}{
		{"late night", 23, 0.8},
		{"before dawn", 4, 0.8},
		{"early morning", 7, 0.6},
		{"afternoon", 14, 0.2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scheduled := time.Date(2026, 9, 2, tt.hour, 0, 0, 0, time.UTC)
			factors, err := AnalyzeRiskFactors(cityOrigin, cityDestination, scheduled, nil, nil, 0.3)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, factors.TimeOfDay)
		})
	}
}

func TestAnalyzeRiskFactorsRouteComplexity(t *testing.T) {
	scheduled := time.Date(2026, 9, 2, 13, 0, 0, 0, time.UTC)

	short, err := AnalyzeRiskFactors(cityOrigin, Coordinate{Lat: 28.6320, Lng: 77.2170}, scheduled, nil, nil, 0.3)
	require.NoError(t, err)
	assert.Less(t, short.RouteComplexity, 0.1)

	// Long trips clamp at 1.
	long, err := AnalyzeRiskFactors(cityOrigin, Coordinate{Lat: 19.0760, Lng: 72.8777}, scheduled, nil, nil, 0.3)
	require.NoError(t, err)
	assert.Equal(t, 1.0, long.RouteComplexity)
}

func TestAnalyzeRiskFactorsDriverHistory(t *testing.T) {
	scheduled := time.Date(2026, 9, 2, 13, 0, 0, 0, time.UTC)

	clean := &DriverHistory{Accidents: 0, Violations: 0, Rating: 5}
	risky := &DriverHistory{Accidents: 4, Violations: 8, Rating: 2}

	cleanFactors, err := AnalyzeRiskFactors(cityOrigin, cityDestination, scheduled, clean, nil, 0.3)
	require.NoError(t, err)
	riskyFactors, err := AnalyzeRiskFactors(cityOrigin, cityDestination, scheduled, risky, nil, 0.3)
	require.NoError(t, err)

	require.NotNil(t, cleanFactors.DriverHistory)
	require.NotNil(t, riskyFactors.DriverHistory)
	assert.Equal(t, 0.0, *cleanFactors.DriverHistory)
	// 0.8*0.5 + 0.8*0.3 + 0.6*0.2 = 0.76
	assert.InDelta(t, 0.76, *riskyFactors.DriverHistory, 1e-9)

	none, err := AnalyzeRiskFactors(cityOrigin, cityDestination, scheduled, nil, nil, 0.3)
	require.NoError(t, err)
	assert.Nil(t, none.DriverHistory)
}

func TestAnalyzeRiskFactorsVehicleCondition(t *testing.T) {
	scheduled := time.Date(2026, 9, 2, 13, 0, 0, 0, time.UTC)

	fresh := &VehicleCondition{Age: 0, Maintenance: 1}
	worn := &VehicleCondition{Age: 15, Maintenance: 0.2}

	freshFactors, err := AnalyzeRiskFactors(cityOrigin, cityDestination, scheduled, nil, fresh, 0.3)
	require.NoError(t, err)
	wornFactors, err := AnalyzeRiskFactors(cityOrigin, cityDestination, scheduled, nil, worn, 0.3)
	require.NoError(t, err)

	require.NotNil(t, freshFactors.VehicleCondition)
	require.NotNil(t, wornFactors.VehicleCondition)
	assert.Equal(t, 0.0, *freshFactors.VehicleCondition)
	// 1.0*0.6 + 0.8*0.4 = 0.92
	assert.InDelta(t, 0.92, *wornFactors.VehicleCondition, 1e-9)
}

func TestAnalyzeRiskFactorsInvalidCoordinates(t *testing.T) {
	scheduled := time.Date(2026, 9, 2, 13, 0, 0, 0, time.UTC)

	_, err := AnalyzeRiskFactors(Coordinate{Lat: 91}, cityDestination, scheduled, nil, nil, 0.3)
	assert.Error(t, err)

	_, err = AnalyzeRiskFactors(cityOrigin, Coordinate{Lng: 181}, scheduled, nil, nil, 0.3)
	assert.Error(t, err)
}

func TestPredictSafetyScore(t *testing.T) {
	day := time.Date(2026, 9, 2, 14, 0, 0, 0, time.UTC)

	// 100 - 0.3*20 - 0.3*15 - 0.2*10 - 0.1*15 = 86.
	factors := &RiskFactors{
		Weather:         0.3,
		Traffic:         0.3,
		TimeOfDay:       0.2,
		RouteComplexity: 0.1,
	}
	p := PredictSafety(factors, day)
	assert.Equal(t, 86, p.SafetyScore)
	assert.InDelta(t, 0.14, p.AccidentProbability, 1e-9)
	assert.InDelta(t, 0.3, p.DelayProbability, 1e-9)
	// 100 - 0.1*30 - 0.3*20 = 91.
	assert.Equal(t, 91, p.RouteSafety)
	assert.Empty(t, p.Alerts)
}

func TestPredictSafetyNightPenalty(t *testing.T) {
	factors := &RiskFactors{
		Weather:         0.3,
		Traffic:         0.3,
		TimeOfDay:       0.8,
		RouteComplexity: 0.1,
	}

	day := PredictSafety(factors, time.Date(2026, 9, 2, 14, 0, 0, 0, time.UTC))
	night := PredictSafety(factors, time.Date(2026, 9, 2, 23, 0, 0, 0, time.UTC))

	// Night weighs the time-of-day factor at 25 instead of 10.
	assert.Equal(t, day.SafetyScore-12, night.SafetyScore)

	var hasNightRec bool
	for _, r := range night.Recommendations {
		if r.Message == "Night driving detected. Extra caution recommended." {
			hasNightRec = true
		}
	}
	assert.True(t, hasNightRec)
}

func TestPredictSafetyHighRisk(t *testing.T) {
	driverRisk := 0.75
	vehicleRisk := 0.5
	factors := &RiskFactors{
		Weather:          0.75,
		Traffic:          1.0,
		TimeOfDay:        0.5,
		RouteComplexity:  0.75,
		DriverHistory:    &driverRisk,
		VehicleCondition: &vehicleRisk,
	}

	p := PredictSafety(factors, time.Date(2026, 9, 2, 23, 0, 0, 0, time.UTC))

	// 100 - 15 - 15 - 12.5 - 11.25 - 15 - 7.5 = 23.75.
	assert.Equal(t, 24, p.SafetyScore)
	assert.InDelta(t, 0.76, p.AccidentProbability, 1e-9)
	assert.InDelta(t, 0.9, p.DelayProbability, 1e-9)

	severities := map[AlertType]Severity{}
	for _, a := range p.Alerts {
		severities[a.Type] = a.Severity
	}
	assert.Equal(t, SeverityCritical, severities[AlertWeather])
	assert.Equal(t, SeverityWarning, severities[AlertTraffic])
	assert.Equal(t, SeverityWarning, severities[AlertDriver])
	assert.Equal(t, SeverityCritical, severities[AlertRoute], "low score triggers the trip-not-recommended alert")

	messages := map[string]bool{}
	for _, r := range p.Recommendations {
		messages[r.Message] = true
	}
	assert.True(t, messages["Severe weather conditions detected. Consider delaying trip or taking safer route."])
	assert.True(t, messages["Heavy traffic detected. Alternative route recommended."])
	assert.True(t, messages["Driver history indicates higher risk. Consider alternative driver."])
	assert.True(t, messages["Complex route detected. Simpler alternative available."])
}

func TestPredictSafetyModerateWeather(t *testing.T) {
	factors := &RiskFactors{
		Weather:   0.5,
		Traffic:   0.3,
		TimeOfDay: 0.2,
	}

	p := PredictSafety(factors, time.Date(2026, 9, 2, 14, 0, 0, 0, time.UTC))

	require.Len(t, p.Alerts, 1)
	assert.Equal(t, AlertWeather, p.Alerts[0].Type)
	assert.Equal(t, SeverityWarning, p.Alerts[0].Severity)
	assert.Equal(t, "Weather advisory", p.Alerts[0].Message)
}

func TestPredictSafetyScoreClamped(t *testing.T) {
	one := 1.0
	factors := &RiskFactors{
		Weather:          1,
		Traffic:          1,
		TimeOfDay:        1,
		RouteComplexity:  1,
		DriverHistory:    &one,
		VehicleCondition: &one,
	}

	p := PredictSafety(factors, time.Date(2026, 9, 2, 23, 0, 0, 0, time.UTC))
	assert.Equal(t, 0, p.SafetyScore)
	assert.Equal(t, 1.0, p.AccidentProbability)
}

func TestServiceAnalyze(t *testing.T) {
	repo := new(MockRepository)
	repo.On("SaveAnalytics", mock.Anything, mock.AnythingOfType("*safety.AnalyticsRecord")).
		Return(nil)

	service := NewService(repo, nil)

	at := time.Date(2026, 9, 2, 14, 0, 0, 0, time.UTC)
	resp, err := service.Analyze(context.Background(), &AnalyzeRequest{
		Origin:        cityOrigin,
		Destination:   cityDestination,
		ScheduledTime: at,
		At:            &at,
	})
	require.NoError(t, err)
	require.NotNil(t, resp.Factors)
	require.NotNil(t, resp.Prediction)
	assert.Equal(t, 0.3, resp.Factors.Weather, "default weather source")
	assert.Greater(t, resp.Prediction.SafetyScore, 50)
	repo.AssertExpectations(t)
}

type failingWeather struct{}

func (failingWeather) RiskFactor(ctx context.Context, lat, lng float64) (float64, error) {
	return 0, assert.AnError
}

func TestServiceAnalyzeWeatherFallback(t *testing.T) {
	repo := new(MockRepository)
	repo.On("SaveAnalytics", mock.Anything, mock.Anything).Return(nil)

	service := NewService(repo, failingWeather{})

	at := time.Date(2026, 9, 2, 14, 0, 0, 0, time.UTC)
	resp, err := service.Analyze(context.Background(), &AnalyzeRequest{
		Origin:        cityOrigin,
		Destination:   cityDestination,
		ScheduledTime: at,
		At:            &at,
	})
	require.NoError(t, err)
	assert.Equal(t, 0.3, resp.Factors.Weather, "falls back to the default factor")
}

type capturingBus struct {
	subjects []string
}

func (b *capturingBus) Publish(subject string, data interface{}) error {
	b.subjects = append(b.subjects, subject)
	return nil
}

func TestServiceAnalyzePublishesCriticalAlerts(t *testing.T) {
	repo := new(MockRepository)
	repo.On("SaveAnalytics", mock.Anything, mock.Anything).Return(nil)

	bus := &capturingBus{}
	service := NewService(repo, StaticWeatherSource{Factor: 0.9})
	service.SetEventBus(bus)

	at := time.Date(2026, 9, 2, 23, 0, 0, 0, time.UTC)
	_, err := service.Analyze(context.Background(), &AnalyzeRequest{
		Origin:        cityOrigin,
		Destination:   Coordinate{Lat: 19.0760, Lng: 72.8777},
		ScheduledTime: at,
		At:            &at,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, bus.subjects, "critical weather alert should be published")
}
