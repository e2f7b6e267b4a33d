package safety

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/UtkarshSingh-06/Taxigo/pkg/common"
)

func setupRouter(repo RepositoryInterface, weather WeatherSource) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := NewHandler(NewService(repo, weather))
	handler.RegisterRoutes(router.Group("/api/v1"))
	return router
}

func performJSON(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAnalyzeEndpoint(t *testing.T) {
	repo := new(MockRepository)
	repo.On("SaveAnalytics", mock.Anything, mock.Anything).Return(nil)

	router := setupRouter(repo, nil)

	at := time.Date(2026, 9, 2, 14, 0, 0, 0, time.UTC)
	w := performJSON(router, http.MethodPost, "/api/v1/safety/analyze", gin.H{
		"origin":         gin.H{"lat": 28.6315, "lng": 77.2167},
		"destination":    gin.H{"lat": 28.5708, "lng": 77.3261},
		"scheduled_time": at,
		"at":             at,
	})

	require.Equal(t, http.StatusOK, w.Code)

	var resp common.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp.Success)

	data := resp.Data.(map[string]interface{})
	prediction := data["prediction"].(map[string]interface{})
	assert.Greater(t, prediction["safety_score"].(float64), float64(50))
	assert.NotNil(t, data["factors"])
}

func TestAnalyzeEndpointMissingFields(t *testing.T) {
	router := setupRouter(new(MockRepository), nil)

	w := performJSON(router, http.MethodPost, "/api/v1/safety/analyze", gin.H{
		"origin": gin.H{"lat": 28.6315, "lng": 77.2167},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAnalyzeEndpointInvalidCoordinates(t *testing.T) {
	router := setupRouter(new(MockRepository), nil)

	at := time.Date(2026, 9, 2, 14, 0, 0, 0, time.UTC)
	w := performJSON(router, http.MethodPost, "/api/v1/safety/analyze", gin.H{
		"origin":         gin.H{"lat": 95.0, "lng": 77.2167},
		"destination":    gin.H{"lat": 28.5708, "lng": 77.3261},
		"scheduled_time": at,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListAnalyticsEndpoint(t *testing.T) {
	repo := new(MockRepository)
	repo.On("ListAnalytics", mock.Anything, 10).Return([]*AnalyticsRecord{
		{Prediction: Prediction{SafetyScore: 86}},
	}, nil)

	router := setupRouter(repo, nil)

	w := performJSON(router, http.MethodGet, "/api/v1/safety/analytics?limit=10", nil)
	require.Equal(t, http.StatusOK, w.Code)
	repo.AssertExpectations(t)
}

func TestListAnalyticsEndpointInvalidLimit(t *testing.T) {
	router := setupRouter(new(MockRepository), nil)

	w := performJSON(router, http.MethodGet, "/api/v1/safety/analytics?limit=500", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
