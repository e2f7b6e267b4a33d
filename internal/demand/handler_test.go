package demand

import (
	"bytes"
	"encoding/json"
	"fmt"
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

func setupRouter(repo RepositoryInterface) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := NewHandler(NewService(repo, nil, nil))
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

func TestPredictEndpoint(t *testing.T) {
	repo := new(MockRepository)
	repo.On("GetRecentSamples", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]HistoricalSample{}, nil)
	repo.On("SavePrediction", mock.Anything, mock.Anything).Return(nil)

	router := setupRouter(repo)

	at := time.Date(2026, 9, 7, 8, 0, 0, 0, time.UTC)
	w := performJSON(router, http.MethodPost, "/api/v1/demand/predict", gin.H{
		"location": gin.H{"lat": 28.6139, "lng": 77.2090},
		"window":   gin.H{"start": at, "end": at.Add(time.Hour)},
		"at":       at,
	})

	require.Equal(t, http.StatusOK, w.Code)

	var resp common.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)

	data := resp.Data.(map[string]interface{})
	prediction := data["prediction"].(map[string]interface{})
	assert.Equal(t, float64(65), prediction["demand"])
	assert.GreaterOrEqual(t, data["recommended_drivers"].(float64), float64(1))
}

func TestPredictEndpointBadBody(t *testing.T) {
	router := setupRouter(new(MockRepository))

	w := performJSON(router, http.MethodPost, "/api/v1/demand/predict", gin.H{
		"window": gin.H{},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAllocateEndpoint(t *testing.T) {
	router := setupRouter(new(MockRepository))

	w := performJSON(router, http.MethodPost, "/api/v1/demand/allocate", gin.H{
		"available_drivers": 10,
		"predictions": []gin.H{
			{"location": gin.H{"lat": 28.6139, "lng": 77.2090}, "demand": 60},
			{"location": gin.H{"lat": 28.5355, "lng": 77.3910}, "demand": 40},
		},
	})

	require.Equal(t, http.StatusOK, w.Code)

	var resp common.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	allocations := resp.Data.(map[string]interface{})["allocations"].([]interface{})
	require.Len(t, allocations, 2)
	assert.Equal(t, float64(6), allocations[0].(map[string]interface{})["allocated_drivers"])
}

func TestAllocateEndpointZeroDemand(t *testing.T) {
	router := setupRouter(new(MockRepository))

	w := performJSON(router, http.MethodPost, "/api/v1/demand/allocate", gin.H{
		"available_drivers": 10,
		"predictions": []gin.H{
			{"location": gin.H{"lat": 28.6139, "lng": 77.2090}, "demand": 0},
		},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListPredictionsEndpoint(t *testing.T) {
	repo := new(MockRepository)
	repo.On("ListPredictions", mock.Anything, 5).Return([]*PredictionRecord{
		{Demand: 65, Confidence: 0.5},
	}, nil)

	router := setupRouter(repo)

	w := performJSON(router, http.MethodGet, "/api/v1/demand/predictions?limit=5", nil)
	require.Equal(t, http.StatusOK, w.Code)
	repo.AssertExpectations(t)
}

func TestListPredictionsEndpointInvalidLimit(t *testing.T) {
	router := setupRouter(new(MockRepository))

	for _, limit := range []string{"0", "101", "abc"} {
		w := performJSON(router, http.MethodGet, fmt.Sprintf("/api/v1/demand/predictions?limit=%s", limit), nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, "limit %s", limit)
	}
}
