package demand

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/UtkarshSingh-06/Taxigo/pkg/common"
)

// Handler handles HTTP requests for demand prediction and allocation
type Handler struct {
	service *Service
}

// NewHandler creates a new demand handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers demand routes on the group
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/demand/predict", h.Predict)
	rg.POST("/demand/allocate", h.Allocate)
	rg.GET("/demand/predictions", h.ListPredictions)
}

// Predict returns a demand prediction for a location and time window
func (h *Handler) Predict(c *gin.Context) {
	var req PredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.service.GeneratePrediction(c.Request.Context(), &req)
	if err != nil {
		common.HandleServiceError(c, err)
		return
	}

	common.SuccessResponse(c, resp)
}

// Allocate distributes available drivers across predicted demand
func (h *Handler) Allocate(c *gin.Context) {
	var req AllocateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	allocations, err := h.service.OptimizeAllocation(c.Request.Context(), &req)
	if err != nil {
		common.HandleServiceError(c, err)
		return
	}

	common.SuccessResponse(c, gin.H{"allocations": allocations})
}

// ListPredictions returns recent stored predictions
func (h *Handler) ListPredictions(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 100 {
			common.ErrorResponse(c, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = parsed
	}

	records, err := h.service.ListPredictions(c.Request.Context(), limit)
	if err != nil {
		common.HandleServiceError(c, err)
		return
	}

	common.SuccessResponse(c, gin.H{"predictions": records})
}
