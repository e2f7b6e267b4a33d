package safety

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/UtkarshSingh-06/Taxigo/pkg/common"
)

// Handler handles HTTP requests for safety analytics
type Handler struct {
	service *Service
}

// NewHandler creates a new safety handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers safety routes on the group
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/safety/analyze", h.Analyze)
	rg.GET("/safety/analytics", h.ListAnalytics)
}

// Analyze runs a safety analysis for a trip
func (h *Handler) Analyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.service.Analyze(c.Request.Context(), &req)
	if err != nil {
		common.HandleServiceError(c, err)
		return
	}

	common.SuccessResponse(c, resp)
}

// ListAnalytics returns recent stored analyses
func (h *Handler) ListAnalytics(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 100 {
			common.ErrorResponse(c, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = parsed
	}

	records, err := h.service.ListAnalytics(c.Request.Context(), limit)
	if err != nil {
		common.HandleServiceError(c, err)
		return
	}

	common.SuccessResponse(c, gin.H{"analytics": records})
}
