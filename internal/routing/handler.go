package routing

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/UtkarshSingh-06/Taxigo/pkg/common"
)

// Handler handles HTTP requests for route optimization
type Handler struct {
	service *Service
}

// NewHandler creates a new routing handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers routing routes on the group
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/routes/optimize", h.Optimize)
	rg.POST("/routes/alternatives", h.Alternatives)
	rg.GET("/routes/:id", h.Get)
	rg.POST("/routes/:id/updates", h.AppendUpdate)
	rg.PATCH("/routes/:id/status", h.UpdateStatus)
}

// Optimize computes and stores a route optimization
func (h *Handler) Optimize(c *gin.Context) {
	var req OptimizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	record, err := h.service.Optimize(c.Request.Context(), &req)
	if err != nil {
		common.HandleServiceError(c, err)
		return
	}

	common.CreatedResponse(c, record)
}

// Alternatives returns ranked alternative routes
func (h *Handler) Alternatives(c *gin.Context) {
	var req AlternativesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	routes, err := h.service.Alternatives(req.Origin, req.Destination, req.Count)
	if err != nil {
		common.HandleServiceError(c, err)
		return
	}

	common.SuccessResponse(c, gin.H{"routes": routes})
}

// Get fetches a stored optimization
func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid optimization id")
		return
	}

	record, err := h.service.GetOptimization(c.Request.Context(), id)
	if err != nil {
		common.HandleServiceError(c, err)
		return
	}

	common.SuccessResponse(c, record)
}

// AppendUpdate appends a realtime update to an optimization's log
func (h *Handler) AppendUpdate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid optimization id")
		return
	}

	var req RealtimeUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	record, err := h.service.AppendRealtimeUpdate(c.Request.Context(), id, &req)
	if err != nil {
		common.HandleServiceError(c, err)
		return
	}

	common.SuccessResponse(c, record)
}

// UpdateStatus moves an optimization through its lifecycle
func (h *Handler) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid optimization id")
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.UpdateStatus(c.Request.Context(), id, req.Status); err != nil {
		common.HandleServiceError(c, err)
		return
	}

	common.SuccessResponse(c, gin.H{"id": id, "status": req.Status})
}
