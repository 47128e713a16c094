package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"workitem-resolver-backend/internal/service"
)

// HealthHandler handles liveness checks
type HealthHandler struct {
	service *service.WorkItemService
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(service *service.WorkItemService) *HealthHandler {
	return &HealthHandler{
		service: service,
	}
}

// Health godoc
// @Summary Health check
// @Description Report process liveness and tracking-service session state
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{} "Service is healthy"
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":              "ok",
		"session_initialized": h.service.SessionInitialized(),
	})
}
