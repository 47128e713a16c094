package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "workitem-resolver-backend/internal/errors"
	"workitem-resolver-backend/internal/service"
)

// SessionHandler exposes session state and explicit re-initialization
type SessionHandler struct {
	service *service.WorkItemService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(service *service.WorkItemService) *SessionHandler {
	return &SessionHandler{
		service: service,
	}
}

// GetStatus godoc
// @Summary Get session status
// @Description Report whether the tracking service session is initialized, plus failure counters
// @Tags session
// @Produce json
// @Success 200 {object} map[string]interface{} "Session status"
// @Router /session [get]
func (h *SessionHandler) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"initialized":         h.service.SessionInitialized(),
		"exception_count":     h.service.ExceptionCount(),
		"notification_budget": h.service.NotificationBudget(),
	})
}

// Initialize godoc
// @Summary Initialize the session
// @Description Resolve authentication material and verify connectivity against the tracking service. No retries; re-invoke as needed.
// @Tags session
// @Produce json
// @Success 200 {object} map[string]interface{} "Session initialized"
// @Failure 502 {object} map[string]interface{} "Initialization failed"
// @Router /session/initialize [post]
func (h *SessionHandler) Initialize(c *gin.Context) {
	if err := h.service.InitializeSession(); err != nil {
		status := http.StatusBadGateway
		if apperrors.IsConfiguration(err) {
			status = http.StatusInternalServerError
		}
		c.JSON(status, gin.H{"initialized": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"initialized": true})
}
