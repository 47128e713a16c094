package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "workitem-resolver-backend/internal/errors"
	"workitem-resolver-backend/internal/service"
)

// WorkItemHandler handles HTTP requests for work item resolution
type WorkItemHandler struct {
	service *service.WorkItemService
}

// NewWorkItemHandler creates a new work item handler
func NewWorkItemHandler(service *service.WorkItemService) *WorkItemHandler {
	return &WorkItemHandler{
		service: service,
	}
}

// GetWorkItem godoc
// @Summary Resolve a work item identifier
// @Description Resolve a short identifier (e.g. ABC-123) into a fully hydrated work item with display-ready status, type and author data
// @Tags workitems
// @Accept json
// @Produce json
// @Param id path string true "Work item identifier"
// @Success 200 {object} service.WorkItem "Resolved work item"
// @Failure 404 {object} map[string]string "Work item not found"
// @Failure 503 {object} map[string]string "Session not initialized"
// @Router /workitems/{id} [get]
func (h *WorkItemHandler) GetWorkItem(c *gin.Context) {
	item, err := h.service.Resolve(c.Param("id"))
	if err != nil {
		respondResolveError(c, err)
		return
	}

	c.JSON(http.StatusOK, item)
}

// GetWorkItemURL godoc
// @Summary Resolve the public URL for a work item
// @Description Build the browser-facing tracking service URL for a work item identifier
// @Tags workitems
// @Accept json
// @Produce json
// @Param id path string true "Work item identifier"
// @Success 200 {object} map[string]string "Public work item URL"
// @Failure 404 {object} map[string]string "Work item not found"
// @Failure 503 {object} map[string]string "Session not initialized"
// @Router /workitems/{id}/url [get]
func (h *WorkItemHandler) GetWorkItemURL(c *gin.Context) {
	id := c.Param("id")

	itemURL, err := h.service.ResolveURL(id)
	if err != nil {
		respondResolveError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id, "url": itemURL})
}

// GetAttachment godoc
// @Summary Download a work item attachment
// @Description Download an attachment of a work item as a base64 payload
// @Tags workitems
// @Accept json
// @Produce json
// @Param id path string true "Work item identifier"
// @Param attachmentId path string true "Attachment identifier"
// @Success 200 {object} map[string]string "Base64-encoded attachment content"
// @Failure 404 {object} map[string]string "Work item or attachment not found"
// @Failure 503 {object} map[string]string "Session not initialized"
// @Router /workitems/{id}/attachments/{attachmentId} [get]
func (h *WorkItemHandler) GetAttachment(c *gin.Context) {
	id := c.Param("id")
	attachmentID := c.Param("attachmentId")

	content, err := h.service.FetchAttachment(id, attachmentID)
	if err != nil {
		respondResolveError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"workitem_id":   id,
		"attachment_id": attachmentID,
		"content":       content,
	})
}

// ClearCache godoc
// @Summary Clear all resolver caches
// @Description Discard every cached work item, enumeration, icon and attachment of the current session
// @Tags cache
// @Produce json
// @Success 200 {object} map[string]string "Caches cleared"
// @Router /cache [delete]
func (h *WorkItemHandler) ClearCache(c *gin.Context) {
	if err := h.service.ClearCache(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear caches"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "caches cleared"})
}

func respondResolveError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrSessionNotReady):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	case apperrors.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case apperrors.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve work item"})
	}
}
