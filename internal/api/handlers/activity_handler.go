package handlers

import (
	"net/http"

	"github.com/Marga-Ghale/ora-fabtrack/internal/activity"
	"github.com/Marga-Ghale/ora-fabtrack/internal/api/middleware"
	"github.com/Marga-Ghale/ora-fabtrack/internal/service"
	"github.com/gin-gonic/gin"
)

// ============================================
// Activity Handler
// ============================================

const defaultActivityLimit = 50

// ActivityHandler serves the project activity feed
type ActivityHandler struct {
	projectService service.ProjectService
}

// NewActivityHandler creates a new activity handler
func NewActivityHandler(projectService service.ProjectService) *ActivityHandler {
	return &ActivityHandler{projectService: projectService}
}

// GetProjectActivities gets formatted activity for a project
// GET /projects/:id/activity
func (h *ActivityHandler) GetProjectActivities(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	entries, err := h.projectService.Activity(c.Request.Context(), userID, c.Param("id"), queryLimit(c, defaultActivityLimit))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, safeEntries(entries))
}

func safeEntries(entries []activity.Entry) []activity.Entry {
	if entries == nil {
		return []activity.Entry{}
	}
	return entries
}
