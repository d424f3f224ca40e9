package handlers

import (
	"net/http"

	"github.com/Marga-Ghale/ora-fabtrack/internal/api/middleware"
	"github.com/Marga-Ghale/ora-fabtrack/internal/models"
	"github.com/Marga-Ghale/ora-fabtrack/internal/service"
	"github.com/gin-gonic/gin"
)

// ============================================
// Equipment Handler
// ============================================

type EquipmentHandler struct {
	equipmentService service.EquipmentService
}

// List - Equipment the caller is allowed to see
// GET /projects/:id/equipment
func (h *EquipmentHandler) List(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	equipment, err := h.equipmentService.ListVisible(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response := make([]models.EquipmentResponse, len(equipment))
	for i, e := range equipment {
		response[i] = toEquipmentResponse(e)
	}

	c.JSON(http.StatusOK, response)
}

// Create - Add equipment to a project
// POST /projects/:id/equipment
func (h *EquipmentHandler) Create(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req models.CreateEquipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	equipment, err := h.equipmentService.Create(c.Request.Context(), userID, c.Param("id"), service.EquipmentInput{
		Name:                req.Name,
		Type:                req.Type,
		TagNumber:           req.TagNumber,
		JobNumber:           req.JobNumber,
		ManufacturingSerial: req.ManufacturingSerial,
		Status:              req.Status,
		Priority:            req.Priority,
		Progress:            req.Progress,
		ProgressPhase:       req.ProgressPhase,
		Location:            req.Location,
		Supervisor:          req.Supervisor,
		NextMilestone:       req.NextMilestone,
		NextMilestoneDate:   req.NextMilestoneDate,
		PODate:              req.PODate,
		TechnicalSections:   req.TechnicalSections,
		CustomFields:        req.CustomFields,
		Notes:               req.Notes,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toEquipmentResponse(equipment))
}

// Get - Single equipment record
// GET /equipment/:id
func (h *EquipmentHandler) Get(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	equipment, err := h.equipmentService.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, toEquipmentResponse(equipment))
}

// Update - Partial update; every changed field is written to the activity log
// PUT /equipment/:id
func (h *EquipmentHandler) Update(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req models.UpdateEquipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	equipment, err := h.equipmentService.Update(c.Request.Context(), userID, c.Param("id"), service.EquipmentUpdate{
		Name:                req.Name,
		Type:                req.Type,
		TagNumber:           req.TagNumber,
		JobNumber:           req.JobNumber,
		ManufacturingSerial: req.ManufacturingSerial,
		Status:              req.Status,
		Priority:            req.Priority,
		Progress:            req.Progress,
		ProgressPhase:       req.ProgressPhase,
		Location:            req.Location,
		Supervisor:          req.Supervisor,
		NextMilestone:       req.NextMilestone,
		NextMilestoneDate:   req.NextMilestoneDate,
		PODate:              req.PODate,
		TechnicalSections:   req.TechnicalSections,
		CustomFields:        req.CustomFields,
		Notes:               req.Notes,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, toEquipmentResponse(equipment))
}

// Delete - Remove equipment
// DELETE /equipment/:id
func (h *EquipmentHandler) Delete(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	if err := h.equipmentService.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Activity - Formatted change history of one equipment record
// GET /equipment/:id/activity
func (h *EquipmentHandler) Activity(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	entries, err := h.equipmentService.ListActivity(c.Request.Context(), userID, c.Param("id"), queryLimit(c, defaultActivityLimit))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, safeEntries(entries))
}
