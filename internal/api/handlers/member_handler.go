package handlers

import (
	"net/http"

	"github.com/Marga-Ghale/ora-fabtrack/internal/api/middleware"
	"github.com/Marga-Ghale/ora-fabtrack/internal/models"
	"github.com/Marga-Ghale/ora-fabtrack/internal/service"
	"github.com/gin-gonic/gin"
)

// ============================================
// Member Handler
// ============================================

type MemberHandler struct {
	memberService service.MemberService
}

// List - Project roster
// GET /projects/:id/members
func (h *MemberHandler) List(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	members, err := h.memberService.List(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response := make([]models.MemberResponse, len(members))
	for i, m := range members {
		response[i] = toMemberResponse(m)
	}

	c.JSON(http.StatusOK, response)
}

// Create - Add a member to the roster
// POST /projects/:id/members
func (h *MemberHandler) Create(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req models.CreateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	member, err := h.memberService.Create(c.Request.Context(), userID, c.Param("id"), memberInput(req))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toMemberResponse(member))
}

// Update - Change role, status or equipment assignments
// PUT /projects/:id/members/:memberId
func (h *MemberHandler) Update(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req models.UpdateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	member, err := h.memberService.Update(c.Request.Context(), userID, c.Param("memberId"), service.MemberUpdate{
		Name:                 req.Name,
		Phone:                req.Phone,
		Position:             req.Position,
		Role:                 req.Role,
		Status:               req.Status,
		EquipmentAssignments: req.EquipmentAssignments,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, toMemberResponse(member))
}

// Delete - Remove a member
// DELETE /projects/:id/members/:memberId
func (h *MemberHandler) Delete(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	if err := h.memberService.Delete(c.Request.Context(), userID, c.Param("memberId")); err != nil {
		handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func memberInput(req models.CreateMemberRequest) service.MemberInput {
	return service.MemberInput{
		Name:                 req.Name,
		Email:                req.Email,
		Phone:                req.Phone,
		Position:             req.Position,
		Role:                 req.Role,
		EquipmentAssignments: req.EquipmentAssignments,
	}
}
