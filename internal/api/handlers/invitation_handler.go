package handlers

import (
	"net/http"

	"github.com/Marga-Ghale/ora-fabtrack/internal/api/middleware"
	"github.com/Marga-Ghale/ora-fabtrack/internal/models"
	"github.com/Marga-Ghale/ora-fabtrack/internal/service"
	"github.com/gin-gonic/gin"
)

// ============================================
// Invitation Handler
// ============================================

type InvitationHandler struct {
	memberService service.MemberService
}

// Invite - Email an invitation to join the project
// POST /projects/:id/invitations
func (h *InvitationHandler) Invite(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req models.CreateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	invitation, err := h.memberService.Invite(c.Request.Context(), userID, c.Param("id"), memberInput(req))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toInvitationResponse(invitation))
}

// List - Invitations sent for a project
// GET /projects/:id/invitations
func (h *InvitationHandler) List(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	invitations, err := h.memberService.ListInvitations(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response := make([]models.InvitationResponse, len(invitations))
	for i, inv := range invitations {
		response[i] = toInvitationResponse(inv)
	}

	c.JSON(http.StatusOK, response)
}

// Accept - Accept an invitation by token
// POST /invitations/accept/:token
func (h *InvitationHandler) Accept(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	member, err := h.memberService.AcceptInvitation(c.Request.Context(), userID, c.Param("token"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, toMemberResponse(member))
}
