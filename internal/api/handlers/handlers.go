package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/Marga-Ghale/ora-fabtrack/internal/models"
	"github.com/Marga-Ghale/ora-fabtrack/internal/repository"
	"github.com/Marga-Ghale/ora-fabtrack/internal/service"
	"github.com/gin-gonic/gin"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	Auth         *AuthHandler
	User         *UserHandler
	Project      *ProjectHandler
	Member       *MemberHandler
	Invitation   *InvitationHandler
	Equipment    *EquipmentHandler
	VDCR         *VDCRHandler
	Activity     *ActivityHandler
	Notification *NotificationHandler
}

// NewHandlers creates all handlers
func NewHandlers(services *service.Services) *Handlers {
	return &Handlers{
		Auth:         &AuthHandler{authService: services.Auth},
		User:         &UserHandler{userService: services.User},
		Project:      &ProjectHandler{projectService: services.Project},
		Member:       &MemberHandler{memberService: services.Member},
		Invitation:   &InvitationHandler{memberService: services.Member},
		Equipment:    &EquipmentHandler{equipmentService: services.Equipment},
		VDCR:         &VDCRHandler{vdcrService: services.VDCR},
		Activity:     NewActivityHandler(services.Project),
		Notification: &NotificationHandler{notificationService: services.Notification},
	}
}

// ============================================
// Error Mapping
// ============================================

func handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Resource not found"})
	case errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
	case errors.Is(err, service.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
	case errors.Is(err, service.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
	case errors.Is(err, service.ErrUserExists):
		c.JSON(http.StatusConflict, gin.H{"error": "User already exists"})
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "Resource already exists"})
	case errors.Is(err, service.ErrInvitationClosed):
		c.JSON(http.StatusGone, gin.H{"error": "Invitation is no longer valid"})
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// queryLimit reads ?limit=, falling back to def for missing or bad values.
func queryLimit(c *gin.Context, def int) int {
	if l := c.Query("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 {
			return v
		}
	}
	return def
}

// queryList splits a comma separated query value, e.g. ?status=pending,approved.
func queryList(c *gin.Context, key string) []string {
	var out []string
	for _, raw := range c.QueryArray(key) {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// ============================================
// Response Mappers
// ============================================

func toUserResponse(u *repository.User) models.UserResponse {
	return models.UserResponse{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		Role:         u.Role,
		Phone:        u.Phone,
		Avatar:       u.Avatar,
		LastActiveAt: u.LastActiveAt,
		CreatedAt:    u.CreatedAt,
	}
}

func toProjectResponse(p *repository.Project) models.ProjectResponse {
	return models.ProjectResponse{
		ID:             p.ID,
		Name:           p.Name,
		ClientName:     p.ClientName,
		Location:       p.Location,
		PONumber:       p.PONumber,
		SalesOrderDate: p.SalesOrderDate,
		Deadline:       p.Deadline,
		Status:         p.Status,
		ManagerID:      p.ManagerID,
		CreatedBy:      p.CreatedBy,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func toMemberResponse(m *repository.ProjectMember) models.MemberResponse {
	return models.MemberResponse{
		ID:                   m.ID,
		ProjectID:            m.ProjectID,
		Name:                 m.Name,
		Email:                m.Email,
		Phone:                m.Phone,
		Position:             m.Position,
		Role:                 m.Role,
		Status:               m.Status,
		EquipmentAssignments: safeStringSlice(m.EquipmentAssignments),
		LastActive:           m.LastActive,
		CreatedAt:            m.CreatedAt,
	}
}

func toInvitationResponse(i *repository.Invitation) models.InvitationResponse {
	return models.InvitationResponse{
		ID:        i.ID,
		ProjectID: i.ProjectID,
		MemberID:  i.MemberID,
		Email:     i.Email,
		Role:      i.Role,
		Status:    i.Status,
		InvitedBy: i.InvitedBy,
		ExpiresAt: i.ExpiresAt,
		CreatedAt: i.CreatedAt,
	}
}

func toEquipmentResponse(e *repository.Equipment) models.EquipmentResponse {
	resp := models.EquipmentResponse{
		ID:                  e.ID,
		ProjectID:           e.ProjectID,
		Name:                e.Name,
		Type:                e.Type,
		TagNumber:           e.TagNumber,
		JobNumber:           e.JobNumber,
		ManufacturingSerial: e.ManufacturingSerial,
		Status:              e.Status,
		Priority:            e.Priority,
		Progress:            e.Progress,
		ProgressPhase:       e.ProgressPhase,
		Location:            e.Location,
		Supervisor:          e.Supervisor,
		NextMilestone:       e.NextMilestone,
		NextMilestoneDate:   e.NextMilestoneDate,
		PODate:              e.PODate,
		TechnicalSections:   e.TechnicalSections,
		CustomFields:        e.CustomFields,
		Notes:               e.Notes,
		CreatedBy:           e.CreatedBy,
		CreatedAt:           e.CreatedAt,
		UpdatedAt:           e.UpdatedAt,
	}
	if resp.TechnicalSections == nil {
		resp.TechnicalSections = []map[string]interface{}{}
	}
	if resp.CustomFields == nil {
		resp.CustomFields = map[string]interface{}{}
	}
	return resp
}

func toVDCRResponse(r *repository.VDCRRecord, age string) models.VDCRResponse {
	return models.VDCRResponse{
		ID:                  r.ID,
		ProjectID:           r.ProjectID,
		SrNo:                r.SrNo,
		EquipmentTagNumbers: safeStringSlice(r.EquipmentTagNumbers),
		MfgSerialNumbers:    safeStringSlice(r.MfgSerialNumbers),
		JobNumbers:          safeStringSlice(r.JobNumbers),
		ClientDocNo:         r.ClientDocNo,
		InternalDocNo:       r.InternalDocNo,
		DocumentName:        r.DocumentName,
		Revision:            r.Revision,
		CodeStatus:          r.CodeStatus,
		Status:              r.Status,
		LastUpdate:          r.LastUpdate,
		Age:                 age,
		Remarks:             r.Remarks,
		DocumentURL:         r.DocumentURL,
		UpdatedBy:           r.UpdatedBy,
		CreatedAt:           r.CreatedAt,
		UpdatedAt:           r.UpdatedAt,
	}
}

func toNotificationResponse(n *repository.Notification) models.NotificationResponse {
	resp := models.NotificationResponse{
		ID:        n.ID,
		UserID:    n.UserID,
		ProjectID: n.ProjectID,
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
	if n.Data != nil {
		resp.Data = &n.Data
	}
	return resp
}

// Helper to ensure nil slices become empty slices
func safeStringSlice(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
