package notification

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/Marga-Ghale/ora-fabtrack/internal/activity"
	"github.com/Marga-Ghale/ora-fabtrack/internal/repository"
	"github.com/Marga-Ghale/ora-fabtrack/internal/socket"
	"github.com/Marga-Ghale/ora-fabtrack/internal/types"
)

// Notification types
const (
	TypeProjectInvitation = "PROJECT_INVITATION"
	TypeEquipmentAssigned = "EQUIPMENT_ASSIGNED"
	TypeVDCRStatusChanged = "VDCR_STATUS_CHANGED"
	TypeVDCRReviewOverdue = "VDCR_REVIEW_OVERDUE"
)

// Service persists in-app notifications and pushes them over the websocket hub.
type Service struct {
	notificationRepo repository.NotificationRepository
	userRepo         repository.UserRepository
	projectRepo      repository.ProjectRepository
	broadcaster      *socket.Broadcaster
}

func (s *Service) SetBroadcaster(b *socket.Broadcaster) {
	s.broadcaster = b
}

// NewService creates a notification service with the repositories needed to resolve recipients.
func NewService(
	notificationRepo repository.NotificationRepository,
	userRepo repository.UserRepository,
	projectRepo repository.ProjectRepository,
) *Service {
	return &Service{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		projectRepo:      projectRepo,
	}
}

// ============================================
// WebSocket Helper
// ============================================

func (s *Service) sendWebSocketNotification(ctx context.Context, notification *repository.Notification) {
	if s.broadcaster == nil || notification == nil {
		return
	}

	s.broadcaster.SendNotification(notification.UserID, map[string]interface{}{
		"id":        notification.ID,
		"type":      notification.Type,
		"title":     notification.Title,
		"message":   notification.Message,
		"data":      notification.Data,
		"read":      notification.Read,
		"createdAt": notification.CreatedAt,
	})

	if total, unread, err := s.notificationRepo.CountByUserID(ctx, notification.UserID); err == nil {
		s.broadcaster.SendNotificationCount(notification.UserID, total, unread)
	}
}

func (s *Service) create(ctx context.Context, n *repository.Notification) error {
	if n.UserID == "" {
		return nil
	}
	if err := s.notificationRepo.Create(ctx, n); err != nil {
		return err
	}
	s.sendWebSocketNotification(ctx, n)
	return nil
}

// ============================================
// Team Notifications
// ============================================

// SendProjectInvitation notifies an existing user that they were invited to a project.
func (s *Service) SendProjectInvitation(ctx context.Context, userID, projectName, projectID, inviterName, token string) error {
	return s.create(ctx, &repository.Notification{
		UserID:    userID,
		ProjectID: &projectID,
		Type:      TypeProjectInvitation,
		Title:     "Project Invitation",
		Message:   fmt.Sprintf("%s invited you to join %s", inviterName, projectName),
		Data: map[string]interface{}{
			"projectId": projectID,
			"token":     token,
			"action":    "accept_invitation",
		},
	})
}

// SendEquipmentAssigned notifies a member that their equipment assignments changed.
func (s *Service) SendEquipmentAssigned(ctx context.Context, userID, projectName, projectID string, assignments []string) error {
	message := fmt.Sprintf("You now have access to all equipment in %s", projectName)
	if !(len(assignments) == 1 && assignments[0] == types.AllEquipment) {
		message = fmt.Sprintf("You were assigned %d equipment item(s) in %s", len(assignments), projectName)
	}
	return s.create(ctx, &repository.Notification{
		UserID:    userID,
		ProjectID: &projectID,
		Type:      TypeEquipmentAssigned,
		Title:     "Equipment Assigned",
		Message:   message,
		Data: map[string]interface{}{
			"projectId":   projectID,
			"assignments": assignments,
			"action":      "view_equipment",
		},
	})
}

// ============================================
// VDCR Notifications
// ============================================

// SendVDCRStatusChanged tells each recipient except the actor that a document moved status.
func (s *Service) SendVDCRStatusChanged(ctx context.Context, userIDs []string, excludeUserID, projectID, recordID, documentName, oldStatus, newStatus string) error {
	return s.SendBatchNotifications(ctx, userIDs, excludeUserID, projectID, TypeVDCRStatusChanged,
		"VDCR Status Changed",
		fmt.Sprintf("'%s' moved from %s to %s", documentName, FormatStatus(oldStatus), FormatStatus(newStatus)),
		map[string]interface{}{
			"projectId": projectID,
			"recordId":  recordID,
			"oldStatus": oldStatus,
			"newStatus": newStatus,
			"action":    "view_vdcr",
		})
}

// OverdueDocument is one line of a review reminder.
type OverdueDocument struct {
	RecordID     string
	DocumentName string
	Status       string
	Age          string
}

// SendVDCRReviewOverdue sends one reminder listing every overdue document of a project.
func (s *Service) SendVDCRReviewOverdue(ctx context.Context, userID, projectID, projectName string, docs []OverdueDocument) error {
	if len(docs) == 0 {
		return nil
	}
	ids := make([]string, len(docs))
	names := make([]string, 0, 3)
	for i, d := range docs {
		ids[i] = d.RecordID
		if i < 3 {
			names = append(names, fmt.Sprintf("%s (%s)", d.DocumentName, d.Age))
		}
	}
	message := fmt.Sprintf("%d document(s) in %s are waiting on review: %s", len(docs), projectName, strings.Join(names, ", "))
	if len(docs) > 3 {
		message += "..."
	}

	return s.create(ctx, &repository.Notification{
		UserID:    userID,
		ProjectID: &projectID,
		Type:      TypeVDCRReviewOverdue,
		Title:     "VDCR Review Overdue",
		Message:   message,
		Data: map[string]interface{}{
			"projectId": projectID,
			"recordIds": ids,
			"action":    "view_vdcr",
		},
	})
}

// ============================================
// Batch Notifications
// ============================================

// SendBatchNotifications sends the same notification to multiple users
func (s *Service) SendBatchNotifications(ctx context.Context, userIDs []string, excludeUserID, projectID, notificationType, title, message string, data map[string]interface{}) error {
	var errs []error

	for _, userID := range userIDs {
		if userID == "" || userID == excludeUserID {
			continue
		}

		notification := &repository.Notification{
			UserID:  userID,
			Type:    notificationType,
			Title:   title,
			Message: message,
			Data:    data,
		}
		if projectID != "" {
			pid := projectID
			notification.ProjectID = &pid
		}

		if err := s.create(ctx, notification); err != nil {
			errs = append(errs, fmt.Errorf("failed to notify user %s: %w", userID, err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors sending batch notifications: %v", errs)
	}
	return nil
}

// ============================================
// Helper Functions
// ============================================

// FormatStatus converts "sent-for-approval" to "Sent For Approval".
func FormatStatus(status string) string {
	if status == "" {
		return activity.NotSet
	}
	return activity.Label(status)
}

// GetProjectManagerIDs returns the user IDs that should hear about document workflow changes:
// the project's manager plus members holding the project_manager role who have an account.
func (s *Service) GetProjectManagerIDs(ctx context.Context, projectID string) ([]string, error) {
	if s.projectRepo == nil || s.userRepo == nil {
		return nil, fmt.Errorf("project repository not available")
	}

	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, nil
	}

	seen := map[string]bool{}
	var ids []string
	add := func(id string) {
		if id != "" && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	if project.ManagerID != nil {
		add(*project.ManagerID)
	}

	members, err := s.projectRepo.FindMembers(ctx, projectID)
	if err != nil {
		return ids, err
	}
	for _, m := range members {
		if types.NormalizeRole(m.Role) != types.RoleProjectManager || m.Status == types.MemberInactive {
			continue
		}
		user, err := s.userRepo.FindByEmail(ctx, m.Email)
		if err != nil {
			log.Printf("[Notification] ⚠️ lookup %s failed: %v", m.Email, err)
			continue
		}
		if user != nil {
			add(user.ID)
		}
	}
	return ids, nil
}
