package socket

import (
	"log"
)

// Broadcaster provides high-level methods for broadcasting events.
// A nil *Broadcaster is valid and drops every event, so services can run without a hub.
type Broadcaster struct {
	hub *Hub
}

// NewBroadcaster creates a new Broadcaster
func NewBroadcaster(hub *Hub) *Broadcaster {
	return &Broadcaster{hub: hub}
}

// ============================================
// Notification Broadcasting
// ============================================

// SendNotification sends a notification to a specific user
func (b *Broadcaster) SendNotification(userID string, notification map[string]interface{}) {
	if b == nil {
		return
	}
	b.hub.SendToUser(userID, MessageNotification, notification)
}

// SendNotificationCount updates notification count for a user
func (b *Broadcaster) SendNotificationCount(userID string, total, unread int) {
	if b == nil {
		return
	}
	b.hub.SendToUser(userID, MessageNotificationCount, map[string]interface{}{
		"total":  total,
		"unread": unread,
	})
}

// ============================================
// Equipment Broadcasting
// ============================================

// BroadcastEquipmentCreated tells project members a new equipment record exists.
// Clients refetch the list, so restricted members never receive records they cannot see.
func (b *Broadcaster) BroadcastEquipmentCreated(projectID, equipmentID string, excludeUserID string) {
	b.toProject(projectID, MessageEquipmentCreated, map[string]interface{}{
		"projectId":   projectID,
		"equipmentId": equipmentID,
	}, excludeUserID)
}

// BroadcastEquipmentUpdated carries the changed field names, not the values.
func (b *Broadcaster) BroadcastEquipmentUpdated(projectID, equipmentID string, changedFields []string, excludeUserID string) {
	b.toProject(projectID, MessageEquipmentUpdated, map[string]interface{}{
		"projectId":     projectID,
		"equipmentId":   equipmentID,
		"changedFields": changedFields,
		"changedByUser": excludeUserID,
	}, excludeUserID)
}

func (b *Broadcaster) BroadcastEquipmentDeleted(projectID, equipmentID string, excludeUserID string) {
	b.toProject(projectID, MessageEquipmentDeleted, map[string]interface{}{
		"projectId":   projectID,
		"equipmentId": equipmentID,
	}, excludeUserID)
}

// ============================================
// VDCR Broadcasting
// ============================================

func (b *Broadcaster) BroadcastVDCRCreated(projectID string, record map[string]interface{}, excludeUserID string) {
	b.toProject(projectID, MessageVDCRCreated, map[string]interface{}{
		"projectId": projectID,
		"record":    record,
	}, excludeUserID)
}

// BroadcastVDCRUpdated includes old and new status so dashboards can move the record between tabs.
func (b *Broadcaster) BroadcastVDCRUpdated(projectID string, record map[string]interface{}, oldStatus, newStatus string, excludeUserID string) {
	b.toProject(projectID, MessageVDCRUpdated, map[string]interface{}{
		"projectId":     projectID,
		"record":        record,
		"oldStatus":     oldStatus,
		"newStatus":     newStatus,
		"changedByUser": excludeUserID,
	}, excludeUserID)
}

func (b *Broadcaster) BroadcastVDCRDeleted(projectID, recordID string, excludeUserID string) {
	b.toProject(projectID, MessageVDCRDeleted, map[string]interface{}{
		"projectId": projectID,
		"recordId":  recordID,
	}, excludeUserID)
}

// ============================================
// Project & Team Broadcasting
// ============================================

func (b *Broadcaster) BroadcastProjectUpdated(projectID string, project map[string]interface{}, excludeUserID string) {
	b.toProject(projectID, MessageProjectUpdated, project, excludeUserID)
}

func (b *Broadcaster) BroadcastProjectDeleted(projectID string, excludeUserID string) {
	b.toProject(projectID, MessageProjectDeleted, map[string]interface{}{
		"projectId": projectID,
	}, excludeUserID)
}

func (b *Broadcaster) BroadcastMemberAdded(projectID string, member map[string]interface{}, excludeUserID string) {
	b.toProject(projectID, MessageMemberAdded, map[string]interface{}{
		"projectId": projectID,
		"member":    member,
	}, excludeUserID)
}

func (b *Broadcaster) BroadcastMemberUpdated(projectID string, member map[string]interface{}, excludeUserID string) {
	b.toProject(projectID, MessageMemberUpdated, map[string]interface{}{
		"projectId": projectID,
		"member":    member,
	}, excludeUserID)
}

func (b *Broadcaster) BroadcastMemberRemoved(projectID, memberID string, excludeUserID string) {
	b.toProject(projectID, MessageMemberRemoved, map[string]interface{}{
		"projectId": projectID,
		"memberId":  memberID,
	}, excludeUserID)
}

// SendToUsers sends the same message to several users
func (b *Broadcaster) SendToUsers(userIDs []string, msgType MessageType, payload map[string]interface{}) {
	if b == nil {
		return
	}
	for _, userID := range userIDs {
		if userID != "" {
			b.hub.SendToUser(userID, msgType, payload)
		}
	}
}

func (b *Broadcaster) toProject(projectID string, msgType MessageType, payload map[string]interface{}, excludeUserID string) {
	if b == nil {
		return
	}
	room := ProjectRoom(projectID)
	log.Printf("📡 %s: room=%s, exclude=%s", msgType, room, excludeUserID)
	b.hub.SendToRoom(room, msgType, payload, excludeUserID)
}
