package types

import "strings"

// Firm / project member roles
const (
	RoleAdmin          = "admin"
	RoleProjectManager = "project_manager"
	RoleVDCRManager    = "vdcr_manager"
	RoleEditor         = "editor"
	RoleViewer         = "viewer"
)

// AllEquipment is the assignment sentinel granting access to every equipment record.
const AllEquipment = "All Equipment"

// VDCR document status values
const (
	VDCRApproved           = "approved"
	VDCRSentForApproval    = "sent-for-approval"
	VDCRReceivedForComment = "received-for-comment"
	VDCRPending            = "pending"
	VDCRRejected           = "rejected"
)

// Equipment status values
const (
	EquipmentPending    = "pending"
	EquipmentInProgress = "in-progress"
	EquipmentCompleted  = "completed"
	EquipmentDelayed    = "delayed"
	EquipmentDispatched = "dispatched"
)

// Project status values
const (
	ProjectActive    = "active"
	ProjectOnHold    = "on-hold"
	ProjectCompleted = "completed"
	ProjectDelayed   = "delayed"
)

// Member status values
const (
	MemberActive   = "active"
	MemberInactive = "inactive"
	MemberInvited  = "invited"
)

// Activity entity types
const (
	EntityProject   = "project"
	EntityEquipment = "equipment"
	EntityVDCR      = "vdcr"
	EntityMember    = "member"
)

// Activity types
const (
	ActivityCreated       = "created"
	ActivityUpdated       = "updated"
	ActivityDeleted       = "deleted"
	ActivityStatusChanged = "status_changed"
	ActivityAssigned      = "assigned"
	ActivityInvited       = "invited"
)

var ValidRoles = []string{
	RoleAdmin, RoleProjectManager, RoleVDCRManager, RoleEditor, RoleViewer,
}

var ValidVDCRStatuses = []string{
	VDCRApproved, VDCRSentForApproval, VDCRReceivedForComment, VDCRPending, VDCRRejected,
}

var ValidEquipmentStatuses = []string{
	EquipmentPending, EquipmentInProgress, EquipmentCompleted, EquipmentDelayed, EquipmentDispatched,
}

var ValidProjectStatuses = []string{
	ProjectActive, ProjectOnHold, ProjectCompleted, ProjectDelayed,
}

// Helper functions for validation
func IsValidRole(role string) bool {
	return contains(ValidRoles, role)
}

func IsValidVDCRStatus(status string) bool {
	return contains(ValidVDCRStatuses, status)
}

func IsValidEquipmentStatus(status string) bool {
	return contains(ValidEquipmentStatuses, status)
}

func IsValidProjectStatus(status string) bool {
	return contains(ValidProjectStatuses, status)
}

// NormalizeRole converts stored role spellings ("Project Manager", "PROJECT_MANAGER") to the canonical form.
func NormalizeRole(role string) string {
	r := strings.ToLower(strings.TrimSpace(role))
	r = strings.NewReplacer(" ", "_", "-", "_").Replace(r)
	return r
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
