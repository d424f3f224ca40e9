package models

import "time"

// ============================================
// Equipment DTOs
// ============================================

type CreateEquipmentRequest struct {
	Name                string                   `json:"name" binding:"required"`
	Type                string                   `json:"type"`
	TagNumber           string                   `json:"tagNumber" binding:"required"`
	JobNumber           *string                  `json:"jobNumber"`
	ManufacturingSerial *string                  `json:"manufacturingSerial"`
	Status              string                   `json:"status"`
	Priority            *string                  `json:"priority"`
	Progress            int                      `json:"progress"`
	ProgressPhase       *string                  `json:"progressPhase"`
	Location            *string                  `json:"location"`
	Supervisor          *string                  `json:"supervisor"`
	NextMilestone       *string                  `json:"nextMilestone"`
	NextMilestoneDate   *time.Time               `json:"nextMilestoneDate"`
	PODate              *time.Time               `json:"poDate"`
	TechnicalSections   []map[string]interface{} `json:"technicalSections"`
	CustomFields        map[string]interface{}   `json:"customFields"`
	Notes               *string                  `json:"notes"`
}

type UpdateEquipmentRequest struct {
	Name                *string                   `json:"name"`
	Type                *string                   `json:"type"`
	TagNumber           *string                   `json:"tagNumber"`
	JobNumber           *string                   `json:"jobNumber"`
	ManufacturingSerial *string                   `json:"manufacturingSerial"`
	Status              *string                   `json:"status"`
	Priority            *string                   `json:"priority"`
	Progress            *int                      `json:"progress"`
	ProgressPhase       *string                   `json:"progressPhase"`
	Location            *string                   `json:"location"`
	Supervisor          *string                   `json:"supervisor"`
	NextMilestone       *string                   `json:"nextMilestone"`
	NextMilestoneDate   *time.Time                `json:"nextMilestoneDate"`
	PODate              *time.Time                `json:"poDate"`
	TechnicalSections   *[]map[string]interface{} `json:"technicalSections"`
	CustomFields        map[string]interface{}    `json:"customFields"`
	Notes               *string                   `json:"notes"`
}

type EquipmentResponse struct {
	ID                  string                   `json:"id"`
	ProjectID           string                   `json:"projectId"`
	Name                string                   `json:"name"`
	Type                string                   `json:"type"`
	TagNumber           string                   `json:"tagNumber"`
	JobNumber           *string                  `json:"jobNumber,omitempty"`
	ManufacturingSerial *string                  `json:"manufacturingSerial,omitempty"`
	Status              string                   `json:"status"`
	Priority            *string                  `json:"priority,omitempty"`
	Progress            int                      `json:"progress"`
	ProgressPhase       *string                  `json:"progressPhase,omitempty"`
	Location            *string                  `json:"location,omitempty"`
	Supervisor          *string                  `json:"supervisor,omitempty"`
	NextMilestone       *string                  `json:"nextMilestone,omitempty"`
	NextMilestoneDate   *time.Time               `json:"nextMilestoneDate,omitempty"`
	PODate              *time.Time               `json:"poDate,omitempty"`
	TechnicalSections   []map[string]interface{} `json:"technicalSections"`
	CustomFields        map[string]interface{}   `json:"customFields"`
	Notes               *string                  `json:"notes,omitempty"`
	CreatedBy           string                   `json:"createdBy"`
	CreatedAt           time.Time                `json:"createdAt"`
	UpdatedAt           time.Time                `json:"updatedAt"`
}
