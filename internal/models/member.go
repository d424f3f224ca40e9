package models

import "time"

// ============================================
// Member DTOs
// ============================================

type CreateMemberRequest struct {
	Name                 string   `json:"name"`
	Email                string   `json:"email" binding:"required,email"`
	Phone                *string  `json:"phone"`
	Position             *string  `json:"position"`
	Role                 string   `json:"role"`
	EquipmentAssignments []string `json:"equipmentAssignments"`
}

type UpdateMemberRequest struct {
	Name                 *string   `json:"name"`
	Phone                *string   `json:"phone"`
	Position             *string   `json:"position"`
	Role                 *string   `json:"role"`
	Status               *string   `json:"status"`
	EquipmentAssignments *[]string `json:"equipmentAssignments"`
}

type MemberResponse struct {
	ID                   string     `json:"id"`
	ProjectID            string     `json:"projectId"`
	Name                 string     `json:"name"`
	Email                string     `json:"email"`
	Phone                *string    `json:"phone,omitempty"`
	Position             *string    `json:"position,omitempty"`
	Role                 string     `json:"role"`
	Status               string     `json:"status"`
	EquipmentAssignments []string   `json:"equipmentAssignments"`
	LastActive           *time.Time `json:"lastActive,omitempty"`
	CreatedAt            time.Time  `json:"createdAt"`
}

// AssignmentResponse pairs a project with the caller's roster entry on it.
type AssignmentResponse struct {
	Project ProjectResponse `json:"project"`
	Member  MemberResponse  `json:"member"`
}
