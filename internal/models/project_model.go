package models

import "time"

// ============================================
// Project DTOs
// ============================================

type CreateProjectRequest struct {
	Name           string     `json:"name" binding:"required"`
	ClientName     string     `json:"clientName" binding:"required"`
	Location       *string    `json:"location"`
	PONumber       *string    `json:"poNumber"`
	SalesOrderDate *time.Time `json:"salesOrderDate"`
	Deadline       *time.Time `json:"deadline"`
	Status         string     `json:"status"`
	ManagerID      *string    `json:"managerId"`
}

type UpdateProjectRequest struct {
	Name           *string    `json:"name"`
	ClientName     *string    `json:"clientName"`
	Location       *string    `json:"location"`
	PONumber       *string    `json:"poNumber"`
	SalesOrderDate *time.Time `json:"salesOrderDate"`
	Deadline       *time.Time `json:"deadline"`
	Status         *string    `json:"status"`
	ManagerID      *string    `json:"managerId"`
}

type ProjectResponse struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	ClientName     string     `json:"clientName"`
	Location       *string    `json:"location,omitempty"`
	PONumber       *string    `json:"poNumber,omitempty"`
	SalesOrderDate *time.Time `json:"salesOrderDate,omitempty"`
	Deadline       *time.Time `json:"deadline,omitempty"`
	Status         string     `json:"status"`
	ManagerID      *string    `json:"managerId,omitempty"`
	CreatedBy      string     `json:"createdBy"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}
