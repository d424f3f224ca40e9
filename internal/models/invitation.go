package models

import "time"

type InvitationResponse struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"projectId"`
	MemberID  string    `json:"memberId"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	InvitedBy string    `json:"invitedBy"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}
