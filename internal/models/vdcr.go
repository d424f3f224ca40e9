package models

import "time"

// ============================================
// VDCR DTOs
// ============================================

type CreateVDCRRequest struct {
	SrNo                string   `json:"srNo"`
	DocumentName        string   `json:"documentName" binding:"required"`
	EquipmentTagNumbers []string `json:"equipmentTagNumbers"`
	MfgSerialNumbers    []string `json:"mfgSerialNumbers"`
	JobNumbers          []string `json:"jobNumbers"`
	ClientDocNo         *string  `json:"clientDocNo"`
	InternalDocNo       *string  `json:"internalDocNo"`
	Revision            *string  `json:"revision"`
	CodeStatus          *string  `json:"codeStatus"`
	Status              string   `json:"status"`
	Remarks             *string  `json:"remarks"`
	DocumentURL         *string  `json:"documentUrl"`
}

type UpdateVDCRRequest struct {
	SrNo                *string   `json:"srNo"`
	DocumentName        *string   `json:"documentName"`
	EquipmentTagNumbers *[]string `json:"equipmentTagNumbers"`
	MfgSerialNumbers    *[]string `json:"mfgSerialNumbers"`
	JobNumbers          *[]string `json:"jobNumbers"`
	ClientDocNo         *string   `json:"clientDocNo"`
	InternalDocNo       *string   `json:"internalDocNo"`
	Revision            *string   `json:"revision"`
	CodeStatus          *string   `json:"codeStatus"`
	Status              *string   `json:"status"`
	Remarks             *string   `json:"remarks"`
	DocumentURL         *string   `json:"documentUrl"`
}

type VDCRResponse struct {
	ID                  string     `json:"id"`
	ProjectID           string     `json:"projectId"`
	SrNo                string     `json:"srNo"`
	EquipmentTagNumbers []string   `json:"equipmentTagNumbers"`
	MfgSerialNumbers    []string   `json:"mfgSerialNumbers"`
	JobNumbers          []string   `json:"jobNumbers"`
	ClientDocNo         *string    `json:"clientDocNo,omitempty"`
	InternalDocNo       *string    `json:"internalDocNo,omitempty"`
	DocumentName        string     `json:"documentName"`
	Revision            *string    `json:"revision,omitempty"`
	CodeStatus          *string    `json:"codeStatus,omitempty"`
	Status              string     `json:"status"`
	LastUpdate          *time.Time `json:"lastUpdate,omitempty"`
	Age                 string     `json:"age,omitempty"`
	Remarks             *string    `json:"remarks,omitempty"`
	DocumentURL         *string    `json:"documentUrl,omitempty"`
	UpdatedBy           *string    `json:"updatedBy,omitempty"`
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt"`
}

// VDCRBucketResponse is one status tab.
type VDCRBucketResponse struct {
	Status  string         `json:"status"`
	Label   string         `json:"label"`
	Count   int            `json:"count"`
	Records []VDCRResponse `json:"records"`
}

type VDCRBoardResponse struct {
	Total   int                  `json:"total"`
	Buckets []VDCRBucketResponse `json:"buckets"`
	AsOf    time.Time            `json:"asOf"`
}
