package handlers

import (
	"fmt"
	"log"
	"net/http"
	"sort"
	"time"

	"github.com/Marga-Ghale/ora-fabtrack/internal/api/middleware"
	"github.com/Marga-Ghale/ora-fabtrack/internal/export"
	"github.com/Marga-Ghale/ora-fabtrack/internal/models"
	"github.com/Marga-Ghale/ora-fabtrack/internal/notification"
	"github.com/Marga-Ghale/ora-fabtrack/internal/service"
	"github.com/Marga-Ghale/ora-fabtrack/internal/vdcr"
	"github.com/gin-gonic/gin"
)

// ============================================
// VDCR Handler
// ============================================

type VDCRHandler struct {
	vdcrService service.VDCRService
}

// List - Records for a project, optionally filtered by ?status=
// GET /projects/:id/vdcr
func (h *VDCRHandler) List(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	records, err := h.vdcrService.List(c.Request.Context(), userID, c.Param("id"), queryList(c, "status")...)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	now := time.Now()
	response := make([]models.VDCRResponse, len(records))
	for i, r := range records {
		response[i] = toVDCRResponse(r, vdcr.AgeLabel(vdcr.LastTouched(r), now))
	}

	c.JSON(http.StatusOK, response)
}

// Buckets - Records grouped into status tabs with counts
// GET /projects/:id/vdcr/buckets
func (h *VDCRHandler) Buckets(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	board, err := h.vdcrService.Board(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, toBoardResponse(board))
}

// Known tabs come first in display order, then any unrecognized statuses alphabetically.
func toBoardResponse(board *service.VDCRBoard) models.VDCRBoardResponse {
	order := append([]vdcr.Status{}, vdcr.Statuses...)
	var extra []vdcr.Status
	for s := range board.Buckets {
		if !s.Known() {
			extra = append(extra, s)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	order = append(order, extra...)

	resp := models.VDCRBoardResponse{
		Total:   board.Total,
		Buckets: make([]models.VDCRBucketResponse, 0, len(order)),
		AsOf:    board.AsOf,
	}
	for _, s := range order {
		recs := board.Buckets[s]
		bucket := models.VDCRBucketResponse{
			Status:  string(s),
			Label:   notification.FormatStatus(string(s)),
			Count:   board.Counts[s],
			Records: make([]models.VDCRResponse, len(recs)),
		}
		for i, r := range recs {
			bucket.Records[i] = toVDCRResponse(r, board.Ages[r.ID])
		}
		resp.Buckets = append(resp.Buckets, bucket)
	}
	return resp
}

// Create - Add a document record
// POST /projects/:id/vdcr
func (h *VDCRHandler) Create(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req models.CreateVDCRRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record, err := h.vdcrService.Create(c.Request.Context(), userID, c.Param("id"), service.VDCRInput{
		SrNo:                req.SrNo,
		DocumentName:        req.DocumentName,
		EquipmentTagNumbers: req.EquipmentTagNumbers,
		MfgSerialNumbers:    req.MfgSerialNumbers,
		JobNumbers:          req.JobNumbers,
		ClientDocNo:         req.ClientDocNo,
		InternalDocNo:       req.InternalDocNo,
		Revision:            req.Revision,
		CodeStatus:          req.CodeStatus,
		Status:              req.Status,
		Remarks:             req.Remarks,
		DocumentURL:         req.DocumentURL,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toVDCRResponse(record, vdcr.AgeLabel(vdcr.LastTouched(record), time.Now())))
}

// Update - Partial update of a document record
// PUT /vdcr/:id
func (h *VDCRHandler) Update(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req models.UpdateVDCRRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record, err := h.vdcrService.Update(c.Request.Context(), userID, c.Param("id"), service.VDCRUpdate{
		SrNo:                req.SrNo,
		DocumentName:        req.DocumentName,
		EquipmentTagNumbers: req.EquipmentTagNumbers,
		MfgSerialNumbers:    req.MfgSerialNumbers,
		JobNumbers:          req.JobNumbers,
		ClientDocNo:         req.ClientDocNo,
		InternalDocNo:       req.InternalDocNo,
		Revision:            req.Revision,
		CodeStatus:          req.CodeStatus,
		Status:              req.Status,
		Remarks:             req.Remarks,
		DocumentURL:         req.DocumentURL,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, toVDCRResponse(record, vdcr.AgeLabel(vdcr.LastTouched(record), time.Now())))
}

// Delete - Remove a document record
// DELETE /vdcr/:id
func (h *VDCRHandler) Delete(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	if err := h.vdcrService.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Export - CSV download of the (optionally filtered) records
// GET /projects/:id/vdcr/export.csv
func (h *VDCRHandler) Export(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	exp, err := h.vdcrService.Export(c.Request.Context(), userID, c.Param("id"), queryList(c, "status")...)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exp.FileName))
	c.Status(http.StatusOK)
	if err := export.WriteCSV(c.Writer, exp.Records); err != nil {
		log.Printf("❌ [VDCR] Failed to write export %s: %v", exp.FileName, err)
	}
}

// Activity - Formatted change history of one document record
// GET /vdcr/:id/activity
func (h *VDCRHandler) Activity(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	entries, err := h.vdcrService.ListActivity(c.Request.Context(), userID, c.Param("id"), queryLimit(c, defaultActivityLimit))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, safeEntries(entries))
}
