package service

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/Marga-Ghale/ora-fabtrack/internal/activity"
	"github.com/Marga-Ghale/ora-fabtrack/internal/email"
	"github.com/Marga-Ghale/ora-fabtrack/internal/export"
	"github.com/Marga-Ghale/ora-fabtrack/internal/notification"
	"github.com/Marga-Ghale/ora-fabtrack/internal/repository"
	"github.com/Marga-Ghale/ora-fabtrack/internal/socket"
	"github.com/Marga-Ghale/ora-fabtrack/internal/types"
	"github.com/Marga-Ghale/ora-fabtrack/internal/vdcr"
)

// ============================================
// VDCR Service
// ============================================

type VDCRInput struct {
	SrNo                string
	DocumentName        string
	EquipmentTagNumbers []string
	MfgSerialNumbers    []string
	JobNumbers          []string
	ClientDocNo         *string
	InternalDocNo       *string
	Revision            *string
	CodeStatus          *string
	Status              string
	Remarks             *string
	DocumentURL         *string
}

type VDCRUpdate struct {
	SrNo                *string
	DocumentName        *string
	EquipmentTagNumbers *[]string
	MfgSerialNumbers    *[]string
	JobNumbers          *[]string
	ClientDocNo         *string
	InternalDocNo       *string
	Revision            *string
	CodeStatus          *string
	Status              *string
	Remarks             *string
	DocumentURL         *string
}

// VDCRBoard is the status-tab view of a project's documents.
type VDCRBoard struct {
	Buckets map[vdcr.Status][]*repository.VDCRRecord
	Counts  map[vdcr.Status]int
	Total   int
	Ages    map[string]string // record ID -> "N days ago"
	AsOf    time.Time
}

// VDCRExport is a ready-to-write CSV download.
type VDCRExport struct {
	FileName string
	Records  []export.Record
}

// ReviewStatuses are the statuses that wait on someone else and get reminders.
var ReviewStatuses = []string{types.VDCRSentForApproval, types.VDCRReceivedForComment}

type VDCRService interface {
	List(ctx context.Context, userID, projectID string, statuses ...string) ([]*repository.VDCRRecord, error)
	Board(ctx context.Context, userID, projectID string) (*VDCRBoard, error)
	Get(ctx context.Context, userID, id string) (*repository.VDCRRecord, error)
	Create(ctx context.Context, userID, projectID string, input VDCRInput) (*repository.VDCRRecord, error)
	Update(ctx context.Context, userID, id string, input VDCRUpdate) (*repository.VDCRRecord, error)
	Delete(ctx context.Context, userID, id string) error
	Export(ctx context.Context, userID, projectID string, statuses ...string) (*VDCRExport, error)
	ListActivity(ctx context.Context, userID, id string, limit int) ([]activity.Entry, error)
	SendReviewReminders(ctx context.Context, olderThanDays int) (int, error)
}

type vdcrService struct {
	vdcrRepo     repository.VDCRRepository
	projectRepo  repository.ProjectRepository
	userRepo     repository.UserRepository
	activityRepo repository.ActivityLogRepository
	permissions  PermissionService
	activity     ActivityService
	notifSvc     *notification.Service
	emailSvc     *email.Service
	cache        *summaryCache
	broadcaster  *socket.Broadcaster
	now          func() time.Time
}

func NewVDCRService(
	vdcrRepo repository.VDCRRepository,
	projectRepo repository.ProjectRepository,
	userRepo repository.UserRepository,
	activityRepo repository.ActivityLogRepository,
	permissions PermissionService,
	activitySvc ActivityService,
	notifSvc *notification.Service,
	emailSvc *email.Service,
	cache *summaryCache,
	broadcaster *socket.Broadcaster,
	now func() time.Time,
) VDCRService {
	return &vdcrService{
		vdcrRepo:     vdcrRepo,
		projectRepo:  projectRepo,
		userRepo:     userRepo,
		activityRepo: activityRepo,
		permissions:  permissions,
		activity:     activitySvc,
		notifSvc:     notifSvc,
		emailSvc:     emailSvc,
		cache:        cache,
		broadcaster:  broadcaster,
		now:          now,
	}
}

func (s *vdcrService) List(ctx context.Context, userID, projectID string, statuses ...string) ([]*repository.VDCRRecord, error) {
	if _, err := s.permissions.Access(ctx, userID, projectID); err != nil {
		return nil, err
	}
	records, err := s.vdcrRepo.FindByProjectID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load vdcr records: %w", err)
	}
	return vdcr.Filter(records, statuses...), nil
}

func (s *vdcrService) Board(ctx context.Context, userID, projectID string) (*VDCRBoard, error) {
	records, err := s.List(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	buckets := vdcr.Bucket(records)
	board := &VDCRBoard{
		Buckets: buckets,
		Counts:  vdcr.Counts(buckets),
		Total:   len(records),
		Ages:    make(map[string]string, len(records)),
		AsOf:    now,
	}
	for _, rec := range records {
		board.Ages[rec.ID] = vdcr.AgeLabel(vdcr.LastTouched(rec), now)
	}
	return board, nil
}

func (s *vdcrService) load(ctx context.Context, userID, id string) (*repository.VDCRRecord, *ProjectAccess, error) {
	record, err := s.vdcrRepo.FindByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if record == nil {
		return nil, nil, ErrNotFound
	}
	access, err := s.permissions.Access(ctx, userID, record.ProjectID)
	if err != nil {
		return nil, nil, err
	}
	return record, access, nil
}

func (s *vdcrService) Get(ctx context.Context, userID, id string) (*repository.VDCRRecord, error) {
	record, _, err := s.load(ctx, userID, id)
	return record, err
}

// normalizeStatus folds spelling variants and rejects anything outside the known set.
func normalizeStatus(raw string) (string, error) {
	status := vdcr.NormalizeStatus(raw)
	if !status.Known() {
		return "", ErrInvalidInput
	}
	return string(status), nil
}

func trimList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if t := strings.TrimSpace(item); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func (s *vdcrService) Create(ctx context.Context, userID, projectID string, input VDCRInput) (*repository.VDCRRecord, error) {
	access, err := s.permissions.Access(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}
	if !access.CanEditVDCR() {
		return nil, ErrForbidden
	}

	input.DocumentName = strings.TrimSpace(input.DocumentName)
	if input.DocumentName == "" {
		return nil, ErrInvalidInput
	}
	if input.Status == "" {
		input.Status = types.VDCRPending
	}
	status, err := normalizeStatus(input.Status)
	if err != nil {
		return nil, err
	}

	now := s.now()
	record := &repository.VDCRRecord{
		ProjectID:           projectID,
		SrNo:                strings.TrimSpace(input.SrNo),
		EquipmentTagNumbers: trimList(input.EquipmentTagNumbers),
		MfgSerialNumbers:    trimList(input.MfgSerialNumbers),
		JobNumbers:          trimList(input.JobNumbers),
		ClientDocNo:         input.ClientDocNo,
		InternalDocNo:       input.InternalDocNo,
		DocumentName:        input.DocumentName,
		Revision:            input.Revision,
		CodeStatus:          input.CodeStatus,
		Status:              status,
		LastUpdate:          &now,
		Remarks:             input.Remarks,
		DocumentURL:         input.DocumentURL,
		UpdatedBy:           &userID,
	}
	if err := s.vdcrRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create vdcr record: %w", err)
	}

	logEvent(ctx, s.activity, projectID, types.EntityVDCR, record.ID, types.ActivityCreated, userID,
		map[string]interface{}{"name": record.DocumentName, "sr_no": record.SrNo})
	s.cache.invalidate(ctx, projectID)
	s.broadcaster.BroadcastVDCRCreated(projectID, vdcrPayload(record), userID)
	return record, nil
}

func vdcrValues(r *repository.VDCRRecord) map[string]activity.Value {
	return map[string]activity.Value{
		"sr_no":                 textValue(r.SrNo),
		"document_name":         textValue(r.DocumentName),
		"equipment_tag_numbers": stringsValue(r.EquipmentTagNumbers),
		"mfg_serial_numbers":    stringsValue(r.MfgSerialNumbers),
		"job_numbers":           stringsValue(r.JobNumbers),
		"client_doc_no":         optionalText(r.ClientDocNo),
		"internal_doc_no":       optionalText(r.InternalDocNo),
		"revision":              optionalText(r.Revision),
		"code_status":           optionalText(r.CodeStatus),
		"status":                textValue(r.Status),
		"remarks":               optionalText(r.Remarks),
		"document_url":          optionalText(r.DocumentURL),
	}
}

func vdcrPayload(r *repository.VDCRRecord) map[string]interface{} {
	return map[string]interface{}{
		"id":           r.ID,
		"srNo":         r.SrNo,
		"documentName": r.DocumentName,
		"status":       r.Status,
	}
}

func (s *vdcrService) Update(ctx context.Context, userID, id string, input VDCRUpdate) (*repository.VDCRRecord, error) {
	record, access, err := s.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if !access.CanEditVDCR() {
		return nil, ErrForbidden
	}

	oldStatus := record.Status
	before := vdcrValues(record)
	if err := applyVDCRUpdate(record, input); err != nil {
		return nil, err
	}

	changes := activity.Diff(before, vdcrValues(record))
	if len(changes) == 0 {
		return record, nil
	}

	now := s.now()
	record.LastUpdate = &now
	record.UpdatedBy = &userID
	if err := s.vdcrRepo.Update(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to update vdcr record: %w", err)
	}

	logChanges(ctx, s.activity, record.ProjectID, types.EntityVDCR, record.ID, userID, changes)
	s.cache.invalidate(ctx, record.ProjectID)
	s.broadcaster.BroadcastVDCRUpdated(record.ProjectID, vdcrPayload(record), oldStatus, record.Status, userID)

	if oldStatus != record.Status {
		s.notifyStatusChange(ctx, access, record, oldStatus)
	}
	return record, nil
}

func applyVDCRUpdate(r *repository.VDCRRecord, input VDCRUpdate) error {
	if input.DocumentName != nil {
		if strings.TrimSpace(*input.DocumentName) == "" {
			return ErrInvalidInput
		}
		r.DocumentName = strings.TrimSpace(*input.DocumentName)
	}
	if input.Status != nil {
		status, err := normalizeStatus(*input.Status)
		if err != nil {
			return err
		}
		r.Status = status
	}
	if input.SrNo != nil {
		r.SrNo = strings.TrimSpace(*input.SrNo)
	}
	if input.EquipmentTagNumbers != nil {
		r.EquipmentTagNumbers = trimList(*input.EquipmentTagNumbers)
	}
	if input.MfgSerialNumbers != nil {
		r.MfgSerialNumbers = trimList(*input.MfgSerialNumbers)
	}
	if input.JobNumbers != nil {
		r.JobNumbers = trimList(*input.JobNumbers)
	}
	if input.ClientDocNo != nil {
		r.ClientDocNo = input.ClientDocNo
	}
	if input.InternalDocNo != nil {
		r.InternalDocNo = input.InternalDocNo
	}
	if input.Revision != nil {
		r.Revision = input.Revision
	}
	if input.CodeStatus != nil {
		r.CodeStatus = input.CodeStatus
	}
	if input.Remarks != nil {
		r.Remarks = input.Remarks
	}
	if input.DocumentURL != nil {
		r.DocumentURL = input.DocumentURL
	}
	return nil
}

// notifyStatusChange tells the project managers, minus the actor, in-app and by email.
func (s *vdcrService) notifyStatusChange(ctx context.Context, access *ProjectAccess, record *repository.VDCRRecord, oldStatus string) {
	if s.notifSvc == nil {
		return
	}
	managerIDs, err := s.notifSvc.GetProjectManagerIDs(ctx, record.ProjectID)
	if err != nil {
		log.Printf("[VDCRService] ⚠️ could not resolve managers for %s: %v", record.ProjectID, err)
		return
	}

	if err := s.notifSvc.SendVDCRStatusChanged(ctx, managerIDs, access.User.ID, record.ProjectID, record.ID,
		record.DocumentName, oldStatus, record.Status); err != nil {
		log.Printf("[VDCRService] ⚠️ status notification failed for %s: %v", record.ID, err)
	}

	if s.emailSvc == nil {
		return
	}
	for _, id := range managerIDs {
		if id == access.User.ID {
			continue
		}
		user, err := s.userRepo.FindByID(ctx, id)
		if err != nil || user == nil {
			continue
		}
		remarks := ""
		if record.Remarks != nil {
			remarks = *record.Remarks
		}
		err = s.emailSvc.SendVDCRStatusChanged(user.Email, email.VDCRStatusChangedData{
			ChangedBy:    access.User.Name,
			ProjectID:    record.ProjectID,
			ProjectName:  access.Project.Name,
			DocumentName: record.DocumentName,
			OldStatus:    notification.FormatStatus(oldStatus),
			NewStatus:    notification.FormatStatus(record.Status),
			Remarks:      remarks,
		})
		if err != nil {
			log.Printf("[VDCRService] ⚠️ status email to %s failed: %v", user.Email, err)
		}
	}
}

func (s *vdcrService) Delete(ctx context.Context, userID, id string) error {
	record, access, err := s.load(ctx, userID, id)
	if err != nil {
		return err
	}
	if !access.CanManageProject() && access.Role != types.RoleVDCRManager {
		return ErrForbidden
	}

	if err := s.vdcrRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete vdcr record: %w", err)
	}

	logEvent(ctx, s.activity, record.ProjectID, types.EntityVDCR, record.ID, types.ActivityDeleted, userID,
		map[string]interface{}{"name": record.DocumentName, "sr_no": record.SrNo})
	s.cache.invalidate(ctx, record.ProjectID)
	s.broadcaster.BroadcastVDCRDeleted(record.ProjectID, record.ID, userID)
	return nil
}

// Export flattens the project's records, optionally narrowed to some statuses, for CSV download.
func (s *vdcrService) Export(ctx context.Context, userID, projectID string, statuses ...string) (*VDCRExport, error) {
	access, err := s.permissions.Access(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}
	records, err := s.vdcrRepo.FindByProjectID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load vdcr records: %w", err)
	}

	now := s.now()
	return &VDCRExport{
		FileName: exportFileName(access.Project.Name, now),
		Records:  vdcr.Flatten(vdcr.Filter(records, statuses...), now),
	}, nil
}

func exportFileName(projectName string, now time.Time) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(projectName) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		slug = "project"
	}
	return fmt.Sprintf("vdcr-%s-%s.csv", slug, now.Format("2006-01-02"))
}

func (s *vdcrService) ListActivity(ctx context.Context, userID, id string, limit int) ([]activity.Entry, error) {
	if _, _, err := s.load(ctx, userID, id); err != nil {
		return nil, err
	}
	logs, err := s.activityRepo.FindByEntity(ctx, types.EntityVDCR, id, limit)
	if err != nil {
		return nil, err
	}
	return activity.FormatEntries(logs), nil
}

// SendReviewReminders notifies project managers about documents that have sat in a review status
// for at least olderThanDays. It returns the number of reminders delivered.
func (s *vdcrService) SendReviewReminders(ctx context.Context, olderThanDays int) (int, error) {
	if s.notifSvc == nil {
		return 0, nil
	}
	now := s.now()
	stale, err := s.vdcrRepo.FindStale(ctx, ReviewStatuses, now.AddDate(0, 0, -olderThanDays))
	if err != nil {
		return 0, fmt.Errorf("failed to find stale vdcr records: %w", err)
	}

	byProject := make(map[string][]*repository.VDCRRecord)
	for _, rec := range stale {
		byProject[rec.ProjectID] = append(byProject[rec.ProjectID], rec)
	}
	projectIDs := make([]string, 0, len(byProject))
	for id := range byProject {
		projectIDs = append(projectIDs, id)
	}
	sort.Strings(projectIDs)

	sent := 0
	for _, projectID := range projectIDs {
		project, err := s.projectRepo.FindByID(ctx, projectID)
		if err != nil || project == nil {
			continue
		}
		managerIDs, err := s.notifSvc.GetProjectManagerIDs(ctx, projectID)
		if err != nil {
			log.Printf("[VDCRService] ⚠️ could not resolve managers for %s: %v", projectID, err)
			continue
		}

		records := byProject[projectID]
		docs := make([]notification.OverdueDocument, 0, len(records))
		rows := make([]email.ReminderDocument, 0, len(records))
		for _, rec := range records {
			age := vdcr.AgeLabel(vdcr.LastTouched(rec), now)
			docs = append(docs, notification.OverdueDocument{
				RecordID:     rec.ID,
				DocumentName: rec.DocumentName,
				Status:       rec.Status,
				Age:          age,
			})
			rows = append(rows, email.ReminderDocument{
				SrNo:         rec.SrNo,
				DocumentName: rec.DocumentName,
				Status:       notification.FormatStatus(rec.Status),
				Age:          age,
			})
		}

		for _, managerID := range managerIDs {
			if err := s.notifSvc.SendVDCRReviewOverdue(ctx, managerID, projectID, project.Name, docs); err != nil {
				log.Printf("[VDCRService] ⚠️ reminder to %s failed: %v", managerID, err)
				continue
			}
			sent++
			s.emailReminder(ctx, managerID, project, rows)
		}
	}
	return sent, nil
}

func (s *vdcrService) emailReminder(ctx context.Context, userID string, project *repository.Project, rows []email.ReminderDocument) {
	if s.emailSvc == nil {
		return
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil || user == nil {
		return
	}
	err = s.emailSvc.SendVDCRReminder(user.Email, email.VDCRReminderData{
		RecipientName: user.Name,
		ProjectID:     project.ID,
		ProjectName:   project.Name,
		Documents:     rows,
	})
	if err != nil {
		log.Printf("[VDCRService] ⚠️ reminder email to %s failed: %v", user.Email, err)
	}
}
