package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/Marga-Ghale/ora-fabtrack/internal/activity"
	"github.com/Marga-Ghale/ora-fabtrack/internal/repository"
	"github.com/Marga-Ghale/ora-fabtrack/internal/socket"
	"github.com/Marga-Ghale/ora-fabtrack/internal/types"
	"github.com/shopspring/decimal"
)

// ============================================
// Equipment Service
// ============================================

type EquipmentInput struct {
	Name                string
	Type                string
	TagNumber           string
	JobNumber           *string
	ManufacturingSerial *string
	Status              string
	Priority            *string
	Progress            int
	ProgressPhase       *string
	Location            *string
	Supervisor          *string
	NextMilestone       *string
	NextMilestoneDate   *time.Time
	PODate              *time.Time
	TechnicalSections   []map[string]interface{}
	CustomFields        map[string]interface{}
	Notes               *string
}

// EquipmentUpdate carries only the fields being changed.
type EquipmentUpdate struct {
	Name                *string
	Type                *string
	TagNumber           *string
	JobNumber           *string
	ManufacturingSerial *string
	Status              *string
	Priority            *string
	Progress            *int
	ProgressPhase       *string
	Location            *string
	Supervisor          *string
	NextMilestone       *string
	NextMilestoneDate   *time.Time
	PODate              *time.Time
	TechnicalSections   *[]map[string]interface{}
	CustomFields        map[string]interface{}
	Notes               *string
}

type EquipmentService interface {
	ListVisible(ctx context.Context, userID, projectID string) ([]*repository.Equipment, error)
	Get(ctx context.Context, userID, id string) (*repository.Equipment, error)
	Create(ctx context.Context, userID, projectID string, input EquipmentInput) (*repository.Equipment, error)
	Update(ctx context.Context, userID, id string, input EquipmentUpdate) (*repository.Equipment, error)
	Delete(ctx context.Context, userID, id string) error
	ListActivity(ctx context.Context, userID, id string, limit int) ([]activity.Entry, error)
}

type equipmentService struct {
	equipmentRepo repository.EquipmentRepository
	activityRepo  repository.ActivityLogRepository
	permissions   PermissionService
	activity      ActivityService
	cache         *summaryCache
	broadcaster   *socket.Broadcaster
}

func NewEquipmentService(
	equipmentRepo repository.EquipmentRepository,
	activityRepo repository.ActivityLogRepository,
	permissions PermissionService,
	activitySvc ActivityService,
	cache *summaryCache,
	broadcaster *socket.Broadcaster,
) EquipmentService {
	return &equipmentService{
		equipmentRepo: equipmentRepo,
		activityRepo:  activityRepo,
		permissions:   permissions,
		activity:      activitySvc,
		cache:         cache,
		broadcaster:   broadcaster,
	}
}

// ListVisible returns the project's equipment filtered for the caller's role and assignments.
func (s *equipmentService) ListVisible(ctx context.Context, userID, projectID string) ([]*repository.Equipment, error) {
	access, err := s.permissions.Access(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}

	equipment, err := s.equipmentRepo.FindByProjectID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load equipment: %w", err)
	}
	return access.FilterEquipment(equipment), nil
}

// load fetches a record and the caller's access to its project. Hidden records read as forbidden.
func (s *equipmentService) load(ctx context.Context, userID, id string) (*repository.Equipment, *ProjectAccess, error) {
	equipment, err := s.equipmentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if equipment == nil {
		return nil, nil, ErrNotFound
	}

	access, err := s.permissions.Access(ctx, userID, equipment.ProjectID)
	if err != nil {
		return nil, nil, err
	}
	if !access.CanSeeEquipment(equipment) {
		return nil, nil, ErrForbidden
	}
	return equipment, access, nil
}

func (s *equipmentService) Get(ctx context.Context, userID, id string) (*repository.Equipment, error) {
	equipment, _, err := s.load(ctx, userID, id)
	return equipment, err
}

func (s *equipmentService) Create(ctx context.Context, userID, projectID string, input EquipmentInput) (*repository.Equipment, error) {
	access, err := s.permissions.Access(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}
	if !access.CanManageEquipment() {
		return nil, ErrForbidden
	}

	input.Name = strings.TrimSpace(input.Name)
	input.TagNumber = strings.TrimSpace(input.TagNumber)
	if input.Name == "" || input.TagNumber == "" {
		return nil, ErrInvalidInput
	}
	if input.Status == "" {
		input.Status = types.EquipmentPending
	}
	if !types.IsValidEquipmentStatus(input.Status) || input.Progress < 0 || input.Progress > 100 {
		return nil, ErrInvalidInput
	}

	existing, err := s.equipmentRepo.FindByProjectID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	for _, e := range existing {
		if strings.EqualFold(e.TagNumber, input.TagNumber) {
			return nil, ErrConflict
		}
	}

	equipment := &repository.Equipment{
		ProjectID:           projectID,
		Name:                input.Name,
		Type:                strings.TrimSpace(input.Type),
		TagNumber:           input.TagNumber,
		JobNumber:           input.JobNumber,
		ManufacturingSerial: input.ManufacturingSerial,
		Status:              input.Status,
		Priority:            input.Priority,
		Progress:            input.Progress,
		ProgressPhase:       input.ProgressPhase,
		Location:            input.Location,
		Supervisor:          input.Supervisor,
		NextMilestone:       input.NextMilestone,
		NextMilestoneDate:   input.NextMilestoneDate,
		PODate:              input.PODate,
		TechnicalSections:   input.TechnicalSections,
		CustomFields:        input.CustomFields,
		Notes:               input.Notes,
		CreatedBy:           userID,
	}
	if err := s.equipmentRepo.Create(ctx, equipment); err != nil {
		return nil, fmt.Errorf("failed to create equipment: %w", err)
	}

	logEvent(ctx, s.activity, projectID, types.EntityEquipment, equipment.ID, types.ActivityCreated, userID,
		map[string]interface{}{"name": equipment.Name, "tag_number": equipment.TagNumber})
	s.cache.invalidate(ctx, projectID)
	s.broadcaster.BroadcastEquipmentCreated(projectID, equipment.ID, userID)
	return equipment, nil
}

func equipmentValues(e *repository.Equipment) map[string]activity.Value {
	return map[string]activity.Value{
		"name":                 textValue(e.Name),
		"type":                 textValue(e.Type),
		"tag_number":           textValue(e.TagNumber),
		"job_number":           optionalText(e.JobNumber),
		"manufacturing_serial": optionalText(e.ManufacturingSerial),
		"status":               textValue(e.Status),
		"priority":             optionalText(e.Priority),
		"progress":             activity.Number(decimal.NewFromInt(int64(e.Progress))),
		"progress_phase":       optionalText(e.ProgressPhase),
		"location":             optionalText(e.Location),
		"supervisor":           optionalText(e.Supervisor),
		"next_milestone":       optionalText(e.NextMilestone),
		"next_milestone_date":  dateValue(e.NextMilestoneDate),
		"po_date":              dateValue(e.PODate),
		"technical_sections":   activity.Decode(e.TechnicalSections),
		"custom_fields":        activity.Decode(e.CustomFields),
		"notes":                optionalText(e.Notes),
	}
}

func (s *equipmentService) Update(ctx context.Context, userID, id string, input EquipmentUpdate) (*repository.Equipment, error) {
	equipment, access, err := s.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if !access.CanEditEquipment(equipment) {
		return nil, ErrForbidden
	}

	before := equipmentValues(equipment)
	if err := applyEquipmentUpdate(equipment, input); err != nil {
		return nil, err
	}

	changes := activity.Diff(before, equipmentValues(equipment))
	if len(changes) == 0 {
		return equipment, nil
	}

	if err := s.equipmentRepo.Update(ctx, equipment); err != nil {
		return nil, fmt.Errorf("failed to update equipment: %w", err)
	}

	logChanges(ctx, s.activity, equipment.ProjectID, types.EntityEquipment, equipment.ID, userID, changes)
	s.cache.invalidate(ctx, equipment.ProjectID)
	s.broadcaster.BroadcastEquipmentUpdated(equipment.ProjectID, equipment.ID, changedFields(changes), userID)
	log.Printf("[EquipmentService] ✏️ %s updated (%d fields) by %s", equipment.TagNumber, len(changes), access.User.Email)
	return equipment, nil
}

func applyEquipmentUpdate(e *repository.Equipment, input EquipmentUpdate) error {
	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return ErrInvalidInput
		}
		e.Name = strings.TrimSpace(*input.Name)
	}
	if input.Type != nil {
		e.Type = strings.TrimSpace(*input.Type)
	}
	if input.TagNumber != nil {
		if strings.TrimSpace(*input.TagNumber) == "" {
			return ErrInvalidInput
		}
		e.TagNumber = strings.TrimSpace(*input.TagNumber)
	}
	if input.JobNumber != nil {
		e.JobNumber = input.JobNumber
	}
	if input.ManufacturingSerial != nil {
		e.ManufacturingSerial = input.ManufacturingSerial
	}
	if input.Status != nil {
		if !types.IsValidEquipmentStatus(*input.Status) {
			return ErrInvalidInput
		}
		e.Status = *input.Status
	}
	if input.Priority != nil {
		e.Priority = input.Priority
	}
	if input.Progress != nil {
		if *input.Progress < 0 || *input.Progress > 100 {
			return ErrInvalidInput
		}
		e.Progress = *input.Progress
	}
	if input.ProgressPhase != nil {
		e.ProgressPhase = input.ProgressPhase
	}
	if input.Location != nil {
		e.Location = input.Location
	}
	if input.Supervisor != nil {
		e.Supervisor = input.Supervisor
	}
	if input.NextMilestone != nil {
		e.NextMilestone = input.NextMilestone
	}
	if input.NextMilestoneDate != nil {
		e.NextMilestoneDate = input.NextMilestoneDate
	}
	if input.PODate != nil {
		e.PODate = input.PODate
	}
	if input.TechnicalSections != nil {
		e.TechnicalSections = *input.TechnicalSections
	}
	if input.CustomFields != nil {
		e.CustomFields = input.CustomFields
	}
	if input.Notes != nil {
		e.Notes = input.Notes
	}
	return nil
}

func (s *equipmentService) Delete(ctx context.Context, userID, id string) error {
	equipment, access, err := s.load(ctx, userID, id)
	if err != nil {
		return err
	}
	if !access.CanManageEquipment() {
		return ErrForbidden
	}

	if err := s.equipmentRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete equipment: %w", err)
	}

	logEvent(ctx, s.activity, equipment.ProjectID, types.EntityEquipment, equipment.ID, types.ActivityDeleted, userID,
		map[string]interface{}{"name": equipment.Name, "tag_number": equipment.TagNumber})
	s.cache.invalidate(ctx, equipment.ProjectID)
	s.broadcaster.BroadcastEquipmentDeleted(equipment.ProjectID, equipment.ID, userID)
	return nil
}

func (s *equipmentService) ListActivity(ctx context.Context, userID, id string, limit int) ([]activity.Entry, error) {
	if _, _, err := s.load(ctx, userID, id); err != nil {
		return nil, err
	}
	logs, err := s.activityRepo.FindByEntity(ctx, types.EntityEquipment, id, limit)
	if err != nil {
		return nil, err
	}
	return activity.FormatEntries(logs), nil
}
