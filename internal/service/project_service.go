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
	"github.com/Marga-Ghale/ora-fabtrack/internal/vdcr"
	"github.com/Marga-Ghale/ora-fabtrack/internal/visibility"
	"github.com/shopspring/decimal"
)

// ============================================
// Project Service
// ============================================

type ProjectInput struct {
	Name           string
	ClientName     string
	Location       *string
	PONumber       *string
	SalesOrderDate *time.Time
	Deadline       *time.Time
	Status         string
	ManagerID      *string
}

type ProjectUpdate struct {
	Name           *string
	ClientName     *string
	Location       *string
	PONumber       *string
	SalesOrderDate *time.Time
	Deadline       *time.Time
	Status         *string
	ManagerID      *string
}

// ProjectSummary backs the dashboard header cards.
type ProjectSummary struct {
	ProjectID         string              `json:"projectId"`
	EquipmentCount    int                 `json:"equipmentCount"`
	EquipmentByStatus map[string]int      `json:"equipmentByStatus"`
	AverageProgress   decimal.Decimal     `json:"averageProgress"`
	VDCRTotal         int                 `json:"vdcrTotal"`
	VDCRCounts        map[vdcr.Status]int `json:"vdcrCounts"`
	MemberCount       int                 `json:"memberCount"`
	GeneratedAt       time.Time           `json:"generatedAt"`
}

type ProjectService interface {
	Create(ctx context.Context, creatorID string, input ProjectInput) (*repository.Project, error)
	Get(ctx context.Context, userID, id string) (*repository.Project, error)
	List(ctx context.Context, userID string) ([]*repository.Project, error)
	Update(ctx context.Context, userID, id string, input ProjectUpdate) (*repository.Project, error)
	Delete(ctx context.Context, userID, id string) error
	Summary(ctx context.Context, userID, id string) (*ProjectSummary, error)
	Activity(ctx context.Context, userID, id string, limit int) ([]activity.Entry, error)
}

type projectService struct {
	projectRepo   repository.ProjectRepository
	userRepo      repository.UserRepository
	equipmentRepo repository.EquipmentRepository
	vdcrRepo      repository.VDCRRepository
	activityRepo  repository.ActivityLogRepository
	permissions   PermissionService
	activity      ActivityService
	cache         *summaryCache
	broadcaster   *socket.Broadcaster
	now           func() time.Time
}

func NewProjectService(
	projectRepo repository.ProjectRepository,
	userRepo repository.UserRepository,
	equipmentRepo repository.EquipmentRepository,
	vdcrRepo repository.VDCRRepository,
	activityRepo repository.ActivityLogRepository,
	permissions PermissionService,
	activitySvc ActivityService,
	cache *summaryCache,
	broadcaster *socket.Broadcaster,
	now func() time.Time,
) ProjectService {
	return &projectService{
		projectRepo:   projectRepo,
		userRepo:      userRepo,
		equipmentRepo: equipmentRepo,
		vdcrRepo:      vdcrRepo,
		activityRepo:  activityRepo,
		permissions:   permissions,
		activity:      activitySvc,
		cache:         cache,
		broadcaster:   broadcaster,
		now:           now,
	}
}

func (s *projectService) Create(ctx context.Context, creatorID string, input ProjectInput) (*repository.Project, error) {
	creator, err := s.userRepo.FindByID(ctx, creatorID)
	if err != nil {
		return nil, err
	}
	if creator == nil {
		return nil, ErrUnauthorized
	}
	if roleLevel(creator.Role) < roleLevels[types.RoleProjectManager] {
		return nil, ErrForbidden
	}

	input.Name = strings.TrimSpace(input.Name)
	input.ClientName = strings.TrimSpace(input.ClientName)
	if input.Name == "" || input.ClientName == "" {
		return nil, ErrInvalidInput
	}
	if input.Status == "" {
		input.Status = types.ProjectActive
	}
	if !types.IsValidProjectStatus(input.Status) {
		return nil, ErrInvalidInput
	}

	managerID := input.ManagerID
	if managerID == nil || *managerID == "" {
		managerID = &creator.ID
	}

	project := &repository.Project{
		Name:           input.Name,
		ClientName:     input.ClientName,
		Location:       input.Location,
		PONumber:       input.PONumber,
		SalesOrderDate: input.SalesOrderDate,
		Deadline:       input.Deadline,
		Status:         input.Status,
		ManagerID:      managerID,
		CreatedBy:      creator.ID,
	}
	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	logEvent(ctx, s.activity, project.ID, types.EntityProject, project.ID, types.ActivityCreated, creator.ID,
		map[string]interface{}{"name": project.Name})
	log.Printf("[ProjectService] ✅ project %s created by %s", project.Name, creator.Email)
	return project, nil
}

func (s *projectService) Get(ctx context.Context, userID, id string) (*repository.Project, error) {
	access, err := s.permissions.Access(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return access.Project, nil
}

// List returns every project for admins and otherwise the projects the user manages or is on the roster of.
func (s *projectService) List(ctx context.Context, userID string) ([]*repository.Project, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUnauthorized
	}

	all, err := s.projectRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	if types.NormalizeRole(user.Role) == types.RoleAdmin {
		return all, nil
	}

	memberOf, err := s.projectRepo.FindByMemberEmail(ctx, user.Email)
	if err != nil {
		return nil, err
	}
	onRoster := make(map[string]bool, len(memberOf))
	for _, p := range memberOf {
		onRoster[p.ID] = true
	}

	projects := []*repository.Project{}
	for _, p := range all {
		manages := p.CreatedBy == user.ID || (p.ManagerID != nil && *p.ManagerID == user.ID)
		if manages || onRoster[p.ID] {
			projects = append(projects, p)
		}
	}
	return projects, nil
}

func projectValues(p *repository.Project) map[string]activity.Value {
	return map[string]activity.Value{
		"name":             textValue(p.Name),
		"client_name":      textValue(p.ClientName),
		"location":         optionalText(p.Location),
		"po_number":        optionalText(p.PONumber),
		"sales_order_date": dateValue(p.SalesOrderDate),
		"deadline":         dateValue(p.Deadline),
		"status":           textValue(p.Status),
		"manager_id":       optionalText(p.ManagerID),
	}
}

func (s *projectService) Update(ctx context.Context, userID, id string, input ProjectUpdate) (*repository.Project, error) {
	access, err := s.permissions.Access(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if !access.CanManageProject() {
		return nil, ErrForbidden
	}

	project := access.Project
	before := projectValues(project)

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, ErrInvalidInput
		}
		project.Name = strings.TrimSpace(*input.Name)
	}
	if input.ClientName != nil {
		if strings.TrimSpace(*input.ClientName) == "" {
			return nil, ErrInvalidInput
		}
		project.ClientName = strings.TrimSpace(*input.ClientName)
	}
	if input.Location != nil {
		project.Location = input.Location
	}
	if input.PONumber != nil {
		project.PONumber = input.PONumber
	}
	if input.SalesOrderDate != nil {
		project.SalesOrderDate = input.SalesOrderDate
	}
	if input.Deadline != nil {
		project.Deadline = input.Deadline
	}
	if input.Status != nil {
		if !types.IsValidProjectStatus(*input.Status) {
			return nil, ErrInvalidInput
		}
		project.Status = *input.Status
	}
	if input.ManagerID != nil {
		project.ManagerID = input.ManagerID
	}

	changes := activity.Diff(before, projectValues(project))
	if len(changes) == 0 {
		return project, nil
	}

	if err := s.projectRepo.Update(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	logChanges(ctx, s.activity, project.ID, types.EntityProject, project.ID, userID, changes)
	s.broadcaster.BroadcastProjectUpdated(project.ID, map[string]interface{}{
		"id":            project.ID,
		"name":          project.Name,
		"status":        project.Status,
		"changedFields": changedFields(changes),
	}, userID)
	return project, nil
}

func (s *projectService) Delete(ctx context.Context, userID, id string) error {
	access, err := s.permissions.Access(ctx, userID, id)
	if err != nil {
		return err
	}
	if !access.CanDeleteProject() {
		return ErrForbidden
	}

	if err := s.projectRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	s.cache.invalidate(ctx, id)
	s.broadcaster.BroadcastProjectDeleted(id, userID)
	log.Printf("[ProjectService] 🗑️ project %s deleted by %s", access.Project.Name, access.User.Email)
	return nil
}

// Summary counts are project-wide and shared by every viewer, so they are cached per project.
func (s *projectService) Summary(ctx context.Context, userID, id string) (*ProjectSummary, error) {
	if _, err := s.permissions.Access(ctx, userID, id); err != nil {
		return nil, err
	}

	var cached ProjectSummary
	if s.cache.get(ctx, id, &cached) {
		return &cached, nil
	}

	equipment, err := s.equipmentRepo.FindByProjectID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load equipment: %w", err)
	}
	records, err := s.vdcrRepo.FindByProjectID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load vdcr records: %w", err)
	}
	members, err := s.projectRepo.FindMembers(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load members: %w", err)
	}

	summary := &ProjectSummary{
		ProjectID:         id,
		EquipmentCount:    len(equipment),
		EquipmentByStatus: make(map[string]int),
		AverageProgress:   decimal.Zero,
		VDCRTotal:         len(records),
		VDCRCounts:        vdcr.Counts(vdcr.Bucket(records)),
		MemberCount:       len(members),
		GeneratedAt:       s.now(),
	}

	total := decimal.Zero
	for _, e := range equipment {
		summary.EquipmentByStatus[e.Status]++
		total = total.Add(decimal.NewFromInt(int64(e.Progress)))
	}
	if len(equipment) > 0 {
		summary.AverageProgress = total.DivRound(decimal.NewFromInt(int64(len(equipment))), 1)
	}

	s.cache.set(ctx, id, summary)
	return summary, nil
}

// Activity is the project feed. Equipment entries the caller cannot see are left out.
func (s *projectService) Activity(ctx context.Context, userID, id string, limit int) ([]activity.Entry, error) {
	access, err := s.permissions.Access(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	logs, err := s.activityRepo.FindByProject(ctx, id, limit)
	if err != nil {
		return nil, err
	}

	equipment, err := s.equipmentRepo.FindByProjectID(ctx, id)
	if err != nil {
		return nil, err
	}
	visible := make(map[string]bool)
	for _, e := range access.FilterEquipment(equipment) {
		visible[e.ID] = true
	}
	known := make(map[string]bool, len(equipment))
	for _, e := range equipment {
		known[e.ID] = true
	}

	kept := logs[:0:0]
	for _, l := range logs {
		// Deleted equipment has no record left to check against; only full-access roles keep those rows.
		if l.EntityType == types.EntityEquipment {
			if known[l.EntityID] && !visible[l.EntityID] {
				continue
			}
			if !known[l.EntityID] && !visibility.HasFullAccess(access.Role) {
				continue
			}
		}
		kept = append(kept, l)
	}
	return activity.FormatEntries(kept), nil
}
