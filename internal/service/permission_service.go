package service

import (
	"context"
	"fmt"
	"log"

	"github.com/Marga-Ghale/ora-fabtrack/internal/repository"
	"github.com/Marga-Ghale/ora-fabtrack/internal/types"
	"github.com/Marga-Ghale/ora-fabtrack/internal/visibility"
)

// ============================================
// Role hierarchy
// ============================================

var roleLevels = map[string]int{
	types.RoleAdmin:          5,
	types.RoleProjectManager: 4,
	types.RoleVDCRManager:    3,
	types.RoleEditor:         2,
	types.RoleViewer:         1,
}

// roleLevel is 0 for roles outside the known set.
func roleLevel(role string) int {
	return roleLevels[types.NormalizeRole(role)]
}

// ============================================
// Project access
// ============================================

// ProjectAccess is what a user may do inside one project.
type ProjectAccess struct {
	Project *repository.Project
	User    *repository.User
	Member  *repository.ProjectMember // nil when the user is not on the roster
	Roster  visibility.Roster
	Role    string

	policy visibility.Policy
}

// Viewer is the identity fed to the equipment visibility filter.
func (a *ProjectAccess) Viewer() visibility.Viewer {
	return visibility.Viewer{Role: a.Role, Email: a.User.Email}
}

func (a *ProjectAccess) level() int {
	return roleLevel(a.Role)
}

func (a *ProjectAccess) CanManageProject() bool {
	return a.level() >= roleLevels[types.RoleProjectManager]
}

func (a *ProjectAccess) CanDeleteProject() bool {
	return a.Role == types.RoleAdmin
}

func (a *ProjectAccess) CanManageMembers() bool {
	return a.CanManageProject()
}

func (a *ProjectAccess) CanManageEquipment() bool {
	return a.CanManageProject()
}

func (a *ProjectAccess) CanEditVDCR() bool {
	return a.level() >= roleLevels[types.RoleEditor]
}

// FilterEquipment applies the visibility rules to a project's equipment list.
func (a *ProjectAccess) FilterEquipment(equipment []*repository.Equipment) []*repository.Equipment {
	return visibility.Filter(a.Viewer(), a.Roster, equipment, a.policy)
}

func (a *ProjectAccess) CanSeeEquipment(e *repository.Equipment) bool {
	return visibility.CanSee(a.Viewer(), a.Roster, e, a.policy)
}

// CanEditEquipment requires editor or above; editors are further limited to what they can see.
func (a *ProjectAccess) CanEditEquipment(e *repository.Equipment) bool {
	if a.level() < roleLevels[types.RoleEditor] {
		return false
	}
	return a.CanSeeEquipment(e)
}

// ============================================
// Permission Service
// ============================================

type PermissionService interface {
	Access(ctx context.Context, userID, projectID string) (*ProjectAccess, error)
	CanAccessProject(ctx context.Context, userID, projectID string) bool
	Policy() visibility.Policy
}

type permissionService struct {
	projectRepo repository.ProjectRepository
	userRepo    repository.UserRepository
	policy      visibility.Policy
}

func NewPermissionService(projectRepo repository.ProjectRepository, userRepo repository.UserRepository, policy visibility.Policy) PermissionService {
	return &permissionService{
		projectRepo: projectRepo,
		userRepo:    userRepo,
		policy:      policy,
	}
}

func (s *permissionService) Policy() visibility.Policy {
	return s.policy
}

// Access resolves the caller's effective role in a project. A roster that fails to load does not
// fail the request: the caller falls back to the firm role and restricted roles see no equipment.
func (s *permissionService) Access(ctx context.Context, userID, projectID string) (*ProjectAccess, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return nil, ErrUnauthorized
	}

	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load project: %w", err)
	}
	if project == nil {
		return nil, ErrNotFound
	}

	access := &ProjectAccess{Project: project, User: user, policy: s.policy}

	members, err := s.projectRepo.FindMembers(ctx, projectID)
	if err != nil {
		log.Printf("[Permission] ⚠️ roster unavailable for project %s: %v", projectID, err)
	} else {
		access.Roster = visibility.Roster{Members: members, Loaded: true}
		access.Member = visibility.FindMember(members, user.Email)
	}

	access.Role = effectiveRole(access)
	if access.Role == "" {
		return nil, ErrForbidden
	}
	return access, nil
}

func (s *permissionService) CanAccessProject(ctx context.Context, userID, projectID string) bool {
	_, err := s.Access(ctx, userID, projectID)
	return err == nil
}

func effectiveRole(a *ProjectAccess) string {
	if types.NormalizeRole(a.User.Role) == types.RoleAdmin {
		return types.RoleAdmin
	}
	if m := a.Member; m != nil && m.Status != types.MemberInactive {
		if role := types.NormalizeRole(m.Role); role != "" {
			return role
		}
		return types.NormalizeRole(a.User.Role)
	}
	if a.Project.CreatedBy == a.User.ID || (a.Project.ManagerID != nil && *a.Project.ManagerID == a.User.ID) {
		return types.RoleProjectManager
	}
	if !a.Roster.Loaded {
		return types.NormalizeRole(a.User.Role)
	}
	return ""
}
