package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/Marga-Ghale/ora-fabtrack/internal/activity"
	"github.com/Marga-Ghale/ora-fabtrack/internal/email"
	"github.com/Marga-Ghale/ora-fabtrack/internal/notification"
	"github.com/Marga-Ghale/ora-fabtrack/internal/repository"
	"github.com/Marga-Ghale/ora-fabtrack/internal/socket"
	"github.com/Marga-Ghale/ora-fabtrack/internal/types"
	"github.com/google/uuid"
)

const invitationTTL = 7 * 24 * time.Hour

// ============================================
// Member Service
// ============================================

type MemberInput struct {
	Name                 string
	Email                string
	Phone                *string
	Position             *string
	Role                 string
	EquipmentAssignments []string
}

type MemberUpdate struct {
	Name                 *string
	Phone                *string
	Position             *string
	Role                 *string
	Status               *string
	EquipmentAssignments *[]string
}

type MemberService interface {
	List(ctx context.Context, userID, projectID string) ([]*repository.ProjectMember, error)
	Create(ctx context.Context, userID, projectID string, input MemberInput) (*repository.ProjectMember, error)
	Update(ctx context.Context, userID, memberID string, input MemberUpdate) (*repository.ProjectMember, error)
	Delete(ctx context.Context, userID, memberID string) error
	Invite(ctx context.Context, userID, projectID string, input MemberInput) (*repository.Invitation, error)
	AcceptInvitation(ctx context.Context, userID, token string) (*repository.ProjectMember, error)
	ListInvitations(ctx context.Context, userID, projectID string) ([]*repository.Invitation, error)
}

type memberService struct {
	projectRepo    repository.ProjectRepository
	userRepo       repository.UserRepository
	invitationRepo repository.InvitationRepository
	permissions    PermissionService
	activity       ActivityService
	notifSvc       *notification.Service
	emailSvc       *email.Service
	cache          *summaryCache
	broadcaster    *socket.Broadcaster
	now            func() time.Time
}

func NewMemberService(
	projectRepo repository.ProjectRepository,
	userRepo repository.UserRepository,
	invitationRepo repository.InvitationRepository,
	permissions PermissionService,
	activitySvc ActivityService,
	notifSvc *notification.Service,
	emailSvc *email.Service,
	cache *summaryCache,
	broadcaster *socket.Broadcaster,
	now func() time.Time,
) MemberService {
	return &memberService{
		projectRepo:    projectRepo,
		userRepo:       userRepo,
		invitationRepo: invitationRepo,
		permissions:    permissions,
		activity:       activitySvc,
		notifSvc:       notifSvc,
		emailSvc:       emailSvc,
		cache:          cache,
		broadcaster:    broadcaster,
		now:            now,
	}
}

// NormalizeAssignments trims entries, drops blanks and duplicates, and collapses any list that
// names "All Equipment" to just that sentinel.
func NormalizeAssignments(assignments []string) []string {
	out := []string{}
	seen := make(map[string]bool, len(assignments))
	for _, a := range assignments {
		a = strings.TrimSpace(a)
		if a == "" || seen[a] {
			continue
		}
		if strings.EqualFold(a, types.AllEquipment) {
			return []string{types.AllEquipment}
		}
		seen[a] = true
		out = append(out, a)
	}
	return out
}

func normalizeMemberRole(role string) (string, error) {
	r := types.NormalizeRole(role)
	if r == "" {
		r = types.RoleViewer
	}
	if !types.IsValidRole(r) {
		return "", ErrInvalidInput
	}
	return r, nil
}

func memberPayload(m *repository.ProjectMember) map[string]interface{} {
	return map[string]interface{}{
		"id":                   m.ID,
		"name":                 m.Name,
		"email":                m.Email,
		"role":                 m.Role,
		"status":               m.Status,
		"equipmentAssignments": m.EquipmentAssignments,
	}
}

func (s *memberService) manage(ctx context.Context, userID, projectID string) (*ProjectAccess, error) {
	access, err := s.permissions.Access(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}
	if !access.CanManageMembers() {
		return nil, ErrForbidden
	}
	return access, nil
}

func (s *memberService) List(ctx context.Context, userID, projectID string) ([]*repository.ProjectMember, error) {
	if _, err := s.permissions.Access(ctx, userID, projectID); err != nil {
		return nil, err
	}
	return s.projectRepo.FindMembers(ctx, projectID)
}

func (s *memberService) Create(ctx context.Context, userID, projectID string, input MemberInput) (*repository.ProjectMember, error) {
	access, err := s.manage(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}
	member, err := s.addMember(ctx, access, input, types.MemberActive)
	if err != nil {
		return nil, err
	}
	s.notifyAssignments(ctx, access.Project, member)
	return member, nil
}

// addMember validates input and stores a new roster entry. Members without an account start invited.
func (s *memberService) addMember(ctx context.Context, access *ProjectAccess, input MemberInput, status string) (*repository.ProjectMember, error) {
	emailAddr := strings.ToLower(strings.TrimSpace(input.Email))
	if emailAddr == "" || !strings.Contains(emailAddr, "@") {
		return nil, ErrInvalidInput
	}
	role, err := normalizeMemberRole(input.Role)
	if err != nil {
		return nil, err
	}

	existing, err := s.projectRepo.FindMemberByEmail(ctx, access.Project.ID, emailAddr)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrConflict
	}

	user, err := s.userRepo.FindByEmail(ctx, emailAddr)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if user == nil {
		status = types.MemberInvited
	} else if name == "" {
		name = user.Name
	}
	if name == "" {
		name = emailAddr
	}

	member := &repository.ProjectMember{
		ProjectID:            access.Project.ID,
		Name:                 name,
		Email:                emailAddr,
		Phone:                input.Phone,
		Position:             input.Position,
		Role:                 role,
		Status:               status,
		EquipmentAssignments: NormalizeAssignments(input.EquipmentAssignments),
	}
	if err := s.projectRepo.AddMember(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to add member: %w", err)
	}

	logEvent(ctx, s.activity, access.Project.ID, types.EntityMember, member.ID, types.ActivityCreated, access.User.ID,
		map[string]interface{}{"name": member.Name, "role": member.Role})
	s.cache.invalidate(ctx, access.Project.ID)
	s.broadcaster.BroadcastMemberAdded(access.Project.ID, memberPayload(member), access.User.ID)
	return member, nil
}

func (s *memberService) notifyAssignments(ctx context.Context, project *repository.Project, member *repository.ProjectMember) {
	if s.notifSvc == nil || len(member.EquipmentAssignments) == 0 {
		return
	}
	user, err := s.userRepo.FindByEmail(ctx, member.Email)
	if err != nil || user == nil {
		return
	}
	if err := s.notifSvc.SendEquipmentAssigned(ctx, user.ID, project.Name, project.ID, member.EquipmentAssignments); err != nil {
		log.Printf("[MemberService] ⚠️ assignment notification for %s failed: %v", member.Email, err)
	}
}

func memberValues(m *repository.ProjectMember) map[string]activity.Value {
	return map[string]activity.Value{
		"name":                  textValue(m.Name),
		"phone":                 optionalText(m.Phone),
		"position":              optionalText(m.Position),
		"role":                  textValue(m.Role),
		"status":                textValue(m.Status),
		"equipment_assignments": stringsValue(m.EquipmentAssignments),
	}
}

func (s *memberService) Update(ctx context.Context, userID, memberID string, input MemberUpdate) (*repository.ProjectMember, error) {
	member, err := s.projectRepo.FindMemberByID(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, ErrNotFound
	}
	access, err := s.manage(ctx, userID, member.ProjectID)
	if err != nil {
		return nil, err
	}

	before := memberValues(member)
	oldAssignments := strings.Join(member.EquipmentAssignments, "\x00")

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, ErrInvalidInput
		}
		member.Name = strings.TrimSpace(*input.Name)
	}
	if input.Phone != nil {
		member.Phone = input.Phone
	}
	if input.Position != nil {
		member.Position = input.Position
	}
	if input.Role != nil {
		role, err := normalizeMemberRole(*input.Role)
		if err != nil {
			return nil, err
		}
		member.Role = role
	}
	if input.Status != nil {
		switch *input.Status {
		case types.MemberActive, types.MemberInactive, types.MemberInvited:
			member.Status = *input.Status
		default:
			return nil, ErrInvalidInput
		}
	}
	if input.EquipmentAssignments != nil {
		member.EquipmentAssignments = NormalizeAssignments(*input.EquipmentAssignments)
	}

	changes := activity.Diff(before, memberValues(member))
	if len(changes) == 0 {
		return member, nil
	}

	if err := s.projectRepo.UpdateMember(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to update member: %w", err)
	}

	logChanges(ctx, s.activity, member.ProjectID, types.EntityMember, member.ID, userID, changes)
	s.broadcaster.BroadcastMemberUpdated(member.ProjectID, memberPayload(member), userID)
	if strings.Join(member.EquipmentAssignments, "\x00") != oldAssignments {
		s.notifyAssignments(ctx, access.Project, member)
	}
	return member, nil
}

func (s *memberService) Delete(ctx context.Context, userID, memberID string) error {
	member, err := s.projectRepo.FindMemberByID(ctx, memberID)
	if err != nil {
		return err
	}
	if member == nil {
		return ErrNotFound
	}
	access, err := s.manage(ctx, userID, member.ProjectID)
	if err != nil {
		return err
	}
	if access.Member != nil && access.Member.ID == member.ID && access.Role != types.RoleAdmin {
		return ErrForbidden
	}

	if err := s.projectRepo.RemoveMember(ctx, memberID); err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}

	logEvent(ctx, s.activity, member.ProjectID, types.EntityMember, member.ID, types.ActivityDeleted, userID,
		map[string]interface{}{"name": member.Name})
	s.cache.invalidate(ctx, member.ProjectID)
	s.broadcaster.BroadcastMemberRemoved(member.ProjectID, member.ID, userID)
	return nil
}

// ============================================
// Invitations
// ============================================

// Invite adds the person to the roster as invited, stores an invitation token and sends it by
// email, plus in-app when the address already has an account.
func (s *memberService) Invite(ctx context.Context, userID, projectID string, input MemberInput) (*repository.Invitation, error) {
	access, err := s.manage(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}

	emailAddr := strings.ToLower(strings.TrimSpace(input.Email))
	member, err := s.projectRepo.FindMemberByEmail(ctx, projectID, emailAddr)
	if err != nil {
		return nil, err
	}
	switch {
	case member == nil:
		member, err = s.addMember(ctx, access, input, types.MemberInvited)
		if err != nil {
			return nil, err
		}
	case member.Status != types.MemberInvited:
		return nil, ErrConflict
	}

	now := s.now()
	invitation := &repository.Invitation{
		ProjectID: projectID,
		MemberID:  member.ID,
		Email:     member.Email,
		Token:     uuid.New().String(),
		Role:      member.Role,
		InvitedBy: userID,
		Status:    repository.InvitationPending,
		ExpiresAt: now.Add(invitationTTL),
	}
	if err := s.invitationRepo.Create(ctx, invitation); err != nil {
		return nil, fmt.Errorf("failed to create invitation: %w", err)
	}

	logEvent(ctx, s.activity, projectID, types.EntityMember, member.ID, types.ActivityInvited, userID,
		map[string]interface{}{"name": member.Name, "email": member.Email})

	if s.emailSvc != nil {
		err := s.emailSvc.SendProjectInvitation(member.Email, email.ProjectInvitationData{
			InviteeName: member.Name,
			InviterName: access.User.Name,
			ProjectName: access.Project.Name,
			Role:        notification.FormatStatus(member.Role),
			Assignments: strings.Join(member.EquipmentAssignments, ", "),
			Token:       invitation.Token,
			ExpiresAt:   invitation.ExpiresAt.Format("Jan 2, 2006"),
		})
		if err != nil {
			log.Printf("[MemberService] ⚠️ invitation email to %s failed: %v", member.Email, err)
		}
	}

	if s.notifSvc != nil {
		if user, _ := s.userRepo.FindByEmail(ctx, member.Email); user != nil {
			if err := s.notifSvc.SendProjectInvitation(ctx, user.ID, access.Project.Name, projectID, access.User.Name, invitation.Token); err != nil {
				log.Printf("[MemberService] ⚠️ invitation notification failed: %v", err)
			}
		}
	}
	return invitation, nil
}

func (s *memberService) AcceptInvitation(ctx context.Context, userID, token string) (*repository.ProjectMember, error) {
	invitation, err := s.invitationRepo.FindByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if invitation == nil {
		return nil, ErrNotFound
	}
	if invitation.Status != repository.InvitationPending || s.now().After(invitation.ExpiresAt) {
		return nil, ErrInvitationClosed
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUnauthorized
	}
	if !strings.EqualFold(strings.TrimSpace(user.Email), strings.TrimSpace(invitation.Email)) {
		return nil, ErrForbidden
	}

	member, err := s.projectRepo.FindMemberByID(ctx, invitation.MemberID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, ErrInvitationClosed
	}

	now := s.now()
	member.Status = types.MemberActive
	member.LastActive = &now
	if member.Name == member.Email && user.Name != "" {
		member.Name = user.Name
	}
	if err := s.projectRepo.UpdateMember(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to activate member: %w", err)
	}
	if err := s.invitationRepo.UpdateStatus(ctx, invitation.ID, repository.InvitationAccepted); err != nil {
		return nil, fmt.Errorf("failed to close invitation: %w", err)
	}

	s.broadcaster.BroadcastMemberUpdated(member.ProjectID, memberPayload(member), userID)
	log.Printf("[MemberService] ✅ %s joined project %s", user.Email, member.ProjectID)
	return member, nil
}

func (s *memberService) ListInvitations(ctx context.Context, userID, projectID string) ([]*repository.Invitation, error) {
	if _, err := s.manage(ctx, userID, projectID); err != nil {
		return nil, err
	}
	return s.invitationRepo.FindPendingByProject(ctx, projectID)
}
