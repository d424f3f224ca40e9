package service

import (
	"context"
	"sort"
	"strings"

	"github.com/Marga-Ghale/ora-fabtrack/internal/repository"
	"github.com/Marga-Ghale/ora-fabtrack/internal/types"
)

// ============================================
// User Service
// ============================================

type UserService interface {
	GetByID(ctx context.Context, id string) (*repository.User, error)
	GetByEmail(ctx context.Context, email string) (*repository.User, error)
	Update(ctx context.Context, id string, name, phone, avatar *string) (*repository.User, error)
	UpdateLastActive(ctx context.Context, id string) error
	Assignments(ctx context.Context, id string) ([]*Assignment, error)
}

// Assignment is one project roster entry for the signed-in user.
type Assignment struct {
	Project *repository.Project
	Member  *repository.ProjectMember
}

type userService struct {
	userRepo    repository.UserRepository
	projectRepo repository.ProjectRepository
}

func NewUserService(userRepo repository.UserRepository, projectRepo repository.ProjectRepository) UserService {
	return &userService{userRepo: userRepo, projectRepo: projectRepo}
}

func (s *userService) GetByID(ctx context.Context, id string) (*repository.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *userService) GetByEmail(ctx context.Context, email string) (*repository.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *userService) Update(ctx context.Context, id string, name, phone, avatar *string) (*repository.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil || user == nil {
		return nil, ErrUserNotFound
	}

	if name != nil {
		if strings.TrimSpace(*name) == "" {
			return nil, ErrInvalidInput
		}
		user.Name = strings.TrimSpace(*name)
	}
	if phone != nil {
		user.Phone = phone
	}
	if avatar != nil {
		user.Avatar = avatar
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) UpdateLastActive(ctx context.Context, id string) error {
	return s.userRepo.UpdateLastActive(ctx, id)
}

// Assignments lists the rosters the user appears on, matched by email, soonest deadline first.
// Inactive roster entries are skipped.
func (s *userService) Assignments(ctx context.Context, id string) ([]*Assignment, error) {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	projects, err := s.projectRepo.FindByMemberEmail(ctx, user.Email)
	if err != nil {
		return nil, err
	}

	out := make([]*Assignment, 0, len(projects))
	for _, p := range projects {
		m, err := s.projectRepo.FindMemberByEmail(ctx, p.ID, user.Email)
		if err != nil {
			return nil, err
		}
		if m == nil || m.Status == types.MemberInactive {
			continue
		}
		out = append(out, &Assignment{Project: p, Member: m})
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Project.Deadline, out[j].Project.Deadline
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		}
		return a.Before(*b)
	})
	return out, nil
}
