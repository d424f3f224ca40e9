package inmemory

import (
	"context"
	"time"

	"github.com/Marga-Ghale/ora-fabtrack/internal/repository"
)

type ProjectRepo struct {
	s *Storage
}

func NewProjectRepo(s *Storage) *ProjectRepo {
	return &ProjectRepo{s: s}
}

func copyProject(p *repository.Project) *repository.Project {
	c := *p
	return &c
}

func copyMember(m *repository.ProjectMember) *repository.ProjectMember {
	c := *m
	c.EquipmentAssignments = copyStrings(m.EquipmentAssignments)
	return &c
}

func (r *ProjectRepo) Create(ctx context.Context, project *repository.Project) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.now()
	project.ID = newID()
	project.CreatedAt, project.UpdatedAt = now, now
	r.s.Projects[project.ID] = copyProject(project)
	return nil
}

func (r *ProjectRepo) FindByID(ctx context.Context, id string) (*repository.Project, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if p, ok := r.s.Projects[id]; ok {
		return copyProject(p), nil
	}
	return nil, nil
}

func (r *ProjectRepo) FindAll(ctx context.Context) ([]*repository.Project, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	projects := make([]*repository.Project, 0, len(r.s.Projects))
	for _, p := range r.s.Projects {
		projects = append(projects, copyProject(p))
	}
	sortByCreated(projects, func(p *repository.Project) time.Time { return p.CreatedAt }, true)
	return projects, nil
}

func (r *ProjectRepo) FindByMemberEmail(ctx context.Context, email string) ([]*repository.Project, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	seen := make(map[string]bool)
	var projects []*repository.Project
	for _, m := range r.s.Members {
		if !sameEmail(m.Email, email) || seen[m.ProjectID] {
			continue
		}
		if p, ok := r.s.Projects[m.ProjectID]; ok {
			seen[m.ProjectID] = true
			projects = append(projects, copyProject(p))
		}
	}
	sortByCreated(projects, func(p *repository.Project) time.Time { return p.CreatedAt }, true)
	return projects, nil
}

func (r *ProjectRepo) Update(ctx context.Context, project *repository.Project) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.Projects[project.ID]; !ok {
		return repository.ErrNotFound
	}
	project.UpdatedAt = r.s.now()
	r.s.Projects[project.ID] = copyProject(project)
	return nil
}

func (r *ProjectRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.Projects, id)
	for mid, m := range r.s.Members {
		if m.ProjectID == id {
			delete(r.s.Members, mid)
		}
	}
	for eid, e := range r.s.Equipment {
		if e.ProjectID == id {
			delete(r.s.Equipment, eid)
		}
	}
	for vid, v := range r.s.VDCR {
		if v.ProjectID == id {
			delete(r.s.VDCR, vid)
		}
	}
	return nil
}

func (r *ProjectRepo) AddMember(ctx context.Context, member *repository.ProjectMember) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.now()
	member.ID = newID()
	member.CreatedAt, member.UpdatedAt = now, now
	if member.EquipmentAssignments == nil {
		member.EquipmentAssignments = []string{}
	}
	r.s.Members[member.ID] = copyMember(member)
	return nil
}

func (r *ProjectRepo) FindMembers(ctx context.Context, projectID string) ([]*repository.ProjectMember, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	members := []*repository.ProjectMember{}
	for _, m := range r.s.Members {
		if m.ProjectID == projectID {
			members = append(members, copyMember(m))
		}
	}
	sortByCreated(members, func(m *repository.ProjectMember) time.Time { return m.CreatedAt }, false)
	return members, nil
}

func (r *ProjectRepo) FindMemberByID(ctx context.Context, memberID string) (*repository.ProjectMember, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if m, ok := r.s.Members[memberID]; ok {
		return copyMember(m), nil
	}
	return nil, nil
}

func (r *ProjectRepo) FindMemberByEmail(ctx context.Context, projectID, email string) (*repository.ProjectMember, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, m := range r.s.Members {
		if m.ProjectID == projectID && sameEmail(m.Email, email) {
			return copyMember(m), nil
		}
	}
	return nil, nil
}

func (r *ProjectRepo) UpdateMember(ctx context.Context, member *repository.ProjectMember) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.Members[member.ID]; !ok {
		return repository.ErrNotFound
	}
	member.UpdatedAt = r.s.now()
	r.s.Members[member.ID] = copyMember(member)
	return nil
}

func (r *ProjectRepo) RemoveMember(ctx context.Context, memberID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.Members, memberID)
	return nil
}
