package inmemory

import (
	"context"
	"time"

	"github.com/Marga-Ghale/ora-fabtrack/internal/repository"
	"github.com/google/uuid"
)

type InvitationRepo struct {
	s *Storage
}

func NewInvitationRepo(s *Storage) *InvitationRepo {
	return &InvitationRepo{s: s}
}

func (r *InvitationRepo) Create(ctx context.Context, invitation *repository.Invitation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	invitation.ID = newID()
	invitation.Token = uuid.New().String()
	invitation.CreatedAt = r.s.now()
	c := *invitation
	r.s.Invitations[invitation.ID] = &c
	return nil
}

func (r *InvitationRepo) FindByToken(ctx context.Context, token string) (*repository.Invitation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, inv := range r.s.Invitations {
		if inv.Token == token {
			c := *inv
			return &c, nil
		}
	}
	return nil, nil
}

func (r *InvitationRepo) FindPendingByProject(ctx context.Context, projectID string) ([]*repository.Invitation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	list := []*repository.Invitation{}
	for _, inv := range r.s.Invitations {
		if inv.ProjectID == projectID && inv.Status == repository.InvitationPending {
			c := *inv
			list = append(list, &c)
		}
	}
	sortByCreated(list, func(i *repository.Invitation) time.Time { return i.CreatedAt }, true)
	return list, nil
}

func (r *InvitationRepo) UpdateStatus(ctx context.Context, id, status string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	inv, ok := r.s.Invitations[id]
	if !ok {
		return repository.ErrNotFound
	}
	inv.Status = status
	return nil
}

func (r *InvitationRepo) ExpireOlderThan(ctx context.Context, now time.Time) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	n := 0
	for _, inv := range r.s.Invitations {
		if inv.Status == repository.InvitationPending && inv.ExpiresAt.Before(now) {
			inv.Status = repository.InvitationExpired
			n++
		}
	}
	return n, nil
}
