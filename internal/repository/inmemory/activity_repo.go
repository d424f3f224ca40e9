package inmemory

import (
	"context"
	"time"

	"github.com/Marga-Ghale/ora-fabtrack/internal/repository"
)

type ActivityLogRepo struct {
	s *Storage
}

func NewActivityLogRepo(s *Storage) *ActivityLogRepo {
	return &ActivityLogRepo{s: s}
}

func (r *ActivityLogRepo) Create(ctx context.Context, log *repository.ActivityLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	log.ID = newID()
	log.CreatedAt = r.s.now()
	c := *log
	r.s.Activity = append(r.s.Activity, &c)
	return nil
}

// collect walks newest-first, mirroring ORDER BY created_at DESC.
func (r *ActivityLogRepo) collect(limit int, match func(*repository.ActivityLog) bool) []*repository.ActivityLog {
	out := []*repository.ActivityLog{}
	for i := len(r.s.Activity) - 1; i >= 0 && len(out) < limit; i-- {
		a := r.s.Activity[i]
		if !match(a) {
			continue
		}
		c := *a
		if a.CreatedBy != nil {
			if u, ok := r.s.Users[*a.CreatedBy]; ok {
				name := u.Name
				c.CreatedByName = &name
			}
		}
		out = append(out, &c)
	}
	return out
}

func (r *ActivityLogRepo) FindByEntity(ctx context.Context, entityType, entityID string, limit int) ([]*repository.ActivityLog, error) {
	if limit <= 0 {
		limit = 50
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return r.collect(limit, func(a *repository.ActivityLog) bool {
		return a.EntityType == entityType && a.EntityID == entityID
	}), nil
}

func (r *ActivityLogRepo) FindByProject(ctx context.Context, projectID string, limit int) ([]*repository.ActivityLog, error) {
	if limit <= 0 {
		limit = 100
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return r.collect(limit, func(a *repository.ActivityLog) bool {
		return a.ProjectID == projectID
	}), nil
}

func (r *ActivityLogRepo) DeleteOlderThan(ctx context.Context, olderThan time.Time) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	kept := r.s.Activity[:0]
	removed := 0
	for _, a := range r.s.Activity {
		if a.CreatedAt.Before(olderThan) {
			removed++
			continue
		}
		kept = append(kept, a)
	}
	r.s.Activity = kept
	return removed, nil
}
