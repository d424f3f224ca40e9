package inmemory

import (
	"context"
	"sort"

	"github.com/Marga-Ghale/ora-fabtrack/internal/repository"
)

type EquipmentRepo struct {
	s *Storage
}

func NewEquipmentRepo(s *Storage) *EquipmentRepo {
	return &EquipmentRepo{s: s}
}

func copyEquipment(e *repository.Equipment) *repository.Equipment {
	c := *e
	if e.TechnicalSections != nil {
		c.TechnicalSections = make([]map[string]interface{}, len(e.TechnicalSections))
		for i, sec := range e.TechnicalSections {
			c.TechnicalSections[i] = copyMap(sec)
		}
	}
	c.CustomFields = copyMap(e.CustomFields)
	return &c
}

func copyMap(m map[string]interface{}) map[string]interface{} {
	if m == nil {
		return nil
	}
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (r *EquipmentRepo) Create(ctx context.Context, equipment *repository.Equipment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.now()
	equipment.ID = newID()
	equipment.CreatedAt, equipment.UpdatedAt = now, now
	r.s.Equipment[equipment.ID] = copyEquipment(equipment)
	return nil
}

func (r *EquipmentRepo) FindByID(ctx context.Context, id string) (*repository.Equipment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if e, ok := r.s.Equipment[id]; ok {
		return copyEquipment(e), nil
	}
	return nil, nil
}

func (r *EquipmentRepo) FindByProjectID(ctx context.Context, projectID string) ([]*repository.Equipment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	list := []*repository.Equipment{}
	for _, e := range r.s.Equipment {
		if e.ProjectID == projectID {
			list = append(list, copyEquipment(e))
		}
	}
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].TagNumber != list[j].TagNumber {
			return list[i].TagNumber < list[j].TagNumber
		}
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
	return list, nil
}

func (r *EquipmentRepo) CountByProjectID(ctx context.Context, projectID string) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	n := 0
	for _, e := range r.s.Equipment {
		if e.ProjectID == projectID {
			n++
		}
	}
	return n, nil
}

func (r *EquipmentRepo) Update(ctx context.Context, equipment *repository.Equipment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.Equipment[equipment.ID]; !ok {
		return repository.ErrNotFound
	}
	equipment.UpdatedAt = r.s.now()
	r.s.Equipment[equipment.ID] = copyEquipment(equipment)
	return nil
}

func (r *EquipmentRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.Equipment, id)
	return nil
}
