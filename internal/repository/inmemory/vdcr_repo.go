package inmemory

import (
	"context"
	"sort"
	"time"

	"github.com/Marga-Ghale/ora-fabtrack/internal/repository"
)

type VDCRRepo struct {
	s *Storage
}

func NewVDCRRepo(s *Storage) *VDCRRepo {
	return &VDCRRepo{s: s}
}

func copyVDCR(v *repository.VDCRRecord) *repository.VDCRRecord {
	c := *v
	c.EquipmentTagNumbers = copyStrings(v.EquipmentTagNumbers)
	c.MfgSerialNumbers = copyStrings(v.MfgSerialNumbers)
	c.JobNumbers = copyStrings(v.JobNumbers)
	return &c
}

func sortVDCR(list []*repository.VDCRRecord) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].ProjectID != list[j].ProjectID {
			return list[i].ProjectID < list[j].ProjectID
		}
		if list[i].SrNo != list[j].SrNo {
			return list[i].SrNo < list[j].SrNo
		}
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
}

func (r *VDCRRepo) Create(ctx context.Context, record *repository.VDCRRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.now()
	record.ID = newID()
	record.CreatedAt, record.UpdatedAt = now, now
	r.s.VDCR[record.ID] = copyVDCR(record)
	return nil
}

func (r *VDCRRepo) FindByID(ctx context.Context, id string) (*repository.VDCRRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if v, ok := r.s.VDCR[id]; ok {
		return copyVDCR(v), nil
	}
	return nil, nil
}

func (r *VDCRRepo) FindByProjectID(ctx context.Context, projectID string) ([]*repository.VDCRRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	list := []*repository.VDCRRecord{}
	for _, v := range r.s.VDCR {
		if v.ProjectID == projectID {
			list = append(list, copyVDCR(v))
		}
	}
	sortVDCR(list)
	return list, nil
}

func (r *VDCRRepo) FindStale(ctx context.Context, statuses []string, olderThan time.Time) ([]*repository.VDCRRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	wanted := make(map[string]bool, len(statuses))
	for _, s := range statuses {
		wanted[s] = true
	}
	list := []*repository.VDCRRecord{}
	for _, v := range r.s.VDCR {
		touched := v.UpdatedAt
		if v.LastUpdate != nil {
			touched = *v.LastUpdate
		}
		if wanted[v.Status] && touched.Before(olderThan) {
			list = append(list, copyVDCR(v))
		}
	}
	sortVDCR(list)
	return list, nil
}

func (r *VDCRRepo) Update(ctx context.Context, record *repository.VDCRRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.VDCR[record.ID]; !ok {
		return repository.ErrNotFound
	}
	record.UpdatedAt = r.s.now()
	r.s.VDCR[record.ID] = copyVDCR(record)
	return nil
}

func (r *VDCRRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.VDCR, id)
	return nil
}
