// Package memory holds map-backed repositories used when no database
// is configured and as the test double behind the same interfaces the
// Postgres adapters implement.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/edustride/crm-backend/internal/entity"
	"github.com/edustride/crm-backend/internal/usecase"
)

type LeadRepository struct {
	mu    sync.RWMutex
	leads map[string]*entity.Lead
}

func NewLeadRepository() *LeadRepository {
	return &LeadRepository{leads: make(map[string]*entity.Lead)}
}

func (r *LeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *lead
	r.leads[lead.ID] = &clone
	return nil
}

func (r *LeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lead, ok := r.leads[id]
	if !ok || lead.Deleted() {
		return nil, nil
	}
	clone := *lead
	return &clone, nil
}

func (r *LeadRepository) List(ctx context.Context, filter usecase.LeadFilter) ([]*entity.Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*entity.Lead
	for _, lead := range r.leads {
		if lead.Deleted() {
			continue
		}
		if filter.CounselorID != nil {
			if lead.CounselorID == nil || *lead.CounselorID != *filter.CounselorID {
				continue
			}
		}
		if len(filter.Statuses) > 0 && !statusIn(lead.Status, filter.Statuses) {
			continue
		}
		clone := *lead
		out = append(out, &clone)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *LeadRepository) Update(ctx context.Context, lead *entity.Lead) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *lead
	r.leads[lead.ID] = &clone
	return nil
}

func (r *LeadRepository) BulkAssign(ctx context.Context, leadIDs []string, counselorID string) ([]*entity.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var updated []*entity.Lead
	for _, id := range leadIDs {
		lead, ok := r.leads[id]
		if !ok || lead.Deleted() {
			continue
		}
		cid := counselorID
		lead.CounselorID = &cid
		clone := *lead
		updated = append(updated, &clone)
	}
	return updated, nil
}

func statusIn(s entity.LeadStatus, set []entity.LeadStatus) bool {
	for _, st := range set {
		if st == s {
			return true
		}
	}
	return false
}
