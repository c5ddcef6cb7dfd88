package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/edustride/crm-backend/internal/entity"
)

type HistoryRepository struct {
	mu      sync.RWMutex
	entries []*entity.LeadStatusHistoryEntry
}

func NewHistoryRepository() *HistoryRepository {
	return &HistoryRepository{}
}

func (r *HistoryRepository) Append(ctx context.Context, entry *entity.LeadStatusHistoryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *entry
	r.entries = append(r.entries, &clone)
	return nil
}

func (r *HistoryRepository) ListByLead(ctx context.Context, leadID string) ([]*entity.LeadStatusHistoryEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*entity.LeadStatusHistoryEntry
	for _, e := range r.entries {
		if e.LeadID == leadID {
			clone := *e
			out = append(out, &clone)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
