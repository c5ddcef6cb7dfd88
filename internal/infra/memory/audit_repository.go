package memory

import (
	"context"
	"sync"

	"github.com/edustride/crm-backend/internal/entity"
)

type AuditRepository struct {
	mu      sync.RWMutex
	entries []*entity.AuditLogEntry
}

func NewAuditRepository() *AuditRepository {
	return &AuditRepository{}
}

func (r *AuditRepository) Append(ctx context.Context, entry *entity.AuditLogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *entry
	r.entries = append(r.entries, &clone)
	return nil
}

// Entries exposes the recorded log for tests.
func (r *AuditRepository) Entries() []*entity.AuditLogEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*entity.AuditLogEntry, len(r.entries))
	copy(out, r.entries)
	return out
}
