package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/edustride/crm-backend/internal/entity"
)

type DemoRequestRepository struct {
	mu       sync.RWMutex
	requests []*entity.DemoRequest
}

func NewDemoRequestRepository() *DemoRequestRepository {
	return &DemoRequestRepository{}
}

func (r *DemoRequestRepository) Create(ctx context.Context, req *entity.DemoRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *req
	r.requests = append(r.requests, &clone)
	return nil
}

func (r *DemoRequestRepository) List(ctx context.Context) ([]*entity.DemoRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*entity.DemoRequest, 0, len(r.requests))
	for _, req := range r.requests {
		clone := *req
		out = append(out, &clone)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
