package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/edustride/crm-backend/internal/entity"
)

type PaymentRequestRepository struct {
	mu       sync.Mutex
	requests map[string]*entity.PaymentRequest
}

func NewPaymentRequestRepository() *PaymentRequestRepository {
	return &PaymentRequestRepository{requests: make(map[string]*entity.PaymentRequest)}
}

func (r *PaymentRequestRepository) Create(ctx context.Context, req *entity.PaymentRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *req
	r.requests[req.ID] = &clone
	return nil
}

func (r *PaymentRequestRepository) FindByID(ctx context.Context, id string) (*entity.PaymentRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	req, ok := r.requests[id]
	if !ok {
		return nil, nil
	}
	clone := *req
	return &clone, nil
}

func (r *PaymentRequestRepository) ListByStatus(ctx context.Context, status entity.PaymentRequestStatus) ([]*entity.PaymentRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*entity.PaymentRequest
	for _, req := range r.requests {
		if req.Status == status {
			clone := *req
			out = append(out, &clone)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *PaymentRequestRepository) MarkVerified(ctx context.Context, id, verifiedBy, note string) (bool, error) {
	return r.settle(id, entity.PaymentVerified, verifiedBy, note)
}

func (r *PaymentRequestRepository) MarkRejected(ctx context.Context, id, verifiedBy, note string) (bool, error) {
	return r.settle(id, entity.PaymentRejected, verifiedBy, note)
}

// settle is the compare-and-swap: it only applies while the request is
// still pending, matching the conditional UPDATE the Postgres adapter
// runs.
func (r *PaymentRequestRepository) settle(id string, status entity.PaymentRequestStatus, verifiedBy, note string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	req, ok := r.requests[id]
	if !ok || req.Status != entity.PaymentPending {
		return false, nil
	}

	now := time.Now()
	req.Status = status
	req.VerifiedBy = &verifiedBy
	req.VerifiedAt = &now
	req.FinanceNote = note
	return true, nil
}
