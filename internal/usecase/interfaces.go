package usecase

import (
	"context"
	"time"

	"github.com/edustride/crm-backend/internal/entity"
	"github.com/edustride/crm-backend/internal/infra/queue"
)

// LeadFilter narrows listings. Nil CounselorID means no ownership
// filter; empty Statuses means any status. Soft-deleted leads are
// excluded by every implementation.
type LeadFilter struct {
	CounselorID *string
	Statuses    []entity.LeadStatus
}

type LeadRepositoryInterface interface {
	Create(ctx context.Context, lead *entity.Lead) error
	// FindByID returns nil, nil when the lead is absent or
	// soft-deleted.
	FindByID(ctx context.Context, id string) (*entity.Lead, error)
	List(ctx context.Context, filter LeadFilter) ([]*entity.Lead, error)
	Update(ctx context.Context, lead *entity.Lead) error
	// BulkAssign sets counselor_id on every matching live lead and
	// returns the leads actually updated; deleted or unknown ids are
	// skipped silently.
	BulkAssign(ctx context.Context, leadIDs []string, counselorID string) ([]*entity.Lead, error)
}

type HistoryRepositoryInterface interface {
	Append(ctx context.Context, entry *entity.LeadStatusHistoryEntry) error
	ListByLead(ctx context.Context, leadID string) ([]*entity.LeadStatusHistoryEntry, error)
}

type AuditRepositoryInterface interface {
	Append(ctx context.Context, entry *entity.AuditLogEntry) error
}

type PaymentRequestRepositoryInterface interface {
	Create(ctx context.Context, req *entity.PaymentRequest) error
	FindByID(ctx context.Context, id string) (*entity.PaymentRequest, error)
	ListByStatus(ctx context.Context, status entity.PaymentRequestStatus) ([]*entity.PaymentRequest, error)
	// MarkVerified and MarkRejected are conditional writes: they only
	// apply while the row is still pending and report whether they won.
	MarkVerified(ctx context.Context, id, verifiedBy, note string) (bool, error)
	MarkRejected(ctx context.Context, id, verifiedBy, note string) (bool, error)
}

type DemoRequestRepositoryInterface interface {
	Create(ctx context.Context, req *entity.DemoRequest) error
	List(ctx context.Context) ([]*entity.DemoRequest, error)
}

type StudentRepositoryInterface interface {
	Create(ctx context.Context, s *entity.Student) error
	Delete(ctx context.Context, id string) error
	// RecentCodes returns the newest student codes, newest first, for
	// the code-generation scan window.
	RecentCodes(ctx context.Context, limit int) ([]string, error)
}

// UserDirectory resolves actor ids to display names for history reads.
type UserDirectory interface {
	DisplayNames(ctx context.Context, ids []string) (map[string]string, error)
}

type EventPublisherInterface interface {
	PublishLeadEvent(ctx context.Context, event queue.LeadEvent) error
}

// Locker is the short-lived advisory lock used by payment verification.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}
