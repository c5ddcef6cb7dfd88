package usecase

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/edustride/crm-backend/internal/entity"
)

// recordAudit appends a before/after snapshot to the audit log. Audit
// failures are swallowed: observability must never block a business
// mutation that already happened.
func recordAudit(ctx context.Context, repo AuditRepositoryInterface, actorID, action, entityType, entityID string, before, after any, reason string) {
	if repo == nil {
		return
	}

	entry := &entity.AuditLogEntry{
		ID:         uuid.New().String(),
		ActorID:    actorID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		BeforeData: marshalSnapshot(before),
		AfterData:  marshalSnapshot(after),
		Reason:     reason,
		CreatedAt:  time.Now(),
	}

	if err := repo.Append(ctx, entry); err != nil {
		slog.Warn("audit write failed", "action", action, "entity_id", entityID, "error", err)
	}
}

func marshalSnapshot(v any) json.RawMessage {
	if v == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return data
}

// snapshotLead copies a lead so the before-image survives in-place
// edits.
func snapshotLead(l *entity.Lead) *entity.Lead {
	if l == nil {
		return nil
	}
	clone := *l
	return &clone
}
