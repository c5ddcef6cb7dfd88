package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/edustride/crm-backend/internal/entity"
)

type AuditRepository struct {
	DB *sql.DB
}

func NewAuditRepository(db *sql.DB) *AuditRepository {
	return &AuditRepository{DB: db}
}

func (r *AuditRepository) Append(ctx context.Context, entry *entity.AuditLogEntry) error {
	query := `
		INSERT INTO audit_logs (id, actor_id, action, entity_type, entity_id, before_data, after_data, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.DB.ExecContext(ctx, query,
		entry.ID,
		entry.ActorID,
		entry.Action,
		entry.EntityType,
		entry.EntityID,
		[]byte(entry.BeforeData),
		[]byte(entry.AfterData),
		nullString(entry.Reason),
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append audit log: %w", err)
	}

	return nil
}
