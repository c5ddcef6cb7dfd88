package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/edustride/crm-backend/internal/entity"
)

type HistoryRepository struct {
	DB *sql.DB
}

func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{DB: db}
}

func (r *HistoryRepository) Append(ctx context.Context, entry *entity.LeadStatusHistoryEntry) error {
	query := `
		INSERT INTO lead_status_history (id, lead_id, from_status, to_status, changed_by, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.DB.ExecContext(ctx, query,
		entry.ID,
		entry.LeadID,
		entry.FromStatus,
		entry.ToStatus,
		entry.ChangedBy,
		nullString(entry.Reason),
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append status history: %w", err)
	}

	return nil
}

func (r *HistoryRepository) ListByLead(ctx context.Context, leadID string) ([]*entity.LeadStatusHistoryEntry, error) {
	query := `
		SELECT id, lead_id, from_status, to_status, changed_by, reason, created_at
		FROM lead_status_history
		WHERE lead_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.DB.QueryContext(ctx, query, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*entity.LeadStatusHistoryEntry
	for rows.Next() {
		var e entity.LeadStatusHistoryEntry
		var fromStatus, reason sql.NullString

		err := rows.Scan(&e.ID, &e.LeadID, &fromStatus, &e.ToStatus, &e.ChangedBy, &reason, &e.CreatedAt)
		if err != nil {
			return nil, err
		}

		if fromStatus.Valid {
			status := entity.LeadStatus(fromStatus.String)
			e.FromStatus = &status
		}
		e.Reason = reason.String
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}
