package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/edustride/crm-backend/internal/entity"
)

type DemoRequestRepository struct {
	DB *sql.DB
}

func NewDemoRequestRepository(db *sql.DB) *DemoRequestRepository {
	return &DemoRequestRepository{DB: db}
}

func (r *DemoRequestRepository) Create(ctx context.Context, req *entity.DemoRequest) error {
	query := `
		INSERT INTO demo_requests (id, lead_id, broadcasted_by, scheduled_at, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.DB.ExecContext(ctx, query,
		req.ID,
		req.LeadID,
		req.BroadcastedBy,
		req.ScheduledAt,
		req.Status,
		req.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert demo request: %w", err)
	}

	return nil
}

func (r *DemoRequestRepository) List(ctx context.Context) ([]*entity.DemoRequest, error) {
	query := `
		SELECT id, lead_id, broadcasted_by, scheduled_at, status, created_at
		FROM demo_requests
		ORDER BY created_at ASC
	`

	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []*entity.DemoRequest
	for rows.Next() {
		var req entity.DemoRequest
		var scheduledAt sql.NullTime

		err := rows.Scan(&req.ID, &req.LeadID, &req.BroadcastedBy, &scheduledAt, &req.Status, &req.CreatedAt)
		if err != nil {
			return nil, err
		}

		if scheduledAt.Valid {
			req.ScheduledAt = &scheduledAt.Time
		}
		requests = append(requests, &req)
	}
	return requests, rows.Err()
}
