package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/edustride/crm-backend/internal/entity"
)

type PaymentRequestRepository struct {
	DB *sql.DB
}

func NewPaymentRequestRepository(db *sql.DB) *PaymentRequestRepository {
	return &PaymentRequestRepository{DB: db}
}

func (r *PaymentRequestRepository) Create(ctx context.Context, req *entity.PaymentRequest) error {
	query := `
		INSERT INTO payment_requests (id, lead_id, requested_by, amount, screenshot_url, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.DB.ExecContext(ctx, query,
		req.ID,
		req.LeadID,
		req.RequestedBy,
		req.Amount,
		req.ScreenshotURL,
		req.Status,
		req.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert payment request: %w", err)
	}

	return nil
}

func (r *PaymentRequestRepository) FindByID(ctx context.Context, id string) (*entity.PaymentRequest, error) {
	query := `
		SELECT id, lead_id, requested_by, amount, screenshot_url, status, finance_note, verified_by, verified_at, created_at
		FROM payment_requests
		WHERE id = $1
	`

	var req entity.PaymentRequest
	var screenshotURL, financeNote, verifiedBy sql.NullString
	var verifiedAt sql.NullTime

	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&req.ID,
		&req.LeadID,
		&req.RequestedBy,
		&req.Amount,
		&screenshotURL,
		&req.Status,
		&financeNote,
		&verifiedBy,
		&verifiedAt,
		&req.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if screenshotURL.Valid {
		req.ScreenshotURL = &screenshotURL.String
	}
	req.FinanceNote = financeNote.String
	if verifiedBy.Valid {
		req.VerifiedBy = &verifiedBy.String
	}
	if verifiedAt.Valid {
		req.VerifiedAt = &verifiedAt.Time
	}

	return &req, nil
}

func (r *PaymentRequestRepository) ListByStatus(ctx context.Context, status entity.PaymentRequestStatus) ([]*entity.PaymentRequest, error) {
	query := `
		SELECT id, lead_id, requested_by, amount, screenshot_url, status, finance_note, verified_by, verified_at, created_at
		FROM payment_requests
		WHERE status = $1
		ORDER BY created_at ASC
	`

	rows, err := r.DB.QueryContext(ctx, query, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []*entity.PaymentRequest
	for rows.Next() {
		var req entity.PaymentRequest
		var screenshotURL, financeNote, verifiedBy sql.NullString
		var verifiedAt sql.NullTime

		err := rows.Scan(
			&req.ID,
			&req.LeadID,
			&req.RequestedBy,
			&req.Amount,
			&screenshotURL,
			&req.Status,
			&financeNote,
			&verifiedBy,
			&verifiedAt,
			&req.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		if screenshotURL.Valid {
			req.ScreenshotURL = &screenshotURL.String
		}
		req.FinanceNote = financeNote.String
		if verifiedBy.Valid {
			req.VerifiedBy = &verifiedBy.String
		}
		if verifiedAt.Valid {
			req.VerifiedAt = &verifiedAt.Time
		}
		requests = append(requests, &req)
	}
	return requests, rows.Err()
}

// MarkVerified is a conditional write: the row must still be pending.
// The guard closes the double-verification window even without the
// advisory lock.
func (r *PaymentRequestRepository) MarkVerified(ctx context.Context, id, verifiedBy, note string) (bool, error) {
	return r.settle(ctx, id, entity.PaymentVerified, verifiedBy, note)
}

func (r *PaymentRequestRepository) MarkRejected(ctx context.Context, id, verifiedBy, note string) (bool, error) {
	return r.settle(ctx, id, entity.PaymentRejected, verifiedBy, note)
}

func (r *PaymentRequestRepository) settle(ctx context.Context, id string, status entity.PaymentRequestStatus, verifiedBy, note string) (bool, error) {
	query := `
		UPDATE payment_requests
		SET status = $2, verified_by = $3, verified_at = NOW(), finance_note = $4
		WHERE id = $1 AND status = 'pending'
	`

	result, err := r.DB.ExecContext(ctx, query, id, status, verifiedBy, nullString(note))
	if err != nil {
		return false, fmt.Errorf("failed to settle payment request: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
