package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/edustride/crm-backend/internal/entity"
	"github.com/edustride/crm-backend/internal/usecase"
)

type LeadRepository struct {
	DB *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

const leadColumns = `
	id, student_name, parent_name, class_level, subject, contact_number,
	email, counselor_id, status, owner_stage, joined_student_id,
	created_at, updated_at, deleted_at, deleted_by, delete_reason
`

func (r *LeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	query := `
		INSERT INTO leads (
			id, student_name, parent_name, class_level, subject,
			contact_number, email, counselor_id, status, owner_stage,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.DB.ExecContext(ctx, query,
		lead.ID,
		lead.StudentName,
		nullString(lead.ParentName),
		nullString(lead.ClassLevel),
		nullString(lead.Subject),
		nullString(lead.ContactNum),
		nullString(lead.Email),
		lead.CounselorID,
		lead.Status,
		lead.OwnerStage,
		lead.CreatedAt,
		lead.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert lead: %w", err)
	}

	return nil
}

// FindByID returns nil, nil for absent and soft-deleted leads alike;
// callers decide how to phrase the miss.
func (r *LeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE id = $1 AND deleted_at IS NULL`

	lead, err := scanLead(r.DB.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return lead, nil
}

func (r *LeadRepository) List(ctx context.Context, filter usecase.LeadFilter) ([]*entity.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE deleted_at IS NULL`
	args := []any{}

	if filter.CounselorID != nil {
		args = append(args, *filter.CounselorID)
		query += fmt.Sprintf(" AND counselor_id = $%d", len(args))
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		args = append(args, pq.Array(statuses))
		query += fmt.Sprintf(" AND status = ANY($%d)", len(args))
	}
	query += " ORDER BY created_at ASC"

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var leads []*entity.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}
	return leads, rows.Err()
}

func (r *LeadRepository) Update(ctx context.Context, lead *entity.Lead) error {
	query := `
		UPDATE leads SET
			student_name = $2,
			parent_name = $3,
			class_level = $4,
			subject = $5,
			contact_number = $6,
			email = $7,
			counselor_id = $8,
			status = $9,
			owner_stage = $10,
			joined_student_id = $11,
			updated_at = $12,
			deleted_at = $13,
			deleted_by = $14,
			delete_reason = $15
		WHERE id = $1
	`

	_, err := r.DB.ExecContext(ctx, query,
		lead.ID,
		lead.StudentName,
		nullString(lead.ParentName),
		nullString(lead.ClassLevel),
		nullString(lead.Subject),
		nullString(lead.ContactNum),
		nullString(lead.Email),
		lead.CounselorID,
		lead.Status,
		lead.OwnerStage,
		lead.JoinedStudentID,
		lead.UpdatedAt,
		lead.DeletedAt,
		lead.DeletedBy,
		nullString(lead.DeleteReason),
	)
	if err != nil {
		return fmt.Errorf("failed to update lead: %w", err)
	}

	return nil
}

func (r *LeadRepository) BulkAssign(ctx context.Context, leadIDs []string, counselorID string) ([]*entity.Lead, error) {
	query := `
		UPDATE leads
		SET counselor_id = $1, updated_at = NOW()
		WHERE id = ANY($2) AND deleted_at IS NULL
		RETURNING ` + leadColumns

	rows, err := r.DB.QueryContext(ctx, query, counselorID, pq.Array(leadIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to bulk assign leads: %w", err)
	}
	defer rows.Close()

	var updated []*entity.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		updated = append(updated, lead)
	}
	return updated, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLead(row rowScanner) (*entity.Lead, error) {
	var lead entity.Lead
	var parentName, classLevel, subject, contactNum, email, deleteReason sql.NullString
	var counselorID, joinedStudentID, deletedBy sql.NullString
	var deletedAt sql.NullTime

	err := row.Scan(
		&lead.ID,
		&lead.StudentName,
		&parentName,
		&classLevel,
		&subject,
		&contactNum,
		&email,
		&counselorID,
		&lead.Status,
		&lead.OwnerStage,
		&joinedStudentID,
		&lead.CreatedAt,
		&lead.UpdatedAt,
		&deletedAt,
		&deletedBy,
		&deleteReason,
	)
	if err != nil {
		return nil, err
	}

	lead.ParentName = parentName.String
	lead.ClassLevel = classLevel.String
	lead.Subject = subject.String
	lead.ContactNum = contactNum.String
	lead.Email = email.String
	lead.DeleteReason = deleteReason.String
	if counselorID.Valid {
		lead.CounselorID = &counselorID.String
	}
	if joinedStudentID.Valid {
		lead.JoinedStudentID = &joinedStudentID.String
	}
	if deletedBy.Valid {
		lead.DeletedBy = &deletedBy.String
	}
	if deletedAt.Valid {
		lead.DeletedAt = &deletedAt.Time
	}

	return &lead, nil
}
