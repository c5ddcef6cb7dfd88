package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/edustride/crm-backend/internal/entity"
)

type StudentRepository struct {
	DB *sql.DB
}

func NewStudentRepository(db *sql.DB) *StudentRepository {
	return &StudentRepository{DB: db}
}

func (r *StudentRepository) Create(ctx context.Context, s *entity.Student) error {
	query := `
		INSERT INTO students (
			id, student_code, name, parent_name, contact_number, email,
			class_level, package, lead_id, status, joined_at, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.DB.ExecContext(ctx, query,
		s.ID,
		s.StudentCode,
		s.Name,
		nullString(s.ParentName),
		nullString(s.ContactNum),
		nullString(s.Email),
		nullString(s.ClassLevel),
		nullString(s.Package),
		s.LeadID,
		s.Status,
		s.JoinedAt,
		s.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert student: %w", err)
	}

	return nil
}

// Delete is only used as the saga compensation when a conversion fails
// after the student row landed.
func (r *StudentRepository) Delete(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM students WHERE id = $1`, id)
	return err
}

func (r *StudentRepository) RecentCodes(ctx context.Context, limit int) ([]string, error) {
	query := `SELECT student_code FROM students ORDER BY created_at DESC LIMIT $1`

	rows, err := r.DB.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var codes []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, err
		}
		codes = append(codes, code)
	}
	return codes, rows.Err()
}
