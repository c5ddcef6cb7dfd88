package database

import (
	"context"
	"database/sql"

	"github.com/lib/pq"
)

// UserRepository only resolves display names; the auth service owns
// the rest of the users table.
type UserRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) DisplayNames(ctx context.Context, ids []string) (map[string]string, error) {
	query := `SELECT id, name FROM users WHERE id = ANY($1)`

	rows, err := r.DB.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := make(map[string]string, len(ids))
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		names[id] = name
	}
	return names, rows.Err()
}
