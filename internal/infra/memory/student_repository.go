package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/edustride/crm-backend/internal/entity"
)

type StudentRepository struct {
	mu       sync.RWMutex
	students map[string]*entity.Student
}

func NewStudentRepository() *StudentRepository {
	return &StudentRepository{students: make(map[string]*entity.Student)}
}

func (r *StudentRepository) Create(ctx context.Context, s *entity.Student) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *s
	r.students[s.ID] = &clone
	return nil
}

func (r *StudentRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.students, id)
	return nil
}

func (r *StudentRepository) RecentCodes(ctx context.Context, limit int) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*entity.Student, 0, len(r.students))
	for _, s := range r.students {
		all = append(all, s)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	var codes []string
	for i, s := range all {
		if i >= limit {
			break
		}
		codes = append(codes, s.StudentCode)
	}
	return codes, nil
}

// All exposes the stored students for tests.
func (r *StudentRepository) All() []*entity.Student {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*entity.Student, 0, len(r.students))
	for _, s := range r.students {
		clone := *s
		out = append(out, &clone)
	}
	return out
}
