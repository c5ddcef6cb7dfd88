package memory

import (
	"context"
	"sync"
)

// UserDirectory maps actor ids to display names.
type UserDirectory struct {
	mu    sync.RWMutex
	names map[string]string
}

func NewUserDirectory() *UserDirectory {
	return &UserDirectory{names: make(map[string]string)}
}

func (d *UserDirectory) Add(id, name string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.names[id] = name
}

func (d *UserDirectory) DisplayNames(ctx context.Context, ids []string) (map[string]string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make(map[string]string, len(ids))
	for _, id := range ids {
		if name, ok := d.names[id]; ok {
			out[id] = name
		}
	}
	return out, nil
}
