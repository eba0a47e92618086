package conversions

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]Conversion
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		data: make(map[string]Conversion),
	}
}

// Create stores a new conversion record.
func (r *MemoryRepo) Create(ctx context.Context, c Conversion) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[c.ID] = c
	return nil
}

// Update overwrites an existing conversion record.
func (r *MemoryRepo) Update(ctx context.Context, c Conversion) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[c.ID]; !ok {
		return ErrNotFound
	}
	r.data[c.ID] = c
	return nil
}

// GetByID returns a conversion by ID.
func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Conversion, error) {
	if err := ctx.Err(); err != nil {
		return Conversion{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.data[id]
	if !ok {
		return Conversion{}, ErrNotFound
	}
	return c, nil
}

// ListRecent returns up to limit conversions, newest first.
func (r *MemoryRepo) ListRecent(ctx context.Context, limit int) ([]Conversion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Conversion, 0, len(r.data))
	for _, c := range r.data {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
