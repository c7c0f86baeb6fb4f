package submission

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository is an in-process Repository. It backs the memory
// storage mode and the package tests. Reads and writes exchange clones,
// never pointers into the store.
type MemoryRepository struct {
	mu    sync.RWMutex
	items map[uuid.UUID]*Submission
	order []uuid.UUID // newest first
	now   func() time.Time
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		items: make(map[uuid.UUID]*Submission),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// SetClock overrides the created_at clock. Test hook.
func (r *MemoryRepository) SetClock(now func() time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.now = now
}

func (r *MemoryRepository) Create(_ context.Context, sub *Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	sub.ID = uuid.New()
	sub.CreatedAt = r.now()

	r.items[sub.ID] = sub.Clone()
	r.order = append([]uuid.UUID{sub.ID}, r.order...)
	return nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id uuid.UUID) (*Submission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return stored.Clone(), nil
}

func (r *MemoryRepository) List(_ context.Context) ([]*Submission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Submission, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.items[id].Clone())
	}
	// created_at DESC, like the pg repository. The order slice already
	// holds newest-first insertion order, so the stable sort only moves
	// rows when the clock ran backwards between creates.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryRepository) Update(_ context.Context, sub *Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.items[sub.ID]
	if !ok {
		return ErrNotFound
	}

	updated := sub.Clone()
	// id and created_at stay store-assigned
	updated.ID = stored.ID
	updated.CreatedAt = stored.CreatedAt
	r.items[stored.ID] = updated

	*sub = *updated.Clone()
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return ErrNotFound
	}
	delete(r.items, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}
