package gateway

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/amonks/todopro/collection"
	"github.com/amonks/todopro/query"
	"github.com/amonks/todopro/todo"
)

// Repository stores todos for the server.
type Repository interface {
	List(ctx context.Context, d query.Descriptor) (collection.ListResult, error)
	Get(ctx context.Context, id string) (todo.Todo, error)
	// Create stores a complete record. The newest record is listed first
	// among ties.
	Create(ctx context.Context, t todo.Todo) error
	// Update merges patch into the stored record and stamps UpdatedAt with now.
	Update(ctx context.Context, patch todo.Patch, now time.Time) (todo.Todo, error)
	Delete(ctx context.Context, id string) error
	Close() error
}

// MemoryRepository keeps todos in memory.
type MemoryRepository struct {
	mu    sync.RWMutex
	items []todo.Todo
}

// NewMemoryRepository creates a repository holding a copy of seed.
func NewMemoryRepository(seed []todo.Todo) *MemoryRepository {
	return &MemoryRepository{items: todo.CloneAll(seed)}
}

// List returns one page of matching todos.
func (r *MemoryRepository) List(_ context.Context, d query.Descriptor) (collection.ListResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return Select(r.items, d), nil
}

// Get returns the todo with the given id.
func (r *MemoryRepository) Get(_ context.Context, id string) (todo.Todo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i := r.index(id)
	if i < 0 {
		return todo.Todo{}, fmt.Errorf("todo %s: %w", id, ErrNotFound)
	}
	return r.items[i].Clone(), nil
}

// Create prepends t.
func (r *MemoryRepository) Create(_ context.Context, t todo.Todo) error {
	if err := todo.ValidateTodo(&t); err != nil {
		return fmt.Errorf("create todo %s: %w", t.ID, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.index(t.ID) >= 0 {
		return fmt.Errorf("todo %s already exists", t.ID)
	}
	r.items = append([]todo.Todo{t.Clone()}, r.items...)
	return nil
}

// Update merges patch into the stored record.
func (r *MemoryRepository) Update(_ context.Context, patch todo.Patch, now time.Time) (todo.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.index(patch.ID)
	if i < 0 {
		return todo.Todo{}, fmt.Errorf("todo %s: %w", patch.ID, ErrNotFound)
	}
	updated := patch.Apply(r.items[i])
	updated.ID = r.items[i].ID
	updated.UpdatedAt = stamp(updated.CreatedAt, now)
	r.items[i] = updated
	return updated.Clone(), nil
}

// Delete removes the todo with the given id.
func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.index(id)
	if i < 0 {
		return fmt.Errorf("todo %s: %w", id, ErrNotFound)
	}
	r.items = append(r.items[:i:i], r.items[i+1:]...)
	return nil
}

// Close does nothing.
func (r *MemoryRepository) Close() error {
	return nil
}

func (r *MemoryRepository) index(id string) int {
	for i, item := range r.items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

// stamp keeps updatedAt from ever preceding createdAt.
func stamp(created, now time.Time) time.Time {
	if now.Before(created) {
		return created
	}
	return now
}
