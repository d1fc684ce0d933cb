package workflow

import (
	"context"
	"sync"
)

// MemoryRepo stores workflows in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu   sync.RWMutex
	byID map[string]Workflow
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byID: make(map[string]Workflow)}
}

// Create stores the workflow.
func (r *MemoryRepo) Create(ctx context.Context, w Workflow) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[w.ID] = w.clone()
	return nil
}

// GetByID returns a workflow by its ID.
func (r *MemoryRepo) GetByID(ctx context.Context, workflowID string) (Workflow, error) {
	if err := ctx.Err(); err != nil {
		return Workflow{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.byID[workflowID]
	if !ok {
		return Workflow{}, ErrNotFound
	}
	return w.clone(), nil
}

// Update replaces the stored workflow.
func (r *MemoryRepo) Update(ctx context.Context, w Workflow) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[w.ID]; !ok {
		return ErrNotFound
	}
	r.byID[w.ID] = w.clone()
	return nil
}
