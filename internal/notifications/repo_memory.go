package notifications

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo stores notifications in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu   sync.RWMutex
	byID map[string]Notification
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byID: make(map[string]Notification)}
}

// Create stores the notification.
func (r *MemoryRepo) Create(ctx context.Context, n Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[n.ID] = n.clone()
	return nil
}

// GetByID returns a notification by its ID.
func (r *MemoryRepo) GetByID(ctx context.Context, notificationID string) (Notification, error) {
	if err := ctx.Err(); err != nil {
		return Notification{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.byID[notificationID]
	if !ok {
		return Notification{}, ErrNotFound
	}
	return n.clone(), nil
}

// ListByUser returns the user's notifications, newest first. A limit of zero
// or less means no limit.
func (r *MemoryRepo) ListByUser(ctx context.Context, userID string, limit int, unreadOnly bool) ([]Notification, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Notification
	for _, n := range r.byID {
		if n.UserID != userID {
			continue
		}
		if unreadOnly && n.Read {
			continue
		}
		out = append(out, n.clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Update replaces the stored notification.
func (r *MemoryRepo) Update(ctx context.Context, n Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[n.ID]; !ok {
		return ErrNotFound
	}
	r.byID[n.ID] = n.clone()
	return nil
}
