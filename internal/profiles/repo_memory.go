package profiles

import (
	"context"
	"sync"

	"jobassist-backend/internal/match"
)

// MemoryRepo stores profiles in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu       sync.RWMutex
	byUserID map[string]match.CandidateProfile
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byUserID: make(map[string]match.CandidateProfile)}
}

// GetProfile returns the profile for a user.
func (r *MemoryRepo) GetProfile(ctx context.Context, userID string) (match.CandidateProfile, error) {
	if err := ctx.Err(); err != nil {
		return match.CandidateProfile{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	profile, ok := r.byUserID[userID]
	if !ok {
		return match.CandidateProfile{}, ErrNotFound
	}
	return profile, nil
}

// PutProfile validates and stores a profile, replacing any existing one.
func (r *MemoryRepo) PutProfile(ctx context.Context, profile match.CandidateProfile) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := profile.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byUserID[profile.UserID] = profile
	return nil
}
