package monitor

import (
	"context"
	"sync"

	"jobassist-backend/internal/match"
)

// StaticSource serves postings from an in-memory feed. It backs local and test
// deployments; production wires a board-backed source instead.
type StaticSource struct {
	mu   sync.RWMutex
	jobs []match.JobPosting
}

// NewStaticSource constructs a StaticSource with an initial feed.
func NewStaticSource(jobs ...match.JobPosting) *StaticSource {
	return &StaticSource{jobs: append([]match.JobPosting(nil), jobs...)}
}

// Discover returns the current feed.
func (s *StaticSource) Discover(ctx context.Context) ([]match.JobPosting, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]match.JobPosting(nil), s.jobs...), nil
}

// Add appends postings to the feed.
func (s *StaticSource) Add(jobs ...match.JobPosting) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, jobs...)
}
