package profiles

import (
	"context"
	"errors"

	"jobassist-backend/internal/match"
)

var ErrNotFound = errors.New("profile not found")

// Repo exposes candidate profiles assembled from the knowledge graph. The
// graph itself (Neo4j or otherwise) sits behind this interface; the core only
// ever reads fully-built profiles.
type Repo interface {
	GetProfile(ctx context.Context, userID string) (match.CandidateProfile, error)
	PutProfile(ctx context.Context, profile match.CandidateProfile) error
}
