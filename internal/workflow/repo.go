package workflow

import "context"

// Repo defines persistence for the active-workflow table. Implementations must
// be safe for concurrent registration and lookup of distinct workflow IDs; the
// Service serializes mutations per workflow ID above this layer.
type Repo interface {
	Create(ctx context.Context, w Workflow) error
	GetByID(ctx context.Context, workflowID string) (Workflow, error)
	Update(ctx context.Context, w Workflow) error
}
