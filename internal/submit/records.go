package submit

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"jobassist-backend/internal/workflow"
)

// MemoryRecords keeps submission audit records in memory.
type MemoryRecords struct {
	mu   sync.RWMutex
	apps []Application
}

// NewMemoryRecords constructs a MemoryRecords.
func NewMemoryRecords() *MemoryRecords {
	return &MemoryRecords{}
}

// Record appends an audit record for the submission attempt.
func (r *MemoryRecords) Record(ctx context.Context, sub workflow.Submission, result workflow.SubmissionResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.apps = append(r.apps, newApplication(sub, result))
	return nil
}

// ListByUser returns the user's records, newest first.
func (r *MemoryRecords) ListByUser(ctx context.Context, userID string) ([]Application, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Application
	for i := len(r.apps) - 1; i >= 0; i-- {
		if r.apps[i].UserID == userID {
			out = append(out, r.apps[i])
		}
	}
	return out, nil
}

func newApplication(sub workflow.Submission, result workflow.SubmissionResult) Application {
	id := result.ApplicationID
	if id == "" {
		id = uuid.NewString()
	}
	submittedAt := result.SubmittedAt
	if submittedAt.IsZero() {
		submittedAt = time.Now().UTC()
	}
	return Application{
		ID:          id,
		WorkflowID:  sub.WorkflowID,
		UserID:      sub.UserID,
		JobID:       sub.Job.ID,
		Method:      result.Method,
		Success:     result.Success,
		Error:       result.Error,
		SubmittedAt: submittedAt,
	}
}
