package workflow

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("workflow not found")
	ErrInvalidState = errors.New("workflow state does not allow this operation")
)

// Stage error kinds. Timeout failures are retryable by resubmitting; generation
// failures usually are not.
const (
	KindGeneration = "generation"
	KindTimeout    = "timeout"
)

// StageError carries which pipeline stage failed and why, so callers can render
// a message without re-deriving context.
type StageError struct {
	WorkflowID string
	Stage      string
	Kind       string
	Err        error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("workflow %s stage %s (%s): %v", e.WorkflowID, e.Stage, e.Kind, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }
