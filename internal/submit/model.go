package submit

import "time"

// Submission methods, chosen by posting source.
const (
	MethodAPI       = "api"
	MethodEasyApply = "easy_apply"
	MethodEmail     = "email"
)

// Application is the audit record kept after a submission attempt.
type Application struct {
	ID          string    `json:"id"`
	WorkflowID  string    `json:"workflowId"`
	UserID      string    `json:"userId"`
	JobID       string    `json:"jobId"`
	Method      string    `json:"method"`
	Success     bool      `json:"success"`
	Error       string    `json:"error,omitempty"`
	SubmittedAt time.Time `json:"submittedAt"`
}
