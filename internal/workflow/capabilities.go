package workflow

import (
	"context"
	"time"

	"jobassist-backend/internal/match"
)

// DocumentGenerator produces and refines application artifacts. Implementations
// may be model-inference-bound; calls run under a per-stage timeout.
type DocumentGenerator interface {
	GenerateResume(ctx context.Context, userID string, job match.JobPosting) (Document, error)
	GenerateCoverLetter(ctx context.Context, userID string, job match.JobPosting) (Document, error)
	Refine(ctx context.Context, doc Document, changes []string) (Document, error)
}

// ATSScorer rates a resume against posting requirements on a 0..100 scale.
type ATSScorer interface {
	ScoreResume(ctx context.Context, resume Document, requiredSkills []string) (ATSReport, error)
}

// Notifier delivers user-facing notifications. Fire-and-forget: delivery
// failures are logged and never roll back workflow state.
type Notifier interface {
	Notify(ctx context.Context, userID, kind string, payload map[string]any) (string, error)
}

// Notification kinds emitted by the engine.
const (
	NoticeApplicationReady     = "application_ready"
	NoticeApplicationSubmitted = "application_submitted"
)

// Submission is everything a Submitter needs to file an application.
type Submission struct {
	WorkflowID  string           `json:"workflowId"`
	UserID      string           `json:"userId"`
	Job         match.JobPosting `json:"job"`
	Resume      Document         `json:"resume"`
	CoverLetter Document         `json:"coverLetter"`
}

// SubmissionResult reports the outcome of a submission attempt. Success=false
// is a normal result, not an error.
type SubmissionResult struct {
	Success       bool      `json:"success"`
	ApplicationID string    `json:"applicationId,omitempty"`
	Method        string    `json:"method,omitempty"`
	Error         string    `json:"error,omitempty"`
	SubmittedAt   time.Time `json:"submittedAt"`
}

// Submitter files the assembled application with the external board or ATS.
type Submitter interface {
	Submit(ctx context.Context, app Submission) (SubmissionResult, error)
}

// RecordStore persists an audit record after a successful submission. Failures
// are logged; the submission already happened externally and is not reverted.
type RecordStore interface {
	Record(ctx context.Context, sub Submission, result SubmissionResult) error
}
