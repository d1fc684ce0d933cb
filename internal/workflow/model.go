package workflow

import (
	"time"

	"jobassist-backend/internal/match"
)

// Status is the workflow state machine position.
type Status string

const (
	StatusPending               Status = "pending"
	StatusGeneratingResume      Status = "generating_resume"
	StatusGeneratingCoverLetter Status = "generating_cover_letter"
	StatusCalculatingATSScore   Status = "calculating_ats_score"
	StatusReadyForReview        Status = "ready_for_review"
	StatusApprovedForSubmission Status = "approved_for_submission"
	StatusSubmitting            Status = "submitting"
	StatusSubmitted             Status = "submitted"
	StatusFailed                Status = "failed"
	StatusCancelled             Status = "cancelled"
)

// Terminal reports whether the status is final. Terminal workflows are immutable.
func (s Status) Terminal() bool {
	return s == StatusSubmitted || s == StatusFailed || s == StatusCancelled
}

// Step statuses.
const (
	StepPending    = "pending"
	StepInProgress = "in_progress"
	StepCompleted  = "completed"
	StepFailed     = "failed"
)

// Step names, in pipeline order.
const (
	StepResumeGeneration      = "resume_generation"
	StepCoverLetterGeneration = "cover_letter_generation"
	StepATSScoring            = "ats_scoring"
	StepUserReview            = "user_review"
	StepSubmission            = "submission"
)

// Step tracks one stage of the pipeline.
type Step struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Document is a generated application artifact.
type Document struct {
	Kind        string    `json:"kind"`
	Text        string    `json:"text"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// Document kinds.
const (
	DocResume      = "resume"
	DocCoverLetter = "cover_letter"
)

// ATSReport is the applicant-tracking-system compatibility verdict for a resume.
type ATSReport struct {
	Score           int      `json:"score"`
	Recommendations []string `json:"recommendations,omitempty"`
}

// ApplicationData accumulates artifacts as the pipeline advances. Artifacts
// survive cancellation for audit.
type ApplicationData struct {
	Resume             *Document `json:"resume,omitempty"`
	CoverLetter        *Document `json:"coverLetter,omitempty"`
	ATSScore           *int      `json:"atsScore,omitempty"`
	ATSRecommendations []string  `json:"atsRecommendations,omitempty"`
}

// Workflow is one (user, job) application run. It is owned and mutated only by
// the Service; callers see Snapshot views.
type Workflow struct {
	ID          string           `json:"id"`
	UserID      string           `json:"userId"`
	Job         match.JobPosting `json:"job"`
	Status      Status           `json:"status"`
	Steps       map[string]Step  `json:"steps"`
	Application ApplicationData  `json:"application"`
	Error       string           `json:"error,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

func newSteps() map[string]Step {
	return map[string]Step{
		StepResumeGeneration:      {Status: StepPending},
		StepCoverLetterGeneration: {Status: StepPending},
		StepATSScoring:            {Status: StepPending},
		StepUserReview:            {Status: StepPending},
		StepSubmission:            {Status: StepPending},
	}
}

func (w Workflow) clone() Workflow {
	out := w
	out.Steps = make(map[string]Step, len(w.Steps))
	for name, step := range w.Steps {
		out.Steps[name] = step
	}
	if w.Application.Resume != nil {
		doc := *w.Application.Resume
		out.Application.Resume = &doc
	}
	if w.Application.CoverLetter != nil {
		doc := *w.Application.CoverLetter
		out.Application.CoverLetter = &doc
	}
	if w.Application.ATSScore != nil {
		score := *w.Application.ATSScore
		out.Application.ATSScore = &score
	}
	out.Application.ATSRecommendations = append([]string(nil), w.Application.ATSRecommendations...)
	out.Job.RequiredSkills = append([]string(nil), w.Job.RequiredSkills...)
	return out
}

// Snapshot is the read-only view returned to callers.
type Snapshot struct {
	WorkflowID     string          `json:"workflowId"`
	Status         Status          `json:"status"`
	JobTitle       string          `json:"jobTitle"`
	Company        string          `json:"company"`
	Steps          map[string]Step `json:"steps"`
	ATSScore       *int            `json:"atsScore,omitempty"`
	HasResume      bool            `json:"hasResume"`
	HasCoverLetter bool            `json:"hasCoverLetter"`
	Error          string          `json:"error,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

func (w Workflow) snapshot() Snapshot {
	c := w.clone()
	return Snapshot{
		WorkflowID:     c.ID,
		Status:         c.Status,
		JobTitle:       c.Job.Title,
		Company:        c.Job.Company,
		Steps:          c.Steps,
		ATSScore:       c.Application.ATSScore,
		HasResume:      c.Application.Resume != nil,
		HasCoverLetter: c.Application.CoverLetter != nil,
		Error:          c.Error,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}
