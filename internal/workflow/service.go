package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"jobassist-backend/internal/match"
	"jobassist-backend/internal/shared/telemetry"
)

const defaultStageTimeout = 2 * time.Minute

// Refinements are user-requested edits applied during approval, before
// submission. A resume change triggers an ATS re-score.
type Refinements struct {
	ResumeChanges      []string `json:"resumeChanges,omitempty"`
	CoverLetterChanges []string `json:"coverLetterChanges,omitempty"`
}

func (r *Refinements) empty() bool {
	return r == nil || (len(r.ResumeChanges) == 0 && len(r.CoverLetterChanges) == 0)
}

// ApprovalResult is the structured outcome of Approve, returned even when the
// submission itself failed.
type ApprovalResult struct {
	WorkflowID string           `json:"workflowId"`
	Status     Status           `json:"status"`
	Submission SubmissionResult `json:"submission"`
}

// Service drives application workflows through generation, review, and
// submission. Each workflow is mutated by at most one in-flight operation at a
// time; operations on different workflows proceed independently.
type Service struct {
	Repo      Repo
	Generator DocumentGenerator
	ATS       ATSScorer
	Notifier  Notifier
	Submitter Submitter
	Records   RecordStore

	// StageTimeout bounds each capability call-out. Zero means the default.
	StageTimeout time.Duration

	// DriveSync runs the generation pipeline before Start returns instead of
	// on a background goroutine. Tests rely on it for determinism.
	DriveSync bool

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// stage transitions are serialized per workflow ID. The lock is never held
// across a capability call-out so Cancel stays responsive.
func (s *Service) lockFor(workflowID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.locks == nil {
		s.locks = make(map[string]*sync.Mutex)
	}
	l, ok := s.locks[workflowID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[workflowID] = l
	}
	return l
}

// Start registers a workflow for (userID, job) and returns its ID immediately.
// The generation pipeline (resume, cover letter, ATS score) runs in the
// background; progress is observable through Status.
func (s *Service) Start(ctx context.Context, userID string, job match.JobPosting) (string, error) {
	if userID == "" {
		return "", errors.New("userID is required")
	}
	if job.ID == "" {
		return "", errors.New("job id is required")
	}
	if err := job.Validate(); err != nil {
		return "", err
	}

	now := time.Now().UTC()
	w := Workflow{
		ID:        uuid.NewString(),
		UserID:    userID,
		Job:       job,
		Status:    StatusPending,
		Steps:     newSteps(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Repo.Create(ctx, w); err != nil {
		return "", err
	}
	telemetry.Info("workflow.started", map[string]any{
		"workflow_id": w.ID,
		"user_id":     userID,
		"job_id":      job.ID,
		"company":     job.Company,
	})

	pipelineCtx := context.WithoutCancel(ctx)
	if s.DriveSync {
		s.runPipeline(pipelineCtx, w.ID)
	} else {
		go s.runPipeline(pipelineCtx, w.ID)
	}
	return w.ID, nil
}

// Status returns a read-only snapshot. A workflow owned by another user is
// reported as not found.
func (s *Service) Status(ctx context.Context, workflowID, userID string) (Snapshot, error) {
	w, err := s.load(ctx, workflowID, userID)
	if err != nil {
		return Snapshot{}, err
	}
	return w.snapshot(), nil
}

// Cancel moves a non-terminal workflow to cancelled. Generated artifacts are
// kept for audit. Cancelling a submitted, failed, or already-cancelled
// workflow reports ErrInvalidState.
func (s *Service) Cancel(ctx context.Context, workflowID, userID string) error {
	lock := s.lockFor(workflowID)
	lock.Lock()
	defer lock.Unlock()

	w, err := s.load(ctx, workflowID, userID)
	if err != nil {
		return err
	}
	if w.Status.Terminal() {
		return fmt.Errorf("%w: cannot cancel workflow in status %q", ErrInvalidState, w.Status)
	}
	w.Status = StatusCancelled
	w.UpdatedAt = time.Now().UTC()
	if err := s.Repo.Update(ctx, w); err != nil {
		return err
	}
	telemetry.Info("workflow.cancelled", map[string]any{"workflow_id": workflowID, "user_id": userID})
	return nil
}

// Approve applies optional refinements and drives submission. It is valid only
// from ready_for_review. A submitter-reported failure surfaces as a structured
// result with the workflow in failed, not as an opaque error.
func (s *Service) Approve(ctx context.Context, workflowID, userID string, refinements *Refinements) (ApprovalResult, error) {
	lock := s.lockFor(workflowID)

	lock.Lock()
	w, err := s.load(ctx, workflowID, userID)
	if err != nil {
		lock.Unlock()
		return ApprovalResult{}, err
	}
	if w.Status != StatusReadyForReview {
		lock.Unlock()
		return ApprovalResult{}, fmt.Errorf("%w: workflow is %q, approval requires %q", ErrInvalidState, w.Status, StatusReadyForReview)
	}
	if w.Steps[StepUserReview].Status == StepInProgress {
		lock.Unlock()
		return ApprovalResult{}, fmt.Errorf("%w: an approval is already in progress", ErrInvalidState)
	}
	w.Steps[StepUserReview] = Step{Status: StepInProgress}
	w.UpdatedAt = time.Now().UTC()
	if err := s.Repo.Update(ctx, w); err != nil {
		lock.Unlock()
		return ApprovalResult{}, err
	}
	lock.Unlock()

	// Refinement call-outs happen without the lock. A failure leaves the
	// workflow reviewable again.
	refined, err := s.applyRefinements(ctx, w, refinements)
	if err != nil {
		s.revertReview(ctx, lock, workflowID)
		return ApprovalResult{}, err
	}

	lock.Lock()
	w, loadErr := s.load(ctx, workflowID, userID)
	if loadErr != nil {
		lock.Unlock()
		return ApprovalResult{}, loadErr
	}
	if w.Status == StatusCancelled {
		lock.Unlock()
		return ApprovalResult{}, fmt.Errorf("%w: workflow was cancelled during review", ErrInvalidState)
	}
	if w.Status != StatusReadyForReview {
		// The refinement result landed after another transition; terminal
		// states are never overwritten.
		lock.Unlock()
		return ApprovalResult{}, fmt.Errorf("%w: workflow moved to %q during review", ErrInvalidState, w.Status)
	}
	w.Application = refined
	w.Steps[StepUserReview] = Step{Status: StepCompleted}
	w.Status = StatusApprovedForSubmission
	w.UpdatedAt = time.Now().UTC()
	if err := s.Repo.Update(ctx, w); err != nil {
		lock.Unlock()
		return ApprovalResult{}, err
	}
	lock.Unlock()

	return s.submit(ctx, lock, w)
}

func (s *Service) revertReview(ctx context.Context, lock *sync.Mutex, workflowID string) {
	lock.Lock()
	defer lock.Unlock()
	w, err := s.Repo.GetByID(ctx, workflowID)
	if err != nil || w.Status != StatusReadyForReview {
		return
	}
	w.Steps[StepUserReview] = Step{Status: StepPending}
	w.UpdatedAt = time.Now().UTC()
	if err := s.Repo.Update(ctx, w); err != nil {
		telemetry.Error("workflow.review_revert_failed", map[string]any{"workflow_id": workflowID, "error": err.Error()})
	}
}

func (s *Service) applyRefinements(ctx context.Context, w Workflow, refinements *Refinements) (ApplicationData, error) {
	app := w.clone().Application
	if refinements.empty() {
		return app, nil
	}
	if len(refinements.ResumeChanges) > 0 {
		if app.Resume == nil {
			return app, &StageError{WorkflowID: w.ID, Stage: StepUserReview, Kind: KindGeneration, Err: errors.New("no resume to refine")}
		}
		doc, err := s.callRefine(ctx, w.ID, *app.Resume, refinements.ResumeChanges)
		if err != nil {
			return app, err
		}
		app.Resume = &doc

		report, err := s.callATS(ctx, w.ID, doc, w.Job.RequiredSkills)
		if err != nil {
			return app, err
		}
		app.ATSScore = &report.Score
		app.ATSRecommendations = report.Recommendations
	}
	if len(refinements.CoverLetterChanges) > 0 {
		if app.CoverLetter == nil {
			return app, &StageError{WorkflowID: w.ID, Stage: StepUserReview, Kind: KindGeneration, Err: errors.New("no cover letter to refine")}
		}
		doc, err := s.callRefine(ctx, w.ID, *app.CoverLetter, refinements.CoverLetterChanges)
		if err != nil {
			return app, err
		}
		app.CoverLetter = &doc
	}
	telemetry.Info("workflow.refined", map[string]any{"workflow_id": w.ID})
	return app, nil
}

func (s *Service) submit(ctx context.Context, lock *sync.Mutex, w Workflow) (ApprovalResult, error) {
	lock.Lock()
	current, err := s.Repo.GetByID(ctx, w.ID)
	if err != nil {
		lock.Unlock()
		return ApprovalResult{}, err
	}
	if current.Status != StatusApprovedForSubmission {
		lock.Unlock()
		return ApprovalResult{}, fmt.Errorf("%w: workflow is %q", ErrInvalidState, current.Status)
	}
	current.Status = StatusSubmitting
	current.Steps[StepSubmission] = Step{Status: StepInProgress}
	current.UpdatedAt = time.Now().UTC()
	if err := s.Repo.Update(ctx, current); err != nil {
		lock.Unlock()
		return ApprovalResult{}, err
	}
	lock.Unlock()

	sub := Submission{
		WorkflowID:  current.ID,
		UserID:      current.UserID,
		Job:         current.Job,
		Resume:      *current.Application.Resume,
		CoverLetter: *current.Application.CoverLetter,
	}

	var result SubmissionResult
	callErr := s.callStage(ctx, current.ID, StepSubmission, func(cctx context.Context) error {
		var err error
		result, err = s.Submitter.Submit(cctx, sub)
		return err
	})

	lock.Lock()
	current, err = s.Repo.GetByID(ctx, current.ID)
	if err != nil {
		lock.Unlock()
		return ApprovalResult{}, err
	}
	if current.Status == StatusCancelled {
		// The submission result landed after a cancellation; discard it.
		lock.Unlock()
		telemetry.Info("workflow.submission_discarded", map[string]any{"workflow_id": current.ID})
		return ApprovalResult{}, fmt.Errorf("%w: workflow was cancelled during submission", ErrInvalidState)
	}

	switch {
	case callErr != nil:
		current.Status = StatusFailed
		current.Steps[StepSubmission] = Step{Status: StepFailed, Error: callErr.Error()}
		current.Error = callErr.Error()
	case !result.Success:
		current.Status = StatusFailed
		current.Steps[StepSubmission] = Step{Status: StepFailed, Error: result.Error}
		current.Error = result.Error
	default:
		current.Status = StatusSubmitted
		current.Steps[StepSubmission] = Step{Status: StepCompleted}
	}
	current.UpdatedAt = time.Now().UTC()
	if err := s.Repo.Update(ctx, current); err != nil {
		lock.Unlock()
		return ApprovalResult{}, err
	}
	lock.Unlock()

	if current.Status == StatusSubmitted {
		s.afterSubmitted(ctx, current, sub, result)
	}
	telemetry.Info("workflow.submission_finished", map[string]any{
		"workflow_id": current.ID,
		"status":      string(current.Status),
		"method":      result.Method,
		"success":     result.Success,
	})
	return ApprovalResult{WorkflowID: current.ID, Status: current.Status, Submission: result}, nil
}

// afterSubmitted notifies and records. Neither failure reverts submitted state.
func (s *Service) afterSubmitted(ctx context.Context, w Workflow, sub Submission, result SubmissionResult) {
	if s.Notifier != nil {
		payload := map[string]any{
			"workflow_id":  w.ID,
			"job_title":    w.Job.Title,
			"company":      w.Job.Company,
			"method":       result.Method,
			"submitted_at": result.SubmittedAt,
		}
		if _, err := s.Notifier.Notify(ctx, w.UserID, NoticeApplicationSubmitted, payload); err != nil {
			telemetry.Error("workflow.notify_failed", map[string]any{"workflow_id": w.ID, "kind": NoticeApplicationSubmitted, "error": err.Error()})
		}
	}
	if s.Records != nil {
		if err := s.Records.Record(ctx, sub, result); err != nil {
			telemetry.Error("workflow.record_failed", map[string]any{"workflow_id": w.ID, "error": err.Error()})
		}
	}
}

func (s *Service) load(ctx context.Context, workflowID, userID string) (Workflow, error) {
	w, err := s.Repo.GetByID(ctx, workflowID)
	if err != nil {
		return Workflow{}, err
	}
	if w.UserID != userID {
		// Ownership mismatch is indistinguishable from absence.
		return Workflow{}, ErrNotFound
	}
	return w, nil
}

// callStage runs one capability call-out under the stage timeout, classifying
// failures as timeout or generation stage errors.
func (s *Service) callStage(ctx context.Context, workflowID, stage string, fn func(ctx context.Context) error) error {
	timeout := s.StageTimeout
	if timeout <= 0 {
		timeout = defaultStageTimeout
	}
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := fn(cctx)
	if err == nil {
		return nil
	}
	kind := KindGeneration
	if errors.Is(err, context.DeadlineExceeded) {
		kind = KindTimeout
	}
	return &StageError{WorkflowID: workflowID, Stage: stage, Kind: kind, Err: err}
}

func (s *Service) callRefine(ctx context.Context, workflowID string, doc Document, changes []string) (Document, error) {
	var out Document
	err := s.callStage(ctx, workflowID, StepUserReview, func(cctx context.Context) error {
		var err error
		out, err = s.Generator.Refine(cctx, doc, changes)
		return err
	})
	return out, err
}

func (s *Service) callATS(ctx context.Context, workflowID string, resume Document, requiredSkills []string) (ATSReport, error) {
	var out ATSReport
	err := s.callStage(ctx, workflowID, StepATSScoring, func(cctx context.Context) error {
		var err error
		out, err = s.ATS.ScoreResume(cctx, resume, requiredSkills)
		return err
	})
	return out, err
}
