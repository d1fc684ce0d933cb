package workflow

import (
	"context"
	"fmt"
	"time"

	"jobassist-backend/internal/shared/telemetry"
)

// runPipeline drives resume generation, cover letter generation, and ATS
// scoring in order. Each stage transition commits before the next call-out
// begins; a stage failure marks the workflow failed and skips successors.
func (s *Service) runPipeline(ctx context.Context, workflowID string) {
	defer func() {
		if r := recover(); r != nil {
			s.failWorkflow(ctx, workflowID, "", fmt.Errorf("panic: %v", r))
		}
	}()

	type stage struct {
		step   string
		status Status
		// run executes the call-out against a snapshot and returns a mutation
		// to apply under the lock once the call completes.
		run func(ctx context.Context, w Workflow) (func(*Workflow), error)
	}

	stages := []stage{
		{
			step:   StepResumeGeneration,
			status: StatusGeneratingResume,
			run: func(cctx context.Context, w Workflow) (func(*Workflow), error) {
				doc, err := s.Generator.GenerateResume(cctx, w.UserID, w.Job)
				if err != nil {
					return nil, err
				}
				return func(out *Workflow) { out.Application.Resume = &doc }, nil
			},
		},
		{
			step:   StepCoverLetterGeneration,
			status: StatusGeneratingCoverLetter,
			run: func(cctx context.Context, w Workflow) (func(*Workflow), error) {
				doc, err := s.Generator.GenerateCoverLetter(cctx, w.UserID, w.Job)
				if err != nil {
					return nil, err
				}
				return func(out *Workflow) { out.Application.CoverLetter = &doc }, nil
			},
		},
		{
			step:   StepATSScoring,
			status: StatusCalculatingATSScore,
			run: func(cctx context.Context, w Workflow) (func(*Workflow), error) {
				report, err := s.ATS.ScoreResume(cctx, *w.Application.Resume, w.Job.RequiredSkills)
				if err != nil {
					return nil, err
				}
				return func(out *Workflow) {
					out.Application.ATSScore = &report.Score
					out.Application.ATSRecommendations = report.Recommendations
				}, nil
			},
		},
	}

	for _, st := range stages {
		snapshot, ok := s.beginStage(ctx, workflowID, st.step, st.status)
		if !ok {
			return
		}

		var apply func(*Workflow)
		err := s.callStage(ctx, workflowID, st.step, func(cctx context.Context) error {
			var callErr error
			apply, callErr = st.run(cctx, snapshot)
			return callErr
		})

		if !s.finishStage(ctx, workflowID, st.step, apply, err) {
			return
		}
	}

	s.markReadyForReview(ctx, workflowID)
}

// beginStage commits the transition into a stage. It returns false when the
// workflow was cancelled or otherwise left the pipeline path.
func (s *Service) beginStage(ctx context.Context, workflowID, step string, status Status) (Workflow, bool) {
	lock := s.lockFor(workflowID)
	lock.Lock()
	defer lock.Unlock()

	w, err := s.Repo.GetByID(ctx, workflowID)
	if err != nil {
		telemetry.Error("workflow.stage_load_failed", map[string]any{"workflow_id": workflowID, "step": step, "error": err.Error()})
		return Workflow{}, false
	}
	if w.Status.Terminal() {
		return Workflow{}, false
	}
	w.Status = status
	w.Steps[step] = Step{Status: StepInProgress}
	w.UpdatedAt = time.Now().UTC()
	if err := s.Repo.Update(ctx, w); err != nil {
		telemetry.Error("workflow.stage_update_failed", map[string]any{"workflow_id": workflowID, "step": step, "error": err.Error()})
		return Workflow{}, false
	}
	return w, true
}

// finishStage records a stage outcome. A result arriving after cancellation is
// discarded; the workflow never leaves a terminal state.
func (s *Service) finishStage(ctx context.Context, workflowID, step string, apply func(*Workflow), stageErr error) bool {
	lock := s.lockFor(workflowID)
	lock.Lock()
	defer lock.Unlock()

	w, err := s.Repo.GetByID(ctx, workflowID)
	if err != nil {
		telemetry.Error("workflow.stage_load_failed", map[string]any{"workflow_id": workflowID, "step": step, "error": err.Error()})
		return false
	}
	if w.Status.Terminal() {
		telemetry.Info("workflow.stage_result_discarded", map[string]any{"workflow_id": workflowID, "step": step, "status": string(w.Status)})
		return false
	}

	if stageErr != nil {
		w.Steps[step] = Step{Status: StepFailed, Error: stageErr.Error()}
		w.Status = StatusFailed
		w.Error = stageErr.Error()
		w.UpdatedAt = time.Now().UTC()
		if err := s.Repo.Update(ctx, w); err != nil {
			telemetry.Error("workflow.stage_update_failed", map[string]any{"workflow_id": workflowID, "step": step, "error": err.Error()})
		}
		telemetry.Error("workflow.stage_failed", map[string]any{"workflow_id": workflowID, "step": step, "error": stageErr.Error()})
		return false
	}

	if apply != nil {
		apply(&w)
	}
	w.Steps[step] = Step{Status: StepCompleted}
	w.UpdatedAt = time.Now().UTC()
	if err := s.Repo.Update(ctx, w); err != nil {
		telemetry.Error("workflow.stage_update_failed", map[string]any{"workflow_id": workflowID, "step": step, "error": err.Error()})
		return false
	}
	telemetry.Info("workflow.stage_completed", map[string]any{"workflow_id": workflowID, "step": step})
	return true
}

func (s *Service) markReadyForReview(ctx context.Context, workflowID string) {
	lock := s.lockFor(workflowID)
	lock.Lock()
	w, err := s.Repo.GetByID(ctx, workflowID)
	if err != nil || w.Status.Terminal() {
		lock.Unlock()
		return
	}
	w.Status = StatusReadyForReview
	w.UpdatedAt = time.Now().UTC()
	if err := s.Repo.Update(ctx, w); err != nil {
		lock.Unlock()
		telemetry.Error("workflow.stage_update_failed", map[string]any{"workflow_id": workflowID, "error": err.Error()})
		return
	}
	lock.Unlock()

	if s.Notifier != nil {
		payload := map[string]any{
			"workflow_id": w.ID,
			"job_title":   w.Job.Title,
			"company":     w.Job.Company,
		}
		if w.Application.ATSScore != nil {
			payload["ats_score"] = *w.Application.ATSScore
		}
		if _, err := s.Notifier.Notify(ctx, w.UserID, NoticeApplicationReady, payload); err != nil {
			telemetry.Error("workflow.notify_failed", map[string]any{"workflow_id": w.ID, "kind": NoticeApplicationReady, "error": err.Error()})
		}
	}
	telemetry.Info("workflow.ready_for_review", map[string]any{"workflow_id": w.ID, "user_id": w.UserID})
}

func (s *Service) failWorkflow(ctx context.Context, workflowID, step string, cause error) {
	lock := s.lockFor(workflowID)
	lock.Lock()
	defer lock.Unlock()

	w, err := s.Repo.GetByID(ctx, workflowID)
	if err != nil || w.Status.Terminal() {
		return
	}
	if step != "" {
		w.Steps[step] = Step{Status: StepFailed, Error: cause.Error()}
	}
	w.Status = StatusFailed
	w.Error = cause.Error()
	w.UpdatedAt = time.Now().UTC()
	if err := s.Repo.Update(ctx, w); err != nil {
		telemetry.Error("workflow.fail_update_failed", map[string]any{"workflow_id": workflowID, "error": err.Error()})
	}
}
