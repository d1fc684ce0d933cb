package notifications

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"jobassist-backend/internal/match"
	"jobassist-backend/internal/workflow"
)

type fakeStarter struct {
	started []match.JobPosting
	err     error
}

func (f *fakeStarter) Start(ctx context.Context, userID string, job match.JobPosting) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.started = append(f.started, job)
	return "wf-1", nil
}

func setupService(t *testing.T) (*Service, *fakeStarter) {
	t.Helper()
	starter := &fakeStarter{}
	svc := NewService(NewMemoryRepo(), starter)
	svc.Now = func() time.Time {
		return time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)
	}
	return svc, starter
}

func opportunityJob() match.JobPosting {
	return match.JobPosting{
		ID:             "job-1",
		Title:          "Backend Engineer",
		Company:        "Globex",
		RequiredSkills: []string{"go"},
		Source:         "platform",
	}
}

func TestSendJobOpportunity(t *testing.T) {
	svc, _ := setupService(t)

	n, err := svc.SendJobOpportunity(context.Background(), "user-1", opportunityJob(), match.MatchResult{TotalScore: 0.85})
	if err != nil {
		t.Fatalf("SendJobOpportunity: %v", err)
	}
	if n.Type != TypeJobOpportunity {
		t.Fatalf("expected type %q, got %q", TypeJobOpportunity, n.Type)
	}
	if n.Priority != match.PriorityHigh {
		t.Fatalf("expected high priority for 0.85, got %q", n.Priority)
	}
	if !strings.Contains(n.Message, "85% match") {
		t.Fatalf("expected percentage in message, got %q", n.Message)
	}
	if n.Status != StatusPending || n.Read {
		t.Fatalf("expected unread pending notification, got status=%q read=%v", n.Status, n.Read)
	}
	wantExpiry := time.Date(2026, time.March, 1, 23, 59, 59, 0, time.UTC)
	if !n.ExpiresAt.Equal(wantExpiry) {
		t.Fatalf("expected expiry %s, got %s", wantExpiry, n.ExpiresAt)
	}

	stored, err := svc.Repo.GetByID(context.Background(), n.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.Title != n.Title {
		t.Fatalf("expected notification persisted")
	}
}

func TestNotifyWorkflowKinds(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	readyID, err := svc.Notify(ctx, "user-1", workflow.NoticeApplicationReady, map[string]any{"workflow_id": "wf-1"})
	if err != nil {
		t.Fatalf("Notify ready: %v", err)
	}
	ready, err := svc.Repo.GetByID(ctx, readyID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if ready.Type != TypeApplicationReady || ready.Priority != match.PriorityHigh {
		t.Fatalf("unexpected ready notification: type=%q priority=%q", ready.Type, ready.Priority)
	}

	submittedID, err := svc.Notify(ctx, "user-1", workflow.NoticeApplicationSubmitted, nil)
	if err != nil {
		t.Fatalf("Notify submitted: %v", err)
	}
	submitted, err := svc.Repo.GetByID(ctx, submittedID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if submitted.Type != TypeApplicationSubmitted || submitted.Priority != match.PriorityMedium {
		t.Fatalf("unexpected submitted notification: type=%q priority=%q", submitted.Type, submitted.Priority)
	}
}

func TestListLimitAndUnreadOnly(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	ids := make([]string, 0, 3)
	base := time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		offset := time.Duration(i) * time.Minute
		svc.Now = func() time.Time { return base.Add(offset) }
		n, err := svc.SendJobOpportunity(ctx, "user-1", opportunityJob(), match.MatchResult{TotalScore: 0.7})
		if err != nil {
			t.Fatalf("SendJobOpportunity: %v", err)
		}
		ids = append(ids, n.ID)
	}

	if err := svc.MarkRead(ctx, ids[2], "user-1"); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}

	all, err := svc.List(ctx, "user-1", 2, false)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected limit 2, got %d", len(all))
	}
	if all[0].ID != ids[2] {
		t.Fatalf("expected newest first")
	}

	unread, err := svc.List(ctx, "user-1", 0, true)
	if err != nil {
		t.Fatalf("List unread: %v", err)
	}
	if len(unread) != 2 {
		t.Fatalf("expected 2 unread, got %d", len(unread))
	}
	for _, n := range unread {
		if n.Read {
			t.Fatalf("expected only unread notifications")
		}
	}
}

func TestMarkReadWrongUserIsNotFound(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	n, err := svc.SendJobOpportunity(ctx, "user-1", opportunityJob(), match.MatchResult{TotalScore: 0.7})
	if err != nil {
		t.Fatalf("SendJobOpportunity: %v", err)
	}
	if err := svc.MarkRead(ctx, n.ID, "user-2"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestHandleActionApplyStartsWorkflow(t *testing.T) {
	svc, starter := setupService(t)
	ctx := context.Background()

	n, err := svc.SendJobOpportunity(ctx, "user-1", opportunityJob(), match.MatchResult{TotalScore: 0.9})
	if err != nil {
		t.Fatalf("SendJobOpportunity: %v", err)
	}

	result, err := svc.HandleAction(ctx, n.ID, "user-1", ActionApply)
	if err != nil {
		t.Fatalf("HandleAction: %v", err)
	}
	if result.WorkflowID != "wf-1" || result.Status != StatusApproved {
		t.Fatalf("unexpected result: %+v", result)
	}
	if len(starter.started) != 1 || starter.started[0].ID != "job-1" {
		t.Fatalf("expected workflow started for job-1, got %+v", starter.started)
	}

	stored, err := svc.Repo.GetByID(ctx, n.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.Status != StatusApproved || !stored.Read {
		t.Fatalf("expected approved and read, got status=%q read=%v", stored.Status, stored.Read)
	}
	if stored.Data["workflow_id"] != "wf-1" {
		t.Fatalf("expected workflow id recorded in data")
	}
}

func TestHandleActionSkipRejects(t *testing.T) {
	svc, starter := setupService(t)
	ctx := context.Background()

	n, err := svc.SendJobOpportunity(ctx, "user-1", opportunityJob(), match.MatchResult{TotalScore: 0.7})
	if err != nil {
		t.Fatalf("SendJobOpportunity: %v", err)
	}

	result, err := svc.HandleAction(ctx, n.ID, "user-1", ActionSkip)
	if err != nil {
		t.Fatalf("HandleAction: %v", err)
	}
	if result.Status != StatusRejected {
		t.Fatalf("expected rejected, got %q", result.Status)
	}
	if len(starter.started) != 0 {
		t.Fatalf("expected no workflow started")
	}
}

func TestHandleActionSaveStaysPending(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	n, err := svc.SendJobOpportunity(ctx, "user-1", opportunityJob(), match.MatchResult{TotalScore: 0.7})
	if err != nil {
		t.Fatalf("SendJobOpportunity: %v", err)
	}

	result, err := svc.HandleAction(ctx, n.ID, "user-1", ActionSave)
	if err != nil {
		t.Fatalf("HandleAction: %v", err)
	}
	if result.Status != StatusPending {
		t.Fatalf("expected still pending, got %q", result.Status)
	}
	stored, _ := svc.Repo.GetByID(ctx, n.ID)
	if !stored.Read {
		t.Fatalf("expected notification marked read")
	}
}

func TestHandleActionExpired(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	n, err := svc.SendJobOpportunity(ctx, "user-1", opportunityJob(), match.MatchResult{TotalScore: 0.7})
	if err != nil {
		t.Fatalf("SendJobOpportunity: %v", err)
	}

	svc.Now = func() time.Time {
		return time.Date(2026, time.March, 2, 0, 0, 1, 0, time.UTC)
	}
	if _, err := svc.HandleAction(ctx, n.ID, "user-1", ActionApply); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
}

func TestHandleActionAlreadyResolved(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	n, err := svc.SendJobOpportunity(ctx, "user-1", opportunityJob(), match.MatchResult{TotalScore: 0.7})
	if err != nil {
		t.Fatalf("SendJobOpportunity: %v", err)
	}
	if _, err := svc.HandleAction(ctx, n.ID, "user-1", ActionSkip); err != nil {
		t.Fatalf("HandleAction skip: %v", err)
	}
	if _, err := svc.HandleAction(ctx, n.ID, "user-1", ActionApply); !errors.Is(err, ErrInvalidAction) {
		t.Fatalf("expected ErrInvalidAction, got %v", err)
	}
}

func TestHandleActionLifecycleNoticeNotActionable(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	id, err := svc.Notify(ctx, "user-1", workflow.NoticeApplicationReady, nil)
	if err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if _, err := svc.HandleAction(ctx, id, "user-1", ActionApply); !errors.Is(err, ErrInvalidAction) {
		t.Fatalf("expected ErrInvalidAction, got %v", err)
	}
}

func TestHandleActionUnknownAction(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	n, err := svc.SendJobOpportunity(ctx, "user-1", opportunityJob(), match.MatchResult{TotalScore: 0.7})
	if err != nil {
		t.Fatalf("SendJobOpportunity: %v", err)
	}
	if _, err := svc.HandleAction(ctx, n.ID, "user-1", "shred"); !errors.Is(err, ErrInvalidAction) {
		t.Fatalf("expected ErrInvalidAction, got %v", err)
	}
}
