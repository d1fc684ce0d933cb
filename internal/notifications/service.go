package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"jobassist-backend/internal/match"
	"jobassist-backend/internal/shared/telemetry"
	"jobassist-backend/internal/workflow"
)

var (
	ErrExpired       = errors.New("notification expired")
	ErrInvalidAction = errors.New("invalid notification action")
)

// WorkflowStarter starts an application workflow when the user acts on a job
// opportunity.
type WorkflowStarter interface {
	Start(ctx context.Context, userID string, job match.JobPosting) (string, error)
}

// Service creates, delivers, and resolves notifications. It also satisfies the
// engine's Notifier so workflow lifecycle events surface in the same feed.
type Service struct {
	Repo      Repo
	Workflows WorkflowStarter

	// Channels gates delivery per channel. Only in_app is on by default;
	// email and push stay dark until those integrations exist.
	Channels map[string]bool

	Now func() time.Time
}

// NewService constructs a Service with the default channel set.
func NewService(repo Repo, workflows WorkflowStarter) *Service {
	return &Service{
		Repo:      repo,
		Workflows: workflows,
		Channels:  map[string]bool{"in_app": true},
	}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// SendJobOpportunity creates an actionable notification for a scored posting.
// Priority follows the match score tiers.
func (s *Service) SendJobOpportunity(ctx context.Context, userID string, job match.JobPosting, result match.MatchResult) (Notification, error) {
	pct := int(math.Round(result.TotalScore * 100))
	now := s.now()
	n := Notification{
		ID:       uuid.NewString(),
		UserID:   userID,
		Type:     TypeJobOpportunity,
		Priority: match.PriorityForScore(result.TotalScore),
		Title:    fmt.Sprintf("New job match: %s at %s", job.Title, job.Company),
		Message:  fmt.Sprintf("%d%% match with your profile. Review and apply before end of day.", pct),
		Data: map[string]any{
			"job":         job,
			"match_score": result.TotalScore,
		},
		Status:    StatusPending,
		CreatedAt: now,
		ExpiresAt: endOfDay(now),
	}
	if err := s.create(ctx, n); err != nil {
		return Notification{}, err
	}
	return n, nil
}

// Notify implements the workflow engine's Notifier. Lifecycle notices are
// informational and never expire into actions.
func (s *Service) Notify(ctx context.Context, userID, kind string, payload map[string]any) (string, error) {
	now := s.now()
	n := Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Data:      payload,
		Status:    StatusPending,
		CreatedAt: now,
		ExpiresAt: endOfDay(now),
	}

	switch kind {
	case workflow.NoticeApplicationReady:
		n.Type = TypeApplicationReady
		n.Priority = match.PriorityHigh
		n.Title = "Application ready for review"
		n.Message = "Your resume and cover letter are generated. Review and approve to submit."
	case workflow.NoticeApplicationSubmitted:
		n.Type = TypeApplicationSubmitted
		n.Priority = match.PriorityMedium
		n.Title = "Application submitted"
		n.Message = "Your application was submitted successfully."
	default:
		n.Type = kind
		n.Priority = match.PriorityLow
		n.Title = kind
	}

	if err := s.create(ctx, n); err != nil {
		return "", err
	}
	return n.ID, nil
}

func (s *Service) create(ctx context.Context, n Notification) error {
	if err := s.Repo.Create(ctx, n); err != nil {
		return err
	}
	for channel, enabled := range s.Channels {
		if !enabled {
			continue
		}
		telemetry.Info("notification.delivered", map[string]any{
			"notification_id": n.ID,
			"user_id":         n.UserID,
			"type":            n.Type,
			"priority":        string(n.Priority),
			"channel":         channel,
		})
	}
	return nil
}

// List returns the user's notifications, newest first.
func (s *Service) List(ctx context.Context, userID string, limit int, unreadOnly bool) ([]Notification, error) {
	if userID == "" {
		return nil, errors.New("userID is required")
	}
	return s.Repo.ListByUser(ctx, userID, limit, unreadOnly)
}

// MarkRead marks a notification as read. A notification owned by another user
// is reported as not found.
func (s *Service) MarkRead(ctx context.Context, notificationID, userID string) error {
	n, err := s.load(ctx, notificationID, userID)
	if err != nil {
		return err
	}
	if n.Read {
		return nil
	}
	n.Read = true
	return s.Repo.Update(ctx, n)
}

// ActionResult is the outcome of resolving a notification.
type ActionResult struct {
	NotificationID string `json:"notificationId"`
	Action         string `json:"action"`
	Status         string `json:"status"`
	WorkflowID     string `json:"workflowId,omitempty"`
}

// HandleAction resolves a job opportunity notification. Apply starts an
// application workflow for the attached posting; skip rejects it; save and
// review keep it pending for later.
func (s *Service) HandleAction(ctx context.Context, notificationID, userID, action string) (ActionResult, error) {
	n, err := s.load(ctx, notificationID, userID)
	if err != nil {
		return ActionResult{}, err
	}
	if n.Type != TypeJobOpportunity {
		return ActionResult{}, fmt.Errorf("%w: %q notifications are not actionable", ErrInvalidAction, n.Type)
	}
	if n.Expired(s.now()) {
		return ActionResult{}, ErrExpired
	}
	if n.Status != StatusPending {
		return ActionResult{}, fmt.Errorf("%w: notification already %s", ErrInvalidAction, n.Status)
	}

	result := ActionResult{NotificationID: n.ID, Action: action}
	switch action {
	case ActionApply:
		job, err := jobFromData(n.Data)
		if err != nil {
			return ActionResult{}, err
		}
		workflowID, err := s.Workflows.Start(ctx, userID, job)
		if err != nil {
			return ActionResult{}, err
		}
		n.Status = StatusApproved
		n.Data["workflow_id"] = workflowID
		result.WorkflowID = workflowID
	case ActionSkip:
		n.Status = StatusRejected
	case ActionSave, ActionReview:
		// Stays pending; the user just acknowledged it.
	default:
		return ActionResult{}, fmt.Errorf("%w: %q", ErrInvalidAction, action)
	}

	n.Read = true
	if err := s.Repo.Update(ctx, n); err != nil {
		return ActionResult{}, err
	}
	result.Status = n.Status

	telemetry.Info("notification.actioned", map[string]any{
		"notification_id": n.ID,
		"user_id":         userID,
		"action":          action,
		"status":          n.Status,
		"workflow_id":     result.WorkflowID,
	})
	return result, nil
}

func (s *Service) load(ctx context.Context, notificationID, userID string) (Notification, error) {
	n, err := s.Repo.GetByID(ctx, notificationID)
	if err != nil {
		return Notification{}, err
	}
	if n.UserID != userID {
		// Ownership mismatch is indistinguishable from absence.
		return Notification{}, ErrNotFound
	}
	return n, nil
}

// jobFromData recovers the attached posting. The data map may hold either the
// typed posting (memory repo) or its decoded JSON form (Postgres), so it goes
// through a JSON round trip.
func jobFromData(data map[string]any) (match.JobPosting, error) {
	raw, ok := data["job"]
	if !ok {
		return match.JobPosting{}, errors.New("notification has no job attached")
	}
	encoded, err := json.Marshal(raw)
	if err != nil {
		return match.JobPosting{}, fmt.Errorf("encode job: %w", err)
	}
	var job match.JobPosting
	if err := json.Unmarshal(encoded, &job); err != nil {
		return match.JobPosting{}, fmt.Errorf("decode job: %w", err)
	}
	return job, nil
}
