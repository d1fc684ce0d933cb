package notifications

import (
	"time"

	"jobassist-backend/internal/match"
)

// Notification types.
const (
	TypeJobOpportunity       = "job_opportunity"
	TypeApplicationReady     = "application_ready"
	TypeApplicationSubmitted = "application_submitted"
)

// Action statuses for notifications awaiting a user decision.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// User actions on a job opportunity notification.
const (
	ActionApply  = "apply"
	ActionSkip   = "skip"
	ActionSave   = "save"
	ActionReview = "review"
)

// Notification is one in-app message to a user. Job opportunities stay
// actionable until end of day, then expire.
type Notification struct {
	ID        string         `json:"id"`
	UserID    string         `json:"userId"`
	Type      string         `json:"type"`
	Priority  match.Priority `json:"priority"`
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	Data      map[string]any `json:"data,omitempty"`
	Status    string         `json:"status"`
	Read      bool           `json:"read"`
	CreatedAt time.Time      `json:"createdAt"`
	ExpiresAt time.Time      `json:"expiresAt"`
}

// Expired reports whether the notification can no longer be actioned.
func (n Notification) Expired(now time.Time) bool {
	return now.After(n.ExpiresAt)
}

func (n Notification) clone() Notification {
	out := n
	if n.Data != nil {
		out.Data = make(map[string]any, len(n.Data))
		for k, v := range n.Data {
			out.Data[k] = v
		}
	}
	return out
}

// endOfDay returns the last instant of t's calendar day in UTC.
func endOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, time.UTC)
}
