package notifications

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("notification not found")

// Repo persists notifications.
type Repo interface {
	Create(ctx context.Context, n Notification) error
	GetByID(ctx context.Context, notificationID string) (Notification, error)
	ListByUser(ctx context.Context, userID string, limit int, unreadOnly bool) ([]Notification, error)
	Update(ctx context.Context, n Notification) error
}
