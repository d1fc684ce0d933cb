package notifications

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"jobassist-backend/internal/match"
)

// PGRepo implements Repo using Postgres. The data payload is stored as a JSONB
// document.
type PGRepo struct {
	DB *sql.DB
}

// Create stores the notification.
func (r *PGRepo) Create(ctx context.Context, n Notification) error {
	dataJSON, err := marshalData(n.Data)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO notifications (id, user_id, type, priority, title, message, data, status, read, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		n.ID, n.UserID, n.Type, string(n.Priority), n.Title, n.Message, dataJSON, n.Status, n.Read, n.CreatedAt, n.ExpiresAt,
	)
	return err
}

// GetByID returns a notification by its ID.
func (r *PGRepo) GetByID(ctx context.Context, notificationID string) (Notification, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, user_id, type, priority, title, message, data, status, read, created_at, expires_at
		FROM notifications WHERE id = $1`, notificationID)

	n, err := scanNotification(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Notification{}, ErrNotFound
	}
	return n, err
}

// ListByUser returns the user's notifications, newest first. A limit of zero
// or less means no limit.
func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit int, unreadOnly bool) ([]Notification, error) {
	query := `
		SELECT id, user_id, type, priority, title, message, data, status, read, created_at, expires_at
		FROM notifications WHERE user_id = $1`
	if unreadOnly {
		query += ` AND read = FALSE`
	}
	query += ` ORDER BY created_at DESC, id`
	args := []any{userID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// Update replaces the mutable columns of a stored notification.
func (r *PGRepo) Update(ctx context.Context, n Notification) error {
	dataJSON, err := marshalData(n.Data)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx, `
		UPDATE notifications
		SET data = $2, status = $3, read = $4
		WHERE id = $1`,
		n.ID, dataJSON, n.Status, n.Read,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNotification(row rowScanner) (Notification, error) {
	var (
		n        Notification
		priority string
		dataJSON []byte
	)
	err := row.Scan(&n.ID, &n.UserID, &n.Type, &priority, &n.Title, &n.Message, &dataJSON, &n.Status, &n.Read, &n.CreatedAt, &n.ExpiresAt)
	if err != nil {
		return Notification{}, err
	}
	n.Priority = match.Priority(priority)
	if len(dataJSON) > 0 {
		if err := json.Unmarshal(dataJSON, &n.Data); err != nil {
			return Notification{}, fmt.Errorf("decode data: %w", err)
		}
	}
	return n, nil
}

func marshalData(data map[string]any) ([]byte, error) {
	if data == nil {
		data = map[string]any{}
	}
	out, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode data: %w", err)
	}
	return out, nil
}
