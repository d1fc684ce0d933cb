package submit

import (
	"context"
	"database/sql"

	"jobassist-backend/internal/workflow"
)

// PGRecords implements the submission audit store on Postgres.
type PGRecords struct {
	DB *sql.DB
}

// Record inserts an audit row for the submission attempt.
func (r *PGRecords) Record(ctx context.Context, sub workflow.Submission, result workflow.SubmissionResult) error {
	app := newApplication(sub, result)
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO applications (id, workflow_id, user_id, job_id, method, success, error, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		app.ID, app.WorkflowID, app.UserID, app.JobID, app.Method, app.Success, app.Error, app.SubmittedAt,
	)
	return err
}

// ListByUser returns the user's records, newest first.
func (r *PGRecords) ListByUser(ctx context.Context, userID string) ([]Application, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, workflow_id, user_id, job_id, method, success, error, submitted_at
		FROM applications WHERE user_id = $1
		ORDER BY submitted_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Application
	for rows.Next() {
		var app Application
		if err := rows.Scan(&app.ID, &app.WorkflowID, &app.UserID, &app.JobID, &app.Method, &app.Success, &app.Error, &app.SubmittedAt); err != nil {
			return nil, err
		}
		out = append(out, app)
	}
	return out, rows.Err()
}
