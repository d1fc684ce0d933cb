package workflow

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// PGRepo implements Repo using Postgres. Job, steps, and application data are
// stored as JSONB documents.
type PGRepo struct {
	DB *sql.DB
}

// Create stores the workflow.
func (r *PGRepo) Create(ctx context.Context, w Workflow) error {
	jobJSON, stepsJSON, appJSON, err := marshalWorkflow(w)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO workflows (id, user_id, job, status, steps, application, error, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		w.ID, w.UserID, jobJSON, string(w.Status), stepsJSON, appJSON, w.Error, w.CreatedAt, w.UpdatedAt,
	)
	return err
}

// GetByID returns a workflow by its ID.
func (r *PGRepo) GetByID(ctx context.Context, workflowID string) (Workflow, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, user_id, job, status, steps, application, error, created_at, updated_at
		FROM workflows WHERE id = $1`, workflowID)

	var (
		w         Workflow
		status    string
		jobJSON   []byte
		stepsJSON []byte
		appJSON   []byte
	)
	err := row.Scan(&w.ID, &w.UserID, &jobJSON, &status, &stepsJSON, &appJSON, &w.Error, &w.CreatedAt, &w.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Workflow{}, ErrNotFound
	}
	if err != nil {
		return Workflow{}, err
	}
	w.Status = Status(status)
	if err := json.Unmarshal(jobJSON, &w.Job); err != nil {
		return Workflow{}, fmt.Errorf("decode job: %w", err)
	}
	if err := json.Unmarshal(stepsJSON, &w.Steps); err != nil {
		return Workflow{}, fmt.Errorf("decode steps: %w", err)
	}
	if err := json.Unmarshal(appJSON, &w.Application); err != nil {
		return Workflow{}, fmt.Errorf("decode application: %w", err)
	}
	return w, nil
}

// Update replaces the mutable columns of a stored workflow.
func (r *PGRepo) Update(ctx context.Context, w Workflow) error {
	_, stepsJSON, appJSON, err := marshalWorkflow(w)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx, `
		UPDATE workflows
		SET status = $2, steps = $3, application = $4, error = $5, updated_at = $6
		WHERE id = $1`,
		w.ID, string(w.Status), stepsJSON, appJSON, w.Error, w.UpdatedAt,
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

func marshalWorkflow(w Workflow) (jobJSON, stepsJSON, appJSON []byte, err error) {
	if jobJSON, err = json.Marshal(w.Job); err != nil {
		return nil, nil, nil, fmt.Errorf("encode job: %w", err)
	}
	if stepsJSON, err = json.Marshal(w.Steps); err != nil {
		return nil, nil, nil, fmt.Errorf("encode steps: %w", err)
	}
	if appJSON, err = json.Marshal(w.Application); err != nil {
		return nil, nil, nil, fmt.Errorf("encode application: %w", err)
	}
	return jobJSON, stepsJSON, appJSON, nil
}
