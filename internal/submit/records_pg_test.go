package submit

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"jobassist-backend/internal/workflow"
)

func TestPGRecordsRecordInsertsRow(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	submittedAt := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	result := workflow.SubmissionResult{
		Success:       true,
		ApplicationID: "app-1",
		Method:        MethodAPI,
		SubmittedAt:   submittedAt,
	}

	mock.ExpectExec(`INSERT INTO applications`).
		WithArgs("app-1", "wf-1", "user-1", "job-1", MethodAPI, true, "", submittedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	records := &PGRecords{DB: db}
	if err := records.Record(context.Background(), testSubmission("platform"), result); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGRecordsListByUser(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	submittedAt := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "workflow_id", "user_id", "job_id", "method", "success", "error", "submitted_at"}).
		AddRow("app-2", "wf-2", "user-1", "job-2", MethodEmail, false, "application package incomplete", submittedAt).
		AddRow("app-1", "wf-1", "user-1", "job-1", MethodAPI, true, "", submittedAt.Add(-time.Hour))

	mock.ExpectQuery(`SELECT id, workflow_id, user_id, job_id, method, success, error, submitted_at`).
		WithArgs("user-1").
		WillReturnRows(rows)

	records := &PGRecords{DB: db}
	apps, err := records.ListByUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(apps) != 2 {
		t.Fatalf("expected 2 records, got %d", len(apps))
	}
	if apps[0].ID != "app-2" || apps[0].Success {
		t.Fatalf("unexpected first record: %+v", apps[0])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
