package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/ignite/citation-engine/internal/domain"
)

var queueColumns = []string{
	"id", "submission_id", "action", "priority", "attempts", "max_attempts",
	"scheduled_at", "started_at", "completed_at", "batch_id", "last_error", "created_at",
}

func TestQueueRepoClaimDue(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewQueueRepo(db)

	now := time.Now()
	rows := sqlmock.NewRows(queueColumns).
		AddRow("q-1", "sub-1", "submit", 10, 1, 3, now, now, nil, "batch-1", "", now).
		AddRow("q-2", "sub-2", "verify", 0, 2, 3, now, now, nil, nil, "prior timeout", now)

	mock.ExpectQuery("UPDATE citation_queue SET started_at = NOW\\(\\), attempts = attempts \\+ 1").
		WithArgs(25).
		WillReturnRows(rows)

	items, err := repo.ClaimDue(context.Background(), 25)
	if err != nil {
		t.Fatalf("ClaimDue error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("claimed = %d, want 2", len(items))
	}

	first := items[0]
	if first.ID != "q-1" || first.Action != domain.ActionSubmit || first.Attempts != 1 {
		t.Errorf("first item = %+v", first)
	}
	if first.BatchID == nil || *first.BatchID != "batch-1" {
		t.Errorf("first BatchID = %v, want batch-1", first.BatchID)
	}
	if items[1].BatchID != nil {
		t.Errorf("null batch_id should scan to nil, got %v", *items[1].BatchID)
	}
	if items[1].LastError != "prior timeout" {
		t.Errorf("LastError = %q", items[1].LastError)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestQueueRepoClaimDueRecoversStaleClaims(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewQueueRepo(db)

	// Rows started by a crashed worker re-enter the pool after the stale
	// window; the claim predicate must carry the OR clause.
	mock.ExpectQuery(`q\.started_at IS NULL OR q\.started_at < NOW\(\) - INTERVAL '5 minutes'`).
		WithArgs(10).
		WillReturnRows(sqlmock.NewRows(queueColumns))

	items, err := repo.ClaimDue(context.Background(), 10)
	if err != nil {
		t.Fatalf("ClaimDue error: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("claimed = %d, want 0", len(items))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestQueueRepoInsert(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewQueueRepo(db)

	batchID := "batch-1"
	mock.ExpectExec("INSERT INTO citation_queue").
		WithArgs(sqlmock.AnyArg(), "sub-1", domain.ActionSubmit, 5, 3, sqlmock.AnyArg(), &batchID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	id, err := repo.Insert(context.Background(), &domain.QueueItem{
		SubmissionID: "sub-1",
		Action:       domain.ActionSubmit,
		Priority:     5,
		MaxAttempts:  3,
		ScheduledAt:  time.Now(),
		BatchID:      &batchID,
	})
	if err != nil {
		t.Fatalf("Insert error: %v", err)
	}
	if id == "" {
		t.Error("Insert should return the generated id")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestQueueRepoRelease(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewQueueRepo(db)

	mock.ExpectExec("UPDATE citation_queue SET started_at = NULL").
		WithArgs("q-1", "upstream 503").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Release(context.Background(), "q-1", "upstream 503"); err != nil {
		t.Fatalf("Release error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestQueueRepoHasIncompleteForBatch(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewQueueRepo(db)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("batch-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	incomplete, err := repo.HasIncompleteForBatch(context.Background(), "batch-1")
	if err != nil {
		t.Fatalf("HasIncompleteForBatch error: %v", err)
	}
	if incomplete {
		t.Error("want false")
	}
}

func TestQueueRepoCancelPendingForBatch(t *testing.T) {
	db, mock, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewQueueRepo(db)

	mock.ExpectExec("UPDATE citation_queue SET completed_at = NOW\\(\\)").
		WithArgs("batch-1", "batch cancelled").
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.CancelPendingForBatch(context.Background(), "batch-1", "batch cancelled")
	if err != nil {
		t.Fatalf("CancelPendingForBatch error: %v", err)
	}
	if n != 3 {
		t.Errorf("cancelled = %d, want 3", n)
	}
}
