package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/ignite/citation-engine/internal/domain"
)

// QueueRepo implements citation.QueueRepository.
type QueueRepo struct{ db *sql.DB }

// NewQueueRepo creates a Postgres-backed queue repository.
func NewQueueRepo(db *sql.DB) *QueueRepo { return &QueueRepo{db: db} }

func (r *QueueRepo) Insert(ctx context.Context, item *domain.QueueItem) (string, error) {
	id := uuid.New().String()
	maxAttempts := item.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO citation_queue
			(id, submission_id, action, priority, attempts, max_attempts, scheduled_at, batch_id, created_at)
		VALUES ($1, $2, $3, $4, 0, $5, $6, $7, NOW())
	`, id, item.SubmissionID, item.Action, item.Priority, maxAttempts, item.ScheduledAt, item.BatchID)
	if err != nil {
		return "", fmt.Errorf("insert queue item: %w", err)
	}
	return id, nil
}

// ClaimDue atomically claims due items. The conditional UPDATE on
// started_at is the concurrency guard: an overlapping drain cycle simply
// matches zero of the already-claimed rows. A started_at older than the
// stale window belongs to a worker that crashed or was killed mid-cycle,
// so the item goes back into the pool; attempts increment inside the same
// statement, so the interrupted run still counts against the budget.
func (r *QueueRepo) ClaimDue(ctx context.Context, limit int) ([]domain.QueueItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		UPDATE citation_queue
		SET started_at = NOW(), attempts = attempts + 1
		WHERE id IN (
			SELECT q.id FROM citation_queue q
			WHERE q.completed_at IS NULL
			  AND (q.started_at IS NULL OR q.started_at < NOW() - INTERVAL '5 minutes')
			  AND q.scheduled_at <= NOW()
			  AND q.attempts < q.max_attempts
			ORDER BY q.priority DESC, q.scheduled_at ASC
			LIMIT $1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, submission_id, action, priority, attempts, max_attempts,
		          scheduled_at, started_at, completed_at, batch_id, COALESCE(last_error,''), created_at
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("claim queue items: %w", err)
	}
	defer rows.Close()

	var items []domain.QueueItem
	for rows.Next() {
		var item domain.QueueItem
		var batchID sql.NullString
		err := rows.Scan(
			&item.ID, &item.SubmissionID, &item.Action, &item.Priority,
			&item.Attempts, &item.MaxAttempts,
			&item.ScheduledAt, &item.StartedAt, &item.CompletedAt,
			&batchID, &item.LastError, &item.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan queue item: %w", err)
		}
		if batchID.Valid {
			item.BatchID = &batchID.String
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *QueueRepo) MarkCompleted(ctx context.Context, id, lastError string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE citation_queue
		SET completed_at = NOW(),
		    last_error = CASE WHEN $2 <> '' THEN $2 ELSE last_error END
		WHERE id = $1
	`, id, lastError)
	if err != nil {
		return fmt.Errorf("mark queue item completed: %w", err)
	}
	return nil
}

// Release puts a failed item back into the claimable pool by clearing
// started_at; it stays incomplete and will be re-claimed on a later cycle
// until attempts reaches max_attempts.
func (r *QueueRepo) Release(ctx context.Context, id, lastError string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE citation_queue
		SET started_at = NULL, last_error = $2
		WHERE id = $1
	`, id, lastError)
	if err != nil {
		return fmt.Errorf("release queue item: %w", err)
	}
	return nil
}

func (r *QueueRepo) HasIncompleteForBatch(ctx context.Context, batchID string) (bool, error) {
	var incomplete bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM citation_queue
			WHERE batch_id = $1 AND completed_at IS NULL
		)
	`, batchID).Scan(&incomplete)
	if err != nil {
		return false, fmt.Errorf("check batch completion: %w", err)
	}
	return incomplete, nil
}

func (r *QueueRepo) CancelPendingForBatch(ctx context.Context, batchID, reason string) (int, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE citation_queue
		SET completed_at = NOW(), last_error = $2
		WHERE batch_id = $1 AND completed_at IS NULL AND started_at IS NULL
	`, batchID, reason)
	if err != nil {
		return 0, fmt.Errorf("cancel batch items: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}
