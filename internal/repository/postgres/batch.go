package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/ignite/citation-engine/internal/domain"
	"github.com/ignite/citation-engine/internal/service/citation"
)

// BatchRepo implements citation.BatchRepository.
type BatchRepo struct{ db *sql.DB }

// NewBatchRepo creates a Postgres-backed batch repository.
func NewBatchRepo(db *sql.DB) *BatchRepo { return &BatchRepo{db: db} }

const batchCols = `id, name, status, total_count, completed_count, failed_count, created_at, updated_at`

func scanBatch(row rowScanner) (*domain.Batch, error) {
	b := &domain.Batch{}
	err := row.Scan(&b.ID, &b.Name, &b.Status, &b.TotalCount, &b.CompletedCount, &b.FailedCount, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *BatchRepo) Create(ctx context.Context, b *domain.Batch) (string, error) {
	id := uuid.New().String()
	status := b.Status
	if status == "" {
		status = domain.BatchPending
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO citation_batches (id, name, status, total_count, completed_count, failed_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, 0, 0, NOW(), NOW())
	`, id, b.Name, status, b.TotalCount)
	if err != nil {
		return "", fmt.Errorf("create batch: %w", err)
	}
	return id, nil
}

func (r *BatchRepo) Get(ctx context.Context, id string) (*domain.Batch, error) {
	b, err := scanBatch(r.db.QueryRowContext(ctx, `
		SELECT `+batchCols+` FROM citation_batches WHERE id = $1
	`, id))
	if err == sql.ErrNoRows {
		return nil, citation.ErrBatchNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get batch: %w", err)
	}
	return b, nil
}

func (r *BatchRepo) ListByStatus(ctx context.Context, status domain.BatchStatus, limit int) ([]domain.Batch, error) {
	if limit <= 0 {
		limit = 50
	}

	q := `SELECT ` + batchCols + ` FROM citation_batches`
	args := []interface{}{}
	if status != "" {
		q += ` WHERE status = $1`
		args = append(args, status)
	}
	q += fmt.Sprintf(` ORDER BY created_at DESC LIMIT %d`, limit)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	defer rows.Close()

	var out []domain.Batch
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

func (r *BatchRepo) SetStatus(ctx context.Context, id string, status domain.BatchStatus) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE citation_batches SET status = $2, updated_at = NOW() WHERE id = $1
	`, id, status)
	if err != nil {
		return fmt.Errorf("set batch status: %w", err)
	}
	return nil
}

func (r *BatchRepo) AddTotal(ctx context.Context, id string, n int) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE citation_batches SET total_count = total_count + $2, updated_at = NOW() WHERE id = $1
	`, id, n)
	if err != nil {
		return fmt.Errorf("update batch total: %w", err)
	}
	return nil
}

func (r *BatchRepo) IncrementCounters(ctx context.Context, id string, completed, failed int) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE citation_batches
		SET completed_count = completed_count + $2,
		    failed_count = failed_count + $3,
		    updated_at = NOW()
		WHERE id = $1
	`, id, completed, failed)
	if err != nil {
		return fmt.Errorf("update batch counters: %w", err)
	}
	return nil
}
