// Package postgres implements the citation service repositories against
// PostgreSQL using database/sql and lib/pq. All writes the orchestrator
// depends on for correctness (queue claims, upserts) are single atomic
// statements; the package assumes the citation_* tables from migrations/.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/ignite/citation-engine/internal/domain"
	"github.com/ignite/citation-engine/internal/service/citation"
)

// SubmissionRepo implements citation.SubmissionRepository.
type SubmissionRepo struct{ db *sql.DB }

// NewSubmissionRepo creates a Postgres-backed submission repository.
func NewSubmissionRepo(db *sql.DB) *SubmissionRepo { return &SubmissionRepo{db: db} }

const submissionCols = `
	id, domain_id, provider_slug,
	COALESCE(external_id,''), COALESCE(external_url,''),
	status, COALESCE(submitted_hash,''),
	COALESCE(error_message,''), error_count,
	last_submitted_at, last_verified_at, last_error_at,
	created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSubmission(row rowScanner) (*domain.Submission, error) {
	s := &domain.Submission{}
	err := row.Scan(
		&s.ID, &s.DomainID, &s.ProviderSlug,
		&s.ExternalID, &s.ExternalURL,
		&s.Status, &s.SubmittedHash,
		&s.ErrorMessage, &s.ErrorCount,
		&s.LastSubmittedAt, &s.LastVerifiedAt, &s.LastErrorAt,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *SubmissionRepo) Get(ctx context.Context, domainID, providerSlug string) (*domain.Submission, error) {
	s, err := scanSubmission(r.db.QueryRowContext(ctx, `
		SELECT `+submissionCols+`
		FROM citation_submissions
		WHERE domain_id = $1 AND provider_slug = $2
	`, domainID, providerSlug))
	if err == sql.ErrNoRows {
		return nil, citation.ErrSubmissionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get submission: %w", err)
	}
	return s, nil
}

func (r *SubmissionRepo) GetByID(ctx context.Context, id string) (*domain.Submission, error) {
	s, err := scanSubmission(r.db.QueryRowContext(ctx, `
		SELECT `+submissionCols+`
		FROM citation_submissions
		WHERE id = $1
	`, id))
	if err == sql.ErrNoRows {
		return nil, citation.ErrSubmissionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get submission by id: %w", err)
	}
	return s, nil
}

func (r *SubmissionRepo) ListByDomain(ctx context.Context, domainID string) ([]domain.Submission, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+submissionCols+`
		FROM citation_submissions
		WHERE domain_id = $1
		ORDER BY provider_slug
	`, domainID)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	var out []domain.Submission
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

// Upsert relies on the unique (domain_id, provider_slug) constraint so a
// concurrent re-queue of the same pair updates the existing row instead of
// creating a duplicate.
func (r *SubmissionRepo) Upsert(ctx context.Context, domainID, providerSlug string, status domain.SubmissionStatus, hash string) (*domain.Submission, error) {
	s, err := scanSubmission(r.db.QueryRowContext(ctx, `
		INSERT INTO citation_submissions (id, domain_id, provider_slug, status, submitted_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		ON CONFLICT (domain_id, provider_slug) DO UPDATE SET
			status = EXCLUDED.status,
			submitted_hash = EXCLUDED.submitted_hash,
			updated_at = NOW()
		RETURNING `+submissionCols,
		uuid.New().String(), domainID, providerSlug, status, hash))
	if err != nil {
		return nil, fmt.Errorf("upsert submission: %w", err)
	}
	return s, nil
}

func (r *SubmissionRepo) SetStatus(ctx context.Context, id string, status domain.SubmissionStatus) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE citation_submissions
		SET status = $2, updated_at = NOW()
		WHERE id = $1
	`, id, status)
	if err != nil {
		return fmt.Errorf("set submission status: %w", err)
	}
	return nil
}

func (r *SubmissionRepo) RecordSuccess(ctx context.Context, id string, status domain.SubmissionStatus, externalID, externalURL, hash string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE citation_submissions
		SET status = $2,
		    external_id = CASE WHEN $3 <> '' THEN $3 ELSE external_id END,
		    external_url = CASE WHEN $4 <> '' THEN $4 ELSE external_url END,
		    submitted_hash = CASE WHEN $5 <> '' THEN $5 ELSE submitted_hash END,
		    error_message = NULL,
		    error_count = 0,
		    last_error_at = NULL,
		    last_submitted_at = NOW(),
		    last_verified_at = CASE WHEN $2 = 'verified' THEN NOW() ELSE last_verified_at END,
		    updated_at = NOW()
		WHERE id = $1
	`, id, status, externalID, externalURL, hash)
	if err != nil {
		return fmt.Errorf("record submission success: %w", err)
	}
	return nil
}

func (r *SubmissionRepo) RecordError(ctx context.Context, id, message string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE citation_submissions
		SET status = 'error',
		    error_message = $2,
		    error_count = error_count + 1,
		    last_error_at = NOW(),
		    updated_at = NOW()
		WHERE id = $1
	`, id, message)
	if err != nil {
		return fmt.Errorf("record submission error: %w", err)
	}
	return nil
}
