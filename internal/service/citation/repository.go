package citation

import (
	"context"

	"github.com/ignite/citation-engine/internal/domain"
)

// SubmissionRepository is the data access contract for (domain, provider)
// submission records. Implementations must be safe for concurrent use.
type SubmissionRepository interface {
	// Get returns the submission for a (domain, provider) pair.
	// Returns ErrSubmissionNotFound if none exists.
	Get(ctx context.Context, domainID, providerSlug string) (*domain.Submission, error)

	// GetByID returns a submission by primary key.
	GetByID(ctx context.Context, id string) (*domain.Submission, error)

	// ListByDomain returns every submission for a domain.
	ListByDomain(ctx context.Context, domainID string) ([]domain.Submission, error)

	// Upsert inserts or updates the (domain, provider) row, setting status
	// and submitted hash. The unique constraint on the pair guarantees
	// re-queuing never creates duplicates.
	Upsert(ctx context.Context, domainID, providerSlug string, status domain.SubmissionStatus, hash string) (*domain.Submission, error)

	// SetStatus performs a partial status-only update.
	SetStatus(ctx context.Context, id string, status domain.SubmissionStatus) error

	// RecordSuccess applies a successful adapter result: sets status,
	// persists external id/url when non-empty, stores the submitted hash
	// when non-empty, clears error fields, and stamps last_submitted_at
	// (and last_verified_at when status is verified).
	RecordSuccess(ctx context.Context, id string, status domain.SubmissionStatus, externalID, externalURL, hash string) error

	// RecordError moves the submission to error status, sets the message,
	// increments error_count, and stamps last_error_at.
	RecordError(ctx context.Context, id, message string) error
}

// QueueRepository is the data access contract for citation queue items.
type QueueRepository interface {
	// Insert adds a new queue item and returns its ID.
	Insert(ctx context.Context, item *domain.QueueItem) (string, error)

	// ClaimDue atomically claims up to limit due items: not completed,
	// scheduled_at <= now, attempts < max_attempts, started_at IS NULL,
	// ordered by priority descending then scheduled_at ascending. The
	// claim sets started_at and increments attempts in the same statement,
	// so a crash mid-call still counts as an attempt on restart and an
	// overlapping drain cycle loses the row instead of double-claiming it.
	ClaimDue(ctx context.Context, limit int) ([]domain.QueueItem, error)

	// MarkCompleted stamps completed_at, finishing the item.
	MarkCompleted(ctx context.Context, id, lastError string) error

	// Release resets started_at to null and records the error so the item
	// becomes claimable again on the next drain cycle.
	Release(ctx context.Context, id, lastError string) error

	// HasIncompleteForBatch reports whether any item for the batch has not
	// completed yet.
	HasIncompleteForBatch(ctx context.Context, batchID string) (bool, error)

	// CancelPendingForBatch completes every unclaimed item of a batch with
	// the given reason, returning how many were cancelled.
	CancelPendingForBatch(ctx context.Context, batchID, reason string) (int, error)
}

// BatchRepository is the data access contract for citation batches.
type BatchRepository interface {
	// Create inserts a batch and returns its ID.
	Create(ctx context.Context, b *domain.Batch) (string, error)

	// Get returns a batch by ID. Returns ErrBatchNotFound if missing.
	Get(ctx context.Context, id string) (*domain.Batch, error)

	// ListByStatus returns batches in the given status, newest first.
	// An empty status returns all batches.
	ListByStatus(ctx context.Context, status domain.BatchStatus, limit int) ([]domain.Batch, error)

	// SetStatus transitions the batch status.
	SetStatus(ctx context.Context, id string, status domain.BatchStatus) error

	// AddTotal bumps the total item counter after enqueueing.
	AddTotal(ctx context.Context, id string, n int) error

	// IncrementCounters adds to the completed/failed counters.
	IncrementCounters(ctx context.Context, id string, completed, failed int) error
}

// BrandSource supplies the normalized-listing-convertible brand record for
// a domain. Returns ErrBrandNotFound when the domain has no brand data.
type BrandSource interface {
	GetBrandRecord(ctx context.Context, domainID string) (*domain.BrandRecord, error)
}
