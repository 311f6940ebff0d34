package domain

import "time"

// ProviderTier classifies how a citation directory is reached.
type ProviderTier int

const (
	// TierDirectAPI providers expose their own listings API.
	TierDirectAPI ProviderTier = 1
	// TierAggregator providers fan one submission out to 100+ downstream
	// directories.
	TierAggregator ProviderTier = 2
	// TierManual providers have no API; listings are created by hand or by
	// the scraping fallback.
	TierManual ProviderTier = 3
	// TierAggregatorCovered directories are passively covered by a tier-2
	// aggregator and never receive direct submissions.
	TierAggregatorCovered ProviderTier = 4
)

// AuthMethod describes how a provider authenticates API calls.
type AuthMethod string

const (
	AuthAPIKey   AuthMethod = "api_key"
	AuthOAuth2   AuthMethod = "oauth2"
	AuthAWSSigV4 AuthMethod = "aws_sigv4"
	AuthNone     AuthMethod = "none"
)

// Provider is the static descriptor for one citation directory. Seeded once
// from the catalog, toggled by an operator, otherwise immutable.
type Provider struct {
	Slug        string       `json:"slug" db:"slug"`
	Name        string       `json:"name" db:"name"`
	Tier        ProviderTier `json:"tier" db:"tier"`
	AuthMethod  AuthMethod   `json:"auth_method" db:"auth_method"`
	// Rate limits are advisory only; no limiter enforces them.
	RatePerMinute int  `json:"rate_per_minute" db:"rate_per_minute"`
	RatePerDay    int  `json:"rate_per_day" db:"rate_per_day"`
	Enabled       bool `json:"enabled" db:"enabled"`
}

// SubmissionStatus enumerates the per-(domain, provider) submission states.
type SubmissionStatus string

const (
	SubmissionPending     SubmissionStatus = "pending"
	SubmissionQueued      SubmissionStatus = "queued"
	SubmissionSubmitting  SubmissionStatus = "submitting"
	SubmissionSubmitted   SubmissionStatus = "submitted"
	SubmissionVerified    SubmissionStatus = "verified"
	SubmissionError       SubmissionStatus = "error"
	SubmissionNeedsUpdate SubmissionStatus = "needs_update"
)

// Submission is one row per (domain, provider) pair, unique on that pair.
// Re-queuing upserts; it never creates duplicates.
type Submission struct {
	ID           string           `json:"id" db:"id"`
	DomainID     string           `json:"domain_id" db:"domain_id"`
	ProviderSlug string           `json:"provider_slug" db:"provider_slug"`
	ExternalID   string           `json:"external_id" db:"external_id"`
	ExternalURL  string           `json:"external_url" db:"external_url"`
	Status       SubmissionStatus `json:"status" db:"status"`

	// SubmittedHash fingerprints the last NormalizedLocation sent to the
	// provider; a matching hash on a verified submission skips re-queueing.
	SubmittedHash string `json:"submitted_hash" db:"submitted_hash"`

	ErrorMessage string `json:"error_message" db:"error_message"`
	ErrorCount   int    `json:"error_count" db:"error_count"`

	LastSubmittedAt *time.Time `json:"last_submitted_at" db:"last_submitted_at"`
	LastVerifiedAt  *time.Time `json:"last_verified_at" db:"last_verified_at"`
	LastErrorAt     *time.Time `json:"last_error_at" db:"last_error_at"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
}

// QueueAction is the operation a queue item asks the drain cycle to perform.
type QueueAction string

const (
	ActionSubmit QueueAction = "submit"
	ActionUpdate QueueAction = "update"
	ActionVerify QueueAction = "verify"
	ActionDelete QueueAction = "delete"
)

// QueueItem is one scheduled unit of citation work. Created by the
// orchestrator, claimed and completed by the drain cycle; adapters never
// touch queue rows.
type QueueItem struct {
	ID           string      `json:"id" db:"id"`
	SubmissionID string      `json:"submission_id" db:"submission_id"`
	Action       QueueAction `json:"action" db:"action"`
	Priority     int         `json:"priority" db:"priority"`
	Attempts     int         `json:"attempts" db:"attempts"`
	MaxAttempts  int         `json:"max_attempts" db:"max_attempts"`
	ScheduledAt  time.Time   `json:"scheduled_at" db:"scheduled_at"`
	StartedAt    *time.Time  `json:"started_at" db:"started_at"`
	CompletedAt  *time.Time  `json:"completed_at" db:"completed_at"`
	BatchID      *string     `json:"batch_id" db:"batch_id"`
	LastError    string      `json:"last_error" db:"last_error"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`
}

// IsComplete reports whether the item has finished draining.
func (q *QueueItem) IsComplete() bool { return q.CompletedAt != nil }

// BatchStatus enumerates batch lifecycle states.
type BatchStatus string

const (
	BatchPending    BatchStatus = "pending"
	BatchProcessing BatchStatus = "processing"
	BatchCompleted  BatchStatus = "completed"
	BatchFailed     BatchStatus = "failed"
	BatchCancelled  BatchStatus = "cancelled"
)

// Batch groups the queue items created by one bulk operation. A batch
// completes when no incomplete items for it remain; it fails if every
// completed item failed and none succeeded.
type Batch struct {
	ID             string      `json:"id" db:"id"`
	Name           string      `json:"name" db:"name"`
	Status         BatchStatus `json:"status" db:"status"`
	TotalCount     int         `json:"total_count" db:"total_count"`
	CompletedCount int         `json:"completed_count" db:"completed_count"`
	FailedCount    int         `json:"failed_count" db:"failed_count"`
	CreatedAt      time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at" db:"updated_at"`
}

// IsTerminal returns true if the batch is in a final state.
func (b *Batch) IsTerminal() bool {
	return b.Status == BatchCompleted || b.Status == BatchFailed || b.Status == BatchCancelled
}

// CoverageSummary is the read-only projection of one domain's citations
// against the enabled tier-1/tier-2 provider catalog.
type CoverageSummary struct {
	DomainID  string             `json:"domain_id"`
	Submitted int                `json:"submitted"`
	Verified  int                `json:"verified"`
	Pending   int                `json:"pending"`
	Errored   int                `json:"errored"`
	Providers []ProviderCoverage `json:"providers"`
}

// ProviderCoverage is one row of the coverage summary.
type ProviderCoverage struct {
	Slug        string           `json:"slug"`
	Name        string           `json:"name"`
	Tier        ProviderTier     `json:"tier"`
	Status      SubmissionStatus `json:"status"`
	ExternalURL string           `json:"external_url,omitempty"`
}
