package citation

import (
	"context"
	"fmt"
	"time"

	"github.com/ignite/citation-engine/internal/domain"
	"github.com/ignite/citation-engine/internal/provider"
)

// DefaultMaxAttempts bounds how many drain cycles may pick up one queue
// item before it is terminally failed.
const DefaultMaxAttempts = 3

// Service is the citation orchestrator. It is the sole writer of
// submission, queue, and batch state; adapters are dispatched through the
// registry and only ever return results.
type Service struct {
	registry    *provider.Registry
	subs        SubmissionRepository
	queue       QueueRepository
	batches     BatchRepository
	brands      BrandSource
	maxAttempts int
}

// NewService creates the orchestrator.
func NewService(reg *provider.Registry, subs SubmissionRepository, queue QueueRepository, batches BatchRepository, brands BrandSource) *Service {
	return &Service{
		registry:    reg,
		subs:        subs,
		queue:       queue,
		batches:     batches,
		brands:      brands,
		maxAttempts: DefaultMaxAttempts,
	}
}

// SetMaxAttempts overrides the retry bound for newly enqueued items.
func (s *Service) SetMaxAttempts(n int) {
	if n > 0 {
		s.maxAttempts = n
	}
}

// Registry exposes the provider registry for read-only diagnostics.
func (s *Service) Registry() *provider.Registry { return s.registry }

// QueueOptions controls a QueueDomain call.
type QueueOptions struct {
	// Slugs limits which providers to queue against. Empty means every
	// enabled, configured tier-1/tier-2 provider.
	Slugs []string
	// Priority orders draining; higher drains first.
	Priority int
	// BatchName labels the batch created for this call.
	BatchName string
}

// QueueResult reports the per-provider outcome of a QueueDomain call.
type QueueResult struct {
	Slug   string             `json:"slug"`
	Queued bool               `json:"queued"`
	Action domain.QueueAction `json:"action,omitempty"`
	Reason string             `json:"reason,omitempty"`
}

// QueueReport is the full outcome of a QueueDomain call.
type QueueReport struct {
	BatchID string        `json:"batch_id"`
	Hash    string        `json:"hash"`
	Queued  int           `json:"queued"`
	Skipped int           `json:"skipped"`
	Results []QueueResult `json:"results"`
}

// QueueDomain normalizes the domain's brand data, validates it once, and
// enqueues one queue item per eligible provider. The idempotence rule: a
// provider is queued only when no submission exists yet, the stored hash
// differs from the fresh one, or the submission sits in error or
// needs_update status. Error means the last attempt failed; needs_update
// means verify found the listing gone at the provider, so a hash match
// says nothing about what is actually live there. Any other status with a
// matching hash is skipped.
func (s *Service) QueueDomain(ctx context.Context, domainID string, opts QueueOptions) (*QueueReport, error) {
	rec, err := s.brands.GetBrandRecord(ctx, domainID)
	if err != nil {
		return nil, err
	}
	loc := provider.Normalize(rec)
	if err := provider.ValidateLocation(loc); err != nil {
		return nil, err
	}
	hash := provider.LocationHash(loc)

	slugs := opts.Slugs
	if len(slugs) == 0 {
		for _, p := range s.registry.Configured() {
			if p.Tier <= domain.TierAggregator {
				slugs = append(slugs, p.Slug)
			}
		}
	}

	name := opts.BatchName
	if name == "" {
		name = fmt.Sprintf("citations %s %s", domainID, time.Now().UTC().Format("2006-01-02 15:04"))
	}
	batchID, err := s.batches.Create(ctx, &domain.Batch{Name: name, Status: domain.BatchPending})
	if err != nil {
		return nil, fmt.Errorf("create batch: %w", err)
	}

	report := &QueueReport{BatchID: batchID, Hash: hash}
	for _, slug := range slugs {
		res := s.queueProvider(ctx, domainID, slug, hash, opts.Priority, batchID)
		if res.Queued {
			report.Queued++
		} else {
			report.Skipped++
		}
		report.Results = append(report.Results, res)
	}

	if report.Queued > 0 {
		if err := s.batches.AddTotal(ctx, batchID, report.Queued); err != nil {
			return nil, fmt.Errorf("update batch total: %w", err)
		}
	} else {
		// Nothing to drain; close the empty batch immediately.
		if err := s.batches.SetStatus(ctx, batchID, domain.BatchCompleted); err != nil {
			return nil, fmt.Errorf("close empty batch: %w", err)
		}
	}
	return report, nil
}

func (s *Service) queueProvider(ctx context.Context, domainID, slug, hash string, priority int, batchID string) QueueResult {
	res := QueueResult{Slug: slug}

	p, ok := s.registry.Provider(slug)
	if !ok {
		res.Reason = ErrUnknownProvider.Error()
		return res
	}
	if !p.Enabled {
		res.Reason = ErrProviderDisabled.Error()
		return res
	}
	if _, ok := s.registry.Adapter(slug); !ok || p.Tier > domain.TierAggregator {
		res.Reason = ErrNoAdapter.Error()
		return res
	}

	existing, err := s.subs.Get(ctx, domainID, slug)
	if err != nil && err != ErrSubmissionNotFound {
		res.Reason = err.Error()
		return res
	}

	if existing != nil && existing.SubmittedHash == hash &&
		existing.Status != domain.SubmissionError &&
		existing.Status != domain.SubmissionNeedsUpdate {
		res.Reason = "unchanged"
		return res
	}

	sub, err := s.subs.Upsert(ctx, domainID, slug, domain.SubmissionQueued, hash)
	if err != nil {
		res.Reason = err.Error()
		return res
	}

	action := domain.ActionSubmit
	if existing != nil && existing.ExternalID != "" {
		action = domain.ActionUpdate
	}

	_, err = s.queue.Insert(ctx, &domain.QueueItem{
		SubmissionID: sub.ID,
		Action:       action,
		Priority:     priority,
		MaxAttempts:  s.maxAttempts,
		ScheduledAt:  time.Now().UTC(),
		BatchID:      &batchID,
	})
	if err != nil {
		res.Reason = err.Error()
		return res
	}

	res.Queued = true
	res.Action = action
	return res
}

// EnqueueAction queues a verify or delete against an existing submission.
// Submit/update go through QueueDomain so the hash dedup applies.
func (s *Service) EnqueueAction(ctx context.Context, domainID, slug string, action domain.QueueAction, priority int) (*domain.QueueItem, error) {
	if action != domain.ActionVerify && action != domain.ActionDelete {
		return nil, fmt.Errorf("action %q must be queued via QueueDomain", action)
	}
	if _, ok := s.registry.Adapter(slug); !ok {
		return nil, ErrNoAdapter
	}

	sub, err := s.subs.Get(ctx, domainID, slug)
	if err != nil {
		return nil, err
	}

	item := &domain.QueueItem{
		SubmissionID: sub.ID,
		Action:       action,
		Priority:     priority,
		MaxAttempts:  s.maxAttempts,
		ScheduledAt:  time.Now().UTC(),
	}
	id, err := s.queue.Insert(ctx, item)
	if err != nil {
		return nil, err
	}
	item.ID = id
	return item, nil
}

// Coverage aggregates a domain's submissions against the enabled
// tier-1/tier-2 catalog. Read-only projection, no side effects.
func (s *Service) Coverage(ctx context.Context, domainID string) (*domain.CoverageSummary, error) {
	subs, err := s.subs.ListByDomain(ctx, domainID)
	if err != nil {
		return nil, err
	}
	bySlug := make(map[string]*domain.Submission, len(subs))
	for i := range subs {
		bySlug[subs[i].ProviderSlug] = &subs[i]
	}

	summary := &domain.CoverageSummary{DomainID: domainID}
	for _, p := range s.registry.All() {
		if !p.Enabled || p.Tier > domain.TierAggregator {
			continue
		}
		row := domain.ProviderCoverage{Slug: p.Slug, Name: p.Name, Tier: p.Tier, Status: domain.SubmissionPending}
		if sub, ok := bySlug[p.Slug]; ok {
			row.Status = sub.Status
			row.ExternalURL = sub.ExternalURL
		}
		switch row.Status {
		case domain.SubmissionVerified:
			summary.Verified++
		case domain.SubmissionSubmitted:
			summary.Submitted++
		case domain.SubmissionError:
			summary.Errored++
		default:
			summary.Pending++
		}
		summary.Providers = append(summary.Providers, row)
	}
	return summary, nil
}

// Submissions returns every submission row recorded for a domain.
func (s *Service) Submissions(ctx context.Context, domainID string) ([]domain.Submission, error) {
	return s.subs.ListByDomain(ctx, domainID)
}

// GetBatch returns a batch by ID.
func (s *Service) GetBatch(ctx context.Context, id string) (*domain.Batch, error) {
	return s.batches.Get(ctx, id)
}

// ListBatches returns batches filtered by status (empty = all).
func (s *Service) ListBatches(ctx context.Context, status domain.BatchStatus, limit int) ([]domain.Batch, error) {
	return s.batches.ListByStatus(ctx, status, limit)
}

// CancelBatch cancels a pending or processing batch. Unclaimed items are
// completed with a cancellation note so they never drain; an item already
// in flight finishes its current attempt.
func (s *Service) CancelBatch(ctx context.Context, id string) (*domain.Batch, error) {
	b, err := s.batches.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.IsTerminal() {
		return nil, ErrBatchNotCancellable
	}
	if _, err := s.queue.CancelPendingForBatch(ctx, id, "batch cancelled"); err != nil {
		return nil, fmt.Errorf("cancel batch items: %w", err)
	}
	if err := s.batches.SetStatus(ctx, id, domain.BatchCancelled); err != nil {
		return nil, err
	}
	return s.batches.Get(ctx, id)
}
