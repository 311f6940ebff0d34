package citation

import (
	"context"
	"fmt"
	"log"

	"github.com/ignite/citation-engine/internal/domain"
	"github.com/ignite/citation-engine/internal/pkg/logger"
	"github.com/ignite/citation-engine/internal/provider"
)

// DrainStats summarizes one drain cycle.
type DrainStats struct {
	Claimed   int `json:"claimed"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// Drain claims up to limit due queue items and processes them sequentially,
// dispatching each to its provider adapter and applying the resulting
// submission/queue/batch transitions. Items are processed one at a time to
// keep outbound load under provider rate limits; throughput comes from
// running cycles back to back, not from fan-out.
func (s *Service) Drain(ctx context.Context, limit int) (*DrainStats, error) {
	if limit <= 0 {
		limit = 25
	}

	items, err := s.queue.ClaimDue(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("claim queue items: %w", err)
	}

	stats := &DrainStats{Claimed: len(items)}
	for i := range items {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		if s.processItem(ctx, &items[i]) {
			stats.Succeeded++
		} else {
			stats.Failed++
		}
	}
	return stats, nil
}

// processItem runs one claimed queue item to a terminal or retryable state.
// Returns true when the adapter call succeeded.
func (s *Service) processItem(ctx context.Context, item *domain.QueueItem) (succeeded bool) {
	sub, err := s.subs.GetByID(ctx, item.SubmissionID)
	if err != nil {
		s.failItem(ctx, item, nil, fmt.Sprintf("load submission: %v", err))
		return false
	}

	adapter, ok := s.registry.Adapter(sub.ProviderSlug)
	if !ok {
		s.failItem(ctx, item, sub, ErrNoAdapter.Error())
		return false
	}

	if err := s.subs.SetStatus(ctx, sub.ID, domain.SubmissionSubmitting); err != nil {
		log.Printf("[Drain] Item %s: set submitting: %v", item.ID, err)
	}

	// Adapters return typed results for expected failures; anything that
	// escapes as a Go error or panic lands on the same error path.
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Drain] Item %s: adapter panic: %v", item.ID, r)
			s.failItem(ctx, item, sub, fmt.Sprintf("adapter panic: %v", r))
			succeeded = false
		}
	}()

	outcome, err := s.dispatch(ctx, item, sub, adapter)
	if err != nil {
		s.failItem(ctx, item, sub, err.Error())
		return false
	}
	if !outcome.ok {
		s.failItem(ctx, item, sub, outcome.errMsg)
		return false
	}

	if err := s.subs.RecordSuccess(ctx, sub.ID, outcome.status, outcome.externalID, outcome.externalURL, outcome.hash); err != nil {
		log.Printf("[Drain] Item %s: record success: %v", item.ID, err)
	}
	if err := s.queue.MarkCompleted(ctx, item.ID, ""); err != nil {
		log.Printf("[Drain] Item %s: mark completed: %v", item.ID, err)
	}
	s.bumpBatch(ctx, item, true)
	return true
}

// outcome is the normalized result of one adapter dispatch.
type outcome struct {
	ok          bool
	errMsg      string
	status      domain.SubmissionStatus
	externalID  string
	externalURL string
	hash        string
}

// dispatch invokes the adapter method for the item's action and maps the
// provider result onto the submission state machine:
//
//	success + action verify + adapter verified  -> verified
//	success + action verify + adapter not_found -> needs_update
//	any other success                           -> submitted
func (s *Service) dispatch(ctx context.Context, item *domain.QueueItem, sub *domain.Submission, adapter provider.Adapter) (*outcome, error) {
	switch item.Action {
	case domain.ActionSubmit, domain.ActionUpdate:
		// Brand data is re-read at drain time so a listing edited between
		// queueing and draining goes out current; the hash stored on
		// success reflects what was actually sent.
		rec, err := s.brands.GetBrandRecord(ctx, sub.DomainID)
		if err != nil {
			return nil, err
		}
		loc := provider.Normalize(rec)
		if err := provider.ValidateLocation(loc); err != nil {
			return nil, err
		}
		hash := provider.LocationHash(loc)

		// Payload contact fields go through the redacting logger.
		logger.Debug("dispatching listing",
			"action", string(item.Action),
			"provider", sub.ProviderSlug,
			"domain", sub.DomainID,
			"business", loc.BusinessName,
			"phone", loc.Phone,
			"email", loc.Email)

		if item.Action == domain.ActionSubmit || sub.ExternalID == "" {
			res, err := adapter.Submit(ctx, loc)
			if err != nil {
				return nil, err
			}
			if !res.Success {
				return &outcome{errMsg: submitErr(res)}, nil
			}
			return &outcome{
				ok:          true,
				status:      domain.SubmissionSubmitted,
				externalID:  res.ExternalID,
				externalURL: res.ExternalURL,
				hash:        hash,
			}, nil
		}

		res, err := adapter.Update(ctx, sub.ExternalID, loc)
		if err != nil {
			return nil, err
		}
		if !res.Success {
			return &outcome{errMsg: firstNonEmpty(res.Err, res.Message, "update failed")}, nil
		}
		return &outcome{ok: true, status: domain.SubmissionSubmitted, hash: hash}, nil

	case domain.ActionVerify:
		res, err := adapter.Verify(ctx, sub.ExternalID)
		if err != nil {
			return nil, err
		}
		if !res.Success {
			return &outcome{errMsg: firstNonEmpty(res.Message, "verify failed")}, nil
		}
		st := domain.SubmissionSubmitted
		switch res.Status {
		case provider.StatusVerified:
			st = domain.SubmissionVerified
		case provider.StatusNotFound:
			st = domain.SubmissionNeedsUpdate
		}
		return &outcome{ok: true, status: st, externalURL: res.ExternalURL}, nil

	case domain.ActionDelete:
		res, err := adapter.Delete(ctx, sub.ExternalID)
		if err != nil {
			return nil, err
		}
		if !res.Success {
			return &outcome{errMsg: firstNonEmpty(res.Err, res.Message, "delete failed")}, nil
		}
		return &outcome{ok: true, status: domain.SubmissionSubmitted}, nil

	default:
		return nil, fmt.Errorf("unknown queue action %q", item.Action)
	}
}

// failItem applies the failure path: submission to error status, and the
// queue item either released for another attempt or terminally completed
// once the retry budget is spent.
func (s *Service) failItem(ctx context.Context, item *domain.QueueItem, sub *domain.Submission, msg string) {
	if sub != nil {
		if err := s.subs.RecordError(ctx, sub.ID, msg); err != nil {
			log.Printf("[Drain] Item %s: record error: %v", item.ID, err)
		}
	}

	// ClaimDue already incremented attempts for this run.
	if item.Attempts >= item.MaxAttempts {
		if err := s.queue.MarkCompleted(ctx, item.ID, msg); err != nil {
			log.Printf("[Drain] Item %s: mark exhausted: %v", item.ID, err)
		}
		log.Printf("[Drain] Item %s failed terminally after %d attempts: %s", item.ID, item.Attempts, msg)
		s.bumpBatch(ctx, item, false)
		return
	}

	if err := s.queue.Release(ctx, item.ID, msg); err != nil {
		log.Printf("[Drain] Item %s: release: %v", item.ID, err)
	}
}

// bumpBatch updates batch counters after a terminal item outcome and
// finalizes the batch once nothing incomplete remains: completed when at
// least one item succeeded, failed when every completed item failed.
func (s *Service) bumpBatch(ctx context.Context, item *domain.QueueItem, success bool) {
	if item.BatchID == nil {
		return
	}
	batchID := *item.BatchID

	completed, failed := 0, 0
	if success {
		completed = 1
	} else {
		failed = 1
	}
	if err := s.batches.IncrementCounters(ctx, batchID, completed, failed); err != nil {
		log.Printf("[Drain] Batch %s: increment counters: %v", batchID, err)
		return
	}

	cur, err := s.batches.Get(ctx, batchID)
	if err != nil {
		log.Printf("[Drain] Batch %s: load: %v", batchID, err)
		return
	}
	// A cancelled batch keeps its counters current for the items that were
	// already in flight, but its status is final.
	if cur.IsTerminal() {
		return
	}
	if cur.Status == domain.BatchPending {
		if err := s.batches.SetStatus(ctx, batchID, domain.BatchProcessing); err != nil {
			log.Printf("[Drain] Batch %s: mark processing: %v", batchID, err)
		}
	}

	incomplete, err := s.queue.HasIncompleteForBatch(ctx, batchID)
	if err != nil {
		log.Printf("[Drain] Batch %s: check completion: %v", batchID, err)
		return
	}
	if incomplete {
		return
	}

	final := domain.BatchCompleted
	if cur.CompletedCount == 0 && cur.FailedCount > 0 {
		final = domain.BatchFailed
	}
	if err := s.batches.SetStatus(ctx, batchID, final); err != nil {
		log.Printf("[Drain] Batch %s: finalize: %v", batchID, err)
	}
}

func submitErr(res *provider.SubmitResult) string {
	return firstNonEmpty(res.Err, res.Message, "submit failed")
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
