package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/ignite/citation-engine/internal/domain"
	"github.com/ignite/citation-engine/internal/provider"
	"github.com/ignite/citation-engine/internal/service/citation"
)

// Handlers holds the citation service dependencies for all HTTP handlers
type Handlers struct {
	svc       *citation.Service
	startedAt time.Time
}

// NewHandlers creates the handler set
func NewHandlers(svc *citation.Service) *Handlers {
	return &Handlers{svc: svc, startedAt: time.Now()}
}

// HealthCheck reports process liveness
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":         "ok",
		"uptime_seconds": int(time.Since(h.startedAt).Seconds()),
	})
}

// ListProviders returns the full provider catalog with configuration status
func (h *Handlers) ListProviders(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.svc.Registry().StatusReport())
}

// ListConfiguredProviders returns only providers ready to receive submissions
func (h *Handlers) ListConfiguredProviders(w http.ResponseWriter, r *http.Request) {
	providers := h.svc.Registry().Configured()
	slugs := make([]string, 0, len(providers))
	for _, p := range providers {
		slugs = append(slugs, p.Slug)
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":     len(slugs),
		"providers": slugs,
	})
}

type queueRequest struct {
	Providers []string `json:"providers"`
	Priority  int      `json:"priority"`
	BatchName string   `json:"batch_name"`
}

// QueueDomain queues a domain's listing for submission across providers
func (h *Handlers) QueueDomain(w http.ResponseWriter, r *http.Request) {
	domainID := chi.URLParam(r, "domainID")

	var req queueRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	report, err := h.svc.QueueDomain(r.Context(), domainID, citation.QueueOptions{
		Slugs:     req.Providers,
		Priority:  req.Priority,
		BatchName: req.BatchName,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

type actionRequest struct {
	Provider string `json:"provider"`
	Action   string `json:"action"`
	Priority int    `json:"priority"`
}

// EnqueueAction queues a single verify or delete against one provider
func (h *Handlers) EnqueueAction(w http.ResponseWriter, r *http.Request) {
	domainID := chi.URLParam(r, "domainID")

	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	action := domain.QueueAction(req.Action)
	if action != domain.ActionVerify && action != domain.ActionDelete {
		respondError(w, http.StatusBadRequest, "action must be verify or delete")
		return
	}

	item, err := h.svc.EnqueueAction(r.Context(), domainID, req.Provider, action, req.Priority)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, item)
}

// GetCoverage returns the per-provider coverage summary for a domain
func (h *Handlers) GetCoverage(w http.ResponseWriter, r *http.Request) {
	domainID := chi.URLParam(r, "domainID")

	summary, err := h.svc.Coverage(r.Context(), domainID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

// ListSubmissions returns every submission row for a domain
func (h *Handlers) ListSubmissions(w http.ResponseWriter, r *http.Request) {
	domainID := chi.URLParam(r, "domainID")

	subs, err := h.svc.Submissions(r.Context(), domainID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":       len(subs),
		"submissions": subs,
	})
}

// DrainQueue runs one drain cycle synchronously. Normally the worker owns
// draining; this endpoint exists for operational pokes and tests.
func (h *Handlers) DrainQueue(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}

	stats, err := h.svc.Drain(r.Context(), limit)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

// GetBatch returns one batch with its counters
func (h *Handlers) GetBatch(w http.ResponseWriter, r *http.Request) {
	batch, err := h.svc.GetBatch(r.Context(), chi.URLParam(r, "batchID"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, batch)
}

// ListBatches returns recent batches, optionally filtered by status
func (h *Handlers) ListBatches(w http.ResponseWriter, r *http.Request) {
	status := domain.BatchStatus(r.URL.Query().Get("status"))
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}

	batches, err := h.svc.ListBatches(r.Context(), status, limit)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(batches),
		"batches": batches,
	})
}

// CancelBatch cancels a batch's still-unclaimed queue items
func (h *Handlers) CancelBatch(w http.ResponseWriter, r *http.Request) {
	batch, err := h.svc.CancelBatch(r.Context(), chi.URLParam(r, "batchID"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, batch)
}

// Response helpers

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps service sentinels onto HTTP status codes.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, citation.ErrBrandNotFound),
		errors.Is(err, citation.ErrSubmissionNotFound),
		errors.Is(err, citation.ErrBatchNotFound),
		errors.Is(err, citation.ErrUnknownProvider):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, citation.ErrProviderDisabled),
		errors.Is(err, citation.ErrNoAdapter),
		errors.Is(err, citation.ErrBatchNotCancellable):
		respondError(w, http.StatusConflict, err.Error())
	default:
		var verr *provider.ValidationError
		if errors.As(err, &verr) {
			respondJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
				"error":  "listing data incomplete",
				"fields": verr.Fields,
			})
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}
