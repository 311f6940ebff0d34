// Package httpretry provides an HTTP client with automatic retry logic,
// exponential backoff with jitter, and Retry-After awareness for calls to
// citation directory APIs.
package httpretry

import (
	"fmt"
	"io"
	"log"
	"math"
	"math/rand"
	"net/http"
	"strconv"
	"time"
)

// HTTPDoer is the interface for executing HTTP requests.
// Both *http.Client and *RetryClient satisfy this interface.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// RetryClient wraps an HTTPDoer with retry logic using exponential backoff
// and full jitter. Directory APIs rate-limit aggressively, so a 429 with a
// Retry-After header is honored up to maxDelay.
type RetryClient struct {
	client     HTTPDoer
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
}

// New creates a RetryClient wrapping the given HTTPDoer. If client is nil a
// default http.Client with a 30s timeout is used. maxRetries is the number
// of retry attempts after the initial request (default 3).
func New(client HTTPDoer, maxRetries int) *RetryClient {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return &RetryClient{
		client:     client,
		maxRetries: maxRetries,
		baseDelay:  time.Second,
		maxDelay:   30 * time.Second,
	}
}

// Do executes the request, retrying on 429/5xx and transient network
// errors. Client errors (400, 401, 403, 404) and context cancellation are
// never retried. The final attempt's response is returned as-is so the
// caller can inspect status and body.
func (rc *RetryClient) Do(req *http.Request) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt <= rc.maxRetries; attempt++ {
		if req.Context().Err() != nil {
			if lastErr != nil {
				return nil, lastErr
			}
			return nil, req.Context().Err()
		}

		resp, err := rc.client.Do(req)
		if err != nil {
			lastErr = err
			if req.Context().Err() != nil {
				return nil, err
			}
			if attempt == rc.maxRetries {
				break
			}
			if !rc.wait(req, rc.backoff(attempt+1)) {
				return nil, lastErr
			}
			continue
		}

		if !isRetryableStatus(resp.StatusCode) || attempt == rc.maxRetries {
			return resp, nil
		}

		delay := rc.backoff(attempt + 1)
		if ra := retryAfter(resp); ra > 0 && ra < rc.maxDelay {
			delay = ra
		}

		// Drain for connection reuse before retrying.
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		lastErr = fmt.Errorf("httpretry: retryable status %d from %s", resp.StatusCode, req.URL.Host)

		log.Printf("httpretry: retry %d/%d for %s %s%s (waiting %s)",
			attempt+1, rc.maxRetries, req.Method, req.URL.Host, req.URL.Path, delay)
		if !rc.wait(req, delay) {
			return nil, lastErr
		}
	}

	return nil, lastErr
}

// wait sleeps for the given delay, resetting the request body for the next
// attempt. Returns false if the request context expired while waiting.
func (rc *RetryClient) wait(req *http.Request, delay time.Duration) bool {
	if req.GetBody != nil {
		if body, err := req.GetBody(); err == nil {
			req.Body = body
		}
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-req.Context().Done():
		return false
	}
}

// backoff returns the delay before the given retry attempt: full jitter
// over baseDelay * 2^(attempt-1), capped at maxDelay, floored at 100ms.
func (rc *RetryClient) backoff(attempt int) time.Duration {
	exp := float64(rc.baseDelay) * math.Pow(2, float64(attempt-1))
	if exp > float64(rc.maxDelay) {
		exp = float64(rc.maxDelay)
	}
	jittered := time.Duration(rand.Float64() * exp)
	if jittered < 100*time.Millisecond {
		jittered = 100 * time.Millisecond
	}
	return jittered
}

// retryAfter parses a delay-seconds Retry-After header; 0 if absent or
// unparseable (the HTTP-date form is rare on these APIs and not worth
// parsing).
func retryAfter(resp *http.Response) time.Duration {
	v := resp.Header.Get("Retry-After")
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

// isRetryableStatus reports whether the status indicates a transient
// condition worth retrying: 429, 500, 502, 503, 504.
func isRetryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}
