// Package provider contains the citation directory adapters and the registry
// that holds them.
//
// Adapters are split into individual files:
//   - yext.go:       Yext Knowledge API (tier-2 aggregator, api_key auth)
//   - foursquare.go: Foursquare Places API (tier 1, OAuth2 client credentials)
//   - bingplaces.go: Bing Places for Business (tier 1, subscription key)
//   - localeze.go:   Localeze bulk feed drop via S3 (tier-2 aggregator)
//   - hotfrog.go:    Hotfrog public-page scraper (tier-3 fallback, goquery)
//
// Shared listing normalization, validation, phone formatting, and hashing
// live in normalize.go and hash.go as package functions; adapters are plain
// implementations of the Adapter interface with no shared base type.
package provider

import (
	"context"

	"github.com/ignite/citation-engine/internal/domain"
)

// Adapter is the uniform capability contract every citation directory
// implements. Expected provider-side failures are reported through the
// result types with Success=false; a non-nil Go error means something
// unexpected happened (the orchestrator converts those into the same error
// submission state).
//
// Adapters hold no durable state beyond in-memory cached auth tokens. They
// never touch submissions, queue items, or batches.
type Adapter interface {
	// Slug returns the catalog slug this adapter serves.
	Slug() string

	// IsConfigured reports whether all required credentials are present.
	// Local check only; never a network call.
	IsConfigured() bool

	// Submit creates the listing, after provider-side duplicate detection
	// where the API supports it. Callers must validate the location first
	// via ValidateLocation.
	Submit(ctx context.Context, loc *domain.NormalizedLocation) (*SubmitResult, error)

	// Update modifies an existing listing identified by externalID.
	Update(ctx context.Context, externalID string, loc *domain.NormalizedLocation) (*UpdateResult, error)

	// Verify checks whether the listing still exists and is live. A
	// provider-side 404 is a normal outcome (StatusNotFound, Success=true),
	// not a transport failure.
	Verify(ctx context.Context, externalID string) (*VerifyResult, error)

	// Delete removes the listing. Providers with no deletion endpoint
	// return Success=false with an explanatory message; they never error.
	Delete(ctx context.Context, externalID string) (*DeleteResult, error)
}

// SubmitResult is the outcome of a Submit call.
type SubmitResult struct {
	Success     bool
	ExternalID  string
	ExternalURL string
	Message     string
	Err         string
	// Matched is true when duplicate detection found an existing listing
	// and no create call was made.
	Matched  bool
	Metadata map[string]string
}

// UpdateResult is the outcome of an Update call.
type UpdateResult struct {
	Success bool
	Message string
	Err     string
}

// VerifyStatus enumerates the outcomes of a Verify call.
type VerifyStatus string

const (
	StatusVerified VerifyStatus = "verified"
	StatusPending  VerifyStatus = "pending"
	StatusNotFound VerifyStatus = "not_found"
	StatusError    VerifyStatus = "error"
)

// VerifyResult is the outcome of a Verify call.
type VerifyResult struct {
	Success     bool
	Status      VerifyStatus
	ExternalURL string
	LastUpdated string
	Message     string
}

// DeleteResult is the outcome of a Delete call.
type DeleteResult struct {
	Success bool
	Message string
	Err     string
}
