package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/ignite/citation-engine/internal/domain"
	"github.com/ignite/citation-engine/internal/pkg/httpretry"
)

// tokenExpiryBuffer refreshes OAuth tokens five minutes before the provider
// says they expire, so a token never dies mid-request.
const tokenExpiryBuffer = 5 * time.Minute

// FoursquareAdapter manages listings on the Foursquare Places API (tier 1,
// direct). Auth is OAuth2 client credentials; the token source caches the
// access token in memory and refreshes it transparently with an early-expiry
// buffer. Foursquare has no listing deletion endpoint.
type FoursquareAdapter struct {
	clientID     string
	clientSecret string
	baseURL      string
	client       httpretry.HTTPDoer
	tokens       oauth2.TokenSource
}

// NewFoursquareAdapter creates the adapter. A nil client gets a retrying
// default.
func NewFoursquareAdapter(clientID, clientSecret string, client httpretry.HTTPDoer) *FoursquareAdapter {
	if client == nil {
		client = httpretry.New(nil, 3)
	}
	a := &FoursquareAdapter{
		clientID:     clientID,
		clientSecret: clientSecret,
		baseURL:      "https://api.foursquare.com/v3",
		client:       client,
	}
	if a.IsConfigured() {
		cc := &clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     "https://foursquare.com/oauth2/access_token",
		}
		// ReuseTokenSourceWithExpiry hands back the cached token until five
		// minutes before its real expiry, then refreshes.
		a.tokens = oauth2.ReuseTokenSourceWithExpiry(nil, cc.TokenSource(context.Background()), tokenExpiryBuffer)
	}
	return a
}

// Slug returns the catalog slug.
func (a *FoursquareAdapter) Slug() string { return "foursquare" }

// IsConfigured reports whether the OAuth2 client credentials are present.
func (a *FoursquareAdapter) IsConfigured() bool {
	return a.clientID != "" && a.clientSecret != ""
}

type fsqPlace struct {
	FsqID    string `json:"fsq_id,omitempty"`
	Name     string `json:"name,omitempty"`
	Tel      string `json:"tel,omitempty"`
	Website  string `json:"website,omitempty"`
	Email    string `json:"email,omitempty"`
	Link     string `json:"link,omitempty"`
	Location struct {
		Address  string `json:"address,omitempty"`
		Locality string `json:"locality,omitempty"`
		Region   string `json:"region,omitempty"`
		Postcode string `json:"postcode,omitempty"`
		Country  string `json:"country,omitempty"`
	} `json:"location,omitempty"`
	Categories   []string `json:"categories,omitempty"`
	Description  string   `json:"description,omitempty"`
	ClosedBucket string   `json:"closed_bucket,omitempty"`
}

// Submit searches nearby places by name+city first and returns the match
// instead of creating a duplicate venue.
func (a *FoursquareAdapter) Submit(ctx context.Context, loc *domain.NormalizedLocation) (*SubmitResult, error) {
	if !a.IsConfigured() {
		return nil, fmt.Errorf("Foursquare credentials not configured")
	}

	match, err := a.search(ctx, loc)
	if err != nil {
		log.Printf("[Foursquare] Place search failed for %q, creating without dedup: %v", loc.BusinessName, err)
	}
	if match != nil {
		log.Printf("[Foursquare] Matched existing place %s for %q", match.FsqID, loc.BusinessName)
		return &SubmitResult{
			Success:     true,
			ExternalID:  match.FsqID,
			ExternalURL: placeURL(match.FsqID),
			Matched:     true,
			Message:     "matched existing place",
			Metadata:    map[string]string{"matched": "true"},
		}, nil
	}

	body, status, err := a.do(ctx, http.MethodPost, "/places", a.toWire(loc))
	if err != nil {
		return nil, err
	}
	if status >= 400 {
		return &SubmitResult{Success: false, Err: fsqError(status, body)}, nil
	}

	var created fsqPlace
	json.Unmarshal(body, &created)
	log.Printf("[Foursquare] Created place %s for %q", created.FsqID, loc.BusinessName)
	return &SubmitResult{
		Success:     true,
		ExternalID:  created.FsqID,
		ExternalURL: placeURL(created.FsqID),
		Message:     "place created",
	}, nil
}

// Update replaces the place attributes we manage; Foursquare merges
// server-side, so absent fields are left untouched.
func (a *FoursquareAdapter) Update(ctx context.Context, externalID string, loc *domain.NormalizedLocation) (*UpdateResult, error) {
	if !a.IsConfigured() {
		return nil, fmt.Errorf("Foursquare credentials not configured")
	}

	body, status, err := a.do(ctx, http.MethodPut, "/places/"+url.PathEscape(externalID), a.toWire(loc))
	if err != nil {
		return nil, err
	}
	if status >= 400 {
		return &UpdateResult{Success: false, Err: fsqError(status, body)}, nil
	}
	return &UpdateResult{Success: true, Message: "place updated"}, nil
}

// Verify fetches the place; 404 maps to not_found, and a place Foursquare
// has bucketed as likely/verified closed counts as pending rather than live.
func (a *FoursquareAdapter) Verify(ctx context.Context, externalID string) (*VerifyResult, error) {
	if !a.IsConfigured() {
		return nil, fmt.Errorf("Foursquare credentials not configured")
	}

	body, status, err := a.do(ctx, http.MethodGet, "/places/"+url.PathEscape(externalID), nil)
	if err != nil {
		return &VerifyResult{Success: false, Status: StatusError, Message: err.Error()}, nil
	}
	if status == http.StatusNotFound {
		return &VerifyResult{Success: true, Status: StatusNotFound}, nil
	}
	if status >= 400 {
		return &VerifyResult{Success: false, Status: StatusError, Message: fsqError(status, body)}, nil
	}

	var got fsqPlace
	json.Unmarshal(body, &got)
	res := &VerifyResult{Success: true, Status: StatusVerified, ExternalURL: placeURL(externalID)}
	if strings.Contains(got.ClosedBucket, "Closed") {
		res.Status = StatusPending
		res.Message = "place flagged as closed, pending review"
	}
	return res, nil
}

// Delete is unsupported: Foursquare exposes no deletion endpoint.
func (a *FoursquareAdapter) Delete(ctx context.Context, externalID string) (*DeleteResult, error) {
	return &DeleteResult{
		Success: false,
		Message: "Foursquare has no listing deletion endpoint; flag the place as closed via their support flow",
	}, nil
}

// search finds an existing place by name near the listing's city.
func (a *FoursquareAdapter) search(ctx context.Context, loc *domain.NormalizedLocation) (*fsqPlace, error) {
	q := url.Values{}
	q.Set("query", loc.BusinessName)
	q.Set("near", loc.City+", "+loc.State)
	q.Set("limit", "5")

	body, status, err := a.do(ctx, http.MethodGet, "/places/search?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	if status >= 400 {
		return nil, fmt.Errorf("Foursquare search error %d", status)
	}

	var results struct {
		Results []fsqPlace `json:"results"`
	}
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, err
	}
	for i := range results.Results {
		if strings.EqualFold(results.Results[i].Name, loc.BusinessName) {
			return &results.Results[i], nil
		}
	}
	return nil, nil
}

func (a *FoursquareAdapter) toWire(loc *domain.NormalizedLocation) fsqPlace {
	p := fsqPlace{
		Name:        loc.BusinessName,
		Tel:         loc.Phone,
		Website:     loc.Website,
		Email:       loc.Email,
		Description: loc.Description,
		Categories:  loc.Categories,
	}
	p.Location.Address = loc.Street
	p.Location.Locality = loc.City
	p.Location.Region = loc.State
	p.Location.Postcode = loc.Zip
	p.Location.Country = loc.Country
	return p
}

// do executes one API call with a fresh-enough bearer token.
func (a *FoursquareAdapter) do(ctx context.Context, method, path string, payload interface{}) ([]byte, int, error) {
	tok, err := a.tokens.Token()
	if err != nil {
		return nil, 0, fmt.Errorf("Foursquare token: %w", err)
	}

	var bodyReader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, err
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, bodyReader)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Authorization", "Bearer "+tok.AccessToken)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("Foursquare request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	return raw, resp.StatusCode, nil
}

func placeURL(fsqID string) string {
	if fsqID == "" {
		return ""
	}
	return "https://foursquare.com/v/" + fsqID
}

func fsqError(status int, body []byte) string {
	var e struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &e); err == nil && e.Message != "" {
		return fmt.Sprintf("Foursquare error %d: %s", status, e.Message)
	}
	return fmt.Sprintf("Foursquare error %d: %s", status, truncate(string(body), 200))
}
