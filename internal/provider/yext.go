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

	"github.com/ignite/citation-engine/internal/domain"
	"github.com/ignite/citation-engine/internal/pkg/httpretry"
)

const yextAPIVersion = "20240801"

// YextAdapter submits listings through the Yext Knowledge API. Yext is a
// tier-2 aggregator: one accepted listing fans out to its downstream
// directory network.
//
// Quirk callers must know about: Yext location PATCH semantics treat an
// explicitly blank field as a delete. Update therefore only sends non-empty
// fields, leaving everything else untouched server-side.
type YextAdapter struct {
	apiKey    string
	accountID string
	baseURL   string
	client    httpretry.HTTPDoer
}

// NewYextAdapter creates an adapter for the given Yext account. A nil
// client gets a retrying default.
func NewYextAdapter(apiKey, accountID string, client httpretry.HTTPDoer) *YextAdapter {
	if client == nil {
		client = httpretry.New(nil, 3)
	}
	return &YextAdapter{
		apiKey:    apiKey,
		accountID: accountID,
		baseURL:   "https://api.yext.com/v2",
		client:    client,
	}
}

// Slug returns the catalog slug.
func (a *YextAdapter) Slug() string { return "yext" }

// IsConfigured reports whether API key and account ID are present.
func (a *YextAdapter) IsConfigured() bool { return a.apiKey != "" && a.accountID != "" }

type yextEnvelope struct {
	Response json.RawMessage `json:"response"`
	Meta     struct {
		Errors []struct {
			Message string `json:"message"`
			Code    int    `json:"code"`
		} `json:"errors"`
	} `json:"meta"`
}

type yextLocation struct {
	ID           string   `json:"id,omitempty"`
	LocationName string   `json:"locationName,omitempty"`
	Address      string   `json:"address,omitempty"`
	City         string   `json:"city,omitempty"`
	State        string   `json:"state,omitempty"`
	Zip          string   `json:"zip,omitempty"`
	CountryCode  string   `json:"countryCode,omitempty"`
	Phone        string   `json:"phone,omitempty"`
	WebsiteURL   string   `json:"websiteUrl,omitempty"`
	Description  string   `json:"description,omitempty"`
	Categories   []string `json:"categoryIds,omitempty"`
	LogoURL      string   `json:"logoUrl,omitempty"`
	PhotoURLs    []string `json:"photoUrls,omitempty"`
	ListingURL   string   `json:"listingUrl,omitempty"`
}

// Submit searches for an existing listing by name+city first; on a match it
// returns the matched listing instead of creating a duplicate.
func (a *YextAdapter) Submit(ctx context.Context, loc *domain.NormalizedLocation) (*SubmitResult, error) {
	if !a.IsConfigured() {
		return nil, fmt.Errorf("Yext credentials not configured")
	}

	match, err := a.findExisting(ctx, loc)
	if err != nil {
		// A flaky search endpoint must not block the submit, but creating
		// without the dedup check can duplicate the listing.
		log.Printf("[Yext] Duplicate search failed for %q, creating without dedup: %v", loc.BusinessName, err)
	}
	if match != nil {
		log.Printf("[Yext] Matched existing listing %s for %q", match.ID, loc.BusinessName)
		return &SubmitResult{
			Success:     true,
			ExternalID:  match.ID,
			ExternalURL: match.ListingURL,
			Matched:     true,
			Message:     "matched existing listing",
			Metadata:    map[string]string{"matched": "true"},
		}, nil
	}

	payload := a.toWire(loc)
	body, status, err := a.do(ctx, http.MethodPost, "/accounts/"+a.accountID+"/locations", payload)
	if err != nil {
		return nil, err
	}
	if status >= 400 {
		return &SubmitResult{Success: false, Err: yextError(status, body)}, nil
	}

	var created yextLocation
	json.Unmarshal(body, &created)
	log.Printf("[Yext] Created listing %s for %q", created.ID, loc.BusinessName)
	return &SubmitResult{
		Success:     true,
		ExternalID:  created.ID,
		ExternalURL: created.ListingURL,
		Message:     "listing created",
	}, nil
}

// Update PATCHes the listing. Only non-empty fields are sent because Yext
// deletes any field explicitly set to blank.
func (a *YextAdapter) Update(ctx context.Context, externalID string, loc *domain.NormalizedLocation) (*UpdateResult, error) {
	if !a.IsConfigured() {
		return nil, fmt.Errorf("Yext credentials not configured")
	}

	payload := a.toWire(loc)
	payload.ID = ""
	body, status, err := a.do(ctx, http.MethodPatch, "/accounts/"+a.accountID+"/locations/"+url.PathEscape(externalID), payload)
	if err != nil {
		return nil, err
	}
	if status >= 400 {
		return &UpdateResult{Success: false, Err: yextError(status, body)}, nil
	}
	return &UpdateResult{Success: true, Message: "listing updated"}, nil
}

// Verify fetches the listing; a 404 means the listing is gone, which is a
// normal outcome rather than a transport failure.
func (a *YextAdapter) Verify(ctx context.Context, externalID string) (*VerifyResult, error) {
	if !a.IsConfigured() {
		return nil, fmt.Errorf("Yext credentials not configured")
	}

	body, status, err := a.do(ctx, http.MethodGet, "/accounts/"+a.accountID+"/locations/"+url.PathEscape(externalID), nil)
	if err != nil {
		return &VerifyResult{Success: false, Status: StatusError, Message: err.Error()}, nil
	}
	if status == http.StatusNotFound {
		return &VerifyResult{Success: true, Status: StatusNotFound}, nil
	}
	if status >= 400 {
		return &VerifyResult{Success: false, Status: StatusError, Message: yextError(status, body)}, nil
	}

	var got yextLocation
	json.Unmarshal(body, &got)
	return &VerifyResult{Success: true, Status: StatusVerified, ExternalURL: got.ListingURL}, nil
}

// Delete removes the listing from the Yext network.
func (a *YextAdapter) Delete(ctx context.Context, externalID string) (*DeleteResult, error) {
	if !a.IsConfigured() {
		return nil, fmt.Errorf("Yext credentials not configured")
	}

	body, status, err := a.do(ctx, http.MethodDelete, "/accounts/"+a.accountID+"/locations/"+url.PathEscape(externalID), nil)
	if err != nil {
		return nil, err
	}
	if status >= 400 {
		return &DeleteResult{Success: false, Err: yextError(status, body)}, nil
	}
	return &DeleteResult{Success: true, Message: "listing deleted"}, nil
}

// findExisting searches the account's locations by name and city. A nil
// result with nil error means no match.
func (a *YextAdapter) findExisting(ctx context.Context, loc *domain.NormalizedLocation) (*yextLocation, error) {
	filters := fmt.Sprintf(`[{"locationName":{"contains":[%q]}},{"city":{"in":[%q]}}]`, loc.BusinessName, loc.City)
	path := "/accounts/" + a.accountID + "/locationsearch?filters=" + url.QueryEscape(filters)

	body, status, err := a.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	if status >= 400 {
		return nil, fmt.Errorf("Yext search error %d", status)
	}

	var results struct {
		Locations []yextLocation `json:"locations"`
	}
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, err
	}
	for i := range results.Locations {
		if strings.EqualFold(results.Locations[i].LocationName, loc.BusinessName) {
			return &results.Locations[i], nil
		}
	}
	return nil, nil
}

func (a *YextAdapter) toWire(loc *domain.NormalizedLocation) yextLocation {
	return yextLocation{
		LocationName: loc.BusinessName,
		Address:      loc.Street,
		City:         loc.City,
		State:        loc.State,
		Zip:          loc.Zip,
		CountryCode:  loc.Country,
		Phone:        loc.Phone,
		WebsiteURL:   loc.Website,
		Description:  loc.Description,
		Categories:   loc.Categories,
		LogoURL:      loc.LogoURL,
		PhotoURLs:    loc.ImageURLs,
	}
}

// do executes one API call and unwraps the Yext response envelope. The
// api_key and v params ride on the query string per the Yext contract.
func (a *YextAdapter) do(ctx context.Context, method, path string, payload interface{}) ([]byte, int, error) {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	endpoint := a.baseURL + path + sep + "api_key=" + url.QueryEscape(a.apiKey) + "&v=" + yextAPIVersion

	var bodyReader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, err
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bodyReader)
	if err != nil {
		return nil, 0, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("Yext request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)

	var env yextEnvelope
	if err := json.Unmarshal(raw, &env); err == nil && len(env.Response) > 0 {
		return env.Response, resp.StatusCode, nil
	}
	return raw, resp.StatusCode, nil
}

func yextError(status int, body []byte) string {
	var env yextEnvelope
	if err := json.Unmarshal(body, &env); err == nil && len(env.Meta.Errors) > 0 {
		return fmt.Sprintf("Yext error %d: %s", status, env.Meta.Errors[0].Message)
	}
	return fmt.Sprintf("Yext error %d: %s", status, truncate(string(body), 200))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
