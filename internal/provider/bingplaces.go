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

	"github.com/ignite/citation-engine/internal/domain"
	"github.com/ignite/citation-engine/internal/pkg/httpretry"
)

// BingPlacesAdapter manages listings on Bing Places for Business (tier 1,
// direct). Auth is a subscription key header. Bing exposes no deletion or
// search endpoint, so Submit always creates and Delete is unsupported.
type BingPlacesAdapter struct {
	subscriptionKey string
	storeID         string
	baseURL         string
	client          httpretry.HTTPDoer
}

// NewBingPlacesAdapter creates the adapter. A nil client gets a retrying
// default.
func NewBingPlacesAdapter(subscriptionKey, storeID string, client httpretry.HTTPDoer) *BingPlacesAdapter {
	if client == nil {
		client = httpretry.New(nil, 3)
	}
	return &BingPlacesAdapter{
		subscriptionKey: subscriptionKey,
		storeID:         storeID,
		baseURL:         "https://api.bingplaces.microsoft.com/v1",
		client:          client,
	}
}

// Slug returns the catalog slug.
func (a *BingPlacesAdapter) Slug() string { return "bingplaces" }

// IsConfigured reports whether the subscription key and store ID are set.
func (a *BingPlacesAdapter) IsConfigured() bool {
	return a.subscriptionKey != "" && a.storeID != ""
}

type bingBusiness struct {
	BusinessID    string   `json:"businessId,omitempty"`
	Name          string   `json:"name,omitempty"`
	AddressLine   string   `json:"addressLine,omitempty"`
	City          string   `json:"city,omitempty"`
	StateOrRegion string   `json:"stateOrRegion,omitempty"`
	PostalCode    string   `json:"postalCode,omitempty"`
	Country       string   `json:"country,omitempty"`
	Phone         string   `json:"phone,omitempty"`
	Email         string   `json:"email,omitempty"`
	Website       string   `json:"website,omitempty"`
	Description   string   `json:"description,omitempty"`
	Segments      []string `json:"segments,omitempty"`
	ListingURL    string   `json:"listingUrl,omitempty"`
	PublishStatus string   `json:"publishStatus,omitempty"`
}

type bingResponse struct {
	Business     bingBusiness `json:"business"`
	ErrorMessage string       `json:"errorMessage"`
}

// Submit creates the business under the configured store. Bing has no
// search API, so there is no provider-side duplicate detection here; the
// orchestrator's hash/status dedup is the only guard.
func (a *BingPlacesAdapter) Submit(ctx context.Context, loc *domain.NormalizedLocation) (*SubmitResult, error) {
	if !a.IsConfigured() {
		return nil, fmt.Errorf("Bing Places credentials not configured")
	}

	body, status, err := a.do(ctx, http.MethodPost, "/stores/"+a.storeID+"/businesses", a.toWire(loc))
	if err != nil {
		return nil, err
	}
	if status >= 400 {
		return &SubmitResult{Success: false, Err: bingError(status, body)}, nil
	}

	var resp bingResponse
	json.Unmarshal(body, &resp)
	log.Printf("[BingPlaces] Created business %s for %q", resp.Business.BusinessID, loc.BusinessName)
	return &SubmitResult{
		Success:     true,
		ExternalID:  resp.Business.BusinessID,
		ExternalURL: resp.Business.ListingURL,
		Message:     "business created, pending Bing review",
	}, nil
}

// Update full-replaces the business record; Bing keeps fields we do not
// manage untouched on a PUT with omitted keys.
func (a *BingPlacesAdapter) Update(ctx context.Context, externalID string, loc *domain.NormalizedLocation) (*UpdateResult, error) {
	if !a.IsConfigured() {
		return nil, fmt.Errorf("Bing Places credentials not configured")
	}

	body, status, err := a.do(ctx, http.MethodPut, "/stores/"+a.storeID+"/businesses/"+url.PathEscape(externalID), a.toWire(loc))
	if err != nil {
		return nil, err
	}
	if status >= 400 {
		return &UpdateResult{Success: false, Err: bingError(status, body)}, nil
	}
	return &UpdateResult{Success: true, Message: "business updated"}, nil
}

// Verify fetches the business; a 404 is the normal gone outcome, and a
// business still in Bing review reports pending.
func (a *BingPlacesAdapter) Verify(ctx context.Context, externalID string) (*VerifyResult, error) {
	if !a.IsConfigured() {
		return nil, fmt.Errorf("Bing Places credentials not configured")
	}

	body, status, err := a.do(ctx, http.MethodGet, "/stores/"+a.storeID+"/businesses/"+url.PathEscape(externalID), nil)
	if err != nil {
		return &VerifyResult{Success: false, Status: StatusError, Message: err.Error()}, nil
	}
	if status == http.StatusNotFound {
		return &VerifyResult{Success: true, Status: StatusNotFound}, nil
	}
	if status >= 400 {
		return &VerifyResult{Success: false, Status: StatusError, Message: bingError(status, body)}, nil
	}

	var resp bingResponse
	json.Unmarshal(body, &resp)
	res := &VerifyResult{Success: true, Status: StatusVerified, ExternalURL: resp.Business.ListingURL}
	if resp.Business.PublishStatus != "" && resp.Business.PublishStatus != "Published" {
		res.Status = StatusPending
		res.Message = "publish status: " + resp.Business.PublishStatus
	}
	return res, nil
}

// Delete is unsupported: Bing Places removals go through their dashboard.
func (a *BingPlacesAdapter) Delete(ctx context.Context, externalID string) (*DeleteResult, error) {
	return &DeleteResult{
		Success: false,
		Message: "Bing Places has no deletion API; remove the listing from the Bing Places dashboard",
	}, nil
}

func (a *BingPlacesAdapter) toWire(loc *domain.NormalizedLocation) bingBusiness {
	return bingBusiness{
		Name:          loc.BusinessName,
		AddressLine:   loc.Street,
		City:          loc.City,
		StateOrRegion: loc.State,
		PostalCode:    loc.Zip,
		Country:       loc.Country,
		Phone:         loc.Phone,
		Email:         loc.Email,
		Website:       loc.Website,
		Description:   loc.Description,
		Segments:      loc.Categories,
	}
}

func (a *BingPlacesAdapter) do(ctx context.Context, method, path string, payload interface{}) ([]byte, int, error) {
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
	req.Header.Set("Ocp-Apim-Subscription-Key", a.subscriptionKey)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("Bing Places request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	return raw, resp.StatusCode, nil
}

func bingError(status int, body []byte) string {
	var resp bingResponse
	if err := json.Unmarshal(body, &resp); err == nil && resp.ErrorMessage != "" {
		return fmt.Sprintf("Bing Places error %d: %s", status, resp.ErrorMessage)
	}
	return fmt.Sprintf("Bing Places error %d: %s", status, truncate(string(body), 200))
}
