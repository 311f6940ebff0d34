package provider

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/ignite/citation-engine/internal/domain"
	"github.com/ignite/citation-engine/internal/pkg/httpretry"
)

// HotfrogAdapter is the scraping fallback for a directory with no API
// (tier 3). It can only Verify, by fetching the public listing page and
// probing a few selector patterns; Submit, Update, and Delete report
// unsupported. Selector drift breaks only this adapter, never the API
// adapters, which is why it stays isolated behind the same interface at the
// lowest priority.
type HotfrogAdapter struct {
	baseURL string
	client  httpretry.HTTPDoer
}

// NewHotfrogAdapter creates the scraper. A nil client gets a retrying
// default.
func NewHotfrogAdapter(client httpretry.HTTPDoer) *HotfrogAdapter {
	if client == nil {
		client = httpretry.New(nil, 2)
	}
	return &HotfrogAdapter{
		baseURL: "https://www.hotfrog.com",
		client:  client,
	}
}

// Slug returns the catalog slug.
func (a *HotfrogAdapter) Slug() string { return "hotfrog" }

// IsConfigured is always true: the scraper needs no credentials.
func (a *HotfrogAdapter) IsConfigured() bool { return true }

// Submit is unsupported; Hotfrog listings are created by hand.
func (a *HotfrogAdapter) Submit(ctx context.Context, loc *domain.NormalizedLocation) (*SubmitResult, error) {
	return &SubmitResult{
		Success: false,
		Message: "Hotfrog has no submission API; create the listing manually at hotfrog.com/add-business",
	}, nil
}

// Update is unsupported for the same reason as Submit.
func (a *HotfrogAdapter) Update(ctx context.Context, externalID string, loc *domain.NormalizedLocation) (*UpdateResult, error) {
	return &UpdateResult{
		Success: false,
		Message: "Hotfrog listings can only be edited manually",
	}, nil
}

// businessNameSelectors are tried in order against the listing page. The
// markup shifts between Hotfrog redesigns, so several generations of
// selector are kept.
var businessNameSelectors = []string{
	`h1[itemprop="name"]`,
	"h1.business-name",
	".company-header h1",
	"h1",
}

// Verify fetches the public listing page at /company/<externalID> and looks
// for a business name heading. A 404 or 410 means the listing is gone.
func (a *HotfrogAdapter) Verify(ctx context.Context, externalID string) (*VerifyResult, error) {
	pageURL := a.baseURL + "/company/" + strings.TrimPrefix(externalID, "/")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; citation-engine/1.0)")

	resp, err := a.client.Do(req)
	if err != nil {
		return &VerifyResult{Success: false, Status: StatusError, Message: fmt.Sprintf("Hotfrog fetch failed: %v", err)}, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
		return &VerifyResult{Success: true, Status: StatusNotFound}, nil
	}
	if resp.StatusCode >= 400 {
		return &VerifyResult{Success: false, Status: StatusError, Message: fmt.Sprintf("Hotfrog returned %d", resp.StatusCode)}, nil
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return &VerifyResult{Success: false, Status: StatusError, Message: fmt.Sprintf("Hotfrog parse failed: %v", err)}, nil
	}

	for _, sel := range businessNameSelectors {
		if name := strings.TrimSpace(doc.Find(sel).First().Text()); name != "" {
			return &VerifyResult{
				Success:     true,
				Status:      StatusVerified,
				ExternalURL: pageURL,
				Message:     "listing live as " + name,
			}, nil
		}
	}

	// Page exists but none of the known selectors matched; treat as pending
	// rather than gone so an operator can look at it.
	return &VerifyResult{
		Success:     true,
		Status:      StatusPending,
		ExternalURL: pageURL,
		Message:     "listing page fetched but no business name found (selector drift?)",
	}, nil
}

// Delete is unsupported; Hotfrog removals go through their support form.
func (a *HotfrogAdapter) Delete(ctx context.Context, externalID string) (*DeleteResult, error) {
	return &DeleteResult{
		Success: false,
		Message: "Hotfrog listings can only be removed via their support form",
	}, nil
}
