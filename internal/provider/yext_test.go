package provider

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ignite/citation-engine/internal/domain"
)

func testYextLocation() *domain.NormalizedLocation {
	return &domain.NormalizedLocation{
		BusinessName: "Acme Plumbing",
		Street:       "123 Main St",
		City:         "Austin",
		State:        "TX",
		Zip:          "78701",
		Country:      "US",
		Phone:        "+15125550100",
		Website:      "https://acmeplumbing.com",
	}
}

func newTestYextAdapter(serverURL string) *YextAdapter {
	a := NewYextAdapter("test-key", "acct-1", http.DefaultClient)
	a.baseURL = serverURL
	return a
}

func TestYextSubmitCreates(t *testing.T) {
	var createdPayload yextLocation
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("api_key") != "test-key" {
			t.Errorf("missing api_key query param")
		}
		if r.URL.Query().Get("v") == "" {
			t.Errorf("missing v query param")
		}

		switch {
		case strings.Contains(r.URL.Path, "locationsearch"):
			w.Write([]byte(`{"response":{"locations":[]}}`))
		case r.Method == http.MethodPost:
			body, _ := io.ReadAll(r.Body)
			json.Unmarshal(body, &createdPayload)
			w.Write([]byte(`{"response":{"id":"loc-99","listingUrl":"https://yext.com/l/loc-99"}}`))
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	}))
	defer server.Close()

	a := newTestYextAdapter(server.URL)
	res, err := a.Submit(context.Background(), testYextLocation())
	if err != nil {
		t.Fatalf("Submit error: %v", err)
	}
	if !res.Success || res.Matched {
		t.Errorf("result = %+v, want fresh create", res)
	}
	if res.ExternalID != "loc-99" {
		t.Errorf("ExternalID = %q, want loc-99", res.ExternalID)
	}
	if createdPayload.Phone != "+15125550100" {
		t.Errorf("outbound phone = %q, want normalized form", createdPayload.Phone)
	}
	if createdPayload.LocationName != "Acme Plumbing" {
		t.Errorf("outbound name = %q", createdPayload.LocationName)
	}
}

func TestYextSubmitSearchFailureStillCreates(t *testing.T) {
	created := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "locationsearch") {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		created = true
		w.Write([]byte(`{"response":{"id":"loc-7"}}`))
	}))
	defer server.Close()

	// A broken search endpoint must not block the submit itself.
	a := newTestYextAdapter(server.URL)
	res, err := a.Submit(context.Background(), testYextLocation())
	if err != nil {
		t.Fatalf("Submit error: %v", err)
	}
	if !res.Success || res.Matched {
		t.Errorf("result = %+v, want fresh create", res)
	}
	if !created {
		t.Error("create call never happened")
	}
}

func TestYextSubmitMatchesExisting(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "locationsearch") {
			w.Write([]byte(`{"response":{"locations":[
				{"id":"loc-1","locationName":"ACME PLUMBING","listingUrl":"https://yext.com/l/loc-1"},
				{"id":"loc-2","locationName":"Other Business"}
			]}}`))
			return
		}
		t.Errorf("no create call expected on match, got %s %s", r.Method, r.URL.Path)
	}))
	defer server.Close()

	a := newTestYextAdapter(server.URL)
	res, err := a.Submit(context.Background(), testYextLocation())
	if err != nil {
		t.Fatalf("Submit error: %v", err)
	}
	if !res.Success || !res.Matched {
		t.Errorf("result = %+v, want matched existing", res)
	}
	if res.ExternalID != "loc-1" {
		t.Errorf("ExternalID = %q, want case-insensitive name match loc-1", res.ExternalID)
	}
}

func TestYextUpdateOmitsBlankFields(t *testing.T) {
	var raw map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			t.Errorf("method = %s, want PATCH", r.Method)
		}
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &raw)
		w.Write([]byte(`{"response":{}}`))
	}))
	defer server.Close()

	loc := testYextLocation()
	loc.Description = "" // must not appear in the PATCH body

	a := newTestYextAdapter(server.URL)
	res, err := a.Update(context.Background(), "loc-1", loc)
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if !res.Success {
		t.Fatalf("result = %+v", res)
	}

	// A blank field PATCHed to Yext deletes it server-side, so blank fields
	// must be absent from the payload entirely.
	for _, key := range []string{"description", "id", "logoUrl"} {
		if _, present := raw[key]; present {
			t.Errorf("blank field %q present in PATCH body", key)
		}
	}
	if raw["locationName"] != "Acme Plumbing" {
		t.Errorf("locationName = %v", raw["locationName"])
	}
}

func TestYextVerifyNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"meta":{"errors":[{"message":"location not found","code":2000}]}}`))
	}))
	defer server.Close()

	a := newTestYextAdapter(server.URL)
	res, err := a.Verify(context.Background(), "gone")
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	// 404 is a normal outcome, not a transport failure.
	if !res.Success {
		t.Errorf("Success = false, want true for a clean 404")
	}
	if res.Status != StatusNotFound {
		t.Errorf("Status = %q, want %q", res.Status, StatusNotFound)
	}
}

func TestYextSubmitAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "locationsearch") {
			w.Write([]byte(`{"response":{"locations":[]}}`))
			return
		}
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"meta":{"errors":[{"message":"invalid categoryIds","code":400}]}}`))
	}))
	defer server.Close()

	a := newTestYextAdapter(server.URL)
	res, err := a.Submit(context.Background(), testYextLocation())
	if err != nil {
		t.Fatalf("Submit error: %v", err)
	}
	if res.Success {
		t.Error("Success = true, want typed failure")
	}
	if !strings.Contains(res.Err, "invalid categoryIds") {
		t.Errorf("Err = %q, want provider message surfaced", res.Err)
	}
}

func TestYextNotConfigured(t *testing.T) {
	a := NewYextAdapter("", "", nil)
	if a.IsConfigured() {
		t.Error("adapter with no credentials should not report configured")
	}
	if _, err := a.Submit(context.Background(), testYextLocation()); err == nil {
		t.Error("Submit without credentials should error")
	}
}
