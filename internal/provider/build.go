package provider

import "github.com/ignite/citation-engine/internal/pkg/httpretry"

// Credentials carries the resolved secrets every adapter needs. Resolution
// (env vars, credential store) happens in internal/credentials; this struct
// is just the handoff.
type Credentials struct {
	YextAPIKey    string
	YextAccountID string

	FoursquareClientID     string
	FoursquareClientSecret string

	BingSubscriptionKey string
	BingStoreID         string

	LocalezeAccessKey string
	LocalezeSecretKey string
	LocalezeRegion    string
	LocalezeBucket    string
}

// BuildRegistry constructs the full adapter set against the catalog. Every
// adapter is registered regardless of configuration; Registry.Configured
// filters at call time so a missing credential shows up in the status
// report instead of silently dropping the provider.
func BuildRegistry(creds Credentials, client httpretry.HTTPDoer) *Registry {
	return NewRegistry(Catalog(),
		NewYextAdapter(creds.YextAPIKey, creds.YextAccountID, client),
		NewFoursquareAdapter(creds.FoursquareClientID, creds.FoursquareClientSecret, client),
		NewBingPlacesAdapter(creds.BingSubscriptionKey, creds.BingStoreID, client),
		NewLocalezeAdapter(creds.LocalezeAccessKey, creds.LocalezeSecretKey, creds.LocalezeRegion, creds.LocalezeBucket),
		NewHotfrogAdapter(client),
	)
}
