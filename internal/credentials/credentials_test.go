package credentials

import (
	"context"
	"testing"

	"github.com/ignite/citation-engine/internal/config"
)

type mapResolver map[string]string

func (m mapResolver) Lookup(_ context.Context, name string) string { return m[name] }

func TestEnvResolverLookup(t *testing.T) {
	t.Setenv("YEXT_API_KEY", "env-yext-key")

	r := EnvResolver{}
	if got := r.Lookup(context.Background(), "YEXT_API_KEY"); got != "env-yext-key" {
		t.Errorf("Lookup = %q", got)
	}
	if got := r.Lookup(context.Background(), "MISSING_CRED_VAR"); got != "" {
		t.Errorf("missing var should resolve empty, got %q", got)
	}
}

func TestForProvidersConfigWins(t *testing.T) {
	cfg := &config.Config{}
	cfg.Yext.APIKey = "file-key"
	cfg.Localeze.Region = "us-east-1"

	r := mapResolver{
		"YEXT_API_KEY":          "vault-key",
		"YEXT_ACCOUNT_ID":       "vault-account",
		"BING_SUBSCRIPTION_KEY": "vault-bing",
	}

	creds := ForProviders(context.Background(), cfg, r)

	// Config values are kept; only blanks fall through to the resolver.
	if creds.YextAPIKey != "file-key" {
		t.Errorf("YextAPIKey = %q, want the config value", creds.YextAPIKey)
	}
	if creds.YextAccountID != "vault-account" {
		t.Errorf("YextAccountID = %q, want the resolver value", creds.YextAccountID)
	}
	if creds.BingSubscriptionKey != "vault-bing" {
		t.Errorf("BingSubscriptionKey = %q", creds.BingSubscriptionKey)
	}
	if creds.LocalezeRegion != "us-east-1" {
		t.Errorf("LocalezeRegion = %q", creds.LocalezeRegion)
	}
	if creds.FoursquareClientID != "" {
		t.Errorf("unprovisioned credential should stay blank, got %q", creds.FoursquareClientID)
	}
}

func TestSplitMount(t *testing.T) {
	tests := []struct {
		path, mount, rel string
	}{
		{"secret/citation-providers", "secret", "citation-providers"},
		{"kv/team/citations", "kv", "team/citations"},
		{"secret", "secret", ""},
	}

	for _, tt := range tests {
		mount, rel := splitMount(tt.path)
		if mount != tt.mount || rel != tt.rel {
			t.Errorf("splitMount(%q) = (%q, %q), want (%q, %q)", tt.path, mount, rel, tt.mount, tt.rel)
		}
	}
}
