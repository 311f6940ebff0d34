package provider

import (
	"context"
	"testing"

	"github.com/ignite/citation-engine/internal/domain"
)

// stubAdapter is a minimal adapter for registry tests.
type stubAdapter struct {
	slug       string
	configured bool
}

func (s *stubAdapter) Slug() string       { return s.slug }
func (s *stubAdapter) IsConfigured() bool { return s.configured }
func (s *stubAdapter) Submit(context.Context, *domain.NormalizedLocation) (*SubmitResult, error) {
	return &SubmitResult{Success: true}, nil
}
func (s *stubAdapter) Update(context.Context, string, *domain.NormalizedLocation) (*UpdateResult, error) {
	return &UpdateResult{Success: true}, nil
}
func (s *stubAdapter) Verify(context.Context, string) (*VerifyResult, error) {
	return &VerifyResult{Success: true, Status: StatusVerified}, nil
}
func (s *stubAdapter) Delete(context.Context, string) (*DeleteResult, error) {
	return &DeleteResult{Success: true}, nil
}

func TestRegistryConfigured(t *testing.T) {
	reg := NewRegistry(Catalog(),
		&stubAdapter{slug: "yext", configured: true},
		&stubAdapter{slug: "foursquare", configured: false},
		&stubAdapter{slug: "bingplaces", configured: true},
		&stubAdapter{slug: "hotfrog", configured: true}, // disabled in catalog
	)

	configured := reg.Configured()
	slugs := make(map[string]bool, len(configured))
	for _, p := range configured {
		slugs[p.Slug] = true
	}

	if !slugs["yext"] || !slugs["bingplaces"] {
		t.Errorf("configured = %v, want yext and bingplaces present", slugs)
	}
	if slugs["foursquare"] {
		t.Error("unconfigured adapter should be excluded")
	}
	if slugs["hotfrog"] {
		t.Error("disabled provider should be excluded even with configured adapter")
	}
	if slugs["superpages"] {
		t.Error("adapterless provider should be excluded")
	}
}

func TestRegistryAdapterLookup(t *testing.T) {
	reg := NewRegistry(Catalog(),
		&stubAdapter{slug: "yext", configured: true},
		&stubAdapter{slug: "unknown-slug", configured: true},
	)

	if _, ok := reg.Adapter("yext"); !ok {
		t.Error("yext adapter should be registered")
	}
	if _, ok := reg.Adapter("superpages"); ok {
		t.Error("tier-4 provider should have no adapter")
	}
	if _, ok := reg.Adapter("unknown-slug"); ok {
		t.Error("adapter with out-of-catalog slug should be dropped")
	}
	if _, ok := reg.Provider("superpages"); !ok {
		t.Error("tier-4 provider should still be in the catalog")
	}
}

func TestRegistryStatusReportOrder(t *testing.T) {
	reg := NewRegistry(Catalog(), &stubAdapter{slug: "yext", configured: true})

	report := reg.StatusReport()
	if len(report) != len(Catalog()) {
		t.Fatalf("report rows = %d, want %d", len(report), len(Catalog()))
	}

	for i := 1; i < len(report); i++ {
		prev, cur := report[i-1], report[i]
		if cur.Tier < prev.Tier || (cur.Tier == prev.Tier && cur.Slug < prev.Slug) {
			t.Errorf("report not sorted by tier then slug at index %d: %v before %v", i, prev, cur)
		}
	}

	for _, row := range report {
		if row.Slug == "yext" {
			if !row.HasAdapter || !row.Configured {
				t.Errorf("yext row = %+v, want adapter and configured", row)
			}
		}
		if row.Slug == "superpages" && row.HasAdapter {
			t.Error("superpages should report no adapter")
		}
	}
}

func TestRegistryByTier(t *testing.T) {
	reg := NewRegistry(Catalog())
	byTier := reg.ByTier()

	if len(byTier[domain.TierDirectAPI]) != 2 {
		t.Errorf("tier 1 = %v, want foursquare and bingplaces", byTier[domain.TierDirectAPI])
	}
	if len(byTier[domain.TierAggregator]) != 2 {
		t.Errorf("tier 2 = %v, want yext and localeze", byTier[domain.TierAggregator])
	}
	if len(byTier[domain.TierAggregatorCovered]) != 3 {
		t.Errorf("tier 4 = %v, want 3 covered directories", byTier[domain.TierAggregatorCovered])
	}
}
