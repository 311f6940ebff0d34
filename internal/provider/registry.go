package provider

import (
	"sort"

	"github.com/ignite/citation-engine/internal/domain"
)

// Registry holds the provider catalog and the adapter for each slug that
// has one. It is constructed once at process start and injected into the
// orchestrator; read-only after construction, so safe for concurrent use.
type Registry struct {
	providers map[string]domain.Provider
	adapters  map[string]Adapter
	order     []string
}

// NewRegistry builds a registry from the catalog and the given adapters.
// Adapters whose slug is not in the catalog are ignored.
func NewRegistry(catalog []domain.Provider, adapters ...Adapter) *Registry {
	r := &Registry{
		providers: make(map[string]domain.Provider, len(catalog)),
		adapters:  make(map[string]Adapter),
		order:     make([]string, 0, len(catalog)),
	}
	for _, p := range catalog {
		r.providers[p.Slug] = p
		r.order = append(r.order, p.Slug)
	}
	for _, a := range adapters {
		if _, ok := r.providers[a.Slug()]; ok {
			r.adapters[a.Slug()] = a
		}
	}
	return r
}

// All returns every catalog provider in catalog order.
func (r *Registry) All() []domain.Provider {
	out := make([]domain.Provider, 0, len(r.order))
	for _, slug := range r.order {
		out = append(out, r.providers[slug])
	}
	return out
}

// Provider returns the descriptor for a slug.
func (r *Registry) Provider(slug string) (domain.Provider, bool) {
	p, ok := r.providers[slug]
	return p, ok
}

// Adapter returns the adapter for a slug, or false if the provider has no
// API adapter (tier 3/4 entries) or the slug is unknown.
func (r *Registry) Adapter(slug string) (Adapter, bool) {
	a, ok := r.adapters[slug]
	return a, ok
}

// Configured returns the enabled providers whose adapter reports complete
// credentials, in catalog order.
func (r *Registry) Configured() []domain.Provider {
	var out []domain.Provider
	for _, slug := range r.order {
		p := r.providers[slug]
		if !p.Enabled {
			continue
		}
		if a, ok := r.adapters[slug]; ok && a.IsConfigured() {
			out = append(out, p)
		}
	}
	return out
}

// ByTier groups catalog providers by tier, tiers sorted ascending.
func (r *Registry) ByTier() map[domain.ProviderTier][]domain.Provider {
	out := make(map[domain.ProviderTier][]domain.Provider)
	for _, slug := range r.order {
		p := r.providers[slug]
		out[p.Tier] = append(out[p.Tier], p)
	}
	return out
}

// ProviderStatus is one diagnostics row from StatusReport.
type ProviderStatus struct {
	Slug       string              `json:"slug"`
	Name       string              `json:"name"`
	Tier       domain.ProviderTier `json:"tier"`
	Enabled    bool                `json:"enabled"`
	HasAdapter bool                `json:"has_adapter"`
	Configured bool                `json:"configured"`
}

// StatusReport produces a diagnostics view of every provider, sorted by
// tier then slug.
func (r *Registry) StatusReport() []ProviderStatus {
	out := make([]ProviderStatus, 0, len(r.order))
	for _, slug := range r.order {
		p := r.providers[slug]
		st := ProviderStatus{
			Slug:    p.Slug,
			Name:    p.Name,
			Tier:    p.Tier,
			Enabled: p.Enabled,
		}
		if a, ok := r.adapters[slug]; ok {
			st.HasAdapter = true
			st.Configured = a.IsConfigured()
		}
		out = append(out, st)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Tier != out[j].Tier {
			return out[i].Tier < out[j].Tier
		}
		return out[i].Slug < out[j].Slug
	})
	return out
}
