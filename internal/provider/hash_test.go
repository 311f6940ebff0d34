package provider

import (
	"testing"

	"github.com/ignite/citation-engine/internal/domain"
)

func baseLocation() *domain.NormalizedLocation {
	return &domain.NormalizedLocation{
		BusinessName: "Acme Plumbing",
		Street:       "123 Main St",
		City:         "Austin",
		State:        "TX",
		Zip:          "78701",
		Country:      "US",
		Phone:        "+15125550100",
		Categories:   []string{"plumber", "home services"},
		Hours: map[string]domain.DayHours{
			"monday":  {Open: "08:00", Close: "17:00"},
			"tuesday": {Open: "08:00", Close: "17:00"},
		},
		SocialLinks: map[string]string{
			"facebook": "https://facebook.com/acme",
			"twitter":  "https://twitter.com/acme",
		},
	}
}

func TestLocationHashStable(t *testing.T) {
	h1 := LocationHash(baseLocation())
	h2 := LocationHash(baseLocation())
	if h1 != h2 {
		t.Errorf("hash not stable: %s vs %s", h1, h2)
	}
	if len(h1) != 16 {
		t.Errorf("hash length = %d, want 16", len(h1))
	}
}

func TestLocationHashMapOrderIndependent(t *testing.T) {
	a := baseLocation()

	// Rebuild the maps in a different insertion order.
	b := baseLocation()
	b.Hours = map[string]domain.DayHours{
		"tuesday": {Open: "08:00", Close: "17:00"},
		"monday":  {Open: "08:00", Close: "17:00"},
	}
	b.SocialLinks = map[string]string{
		"twitter":  "https://twitter.com/acme",
		"facebook": "https://facebook.com/acme",
	}

	if LocationHash(a) != LocationHash(b) {
		t.Error("hash should not depend on map insertion order")
	}
}

func TestLocationHashDetectsChanges(t *testing.T) {
	base := LocationHash(baseLocation())

	changes := map[string]func(*domain.NormalizedLocation){
		"phone":    func(l *domain.NormalizedLocation) { l.Phone = "+15125550199" },
		"street":   func(l *domain.NormalizedLocation) { l.Street = "456 Oak Ave" },
		"category": func(l *domain.NormalizedLocation) { l.Categories = append(l.Categories, "hvac") },
		"hours":    func(l *domain.NormalizedLocation) { l.Hours["monday"] = domain.DayHours{Open: "09:00", Close: "17:00"} },
		"social":   func(l *domain.NormalizedLocation) { delete(l.SocialLinks, "twitter") },
	}

	for name, mutate := range changes {
		loc := baseLocation()
		mutate(loc)
		if LocationHash(loc) == base {
			t.Errorf("%s change not reflected in hash", name)
		}
	}
}

func TestHashBrandRecordMatchesNormalized(t *testing.T) {
	rec := &domain.BrandRecord{
		BusinessName: "Acme Plumbing",
		Street:       "123 Main St",
		City:         "Austin",
		State:        "TX",
		Zip:          "78701",
		Country:      "US",
		Phone:        "(512) 555-0100",
	}
	if HashBrandRecord(rec) != LocationHash(Normalize(rec)) {
		t.Error("HashBrandRecord should equal LocationHash over the normalized record")
	}
}

func TestHashBrandRecordPhoneFormatInsensitive(t *testing.T) {
	a := &domain.BrandRecord{BusinessName: "Acme", City: "Austin", Phone: "(512) 555-0100"}
	b := &domain.BrandRecord{BusinessName: "Acme", City: "Austin", Phone: "512-555-0100"}
	if HashBrandRecord(a) != HashBrandRecord(b) {
		t.Error("equivalent phone formats should hash the same after normalization")
	}
}
