package provider

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"

	"github.com/ignite/citation-engine/internal/domain"
)

// LocationHash returns a stable short fingerprint of the normalized listing,
// used for change detection (not security). Field order is fixed and map
// keys are sorted, so semantically identical locations always hash the same
// regardless of construction order.
func LocationHash(loc *domain.NormalizedLocation) string {
	var b strings.Builder

	writeField := func(k, v string) {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(v)
		b.WriteByte('\n')
	}

	writeField("name", loc.BusinessName)
	writeField("street", loc.Street)
	writeField("city", loc.City)
	writeField("state", loc.State)
	writeField("zip", loc.Zip)
	writeField("country", loc.Country)
	writeField("phone", loc.Phone)
	writeField("email", loc.Email)
	writeField("website", loc.Website)
	writeField("description", loc.Description)
	writeField("categories", strings.Join(loc.Categories, "|"))
	writeField("logo", loc.LogoURL)
	writeField("images", strings.Join(loc.ImageURLs, "|"))

	for _, day := range sortedKeys(loc.Hours) {
		h := loc.Hours[day]
		writeField("hours."+day, h.Open+"-"+h.Close)
	}
	for _, platform := range sortedKeys(loc.SocialLinks) {
		writeField("social."+platform, loc.SocialLinks[platform])
	}

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])[:16]
}

// HashBrandRecord fingerprints a raw brand record through normalization.
// Equivalent to LocationHash(Normalize(rec)).
func HashBrandRecord(rec *domain.BrandRecord) string {
	return LocationHash(Normalize(rec))
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
