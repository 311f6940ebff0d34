package provider

import "github.com/ignite/citation-engine/internal/domain"

// Catalog returns the static provider descriptors. Seeded once at boot;
// operators toggle Enabled, nothing else changes at runtime.
//
// Rate limits are advisory metadata carried for operators and dashboards;
// no limiter enforces them.
func Catalog() []domain.Provider {
	return []domain.Provider{
		{
			Slug:          "yext",
			Name:          "Yext",
			Tier:          domain.TierAggregator,
			AuthMethod:    domain.AuthAPIKey,
			RatePerMinute: 60,
			RatePerDay:    5000,
			Enabled:       true,
		},
		{
			Slug:          "foursquare",
			Name:          "Foursquare",
			Tier:          domain.TierDirectAPI,
			AuthMethod:    domain.AuthOAuth2,
			RatePerMinute: 30,
			RatePerDay:    2500,
			Enabled:       true,
		},
		{
			Slug:          "bingplaces",
			Name:          "Bing Places for Business",
			Tier:          domain.TierDirectAPI,
			AuthMethod:    domain.AuthAPIKey,
			RatePerMinute: 20,
			RatePerDay:    1000,
			Enabled:       true,
		},
		{
			Slug:          "localeze",
			Name:          "Localeze",
			Tier:          domain.TierAggregator,
			AuthMethod:    domain.AuthAWSSigV4,
			RatePerMinute: 10,
			RatePerDay:    500,
			Enabled:       true,
		},
		{
			Slug:       "hotfrog",
			Name:       "Hotfrog",
			Tier:       domain.TierManual,
			AuthMethod: domain.AuthNone,
			Enabled:    false,
		},
		// Covered downstream by the Yext/Localeze aggregator feeds; listed
		// so coverage reporting can name them, never submitted to directly.
		{
			Slug:       "superpages",
			Name:       "Superpages",
			Tier:       domain.TierAggregatorCovered,
			AuthMethod: domain.AuthNone,
			Enabled:    true,
		},
		{
			Slug:       "citysearch",
			Name:       "Citysearch",
			Tier:       domain.TierAggregatorCovered,
			AuthMethod: domain.AuthNone,
			Enabled:    true,
		},
		{
			Slug:       "merchantcircle",
			Name:       "MerchantCircle",
			Tier:       domain.TierAggregatorCovered,
			AuthMethod: domain.AuthNone,
			Enabled:    true,
		},
	}
}
