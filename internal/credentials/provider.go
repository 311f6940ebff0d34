package credentials

import (
	"context"

	"github.com/ignite/citation-engine/internal/config"
	"github.com/ignite/citation-engine/internal/provider"
)

// ForProviders assembles the adapter credential set. Values already present
// in config (yaml or env override) are kept; anything still blank is asked
// of the resolver, which covers the Vault-managed deployments.
func ForProviders(ctx context.Context, cfg *config.Config, r Resolver) provider.Credentials {
	pick := func(have, name string) string {
		if have != "" {
			return have
		}
		return r.Lookup(ctx, name)
	}

	return provider.Credentials{
		YextAPIKey:    pick(cfg.Yext.APIKey, "YEXT_API_KEY"),
		YextAccountID: pick(cfg.Yext.AccountID, "YEXT_ACCOUNT_ID"),

		FoursquareClientID:     pick(cfg.Foursquare.ClientID, "FOURSQUARE_CLIENT_ID"),
		FoursquareClientSecret: pick(cfg.Foursquare.ClientSecret, "FOURSQUARE_CLIENT_SECRET"),

		BingSubscriptionKey: pick(cfg.Bing.SubscriptionKey, "BING_SUBSCRIPTION_KEY"),
		BingStoreID:         pick(cfg.Bing.StoreID, "BING_STORE_ID"),

		LocalezeAccessKey: pick(cfg.Localeze.AccessKey, "LOCALEZE_ACCESS_KEY"),
		LocalezeSecretKey: pick(cfg.Localeze.SecretKey, "LOCALEZE_SECRET_KEY"),
		LocalezeRegion:    pick(cfg.Localeze.Region, "LOCALEZE_REGION"),
		LocalezeBucket:    pick(cfg.Localeze.Bucket, "LOCALEZE_BUCKET"),
	}
}
