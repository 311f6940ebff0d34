// Package credentials resolves provider API credentials. Resolution is
// env-first: an explicitly set environment variable always wins, and a
// Vault KV-v2 store fills the gaps when one is configured. Vault reads are
// cached with a short TTL so drain cycles don't hammer the secret backend.
package credentials

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	vault "github.com/hashicorp/vault/api"
)

const cacheTTL = 5 * time.Minute

// Resolver looks up credential values by name.
type Resolver interface {
	Lookup(ctx context.Context, name string) string
}

// EnvResolver resolves from process environment variables only.
type EnvResolver struct{}

func (EnvResolver) Lookup(_ context.Context, name string) string {
	return os.Getenv(name)
}

// VaultResolver resolves from environment first, then a Vault KV-v2 secret
// where each credential name is a key. Missing keys resolve to "" so a
// partially configured deployment degrades to unconfigured adapters rather
// than failing startup.
type VaultResolver struct {
	client     *vault.Client
	secretPath string

	mu    sync.RWMutex
	cache map[string]cachedSecret
}

type cachedSecret struct {
	value     string
	expiresAt time.Time
}

// NewVaultResolver builds a resolver over VAULT_ADDR/VAULT_TOKEN. The
// secretPath is "mount/path" within KV-v2, e.g. "secret/citation-providers".
func NewVaultResolver(secretPath string) (*VaultResolver, error) {
	cfg := vault.DefaultConfig()
	if err := cfg.ReadEnvironment(); err != nil {
		return nil, fmt.Errorf("vault config: %w", err)
	}

	client, err := vault.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("vault client: %w", err)
	}
	if tok := os.Getenv("VAULT_TOKEN"); tok != "" {
		client.SetToken(tok)
	}

	return &VaultResolver{
		client:     client,
		secretPath: secretPath,
		cache:      make(map[string]cachedSecret),
	}, nil
}

func (r *VaultResolver) Lookup(ctx context.Context, name string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}

	r.mu.RLock()
	if c, ok := r.cache[name]; ok && time.Now().Before(c.expiresAt) {
		r.mu.RUnlock()
		return c.value
	}
	r.mu.RUnlock()

	v, err := r.fetch(ctx, name)
	if err != nil {
		log.Printf("[Credentials] Vault lookup %s: %v", name, err)
		return ""
	}

	r.mu.Lock()
	r.cache[name] = cachedSecret{value: v, expiresAt: time.Now().Add(cacheTTL)}
	r.mu.Unlock()
	return v
}

func (r *VaultResolver) fetch(ctx context.Context, name string) (string, error) {
	mount, rel := splitMount(r.secretPath)
	sec, err := r.client.KVv2(mount).Get(ctx, rel)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", r.secretPath, err)
	}

	raw, ok := sec.Data[name]
	if !ok {
		// Absent key means the credential simply isn't provisioned.
		return "", nil
	}
	v, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("key %s in %s is not a string", name, r.secretPath)
	}
	return v, nil
}

func splitMount(p string) (mount, rel string) {
	parts := strings.SplitN(p, "/", 2)
	mount = parts[0]
	if len(parts) == 2 {
		rel = parts[1]
	}
	return
}
