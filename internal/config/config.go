package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Worker     WorkerConfig     `yaml:"worker"`
	Vault      VaultConfig      `yaml:"vault"`
	Yext       YextConfig       `yaml:"yext"`
	Foursquare FoursquareConfig `yaml:"foursquare"`
	Bing       BingConfig       `yaml:"bing"`
	Localeze   LocalezeConfig   `yaml:"localeze"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DatabaseConfig holds PostgreSQL connection settings
type DatabaseConfig struct {
	URL          string `yaml:"url"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
}

// RedisConfig holds Redis settings used for the drain lock. Optional:
// with no address the worker falls back to a PG advisory lock.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// WorkerConfig holds drain worker settings
type WorkerConfig struct {
	DrainIntervalSeconds int `yaml:"drain_interval_seconds"`
	DrainBatchSize       int `yaml:"drain_batch_size"`
	MaxAttempts          int `yaml:"max_attempts"`
	HTTPTimeoutSeconds   int `yaml:"http_timeout_seconds"`
	HTTPMaxRetries       int `yaml:"http_max_retries"`
}

// VaultConfig holds the optional secret store settings. Addr and token come
// from VAULT_ADDR/VAULT_TOKEN; only the secret path lives here.
type VaultConfig struct {
	Enabled    bool   `yaml:"enabled"`
	SecretPath string `yaml:"secret_path"`
}

// YextConfig holds Yext API settings
type YextConfig struct {
	APIKey    string `yaml:"api_key"`
	AccountID string `yaml:"account_id"`
}

// FoursquareConfig holds Foursquare Places OAuth settings
type FoursquareConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
}

// BingConfig holds Bing Places settings
type BingConfig struct {
	SubscriptionKey string `yaml:"subscription_key"`
	StoreID         string `yaml:"store_id"`
}

// LocalezeConfig holds the S3 feed drop settings
type LocalezeConfig struct {
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Region    string `yaml:"region"`
	Bucket    string `yaml:"bucket"`
}

// DrainInterval returns the worker tick interval as a duration.
func (w WorkerConfig) DrainInterval() time.Duration {
	return time.Duration(w.DrainIntervalSeconds) * time.Second
}

// HTTPTimeout returns the outbound HTTP timeout as a duration.
func (w WorkerConfig) HTTPTimeout() time.Duration {
	return time.Duration(w.HTTPTimeoutSeconds) * time.Second
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 20
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Worker.DrainIntervalSeconds == 0 {
		cfg.Worker.DrainIntervalSeconds = 30
	}
	if cfg.Worker.DrainBatchSize == 0 {
		cfg.Worker.DrainBatchSize = 25
	}
	if cfg.Worker.MaxAttempts == 0 {
		cfg.Worker.MaxAttempts = 3
	}
	if cfg.Worker.HTTPTimeoutSeconds == 0 {
		cfg.Worker.HTTPTimeoutSeconds = 30
	}
	if cfg.Worker.HTTPMaxRetries == 0 {
		cfg.Worker.HTTPMaxRetries = 3
	}
	if cfg.Localeze.Region == "" {
		cfg.Localeze.Region = "us-east-1"
	}
	if cfg.Vault.SecretPath == "" {
		cfg.Vault.SecretPath = "secret/citation-providers"
	}
}

// LoadFromEnv loads configuration with environment variable overrides.
// It automatically loads a .env file (if present) before reading env vars,
// so secrets can live in .env locally and in real env vars in deployment.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = p
		}
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("VAULT_SECRET_PATH"); v != "" {
		cfg.Vault.Enabled = true
		cfg.Vault.SecretPath = v
	}

	if v := os.Getenv("YEXT_API_KEY"); v != "" {
		cfg.Yext.APIKey = v
	}
	if v := os.Getenv("YEXT_ACCOUNT_ID"); v != "" {
		cfg.Yext.AccountID = v
	}
	if v := os.Getenv("FOURSQUARE_CLIENT_ID"); v != "" {
		cfg.Foursquare.ClientID = v
	}
	if v := os.Getenv("FOURSQUARE_CLIENT_SECRET"); v != "" {
		cfg.Foursquare.ClientSecret = v
	}
	if v := os.Getenv("BING_SUBSCRIPTION_KEY"); v != "" {
		cfg.Bing.SubscriptionKey = v
	}
	if v := os.Getenv("BING_STORE_ID"); v != "" {
		cfg.Bing.StoreID = v
	}
	if v := os.Getenv("LOCALEZE_ACCESS_KEY"); v != "" {
		cfg.Localeze.AccessKey = v
	}
	if v := os.Getenv("LOCALEZE_SECRET_KEY"); v != "" {
		cfg.Localeze.SecretKey = v
	}
	if v := os.Getenv("LOCALEZE_REGION"); v != "" {
		cfg.Localeze.Region = v
	}
	if v := os.Getenv("LOCALEZE_BUCKET"); v != "" {
		cfg.Localeze.Bucket = v
	}

	return cfg, nil
}
