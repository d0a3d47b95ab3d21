package config

import (
	"fmt"
	"net/url"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// AI provider identifiers.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Config holds all configuration for the audit engine.
// Configuration can come from a YAML file (config.yaml) or environment
// variables; environment variables always override YAML values. Secrets
// (the AI API key) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8270"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// DefaultFacility scopes dashboards when a request names no facility.
	DefaultFacility string `yaml:"default_facility" env:"DEFAULT_FACILITY" env-default:""`

	// CatalogPath optionally points at a YAML question catalog. Empty means
	// the built-in F880 catalog.
	CatalogPath string `yaml:"catalog_path" env:"CATALOG_PATH" env-default:""`

	Remote RemoteConfig `yaml:"remote"`
	Cache  CacheConfig  `yaml:"cache"`
	AI     AIConfig     `yaml:"ai"`
}

// RemoteConfig holds the remote sheet store configuration. An empty endpoint
// is a valid mode: the local cache becomes the sole storage.
type RemoteConfig struct {
	// Endpoint is the deployed sheet web-app URL. Takes precedence over any
	// endpoint previously stored in the local cache.
	Endpoint string `yaml:"endpoint" env:"REMOTE_SHEET_URL" env-default:""`

	// TimeoutSeconds bounds every remote fetch and push so an unreachable
	// endpoint cannot hang a round.
	TimeoutSeconds int `yaml:"timeout_seconds" env:"REMOTE_TIMEOUT_SECONDS" env-default:"5"`
}

// CacheConfig holds the local durable cache configuration.
type CacheConfig struct {
	// Path is the sqlite file backing the offline cache.
	Path string `yaml:"path" env:"CACHE_PATH" env-default:"audit-cache.db"`
}

// AIConfig holds the QAPI summarizer configuration. With no API key set the
// engine still runs; summaries degrade to a fixed placeholder.
type AIConfig struct {
	Provider string `yaml:"provider" env:"AI_PROVIDER" env-default:"openai"`
	BaseURL  string `yaml:"base_url" env:"AI_BASE_URL" env-default:""`
	Model    string `yaml:"model" env:"AI_MODEL" env-default:"gpt-4o-mini"`
	APIKey   string `yaml:"-" env:"AI_API_KEY"` // Secret - not in YAML
}

// Configured reports whether the AI service can be called at all.
func (c *AIConfig) Configured() bool {
	return c.APIKey != ""
}

// Load reads configuration from config.yaml with environment variable
// overrides. The version parameter is injected at build time and set on the
// returned Config. A missing config.yaml is not an error; defaults and
// environment variables apply.
func Load(version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if _, err := os.Stat("config.yaml"); err == nil {
		if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
			return nil, fmt.Errorf("failed to read config.yaml: %w", err)
		}
	} else {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Remote.Endpoint != "" {
		u, err := url.Parse(c.Remote.Endpoint)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("remote endpoint must be an absolute http(s) URL")
		}
	}
	if c.Remote.TimeoutSeconds <= 0 {
		return fmt.Errorf("remote timeout must be positive")
	}

	switch c.AI.Provider {
	case ProviderOpenAI, ProviderAnthropic:
	default:
		return fmt.Errorf("unknown AI provider: %s", c.AI.Provider)
	}

	if c.Cache.Path == "" {
		return fmt.Errorf("cache path is required")
	}

	return nil
}
