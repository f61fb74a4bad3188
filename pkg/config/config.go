package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for the scout-engine client.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values.
type Config struct {
	// APIBaseURL is the base URL of the Location Scout backend.
	APIBaseURL string `yaml:"api_base_url" env:"SCOUT_API_BASE_URL" env-default:"http://localhost:8000"`

	// ClientID addresses this client's event stream channel. Auto-generated
	// at load time if empty.
	ClientID string `yaml:"client_id" env:"SCOUT_CLIENT_ID" env-default:""`

	Env     string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version string `yaml:"-"` // Set at load time, not from config

	// HTTPTimeoutSeconds bounds the request/response API calls. It does not
	// apply to the event stream, which is long-lived by design.
	HTTPTimeoutSeconds int `yaml:"http_timeout_seconds" env:"SCOUT_HTTP_TIMEOUT_SECONDS" env-default:"30"`

	Search SearchConfig `yaml:"search"`
	Stream StreamConfig `yaml:"stream"`
}

// SearchConfig holds defaults for starting a location search.
type SearchConfig struct {
	// SourcesStr is a comma-separated list of search sources.
	SourcesStr string `yaml:"sources" env:"SCOUT_SEARCH_SOURCES" env-default:"airbnb,google"`

	// Sources is the parsed form of SourcesStr (not read from config).
	Sources []string `yaml:"-"`

	// MaxResults caps how many candidate locations a search returns.
	MaxResults int `yaml:"max_results" env:"SCOUT_SEARCH_MAX_RESULTS" env-default:"20"`
}

// StreamConfig holds reconnect behavior for the event stream supervisor.
type StreamConfig struct {
	// ReconnectInitialDelayMS is the first backoff delay after a dropped stream.
	ReconnectInitialDelayMS int `yaml:"reconnect_initial_delay_ms" env:"SCOUT_STREAM_RECONNECT_INITIAL_DELAY_MS" env-default:"500"`

	// ReconnectMaxDelayMS caps the backoff delay.
	ReconnectMaxDelayMS int `yaml:"reconnect_max_delay_ms" env:"SCOUT_STREAM_RECONNECT_MAX_DELAY_MS" env-default:"30000"`

	// HealthyAfterMS is how long a connection must stay up before the
	// backoff resets to the initial delay.
	HealthyAfterMS int `yaml:"healthy_after_ms" env:"SCOUT_STREAM_HEALTHY_AFTER_MS" env-default:"10000"`
}

// ReconnectInitialDelay returns the configured delay as a duration.
func (c *StreamConfig) ReconnectInitialDelay() time.Duration {
	return time.Duration(c.ReconnectInitialDelayMS) * time.Millisecond
}

// ReconnectMaxDelay returns the configured cap as a duration.
func (c *StreamConfig) ReconnectMaxDelay() time.Duration {
	return time.Duration(c.ReconnectMaxDelayMS) * time.Millisecond
}

// HealthyAfter returns the configured healthy threshold as a duration.
func (c *StreamConfig) HealthyAfter() time.Duration {
	return time.Duration(c.HealthyAfterMS) * time.Millisecond
}

// HTTPTimeout returns the API call timeout as a duration.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSeconds) * time.Second
}

// Load reads configuration from config.yaml with environment variable
// overrides. A missing config.yaml is not an error; env vars and defaults
// apply alone in that case. The version parameter is injected at build time
// and set on the returned Config.
func Load(version string) (*Config, error) {
	return LoadFrom("config.yaml", version)
}

// LoadFrom is Load with an explicit config file path.
func LoadFrom(path, version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	} else {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	}

	if err := cfg.parseComplexFields(); err != nil {
		return nil, fmt.Errorf("failed to parse config fields: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	// Each process gets its own stream channel unless pinned explicitly
	if cfg.ClientID == "" {
		cfg.ClientID = uuid.NewString()
	}

	return cfg, nil
}

// parseComplexFields handles fields that need post-processing after loading.
func (c *Config) parseComplexFields() error {
	c.Search.Sources = parseSources(c.Search.SourcesStr)
	return nil
}

func (c *Config) validate() error {
	if !strings.HasPrefix(c.APIBaseURL, "http://") && !strings.HasPrefix(c.APIBaseURL, "https://") {
		return fmt.Errorf("api_base_url must be an http(s) URL, got %q", c.APIBaseURL)
	}
	if c.HTTPTimeoutSeconds <= 0 {
		return fmt.Errorf("http_timeout_seconds must be positive")
	}
	if c.Stream.ReconnectInitialDelayMS <= 0 || c.Stream.ReconnectMaxDelayMS < c.Stream.ReconnectInitialDelayMS {
		return fmt.Errorf("stream reconnect delays must be positive and max >= initial")
	}
	return nil
}

// parseSources parses the comma-separated sources string into a list.
func parseSources(value string) []string {
	var sources []string
	for _, s := range strings.Split(value, ",") {
		if s = strings.TrimSpace(s); s != "" {
			sources = append(sources, s)
		}
	}
	return sources
}
