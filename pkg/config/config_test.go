package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"SCOUT_API_BASE_URL", "SCOUT_CLIENT_ID", "ENVIRONMENT",
		"SCOUT_HTTP_TIMEOUT_SECONDS", "SCOUT_SEARCH_SOURCES",
		"SCOUT_SEARCH_MAX_RESULTS",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadFrom_YAMLValues(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
api_base_url: "https://scout.example.com"
env: "production"
http_timeout_seconds: 10
search:
  sources: "google"
  max_results: 5
stream:
  reconnect_initial_delay_ms: 250
  reconnect_max_delay_ms: 5000
`)

	cfg, err := LoadFrom(path, "1.2.3")
	require.NoError(t, err)

	assert.Equal(t, "https://scout.example.com", cfg.APIBaseURL)
	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, "1.2.3", cfg.Version)
	assert.Equal(t, []string{"google"}, cfg.Search.Sources)
	assert.Equal(t, 5, cfg.Search.MaxResults)
	assert.Equal(t, 250, cfg.Stream.ReconnectInitialDelayMS)
}

func TestLoadFrom_EnvOverridesYAML(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
api_base_url: "http://yaml.example.com"
search:
  sources: "airbnb"
`)

	t.Setenv("SCOUT_API_BASE_URL", "http://env.example.com")
	t.Setenv("SCOUT_SEARCH_SOURCES", "google, airbnb")

	cfg, err := LoadFrom(path, "test")
	require.NoError(t, err)

	assert.Equal(t, "http://env.example.com", cfg.APIBaseURL)
	assert.Equal(t, []string{"google", "airbnb"}, cfg.Search.Sources)
}

func TestLoadFrom_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"), "test")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000", cfg.APIBaseURL)
	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, []string{"airbnb", "google"}, cfg.Search.Sources)
	assert.Equal(t, 20, cfg.Search.MaxResults)
	assert.Equal(t, 500, cfg.Stream.ReconnectInitialDelayMS)
}

func TestLoadFrom_GeneratesClientID(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	first, err := LoadFrom(filepath.Join(dir, "nope.yaml"), "test")
	require.NoError(t, err)
	second, err := LoadFrom(filepath.Join(dir, "nope.yaml"), "test")
	require.NoError(t, err)

	assert.NotEmpty(t, first.ClientID)
	assert.NotEqual(t, first.ClientID, second.ClientID)

	t.Setenv("SCOUT_CLIENT_ID", "pinned")
	pinned, err := LoadFrom(filepath.Join(dir, "nope.yaml"), "test")
	require.NoError(t, err)
	assert.Equal(t, "pinned", pinned.ClientID)
}

func TestLoadFrom_RejectsBadBaseURL(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `api_base_url: "ftp://nope"`)

	_, err := LoadFrom(path, "test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api_base_url")
}

func TestLoadFrom_RejectsBadReconnectDelays(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
stream:
  reconnect_initial_delay_ms: 5000
  reconnect_max_delay_ms: 100
`)

	_, err := LoadFrom(path, "test")
	require.Error(t, err)
}
