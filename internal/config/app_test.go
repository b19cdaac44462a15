package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

var envKeys = []string{
	"BARBERTERM_API_URL",
	"BARBERTERM_TIMEOUT",
	"BARBERTERM_RETRY_COUNT",
	"BARBERTERM_RETRY_DELAY",
	"BARBERTERM_CACHE_TTL",
	"BARBERTERM_SESSION_TTL",
	"BARBERTERM_LOG_LEVEL",
	"BARBERTERM_MAX_SIGN_IN_ATTEMPTS",
	"BARBERTERM_DEBUG",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestLoadAppConfigDefaults(t *testing.T) {
	clearEnv(t)

	config, err := LoadAppConfig("")
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if config.APIURL != "http://localhost:3333" {
		t.Errorf("Expected default API URL 'http://localhost:3333', got '%s'", config.APIURL)
	}

	if config.Timeout != 30*time.Second {
		t.Errorf("Expected default timeout 30s, got %v", config.Timeout)
	}

	if config.RetryCount != 3 {
		t.Errorf("Expected default retry count 3, got %d", config.RetryCount)
	}

	if config.CacheTTL != 30*time.Second {
		t.Errorf("Expected default cache TTL 30s, got %v", config.CacheTTL)
	}

	if config.SessionTTL != 24*time.Hour {
		t.Errorf("Expected default session TTL 24h, got %v", config.SessionTTL)
	}

	if config.Level() != log.InfoLevel {
		t.Errorf("Expected info level, got %v", config.Level())
	}

	if config.MaxSignInAttempts != 5 {
		t.Errorf("Expected default max sign-in attempts 5, got %d", config.MaxSignInAttempts)
	}
}

func TestLoadAppConfigMissingFile(t *testing.T) {
	clearEnv(t)

	if _, err := LoadAppConfig(filepath.Join(t.TempDir(), "nope.yaml")); err != nil {
		t.Errorf("Expected a missing file to fall back to defaults, got %v", err)
	}
}

func TestLoadAppConfigFromFile(t *testing.T) {
	clearEnv(t)

	path := writeConfig(t, `
api_url: https://api.gobarber.example
timeout: 10s
retry_count: 1
cache_ttl: 1m
session_ttl: 2h
log_level: warn
`)

	config, err := LoadAppConfig(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if config.APIURL != "https://api.gobarber.example" {
		t.Errorf("Expected API URL from file, got '%s'", config.APIURL)
	}
	if config.Timeout != 10*time.Second {
		t.Errorf("Expected timeout 10s, got %v", config.Timeout)
	}
	if config.RetryCount != 1 {
		t.Errorf("Expected retry count 1, got %d", config.RetryCount)
	}
	if config.CacheTTL != time.Minute {
		t.Errorf("Expected cache TTL 1m, got %v", config.CacheTTL)
	}
	if config.SessionTTL != 2*time.Hour {
		t.Errorf("Expected session TTL 2h, got %v", config.SessionTTL)
	}
	if config.RetryDelay != 2*time.Second {
		t.Errorf("Expected unset keys to keep defaults, got retry delay %v", config.RetryDelay)
	}
	if config.Level() != log.WarnLevel {
		t.Errorf("Expected warn level, got %v", config.Level())
	}
}

func TestLoadAppConfigEnvOverridesFile(t *testing.T) {
	clearEnv(t)

	path := writeConfig(t, "api_url: https://from-file.example\nretry_count: 1\n")
	t.Setenv("BARBERTERM_API_URL", "http://localhost:4000")
	t.Setenv("BARBERTERM_RETRY_COUNT", "5")
	t.Setenv("BARBERTERM_TIMEOUT", "60s")
	t.Setenv("BARBERTERM_DEBUG", "1")

	config, err := LoadAppConfig(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if config.APIURL != "http://localhost:4000" {
		t.Errorf("Expected API URL 'http://localhost:4000', got '%s'", config.APIURL)
	}
	if config.RetryCount != 5 {
		t.Errorf("Expected retry count 5, got %d", config.RetryCount)
	}
	if config.Timeout != 60*time.Second {
		t.Errorf("Expected timeout 60s, got %v", config.Timeout)
	}
	if config.Level() != log.DebugLevel {
		t.Errorf("Expected debug level, got %v", config.Level())
	}
}

func TestLoadAppConfigInvalidEnvIgnored(t *testing.T) {
	clearEnv(t)
	t.Setenv("BARBERTERM_TIMEOUT", "soon")
	t.Setenv("BARBERTERM_RETRY_COUNT", "many")

	config, err := LoadAppConfig("")
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if config.Timeout != 30*time.Second {
		t.Errorf("Expected default timeout for unparsable value, got %v", config.Timeout)
	}
	if config.RetryCount != 3 {
		t.Errorf("Expected default retry count for unparsable value, got %d", config.RetryCount)
	}
}

func TestLoadAppConfigBadFile(t *testing.T) {
	clearEnv(t)

	path := writeConfig(t, "timeout: [not a duration\n")
	if _, err := LoadAppConfig(path); err == nil {
		t.Error("Expected error for malformed YAML")
	}
}

func TestAppConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*AppConfig)
		wantErr bool
	}{
		{"defaults", func(*AppConfig) {}, false},
		{"ftp url", func(c *AppConfig) { c.APIURL = "ftp://example.com" }, true},
		{"empty url", func(c *AppConfig) { c.APIURL = "" }, true},
		{"zero timeout", func(c *AppConfig) { c.Timeout = 0 }, true},
		{"negative retry", func(c *AppConfig) { c.RetryCount = -1 }, true},
		{"negative retry delay", func(c *AppConfig) { c.RetryDelay = -time.Second }, true},
		{"zero cache TTL", func(c *AppConfig) { c.CacheTTL = 0 }, true},
		{"zero session TTL", func(c *AppConfig) { c.SessionTTL = 0 }, true},
		{"bad log level", func(c *AppConfig) { c.LogLevel = "loud" }, true},
		{"zero sign-in attempts", func(c *AppConfig) { c.MaxSignInAttempts = 0 }, true},
		{"zero retries", func(c *AppConfig) { c.RetryCount = 0 }, true},
		{"single attempt", func(c *AppConfig) { c.RetryCount = 1 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := GetDefaultConfig()
			tt.mutate(config)

			err := config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestToClientConfig(t *testing.T) {
	config := GetDefaultConfig()
	config.APIURL = "https://api.gobarber.example"
	config.RetryCount = 7

	clientConfig := config.ToClientConfig()

	if clientConfig.BaseURL != "https://api.gobarber.example" {
		t.Errorf("Expected base URL to carry over, got '%s'", clientConfig.BaseURL)
	}
	if clientConfig.RetryCount != 7 {
		t.Errorf("Expected retry count 7, got %d", clientConfig.RetryCount)
	}
	if clientConfig.Timeout != config.Timeout {
		t.Errorf("Expected timeout %v, got %v", config.Timeout, clientConfig.Timeout)
	}
}
