package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"gobarber/barberterm/internal/api"
)

type AppConfig struct {
	APIURL     string        `yaml:"api_url"`
	Timeout    time.Duration `yaml:"timeout"`
	RetryCount int           `yaml:"retry_count"`
	RetryDelay time.Duration `yaml:"retry_delay"`
	CacheTTL   time.Duration `yaml:"cache_ttl"`
	SessionTTL time.Duration `yaml:"session_ttl"`
	LogLevel   string        `yaml:"log_level"`

	MaxSignInAttempts int `yaml:"max_sign_in_attempts"`
}

// LoadAppConfig applies defaults, then the YAML file at path (if it exists),
// then BARBERTERM_* environment overrides.
func LoadAppConfig(path string) (*AppConfig, error) {
	config := GetDefaultConfig()

	if path != "" {
		if err := config.loadFile(path); err != nil {
			return nil, err
		}
	}

	config.APIURL = getEnvOrDefault("BARBERTERM_API_URL", config.APIURL)
	config.Timeout = parseDurationOrDefault("BARBERTERM_TIMEOUT", config.Timeout)
	config.RetryCount = parseIntOrDefault("BARBERTERM_RETRY_COUNT", config.RetryCount)
	config.RetryDelay = parseDurationOrDefault("BARBERTERM_RETRY_DELAY", config.RetryDelay)
	config.CacheTTL = parseDurationOrDefault("BARBERTERM_CACHE_TTL", config.CacheTTL)
	config.SessionTTL = parseDurationOrDefault("BARBERTERM_SESSION_TTL", config.SessionTTL)
	config.LogLevel = getEnvOrDefault("BARBERTERM_LOG_LEVEL", config.LogLevel)
	config.MaxSignInAttempts = parseIntOrDefault("BARBERTERM_MAX_SIGN_IN_ATTEMPTS", config.MaxSignInAttempts)
	if IsDebugEnabled() {
		config.LogLevel = "debug"
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *AppConfig) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return nil
}

func (c *AppConfig) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid api_url: %q (must be an http or https URL)", c.APIURL)
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got: %v", c.Timeout)
	}

	if c.RetryCount < 1 {
		return fmt.Errorf("retry count must be at least 1, got: %d", c.RetryCount)
	}

	if c.RetryDelay < 0 {
		return fmt.Errorf("retry delay must be non-negative, got: %v", c.RetryDelay)
	}

	if c.CacheTTL <= 0 {
		return fmt.Errorf("cache TTL must be positive, got: %v", c.CacheTTL)
	}

	if c.SessionTTL <= 0 {
		return fmt.Errorf("session TTL must be positive, got: %v", c.SessionTTL)
	}

	if c.MaxSignInAttempts <= 0 {
		return fmt.Errorf("max sign-in attempts must be positive, got: %d", c.MaxSignInAttempts)
	}

	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level: %s", c.LogLevel)
	}

	return nil
}

func (c *AppConfig) ToClientConfig() api.Config {
	return api.Config{
		BaseURL:    c.APIURL,
		Timeout:    c.Timeout,
		RetryCount: c.RetryCount,
		RetryDelay: c.RetryDelay,
		CacheTTL:   c.CacheTTL,
	}
}

// Level returns the parsed log level, falling back to info.
func (c *AppConfig) Level() log.Level {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func GetDefaultConfig() *AppConfig {
	return &AppConfig{
		APIURL:     api.DefaultBaseURL,
		Timeout:    api.DefaultTimeout,
		RetryCount: api.DefaultRetryCount,
		RetryDelay: api.DefaultRetryDelay,
		CacheTTL:   api.DefaultCacheTTL,
		SessionTTL: 24 * time.Hour,
		LogLevel:   "info",

		MaxSignInAttempts: 5,
	}
}

func IsDebugEnabled() bool {
	return os.Getenv("BARBERTERM_DEBUG") == "true" || os.Getenv("BARBERTERM_DEBUG") == "1"
}
