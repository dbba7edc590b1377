// ABOUTME: Configuration loading and parsing for the loco client
// ABOUTME: Supports YAML files with environment variable expansion and duration parsing

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Default tunables applied when the config file omits them.
const (
	DefaultPollInterval    = 1 * time.Second
	DefaultPollMaxAttempts = 20
	DefaultNotifyDebounce  = 1 * time.Second
	DefaultRequestTimeout  = 30 * time.Second
)

// Config represents the complete loco client configuration
type Config struct {
	API           APIConfig           `yaml:"api"`
	Polling       PollingConfig       `yaml:"polling"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// APIConfig holds the HTTP endpoint configuration
type APIConfig struct {
	BaseURL string `yaml:"base_url"`

	Timeout    time.Duration `yaml:"-"`
	TimeoutRaw string        `yaml:"timeout"`
}

// PollingConfig holds submission-poll tuning
type PollingConfig struct {
	MaxAttempts int `yaml:"max_attempts"`

	Interval    time.Duration `yaml:"-"`
	IntervalRaw string        `yaml:"interval"`
}

// NotificationsConfig holds notification-stream tuning
type NotificationsConfig struct {
	Debounce    time.Duration `yaml:"-"`
	DebounceRaw string        `yaml:"debounce"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Path returns the config file location.
// Priority: LOCO_CONFIG env var > XDG_CONFIG_HOME/loco/client.yaml > ~/.config/loco/client.yaml
func Path() string {
	if envPath := os.Getenv("LOCO_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "client.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "loco", "client.yaml")
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Environment variables in the format ${VAR_NAME} are expanded, duration strings
// are parsed, and defaults are applied for omitted fields. A missing file is not
// an error: the defaults are returned so the client works out of the box against
// LOCO_API_URL.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := &Config{}
			cfg.applyDefaults()
			if err := cfg.Validate(); err != nil {
				return nil, fmt.Errorf("validating config: %w", err)
			}
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the raw YAML content
	expandedData := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Parse duration fields
	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	cfg.applyDefaults()

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	// Match ${VAR_NAME} pattern
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		// Extract variable name from ${VAR_NAME}
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// applyDefaults fills zero-valued fields with the platform defaults.
// LOCO_API_URL always wins over the configured base URL.
func (c *Config) applyDefaults() {
	if envURL := os.Getenv("LOCO_API_URL"); envURL != "" {
		c.API.BaseURL = envURL
	}
	if c.API.BaseURL == "" {
		c.API.BaseURL = "http://localhost:8080"
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = DefaultRequestTimeout
	}
	if c.Polling.Interval == 0 {
		c.Polling.Interval = DefaultPollInterval
	}
	if c.Polling.MaxAttempts == 0 {
		c.Polling.MaxAttempts = DefaultPollMaxAttempts
	}
	if c.Notifications.Debounce == 0 {
		c.Notifications.Debounce = DefaultNotifyDebounce
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required (or set LOCO_API_URL)")
	}
	if c.Polling.MaxAttempts < 1 {
		return fmt.Errorf("polling.max_attempts must be at least 1")
	}
	if c.Polling.Interval < 0 {
		return fmt.Errorf("polling.interval must not be negative")
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}
	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	var err error

	if cfg.API.TimeoutRaw != "" {
		cfg.API.Timeout, err = time.ParseDuration(cfg.API.TimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing api.timeout %q: %w", cfg.API.TimeoutRaw, err)
		}
	}

	if cfg.Polling.IntervalRaw != "" {
		cfg.Polling.Interval, err = time.ParseDuration(cfg.Polling.IntervalRaw)
		if err != nil {
			return fmt.Errorf("parsing polling.interval %q: %w", cfg.Polling.IntervalRaw, err)
		}
	}

	if cfg.Notifications.DebounceRaw != "" {
		cfg.Notifications.Debounce, err = time.ParseDuration(cfg.Notifications.DebounceRaw)
		if err != nil {
			return fmt.Errorf("parsing notifications.debounce %q: %w", cfg.Notifications.DebounceRaw, err)
		}
	}

	return nil
}
