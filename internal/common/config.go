// Package common provides shared utilities for TradeDesk
package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for TradeDesk
type Config struct {
	Environment string        `toml:"environment"`
	Clients     ClientsConfig `toml:"clients"`
	Session     SessionConfig `toml:"session"`
	Polling     PollingConfig `toml:"polling"`
	Logging     LoggingConfig `toml:"logging"`
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	Backend    BackendConfig    `toml:"backend"`
	MarketData MarketDataConfig `toml:"marketdata"`
}

// BackendConfig holds trading backend API configuration
type BackendConfig struct {
	BaseURL string `toml:"base_url"`
	Timeout string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *BackendConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// MarketDataConfig holds market data provider configuration
type MarketDataConfig struct {
	BaseURL   string `toml:"base_url"`
	APIKey    string `toml:"api_key"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *MarketDataConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// SessionConfig holds local session persistence configuration
type SessionConfig struct {
	Path    string `toml:"path"`     // session file location
	KeyPath string `toml:"key_path"` // at-rest encryption key location
}

// PollingConfig holds refresh intervals for the background pollers.
// Values are duration strings ("60s", "2m").
type PollingConfig struct {
	Ledger   string `toml:"ledger"`   // holdings, orders, wallet
	Quotes   string `toml:"quotes"`   // quotes and charts
	Security string `toml:"security"` // 2FA status, sessions, activity
}

func parseInterval(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// LedgerInterval returns the ledger poll interval (default 60s).
func (c *PollingConfig) LedgerInterval() time.Duration {
	return parseInterval(c.Ledger, 60*time.Second)
}

// QuoteInterval returns the quote poll interval (default 30s).
func (c *PollingConfig) QuoteInterval() time.Duration {
	return parseInterval(c.Quotes, 30*time.Second)
}

// SecurityInterval returns the security-settings poll interval (default 120s).
func (c *PollingConfig) SecurityInterval() time.Duration {
	return parseInterval(c.Security, 120*time.Second)
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Clients: ClientsConfig{
			Backend: BackendConfig{
				BaseURL: "http://localhost:3000",
				Timeout: "30s",
			},
			MarketData: MarketDataConfig{
				BaseURL:   "https://financialmodelingprep.com/api/v3",
				RateLimit: 5,
				Timeout:   "30s",
			},
		},
		Session: SessionConfig{
			Path:    "data/session.bin",
			KeyPath: "data/session.key",
		},
		Polling: PollingConfig{
			Ledger:   "60s",
			Quotes:   "30s",
			Security: "120s",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier)
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue // Skip missing files
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("TRADEDESK_ENV"); env != "" {
		config.Environment = env
	}

	if url := os.Getenv("TRADEDESK_BACKEND_URL"); url != "" {
		config.Clients.Backend.BaseURL = url
	}

	if url := os.Getenv("TRADEDESK_MARKETDATA_URL"); url != "" {
		config.Clients.MarketData.BaseURL = url
	}

	if key := ResolveAPIKey("marketdata_api_key", ""); key != "" {
		config.Clients.MarketData.APIKey = key
	}

	if limit := os.Getenv("TRADEDESK_MARKETDATA_RATE_LIMIT"); limit != "" {
		if n, err := strconv.Atoi(limit); err == nil && n > 0 {
			config.Clients.MarketData.RateLimit = n
		}
	}

	if path := os.Getenv("TRADEDESK_SESSION_PATH"); path != "" {
		config.Session.Path = path
	}

	if level := os.Getenv("TRADEDESK_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
}

// ResolveAPIKey resolves an API key from environment variables, then fallback.
func ResolveAPIKey(name string, fallback string) string {
	keyToEnvMapping := map[string][]string{
		"marketdata_api_key": {"FMP_API_KEY", "TRADEDESK_MARKETDATA_API_KEY"},
	}

	if envVarNames, ok := keyToEnvMapping[name]; ok {
		for _, envVarName := range envVarNames {
			if envValue := os.Getenv(envVarName); envValue != "" {
				return envValue
			}
		}
	}

	return fallback
}

// ValidateRequired checks that configuration needed for live operation is present.
func (c *Config) ValidateRequired() error {
	if c.Clients.Backend.BaseURL == "" {
		return fmt.Errorf("clients.backend.base_url is required")
	}
	if c.Clients.MarketData.APIKey == "" {
		return fmt.Errorf("marketdata API key is required (set FMP_API_KEY or clients.marketdata.api_key)")
	}
	return nil
}
