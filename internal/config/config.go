package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the portal configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Upstream UpstreamConfig `yaml:"upstream"`
	Store    StoreConfig    `yaml:"store"`
	Database DatabaseConfig `yaml:"database"`
	Session  SessionConfig  `yaml:"session"`
}

// ServerConfig contains the HTTP listener settings.
type ServerConfig struct {
	Port         int      `yaml:"port"`
	CORSOrigins  []string `yaml:"cors_origins"`
	ReadTimeout  int      `yaml:"read_timeout_seconds"`
	WriteTimeout int      `yaml:"write_timeout_seconds"`
}

// UpstreamConfig contains the remote property service settings.
type UpstreamConfig struct {
	BaseURL           string `yaml:"base_url"`
	TimeoutSeconds    int    `yaml:"timeout_seconds"`
	MaxRetries        int    `yaml:"max_retries"`
	RetryDelayMillis  int    `yaml:"retry_delay_ms"`
	RequestsPerMinute int    `yaml:"requests_per_minute"`
	RequestsPerHour   int    `yaml:"requests_per_hour"`
	RateLimitEnabled  bool   `yaml:"rate_limit_enabled"`
}

// StoreConfig contains property store settings.
type StoreConfig struct {
	// ClientFilter selects the client-side filtering variant: the portal
	// fetches the unfiltered collection and filters locally.
	ClientFilter   bool `yaml:"client_filter"`
	DebounceMillis int  `yaml:"debounce_ms"`
}

// DatabaseConfig contains the local sqlite settings.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// SessionConfig contains session lifecycle settings.
type SessionConfig struct {
	IdleTTLMinutes  int    `yaml:"idle_ttl_minutes"`
	CleanupSchedule string `yaml:"cleanup_schedule"`
	DraftTTLHours   int    `yaml:"draft_ttl_hours"`
}

// DefaultConfig returns default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         8080,
			CORSOrigins:  []string{"*"},
			ReadTimeout:  15,
			WriteTimeout: 30,
		},
		Upstream: UpstreamConfig{
			BaseURL:           "http://localhost:5000",
			TimeoutSeconds:    12,
			MaxRetries:        3,
			RetryDelayMillis:  500,
			RequestsPerMinute: 120,
			RequestsPerHour:   3600,
			RateLimitEnabled:  true,
		},
		Store: StoreConfig{
			ClientFilter:   false,
			DebounceMillis: 250,
		},
		Database: DatabaseConfig{
			Path: "portal.db",
		},
		Session: SessionConfig{
			IdleTTLMinutes:  24 * 60,
			CleanupSchedule: "@every 15m",
			DraftTTLHours:   72,
		},
	}
}

// LoadConfig loads configuration from a YAML file, falling back to
// defaults when the file is absent, then applies environment overrides.
func LoadConfig(filepath string) (*Config, error) {
	config := DefaultConfig()

	if _, err := os.Stat(filepath); err == nil {
		data, err := os.ReadFile(filepath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	config.applyEnv()
	return config, nil
}

// applyEnv lets deploy-time environment variables win over the file.
func (c *Config) applyEnv() {
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("UPSTREAM_URL"); v != "" {
		c.Upstream.BaseURL = v
	}
	if v := os.Getenv("PORTAL_DB_PATH"); v != "" {
		c.Database.Path = v
	}
}

// UpstreamTimeout returns the upstream request timeout as a duration.
func (c *UpstreamConfig) UpstreamTimeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// RetryDelay returns the base retry delay as a duration.
func (c *UpstreamConfig) RetryDelay() time.Duration {
	return time.Duration(c.RetryDelayMillis) * time.Millisecond
}

// Debounce returns the store debounce as a duration.
func (c *StoreConfig) Debounce() time.Duration {
	return time.Duration(c.DebounceMillis) * time.Millisecond
}

// IdleTTL returns the session idle TTL as a duration.
func (c *SessionConfig) IdleTTL() time.Duration {
	return time.Duration(c.IdleTTLMinutes) * time.Minute
}

// DraftTTL returns the wizard draft retention as a duration.
func (c *SessionConfig) DraftTTL() time.Duration {
	return time.Duration(c.DraftTTLHours) * time.Hour
}
