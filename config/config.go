// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Ingest   IngestConfig   `yaml:"ingest"`
	Insights InsightsConfig `yaml:"insights"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	BaseURL      string        `yaml:"base_url"` // public address, used in tracking snippets
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// DatabaseConfig configures the database.
type DatabaseConfig struct {
	Driver string `yaml:"driver"` // "sqlite"
	DSN    string `yaml:"dsn"`
}

// AuthConfig configures dashboard session authentication.
type AuthConfig struct {
	JWTSecret  string        `yaml:"jwt_secret,omitempty"`
	SessionTTL time.Duration `yaml:"session_ttl"`
}

// IngestConfig configures the buffered event recorder.
type IngestConfig struct {
	BatchSize     int           `yaml:"batch_size"`
	FlushInterval time.Duration `yaml:"flush_interval"`
}

// InsightsConfig configures LLM insight generation.
// Mode "auto" uses the LLM when an API key is present and the mock
// otherwise; "deepseek" and "mock" force a provider.
type InsightsConfig struct {
	Mode    string        `yaml:"mode"` // "auto", "deepseek", "mock"
	APIKey  string        `yaml:"api_key,omitempty"`
	BaseURL string        `yaml:"base_url,omitempty"`
	Model   string        `yaml:"model,omitempty"`
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "console"
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"` // Enable /metrics endpoint
	Path    string `yaml:"path"`    // Custom path (default: /metrics)
}

// Load reads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// Apply environment variable overrides
	applyEnvOverrides(&cfg)

	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// LoadFromEnv creates configuration entirely from environment variables.
// This is useful for Docker deployments where no config file is needed.
//
// Environment variables:
//
//	PULSE_SERVER_HOST      - Server host (default: 0.0.0.0)
//	PULSE_SERVER_PORT      - Server port (default: 8080)
//	PULSE_SERVER_BASE_URL  - Public base URL for tracking snippets
//	PULSE_DATABASE_DSN     - Database path (default: pulse.db)
//	PULSE_AUTH_JWT_SECRET  - Secret for session tokens
//	PULSE_INSIGHTS_MODE    - Insights mode: auto, deepseek, mock (default: auto)
//	PULSE_INSIGHTS_API_KEY - DeepSeek API key
//	PULSE_LOG_LEVEL        - Log level: debug, info, warn, error (default: info)
//	PULSE_LOG_FORMAT       - Log format: json or console (default: json)
//	PULSE_METRICS_ENABLED  - Enable the metrics endpoint (default: false)
//	PULSE_METRICS_PATH     - Metrics endpoint path (default: /metrics)
func LoadFromEnv() (*Config, error) {
	var cfg Config

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// LoadWithFallback tries to load from file, falls back to environment
// variables. Every setting has a default, so this never fails for a
// missing file.
func LoadWithFallback(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}
	return LoadFromEnv()
}

// applyEnvOverrides applies PULSE_* environment variables to the config.
// Environment variables always override file-based configuration.
func applyEnvOverrides(cfg *Config) {
	// Server configuration
	if v := os.Getenv("PULSE_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("PULSE_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("PULSE_SERVER_BASE_URL"); v != "" {
		cfg.Server.BaseURL = v
	}
	if v := os.Getenv("PULSE_SERVER_READ_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.ReadTimeout = d
		}
	}
	if v := os.Getenv("PULSE_SERVER_WRITE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.WriteTimeout = d
		}
	}

	// Database configuration
	if v := os.Getenv("PULSE_DATABASE_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("PULSE_DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}

	// Auth configuration
	if v := os.Getenv("PULSE_AUTH_JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("PULSE_AUTH_SESSION_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Auth.SessionTTL = d
		}
	}

	// Ingest configuration
	if v := os.Getenv("PULSE_INGEST_BATCH_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Ingest.BatchSize = n
		}
	}
	if v := os.Getenv("PULSE_INGEST_FLUSH_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Ingest.FlushInterval = d
		}
	}

	// Insights configuration
	if v := os.Getenv("PULSE_INSIGHTS_MODE"); v != "" {
		cfg.Insights.Mode = v
	}
	if v := os.Getenv("PULSE_INSIGHTS_API_KEY"); v != "" {
		cfg.Insights.APIKey = v
	}
	if v := os.Getenv("PULSE_INSIGHTS_BASE_URL"); v != "" {
		cfg.Insights.BaseURL = v
	}
	if v := os.Getenv("PULSE_INSIGHTS_MODEL"); v != "" {
		cfg.Insights.Model = v
	}

	// Logging configuration
	if v := os.Getenv("PULSE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("PULSE_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}

	// Metrics configuration
	if v := os.Getenv("PULSE_METRICS_ENABLED"); v != "" {
		cfg.Metrics.Enabled = parseBool(v)
	}
	if v := os.Getenv("PULSE_METRICS_PATH"); v != "" {
		cfg.Metrics.Path = v
	}
}

// parseBool parses a boolean from common string values.
func parseBool(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	return v == "true" || v == "1" || v == "yes" || v == "on"
}

func setDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.BaseURL == "" {
		cfg.Server.BaseURL = fmt.Sprintf("http://localhost:%d", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 30 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 60 * time.Second
	}

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	if cfg.Database.DSN == "" {
		cfg.Database.DSN = "pulse.db"
	}

	if cfg.Auth.SessionTTL == 0 {
		cfg.Auth.SessionTTL = 24 * time.Hour
	}

	if cfg.Ingest.BatchSize == 0 {
		cfg.Ingest.BatchSize = 100
	}
	if cfg.Ingest.FlushInterval == 0 {
		cfg.Ingest.FlushInterval = 5 * time.Second
	}

	if cfg.Insights.Mode == "" {
		cfg.Insights.Mode = "auto"
	}
	if cfg.Insights.Timeout == 0 {
		cfg.Insights.Timeout = 30 * time.Second
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
}

func validate(cfg *Config) error {
	if cfg.Database.Driver != "sqlite" {
		return fmt.Errorf("database.driver must be 'sqlite', got %q", cfg.Database.Driver)
	}

	validInsightsModes := map[string]bool{"auto": true, "deepseek": true, "mock": true}
	if !validInsightsModes[cfg.Insights.Mode] {
		return fmt.Errorf("insights.mode must be one of: auto, deepseek, mock, got %q", cfg.Insights.Mode)
	}
	if cfg.Insights.Mode == "deepseek" && cfg.Insights.APIKey == "" {
		return fmt.Errorf("insights.api_key is required when insights.mode is 'deepseek'")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error, got %q", cfg.Logging.Level)
	}

	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", cfg.Server.Port)
	}

	return nil
}
