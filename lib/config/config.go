// Copyright 2026 The Parkwatch Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/parknow/parkwatch/lib/reconnect"
)

// EnvVar names the environment variable [Load] reads the config path from.
const EnvVar = "PARKWATCH_CONFIG"

// Environment represents the deployment environment.
type Environment string

const (
	// Development is for a backend running on the local machine.
	Development Environment = "development"
	// Staging is for a shared pre-production backend.
	Staging Environment = "staging"
	// Production is for the live occupancy service.
	Production Environment = "production"
)

// MaxColumns bounds the dashboard grid width.
const MaxColumns = 20

// Config is the master configuration for parkwatch.
type Config struct {
	// Environment identifies the deployment type (development, staging, production).
	Environment Environment `yaml:"environment"`

	// Server configures where the occupancy service lives.
	Server ServerConfig `yaml:"server"`

	// Reconnect configures the retry policy for subscriptions.
	Reconnect ReconnectConfig `yaml:"reconnect"`

	// Catalog configures facility metadata.
	Catalog CatalogConfig `yaml:"catalog"`

	// UI configures the dashboard.
	UI UIConfig `yaml:"ui"`

	// Log configures diagnostic logging.
	Log LogConfig `yaml:"log"`

	// Per-environment overrides, applied after the base config is loaded.
	Development *ConfigOverrides `yaml:"development,omitempty"`
	Staging     *ConfigOverrides `yaml:"staging,omitempty"`
	Production  *ConfigOverrides `yaml:"production,omitempty"`
}

// ConfigOverrides contains fields that can be overridden per environment.
// Empty or zero fields leave the base value in place.
type ConfigOverrides struct {
	Server    *ServerConfig    `yaml:"server,omitempty"`
	Reconnect *ReconnectConfig `yaml:"reconnect,omitempty"`
	Catalog   *CatalogConfig   `yaml:"catalog,omitempty"`
	UI        *UIConfig        `yaml:"ui,omitempty"`
	Log       *LogConfig       `yaml:"log,omitempty"`
}

// ServerConfig locates the occupancy service.
type ServerConfig struct {
	// WebSocketURL is the base URL subscriptions are opened against
	// (ws:// or wss://). Scope paths are appended to it.
	WebSocketURL string `yaml:"websocket_url"`

	// HTTPURL is the base URL for the REST endpoints (/locations,
	// /slots). When empty it is derived from WebSocketURL by swapping
	// the scheme.
	HTTPURL string `yaml:"http_url"`

	// DialTimeout bounds each connection attempt (e.g., "10s").
	DialTimeout string `yaml:"dial_timeout"`
}

// ReconnectConfig configures the retry policy.
type ReconnectConfig struct {
	// MaxAttempts is how many consecutive retries are made before giving up.
	MaxAttempts int `yaml:"max_attempts"`

	// RetryDelay is the fixed delay before each retry (e.g., "3s").
	RetryDelay string `yaml:"retry_delay"`
}

// CatalogConfig configures facility metadata.
type CatalogConfig struct {
	// Path is a JSONC catalog file replacing the embedded one.
	// Empty uses the embedded catalog.
	Path string `yaml:"path"`
}

// UIConfig configures the dashboard.
type UIConfig struct {
	// Columns is the number of slot cells per grid row.
	Columns int `yaml:"columns"`
}

// LogConfig configures diagnostic logging.
type LogConfig struct {
	// Level is the minimum record level: debug, info, warn, or error.
	Level string `yaml:"level"`

	// Output is a file that receives JSON log records in addition to
	// the interactive sink. Empty disables file logging.
	Output string `yaml:"output"`
}

// Default returns the default configuration. Every field is populated,
// so a missing config file yields a working client for a local backend.
func Default() *Config {
	return &Config{
		Environment: Development,
		Server: ServerConfig{
			WebSocketURL: "ws://localhost:8000",
			DialTimeout:  "10s",
		},
		Reconnect: ReconnectConfig{
			MaxAttempts: reconnect.DefaultMaxAttempts,
			RetryDelay:  reconnect.DefaultRetryDelay.String(),
		},
		UI: UIConfig{
			Columns: 5,
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// Load loads configuration from the file named by PARKWATCH_CONFIG.
// When the variable is unset the defaults are returned as-is.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvVar)
	if configPath == "" {
		return Default(), nil
	}

	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path.
//
// The file is merged over [Default], then the matching environment
// section is applied, then ${VAR} patterns are expanded.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}

	cfg.applyEnvironmentOverrides()
	cfg.expandVariables()

	return cfg, nil
}

// loadFile loads a single configuration file, merging into the current config.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}

// applyEnvironmentOverrides applies the environment-specific overrides.
func (c *Config) applyEnvironmentOverrides() {
	var overrides *ConfigOverrides

	switch c.Environment {
	case Development:
		overrides = c.Development
	case Staging:
		overrides = c.Staging
	case Production:
		overrides = c.Production
		// Production defaults: quieter logging.
		if overrides == nil {
			overrides = &ConfigOverrides{
				Log: &LogConfig{Level: "error"},
			}
		}
	}

	if overrides == nil {
		return
	}

	if overrides.Server != nil {
		if overrides.Server.WebSocketURL != "" {
			c.Server.WebSocketURL = overrides.Server.WebSocketURL
		}
		if overrides.Server.HTTPURL != "" {
			c.Server.HTTPURL = overrides.Server.HTTPURL
		}
		if overrides.Server.DialTimeout != "" {
			c.Server.DialTimeout = overrides.Server.DialTimeout
		}
	}

	if overrides.Reconnect != nil {
		if overrides.Reconnect.MaxAttempts != 0 {
			c.Reconnect.MaxAttempts = overrides.Reconnect.MaxAttempts
		}
		if overrides.Reconnect.RetryDelay != "" {
			c.Reconnect.RetryDelay = overrides.Reconnect.RetryDelay
		}
	}

	if overrides.Catalog != nil && overrides.Catalog.Path != "" {
		c.Catalog.Path = overrides.Catalog.Path
	}

	if overrides.UI != nil && overrides.UI.Columns != 0 {
		c.UI.Columns = overrides.UI.Columns
	}

	if overrides.Log != nil {
		if overrides.Log.Level != "" {
			c.Log.Level = overrides.Log.Level
		}
		if overrides.Log.Output != "" {
			c.Log.Output = overrides.Log.Output
		}
	}
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in URLs and paths.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}

	c.Server.WebSocketURL = expandVars(c.Server.WebSocketURL, vars)
	c.Server.HTTPURL = expandVars(c.Server.HTTPURL, vars)
	c.Catalog.Path = expandVars(c.Catalog.Path, vars)
	c.Log.Output = expandVars(c.Log.Output, vars)
}

// expandVars expands ${VAR} and ${VAR:-default} patterns.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		// Check provided vars first, then environment.
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// HTTPBaseURL returns the REST base URL: server.http_url when set,
// otherwise server.websocket_url with ws mapped to http and wss to https.
func (c *Config) HTTPBaseURL() string {
	if c.Server.HTTPURL != "" {
		return c.Server.HTTPURL
	}
	base := c.Server.WebSocketURL
	switch {
	case strings.HasPrefix(base, "wss://"):
		return "https://" + strings.TrimPrefix(base, "wss://")
	case strings.HasPrefix(base, "ws://"):
		return "http://" + strings.TrimPrefix(base, "ws://")
	}
	return base
}

// DialTimeout returns server.dial_timeout parsed. Call [Config.Validate]
// first; an unparseable value yields zero.
func (c *Config) DialTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Server.DialTimeout)
	return d
}

// ReconnectPolicy converts the reconnect section into the policy
// configuration used by subscriptions.
func (c *Config) ReconnectPolicy() (reconnect.Config, error) {
	delay, err := time.ParseDuration(c.Reconnect.RetryDelay)
	if err != nil {
		return reconnect.Config{}, fmt.Errorf("reconnect.retry_delay: %w", err)
	}
	return reconnect.Config{
		MaxAttempts: c.Reconnect.MaxAttempts,
		RetryDelay:  delay,
	}, nil
}

// LogLevel returns log.level as a slog level. Unknown values map to Warn.
func (c *Config) LogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelWarn
	}
	return level
}

// Validate checks the configuration for errors. Every problem found is
// reported, joined with [errors.Join].
func (c *Config) Validate() error {
	var errs []error

	if c.Environment != Development && c.Environment != Staging && c.Environment != Production {
		errs = append(errs, fmt.Errorf("invalid environment: %s", c.Environment))
	}

	if err := checkURL(c.Server.WebSocketURL, "ws", "wss"); err != nil {
		errs = append(errs, fmt.Errorf("server.websocket_url: %w", err))
	}
	if c.Server.HTTPURL != "" {
		if err := checkURL(c.Server.HTTPURL, "http", "https"); err != nil {
			errs = append(errs, fmt.Errorf("server.http_url: %w", err))
		}
	}

	if err := checkDuration(c.Server.DialTimeout); err != nil {
		errs = append(errs, fmt.Errorf("server.dial_timeout: %w", err))
	}

	if c.Reconnect.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("reconnect.max_attempts must be at least 1, got %d", c.Reconnect.MaxAttempts))
	}
	if err := checkDuration(c.Reconnect.RetryDelay); err != nil {
		errs = append(errs, fmt.Errorf("reconnect.retry_delay: %w", err))
	}

	if c.UI.Columns < 1 || c.UI.Columns > MaxColumns {
		errs = append(errs, fmt.Errorf("ui.columns must be between 1 and %d, got %d", MaxColumns, c.UI.Columns))
	}

	levels := []string{"debug", "info", "warn", "error"}
	if !contains(levels, strings.ToLower(c.Log.Level)) {
		errs = append(errs, fmt.Errorf("log.level must be one of: %v", levels))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

func checkURL(raw string, schemes ...string) error {
	if raw == "" {
		return errors.New("is required")
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if !contains(schemes, parsed.Scheme) {
		return fmt.Errorf("scheme must be one of %v, got %q", schemes, parsed.Scheme)
	}
	if parsed.Host == "" {
		return fmt.Errorf("missing host in %q", raw)
	}
	return nil
}

func checkDuration(raw string) error {
	d, err := time.ParseDuration(raw)
	if err != nil {
		return err
	}
	if d <= 0 {
		return fmt.Errorf("must be positive, got %s", raw)
	}
	return nil
}

func contains(slice []string, s string) bool {
	for _, v := range slice {
		if v == s {
			return true
		}
	}
	return false
}
