// Package config holds engine configuration and the built-in gated
// platform profiles.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all engine configuration.
type Config struct {
	// Target URL or file to analyze
	Target string `json:"target" yaml:"target"`

	// Request timeout
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// Rate limiting for live fetches
	RateLimit RateLimitConfig `json:"rate_limit" yaml:"rate_limit"`

	// Browser capture configuration
	Capture CaptureConfig `json:"capture" yaml:"capture"`

	// Gated site login configuration
	Login LoginConfig `json:"login" yaml:"login"`

	// Output configuration
	Output OutputConfig `json:"output" yaml:"output"`

	// Report persistence
	Store StoreConfig `json:"store" yaml:"store"`

	// Custom headers to include in all requests
	CustomHeaders map[string]string `json:"custom_headers" yaml:"custom_headers"`

	// User agent override (if empty, uses default)
	UserAgent string `json:"user_agent" yaml:"user_agent"`

	// Verbose logging
	Verbose bool `json:"verbose" yaml:"verbose"`

	// Debug mode
	Debug bool `json:"debug" yaml:"debug"`
}

// RateLimitConfig controls outbound request pacing.
type RateLimitConfig struct {
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second"`
	Burst             int     `json:"burst" yaml:"burst"`
}

// CaptureConfig controls the headless browser capture session.
type CaptureConfig struct {
	Enabled         bool          `json:"enabled" yaml:"enabled"`
	Headless        bool          `json:"headless" yaml:"headless"`
	Timeout         time.Duration `json:"timeout" yaml:"timeout"`
	SettleTime      time.Duration `json:"settle_time" yaml:"settle_time"`
	ViewportWidth   int           `json:"viewport_width" yaml:"viewport_width"`
	ViewportHeight  int           `json:"viewport_height" yaml:"viewport_height"`
	IgnoreTLSErrors bool          `json:"ignore_tls_errors" yaml:"ignore_tls_errors"`
}

// LoginConfig describes the form-login flow for a gated site. Profile
// resolves to a built-in platform profile; explicit fields override the
// profile's values.
type LoginConfig struct {
	Profile          string        `json:"profile" yaml:"profile"`
	LoginURL         string        `json:"login_url" yaml:"login_url"`
	Username         string        `json:"username" yaml:"username"`
	Password         string        `json:"password" yaml:"password"`
	UsernameField    string        `json:"username_field" yaml:"username_field"`
	PasswordField    string        `json:"password_field" yaml:"password_field"`
	SubmitButton     string        `json:"submit_button" yaml:"submit_button"`
	SuccessIndicator string        `json:"success_indicator" yaml:"success_indicator"`
	WaitTime         time.Duration `json:"wait_time" yaml:"wait_time"`
}

// OutputConfig controls report rendering.
type OutputConfig struct {
	Format   string `json:"format" yaml:"format"`
	Pretty   bool   `json:"pretty" yaml:"pretty"`
	FilePath string `json:"file" yaml:"file"`
}

// StoreConfig controls report persistence.
type StoreConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Path    string `json:"path" yaml:"path"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Timeout: 30 * time.Second,
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 10,
			Burst:             5,
		},
		Capture: CaptureConfig{
			Enabled:         false,
			Headless:        true,
			Timeout:         60 * time.Second,
			SettleTime:      5 * time.Second,
			ViewportWidth:   1920,
			ViewportHeight:  1080,
			IgnoreTLSErrors: true,
		},
		Output: OutputConfig{
			Format: "json",
			Pretty: true,
		},
		Store: StoreConfig{
			Enabled: false,
			Path:    "apiscope.db",
		},
		Verbose: false,
		Debug:   false,
	}
}

// LoadFromFile loads configuration from a file (YAML or JSON).
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()

	// Try YAML first, then JSON
	if err := yaml.Unmarshal(data, config); err != nil {
		if err := json.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	return config, nil
}

// SaveToFile saves configuration to a file.
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".json") {
		data, err = json.MarshalIndent(c, "", "  ")
	} else {
		data, err = yaml.Marshal(c)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Target == "" {
		return fmt.Errorf("target is required")
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}

	if c.RateLimit.RequestsPerSecond <= 0 {
		return fmt.Errorf("rate limit must be positive")
	}

	if c.Login.Profile != "" {
		if _, ok := LookupProfile(c.Login.Profile); !ok {
			return fmt.Errorf("unknown login profile %q (valid: %s)",
				c.Login.Profile, strings.Join(ProfileNames(), ", "))
		}
	}

	return nil
}

// ResolvedLogin merges the selected profile with explicit login fields.
// Explicit values always win over the profile's defaults.
func (c *Config) ResolvedLogin() LoginConfig {
	login := c.Login
	if login.Profile == "" {
		return login
	}

	profile, ok := LookupProfile(login.Profile)
	if !ok {
		return login
	}

	if login.LoginURL == "" {
		login.LoginURL = profile.LoginURL
	}
	if login.UsernameField == "" {
		login.UsernameField = profile.UsernameField
	}
	if login.PasswordField == "" {
		login.PasswordField = profile.PasswordField
	}
	if login.SubmitButton == "" {
		login.SubmitButton = profile.SubmitButton
	}
	if login.SuccessIndicator == "" {
		login.SuccessIndicator = profile.SuccessIndicator
	}
	if login.WaitTime == 0 {
		login.WaitTime = profile.WaitTime
	}
	return login
}

// Clone creates a deep copy of the configuration.
func (c *Config) Clone() *Config {
	data, _ := json.Marshal(c)
	clone := &Config{}
	json.Unmarshal(data, clone)
	return clone
}
