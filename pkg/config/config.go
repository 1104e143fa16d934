package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the API client and the igapi CLI
type Config struct {
	// Endpoint, signing and response handling
	API APIConfig `yaml:"api" json:"api"`

	// Device fingerprint used to build the user agent
	Device DeviceConfig `yaml:"device" json:"device"`

	// Where login snapshots are kept between runs
	Session SessionConfig `yaml:"session" json:"session"`

	// Caller-side retry policy (the client itself never retries)
	Retry RetryConfig `yaml:"retry" json:"retry"`

	// Caller-side request pacing
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// APIConfig holds the private API transport settings
type APIConfig struct {
	BaseURL          string        `yaml:"base_url" json:"base_url"`
	Version          string        `yaml:"version" json:"version"`
	Timeout          time.Duration `yaml:"timeout" json:"timeout"`
	AppVersion       string        `yaml:"app_version" json:"app_version"`
	SigKey           string        `yaml:"sig_key" json:"sig_key"`
	SigKeyVersion    string        `yaml:"sig_key_version" json:"sig_key_version"`
	AppID            string        `yaml:"app_id" json:"app_id"`
	Capabilities     string        `yaml:"capabilities" json:"capabilities"`
	Locale           string        `yaml:"locale" json:"locale"`
	AutoPatch        bool          `yaml:"auto_patch" json:"auto_patch"`
	DropIncompatKeys bool          `yaml:"drop_incompat_keys" json:"drop_incompat_keys"`
}

// DeviceConfig describes the Android device the client pretends to be.
// UserAgent, when set, wins over the individual fields.
type DeviceConfig struct {
	UserAgent      string `yaml:"user_agent" json:"user_agent"`
	AndroidVersion int    `yaml:"android_version" json:"android_version"`
	AndroidRelease string `yaml:"android_release" json:"android_release"`
	DPI            string `yaml:"dpi" json:"dpi"`
	Resolution     string `yaml:"resolution" json:"resolution"`
	Manufacturer   string `yaml:"manufacturer" json:"manufacturer"`
	Device         string `yaml:"device" json:"device"`
	Model          string `yaml:"model" json:"model"`
	Chipset        string `yaml:"chipset" json:"chipset"`
}

// SessionConfig holds snapshot persistence settings
type SessionConfig struct {
	Username string `yaml:"username" json:"username"`
	// Store is one of auto, file, encrypted or keyring
	Store string `yaml:"store" json:"store"`
	// Path of the plain JSON snapshot used by the file store
	Path string `yaml:"path" json:"path"`
}

// RetryConfig holds retry configuration
type RetryConfig struct {
	Enabled      bool          `yaml:"enabled" json:"enabled"`
	MaxAttempts  int           `yaml:"max_attempts" json:"max_attempts"`
	InitialDelay time.Duration `yaml:"initial_delay" json:"initial_delay"`
	MaxDelay     time.Duration `yaml:"max_delay" json:"max_delay"`
	Multiplier   float64       `yaml:"multiplier" json:"multiplier"`
	// Relogin allows one fresh login when a session expires mid command
	Relogin bool `yaml:"relogin" json:"relogin"`
}

// RateLimitConfig holds rate limiting configuration. Zero requests per minute disables pacing.
type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute" json:"requests_per_minute"`
	BurstSize         int `yaml:"burst_size" json:"burst_size"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`
	File   string `yaml:"file" json:"file"`
	Pretty bool   `yaml:"pretty" json:"pretty"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:       "https://i.instagram.com/api/",
			Version:       "v1",
			Timeout:       15 * time.Second,
			AppVersion:    "10.26.0",
			SigKey:        "4f8732eb9ba7d1c8e8897a75d6474d4eb3f5279137431b2aafb71fafe2abe178",
			SigKeyVersion: "4",
			AppID:         "567067343352427",
			Capabilities:  "3brTvw==",
			Locale:        "en_US",
			AutoPatch:     false,
		},
		Device: DeviceConfig{
			AndroidVersion: 24,
			AndroidRelease: "7.0",
			DPI:            "640dpi",
			Resolution:     "1440x2560",
			Manufacturer:   "samsung",
			Device:         "SM-G930F",
			Model:          "herolte",
			Chipset:        "samsungexynos8890",
		},
		Session: SessionConfig{
			Store: "auto",
		},
		Retry: RetryConfig{
			Enabled:      true,
			MaxAttempts:  3,
			InitialDelay: 2 * time.Second,
			MaxDelay:     2 * time.Minute,
			Multiplier:   2.0,
			Relogin:      true,
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: 30,
			BurstSize:         5,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Pretty: true,
		},
	}
}

const envPrefix = "IGAPI_"

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	var errs []error

	setString := func(name string, dst *string) {
		if v := os.Getenv(envPrefix + name); v != "" {
			*dst = v
		}
	}
	setInt := func(name string, dst *int) {
		if v := os.Getenv(envPrefix + name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", envPrefix, name, err))
				return
			}
			*dst = n
		}
	}
	setBool := func(name string, dst *bool) {
		if v := os.Getenv(envPrefix + name); v != "" {
			*dst = strings.EqualFold(v, "true") || v == "1"
		}
	}

	setString("BASE_URL", &c.API.BaseURL)
	setString("APP_VERSION", &c.API.AppVersion)
	setString("SIG_KEY", &c.API.SigKey)
	setString("LOCALE", &c.API.Locale)
	if v := os.Getenv(envPrefix + "TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sTIMEOUT: %w", envPrefix, err))
		} else {
			c.API.Timeout = d
		}
	}
	setBool("AUTO_PATCH", &c.API.AutoPatch)
	setBool("DROP_INCOMPAT_KEYS", &c.API.DropIncompatKeys)

	setString("USER_AGENT", &c.Device.UserAgent)

	setString("USERNAME", &c.Session.Username)
	setString("SESSION_STORE", &c.Session.Store)
	setString("SESSION_PATH", &c.Session.Path)

	setInt("MAX_RETRIES", &c.Retry.MaxAttempts)
	setInt("REQUESTS_PER_MINUTE", &c.RateLimit.RequestsPerMinute)

	setString("LOG_LEVEL", &c.Logging.Level)
	setString("LOG_FILE", &c.Logging.File)

	return errors.Join(errs...)
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	home := os.Getenv("HOME")
	locations := []string{
		".igapi.yaml",
		".igapi.yml",
		filepath.Join(home, ".config", "igapi", "config.yaml"),
		filepath.Join(home, ".config", "igapi", "config.yml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

var (
	dpiPattern        = regexp.MustCompile(`^\d+dpi$`)
	resolutionPattern = regexp.MustCompile(`^\d+x\d+$`)
	localePattern     = regexp.MustCompile(`^[a-z]+_[A-Z]+$`)
)

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.API.BaseURL == "" {
		errs = append(errs, errors.New("api base url is required"))
	}
	if c.API.Timeout <= 0 {
		errs = append(errs, errors.New("api timeout must be positive"))
	}
	if c.API.SigKey == "" {
		errs = append(errs, errors.New("signature key is required"))
	}
	if !localePattern.MatchString(c.API.Locale) {
		errs = append(errs, fmt.Errorf("invalid locale %q", c.API.Locale))
	}

	if c.Device.UserAgent == "" {
		if c.Device.AndroidVersion <= 0 {
			errs = append(errs, errors.New("android version must be positive"))
		}
		if !dpiPattern.MatchString(c.Device.DPI) {
			errs = append(errs, fmt.Errorf("invalid dpi %q", c.Device.DPI))
		}
		if !resolutionPattern.MatchString(c.Device.Resolution) {
			errs = append(errs, fmt.Errorf("invalid resolution %q", c.Device.Resolution))
		}
	}

	switch strings.ToLower(c.Session.Store) {
	case "auto", "file", "encrypted", "keyring":
	default:
		errs = append(errs, fmt.Errorf("invalid session store %q", c.Session.Store))
	}
	if strings.EqualFold(c.Session.Store, "file") && c.Session.Path == "" {
		errs = append(errs, errors.New("session path is required for the file store"))
	}

	if c.Retry.MaxAttempts < 0 {
		errs = append(errs, errors.New("max retries cannot be negative"))
	}
	if c.Retry.Enabled && c.Retry.Multiplier < 1 {
		errs = append(errs, errors.New("retry multiplier must be at least 1"))
	}
	if c.RateLimit.RequestsPerMinute < 0 {
		errs = append(errs, errors.New("requests per minute cannot be negative"))
	}
	if c.RateLimit.RequestsPerMinute > 0 && c.RateLimit.BurstSize <= 0 {
		errs = append(errs, errors.New("burst size must be positive"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "disabled": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	return errors.Join(errs...)
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// The file may carry a custom signature key
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration.
// Keys match the igapi persistent flag names.
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if v, ok := flags["username"].(string); ok && v != "" {
		c.Session.Username = v
	}
	if v, ok := flags["settings"].(string); ok && v != "" {
		c.Session.Path = v
		if c.Session.Store == "auto" {
			c.Session.Store = "file"
		}
	}
	if v, ok := flags["store"].(string); ok && v != "" {
		c.Session.Store = v
	}
	if v, ok := flags["timeout"].(time.Duration); ok && v > 0 {
		c.API.Timeout = v
	}
	if v, ok := flags["user-agent"].(string); ok && v != "" {
		c.Device.UserAgent = v
	}
	if v, ok := flags["auto-patch"].(bool); ok && v {
		c.API.AutoPatch = true
	}
	if v, ok := flags["drop-incompat-keys"].(bool); ok && v {
		c.API.DropIncompatKeys = true
	}
	if v, ok := flags["log-level"].(string); ok && v != "" {
		c.Logging.Level = v
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Missing .env files are fine
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".igapi.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
