package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "MBLOOKUP_"

// Config contains the program configuration.
// Durations are stored as integers so YAML, TOML and env values all read the same way.
type Config struct {
	UserAgent       string `yaml:"user_agent" toml:"user_agent" env:"USER_AGENT"`
	APIBaseURL      string `yaml:"api_base_url" toml:"api_base_url" env:"API_BASE_URL"`
	CoverArtBaseURL string `yaml:"cover_art_base_url" toml:"cover_art_base_url" env:"COVER_ART_BASE_URL"`

	RequestTimeoutMS int `yaml:"request_timeout_ms" toml:"request_timeout_ms" env:"REQUEST_TIMEOUT_MS"`
	MinIntervalMS    int `yaml:"min_interval_ms" toml:"min_interval_ms" env:"MIN_INTERVAL_MS"`
	LockWaitMS       int `yaml:"lock_wait_ms" toml:"lock_wait_ms" env:"LOCK_WAIT_MS"`
	LockLeaseMS      int `yaml:"lock_lease_ms" toml:"lock_lease_ms" env:"LOCK_LEASE_MS"`
	LockPollMS       int `yaml:"lock_poll_ms" toml:"lock_poll_ms" env:"LOCK_POLL_MS"`

	// Empty RedisAddr keeps locks and cache in process.
	RedisAddr     string `yaml:"redis_addr" toml:"redis_addr" env:"REDIS_ADDR"`
	RedisPassword string `yaml:"redis_password" toml:"redis_password" env:"REDIS_PASSWORD"`
	RedisDB       int    `yaml:"redis_db" toml:"redis_db" env:"REDIS_DB"`
	RedisPrefix   string `yaml:"redis_prefix" toml:"redis_prefix" env:"REDIS_PREFIX"`

	CacheTTLSeconds         int `yaml:"cache_ttl_seconds" toml:"cache_ttl_seconds" env:"CACHE_TTL_SECONDS"`
	CacheNegativeTTLSeconds int `yaml:"cache_negative_ttl_seconds" toml:"cache_negative_ttl_seconds" env:"CACHE_NEGATIVE_TTL_SECONDS"`

	DefaultInclude      string  `yaml:"default_include" toml:"default_include" env:"DEFAULT_INCLUDE"`
	ConfidenceThreshold float64 `yaml:"confidence_threshold" toml:"confidence_threshold" env:"CONFIDENCE_THRESHOLD"`
	Verbose             bool    `yaml:"verbose" toml:"verbose" env:"VERBOSE"`
	LogDir              string  `yaml:"log_dir" toml:"log_dir" env:"LOG_DIR"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		UserAgent:               "mblookup/1.0",
		APIBaseURL:              "https://musicbrainz.org/ws/2/",
		CoverArtBaseURL:         "https://coverartarchive.org/",
		RequestTimeoutMS:        7000,
		MinIntervalMS:           1000,
		LockWaitMS:              5000,
		LockLeaseMS:             10000,
		LockPollMS:              500,
		RedisPrefix:             "mblookup",
		CacheTTLSeconds:         24 * 60 * 60,
		CacheNegativeTTLSeconds: 60 * 60,
		DefaultInclude:          "releases",
		ConfidenceThreshold:     0.7,
		LogDir:                  GetDefaultLogPath(),
	}
}

// Load reads the config file at path (or the first one found in the
// standard locations) and then applies environment overrides.
func Load(path string) (Config, error) {
	cfg, err := LoadConfigFile(path)
	if err != nil {
		return cfg, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadConfigFile loads configuration from a YAML or TOML file, picked by extension.
// If path is empty, searches standard locations. Returns defaults if no file found.
func LoadConfigFile(path string) (Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = FindConfigFile()
		if path == "" {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if isTOML(path) {
		err = toml.Unmarshal(data, &cfg)
	} else {
		err = yaml.Unmarshal(data, &cfg)
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	cfg.LogDir = ExpandHome(cfg.LogDir)

	return cfg, nil
}

// ApplyEnv overrides fields from MBLOOKUP_* environment variables.
// Unset variables leave the current value alone.
func (c *Config) ApplyEnv() error {
	if err := env.ParseWithOptions(c, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("failed to read environment: %w", err)
	}
	c.LogDir = ExpandHome(c.LogDir)
	return nil
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir(), path[2:])
	}
	return path
}

// FindConfigFile searches for a config file in standard locations
func FindConfigFile() string {
	home := homeDir()
	locations := []string{
		"./mblookup.yaml",
		"./mblookup.yml",
		"./mblookup.toml",
		filepath.Join(home, ".config", "mblookup", "config.yaml"),
		filepath.Join(home, ".config", "mblookup", "config.yml"),
		filepath.Join(home, ".config", "mblookup", "config.toml"),
		filepath.Join(home, ".mblookup.yaml"),
	}

	for _, path := range locations {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// SaveConfigFile writes cfg as YAML, or TOML when path ends in .toml.
func SaveConfigFile(cfg Config, path string) error {
	var (
		data []byte
		err  error
	)
	if isTOML(path) {
		data, err = toml.Marshal(cfg)
	} else {
		data, err = yaml.Marshal(cfg)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetDefaultConfigPath returns the default config file path
func GetDefaultConfigPath() string {
	return filepath.Join(homeDir(), ".config", "mblookup", "config.yaml")
}

// GetDefaultLogPath returns the default log directory path
func GetDefaultLogPath() string {
	return filepath.Join(homeDir(), ".local", "share", "mblookup", "logs")
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return os.Getenv("HOME")
	}
	return home
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

func (c *Config) RequestTimeout() time.Duration { return ms(c.RequestTimeoutMS) }
func (c *Config) MinInterval() time.Duration    { return ms(c.MinIntervalMS) }
func (c *Config) LockWait() time.Duration       { return ms(c.LockWaitMS) }
func (c *Config) LockLease() time.Duration      { return ms(c.LockLeaseMS) }
func (c *Config) LockPoll() time.Duration       { return ms(c.LockPollMS) }

func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

func (c *Config) CacheNegativeTTL() time.Duration {
	return time.Duration(c.CacheNegativeTTLSeconds) * time.Second
}

func ms(n int) time.Duration {
	return time.Duration(n) * time.Millisecond
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if strings.TrimSpace(c.UserAgent) == "" {
		return fmt.Errorf("user_agent cannot be empty")
	}

	for name, raw := range map[string]string{
		"api_base_url":       c.APIBaseURL,
		"cover_art_base_url": c.CoverArtBaseURL,
	} {
		u, err := url.Parse(raw)
		if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			return fmt.Errorf("%s must be an absolute http(s) URL, got %q", name, raw)
		}
	}

	if c.RequestTimeoutMS <= 0 {
		return fmt.Errorf("request_timeout_ms must be positive, got %d", c.RequestTimeoutMS)
	}
	if c.LockWaitMS < 0 {
		return fmt.Errorf("lock_wait_ms cannot be negative, got %d", c.LockWaitMS)
	}
	if c.LockLeaseMS <= 0 {
		return fmt.Errorf("lock_lease_ms must be positive, got %d", c.LockLeaseMS)
	}
	if c.LockLeaseMS < c.RequestTimeoutMS {
		return fmt.Errorf("lock_lease_ms (%d) must cover request_timeout_ms (%d)", c.LockLeaseMS, c.RequestTimeoutMS)
	}
	if c.LockPollMS <= 0 {
		return fmt.Errorf("lock_poll_ms must be positive, got %d", c.LockPollMS)
	}
	if c.MinIntervalMS < 0 {
		return fmt.Errorf("min_interval_ms cannot be negative, got %d", c.MinIntervalMS)
	}

	if c.RedisDB < 0 {
		return fmt.Errorf("redis_db cannot be negative, got %d", c.RedisDB)
	}
	if c.CacheTTLSeconds < 0 || c.CacheNegativeTTLSeconds < 0 {
		return fmt.Errorf("cache TTLs cannot be negative")
	}

	if c.ConfidenceThreshold < 0 || c.ConfidenceThreshold > 1 {
		return fmt.Errorf("confidence_threshold must be between 0.0 and 1.0, got %.2f", c.ConfidenceThreshold)
	}

	return nil
}
