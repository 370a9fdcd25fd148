package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:   "defaults",
			modify: func(c *Config) {},
		},
		{
			name:   "confidence threshold 0.0",
			modify: func(c *Config) { c.ConfidenceThreshold = 0.0 },
		},
		{
			name:   "confidence threshold 1.0",
			modify: func(c *Config) { c.ConfidenceThreshold = 1.0 },
		},
		{
			name:    "confidence threshold negative",
			modify:  func(c *Config) { c.ConfidenceThreshold = -0.1 },
			wantErr: true,
		},
		{
			name:    "confidence threshold above 1",
			modify:  func(c *Config) { c.ConfidenceThreshold = 1.1 },
			wantErr: true,
		},
		{
			name:    "empty user agent",
			modify:  func(c *Config) { c.UserAgent = "  " },
			wantErr: true,
		},
		{
			name:    "api URL without scheme",
			modify:  func(c *Config) { c.APIBaseURL = "musicbrainz.org/ws/2/" },
			wantErr: true,
		},
		{
			name:    "cover art URL with ftp scheme",
			modify:  func(c *Config) { c.CoverArtBaseURL = "ftp://coverartarchive.org/" },
			wantErr: true,
		},
		{
			name:   "http base URL",
			modify: func(c *Config) { c.APIBaseURL = "http://localhost:5000/ws/2/" },
		},
		{
			name:    "zero request timeout",
			modify:  func(c *Config) { c.RequestTimeoutMS = 0 },
			wantErr: true,
		},
		{
			name:   "zero lock wait",
			modify: func(c *Config) { c.LockWaitMS = 0 },
		},
		{
			name:    "negative lock wait",
			modify:  func(c *Config) { c.LockWaitMS = -1 },
			wantErr: true,
		},
		{
			name:    "lease shorter than request timeout",
			modify:  func(c *Config) { c.LockLeaseMS = 1000 },
			wantErr: true,
		},
		{
			name:    "zero poll interval",
			modify:  func(c *Config) { c.LockPollMS = 0 },
			wantErr: true,
		},
		{
			name:   "no min interval",
			modify: func(c *Config) { c.MinIntervalMS = 0 },
		},
		{
			name:    "negative redis db",
			modify:  func(c *Config) { c.RedisDB = -1 },
			wantErr: true,
		},
		{
			name:    "negative cache ttl",
			modify:  func(c *Config) { c.CacheNegativeTTLSeconds = -5 },
			wantErr: true,
		},
		{
			name:   "caching disabled",
			modify: func(c *Config) { c.CacheTTLSeconds, c.CacheNegativeTTLSeconds = 0, 0 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr = %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `user_agent: tagger/2.1 ( ops@example.org )
request_timeout_ms: 3000
redis_addr: localhost:6379
confidence_threshold: 0.5
log_dir: /tmp/mblookup-logs
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("LoadConfigFile() error: %v", err)
	}

	if cfg.UserAgent != "tagger/2.1 ( ops@example.org )" {
		t.Errorf("UserAgent = %q", cfg.UserAgent)
	}
	if cfg.RequestTimeout() != 3*time.Second {
		t.Errorf("RequestTimeout() = %v, want 3s", cfg.RequestTimeout())
	}
	if cfg.RedisAddr != "localhost:6379" {
		t.Errorf("RedisAddr = %q", cfg.RedisAddr)
	}
	if cfg.ConfidenceThreshold != 0.5 {
		t.Errorf("ConfidenceThreshold = %f, want 0.5", cfg.ConfidenceThreshold)
	}
	if cfg.LogDir != "/tmp/mblookup-logs" {
		t.Errorf("LogDir = %q", cfg.LogDir)
	}
	// untouched keys keep their defaults
	if cfg.LockWait() != 5*time.Second {
		t.Errorf("LockWait() = %v, want 5s", cfg.LockWait())
	}
}

func TestLoadConfigFileTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	content := `api_base_url = "http://localhost:5000/ws/2/"
lock_wait_ms = 250
cache_ttl_seconds = 60
verbose = true
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("LoadConfigFile() error: %v", err)
	}

	if cfg.APIBaseURL != "http://localhost:5000/ws/2/" {
		t.Errorf("APIBaseURL = %q", cfg.APIBaseURL)
	}
	if cfg.LockWait() != 250*time.Millisecond {
		t.Errorf("LockWait() = %v", cfg.LockWait())
	}
	if cfg.CacheTTL() != time.Minute {
		t.Errorf("CacheTTL() = %v", cfg.CacheTTL())
	}
	if !cfg.Verbose {
		t.Error("Verbose = false, want true")
	}
}

func TestLoadConfigFileNotFound(t *testing.T) {
	cfg, err := LoadConfigFile("/nonexistent/path/config.yaml")
	if err != nil {
		t.Fatalf("LoadConfigFile() should return defaults for missing file, got error: %v", err)
	}
	if cfg.DefaultInclude != "releases" {
		t.Errorf("expected default DefaultInclude=releases, got %q", cfg.DefaultInclude)
	}
}

func TestLoadConfigFileInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("lock_wait_ms = = 1"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfigFile(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("redis_addr: file:6379\nlock_wait_ms: 100\n"), 0600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("MBLOOKUP_REDIS_ADDR", "env:6379")
	t.Setenv("MBLOOKUP_CONFIDENCE_THRESHOLD", "0.9")
	t.Setenv("MBLOOKUP_VERBOSE", "true")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.RedisAddr != "env:6379" {
		t.Errorf("RedisAddr = %q, want env:6379", cfg.RedisAddr)
	}
	if cfg.LockWaitMS != 100 {
		t.Errorf("LockWaitMS = %d, want file value 100", cfg.LockWaitMS)
	}
	if cfg.ConfidenceThreshold != 0.9 {
		t.Errorf("ConfidenceThreshold = %f, want 0.9", cfg.ConfidenceThreshold)
	}
	if !cfg.Verbose {
		t.Error("Verbose = false, want true")
	}
}

func TestApplyEnvInvalid(t *testing.T) {
	t.Setenv("MBLOOKUP_LOCK_WAIT_MS", "soon")
	cfg := DefaultConfig()
	if err := cfg.ApplyEnv(); err == nil {
		t.Error("expected error for non-numeric MBLOOKUP_LOCK_WAIT_MS")
	}
}

func TestSaveConfigFileRoundTrip(t *testing.T) {
	for _, name := range []string{"config.yaml", "config.toml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", name)
			want := DefaultConfig()
			want.RedisAddr = "cache:6379"
			want.ConfidenceThreshold = 0.65

			if err := SaveConfigFile(want, path); err != nil {
				t.Fatalf("SaveConfigFile() error: %v", err)
			}
			got, err := LoadConfigFile(path)
			if err != nil {
				t.Fatalf("LoadConfigFile() error: %v", err)
			}
			if got != want {
				t.Errorf("round trip mismatch:\n got  %+v\n want %+v", got, want)
			}
		})
	}
}

func TestExpandHome(t *testing.T) {
	home := homeDir()
	tests := []struct {
		input string
		want  string
	}{
		{"~/logs", filepath.Join(home, "logs")},
		{"/absolute/path", "/absolute/path"},
		{"relative/path", "relative/path"},
		{"~notslash", "~notslash"},
	}

	for _, tt := range tests {
		got := ExpandHome(tt.input)
		if got != tt.want {
			t.Errorf("ExpandHome(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
