package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	yaml := `
api:
  base_url: https://pro-api.example.com/api/v3
  timeout: 5s
poller:
  interval: 30s
store:
  per_page: 5
  display_limit: 5
  sparkline: true
server:
  addr: 127.0.0.1:9000
  allowed_origins:
    - http://localhost:3000
database:
  enabled: true
  host: localhost
  name: coins
  user: tracker
  password: testpass
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.API.BaseURL != "https://pro-api.example.com/api/v3" {
		t.Errorf("API.BaseURL = %q", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != 5*time.Second {
		t.Errorf("API.Timeout = %v, want %v", cfg.API.Timeout, 5*time.Second)
	}
	if cfg.Poller.Interval != 30*time.Second {
		t.Errorf("Poller.Interval = %v, want %v", cfg.Poller.Interval, 30*time.Second)
	}
	if cfg.Store.PerPage != 5 || cfg.Store.DisplayLimit != 5 || !cfg.Store.Sparkline {
		t.Errorf("Store = %+v", cfg.Store)
	}
	if len(cfg.Server.AllowedOrigins) != 1 || cfg.Server.AllowedOrigins[0] != "http://localhost:3000" {
		t.Errorf("Server.AllowedOrigins = %v", cfg.Server.AllowedOrigins)
	}
	if !cfg.Database.Enabled || cfg.Database.Host != "localhost" {
		t.Errorf("Database = %+v", cfg.Database)
	}
}

func TestLoadWithEnvSubstitution(t *testing.T) {
	t.Setenv("TEST_CG_KEY", "CG-demo-123")
	t.Setenv("TEST_DB_PASSWORD", "secret123")

	yaml := `
api:
  api_key: ${TEST_CG_KEY}
database:
  password: ${TEST_DB_PASSWORD}
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.API.APIKey != "CG-demo-123" {
		t.Errorf("API.APIKey = %q, want %q", cfg.API.APIKey, "CG-demo-123")
	}
	if cfg.Database.Password != "secret123" {
		t.Errorf("Database.Password = %q, want %q", cfg.Database.Password, "secret123")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load of missing file should fail")
	}
}

func TestParseInvalidYAML(t *testing.T) {
	if _, err := Parse([]byte("api: [unclosed")); err == nil {
		t.Error("Parse of invalid yaml should fail")
	}
}

func TestLoadWithDefaults(t *testing.T) {
	path := writeTempFile(t, "store:\n  per_page: 50\n")

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}

	// Check defaults were applied
	if cfg.API.BaseURL != DefaultBaseURL {
		t.Errorf("API.BaseURL = %q, want default %q", cfg.API.BaseURL, DefaultBaseURL)
	}
	if cfg.API.RetryDelay != DefaultRetryDelay {
		t.Errorf("API.RetryDelay = %v, want default %v", cfg.API.RetryDelay, DefaultRetryDelay)
	}
	if cfg.Poller.Interval != 60*time.Second {
		t.Errorf("Poller.Interval = %v, want 60s", cfg.Poller.Interval)
	}
	if cfg.Store.PerPage != 50 {
		t.Errorf("Store.PerPage = %d, want 50 (explicit value kept)", cfg.Store.PerPage)
	}
	if cfg.Store.Page != DefaultPage {
		t.Errorf("Store.Page = %d, want default %d", cfg.Store.Page, DefaultPage)
	}
	if cfg.Detail.CacheTTL != DefaultCacheTTL {
		t.Errorf("Detail.CacheTTL = %v, want default %v", cfg.Detail.CacheTTL, DefaultCacheTTL)
	}
	if cfg.Database.Port != DefaultDBPort {
		t.Errorf("Database.Port = %d, want default %d", cfg.Database.Port, DefaultDBPort)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "text" {
		t.Errorf("Log = %+v, want info/text", cfg.Log)
	}
}

func TestLoadAndValidate_EmptyPath(t *testing.T) {
	cfg, err := LoadAndValidate("")
	if err != nil {
		t.Fatalf("LoadAndValidate(\"\") failed: %v", err)
	}
	if cfg.Database.Enabled {
		t.Error("database should be disabled by default")
	}
	if cfg.Server.Addr != DefaultServerAddr {
		t.Errorf("Server.Addr = %q, want %q", cfg.Server.Addr, DefaultServerAddr)
	}
}

func TestValidate(t *testing.T) {
	valid := func() TrackerConfig {
		var c TrackerConfig
		c.applyDefaults()
		return c
	}

	tests := []struct {
		name    string
		mutate  func(c *TrackerConfig)
		wantErr string
	}{
		{
			name:    "defaults are valid",
			mutate:  func(c *TrackerConfig) {},
			wantErr: "",
		},
		{
			name:    "negative interval",
			mutate:  func(c *TrackerConfig) { c.Poller.Interval = -time.Second },
			wantErr: "poller.interval must be > 0",
		},
		{
			name:    "per_page above limit",
			mutate:  func(c *TrackerConfig) { c.Store.PerPage = 251 },
			wantErr: "store.per_page must be between 1 and 250, got 251",
		},
		{
			name:    "negative display limit",
			mutate:  func(c *TrackerConfig) { c.Store.DisplayLimit = -1 },
			wantErr: "store.display_limit must be >= 0",
		},
		{
			name:    "database enabled without host",
			mutate:  func(c *TrackerConfig) { c.Database.Enabled = true },
			wantErr: "database.host is required",
		},
		{
			name: "database enabled without password",
			mutate: func(c *TrackerConfig) {
				c.Database = DatabaseConfig{Enabled: true, Host: "localhost", Name: "db", User: "user", MaxConns: 4}
			},
			wantErr: "database.password is required",
		},
		{
			name: "min_conns exceeds max_conns",
			mutate: func(c *TrackerConfig) {
				c.Database = DatabaseConfig{Enabled: true, Host: "localhost", Name: "db", User: "user", Password: "pass", MaxConns: 5, MinConns: 10}
			},
			wantErr: "database.min_conns (10) cannot exceed max_conns (5)",
		},
		{
			name: "disabled database is not checked",
			mutate: func(c *TrackerConfig) {
				c.Database = DatabaseConfig{Enabled: false}
			},
			wantErr: "",
		},
		{
			name:    "bad log level",
			mutate:  func(c *TrackerConfig) { c.Log.Level = "verbose" },
			wantErr: `log.level must be debug, info, warn or error, got "verbose"`,
		},
		{
			name:    "bad log format",
			mutate:  func(c *TrackerConfig) { c.Log.Format = "xml" },
			wantErr: `log.format must be text or json, got "xml"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
			} else {
				if err == nil {
					t.Errorf("Validate() expected error containing %q, got nil", tt.wantErr)
				} else if err.Error() != tt.wantErr {
					t.Errorf("Validate() error = %q, want %q", err.Error(), tt.wantErr)
				}
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}
}

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

func TestExampleConfig(t *testing.T) {
	t.Setenv("COINGECKO_API_KEY", "demo-key")
	t.Setenv("TRACKER_DB_PASSWORD", "secret")

	cfg, err := LoadAndValidate(filepath.Join("..", "..", "configs", "tracker.example.yaml"))
	if err != nil {
		t.Fatalf("LoadAndValidate() error = %v", err)
	}

	if cfg.API.APIKey != "demo-key" {
		t.Errorf("API.APIKey = %q, want demo-key", cfg.API.APIKey)
	}
	if cfg.Poller.Interval != DefaultPollInterval {
		t.Errorf("Poller.Interval = %v, want %v", cfg.Poller.Interval, DefaultPollInterval)
	}
	if !cfg.Store.Sparkline {
		t.Error("Store.Sparkline = false, want true")
	}
	if cfg.Database.Enabled {
		t.Error("Database.Enabled = true, want false")
	}
	if cfg.Database.Password != "secret" {
		t.Errorf("Database.Password = %q, want secret", cfg.Database.Password)
	}
}
