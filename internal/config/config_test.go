package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadFrom_Defaults(t *testing.T) {
	path := writeConfig(t, `
store:
  driver: sqlite
  sqlite_path: /tmp/moodlens.db
`)

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("Server.Port = %q, want 8080", cfg.Server.Port)
	}
	if cfg.Analytics.DefaultWindowDays != 30 {
		t.Errorf("DefaultWindowDays = %d, want 30", cfg.Analytics.DefaultWindowDays)
	}
	if cfg.AI.Timeout != 5*time.Second {
		t.Errorf("AI.Timeout = %v, want 5s", cfg.AI.Timeout)
	}
	if cfg.Logging.Backend != "slog" {
		t.Errorf("Logging.Backend = %q, want slog", cfg.Logging.Backend)
	}
	if cfg.Analytics.Location() != time.UTC {
		t.Errorf("Location = %v, want UTC", cfg.Analytics.Location())
	}
}

func TestLoadFrom_EnvOverrides(t *testing.T) {
	path := writeConfig(t, `
store:
  driver: sqlite
  sqlite_path: /tmp/moodlens.db
ai:
  enabled: true
  endpoint: http://ai.local/analyze
`)
	t.Setenv("MOODLENS_AI_TIMEOUT", "250ms")
	t.Setenv("MOODLENS_ANALYTICS_TIMEZONE", "Europe/Berlin")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, https://*.example.org")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}

	if cfg.AI.Timeout != 250*time.Millisecond {
		t.Errorf("AI.Timeout = %v, want 250ms", cfg.AI.Timeout)
	}
	if cfg.Analytics.Location().String() != "Europe/Berlin" {
		t.Errorf("Location = %v", cfg.Analytics.Location())
	}
	want := []string{"https://a.example.com", "https://*.example.org"}
	if len(cfg.CORS.AllowedOrigins) != len(want) {
		t.Fatalf("AllowedOrigins = %v, want %v", cfg.CORS.AllowedOrigins, want)
	}
	for i := range want {
		if cfg.CORS.AllowedOrigins[i] != want[i] {
			t.Errorf("AllowedOrigins[%d] = %q, want %q", i, cfg.CORS.AllowedOrigins[i], want[i])
		}
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Store:     StoreConfig{Driver: StoreSupabase},
			Supabase:  SupabaseConfig{URL: "http://localhost:54321", ServiceKey: "key"},
			AI:        AIConfig{Timeout: time.Second},
			Analytics: AnalyticsConfig{DefaultWindowDays: 30, DashboardTimeout: time.Second, Timezone: "UTC"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid supabase", mutate: func(c *Config) {}},
		{name: "missing supabase url", mutate: func(c *Config) { c.Supabase.URL = "" }, wantErr: "SUPABASE_URL"},
		{name: "sqlite without path", mutate: func(c *Config) { c.Store = StoreConfig{Driver: StoreSQLite} }, wantErr: "sqlite_path"},
		{name: "unknown driver", mutate: func(c *Config) { c.Store.Driver = "mongo" }, wantErr: "unknown store driver"},
		{name: "cache without addr", mutate: func(c *Config) { c.Cache.Enabled = true }, wantErr: "redis_addr"},
		{name: "ai without endpoint", mutate: func(c *Config) { c.AI.Enabled = true }, wantErr: "ai.endpoint"},
		{name: "bad timezone", mutate: func(c *Config) { c.Analytics.Timezone = "Mars/Olympus" }, wantErr: "timezone"},
		{name: "zero window", mutate: func(c *Config) { c.Analytics.DefaultWindowDays = 0 }, wantErr: "default_window_days"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestWatch_NoConfigFile(t *testing.T) {
	cfg := &Config{}
	// Must not panic without a backing viper instance
	cfg.Watch(func(*Config) { t.Error("callback should not run") })
}
