package config

import (
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.BackendURL != "http://localhost:3000" {
		t.Errorf("expected default backend_url %q, got %q", "http://localhost:3000", cfg.BackendURL)
	}
	if cfg.Poll.StatsSeconds != 30 {
		t.Errorf("expected default poll.stats_seconds 30, got %d", cfg.Poll.StatsSeconds)
	}
	if cfg.Poll.EngagementSeconds != 15 {
		t.Errorf("expected default poll.engagement_seconds 15, got %d", cfg.Poll.EngagementSeconds)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.aidesk.yml")

	original := DefaultConfig()
	original.BackendURL = "https://agent.example.com"
	original.TimeoutSeconds = 30
	original.Poll.StatsSeconds = 60
	original.Poll.EngagementSeconds = 20

	if err := original.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.BackendURL != original.BackendURL {
		t.Errorf("backend_url: got %q, want %q", loaded.BackendURL, original.BackendURL)
	}
	if loaded.TimeoutSeconds != original.TimeoutSeconds {
		t.Errorf("timeout_seconds: got %d, want %d", loaded.TimeoutSeconds, original.TimeoutSeconds)
	}
	if loaded.Poll.StatsSeconds != 60 {
		t.Errorf("poll.stats_seconds: got %d, want 60", loaded.Poll.StatsSeconds)
	}
	if loaded.Poll.EngagementSeconds != 20 {
		t.Errorf("poll.engagement_seconds: got %d, want 20", loaded.Poll.EngagementSeconds)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yml"))
	if err != nil {
		t.Fatalf("Load of missing file should use defaults, got %v", err)
	}
	if cfg.BackendURL != DefaultConfig().BackendURL {
		t.Errorf("expected default backend_url, got %q", cfg.BackendURL)
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("AIDESK_BACKEND_URL", "http://10.0.0.5:3000")

	cfg, err := Load(filepath.Join(t.TempDir(), "none.yml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BackendURL != "http://10.0.0.5:3000" {
		t.Errorf("env override not applied, got %q", cfg.BackendURL)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"empty backend url", func(c *Config) { c.BackendURL = "" }, true},
		{"bad scheme", func(c *Config) { c.BackendURL = "ftp://example.com" }, true},
		{"not a url", func(c *Config) { c.BackendURL = "://nope" }, true},
		{"zero timeout", func(c *Config) { c.TimeoutSeconds = 0 }, true},
		{"negative stats poll", func(c *Config) { c.Poll.StatsSeconds = -1 }, true},
		{"zero engagement poll", func(c *Config) { c.Poll.EngagementSeconds = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
