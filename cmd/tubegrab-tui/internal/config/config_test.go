package config

import (
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	t.Setenv("TUBEGRAB_SERVER", "")
	t.Setenv("TUBEGRAB_API_KEY", "")
	t.Setenv("TUBEGRAB_STATUS_REFRESH", "")

	cfg := Load()

	if cfg.ServerURL != "http://localhost:8000" {
		t.Errorf("expected default server 'http://localhost:8000', got '%s'", cfg.ServerURL)
	}
	if cfg.APIKey != "" {
		t.Errorf("expected empty API key, got '%s'", cfg.APIKey)
	}
	if cfg.StatusRefresh != 2*time.Second {
		t.Errorf("expected 2s refresh, got %v", cfg.StatusRefresh)
	}
	if cfg.RequestTimeout != 90*time.Second {
		t.Errorf("expected 90s request timeout, got %v", cfg.RequestTimeout)
	}
	if cfg.PageSize != 100 {
		t.Errorf("expected page size 100, got %d", cfg.PageSize)
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("TUBEGRAB_SERVER", "http://tubegrab.lan:9000")
	t.Setenv("TUBEGRAB_API_KEY", "secret")
	t.Setenv("TUBEGRAB_STATUS_REFRESH", "10s")

	cfg := Load()

	if cfg.ServerURL != "http://tubegrab.lan:9000" {
		t.Errorf("expected custom server, got '%s'", cfg.ServerURL)
	}
	if cfg.APIKey != "secret" {
		t.Errorf("expected API key 'secret', got '%s'", cfg.APIKey)
	}
	if cfg.StatusRefresh != 10*time.Second {
		t.Errorf("expected 10s refresh, got %v", cfg.StatusRefresh)
	}
}

func TestGetDuration(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  time.Duration
	}{
		{"unset", "", 5 * time.Second},
		{"valid", "250ms", 250 * time.Millisecond},
		{"invalid", "soon", 5 * time.Second},
		{"negative", "-1s", 5 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TUBEGRAB_TEST_DURATION", tt.value)
			if got := getDuration("TUBEGRAB_TEST_DURATION", 5*time.Second); got != tt.want {
				t.Errorf("getDuration() = %v, want %v", got, tt.want)
			}
		})
	}
}
