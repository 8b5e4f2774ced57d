package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default() should validate, got %v", err)
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("Port = %d, want 8000", cfg.Server.Port)
	}
	if cfg.Storage.DownloadPath != "downloads" {
		t.Errorf("DownloadPath = %q, want %q", cfg.Storage.DownloadPath, "downloads")
	}
	if cfg.Worker.Count != 4 {
		t.Errorf("Worker.Count = %d, want 4", cfg.Worker.Count)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"zero port", func(c *Config) { c.Server.Port = 0 }, true},
		{"port too large", func(c *Config) { c.Server.Port = 70000 }, true},
		{"missing download path", func(c *Config) { c.Storage.DownloadPath = "" }, true},
		{"no workers", func(c *Config) { c.Worker.Count = 0 }, true},
		{"sqlite backend", func(c *Config) { c.Jobs.Backend = JobsBackendSQLite }, false},
		{"sqlite without path", func(c *Config) {
			c.Jobs.Backend = JobsBackendSQLite
			c.Jobs.SQLitePath = ""
		}, true},
		{"unknown jobs backend", func(c *Config) { c.Jobs.Backend = "redis" }, true},
		{"ytdlp source", func(c *Config) { c.Source.Backend = SourceBackendYTDLP }, false},
		{"unknown source", func(c *Config) { c.Source.Backend = "vimeo" }, true},
		{"no fetch concurrency", func(c *Config) { c.Source.FetchConcurrency = 0 }, true},
		{"no attempts", func(c *Config) { c.Source.MaxRetries = 0 }, true},
		{"retention disabled", func(c *Config) { c.Jobs.Retention = 0 }, false},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestServerConfig_Address(t *testing.T) {
	tests := []struct {
		name string
		cfg  ServerConfig
		want string
	}{
		{
			name: "default",
			cfg:  ServerConfig{Host: "0.0.0.0", Port: 8000},
			want: "0.0.0.0:8000",
		},
		{
			name: "localhost",
			cfg:  ServerConfig{Host: "localhost", Port: 8080},
			want: "localhost:8080",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.Address(); got != tt.want {
				t.Errorf("Address() = %q, want %q", got, tt.want)
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
		{"info", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if err != nil {
			t.Errorf("ParseLevel(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLoad_FromYAMLFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	yamlContent := `
server:
  host: "localhost"
  port: 8080
storage:
  download_path: "/yaml/downloads"
worker:
  count: 2
jobs:
  backend: sqlite
  sqlite_path: "/yaml/jobs.db"
  retention: 1h
source:
  backend: ytdlp
  fetch_timeout: 10s
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Host != "localhost" {
		t.Errorf("Host = %q, want %q", cfg.Server.Host, "localhost")
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Port = %d, want %d", cfg.Server.Port, 8080)
	}
	if cfg.Storage.DownloadPath != "/yaml/downloads" {
		t.Errorf("DownloadPath = %q, want %q", cfg.Storage.DownloadPath, "/yaml/downloads")
	}
	if cfg.Worker.Count != 2 {
		t.Errorf("Worker.Count = %d, want 2", cfg.Worker.Count)
	}
	if cfg.Jobs.Backend != JobsBackendSQLite || cfg.Jobs.SQLitePath != "/yaml/jobs.db" {
		t.Errorf("Jobs = %+v", cfg.Jobs)
	}
	if cfg.Jobs.Retention != time.Hour {
		t.Errorf("Retention = %v, want 1h", cfg.Jobs.Retention)
	}
	if cfg.Source.Backend != SourceBackendYTDLP {
		t.Errorf("Source.Backend = %q, want %q", cfg.Source.Backend, SourceBackendYTDLP)
	}
	if cfg.Source.FetchTimeout != 10*time.Second {
		t.Errorf("FetchTimeout = %v, want 10s", cfg.Source.FetchTimeout)
	}
	// Unset keys keep their defaults.
	if cfg.Source.DownloadTimeout != 30*time.Minute {
		t.Errorf("DownloadTimeout = %v, want 30m", cfg.Source.DownloadTimeout)
	}
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	yamlContent := `
server:
  port: 8080
storage:
  download_path: "/yaml/path"
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("DOWNLOAD_PATH", "/env/path")
	t.Setenv("WORKER_COUNT", "8")
	t.Setenv("CORS_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("Port should be from env, got %d", cfg.Server.Port)
	}
	if cfg.Storage.DownloadPath != "/env/path" {
		t.Errorf("DownloadPath should be from env, got %q", cfg.Storage.DownloadPath)
	}
	if cfg.Worker.Count != 8 {
		t.Errorf("Worker.Count should be from env, got %d", cfg.Worker.Count)
	}
	if len(cfg.Server.CORSOrigins) != 2 {
		t.Errorf("CORSOrigins = %v, want 2 entries", cfg.Server.CORSOrigins)
	}
}

func TestLoad_EnvOnly(t *testing.T) {
	t.Setenv("JOBS_RETENTION", "0s")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Jobs.Retention != 0 {
		t.Errorf("Retention = %v, want 0", cfg.Jobs.Retention)
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("Port = %d, want default 8000", cfg.Server.Port)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	invalidYAML := `
server:
  host: "localhost
  port: 8080
`
	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	if _, err := Load(configPath); err == nil {
		t.Error("Load should fail for invalid YAML")
	}
}

func TestLoad_NonexistentFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Error("Load should fail for nonexistent file")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	t.Setenv("WORKER_COUNT", "0")

	if _, err := Load(""); err == nil {
		t.Error("Load should fail validation with zero workers")
	}
}
