package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Job repository backends.
const (
	JobsBackendMemory = "memory"
	JobsBackendSQLite = "sqlite"
)

// Metadata source backends.
const (
	SourceBackendYouTube = "youtube"
	SourceBackendYTDLP   = "ytdlp"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Worker    WorkerConfig    `yaml:"worker"`
	Jobs      JobsConfig      `yaml:"jobs"`
	Source    SourceConfig    `yaml:"source"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host         string        `yaml:"host" envconfig:"SERVER_HOST"`
	Port         int           `yaml:"port" envconfig:"SERVER_PORT"`
	APIKey       string        `yaml:"api_key" envconfig:"API_KEY"`
	ReadTimeout  time.Duration `yaml:"read_timeout" envconfig:"SERVER_READ_TIMEOUT"`
	WriteTimeout time.Duration `yaml:"write_timeout" envconfig:"SERVER_WRITE_TIMEOUT"`
	CORSOrigins  []string      `yaml:"cors_origins" envconfig:"CORS_ORIGINS"`
}

// StorageConfig holds filesystem storage configuration.
type StorageConfig struct {
	DownloadPath string `yaml:"download_path" envconfig:"DOWNLOAD_PATH"`
}

// WorkerConfig holds worker pool configuration.
type WorkerConfig struct {
	Count           int           `yaml:"count" envconfig:"WORKER_COUNT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"WORKER_SHUTDOWN_TIMEOUT"`
}

// JobsConfig holds job registry configuration.
type JobsConfig struct {
	Backend         string        `yaml:"backend" envconfig:"JOBS_BACKEND"`
	SQLitePath      string        `yaml:"sqlite_path" envconfig:"JOBS_SQLITE_PATH"`
	Retention       time.Duration `yaml:"retention" envconfig:"JOBS_RETENTION"`
	JanitorInterval time.Duration `yaml:"janitor_interval" envconfig:"JOBS_JANITOR_INTERVAL"`
}

// SourceConfig holds metadata source configuration.
type SourceConfig struct {
	Backend          string        `yaml:"backend" envconfig:"SOURCE_BACKEND"`
	FetchTimeout     time.Duration `yaml:"fetch_timeout" envconfig:"SOURCE_FETCH_TIMEOUT"`
	DownloadTimeout  time.Duration `yaml:"download_timeout" envconfig:"SOURCE_DOWNLOAD_TIMEOUT"`
	FetchConcurrency int           `yaml:"fetch_concurrency" envconfig:"SOURCE_FETCH_CONCURRENCY"`
	MaxRetries       int           `yaml:"max_retries" envconfig:"SOURCE_MAX_RETRIES"`
	RetryDelay       time.Duration `yaml:"retry_delay" envconfig:"SOURCE_RETRY_DELAY"`
	YTDLPBinary      string        `yaml:"ytdlp_binary" envconfig:"SOURCE_YTDLP_BINARY"`
}

// RateLimitConfig limits download submissions per client IP.
type RateLimitConfig struct {
	DownloadRequests int           `yaml:"download_requests" envconfig:"RATE_LIMIT_DOWNLOAD_REQUESTS"`
	Window           time.Duration `yaml:"window" envconfig:"RATE_LIMIT_WINDOW"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `yaml:"level" envconfig:"LOG_LEVEL"`
}

// Default returns the configuration used when neither file nor environment set a value.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8000,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 2 * time.Minute,
			CORSOrigins:  []string{"*"},
		},
		Storage: StorageConfig{
			DownloadPath: "downloads",
		},
		Worker: WorkerConfig{
			Count:           4,
			ShutdownTimeout: 25 * time.Second,
		},
		Jobs: JobsConfig{
			Backend:         JobsBackendMemory,
			SQLitePath:      "tubegrab.db",
			Retention:       24 * time.Hour,
			JanitorInterval: 10 * time.Minute,
		},
		Source: SourceConfig{
			Backend:          SourceBackendYouTube,
			FetchTimeout:     60 * time.Second,
			DownloadTimeout:  30 * time.Minute,
			FetchConcurrency: 4,
			MaxRetries:       3,
			RetryDelay:       2 * time.Second,
			YTDLPBinary:      "yt-dlp",
		},
		RateLimit: RateLimitConfig{
			DownloadRequests: 30,
			Window:           time.Minute,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from file and environment variables.
// Defaults are applied first, then the file, then the environment.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Validate checks that configuration values are usable.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Storage.DownloadPath == "" {
		return fmt.Errorf("DOWNLOAD_PATH is required")
	}
	if c.Worker.Count < 1 {
		return fmt.Errorf("WORKER_COUNT must be at least 1, got %d", c.Worker.Count)
	}
	switch c.Jobs.Backend {
	case JobsBackendMemory:
	case JobsBackendSQLite:
		if c.Jobs.SQLitePath == "" {
			return fmt.Errorf("JOBS_SQLITE_PATH is required for the sqlite backend")
		}
	default:
		return fmt.Errorf("unknown JOBS_BACKEND %q", c.Jobs.Backend)
	}
	switch c.Source.Backend {
	case SourceBackendYouTube, SourceBackendYTDLP:
	default:
		return fmt.Errorf("unknown SOURCE_BACKEND %q", c.Source.Backend)
	}
	if c.Source.FetchConcurrency < 1 {
		return fmt.Errorf("SOURCE_FETCH_CONCURRENCY must be at least 1, got %d", c.Source.FetchConcurrency)
	}
	if c.Source.MaxRetries < 1 {
		return fmt.Errorf("SOURCE_MAX_RETRIES must be at least 1, got %d", c.Source.MaxRetries)
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// Address returns the server address in host:port format.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ParseLevel maps a level name to a slog level.
func ParseLevel(level string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		return 0, fmt.Errorf("invalid LOG_LEVEL %q", level)
	}
	return l, nil
}
