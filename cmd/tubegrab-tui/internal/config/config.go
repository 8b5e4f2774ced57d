// Package config provides configuration for the tubegrab TUI.
package config

import (
	"os"
	"time"
)

// Config holds the TUI configuration.
type Config struct {
	// ServerURL is the base URL of the tubegrab API.
	ServerURL string
	APIKey    string

	RequestTimeout time.Duration
	StatusRefresh  time.Duration

	// PageSize is the number of jobs shown in the downloads table.
	PageSize int
}

// Load returns configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		ServerURL:      getEnv("TUBEGRAB_SERVER", "http://localhost:8000"),
		APIKey:         getEnv("TUBEGRAB_API_KEY", ""),
		RequestTimeout: getDuration("TUBEGRAB_REQUEST_TIMEOUT", 90*time.Second),
		StatusRefresh:  getDuration("TUBEGRAB_STATUS_REFRESH", 2*time.Second),
		PageSize:       100,
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil && d > 0 {
			return d
		}
	}
	return defaultVal
}
