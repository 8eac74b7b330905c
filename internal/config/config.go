package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server  ServerConfig
	Storage StorageConfig
	App     AppConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// StorageConfig holds durable slot settings
type StorageConfig struct {
	// DataDir is the directory holding the analytics blob and the
	// session tag file
	DataDir string
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Environment        string
	LogLevel           string
	RecentEventsLimit  int // default limit for the recent-events query
	RecentEventsMax    int // hard cap a client may request
	RateLimitEnabled   bool
	RateLimitPerMinute int
	RateLimitBurst     int
	EnableMetrics      bool
	CORSOrigin         string
}

// Load reads configuration from environment variables, falling back to
// defaults suitable for local development
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  parseDuration("SERVER_READ_TIMEOUT", "10s"),
			WriteTimeout: parseDuration("SERVER_WRITE_TIMEOUT", "10s"),
			IdleTimeout:  parseDuration("SERVER_IDLE_TIMEOUT", "120s"),
		},
		Storage: StorageConfig{
			DataDir: getEnv("ANALYTICS_DATA_DIR", "data"),
		},
		App: AppConfig{
			Environment:        getEnv("APP_ENV", "development"),
			LogLevel:           getEnv("LOG_LEVEL", "info"),
			RecentEventsLimit:  parseInt("RECENT_EVENTS_LIMIT", 10),
			RecentEventsMax:    parseInt("RECENT_EVENTS_MAX", 100),
			RateLimitEnabled:   parseBool("RATE_LIMIT_ENABLED", true),
			RateLimitPerMinute: parseInt("RATE_LIMIT_REQUESTS_PER_MINUTE", 120),
			RateLimitBurst:     parseInt("RATE_LIMIT_BURST", 30),
			EnableMetrics:      parseBool("ENABLE_METRICS", true),
			CORSOrigin:         getEnv("CORS_ORIGIN", "*"),
		},
	}

	return cfg, nil
}

// StorePath returns the path of the analytics blob - the durable slot
func (c *StorageConfig) StorePath() string {
	return filepath.Join(c.DataDir, "analytics.json")
}

// SessionPath returns the path of the session tag file, a separate slot
// beside the blob
func (c *StorageConfig) SessionPath() string {
	return filepath.Join(c.DataDir, "session")
}

// Helper functions to parse environment variables with defaults

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func parseBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func parseDuration(key string, defaultValue string) time.Duration {
	value := getEnv(key, defaultValue)
	duration, err := time.ParseDuration(value)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}
	return duration
}
