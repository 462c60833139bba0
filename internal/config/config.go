// internal/config/config.go
// Centralized configuration management
// Loads from environment variables with sensible defaults

package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"
)

// Config holds all client configuration
type Config struct {
	// API
	BaseURL     string
	Environment string
	UserAgent   string

	// Transport
	RequestTimeout    time.Duration
	UploadTimeout     time.Duration
	RequestsPerSecond float64 // 0 disables client-side throttling
	RequestBurst      int

	// Forms
	DebounceInterval time.Duration

	// Session persistence
	SessionStore     string // "memory" or "redis"
	RedisURL         string
	SessionKeyPrefix string

	// Media
	MediaS3Region string

	// Observability
	LogLevel       string
	MetricsEnabled bool

	// Sandbox backend
	SandboxPort      string
	SandboxJWTSecret string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		BaseURL:     getEnv("SACAVIA_BASE_URL", "https://sacavia.com"),
		Environment: getEnv("ENVIRONMENT", "development"),
		UserAgent:   getEnv("USER_AGENT", "sacavia-go/1.0"),

		RequestTimeout:    getEnvDuration("REQUEST_TIMEOUT", "60s"),
		UploadTimeout:     getEnvDuration("UPLOAD_TIMEOUT", "120s"),
		RequestsPerSecond: getEnvFloat("REQUESTS_PER_SECOND", 0),
		RequestBurst:      getEnvInt("REQUEST_BURST", 5),

		DebounceInterval: getEnvDuration("VALIDATION_DEBOUNCE", "500ms"),

		SessionStore:     getEnv("SESSION_STORE", "memory"),
		RedisURL:         getEnv("REDIS_URL", "redis://localhost:6379/0"),
		SessionKeyPrefix: getEnv("SESSION_KEY_PREFIX", "sacavia:session:"),

		MediaS3Region: getEnv("MEDIA_S3_REGION", "us-east-1"),

		LogLevel:       getEnv("LOG_LEVEL", "info"),
		MetricsEnabled: getEnvBool("METRICS_ENABLED", false),

		SandboxPort:      getEnv("SANDBOX_PORT", "8089"),
		SandboxJWTSecret: getEnv("SANDBOX_JWT_SECRET", "sandbox-secret"),
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid base URL: %q", c.BaseURL)
	}

	if c.RequestTimeout <= 0 || c.UploadTimeout <= 0 {
		return fmt.Errorf("timeouts must be positive")
	}
	if c.UploadTimeout < c.RequestTimeout {
		return fmt.Errorf("upload timeout must not be shorter than request timeout")
	}

	if c.RequestsPerSecond < 0 {
		return fmt.Errorf("requests per second must not be negative")
	}
	if c.RequestsPerSecond > 0 && c.RequestBurst < 1 {
		return fmt.Errorf("request burst must be at least 1 when throttling is enabled")
	}

	if c.DebounceInterval < 50*time.Millisecond || c.DebounceInterval > 5*time.Second {
		return fmt.Errorf("validation debounce must be between 50ms and 5s")
	}

	switch c.SessionStore {
	case "memory":
	case "redis":
		if c.RedisURL == "" {
			return fmt.Errorf("redis session store requires REDIS_URL")
		}
	default:
		return fmt.Errorf("invalid session store: %s", c.SessionStore)
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.LogLevel)
	}

	return nil
}

// IsProduction returns true if running in production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getEnvDuration falls back to the default when the value does not parse
func getEnvDuration(key string, defaultValue string) time.Duration {
	value := getEnv(key, defaultValue)
	duration, err := time.ParseDuration(value)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}
	return duration
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
