package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	require.Equal(t, "https://sacavia.com", cfg.BaseURL)
	require.Equal(t, 60*time.Second, cfg.RequestTimeout)
	require.Equal(t, 120*time.Second, cfg.UploadTimeout)
	require.Equal(t, 500*time.Millisecond, cfg.DebounceInterval)
	require.Equal(t, "memory", cfg.SessionStore)
	require.NoError(t, cfg.Validate())
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SACAVIA_BASE_URL", "http://localhost:8089")
	t.Setenv("REQUEST_TIMEOUT", "5s")
	t.Setenv("UPLOAD_TIMEOUT", "not-a-duration")
	t.Setenv("REQUESTS_PER_SECOND", "2.5")
	t.Setenv("SESSION_STORE", "redis")
	t.Setenv("METRICS_ENABLED", "true")

	cfg := Load()
	require.Equal(t, "http://localhost:8089", cfg.BaseURL)
	require.Equal(t, 5*time.Second, cfg.RequestTimeout)
	require.Equal(t, 120*time.Second, cfg.UploadTimeout)
	require.Equal(t, 2.5, cfg.RequestsPerSecond)
	require.Equal(t, "redis", cfg.SessionStore)
	require.True(t, cfg.MetricsEnabled)
	require.NoError(t, cfg.Validate())
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"relative base url", func(c *Config) { c.BaseURL = "/api" }},
		{"zero timeout", func(c *Config) { c.RequestTimeout = 0 }},
		{"upload shorter than request", func(c *Config) { c.UploadTimeout = time.Second }},
		{"negative rate", func(c *Config) { c.RequestsPerSecond = -1 }},
		{"rate without burst", func(c *Config) { c.RequestsPerSecond = 1; c.RequestBurst = 0 }},
		{"debounce too short", func(c *Config) { c.DebounceInterval = time.Millisecond }},
		{"unknown store", func(c *Config) { c.SessionStore = "sqlite" }},
		{"unknown log level", func(c *Config) { c.LogLevel = "trace" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Load()
			tt.mutate(cfg)
			require.Error(t, cfg.Validate())
		})
	}
}
