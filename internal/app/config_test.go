package app

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.AppAddr)
	require.Equal(t, 5*time.Minute, cfg.FilterCacheTTL)
	require.Equal(t, 8, cfg.MaxDatasets)
	require.Empty(t, cfg.RedisAddr)
	require.False(t, cfg.IsProduction())
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("FILTER_CACHE_TTL", "90s")
	t.Setenv("MAX_DATASETS", "3")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.True(t, cfg.IsProduction())
	require.Equal(t, "redis:6379", cfg.RedisAddr)
	require.Equal(t, 90*time.Second, cfg.FilterCacheTTL)
	require.Equal(t, 3, cfg.MaxDatasets)
}

func TestLoadConfigRejectsBadLimits(t *testing.T) {
	t.Setenv("MAX_DATASETS", "0")
	_, err := LoadConfig()
	require.ErrorContains(t, err, "max datasets")

	t.Setenv("MAX_DATASETS", "many")
	_, err = LoadConfig()
	require.Error(t, err)
}

func TestNewLoggerFormats(t *testing.T) {
	var buf bytes.Buffer
	NewLoggerTo(&buf, &Config{LogFormat: "json", LogLevel: "warn"}).Info("hidden")
	require.Empty(t, buf.String())

	NewLoggerTo(&buf, &Config{LogFormat: "json", LogLevel: "warn"}).Warn("shown")
	require.True(t, strings.HasPrefix(buf.String(), "{"), buf.String())

	buf.Reset()
	NewLoggerTo(&buf, nil).Info("plain")
	require.Contains(t, buf.String(), "msg=plain")
}
