package config

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go-ecb-exchange-bank/ecb"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, ecb.LatestURL, cfg.LatestURL)
	assert.Equal(t, ecb.HistoricalURL, cfg.HistoricalURL)
	assert.Equal(t, 10*time.Second, cfg.FetchTimeout)
	assert.Equal(t, time.Hour, cfg.RatesTTL)
	assert.Equal(t, BackendNone, cfg.CacheBackend)
	assert.Equal(t, "ecb:", cfg.RedisKeyPrefix)
	assert.Equal(t, 24*time.Hour, cfg.HistoricalRefresh)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("RATES_TTL", "0")
	t.Setenv("CACHE_BACKEND", "Redis")
	t.Setenv("HISTORICAL_REFRESH", "6h")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, time.Duration(0), cfg.RatesTTL)
	assert.Equal(t, BackendRedis, cfg.CacheBackend)
	assert.Equal(t, 6*time.Hour, cfg.HistoricalRefresh)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"CACHE_BACKEND", "memcached"},
		{"RATES_TTL", "soon"},
		{"RATES_TTL", "-1m"},
		{"FETCH_TIMEOUT", "0"},
		{"FETCH_TIMEOUT", ""},
		{"HTTP_ADDR", ""},
		{"ECB_LATEST_URL", ""},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := Load()

			assert.NotNil(t, err)
		})
	}
}

func TestLoad_EmptyTTLDisablesExpiry(t *testing.T) {
	t.Setenv("RATES_TTL", "")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), cfg.RatesTTL)
}
