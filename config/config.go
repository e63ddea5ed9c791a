package config

import (
	"fmt"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go-ecb-exchange-bank/ecb"
	"strings"
	"time"
)

// Cache backends for the raw feed documents
const (
	BackendNone  = "none"
	BackendFile  = "file"
	BackendRedis = "redis"
)

// Config holds application configuration.
type Config struct {
	HTTPAddr string
	LogLevel string

	LatestURL     string
	HistoricalURL string
	FetchTimeout  time.Duration

	// RatesTTL zero disables lazy expiry, from RATES_TTL set to "" or "0"
	RatesTTL time.Duration

	CacheBackend        string
	LatestCachePath     string
	HistoricalCachePath string
	RedisURL            string
	RedisKeyPrefix      string

	// HistoricalRefresh zero disables the periodic historical refresh
	HistoricalRefresh time.Duration
}

// Load reads configuration from the environment, after a .env file when one is present.
func Load() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("ECB_LATEST_URL", ecb.LatestURL)
	v.SetDefault("ECB_HISTORICAL_URL", ecb.HistoricalURL)
	v.SetDefault("FETCH_TIMEOUT", ecb.DefaultTimeout.String())
	v.SetDefault("RATES_TTL", "1h")
	v.SetDefault("CACHE_BACKEND", BackendNone)
	v.SetDefault("LATEST_CACHE_PATH", "eurofxref-daily.xml")
	v.SetDefault("HISTORICAL_CACHE_PATH", "eurofxref-hist-90d.xml")
	v.SetDefault("REDIS_URL", "redis://localhost:6379/0")
	v.SetDefault("REDIS_KEY_PREFIX", "ecb:")
	v.SetDefault("HISTORICAL_REFRESH", "24h")
	// a variable set to "" is honoured, so RATES_TTL= disables expiry
	v.AllowEmptyEnv(true)
	v.AutomaticEnv()

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		HTTPAddr:            v.GetString("HTTP_ADDR"),
		LogLevel:            strings.ToLower(v.GetString("LOG_LEVEL")),
		LatestURL:           v.GetString("ECB_LATEST_URL"),
		HistoricalURL:       v.GetString("ECB_HISTORICAL_URL"),
		CacheBackend:        strings.ToLower(v.GetString("CACHE_BACKEND")),
		LatestCachePath:     v.GetString("LATEST_CACHE_PATH"),
		HistoricalCachePath: v.GetString("HISTORICAL_CACHE_PATH"),
		RedisURL:            v.GetString("REDIS_URL"),
		RedisKeyPrefix:      v.GetString("REDIS_KEY_PREFIX"),
	}

	var err error
	if cfg.FetchTimeout, err = duration(v, "FETCH_TIMEOUT"); err != nil {
		return nil, err
	}
	if cfg.RatesTTL, err = duration(v, "RATES_TTL"); err != nil {
		return nil, err
	}
	if cfg.HistoricalRefresh, err = duration(v, "HISTORICAL_REFRESH"); err != nil {
		return nil, err
	}

	switch cfg.CacheBackend {
	case BackendNone, BackendFile, BackendRedis:
	default:
		return nil, fmt.Errorf("invalid CACHE_BACKEND [%v]", cfg.CacheBackend)
	}
	for key, value := range map[string]string{
		"HTTP_ADDR":          cfg.HTTPAddr,
		"ECB_LATEST_URL":     cfg.LatestURL,
		"ECB_HISTORICAL_URL": cfg.HistoricalURL,
	} {
		if value == "" {
			return nil, fmt.Errorf("%v must not be empty", key)
		}
	}
	if cfg.FetchTimeout <= 0 {
		return nil, fmt.Errorf("invalid FETCH_TIMEOUT [%v]", cfg.FetchTimeout)
	}

	return cfg, nil
}

// duration parses key as a time.Duration, with a bare "0" meaning zero
func duration(v *viper.Viper, key string) (time.Duration, error) {
	s := strings.TrimSpace(v.GetString(key))
	if s == "" || s == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %v [%v]: %w", key, s, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid %v [%v]: negative", key, s)
	}
	return d, nil
}
