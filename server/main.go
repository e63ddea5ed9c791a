package main

import (
	"context"
	"errors"
	"fmt"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go-ecb-exchange-bank/bank"
	"go-ecb-exchange-bank/cache"
	"go-ecb-exchange-bank/config"
	"go-ecb-exchange-bank/currency"
	"go-ecb-exchange-bank/ecb"
	"go-ecb-exchange-bank/exchange"
	"go-ecb-exchange-bank/http"
	"go-ecb-exchange-bank/ttl"
	"os"
	"os/signal"
	"syscall"
	"time"

	nhttp "net/http"
)

func main() {
	w := log.NewSyncWriter(os.Stderr)
	logger := log.NewLogfmtLogger(w)
	logger = log.With(logger, "ts", log.DefaultTimestampUTC, "caller", log.DefaultCaller)

	cfg, err := config.Load()
	if err != nil {
		level.Error(logger).Log("msg", "loading config", "err", err)
		os.Exit(1)
	}
	logger = level.NewFilter(logger, levelOption(cfg.LogLevel))

	if err := run(cfg, logger); err != nil {
		level.Error(logger).Log("msg", "server stopped", "err", err)
		os.Exit(1)
	}
}

func levelOption(name string) level.Option {
	switch name {
	case "debug":
		return level.AllowDebug()
	case "warn":
		return level.AllowWarn()
	case "error":
		return level.AllowError()
	default:
		return level.AllowInfo()
	}
}

func run(cfg *config.Config, logger log.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	fetcher := ecb.NewFetcher(cfg.FetchTimeout)
	fetcher = ecb.NewInstrumentingFetcher(ecb.NewFetchMetrics(registry), fetcher)
	fetcher = ecb.NewLoggingFetcher(log.With(logger, "component", "ecb_fetcher"), fetcher)

	b := bank.New(fetcher,
		bank.WithURLs(cfg.LatestURL, cfg.HistoricalURL),
		bank.WithLogger(log.With(logger, "component", "bank")),
	)

	closeCache, err := configureCache(ctx, cfg, b)
	if err != nil {
		return err
	}
	defer closeCache()

	if err := b.RefreshLatest(ctx, true); err != nil {
		// the first lazy lookup or periodic refresh tries again
		level.Warn(logger).Log("msg", "initial refresh failed", "err", err)
	}
	if cfg.RatesTTL > 0 {
		b.SetTTL(ttl.Fixed(cfg.RatesTTL))
		if cfg.CacheBackend != config.BackendNone {
			// TTL refreshes read the cache slot; this keeps the slot current
			go bank.NewLatestRefresher(b, cfg.RatesTTL, log.With(logger, "component", "latest_refresher")).Run(ctx)
		}
	}
	if cfg.HistoricalRefresh > 0 {
		if err := b.RefreshHistorical(ctx, true); err != nil {
			level.Warn(logger).Log("msg", "initial historical refresh failed", "err", err)
		}
		go bank.NewHistoricalRefresher(b, cfg.HistoricalRefresh, log.With(logger, "component", "historical_refresher")).Run(ctx)
	}

	exchangeService := exchange.NewService(b)
	exchangeService = exchange.NewInstrumentingService(exchange.NewMetrics(registry), currency.ECB(), exchangeService)
	exchangeService = exchange.NewLoggingService(log.With(logger, "component", "exchange"), exchangeService)

	server := &nhttp.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           http.NewServer(exchangeService, registry, log.With(logger, "component", "http")),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		level.Info(logger).Log("msg", "listening", "addr", cfg.HTTPAddr)
		errs <- server.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	level.Info(logger).Log("msg", "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errs; !errors.Is(err, nhttp.ErrServerClosed) {
		return err
	}
	return nil
}

// configureCache installs the cache slots for the configured backend and returns a release func
func configureCache(ctx context.Context, cfg *config.Config, b *bank.Bank) (func(), error) {
	switch cfg.CacheBackend {
	case config.BackendFile:
		b.SetLatestCache(cache.File(cfg.LatestCachePath))
		b.SetHistoricalCache(cache.File(cfg.HistoricalCachePath))
		return func() {}, nil
	case config.BackendRedis:
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		client := redis.NewClient(opt)
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
		b.SetLatestCache(cache.Redis(client, cfg.RedisKeyPrefix+"latest", 0))
		b.SetHistoricalCache(cache.Redis(client, cfg.RedisKeyPrefix+"historical", 0))
		return func() { _ = client.Close() }, nil
	default:
		return func() {}, nil
	}
}
