package ecb

import (
	"context"
	"github.com/prometheus/client_golang/prometheus"
	"time"
)

// FetchMetrics the collectors recorded by an instrumenting Fetcher
type FetchMetrics struct {
	Requests *prometheus.CounterVec
	Duration *prometheus.HistogramVec
}

// NewFetchMetrics creates the fetch collectors and registers them with reg.
func NewFetchMetrics(reg prometheus.Registerer) *FetchMetrics {
	m := &FetchMetrics{
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ecb_fetch_requests_total",
				Help: "Total number of rate document fetches",
			},
			[]string{"url", "result"},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ecb_fetch_duration_seconds",
				Help:    "Rate document fetch duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"url"},
		),
	}
	reg.MustRegister(m.Requests, m.Duration)
	return m
}

type instrumentingFetcher struct {
	next    Fetcher
	metrics *FetchMetrics
}

// NewInstrumentingFetcher decorates a Fetcher with prometheus metrics
func NewInstrumentingFetcher(metrics *FetchMetrics, f Fetcher) Fetcher {
	return &instrumentingFetcher{
		next:    f,
		metrics: metrics,
	}
}

func (f *instrumentingFetcher) Fetch(ctx context.Context, url string) (document string, err error) {
	defer func(begin time.Time) {
		result := "success"
		if err != nil {
			result = "error"
		}
		f.metrics.Requests.WithLabelValues(url, result).Inc()
		f.metrics.Duration.WithLabelValues(url).Observe(time.Since(begin).Seconds())
	}(time.Now())
	return f.next.Fetch(ctx, url)
}
