package exchange

import (
	"context"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"go-ecb-exchange-bank/currency"
	"go-ecb-exchange-bank/domain"
	"strconv"
	"strings"
	"time"
)

// Metrics the collectors recorded by an instrumenting Service
type Metrics struct {
	ConversionsTotal   *prometheus.CounterVec
	ConversionDuration prometheus.Histogram
	RateRequestsTotal  *prometheus.CounterVec
	RefreshesTotal     *prometheus.CounterVec
	ExportsTotal       *prometheus.CounterVec
}

// NewMetrics creates the service collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ConversionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "conversion_requests_total",
				Help: "Total number of currency conversion requests",
			},
			[]string{"from", "to", "result"},
		),
		ConversionDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "conversion_duration_seconds",
				Help:    "Currency conversion duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		RateRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rate_requests_total",
				Help: "Total number of exchange rate requests",
			},
			[]string{"historical", "result"},
		),
		RefreshesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rate_refreshes_total",
				Help: "Total number of explicit rate refreshes",
			},
			[]string{"historical", "result"},
		),
		ExportsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rate_exports_total",
				Help: "Total number of rate table exports",
			},
			[]string{"format", "result"},
		),
	}
	reg.MustRegister(m.ConversionsTotal, m.ConversionDuration, m.RateRequestsTotal, m.RefreshesTotal, m.ExportsTotal)
	return m
}

type instrumentingService struct {
	next       Service
	metrics    *Metrics
	currencies *currency.Registry
}

// NewInstrumentingService decorates a Service with prometheus metrics.
// Currencies outside currencies are labelled "unknown" to keep label values bounded.
func NewInstrumentingService(metrics *Metrics, currencies *currency.Registry, s Service) Service {
	return &instrumentingService{
		next:       s,
		metrics:    metrics,
		currencies: currencies,
	}
}

func (s *instrumentingService) currencyLabel(c domain.Currency) string {
	if !s.currencies.Available(c) {
		return "unknown"
	}
	return c.Normalize().String()
}

func formatLabel(format string) string {
	switch f := strings.ToLower(format); f {
	case "json", "yaml":
		return f
	default:
		return "other"
	}
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

func (s *instrumentingService) Convert(ctx context.Context, money domain.Money, to domain.Currency, date string) (ex domain.Exchanged, err error) {
	defer func(begin time.Time) {
		s.metrics.ConversionsTotal.WithLabelValues(s.currencyLabel(money.Currency), s.currencyLabel(to), result(err)).Inc()
		s.metrics.ConversionDuration.Observe(time.Since(begin).Seconds())
	}(time.Now())
	return s.next.Convert(ctx, money, to, date)
}

func (s *instrumentingService) Rate(ctx context.Context, from, to domain.Currency, date string) (rate decimal.Decimal, err error) {
	defer func() {
		s.metrics.RateRequestsTotal.WithLabelValues(strconv.FormatBool(date != ""), result(err)).Inc()
	}()
	return s.next.Rate(ctx, from, to, date)
}

func (s *instrumentingService) Rates(ctx context.Context) (Table, error) {
	return s.next.Rates(ctx)
}

func (s *instrumentingService) Refresh(ctx context.Context, historical bool) (err error) {
	defer func() {
		s.metrics.RefreshesTotal.WithLabelValues(strconv.FormatBool(historical), result(err)).Inc()
	}()
	return s.next.Refresh(ctx, historical)
}

func (s *instrumentingService) Export(ctx context.Context, format string) (document string, err error) {
	defer func() {
		s.metrics.ExportsTotal.WithLabelValues(formatLabel(format), result(err)).Inc()
	}()
	return s.next.Export(ctx, format)
}
