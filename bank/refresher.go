package bank

import (
	"context"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"time"
)

// Refresher periodically reloads a feed into a Bank until its context is cancelled.
type Refresher struct {
	// refresh the reload run on every tick
	refresh func(ctx context.Context) error
	// name labels log lines
	name string
	// frequency how often to refresh
	frequency time.Duration

	logger log.Logger
}

// NewHistoricalRefresher reloads the historical feed of b every frequency, always remotely.
func NewHistoricalRefresher(b *Bank, frequency time.Duration, logger log.Logger) *Refresher {
	return &Refresher{
		refresh: func(ctx context.Context) error {
			return b.RefreshHistorical(ctx, false)
		},
		name:      "historical",
		frequency: frequency,
		logger:    logger,
	}
}

// NewLatestRefresher reloads the daily feed of b every frequency, always remotely, so a
// configured latest cache slot is rewritten with the current document.
func NewLatestRefresher(b *Bank, frequency time.Duration, logger log.Logger) *Refresher {
	return &Refresher{
		refresh: func(ctx context.Context) error {
			return b.RefreshLatest(ctx, false)
		},
		name:      "latest",
		frequency: frequency,
		logger:    logger,
	}
}

// Run blocks, refreshing on schedule. It is expected to be called from its own go-routine.
func (r *Refresher) Run(ctx context.Context) {
	if r.frequency <= 0 {
		return
	}
	ticker := time.NewTicker(r.frequency)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := r.refresh(ctx); err != nil {
				// Don't return, just log and hope this is a transient error
				level.Warn(r.logger).Log("msg", "periodic refresh failed", "feed", r.name, "err", err)
			}
		case <-ctx.Done():
			return
		}
	}
}
