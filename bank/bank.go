package bank

import (
	"context"
	"errors"
	"fmt"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/shopspring/decimal"
	"go-ecb-exchange-bank/cache"
	"go-ecb-exchange-bank/currency"
	"go-ecb-exchange-bank/domain"
	"go-ecb-exchange-bank/ecb"
	"go-ecb-exchange-bank/rates"
	"go-ecb-exchange-bank/ttl"
	"golang.org/x/sync/singleflight"
	"sync"
	"time"
)

// Bank holds ECB reference rates relative to EUR and exchanges money with them.
// Bank is concurrency safe. Fetching and parsing never happen under the rate table lock.
type Bank struct {
	// rates the rate table; its lock is the only one guarding rate values
	rates *rates.Store

	// fetcher retrieves raw feed documents
	fetcher ecb.Fetcher

	// currencies the exchangeable currencies and their minor units
	currencies *currency.Registry

	latestURL     string
	historicalURL string

	// slotLock guards the cache slots
	slotLock       sync.RWMutex
	latestSlot     cache.Slot
	historicalSlot cache.Slot

	// expiry drives lazy refresh of the latest feed
	expiry *ttl.Policy
	// expiring collapses concurrent expiry-triggered refreshes
	expiring singleflight.Group

	// stampLock guards the timestamps below
	stampLock             sync.RWMutex
	lastUpdated           time.Time
	ratesUpdatedAt        time.Time
	historicalLastUpdated time.Time
	historicalUpdatedAt   time.Time

	now    func() time.Time
	logger log.Logger
}

// Option configures a Bank
type Option func(b *Bank)

// WithLogger sets the logger, the default discards everything.
func WithLogger(logger log.Logger) Option {
	return func(b *Bank) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(b *Bank) {
		b.now = now
	}
}

// WithURLs overrides the latest and historical feed URLs
func WithURLs(latest, historical string) Option {
	return func(b *Bank) {
		b.latestURL = latest
		b.historicalURL = historical
	}
}

// WithCurrencies replaces the ECB currency registry
func WithCurrencies(r *currency.Registry) Option {
	return func(b *Bank) {
		b.currencies = r
	}
}

// New constructs a Bank with an empty rate table, no cache slots and no TTL.
func New(fetcher ecb.Fetcher, opts ...Option) *Bank {
	b := &Bank{
		rates:         rates.NewStore(),
		fetcher:       fetcher,
		currencies:    currency.ECB(),
		latestURL:     ecb.LatestURL,
		historicalURL: ecb.HistoricalURL,
		now:           time.Now,
		logger:        log.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.expiry = ttl.NewPolicy(b.now)
	return b
}

// LatestURL the URL of the daily feed
func (b *Bank) LatestURL() string {
	return b.latestURL
}

// HistoricalURL the URL of the historical feed
func (b *Bank) HistoricalURL() string {
	return b.historicalURL
}

// SetLatestCache configures where the daily document persists.
func (b *Bank) SetLatestCache(slot cache.Slot) {
	b.slotLock.Lock()
	defer b.slotLock.Unlock()
	b.latestSlot = slot
}

// SetHistoricalCache configures where the historical document persists.
func (b *Bank) SetHistoricalCache(slot cache.Slot) {
	b.slotLock.Lock()
	defer b.slotLock.Unlock()
	b.historicalSlot = slot
}

// slotFor picks the slot of the feed served at url; anything but the historical URL is the latest feed.
func (b *Bank) slotFor(url string) cache.Slot {
	b.slotLock.RLock()
	defer b.slotLock.RUnlock()
	if url == b.historicalURL {
		return b.historicalSlot
	}
	return b.latestSlot
}

// SetTTL configures lazy expiry of the latest rates; nil disables it.
func (b *Bank) SetTTL(source ttl.Source) {
	b.expiry.Configure(source)
}

// RatesExpiration when the latest rates go stale, zero when there is no TTL.
func (b *Bank) RatesExpiration() time.Time {
	return b.expiry.ExpiresAt()
}

// Expire refreshes the latest rates, cache allowed, when the TTL has run out.
// Concurrent callers that find the rates expired share one refresh, which is not
// cancelled with the caller that happened to start it; the fetcher timeout still bounds it.
func (b *Bank) Expire(ctx context.Context) (bool, error) {
	if !b.expiry.Due() {
		return false, nil
	}
	shared := context.WithoutCancel(ctx)
	refreshed, err, _ := b.expiring.Do(b.latestURL, func() (interface{}, error) {
		return b.expiry.Expire(func() error {
			return b.RefreshLatest(shared, true)
		})
	})
	if err != nil {
		return false, fmt.Errorf("expiring rates: %w", err)
	}
	return refreshed.(bool), nil
}

// LastUpdated when the latest feed was last applied
func (b *Bank) LastUpdated() time.Time {
	b.stampLock.RLock()
	defer b.stampLock.RUnlock()
	return b.lastUpdated
}

// RatesUpdatedAt the as-of date of the last applied daily document
func (b *Bank) RatesUpdatedAt() time.Time {
	b.stampLock.RLock()
	defer b.stampLock.RUnlock()
	return b.ratesUpdatedAt
}

// HistoricalLastUpdated when the historical feed was last applied
func (b *Bank) HistoricalLastUpdated() time.Time {
	b.stampLock.RLock()
	defer b.stampLock.RUnlock()
	return b.historicalLastUpdated
}

// HistoricalRatesUpdatedAt the as-of date of the last applied historical document
func (b *Bank) HistoricalRatesUpdatedAt() time.Time {
	b.stampLock.RLock()
	defer b.stampLock.RUnlock()
	return b.historicalUpdatedAt
}

// Rates copies the rate table as it stands at one instant, keyed by canonical key.
func (b *Bank) Rates() map[string]decimal.Decimal {
	return b.rates.Snapshot()
}

// GetRate looks up a stored rate without deriving it. ok is false when the key is absent.
// An expired TTL refreshes the latest rates first.
func (b *Bank) GetRate(ctx context.Context, from, to domain.Currency, date string) (rate decimal.Decimal, ok bool, err error) {
	from, to = from.Normalize(), to.Normalize()
	if err := b.currencies.Check(from, to); err != nil {
		return rate, false, err
	}
	if _, err := b.Expire(ctx); err != nil {
		return rate, false, err
	}
	rate, ok = b.rates.Get(rates.Key{From: from, To: to, Date: date})
	return rate, ok, nil
}

// SetRate stores a rate directly.
func (b *Bank) SetRate(from, to domain.Currency, rate decimal.Decimal, date string) error {
	from, to = from.Normalize(), to.Normalize()
	if err := b.currencies.Check(from, to); err != nil {
		return err
	}
	b.rates.Set(rates.Key{From: from, To: to, Date: date}, rate)
	return nil
}

// logCacheFallback reports why a cached document was not used
func (b *Bank) logCacheFallback(url string, err error) {
	if errors.Is(err, domain.ErrDocumentParse) {
		level.Warn(b.logger).Log("msg", "cached document is malformed, fetching", "url", url, "err", err)
		return
	}
	level.Warn(b.logger).Log("msg", "reading cache failed, fetching", "url", url, "err", err)
}
