package bank

import (
	"context"
	"fmt"
	"github.com/go-kit/log/level"
	"go-ecb-exchange-bank/domain"
	"go-ecb-exchange-bank/ecb"
	"go-ecb-exchange-bank/rates"
)

// RefreshLatest loads the daily feed. With useCache a document in the latest cache slot is
// tried first; a missing or malformed cached document falls back to the remote feed, which is
// written to the slot when one is configured. Fetch errors are returned unrecovered.
func (b *Bank) RefreshLatest(ctx context.Context, useCache bool) error {
	doc, err := b.document(ctx, b.latestURL, useCache)
	if err != nil {
		return fmt.Errorf("refresh latest: %w", err)
	}
	return b.applyLatest(doc)
}

// RefreshHistorical loads the historical feed, storing every rate under its date.
// useCache behaves as for RefreshLatest.
func (b *Bank) RefreshHistorical(ctx context.Context, useCache bool) error {
	doc, err := b.document(ctx, b.historicalURL, useCache)
	if err != nil {
		return fmt.Errorf("refresh historical: %w", err)
	}
	return b.applyHistorical(doc)
}

// RefreshFromString applies a daily document directly, bypassing cache and remote.
func (b *Bank) RefreshFromString(document string) error {
	doc, err := ecb.Parse(document)
	if err != nil {
		return fmt.Errorf("refresh from string: %w", err)
	}
	return b.applyLatest(doc)
}

// ExportDocument fetches the raw document at url without caching or applying it.
func (b *Bank) ExportDocument(ctx context.Context, url string) (string, error) {
	document, err := b.fetcher.Fetch(ctx, url)
	if err != nil {
		return "", fmt.Errorf("export document [%v]: %w", url, err)
	}
	return document, nil
}

// SaveRates fetches the document at url and writes it to the cache slot of that feed.
// Without a configured slot it fails with domain.ErrInvalidCache.
func (b *Bank) SaveRates(ctx context.Context, url string) error {
	slot := b.slotFor(url)
	if !slot.Configured() {
		return fmt.Errorf("save rates [%v]: %w", url, domain.ErrInvalidCache)
	}
	document, err := b.fetcher.Fetch(ctx, url)
	if err != nil {
		return fmt.Errorf("save rates [%v]: %w", url, err)
	}
	if err := slot.Write(ctx, document); err != nil {
		return fmt.Errorf("save rates [%v]: %w", url, err)
	}
	return nil
}

// document produces a parsed document for url, from the cache slot when allowed, else remotely.
func (b *Bank) document(ctx context.Context, url string, useCache bool) (*ecb.Document, error) {
	slot := b.slotFor(url)

	if useCache && slot.Configured() {
		raw, ok, err := slot.Read(ctx)
		switch {
		case err != nil:
			b.logCacheFallback(url, err)
		case ok:
			doc, err := ecb.Parse(raw)
			if err == nil {
				level.Debug(b.logger).Log("msg", "using cached document", "url", url, "as_of", doc.AsOf)
				return doc, nil
			}
			b.logCacheFallback(url, err)
		default:
			level.Debug(b.logger).Log("msg", "cache empty, fetching", "url", url)
		}
	}

	raw, err := b.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetching [%v]: %w", url, err)
	}

	if slot.Configured() {
		if err := slot.Write(ctx, raw); err != nil {
			// the rates can still be applied; the next refresh simply finds no usable cache
			level.Error(b.logger).Log("msg", "writing cache failed", "url", url, "err", err)
		}
	}

	doc, err := ecb.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing [%v]: %w", url, err)
	}
	return doc, nil
}

// applyLatest writes the newest day of doc as undated EUR rates in one batch and stamps the refresh.
func (b *Bank) applyLatest(doc *ecb.Document) error {
	asOf, err := doc.AsOfTime()
	if err != nil {
		return fmt.Errorf("%w: as of [%v]: %v", domain.ErrDocumentParse, doc.AsOf, err)
	}

	day := doc.Days[0]
	entries := make([]rates.Entry, 0, len(day.Quotes))
	for _, q := range day.Quotes {
		entries = append(entries, rates.Entry{
			Key:  rates.Key{From: domain.Base, To: q.Currency},
			Rate: q.Rate,
		})
	}
	b.rates.ApplyBatch(entries, []rates.Key{{From: domain.Base, To: domain.Base}})

	b.stampLock.Lock()
	defer b.stampLock.Unlock()
	b.ratesUpdatedAt = asOf
	b.lastUpdated = b.now()
	return nil
}

// applyHistorical writes every day of doc as dated EUR rates in one batch and stamps the refresh.
func (b *Bank) applyHistorical(doc *ecb.Document) error {
	asOf, err := doc.AsOfTime()
	if err != nil {
		return fmt.Errorf("%w: as of [%v]: %v", domain.ErrDocumentParse, doc.AsOf, err)
	}

	var entries []rates.Entry
	identities := make([]rates.Key, 0, len(doc.Days))
	for _, day := range doc.Days {
		for _, q := range day.Quotes {
			entries = append(entries, rates.Entry{
				Key:  rates.Key{From: domain.Base, To: q.Currency, Date: day.Date},
				Rate: q.Rate,
			})
		}
		identities = append(identities, rates.Key{From: domain.Base, To: domain.Base, Date: day.Date})
	}
	b.rates.ApplyBatch(entries, identities)

	b.stampLock.Lock()
	defer b.stampLock.Unlock()
	b.historicalUpdatedAt = asOf
	b.historicalLastUpdated = b.now()
	return nil
}
