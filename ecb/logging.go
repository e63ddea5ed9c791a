package ecb

import (
	"context"
	"github.com/go-kit/log"
	"time"
)

// loggingFetcher decorates a Fetcher with logging
type loggingFetcher struct {
	next   Fetcher
	logger log.Logger
}

// NewLoggingFetcher return a new logging Fetcher
func NewLoggingFetcher(logger log.Logger, f Fetcher) Fetcher {
	return &loggingFetcher{
		next:   f,
		logger: logger,
	}
}

func (f *loggingFetcher) Fetch(ctx context.Context, url string) (document string, err error) {
	defer func(begin time.Time) {
		f.logger.Log(
			"method", "fetch",
			"url", url,
			"bytes", len(document),
			"took", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return f.next.Fetch(ctx, url)
}
