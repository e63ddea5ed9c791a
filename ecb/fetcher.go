package ecb

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// LatestURL the daily reference rates
	LatestURL = "https://www.ecb.europa.eu/stats/eurofxref/eurofxref-daily.xml"
	// HistoricalURL the reference rates of the last 90 days
	HistoricalURL = "https://www.ecb.europa.eu/stats/eurofxref/eurofxref-hist-90d.xml"
	// AllHistoryURL every reference rate since 1999
	AllHistoryURL = "https://www.ecb.europa.eu/stats/eurofxref/eurofxref-hist.xml"

	DefaultTimeout = 10 * time.Second
)

// Fetcher retrieves raw rate documents
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// fetcher downloads documents over HTTP
type fetcher struct {
	// client for HTTP requests
	client http.Client
}

// NewFetcher constructs a valid Fetcher. A non-positive timeout uses DefaultTimeout.
func NewFetcher(timeout time.Duration) Fetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &fetcher{
		client: http.Client{
			Timeout: timeout,
		},
	}
}

// Fetch downloads the document at url. Failures are returned as is, there are no retries.
func (f *fetcher) Fetch(ctx context.Context, url string) (string, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("building http request: %w", err)
	}
	httpResponse, err := f.client.Do(request)
	if err != nil {
		return "", fmt.Errorf("http get: %w", err)
	}
	defer httpResponse.Body.Close()

	if httpResponse.StatusCode != http.StatusOK {
		return "", fmt.Errorf("http get [%v]: unexpected status %v", url, httpResponse.StatusCode)
	}

	bytes, err := io.ReadAll(httpResponse.Body)
	if err != nil {
		return "", fmt.Errorf("reading body: %w", err)
	}

	return string(bytes), nil
}
