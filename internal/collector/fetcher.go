package collector

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"SignalDesk/internal/model"
)

// ErrNoData is returned when an upstream source answered without usable records.
var ErrNoData = errors.New("no data returned")

// Fetcher defines the interface for fetching market data.
type Fetcher interface {
	// FetchBars returns the bars of one (symbol, interval, period). The
	// series may be empty.
	FetchBars(ctx context.Context, symbol, interval, period string) (model.PriceSeries, error)
	// FetchDayGainers returns the day-gainers screener. Malformed rows are skipped.
	FetchDayGainers(ctx context.Context, count int) ([]model.Quote, error)
	// FetchHeadlines returns at most limit recent news items.
	FetchHeadlines(ctx context.Context, symbol string, limit int) ([]model.Headline, error)
	Name() string
}

// FundamentalsFetcher returns float and short-interest data for a symbol.
type FundamentalsFetcher interface {
	FetchFundamentals(ctx context.Context, symbol string) (model.Fundamentals, error)
}

// HTTPOptions configures the HTTP client shared by the scraping fetchers.
type HTTPOptions struct {
	UserAgent string
	Timeout   time.Duration
	Proxy     string
}

const defaultUserAgent = "Mozilla/5.0"

func newHTTPClient(opts HTTPOptions) *http.Client {
	transport := &http.Transport{}
	if opts.Proxy != "" {
		if u, err := url.Parse(opts.Proxy); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{Timeout: timeout, Transport: transport}
}

func userAgent(opts HTTPOptions) string {
	if opts.UserAgent == "" {
		return defaultUserAgent
	}
	return opts.UserAgent
}
