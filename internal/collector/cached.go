package collector

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"SignalDesk/internal/cache"
	"SignalDesk/internal/logging"
	"SignalDesk/internal/metrics"
	"SignalDesk/internal/model"
)

// CacheOptions sets the freshness windows of cached fetches.
type CacheOptions struct {
	TTL        time.Duration // bars, headlines, fundamentals
	GainersTTL time.Duration
}

// cacheLayer serves JSON-encoded results from a Store and only calls the
// loader on a miss. Failed loads are not cached.
type cacheLayer struct {
	store   cache.Store
	opts    CacheOptions
	metrics *metrics.Recorder
	logger  *zap.Logger
}

func cached[T any](ctx context.Context, l *cacheLayer, op string, ttl time.Duration, key string, load func(context.Context) (T, error)) (T, error) {
	if b, ok, err := l.store.GetBytes(ctx, key); err != nil {
		l.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
	} else if ok {
		var v T
		if err := json.Unmarshal(b, &v); err == nil {
			l.metrics.RecordCache(true)
			return v, nil
		}
		l.logger.Warn("discarding undecodable cache entry", zap.String("key", key))
	}
	l.metrics.RecordCache(false)

	start := time.Now()
	v, err := load(ctx)
	l.metrics.ObserveFetch(op, start, err)
	if err != nil {
		return v, err
	}
	if b, err := json.Marshal(v); err == nil {
		if err := l.store.SetBytes(ctx, key, b, ttl); err != nil {
			l.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return v, nil
}

// CachedFetcher decorates a Fetcher with a time-boxed cache keyed by the
// operation and its arguments.
type CachedFetcher struct {
	inner Fetcher
	layer *cacheLayer
}

func NewCachedFetcher(inner Fetcher, store cache.Store, opts CacheOptions, rec *metrics.Recorder, logger *zap.Logger) *CachedFetcher {
	return &CachedFetcher{
		inner: inner,
		layer: &cacheLayer{store: store, opts: opts, metrics: rec, logger: logging.OrNop(logger)},
	}
}

func (c *CachedFetcher) Name() string { return c.inner.Name() + "+cache" }

func (c *CachedFetcher) FetchBars(ctx context.Context, symbol, interval, period string) (model.PriceSeries, error) {
	key := cache.Key("bars", c.inner.Name(), symbol, interval, period)
	return cached(ctx, c.layer, "bars", c.layer.opts.TTL, key, func(ctx context.Context) (model.PriceSeries, error) {
		return c.inner.FetchBars(ctx, symbol, interval, period)
	})
}

func (c *CachedFetcher) FetchDayGainers(ctx context.Context, count int) ([]model.Quote, error) {
	key := cache.Key("gainers", c.inner.Name(), count)
	return cached(ctx, c.layer, "gainers", c.layer.opts.GainersTTL, key, func(ctx context.Context) ([]model.Quote, error) {
		return c.inner.FetchDayGainers(ctx, count)
	})
}

func (c *CachedFetcher) FetchHeadlines(ctx context.Context, symbol string, limit int) ([]model.Headline, error) {
	key := cache.Key("news", c.inner.Name(), symbol, limit)
	return cached(ctx, c.layer, "news", c.layer.opts.TTL, key, func(ctx context.Context) ([]model.Headline, error) {
		return c.inner.FetchHeadlines(ctx, symbol, limit)
	})
}

// CachedFundamentals decorates a FundamentalsFetcher the same way.
type CachedFundamentals struct {
	inner FundamentalsFetcher
	layer *cacheLayer
}

func NewCachedFundamentals(inner FundamentalsFetcher, store cache.Store, opts CacheOptions, rec *metrics.Recorder, logger *zap.Logger) *CachedFundamentals {
	return &CachedFundamentals{
		inner: inner,
		layer: &cacheLayer{store: store, opts: opts, metrics: rec, logger: logging.OrNop(logger)},
	}
}

func (c *CachedFundamentals) FetchFundamentals(ctx context.Context, symbol string) (model.Fundamentals, error) {
	key := cache.Key("fundamentals", symbol)
	return cached(ctx, c.layer, "fundamentals", c.layer.opts.TTL, key, func(ctx context.Context) (model.Fundamentals, error) {
		return c.inner.FetchFundamentals(ctx, symbol)
	})
}
