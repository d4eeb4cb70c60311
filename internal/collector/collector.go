package collector

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"SignalDesk/internal/calculator"
	"SignalDesk/internal/logging"
	"SignalDesk/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price     float64
	Bars      map[string][]model.OHLCV // keyed by interval
	Gainers   []model.Quote
	Headlines []model.Headline
	Err       error
	Calls     int
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchBars(_ context.Context, symbol, interval, period string) (model.PriceSeries, error) {
	m.Calls++
	s := model.PriceSeries{Symbol: symbol, Interval: interval, Period: period}
	if m.Err != nil {
		return s, m.Err
	}
	if bars, ok := m.Bars[interval]; ok {
		s.Bars = bars
		return s, nil
	}
	s.Bars = generateMockBars(m.Price, 120, intervalStep(interval))
	return s, nil
}

func (m *MockFetcher) FetchDayGainers(_ context.Context, count int) ([]model.Quote, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	if len(m.Gainers) > count {
		return m.Gainers[:count], nil
	}
	return m.Gainers, nil
}

func (m *MockFetcher) FetchHeadlines(_ context.Context, _ string, limit int) ([]model.Headline, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	if len(m.Headlines) > limit {
		return m.Headlines[:limit], nil
	}
	return m.Headlines, nil
}

func intervalStep(interval string) time.Duration {
	switch interval {
	case "1d":
		return 24 * time.Hour
	case "1wk":
		return 7 * 24 * time.Hour
	}
	if d, err := time.ParseDuration(interval); err == nil && d > 0 {
		return d
	}
	return time.Minute
}

func generateMockBars(basePrice float64, count int, step time.Duration) []model.OHLCV {
	end := time.Now().UTC().Truncate(step)
	bars := make([]model.OHLCV, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.OHLCV{
			Time:   end.Add(-time.Duration(count-i) * step),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}

// Collector loads per-timeframe series for the evaluator. Each fetch runs
// under its own timeout; expiry is reported as a load error for that frame.
type Collector struct {
	Fetcher Fetcher
	Timeout time.Duration
	Logger  *zap.Logger
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, timeout time.Duration, logger *zap.Logger) *Collector {
	return &Collector{Fetcher: fetcher, Timeout: timeout, Logger: logging.OrNop(logger)}
}

func (c *Collector) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.Timeout)
}

func (c *Collector) fetch(ctx context.Context, symbol, interval, period string) (model.PriceSeries, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	s, err := c.Fetcher.FetchBars(ctx, symbol, interval, period)
	if err != nil {
		return s, fmt.Errorf("fetch %s %s/%s: %w", symbol, interval, period, err)
	}
	return s, nil
}

// LoadFrame fetches one timeframe and applies its resampling.
func (c *Collector) LoadFrame(ctx context.Context, symbol string, tf model.TimeframeConfig) model.FrameData {
	return c.LoadFrames(ctx, symbol, []model.TimeframeConfig{tf})[0]
}

// LoadFrames fetches all timeframes of a symbol sequentially. Frames sharing
// an (interval, period) are fetched once.
func (c *Collector) LoadFrames(ctx context.Context, symbol string, tfs []model.TimeframeConfig) []model.FrameData {
	type result struct {
		series model.PriceSeries
		err    error
	}
	seen := make(map[string]result, len(tfs))
	out := make([]model.FrameData, 0, len(tfs))

	for _, tf := range tfs {
		key := tf.Interval + "|" + tf.Period
		r, ok := seen[key]
		if !ok {
			r.series, r.err = c.fetch(ctx, symbol, tf.Interval, tf.Period)
			seen[key] = r
			if r.err != nil {
				c.Logger.Warn("frame unavailable",
					zap.String("symbol", symbol),
					zap.String("timeframe", tf.Name),
					zap.Error(r.err))
			}
		}
		fd := model.FrameData{Config: tf, Series: r.series, Err: r.err}
		if r.err == nil && tf.Resample > 0 {
			fd.Series = calculator.ResampleSeries(r.series, tf.Resample)
			fd.Series.Interval = tf.Name
		}
		out = append(out, fd)
	}
	return out
}

// Pause waits d or until ctx is done.
func Pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

