// Package report runs analysis passes over a ticker list.
package report

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"SignalDesk/internal/collector"
	"SignalDesk/internal/logging"
	"SignalDesk/internal/metrics"
	"SignalDesk/internal/model"
	"SignalDesk/internal/sentiment"
	"SignalDesk/internal/strategy"
)

// Options controls a pass.
type Options struct {
	Timeframes []model.TimeframeConfig
	Delay      time.Duration // pause between tickers
	News       bool
	NewsLimit  int
}

// ProgressFunc is called after each ticker of a pass.
type ProgressFunc func(done, total int, symbol string)

// Runner processes tickers one at a time: frames are loaded, evaluated and
// aggregated, then headlines are attached. Nothing is kept between passes.
type Runner struct {
	Collector  *collector.Collector
	Options    Options
	Metrics    *metrics.Recorder
	Logger     *zap.Logger
	OnProgress ProgressFunc
}

func NewRunner(col *collector.Collector, opts Options, rec *metrics.Recorder, logger *zap.Logger) *Runner {
	if len(opts.Timeframes) == 0 {
		opts.Timeframes = model.DefaultTimeframes()
	}
	if opts.NewsLimit <= 0 {
		opts.NewsLimit = 5
	}
	return &Runner{Collector: col, Options: opts, Metrics: rec, Logger: logging.OrNop(logger)}
}

// Run analyzes every symbol across the configured timeframes. A cancelled
// context stops the pass and returns what was completed with ctx.Err().
func (r *Runner) Run(ctx context.Context, symbols []string) (*model.Report, error) {
	return r.pass(ctx, symbols, func(ctx context.Context, sym string) *model.TickerReport {
		return r.Analyze(ctx, sym)
	})
}

// Watchlist scores every symbol on the daily frame only and ranks the
// result by score, strongest first.
func (r *Runner) Watchlist(ctx context.Context, symbols []string) (*model.Report, error) {
	tf := []model.TimeframeConfig{model.WatchlistTimeframe()}
	rep, err := r.pass(ctx, symbols, func(ctx context.Context, sym string) *model.TickerReport {
		return strategy.Evaluate(sym, r.Collector.LoadFrames(ctx, sym, tf))
	})
	if rep == nil {
		return nil, err
	}
	ptrs := make([]*model.TickerReport, len(rep.Tickers))
	for i := range rep.Tickers {
		ptrs[i] = &rep.Tickers[i]
	}
	strategy.RankByScore(ptrs)
	ranked := make([]model.TickerReport, len(ptrs))
	for i, p := range ptrs {
		ranked[i] = *p
	}
	rep.Tickers = ranked
	return rep, err
}

func (r *Runner) pass(ctx context.Context, symbols []string, analyze func(context.Context, string) *model.TickerReport) (*model.Report, error) {
	start := time.Now()
	rep := &model.Report{
		RunID:     uuid.NewString(),
		StartedAt: start,
		Tickers:   make([]model.TickerReport, 0, len(symbols)),
	}
	log := r.Logger.With(zap.String("run_id", rep.RunID))
	log.Info("report pass started", zap.Int("tickers", len(symbols)))

	for i, sym := range symbols {
		if i > 0 {
			if err := collector.Pause(ctx, r.Options.Delay); err != nil {
				rep.Duration = time.Since(start)
				log.Warn("report pass interrupted", zap.Int("completed", i), zap.Error(err))
				return rep, err
			}
		}
		tr := analyze(ctx, sym)
		rep.Tickers = append(rep.Tickers, *tr)
		r.Metrics.SetConfidence(sym, tr.Confidence.NormalizedScore)
		log.Debug("ticker analyzed",
			zap.String("symbol", sym),
			zap.Float64("confidence", tr.Confidence.NormalizedScore),
			zap.Int("bullish_frames", tr.Confidence.BullishFrameCount))
		if r.OnProgress != nil {
			r.OnProgress(i+1, len(symbols), sym)
		}
	}

	rep.Duration = time.Since(start)
	r.Metrics.ObservePass(start)
	log.Info("report pass finished", zap.Duration("duration", rep.Duration))
	return rep, nil
}

// Analyze produces the full report of one ticker.
func (r *Runner) Analyze(ctx context.Context, symbol string) *model.TickerReport {
	frames := r.Collector.LoadFrames(ctx, symbol, r.Options.Timeframes)
	tr := strategy.Evaluate(symbol, frames)
	if r.Options.News {
		tr.Headlines = r.headlines(ctx, symbol)
	}
	return tr
}

func (r *Runner) headlines(ctx context.Context, symbol string) []model.Headline {
	if r.Collector.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Collector.Timeout)
		defer cancel()
	}
	news, err := r.Collector.Fetcher.FetchHeadlines(ctx, symbol, r.Options.NewsLimit)
	if err != nil {
		r.Logger.Warn("headlines unavailable", zap.String("symbol", symbol), zap.Error(err))
		return nil
	}
	sentiment.Annotate(news)
	return news
}
