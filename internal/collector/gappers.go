package collector

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"SignalDesk/internal/calculator"
	"SignalDesk/internal/logging"
	"SignalDesk/internal/model"
)

// ScanOptions controls a gappers scan.
type ScanOptions struct {
	Count    int     // screener rows requested
	MaxPrice float64 // keep quotes strictly below this price; 0 disables the filter
	Enrich   bool    // scrape float and short float
	RVOLDays int     // daily bars averaged for relative volume
	Delay    time.Duration
}

// Scanner builds the top-gappers table from the day-gainers screener.
type Scanner struct {
	Fetcher      Fetcher
	Fundamentals FundamentalsFetcher // optional
	Timeout      time.Duration
	Logger       *zap.Logger
}

func NewScanner(f Fetcher, fund FundamentalsFetcher, timeout time.Duration, logger *zap.Logger) *Scanner {
	return &Scanner{Fetcher: f, Fundamentals: fund, Timeout: timeout, Logger: logging.OrNop(logger)}
}

// Scan returns gappers sorted by gap % descending. Per-symbol enrichment
// failures never drop a row: RVOL becomes 0 and float fields "-".
func (s *Scanner) Scan(ctx context.Context, opts ScanOptions) ([]model.Gapper, error) {
	if opts.RVOLDays <= 0 {
		opts.RVOLDays = 10
	}
	quotes, err := s.gainers(ctx, opts.Count)
	if err != nil {
		return nil, fmt.Errorf("load day gainers: %w", err)
	}

	out := make([]model.Gapper, 0, len(quotes))
	for i, q := range quotes {
		if opts.MaxPrice > 0 && q.Price >= opts.MaxPrice {
			continue
		}
		if i > 0 {
			if err := Pause(ctx, opts.Delay); err != nil {
				return nil, err
			}
		}
		q.ChangePercent = round2(q.ChangePercent)
		g := model.Gapper{
			Quote:      q,
			RVOL:       s.rvol(ctx, q, opts.RVOLDays),
			Float:      model.Placeholder,
			ShortFloat: model.Placeholder,
		}
		if opts.Enrich && s.Fundamentals != nil {
			fund := s.fundamentals(ctx, q.Symbol)
			g.Float, g.ShortFloat = fund.Float, fund.ShortFloat
		}
		out = append(out, g)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].ChangePercent > out[j].ChangePercent })
	return out, nil
}

func (s *Scanner) gainers(ctx context.Context, count int) ([]model.Quote, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.Fetcher.FetchDayGainers(ctx, count)
}

func (s *Scanner) rvol(ctx context.Context, q model.Quote, days int) float64 {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	series, err := s.Fetcher.FetchBars(ctx, q.Symbol, "1d", fmt.Sprintf("%dd", days))
	if err != nil {
		s.Logger.Debug("rvol unavailable", zap.String("symbol", q.Symbol), zap.Error(err))
		return 0
	}
	avg := calculator.AverageVolume(series.Bars)
	if avg <= 0 {
		return 0
	}
	return round2(float64(q.Volume) / avg)
}

func (s *Scanner) fundamentals(ctx context.Context, symbol string) model.Fundamentals {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	fund, err := s.Fundamentals.FetchFundamentals(ctx, symbol)
	if err != nil {
		s.Logger.Debug("fundamentals unavailable", zap.String("symbol", symbol), zap.Error(err))
		return model.UnavailableFundamentals
	}
	return fund
}

func (s *Scanner) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.Timeout)
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
