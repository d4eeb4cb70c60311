package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/schollz/progressbar/v3"
	"github.com/tidwall/pretty"
	"go.uber.org/zap"

	"SignalDesk/internal/cache"
	"SignalDesk/internal/collector"
	"SignalDesk/internal/config"
	"SignalDesk/internal/logging"
	"SignalDesk/internal/metrics"
	"SignalDesk/internal/report"
)

// app holds the components shared by every subcommand.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	metrics *metrics.Recorder
	store   cache.Store
	fetcher collector.Fetcher
	col     *collector.Collector
	scanner *collector.Scanner
	runner  *report.Runner
}

func newApp(cfg *config.Config) (*app, error) {
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, logger: logger, metrics: metrics.New()}

	var fetcher collector.Fetcher = collector.NewYahooFetcher(cfg.DataSource.HTTPOptions(), logger)
	var fund collector.FundamentalsFetcher
	if cfg.Scanner.Enrich {
		fund = collector.NewFinvizFetcher(cfg.DataSource.HTTPOptions())
	}

	if cfg.Cache.Backend != "none" {
		store, err := cache.New(cfg.Cache.StoreConfig())
		if err != nil {
			logger.Warn("open cache failed, falling back to memory",
				zap.String("backend", cfg.Cache.Backend), zap.Error(err))
			store = cache.NewMemoryStore()
		}
		a.store = store
		fetcher = collector.NewCachedFetcher(fetcher, store, cfg.Cache.Options(), a.metrics, logger)
		if fund != nil {
			fund = collector.NewCachedFundamentals(fund, store, cfg.Cache.Options(), a.metrics, logger)
		}
	}
	logger.Info("data source ready",
		zap.String("fetcher", fetcher.Name()),
		zap.String("cache", cfg.Cache.Backend))

	a.fetcher = fetcher
	a.col = collector.NewCollector(fetcher, cfg.DataSource.Timeout, logger)
	a.scanner = collector.NewScanner(fetcher, fund, cfg.DataSource.Timeout, logger)
	a.runner = report.NewRunner(a.col, report.Options{
		Timeframes: cfg.Timeframes,
		Delay:      cfg.DataSource.RequestDelay,
		News:       cfg.News.Enabled,
		NewsLimit:  cfg.News.Limit,
	}, a.metrics, logger)
	return a, nil
}

func (a *app) Close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn("close cache", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}

// withProgress shows a progress bar on stderr while a pass runs.
func (a *app) withProgress(desc string, total int) func() {
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(progressWriter),
		progressbar.OptionSetDescription(desc),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
	a.runner.OnProgress = func(done, total int, symbol string) {
		bar.Describe(fmt.Sprintf("%s %s", desc, symbol))
		_ = bar.Add(1)
	}
	return func() {
		_ = bar.Finish()
		a.runner.OnProgress = nil
	}
}

func writeJSON(w io.Writer, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = w.Write(pretty.Pretty(b))
	return err
}
