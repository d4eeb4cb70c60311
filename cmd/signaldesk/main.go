package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"SignalDesk/internal/config"
	"SignalDesk/internal/dashboard"
	"SignalDesk/internal/notifier"
	"SignalDesk/internal/scheduler"
)

var subHelp = map[string]string{
	"report":  "multi-timeframe RSI/MACD report for tickers",
	"scan":    "top gappers scan",
	"signals": "daily RSI/MACD watchlist",
	"serve":   "run the dashboard",
	"watch":   "scheduled reports with Telegram digest and commands",
}

var progressWriter = os.Stderr

type cmdArgs struct {
	config   string
	json     bool
	noEnrich bool
	analyze  bool
	noNews   bool
	addr     string
}

func main() {
	if len(os.Args) < 2 {
		printAndExit()
	}
	name := os.Args[1]
	var args cmdArgs
	sub := flag.NewFlagSet(name, flag.ExitOnError)
	defaultCfg := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultCfg = v
	}
	sub.StringVar(&args.config, "config", defaultCfg, "config file")

	switch name {
	case "report":
		sub.BoolVar(&args.json, "json", false, "print JSON")
		sub.BoolVar(&args.noNews, "no-news", false, "skip headlines")
	case "scan":
		sub.BoolVar(&args.json, "json", false, "print JSON")
		sub.BoolVar(&args.noEnrich, "no-enrich", false, "skip float and short float scraping")
		sub.BoolVar(&args.analyze, "analyze", false, "report on the top gappers after the scan")
	case "signals":
		sub.BoolVar(&args.json, "json", false, "print JSON")
	case "serve":
		sub.StringVar(&args.addr, "addr", "", "listen address, overrides dashboard.addr")
	case "watch":
	default:
		printAndExit()
	}
	if err := sub.Parse(os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		printAndExit()
	}

	cfg, err := config.Load(args.config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	applyFlags(cfg, name, args)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	a, err := newApp(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch name {
	case "report":
		err = runReport(ctx, a, tickersOr(sub.Args(), cfg.Tickers), args.json)
	case "scan":
		err = runScan(ctx, a, args)
	case "signals":
		err = runSignals(ctx, a, tickersOr(sub.Args(), cfg.Tickers), args.json)
	case "serve":
		err = runServe(ctx, a, args.addr)
	case "watch":
		err = runWatch(ctx, a)
	}
	if err != nil {
		a.logger.Error("command failed", zap.String("command", name), zap.Error(err))
		a.Close()
		os.Exit(1)
	}
}

// applyFlags lets command-line switches override the loaded config.
func applyFlags(cfg *config.Config, name string, args cmdArgs) {
	switch name {
	case "scan":
		if args.noEnrich {
			cfg.Scanner.Enrich = false
		}
	case "report":
		if args.noNews {
			cfg.News.Enabled = false
		}
	}
}

func printAndExit() {
	fmt.Println("usage: signaldesk <command> [flags] [TICKER...]")
	for _, n := range []string{"report", "scan", "signals", "serve", "watch"} {
		fmt.Printf("  %-8s %s\n", n, subHelp[n])
	}
	os.Exit(2)
}

func tickersOr(args, fallback []string) []string {
	if len(args) == 0 {
		return fallback
	}
	out := make([]string, len(args))
	for i, s := range args {
		out[i] = strings.ToUpper(s)
	}
	return out
}

func runReport(ctx context.Context, a *app, tickers []string, asJSON bool) error {
	done := a.withProgress("report", len(tickers))
	rep, err := a.runner.Run(ctx, tickers)
	done()
	if err != nil && rep == nil {
		return err
	}
	if asJSON {
		return writeJSON(os.Stdout, rep)
	}
	if werr := notifier.WriteReport(os.Stdout, rep); werr != nil {
		return werr
	}
	return err
}

func runScan(ctx context.Context, a *app, args cmdArgs) error {
	rows, err := a.scanner.Scan(ctx, a.cfg.ScanOptions())
	if err != nil {
		return err
	}
	if args.json && !args.analyze {
		return writeJSON(os.Stdout, rows)
	}
	if !args.json {
		if len(rows) == 0 {
			fmt.Println("No data returned. The screener may be blocked or rate-limited.")
			return nil
		}
		if err := notifier.GappersTable(os.Stdout, rows); err != nil {
			return err
		}
	}
	if !args.analyze {
		return nil
	}

	n := min(a.cfg.Scanner.Top, len(rows))
	top := make([]string, n)
	for i := range top {
		top[i] = rows[i].Symbol
	}
	return runReport(ctx, a, top, args.json)
}

func runSignals(ctx context.Context, a *app, tickers []string, asJSON bool) error {
	done := a.withProgress("signals", len(tickers))
	rep, err := a.runner.Watchlist(ctx, tickers)
	done()
	if rep == nil {
		return err
	}
	if asJSON {
		return writeJSON(os.Stdout, rep)
	}
	if werr := notifier.WatchlistTable(os.Stdout, rep); werr != nil {
		return werr
	}
	return err
}

func runServe(ctx context.Context, a *app, addr string) error {
	if addr == "" {
		addr = a.cfg.Dashboard.Addr
	}
	srv, err := dashboard.NewServer(a.runner, a.scanner, dashboard.Options{
		Tickers: a.cfg.Tickers,
		Scan:    a.cfg.ScanOptions(),
		TopN:    a.cfg.Scanner.Top,
	}, a.metrics, a.logger)
	if err != nil {
		return err
	}
	return srv.Run(ctx, addr)
}

func runWatch(ctx context.Context, a *app) error {
	cfg := a.cfg
	if err := cfg.ValidateTelegram(); err != nil {
		return err
	}
	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.DataSource.Proxy, a.logger)
	sched := scheduler.NewScheduler(ctx, a.runner, a.scanner, tn, scheduler.Options{
		Tickers:    cfg.Tickers,
		UseGappers: cfg.Schedule.UseGappers,
		TopN:       cfg.Scanner.Top,
		Scan:       cfg.ScanOptions(),
	}, a.logger)
	if err := sched.Register(cfg.Schedule.Cron); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	go tn.StartPolling(ctx, sched.HandleCommand)
	a.logger.Info("telegram polling started")

	if cfg.Schedule.RunOnStart {
		a.logger.Info("run_on_start enabled, executing report now")
		go sched.RunNow()
	}

	a.logger.Info("SignalDesk is running. Press Ctrl+C to stop.", zap.String("cron", cfg.Schedule.Cron))
	<-ctx.Done()
	a.logger.Info("shutdown signal received, stopping...")
	return nil
}
