package scheduler

import (
	"context"
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"SignalDesk/internal/collector"
	"SignalDesk/internal/logging"
	"SignalDesk/internal/notifier"
	"SignalDesk/internal/report"
)

// Options selects what a scheduled pass analyzes.
type Options struct {
	Tickers    []string
	UseGappers bool // analyze the top gappers instead of Tickers
	TopN       int
	Scan       collector.ScanOptions
}

// Scheduler runs report passes on a cron schedule and answers bot commands.
type Scheduler struct {
	Cron     *cron.Cron
	Runner   *report.Runner
	Scanner  *collector.Scanner
	Notifier *notifier.TelegramNotifier
	Options  Options
	Logger   *zap.Logger
	Ctx      context.Context
}

// NewScheduler creates a new Scheduler. Overlapping runs of the same job are skipped.
func NewScheduler(ctx context.Context, runner *report.Runner, scanner *collector.Scanner, tn *notifier.TelegramNotifier, opts Options, logger *zap.Logger) *Scheduler {
	logger = logging.OrNop(logger)
	cl := cronLogger{logger.Sugar()}
	return &Scheduler{
		Cron: cron.New(
			cron.WithSeconds(),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		Runner:   runner,
		Scanner:  scanner,
		Notifier: tn,
		Options:  opts,
		Logger:   logger,
		Ctx:      ctx,
	}
}

// Register adds the report pass under the given cron spec.
func (s *Scheduler) Register(spec string) error {
	if _, err := s.Cron.AddFunc(spec, s.reportTask); err != nil {
		return fmt.Errorf("register report task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.Logger.Info("scheduler started")
}

// Stop stops the cron scheduler and waits for a running pass to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.Logger.Info("scheduler stopped")
}

// RunNow executes the report task immediately.
func (s *Scheduler) RunNow() {
	s.reportTask()
}

// Symbols resolves the tickers of a pass: the configured list, or the top
// gappers when UseGappers is set.
func (s *Scheduler) Symbols(ctx context.Context) ([]string, error) {
	if !s.Options.UseGappers || s.Scanner == nil {
		return s.Options.Tickers, nil
	}
	rows, err := s.Scanner.Scan(ctx, s.Options.Scan)
	if err != nil {
		return nil, err
	}
	n := s.Options.TopN
	if n <= 0 || n > len(rows) {
		n = len(rows)
	}
	symbols := make([]string, n)
	for i := range symbols {
		symbols[i] = rows[i].Symbol
	}
	return symbols, nil
}

func (s *Scheduler) reportTask() {
	s.Logger.Info("running scheduled report")
	symbols, err := s.Symbols(s.Ctx)
	if err != nil {
		s.Logger.Error("resolve tickers", zap.Error(err))
		s.trySend(fmt.Sprintf("❌ Gappers scan failed: %v", err))
		return
	}
	if len(symbols) == 0 {
		s.Logger.Warn("no tickers to analyze")
		return
	}
	rep, err := s.Runner.Run(s.Ctx, symbols)
	if err != nil {
		s.Logger.Warn("report pass incomplete", zap.Error(err))
	}
	if rep == nil || len(rep.Tickers) == 0 {
		return
	}
	s.trySend(notifier.FormatDigest(rep))
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return notifier.HelpText
	}
	args := upper(fields[1:])
	switch strings.ToLower(fields[0]) {
	case "/report":
		if len(args) == 0 {
			args = s.Options.Tickers
		}
		rep, err := s.Runner.Run(ctx, args)
		if rep == nil || len(rep.Tickers) == 0 {
			return fmt.Sprintf("❌ Report failed: %v", err)
		}
		return notifier.FormatDigest(rep)
	case "/signals":
		if len(args) == 0 {
			args = s.Options.Tickers
		}
		rep, err := s.Runner.Watchlist(ctx, args)
		if rep == nil || len(rep.Tickers) == 0 {
			return fmt.Sprintf("❌ Watchlist failed: %v", err)
		}
		return notifier.FormatDigest(rep)
	case "/gappers":
		if s.Scanner == nil {
			return "Gappers scan is not configured."
		}
		rows, err := s.Scanner.Scan(ctx, s.Options.Scan)
		if err != nil {
			return fmt.Sprintf("❌ Gappers scan failed: %v", err)
		}
		return notifier.FormatGappers(rows, 10)
	default:
		return notifier.HelpText
	}
}

func (s *Scheduler) trySend(text string) {
	if !s.Notifier.Enabled() {
		s.Logger.Debug("telegram disabled, dropping message")
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		s.Logger.Error("send notification", zap.Error(err))
	}
}

func upper(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToUpper(s)
	}
	return out
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	l *zap.SugaredLogger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debugw(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Errorw(msg, append(keysAndValues, "error", err)...)
}

var _ cron.Logger = cronLogger{}
