// Package dashboard serves the interactive report page and its JSON API.
package dashboard

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"SignalDesk/internal/collector"
	"SignalDesk/internal/logging"
	"SignalDesk/internal/metrics"
	"SignalDesk/internal/report"
)

//go:embed templates/*.html
var templateFS embed.FS

// Options configures the dashboard.
type Options struct {
	Tickers  []string // shown when no symbols are requested
	Scan     collector.ScanOptions
	TopN     int
	Timeout  time.Duration // per-request analysis budget
	Shutdown time.Duration
}

// Server wraps Echo HTTP server.
type Server struct {
	echo    *echo.Echo
	runner  *report.Runner
	scanner *collector.Scanner
	opts    Options
	metrics *metrics.Recorder
	logger  *zap.Logger
	page    *template.Template
}

// NewServer creates the dashboard with its routes registered.
func NewServer(runner *report.Runner, scanner *collector.Scanner, opts Options, rec *metrics.Recorder, logger *zap.Logger) (*Server, error) {
	page, err := template.ParseFS(templateFS, "templates/index.html")
	if err != nil {
		return nil, fmt.Errorf("parse dashboard template: %w", err)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 2 * time.Minute
	}
	if opts.Shutdown <= 0 {
		opts.Shutdown = 10 * time.Second
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:    e,
		runner:  runner,
		scanner: scanner,
		opts:    opts,
		metrics: rec,
		logger:  logging.OrNop(logger),
		page:    page,
	}

	e.Use(recoverMiddleware(s.logger))
	e.Use(requestLogging(s.logger))

	e.GET("/", s.index)
	e.GET("/healthz", s.healthz)
	api := e.Group("/api")
	api.GET("/gappers", s.gappers)
	api.GET("/report", s.report)
	api.GET("/signals", s.signals)

	if reg := rec.Registry(); reg != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	}
	return s, nil
}

// Echo returns the underlying Echo instance.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("dashboard listening", zap.String("addr", addr))
		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.Shutdown)
	defer cancel()
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}
	s.logger.Info("dashboard stopped")
	return nil
}
