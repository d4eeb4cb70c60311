package dashboard

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"SignalDesk/internal/model"
	"SignalDesk/internal/notifier"
)

type apiResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

type errorResponse struct {
	Status  int               `json:"status"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

func ok(c echo.Context, data any) error {
	return c.JSON(http.StatusOK, apiResponse{Status: http.StatusOK, Message: http.StatusText(http.StatusOK), Data: data})
}

func fail(c echo.Context, status int, errs []ValidationError) error {
	return c.JSON(status, errorResponse{Status: status, Message: http.StatusText(status), Errors: errs})
}

type reportRequest struct {
	Symbols string `query:"symbols" validate:"max=200"`
	Limit   int    `query:"limit" default:"3" validate:"gte=1,lte=10"`
}

type gappersRequest struct {
	Limit int `query:"limit" default:"25" validate:"gte=1,lte=100"`
}

// gapperRow adds display fields to a gapper.
type gapperRow struct {
	model.Gapper
	VolumeText string `json:"volume_text"`
}

// tickerView adds display fields to a ticker report.
type tickerView struct {
	model.TickerReport
	Meter        int    `json:"meter"`
	EntryText    string `json:"entry_text"`
	PressureText string `json:"pressure_text"`
}

type pageData struct {
	Tickers string
	TopN    int
	Now     string
}

func (s *Server) index(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(http.StatusOK)
	return s.page.Execute(c.Response(), pageData{
		Tickers: strings.Join(s.opts.Tickers, ","),
		TopN:    s.opts.TopN,
		Now:     time.Now().Format("2006-01-02 15:04:05"),
	})
}

func (s *Server) healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) requestContext(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), s.opts.Timeout)
}

func (s *Server) gappers(c echo.Context) error {
	var req gappersRequest
	if errs := bindRequest(c, &req); errs != nil {
		return fail(c, http.StatusBadRequest, errs)
	}
	if s.scanner == nil {
		return fail(c, http.StatusServiceUnavailable, []ValidationError{{Code: "ERR_DISABLED", Message: "gappers scan is not configured"}})
	}
	ctx, cancel := s.requestContext(c)
	defer cancel()

	rows, err := s.scanner.Scan(ctx, s.opts.Scan)
	if err != nil {
		s.logger.Warn("gappers scan failed", zap.Error(err))
		return fail(c, http.StatusBadGateway, []ValidationError{{Code: "ERR_UPSTREAM", Message: err.Error()}})
	}
	if len(rows) > req.Limit {
		rows = rows[:req.Limit]
	}
	out := make([]gapperRow, len(rows))
	for i, g := range rows {
		out[i] = gapperRow{Gapper: g, VolumeText: notifier.FormatVolume(g.Volume)}
	}
	return ok(c, out)
}

// parseSymbols splits a comma-separated ticker list.
func parseSymbols(raw string) []string {
	var out []string
	for _, sym := range strings.Split(raw, ",") {
		if sym = strings.ToUpper(strings.TrimSpace(sym)); sym != "" {
			out = append(out, sym)
		}
	}
	return out
}

// symbols resolves the report tickers: an explicit list, else the top
// gappers, else the configured tickers. All three are cut to req.Limit.
func (s *Server) symbols(ctx context.Context, req reportRequest) []string {
	if req.Symbols != "" {
		out := parseSymbols(req.Symbols)
		if len(out) > req.Limit {
			out = out[:req.Limit]
		}
		return out
	}
	if s.scanner != nil {
		rows, err := s.scanner.Scan(ctx, s.opts.Scan)
		if err == nil && len(rows) > 0 {
			n := min(req.Limit, len(rows))
			out := make([]string, n)
			for i := range out {
				out[i] = rows[i].Symbol
			}
			return out
		}
		if err != nil {
			s.logger.Warn("falling back to configured tickers", zap.Error(err))
		}
	}
	out := s.opts.Tickers
	if len(out) > req.Limit {
		out = out[:req.Limit]
	}
	return out
}

func (s *Server) report(c echo.Context) error {
	var req reportRequest
	if errs := bindRequest(c, &req); errs != nil {
		return fail(c, http.StatusBadRequest, errs)
	}
	ctx, cancel := s.requestContext(c)
	defer cancel()

	rep, err := s.runner.Run(ctx, s.symbols(ctx, req))
	if rep == nil {
		return fail(c, http.StatusGatewayTimeout, []ValidationError{{Code: "ERR_TIMEOUT", Message: err.Error()}})
	}
	if err != nil {
		s.logger.Warn("report pass incomplete", zap.Error(err))
	}
	return ok(c, views(rep))
}

func (s *Server) signals(c echo.Context) error {
	var req reportRequest
	if errs := bindRequest(c, &req); errs != nil {
		return fail(c, http.StatusBadRequest, errs)
	}
	ctx, cancel := s.requestContext(c)
	defer cancel()

	// The watchlist is not cut to limit.
	syms := s.opts.Tickers
	if req.Symbols != "" {
		syms = parseSymbols(req.Symbols)
	}
	rep, err := s.runner.Watchlist(ctx, syms)
	if rep == nil {
		return fail(c, http.StatusGatewayTimeout, []ValidationError{{Code: "ERR_TIMEOUT", Message: err.Error()}})
	}
	return ok(c, views(rep))
}

func views(rep *model.Report) map[string]any {
	tickers := make([]tickerView, len(rep.Tickers))
	for i, tr := range rep.Tickers {
		tickers[i] = tickerView{
			TickerReport: tr,
			Meter:        notifier.Meter(tr.Confidence.NormalizedScore),
			EntryText:    notifier.EntryText(tr.Entry),
			PressureText: notifier.PressureText(tr.Pressure),
		}
	}
	return map[string]any{
		"run_id":      rep.RunID,
		"started_at":  rep.StartedAt,
		"duration_ms": rep.Duration.Milliseconds(),
		"tickers":     tickers,
	}
}
