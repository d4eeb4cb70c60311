package collector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/kaptinlin/jsonrepair"
	"go.uber.org/zap"

	"SignalDesk/internal/logging"
	"SignalDesk/internal/model"
)

// YahooBaseURL is the public Yahoo Finance query host.
const YahooBaseURL = "https://query1.finance.yahoo.com"

// YahooFetcher implements Fetcher using Yahoo Finance public API.
type YahooFetcher struct {
	Client    *http.Client
	BaseURL   string
	UserAgent string
	SymbolMap map[string]string // maps internal symbol to Yahoo ticker
	Logger    *zap.Logger
}

// NewYahooFetcher creates a new Yahoo Finance fetcher.
func NewYahooFetcher(opts HTTPOptions, logger *zap.Logger) *YahooFetcher {
	return &YahooFetcher{
		Client:    newHTTPClient(opts),
		BaseURL:   YahooBaseURL,
		UserAgent: userAgent(opts),
		SymbolMap: map[string]string{
			"SPX500": "^GSPC",
			"SPX":    "^GSPC",
			"SP500":  "^GSPC",
		},
		Logger: logging.OrNop(logger),
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

func (f *YahooFetcher) yahooSymbol(symbol string) string {
	if mapped, ok := f.SymbolMap[symbol]; ok {
		return mapped
	}
	return symbol
}

type yahooError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// yahooChart is the response structure from Yahoo Finance chart API. The
// indicator blocks are decoded generically and mapped by column name.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote    []map[string][]*float64 `json:"quote"`
				AdjClose []map[string][]*float64 `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *yahooError `json:"error"`
	} `json:"chart"`
}

func (f *YahooFetcher) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	u := f.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", f.UserAgent)

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("yahoo read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode, truncate(body, 200))
	}
	return body, nil
}

// FetchBars loads a chart series. Period is passed through as the Yahoo range (1d, 5d, 90d ...).
func (f *YahooFetcher) FetchBars(ctx context.Context, symbol, interval, period string) (model.PriceSeries, error) {
	series := model.PriceSeries{Symbol: symbol, Interval: interval, Period: period}
	q := url.Values{}
	q.Set("interval", interval)
	q.Set("range", period)
	body, err := f.get(ctx, "/v8/finance/chart/"+url.PathEscape(f.yahooSymbol(symbol)), q)
	if err != nil {
		return series, err
	}
	bars, err := ParseChart(body)
	if err != nil {
		return series, err
	}
	series.Bars = bars
	return series, nil
}

// ParseChart decodes a v8 chart body into bars. A result without
// timestamps yields an empty slice, not an error.
func ParseChart(body []byte) ([]model.OHLCV, error) {
	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("yahoo decode: %w", err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 {
		return nil, nil
	}

	result := chart.Chart.Result[0]
	table := Table{
		Index:   make([]time.Time, len(result.Timestamp)),
		Columns: map[string][]*float64{},
	}
	for i, ts := range result.Timestamp {
		table.Index[i] = time.Unix(ts, 0).UTC()
	}
	if len(result.Indicators.Quote) > 0 {
		for name, col := range result.Indicators.Quote[0] {
			table.Columns[name] = col
		}
	}
	if len(result.Indicators.AdjClose) > 0 {
		for name, col := range result.Indicators.AdjClose[0] {
			table.Columns[name] = col
		}
	}
	return table.ToBars()
}

type screenerResponse struct {
	Finance struct {
		Result []struct {
			Quotes []json.RawMessage `json:"quotes"`
		} `json:"result"`
		Error *yahooError `json:"error"`
	} `json:"finance"`
}

type screenerQuote struct {
	Symbol    string     `json:"symbol"`
	ShortName string     `json:"shortName"`
	LongName  string     `json:"longName"`
	Price     flexNumber `json:"regularMarketPrice"`
	Change    flexNumber `json:"regularMarketChangePercent"`
	Volume    flexNumber `json:"regularMarketVolume"`
}

// flexNumber accepts a plain number, a numeric string or a {"raw": n} object.
type flexNumber struct {
	Value float64
	Set   bool
}

func (n *flexNumber) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	switch b[0] {
	case '{':
		var obj struct {
			Raw *float64 `json:"raw"`
		}
		if err := json.Unmarshal(b, &obj); err != nil {
			return err
		}
		if obj.Raw != nil {
			n.Value, n.Set = *obj.Raw, true
		}
		return nil
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		n.Value, n.Set = v, true
		return nil
	}
	v, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return err
	}
	n.Value, n.Set = v, true
	return nil
}

// FetchDayGainers loads the predefined day_gainers screener.
func (f *YahooFetcher) FetchDayGainers(ctx context.Context, count int) ([]model.Quote, error) {
	q := url.Values{}
	q.Set("scrIds", "day_gainers")
	q.Set("count", strconv.Itoa(count))
	body, err := f.get(ctx, "/v1/finance/screener/predefined/saved", q)
	if err != nil {
		return nil, err
	}
	quotes, skipped, err := ParseDayGainers(body)
	if err != nil {
		return nil, err
	}
	if skipped > 0 {
		f.Logger.Debug("skipped malformed screener rows", zap.Int("skipped", skipped))
	}
	return quotes, nil
}

// ParseDayGainers decodes a screener body. A body that fails to decode is
// repaired once before giving up. Rows without a symbol, price or change
// are skipped and counted.
func ParseDayGainers(body []byte) (quotes []model.Quote, skipped int, err error) {
	var resp screenerResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		repaired, rerr := jsonrepair.JSONRepair(string(body))
		if rerr != nil {
			return nil, 0, fmt.Errorf("yahoo screener decode: %w", err)
		}
		if err := json.Unmarshal([]byte(repaired), &resp); err != nil {
			return nil, 0, fmt.Errorf("yahoo screener decode after repair: %w", err)
		}
	}
	if resp.Finance.Error != nil {
		return nil, 0, fmt.Errorf("yahoo api error: %s", resp.Finance.Error.Description)
	}
	if len(resp.Finance.Result) == 0 {
		return nil, 0, ErrNoData
	}

	for _, raw := range resp.Finance.Result[0].Quotes {
		var sq screenerQuote
		if err := json.Unmarshal(raw, &sq); err != nil || sq.Symbol == "" || !sq.Price.Set || !sq.Change.Set {
			skipped++
			continue
		}
		name := sq.ShortName
		if name == "" {
			name = sq.LongName
		}
		quotes = append(quotes, model.Quote{
			Symbol:        sq.Symbol,
			Name:          name,
			Price:         sq.Price.Value,
			ChangePercent: sq.Change.Value,
			Volume:        int64(sq.Volume.Value),
		})
	}
	return quotes, skipped, nil
}

type searchResponse struct {
	News []struct {
		Title     string `json:"title"`
		Link      string `json:"link"`
		Publisher string `json:"publisher"`
	} `json:"news"`
}

// FetchHeadlines uses the search endpoint's news block.
func (f *YahooFetcher) FetchHeadlines(ctx context.Context, symbol string, limit int) ([]model.Headline, error) {
	q := url.Values{}
	q.Set("q", f.yahooSymbol(symbol))
	q.Set("quotesCount", "0")
	q.Set("newsCount", strconv.Itoa(limit))
	body, err := f.get(ctx, "/v1/finance/search", q)
	if err != nil {
		return nil, err
	}
	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("yahoo search decode: %w", err)
	}

	out := make([]model.Headline, 0, limit)
	for _, n := range resp.News {
		if len(out) == limit {
			break
		}
		if n.Title == "" {
			continue
		}
		out = append(out, model.Headline{Title: n.Title, Link: n.Link, Publisher: n.Publisher})
	}
	return out, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
