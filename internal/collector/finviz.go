package collector

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"SignalDesk/internal/model"
)

// FinvizBaseURL hosts the quote pages scraped for float data.
const FinvizBaseURL = "https://finviz.com"

// FinvizFetcher scrapes float and short float from the Finviz quote page.
type FinvizFetcher struct {
	Client    *http.Client
	BaseURL   string
	UserAgent string
}

func NewFinvizFetcher(opts HTTPOptions) *FinvizFetcher {
	return &FinvizFetcher{
		Client:    newHTTPClient(opts),
		BaseURL:   FinvizBaseURL,
		UserAgent: userAgent(opts),
	}
}

func (f *FinvizFetcher) FetchFundamentals(ctx context.Context, symbol string) (model.Fundamentals, error) {
	u := fmt.Sprintf("%s/quote.ashx?t=%s", f.BaseURL, url.QueryEscape(symbol))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return model.UnavailableFundamentals, err
	}
	req.Header.Set("User-Agent", f.UserAgent)

	resp, err := f.Client.Do(req)
	if err != nil {
		return model.UnavailableFundamentals, fmt.Errorf("finviz fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return model.UnavailableFundamentals, fmt.Errorf("finviz: status %d", resp.StatusCode)
	}
	return ParseFundamentals(resp.Body)
}

// ParseFundamentals reads the snapshot table, where each label cell is
// followed by its value cell. Labels not found become "-"; ErrNoData is
// returned when neither is present.
func ParseFundamentals(r io.Reader) (model.Fundamentals, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return model.UnavailableFundamentals, fmt.Errorf("parse finviz page: %w", err)
	}

	out := model.UnavailableFundamentals
	found := 0
	doc.Find("td").Each(func(_ int, td *goquery.Selection) {
		label := strings.TrimSpace(td.Text())
		var dst *string
		switch label {
		case "Shs Float":
			dst = &out.Float
		case "Short Float", "Short Float / Ratio":
			dst = &out.ShortFloat
		default:
			return
		}
		if *dst != model.Placeholder {
			return
		}
		value := strings.TrimSpace(td.Next().Text())
		if value == "" {
			return
		}
		// "Short Float / Ratio" carries "12.3% / 2.1"
		if i := strings.Index(value, " / "); i > 0 {
			value = value[:i]
		}
		*dst = value
		found++
	})
	if found == 0 {
		return model.UnavailableFundamentals, ErrNoData
	}
	return out, nil
}
