package model

import "time"

// OHLCV represents a single candlestick bar.
type OHLCV struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// PriceSeries holds the bars of one (symbol, interval, period) request,
// ordered by time ascending.
type PriceSeries struct {
	Symbol   string  `json:"symbol"`
	Interval string  `json:"interval"`
	Period   string  `json:"period"`
	Bars     []OHLCV `json:"bars"`
}

// Len returns the number of bars.
func (s PriceSeries) Len() int { return len(s.Bars) }

// Empty reports whether the series has no bars.
func (s PriceSeries) Empty() bool { return len(s.Bars) == 0 }

// Closes extracts the close prices.
func (s PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		closes[i] = b.Close
	}
	return closes
}

// Volumes extracts the bar volumes.
func (s PriceSeries) Volumes() []float64 {
	vols := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		vols[i] = b.Volume
	}
	return vols
}

// Last returns the most recent bar.
func (s PriceSeries) Last() (OHLCV, bool) {
	if len(s.Bars) == 0 {
		return OHLCV{}, false
	}
	return s.Bars[len(s.Bars)-1], true
}

// Quote is one row of the day-gainers screener.
type Quote struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	ChangePercent float64 `json:"change_percent"`
	Volume        int64   `json:"volume"`
}

// Fundamentals holds best-effort fields scraped from a quote page.
// Unavailable values are "-".
type Fundamentals struct {
	Float      string `json:"float"`
	ShortFloat string `json:"short_float"`
}

// Placeholder marks a field that could not be fetched.
const Placeholder = "-"

// UnavailableFundamentals is used when enrichment fails.
var UnavailableFundamentals = Fundamentals{Float: Placeholder, ShortFloat: Placeholder}

// Gapper is a screener quote enriched with relative volume and float data.
type Gapper struct {
	Quote
	RVOL       float64 `json:"rvol"`
	Float      string  `json:"float"`
	ShortFloat string  `json:"short_float"`
}

// Headline is a news item for a symbol.
type Headline struct {
	Title     string    `json:"title"`
	Link      string    `json:"link"`
	Publisher string    `json:"publisher,omitempty"`
	Sentiment Sentiment `json:"sentiment"`
}

// Sentiment is the coarse tone of a headline.
type Sentiment string

const (
	SentimentBullish Sentiment = "Bullish"
	SentimentBearish Sentiment = "Bearish"
	SentimentNeutral Sentiment = "Neutral"
)
