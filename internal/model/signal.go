package model

import (
	"fmt"
	"time"
)

// TimeframeConfig describes one timeframe of the multi-timeframe analysis.
type TimeframeConfig struct {
	Name     string        `yaml:"name" json:"name" validate:"required"`
	Interval string        `yaml:"interval" json:"interval" validate:"required"`
	Period   string        `yaml:"period" json:"period" validate:"required"`
	Weight   float64       `yaml:"weight" json:"weight" validate:"gt=0,lte=1"`
	Resample time.Duration `yaml:"resample" json:"resample,omitempty"`
}

// DefaultTimeframes is the 1m/5m/10m/1d set. The 10m frame is built from 5m bars.
func DefaultTimeframes() []TimeframeConfig {
	return []TimeframeConfig{
		{Name: "1m", Interval: "1m", Period: "1d", Weight: 0.35},
		{Name: "5m", Interval: "5m", Period: "5d", Weight: 0.30},
		{Name: "10m", Interval: "5m", Period: "5d", Weight: 0.20, Resample: 10 * time.Minute},
		{Name: "1d", Interval: "1d", Period: "90d", Weight: 0.15},
	}
}

// WatchlistTimeframe is the single daily frame used by the watchlist table.
func WatchlistTimeframe() TimeframeConfig {
	return TimeframeConfig{Name: "1d", Interval: "1d", Period: "120d", Weight: 1.0}
}

// TimeframeScore is a signed score in {-2..2}. Valid is false when the
// timeframe had no usable data.
type TimeframeScore struct {
	Value int  `json:"value"`
	Valid bool `json:"valid"`
}

// NoScore is the absent score.
var NoScore = TimeframeScore{}

// ScoreOf wraps a present score.
func ScoreOf(v int) TimeframeScore { return TimeframeScore{Value: v, Valid: true} }

// Label returns the human-readable signal name.
func (s TimeframeScore) Label() string {
	if !s.Valid {
		return "No Data"
	}
	switch {
	case s.Value >= 2:
		return "STRONG BUY"
	case s.Value == 1:
		return "BUY"
	case s.Value == 0:
		return "NEUTRAL"
	case s.Value == -1:
		return "SELL"
	default:
		return "STRONG SELL"
	}
}

func (s TimeframeScore) String() string {
	if !s.Valid {
		return "None"
	}
	return fmt.Sprintf("%d", s.Value)
}

// ConfidenceResult is the weighted combination of all timeframe scores of one ticker.
type ConfidenceResult struct {
	NormalizedScore      float64 `json:"normalized_score"`
	BullishFrameCount    int     `json:"bullish_frame_count"`
	EstimatedHoldMinutes int     `json:"estimated_hold_minutes"`
	Suggestion           string  `json:"suggestion"`
}

// EntrySetup is the entry/exit suggestion derived from the fastest timeframe.
type EntrySetup string

const (
	EntryStrongBuy    EntrySetup = "STRONG_BUY"
	EntryPossibleExit EntrySetup = "POSSIBLE_EXIT"
	EntryNone         EntrySetup = "NONE"
	EntryInsufficient EntrySetup = "INSUFFICIENT"
)

// Pressure is the simulated order-book pressure read.
type Pressure string

const (
	PressureBuyers  Pressure = "BUYERS"
	PressureSellers Pressure = "SELLERS"
	PressureNone    Pressure = "NONE"
	PressureWaiting Pressure = "WAITING"
)

// ChartPoint is one point of a per-frame chart. RSI is nil during warm-up.
type ChartPoint struct {
	Time  time.Time `json:"time"`
	Close float64   `json:"close"`
	RSI   *float64  `json:"rsi"`
}

// FrameSignal is the evaluation of a single timeframe.
type FrameSignal struct {
	Timeframe TimeframeConfig   `json:"timeframe"`
	Bars      int               `json:"bars"`
	Snapshot  IndicatorSnapshot `json:"snapshot"`
	Score     TimeframeScore    `json:"score"`
	RVOL      float64           `json:"rvol"`
	Chart     []ChartPoint      `json:"chart,omitempty"`
	Error     string            `json:"error,omitempty"`
}

// TickerReport is everything one report cycle produces for a ticker.
type TickerReport struct {
	Symbol      string           `json:"symbol"`
	Frames      []FrameSignal    `json:"frames"`
	Confidence  ConfidenceResult `json:"confidence"`
	Entry       EntrySetup       `json:"entry"`
	Pressure    Pressure         `json:"pressure"`
	Headlines   []Headline       `json:"headlines,omitempty"`
	GeneratedAt time.Time        `json:"generated_at"`
}

// Report is the output of one pass over a ticker list.
type Report struct {
	RunID     string         `json:"run_id"`
	StartedAt time.Time      `json:"started_at"`
	Duration  time.Duration  `json:"duration"`
	Tickers   []TickerReport `json:"tickers"`
}

// FrameData is a fetched series paired with its timeframe, as handed from
// the data source to the evaluator. Err is set when the series could not be loaded.
type FrameData struct {
	Config TimeframeConfig
	Series PriceSeries
	Err    error
}
