package notifier

import (
	"fmt"
	"io"
	"strings"
	"time"

	"SignalDesk/internal/model"
)

// MeterWidth is the number of cells of the confidence meter.
const MeterWidth = 20

// Meter maps a normalized score in [-100,100] to a 0-100 gauge value.
func Meter(normalized float64) int {
	v := int((normalized + 100) / 2)
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// MeterBar renders the gauge as a fixed-width bar.
func MeterBar(normalized float64) string {
	filled := Meter(normalized) * MeterWidth / 100
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", MeterWidth-filled) + "]"
}

// FormatVolume abbreviates share counts: 1.2M, 3.4K.
func FormatVolume(v int64) string {
	switch {
	case v >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(v)/1_000_000)
	case v >= 1_000:
		return fmt.Sprintf("%.1fK", float64(v)/1_000)
	default:
		return fmt.Sprintf("%d", v)
	}
}

// EntryText is the human-readable entry/exit suggestion.
func EntryText(e model.EntrySetup) string {
	switch e {
	case model.EntryStrongBuy:
		return "Strong buy setup"
	case model.EntryPossibleExit:
		return "Possible exit"
	case model.EntryNone:
		return "No clear setup"
	default:
		return "Not enough data"
	}
}

// PressureText is the human-readable Level 2 read.
func PressureText(p model.Pressure) string {
	switch p {
	case model.PressureBuyers:
		return "Buyers stepping in"
	case model.PressureSellers:
		return "Sellers in control"
	case model.PressureNone:
		return "No dominant side"
	default:
		return "Waiting for data"
	}
}

func indicator(v float64, ok bool) string {
	if !ok {
		return model.Placeholder
	}
	return fmt.Sprintf("%.2f", v)
}

// WriteReport renders a full pass to the console.
func WriteReport(w io.Writer, rep *model.Report) error {
	fmt.Fprintf(w, "Report %s  %s  (%d tickers, %s)\n\n",
		rep.RunID, rep.StartedAt.Format("2006-01-02 15:04:05"), len(rep.Tickers), rep.Duration.Round(time.Millisecond))
	for i := range rep.Tickers {
		if err := WriteTicker(w, &rep.Tickers[i]); err != nil {
			return err
		}
	}
	return nil
}

// WriteTicker renders one ticker: the frame table, confidence, setup and news.
func WriteTicker(w io.Writer, tr *model.TickerReport) error {
	fmt.Fprintf(w, "=== %s ===\n", tr.Symbol)
	if err := FramesTable(w, tr); err != nil {
		return err
	}
	c := tr.Confidence
	fmt.Fprintf(w, "Confidence: %+.1f %s %d/100\n", c.NormalizedScore, MeterBar(c.NormalizedScore), Meter(c.NormalizedScore))
	fmt.Fprintf(w, "Bullish frames: %d | %s\n", c.BullishFrameCount, c.Suggestion)
	fmt.Fprintf(w, "Entry: %s | Level 2: %s\n", EntryText(tr.Entry), PressureText(tr.Pressure))
	if len(tr.Headlines) > 0 {
		fmt.Fprintln(w, "News:")
		for _, h := range tr.Headlines {
			fmt.Fprintf(w, "  [%s] %s\n", h.Sentiment, h.Title)
		}
	}
	_, err := fmt.Fprintln(w)
	return err
}
