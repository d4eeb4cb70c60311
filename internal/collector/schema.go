package collector

import (
	"errors"
	"sort"
	"strings"
	"time"
	"unicode"

	"SignalDesk/internal/model"
)

// Column is a canonical OHLCV field.
type Column int

const (
	ColUnknown Column = iota
	ColOpen
	ColHigh
	ColLow
	ColClose
	ColAdjClose
	ColVolume
)

var columnNames = map[string]Column{
	"open":     ColOpen,
	"high":     ColHigh,
	"low":      ColLow,
	"close":    ColClose,
	"adjclose": ColAdjClose,
	"volume":   ColVolume,
}

// ErrNoCloseColumn is returned when a table has neither a close nor an
// adjusted close column.
var ErrNoCloseColumn = errors.New("table has no close column")

// CanonicalColumn maps a raw header to its OHLCV field. Headers such as
// "Close", "close_AAPL", "('Close', 'AAPL')", "Adj Close" and "adjclose"
// are recognized; the ticker part of a compound header is ignored.
func CanonicalColumn(raw string) Column {
	tokens := strings.FieldsFunc(strings.ToLower(raw), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for i, tok := range tokens {
		if tok == "adj" && i+1 < len(tokens) && tokens[i+1] == "close" {
			return ColAdjClose
		}
		if c, ok := columnNames[tok]; ok {
			return c
		}
	}
	return ColUnknown
}

// Table is a column-oriented frame as handed over by an upstream source.
// Nil cells are missing values.
type Table struct {
	Index   []time.Time
	Columns map[string][]*float64
}

// ToBars applies the schema mapping and returns time-ascending bars with
// unique timestamps. Rows without a close are skipped. A missing close
// column falls back to the adjusted close; missing open/high/low fall back
// to the close.
func (t Table) ToBars() ([]model.OHLCV, error) {
	cols := make(map[Column][]*float64, len(t.Columns))
	for name, values := range t.Columns {
		c := CanonicalColumn(name)
		if c == ColUnknown {
			continue
		}
		if _, dup := cols[c]; !dup {
			cols[c] = values
		}
	}
	closes := cols[ColClose]
	if closes == nil {
		closes = cols[ColAdjClose]
	}
	if closes == nil {
		return nil, ErrNoCloseColumn
	}

	bars := make([]model.OHLCV, 0, len(t.Index))
	for i, ts := range t.Index {
		c, ok := cell(closes, i)
		if !ok {
			continue
		}
		b := model.OHLCV{Time: ts, Open: c, High: c, Low: c, Close: c}
		if v, ok := cell(cols[ColOpen], i); ok {
			b.Open = v
		}
		if v, ok := cell(cols[ColHigh], i); ok {
			b.High = v
		}
		if v, ok := cell(cols[ColLow], i); ok {
			b.Low = v
		}
		if v, ok := cell(cols[ColVolume], i); ok {
			b.Volume = v
		}
		bars = append(bars, b)
	}
	return sanitize(bars), nil
}

func cell(col []*float64, i int) (float64, bool) {
	if i >= len(col) || col[i] == nil {
		return 0, false
	}
	return *col[i], true
}

// sanitize sorts bars by time and keeps the last bar of each timestamp.
func sanitize(bars []model.OHLCV) []model.OHLCV {
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	out := bars[:0]
	for _, b := range bars {
		if n := len(out); n > 0 && out[n-1].Time.Equal(b.Time) {
			out[n-1] = b
			continue
		}
		out = append(out, b)
	}
	return out
}
