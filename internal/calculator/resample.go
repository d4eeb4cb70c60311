package calculator

import (
	"time"

	"SignalDesk/internal/model"
)

// Resample aggregates bars into buckets of the given width. Each bucket is
// stamped with its start time: open is the first open, high the max high,
// low the min low, close the last close and volume the summed volume.
// Buckets with no bars are not emitted. Input must be time-ascending.
func Resample(bars []model.OHLCV, width time.Duration) []model.OHLCV {
	if len(bars) == 0 || width <= 0 {
		return nil
	}
	var out []model.OHLCV
	var cur model.OHLCV
	var started bool

	for _, b := range bars {
		start := b.Time.Truncate(width)
		if !started || !start.Equal(cur.Time) {
			if started {
				out = append(out, cur)
			}
			cur = model.OHLCV{Time: start, Open: b.Open, High: b.High, Low: b.Low, Close: b.Close, Volume: b.Volume}
			started = true
			continue
		}
		if b.High > cur.High {
			cur.High = b.High
		}
		if b.Low < cur.Low {
			cur.Low = b.Low
		}
		cur.Close = b.Close
		cur.Volume += b.Volume
	}
	if started {
		out = append(out, cur)
	}
	return out
}

// ResampleSeries returns a copy of the series with resampled bars.
func ResampleSeries(s model.PriceSeries, width time.Duration) model.PriceSeries {
	s.Bars = Resample(s.Bars, width)
	return s
}
