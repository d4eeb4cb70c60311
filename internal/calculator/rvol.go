package calculator

import (
	"gonum.org/v1/gonum/stat"

	"SignalDesk/internal/model"
)

// RVOLWindow is the trailing window used for relative volume.
const RVOLWindow = 10

// RelativeVolume returns the last bar's volume divided by the mean volume of
// the trailing `window` bars (the last bar included). Returns 0 when there
// are fewer than `window` bars or the mean is zero.
func RelativeVolume(bars []model.OHLCV, window int) float64 {
	if window <= 0 || len(bars) < window {
		return 0
	}
	vols := make([]float64, window)
	for i, b := range bars[len(bars)-window:] {
		vols[i] = b.Volume
	}
	avg := stat.Mean(vols, nil)
	if avg <= 0 {
		return 0
	}
	return vols[window-1] / avg
}

// AverageVolume is the mean volume across all bars, 0 when empty.
func AverageVolume(bars []model.OHLCV) float64 {
	if len(bars) == 0 {
		return 0
	}
	vols := make([]float64, len(bars))
	for i, b := range bars {
		vols[i] = b.Volume
	}
	return stat.Mean(vols, nil)
}
