package calculator

import (
	"errors"

	"SignalDesk/internal/model"
)

// MACD parameters.
const (
	MACDFast   = 12
	MACDSlow   = 26
	MACDSignal = 9
)

// ErrInsufficientData is returned when a series is shorter than an indicator's warm-up.
var ErrInsufficientData = errors.New("not enough data for indicator")

// MACDSeries returns the MACD line (EMA fast - EMA slow) and its signal line
// (EMA of the MACD line) for every close.
func MACDSeries(closes []float64, fast, slow, signal int) (macd, sig []float64) {
	if len(closes) == 0 {
		return nil, nil
	}
	emaFast := EMASeries(closes, fast)
	emaSlow := EMASeries(closes, slow)
	macd = make([]float64, len(closes))
	for i := range closes {
		macd[i] = emaFast[i] - emaSlow[i]
	}
	return macd, EMASeries(macd, signal)
}

// CalculateMACD returns the MACD and signal values of the most recent bar.
// Requires at least slow+signal bars.
func CalculateMACD(bars []model.OHLCV, fast, slow, signal int) (macd, sig float64, err error) {
	if fast <= 0 || slow <= 0 || signal <= 0 {
		return 0, 0, errors.New("periods must be positive")
	}
	if len(bars) < slow+signal {
		return 0, 0, ErrInsufficientData
	}
	m, s := MACDSeries(extractCloses(bars), fast, slow, signal)
	return m[len(m)-1], s[len(s)-1], nil
}

// Snapshot computes RSI(14) and MACD(12,26,9) for the tail of a series.
// Indicators whose warm-up is not satisfied are left absent.
func Snapshot(series model.PriceSeries) model.IndicatorSnapshot {
	var snap model.IndicatorSnapshot
	if rsi, err := CalculateRSI(series.Bars, RSIPeriod); err == nil {
		snap.RSI = rsi
		snap.HasRSI = true
	}
	if m, s, err := CalculateMACD(series.Bars, MACDFast, MACDSlow, MACDSignal); err == nil {
		snap.MACD = m
		snap.MACDSignal = s
		snap.HasMACD = true
	}
	return snap
}
