package model

// IndicatorSnapshot holds the indicator values of the most recent bar.
// A value is only meaningful when its Has flag is set.
type IndicatorSnapshot struct {
	RSI        float64 `json:"rsi"`
	MACD       float64 `json:"macd"`
	MACDSignal float64 `json:"macd_signal"`
	HasRSI     bool    `json:"has_rsi"`
	HasMACD    bool    `json:"has_macd"`
}

// Complete reports whether both RSI and MACD/Signal are available.
func (s IndicatorSnapshot) Complete() bool {
	return s.HasRSI && s.HasMACD
}
