package strategy

import "SignalDesk/internal/model"

// RSI bands used by the timeframe score.
const (
	OversoldRSI   = 30.0
	OverboughtRSI = 70.0
)

// Score maps an indicator snapshot to a signed score in {-2..2}:
// +1 when RSI is oversold, -1 when overbought, +1 when MACD is above its
// signal line and -1 when below. Absent when any indicator is missing.
func Score(snap model.IndicatorSnapshot) model.TimeframeScore {
	if !snap.Complete() {
		return model.NoScore
	}
	score := 0
	switch {
	case snap.RSI < OversoldRSI:
		score++
	case snap.RSI > OverboughtRSI:
		score--
	}
	switch {
	case snap.MACD > snap.MACDSignal:
		score++
	case snap.MACD < snap.MACDSignal:
		score--
	}
	return model.ScoreOf(score)
}

// entrySetup reads an entry or exit setup off the fastest timeframe.
// Entry: RSI in (30,60), MACD above signal, RVOL >= 1.5.
// Exit: RSI > 70, MACD below signal, RVOL < 1.
func entrySetup(snap model.IndicatorSnapshot, rvol float64) model.EntrySetup {
	if !snap.Complete() {
		return model.EntryInsufficient
	}
	bullishMACD := snap.MACD > snap.MACDSignal
	bearishMACD := snap.MACD < snap.MACDSignal
	switch {
	case snap.RSI > 30 && snap.RSI < 60 && bullishMACD && rvol >= 1.5:
		return model.EntryStrongBuy
	case snap.RSI > 70 && bearishMACD && rvol < 1:
		return model.EntryPossibleExit
	default:
		return model.EntryNone
	}
}

// pressure is a coarse proxy for order-book pressure built from the same
// inputs as entrySetup, with looser RSI bands.
func pressure(snap model.IndicatorSnapshot, rvol float64) model.Pressure {
	if !snap.Complete() {
		return model.PressureWaiting
	}
	switch {
	case snap.RSI < 50 && snap.MACD > snap.MACDSignal && rvol >= 1.5:
		return model.PressureBuyers
	case snap.RSI > 60 && snap.MACD < snap.MACDSignal && rvol < 1:
		return model.PressureSellers
	default:
		return model.PressureNone
	}
}
