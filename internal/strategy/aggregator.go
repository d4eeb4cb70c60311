package strategy

import (
	"fmt"
	"math"

	"SignalDesk/internal/model"
)

// MinutesPerBullishFrame is the holding time credited to each bullish timeframe.
const MinutesPerBullishFrame = 5

// AvoidOrScalp is the suggestion when no timeframe is bullish.
const AvoidOrScalp = "Avoid or scalp only"

// WeightedScore pairs a timeframe score with its weight.
type WeightedScore struct {
	Timeframe string
	Score     model.TimeframeScore
	Weight    float64
}

// Aggregate combines per-timeframe scores into a confidence value in
// [-100,100]. Absent scores are excluded from both the weighted sum and the
// weight total, so missing timeframes do not dilute the result.
func Aggregate(scores []WeightedScore) model.ConfidenceResult {
	var weightedSum, totalWeight float64
	bullish := 0
	for _, ws := range scores {
		if !ws.Score.Valid {
			continue
		}
		weightedSum += float64(ws.Score.Value) * ws.Weight
		totalWeight += math.Abs(ws.Weight)
		if ws.Score.Value > 0 {
			bullish++
		}
	}

	var normalized float64
	if totalWeight > 0 {
		normalized = weightedSum / (2 * totalWeight) * 100
	}

	hold := bullish * MinutesPerBullishFrame
	return model.ConfidenceResult{
		NormalizedScore:      normalized,
		BullishFrameCount:    bullish,
		EstimatedHoldMinutes: hold,
		Suggestion:           holdSuggestion(bullish, hold),
	}
}

func holdSuggestion(bullish, minutes int) string {
	if bullish == 0 {
		return AvoidOrScalp
	}
	return fmt.Sprintf("Hold ~%d min (%d bars)", minutes, bullish)
}
