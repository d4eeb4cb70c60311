// Package sentiment scores news headlines with VADER, tuned for market news.
package sentiment

import (
	"sync"

	"github.com/jonreiter/govader"

	"SignalDesk/internal/model"
)

// Threshold separates Bullish/Bearish from Neutral polarity.
const Threshold = 0.15

// financeTerms extends the VADER lexicon (valence in [-4, 4]) with market
// vocabulary it lacks.
var financeTerms = map[string]float64{
	"surge": 2.5, "surges": 2.5, "soar": 2.5, "soars": 2.5, "jump": 1.5, "jumps": 1.5,
	"rally": 2.0, "rallies": 2.0, "beat": 1.8, "beats": 1.8, "record": 1.2, "blowout": 2.0,
	"rise": 1.2, "rises": 1.2, "upgrade": 2.0, "upgraded": 2.0, "outperform": 1.8,
	"bullish": 2.5, "breakout": 1.8,
	"plunge": -2.5, "plunges": -2.5, "tumble": -2.2, "tumbles": -2.2, "slump": -2.0,
	"slumps": -2.0, "sink": -2.0, "sinks": -2.0, "drop": -1.5, "drops": -1.5, "fall": -1.5,
	"falls": -1.5, "downgrade": -2.0, "downgraded": -2.0, "bankruptcy": -3.0,
	"bearish": -2.5, "layoffs": -1.8, "recall": -1.5, "probe": -1.5, "dilution": -1.8,
}

// neutralTerms carry sentiment in everyday text but not in market news.
var neutralTerms = []string{"share", "shares"}

var analyzer = sync.OnceValue(func() *govader.SentimentIntensityAnalyzer {
	sia := govader.NewSentimentIntensityAnalyzer()
	for w, v := range financeTerms {
		sia.Lexicon[w] = v
	}
	for _, w := range neutralTerms {
		delete(sia.Lexicon, w)
	}
	return sia
})

// Polarity returns the VADER compound score of text in [-1, 1].
func Polarity(text string) float64 {
	return analyzer().PolarityScores(text).Compound
}

// Classify maps text to Bullish, Bearish or Neutral.
func Classify(text string) model.Sentiment {
	p := Polarity(text)
	switch {
	case p > Threshold:
		return model.SentimentBullish
	case p < -Threshold:
		return model.SentimentBearish
	default:
		return model.SentimentNeutral
	}
}

// Annotate sets the sentiment of every headline in place.
func Annotate(headlines []model.Headline) {
	for i := range headlines {
		headlines[i].Sentiment = Classify(headlines[i].Title)
	}
}
