package sentiment

import (
	"testing"

	"SignalDesk/internal/model"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		text string
		want model.Sentiment
	}{
		{"Shares surge after record earnings beat", model.SentimentBullish},
		{"Shares hit all-time high after blowout quarter", model.SentimentBullish},
		{"Strong growth lifts profits", model.SentimentBullish},
		{"Stock plunges on fraud probe", model.SentimentBearish},
		{"Quarter was not strong", model.SentimentBearish},
		{"Analysts see very weak demand", model.SentimentBearish},
		{"Company schedules annual shareholder meeting", model.SentimentNeutral},
		{"Company to issue new shares", model.SentimentNeutral},
	}
	for _, tt := range tests {
		if got := Classify(tt.text); got != tt.want {
			t.Errorf("Classify(%q) = %s (polarity %.3f), want %s", tt.text, got, Polarity(tt.text), tt.want)
		}
	}
}

func TestPolarity_Bounds(t *testing.T) {
	if p := Polarity(""); p != 0 {
		t.Errorf("empty text should be neutral, got %v", p)
	}
	for _, text := range []string{
		"Best quarter ever: record profits, strong growth, great outlook!!!",
		"Fraud, bankruptcy and terrible losses crash the stock!!!",
	} {
		if p := Polarity(text); p < -1 || p > 1 {
			t.Errorf("Polarity(%q) = %v, outside [-1, 1]", text, p)
		}
	}
}

func TestAnnotate(t *testing.T) {
	hs := []model.Headline{{Title: "Biotech soars on approval"}, {Title: "Weekly market recap"}}
	Annotate(hs)
	if hs[0].Sentiment != model.SentimentBullish || hs[1].Sentiment != model.SentimentNeutral {
		t.Errorf("unexpected sentiments %+v", hs)
	}
}
