package report

import (
	"context"
	"testing"
	"time"

	"SignalDesk/internal/collector"
	"SignalDesk/internal/model"
	"SignalDesk/internal/strategy"
)

func bars(closes []float64, step time.Duration) []model.OHLCV {
	start := time.Date(2025, 3, 3, 14, 30, 0, 0, time.UTC)
	out := make([]model.OHLCV, len(closes))
	for i, c := range closes {
		out[i] = model.OHLCV{Time: start.Add(time.Duration(i) * step), Open: c, High: c, Low: c, Close: c, Volume: 1000}
	}
	return out
}

func ramp(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

func TestRun_AllEmptyFramesIsNoData(t *testing.T) {
	m := &collector.MockFetcher{Bars: map[string][]model.OHLCV{"1m": nil, "5m": nil, "1d": nil}}
	r := NewRunner(collector.NewCollector(m, time.Second, nil), Options{}, nil, nil)

	var progress []string
	r.OnProgress = func(done, total int, sym string) { progress = append(progress, sym) }

	rep, err := r.Run(context.Background(), []string{"AAA", "BBB"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rep.RunID == "" || len(rep.Tickers) != 2 || len(progress) != 2 {
		t.Fatalf("unexpected report %+v progress %v", rep, progress)
	}
	for _, tr := range rep.Tickers {
		if tr.Confidence.NormalizedScore != 0 || tr.Confidence.Suggestion != strategy.AvoidOrScalp {
			t.Errorf("%s: expected no-data confidence, got %+v", tr.Symbol, tr.Confidence)
		}
		for _, f := range tr.Frames {
			if f.Score.Valid {
				t.Errorf("%s/%s: expected absent score", tr.Symbol, f.Timeframe.Name)
			}
		}
	}
}

func TestRun_AttachesHeadlinesWithSentiment(t *testing.T) {
	m := &collector.MockFetcher{
		Price:     20,
		Headlines: []model.Headline{{Title: "Shares surge on record profit"}, {Title: "Annual meeting set"}},
	}
	r := NewRunner(collector.NewCollector(m, time.Second, nil), Options{News: true}, nil, nil)
	rep, err := r.Run(context.Background(), []string{"AAA"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	hs := rep.Tickers[0].Headlines
	if len(hs) != 2 || hs[0].Sentiment != model.SentimentBullish || hs[1].Sentiment != model.SentimentNeutral {
		t.Errorf("unexpected headlines %+v", hs)
	}
}

func TestRun_CancelledBetweenTickers(t *testing.T) {
	m := &collector.MockFetcher{Price: 20}
	r := NewRunner(collector.NewCollector(m, time.Second, nil), Options{Delay: time.Hour}, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	r.OnProgress = func(done, total int, sym string) { cancel() }

	rep, err := r.Run(ctx, []string{"AAA", "BBB", "CCC"})
	if err == nil {
		t.Fatal("expected cancellation error")
	}
	if rep == nil || len(rep.Tickers) != 1 {
		t.Fatalf("expected the completed ticker to be kept, got %+v", rep)
	}
}

func TestWatchlist_UsesDailyFrame(t *testing.T) {
	falling := bars(ramp(120, 200, -1), 24*time.Hour)
	m := &collector.MockFetcher{Bars: map[string][]model.OHLCV{"1d": falling}}
	r := NewRunner(collector.NewCollector(m, time.Second, nil), Options{}, nil, nil)

	rep, err := r.Watchlist(context.Background(), []string{"AAA", "BBB"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rep.Tickers) != 2 {
		t.Fatalf("expected 2 tickers, got %d", len(rep.Tickers))
	}
	for _, tr := range rep.Tickers {
		if len(tr.Frames) != 1 || tr.Frames[0].Timeframe.Name != "1d" {
			t.Errorf("watchlist should use the single daily frame, got %+v", tr.Frames)
		}
		if !tr.Frames[0].Score.Valid {
			t.Errorf("%s: 120 daily bars should score", tr.Symbol)
		}
	}
}
