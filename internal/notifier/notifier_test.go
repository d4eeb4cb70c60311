package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"SignalDesk/internal/model"
)

func TestMeter(t *testing.T) {
	tests := map[float64]int{-100: 0, -150: 0, 0: 50, 20: 60, 100: 100, 180: 100}
	for in, want := range tests {
		if got := Meter(in); got != want {
			t.Errorf("Meter(%v) = %d, want %d", in, got, want)
		}
	}
	if bar := MeterBar(0); bar != "["+strings.Repeat("#", 10)+strings.Repeat("-", 10)+"]" {
		t.Errorf("unexpected bar %q", bar)
	}
}

func TestFormatVolume(t *testing.T) {
	tests := map[int64]string{950: "950", 3400: "3.4K", 1_250_000: "1.2M", 12_000_000: "12.0M"}
	for in, want := range tests {
		if got := FormatVolume(in); got != want {
			t.Errorf("FormatVolume(%d) = %q, want %q", in, got, want)
		}
	}
}

func sampleTicker() model.TickerReport {
	return model.TickerReport{
		Symbol: "AAPL",
		Frames: []model.FrameSignal{
			{
				Timeframe: model.TimeframeConfig{Name: "1m", Weight: 0.35},
				Bars:      390,
				Snapshot:  model.IndicatorSnapshot{RSI: 45.2, MACD: 0.12, MACDSignal: 0.08, HasRSI: true, HasMACD: true},
				Score:     model.ScoreOf(1),
				RVOL:      1.8,
			},
			{Timeframe: model.TimeframeConfig{Name: "1d", Weight: 0.15}, Score: model.NoScore},
		},
		Confidence: model.ConfidenceResult{NormalizedScore: 50, BullishFrameCount: 1, EstimatedHoldMinutes: 5, Suggestion: "Hold ~5 min (1 bars)"},
		Entry:      model.EntryStrongBuy,
		Pressure:   model.PressureBuyers,
		Headlines:  []model.Headline{{Title: "Apple <rallies>", Link: "https://x/1", Sentiment: model.SentimentBullish}},
	}
}

func TestWriteTicker(t *testing.T) {
	tr := sampleTicker()
	var buf bytes.Buffer
	if err := WriteTicker(&buf, &tr); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"=== AAPL ===", "BUY", "No Data", "45.20", "75/100", "Strong buy setup", "Buyers stepping in", "[Bullish] Apple <rallies>"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestGappersTable(t *testing.T) {
	rows := []model.Gapper{{
		Quote: model.Quote{Symbol: "ABCD", Name: "Abcd Inc", Price: 4.25, ChangePercent: 38.5, Volume: 2_300_000},
		RVOL:  3.1, Float: model.Placeholder, ShortFloat: "12%",
	}}
	var buf bytes.Buffer
	if err := GappersTable(&buf, rows); err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, want := range []string{"ABCD", "38.50", "2.3M", "3.10", "12%"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("table missing %q:\n%s", want, buf.String())
		}
	}
}

func TestFormatDigest_EscapesHTML(t *testing.T) {
	rep := &model.Report{StartedAt: time.Date(2025, 3, 3, 9, 30, 0, 0, time.UTC), Tickers: []model.TickerReport{sampleTicker()}}
	msg := FormatDigest(rep)
	if !strings.Contains(msg, "Apple &lt;rallies&gt;") {
		t.Errorf("headline should be escaped:\n%s", msg)
	}
	if !strings.Contains(msg, "1m: BUY (RSI 45)") || !strings.Contains(msg, "1d: No Data") {
		t.Errorf("frame lines missing:\n%s", msg)
	}
}

func TestFormatGappers_Empty(t *testing.T) {
	if msg := FormatGappers(nil, 5); !strings.Contains(msg, "No gappers") {
		t.Errorf("unexpected message %q", msg)
	}
}

func TestTelegram_SendAndPoll(t *testing.T) {
	var mu sync.Mutex
	var sent []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			var p map[string]any
			_ = json.NewDecoder(r.Body).Decode(&p)
			mu.Lock()
			sent = append(sent, p["text"].(string))
			mu.Unlock()
			w.Write([]byte(`{"ok":true}`))
		case strings.HasSuffix(r.URL.Path, "/getUpdates"):
			w.Write([]byte(`{"ok":true,"result":[` +
				`{"update_id":7,"message":{"text":" /help ","chat":{"id":42}}},` +
				`{"update_id":8,"message":{"text":"/report GME","chat":{"id":99}}},` +
				`{"update_id":9}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	tn := NewTelegramNotifier("TOKEN", "42", "", nil)
	tn.APIBase = srv.URL
	if !tn.Enabled() {
		t.Fatal("notifier with token and chat should be enabled")
	}

	ctx := context.Background()
	if err := tn.SendWithRetry(ctx, "hello", 0); err != nil {
		t.Fatalf("send: %v", err)
	}

	var got []string
	next, err := tn.PollOnce(ctx, srv.Client(), 0, func(_ context.Context, cmd string) string {
		got = append(got, cmd)
		return "reply to " + cmd
	})
	if err != nil {
		t.Fatalf("poll: %v", err)
	}
	if next != 10 {
		t.Errorf("expected next offset 10, got %d", next)
	}
	if len(got) != 1 || got[0] != "/help" {
		t.Errorf("expected only the trimmed /help from the configured chat, got %v", got)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(sent) != 2 || sent[1] != "reply to /help" {
		t.Errorf("unexpected sent messages %v", sent)
	}
}

func TestTelegram_SendErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"ok":false}`, http.StatusUnauthorized)
	}))
	defer srv.Close()
	tn := NewTelegramNotifier("bad", "1", "", nil)
	tn.APIBase = srv.URL
	if err := tn.SendWithRetry(context.Background(), "x", 0); err == nil {
		t.Error("expected error for 401")
	}
}

func TestTelegram_OKFalseIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok":false,"description":"Bad Request: chat not found"}`))
	}))
	defer srv.Close()
	tn := NewTelegramNotifier("T", "1", "", nil)
	tn.APIBase = srv.URL
	err := tn.Send(context.Background(), "x")
	if err == nil || !strings.Contains(err.Error(), "chat not found") {
		t.Errorf("expected API description in error, got %v", err)
	}
}

func TestSplitMessage(t *testing.T) {
	if parts := SplitMessage("short", 10); len(parts) != 1 || parts[0] != "short" {
		t.Errorf("short text should stay whole, got %q", parts)
	}
	parts := SplitMessage("aaaa\nbbbb\ncccc\n", 10)
	if len(parts) != 2 || parts[0] != "aaaa\nbbbb" || parts[1] != "cccc" {
		t.Errorf("expected split on line boundaries, got %q", parts)
	}
	parts = SplitMessage(strings.Repeat("x", 25), 10)
	if len(parts) != 3 || len(parts[0]) != 10 || len(parts[2]) != 5 {
		t.Errorf("long line should be hard-cut, got %q", parts)
	}
}

func TestSplitMessage_KeepsRunesWhole(t *testing.T) {
	text := "TSLA " + strings.Repeat("📈", 6) + " Müller ÅÄÖ"
	parts := SplitMessage(text, 10)
	if strings.Join(parts, "") != text {
		t.Fatalf("parts should reassemble the text, got %q", parts)
	}
	for _, p := range parts {
		if len(p) > 10 {
			t.Errorf("part %q exceeds the limit", p)
		}
		if !utf8.ValidString(p) {
			t.Errorf("part %q splits a rune", p)
		}
	}

	// A limit smaller than one rune still makes progress.
	parts = SplitMessage("📈📉", 2)
	if len(parts) != 2 || parts[0] != "📈" || parts[1] != "📉" {
		t.Errorf("expected one rune per part, got %q", parts)
	}
}
