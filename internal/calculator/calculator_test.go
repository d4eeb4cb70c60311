package calculator

import (
	"errors"
	"math"
	"testing"
	"time"

	"SignalDesk/internal/model"
)

func barsFromCloses(closes []float64) []model.OHLCV {
	start := time.Date(2025, 3, 3, 14, 30, 0, 0, time.UTC)
	bars := make([]model.OHLCV, len(closes))
	for i, c := range closes {
		bars[i] = model.OHLCV{
			Time:   start.Add(time.Duration(i) * time.Minute),
			Open:   c,
			High:   c + 0.5,
			Low:    c - 0.5,
			Close:  c,
			Volume: 1000,
		}
	}
	return bars
}

func ramp(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestCalculateRSI_InsufficientData(t *testing.T) {
	for _, n := range []int{0, 1, 14} {
		_, err := CalculateRSI(barsFromCloses(ramp(n, 100, 1)), RSIPeriod)
		if !errors.Is(err, ErrInsufficientData) {
			t.Errorf("n=%d: expected ErrInsufficientData, got %v", n, err)
		}
	}
	if _, err := CalculateRSI(barsFromCloses(ramp(15, 100, 1)), RSIPeriod); err != nil {
		t.Errorf("15 bars should be enough for RSI(14), got %v", err)
	}
}

func TestCalculateRSI_SaturatesWithoutLosses(t *testing.T) {
	rsi, err := CalculateRSI(barsFromCloses(ramp(40, 10, 0.25)), RSIPeriod)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rsi != 100 {
		t.Errorf("expected RSI=100 for a strictly rising series, got %.4f", rsi)
	}

	rsi, err = CalculateRSI(barsFromCloses(ramp(40, 100, -0.5)), RSIPeriod)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rsi != 0 {
		t.Errorf("expected RSI=0 for a strictly falling series, got %.4f", rsi)
	}
}

func TestCalculateRSI_WilderSmoothing(t *testing.T) {
	// 14 alternating +1/-1 changes give avgGain == avgLoss == 0.5.
	closes := []float64{100}
	for i := 0; i < 14; i++ {
		if i%2 == 0 {
			closes = append(closes, closes[len(closes)-1]+1)
		} else {
			closes = append(closes, closes[len(closes)-1]-1)
		}
	}
	rsi, err := CalculateRSI(barsFromCloses(closes), RSIPeriod)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(rsi, 50, 1e-9) {
		t.Errorf("expected RSI=50, got %.6f", rsi)
	}

	// One more +2 change: avgGain = 8.5/14, avgLoss = 6.5/14 -> RSI = 100 - 1300/30.
	closes = append(closes, closes[len(closes)-1]+2)
	rsi, err = CalculateRSI(barsFromCloses(closes), RSIPeriod)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := 100 - 1300.0/30.0
	if !almostEqual(rsi, want, 1e-9) {
		t.Errorf("expected RSI=%.6f, got %.6f", want, rsi)
	}
}

func TestRSISeries_WarmupIsNaN(t *testing.T) {
	series := RSISeries(ramp(20, 1, 1), RSIPeriod)
	if len(series) != 20 {
		t.Fatalf("expected 20 values, got %d", len(series))
	}
	for i := 0; i < RSIPeriod; i++ {
		if !math.IsNaN(series[i]) {
			t.Errorf("index %d: expected NaN during warm-up, got %.4f", i, series[i])
		}
	}
	for i := RSIPeriod; i < len(series); i++ {
		if math.IsNaN(series[i]) {
			t.Errorf("index %d: expected a value after warm-up", i)
		}
	}
}

func TestEMASeries_SeededWithFirstValue(t *testing.T) {
	got := EMASeries([]float64{1, 2, 3}, 3)
	want := []float64{1, 1.5, 2.25}
	for i := range want {
		if !almostEqual(got[i], want[i], 1e-12) {
			t.Errorf("index %d: expected %.4f, got %.4f", i, want[i], got[i])
		}
	}
	if EMASeries(nil, 3) != nil {
		t.Error("expected nil EMA for empty input")
	}
}

func TestCalculateMACD_Warmup(t *testing.T) {
	_, _, err := CalculateMACD(barsFromCloses(ramp(34, 10, 1)), MACDFast, MACDSlow, MACDSignal)
	if !errors.Is(err, ErrInsufficientData) {
		t.Errorf("34 bars: expected ErrInsufficientData, got %v", err)
	}
	if _, _, err := CalculateMACD(barsFromCloses(ramp(35, 10, 1)), MACDFast, MACDSlow, MACDSignal); err != nil {
		t.Errorf("35 bars: unexpected error %v", err)
	}
}

func TestCalculateMACD_FlatAndRising(t *testing.T) {
	flat := make([]float64, 60)
	for i := range flat {
		flat[i] = 42
	}
	m, s, err := CalculateMACD(barsFromCloses(flat), MACDFast, MACDSlow, MACDSignal)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(m, 0, 1e-9) || !almostEqual(s, 0, 1e-9) {
		t.Errorf("flat series: expected MACD=Signal=0, got %.6f/%.6f", m, s)
	}

	m, s, err = CalculateMACD(barsFromCloses(ramp(60, 10, 0.5)), MACDFast, MACDSlow, MACDSignal)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m <= 0 {
		t.Errorf("rising series: expected positive MACD, got %.6f", m)
	}
	if m <= s {
		t.Errorf("rising series: expected MACD above signal, got %.6f <= %.6f", m, s)
	}
}

func TestSnapshot_PartialAvailability(t *testing.T) {
	short := model.PriceSeries{Bars: barsFromCloses(ramp(10, 1, 1))}
	if snap := Snapshot(short); snap.HasRSI || snap.HasMACD {
		t.Errorf("10 bars: expected no indicators, got %+v", snap)
	}

	mid := model.PriceSeries{Bars: barsFromCloses(ramp(20, 1, 1))}
	snap := Snapshot(mid)
	if !snap.HasRSI || snap.HasMACD {
		t.Errorf("20 bars: expected RSI only, got %+v", snap)
	}
	if snap.Complete() {
		t.Error("20 bars: snapshot should not be complete")
	}

	long := model.PriceSeries{Bars: barsFromCloses(ramp(50, 1, 1))}
	if snap := Snapshot(long); !snap.Complete() {
		t.Errorf("50 bars: expected complete snapshot, got %+v", snap)
	}
}

func TestResample_TenMinuteBuckets(t *testing.T) {
	base := time.Date(2025, 3, 3, 14, 0, 0, 0, time.UTC)
	bars := []model.OHLCV{
		{Time: base, Open: 10, High: 11, Low: 9.5, Close: 10.5, Volume: 100},
		{Time: base.Add(5 * time.Minute), Open: 10.5, High: 12, Low: 10, Close: 11.5, Volume: 200},
		{Time: base.Add(10 * time.Minute), Open: 11.5, High: 11.8, Low: 11, Close: 11.2, Volume: 300},
		{Time: base.Add(15 * time.Minute), Open: 11.2, High: 11.4, Low: 10.1, Close: 10.3, Volume: 400},
	}
	got := Resample(bars, 10*time.Minute)
	if len(got) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(got))
	}
	want := []model.OHLCV{
		{Time: base, Open: 10, High: 12, Low: 9.5, Close: 11.5, Volume: 300},
		{Time: base.Add(10 * time.Minute), Open: 11.5, High: 11.8, Low: 10.1, Close: 10.3, Volume: 700},
	}
	for i := range want {
		if !got[i].Time.Equal(want[i].Time) || got[i].Open != want[i].Open || got[i].High != want[i].High ||
			got[i].Low != want[i].Low || got[i].Close != want[i].Close || got[i].Volume != want[i].Volume {
			t.Errorf("bucket %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
}

func TestResample_DropsEmptyBuckets(t *testing.T) {
	base := time.Date(2025, 3, 3, 14, 0, 0, 0, time.UTC)
	bars := []model.OHLCV{
		{Time: base, Open: 1, High: 1, Low: 1, Close: 1, Volume: 1},
		{Time: base.Add(25 * time.Minute), Open: 2, High: 2, Low: 2, Close: 2, Volume: 2},
	}
	got := Resample(bars, 10*time.Minute)
	if len(got) != 2 {
		t.Fatalf("expected 2 buckets (gap dropped), got %d", len(got))
	}
	if !got[1].Time.Equal(base.Add(20 * time.Minute)) {
		t.Errorf("expected second bucket at +20m, got %s", got[1].Time)
	}
	if Resample(nil, 10*time.Minute) != nil {
		t.Error("expected nil for empty input")
	}
}

func TestRelativeVolume(t *testing.T) {
	bars := barsFromCloses(ramp(12, 10, 0.1))
	if rv := RelativeVolume(bars, RVOLWindow); !almostEqual(rv, 1, 1e-12) {
		t.Errorf("constant volume: expected RVOL=1, got %.4f", rv)
	}

	bars[len(bars)-1].Volume = 5500 // window mean = (9*1000+5500)/10 = 1450
	if rv := RelativeVolume(bars, RVOLWindow); !almostEqual(rv, 5500.0/1450.0, 1e-12) {
		t.Errorf("expected RVOL=%.4f, got %.4f", 5500.0/1450.0, rv)
	}

	if rv := RelativeVolume(bars[:9], RVOLWindow); rv != 0 {
		t.Errorf("fewer than %d bars: expected 0, got %.4f", RVOLWindow, rv)
	}
}

func TestCalculateSMA(t *testing.T) {
	sma, err := CalculateSMA([]float64{1, 2, 3, 4, 5}, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sma != 4 {
		t.Errorf("expected SMA=4, got %.4f", sma)
	}
	if _, err := CalculateSMA([]float64{1}, 3); err == nil {
		t.Error("expected error for short input")
	}
}
