package strategy

import (
	"math"
	"sort"
	"time"

	"SignalDesk/internal/calculator"
	"SignalDesk/internal/model"
)

// EvaluateFrame computes the indicator snapshot, score, RVOL and chart
// points of one timeframe. A frame with a load error or no bars scores absent.
func EvaluateFrame(fd model.FrameData) model.FrameSignal {
	sig := model.FrameSignal{
		Timeframe: fd.Config,
		Bars:      fd.Series.Len(),
		Score:     model.NoScore,
	}
	if fd.Err != nil {
		sig.Error = fd.Err.Error()
		return sig
	}
	if fd.Series.Empty() {
		return sig
	}

	sig.Snapshot = calculator.Snapshot(fd.Series)
	sig.Score = Score(sig.Snapshot)
	sig.RVOL = calculator.RelativeVolume(fd.Series.Bars, calculator.RVOLWindow)
	sig.Chart = chartPoints(fd.Series)
	return sig
}

// Evaluate runs every timeframe of a ticker through the scorer and the
// aggregator. The first frame drives the entry setup and pressure read.
func Evaluate(symbol string, frames []model.FrameData) *model.TickerReport {
	report := &model.TickerReport{
		Symbol:      symbol,
		Frames:      make([]model.FrameSignal, 0, len(frames)),
		Entry:       model.EntryInsufficient,
		Pressure:    model.PressureWaiting,
		GeneratedAt: time.Now(),
	}

	weighted := make([]WeightedScore, 0, len(frames))
	for _, fd := range frames {
		sig := EvaluateFrame(fd)
		report.Frames = append(report.Frames, sig)
		weighted = append(weighted, WeightedScore{
			Timeframe: fd.Config.Name,
			Score:     sig.Score,
			Weight:    fd.Config.Weight,
		})
	}
	report.Confidence = Aggregate(weighted)

	if len(report.Frames) > 0 {
		lead := report.Frames[0]
		report.Entry = entrySetup(lead.Snapshot, lead.RVOL)
		report.Pressure = pressure(lead.Snapshot, lead.RVOL)
	}
	return report
}

// RankByScore orders single-frame reports by the first frame's score,
// strongest first. Reports without a score sort last.
func RankByScore(reports []*model.TickerReport) {
	key := func(r *model.TickerReport) int {
		if len(r.Frames) == 0 || !r.Frames[0].Score.Valid {
			return math.MinInt
		}
		return r.Frames[0].Score.Value
	}
	sort.SliceStable(reports, func(i, j int) bool {
		return key(reports[i]) > key(reports[j])
	})
}

func chartPoints(series model.PriceSeries) []model.ChartPoint {
	rsi := calculator.RSISeries(series.Closes(), calculator.RSIPeriod)
	points := make([]model.ChartPoint, len(series.Bars))
	for i, b := range series.Bars {
		points[i] = model.ChartPoint{Time: b.Time, Close: b.Close}
		if !math.IsNaN(rsi[i]) {
			v := rsi[i]
			points[i].RSI = &v
		}
	}
	return points
}
