package notifier

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"SignalDesk/internal/model"
)

// FramesTable lists the per-timeframe signals of a ticker.
func FramesTable(w io.Writer, tr *model.TickerReport) error {
	table := tablewriter.NewWriter(w)
	table.Header("Timeframe", "Bars", "RSI", "MACD", "Signal", "RVOL", "Score", "Signal Label")
	for _, f := range tr.Frames {
		s := f.Snapshot
		if err := table.Append([]string{
			f.Timeframe.Name,
			fmt.Sprintf("%d", f.Bars),
			indicator(s.RSI, s.HasRSI),
			indicator(s.MACD, s.HasMACD),
			indicator(s.MACDSignal, s.HasMACD),
			fmt.Sprintf("%.2f", f.RVOL),
			f.Score.String(),
			f.Score.Label(),
		}); err != nil {
			return err
		}
	}
	return table.Render()
}

// GappersTable lists a gappers scan.
func GappersTable(w io.Writer, rows []model.Gapper) error {
	table := tablewriter.NewWriter(w)
	table.Header("Symbol", "Name", "Price", "Gap %", "Volume", "RVOL", "Float", "Short Float")
	for _, g := range rows {
		if err := table.Append([]string{
			g.Symbol,
			g.Name,
			fmt.Sprintf("%.2f", g.Price),
			fmt.Sprintf("%.2f", g.ChangePercent),
			FormatVolume(g.Volume),
			fmt.Sprintf("%.2f", g.RVOL),
			g.Float,
			g.ShortFloat,
		}); err != nil {
			return err
		}
	}
	return table.Render()
}

// WatchlistTable lists the daily RSI/MACD read of each ticker in report order.
func WatchlistTable(w io.Writer, rep *model.Report) error {
	table := tablewriter.NewWriter(w)
	table.Header("Symbol", "RSI", "MACD", "Signal", "Score", "Signal Label")
	for _, tr := range rep.Tickers {
		row := []string{tr.Symbol, model.Placeholder, model.Placeholder, model.Placeholder, model.NoScore.String(), model.NoScore.Label()}
		if len(tr.Frames) > 0 {
			f := tr.Frames[0]
			s := f.Snapshot
			row = []string{
				tr.Symbol,
				indicator(s.RSI, s.HasRSI),
				indicator(s.MACD, s.HasMACD),
				indicator(s.MACDSignal, s.HasMACD),
				f.Score.String(),
				f.Score.Label(),
			}
		}
		if err := table.Append(row); err != nil {
			return err
		}
	}
	return table.Render()
}
