package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"SignalDesk/internal/model"
)

// HelpText lists the bot commands.
const HelpText = "Available commands:\n" +
	"• /report SYMBOL... multi-timeframe report\n" +
	"• /gappers top gappers under the price cap\n" +
	"• /signals SYMBOL... daily RSI/MACD watchlist\n" +
	"• /help this message"

// FormatDigest formats a report pass into a Telegram HTML message.
func FormatDigest(rep *model.Report) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📊 <b>SignalDesk</b> | %s\n", rep.StartedAt.Format("2006-01-02 15:04")))

	for _, tr := range rep.Tickers {
		c := tr.Confidence
		b.WriteString(fmt.Sprintf("\n<b>%s</b>  %+.1f (%d/100)\n", html.EscapeString(tr.Symbol), c.NormalizedScore, Meter(c.NormalizedScore)))
		for _, f := range tr.Frames {
			b.WriteString(fmt.Sprintf("  %s: %s", f.Timeframe.Name, f.Score.Label()))
			if f.Snapshot.HasRSI {
				b.WriteString(fmt.Sprintf(" (RSI %.0f)", f.Snapshot.RSI))
			}
			b.WriteString("\n")
		}
		b.WriteString(fmt.Sprintf("  %s\n", c.Suggestion))
		b.WriteString(fmt.Sprintf("  Entry: %s | L2: %s\n", EntryText(tr.Entry), PressureText(tr.Pressure)))
		for _, h := range tr.Headlines {
			b.WriteString(fmt.Sprintf("  %s <a href=\"%s\">%s</a>\n", sentimentIcon(h.Sentiment), html.EscapeString(h.Link), html.EscapeString(h.Title)))
		}
	}
	return b.String()
}

// FormatGappers formats the first limit rows of a scan.
func FormatGappers(rows []model.Gapper, limit int) string {
	if len(rows) == 0 {
		return "⚠️ No gappers returned. The screener may be blocked or rate-limited."
	}
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🚀 <b>Top gappers</b> | %s\n\n", time.Now().Format("15:04")))
	for _, g := range rows {
		b.WriteString(fmt.Sprintf("<b>%s</b> $%.2f  %+.2f%%  vol %s  rvol %.2f  float %s  short %s\n",
			html.EscapeString(g.Symbol), g.Price, g.ChangePercent, FormatVolume(g.Volume), g.RVOL,
			html.EscapeString(g.Float), html.EscapeString(g.ShortFloat)))
	}
	return b.String()
}

func sentimentIcon(s model.Sentiment) string {
	switch s {
	case model.SentimentBullish:
		return "🟢"
	case model.SentimentBearish:
		return "🔴"
	default:
		return "⚪"
	}
}
