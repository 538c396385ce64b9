package notifier

import (
	"fmt"
	"strings"
	"time"

	"BTSTRadar/internal/model"
)

// FormatDigest renders the day's BTST recommendations as a Telegram
// message, strongest first.
func FormatDigest(date time.Time, recs []*model.Recommendation) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>BTST Radar</b> | %s\n\n", date.Format("2006-01-02")))
	if len(recs) == 0 {
		b.WriteString("No candidates cleared the confidence threshold today.")
		return b.String()
	}

	for _, rec := range recs {
		b.WriteString(fmt.Sprintf("%s <b>%s</b> — %s (confidence %.1f)\n",
			actionEmoji(rec.Action), rec.Symbol, rec.Action, rec.Confidence))
		if rec.EntryPrice.Valid {
			b.WriteString(fmt.Sprintf("   Entry %s | Target %s | Stop %s\n",
				rec.EntryPrice.Decimal, rec.TargetPrice.Decimal, rec.StopLoss.Decimal))
		}
		if rec.RiskRewardT1.Valid {
			b.WriteString(fmt.Sprintf("   R:R T1 %s", rec.RiskRewardT1.Decimal))
			if rec.RiskRewardT2.Valid {
				b.WriteString(fmt.Sprintf(" / T2 %s", rec.RiskRewardT2.Decimal))
			}
			b.WriteString("\n")
		}
		b.WriteString(fmt.Sprintf("   Liquidity: %s | Gap: %s\n\n", rec.LiquidityRisk.Level, rec.GapRisk.Level))
	}
	return b.String()
}

// FormatBuySignal renders a single intraday buy signal.
func FormatBuySignal(analysis *model.AfternoonAnalysis) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🟢 <b>Buy signal</b> %s | %s\n\n", analysis.Symbol, analysis.Date.Format("2006-01-02")))
	b.WriteString(fmt.Sprintf("Weak-hands score: %.1f\n", analysis.WeakHandsScore))
	b.WriteString(fmt.Sprintf("Retail intensity: %.1f\n", analysis.RetailIntensity))
	b.WriteString(fmt.Sprintf("Entry %s | Target %s | Stop %s\n", analysis.EntryPrice, analysis.TargetPrice, analysis.StopLoss))
	b.WriteString(fmt.Sprintf("R:R %s | Position size %s%%\n", analysis.RiskReward, analysis.PositionSizePercent))
	return b.String()
}

// FormatWatchlist renders the day-1 candidates for the next session.
func FormatWatchlist(date time.Time, symbols []string) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("👀 <b>Watchlist</b> | %s\n\n", date.Format("2006-01-02")))
	if len(symbols) == 0 {
		b.WriteString("No day-1 candidates qualified.")
		return b.String()
	}
	for _, symbol := range symbols {
		b.WriteString(fmt.Sprintf("• %s\n", symbol))
	}
	return b.String()
}

func actionEmoji(action model.Action) string {
	switch action {
	case model.ActionBuy:
		return "🟢"
	case model.ActionHold:
		return "🟡"
	default:
		return "🔴"
	}
}
