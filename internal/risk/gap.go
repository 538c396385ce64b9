package risk

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"BTSTRadar/internal/model"
)

const (
	gapHistory = 10
	// Overnight gaps smaller than this are noise.
	gapThresholdPct = 0.5
)

// GapRisk scores the chance of an adverse overnight gap from the last
// 10 sessions' gap behavior plus today's range, with surcharges when
// the session analysis shows an unresolved large gap or no absorption.
// Insufficient history is reported as MEDIUM.
func (e *Engine) GapRisk(ctx context.Context, symbol string, date time.Time, sess *SessionContext) model.GapRisk {
	current, err := e.recentBars(ctx, symbol, date, 1)
	if err != nil || len(current) == 0 {
		log.Printf("[ERROR] gap risk %s: no current bar: %v", symbol, err)
		return model.GapRisk{Level: model.RiskMedium, Factors: "Error in gap risk calculation"}
	}
	history, err := e.recentBars(ctx, symbol, date.AddDate(0, 0, -1), gapHistory)
	if err != nil {
		log.Printf("[ERROR] gap risk %s: %v", symbol, err)
		return model.GapRisk{Level: model.RiskMedium, Factors: "Error in gap risk calculation"}
	}
	if len(history) < 5 {
		return model.GapRisk{Level: model.RiskMedium, Factors: "Insufficient historical gaps"}
	}

	gapCount := 0
	totalGap := 0.0
	for i := 1; i < len(history); i++ {
		prevClose := history[i-1].Close
		if prevClose.IsZero() {
			continue
		}
		gap := history[i].Open.Sub(prevClose).DivRound(prevClose, 4).InexactFloat64() * 100
		if math.Abs(gap) > gapThresholdPct {
			gapCount++
			totalGap += math.Abs(gap)
		}
	}
	avgGap := 0.0
	if gapCount > 0 {
		avgGap = totalGap / float64(gapCount)
	}

	day := current[len(current)-1]
	rangePct := 0.0
	if !day.Close.IsZero() {
		rangePct = day.High.Sub(day.Low).DivRound(day.Close, 4).InexactFloat64() * 100
	}

	score := 0
	switch {
	case gapCount > 5:
		score += 3
	case gapCount > 3:
		score += 2
	case gapCount > 1:
		score += 1
	}
	switch {
	case avgGap > 3:
		score += 3
	case avgGap > 1.5:
		score += 2
	case avgGap > 0.5:
		score += 1
	}
	switch {
	case rangePct > 4:
		score += 2
	case rangePct > 2:
		score += 1
	}
	if sess != nil {
		if math.Abs(sess.GapPercent) > gapThresholdPct {
			score += 2
		}
		if !sess.ShowsAbsorption {
			score += 1
		}
	}

	level := model.RiskHigh
	switch {
	case score <= 3:
		level = model.RiskLow
	case score <= 6:
		level = model.RiskMedium
	}

	factors := fmt.Sprintf("Gap count: %d, avg size: %.2f%% Range: %.2f%%", gapCount, avgGap, rangePct)
	return model.GapRisk{Level: level, Factors: factors}
}
