// Package session implements the three-stage intraday weak-hands
// pipeline. Each stage consumes a fixed time window of intraday bars
// plus the prior stage's stored result, and the afternoon stage decides
// whether weak hands have been absorbed enough to justify an overnight
// buy.
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"BTSTRadar/internal/model"
	"BTSTRadar/internal/provider"
	"BTSTRadar/internal/store"
)

// ErrMissingData marks a symbol that has no bar for a required date.
// The symbol is skipped for the day, not failed.
var ErrMissingData = errors.New("missing data")

// Session window boundaries (exchange local time).
var (
	sessionOpen  = clock{9, 15}
	morningEnd   = clock{10, 0}
	midEnd       = clock{12, 0}
	afternoonEnd = clock{14, 0}
)

const (
	// MinAfternoonBars is the minimum intraday bar count before the
	// afternoon stage will score a symbol.
	MinAfternoonBars = 5
	// minExhaustionBars is the minimum bar count for the supply
	// exhaustion split-half comparison.
	minExhaustionBars = 10

	buySignalThreshold = 65
)

type clock struct {
	hour, min int
}

func (c clock) on(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), c.hour, c.min, 0, 0, date.Location())
}

// Analyzer runs the ordered morning, mid-session, and afternoon stages.
// Stages are invoked explicitly by the caller; the analyzer itself
// never transitions between them.
type Analyzer struct {
	provider provider.BarProvider
	sessions store.SessionStore
}

func NewAnalyzer(p provider.BarProvider, s store.SessionStore) *Analyzer {
	return &Analyzer{provider: p, sessions: s}
}

func (a *Analyzer) windowBars(ctx context.Context, symbol string, date time.Time, from, to clock) ([]model.Bar, error) {
	return a.provider.IntradayBars(ctx, symbol, from.on(date), to.on(date))
}

// prevDayBar returns the last daily bar strictly before date.
func (a *Analyzer) prevDayBar(ctx context.Context, symbol string, date time.Time) (model.Bar, error) {
	from := date.AddDate(0, 0, -7)
	to := date.AddDate(0, 0, -1)
	bars, err := a.provider.DailyBars(ctx, symbol, from, to)
	if err != nil {
		return model.Bar{}, fmt.Errorf("fetch previous daily bar: %w", err)
	}
	if len(bars) == 0 {
		return model.Bar{}, fmt.Errorf("%w: no daily bar before %s for %s", ErrMissingData, store.DateKey(date), symbol)
	}
	return bars[len(bars)-1], nil
}

// AnalyzeMorning scores the 09:15-10:00 window: the overnight gap, the
// cumulative buy/sell delta, and whether the open looks like panic
// selling.
func (a *Analyzer) AnalyzeMorning(ctx context.Context, symbol string, date time.Time) (*model.MorningAnalysis, error) {
	bars, err := a.windowBars(ctx, symbol, date, sessionOpen, morningEnd)
	if err != nil {
		return nil, fmt.Errorf("morning bars: %w", err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("%w: no morning bars for %s on %s", ErrMissingData, symbol, store.DateKey(date))
	}
	prev, err := a.prevDayBar(ctx, symbol, date)
	if err != nil {
		return nil, err
	}

	analysis := &model.MorningAnalysis{
		Symbol:     symbol,
		Date:       date,
		GapPercent: gapPercent(bars[0].Open, prev.Close),
		TotalBars:  len(bars),
	}
	for _, bar := range bars {
		analysis.Delta += barDelta(bar)
		analysis.Volume += bar.Volume
		if bar.IsDown() {
			analysis.DownBars++
		}
	}
	analysis.AvgTradeSize = float64(analysis.Volume) / float64(len(bars))
	analysis.PanicSelling = analysis.GapPercent < -0.5 &&
		analysis.Delta < 0 &&
		float64(analysis.DownBars) > float64(len(bars))*0.6

	if err := a.sessions.SaveMorning(analysis); err != nil {
		return nil, fmt.Errorf("save morning analysis: %w", err)
	}
	log.Printf("[INFO] morning %s: gap=%.2f%% delta=%.0f panic=%v", symbol, analysis.GapPercent, analysis.Delta, analysis.PanicSelling)
	return analysis, nil
}

// AnalyzeMidSession scores the 10:00-12:00 window: is the price
// recovering above VWAP while the delta turns positive, i.e. has
// absorption started.
func (a *Analyzer) AnalyzeMidSession(ctx context.Context, symbol string, date time.Time) (*model.MidSessionAnalysis, error) {
	bars, err := a.windowBars(ctx, symbol, date, morningEnd, midEnd)
	if err != nil {
		return nil, fmt.Errorf("mid-session bars: %w", err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("%w: no mid-session bars for %s on %s", ErrMissingData, symbol, store.DateKey(date))
	}

	analysis := &model.MidSessionAnalysis{Symbol: symbol, Date: date}
	for _, bar := range bars {
		analysis.Delta += barDelta(bar)
	}
	first, last := bars[0], bars[len(bars)-1]
	analysis.Recovering = last.Close.Cmp(first.Open) > 0

	vwapBars, err := a.windowBars(ctx, symbol, date, sessionOpen, midEnd)
	if err != nil {
		return nil, fmt.Errorf("vwap bars: %w", err)
	}
	analysis.VWAP = sessionVWAP(vwapBars)
	analysis.AboveVWAP = last.Close.InexactFloat64() > analysis.VWAP
	analysis.AbsorptionStarted = analysis.Delta > 0 && analysis.Recovering && analysis.AboveVWAP

	if err := a.sessions.SaveMidSession(analysis); err != nil {
		return nil, fmt.Errorf("save mid-session analysis: %w", err)
	}
	log.Printf("[INFO] mid-session %s: delta=%.0f recovering=%v absorption=%v", symbol, analysis.Delta, analysis.Recovering, analysis.AbsorptionStarted)
	return analysis, nil
}

// AnalyzeAfternoon aggregates 09:15-14:00, builds the retail-intensity
// composite, computes the weak-hands score, and decides the buy signal.
// Missing morning or mid-session results count as "no signal", never as
// an error.
func (a *Analyzer) AnalyzeAfternoon(ctx context.Context, symbol string, date time.Time) (*model.AfternoonAnalysis, error) {
	bars, err := a.windowBars(ctx, symbol, date, sessionOpen, afternoonEnd)
	if err != nil {
		return nil, fmt.Errorf("afternoon bars: %w", err)
	}
	if len(bars) < MinAfternoonBars {
		return nil, fmt.Errorf("%w: %d intraday bars for %s on %s, need %d",
			ErrMissingData, len(bars), symbol, store.DateKey(date), MinAfternoonBars)
	}
	prev, err := a.prevDayBar(ctx, symbol, date)
	if err != nil {
		return nil, err
	}

	morning, _ := a.sessions.FindMorning(symbol, date)
	mid, _ := a.sessions.FindMidSession(symbol, date)

	latest := bars[len(bars)-1]
	analysis := &model.AfternoonAnalysis{
		Symbol:       symbol,
		Date:         date,
		AnalyzedAt:   time.Now(),
		CurrentPrice: latest.Close,
	}
	for _, bar := range bars {
		analysis.SessionDelta += barDelta(bar)
	}

	metrics := RetailIntensity(bars)
	analysis.RetailIntensity = metrics.Composite

	vwap := sessionVWAP(bars)
	analysis.VWAPReclaimed = latest.Close.InexactFloat64() > vwap
	analysis.GoodAbsorption = absorptionQuality(morning, mid, analysis.SessionDelta, analysis.VWAPReclaimed)
	analysis.SupplyExhausted = supplyExhausted(bars, analysis.SessionDelta)
	analysis.WeakHandsScore = weakHandsScore(morning, mid, analysis)
	analysis.BuySignal = generateBuySignal(analysis)

	if analysis.BuySignal {
		applyTradeLevels(analysis, prev.High, latest.Close)
	}

	if err := a.sessions.SaveAfternoon(analysis); err != nil {
		return nil, fmt.Errorf("save afternoon analysis: %w", err)
	}
	if analysis.BuySignal {
		log.Printf("[INFO] buy signal %s: score=%.1f entry=%s target=%s stop=%s",
			symbol, analysis.WeakHandsScore, analysis.EntryPrice, analysis.TargetPrice, analysis.StopLoss)
	} else {
		log.Printf("[INFO] no afternoon signal %s: score=%.1f", symbol, analysis.WeakHandsScore)
	}
	return analysis, nil
}

// generateBuySignal gates the buy on the score plus three hard
// conditions: VWAP reclaimed, positive session delta, and either good
// absorption or exhausted supply. A high score alone is not enough.
func generateBuySignal(analysis *model.AfternoonAnalysis) bool {
	return analysis.WeakHandsScore >= buySignalThreshold &&
		analysis.VWAPReclaimed &&
		analysis.SessionDelta > 0 &&
		(analysis.GoodAbsorption || analysis.SupplyExhausted)
}

// absorptionQuality needs at least 3 of the 4 absorption markers.
func absorptionQuality(morning *model.MorningAnalysis, mid *model.MidSessionAnalysis, sessionDelta float64, vwapReclaimed bool) bool {
	score := 0
	if morning != nil && morning.PanicSelling {
		score++
	}
	if mid != nil && mid.AbsorptionStarted {
		score++
	}
	if sessionDelta > 0 {
		score++
	}
	if vwapReclaimed {
		score++
	}
	return score >= 3
}

// supplyExhausted compares down-bar volume across the session halves:
// sellers drying up in the second half while the delta stays positive.
func supplyExhausted(bars []model.Bar, sessionDelta float64) bool {
	if len(bars) < minExhaustionBars {
		return false
	}
	midpoint := len(bars) / 2
	var firstHalf, secondHalf int64
	for i, bar := range bars {
		if !bar.IsDown() {
			continue
		}
		if i < midpoint {
			firstHalf += bar.Volume
		} else {
			secondHalf += bar.Volume
		}
	}
	return float64(secondHalf) < float64(firstHalf)*0.6 && sessionDelta > 0
}

func weakHandsScore(morning *model.MorningAnalysis, mid *model.MidSessionAnalysis, afternoon *model.AfternoonAnalysis) float64 {
	score := 0.0
	if morning != nil && morning.PanicSelling {
		score += 15
	}
	if mid != nil && mid.AbsorptionStarted {
		score += 15
	}
	if afternoon.SessionDelta > 0 {
		score += 20
	}
	switch {
	case afternoon.RetailIntensity < 40:
		score += 15
	case afternoon.RetailIntensity < 60:
		score += 10
	}
	if afternoon.VWAPReclaimed {
		score += 15
	}
	if afternoon.GoodAbsorption {
		score += 10
	}
	if afternoon.SupplyExhausted {
		score += 10
	}
	return score
}

var (
	dTargetMult   = decimal.NewFromFloat(1.03)
	dStopPrevHigh = decimal.NewFromFloat(0.99)
	dStopEntry    = decimal.NewFromFloat(0.98)
	dHundred      = decimal.NewFromInt(100)
)

func applyTradeLevels(analysis *model.AfternoonAnalysis, prevDayHigh, entry decimal.Decimal) {
	analysis.EntryPrice = entry.Round(2)
	analysis.TargetPrice = entry.Mul(dTargetMult).Round(2)

	stop1 := prevDayHigh.Mul(dStopPrevHigh)
	stop2 := entry.Mul(dStopEntry)
	stop := stop1
	if stop2.Cmp(stop1) < 0 {
		stop = stop2
	}
	analysis.StopLoss = stop.Round(2)

	risk := analysis.EntryPrice.Sub(analysis.StopLoss)
	reward := analysis.TargetPrice.Sub(analysis.EntryPrice)
	if risk.Sign() > 0 {
		analysis.RiskReward = reward.DivRound(risk, 2)
		stopPercent := risk.Div(analysis.EntryPrice).Mul(dHundred)
		if !stopPercent.IsZero() {
			analysis.PositionSizePercent = decimal.NewFromInt(1).DivRound(stopPercent, 2)
		}
	}
}

// sessionVWAP is the volume-weighted average of typical prices across a
// window, zero when the window traded no volume.
func sessionVWAP(bars []model.Bar) float64 {
	var totalPV float64
	var totalVolume int64
	for _, bar := range bars {
		totalPV += bar.TypicalPrice().InexactFloat64() * float64(bar.Volume)
		totalVolume += bar.Volume
	}
	if totalVolume == 0 {
		return 0
	}
	return totalPV / float64(totalVolume)
}

// barDelta is (close-open)*volume, the signed pressure of a single bar.
func barDelta(bar model.Bar) float64 {
	return bar.Close.Sub(bar.Open).InexactFloat64() * float64(bar.Volume)
}

func gapPercent(open, prevClose decimal.Decimal) float64 {
	if prevClose.IsZero() {
		return 0
	}
	return open.Sub(prevClose).DivRound(prevClose, 4).InexactFloat64() * 100
}
