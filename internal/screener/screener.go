// Package screener flags day-1 BTST candidates: stocks that closed a
// session with a late surge and breakout characteristics. Symbols that
// pass become the next trading day's watchlist.
package screener

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"BTSTRadar/internal/calculator"
	"BTSTRadar/internal/model"
	"BTSTRadar/internal/provider"
	"BTSTRadar/internal/store"
)

const (
	// Lookback is the number of prior sessions required before the
	// candidate day itself.
	Lookback = 20

	minPriceChangePct = 2.0
	breakoutTolerance = 0.98
	// Close must sit in the top 30% of the day's range.
	maxUpperWickRatio = 0.3
	// Volume ratio in percent form: 150 means 1.5x the 20-day average.
	minVolumeRatio = 150
)

var (
	dBreakoutTolerance = decimal.NewFromFloat(breakoutTolerance)
	dMaxUpperWick      = decimal.NewFromFloat(maxUpperWickRatio)
	dMinPriceChange    = decimal.NewFromFloat(minPriceChangePct)
	dMinVolumeRatio    = decimal.NewFromInt(minVolumeRatio)
	dHundred           = decimal.NewFromInt(100)
)

// Screener runs the four-condition day-1 screen across a universe of
// symbols and records the qualifiers as a watchlist.
type Screener struct {
	provider   provider.BarProvider
	watchlists store.WatchlistStore
}

func New(p provider.BarProvider, w store.WatchlistStore) *Screener {
	return &Screener{provider: p, watchlists: w}
}

// Qualifies applies the day-1 screen to the latest bar of an ordered
// (oldest to newest) daily series. It needs the candidate bar plus at
// least Lookback+1 prior bars: one for the previous close and Lookback
// for the breakout and volume baselines.
func Qualifies(bars []model.Bar) (bool, error) {
	if len(bars) < Lookback+2 {
		return false, fmt.Errorf("screen: %w: have %d bars, need %d", calculator.ErrInsufficientData, len(bars), Lookback+2)
	}

	day := bars[len(bars)-1]
	prev := bars[len(bars)-2]
	window := bars[len(bars)-1-Lookback : len(bars)-1]

	// 1. close-over-close change above 2%.
	if prev.Close.IsZero() {
		return false, nil
	}
	change := day.Close.Sub(prev.Close).Div(prev.Close).Mul(dHundred)
	if change.Cmp(dMinPriceChange) <= 0 {
		return false, nil
	}

	// 2. high within 2% of the 20-session highest high.
	highest, err := calculator.HighestHigh(window, Lookback)
	if err != nil {
		return false, err
	}
	if day.High.Cmp(highest.Mul(dBreakoutTolerance)) < 0 {
		return false, nil
	}

	// 3. late strength: close in the top 30% of the day's range. A
	// zero-range bar closes at its high, which counts as strength.
	span := day.High.Sub(day.Low)
	if span.Sign() > 0 {
		wick := day.High.Sub(day.Close).Div(span)
		if wick.Cmp(dMaxUpperWick) >= 0 {
			return false, nil
		}
	}

	// 4. volume at least 1.5x the 20-session average.
	avgVolume, err := calculator.CalculateVolumeSMA(window, Lookback)
	if err != nil {
		return false, err
	}
	ratio := calculator.CalculateVolumeRatio(day.Volume, avgVolume)
	return ratio.Cmp(dMinVolumeRatio) >= 0, nil
}

// Screen evaluates every symbol for the given trading date and stores
// the qualifiers as that date's watchlist. Per-symbol data problems are
// logged and skipped; they never abort the screen.
func (s *Screener) Screen(ctx context.Context, date time.Time, symbols []string) ([]string, error) {
	from := date.AddDate(0, 0, -60)

	var qualified []string
	for _, symbol := range symbols {
		bars, err := s.provider.DailyBars(ctx, symbol, from, date)
		if err != nil {
			log.Printf("[WARN] screen %s: fetch daily bars: %v", symbol, err)
			continue
		}
		ok, err := Qualifies(bars)
		if err != nil {
			log.Printf("[WARN] screen %s: %v", symbol, err)
			continue
		}
		if ok {
			log.Printf("[INFO] screen: %s qualifies as BTST candidate for %s", symbol, store.DateKey(date))
			qualified = append(qualified, symbol)
		}
	}

	if err := s.watchlists.SaveWatchlist(date, qualified); err != nil {
		return nil, fmt.Errorf("save watchlist: %w", err)
	}
	log.Printf("[INFO] screen complete: %d/%d symbols qualified for %s", len(qualified), len(symbols), store.DateKey(date))
	return qualified, nil
}
