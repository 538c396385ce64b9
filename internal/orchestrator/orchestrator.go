// Package orchestrator drives the daily analysis: it resolves the
// prior day's watchlist, fans each symbol out to a bounded worker
// pool, isolates per-symbol failures, and aggregates the surviving
// recommendations.
package orchestrator

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"BTSTRadar/internal/btst"
	"BTSTRadar/internal/calculator"
	"BTSTRadar/internal/model"
	"BTSTRadar/internal/provider"
	"BTSTRadar/internal/screener"
	"BTSTRadar/internal/session"
	"BTSTRadar/internal/store"
)

const (
	// DefaultWorkers bounds the per-symbol fan-out.
	DefaultWorkers = 8
	// DefaultConfidenceThreshold filters the aggregated results.
	DefaultConfidenceThreshold = 50.0
)

// Orchestrator wires the screener, session analyzer, risk engine, and
// EOD scorer behind date-driven entry points. All per-symbol work runs
// on a fixed-size pool; one symbol failing never aborts a run.
type Orchestrator struct {
	provider provider.BarProvider
	screener *screener.Screener
	analyzer *session.Analyzer
	scorer   *btst.Scorer

	indicators      store.IndicatorStore
	recommendations store.RecommendationStore
	watchlists      store.WatchlistStore

	workers             int
	confidenceThreshold float64
}

type Option func(*Orchestrator)

func WithWorkers(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.workers = n
		}
	}
}

func WithConfidenceThreshold(t float64) Option {
	return func(o *Orchestrator) { o.confidenceThreshold = t }
}

func New(p provider.BarProvider, scr *screener.Screener, an *session.Analyzer, sc *btst.Scorer,
	ind store.IndicatorStore, rec store.RecommendationStore, wl store.WatchlistStore, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		provider:            p,
		screener:            scr,
		analyzer:            an,
		scorer:              sc,
		indicators:          ind,
		recommendations:     rec,
		watchlists:          wl,
		workers:             DefaultWorkers,
		confidenceThreshold: DefaultConfidenceThreshold,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// PrevTradingDay steps back one calendar day, skipping weekends.
func PrevTradingDay(date time.Time) time.Time {
	prev := date.AddDate(0, 0, -1)
	for prev.Weekday() == time.Saturday || prev.Weekday() == time.Sunday {
		prev = prev.AddDate(0, 0, -1)
	}
	return prev
}

// forEachSymbol runs fn for every symbol on the bounded pool and
// reports how many succeeded. Failures are logged and counted, never
// propagated.
func (o *Orchestrator) forEachSymbol(ctx context.Context, label string, symbols []string, fn func(context.Context, string) error) int {
	var (
		g, gctx = errgroup.WithContext(ctx)
		mu      sync.Mutex
		failed  int
	)
	g.SetLimit(o.workers)
	for _, symbol := range symbols {
		symbol := symbol
		g.Go(func() error {
			if err := fn(gctx, symbol); err != nil {
				log.Printf("[ERROR] %s %s: %v", label, symbol, err)
				mu.Lock()
				failed++
				mu.Unlock()
			}
			return nil
		})
	}
	g.Wait()
	succeeded := len(symbols) - failed
	log.Printf("[INFO] %s: %d succeeded, %d failed", label, succeeded, failed)
	return succeeded
}

// ComputeIndicators derives and stores the indicator set for every
// symbol as of date.
func (o *Orchestrator) ComputeIndicators(ctx context.Context, date time.Time, symbols []string) {
	from := date.AddDate(0, 0, -90)
	o.forEachSymbol(ctx, "compute indicators", symbols, func(ctx context.Context, symbol string) error {
		bars, err := o.provider.DailyBars(ctx, symbol, from, date)
		if err != nil {
			return fmt.Errorf("fetch daily bars: %w", err)
		}
		set, err := calculator.Compute(symbol, date, bars)
		if err != nil {
			return err
		}
		return o.indicators.SaveIndicators(set)
	})
}

// ScreenCandidates runs the day-1 screen over the universe and stores
// the qualifiers as date's watchlist.
func (o *Orchestrator) ScreenCandidates(ctx context.Context, date time.Time, symbols []string) ([]string, error) {
	return o.screener.Screen(ctx, date, symbols)
}

// RunStage invokes one session stage for every symbol on the prior
// trading day's watchlist. Stages must be invoked in order; the
// orchestrator owns that ordering, not the analyzer.
func (o *Orchestrator) RunStage(ctx context.Context, stage model.SessionStage, date time.Time) error {
	watchlist, err := o.watchlists.Watchlist(PrevTradingDay(date))
	if err != nil {
		return fmt.Errorf("load watchlist: %w", err)
	}
	if len(watchlist) == 0 {
		log.Printf("[INFO] stage %s %s: empty watchlist, nothing to do", stage, store.DateKey(date))
		return nil
	}
	log.Printf("[INFO] stage %s %s: analyzing %d symbols", stage, store.DateKey(date), len(watchlist))

	o.forEachSymbol(ctx, "stage "+string(stage), watchlist, func(ctx context.Context, symbol string) error {
		var err error
		switch stage {
		case model.StageMorning:
			_, err = o.analyzer.AnalyzeMorning(ctx, symbol, date)
		case model.StageMidSession:
			_, err = o.analyzer.AnalyzeMidSession(ctx, symbol, date)
		case model.StageAfternoon:
			_, err = o.analyzer.AnalyzeAfternoon(ctx, symbol, date)
		default:
			err = fmt.Errorf("unknown stage %q", stage)
		}
		return err
	})
	return nil
}

// RunBatch is the end-of-day entry point: score every symbol on the
// prior trading day's watchlist, keep those above the confidence
// threshold, sort by confidence descending, and persist.
func (o *Orchestrator) RunBatch(ctx context.Context, date time.Time) ([]*model.Recommendation, error) {
	day1 := PrevTradingDay(date)
	watchlist, err := o.watchlists.Watchlist(day1)
	if err != nil {
		return nil, fmt.Errorf("load watchlist: %w", err)
	}
	log.Printf("[INFO] batch %s: scoring %d candidates from %s", store.DateKey(date), len(watchlist), store.DateKey(day1))

	var (
		mu      sync.Mutex
		results []*model.Recommendation
	)
	o.forEachSymbol(ctx, "batch score", watchlist, func(ctx context.Context, symbol string) error {
		rec, err := o.scorer.Score(ctx, symbol, day1, date)
		if err != nil {
			return err
		}
		mu.Lock()
		results = append(results, rec)
		mu.Unlock()
		return nil
	})

	filtered := results[:0]
	for _, rec := range results {
		if rec.Confidence >= o.confidenceThreshold {
			filtered = append(filtered, rec)
		}
	}
	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].Confidence > filtered[j].Confidence
	})

	if err := o.recommendations.SaveRecommendations(filtered); err != nil {
		return nil, fmt.Errorf("save recommendations: %w", err)
	}
	log.Printf("[INFO] batch %s: stored %d recommendations", store.DateKey(date), len(filtered))
	return filtered, nil
}
