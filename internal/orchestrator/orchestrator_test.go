package orchestrator

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"BTSTRadar/internal/btst"
	"BTSTRadar/internal/model"
	"BTSTRadar/internal/provider"
	"BTSTRadar/internal/risk"
	"BTSTRadar/internal/screener"
	"BTSTRadar/internal/session"
	"BTSTRadar/internal/store"
)

var (
	day1 = time.Date(2026, 3, 23, 0, 0, 0, 0, time.UTC) // Monday
	day2 = time.Date(2026, 3, 24, 0, 0, 0, 0, time.UTC)
)

// fakeArchive is an in-memory IndicatorStore + RecommendationStore.
type fakeArchive struct {
	mu   sync.Mutex
	sets map[string]*model.IndicatorSet
	recs map[string]*model.Recommendation
}

func newFakeArchive() *fakeArchive {
	return &fakeArchive{
		sets: make(map[string]*model.IndicatorSet),
		recs: make(map[string]*model.Recommendation),
	}
}

func (f *fakeArchive) SaveIndicators(set *model.IndicatorSet) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sets[set.Symbol+"|"+store.DateKey(set.Date)] = set
	return nil
}

func (f *fakeArchive) FindIndicators(symbol string, date time.Time) (*model.IndicatorSet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	set, ok := f.sets[symbol+"|"+store.DateKey(date)]
	if !ok {
		return nil, store.ErrNotFound
	}
	return set, nil
}

func (f *fakeArchive) SaveRecommendations(recs []*model.Recommendation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, rec := range recs {
		f.recs[rec.Symbol+"|"+store.DateKey(rec.Date)] = rec
	}
	return nil
}

func (f *fakeArchive) FindRecommendation(symbol string, date time.Time) (*model.Recommendation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.recs[symbol+"|"+store.DateKey(date)]
	if !ok {
		return nil, store.ErrNotFound
	}
	return rec, nil
}

func (f *fakeArchive) RecommendationsForDate(date time.Time) ([]*model.Recommendation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Recommendation
	for _, rec := range f.recs {
		if store.DateKey(rec.Date) == store.DateKey(date) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func dailyBar(symbol string, ts time.Time, open, high, low, close float64, volume int64) model.Bar {
	return model.Bar{
		Symbol:      symbol,
		Timestamp:   ts,
		Open:        decimal.NewFromFloat(open),
		High:        decimal.NewFromFloat(high),
		Low:         decimal.NewFromFloat(low),
		Close:       decimal.NewFromFloat(close),
		Volume:      volume,
		Trades:      500,
		ValueTraded: 120_000_000,
	}
}

func intradayBar(symbol string, hour, min int, open, close float64, volume int64) model.Bar {
	high := open
	if close > open {
		high = close
	}
	low := open
	if close < open {
		low = close
	}
	return model.Bar{
		Symbol:    symbol,
		Timestamp: time.Date(day2.Year(), day2.Month(), day2.Day(), hour, min, 0, 0, time.UTC),
		Open:      decimal.NewFromFloat(open),
		High:      decimal.NewFromFloat(high + 0.2),
		Low:       decimal.NewFromFloat(low - 0.2),
		Close:     decimal.NewFromFloat(close),
		Volume:    volume,
	}
}

// seedSurgeDay loads symbol X's daily history: 21 quiet sessions with a
// 20-day high of 106, then the day-1 surge bar and the day-2 follow
// through.
func seedSurgeDay(mock *provider.MockProvider) {
	for i := 21; i >= 1; i-- {
		mock.AddDaily("X", dailyBar("X", day1.AddDate(0, 0, -i), 100, 106, 99, 100, 1_000_000))
	}
	mock.AddDaily("X", dailyBar("X", day1, 100, 108, 99, 107, 2_000_000))
	mock.AddDaily("X", dailyBar("X", day2, 106.1, 108.5, 105.5, 108, 1_500_000))
}

// seedIntradayDay2 loads a panic open, a mid-session recovery, and a
// strong afternoon for symbol X.
func seedIntradayDay2(mock *provider.MockProvider) {
	// Morning 09:15-09:55: -0.8% gap, 7 of 9 bars down, negative delta.
	bars := []model.Bar{intradayBar("X", 9, 15, 106.1, 105.7, 5000)}
	price := 105.7
	for i := 1; i < 9; i++ {
		min := 15 + i*5
		if i%3 == 0 {
			bars = append(bars, intradayBar("X", 9, min, price, price+0.1, 5000))
			price += 0.1
		} else {
			bars = append(bars, intradayBar("X", 9, min, price, price-0.4, 5000))
			price -= 0.4
		}
	}
	mock.AddIntraday("X", bars...)

	// Recovery from 10:00 onward, 15-minute bars rising 0.5 each.
	price = 103.5
	for i := 0; i < 16; i++ {
		totalMin := i * 15
		mock.AddIntraday("X", intradayBar("X", 10+totalMin/60, totalMin%60, price, price+0.5, 20000))
		price += 0.5
	}
}

func newTestOrchestrator(mock *provider.MockProvider, archive *fakeArchive, sessions *store.MemoryStore, opts ...Option) *Orchestrator {
	scr := screener.New(mock, sessions)
	analyzer := session.NewAnalyzer(mock, sessions)
	scorer := btst.NewScorer(mock, archive, risk.NewEngine(mock))
	return New(mock, scr, analyzer, scorer, archive, archive, sessions, opts...)
}

func TestEndToEnd_SurgeThenAbsorption(t *testing.T) {
	mock := provider.NewMockProvider()
	seedSurgeDay(mock)
	seedIntradayDay2(mock)

	archive := newFakeArchive()
	sessions := store.NewMemoryStore()
	orch := newTestOrchestrator(mock, archive, sessions, WithWorkers(4), WithConfidenceThreshold(0))
	ctx := context.Background()

	// Day 1 evening: indicators plus the candidate screen.
	orch.ComputeIndicators(ctx, day1, []string{"X"})
	if _, err := archive.FindIndicators("X", day1); err != nil {
		t.Fatalf("day-1 indicators not stored: %v", err)
	}
	watchlist, err := orch.ScreenCandidates(ctx, day1, []string{"X"})
	if err != nil {
		t.Fatalf("screen: %v", err)
	}
	if len(watchlist) != 1 || watchlist[0] != "X" {
		t.Fatalf("expected X on the watchlist, got %v", watchlist)
	}

	// Day 2 intraday: the three ordered stages.
	for _, stage := range []model.SessionStage{model.StageMorning, model.StageMidSession, model.StageAfternoon} {
		if err := orch.RunStage(ctx, stage, day2); err != nil {
			t.Fatalf("stage %s: %v", stage, err)
		}
	}

	morning, err := sessions.FindMorning("X", day2)
	if err != nil {
		t.Fatalf("morning result: %v", err)
	}
	if !morning.PanicSelling {
		t.Error("expected morning panic on the gap-down open")
	}
	mid, err := sessions.FindMidSession("X", day2)
	if err != nil {
		t.Fatalf("mid-session result: %v", err)
	}
	if !mid.AbsorptionStarted {
		t.Error("expected mid-session absorption during the recovery")
	}
	afternoon, err := sessions.FindAfternoon("X", day2)
	if err != nil {
		t.Fatalf("afternoon result: %v", err)
	}
	if afternoon.WeakHandsScore < 65 {
		t.Errorf("expected weak-hands score >= 65, got %.1f", afternoon.WeakHandsScore)
	}
	if !afternoon.BuySignal {
		t.Fatal("expected an afternoon buy signal")
	}

	// Day 2 evening: indicators for the scorer, then the batch.
	orch.ComputeIndicators(ctx, day2, []string{"X"})
	recs, err := orch.RunBatch(ctx, day2)
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	if len(recs) != 1 || recs[0].Symbol != "X" {
		t.Fatalf("expected one recommendation for X, got %v", recs)
	}
	if !recs[0].ShowsAbsorption {
		t.Error("expected the shallow gap buy-back to count as absorption")
	}
	if _, err := archive.FindRecommendation("X", day2); err != nil {
		t.Fatalf("recommendation not persisted: %v", err)
	}
}

func TestRunBatch_IsolatesSymbolFailures(t *testing.T) {
	mock := provider.NewMockProvider()
	seedSurgeDay(mock)

	archive := newFakeArchive()
	sessions := store.NewMemoryStore()
	if err := sessions.SaveWatchlist(day1, []string{"X", "GHOST"}); err != nil {
		t.Fatalf("seed watchlist: %v", err)
	}

	orch := newTestOrchestrator(mock, archive, sessions, WithConfidenceThreshold(0))
	recs, err := orch.RunBatch(context.Background(), day2)
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	if len(recs) != 1 || recs[0].Symbol != "X" {
		t.Fatalf("GHOST has no bars and must be skipped, got %v", recs)
	}
}

func TestRunBatch_FiltersAndSortsByConfidence(t *testing.T) {
	mock := provider.NewMockProvider()
	seedSurgeDay(mock)

	archive := newFakeArchive()
	// Hand the scorer strong day-2 strength so X clears a threshold.
	archive.SaveIndicators(&model.IndicatorSet{
		Symbol: "X", Date: day2,
		PriceStrength:  model.ND(decimal.NewFromInt(40)),
		VolumeStrength: model.ND(decimal.NewFromInt(20)),
	})
	sessions := store.NewMemoryStore()
	sessions.SaveWatchlist(day1, []string{"X"})

	orch := newTestOrchestrator(mock, archive, sessions, WithConfidenceThreshold(99))
	recs, err := orch.RunBatch(context.Background(), day2)
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	if len(recs) != 0 {
		t.Fatalf("confidence threshold 99 should filter everything, got %v", recs)
	}

	orch = newTestOrchestrator(mock, archive, sessions, WithConfidenceThreshold(50))
	recs, err = orch.RunBatch(context.Background(), day2)
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected X to clear threshold 50, got %v", recs)
	}
}

func TestPrevTradingDay_SkipsWeekend(t *testing.T) {
	monday := time.Date(2026, 3, 23, 0, 0, 0, 0, time.UTC)
	got := PrevTradingDay(monday)
	if got.Weekday() != time.Friday {
		t.Errorf("expected Friday before a Monday, got %s", got.Weekday())
	}
}
