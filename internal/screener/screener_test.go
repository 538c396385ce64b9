package screener

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"BTSTRadar/internal/calculator"
	"BTSTRadar/internal/model"
	"BTSTRadar/internal/provider"
	"BTSTRadar/internal/store"
)

func dailyBar(ts time.Time, open, high, low, close float64, volume int64) model.Bar {
	return model.Bar{
		Symbol:    "TEST",
		Timestamp: ts,
		Open:      decimal.NewFromFloat(open),
		High:      decimal.NewFromFloat(high),
		Low:       decimal.NewFromFloat(low),
		Close:     decimal.NewFromFloat(close),
		Volume:    volume,
	}
}

// candidateSeries builds 21 quiet history bars plus a surge day:
// +7% close-over-close, a high above the 20-day high, a close near the
// high, and volume at the given multiple of the average.
func candidateSeries(surgeVolume int64) []model.Bar {
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	var bars []model.Bar
	for i := 0; i < 21; i++ {
		bars = append(bars, dailyBar(start.AddDate(0, 0, i), 100, 106, 99, 100, 1_000_000))
	}
	surge := dailyBar(start.AddDate(0, 0, 21), 100, 108, 99, 107, surgeVolume)
	return append(bars, surge)
}

func TestQualifies_StrongCandidate(t *testing.T) {
	ok, err := Qualifies(candidateSeries(1_800_000))
	if err != nil {
		t.Fatalf("qualifies: %v", err)
	}
	if !ok {
		t.Error("expected surge day with 1.8x volume to qualify")
	}
}

func TestQualifies_RejectsAverageVolume(t *testing.T) {
	ok, err := Qualifies(candidateSeries(1_000_000))
	if err != nil {
		t.Fatalf("qualifies: %v", err)
	}
	if ok {
		t.Error("at-par volume must fail the volume ratio condition")
	}
}

func TestQualifies_RejectsWeakClose(t *testing.T) {
	bars := candidateSeries(1_800_000)
	// Close in the lower half of the day's range kills late strength.
	surge := &bars[len(bars)-1]
	surge.Close = decimal.NewFromFloat(103)
	ok, err := Qualifies(bars)
	if err != nil {
		t.Fatalf("qualifies: %v", err)
	}
	if ok {
		t.Error("a fading close should not qualify")
	}
}

func TestQualifies_InsufficientHistory(t *testing.T) {
	bars := candidateSeries(1_800_000)[:10]
	if _, err := Qualifies(bars); !errors.Is(err, calculator.ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}

func TestScreen_StoresWatchlist(t *testing.T) {
	date := time.Date(2026, 3, 23, 0, 0, 0, 0, time.UTC)
	mock := provider.NewMockProvider()
	series := candidateSeries(1_800_000)
	for i := range series {
		// Re-date the series so the surge day lands on the screen date.
		series[i].Timestamp = date.AddDate(0, 0, i-len(series)+1)
	}
	for _, b := range series {
		b.Symbol = "WINNER"
		mock.AddDaily("WINNER", b)
	}
	quiet := dailyBar(date, 100, 101, 99, 100, 1_000_000)
	quiet.Symbol = "SLEEPER"
	mock.AddDaily("SLEEPER", quiet)

	mem := store.NewMemoryStore()
	scr := New(mock, mem)

	qualified, err := scr.Screen(context.Background(), date, []string{"WINNER", "SLEEPER"})
	if err != nil {
		t.Fatalf("screen: %v", err)
	}
	if len(qualified) != 1 || qualified[0] != "WINNER" {
		t.Fatalf("expected only WINNER to qualify, got %v", qualified)
	}

	stored, err := mem.Watchlist(date)
	if err != nil {
		t.Fatalf("watchlist: %v", err)
	}
	if len(stored) != 1 || stored[0] != "WINNER" {
		t.Fatalf("watchlist not persisted: %v", stored)
	}
}
