package provider

import (
	"context"
	"sort"
	"time"

	"BTSTRadar/internal/model"
)

// MockProvider serves bars from memory for development and testing.
type MockProvider struct {
	Daily    map[string][]model.Bar
	Intraday map[string][]model.Bar
}

func NewMockProvider() *MockProvider {
	return &MockProvider{
		Daily:    make(map[string][]model.Bar),
		Intraday: make(map[string][]model.Bar),
	}
}

func (m *MockProvider) Name() string { return "mock" }

// AddDaily appends daily bars for a symbol, keeping time order.
func (m *MockProvider) AddDaily(symbol string, bars ...model.Bar) {
	m.Daily[symbol] = append(m.Daily[symbol], bars...)
	sortBars(m.Daily[symbol])
}

// AddIntraday appends intraday bars for a symbol, keeping time order.
func (m *MockProvider) AddIntraday(symbol string, bars ...model.Bar) {
	m.Intraday[symbol] = append(m.Intraday[symbol], bars...)
	sortBars(m.Intraday[symbol])
}

func (m *MockProvider) DailyBars(_ context.Context, symbol string, from, to time.Time) ([]model.Bar, error) {
	var out []model.Bar
	for _, b := range m.Daily[symbol] {
		if !b.Timestamp.Before(from) && !b.Timestamp.After(to) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *MockProvider) IntradayBars(_ context.Context, symbol string, from, to time.Time) ([]model.Bar, error) {
	var out []model.Bar
	for _, b := range m.Intraday[symbol] {
		if !b.Timestamp.Before(from) && b.Timestamp.Before(to) {
			out = append(out, b)
		}
	}
	return out, nil
}

func sortBars(bars []model.Bar) {
	sort.Slice(bars, func(i, j int) bool { return bars[i].Timestamp.Before(bars[j].Timestamp) })
}
