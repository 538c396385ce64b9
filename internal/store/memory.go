package store

import (
	"sync"
	"time"

	"BTSTRadar/internal/model"
)

// MemoryStore is the in-process session and watchlist store. Maps are
// keyed by date, then symbol; a RWMutex covers the outer maps so reads
// from concurrent symbol tasks never block each other's keys for long.
type MemoryStore struct {
	mu         sync.RWMutex
	morning    map[string]map[string]*model.MorningAnalysis
	midSession map[string]map[string]*model.MidSessionAnalysis
	afternoon  map[string]map[string]*model.AfternoonAnalysis
	watchlists map[string][]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		morning:    make(map[string]map[string]*model.MorningAnalysis),
		midSession: make(map[string]map[string]*model.MidSessionAnalysis),
		afternoon:  make(map[string]map[string]*model.AfternoonAnalysis),
		watchlists: make(map[string][]string),
	}
}

func (s *MemoryStore) SaveMorning(a *model.MorningAnalysis) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := DateKey(a.Date)
	if s.morning[key] == nil {
		s.morning[key] = make(map[string]*model.MorningAnalysis)
	}
	s.morning[key][a.Symbol] = a
	return nil
}

func (s *MemoryStore) FindMorning(symbol string, date time.Time) (*model.MorningAnalysis, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if a, ok := s.morning[DateKey(date)][symbol]; ok {
		return a, nil
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) SaveMidSession(a *model.MidSessionAnalysis) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := DateKey(a.Date)
	if s.midSession[key] == nil {
		s.midSession[key] = make(map[string]*model.MidSessionAnalysis)
	}
	s.midSession[key][a.Symbol] = a
	return nil
}

func (s *MemoryStore) FindMidSession(symbol string, date time.Time) (*model.MidSessionAnalysis, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if a, ok := s.midSession[DateKey(date)][symbol]; ok {
		return a, nil
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) SaveAfternoon(a *model.AfternoonAnalysis) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := DateKey(a.Date)
	if s.afternoon[key] == nil {
		s.afternoon[key] = make(map[string]*model.AfternoonAnalysis)
	}
	s.afternoon[key][a.Symbol] = a
	return nil
}

func (s *MemoryStore) FindAfternoon(symbol string, date time.Time) (*model.AfternoonAnalysis, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if a, ok := s.afternoon[DateKey(date)][symbol]; ok {
		return a, nil
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) BuySignals(date time.Time) ([]*model.AfternoonAnalysis, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*model.AfternoonAnalysis
	for _, a := range s.afternoon[DateKey(date)] {
		if a.BuySignal {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *MemoryStore) SaveWatchlist(date time.Time, symbols []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watchlists[DateKey(date)] = append([]string(nil), symbols...)
	return nil
}

func (s *MemoryStore) Watchlist(date time.Time) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	symbols, ok := s.watchlists[DateKey(date)]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]string(nil), symbols...), nil
}

// Clear drops all session state for a date once the run is finished.
func (s *MemoryStore) Clear(date time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := DateKey(date)
	delete(s.morning, key)
	delete(s.midSession, key)
	delete(s.afternoon, key)
	delete(s.watchlists, key)
}
