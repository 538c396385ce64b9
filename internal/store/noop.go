package store

import (
	"time"

	"BTSTRadar/internal/model"
)

// NoopStore is a no-op persistence backend used when SQLite is not
// configured. Reads always report not found.
type NoopStore struct{}

func NewNoopStore() *NoopStore { return &NoopStore{} }

func (n *NoopStore) SaveIndicators(_ *model.IndicatorSet) error { return nil }

func (n *NoopStore) FindIndicators(_ string, _ time.Time) (*model.IndicatorSet, error) {
	return nil, ErrNotFound
}

func (n *NoopStore) SaveRecommendations(_ []*model.Recommendation) error { return nil }

func (n *NoopStore) FindRecommendation(_ string, _ time.Time) (*model.Recommendation, error) {
	return nil, ErrNotFound
}

func (n *NoopStore) RecommendationsForDate(_ time.Time) ([]*model.Recommendation, error) {
	return nil, nil
}

func (n *NoopStore) Close() error { return nil }
