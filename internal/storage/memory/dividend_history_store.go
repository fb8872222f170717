package memory

import (
	"context"
	"sync"

	"github.com/nguyenngoctoan/high-yield-dividend-analysis-sub005/internal/domain"
	"github.com/nguyenngoctoan/high-yield-dividend-analysis-sub005/internal/storage"
)

// DividendHistoryStore is an in-memory stand-in for the ClickHouse sink.
type DividendHistoryStore struct {
	mu     sync.RWMutex
	points []*domain.DividendHistoryPoint
}

// NewDividendHistoryStore creates a new in-memory history sink.
func NewDividendHistoryStore() *DividendHistoryStore {
	return &DividendHistoryStore{}
}

// InsertBulk appends history points.
func (s *DividendHistoryStore) InsertBulk(_ context.Context, points []*domain.DividendHistoryPoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range points {
		if p == nil || p.Symbol == "" {
			return storage.ErrInvalidInput
		}
		pointCopy := *p
		s.points = append(s.points, &pointCopy)
	}
	return nil
}

// All returns a copy of every ingested point, in insertion order.
func (s *DividendHistoryStore) All() []*domain.DividendHistoryPoint {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.DividendHistoryPoint, 0, len(s.points))
	for _, p := range s.points {
		pointCopy := *p
		out = append(out, &pointCopy)
	}
	return out
}

// Verify interface compliance at compile time.
var _ storage.DividendHistoryStore = (*DividendHistoryStore)(nil)
