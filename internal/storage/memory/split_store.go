package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/nguyenngoctoan/high-yield-dividend-analysis-sub005/internal/domain"
	"github.com/nguyenngoctoan/high-yield-dividend-analysis-sub005/internal/storage"
)

// SplitStore is an in-memory implementation of storage.SplitStore.
type SplitStore struct {
	mu   sync.RWMutex
	data map[splitKey]*domain.SplitEvent
}

type splitKey struct {
	symbol    string
	splitDate string
}

// NewSplitStore creates a new in-memory split store.
func NewSplitStore() *SplitStore {
	return &SplitStore{
		data: make(map[splitKey]*domain.SplitEvent),
	}
}

// Insert adds a split. Returns ErrDuplicateKey if already recorded.
func (s *SplitStore) Insert(_ context.Context, e *domain.SplitEvent) error {
	if e == nil || e.Symbol == "" || e.SplitDate == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	k := splitKey{e.Symbol, e.SplitDate}
	if _, exists := s.data[k]; exists {
		return storage.ErrDuplicateKey
	}
	eventCopy := *e
	s.data[k] = &eventCopy
	return nil
}

// GetBySymbol retrieves all splits for a symbol, ordered by split_date ASC.
func (s *SplitStore) GetBySymbol(_ context.Context, symbol string) ([]*domain.SplitEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.SplitEvent
	for k, e := range s.data {
		if k.symbol == symbol {
			eventCopy := *e
			result = append(result, &eventCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].SplitDate < result[j].SplitDate
	})

	return result, nil
}

// Verify interface compliance at compile time.
var _ storage.SplitStore = (*SplitStore)(nil)
