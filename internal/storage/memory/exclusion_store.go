package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/nguyenngoctoan/high-yield-dividend-analysis-sub005/internal/domain"
	"github.com/nguyenngoctoan/high-yield-dividend-analysis-sub005/internal/storage"
)

// ExclusionStore is an in-memory implementation of storage.ExclusionStore.
type ExclusionStore struct {
	mu   sync.RWMutex
	data map[string]*domain.ExclusionRecord // keyed by symbol
}

// NewExclusionStore creates a new in-memory exclusion ledger.
func NewExclusionStore() *ExclusionStore {
	return &ExclusionStore{
		data: make(map[string]*domain.ExclusionRecord),
	}
}

// Upsert inserts the record or refreshes the existing one, incrementing
// validation_attempts. Repeated rejections are never an error.
func (s *ExclusionStore) Upsert(_ context.Context, r *domain.ExclusionRecord) error {
	if r == nil || r.Symbol == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	recordCopy := *r
	if existing, ok := s.data[r.Symbol]; ok {
		recordCopy.ValidationAttempts = existing.ValidationAttempts + 1
	} else if recordCopy.ValidationAttempts == 0 {
		recordCopy.ValidationAttempts = 1
	}
	s.data[r.Symbol] = &recordCopy
	return nil
}

// GetBySymbol retrieves a record. Returns ErrNotFound if not exists.
func (s *ExclusionStore) GetBySymbol(_ context.Context, symbol string) (*domain.ExclusionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.data[symbol]
	if !ok {
		return nil, storage.ErrNotFound
	}
	recordCopy := *r
	return &recordCopy, nil
}

// ExistingSymbols returns the subset of symbols present in the ledger.
func (s *ExclusionStore) ExistingSymbols(_ context.Context, symbols []string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var present []string
	for _, sym := range symbols {
		if _, ok := s.data[sym]; ok {
			present = append(present, sym)
		}
	}
	sort.Strings(present)
	return present, nil
}

// Verify interface compliance at compile time.
var _ storage.ExclusionStore = (*ExclusionStore)(nil)
