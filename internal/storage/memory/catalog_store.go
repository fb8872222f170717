package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/nguyenngoctoan/high-yield-dividend-analysis-sub005/internal/domain"
	"github.com/nguyenngoctoan/high-yield-dividend-analysis-sub005/internal/storage"
)

// CatalogStore is an in-memory implementation of storage.CatalogStore.
type CatalogStore struct {
	mu   sync.RWMutex
	data map[string]*domain.CatalogEntry // keyed by symbol
}

// NewCatalogStore creates a new in-memory catalog store.
func NewCatalogStore() *CatalogStore {
	return &CatalogStore{
		data: make(map[string]*domain.CatalogEntry),
	}
}

// Upsert inserts the entry or updates the existing row for its symbol.
func (s *CatalogStore) Upsert(_ context.Context, e *domain.CatalogEntry) error {
	if e == nil || e.Symbol == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entryCopy := *e
	if existing, ok := s.data[e.Symbol]; ok {
		entryCopy.CreatedAt = existing.CreatedAt
		if entryCopy.CompanyName == nil {
			entryCopy.CompanyName = existing.CompanyName
		}
		if entryCopy.Sector == nil {
			entryCopy.Sector = existing.Sector
		}
	}
	s.data[e.Symbol] = &entryCopy
	return nil
}

// GetBySymbol retrieves an entry. Returns ErrNotFound if not exists.
func (s *CatalogStore) GetBySymbol(_ context.Context, symbol string) (*domain.CatalogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.data[symbol]
	if !ok {
		return nil, storage.ErrNotFound
	}
	entryCopy := *e
	return &entryCopy, nil
}

// ExistingSymbols returns the subset of symbols present in the catalog.
func (s *CatalogStore) ExistingSymbols(_ context.Context, symbols []string) ([]string, error) {
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

// ListSymbols returns all catalog symbols, ordered ascending.
func (s *CatalogStore) ListSymbols(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	symbols := make([]string, 0, len(s.data))
	for sym := range s.data {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)
	return symbols, nil
}

// Verify interface compliance at compile time.
var _ storage.CatalogStore = (*CatalogStore)(nil)
