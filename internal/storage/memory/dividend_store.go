package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/nguyenngoctoan/high-yield-dividend-analysis-sub005/internal/domain"
	"github.com/nguyenngoctoan/high-yield-dividend-analysis-sub005/internal/storage"
)

// DividendStore is an in-memory implementation of storage.DividendStore.
type DividendStore struct {
	mu   sync.RWMutex
	data map[dividendKey]*domain.DividendRecord
}

type dividendKey struct {
	symbol string
	exDate string
}

// NewDividendStore creates a new in-memory dividend store.
func NewDividendStore() *DividendStore {
	return &DividendStore{
		data: make(map[dividendKey]*domain.DividendRecord),
	}
}

// Upsert inserts the record or overwrites the row for (symbol, ex_date).
func (s *DividendStore) Upsert(_ context.Context, d *domain.DividendRecord) error {
	if d == nil || d.Symbol == "" || d.ExDate == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	recordCopy := *d
	s.data[dividendKey{d.Symbol, d.ExDate}] = &recordCopy
	return nil
}

// UpsertBulk upserts all records, stopping at the first failure.
func (s *DividendStore) UpsertBulk(ctx context.Context, records []*domain.DividendRecord) error {
	for _, d := range records {
		if err := s.Upsert(ctx, d); err != nil {
			return err
		}
	}
	return nil
}

// GetBySymbol retrieves all records for a symbol, ordered by ex_date ASC.
func (s *DividendStore) GetBySymbol(_ context.Context, symbol string) ([]*domain.DividendRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.DividendRecord
	for k, d := range s.data {
		if k.symbol == symbol {
			recordCopy := *d
			result = append(result, &recordCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ExDate < result[j].ExDate
	})

	return result, nil
}

// Verify interface compliance at compile time.
var _ storage.DividendStore = (*DividendStore)(nil)
