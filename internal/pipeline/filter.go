// Package pipeline implements the symbol discovery and validation run:
// discover, filter against the known corpus, validate against a provider,
// and commit verdicts idempotently.
package pipeline

import (
	"context"
	"fmt"

	"github.com/nguyenngoctoan/high-yield-dividend-analysis-sub005/internal/domain"
	"github.com/nguyenngoctoan/high-yield-dividend-analysis-sub005/internal/storage"
)

// DefaultFilterChunkSize bounds one membership query. Keeps the filter
// sub-linear against catalogs of tens of thousands of rows.
const DefaultFilterChunkSize = 500

// CorpusFilter removes candidates already present in the catalog or the
// exclusion ledger. Membership is checked in chunks, never row by row.
type CorpusFilter struct {
	catalog    storage.CatalogStore
	exclusions storage.ExclusionStore
	chunkSize  int
}

// NewCorpusFilter creates a filter over the two corpus stores.
func NewCorpusFilter(catalog storage.CatalogStore, exclusions storage.ExclusionStore) *CorpusFilter {
	return &CorpusFilter{
		catalog:    catalog,
		exclusions: exclusions,
		chunkSize:  DefaultFilterChunkSize,
	}
}

// WithChunkSize overrides the membership-query chunk size.
func (f *CorpusFilter) WithChunkSize(n int) *CorpusFilter {
	if n > 0 {
		f.chunkSize = n
	}
	return f
}

// Filter returns candidates in neither the catalog nor the ledger.
// A symbol in the exclusion ledger is only re-admitted when it appears
// in the operator-supplied overrides set; cataloged symbols are never
// re-validated. The second return value counts skipped candidates.
func (f *CorpusFilter) Filter(ctx context.Context, candidates []domain.Candidate, overrides map[string]bool) ([]domain.Candidate, int, error) {
	if len(candidates) == 0 {
		return nil, 0, nil
	}

	symbols := make([]string, 0, len(candidates))
	for _, c := range candidates {
		symbols = append(symbols, c.Symbol)
	}

	inCatalog := make(map[string]bool)
	inLedger := make(map[string]bool)

	for start := 0; start < len(symbols); start += f.chunkSize {
		end := start + f.chunkSize
		if end > len(symbols) {
			end = len(symbols)
		}
		chunk := symbols[start:end]

		known, err := f.catalog.ExistingSymbols(ctx, chunk)
		if err != nil {
			return nil, 0, fmt.Errorf("query catalog membership: %w", err)
		}
		for _, sym := range known {
			inCatalog[sym] = true
		}

		excluded, err := f.exclusions.ExistingSymbols(ctx, chunk)
		if err != nil {
			return nil, 0, fmt.Errorf("query exclusion membership: %w", err)
		}
		for _, sym := range excluded {
			inLedger[sym] = true
		}
	}

	var fresh []domain.Candidate
	skipped := 0
	for _, c := range candidates {
		if inCatalog[c.Symbol] {
			skipped++
			continue
		}
		if inLedger[c.Symbol] && !overrides[c.Symbol] {
			skipped++
			continue
		}
		fresh = append(fresh, c)
	}

	return fresh, skipped, nil
}
