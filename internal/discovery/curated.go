package discovery

import (
	"context"

	"github.com/nguyenngoctoan/high-yield-dividend-analysis-sub005/internal/domain"
)

// CuratedAdapter yields an operator-maintained static symbol list.
type CuratedAdapter struct {
	name     string
	symbols  []string
	exchange string
}

// NewCuratedAdapter creates an adapter over a fixed symbol list.
// exchange applies to every symbol that carries no suffix of its own.
func NewCuratedAdapter(name string, symbols []string, exchange string) *CuratedAdapter {
	return &CuratedAdapter{name: name, symbols: symbols, exchange: exchange}
}

// Name identifies the adapter in logs.
func (a *CuratedAdapter) Name() string {
	return a.name
}

// Discover returns the curated list.
func (a *CuratedAdapter) Discover(_ context.Context) ([]RawCandidate, error) {
	candidates := make([]RawCandidate, 0, len(a.symbols))
	for _, sym := range a.symbols {
		candidates = append(candidates, RawCandidate{
			Symbol:   sym,
			Exchange: a.exchange,
			Source:   domain.SourceCurated,
		})
	}
	return candidates, nil
}

// Compile-time interface check.
var _ Adapter = (*CuratedAdapter)(nil)
