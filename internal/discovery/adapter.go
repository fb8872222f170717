// Package discovery finds candidate symbols from independent sources and
// merges them into a single deduplicated candidate set.
package discovery

import (
	"context"

	"github.com/nguyenngoctoan/high-yield-dividend-analysis-sub005/internal/domain"
)

// RawCandidate is an unnormalized tuple emitted by a source adapter.
type RawCandidate struct {
	Symbol   string
	Exchange string
	Source   domain.Source
}

// Adapter yields candidate tuples from one discovery source. Adapters
// can be added or removed without touching aggregation logic.
type Adapter interface {
	// Name identifies the adapter in logs.
	Name() string

	// Discover returns the adapter's current candidate tuples.
	Discover(ctx context.Context) ([]RawCandidate, error)
}
