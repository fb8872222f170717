package discovery

import (
	"context"
	"log"
	"sort"
	"time"

	"github.com/nguyenngoctoan/high-yield-dividend-analysis-sub005/internal/domain"
)

// Stats summarizes one aggregation pass.
type Stats struct {
	BySource       map[domain.Source]int // raw tuples per source
	FailedAdapters int
	Malformed      int // tuples dropped by symbol normalization
	Duplicates     int // tuples collapsed by dedup
}

// Aggregator merges candidate tuples from all adapters into one
// deduplicated, normalized candidate set. A failing adapter is logged
// and skipped; a single bad source must never abort discovery.
type Aggregator struct {
	adapters []Adapter
	logger   *log.Logger
	clock    func() time.Time
}

// AggregatorOption configures an Aggregator.
type AggregatorOption func(*Aggregator)

// WithLogger sets the aggregator logger.
func WithLogger(logger *log.Logger) AggregatorOption {
	return func(a *Aggregator) {
		a.logger = logger
	}
}

// WithClock overrides the discovery timestamp source.
func WithClock(clock func() time.Time) AggregatorOption {
	return func(a *Aggregator) {
		a.clock = clock
	}
}

// NewAggregator creates an aggregator over the given adapters.
func NewAggregator(adapters []Adapter, opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{
		adapters: adapters,
		logger:   log.Default(),
		clock:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Discover queries every adapter and merges the results. The first
// source to mention a symbol wins; adapters run in registration order,
// so higher-trust sources should be registered first. Output is sorted
// by symbol for deterministic runs.
func (a *Aggregator) Discover(ctx context.Context) ([]domain.Candidate, *Stats, error) {
	stats := &Stats{BySource: make(map[domain.Source]int)}
	seen := make(map[string]struct{})
	var candidates []domain.Candidate

	now := a.clock().UnixMilli()

	for _, adapter := range a.adapters {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		raw, err := adapter.Discover(ctx)
		if err != nil {
			a.logger.Printf("WARN discovery source %s failed, continuing without it: %v", adapter.Name(), err)
			stats.FailedAdapters++
			continue
		}

		for _, rc := range raw {
			stats.BySource[rc.Source]++

			symbol, suffixExchange, ok := NormalizeSymbol(rc.Symbol)
			if !ok {
				a.logger.Printf("WARN skipping malformed symbol %q from %s", rc.Symbol, adapter.Name())
				stats.Malformed++
				continue
			}
			if _, dup := seen[symbol]; dup {
				stats.Duplicates++
				continue
			}
			seen[symbol] = struct{}{}

			exchange := rc.Exchange
			if exchange == "" {
				exchange = suffixExchange
			}
			candidates = append(candidates, domain.Candidate{
				Symbol:       symbol,
				Exchange:     exchange,
				Source:       rc.Source,
				DiscoveredAt: now,
			})
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Symbol < candidates[j].Symbol
	})

	return candidates, stats, nil
}
