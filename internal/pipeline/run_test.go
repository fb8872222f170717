package pipeline

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"

	"github.com/nguyenngoctoan/high-yield-dividend-analysis-sub005/internal/discovery"
	"github.com/nguyenngoctoan/high-yield-dividend-analysis-sub005/internal/domain"
	"github.com/nguyenngoctoan/high-yield-dividend-analysis-sub005/internal/provider"
	"github.com/nguyenngoctoan/high-yield-dividend-analysis-sub005/internal/provider/stub"
	"github.com/nguyenngoctoan/high-yield-dividend-analysis-sub005/internal/scheduler"
	"github.com/nguyenngoctoan/high-yield-dividend-analysis-sub005/internal/storage"
	"github.com/nguyenngoctoan/high-yield-dividend-analysis-sub005/internal/storage/memory"
)

// listAdapter yields a fixed screener result set.
type listAdapter struct {
	symbols []string
}

func (a *listAdapter) Name() string { return "screener" }

func (a *listAdapter) Discover(_ context.Context) ([]discovery.RawCandidate, error) {
	raw := make([]discovery.RawCandidate, 0, len(a.symbols))
	for _, sym := range a.symbols {
		raw = append(raw, discovery.RawCandidate{
			Symbol: sym, Exchange: "NYSE", Source: domain.SourceScreener,
		})
	}
	return raw, nil
}

type pipelineFixture struct {
	pipeline   *DiscoveryPipeline
	provider   *stub.Provider
	catalog    *memory.CatalogStore
	exclusions *memory.ExclusionStore
}

func newFixture(symbols []string, batchSize, concurrency int) *pipelineFixture {
	quiet := log.New(io.Discard, "", 0)
	p := stub.New("stub")
	catalog := memory.NewCatalogStore()
	exclusions := memory.NewExclusionStore()

	agg := discovery.NewAggregator(
		[]discovery.Adapter{&listAdapter{symbols: symbols}},
		discovery.WithLogger(quiet),
		discovery.WithClock(testClock()),
	)
	sched := scheduler.New(scheduler.Options{
		BatchSize:     batchSize,
		Logger:        quiet,
		DisableDelays: true,
	})

	return &pipelineFixture{
		pipeline: New(Options{
			Aggregator:  agg,
			Filter:      NewCorpusFilter(catalog, exclusions),
			Validator:   NewValidator(p, DefaultPolicy()).WithClock(testClock()),
			Writer:      NewCatalogWriter(catalog, exclusions).WithClock(testClock()),
			Scheduler:   sched,
			Concurrency: concurrency,
			Logger:      quiet,
		}),
		provider:   p,
		catalog:    catalog,
		exclusions: exclusions,
	}
}

func TestPipeline_MixedVerdicts(t *testing.T) {
	fx := newFixture([]string{"AAPL", "YYYY", "ZZZZ"}, 60, 2)
	fx.provider.SetSnapshot("AAPL", &provider.Snapshot{
		Symbol: "AAPL", Exchange: "NASDAQ", CompanyName: "Apple Inc", Quote: quoteAt(2),
	})
	fx.provider.SetSnapshot("YYYY", &provider.Snapshot{
		Symbol: "YYYY", Quote: quoteAt(30), Dividends: []provider.Dividend{dividendAt(400)},
	})
	// ZZZZ is unknown to the stub: definitive not-found.

	result, err := fx.pipeline.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.Accepted != 1 || result.Excluded != 2 {
		t.Fatalf("accepted=%d excluded=%d, want 1/2", result.Accepted, result.Excluded)
	}

	entry, err := fx.catalog.GetBySymbol(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("AAPL should be cataloged: %v", err)
	}
	// Catalog enrichment comes from the provider snapshot.
	if entry.Exchange != "NASDAQ" || entry.CompanyName == nil || *entry.CompanyName != "Apple Inc" {
		t.Errorf("entry not enriched from snapshot: %+v", entry)
	}

	for _, sym := range []string{"YYYY", "ZZZZ"} {
		rec, err := fx.exclusions.GetBySymbol(context.Background(), sym)
		if err != nil {
			t.Fatalf("%s should be in the exclusion ledger: %v", sym, err)
		}
		if rec.Reason == "" {
			t.Errorf("%s exclusion has no reason", sym)
		}
		if rec.ValidationAttempts != 1 {
			t.Errorf("%s attempts = %d, want 1", sym, rec.ValidationAttempts)
		}
	}
}

func TestPipeline_RerunIsIdempotent(t *testing.T) {
	fx := newFixture([]string{"AAPL", "YYYY"}, 60, 2)
	fx.provider.SetSnapshot("AAPL", &provider.Snapshot{Symbol: "AAPL", Quote: quoteAt(1)})
	fx.provider.SetSnapshot("YYYY", &provider.Snapshot{Symbol: "YYYY", Quote: quoteAt(30)})

	first, err := fx.pipeline.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	if first.Accepted != 1 || first.Excluded != 1 {
		t.Fatalf("first run accepted=%d excluded=%d, want 1/1", first.Accepted, first.Excluded)
	}
	callsAfterFirst := fx.provider.Calls()

	second, err := fx.pipeline.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if second.Accepted != 0 || second.Excluded != 0 {
		t.Errorf("second run accepted=%d excluded=%d, want 0/0", second.Accepted, second.Excluded)
	}
	if second.AlreadyProcessed != 2 {
		t.Errorf("second run already_processed = %d, want 2", second.AlreadyProcessed)
	}
	// No provider calls on the rerun: the filter short-circuits them.
	if fx.provider.Calls() != callsAfterFirst {
		t.Errorf("rerun made %d extra provider calls", fx.provider.Calls()-callsAfterFirst)
	}
}

func TestPipeline_QuotaPauseAndResume(t *testing.T) {
	symbols := []string{"AAA", "BBB", "CCC", "DDD"}
	fx := newFixture(symbols, 2, 1)
	for _, sym := range symbols {
		fx.provider.SetSnapshot(sym, &provider.Snapshot{Symbol: sym, Quote: quoteAt(1)})
	}
	// The third call hits the quota once; the scheduler cools down and
	// retries the same symbol.
	fx.provider.FailQuotaOnce(3)

	result, err := fx.pipeline.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	// Every symbol ends up processed despite the pause, nothing double-counted.
	if result.Accepted != len(symbols) {
		t.Errorf("accepted = %d, want %d", result.Accepted, len(symbols))
	}
	if result.Skipped != 0 {
		t.Errorf("skipped = %d, want 0", result.Skipped)
	}
	for _, sym := range symbols {
		if _, err := fx.catalog.GetBySymbol(context.Background(), sym); err != nil {
			t.Errorf("%s missing from catalog after resume: %v", sym, err)
		}
	}
}

func TestPipeline_OverrideRevalidatesAndBumpsAttempts(t *testing.T) {
	fx := newFixture([]string{"YYYY"}, 60, 1)
	fx.provider.SetSnapshot("YYYY", &provider.Snapshot{Symbol: "YYYY", Quote: quoteAt(30)})

	if _, err := fx.pipeline.Run(context.Background(), nil); err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	if _, err := fx.pipeline.Run(context.Background(), map[string]bool{"YYYY": true}); err != nil {
		t.Fatalf("override run failed: %v", err)
	}

	rec, err := fx.exclusions.GetBySymbol(context.Background(), "YYYY")
	if err != nil {
		t.Fatalf("YYYY should remain excluded: %v", err)
	}
	if rec.ValidationAttempts != 2 {
		t.Errorf("attempts = %d, want 2 after re-validation", rec.ValidationAttempts)
	}
}

func TestPipeline_TransientFailureLeavesSymbolForNextRun(t *testing.T) {
	fx := newFixture([]string{"AAPL", "FLAKY"}, 60, 1)
	fx.provider.SetSnapshot("AAPL", &provider.Snapshot{Symbol: "AAPL", Quote: quoteAt(1)})
	fx.provider.SetError("FLAKY", errors.New("http 503"))

	result, err := fx.pipeline.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.Failed != 1 {
		t.Errorf("failed = %d, want 1", result.Failed)
	}
	if result.Accepted != 1 {
		t.Errorf("accepted = %d, want 1", result.Accepted)
	}

	// The flaky symbol landed in neither corpus, so the next run retries it.
	if _, err := fx.catalog.GetBySymbol(context.Background(), "FLAKY"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("FLAKY should not be cataloged, got %v", err)
	}
	if _, err := fx.exclusions.GetBySymbol(context.Background(), "FLAKY"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("FLAKY should not be excluded, got %v", err)
	}
}
