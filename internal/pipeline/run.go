package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"

	"github.com/nguyenngoctoan/high-yield-dividend-analysis-sub005/internal/discovery"
	"github.com/nguyenngoctoan/high-yield-dividend-analysis-sub005/internal/domain"
	"github.com/nguyenngoctoan/high-yield-dividend-analysis-sub005/internal/observability"
	"github.com/nguyenngoctoan/high-yield-dividend-analysis-sub005/internal/provider"
	"github.com/nguyenngoctoan/high-yield-dividend-analysis-sub005/internal/scheduler"
)

// DefaultConcurrency bounds the validation worker pool. Sized to the
// provider's concurrency ceiling, not the host's.
const DefaultConcurrency = 4

// DiscoveryPipeline runs the phases in order: discover, filter,
// validate (batched through the scheduler), write. Re-running after a
// crash or partial completion is safe: the corpus filter skips symbols
// already committed, and every write is an upsert.
type DiscoveryPipeline struct {
	aggregator  *discovery.Aggregator
	filter      *CorpusFilter
	validator   *Validator
	writer      *CatalogWriter
	sched       *scheduler.BatchScheduler
	concurrency int
	metrics     *observability.Metrics // optional
	logger      *log.Logger
}

// Options configures a DiscoveryPipeline.
type Options struct {
	Aggregator  *discovery.Aggregator
	Filter      *CorpusFilter
	Validator   *Validator
	Writer      *CatalogWriter
	Scheduler   *scheduler.BatchScheduler
	Concurrency int
	Metrics     *observability.Metrics
	Logger      *log.Logger
}

// New creates a DiscoveryPipeline.
func New(opts Options) *DiscoveryPipeline {
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &DiscoveryPipeline{
		aggregator:  opts.Aggregator,
		filter:      opts.Filter,
		validator:   opts.Validator,
		writer:      opts.Writer,
		sched:       opts.Scheduler,
		concurrency: concurrency,
		metrics:     opts.Metrics,
		logger:      logger,
	}
}

// RunResult aggregates per-candidate outcomes into run-level counters.
type RunResult struct {
	Discovered       int // normalized, deduplicated candidates
	Malformed        int // tuples dropped during normalization
	AlreadyProcessed int // present in catalog or ledger, skipped
	Accepted         int // written to the catalog
	Excluded         int // written to the exclusion ledger
	Failed           int // transient validation failures, left for next run
	Skipped          int // never dispatched (stop request or quota limit)
}

// Stop requests a graceful halt between batches.
func (p *DiscoveryPipeline) Stop() {
	p.sched.Stop()
}

// Run executes one discovery run. The returned error is non-nil only
// for unrecoverable infrastructure failures; per-candidate problems are
// absorbed into the counters.
func (p *DiscoveryPipeline) Run(ctx context.Context, overrides map[string]bool) (*RunResult, error) {
	result := &RunResult{}

	p.logger.Printf("phase 1: discovering candidates from %s", "all sources")
	candidates, stats, err := p.aggregator.Discover(ctx)
	if err != nil {
		return result, fmt.Errorf("discovery phase: %w", err)
	}
	result.Discovered = len(candidates)
	result.Malformed = stats.Malformed
	p.recordDiscovery(stats)
	p.logger.Printf("  %d candidates (%d malformed dropped, %d duplicates collapsed, %d sources failed)",
		len(candidates), stats.Malformed, stats.Duplicates, stats.FailedAdapters)

	p.logger.Printf("phase 2: filtering against catalog and exclusion ledger")
	fresh, known, err := p.filter.Filter(ctx, candidates, overrides)
	if err != nil {
		return result, fmt.Errorf("filter phase: %w", err)
	}
	result.AlreadyProcessed = known
	if p.metrics != nil {
		p.metrics.AlreadyProcessed.Add(float64(known))
	}
	p.logger.Printf("  %d already processed, %d to validate", known, len(fresh))

	if len(fresh) == 0 {
		p.logSummary(result)
		return result, nil
	}

	bySymbol := make(map[string]domain.Candidate, len(fresh))
	symbols := make([]string, 0, len(fresh))
	for _, c := range fresh {
		bySymbol[c.Symbol] = c
		symbols = append(symbols, c.Symbol)
	}

	p.logger.Printf("phase 3: validating %d candidates", len(symbols))
	remaining, err := p.sched.Run(ctx, symbols, func(ctx context.Context, batch []string) ([]string, error) {
		return p.processBatch(ctx, batch, bySymbol, result)
	})
	result.Skipped = len(remaining)
	if err != nil {
		return result, fmt.Errorf("validation phase: %w", err)
	}

	p.logSummary(result)
	return result, nil
}

// processBatch validates one batch across the worker pool and commits
// its verdicts before returning, so earlier batches stay persisted no
// matter how the run ends. Symbols that hit a quota error are returned
// for the scheduler to retry after its cooldown; completed verdicts in
// the same batch are retained.
func (p *DiscoveryPipeline) processBatch(ctx context.Context, batch []string, bySymbol map[string]domain.Candidate, result *RunResult) ([]string, error) {
	type outcome struct {
		symbol  string
		verdict *Verdict
		err     error
	}

	jobs := make(chan string)
	outcomes := make(chan outcome, len(batch))

	workers := p.concurrency
	if workers > len(batch) {
		workers = len(batch)
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for sym := range jobs {
				v, err := p.validator.Validate(ctx, bySymbol[sym])
				outcomes <- outcome{symbol: sym, verdict: v, err: err}
			}
		}()
	}
	for _, sym := range batch {
		jobs <- sym
	}
	close(jobs)
	wg.Wait()
	close(outcomes)

	var verdicts []*Verdict
	var quotaHit []string
	var quotaErr error

	for o := range outcomes {
		switch {
		case o.err == nil:
			verdicts = append(verdicts, o.verdict)
		case errors.Is(o.err, provider.ErrQuotaExceeded):
			quotaHit = append(quotaHit, o.symbol)
			quotaErr = o.err
		default:
			result.Failed++
			if p.metrics != nil {
				p.metrics.ValidationFailures.Inc()
			}
			p.logger.Printf("WARN validation of %s failed, will retry next run: %v", o.symbol, o.err)
		}
	}

	accepted, err := p.writer.CommitAccepted(ctx, verdicts)
	result.Accepted += accepted
	if p.metrics != nil {
		p.metrics.CandidatesAccepted.Add(float64(accepted))
	}
	if err != nil {
		return quotaHit, err
	}

	rejected, err := p.writer.CommitRejected(ctx, verdicts)
	result.Excluded += rejected
	if p.metrics != nil {
		p.metrics.CandidatesExcluded.Add(float64(rejected))
	}
	if err != nil {
		return quotaHit, err
	}

	if quotaErr != nil {
		if p.metrics != nil {
			p.metrics.QuotaPauses.Inc()
		}
		sort.Strings(quotaHit)
	}
	return quotaHit, quotaErr
}

// recordDiscovery mirrors aggregation stats into Prometheus.
func (p *DiscoveryPipeline) recordDiscovery(stats *discovery.Stats) {
	if p.metrics == nil {
		return
	}
	for source, n := range stats.BySource {
		p.metrics.CandidatesDiscovered.WithLabelValues(source.String()).Add(float64(n))
	}
	p.metrics.AdapterFailures.Add(float64(stats.FailedAdapters))
	p.metrics.MalformedCandidates.Add(float64(stats.Malformed))
}

func (p *DiscoveryPipeline) logSummary(r *RunResult) {
	p.logger.Printf("run complete: discovered=%d already_processed=%d accepted=%d excluded=%d failed=%d skipped=%d malformed=%d",
		r.Discovered, r.AlreadyProcessed, r.Accepted, r.Excluded, r.Failed, r.Skipped, r.Malformed)
}
