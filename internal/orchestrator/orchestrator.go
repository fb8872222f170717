// Package orchestrator selects and drives a pipeline run mode.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/nguyenngoctoan/high-yield-dividend-analysis-sub005/internal/normalization"
	"github.com/nguyenngoctoan/high-yield-dividend-analysis-sub005/internal/observability"
	"github.com/nguyenngoctoan/high-yield-dividend-analysis-sub005/internal/pipeline"
	"github.com/nguyenngoctoan/high-yield-dividend-analysis-sub005/internal/provider"
	"github.com/nguyenngoctoan/high-yield-dividend-analysis-sub005/internal/scheduler"
	"github.com/nguyenngoctoan/high-yield-dividend-analysis-sub005/internal/storage"
)

// Mode selects what a run does.
type Mode string

const (
	// ModeDiscovery runs symbol discovery and validation.
	ModeDiscovery Mode = "discovery"
	// ModeDividendUpdate refreshes dividend and split history for
	// every catalog member.
	ModeDividendUpdate Mode = "dividend-update"
	// ModePriceUpdate is reserved for the bars ingestion service and is
	// rejected here.
	ModePriceUpdate Mode = "price-update"
)

// ParseMode validates a mode string from the command line.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeDiscovery, ModeDividendUpdate, ModePriceUpdate:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown mode %q (want discovery, dividend-update or price-update)", s)
	}
}

// Orchestrator wires the pipeline components behind a single Run call.
type Orchestrator struct {
	discovery *pipeline.DiscoveryPipeline
	refresher *normalization.Runner
	catalog   storage.CatalogStore
	sched     *scheduler.BatchScheduler
	metrics   *observability.Metrics // optional
	logger    *log.Logger
}

// Options configures an Orchestrator.
type Options struct {
	Discovery *pipeline.DiscoveryPipeline
	Refresher *normalization.Runner
	Catalog   storage.CatalogStore
	Scheduler *scheduler.BatchScheduler
	Metrics   *observability.Metrics
	Logger    *log.Logger
}

// New creates an Orchestrator.
func New(opts Options) *Orchestrator {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Orchestrator{
		discovery: opts.Discovery,
		refresher: opts.Refresher,
		catalog:   opts.Catalog,
		sched:     opts.Scheduler,
		metrics:   opts.Metrics,
		logger:    logger,
	}
}

// Stop requests a graceful halt of the running mode between batches.
func (o *Orchestrator) Stop() {
	o.sched.Stop()
	if o.discovery != nil {
		o.discovery.Stop()
	}
}

// Summary is the mode-independent outcome of one run.
type Summary struct {
	Mode      Mode
	Discovery *pipeline.RunResult // set in discovery mode
	Refresh   *RefreshSummary     // set in dividend-update mode
}

// RefreshSummary aggregates per-symbol refresh results.
type RefreshSummary struct {
	Symbols          int
	Dividends        int
	Splits           int
	SkippedMalformed int
	Flagged          int
	Failed           int
	Skipped          int // left unprocessed by stop or quota limit
}

// Run executes one run of the given mode. overrides re-admits excluded
// symbols in discovery mode and is ignored otherwise.
func (o *Orchestrator) Run(ctx context.Context, mode Mode, overrides map[string]bool) (*Summary, error) {
	start := time.Now()
	summary := &Summary{Mode: mode}
	var err error

	switch mode {
	case ModeDiscovery:
		summary.Discovery, err = o.discovery.Run(ctx, overrides)
	case ModeDividendUpdate:
		summary.Refresh, err = o.runDividendUpdate(ctx)
	case ModePriceUpdate:
		err = errors.New("price-update is handled by the bars ingestion service, not this tool")
	default:
		err = fmt.Errorf("unknown mode %q", mode)
	}

	o.record(mode, start, err)
	return summary, err
}

// runDividendUpdate refreshes every catalog member through the
// scheduler. Within a batch symbols are refreshed sequentially; the
// provider rate ceiling is the bottleneck, not CPU.
func (o *Orchestrator) runDividendUpdate(ctx context.Context) (*RefreshSummary, error) {
	symbols, err := o.catalog.ListSymbols(ctx)
	if err != nil {
		return nil, fmt.Errorf("list catalog symbols: %w", err)
	}
	o.logger.Printf("refreshing dividends for %d catalog members", len(symbols))

	summary := &RefreshSummary{Symbols: len(symbols)}

	remaining, err := o.sched.Run(ctx, symbols, func(ctx context.Context, batch []string) ([]string, error) {
		for i, sym := range batch {
			res, err := o.refresher.RefreshSymbol(ctx, sym)
			switch {
			case err == nil:
				summary.Dividends += res.Dividends
				summary.Splits += res.Splits
				summary.SkippedMalformed += res.SkippedMalformed
				summary.Flagged += res.Flagged
				o.recordRefresh(res)
			case errors.Is(err, provider.ErrQuotaExceeded):
				return batch[i:], err
			case errors.Is(err, provider.ErrSymbolNotFound):
				// Delisted since cataloging. Its history stays; discovery
				// exclusions are not this mode's business.
				summary.Failed++
				o.logger.Printf("WARN catalog member %s no longer known to providers", sym)
			default:
				summary.Failed++
				o.logger.Printf("WARN dividend refresh for %s failed: %v", sym, err)
			}
		}
		return nil, nil
	})
	summary.Skipped = len(remaining)
	if err != nil {
		return summary, fmt.Errorf("dividend refresh: %w", err)
	}

	o.logger.Printf("dividend refresh complete: symbols=%d dividends=%d splits=%d flagged=%d malformed=%d failed=%d skipped=%d",
		summary.Symbols, summary.Dividends, summary.Splits, summary.Flagged, summary.SkippedMalformed, summary.Failed, summary.Skipped)
	return summary, nil
}

func (o *Orchestrator) recordRefresh(res *normalization.RefreshResult) {
	if o.metrics == nil {
		return
	}
	o.metrics.DividendsUpserted.Add(float64(res.Dividends))
	o.metrics.SplitsRecorded.Add(float64(res.Splits))
	o.metrics.MalformedDividends.Add(float64(res.SkippedMalformed))
	o.metrics.DividendsFlagged.Add(float64(res.Flagged))
}

func (o *Orchestrator) record(mode Mode, start time.Time, err error) {
	if o.metrics == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	o.metrics.RunsTotal.WithLabelValues(string(mode), outcome).Inc()
	o.metrics.RunDuration.WithLabelValues(string(mode)).Observe(time.Since(start).Seconds())
}
