// Package scheduler throttles outbound provider work into fixed-size
// batches tuned to the provider's requests-per-minute ceiling.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/nguyenngoctoan/high-yield-dividend-analysis-sub005/internal/provider"
)

// Default scheduling values.
const (
	DefaultBatchSize       = 60
	DefaultInterBatchDelay = 1 * time.Minute
	DefaultQuotaCooldown   = 5 * time.Minute
	DefaultMaxQuotaPauses  = 10
)

// ProcessFunc handles one batch of symbols. It returns the symbols it
// did not finish — typically the remainder after a quota signal — and an
// error. A quota error (provider.ErrQuotaExceeded) pauses the scheduler;
// completed work inside the batch is retained by the caller.
type ProcessFunc func(ctx context.Context, batch []string) (unprocessed []string, err error)

// BatchScheduler dispatches symbols in fixed-size batches with an
// inter-batch delay. On quota-exceeded it cools down and resumes from
// where it left off instead of aborting.
type BatchScheduler struct {
	batchSize       int
	interBatchDelay time.Duration
	quotaCooldown   time.Duration
	maxQuotaPauses  int
	logger          *log.Logger
	stopped         atomic.Bool
}

// Options configures a BatchScheduler. Zero values take defaults;
// DisableDelays turns all sleeping off for tests.
type Options struct {
	BatchSize       int
	InterBatchDelay time.Duration
	QuotaCooldown   time.Duration
	MaxQuotaPauses  int
	Logger          *log.Logger
	DisableDelays   bool
}

// New creates a BatchScheduler.
func New(opts Options) *BatchScheduler {
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	interBatchDelay := opts.InterBatchDelay
	if interBatchDelay == 0 {
		interBatchDelay = DefaultInterBatchDelay
	}
	quotaCooldown := opts.QuotaCooldown
	if quotaCooldown == 0 {
		quotaCooldown = DefaultQuotaCooldown
	}
	maxQuotaPauses := opts.MaxQuotaPauses
	if maxQuotaPauses <= 0 {
		maxQuotaPauses = DefaultMaxQuotaPauses
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	if opts.DisableDelays {
		interBatchDelay = 0
		quotaCooldown = 0
	}

	return &BatchScheduler{
		batchSize:       batchSize,
		interBatchDelay: interBatchDelay,
		quotaCooldown:   quotaCooldown,
		maxQuotaPauses:  maxQuotaPauses,
		logger:          logger,
	}
}

// Stop requests a graceful halt. The flag is checked between batches,
// so an in-flight batch always finishes before the run stops.
func (s *BatchScheduler) Stop() {
	s.stopped.Store(true)
}

// Run dispatches symbols through fn batch by batch. It returns the
// symbols that were never processed (non-empty after Stop, cancellation,
// or too many quota pauses) and an error for non-graceful endings.
func (s *BatchScheduler) Run(ctx context.Context, symbols []string, fn ProcessFunc) ([]string, error) {
	pending := symbols
	quotaPauses := 0
	firstBatch := true

	for len(pending) > 0 {
		if s.stopped.Load() {
			s.logger.Printf("scheduler stopped, %d symbols left unprocessed", len(pending))
			return pending, nil
		}
		if err := ctx.Err(); err != nil {
			return pending, err
		}

		if !firstBatch {
			if err := s.sleep(ctx, s.interBatchDelay); err != nil {
				return pending, err
			}
		}
		firstBatch = false

		n := s.batchSize
		if n > len(pending) {
			n = len(pending)
		}
		batch := pending[:n]
		rest := pending[n:]

		unprocessed, err := fn(ctx, batch)
		switch {
		case err == nil:
			pending = append(unprocessed, rest...)
		case errors.Is(err, provider.ErrQuotaExceeded):
			quotaPauses++
			if quotaPauses > s.maxQuotaPauses {
				pending = append(unprocessed, rest...)
				return pending, fmt.Errorf("quota pause limit (%d) reached: %w", s.maxQuotaPauses, err)
			}
			s.logger.Printf("provider quota exceeded, pausing %v before resuming (%d/%d pauses)",
				s.quotaCooldown, quotaPauses, s.maxQuotaPauses)
			pending = append(unprocessed, rest...)
			if err := s.sleep(ctx, s.quotaCooldown); err != nil {
				return pending, err
			}
		default:
			// Infrastructure failure: surface it, everything already
			// committed by earlier batches stays committed.
			pending = append(unprocessed, rest...)
			return pending, err
		}
	}

	return nil, nil
}

// sleep waits for d or until the context is cancelled.
func (s *BatchScheduler) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
