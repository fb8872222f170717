package normalization

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nguyenngoctoan/high-yield-dividend-analysis-sub005/internal/domain"
	"github.com/nguyenngoctoan/high-yield-dividend-analysis-sub005/internal/provider"
	"github.com/nguyenngoctoan/high-yield-dividend-analysis-sub005/internal/storage"
)

// Runner refreshes dividend and split history for catalog members.
// Each symbol is handled independently: one provider snapshot, then
// upserts keyed on (symbol, ex_date) so re-refreshing is a no-op apart
// from touched timestamps.
type Runner struct {
	provider   provider.Provider
	normalizer *Normalizer
	dividends  storage.DividendStore
	splits     storage.SplitStore
	history    storage.DividendHistoryStore // optional analytical sink
	logger     *log.Logger
	clock      func() time.Time
}

// RunnerOptions configures a Runner.
type RunnerOptions struct {
	Provider   provider.Provider
	Normalizer *Normalizer
	Dividends  storage.DividendStore
	Splits     storage.SplitStore
	History    storage.DividendHistoryStore
	Logger     *log.Logger
}

// NewRunner creates a Runner.
func NewRunner(opts RunnerOptions) *Runner {
	normalizer := opts.Normalizer
	if normalizer == nil {
		normalizer = NewNormalizer(DefaultYieldCeiling)
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		provider:   opts.Provider,
		normalizer: normalizer,
		dividends:  opts.Dividends,
		splits:     opts.Splits,
		history:    opts.History,
		logger:     logger,
		clock:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the runner's time source.
func (r *Runner) WithClock(clock func() time.Time) *Runner {
	r.clock = clock
	return r
}

// RefreshResult counts what one symbol's refresh did.
type RefreshResult struct {
	Dividends        int // records upserted
	Splits           int // new split events recorded
	SkippedMalformed int // provider events skipped as unusable
	Flagged          int // records carrying a review note
}

// RefreshSymbol fetches the symbol's snapshot and persists its dividend
// and split history. Provider errors (quota, not-found, transient)
// propagate unchanged for the caller's taxonomy handling.
func (r *Runner) RefreshSymbol(ctx context.Context, symbol string) (*RefreshResult, error) {
	snap, err := r.provider.Snapshot(ctx, symbol)
	if err != nil {
		return nil, err
	}

	now := r.clock().UnixMilli()
	result := &RefreshResult{}

	var price *decimal.Decimal
	if snap.Quote != nil {
		p := snap.Quote.Price
		price = &p
	}

	records := make([]*domain.DividendRecord, 0, len(snap.Dividends))
	for _, raw := range snap.Dividends {
		rec, err := r.normalizer.Normalize(symbol, raw, price, now)
		if err != nil {
			result.SkippedMalformed++
			r.logger.Printf("WARN skipping malformed dividend for %s: %v", symbol, err)
			continue
		}
		if rec.ReviewNote != nil {
			result.Flagged++
			r.logger.Printf("WARN flagged dividend %s ex %s: %s", symbol, rec.ExDate, *rec.ReviewNote)
		}
		records = append(records, rec)
	}

	if len(records) > 0 {
		if err := r.dividends.UpsertBulk(ctx, records); err != nil {
			return result, fmt.Errorf("upsert dividends for %s: %w", symbol, err)
		}
		result.Dividends = len(records)
	}

	for _, raw := range snap.Splits {
		event, err := r.splitEvent(symbol, raw, now)
		if err != nil {
			result.SkippedMalformed++
			r.logger.Printf("WARN skipping malformed split for %s: %v", symbol, err)
			continue
		}
		err = r.splits.Insert(ctx, event)
		switch {
		case err == nil:
			result.Splits++
		case errors.Is(err, storage.ErrDuplicateKey):
			// Already ingested on a previous refresh.
		default:
			return result, fmt.Errorf("record split for %s: %w", symbol, err)
		}
	}

	if r.history != nil && len(records) > 0 {
		points := make([]*domain.DividendHistoryPoint, 0, len(records))
		for _, rec := range records {
			points = append(points, &domain.DividendHistoryPoint{
				Symbol:     rec.Symbol,
				ExDate:     rec.ExDate,
				Amount:     rec.Amount,
				Provenance: rec.Provenance,
				IngestedAt: now,
			})
		}
		if err := r.history.InsertBulk(ctx, points); err != nil {
			// The relational write already succeeded; analytics lag is
			// tolerable and the next refresh re-ingests.
			r.logger.Printf("WARN history sink insert failed for %s: %v", symbol, err)
		}
	}

	return result, nil
}

func (r *Runner) splitEvent(symbol string, raw provider.Split, now int64) (*domain.SplitEvent, error) {
	if _, err := domain.ParseDate(raw.Date); err != nil {
		return nil, fmt.Errorf("split date %q: %w", raw.Date, err)
	}
	ratio, err := domain.ParseSplitRatio(raw.Ratio)
	if err != nil {
		return nil, err
	}
	return &domain.SplitEvent{
		Symbol:    symbol,
		SplitDate: raw.Date,
		Ratio:     ratio,
		RawRatio:  raw.Ratio,
	}, nil
}
