package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nguyenngoctoan/high-yield-dividend-analysis-sub005/internal/domain"
	"github.com/nguyenngoctoan/high-yield-dividend-analysis-sub005/internal/provider"
)

// Policy holds the acceptance thresholds. These are operational
// constants, configurable rather than hard requirements.
type Policy struct {
	PriceRecency     time.Duration // default 7 days
	DividendLookback time.Duration // default 365 days
}

// DefaultPolicy returns the observed operational thresholds.
func DefaultPolicy() Policy {
	return Policy{
		PriceRecency:     7 * 24 * time.Hour,
		DividendLookback: 365 * 24 * time.Hour,
	}
}

// Verdict is the outcome of validating one candidate.
type Verdict struct {
	Candidate domain.Candidate
	Accepted  bool
	Reason    string // populated on rejection, names every failed check
	Snapshot  *provider.Snapshot
}

// Validator applies the acceptance predicate to candidates:
// ACCEPT if the latest price is recent OR a dividend was paid within the
// lookback window. The OR is deliberate: thinly traded names may lack
// recent ticks yet still pay dividends, and vice versa.
type Validator struct {
	provider provider.Provider
	policy   Policy
	clock    func() time.Time
}

// NewValidator creates a validator over a provider (usually a Chain).
func NewValidator(p provider.Provider, policy Policy) *Validator {
	return &Validator{
		provider: p,
		policy:   policy,
		clock:    func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the validator's time source.
func (v *Validator) WithClock(clock func() time.Time) *Validator {
	v.clock = clock
	return v
}

// Validate fetches the candidate's snapshot and applies the predicate.
// Quota and transient errors are returned to the caller (the scheduler
// pauses on quota; transient failures leave the symbol for the next run).
// A definitive not-found is a terminal rejection, not an error.
func (v *Validator) Validate(ctx context.Context, c domain.Candidate) (*Verdict, error) {
	snap, err := v.provider.Snapshot(ctx, c.Symbol)
	if err != nil {
		if errors.Is(err, provider.ErrSymbolNotFound) {
			return &Verdict{
				Candidate: c,
				Accepted:  false,
				Reason:    fmt.Sprintf("symbol not found or delisted at provider (source: %s)", c.Source),
			}, nil
		}
		return nil, err
	}

	now := v.clock()

	if v.hasRecentPrice(snap, now) || v.hasRecentDividend(snap, now) {
		return &Verdict{Candidate: c, Accepted: true, Snapshot: snap}, nil
	}

	// Reject reason names both failed predicate halves for the audit trail.
	reason := fmt.Sprintf(
		"no price update within %d days and no dividend within %d days (source: %s)",
		int(v.policy.PriceRecency.Hours()/24),
		int(v.policy.DividendLookback.Hours()/24),
		c.Source,
	)
	return &Verdict{Candidate: c, Accepted: false, Reason: reason, Snapshot: snap}, nil
}

// hasRecentPrice reports whether the latest price tick is inside the
// recency window.
func (v *Validator) hasRecentPrice(snap *provider.Snapshot, now time.Time) bool {
	if snap.Quote == nil {
		return false
	}
	asOf := time.UnixMilli(snap.Quote.AsOf)
	return now.Sub(asOf) <= v.policy.PriceRecency
}

// hasRecentDividend reports whether any dividend ex-date falls inside
// the lookback window. Unparseable ex-dates are ignored here; the
// dividend refresh path logs them.
func (v *Validator) hasRecentDividend(snap *provider.Snapshot, now time.Time) bool {
	cutoff := now.Add(-v.policy.DividendLookback)
	for _, d := range snap.Dividends {
		exDate, err := domain.ParseDate(d.ExDate)
		if err != nil {
			continue
		}
		if !exDate.Before(cutoff) {
			return true
		}
	}
	return false
}
