package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/nguyenngoctoan/high-yield-dividend-analysis-sub005/internal/domain"
	"github.com/nguyenngoctoan/high-yield-dividend-analysis-sub005/internal/storage"
)

// CatalogWriter commits verdicts: accepted candidates to the catalog,
// rejected ones to the exclusion ledger. Every write is an upsert keyed
// on symbol — an insert-only path here once crashed on duplicate keys
// and silently dropped thousands of exclusions. Batches commit
// independently; a failure mid-run keeps all prior successful batches.
type CatalogWriter struct {
	catalog    storage.CatalogStore
	exclusions storage.ExclusionStore
	clock      func() time.Time
}

// NewCatalogWriter creates a writer over the two corpus stores.
func NewCatalogWriter(catalog storage.CatalogStore, exclusions storage.ExclusionStore) *CatalogWriter {
	return &CatalogWriter{
		catalog:    catalog,
		exclusions: exclusions,
		clock:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the writer's time source.
func (w *CatalogWriter) WithClock(clock func() time.Time) *CatalogWriter {
	w.clock = clock
	return w
}

// CommitAccepted upserts accepted candidates into the catalog.
// Returns how many entries were written before any failure.
func (w *CatalogWriter) CommitAccepted(ctx context.Context, verdicts []*Verdict) (int, error) {
	now := w.clock().UnixMilli()
	written := 0

	for _, v := range verdicts {
		if !v.Accepted {
			continue
		}
		entry := &domain.CatalogEntry{
			Symbol:    v.Candidate.Symbol,
			Exchange:  v.Candidate.Exchange,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if snap := v.Snapshot; snap != nil {
			if snap.Exchange != "" {
				entry.Exchange = snap.Exchange
			}
			if snap.CompanyName != "" {
				name := snap.CompanyName
				entry.CompanyName = &name
			}
			if snap.Sector != "" {
				sector := snap.Sector
				entry.Sector = &sector
			}
		}
		if err := w.catalog.Upsert(ctx, entry); err != nil {
			return written, fmt.Errorf("commit accepted %s: %w", v.Candidate.Symbol, err)
		}
		written++
	}

	return written, nil
}

// CommitRejected upserts rejected candidates into the exclusion ledger.
// Re-rejecting an already-excluded symbol updates the row and bumps its
// attempt counter; it never raises.
func (w *CatalogWriter) CommitRejected(ctx context.Context, verdicts []*Verdict) (int, error) {
	now := w.clock().UnixMilli()
	written := 0

	for _, v := range verdicts {
		if v.Accepted {
			continue
		}
		record := &domain.ExclusionRecord{
			Symbol:             v.Candidate.Symbol,
			Reason:             v.Reason,
			Source:             v.Candidate.Source,
			ExcludedAt:         now,
			ValidationAttempts: 1,
		}
		if err := w.exclusions.Upsert(ctx, record); err != nil {
			return written, fmt.Errorf("commit rejected %s: %w", v.Candidate.Symbol, err)
		}
		written++
	}

	return written, nil
}
