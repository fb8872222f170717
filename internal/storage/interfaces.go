package storage

import (
	"context"

	"github.com/nguyenngoctoan/high-yield-dividend-analysis-sub005/internal/domain"
)

// CatalogStore provides access to the securities catalog.
// Writes are idempotent upserts keyed on symbol; duplicate keys are
// never an error path.
type CatalogStore interface {
	// Upsert inserts the entry or updates the existing row for its symbol.
	// CreatedAt of an existing row is preserved.
	Upsert(ctx context.Context, e *domain.CatalogEntry) error

	// GetBySymbol retrieves an entry. Returns ErrNotFound if not exists.
	GetBySymbol(ctx context.Context, symbol string) (*domain.CatalogEntry, error)

	// ExistingSymbols returns the subset of symbols present in the catalog.
	// Callers chunk large inputs; one call is one membership query.
	ExistingSymbols(ctx context.Context, symbols []string) ([]string, error)

	// ListSymbols returns all catalog symbols, ordered ascending.
	ListSymbols(ctx context.Context) ([]string, error)
}

// ExclusionStore provides access to the exclusion ledger.
type ExclusionStore interface {
	// Upsert inserts the record or, when the symbol is already excluded,
	// refreshes reason/source/excluded_at and increments validation_attempts.
	Upsert(ctx context.Context, r *domain.ExclusionRecord) error

	// GetBySymbol retrieves a record. Returns ErrNotFound if not exists.
	GetBySymbol(ctx context.Context, symbol string) (*domain.ExclusionRecord, error)

	// ExistingSymbols returns the subset of symbols present in the ledger.
	ExistingSymbols(ctx context.Context, symbols []string) ([]string, error)
}

// DividendStore provides access to persisted dividend records.
type DividendStore interface {
	// Upsert inserts the record or overwrites the existing row for
	// (symbol, ex_date). Overwriting is deliberate: a stale unadjusted
	// amount must be replaceable by the adjusted one.
	Upsert(ctx context.Context, d *domain.DividendRecord) error

	// UpsertBulk upserts all records, stopping at the first failure.
	UpsertBulk(ctx context.Context, records []*domain.DividendRecord) error

	// GetBySymbol retrieves all records for a symbol, ordered by ex_date ASC.
	GetBySymbol(ctx context.Context, symbol string) ([]*domain.DividendRecord, error)
}

// SplitStore provides access to stock split events. Append-only.
type SplitStore interface {
	// Insert adds a split. Returns ErrDuplicateKey if (symbol, split_date)
	// is already recorded; callers treat that as already-ingested.
	Insert(ctx context.Context, s *domain.SplitEvent) error

	// GetBySymbol retrieves all splits for a symbol, ordered by split_date ASC.
	GetBySymbol(ctx context.Context, symbol string) ([]*domain.SplitEvent, error)
}

// DividendHistoryStore is the analytical sink for dividend refreshes.
type DividendHistoryStore interface {
	// InsertBulk appends history points. The sink is append-only and
	// tolerates re-ingestion of the same (symbol, ex_date).
	InsertBulk(ctx context.Context, points []*domain.DividendHistoryPoint) error
}
