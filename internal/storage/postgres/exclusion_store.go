package postgres

import (
	"context"
	"fmt"

	"github.com/nguyenngoctoan/high-yield-dividend-analysis-sub005/internal/domain"
	"github.com/nguyenngoctoan/high-yield-dividend-analysis-sub005/internal/storage"
)

// ExclusionStore implements storage.ExclusionStore using PostgreSQL.
type ExclusionStore struct {
	pool *Pool
}

// NewExclusionStore creates a new ExclusionStore.
func NewExclusionStore(pool *Pool) *ExclusionStore {
	return &ExclusionStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ExclusionStore = (*ExclusionStore)(nil)

// Upsert inserts the record or refreshes the existing one, incrementing
// validation_attempts. A symbol rejected across multiple runs must land
// here as an update, never as a duplicate-key failure.
func (s *ExclusionStore) Upsert(ctx context.Context, r *domain.ExclusionRecord) error {
	if r == nil || r.Symbol == "" {
		return storage.ErrInvalidInput
	}

	attempts := r.ValidationAttempts
	if attempts == 0 {
		attempts = 1
	}

	query := `
		INSERT INTO exclusions (symbol, reason, source, excluded_at, validation_attempts)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (symbol) DO UPDATE SET
			reason              = EXCLUDED.reason,
			source              = EXCLUDED.source,
			excluded_at         = EXCLUDED.excluded_at,
			validation_attempts = exclusions.validation_attempts + 1
	`

	_, err := s.pool.Exec(ctx, query,
		r.Symbol,
		r.Reason,
		string(r.Source),
		r.ExcludedAt,
		attempts,
	)
	if err != nil {
		return fmt.Errorf("upsert exclusion record: %w", err)
	}
	return nil
}

// GetBySymbol retrieves a record. Returns ErrNotFound if not exists.
func (s *ExclusionStore) GetBySymbol(ctx context.Context, symbol string) (*domain.ExclusionRecord, error) {
	query := `
		SELECT symbol, reason, source, excluded_at, validation_attempts
		FROM exclusions
		WHERE symbol = $1
	`

	var r domain.ExclusionRecord
	var sourceStr string
	err := s.pool.QueryRow(ctx, query, symbol).Scan(
		&r.Symbol,
		&r.Reason,
		&sourceStr,
		&r.ExcludedAt,
		&r.ValidationAttempts,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get exclusion record: %w", err)
	}
	r.Source = domain.Source(sourceStr)
	return &r, nil
}

// ExistingSymbols returns the subset of symbols present in the ledger.
func (s *ExclusionStore) ExistingSymbols(ctx context.Context, symbols []string) ([]string, error) {
	if len(symbols) == 0 {
		return nil, nil
	}

	query := `
		SELECT symbol FROM exclusions
		WHERE symbol = ANY($1)
		ORDER BY symbol ASC
	`

	rows, err := s.pool.Query(ctx, query, symbols)
	if err != nil {
		return nil, fmt.Errorf("query existing exclusion symbols: %w", err)
	}
	defer rows.Close()

	return scanSymbols(rows)
}
