package postgres

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/nguyenngoctoan/high-yield-dividend-analysis-sub005/internal/domain"
	"github.com/nguyenngoctoan/high-yield-dividend-analysis-sub005/internal/storage"
)

// SplitStore implements storage.SplitStore using PostgreSQL.
// Splits are immutable historical facts, so this store is append-only.
type SplitStore struct {
	pool *Pool
}

// NewSplitStore creates a new SplitStore.
func NewSplitStore(pool *Pool) *SplitStore {
	return &SplitStore{pool: pool}
}

// Compile-time interface check.
var _ storage.SplitStore = (*SplitStore)(nil)

// Insert adds a split. Returns ErrDuplicateKey if (symbol, split_date)
// is already recorded.
func (s *SplitStore) Insert(ctx context.Context, e *domain.SplitEvent) error {
	if e == nil || e.Symbol == "" || e.SplitDate == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO splits (symbol, split_date, ratio, raw_ratio)
		VALUES ($1, $2, $3, $4)
	`

	_, err := s.pool.Exec(ctx, query,
		e.Symbol,
		e.SplitDate,
		e.Ratio.String(),
		e.RawRatio,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert split: %w", err)
	}
	return nil
}

// GetBySymbol retrieves all splits for a symbol, ordered by split_date ASC.
func (s *SplitStore) GetBySymbol(ctx context.Context, symbol string) ([]*domain.SplitEvent, error) {
	query := `
		SELECT symbol, split_date, ratio::text, raw_ratio
		FROM splits
		WHERE symbol = $1
		ORDER BY split_date ASC
	`

	rows, err := s.pool.Query(ctx, query, symbol)
	if err != nil {
		return nil, fmt.Errorf("get splits by symbol: %w", err)
	}
	defer rows.Close()

	var events []*domain.SplitEvent
	for rows.Next() {
		var e domain.SplitEvent
		var ratioStr string

		if err := rows.Scan(&e.Symbol, &e.SplitDate, &ratioStr, &e.RawRatio); err != nil {
			return nil, fmt.Errorf("scan split row: %w", err)
		}
		if e.Ratio, err = decimal.NewFromString(ratioStr); err != nil {
			return nil, fmt.Errorf("parse split ratio %q: %w", ratioStr, err)
		}
		events = append(events, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate split rows: %w", err)
	}

	return events, nil
}
