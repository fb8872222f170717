package postgres

import (
	"context"
	"fmt"

	"github.com/nguyenngoctoan/high-yield-dividend-analysis-sub005/internal/domain"
	"github.com/nguyenngoctoan/high-yield-dividend-analysis-sub005/internal/storage"
)

// CatalogStore implements storage.CatalogStore using PostgreSQL.
type CatalogStore struct {
	pool *Pool
}

// NewCatalogStore creates a new CatalogStore.
func NewCatalogStore(pool *Pool) *CatalogStore {
	return &CatalogStore{pool: pool}
}

// Compile-time interface check.
var _ storage.CatalogStore = (*CatalogStore)(nil)

// Upsert inserts the entry or updates the existing row for its symbol.
// CreatedAt of an existing row is preserved; enrichment fields are only
// overwritten when the new value is non-null.
func (s *CatalogStore) Upsert(ctx context.Context, e *domain.CatalogEntry) error {
	if e == nil || e.Symbol == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO securities (symbol, exchange, company_name, sector, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (symbol) DO UPDATE SET
			exchange     = EXCLUDED.exchange,
			company_name = COALESCE(EXCLUDED.company_name, securities.company_name),
			sector       = COALESCE(EXCLUDED.sector, securities.sector),
			updated_at   = EXCLUDED.updated_at
	`

	_, err := s.pool.Exec(ctx, query,
		e.Symbol,
		e.Exchange,
		e.CompanyName,
		e.Sector,
		e.CreatedAt,
		e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert catalog entry: %w", err)
	}
	return nil
}

// GetBySymbol retrieves an entry. Returns ErrNotFound if not exists.
func (s *CatalogStore) GetBySymbol(ctx context.Context, symbol string) (*domain.CatalogEntry, error) {
	query := `
		SELECT symbol, exchange, company_name, sector, created_at, updated_at
		FROM securities
		WHERE symbol = $1
	`

	var e domain.CatalogEntry
	err := s.pool.QueryRow(ctx, query, symbol).Scan(
		&e.Symbol,
		&e.Exchange,
		&e.CompanyName,
		&e.Sector,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get catalog entry: %w", err)
	}
	return &e, nil
}

// ExistingSymbols returns the subset of symbols present in the catalog.
func (s *CatalogStore) ExistingSymbols(ctx context.Context, symbols []string) ([]string, error) {
	if len(symbols) == 0 {
		return nil, nil
	}

	query := `
		SELECT symbol FROM securities
		WHERE symbol = ANY($1)
		ORDER BY symbol ASC
	`

	rows, err := s.pool.Query(ctx, query, symbols)
	if err != nil {
		return nil, fmt.Errorf("query existing catalog symbols: %w", err)
	}
	defer rows.Close()

	return scanSymbols(rows)
}

// ListSymbols returns all catalog symbols, ordered ascending.
func (s *CatalogStore) ListSymbols(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT symbol FROM securities ORDER BY symbol ASC`)
	if err != nil {
		return nil, fmt.Errorf("list catalog symbols: %w", err)
	}
	defer rows.Close()

	return scanSymbols(rows)
}
