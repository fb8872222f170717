package clickhouse

import (
	"context"
	"fmt"

	"github.com/nguyenngoctoan/high-yield-dividend-analysis-sub005/internal/domain"
	"github.com/nguyenngoctoan/high-yield-dividend-analysis-sub005/internal/storage"
)

// DividendHistoryStore implements storage.DividendHistoryStore using ClickHouse.
// The table uses ReplacingMergeTree keyed on (symbol, ex_date), so re-ingesting
// the same dividend collapses to the latest row at merge time.
type DividendHistoryStore struct {
	conn *Conn
}

// NewDividendHistoryStore creates a new DividendHistoryStore.
func NewDividendHistoryStore(conn *Conn) *DividendHistoryStore {
	return &DividendHistoryStore{conn: conn}
}

// Compile-time interface check.
var _ storage.DividendHistoryStore = (*DividendHistoryStore)(nil)

// InsertBulk appends history points in a single batch.
func (s *DividendHistoryStore) InsertBulk(ctx context.Context, points []*domain.DividendHistoryPoint) error {
	if len(points) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO dividend_history (
			symbol, ex_date, amount, provenance, ingested_at
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, p := range points {
		err = batch.Append(
			p.Symbol,
			p.ExDate,
			p.Amount,
			string(p.Provenance),
			uint64(p.IngestedAt),
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}
