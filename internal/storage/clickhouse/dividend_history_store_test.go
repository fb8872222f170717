package clickhouse

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/nguyenngoctoan/high-yield-dividend-analysis-sub005/internal/domain"
)

func TestDividendHistoryStore_InsertBulk(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewDividendHistoryStore(conn)
	ctx := context.Background()

	points := []*domain.DividendHistoryPoint{
		{
			Symbol:     "JBIO",
			ExDate:     "2024-03-15",
			Amount:     decimal.RequireFromString("2.40"),
			Provenance: domain.ProvenanceAdjusted,
			IngestedAt: 1718452800000,
		},
		{
			Symbol:     "KO",
			ExDate:     "2024-03-15",
			Amount:     decimal.RequireFromString("0.485"),
			Provenance: domain.ProvenanceRawFallback,
			IngestedAt: 1718452800000,
		},
	}
	require.NoError(t, store.InsertBulk(ctx, points))

	var count uint64
	require.NoError(t, conn.QueryRow(ctx, "SELECT count() FROM dividend_history").Scan(&count))
	require.Equal(t, uint64(2), count)

	var amount decimal.Decimal
	row := conn.QueryRow(ctx, "SELECT amount FROM dividend_history WHERE symbol = 'JBIO' AND ex_date = '2024-03-15'")
	require.NoError(t, row.Scan(&amount))
	require.True(t, amount.Equal(decimal.RequireFromString("2.40")), "amount %s", amount)
}

func TestDividendHistoryStore_ReingestCollapsesAtMerge(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewDividendHistoryStore(conn)
	ctx := context.Background()

	point := &domain.DividendHistoryPoint{
		Symbol:     "JBIO",
		ExDate:     "2024-03-15",
		Amount:     decimal.RequireFromString("84"),
		Provenance: domain.ProvenanceRawFallback,
		IngestedAt: 1718452800000,
	}
	require.NoError(t, store.InsertBulk(ctx, []*domain.DividendHistoryPoint{point}))

	// A later refresh re-ingests the adjusted figure.
	point.Amount = decimal.RequireFromString("2.40")
	point.Provenance = domain.ProvenanceAdjusted
	point.IngestedAt = 1718539200000
	require.NoError(t, store.InsertBulk(ctx, []*domain.DividendHistoryPoint{point}))

	// ReplacingMergeTree collapses on (symbol, ex_date) keeping the
	// latest ingested_at; FINAL forces the merge for the assertion.
	var amount decimal.Decimal
	var provenance string
	row := conn.QueryRow(ctx, `
		SELECT amount, provenance FROM dividend_history FINAL
		WHERE symbol = 'JBIO' AND ex_date = '2024-03-15'
	`)
	require.NoError(t, row.Scan(&amount, &provenance))
	require.True(t, amount.Equal(decimal.RequireFromString("2.40")), "amount %s", amount)
	require.Equal(t, string(domain.ProvenanceAdjusted), provenance)
}

func TestDividendHistoryStore_EmptyInsert(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewDividendHistoryStore(conn)
	require.NoError(t, store.InsertBulk(context.Background(), nil))
}
