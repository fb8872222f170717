package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nguyenngoctoan/high-yield-dividend-analysis-sub005/internal/domain"
	"github.com/nguyenngoctoan/high-yield-dividend-analysis-sub005/internal/storage"
)

func TestSplitStore_InsertAndGet(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSplitStore(pool)
	ctx := context.Background()

	ratio, err := domain.ParseSplitRatio("1:35")
	require.NoError(t, err)

	event := &domain.SplitEvent{
		Symbol:    "JBIO",
		SplitDate: "2024-02-01",
		Ratio:     ratio,
		RawRatio:  "1:35",
	}
	require.NoError(t, store.Insert(ctx, event))

	got, err := store.GetBySymbol(ctx, "JBIO")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "1:35", got[0].RawRatio)
	require.True(t, got[0].Ratio.Equal(ratio), "ratio %s", got[0].Ratio)
}

func TestSplitStore_DuplicateKey(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSplitStore(pool)
	ctx := context.Background()

	ratio, err := domain.ParseSplitRatio("4:1")
	require.NoError(t, err)

	event := &domain.SplitEvent{
		Symbol: "AAPL", SplitDate: "2020-08-31", Ratio: ratio, RawRatio: "4:1",
	}
	require.NoError(t, store.Insert(ctx, event))

	// Re-ingesting the same (symbol, split_date) is reported, not absorbed;
	// callers decide to skip it.
	err = store.Insert(ctx, event)
	require.ErrorIs(t, err, storage.ErrDuplicateKey)

	got, err := store.GetBySymbol(ctx, "AAPL")
	require.NoError(t, err)
	require.Len(t, got, 1)
}

func TestSplitStore_OrderedBySplitDate(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSplitStore(pool)
	ctx := context.Background()

	for _, raw := range []struct{ date, ratio string }{
		{"2020-08-31", "4:1"},
		{"2014-06-09", "7:1"},
	} {
		ratio, err := domain.ParseSplitRatio(raw.ratio)
		require.NoError(t, err)
		require.NoError(t, store.Insert(ctx, &domain.SplitEvent{
			Symbol: "AAPL", SplitDate: raw.date, Ratio: ratio, RawRatio: raw.ratio,
		}))
	}

	got, err := store.GetBySymbol(ctx, "AAPL")
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "2014-06-09", got[0].SplitDate)
	require.Equal(t, "2020-08-31", got[1].SplitDate)
}
