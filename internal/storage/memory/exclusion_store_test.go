package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/nguyenngoctoan/high-yield-dividend-analysis-sub005/internal/domain"
	"github.com/nguyenngoctoan/high-yield-dividend-analysis-sub005/internal/storage"
)

func TestExclusionStore_AttemptsIncrement(t *testing.T) {
	store := NewExclusionStore()
	ctx := context.Background()

	rec := &domain.ExclusionRecord{
		Symbol: "YYYY", Reason: "stale", Source: domain.SourceScreener,
		ExcludedAt: 1000, ValidationAttempts: 1,
	}
	if err := store.Upsert(ctx, rec); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if err := store.Upsert(ctx, rec); err != nil {
		t.Fatalf("re-upsert failed: %v", err)
	}
	if err := store.Upsert(ctx, rec); err != nil {
		t.Fatalf("re-upsert failed: %v", err)
	}

	got, err := store.GetBySymbol(ctx, "YYYY")
	if err != nil {
		t.Fatalf("GetBySymbol failed: %v", err)
	}
	if got.ValidationAttempts != 3 {
		t.Errorf("attempts = %d, want 3", got.ValidationAttempts)
	}
}

func TestExclusionStore_UpsertRefreshesFields(t *testing.T) {
	store := NewExclusionStore()
	ctx := context.Background()

	if err := store.Upsert(ctx, &domain.ExclusionRecord{
		Symbol: "YYYY", Reason: "old reason", Source: domain.SourceScreener, ExcludedAt: 1000,
	}); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if err := store.Upsert(ctx, &domain.ExclusionRecord{
		Symbol: "YYYY", Reason: "new reason", Source: domain.SourceCalendar, ExcludedAt: 2000,
	}); err != nil {
		t.Fatalf("re-upsert failed: %v", err)
	}

	got, _ := store.GetBySymbol(ctx, "YYYY")
	if got.Reason != "new reason" || got.Source != domain.SourceCalendar || got.ExcludedAt != 2000 {
		t.Errorf("record not refreshed: %+v", got)
	}
}

func TestExclusionStore_DefaultsFirstAttempt(t *testing.T) {
	store := NewExclusionStore()
	ctx := context.Background()

	// Zero attempts on the way in still records one attempt.
	if err := store.Upsert(ctx, &domain.ExclusionRecord{
		Symbol: "X", Reason: "r", Source: domain.SourceCurated,
	}); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	got, _ := store.GetBySymbol(ctx, "X")
	if got.ValidationAttempts != 1 {
		t.Errorf("attempts = %d, want 1", got.ValidationAttempts)
	}
}

func TestExclusionStore_InvalidAndMissing(t *testing.T) {
	store := NewExclusionStore()
	ctx := context.Background()

	if err := store.Upsert(ctx, nil); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := store.GetBySymbol(ctx, "NOPE"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
