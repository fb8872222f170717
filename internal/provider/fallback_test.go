package provider

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"
)

// scriptedProvider returns one canned response per construction.
type scriptedProvider struct {
	name  string
	snap  *Snapshot
	err   error
	calls int
}

func (p *scriptedProvider) Name() string { return p.name }

func (p *scriptedProvider) Snapshot(_ context.Context, _ string) (*Snapshot, error) {
	p.calls++
	return p.snap, p.err
}

func chainLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestChain_FirstProviderWins(t *testing.T) {
	primary := &scriptedProvider{name: "primary", snap: &Snapshot{Symbol: "AAPL"}}
	fallback := &scriptedProvider{name: "fallback", snap: &Snapshot{Symbol: "AAPL"}}

	c := NewChain(chainLogger(), primary, fallback)
	snap, err := c.Snapshot(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if snap.Symbol != "AAPL" {
		t.Errorf("symbol = %s", snap.Symbol)
	}
	if fallback.calls != 0 {
		t.Errorf("fallback called %d times, want 0", fallback.calls)
	}
}

func TestChain_TransientFallsThrough(t *testing.T) {
	primary := &scriptedProvider{name: "primary", err: errors.New("http 503")}
	fallback := &scriptedProvider{name: "fallback", snap: &Snapshot{Symbol: "AAPL"}}

	c := NewChain(chainLogger(), primary, fallback)
	snap, err := c.Snapshot(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("expected fallback to answer, got %v", err)
	}
	if snap.Symbol != "AAPL" {
		t.Errorf("symbol = %s", snap.Symbol)
	}
}

func TestChain_NotFoundFallsThrough(t *testing.T) {
	primary := &scriptedProvider{name: "primary", err: ErrSymbolNotFound}
	fallback := &scriptedProvider{name: "fallback", snap: &Snapshot{Symbol: "OBSCURE"}}

	c := NewChain(chainLogger(), primary, fallback)
	snap, err := c.Snapshot(context.Background(), "OBSCURE")
	if err != nil {
		t.Fatalf("one provider not knowing a symbol is not definitive: %v", err)
	}
	if snap.Symbol != "OBSCURE" {
		t.Errorf("symbol = %s", snap.Symbol)
	}
}

func TestChain_DefinitiveNotFoundNeedsConsensus(t *testing.T) {
	primary := &scriptedProvider{name: "primary", err: ErrSymbolNotFound}
	fallback := &scriptedProvider{name: "fallback", err: ErrSymbolNotFound}

	c := NewChain(chainLogger(), primary, fallback)
	_, err := c.Snapshot(context.Background(), "ZZZZ")
	if !errors.Is(err, ErrSymbolNotFound) {
		t.Fatalf("expected definitive not-found, got %v", err)
	}
}

func TestChain_MixedFailuresAreNotDefinitive(t *testing.T) {
	primary := &scriptedProvider{name: "primary", err: ErrSymbolNotFound}
	fallback := &scriptedProvider{name: "fallback", err: errors.New("http 502")}

	c := NewChain(chainLogger(), primary, fallback)
	_, err := c.Snapshot(context.Background(), "MAYBE")
	if err == nil {
		t.Fatal("expected error")
	}
	// One provider couldn't be asked, so not-found is not proven.
	if errors.Is(err, ErrSymbolNotFound) {
		t.Errorf("mixed failures must not resolve to not-found: %v", err)
	}
}

func TestChain_QuotaStopsImmediately(t *testing.T) {
	primary := &scriptedProvider{name: "primary", err: ErrQuotaExceeded}
	fallback := &scriptedProvider{name: "fallback", snap: &Snapshot{Symbol: "AAPL"}}

	c := NewChain(chainLogger(), primary, fallback)
	_, err := c.Snapshot(context.Background(), "AAPL")
	if !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("expected quota error, got %v", err)
	}
	// The fallback's quota is preserved for the cooldown retry.
	if fallback.calls != 0 {
		t.Errorf("fallback called %d times during quota pause, want 0", fallback.calls)
	}
}

func TestChain_Empty(t *testing.T) {
	c := NewChain(chainLogger())
	if _, err := c.Snapshot(context.Background(), "AAPL"); err == nil {
		t.Fatal("empty chain must error")
	}
}
