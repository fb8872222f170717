// Package stub provides a scripted in-memory Provider for tests.
package stub

import (
	"context"
	"sync"

	"github.com/nguyenngoctoan/high-yield-dividend-analysis-sub005/internal/provider"
)

// Provider returns canned snapshots and scripted failures.
type Provider struct {
	mu         sync.Mutex
	name       string
	snapshots  map[string]*provider.Snapshot
	errs       map[string]error
	calls      int
	bySymbol   map[string]int
	quotaAfter int // fire ErrQuotaExceeded once when calls reaches this count
	quotaFired bool
}

// New creates a stub provider.
func New(name string) *Provider {
	return &Provider{
		name:      name,
		snapshots: make(map[string]*provider.Snapshot),
		errs:      make(map[string]error),
		bySymbol:  make(map[string]int),
	}
}

// SetSnapshot scripts a successful response for symbol.
func (p *Provider) SetSnapshot(symbol string, snap *provider.Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.snapshots[symbol] = snap
	delete(p.errs, symbol)
}

// SetError scripts a failure for symbol.
func (p *Provider) SetError(symbol string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.errs[symbol] = err
	delete(p.snapshots, symbol)
}

// FailQuotaOnce makes the n-th Snapshot call (1-based) return
// ErrQuotaExceeded a single time; the retried call then succeeds.
// Models a provider that recovers after the scheduler's cooldown.
func (p *Provider) FailQuotaOnce(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.quotaAfter = n
	p.quotaFired = false
}

// Calls reports the total number of Snapshot calls.
func (p *Provider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// CallsFor reports the number of Snapshot calls for one symbol.
func (p *Provider) CallsFor(symbol string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.bySymbol[symbol]
}

// Name identifies the provider.
func (p *Provider) Name() string {
	return p.name
}

// Snapshot returns the scripted response for symbol.
func (p *Provider) Snapshot(_ context.Context, symbol string) (*provider.Snapshot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls++
	p.bySymbol[symbol]++

	if p.quotaAfter > 0 && !p.quotaFired && p.calls >= p.quotaAfter {
		p.quotaFired = true
		return nil, provider.ErrQuotaExceeded
	}

	if err, ok := p.errs[symbol]; ok {
		return nil, err
	}
	if snap, ok := p.snapshots[symbol]; ok {
		snapCopy := *snap
		return &snapCopy, nil
	}
	return nil, provider.ErrSymbolNotFound
}

// Compile-time interface check.
var _ provider.Provider = (*Provider)(nil)
