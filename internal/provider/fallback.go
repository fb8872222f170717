package provider

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
)

// Chain tries providers in order until one answers.
//
// Quota errors propagate immediately: they pause the whole validation
// phase rather than burning the fallback's quota too. Not-found and
// transient errors fall through to the next provider; a symbol is
// definitively not-found only when every provider says so.
type Chain struct {
	providers []Provider
	logger    *log.Logger
}

// NewChain creates a fallback chain. The first provider is authoritative.
func NewChain(logger *log.Logger, providers ...Provider) *Chain {
	if logger == nil {
		logger = log.Default()
	}
	return &Chain{providers: providers, logger: logger}
}

// Name lists the chained provider names.
func (c *Chain) Name() string {
	names := make([]string, 0, len(c.providers))
	for _, p := range c.providers {
		names = append(names, p.Name())
	}
	return strings.Join(names, ",")
}

// Compile-time interface check.
var _ Provider = (*Chain)(nil)

// Snapshot fetches from the first provider that answers.
func (c *Chain) Snapshot(ctx context.Context, symbol string) (*Snapshot, error) {
	if len(c.providers) == 0 {
		return nil, errors.New("provider chain is empty")
	}

	notFound := 0
	var lastErr error

	for _, p := range c.providers {
		snap, err := p.Snapshot(ctx, symbol)
		if err == nil {
			return snap, nil
		}
		if errors.Is(err, ErrQuotaExceeded) || errors.Is(err, context.Canceled) {
			return nil, err
		}
		if errors.Is(err, ErrSymbolNotFound) {
			notFound++
		} else {
			c.logger.Printf("provider %s failed for %s, trying next: %v", p.Name(), symbol, err)
		}
		lastErr = err
	}

	if notFound == len(c.providers) {
		return nil, fmt.Errorf("all providers: %w", ErrSymbolNotFound)
	}
	return nil, fmt.Errorf("all providers failed for %s: %w", symbol, lastErr)
}
