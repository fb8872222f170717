// Package provider gives access to third-party market-data APIs.
// It defines the payload types the pipeline consumes, the error taxonomy
// validation depends on, and a fallback chain over multiple providers.
package provider

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// Sentinel errors classifying provider failures.
var (
	// ErrSymbolNotFound means the provider definitively does not know the
	// symbol (unknown or delisted). Terminal: never retried.
	ErrSymbolNotFound = errors.New("symbol not found or delisted")

	// ErrQuotaExceeded means the provider rejected the request for rate
	// limiting. The scheduler pauses the whole phase and resumes later.
	ErrQuotaExceeded = errors.New("provider quota exceeded")
)

// Quote is the latest known price for a symbol.
type Quote struct {
	Price decimal.Decimal
	AsOf  int64 // Unix timestamp in milliseconds
}

// Dividend is a raw provider dividend event. AdjustedAmount is nil when
// the provider does not publish a split-adjusted value.
type Dividend struct {
	ExDate         string // ISO civil date
	PayDate        string // ISO civil date, may be empty
	Amount         decimal.Decimal
	AdjustedAmount *decimal.Decimal
	Frequency      string // provider vocabulary, normalized downstream
}

// Split is a raw provider stock-split event.
type Split struct {
	Date  string // ISO civil date
	Ratio string // "new:old", e.g. "1:35" for a reverse split
}

// Snapshot bundles everything validation and dividend refresh need for
// one symbol in a single provider round trip.
type Snapshot struct {
	Symbol      string
	Exchange    string
	CompanyName string
	Sector      string
	Quote       *Quote // nil when the provider has no price
	Dividends   []Dividend
	Splits      []Split
}

// Provider is a market-data source.
type Provider interface {
	// Name identifies the provider in logs and reject reasons.
	Name() string

	// Snapshot fetches the full picture for one symbol. Returns
	// ErrSymbolNotFound or ErrQuotaExceeded per the taxonomy above;
	// any other error is transient (retries already exhausted).
	Snapshot(ctx context.Context, symbol string) (*Snapshot, error)
}
