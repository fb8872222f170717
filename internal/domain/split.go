package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// SplitEvent is an immutable historical stock split, appended only.
// Ratio is new shares per old share: 2 for a 2:1 forward split,
// 1/35 for a 1:35 reverse split. RawRatio preserves the provider text.
// Corresponds to the splits table, keyed on (symbol, split_date).
type SplitEvent struct {
	Symbol    string
	SplitDate string // ISO civil date, see DateLayout
	Ratio     decimal.Decimal
	RawRatio  string // e.g. "1:35"
}

// ParseSplitRatio parses a provider ratio string of the form "new:old"
// into the new-per-old share factor.
func ParseSplitRatio(raw string) (decimal.Decimal, error) {
	parts := strings.Split(strings.TrimSpace(raw), ":")
	if len(parts) != 2 {
		return decimal.Zero, fmt.Errorf("split ratio %q: expected new:old", raw)
	}
	newShares, err := decimal.NewFromString(strings.TrimSpace(parts[0]))
	if err != nil {
		return decimal.Zero, fmt.Errorf("split ratio %q: %w", raw, err)
	}
	oldShares, err := decimal.NewFromString(strings.TrimSpace(parts[1]))
	if err != nil {
		return decimal.Zero, fmt.Errorf("split ratio %q: %w", raw, err)
	}
	if newShares.Sign() <= 0 || oldShares.Sign() <= 0 {
		return decimal.Zero, fmt.Errorf("split ratio %q: terms must be positive", raw)
	}
	return newShares.DivRound(oldShares, 8), nil
}
