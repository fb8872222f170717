// Package normalization turns raw provider dividend and split events
// into the persisted records the catalog serves.
package normalization

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/nguyenngoctoan/high-yield-dividend-analysis-sub005/internal/domain"
	"github.com/nguyenngoctoan/high-yield-dividend-analysis-sub005/internal/provider"
)

// DefaultYieldCeiling is the derived-yield sanity threshold. A security
// yielding above 50% almost always has an unadjusted post-split amount,
// not a real payout.
var DefaultYieldCeiling = decimal.NewFromFloat(0.5)

// Normalizer converts provider dividends into dividend records,
// preferring split-adjusted amounts and flagging implausible yields.
type Normalizer struct {
	yieldCeiling decimal.Decimal
}

// NewNormalizer creates a Normalizer. A non-positive ceiling falls back
// to the default.
func NewNormalizer(yieldCeiling decimal.Decimal) *Normalizer {
	if yieldCeiling.Sign() <= 0 {
		yieldCeiling = DefaultYieldCeiling
	}
	return &Normalizer{yieldCeiling: yieldCeiling}
}

// Normalize converts one raw dividend into a record for symbol.
// The adjusted amount becomes the amount of record when the provider
// supplies one; otherwise the raw amount is stored with RAW_FALLBACK
// provenance. price is the latest quote used for the yield sanity check
// and may be nil. Returns an error for unusable events (bad ex-date,
// non-positive amount); callers skip those and keep going.
func (n *Normalizer) Normalize(symbol string, raw provider.Dividend, price *decimal.Decimal, now int64) (*domain.DividendRecord, error) {
	if _, err := domain.ParseDate(raw.ExDate); err != nil {
		return nil, fmt.Errorf("ex-date %q: %w", raw.ExDate, err)
	}
	if raw.Amount.Sign() <= 0 {
		return nil, fmt.Errorf("non-positive amount %s", raw.Amount)
	}

	rec := &domain.DividendRecord{
		Symbol:    symbol,
		ExDate:    raw.ExDate,
		Amount:    raw.Amount,
		RawAmount: raw.Amount,
		Frequency: normalizeFrequency(raw.Frequency),
		UpdatedAt: now,
	}

	if raw.PayDate != "" {
		if _, err := domain.ParseDate(raw.PayDate); err == nil {
			payDate := raw.PayDate
			rec.PayDate = &payDate
		}
	}

	if raw.AdjustedAmount != nil && raw.AdjustedAmount.Sign() > 0 {
		rec.Amount = *raw.AdjustedAmount
		rec.Provenance = domain.ProvenanceAdjusted
	} else {
		rec.Provenance = domain.ProvenanceRawFallback
	}

	if note := n.yieldNote(rec, price); note != "" {
		rec.ReviewNote = &note
	}

	return rec, nil
}

// yieldNote returns a review note when the annualized yield implied by
// the record exceeds the ceiling. The record is flagged, never dropped:
// some closed-end funds legitimately pay double-digit yields, and an
// automated delete here would destroy real data.
func (n *Normalizer) yieldNote(rec *domain.DividendRecord, price *decimal.Decimal) string {
	if price == nil || price.Sign() <= 0 {
		return ""
	}
	annualized := rec.Amount.Mul(decimal.NewFromInt(rec.Frequency.PaymentsPerYear()))
	yield := annualized.Div(*price)
	if yield.LessThanOrEqual(n.yieldCeiling) {
		return ""
	}
	return fmt.Sprintf("derived yield %s exceeds %s ceiling (amount=%s frequency=%s price=%s), likely unadjusted for a split",
		yield.Round(4), n.yieldCeiling, rec.Amount, rec.Frequency, price)
}

// normalizeFrequency maps the provider's free-form cadence vocabulary
// onto ours. Unknown values land in IRREGULAR, the conservative bucket
// for annualization.
func normalizeFrequency(raw string) domain.Frequency {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "MONTHLY", "M", "12":
		return domain.FrequencyMonthly
	case "QUARTERLY", "Q", "4":
		return domain.FrequencyQuarterly
	case "SEMIANNUAL", "SEMI-ANNUAL", "SEMIANNUALLY", "S", "2":
		return domain.FrequencySemiAnnual
	case "ANNUAL", "ANNUALLY", "YEARLY", "A", "1":
		return domain.FrequencyAnnual
	default:
		return domain.FrequencyIrregular
	}
}
