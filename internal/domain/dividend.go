package domain

import "github.com/shopspring/decimal"

// Provenance marks which provider value became the amount of record.
type Provenance string

const (
	// ProvenanceAdjusted means the provider's split-adjusted amount was stored.
	ProvenanceAdjusted Provenance = "ADJUSTED"
	// ProvenanceRawFallback means no adjusted value was available and the raw
	// amount was stored. Downstream yield computations treat these rows with
	// reduced confidence.
	ProvenanceRawFallback Provenance = "RAW_FALLBACK"
)

// IsValid checks if the provenance is a valid value.
func (p Provenance) IsValid() bool {
	return p == ProvenanceAdjusted || p == ProvenanceRawFallback
}

// Frequency is the payment cadence of a dividend.
type Frequency string

const (
	FrequencyMonthly    Frequency = "MONTHLY"
	FrequencyQuarterly  Frequency = "QUARTERLY"
	FrequencySemiAnnual Frequency = "SEMIANNUAL"
	FrequencyAnnual     Frequency = "ANNUAL"
	FrequencyIrregular  Frequency = "IRREGULAR"
)

// PaymentsPerYear returns the annualization multiplier for the frequency.
// Irregular distributions annualize as a single payment.
func (f Frequency) PaymentsPerYear() int64 {
	switch f {
	case FrequencyMonthly:
		return 12
	case FrequencyQuarterly:
		return 4
	case FrequencySemiAnnual:
		return 2
	default:
		return 1
	}
}

// DividendRecord is a persisted dividend event for a catalog member.
// Amount holds the split-adjusted value whenever the provider supplied one;
// RawAmount always preserves the unadjusted figure for auditing.
// Corresponds to the dividends table, keyed on (symbol, ex_date).
type DividendRecord struct {
	Symbol     string
	ExDate     string // ISO civil date, see DateLayout
	PayDate    *string
	Amount     decimal.Decimal // amount of record (split-adjusted when available)
	RawAmount  decimal.Decimal // provider's unadjusted amount
	Frequency  Frequency
	Provenance Provenance
	ReviewNote *string // set when the derived-yield sanity check flags the row
	UpdatedAt  int64   // Unix timestamp in milliseconds
}

// DividendHistoryPoint is an analytical copy of a persisted dividend,
// batch-inserted into ClickHouse on every refresh for yield analytics.
type DividendHistoryPoint struct {
	Symbol     string
	ExDate     string
	Amount     decimal.Decimal
	Provenance Provenance
	IngestedAt int64 // Unix timestamp in milliseconds
}
