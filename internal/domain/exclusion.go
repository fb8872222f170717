package domain

// ExclusionRecord marks a symbol as permanently rejected.
// Its presence causes discovery runs to skip the symbol unless an
// operator-supplied override re-admits it for validation.
// Corresponds to the exclusions table in PostgreSQL.
type ExclusionRecord struct {
	Symbol             string // PRIMARY KEY
	Reason             string // human-readable, names the failed predicate halves
	Source             Source // discovery source that produced the rejected candidate
	ExcludedAt         int64  // Unix timestamp in milliseconds
	ValidationAttempts int    // incremented on every repeated rejection
}
