package domain

// Candidate is a not-yet-validated symbol produced by a discovery source.
// Candidates exist only for the duration of a single pipeline run and are
// never persisted directly; validation turns each one into either a
// CatalogEntry or an ExclusionRecord.
type Candidate struct {
	Symbol       string // normalized ticker, e.g. "AAPL"
	Exchange     string // exchange code, e.g. "NASDAQ"
	Source       Source // SCREENER | CURATED | DIVIDEND_CALENDAR
	DiscoveredAt int64  // Unix timestamp in milliseconds
}
