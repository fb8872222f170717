package domain

// CatalogEntry represents an accepted, tradable security.
// Corresponds to the securities table in PostgreSQL.
type CatalogEntry struct {
	Symbol      string  // PRIMARY KEY, normalized ticker
	Exchange    string  // exchange code
	CompanyName *string // nullable, filled by enrichment
	Sector      *string // nullable, filled by enrichment
	CreatedAt   int64   // Unix timestamp in milliseconds
	UpdatedAt   int64   // Unix timestamp in milliseconds
}
