package domain

import "time"

// DateLayout is the wire and storage format for civil dates
// (ex-dates, payment dates, split dates).
const DateLayout = "2006-01-02"

// ParseDate parses an ISO civil date at UTC midnight.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// FormatDate renders t as an ISO civil date.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}
