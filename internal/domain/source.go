package domain

// Source identifies which discovery adapter produced a candidate.
type Source string

const (
	SourceScreener Source = "SCREENER"
	SourceCurated  Source = "CURATED"
	SourceCalendar Source = "DIVIDEND_CALENDAR"
)

// String returns the string representation of Source.
func (s Source) String() string {
	return string(s)
}

// IsValid checks if the source is a valid value.
func (s Source) IsValid() bool {
	return s == SourceScreener || s == SourceCurated || s == SourceCalendar
}
