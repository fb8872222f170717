package discovery

import (
	"context"
	"net/http"

	"github.com/nguyenngoctoan/high-yield-dividend-analysis-sub005/internal/domain"
)

// CalendarAdapter discovers candidates from a dividend-calendar feed of
// upcoming ex-dates: {"calendar":[{"symbol":...,"exchange":...},...]}.
// Symbols with scheduled dividends are strong catalog candidates even
// when no screener surfaces them.
type CalendarAdapter struct {
	name   string
	url    string
	client *http.Client
}

// NewCalendarAdapter creates a dividend-calendar adapter.
func NewCalendarAdapter(name, url string, client *http.Client) *CalendarAdapter {
	if client == nil {
		client = &http.Client{Timeout: defaultAdapterTimeout}
	}
	return &CalendarAdapter{name: name, url: url, client: client}
}

// Name identifies the adapter in logs.
func (a *CalendarAdapter) Name() string {
	return a.name
}

// Discover returns symbols with upcoming dividend events.
func (a *CalendarAdapter) Discover(ctx context.Context) ([]RawCandidate, error) {
	var payload struct {
		Calendar []struct {
			Symbol   string `json:"symbol"`
			Exchange string `json:"exchange"`
			ExDate   string `json:"ex_date"`
		} `json:"calendar"`
	}
	if err := fetchJSON(ctx, a.client, a.url, &payload); err != nil {
		return nil, err
	}

	candidates := make([]RawCandidate, 0, len(payload.Calendar))
	for _, e := range payload.Calendar {
		candidates = append(candidates, RawCandidate{
			Symbol:   e.Symbol,
			Exchange: e.Exchange,
			Source:   domain.SourceCalendar,
		})
	}
	return candidates, nil
}

// Compile-time interface check.
var _ Adapter = (*CalendarAdapter)(nil)
