package discovery

import (
	"context"
	"net/http"

	"github.com/nguyenngoctoan/high-yield-dividend-analysis-sub005/internal/domain"
)

// ScreenerAdapter discovers candidates from a stock-screener query
// endpoint returning {"results":[{"symbol":...,"exchange":...},...]}.
type ScreenerAdapter struct {
	name   string
	url    string
	client *http.Client
}

// NewScreenerAdapter creates a screener-backed adapter.
func NewScreenerAdapter(name, url string, client *http.Client) *ScreenerAdapter {
	if client == nil {
		client = &http.Client{Timeout: defaultAdapterTimeout}
	}
	return &ScreenerAdapter{name: name, url: url, client: client}
}

// Name identifies the adapter in logs.
func (a *ScreenerAdapter) Name() string {
	return a.name
}

// Discover returns the screener's current result set.
func (a *ScreenerAdapter) Discover(ctx context.Context) ([]RawCandidate, error) {
	var payload struct {
		Results []struct {
			Symbol   string `json:"symbol"`
			Exchange string `json:"exchange"`
		} `json:"results"`
	}
	if err := fetchJSON(ctx, a.client, a.url, &payload); err != nil {
		return nil, err
	}

	candidates := make([]RawCandidate, 0, len(payload.Results))
	for _, r := range payload.Results {
		candidates = append(candidates, RawCandidate{
			Symbol:   r.Symbol,
			Exchange: r.Exchange,
			Source:   domain.SourceScreener,
		})
	}
	return candidates, nil
}

// Compile-time interface check.
var _ Adapter = (*ScreenerAdapter)(nil)
