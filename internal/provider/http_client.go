package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
)

// Default configuration values.
const (
	DefaultTimeout     = 30 * time.Second
	DefaultMaxRetries  = 3
	DefaultRetryDelay  = 1 * time.Second
	DefaultMaxDelay    = 10 * time.Second
	DefaultBackoffMult = 2.0
)

// HTTPClient implements Provider against an HTTPS JSON market-data API.
// Transient failures (transport errors, 5xx) are retried with exponential
// backoff; 404 and 429 map straight to the sentinel taxonomy.
type HTTPClient struct {
	name        string
	baseURL     string
	apiKey      string
	client      *http.Client
	maxRetries  int
	retryDelay  time.Duration
	maxDelay    time.Duration
	backoffMult float64
}

// ClientOption configures HTTPClient.
type ClientOption func(*HTTPClient)

// WithTimeout sets HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *HTTPClient) {
		c.client.Timeout = d
	}
}

// WithMaxRetries sets maximum retry attempts for transient failures.
func WithMaxRetries(n int) ClientOption {
	return func(c *HTTPClient) {
		c.maxRetries = n
	}
}

// WithRetryDelay sets initial retry delay.
func WithRetryDelay(d time.Duration) ClientOption {
	return func(c *HTTPClient) {
		c.retryDelay = d
	}
}

// WithMaxDelay sets maximum retry delay.
func WithMaxDelay(d time.Duration) ClientOption {
	return func(c *HTTPClient) {
		c.maxDelay = d
	}
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *HTTPClient) {
		c.client = client
	}
}

// NewHTTPClient creates a market-data client for one provider endpoint.
func NewHTTPClient(name, baseURL, apiKey string, opts ...ClientOption) *HTTPClient {
	c := &HTTPClient{
		name:        name,
		baseURL:     baseURL,
		apiKey:      apiKey,
		client:      &http.Client{Timeout: DefaultTimeout},
		maxRetries:  DefaultMaxRetries,
		retryDelay:  DefaultRetryDelay,
		maxDelay:    DefaultMaxDelay,
		backoffMult: DefaultBackoffMult,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name identifies the provider in logs and reject reasons.
func (c *HTTPClient) Name() string {
	return c.name
}

// Compile-time interface check.
var _ Provider = (*HTTPClient)(nil)

// Wire payloads. Amounts decode through shopspring decimal to avoid
// float rounding on money values.
type snapshotPayload struct {
	Symbol    string            `json:"symbol"`
	Exchange  string            `json:"exchange"`
	Name      string            `json:"name"`
	Sector    string            `json:"sector"`
	Price     *quotePayload     `json:"price"`
	Dividends []dividendPayload `json:"dividends"`
	Splits    []splitPayload    `json:"splits"`
}

type quotePayload struct {
	Close     decimal.Decimal `json:"close"`
	Timestamp int64           `json:"timestamp"` // Unix milliseconds
}

type dividendPayload struct {
	ExDate         string           `json:"ex_date"`
	PayDate        string           `json:"pay_date"`
	Amount         decimal.Decimal  `json:"amount"`
	AdjustedAmount *decimal.Decimal `json:"adjusted_amount"`
	Frequency      string           `json:"frequency"`
}

type splitPayload struct {
	Date  string `json:"date"`
	Ratio string `json:"ratio"`
}

// Snapshot fetches the full picture for one symbol.
func (c *HTTPClient) Snapshot(ctx context.Context, symbol string) (*Snapshot, error) {
	var payload snapshotPayload
	path := fmt.Sprintf("/v1/securities/%s/snapshot", url.PathEscape(symbol))
	if err := c.get(ctx, path, &payload); err != nil {
		return nil, err
	}

	snap := &Snapshot{
		Symbol:      payload.Symbol,
		Exchange:    payload.Exchange,
		CompanyName: payload.Name,
		Sector:      payload.Sector,
		Dividends:   make([]Dividend, 0, len(payload.Dividends)),
		Splits:      make([]Split, 0, len(payload.Splits)),
	}
	if snap.Symbol == "" {
		snap.Symbol = symbol
	}
	if payload.Price != nil {
		snap.Quote = &Quote{
			Price: payload.Price.Close,
			AsOf:  payload.Price.Timestamp,
		}
	}
	for _, d := range payload.Dividends {
		snap.Dividends = append(snap.Dividends, Dividend{
			ExDate:         d.ExDate,
			PayDate:        d.PayDate,
			Amount:         d.Amount,
			AdjustedAmount: d.AdjustedAmount,
			Frequency:      d.Frequency,
		})
	}
	for _, s := range payload.Splits {
		snap.Splits = append(snap.Splits, Split{Date: s.Date, Ratio: s.Ratio})
	}

	return snap, nil
}

// get performs a GET with retries and exponential backoff on transient
// failures. Definitive responses (2xx, 404, 429, other 4xx) never retry.
func (c *HTTPClient) get(ctx context.Context, path string, result interface{}) error {
	addr := c.baseURL + path
	if c.apiKey != "" {
		addr += "?api_token=" + url.QueryEscape(c.apiKey)
	}

	delay := c.retryDelay
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			// Exponential backoff
			delay = time.Duration(float64(delay) * c.backoffMult)
			if delay > c.maxDelay {
				delay = c.maxDelay
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("http get: %w", err)
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return fmt.Errorf("%s: %w", c.name, ErrSymbolNotFound)
		case resp.StatusCode == http.StatusTooManyRequests:
			return fmt.Errorf("%s: %w", c.name, ErrQuotaExceeded)
		case resp.StatusCode >= 500:
			lastErr = fmt.Errorf("%s: http %d", c.name, resp.StatusCode)
			continue
		case resp.StatusCode != http.StatusOK:
			return fmt.Errorf("%s: http %d", c.name, resp.StatusCode)
		}

		if readErr != nil {
			lastErr = fmt.Errorf("read response: %w", readErr)
			continue
		}
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("%s: decode response: %w", c.name, err)
		}
		return nil
	}

	return fmt.Errorf("%s: retries exhausted: %w", c.name, lastErr)
}
