package exchange

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// FrankfurterClient is a client for the frankfurter.app exchange rates API.
type FrankfurterClient struct {
	baseURL    string
	httpClient *http.Client
}

type frankfurterResponse struct {
	Base  string                 `json:"base"`
	Date  string                 `json:"date"`
	Rates map[string]json.Number `json:"rates"`
}

// NewFrankfurterClient creates a Frankfurter API client with an
// otelhttp-instrumented transport.
func NewFrankfurterClient(baseURL string, timeout time.Duration) *FrankfurterClient {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		trimmed = "https://api.frankfurter.app"
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &FrankfurterClient{
		baseURL: trimmed,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// Rates fetches the latest rates against the base currency.
func (c *FrankfurterClient) Rates(
	ctx context.Context,
	base string,
) (map[string]decimal.Decimal, time.Time, error) {
	base = strings.ToUpper(strings.TrimSpace(base))
	if base == "" {
		return nil, time.Time{}, errors.New("base currency is required")
	}

	endpoint := fmt.Sprintf("%s/latest?from=%s", c.baseURL, url.QueryEscape(base))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to create rates request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to request exchange rates: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, time.Time{}, fmt.Errorf("exchange API returned status %d", resp.StatusCode)
	}

	decoder := json.NewDecoder(resp.Body)
	decoder.UseNumber()

	var payload frankfurterResponse
	if err := decoder.Decode(&payload); err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to decode rates response: %w", err)
	}

	rateDate, err := time.Parse("2006-01-02", payload.Date)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to parse rate date: %w", err)
	}

	rates := make(map[string]decimal.Decimal, len(payload.Rates)+1)
	rates[base] = decimal.NewFromInt(1)
	for code, num := range payload.Rates {
		rate, err := decimal.NewFromString(num.String())
		if err != nil {
			return nil, time.Time{}, fmt.Errorf("failed to parse rate for %s: %w", code, err)
		}
		if !rate.IsPositive() {
			return nil, time.Time{}, fmt.Errorf("non-positive rate for %s", code)
		}
		rates[code] = rate
	}

	return rates, rateDate, nil
}
