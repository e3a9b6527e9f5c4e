package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// HTTPSource fetches quotes from the price API's
// GET /api/price/{symbol} endpoint.
type HTTPSource struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPSource creates a source for the given base URL.
func NewHTTPSource(baseURL string, httpClient *http.Client) *HTTPSource {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPSource{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient}
}

// GetPrice fetches the last-traded price for the symbol.
func (s *HTTPSource) GetPrice(ctx context.Context, symbol string) (Quote, error) {
	endpoint := s.baseURL + "/api/price/" + url.PathEscape(symbol)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Quote{}, fmt.Errorf("failed to build price request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return Quote{}, fmt.Errorf("%w: %s: %v", ErrUnavailable, symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Quote{}, fmt.Errorf("%w: %s: status %d", ErrUnavailable, symbol, resp.StatusCode)
	}

	var body struct {
		Status    string      `json:"status"`
		Price     json.Number `json:"price"`
		Symbol    string      `json:"symbol"`
		Source    string      `json:"source"`
		Timestamp string      `json:"timestamp"`
		Message   string      `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Quote{}, fmt.Errorf("%w: %s: %v", ErrUnavailable, symbol, err)
	}
	if !strings.EqualFold(body.Status, "success") || body.Price == "" {
		return Quote{}, fmt.Errorf("%w: %s: %s", ErrUnavailable, symbol, body.Message)
	}

	price, err := decimal.NewFromString(body.Price.String())
	if err != nil || price.IsNegative() {
		return Quote{}, fmt.Errorf("%w: %s: bad price %q", ErrUnavailable, symbol, body.Price)
	}

	asOf := time.Now()
	if t, err := time.Parse(time.RFC3339Nano, body.Timestamp); err == nil {
		asOf = t
	}
	source := body.Source
	if source == "" {
		source = "price-api"
	}
	return Quote{Symbol: symbol, Price: price, AsOf: asOf, Source: source}, nil
}
