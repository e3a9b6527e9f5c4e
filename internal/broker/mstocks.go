package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/trogers1052/etf-trading-service/internal/models"
)

// MStocksClient talks to the MStocks Type A trading API. One documented
// request shape per endpoint; symbols are sent as plain NSE trading symbols
// with the exchange in its own field.
type MStocksClient struct {
	baseURL    string
	httpClient *http.Client

	mu      sync.Mutex
	session Session
}

// NewMStocksClient creates a client for the given base URL
// (e.g. https://api.mstock.trade/openapi/typea) and session.
func NewMStocksClient(baseURL string, session Session, httpClient *http.Client) *MStocksClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &MStocksClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		session:    session,
	}
}

// Session returns the current session value.
func (c *MStocksClient) Session() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// ensureSession refreshes the token when it is expired or about to expire.
func (c *MStocksClient) ensureSession(ctx context.Context) (Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session.Valid(time.Now().Add(5 * time.Minute)) {
		return c.session, nil
	}
	refreshed, err := c.session.Refresh(ctx, c.httpClient, c.baseURL)
	if err != nil {
		return Session{}, err
	}
	log.Printf("Refreshed broker session (expires %s)", refreshed.Expiry.Format(time.RFC3339))
	c.session = refreshed
	return refreshed, nil
}

// Submit places the order and returns the broker order number.
func (c *MStocksClient) Submit(ctx context.Context, req models.OrderRequest) (string, error) {
	exchange, symbol := splitSymbol(req.Symbol)

	form := url.Values{}
	form.Set("tradingsymbol", symbol)
	form.Set("exchange", exchange)
	form.Set("transaction_type", string(req.Side))
	form.Set("order_type", string(req.OrderType))
	form.Set("quantity", strconv.FormatInt(req.Quantity, 10))
	form.Set("product", "CNC")
	form.Set("validity", "DAY")
	form.Set("price", req.Price.String())

	body, status, err := c.do(ctx, http.MethodPost, "/order/place", form)
	if err != nil {
		return "", err
	}

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			OrderID string `json:"order_id"`
			OrderNo string `json:"order_no"`
		} `json:"data"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to decode order response: %w", err)
	}

	if status != http.StatusOK || strings.EqualFold(resp.Status, "error") {
		reason := resp.Message
		if reason == "" {
			reason = fmt.Sprintf("status %d", status)
		}
		return "", fmt.Errorf("%w: %s", ErrRejected, reason)
	}

	orderID := firstNonEmpty(resp.Data.OrderID, resp.Data.OrderNo)
	if orderID == "" {
		return "", fmt.Errorf("%w: broker returned no order id", ErrRejected)
	}
	log.Printf("Submitted %s order for %s: order id %s", req.Side, req.Symbol, orderID)
	return orderID, nil
}

// QueryStatus fetches and normalizes the order's current state.
func (c *MStocksClient) QueryStatus(ctx context.Context, orderID string) (models.OrderStatus, error) {
	form := url.Values{}
	form.Set("order_no", orderID)
	form.Set("segment", "E")

	body, status, err := c.do(ctx, http.MethodGet, "/order/details?"+form.Encode(), nil)
	if err != nil {
		return models.OrderStatus{}, err
	}
	if status == http.StatusNotFound {
		return models.OrderStatus{}, fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
	}
	if status != http.StatusOK {
		return models.OrderStatus{}, fmt.Errorf("order status query failed: status %d", status)
	}

	var resp struct {
		Status string            `json:"status"`
		Data   []wireOrderDetail `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		// Some deployments return the detail object directly.
		var single wireOrderDetail
		if err2 := json.Unmarshal(body, &single); err2 != nil {
			return models.OrderStatus{}, fmt.Errorf("failed to decode order status: %w", err)
		}
		resp.Data = []wireOrderDetail{single}
	}
	if len(resp.Data) == 0 {
		return models.OrderStatus{}, fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
	}

	st := normalizeStatus(resp.Data[len(resp.Data)-1])
	if st.OrderID == "" {
		st.OrderID = orderID
	}
	return st, nil
}

// Cancel cancels a still-open order.
func (c *MStocksClient) Cancel(ctx context.Context, orderID string) error {
	form := url.Values{}
	form.Set("order_no", orderID)
	form.Set("segment", "E")

	body, status, err := c.do(ctx, http.MethodPost, "/order/cancel", form)
	if err != nil {
		return err
	}

	var resp struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}
	_ = json.Unmarshal(body, &resp)

	switch {
	case status == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
	case status == http.StatusConflict,
		strings.Contains(strings.ToLower(resp.Message), "already"):
		return fmt.Errorf("%w: %s", ErrAlreadyTerminal, orderID)
	case status != http.StatusOK || strings.EqualFold(resp.Status, "error"):
		return fmt.Errorf("cancel failed for %s: %s (status %d)", orderID, resp.Message, status)
	}
	log.Printf("Cancelled order %s", orderID)
	return nil
}

// do issues one authenticated request and returns the body and status code.
func (c *MStocksClient) do(ctx context.Context, method, path string, form url.Values) ([]byte, int, error) {
	session, err := c.ensureSession(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("no valid broker session: %w", err)
	}

	var reader io.Reader
	if form != nil {
		reader = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("X-Mirae-Version", "1")
	req.Header.Set("Authorization", session.authorization())
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("broker request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read broker response: %w", err)
	}
	return body, resp.StatusCode, nil
}

// splitSymbol splits an exchange-qualified ticker like "NSE:NIFTYBEES".
// Unqualified symbols default to NSE.
func splitSymbol(s string) (exchange, symbol string) {
	if i := strings.IndexByte(s, ':'); i > 0 {
		return s[:i], s[i+1:]
	}
	return "NSE", s
}
